// Package libretrotest provides an in-process core for tests.
package libretrotest

import (
	"encoding/binary"
	"os"
	"sync"
	"unsafe"

	"github.com/FabianRolfMatthiasNoll/hjortron/internal/libretro"
)

const (
	Name       = "Counter"
	Version    = "1.0"
	Extensions = "cnt|bin"

	Width      = 16
	Height     = 8
	SampleRate = 32000
	FPS        = 60

	// StepKey is the core option the counter reads its increment from.
	StepKey = "counter_step"
)

// Counter is a deterministic core. Every frame it adds the current step to
// a counter, plus 100 while joypad A is held, draws the low byte of the
// counter as a grey XRGB8888 frame and emits one frame worth of audio.
type Counter struct {
	mu sync.Mutex

	// Knobs set by tests before Start.
	FailLoad   bool
	NoState    bool
	FrameW     uint32
	FrameH     uint32
	AudioBatch int // stereo frames per batch, default SampleRate/FPS

	env   libretro.EnvironmentFunc
	video libretro.VideoRefreshFunc
	batch libretro.AudioSampleBatchFunc
	poll  libretro.InputPollFunc
	state libretro.InputStateFunc

	Calls   []string
	Counter uint64
	Frames  uint64
	Step    uint64
	Content []byte
	Path    string
	Written uintptr // audio frames accepted by the host

	name, version, exts []byte
	vars                []libretro.Variable
	varBufs             [][]byte
	pixels              []byte
	audio               []int16
}

func New() *Counter {
	return &Counter{
		FrameW:  Width,
		FrameH:  Height,
		Step:    1,
		name:    libretro.CString(Name),
		version: libretro.CString(Version),
		exts:    libretro.CString(Extensions),
	}
}

func (c *Counter) record(call string) {
	c.mu.Lock()
	c.Calls = append(c.Calls, call)
	c.mu.Unlock()
}

// CallLog returns a copy of the entry points invoked so far.
func (c *Counter) CallLog() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.Calls...)
}

// API returns the capability record of the counter core.
func (c *Counter) API() *libretro.API {
	api := &libretro.API{
		APIVersion: func() uint32 { return libretro.APIVersion },
		GetSystemInfo: func(si *libretro.SystemInfo) {
			si.LibraryName = libretro.CStringPtr(c.name)
			si.LibraryVersion = libretro.CStringPtr(c.version)
			si.ValidExtensions = libretro.CStringPtr(c.exts)
			si.NeedFullpath = true
		},
		GetSystemAVInfo: func(av *libretro.SystemAVInfo) {
			av.Geometry = libretro.GameGeometry{
				BaseWidth: c.FrameW, BaseHeight: c.FrameH,
				MaxWidth: c.FrameW * 2, MaxHeight: c.FrameH * 2,
				AspectRatio: float32(c.FrameW) / float32(c.FrameH),
			}
			av.Timing = libretro.SystemTiming{FPS: FPS, SampleRate: SampleRate}
		},
		SetEnvironment:      func(fn libretro.EnvironmentFunc) { c.record("set_environment"); c.env = fn },
		SetVideoRefresh:     func(fn libretro.VideoRefreshFunc) { c.record("set_video_refresh"); c.video = fn },
		SetAudioSample:      func(libretro.AudioSampleFunc) { c.record("set_audio_sample") },
		SetAudioSampleBatch: func(fn libretro.AudioSampleBatchFunc) { c.record("set_audio_sample_batch"); c.batch = fn },
		SetInputPoll:        func(fn libretro.InputPollFunc) { c.record("set_input_poll"); c.poll = fn },
		SetInputState:       func(fn libretro.InputStateFunc) { c.record("set_input_state"); c.state = fn },
		Init:                c.init,
		Deinit:              func() { c.record("deinit") },
		Run:                 c.run,
		Reset:               func() { c.record("reset"); c.Counter = 0 },
		LoadGame:            c.loadGame,
		UnloadGame:          func() { c.record("unload_game"); c.Content = nil },
	}
	if !c.NoState {
		api.SerializeSize = func() uintptr { return 16 }
		api.Serialize = c.serialize
		api.Unserialize = c.unserialize
	}
	return api
}

func (c *Counter) init() {
	c.record("init")
	if c.env == nil {
		return
	}
	format := uint32(libretro.PixelXRGB8888)
	c.env(libretro.EnvSetPixelFormat, unsafe.Pointer(&format))

	c.varBufs = [][]byte{
		libretro.CString(StepKey), libretro.CString("Step; 1|2|4"),
		libretro.CString("counter_broken"), libretro.CString("No choices here"),
		libretro.CString("counter_color"), libretro.CString("Colour; grey|red"),
	}
	c.vars = []libretro.Variable{
		{Key: &c.varBufs[0][0], Value: &c.varBufs[1][0]},
		{Key: &c.varBufs[2][0], Value: &c.varBufs[3][0]},
		{Key: &c.varBufs[4][0], Value: &c.varBufs[5][0]},
		{},
	}
	c.env(libretro.EnvSetVariables, unsafe.Pointer(&c.vars[0]))
}

func (c *Counter) loadGame(g *libretro.GameInfo) bool {
	c.record("load_game")
	if c.FailLoad || g == nil {
		return false
	}
	c.Path = libretro.GoString(g.Path)
	data, err := os.ReadFile(c.Path)
	if err != nil {
		return false
	}
	c.Content = data
	return true
}

func (c *Counter) updateStep() {
	var updated bool
	if !c.env(libretro.EnvGetVariableUpdate, unsafe.Pointer(&updated)) || !updated {
		return
	}
	v := libretro.Variable{Key: &c.varBufs[0][0]}
	if !c.env(libretro.EnvGetVariable, unsafe.Pointer(&v)) || v.Value == nil {
		return
	}
	switch libretro.GoString(v.Value) {
	case "2":
		c.Step = 2
	case "4":
		c.Step = 4
	default:
		c.Step = 1
	}
}

func (c *Counter) run() {
	c.Frames++
	if c.env != nil && c.varBufs != nil {
		c.updateStep()
	}
	if c.poll != nil {
		c.poll()
	}
	c.Counter += c.Step
	if c.state != nil && c.state(0, libretro.DeviceJoypad, 0, libretro.DeviceIDJoypadA) != 0 {
		c.Counter += 100
	}

	if c.video != nil {
		pitch := uintptr(c.FrameW) * 4
		need := int(pitch) * int(c.FrameH)
		if len(c.pixels) != need {
			c.pixels = make([]byte, need)
		}
		v := byte(c.Counter)
		for i := 0; i < need; i += 4 {
			c.pixels[i+0] = v // B
			c.pixels[i+1] = v // G
			c.pixels[i+2] = v // R
			c.pixels[i+3] = 0
		}
		c.video(unsafe.Pointer(&c.pixels[0]), c.FrameW, c.FrameH, pitch)
	}

	if c.batch != nil {
		n := c.AudioBatch
		if n == 0 {
			n = SampleRate / FPS
		}
		if len(c.audio) != n*2 {
			c.audio = make([]int16, n*2)
		}
		for i := range c.audio {
			c.audio[i] = int16(c.Counter)
		}
		c.Written += c.batch(&c.audio[0], uintptr(n))
	}
}

func (c *Counter) serialize(buf []byte) bool {
	if len(buf) < 16 {
		return false
	}
	binary.LittleEndian.PutUint64(buf[0:], c.Counter)
	binary.LittleEndian.PutUint64(buf[8:], c.Step)
	return true
}

func (c *Counter) unserialize(buf []byte) bool {
	if len(buf) != 16 {
		return false
	}
	c.Counter = binary.LittleEndian.Uint64(buf[0:])
	c.Step = binary.LittleEndian.Uint64(buf[8:])
	return true
}

// Env lets tests issue environment calls as the core would.
func (c *Counter) Env(cmd uint32, data unsafe.Pointer) bool {
	if c.env == nil {
		return false
	}
	return c.env(cmd, data)
}
