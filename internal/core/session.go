package core

import (
	"errors"
	"fmt"
	"unsafe"

	"go.uber.org/zap"

	"github.com/FabianRolfMatthiasNoll/hjortron/internal/audio"
	"github.com/FabianRolfMatthiasNoll/hjortron/internal/input"
	"github.com/FabianRolfMatthiasNoll/hjortron/internal/libretro"
	"github.com/FabianRolfMatthiasNoll/hjortron/internal/logging"
	"github.com/FabianRolfMatthiasNoll/hjortron/internal/video"
)

var (
	ErrNotRunning = errors.New("core: session not running")
	ErrRunning    = errors.New("core: session still running")
	ErrNotBound   = errors.New("core: session not bound")
	ErrCoreBusy   = errors.New("core: core already runs a session")
	ErrLoadFailed = errors.New("core: core rejected content")
	ErrShutdown   = errors.New("core: core requested shutdown")
)

// State is the lifecycle position of a Session.
type State int

const (
	Unloaded State = iota
	Bound
	Running
	Stopped
)

func (s State) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case Bound:
		return "bound"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// SessionConfig carries the host side settings of a session.
type SessionConfig struct {
	SystemDir     string
	SaveDir       string
	CoreAssetsDir string

	// Options overrides core option defaults, keyed by lower case option key.
	Options map[string]string

	// OpenAudio opens the output for the core's sample rate. Nil discards audio.
	OpenAudio func(sampleRate float64) (audio.Sink, error)

	Logger *zap.Logger
}

// Session runs one piece of content on one core.
type Session struct {
	desc  *Descriptor
	api   *libretro.API
	cfg   SessionConfig
	log   *zap.Logger
	state State

	// owned by the bridge
	frame      video.Frame
	format     libretro.PixelFormat
	dupes      uint64
	sink       audio.Sink
	pending    []int16
	input      input.Snapshot
	vars       *Variables
	av         libretro.SystemAVInfo
	rotation   uint32
	perfLevel  uint32
	noGame     bool
	shutdown   bool
	message    string
	msgLeft    uint32
	inputDescs []InputDescriptor
	subsystems []string
	ports      int

	systemDir, saveDir, assetsDir, corePath []byte

	content string
	pathBuf []byte
	game    libretro.GameInfo
	frames  uint64
}

// InputDescriptor is a decoded retro_input_descriptor.
type InputDescriptor struct {
	Port, Device, Index, ID uint32
	Description             string
}

// NewSession binds a session to d. Nothing is called on the core yet.
func NewSession(d *Descriptor, cfg SessionConfig) *Session {
	log := cfg.Logger
	if log == nil {
		log = logging.Logger()
	}
	s := &Session{
		desc:   d,
		api:    d.API,
		cfg:    cfg,
		log:    log.With(zap.String("core", d.Name)),
		state:  Bound,
		format: libretro.Pixel0RGB1555,
		vars:   NewVariables(cfg.Options),
	}
	s.systemDir = cdir(cfg.SystemDir)
	s.saveDir = cdir(cfg.SaveDir)
	s.assetsDir = cdir(cfg.CoreAssetsDir)
	s.corePath = cdir(d.Path)
	return s
}

func cdir(p string) []byte {
	if p == "" {
		return nil
	}
	return libretro.CString(p)
}

// Start registers the callbacks, initialises the core and loads content.
// On failure the core is deinitialised and the session is Stopped.
func (s *Session) Start(content string) error {
	if s.state != Bound {
		return fmt.Errorf("%w: state %s", ErrNotBound, s.state)
	}
	if !s.desc.busy.CompareAndSwap(false, true) {
		return fmt.Errorf("%w: %s", ErrCoreBusy, s.desc.Name)
	}

	a := s.api
	if a.SetEnvironment != nil {
		a.SetEnvironment(s.environment)
	}
	if a.SetVideoRefresh != nil {
		a.SetVideoRefresh(s.videoRefresh)
	}
	if a.SetAudioSample != nil {
		a.SetAudioSample(s.audioSample)
	}
	if a.SetAudioSampleBatch != nil {
		a.SetAudioSampleBatch(s.audioSampleBatch)
	}
	if a.SetInputPoll != nil {
		a.SetInputPoll(s.inputPoll)
	}
	if a.SetInputState != nil {
		a.SetInputState(s.inputState)
	}
	if a.Init != nil {
		a.Init()
	}

	s.content = content
	s.pathBuf = libretro.CString(content)
	s.game = libretro.GameInfo{Path: libretro.CStringPtr(s.pathBuf)}
	if a.LoadGame == nil || !a.LoadGame(&s.game) {
		s.log.Error("load game failed", zap.String("content", content))
		if a.Deinit != nil {
			a.Deinit()
		}
		s.state = Stopped
		s.desc.busy.Store(false)
		return fmt.Errorf("%w: %s", ErrLoadFailed, content)
	}

	s.av = a.AVInfo()
	s.sink = s.openAudio(s.av.Timing.SampleRate)
	s.state = Running
	s.log.Info("session started", zap.String("content", content),
		zap.Uint32("width", s.av.Geometry.BaseWidth), zap.Uint32("height", s.av.Geometry.BaseHeight),
		zap.Float64("fps", s.av.Timing.FPS), zap.Float64("sample_rate", s.av.Timing.SampleRate))
	return nil
}

func (s *Session) openAudio(rate float64) audio.Sink {
	if s.cfg.OpenAudio == nil || rate <= 0 {
		return &audio.Null{}
	}
	sink, err := s.cfg.OpenAudio(rate)
	if err != nil {
		s.log.Warn("audio unavailable, continuing muted", zap.Error(err))
		return &audio.Null{}
	}
	return sink
}

// reopenAudio replaces the sink after the core changed its sample rate.
// Samples still pending at the old rate are written first.
func (s *Session) reopenAudio() {
	s.flushSamples()
	if s.sink != nil {
		if err := s.sink.Close(); err != nil {
			s.log.Warn("close audio", zap.Error(err))
		}
	}
	s.sink = s.openAudio(s.av.Timing.SampleRate)
}

// tickMessage counts down the frames a core message stays visible.
func (s *Session) tickMessage() {
	if s.message == "" {
		return
	}
	if s.msgLeft > 0 {
		s.msgLeft--
	}
	if s.msgLeft == 0 {
		s.message = ""
	}
}

// RunFrame executes one frame with in as the controller state.
func (s *Session) RunFrame(in input.Snapshot) error {
	if s.state != Running {
		return ErrNotRunning
	}
	s.input = in
	if s.api.Run != nil {
		s.api.Run()
	}
	s.flushSamples()
	s.frames++
	s.tickMessage()
	if s.shutdown {
		return ErrShutdown
	}
	return nil
}

// Reset restarts the content without reloading it.
func (s *Session) Reset() error {
	if s.state != Running {
		return ErrNotRunning
	}
	if s.api.Reset != nil {
		s.api.Reset()
	}
	return nil
}

// Stop unloads the content, deinitialises the core and releases audio.
// Stopping a session that is not running does nothing.
func (s *Session) Stop() error {
	if s.state != Running {
		return nil
	}
	if s.api.UnloadGame != nil {
		s.api.UnloadGame()
	}
	if s.api.Deinit != nil {
		s.api.Deinit()
	}
	libretro.CloseFiles()
	var err error
	if s.sink != nil {
		err = s.sink.Close()
		s.sink = nil
	}
	s.state = Stopped
	s.desc.busy.Store(false)
	s.log.Info("session stopped", zap.Uint64("frames", s.frames))
	return err
}

// Close releases the session. Running sessions must be stopped first.
func (s *Session) Close() error {
	if s.state == Running {
		return ErrRunning
	}
	s.state = Unloaded
	s.frame = video.Frame{}
	s.pending = nil
	return nil
}

func (s *Session) State() State                      { return s.state }
func (s *Session) Descriptor() *Descriptor           { return s.desc }
func (s *Session) Content() string                   { return s.content }
func (s *Session) Frame() *video.Frame               { return &s.frame }
func (s *Session) PixelFormat() libretro.PixelFormat { return s.format }
func (s *Session) AVInfo() libretro.SystemAVInfo     { return s.av }
func (s *Session) Frames() uint64                    { return s.frames }
func (s *Session) Variables() *Variables             { return s.vars }
func (s *Session) Sink() audio.Sink                  { return s.sink }
func (s *Session) Rotation() uint32                  { return s.rotation }
func (s *Session) Message() string                   { return s.message }

// InputDescriptors returns the button labels the core registered.
func (s *Session) InputDescriptors() []InputDescriptor { return s.inputDescs }

// cbytes views n bytes at p.
func cbytes(p unsafe.Pointer, n int) []byte {
	if p == nil || n <= 0 {
		return nil
	}
	return unsafe.Slice((*byte)(p), n)
}
