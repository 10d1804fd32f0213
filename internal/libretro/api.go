package libretro

import (
	"errors"
	"unsafe"
)

var (
	// ErrNotCore is returned by Open when a path does not follow the core naming convention.
	ErrNotCore = errors.New("libretro: not a core")
	// ErrMissingSymbol is returned by Open when a mandatory entry point is absent.
	ErrMissingSymbol = errors.New("libretro: missing mandatory symbol")
)

// Callbacks a core calls back into. Argument order follows libretro.h.
type (
	EnvironmentFunc      func(cmd uint32, data unsafe.Pointer) bool
	VideoRefreshFunc     func(data unsafe.Pointer, width, height uint32, pitch uintptr)
	AudioSampleFunc      func(left, right int16)
	AudioSampleBatchFunc func(data *int16, frames uintptr) uintptr
	InputPollFunc        func()
	InputStateFunc       func(port, device, index, id uint32) int16
)

// API is the capability record of one loaded core. Every field except
// GetSystemInfo may be nil and callers check before use.
//
// The native binding fills HostLog and HostVFS with C-callable tables; in-process
// cores leave them zero.
type API struct {
	APIVersion      func() uint32
	GetSystemInfo   func(info *SystemInfo)
	GetSystemAVInfo func(info *SystemAVInfo)

	SetEnvironment      func(fn EnvironmentFunc)
	SetVideoRefresh     func(fn VideoRefreshFunc)
	SetAudioSample      func(fn AudioSampleFunc)
	SetAudioSampleBatch func(fn AudioSampleBatchFunc)
	SetInputPoll        func(fn InputPollFunc)
	SetInputState       func(fn InputStateFunc)

	Init       func()
	Deinit     func()
	Run        func()
	Reset      func()
	LoadGame   func(game *GameInfo) bool
	UnloadGame func()

	SerializeSize func() uintptr
	Serialize     func(buf []byte) bool
	Unserialize   func(buf []byte) bool

	HostLog uintptr
	HostVFS unsafe.Pointer
}

// Info is the decoded form of SystemInfo.
type Info struct {
	Name         string
	Version      string
	Extensions   string
	NeedFullpath bool
	BlockExtract bool
}

// SystemInfo queries and decodes retro_get_system_info.
func (a *API) SystemInfo() Info {
	var si SystemInfo
	a.GetSystemInfo(&si)
	return Info{
		Name:         GoString(si.LibraryName),
		Version:      GoString(si.LibraryVersion),
		Extensions:   GoString(si.ValidExtensions),
		NeedFullpath: si.NeedFullpath,
		BlockExtract: si.BlockExtract,
	}
}

// AVInfo queries retro_get_system_av_info, returning a zero value when the core lacks it.
func (a *API) AVInfo() SystemAVInfo {
	var av SystemAVInfo
	if a.GetSystemAVInfo != nil {
		a.GetSystemAVInfo(&av)
	}
	return av
}
