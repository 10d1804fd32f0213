//go:build darwin || linux || freebsd

package libretro

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
	"go.uber.org/zap"

	"github.com/FabianRolfMatthiasNoll/hjortron/internal/vfs"
)

// Open loads the core at path and resolves its entry points. The module is
// released again when the mandatory retro_get_system_info is missing.
func Open(path string) (*Module, error) {
	if err := CheckName(path); err != nil {
		return nil, err
	}
	h, err := purego.Dlopen(path, purego.RTLD_LAZY|purego.RTLD_LOCAL)
	if err != nil {
		return nil, fmt.Errorf("libretro: dlopen %s: %w", path, err)
	}
	initTrampolines()

	m := &Module{path: path, handle: h, cb: &callbackSet{}}
	if err := m.bind(); err != nil {
		_ = purego.Dlclose(h)
		return nil, err
	}
	return m, nil
}

// Close unloads the shared object. The API record must not be used afterwards.
func (m *Module) Close() error {
	m.closeOnce.Do(func() {
		if m.handle != 0 {
			m.closeErr = purego.Dlclose(m.handle)
			m.handle = 0
		}
	})
	return m.closeErr
}

func (m *Module) sym(name string) uintptr {
	p, err := purego.Dlsym(m.handle, name)
	if err != nil {
		return 0
	}
	return p
}

func (m *Module) void(name string) func() {
	p := m.sym(name)
	if p == 0 {
		return nil
	}
	var fn func()
	purego.RegisterFunc(&fn, p)
	return func() { m.call(fn) }
}

func (m *Module) bind() error {
	a := &m.api

	p := m.sym("retro_get_system_info")
	if p == 0 {
		return fmt.Errorf("%w: retro_get_system_info in %s", ErrMissingSymbol, m.path)
	}
	var getSystemInfo func(*SystemInfo)
	purego.RegisterFunc(&getSystemInfo, p)
	a.GetSystemInfo = func(info *SystemInfo) { m.call(func() { getSystemInfo(info) }) }

	if p := m.sym("retro_api_version"); p != 0 {
		var fn func() uint32
		purego.RegisterFunc(&fn, p)
		a.APIVersion = func() (v uint32) {
			m.call(func() { v = fn() })
			return v
		}
	}
	if p := m.sym("retro_get_system_av_info"); p != 0 {
		var fn func(*SystemAVInfo)
		purego.RegisterFunc(&fn, p)
		a.GetSystemAVInfo = func(info *SystemAVInfo) { m.call(func() { fn(info) }) }
	}

	a.SetEnvironment = setter(m, "retro_set_environment", envTramp, &m.cb.env)
	a.SetVideoRefresh = setter(m, "retro_set_video_refresh", videoTramp, &m.cb.video)
	a.SetAudioSample = setter(m, "retro_set_audio_sample", sampleTramp, &m.cb.sample)
	a.SetAudioSampleBatch = setter(m, "retro_set_audio_sample_batch", batchTramp, &m.cb.batch)
	a.SetInputPoll = setter(m, "retro_set_input_poll", pollTramp, &m.cb.poll)
	a.SetInputState = setter(m, "retro_set_input_state", stateTramp, &m.cb.state)

	a.Init = m.void("retro_init")
	a.Deinit = m.void("retro_deinit")
	a.Run = m.void("retro_run")
	a.Reset = m.void("retro_reset")
	a.UnloadGame = m.void("retro_unload_game")

	if p := m.sym("retro_load_game"); p != 0 {
		var fn func(*GameInfo) bool
		purego.RegisterFunc(&fn, p)
		a.LoadGame = func(g *GameInfo) (ok bool) {
			m.call(func() { ok = fn(g) })
			return ok
		}
	}
	if p := m.sym("retro_serialize_size"); p != 0 {
		var fn func() uintptr
		purego.RegisterFunc(&fn, p)
		a.SerializeSize = func() (n uintptr) {
			m.call(func() { n = fn() })
			return n
		}
	}
	if p := m.sym("retro_serialize"); p != 0 {
		var fn func(unsafe.Pointer, uintptr) bool
		purego.RegisterFunc(&fn, p)
		a.Serialize = func(buf []byte) (ok bool) {
			if len(buf) == 0 {
				return false
			}
			m.call(func() { ok = fn(unsafe.Pointer(&buf[0]), uintptr(len(buf))) })
			return ok
		}
	}
	if p := m.sym("retro_unserialize"); p != 0 {
		var fn func(unsafe.Pointer, uintptr) bool
		purego.RegisterFunc(&fn, p)
		a.Unserialize = func(buf []byte) (ok bool) {
			if len(buf) == 0 {
				return false
			}
			m.call(func() { ok = fn(unsafe.Pointer(&buf[0]), uintptr(len(buf))) })
			return ok
		}
	}

	a.HostLog = logTramp
	a.HostVFS = unsafe.Pointer(&vfsIface)
	return nil
}

// setter resolves a retro_set_* entry point. The returned func stores the Go
// callback in the module's set and hands the core the shared trampoline.
func setter[F any](m *Module, name string, tramp uintptr, slot *F) func(F) {
	p := m.sym(name)
	if p == 0 {
		return nil
	}
	var fn func(uintptr)
	purego.RegisterFunc(&fn, p)
	return func(cb F) {
		*slot = cb
		m.call(func() { fn(tramp) })
	}
}

// Trampolines are C function pointers shared by every module. purego cannot
// free callbacks, so they are created once per process and dispatch through active.
var (
	trampOnce sync.Once

	envTramp    uintptr
	videoTramp  uintptr
	sampleTramp uintptr
	batchTramp  uintptr
	pollTramp   uintptr
	stateTramp  uintptr
	logTramp    uintptr

	vfsIface vfsInterface
	files    = vfs.New()
)

// vfsInterface is struct retro_vfs_interface, version 2.
type vfsInterface struct {
	getPath  uintptr
	open     uintptr
	close    uintptr
	size     uintptr
	tell     uintptr
	seek     uintptr
	read     uintptr
	write    uintptr
	flush    uintptr
	remove   uintptr
	rename   uintptr
	truncate uintptr
}

const cFailure = ^uintptr(0)

func cBool(b bool) uintptr {
	if b {
		return 1
	}
	return 0
}

func cString(p uintptr) string {
	return GoString((*byte)(unsafe.Pointer(p)))
}

func initTrampolines() {
	trampOnce.Do(func() {
		envTramp = purego.NewCallback(func(cmd, data uintptr) uintptr {
			cb := active.Load()
			if cb == nil || cb.env == nil {
				return 0
			}
			return cBool(cb.env(uint32(cmd), unsafe.Pointer(data)))
		})
		videoTramp = purego.NewCallback(func(data, width, height, pitch uintptr) {
			if cb := active.Load(); cb != nil && cb.video != nil {
				cb.video(unsafe.Pointer(data), uint32(width), uint32(height), pitch)
			}
		})
		sampleTramp = purego.NewCallback(func(left, right uintptr) {
			if cb := active.Load(); cb != nil && cb.sample != nil {
				cb.sample(int16(left), int16(right))
			}
		})
		batchTramp = purego.NewCallback(func(data, frames uintptr) uintptr {
			cb := active.Load()
			if cb == nil || cb.batch == nil {
				return 0
			}
			return cb.batch((*int16)(unsafe.Pointer(data)), frames)
		})
		pollTramp = purego.NewCallback(func() {
			if cb := active.Load(); cb != nil && cb.poll != nil {
				cb.poll()
			}
		})
		stateTramp = purego.NewCallback(func(port, device, index, id uintptr) uintptr {
			cb := active.Load()
			if cb == nil || cb.state == nil {
				return 0
			}
			return uintptr(uint16(cb.state(uint32(port), uint32(device), uint32(index), uint32(id))))
		})
		// Variadic arguments are not reachable through purego, so the format
		// string is logged as is.
		logTramp = purego.NewCallback(func(level, format uintptr) {
			cb := active.Load()
			ForwardLog(cb.logger(), LogLevel(uint32(level)), cString(format))
		})
		initVFS()
	})
}

func initVFS() {
	handle := func(p uintptr) vfs.Handle { return vfs.Handle(p) }
	vfsIface = vfsInterface{
		getPath: purego.NewCallback(func(h uintptr) uintptr {
			p, err := files.Path(handle(h))
			if err != nil {
				return 0
			}
			return uintptr(unsafe.Pointer(&p[0]))
		}),
		open: purego.NewCallback(func(path, mode, hints uintptr) uintptr {
			h, err := files.Open(cString(path), uint32(mode))
			if err != nil {
				active.Load().logger().Debug("vfs open failed", zap.Error(err))
				return 0
			}
			return uintptr(h)
		}),
		close: purego.NewCallback(func(h uintptr) uintptr {
			if files.Close(handle(h)) != nil {
				return cFailure
			}
			return 0
		}),
		size: purego.NewCallback(vfsSize),
		tell: purego.NewCallback(func(h uintptr) uintptr {
			n, err := files.Tell(handle(h))
			if err != nil {
				return cFailure
			}
			return uintptr(n)
		}),
		seek: purego.NewCallback(func(h, offset, whence uintptr) uintptr {
			n, err := files.Seek(handle(h), int64(offset), int(int32(whence)))
			if err != nil {
				return cFailure
			}
			return uintptr(n)
		}),
		read: purego.NewCallback(func(h, buf, n uintptr) uintptr {
			if n == 0 {
				return 0
			}
			got, err := files.Read(handle(h), unsafe.Slice((*byte)(unsafe.Pointer(buf)), n))
			if err != nil {
				return cFailure
			}
			return uintptr(got)
		}),
		write: purego.NewCallback(func(h, buf, n uintptr) uintptr {
			if n == 0 {
				return 0
			}
			got, err := files.Write(handle(h), unsafe.Slice((*byte)(unsafe.Pointer(buf)), n))
			if err != nil {
				return cFailure
			}
			return uintptr(got)
		}),
		flush: purego.NewCallback(func(h uintptr) uintptr {
			if files.Flush(handle(h)) != nil {
				return cFailure
			}
			return 0
		}),
		remove: purego.NewCallback(func(path uintptr) uintptr {
			if vfs.Remove(cString(path)) != nil {
				return cFailure
			}
			return 0
		}),
		rename: purego.NewCallback(func(oldPath, newPath uintptr) uintptr {
			if vfs.Rename(cString(oldPath), cString(newPath)) != nil {
				return cFailure
			}
			return 0
		}),
		truncate: purego.NewCallback(func(h, length uintptr) uintptr {
			if files.Truncate(handle(h), int64(length)) != nil {
				return cFailure
			}
			return 0
		}),
	}
}

func vfsSize(h uintptr) uintptr {
	n, err := files.Size(vfs.Handle(h))
	if err != nil {
		return cFailure
	}
	return uintptr(n)
}

// CloseFiles closes every VFS handle a core left open.
func CloseFiles() { files.CloseAll() }
