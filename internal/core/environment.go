package core

import (
	"unsafe"

	"go.uber.org/zap"

	"github.com/FabianRolfMatthiasNoll/hjortron/internal/libretro"
)

// vfsVersion is the highest VFS interface version the host implements.
const vfsVersion = 2

// maxEntries bounds walks over NULL terminated arrays handed over by cores.
const maxEntries = 1024

// walk visits the elements of a terminated array starting at data.
func walk[T any](data unsafe.Pointer, end func(*T) bool, fn func(*T)) {
	var zero T
	for i := 0; i < maxEntries; i++ {
		p := (*T)(unsafe.Add(data, uintptr(i)*unsafe.Sizeof(zero)))
		if end(p) {
			return
		}
		fn(p)
	}
}

func putDir(data unsafe.Pointer, dir []byte) bool {
	if len(dir) == 0 {
		*(**byte)(data) = nil
		return false
	}
	*(**byte)(data) = &dir[0]
	return true
}

// environment answers the core's environment calls. Unknown commands are
// reported as unsupported and change nothing.
func (s *Session) environment(cmd uint32, data unsafe.Pointer) bool {
	code := cmd &^ libretro.EnvExperimental
	if data == nil && code != libretro.EnvGetInputBitmasks && code != libretro.EnvShutdown {
		s.log.Debug("environment call without data", zap.Uint32("cmd", cmd))
		return false
	}

	switch code {
	case libretro.EnvSetRotation:
		s.rotation = *(*uint32)(data)
		return true

	case libretro.EnvGetOverscan:
		*(*bool)(data) = false
		return true

	case libretro.EnvGetCanDupe:
		*(*bool)(data) = true
		return true

	case libretro.EnvSetMessage:
		m := (*libretro.Message)(data)
		s.message = libretro.GoString(m.Msg)
		s.msgLeft = m.Frames
		s.log.Info("core message", zap.String("msg", s.message), zap.Uint32("frames", m.Frames))
		return true

	case libretro.EnvShutdown:
		s.shutdown = true
		return true

	case libretro.EnvSetPerformanceLevel:
		s.perfLevel = *(*uint32)(data)
		return true

	case libretro.EnvGetSystemDirectory:
		return putDir(data, s.systemDir)

	case libretro.EnvGetSaveDirectory:
		return putDir(data, s.saveDir)

	case libretro.EnvGetCoreAssetsDirectory:
		return putDir(data, s.assetsDir)

	case libretro.EnvGetLibretroPath:
		return putDir(data, s.corePath)

	case libretro.EnvSetPixelFormat:
		f := libretro.PixelFormat(*(*uint32)(data))
		switch f {
		case libretro.Pixel0RGB1555, libretro.PixelXRGB8888, libretro.PixelRGB565:
			s.format = f
			s.log.Debug("pixel format", zap.Stringer("format", f))
			return true
		}
		s.log.Warn("unsupported pixel format", zap.Uint32("format", uint32(f)))
		return false

	case libretro.EnvSetInputDescriptors:
		s.inputDescs = s.inputDescs[:0]
		walk(data, func(d *libretro.InputDescriptor) bool { return d.Description == nil },
			func(d *libretro.InputDescriptor) {
				s.inputDescs = append(s.inputDescs, InputDescriptor{
					Port: d.Port, Device: d.Device, Index: d.Index, ID: d.ID,
					Description: libretro.GoString(d.Description),
				})
			})
		return true

	case libretro.EnvSetVariables:
		walk(data, func(v *libretro.Variable) bool { return v.Key == nil },
			func(v *libretro.Variable) {
				key := libretro.GoString(v.Key)
				if err := s.vars.Register(key, libretro.GoString(v.Value)); err != nil {
					s.log.Warn("skipping core option", zap.Error(err))
				}
			})
		return true

	case libretro.EnvGetVariable:
		v := (*libretro.Variable)(data)
		opt, ok := s.vars.Get(libretro.GoString(v.Key))
		if !ok {
			v.Value = nil
			return false
		}
		v.Value = opt.cvalue()
		return true

	case libretro.EnvGetVariableUpdate:
		*(*bool)(data) = s.vars.TakeUpdated()
		return true

	case libretro.EnvSetSupportNoGame:
		s.noGame = *(*bool)(data)
		return true

	case libretro.EnvGetLogInterface:
		if s.api.HostLog == 0 {
			return false
		}
		(*libretro.LogCallback)(data).Log = s.api.HostLog
		return true

	case libretro.EnvSetSystemAVInfo:
		old := s.av.Timing.SampleRate
		s.av = *(*libretro.SystemAVInfo)(data)
		s.log.Info("av info changed",
			zap.Uint32("width", s.av.Geometry.BaseWidth), zap.Uint32("height", s.av.Geometry.BaseHeight),
			zap.Float64("sample_rate", s.av.Timing.SampleRate))
		if s.state == Running && s.av.Timing.SampleRate != old {
			s.reopenAudio()
		}
		return true

	case libretro.EnvSetGeometry:
		s.av.Geometry = *(*libretro.GameGeometry)(data)
		return true

	case libretro.EnvSetSubsystemInfo:
		s.subsystems = s.subsystems[:0]
		walk(data, func(si *libretro.SubsystemInfo) bool { return si.Ident == nil },
			func(si *libretro.SubsystemInfo) {
				s.subsystems = append(s.subsystems, libretro.GoString(si.Ident))
			})
		return true

	case libretro.EnvSetControllerInfo:
		s.ports = 0
		walk(data, func(ci *libretro.ControllerInfo) bool { return ci.Types == nil },
			func(*libretro.ControllerInfo) { s.ports++ })
		return true

	case libretro.EnvGetVFSInterface:
		info := (*libretro.VFSInterfaceInfo)(data)
		if s.api.HostVFS == nil || info.RequiredInterfaceVersion > vfsVersion {
			return false
		}
		info.RequiredInterfaceVersion = vfsVersion
		info.Iface = s.api.HostVFS
		return true

	case libretro.EnvGetAudioVideoEnable:
		*(*int32)(data) = libretro.EnableVideo | libretro.EnableAudio
		return true

	case libretro.EnvGetInputBitmasks:
		return true
	}

	s.log.Debug("unsupported environment call", zap.Uint32("cmd", cmd))
	return false
}
