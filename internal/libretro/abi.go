package libretro

import "unsafe"

// APIVersion is the libretro ABI revision this host speaks.
const APIVersion = 1

// Environment command flags and codes. Only the codes the host answers are listed.
const (
	EnvExperimental uint32 = 0x10000
	EnvPrivate      uint32 = 0x20000

	EnvSetRotation            uint32 = 1
	EnvGetOverscan            uint32 = 2
	EnvGetCanDupe             uint32 = 3
	EnvSetMessage             uint32 = 6
	EnvShutdown               uint32 = 7
	EnvSetPerformanceLevel    uint32 = 8
	EnvGetSystemDirectory     uint32 = 9
	EnvSetPixelFormat         uint32 = 10
	EnvSetInputDescriptors    uint32 = 11
	EnvGetVariable            uint32 = 15
	EnvSetVariables           uint32 = 16
	EnvGetVariableUpdate      uint32 = 17
	EnvSetSupportNoGame       uint32 = 18
	EnvGetLibretroPath        uint32 = 19
	EnvGetLogInterface        uint32 = 27
	EnvGetCoreAssetsDirectory uint32 = 30
	EnvGetSaveDirectory       uint32 = 31
	EnvSetSystemAVInfo        uint32 = 32
	EnvSetSubsystemInfo       uint32 = 34
	EnvSetControllerInfo      uint32 = 35
	EnvSetGeometry            uint32 = 37
	EnvGetVFSInterface        uint32 = 45
	EnvGetAudioVideoEnable    uint32 = 47
	EnvGetInputBitmasks       uint32 = 51
	EnvGetCoreOptionsVersion  uint32 = 52
)

// PixelFormat mirrors enum retro_pixel_format.
type PixelFormat uint32

const (
	Pixel0RGB1555 PixelFormat = 0
	PixelXRGB8888 PixelFormat = 1
	PixelRGB565   PixelFormat = 2
)

func (f PixelFormat) String() string {
	switch f {
	case Pixel0RGB1555:
		return "0RGB1555"
	case PixelXRGB8888:
		return "XRGB8888"
	case PixelRGB565:
		return "RGB565"
	default:
		return "unknown"
	}
}

// Input devices and joypad ids.
const (
	DeviceNone   uint32 = 0
	DeviceJoypad uint32 = 1
	DeviceAnalog uint32 = 5

	DeviceIDJoypadB      uint32 = 0
	DeviceIDJoypadY      uint32 = 1
	DeviceIDJoypadSelect uint32 = 2
	DeviceIDJoypadStart  uint32 = 3
	DeviceIDJoypadUp     uint32 = 4
	DeviceIDJoypadDown   uint32 = 5
	DeviceIDJoypadLeft   uint32 = 6
	DeviceIDJoypadRight  uint32 = 7
	DeviceIDJoypadA      uint32 = 8
	DeviceIDJoypadX      uint32 = 9
	DeviceIDJoypadL      uint32 = 10
	DeviceIDJoypadR      uint32 = 11
	DeviceIDJoypadMask   uint32 = 256

	DeviceIndexAnalogLeft uint32 = 0
	DeviceIDAnalogX       uint32 = 0
	DeviceIDAnalogY       uint32 = 1
)

// LogLevel mirrors enum retro_log_level.
type LogLevel uint32

const (
	LogDebug LogLevel = iota
	LogInfo
	LogWarn
	LogError
)

// AudioVideoEnable bits for GET_AUDIO_VIDEO_ENABLE.
const (
	EnableVideo = 1 << 0
	EnableAudio = 1 << 1
)

// The structs below share their memory layout with the C declarations in
// libretro.h and are read or written through pointers handed over by cores.

// SystemInfo is struct retro_system_info.
type SystemInfo struct {
	LibraryName     *byte
	LibraryVersion  *byte
	ValidExtensions *byte
	NeedFullpath    bool
	BlockExtract    bool
}

// GameGeometry is struct retro_game_geometry.
type GameGeometry struct {
	BaseWidth   uint32
	BaseHeight  uint32
	MaxWidth    uint32
	MaxHeight   uint32
	AspectRatio float32
}

// SystemTiming is struct retro_system_timing.
type SystemTiming struct {
	FPS        float64
	SampleRate float64
}

// SystemAVInfo is struct retro_system_av_info.
type SystemAVInfo struct {
	Geometry GameGeometry
	Timing   SystemTiming
}

// GameInfo is struct retro_game_info.
type GameInfo struct {
	Path *byte
	Data unsafe.Pointer
	Size uintptr
	Meta *byte
}

// Variable is struct retro_variable.
type Variable struct {
	Key   *byte
	Value *byte
}

// InputDescriptor is struct retro_input_descriptor.
type InputDescriptor struct {
	Port        uint32
	Device      uint32
	Index       uint32
	ID          uint32
	Description *byte
}

// SubsystemInfo is struct retro_subsystem_info.
type SubsystemInfo struct {
	Desc    *byte
	Ident   *byte
	Roms    unsafe.Pointer
	NumRoms uint32
	ID      uint32
}

// ControllerDescription is struct retro_controller_description.
type ControllerDescription struct {
	Desc *byte
	ID   uint32
}

// ControllerInfo is struct retro_controller_info.
type ControllerInfo struct {
	Types    *ControllerDescription
	NumTypes uint32
}

// LogCallback is struct retro_log_callback.
type LogCallback struct {
	Log uintptr
}

// VFSInterfaceInfo is struct retro_vfs_interface_info.
type VFSInterfaceInfo struct {
	RequiredInterfaceVersion uint32
	Iface                    unsafe.Pointer
}

// Message is struct retro_message.
type Message struct {
	Msg    *byte
	Frames uint32
}
