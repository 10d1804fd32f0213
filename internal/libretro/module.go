package libretro

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/FabianRolfMatthiasNoll/hjortron/internal/logging"
)

// Module is one loaded core shared object.
type Module struct {
	path   string
	handle uintptr
	api    API
	cb     *callbackSet

	closeOnce sync.Once
	closeErr  error
}

// callbackSet holds the host callbacks registered by one module.
type callbackSet struct {
	env    EnvironmentFunc
	video  VideoRefreshFunc
	sample AudioSampleFunc
	batch  AudioSampleBatchFunc
	poll   InputPollFunc
	state  InputStateFunc
	log    atomic.Pointer[zap.Logger]
}

// active is the callback set of the module currently executing. Cores get no
// per-instance handle, so every call into a module runs inside call().
var active atomic.Pointer[callbackSet]

func (m *Module) call(fn func()) {
	prev := active.Swap(m.cb)
	defer active.Store(prev)
	fn()
}

// Path returns the file the module was loaded from.
func (m *Module) Path() string { return m.path }

// API returns the capability record. The record stays valid until Close.
func (m *Module) API() *API { return &m.api }

// SetLogger routes messages from the core's log interface to l.
func (m *Module) SetLogger(l *zap.Logger) { m.cb.log.Store(l) }

func (cb *callbackSet) logger() *zap.Logger {
	if cb != nil {
		if l := cb.log.Load(); l != nil {
			return l
		}
	}
	return logging.Logger()
}

// CheckName reports whether path looks like a libretro core:
// "_libretro" in the base name and a shared object extension.
func CheckName(path string) error {
	base := filepath.Base(path)
	if !strings.Contains(base, "_libretro") {
		return fmt.Errorf("%w: %s: name lacks _libretro", ErrNotCore, base)
	}
	switch filepath.Ext(base) {
	case ".so", ".dylib", ".dll":
		return nil
	}
	return fmt.Errorf("%w: %s: not a shared object", ErrNotCore, base)
}

// String returns the level name used in log output.
func (l LogLevel) String() string {
	switch l {
	case LogDebug:
		return "debug"
	case LogInfo:
		return "info"
	case LogWarn:
		return "warn"
	case LogError:
		return "error"
	}
	return fmt.Sprintf("level(%d)", uint32(l))
}

// ForwardLog writes one core log line to logger at the mapped zap level.
func ForwardLog(logger *zap.Logger, level LogLevel, msg string) {
	msg = strings.TrimRight(msg, "\r\n")
	switch level {
	case LogDebug:
		logger.Debug(msg)
	case LogInfo:
		logger.Info(msg)
	case LogWarn:
		logger.Warn(msg)
	default:
		logger.Error(msg)
	}
}
