package libretro

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestCheckName(t *testing.T) {
	tests := []struct {
		path string
		ok   bool
	}{
		{"/usr/lib/libretro/snes9x_libretro.so", true},
		{"genesis_plus_gx_libretro.dylib", true},
		{"mgba_libretro.dll", true},
		{"/usr/lib/libretro/snes9x.so", false},
		{"snes9x_libretro.info", false},
		{"README", false},
	}
	for _, tt := range tests {
		err := CheckName(tt.path)
		if tt.ok {
			assert.NoError(t, err, tt.path)
		} else {
			assert.ErrorIs(t, err, ErrNotCore, tt.path)
		}
	}
}

func TestOpenRejectsBadNameBeforeLoading(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "notacore.so"))
	assert.ErrorIs(t, err, ErrNotCore)
}

func TestOpenFailsOnGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken_libretro.so")
	require.NoError(t, os.WriteFile(path, []byte("not an elf"), 0o644))
	m, err := Open(path)
	assert.Error(t, err)
	assert.Nil(t, m)
}

func TestGoString(t *testing.T) {
	assert.Equal(t, "", GoString(nil))
	b := CString("snes9x")
	assert.Len(t, b, 7)
	assert.Equal(t, "snes9x", GoString(CStringPtr(b)))
	assert.Nil(t, CStringPtr(nil))
}

func TestSystemInfoDecode(t *testing.T) {
	name, version, exts := CString("Counter"), CString("1.0"), CString("cnt|bin")
	api := API{GetSystemInfo: func(si *SystemInfo) {
		si.LibraryName = CStringPtr(name)
		si.LibraryVersion = CStringPtr(version)
		si.ValidExtensions = CStringPtr(exts)
		si.NeedFullpath = true
	}}
	info := api.SystemInfo()
	assert.Equal(t, Info{Name: "Counter", Version: "1.0", Extensions: "cnt|bin", NeedFullpath: true}, info)
	assert.Equal(t, SystemAVInfo{}, api.AVInfo(), "missing av info is zero")
}

func TestCallScopesActiveSet(t *testing.T) {
	m := &Module{cb: &callbackSet{}}
	assert.Nil(t, active.Load())
	m.call(func() {
		assert.Same(t, m.cb, active.Load())
	})
	assert.Nil(t, active.Load(), "binding cleared after the call")
}

func TestForwardLog(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := zap.New(core)
	ForwardLog(l, LogDebug, "d\n")
	ForwardLog(l, LogInfo, "i")
	ForwardLog(l, LogWarn, "w")
	ForwardLog(l, LogError, "e")
	ForwardLog(l, LogLevel(9), "x")

	want := []zapcore.Level{zap.DebugLevel, zap.InfoLevel, zap.WarnLevel, zap.ErrorLevel, zap.ErrorLevel}
	entries := logs.All()
	require.Len(t, entries, len(want))
	for i, e := range entries {
		assert.Equal(t, want[i], e.Level)
	}
	assert.Equal(t, "d", entries[0].Message)
	assert.Equal(t, "level(9)", LogLevel(9).String())
}

func TestPixelFormatString(t *testing.T) {
	assert.Equal(t, "RGB565", PixelRGB565.String())
	assert.Equal(t, "unknown", PixelFormat(7).String())
}
