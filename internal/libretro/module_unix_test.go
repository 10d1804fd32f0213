//go:build darwin || linux || freebsd

package libretro

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FabianRolfMatthiasNoll/hjortron/internal/vfs"
)

// systemLibrary returns a shared library that exists on the host but is no
// libretro core.
func systemLibrary(t *testing.T) string {
	t.Helper()
	candidates := []string{
		"/lib/x86_64-linux-gnu/libm.so.6",
		"/usr/lib/x86_64-linux-gnu/libm.so.6",
		"/lib/aarch64-linux-gnu/libm.so.6",
		"/usr/lib/aarch64-linux-gnu/libm.so.6",
		"/lib64/libm.so.6",
		"/usr/lib64/libm.so.6",
		"/usr/lib/libm.so.6",
		"/usr/lib/libSystem.B.dylib",
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	t.Skipf("no system library found on %s", runtime.GOOS)
	return ""
}

func TestOpenReleasesLibraryWithoutSystemInfo(t *testing.T) {
	lib := systemLibrary(t)
	data, err := os.ReadFile(lib)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "libm_libretro.so")
	require.NoError(t, os.WriteFile(path, data, 0o755))

	m, err := Open(path)
	assert.ErrorIs(t, err, ErrMissingSymbol)
	assert.Contains(t, err.Error(), "retro_get_system_info")
	assert.Nil(t, m)
}

func TestVFSSizeReportsFailure(t *testing.T) {
	assert.Equal(t, cFailure, vfsSize(0))
	assert.Equal(t, cFailure, vfsSize(vfs.Slots+1))

	path := filepath.Join(t.TempDir(), "save.srm")
	require.NoError(t, os.WriteFile(path, make([]byte, 100), 0o644))
	h, err := files.Open(path, vfs.AccessRead)
	require.NoError(t, err)
	defer files.Close(h)
	assert.EqualValues(t, 100, vfsSize(uintptr(h)))
}
