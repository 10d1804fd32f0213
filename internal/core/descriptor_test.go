package core

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FabianRolfMatthiasNoll/hjortron/internal/libretro"
)

func fakeCore(name, exts string) *Descriptor {
	n, e := libretro.CString(name), libretro.CString(exts)
	api := &libretro.API{GetSystemInfo: func(si *libretro.SystemInfo) {
		si.LibraryName = libretro.CStringPtr(n)
		si.ValidExtensions = libretro.CStringPtr(e)
	}}
	d, err := NewDescriptor(api, name+"_libretro.so", nil)
	if err != nil {
		panic(err)
	}
	return d
}

func TestNewDescriptor(t *testing.T) {
	_, err := NewDescriptor(&libretro.API{}, "x_libretro.so", nil)
	assert.ErrorIs(t, err, libretro.ErrMissingSymbol)

	_, err = NewDescriptor(&libretro.API{GetSystemInfo: func(*libretro.SystemInfo) {}}, "x_libretro.so", nil)
	assert.ErrorIs(t, err, ErrNoSystemInfo)

	d := fakeCore("Snes9x", "smc|SFC|fig")
	assert.Equal(t, []string{"smc", "sfc", "fig"}, d.ExtensionList())
	assert.True(t, d.Accepts("/roms/Zelda.SMC"))
	assert.True(t, d.Accepts("mario.sfc"))
	assert.False(t, d.Accepts("sonic.md"))
	assert.False(t, d.Accepts("noext"))
}

func TestCollectionFindFirstMatch(t *testing.T) {
	var c Collection
	a := fakeCore("Genesis Plus GX", "md|gen")
	b := fakeCore("Genesis Plus GX", "sms")
	require.NoError(t, c.Add(a))
	require.NoError(t, c.Add(b))
	require.NoError(t, c.Add(fakeCore("Snes9x", "sfc|smc")))

	assert.Same(t, a, c.Find("Genesis Plus GX"))
	assert.Nil(t, c.Find("genesis plus gx"), "names match exactly")
	assert.Equal(t, "Snes9x", c.ForFile("x.SFC").Name)
	assert.Nil(t, c.ForFile("x.gb"))
	assert.Equal(t, []string{"md", "gen", "sms", "sfc", "smc"}, c.Extensions())
	assert.Equal(t, 3, c.Len())
}

func TestCollectionCapacity(t *testing.T) {
	var c Collection
	for i := 0; i < Capacity; i++ {
		require.NoError(t, c.Add(fakeCore(fmt.Sprintf("core%d", i), "bin")))
	}
	assert.ErrorIs(t, c.Add(fakeCore("extra", "bin")), ErrCollectionFull)
	assert.Equal(t, Capacity, c.Len())
}

func TestCollectionSuggest(t *testing.T) {
	var c Collection
	_ = c.Add(fakeCore("Snes9x", "sfc"))
	_ = c.Add(fakeCore("Genesis Plus GX", "md"))

	assert.Equal(t, "Snes9x", c.Suggest("snes9x 2010"))
	assert.Equal(t, "Genesis Plus GX", c.Suggest("Genesis Plus"))
	assert.Equal(t, "", c.Suggest("PCSX ReARMed"))

	var empty Collection
	assert.Equal(t, "", empty.Suggest("anything"))
}

func TestLoadDirSkipsNonCores(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken_libretro.so"), []byte("junk"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub_libretro.so"), 0o755))

	c, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Zero(t, c.Len())
	assert.NoError(t, c.Close())

	_, err = LoadDir(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

type closeCounter struct{ n int }

func (c *closeCounter) Close() error {
	c.n++
	return nil
}

func TestCollectionClose(t *testing.T) {
	cc := &closeCounter{}
	d := fakeCore("Snes9x", "sfc")
	d.module = cc
	c := &Collection{}
	require.NoError(t, c.Add(d))
	require.NoError(t, c.Close())
	assert.Equal(t, 1, cc.n)
	assert.Zero(t, c.Len())
}
