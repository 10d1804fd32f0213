package video

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FabianRolfMatthiasNoll/hjortron/internal/libretro"
)

func TestResizeOnlyOnDimensionChange(t *testing.T) {
	var f Frame
	assert.True(t, f.Resize(4, 2))
	assert.False(t, f.Resize(4, 2))
	assert.True(t, f.Resize(8, 2))
	assert.Equal(t, 2, f.Reallocs())
	assert.Len(t, f.Pix, 8*2*4)
}

func TestBlitXRGB8888HonoursPitch(t *testing.T) {
	// 2x2 frame, pitch 12 (one padding pixel per row).
	src := []byte{
		0x10, 0x20, 0x30, 0x00, 0x11, 0x21, 0x31, 0x00, 0xEE, 0xEE, 0xEE, 0xEE,
		0x12, 0x22, 0x32, 0x00, 0x13, 0x23, 0x33, 0x00, 0xEE, 0xEE, 0xEE, 0xEE,
	}
	var f Frame
	require.NoError(t, f.Blit(src, 2, 2, 12, libretro.PixelXRGB8888))
	want := []byte{
		0x30, 0x20, 0x10, 0xFF, 0x31, 0x21, 0x11, 0xFF,
		0x32, 0x22, 0x12, 0xFF, 0x33, 0x23, 0x13, 0xFF,
	}
	if string(f.Pix) != string(want) {
		t.Fatalf("got %x, want %x", f.Pix, want)
	}
}

func TestBlitRGB565(t *testing.T) {
	// pure red, pure green, pure blue, white
	src := []byte{0x00, 0xF8, 0xE0, 0x07, 0x1F, 0x00, 0xFF, 0xFF}
	var f Frame
	require.NoError(t, f.Blit(src, 4, 1, 8, libretro.PixelRGB565))
	want := []byte{
		0xFF, 0x00, 0x00, 0xFF,
		0x00, 0xFF, 0x00, 0xFF,
		0x00, 0x00, 0xFF, 0xFF,
		0xFF, 0xFF, 0xFF, 0xFF,
	}
	assert.Equal(t, want, f.Pix)
}

func TestBlit0RGB1555(t *testing.T) {
	src := []byte{0x00, 0x7C, 0xE0, 0x03, 0x1F, 0x00}
	var f Frame
	require.NoError(t, f.Blit(src, 3, 1, 6, libretro.Pixel0RGB1555))
	want := []byte{
		0xFF, 0x00, 0x00, 0xFF,
		0x00, 0xFF, 0x00, 0xFF,
		0x00, 0x00, 0xFF, 0xFF,
	}
	assert.Equal(t, want, f.Pix)
}

func TestBlitRejectsShortInput(t *testing.T) {
	var f Frame
	assert.Error(t, f.Blit(make([]byte, 4), 2, 1, 4, libretro.PixelXRGB8888), "pitch too short")
	assert.Error(t, f.Blit(make([]byte, 8), 2, 2, 8, libretro.PixelXRGB8888), "buffer too short")
	assert.Zero(t, f.Reallocs())
}

func TestCRC32AndPNG(t *testing.T) {
	var a, b Frame
	src := make([]byte, 4*4)
	require.NoError(t, a.Blit(src, 2, 2, 8, libretro.PixelXRGB8888))
	require.NoError(t, b.Blit(src, 2, 2, 8, libretro.PixelXRGB8888))
	assert.Equal(t, a.CRC32(), b.CRC32())
	src[0] = 1
	require.NoError(t, b.Blit(src, 2, 2, 8, libretro.PixelXRGB8888))
	assert.NotEqual(t, a.CRC32(), b.CRC32())

	path := filepath.Join(t.TempDir(), "f.png")
	require.NoError(t, b.SavePNG(path))
	fh, err := os.Open(path)
	require.NoError(t, err)
	defer fh.Close()
	img, err := png.Decode(fh)
	require.NoError(t, err)
	assert.Equal(t, 2, img.Bounds().Dx())
}
