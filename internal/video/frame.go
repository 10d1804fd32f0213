// Package video holds the host side framebuffer cores render into.
package video

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"image"
	"image/png"
	"os"

	"github.com/FabianRolfMatthiasNoll/hjortron/internal/libretro"
)

// Frame is an RGBA framebuffer that follows the core's output size.
type Frame struct {
	Width  int
	Height int
	Pix    []byte // RGBA, Width*4 bytes per row

	reallocs int
}

// Resize reallocates the buffer when the dimensions change and reports
// whether it did. Same-size frames reuse the buffer.
func (f *Frame) Resize(w, h int) bool {
	if w == f.Width && h == f.Height && f.Pix != nil {
		return false
	}
	f.Width, f.Height = w, h
	f.Pix = make([]byte, w*h*4)
	f.reallocs++
	return true
}

// Reallocs counts buffer reallocations since the frame was created.
func (f *Frame) Reallocs() int { return f.reallocs }

// BytesPerPixel returns the source pixel size of a core pixel format.
func BytesPerPixel(format libretro.PixelFormat) int {
	if format == libretro.PixelXRGB8888 {
		return 4
	}
	return 2
}

// Blit converts one core frame into the buffer. Rows in src are pitch bytes
// apart; pitch may exceed the visible row width.
func (f *Frame) Blit(src []byte, w, h, pitch int, format libretro.PixelFormat) error {
	bpp := BytesPerPixel(format)
	if pitch < w*bpp {
		return fmt.Errorf("video: pitch %d shorter than row of %d pixels", pitch, w)
	}
	if len(src) < pitch*(h-1)+w*bpp {
		return fmt.Errorf("video: source holds %d bytes, need %d", len(src), pitch*(h-1)+w*bpp)
	}
	f.Resize(w, h)

	for y := 0; y < h; y++ {
		row := src[y*pitch:]
		out := f.Pix[y*w*4 : (y+1)*w*4]
		switch format {
		case libretro.PixelXRGB8888:
			for x := 0; x < w; x++ {
				p := row[x*4:]
				out[x*4+0] = p[2]
				out[x*4+1] = p[1]
				out[x*4+2] = p[0]
				out[x*4+3] = 0xFF
			}
		case libretro.PixelRGB565:
			for x := 0; x < w; x++ {
				v := binary.LittleEndian.Uint16(row[x*2:])
				r, g, b := byte(v>>11)&0x1F, byte(v>>5)&0x3F, byte(v)&0x1F
				out[x*4+0] = r<<3 | r>>2
				out[x*4+1] = g<<2 | g>>4
				out[x*4+2] = b<<3 | b>>2
				out[x*4+3] = 0xFF
			}
		default: // 0RGB1555
			for x := 0; x < w; x++ {
				v := binary.LittleEndian.Uint16(row[x*2:])
				r, g, b := byte(v>>10)&0x1F, byte(v>>5)&0x1F, byte(v)&0x1F
				out[x*4+0] = r<<3 | r>>2
				out[x*4+1] = g<<3 | g>>2
				out[x*4+2] = b<<3 | b>>2
				out[x*4+3] = 0xFF
			}
		}
	}
	return nil
}

// CRC32 checksums the visible pixels.
func (f *Frame) CRC32() uint32 { return crc32.ChecksumIEEE(f.Pix) }

// Image returns a copy of the frame as an image.RGBA.
func (f *Frame) Image() *image.RGBA {
	img := &image.RGBA{
		Pix:    make([]byte, len(f.Pix)),
		Stride: 4 * f.Width,
		Rect:   image.Rect(0, 0, f.Width, f.Height),
	}
	copy(img.Pix, f.Pix)
	return img
}

// SavePNG writes the frame to path.
func (f *Frame) SavePNG(path string) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()
	return png.Encode(out, f.Image())
}
