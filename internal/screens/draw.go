package screens

import (
	"image"
	"image/color"
	"time"
	"unicode/utf8"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Debug font cell size.
const (
	glyphW = 6
	glyphH = 16
)

var (
	background = color.RGBA{0x18, 0x1c, 0x24, 0xff}
	highlight  = color.RGBA{0xff, 0xff, 0xff, 0x30}
	shade      = color.RGBA{0x00, 0x00, 0x00, 0xa0}
	black      = color.RGBA{0x00, 0x00, 0x00, 0xff}
)

func drawText(dst *ebiten.Image, s string, x, y int) {
	ebitenutil.DebugPrintAt(dst, s, x, y)
}

// drawCentered prints s centred in r, truncated to fit its width.
func drawCentered(dst *ebiten.Image, s string, r image.Rectangle) {
	s = truncate(s, r.Dx()/glyphW)
	x := r.Min.X + (r.Dx()-utf8.RuneCountInString(s)*glyphW)/2
	y := r.Min.Y + (r.Dy()-glyphH)/2
	drawText(dst, s, x, y)
}

func fillRect(dst *ebiten.Image, r image.Rectangle, c color.Color) {
	vector.DrawFilledRect(dst, float32(r.Min.X), float32(r.Min.Y), float32(r.Dx()), float32(r.Dy()), c, false)
}

// truncate cuts s to at most max runes, marking the cut with "...".
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	keep := max - 3
	if max <= 3 {
		keep = max
	}
	i, n := 0, 0
	for i < len(s) && n < keep {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
		n++
	}
	if max <= 3 {
		return s[:i]
	}
	return s[:i] + "..."
}

// rowRect returns row i of n equal rows filling w x h.
func rowRect(i, n, w, h int) image.Rectangle {
	rh := h / n
	return image.Rect(0, i*rh, w, (i+1)*rh)
}

const toastTime = 2 * time.Second

// toast is a short status line shown in the overlay layer.
type toast struct {
	msg   string
	until time.Time
}

func (t *toast) show(msg string, now time.Time) {
	t.msg, t.until = msg, now.Add(toastTime)
}

// expire clears the message once its time is up and reports whether it did.
func (t *toast) expire(now time.Time) bool {
	if t.msg != "" && !now.Before(t.until) {
		t.msg = ""
		return true
	}
	return false
}

func (t *toast) draw(dst *ebiten.Image) {
	if t.msg == "" {
		return
	}
	w, h := dst.Bounds().Dx(), dst.Bounds().Dy()
	r := image.Rect(0, h-glyphH-8, w, h)
	fillRect(dst, r, shade)
	drawCentered(dst, t.msg, r)
}
