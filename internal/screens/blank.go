package screens

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/FabianRolfMatthiasNoll/hjortron/internal/scene"
)

// Blank fills the screen with one colour. It sits at the bottom of the stack.
type Blank struct {
	scene.Base
	color color.Color
	dirty bool
}

// Mount takes the fill colour as payload; anything else means black.
func (b *Blank) Mount(payload any) error {
	b.color = color.Black
	if c, ok := payload.(color.Color); ok {
		b.color = c
	}
	return nil
}

func (b *Blank) Enter() { b.dirty = true }

func (b *Blank) Tick() bool {
	d := b.dirty
	b.dirty = false
	return d
}

func (b *Blank) DrawBackground(dst *ebiten.Image) { dst.Fill(b.color) }
