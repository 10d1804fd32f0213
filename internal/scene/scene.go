// Package scene runs a stack of screens on top of ebiten.
package scene

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/FabianRolfMatthiasNoll/hjortron/internal/input"
)

// Scene is one screen. Mount runs once per push and may fail; Unmount runs
// once when the scene leaves the stack. Tick reports whether the scene needs
// to be redrawn. The three draw layers are rendered in order.
type Scene interface {
	Mount(payload any) error
	Unmount()
	Tick() bool
	HandleEvent(ev input.Event)
	DrawBackground(dst *ebiten.Image)
	DrawForeground(dst *ebiten.Image)
	DrawOverlay(dst *ebiten.Image)
}

// Enterer is implemented by scenes that act on becoming the top of the stack.
type Enterer interface {
	Enter()
}

// Leaver is implemented by scenes that act on being covered or popped.
type Leaver interface {
	Leave()
}

func enter(s Scene) {
	if e, ok := s.(Enterer); ok {
		e.Enter()
	}
}

func leave(s Scene) {
	if l, ok := s.(Leaver); ok {
		l.Leave()
	}
}

// Base implements every Scene method as a no-op. Embed it and override what
// a screen needs.
type Base struct{}

func (Base) Mount(any) error              { return nil }
func (Base) Unmount()                     {}
func (Base) Tick() bool                   { return false }
func (Base) HandleEvent(input.Event)      {}
func (Base) DrawBackground(*ebiten.Image) {}
func (Base) DrawForeground(*ebiten.Image) {}
func (Base) DrawOverlay(*ebiten.Image)    {}

// Draw renders all three layers of s onto dst.
func Draw(s Scene, dst *ebiten.Image) {
	s.DrawBackground(dst)
	s.DrawForeground(dst)
	s.DrawOverlay(dst)
}
