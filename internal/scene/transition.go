package scene

import (
	"errors"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/FabianRolfMatthiasNoll/hjortron/internal/input"
)

type Kind int

const (
	// Cut shows the source until the duration has passed, then the destination.
	Cut Kind = iota
	// Crossfade blends the source out and the destination in.
	Crossfade
)

// Transition describes a timed hand-off from Source to Dest. When Source is
// not the scene the transition covers, it is mounted with SourcePayload for
// the duration of the transition. Replace also removes the covered source
// from the stack once Dest takes over.
type Transition struct {
	Kind          Kind
	Duration      time.Duration
	Source        Scene
	SourcePayload any
	Dest          Scene
	DestPayload   any
	Replace       bool
}

var errNoDest = errors.New("scene: transition without destination")

// fader is the scene that renders a Transition.
type fader struct {
	engine *Engine
	t      Transition

	ownsSource bool
	handed     bool
	started    bool
	start      time.Time
	srcAlpha   float32
	dstAlpha   float32
	src, dst   *ebiten.Image
}

// Mount pre-mounts the destination, so a destination that fails to start
// aborts the push and the stack is left as it was.
func (f *fader) Mount(any) error {
	if f.t.Dest == nil {
		return errNoDest
	}
	if f.t.Source != f.engine.Top() {
		if err := f.t.Source.Mount(f.t.SourcePayload); err != nil {
			return err
		}
		f.ownsSource = true
	}
	if err := f.t.Dest.Mount(f.t.DestPayload); err != nil {
		if f.ownsSource {
			f.t.Source.Unmount()
		}
		return err
	}
	f.srcAlpha, f.dstAlpha = 1, 0
	return nil
}

func (f *fader) Enter() {
	w, h := f.engine.Size()
	f.src = f.engine.NewImage(w, h)
	f.dst = f.engine.NewImage(w, h)
	f.started = false
	enter(f.t.Source)
	enter(f.t.Dest)
}

func (f *fader) Leave() {
	leave(f.t.Source)
	if f.src != nil {
		f.src.Deallocate()
		f.dst.Deallocate()
		f.src, f.dst = nil, nil
	}
}

func (f *fader) Unmount() {
	if f.ownsSource {
		f.t.Source.Unmount()
	}
	if !f.handed {
		leave(f.t.Dest)
		f.t.Dest.Unmount()
	}
}

func (f *fader) HandleEvent(input.Event) {}

func (f *fader) Tick() bool {
	f.t.Source.Tick()
	f.t.Dest.Tick()

	now := f.engine.Now()
	if !f.started {
		f.start, f.started = now, true
	}
	elapsed := now.Sub(f.start)
	if elapsed >= f.t.Duration {
		f.engine.handOff(f)
		return true
	}
	switch f.t.Kind {
	case Crossfade:
		a := float32(elapsed) / float32(f.t.Duration)
		f.srcAlpha, f.dstAlpha = 1-a, a
	default:
		f.srcAlpha, f.dstAlpha = 1, 0
	}
	return true
}

// Opacity returns the current source and destination opacity in 0..255.
func (f *fader) Opacity() (src, dst uint8) {
	return uint8(255 * f.srcAlpha), uint8(255 * f.dstAlpha)
}

func (f *fader) DrawBackground(dst *ebiten.Image) {
	if f.src == nil {
		return
	}
	f.src.Clear()
	Draw(f.t.Source, f.src)
	f.dst.Clear()
	Draw(f.t.Dest, f.dst)

	op := &ebiten.DrawImageOptions{}
	op.ColorScale.ScaleAlpha(f.srcAlpha)
	dst.DrawImage(f.src, op)
	op = &ebiten.DrawImageOptions{}
	op.ColorScale.ScaleAlpha(f.dstAlpha)
	dst.DrawImage(f.dst, op)
}

func (f *fader) DrawForeground(*ebiten.Image) {}
func (f *fader) DrawOverlay(*ebiten.Image)    {}
