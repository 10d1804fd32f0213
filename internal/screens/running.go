package screens

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"github.com/FabianRolfMatthiasNoll/hjortron/internal/catalog"
	"github.com/FabianRolfMatthiasNoll/hjortron/internal/core"
	"github.com/FabianRolfMatthiasNoll/hjortron/internal/input"
	"github.com/FabianRolfMatthiasNoll/hjortron/internal/scene"
)

var errNoEntry = errors.New("screens: running screen needs a catalog entry")

// MissingCoreError reports an entry whose core is not loaded.
type MissingCoreError struct {
	Name       string
	Suggestion string
}

func (e *MissingCoreError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("core %q not loaded (closest: %q)", e.Name, e.Suggestion)
	}
	return fmt.Sprintf("core %q not loaded", e.Name)
}

// Running owns one core session and runs one frame per tick.
type Running struct {
	scene.Base
	env *Env

	entry   catalog.Entry
	session *core.Session
	in      input.Snapshot
	tex     *ebiten.Image
	uploads int
	allocs  int
}

func NewRunning(env *Env) *Running { return &Running{env: env} }

// Mount starts the session for the catalog.Entry payload.
func (r *Running) Mount(payload any) error {
	e, ok := payload.(catalog.Entry)
	if !ok {
		return errNoEntry
	}
	d := r.env.Cores.Find(e.Core)
	if d == nil {
		return &MissingCoreError{Name: e.Core, Suggestion: r.env.Cores.Suggest(e.Core)}
	}
	s := core.NewSession(d, r.env.sessionConfig(d))
	if err := s.Start(e.Path); err != nil {
		_ = s.Close()
		return err
	}
	r.entry, r.session = e, s
	r.in = input.Snapshot{}
	return nil
}

func (r *Running) Unmount() {
	if r.session == nil {
		return
	}
	if err := r.session.Stop(); err != nil {
		r.env.logger().Warn("stop session", zap.Error(err))
	}
	_ = r.session.Close()
	r.session = nil
	if r.tex != nil {
		r.tex.Deallocate()
		r.tex = nil
	}
}

func (r *Running) Enter() {
	if sink := r.session.Sink(); sink != nil {
		sink.Resume()
	}
}

// Leave pauses audio and releases held buttons so they do not stick.
func (r *Running) Leave() {
	if sink := r.session.Sink(); sink != nil {
		sink.Pause()
	}
	r.in = input.Snapshot{}
}

func (r *Running) Session() *core.Session { return r.session }

func (r *Running) Entry() catalog.Entry { return r.entry }

func (r *Running) HandleEvent(ev input.Event) {
	if ev.Kind == input.Press && ev.Button == input.ButtonBack {
		if sink := r.session.Sink(); sink != nil {
			sink.Drain()
		}
		if err := r.env.Engine.Push(NewGameMenu(r.env), r); err != nil {
			r.env.logger().Error("open menu", zap.Error(err))
		}
		return
	}
	r.in.Apply(ev)
}

func (r *Running) Tick() bool {
	err := r.session.RunFrame(r.in)
	switch {
	case errors.Is(err, core.ErrShutdown):
		r.env.logger().Info("core requested shutdown", zap.String("content", r.entry.Path))
		if r.env.Engine.Top() == scene.Scene(r) {
			_ = r.env.Engine.Pop()
		}
	case err != nil:
		r.env.logger().Warn("run frame", zap.Error(err))
	}
	return true
}

// upload copies the session frame into the texture, reallocating it only when
// the core changed the frame size.
func (r *Running) upload() *ebiten.Image {
	f := r.session.Frame()
	if f.Width == 0 || f.Height == 0 {
		return nil
	}
	if r.tex == nil || r.tex.Bounds().Dx() != f.Width || r.tex.Bounds().Dy() != f.Height {
		if r.tex != nil {
			r.tex.Deallocate()
		}
		r.tex = r.env.Engine.NewImage(f.Width, f.Height)
		r.allocs++
	}
	r.tex.WritePixels(f.Pix)
	r.uploads++
	return r.tex
}

func (r *Running) DrawBackground(dst *ebiten.Image) {
	dst.Fill(black)
	tex := r.upload()
	if tex == nil {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM = frameGeoM(tex.Bounds().Size(), dst.Bounds().Size(),
		float64(r.session.AVInfo().Geometry.AspectRatio), r.session.Rotation())
	op.Filter = ebiten.FilterNearest
	dst.DrawImage(tex, op)
}

// frameGeoM places a core frame of size src centred on a screen of size dst.
// The frame is stretched to aspect when one is set, turned rotation quarter
// turns counter-clockwise and scaled to fit.
func frameGeoM(src, dst image.Point, aspect float64, rotation uint32) ebiten.GeoM {
	tw, th := float64(src.X), float64(src.Y)
	fw, fh := tw, th
	if aspect > 0 {
		fw = fh * aspect
	}
	rot := rotation % 4
	dw, dh := fw, fh
	if rot%2 == 1 {
		dw, dh = fh, fw
	}
	sw, sh := float64(dst.X), float64(dst.Y)
	scale := min(sw/dw, sh/dh)

	var g ebiten.GeoM
	g.Translate(-tw/2, -th/2)
	g.Scale(fw/tw, 1)
	g.Rotate(-float64(rot) * math.Pi / 2)
	g.Scale(scale, scale)
	g.Translate(sw/2, sh/2)
	return g
}

func (r *Running) DrawOverlay(dst *ebiten.Image) {
	if msg := r.session.Message(); msg != "" {
		drawText(dst, msg, 4, 2)
	}
}
