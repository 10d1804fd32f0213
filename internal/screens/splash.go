package screens

import (
	"image"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"github.com/FabianRolfMatthiasNoll/hjortron/internal/input"
	"github.com/FabianRolfMatthiasNoll/hjortron/internal/scene"
)

// SplashTime is how long the splash stays before the browser fades in.
const SplashTime = 3 * time.Second

var logo = []string{
	" _     _            _                   ",
	"| |__ (_) ___  _ __| |_ _ __ ___  _ __  ",
	"| '_ \\| |/ _ \\| '__| __| '__/ _ \\| '_ \\ ",
	"| | | | | (_) | |  | |_| | | (_) | | | |",
	"|_| |_|/ |\\___/|_|   \\__|_|  \\___/|_| |_|",
	"     |__/                               ",
}

type Splash struct {
	scene.Base
	env   *Env
	start time.Time
	dirty bool
	done  bool
}

func NewSplash(env *Env) *Splash { return &Splash{env: env} }

func (s *Splash) Enter() {
	if s.start.IsZero() {
		s.start = s.env.Engine.Now()
	}
	s.dirty = true
}

func (s *Splash) HandleEvent(ev input.Event) {
	if ev.Kind == input.Press {
		s.next()
	}
}

func (s *Splash) Tick() bool {
	if !s.done && s.env.Engine.Now().Sub(s.start) >= SplashTime {
		s.next()
	}
	d := s.dirty
	s.dirty = false
	return d
}

// next replaces the splash with the browser. Only the active splash may do
// so; while it is part of a running transition it waits.
func (s *Splash) next() {
	if s.done || s.env.Engine.Top() != scene.Scene(s) {
		return
	}
	s.done = true
	err := s.env.Engine.Start(scene.Transition{
		Kind:     scene.Crossfade,
		Duration: s.env.Fade,
		Dest:     NewBrowser(s.env),
		Replace:  true,
	})
	if err != nil {
		s.env.logger().Error("cannot open browser", zap.Error(err))
		s.done = false
	}
}

func (s *Splash) DrawBackground(dst *ebiten.Image) { dst.Fill(background) }

func (s *Splash) DrawForeground(dst *ebiten.Image) {
	w, h := dst.Bounds().Dx(), dst.Bounds().Dy()
	top := (h - len(logo)*glyphH) / 2
	for i, line := range logo {
		drawCentered(dst, line, image.Rect(0, top+i*glyphH, w, top+(i+1)*glyphH))
	}
}
