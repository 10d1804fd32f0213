// Package screens implements the frontend's scenes: splash, ROM browser,
// running session and in-game menu.
package screens

import (
	"context"
	"image/color"
	"time"

	"go.uber.org/zap"

	"github.com/FabianRolfMatthiasNoll/hjortron/internal/catalog"
	"github.com/FabianRolfMatthiasNoll/hjortron/internal/core"
	"github.com/FabianRolfMatthiasNoll/hjortron/internal/logging"
	"github.com/FabianRolfMatthiasNoll/hjortron/internal/scene"
)

// Library is the read side of the catalog.
type Library interface {
	List(ctx context.Context, offset, limit int) ([]catalog.Entry, error)
	OffsetForPrefix(ctx context.Context, r rune) (int, error)
	Count(ctx context.Context) (int, error)
}

// Env holds the services shared by all screens.
type Env struct {
	Engine  *scene.Engine
	Library Library
	Cores   *core.Collection
	// Session returns the session settings for a core.
	Session   func(d *core.Descriptor) core.SessionConfig
	StatesDir string
	Fade      time.Duration
	Logger    *zap.Logger
}

func (e *Env) logger() *zap.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return logging.Logger()
}

func (e *Env) sessionConfig(d *core.Descriptor) core.SessionConfig {
	if e.Session == nil {
		return core.SessionConfig{Logger: e.Logger}
	}
	return e.Session(d)
}

// Start puts a blank bottom scene on the stack and fades to the splash.
func Start(env *Env) error {
	if err := env.Engine.Push(&Blank{}, color.RGBA{0x10, 0x10, 0x18, 0xff}); err != nil {
		return err
	}
	return env.Engine.Start(scene.Transition{
		Kind:     scene.Crossfade,
		Duration: env.Fade,
		Dest:     NewSplash(env),
	})
}
