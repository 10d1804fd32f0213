package screens

import (
	"errors"
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"github.com/FabianRolfMatthiasNoll/hjortron/internal/core"
	"github.com/FabianRolfMatthiasNoll/hjortron/internal/input"
	"github.com/FabianRolfMatthiasNoll/hjortron/internal/scene"
)

type menuItem int

const (
	itemBack menuItem = iota
	itemQuit
	itemRestart
	itemLoad
	itemSave
)

var menuLabels = [...]string{
	itemBack:    "Back to game",
	itemQuit:    "Quit game",
	itemRestart: "Restart game",
	itemLoad:    "Load game",
	itemSave:    "Save game",
}

var errNoSession = errors.New("screens: menu needs a running session")

// GameMenu is the in-game menu. It draws the paused game underneath.
// Failed actions are shown as a toast and the session carries on.
type GameMenu struct {
	scene.Base
	env *Env

	game  *Running
	idx   int
	dirty bool
	toast toast
}

func NewGameMenu(env *Env) *GameMenu { return &GameMenu{env: env} }

// Mount takes the *Running screen as payload.
func (m *GameMenu) Mount(payload any) error {
	r, ok := payload.(*Running)
	if !ok || r.session == nil {
		return errNoSession
	}
	m.game, m.idx = r, 0
	return nil
}

func (m *GameMenu) Enter() { m.dirty = true }

func (m *GameMenu) statePath() string {
	return core.SlotPath(m.env.StatesDir, m.game.entry.ID)
}

func (m *GameMenu) HandleEvent(ev input.Event) {
	if ev.Kind != input.Press {
		return
	}
	switch ev.Button {
	case input.ButtonUp:
		if m.idx > 0 {
			m.idx--
			m.dirty = true
		}
	case input.ButtonDown:
		if m.idx < len(menuLabels)-1 {
			m.idx++
			m.dirty = true
		}
	case input.ButtonBack, input.ButtonB:
		m.back()
	case input.ButtonA, input.ButtonStart:
		m.activate(menuItem(m.idx))
	}
}

func (m *GameMenu) back() {
	if err := m.env.Engine.Pop(); err != nil {
		m.env.logger().Error("close menu", zap.Error(err))
	}
}

func (m *GameMenu) activate(item menuItem) {
	s := m.game.session
	log := m.env.logger()
	switch item {
	case itemBack:
		m.back()
	case itemQuit:
		m.back()
		if err := m.env.Engine.Pop(); err != nil {
			log.Error("close game", zap.Error(err))
		}
	case itemRestart:
		if err := s.Reset(); err != nil {
			m.fail("Restart failed", err)
			return
		}
		m.back()
	case itemSave:
		if err := s.SaveState(m.statePath()); err != nil {
			m.fail("Save failed", err)
			return
		}
		log.Info("state saved", zap.String("path", m.statePath()))
		m.back()
	case itemLoad:
		if err := s.LoadState(m.statePath()); err != nil {
			m.fail("Load failed", err)
			return
		}
		log.Info("state loaded", zap.String("path", m.statePath()))
		m.back()
	}
}

func (m *GameMenu) fail(msg string, err error) {
	m.env.logger().Warn(msg, zap.Error(err))
	switch {
	case errors.Is(err, core.ErrNoSerialize):
		msg += ": not supported by core"
	case errors.Is(err, core.ErrStateSize):
		msg += ": state does not match"
	}
	m.toast.show(msg, m.env.Engine.Now())
	m.dirty = true
}

func (m *GameMenu) Tick() bool {
	if m.toast.expire(m.env.Engine.Now()) {
		m.dirty = true
	}
	d := m.dirty
	m.dirty = false
	return d
}

func (m *GameMenu) DrawBackground(dst *ebiten.Image) {
	m.game.DrawBackground(dst)
	fillRect(dst, dst.Bounds(), shade)
}

func (m *GameMenu) DrawForeground(dst *ebiten.Image) {
	w, h := dst.Bounds().Dx(), dst.Bounds().Dy()
	rowH := glyphH + 8
	top := (h - len(menuLabels)*rowH) / 2
	for i, label := range menuLabels {
		r := image.Rect(0, top+i*rowH, w, top+(i+1)*rowH)
		if i == m.idx {
			fillRect(dst, r, highlight)
		}
		drawCentered(dst, label, r)
	}
}

func (m *GameMenu) DrawOverlay(dst *ebiten.Image) { m.toast.draw(dst) }
