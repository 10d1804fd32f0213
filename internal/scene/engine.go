package scene

import (
	"errors"
	"fmt"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"github.com/FabianRolfMatthiasNoll/hjortron/internal/input"
	"github.com/FabianRolfMatthiasNoll/hjortron/internal/logging"
)

// StackSize is the maximum number of scenes on the stack.
const StackSize = 5

var (
	ErrStackFull   = errors.New("scene: stack full")
	ErrStackBottom = errors.New("scene: cannot pop the bottom scene")
	ErrEmptyStack  = errors.New("scene: stack is empty")
)

// Options configure an Engine. Zero values are replaced by defaults.
type Options struct {
	Title      string
	Width      int
	Height     int
	Scale      int
	Fullscreen bool

	Source   input.Source
	Now      func() time.Time
	NewImage func(w, h int) *ebiten.Image
	Logger   *zap.Logger
}

// Engine owns the scene stack and implements ebiten.Game. Only the top scene
// is ticked, drawn and sent input.
type Engine struct {
	opts  Options
	stack []Scene
	dirty bool
	quit  bool
	log   *zap.Logger
}

func NewEngine(opts Options) *Engine {
	if opts.Width <= 0 {
		opts.Width = 640
	}
	if opts.Height <= 0 {
		opts.Height = 480
	}
	if opts.Scale <= 0 {
		opts.Scale = 1
	}
	if opts.Source == nil {
		opts.Source = input.NewEbitenSource()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewImage == nil {
		opts.NewImage = ebiten.NewImage
	}
	log := opts.Logger
	if log == nil {
		log = logging.Logger()
	}
	return &Engine{opts: opts, log: log, stack: make([]Scene, 0, StackSize)}
}

// Push mounts s with payload and makes it the top of the stack. The covered
// scene is left before s is entered. A failed mount leaves the stack as it was.
func (e *Engine) Push(s Scene, payload any) error {
	if len(e.stack) == StackSize {
		return ErrStackFull
	}
	if err := s.Mount(payload); err != nil {
		return fmt.Errorf("scene: mount %T: %w", s, err)
	}
	e.place(s)
	enter(s)
	return nil
}

// place puts an already mounted scene on top without entering it.
func (e *Engine) place(s Scene) {
	if top := e.Top(); top != nil {
		leave(top)
	}
	e.stack = append(e.stack, s)
	e.dirty = true
	e.log.Debug("scene pushed", zap.String("scene", fmt.Sprintf("%T", s)), zap.Int("depth", len(e.stack)))
}

// Pop leaves and unmounts the top scene and enters the one below it. The
// bottom scene is never popped.
func (e *Engine) Pop() error {
	if len(e.stack) <= 1 {
		return ErrStackBottom
	}
	top := e.stack[len(e.stack)-1]
	e.stack = e.stack[:len(e.stack)-1]
	leave(top)
	top.Unmount()
	enter(e.Top())
	e.dirty = true
	e.log.Debug("scene popped", zap.String("scene", fmt.Sprintf("%T", top)), zap.Int("depth", len(e.stack)))
	return nil
}

// Start pushes a transition to t.Dest. A nil t.Source means the current top.
func (e *Engine) Start(t Transition) error {
	if t.Source == nil {
		t.Source = e.Top()
	}
	if t.Source == nil {
		return ErrEmptyStack
	}
	return e.Push(&fader{engine: e, t: t}, nil)
}

// handOff replaces a finished transition with its destination, which is
// already mounted and entered, so neither Mount nor Enter runs again.
func (e *Engine) handOff(f *fader) {
	if e.Top() != f {
		return
	}
	e.stack = e.stack[:len(e.stack)-1]
	f.handed = true
	leave(f)
	f.Unmount()
	if f.t.Replace && len(e.stack) > 1 && e.Top() == f.t.Source {
		e.stack = e.stack[:len(e.stack)-1]
		f.t.Source.Unmount()
	}
	e.stack = append(e.stack, f.t.Dest)
	e.dirty = true
	e.log.Debug("transition done", zap.String("scene", fmt.Sprintf("%T", f.t.Dest)), zap.Int("depth", len(e.stack)))
}

// Top returns the active scene, or nil before the first push.
func (e *Engine) Top() Scene {
	if len(e.stack) == 0 {
		return nil
	}
	return e.stack[len(e.stack)-1]
}

func (e *Engine) Depth() int { return len(e.stack) }

// Size returns the logical screen size.
func (e *Engine) Size() (int, int) { return e.opts.Width, e.opts.Height }

func (e *Engine) Now() time.Time { return e.opts.Now() }

func (e *Engine) NewImage(w, h int) *ebiten.Image { return e.opts.NewImage(w, h) }

func (e *Engine) Logger() *zap.Logger { return e.log }

// Invalidate forces a redraw on the next frame.
func (e *Engine) Invalidate() { e.dirty = true }

// Quit ends the loop after the current update.
func (e *Engine) Quit() { e.quit = true }

// Update drains input, routes it to the top scene and ticks it.
func (e *Engine) Update() error {
	for _, ev := range e.opts.Source.Poll() {
		if ev.Kind == input.Quit {
			e.quit = true
			continue
		}
		if ev.Repeat {
			continue
		}
		if top := e.Top(); top != nil {
			top.HandleEvent(ev)
		}
	}
	if e.quit {
		return ebiten.Termination
	}
	if top := e.Top(); top != nil && top.Tick() {
		e.dirty = true
	}
	if e.quit {
		return ebiten.Termination
	}
	return nil
}

// Draw renders the top scene when it changed. The screen is not cleared
// between frames, so an unchanged scene keeps its last image.
func (e *Engine) Draw(screen *ebiten.Image) {
	if !e.dirty {
		return
	}
	e.dirty = false
	screen.Clear()
	if top := e.Top(); top != nil {
		Draw(top, screen)
	}
}

func (e *Engine) Layout(outsideWidth, outsideHeight int) (int, int) {
	return e.opts.Width, e.opts.Height
}

// Run opens the window and blocks until the user quits. The stack is torn
// down before Run returns.
func (e *Engine) Run() error {
	ebiten.SetWindowTitle(e.opts.Title)
	ebiten.SetWindowSize(e.opts.Width*e.opts.Scale, e.opts.Height*e.opts.Scale)
	ebiten.SetFullscreen(e.opts.Fullscreen)
	ebiten.SetScreenClearedEveryFrame(false)
	defer e.Shutdown()
	return ebiten.RunGame(e)
}

// Shutdown pops every scene and unmounts the bottom one.
func (e *Engine) Shutdown() {
	for len(e.stack) > 1 {
		_ = e.Pop()
	}
	if top := e.Top(); top != nil {
		leave(top)
		top.Unmount()
		e.stack = e.stack[:0]
	}
}
