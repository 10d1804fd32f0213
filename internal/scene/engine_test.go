package scene

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/FabianRolfMatthiasNoll/hjortron/internal/input"
)

// probe records its lifecycle calls into a shared log.
type probe struct {
	name     string
	log      *[]string
	failMnt  bool
	changed  bool
	events   []input.Event
	mounted  int
	entered  bool
	onTick   func()
	onEvent  func(input.Event)
	payloads []any
}

func newProbe(name string, log *[]string) *probe { return &probe{name: name, log: log} }

func (p *probe) add(call string) { *p.log = append(*p.log, p.name+"."+call) }

func (p *probe) Mount(payload any) error {
	if p.failMnt {
		p.add("mount-failed")
		return errors.New("boom")
	}
	p.add("mount")
	p.mounted++
	p.payloads = append(p.payloads, payload)
	return nil
}

func (p *probe) Unmount() { p.add("unmount"); p.mounted-- }
func (p *probe) Enter()   { p.add("enter"); p.entered = true }
func (p *probe) Leave()   { p.add("leave"); p.entered = false }

func (p *probe) Tick() bool {
	if p.onTick != nil {
		p.onTick()
	}
	return p.changed
}

func (p *probe) HandleEvent(ev input.Event) {
	p.events = append(p.events, ev)
	if p.onEvent != nil {
		p.onEvent(ev)
	}
}

func (p *probe) DrawBackground(*ebiten.Image) { p.add("back") }
func (p *probe) DrawForeground(*ebiten.Image) { p.add("front") }
func (p *probe) DrawOverlay(*ebiten.Image)    { p.add("overlay") }

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestEngine(q *input.Queue, c *clock) *Engine {
	if c == nil {
		c = &clock{t: time.Unix(0, 0)}
	}
	return NewEngine(Options{Width: 64, Height: 48, Source: q, Now: c.now})
}

func TestPushPopLifecycle(t *testing.T) {
	var log []string
	e := newTestEngine(&input.Queue{}, nil)
	a, b := newProbe("a", &log), newProbe("b", &log)

	require.NoError(t, e.Push(a, nil))
	require.NoError(t, e.Push(b, "payload"))
	assert.Equal(t, []any{"payload"}, b.payloads)
	assert.Equal(t, Scene(b), e.Top())

	require.NoError(t, e.Pop())
	assert.Equal(t, []string{
		"a.mount", "a.enter",
		"b.mount", "a.leave", "b.enter",
		"b.leave", "b.unmount", "a.enter",
	}, log)
	assert.ErrorIs(t, e.Pop(), ErrStackBottom)
	assert.Equal(t, 1, e.Depth())
}

func TestPushFull(t *testing.T) {
	var log []string
	e := newTestEngine(&input.Queue{}, nil)
	for i := 0; i < StackSize; i++ {
		require.NoError(t, e.Push(newProbe(fmt.Sprint(i), &log), nil))
	}
	extra := newProbe("extra", &log)
	assert.ErrorIs(t, e.Push(extra, nil), ErrStackFull)
	assert.Equal(t, 0, extra.mounted, "a rejected scene is never mounted")
}

func TestPushMountFailureLeavesStack(t *testing.T) {
	var log []string
	e := newTestEngine(&input.Queue{}, nil)
	a := newProbe("a", &log)
	require.NoError(t, e.Push(a, nil))
	bad := newProbe("bad", &log)
	bad.failMnt = true

	assert.Error(t, e.Push(bad, nil))
	assert.Equal(t, Scene(a), e.Top())
	assert.True(t, a.entered)
	assert.Equal(t, []string{"a.mount", "a.enter", "bad.mount-failed"}, log)
}

func TestUpdateRoutesToTopAndFiltersRepeats(t *testing.T) {
	var log []string
	q := &input.Queue{}
	e := newTestEngine(q, nil)
	a, b := newProbe("a", &log), newProbe("b", &log)
	require.NoError(t, e.Push(a, nil))
	require.NoError(t, e.Push(b, nil))

	q.Push(
		input.Event{Kind: input.Press, Button: input.ButtonA},
		input.Event{Kind: input.Press, Button: input.ButtonA, Repeat: true},
		input.Event{Kind: input.Release, Button: input.ButtonA},
	)
	require.NoError(t, e.Update())
	assert.Empty(t, a.events)
	assert.Len(t, b.events, 2)
}

func TestEventCanPopTheReceiver(t *testing.T) {
	var log []string
	q := &input.Queue{}
	e := newTestEngine(q, nil)
	a, b := newProbe("a", &log), newProbe("b", &log)
	require.NoError(t, e.Push(a, nil))
	require.NoError(t, e.Push(b, nil))
	b.onEvent = func(input.Event) { _ = e.Pop() }

	q.Push(input.Event{Kind: input.Press, Button: input.ButtonBack}, input.Event{Kind: input.Press, Button: input.ButtonA})
	require.NoError(t, e.Update())
	assert.Len(t, b.events, 1)
	assert.Len(t, a.events, 1, "events after the pop go to the exposed scene")
}

func TestQuitTerminates(t *testing.T) {
	q := &input.Queue{}
	e := newTestEngine(q, nil)
	var log []string
	require.NoError(t, e.Push(newProbe("a", &log), nil))

	q.Push(input.Event{Kind: input.Quit})
	assert.ErrorIs(t, e.Update(), ebiten.Termination)

	e2 := newTestEngine(&input.Queue{}, nil)
	p := newProbe("b", &log)
	p.onTick = e2.Quit
	require.NoError(t, e2.Push(p, nil))
	assert.ErrorIs(t, e2.Update(), ebiten.Termination)
}

func TestDrawOnlyWhenChanged(t *testing.T) {
	var log []string
	e := newTestEngine(&input.Queue{}, nil)
	a := newProbe("a", &log)
	require.NoError(t, e.Push(a, nil))
	screen := ebiten.NewImage(64, 48)

	log = nil
	e.Draw(screen)
	assert.Equal(t, []string{"a.back", "a.front", "a.overlay"}, log, "a push marks the screen dirty")

	log = nil
	require.NoError(t, e.Update())
	e.Draw(screen)
	assert.Empty(t, log, "unchanged tick draws nothing")

	a.changed = true
	require.NoError(t, e.Update())
	e.Draw(screen)
	assert.Equal(t, []string{"a.back", "a.front", "a.overlay"}, log)
}

func TestLayout(t *testing.T) {
	e := newTestEngine(&input.Queue{}, nil)
	w, h := e.Layout(1920, 1080)
	assert.Equal(t, 64, w)
	assert.Equal(t, 48, h)
}

func TestShutdownUnmountsEverything(t *testing.T) {
	var log []string
	e := newTestEngine(&input.Queue{}, nil)
	a, b, c := newProbe("a", &log), newProbe("b", &log), newProbe("c", &log)
	for _, p := range []*probe{a, b, c} {
		require.NoError(t, e.Push(p, nil))
	}
	e.Shutdown()
	assert.Equal(t, 0, e.Depth())
	for _, p := range []*probe{a, b, c} {
		assert.Equal(t, 0, p.mounted, p.name)
		assert.False(t, p.entered, p.name)
	}
}

// Random push/pop sequences keep the bottom scene, never exceed the
// capacity, unmount every scene exactly once and alternate enter/leave.
func TestStackProperties(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		var log []string
		e := newTestEngine(&input.Queue{}, nil)
		bottom := newProbe("bottom", &log)
		if err := e.Push(bottom, nil); err != nil {
			rt.Fatal(err)
		}
		var all []*probe
		ops := rapid.SliceOf(rapid.IntRange(0, 2)).Draw(rt, "ops")
		for i, op := range ops {
			switch op {
			case 0, 1:
				p := newProbe(fmt.Sprint(i), &log)
				p.failMnt = op == 1 && i%3 == 0
				err := e.Push(p, nil)
				switch {
				case p.failMnt:
					if err == nil {
						rt.Fatalf("push with failing mount succeeded")
					}
				case e.Depth() <= StackSize && err == nil:
					all = append(all, p)
				case !errors.Is(err, ErrStackFull):
					rt.Fatalf("unexpected push error: %v", err)
				}
			case 2:
				depth := e.Depth()
				err := e.Pop()
				if depth == 1 && !errors.Is(err, ErrStackBottom) {
					rt.Fatalf("popped the bottom scene")
				}
			}
			if e.Depth() < 1 || e.Depth() > StackSize {
				rt.Fatalf("depth %d out of range", e.Depth())
			}
			if e.stack[0] != bottom {
				rt.Fatalf("bottom scene replaced")
			}
			if top := e.Top().(*probe); !top.entered {
				rt.Fatalf("top %s not entered", top.name)
			}
		}
		e.Shutdown()
		for _, p := range append(all, bottom) {
			if p.mounted != 0 {
				rt.Fatalf("%s mounted %d times after shutdown", p.name, p.mounted)
			}
		}
		checkAlternation(rt, log)
	})
}

// checkAlternation fails when a scene is entered twice, left without being
// entered, or unmounted while entered.
func checkAlternation(rt interface{ Fatalf(string, ...any) }, log []string) {
	entered := map[string]bool{}
	for _, call := range log {
		var name, what string
		for i := len(call) - 1; i >= 0; i-- {
			if call[i] == '.' {
				name, what = call[:i], call[i+1:]
				break
			}
		}
		switch what {
		case "enter":
			if entered[name] {
				rt.Fatalf("%s entered twice", name)
			}
			entered[name] = true
		case "leave":
			if !entered[name] {
				rt.Fatalf("%s left without enter", name)
			}
			entered[name] = false
		case "unmount":
			if entered[name] {
				rt.Fatalf("%s unmounted while entered", name)
			}
		}
	}
}
