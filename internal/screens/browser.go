package screens

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"unicode/utf8"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"github.com/FabianRolfMatthiasNoll/hjortron/internal/catalog"
	"github.com/FabianRolfMatthiasNoll/hjortron/internal/input"
	"github.com/FabianRolfMatthiasNoll/hjortron/internal/scene"
)

// Rows is the number of entries on one browser page.
const Rows = 7

// axisThreshold is how far the stick must move to flip a page.
const axisThreshold = 16384

// Browser lists the catalog one page at a time. The selected entry is kept
// on the highlighted row whenever the list is long enough.
type Browser struct {
	scene.Base
	env *Env

	count   int
	sel     int
	top     int
	page    []catalog.Entry
	axis    int16
	dirty   bool
	toast   toast
	loadErr error
}

func NewBrowser(env *Env) *Browser { return &Browser{env: env} }

func (b *Browser) Mount(any) error {
	b.sel, b.top = 0, 0
	return b.refresh()
}

func (b *Browser) Enter() {
	if err := b.refresh(); err != nil {
		b.env.logger().Warn("browser refresh", zap.Error(err))
	}
	b.dirty = true
}

// Selected returns the highlighted entry.
func (b *Browser) Selected() (catalog.Entry, bool) {
	i := b.sel - b.top
	if i < 0 || i >= len(b.page) {
		return catalog.Entry{}, false
	}
	return b.page[i], true
}

func (b *Browser) refresh() error {
	ctx := context.Background()
	n, err := b.env.Library.Count(ctx)
	if err != nil {
		b.loadErr = err
		return err
	}
	b.count = n
	b.sel = clamp(b.sel, 0, n-1)
	return b.load(ctx)
}

func (b *Browser) load(ctx context.Context) error {
	b.top = clamp(b.sel-Rows/2, 0, max(b.count-Rows, 0))
	page, err := b.env.Library.List(ctx, b.top, Rows)
	b.loadErr = err
	if err != nil {
		return err
	}
	b.page = page
	b.dirty = true
	return nil
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(v, lo), hi)
}

func (b *Browser) move(delta int) {
	sel := clamp(b.sel+delta, 0, b.count-1)
	if sel == b.sel {
		return
	}
	b.sel = sel
	if err := b.load(context.Background()); err != nil {
		b.env.logger().Warn("browser page", zap.Error(err))
	}
}

func firstRune(name string) rune {
	r, _ := utf8.DecodeRuneInString(strings.ToLower(name))
	return r
}

// jump moves to the next letter group (dir > 0), or back to the start of the
// current group and from there to the start of the previous one.
func (b *Browser) jump(dir int) {
	cur, ok := b.Selected()
	if !ok {
		return
	}
	ctx := context.Background()
	lib := b.env.Library
	r := firstRune(cur.Name)

	var off int
	var err error
	if dir > 0 {
		off, err = lib.OffsetForPrefix(ctx, r+1)
	} else {
		off, err = lib.OffsetForPrefix(ctx, r)
		if err == nil && off >= b.sel && b.sel > 0 {
			var prev []catalog.Entry
			prev, err = lib.List(ctx, b.sel-1, 1)
			if err == nil && len(prev) == 1 {
				off, err = lib.OffsetForPrefix(ctx, firstRune(prev[0].Name))
			}
		}
	}
	if err != nil {
		b.env.logger().Warn("browser jump", zap.Error(err))
		return
	}
	b.move(off - b.sel)
}

func (b *Browser) HandleEvent(ev input.Event) {
	switch ev.Kind {
	case input.AxisMotion:
		if ev.Axis != input.AxisX {
			return
		}
		// Flip once per stick deflection.
		if ev.Value > axisThreshold && b.axis <= axisThreshold {
			b.move(Rows)
		} else if ev.Value < -axisThreshold && b.axis >= -axisThreshold {
			b.move(-Rows)
		}
		b.axis = ev.Value
	case input.Press:
		switch ev.Button {
		case input.ButtonUp:
			b.move(-1)
		case input.ButtonDown:
			b.move(1)
		case input.ButtonLeft:
			b.move(-Rows)
		case input.ButtonRight:
			b.move(Rows)
		case input.ButtonL:
			b.jump(-1)
		case input.ButtonR:
			b.jump(1)
		case input.ButtonA, input.ButtonStart:
			b.launch()
		case input.ButtonBack:
			b.env.Engine.Quit()
		}
	}
}

// launch fades into a running session for the selected entry. When the
// session cannot start, the browser stays and shows why.
func (b *Browser) launch() {
	e, ok := b.Selected()
	if !ok {
		return
	}
	err := b.env.Engine.Start(scene.Transition{
		Kind:        scene.Crossfade,
		Duration:    b.env.Fade,
		Dest:        NewRunning(b.env),
		DestPayload: e,
	})
	if err != nil {
		b.env.logger().Error("launch failed", zap.String("path", e.Path), zap.Error(err))
		b.toast.show(launchError(e, err), b.env.Engine.Now())
		b.dirty = true
	}
}

func launchError(e catalog.Entry, err error) string {
	var missing *MissingCoreError
	if errors.As(err, &missing) && missing.Suggestion != "" {
		return fmt.Sprintf("No core %q (did you mean %q?)", missing.Name, missing.Suggestion)
	}
	return "Cannot start " + e.Name
}

func (b *Browser) Tick() bool {
	if b.toast.expire(b.env.Engine.Now()) {
		b.dirty = true
	}
	d := b.dirty
	b.dirty = false
	return d
}

func (b *Browser) DrawBackground(dst *ebiten.Image) {
	dst.Fill(background)
	w, h := dst.Bounds().Dx(), dst.Bounds().Dy()
	if row := b.sel - b.top; row >= 0 && row < len(b.page) {
		fillRect(dst, rowRect(row, Rows, w, h), highlight)
	}
}

func (b *Browser) DrawForeground(dst *ebiten.Image) {
	w, h := dst.Bounds().Dx(), dst.Bounds().Dy()
	switch {
	case b.loadErr != nil:
		drawCentered(dst, "Catalog unavailable", image.Rect(0, 0, w, h))
		return
	case b.count == 0:
		drawCentered(dst, "No games found. Run 'hjortron scan'.", image.Rect(0, 0, w, h))
		return
	}
	for i, e := range b.page {
		drawCentered(dst, e.Name, rowRect(i, Rows, w, h))
	}
}

func (b *Browser) DrawOverlay(dst *ebiten.Image) {
	if b.count > 0 {
		drawText(dst, fmt.Sprintf("%d/%d", b.sel+1, b.count), 4, 2)
	}
	b.toast.draw(dst)
}
