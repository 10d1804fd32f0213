package input

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

type keyBinding struct {
	key    ebiten.Key
	button Button
}

type padBinding struct {
	button ebiten.StandardGamepadButton
	target Button
}

var defaultKeys = []keyBinding{
	{ebiten.KeyArrowUp, ButtonUp},
	{ebiten.KeyArrowDown, ButtonDown},
	{ebiten.KeyArrowLeft, ButtonLeft},
	{ebiten.KeyArrowRight, ButtonRight},
	{ebiten.KeyD, ButtonA},
	{ebiten.KeyX, ButtonB},
	{ebiten.KeyW, ButtonX},
	{ebiten.KeyA, ButtonY},
	{ebiten.KeyQ, ButtonL},
	{ebiten.KeyE, ButtonR},
	{ebiten.KeyEnter, ButtonStart},
	{ebiten.KeyShiftRight, ButtonSelect},
	{ebiten.KeyEscape, ButtonBack},
}

var defaultPad = []padBinding{
	{ebiten.StandardGamepadButtonLeftTop, ButtonUp},
	{ebiten.StandardGamepadButtonLeftBottom, ButtonDown},
	{ebiten.StandardGamepadButtonLeftLeft, ButtonLeft},
	{ebiten.StandardGamepadButtonLeftRight, ButtonRight},
	{ebiten.StandardGamepadButtonRightRight, ButtonA},
	{ebiten.StandardGamepadButtonRightBottom, ButtonB},
	{ebiten.StandardGamepadButtonRightTop, ButtonX},
	{ebiten.StandardGamepadButtonRightLeft, ButtonY},
	{ebiten.StandardGamepadButtonFrontTopLeft, ButtonL},
	{ebiten.StandardGamepadButtonFrontTopRight, ButtonR},
	{ebiten.StandardGamepadButtonCenterRight, ButtonStart},
	{ebiten.StandardGamepadButtonCenterLeft, ButtonSelect},
	{ebiten.StandardGamepadButtonCenterCenter, ButtonBack},
}

// Key repeat timing in ticks.
const (
	repeatDelay    = 24
	repeatInterval = 4
	deadZone       = 0.2
)

// EbitenSource reads the keyboard and standard layout gamepads.
type EbitenSource struct {
	pads []ebiten.GamepadID
	axis [2]int16
}

func NewEbitenSource() *EbitenSource {
	ebiten.SetWindowClosingHandled(true)
	return &EbitenSource{}
}

func repeating(d int) bool {
	return d > repeatDelay && (d-repeatDelay)%repeatInterval == 0
}

func (s *EbitenSource) Poll() []Event {
	var evs []Event
	if ebiten.IsWindowBeingClosed() {
		evs = append(evs, Event{Kind: Quit})
	}

	for _, b := range defaultKeys {
		switch {
		case inpututil.IsKeyJustPressed(b.key):
			evs = append(evs, Event{Kind: Press, Button: b.button})
		case inpututil.IsKeyJustReleased(b.key):
			evs = append(evs, Event{Kind: Release, Button: b.button})
		case repeating(inpututil.KeyPressDuration(b.key)):
			evs = append(evs, Event{Kind: Press, Button: b.button, Repeat: true})
		}
	}

	s.pads = ebiten.AppendGamepadIDs(s.pads[:0])
	for _, id := range s.pads {
		if !ebiten.IsStandardGamepadLayoutAvailable(id) {
			continue
		}
		for _, b := range defaultPad {
			switch {
			case inpututil.IsStandardGamepadButtonJustPressed(id, b.button):
				evs = append(evs, Event{Kind: Press, Button: b.target})
			case inpututil.IsStandardGamepadButtonJustReleased(id, b.button):
				evs = append(evs, Event{Kind: Release, Button: b.target})
			case repeating(inpututil.StandardGamepadButtonPressDuration(id, b.button)):
				evs = append(evs, Event{Kind: Press, Button: b.target, Repeat: true})
			}
		}
		evs = s.pollAxis(evs, id, ebiten.StandardGamepadAxisLeftStickHorizontal, AxisX)
		evs = s.pollAxis(evs, id, ebiten.StandardGamepadAxisLeftStickVertical, AxisY)
	}
	return evs
}

func (s *EbitenSource) pollAxis(evs []Event, id ebiten.GamepadID, a ebiten.StandardGamepadAxis, axis Axis) []Event {
	v := AxisValue(ebiten.StandardGamepadAxisValue(id, a))
	if v == s.axis[axis] {
		return evs
	}
	s.axis[axis] = v
	return append(evs, Event{Kind: AxisMotion, Axis: axis, Value: v})
}

// AxisValue scales a [-1, 1] stick position to the libretro analog range,
// snapping positions inside the dead zone to zero.
func AxisValue(f float64) int16 {
	if math.Abs(f) < deadZone {
		return 0
	}
	f = math.Max(-1, math.Min(1, f))
	return int16(math.Round(f * math.MaxInt16))
}
