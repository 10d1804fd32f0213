// Package input translates host devices into controller events.
package input

import "github.com/FabianRolfMatthiasNoll/hjortron/internal/libretro"

// Kind is the type of an Event.
type Kind int

const (
	Press Kind = iota + 1
	Release
	AxisMotion
	Quit
)

// Button is a controller button. Joypad buttons share their numbering with
// the libretro joypad ids; Back is a host-only button.
type Button uint32

const (
	ButtonB      = Button(libretro.DeviceIDJoypadB)
	ButtonY      = Button(libretro.DeviceIDJoypadY)
	ButtonSelect = Button(libretro.DeviceIDJoypadSelect)
	ButtonStart  = Button(libretro.DeviceIDJoypadStart)
	ButtonUp     = Button(libretro.DeviceIDJoypadUp)
	ButtonDown   = Button(libretro.DeviceIDJoypadDown)
	ButtonLeft   = Button(libretro.DeviceIDJoypadLeft)
	ButtonRight  = Button(libretro.DeviceIDJoypadRight)
	ButtonA      = Button(libretro.DeviceIDJoypadA)
	ButtonX      = Button(libretro.DeviceIDJoypadX)
	ButtonL      = Button(libretro.DeviceIDJoypadL)
	ButtonR      = Button(libretro.DeviceIDJoypadR)
	ButtonBack   = Button(15)
)

func (b Button) String() string {
	switch b {
	case ButtonB:
		return "B"
	case ButtonY:
		return "Y"
	case ButtonSelect:
		return "Select"
	case ButtonStart:
		return "Start"
	case ButtonUp:
		return "Up"
	case ButtonDown:
		return "Down"
	case ButtonLeft:
		return "Left"
	case ButtonRight:
		return "Right"
	case ButtonA:
		return "A"
	case ButtonX:
		return "X"
	case ButtonL:
		return "L"
	case ButtonR:
		return "R"
	case ButtonBack:
		return "Back"
	}
	return "?"
}

// Axis is an analog axis of the left stick.
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

// Event is one input occurrence. Repeat marks auto-repeat of a held button.
type Event struct {
	Kind   Kind
	Button Button
	Axis   Axis
	Value  int16
	Repeat bool
}

// Snapshot is the controller state the core polls.
type Snapshot struct {
	Buttons uint16 // bit n = joypad id n
	AnalogX int16
	AnalogY int16
}

// Apply folds ev into the snapshot. Repeats and host-only buttons change nothing.
func (s *Snapshot) Apply(ev Event) {
	if ev.Repeat {
		return
	}
	switch ev.Kind {
	case Press:
		if ev.Button <= ButtonR {
			s.Buttons |= 1 << ev.Button
		}
	case Release:
		if ev.Button <= ButtonR {
			s.Buttons &^= 1 << ev.Button
		}
	case AxisMotion:
		if ev.Axis == AxisX {
			s.AnalogX = ev.Value
		} else {
			s.AnalogY = ev.Value
		}
	}
}

// Pressed reports whether button id is held.
func (s Snapshot) Pressed(id uint32) bool {
	return id < 16 && s.Buttons&(1<<id) != 0
}

// State answers a retro_input_state query for port 0.
func (s Snapshot) State(port, device, index, id uint32) int16 {
	if port != 0 {
		return 0
	}
	switch device {
	case libretro.DeviceJoypad:
		if id == libretro.DeviceIDJoypadMask {
			return int16(s.Buttons)
		}
		if s.Pressed(id) {
			return 1
		}
	case libretro.DeviceAnalog:
		if index != libretro.DeviceIndexAnalogLeft {
			return 0
		}
		switch id {
		case libretro.DeviceIDAnalogX:
			return s.AnalogX
		case libretro.DeviceIDAnalogY:
			return s.AnalogY
		}
	}
	return 0
}

// Source yields the events that happened since the previous call.
type Source interface {
	Poll() []Event
}

// Queue is a Source fed by hand. Tests and headless runs use it.
type Queue struct {
	events []Event
}

func (q *Queue) Push(ev ...Event) { q.events = append(q.events, ev...) }

func (q *Queue) Poll() []Event {
	ev := q.events
	q.events = nil
	return ev
}
