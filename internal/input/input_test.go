package input

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/FabianRolfMatthiasNoll/hjortron/internal/libretro"
)

func TestSnapshotApply(t *testing.T) {
	var s Snapshot
	s.Apply(Event{Kind: Press, Button: ButtonA})
	s.Apply(Event{Kind: Press, Button: ButtonUp})
	assert.True(t, s.Pressed(libretro.DeviceIDJoypadA))
	assert.True(t, s.Pressed(libretro.DeviceIDJoypadUp))

	s.Apply(Event{Kind: Release, Button: ButtonA})
	assert.False(t, s.Pressed(libretro.DeviceIDJoypadA))

	s.Apply(Event{Kind: Press, Button: ButtonB, Repeat: true})
	assert.False(t, s.Pressed(libretro.DeviceIDJoypadB), "repeats are ignored")

	s.Apply(Event{Kind: Press, Button: ButtonBack})
	assert.Equal(t, uint16(1<<libretro.DeviceIDJoypadUp), s.Buttons, "host buttons do not reach the core")

	s.Apply(Event{Kind: AxisMotion, Axis: AxisY, Value: -300})
	assert.Equal(t, int16(-300), s.AnalogY)
}

func TestSnapshotState(t *testing.T) {
	s := Snapshot{Buttons: 1<<libretro.DeviceIDJoypadStart | 1<<libretro.DeviceIDJoypadR, AnalogX: 1234}
	tests := []struct {
		port, device, index, id uint32
		want                    int16
	}{
		{0, libretro.DeviceJoypad, 0, libretro.DeviceIDJoypadStart, 1},
		{0, libretro.DeviceJoypad, 0, libretro.DeviceIDJoypadA, 0},
		{0, libretro.DeviceJoypad, 0, libretro.DeviceIDJoypadMask, int16(s.Buttons)},
		{1, libretro.DeviceJoypad, 0, libretro.DeviceIDJoypadStart, 0},
		{0, libretro.DeviceAnalog, libretro.DeviceIndexAnalogLeft, libretro.DeviceIDAnalogX, 1234},
		{0, libretro.DeviceAnalog, 1, libretro.DeviceIDAnalogX, 0},
		{0, 3, 0, 0, 0},
	}
	for _, tt := range tests {
		if got := s.State(tt.port, tt.device, tt.index, tt.id); got != tt.want {
			t.Fatalf("State(%d,%d,%d,%d): got %d, want %d", tt.port, tt.device, tt.index, tt.id, got, tt.want)
		}
	}
}

func TestAxisValue(t *testing.T) {
	assert.Zero(t, AxisValue(0.1))
	assert.Zero(t, AxisValue(-0.19))
	assert.Equal(t, int16(math.MaxInt16), AxisValue(1))
	assert.Equal(t, int16(-math.MaxInt16), AxisValue(-1.5))
	assert.Equal(t, int16(16384), AxisValue(0.5))
}

func TestQueue(t *testing.T) {
	var q Queue
	q.Push(Event{Kind: Quit}, Event{Kind: Press, Button: ButtonA})
	assert.Len(t, q.Poll(), 2)
	assert.Empty(t, q.Poll())
}

func TestRepeatTiming(t *testing.T) {
	assert.False(t, repeating(1))
	assert.False(t, repeating(repeatDelay))
	assert.True(t, repeating(repeatDelay+repeatInterval))
	assert.False(t, repeating(repeatDelay+1))
}

func TestButtonString(t *testing.T) {
	assert.Equal(t, "Start", ButtonStart.String())
	assert.Equal(t, "Back", ButtonBack.String())
}
