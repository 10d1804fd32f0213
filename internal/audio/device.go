package audio

import (
	"fmt"
	"time"

	"github.com/hajimehoshi/ebiten/v2/audio"
)

// DeviceRate is the output sample rate of the ebiten audio context.
const DeviceRate = 48000

// Device owns the process' single ebiten audio context.
type Device struct {
	ctx    *audio.Context
	Buffer time.Duration
}

// NewDevice returns the device, creating the audio context on first use.
func NewDevice(buffer time.Duration) *Device {
	ctx := audio.CurrentContext()
	if ctx == nil {
		ctx = audio.NewContext(DeviceRate)
	}
	if buffer <= 0 {
		buffer = 40 * time.Millisecond
	}
	return &Device{ctx: ctx, Buffer: buffer}
}

// Output is a Sink playing through the device.
type Output struct {
	*Ring
	stream *Stream
	player *audio.Player
}

// Open starts a player fed from a new ring at the core's sample rate.
func (d *Device) Open(sampleRate float64) (*Output, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("audio: invalid sample rate %v", sampleRate)
	}
	// Ring holds four device buffers worth of core audio.
	frames := int(sampleRate*d.Buffer.Seconds()) * 4
	ring := NewRing(frames)
	stream := NewStream(ring, int(sampleRate), DeviceRate)
	player, err := d.ctx.NewPlayer(stream)
	if err != nil {
		return nil, fmt.Errorf("audio: new player: %w", err)
	}
	player.SetBufferSize(d.Buffer)
	player.Play()
	return &Output{Ring: ring, stream: stream, player: player}, nil
}

func (o *Output) Pause() {
	o.Ring.Pause()
	o.player.Pause()
}

func (o *Output) Resume() {
	o.Ring.Resume()
	o.player.Play()
}

func (o *Output) Close() error {
	_ = o.Ring.Close()
	return o.player.Close()
}

// Underruns reports reads of the player that found the ring empty.
func (o *Output) Underruns() int { return o.stream.Underruns() }
