package audio

import "encoding/binary"

// Stream implements io.Reader for an ebiten audio player. It pulls frames
// from a Ring, resamples them linearly from the core rate to the device
// rate and writes 16-bit little-endian stereo.
type Stream struct {
	ring *Ring
	step float64 // source frames per output frame
	pos  float64 // position relative to last
	last [2]int16

	scratch []int16
	// stats
	underruns int
}

const (
	streamCapFrames    = 2048 // ~42.7ms at 48kHz
	streamSilentFrames = 256
)

// NewStream reads from ring, converting srcRate to dstRate.
func NewStream(ring *Ring, srcRate, dstRate int) *Stream {
	step := 1.0
	if srcRate > 0 && dstRate > 0 {
		step = float64(srcRate) / float64(dstRate)
	}
	return &Stream{ring: ring, step: step}
}

func (s *Stream) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	// A buffer smaller than one frame is filled with silence so the player
	// never sees a zero read.
	if len(p) < 4 {
		clear(p)
		return len(p), nil
	}
	frames := len(p) / 4
	if frames > streamCapFrames {
		frames = streamCapFrames
	}

	need := int(s.pos+float64(frames)*s.step) + 1
	if cap(s.scratch) < need*2 {
		s.scratch = make([]int16, need*2)
	}
	src := s.scratch[:need*2]
	got := s.ring.Read(src)
	if got == 0 {
		n := streamSilentFrames
		if n > frames {
			n = frames
		}
		clear(p[:n*4])
		s.underruns++
		return n * 4, nil
	}

	// at(0) is the last frame of the previous read, at(i) is src frame i-1.
	at := func(i, ch int) int16 {
		if i == 0 {
			return s.last[ch]
		}
		return src[(i-1)*2+ch]
	}
	out := 0
	for out < frames {
		i := int(s.pos)
		if i+1 > got {
			break
		}
		frac := s.pos - float64(i)
		for ch := 0; ch < 2; ch++ {
			a, b := float64(at(i, ch)), float64(at(i+1, ch))
			v := int16(a + (b-a)*frac)
			binary.LittleEndian.PutUint16(p[out*4+ch*2:], uint16(v))
		}
		s.pos += s.step
		out++
	}

	k := int(s.pos)
	if k > got {
		k = got
	}
	s.last = [2]int16{at(k, 0), at(k, 1)}
	s.pos -= float64(int(s.pos))
	if out == 0 {
		clear(p[:4])
		out = 1
	}
	return out * 4, nil
}

// Underruns counts reads that found no audio.
func (s *Stream) Underruns() int { return s.underruns }
