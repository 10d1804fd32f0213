package audio

import (
	"errors"
	"sync"
	"time"
)

// DefaultWait bounds how long Write and Drain block.
const DefaultWait = 20 * time.Millisecond

// Ring is a bounded FIFO of stereo frames between a core and the device
// reader. Writers block for space up to Wait; a reader that finds the ring
// empty marks an underrun which the next Write reports.
type Ring struct {
	Wait time.Duration

	mu       sync.Mutex
	buf      []int16 // interleaved, 2 samples per frame
	head     int     // frame index of the oldest frame
	count    int     // frames buffered
	started  bool
	underrun bool
	paused   bool
	closed   bool

	underruns int
}

// NewRing allocates a ring holding frames stereo frames.
func NewRing(frames int) *Ring {
	if frames <= 0 {
		frames = 1
	}
	return &Ring{Wait: DefaultWait, buf: make([]int16, frames*2)}
}

func (r *Ring) capacity() int { return len(r.buf) / 2 }

// Write copies as many whole frames as fit before the wait expires.
func (r *Ring) Write(samples []int16) (int, error) {
	frames := len(samples) / 2
	deadline := time.Now().Add(r.Wait)
	written := 0
	for {
		r.mu.Lock()
		if r.closed {
			r.mu.Unlock()
			return written, ErrClosed
		}
		if r.underrun {
			r.mu.Unlock()
			return written, ErrUnderrun
		}
		r.started = true
		for written < frames && r.count < r.capacity() {
			tail := (r.head + r.count) % r.capacity()
			r.buf[tail*2] = samples[written*2]
			r.buf[tail*2+1] = samples[written*2+1]
			r.count++
			written++
		}
		r.mu.Unlock()
		if written == frames || !time.Now().Before(deadline) {
			return written, nil
		}
		time.Sleep(time.Millisecond)
	}
}

// Read moves up to len(dst)/2 frames into dst and returns the frame count.
// It never blocks.
func (r *Ring) Read(dst []int16) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	want := len(dst) / 2
	if r.count == 0 {
		if r.started && !r.paused && want > 0 && !r.underrun {
			r.underrun = true
			r.underruns++
		}
		return 0
	}
	n := 0
	for n < want && r.count > 0 {
		dst[n*2] = r.buf[r.head*2]
		dst[n*2+1] = r.buf[r.head*2+1]
		r.head = (r.head + 1) % r.capacity()
		r.count--
		n++
	}
	return n
}

// Recover clears an underrun. Any other error is returned as is.
func (r *Ring) Recover(err error) error {
	if !errors.Is(err, ErrUnderrun) {
		return err
	}
	r.mu.Lock()
	r.underrun = false
	r.mu.Unlock()
	return nil
}

// Drain waits until the reader has consumed the buffer or the wait expires.
func (r *Ring) Drain() {
	deadline := time.Now().Add(r.Wait * 5)
	for time.Now().Before(deadline) {
		if r.Buffered() == 0 {
			return
		}
		time.Sleep(time.Millisecond)
	}
}

func (r *Ring) Pause() {
	r.mu.Lock()
	r.paused = true
	r.mu.Unlock()
}

func (r *Ring) Resume() {
	r.mu.Lock()
	r.paused = false
	r.underrun = false
	r.mu.Unlock()
}

func (r *Ring) Close() error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	return nil
}

// Buffered returns the number of frames waiting for the reader.
func (r *Ring) Buffered() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Underruns counts how often the reader found the ring empty.
func (r *Ring) Underruns() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.underruns
}
