// Package audio moves core PCM to the output device.
package audio

import (
	"errors"
	"sync/atomic"
)

var (
	// ErrUnderrun reports that the device ran dry since the last write.
	ErrUnderrun = errors.New("audio: underrun")
	// ErrClosed is returned by writes after Close.
	ErrClosed = errors.New("audio: sink closed")
)

// Sink accepts interleaved stereo int16 samples. Write returns the number of
// stereo frames taken. Recover clears a recoverable error so the caller can
// retry; other errors are returned unchanged.
type Sink interface {
	Write(samples []int16) (frames int, err error)
	Recover(err error) error
	Drain()
	Pause()
	Resume()
	Close() error
}

// Null discards audio. Headless runs use it.
type Null struct {
	frames atomic.Int64
}

func (n *Null) Write(samples []int16) (int, error) {
	f := len(samples) / 2
	n.frames.Add(int64(f))
	return f, nil
}

func (n *Null) Recover(err error) error { return err }
func (n *Null) Drain()                  {}
func (n *Null) Pause()                  {}
func (n *Null) Resume()                 {}
func (n *Null) Close() error            { return nil }

// Frames returns the number of stereo frames written.
func (n *Null) Frames() int64 { return n.frames.Load() }
