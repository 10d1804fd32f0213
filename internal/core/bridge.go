package core

import (
	"unsafe"

	"go.uber.org/zap"

	"github.com/FabianRolfMatthiasNoll/hjortron/internal/audio"
	"github.com/FabianRolfMatthiasNoll/hjortron/internal/video"
)

const (
	// audioRetries bounds how often one batch is retried after a recoverable sink error.
	audioRetries = 8
	// pendingFrames is the single-sample buffer size flushed as one batch.
	pendingFrames = 512
)

func (s *Session) videoRefresh(data unsafe.Pointer, width, height uint32, pitch uintptr) {
	if data == nil {
		s.dupes++
		return
	}
	if width == 0 || height == 0 {
		return
	}
	n := int(pitch)*(int(height)-1) + int(width)*video.BytesPerPixel(s.format)
	if err := s.frame.Blit(cbytes(data, n), int(width), int(height), int(pitch), s.format); err != nil {
		s.log.Warn("dropping frame", zap.Error(err))
	}
}

func (s *Session) audioSampleBatch(data *int16, frames uintptr) uintptr {
	if data == nil || frames == 0 {
		return 0
	}
	return uintptr(writeAudio(s.sink, unsafe.Slice(data, frames*2), s.log))
}

func (s *Session) audioSample(left, right int16) {
	s.pending = append(s.pending, left, right)
	if len(s.pending) >= pendingFrames*2 {
		s.flushSamples()
	}
}

func (s *Session) flushSamples() {
	if len(s.pending) == 0 {
		return
	}
	writeAudio(s.sink, s.pending, s.log)
	s.pending = s.pending[:0]
}

// writeAudio hands interleaved stereo samples to sink, recovering from
// underruns a bounded number of times. It returns the frames accepted.
func writeAudio(sink audio.Sink, samples []int16, log *zap.Logger) int {
	if sink == nil {
		return 0
	}
	total := len(samples) / 2
	written := 0
	for attempt := 0; written < total && attempt < audioRetries; attempt++ {
		n, err := sink.Write(samples[written*2:])
		written += n
		if err == nil {
			continue
		}
		if rerr := sink.Recover(err); rerr != nil {
			log.Warn("audio write failed", zap.Error(rerr))
			break
		}
	}
	return written
}

func (s *Session) inputPoll() {}

func (s *Session) inputState(port, device, index, id uint32) int16 {
	return s.input.State(port, device, index, id)
}
