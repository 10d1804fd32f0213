package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerDefaultsToNop(t *testing.T) {
	logger.Store(nil)
	l := Logger()
	assert.NotNil(t, l)
	l.Info("dropped")
}

func TestSetLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	SetLogger(zap.New(core))
	t.Cleanup(func() { logger.Store(nil) })

	Logger().Info("hello", zap.String("core", "snes9x"))
	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	assert.Equal(t, "hello", entries[0].Message)
	assert.Equal(t, "snes9x", entries[0].ContextMap()["core"])
}

func TestNew(t *testing.T) {
	for _, debug := range []bool{false, true} {
		l, err := New(debug)
		if err != nil {
			t.Fatalf("New(%v): %v", debug, err)
		}
		assert.Equal(t, debug, l.Core().Enabled(zap.DebugLevel))
	}
}
