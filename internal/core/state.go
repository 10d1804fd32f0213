package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var (
	ErrNoSerialize = errors.New("core: core does not support save states")
	ErrSerialize   = errors.New("core: core failed to serialize")
	ErrStateSize   = errors.New("core: save state size mismatch")
)

// QuickSlot is the slot file used for content without a catalog entry.
const QuickSlot = "quick.state"

// SlotPath returns the save state file for a catalog entry in dir.
func SlotPath(dir, entryID string) string {
	if entryID == "" {
		return filepath.Join(dir, QuickSlot)
	}
	return filepath.Join(dir, entryID+".state")
}

func (s *Session) stateSize() (uintptr, error) {
	if s.state != Running {
		return 0, ErrNotRunning
	}
	a := s.api
	if a.SerializeSize == nil || a.Serialize == nil || a.Unserialize == nil {
		return 0, ErrNoSerialize
	}
	n := a.SerializeSize()
	if n == 0 {
		return 0, ErrNoSerialize
	}
	return n, nil
}

// SaveState writes the core's serialized state to path. The size is asked
// for on every save since it may change while content runs.
func (s *Session) SaveState(path string) error {
	n, err := s.stateSize()
	if err != nil {
		return err
	}
	buf := make([]byte, n)
	if !s.api.Serialize(buf) {
		return ErrSerialize
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}

// LoadState restores the state stored at path. The file is read and its
// size checked against the core's state size before the core is reset, so
// a missing or mismatched file leaves the running game untouched.
func (s *Session) LoadState(path string) error {
	n, err := s.stateSize()
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read state: %w", err)
	}
	if uintptr(len(data)) != n {
		return fmt.Errorf("%w: file has %d bytes, core expects %d", ErrStateSize, len(data), n)
	}
	if s.api.Reset != nil {
		s.api.Reset()
	}
	if !s.api.Unserialize(data) {
		return fmt.Errorf("restore state: %w", ErrSerialize)
	}
	return nil
}
