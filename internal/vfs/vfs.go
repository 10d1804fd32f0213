// Package vfs implements the file handle table behind the libretro VFS interface.
package vfs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

// Slots is the number of files a core may hold open at once.
const Slots = 32

// Access mode flags from retro_vfs_file_access.
const (
	AccessRead           uint32 = 1 << 0
	AccessWrite          uint32 = 1 << 1
	AccessReadWrite      uint32 = AccessRead | AccessWrite
	AccessUpdateExisting uint32 = 1 << 2
)

var (
	ErrTableFull = errors.New("vfs: handle table full")
	ErrBadHandle = errors.New("vfs: invalid handle")
	ErrBadMode   = errors.New("vfs: invalid access mode")
)

// Handle identifies an open file. Zero is never a valid handle.
type Handle uintptr

type slot struct {
	f    *os.File
	path []byte // NUL terminated, returned to cores by get_path
}

// Table maps handles to open files.
type Table struct {
	mu    sync.Mutex
	slots [Slots]*slot
}

func New() *Table { return &Table{} }

func openFlags(mode uint32) (int, error) {
	switch mode &^ AccessUpdateExisting {
	case AccessRead:
		return os.O_RDONLY, nil
	case AccessWrite:
		if mode&AccessUpdateExisting != 0 {
			return os.O_WRONLY, nil
		}
		return os.O_WRONLY | os.O_CREATE | os.O_TRUNC, nil
	case AccessReadWrite:
		if mode&AccessUpdateExisting != 0 {
			return os.O_RDWR, nil
		}
		return os.O_RDWR | os.O_CREATE | os.O_TRUNC, nil
	}
	return 0, fmt.Errorf("%w: %#x", ErrBadMode, mode)
}

// Open opens path with a retro_vfs access mode and returns its handle.
func (t *Table) Open(path string, mode uint32) (Handle, error) {
	flags, err := openFlags(mode)
	if err != nil {
		return 0, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	idx := -1
	for i, s := range t.slots {
		if s == nil {
			idx = i
			break
		}
	}
	if idx < 0 {
		return 0, ErrTableFull
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return 0, err
	}
	p := make([]byte, len(path)+1)
	copy(p, path)
	t.slots[idx] = &slot{f: f, path: p}
	return Handle(idx + 1), nil
}

func (t *Table) lookup(h Handle) (*slot, error) {
	if h == 0 || h > Slots {
		return nil, ErrBadHandle
	}
	t.mu.Lock()
	s := t.slots[h-1]
	t.mu.Unlock()
	if s == nil {
		return nil, ErrBadHandle
	}
	return s, nil
}

// Close closes the file and frees its slot.
func (t *Table) Close(h Handle) error {
	s, err := t.lookup(h)
	if err != nil {
		return err
	}
	t.mu.Lock()
	t.slots[h-1] = nil
	t.mu.Unlock()
	return s.f.Close()
}

// Path returns the NUL terminated path the handle was opened with.
func (t *Table) Path(h Handle) ([]byte, error) {
	s, err := t.lookup(h)
	if err != nil {
		return nil, err
	}
	return s.path, nil
}

func (t *Table) Size(h Handle) (int64, error) {
	s, err := t.lookup(h)
	if err != nil {
		return -1, err
	}
	fi, err := s.f.Stat()
	if err != nil {
		return -1, err
	}
	return fi.Size(), nil
}

func (t *Table) Tell(h Handle) (int64, error) {
	return t.Seek(h, 0, io.SeekCurrent)
}

// Seek uses io.Seek* whence values, which match retro_vfs_seek_position.
func (t *Table) Seek(h Handle, offset int64, whence int) (int64, error) {
	s, err := t.lookup(h)
	if err != nil {
		return -1, err
	}
	return s.f.Seek(offset, whence)
}

// Read returns 0 at end of file instead of io.EOF.
func (t *Table) Read(h Handle, p []byte) (int, error) {
	s, err := t.lookup(h)
	if err != nil {
		return -1, err
	}
	n, err := s.f.Read(p)
	if errors.Is(err, io.EOF) {
		return n, nil
	}
	return n, err
}

func (t *Table) Write(h Handle, p []byte) (int, error) {
	s, err := t.lookup(h)
	if err != nil {
		return -1, err
	}
	return s.f.Write(p)
}

func (t *Table) Flush(h Handle) error {
	s, err := t.lookup(h)
	if err != nil {
		return err
	}
	return s.f.Sync()
}

func (t *Table) Truncate(h Handle, length int64) error {
	s, err := t.lookup(h)
	if err != nil {
		return err
	}
	return s.f.Truncate(length)
}

// Remove and Rename operate on paths and need no handle.
func Remove(path string) error { return os.Remove(path) }

func Rename(oldPath, newPath string) error { return os.Rename(oldPath, newPath) }

// CloseAll closes every open handle. Sessions call it after unloading content.
func (t *Table) CloseAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, s := range t.slots {
		if s != nil {
			_ = s.f.Close()
			t.slots[i] = nil
		}
	}
}

// InUse reports the number of handles in use.
func (t *Table) InUse() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, s := range t.slots {
		if s != nil {
			n++
		}
	}
	return n
}
