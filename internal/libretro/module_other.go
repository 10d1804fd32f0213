//go:build !(darwin || linux || freebsd)

package libretro

import (
	"errors"
	"fmt"
)

var errUnsupported = errors.New("libretro: native cores are not supported on this platform")

// Open validates the name and reports that native loading is unavailable.
func Open(path string) (*Module, error) {
	if err := CheckName(path); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%s: %w", path, errUnsupported)
}

func (m *Module) Close() error { return nil }

// CloseFiles is a no-op without native cores.
func CloseFiles() {}
