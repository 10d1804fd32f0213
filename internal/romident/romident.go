// Package romident recognises cartridge images by their headers.
package romident

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

type System int

const (
	Unknown System = iota
	SNES
	MegaDrive
	GameBoy
)

func (s System) String() string {
	switch s {
	case SNES:
		return "snes"
	case MegaDrive:
		return "megadrive"
	case GameBoy:
		return "gameboy"
	}
	return "unknown"
}

func (s System) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

var ErrUnknown = errors.New("romident: no known header")

// Result is what a header reveals about an image.
type Result struct {
	System   System `json:"system"`
	Title    string `json:"title"`
	Checksum uint32 `json:"checksum"`

	// Verified is set when the header carries a checksum that matched.
	Verified bool   `json:"verified"`
	Detail   string `json:"detail,omitempty"`
}

// maxProbe covers the furthest header any identifier looks at.
const maxProbe = 0x200 + 0x101C0 + snesHeaderLen

// Identify tries SNES, then Mega Drive, then Game Boy.
func Identify(rom []byte) (Result, error) {
	if r, ok := identifySNES(rom); ok {
		return r, nil
	}
	if r, ok := identifyMegaDrive(rom); ok {
		return r, nil
	}
	if r, ok := identifyGameBoy(rom); ok {
		return r, nil
	}
	return Result{}, ErrUnknown
}

// IdentifyFile reads the head of path and identifies it.
func IdentifyFile(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, err
	}
	defer f.Close()

	buf, err := io.ReadAll(io.LimitReader(f, maxProbe))
	if err != nil {
		return Result{}, fmt.Errorf("romident: read %s: %w", path, err)
	}
	r, err := Identify(buf)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s", err, path)
	}
	return r, nil
}

func visibleASCII(b []byte) bool {
	for _, c := range b {
		if c < 0x20 || c >= 0x7F {
			return false
		}
	}
	return true
}

func trimTitle(b []byte) string {
	if i := strings.IndexByte(string(b), 0); i >= 0 {
		b = b[:i]
	}
	return strings.TrimRight(string(b), " ")
}
