// Package core runs libretro cores: discovery, the session lifecycle and the
// callbacks cores call back into.
package core

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/agnivade/levenshtein"
	"go.uber.org/zap"

	"github.com/FabianRolfMatthiasNoll/hjortron/internal/libretro"
	"github.com/FabianRolfMatthiasNoll/hjortron/internal/logging"
)

// Capacity is the maximum number of cores a Collection holds.
const Capacity = 20

var (
	ErrCollectionFull = errors.New("core: collection full")
	ErrNoSystemInfo   = errors.New("core: core reports no name")
)

// Descriptor describes one loaded core.
type Descriptor struct {
	Name       string
	Version    string
	Extensions string // pipe delimited, without dots
	Path       string

	API    *libretro.API
	module io.Closer

	busy atomic.Bool
}

// NewDescriptor queries the core's system info. module is released by
// Collection.Close and may be nil for in-process cores.
func NewDescriptor(api *libretro.API, path string, module io.Closer) (*Descriptor, error) {
	if api == nil || api.GetSystemInfo == nil {
		return nil, fmt.Errorf("%w: %s", libretro.ErrMissingSymbol, path)
	}
	info := api.SystemInfo()
	if info.Name == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoSystemInfo, path)
	}
	return &Descriptor{
		Name:       info.Name,
		Version:    info.Version,
		Extensions: info.Extensions,
		Path:       path,
		API:        api,
		module:     module,
	}, nil
}

// ExtensionList splits Extensions into lower case entries.
func (d *Descriptor) ExtensionList() []string {
	var out []string
	for _, e := range strings.Split(d.Extensions, "|") {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			out = append(out, e)
		}
	}
	return out
}

// Accepts reports whether the file extension of path is one of the core's.
// The comparison ignores case.
func (d *Descriptor) Accepts(path string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext == "" {
		return false
	}
	for _, e := range d.ExtensionList() {
		if e == ext {
			return true
		}
	}
	return false
}

// Busy reports whether a session is running on the core.
func (d *Descriptor) Busy() bool { return d.busy.Load() }

func (d *Descriptor) logger() *zap.Logger {
	return logging.Logger().With(zap.String("core", d.Name))
}

// Collection is the set of cores found at startup. It is filled once and
// read-only afterwards.
type Collection struct {
	items []*Descriptor
}

// Add appends d unless the collection is full.
func (c *Collection) Add(d *Descriptor) error {
	if len(c.items) >= Capacity {
		return fmt.Errorf("%w: %s", ErrCollectionFull, d.Name)
	}
	c.items = append(c.items, d)
	return nil
}

// LoadDir opens every core in dir. Files that are not cores or fail to load
// are logged and skipped. Scanning stops once the collection is full.
func LoadDir(dir string) (*Collection, error) {
	log := logging.Logger()
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read core directory: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	c := &Collection{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if libretro.CheckName(path) != nil {
			continue
		}
		if len(c.items) >= Capacity {
			log.Warn("core collection full, ignoring remaining cores", zap.String("path", path))
			break
		}
		m, err := libretro.Open(path)
		if err != nil {
			log.Warn("skipping core", zap.String("path", path), zap.Error(err))
			continue
		}
		d, err := NewDescriptor(m.API(), path, m)
		if err != nil {
			log.Warn("skipping core", zap.String("path", path), zap.Error(err))
			_ = m.Close()
			continue
		}
		m.SetLogger(d.logger())
		_ = c.Add(d)
		log.Info("loaded core", zap.String("name", d.Name), zap.String("version", d.Version),
			zap.String("extensions", d.Extensions))
	}
	return c, nil
}

// Len returns the number of cores.
func (c *Collection) Len() int { return len(c.items) }

// All returns the cores in load order.
func (c *Collection) All() []*Descriptor { return c.items }

// Find returns the first core whose declared name equals name.
func (c *Collection) Find(name string) *Descriptor {
	for _, d := range c.items {
		if d.Name == name {
			return d
		}
	}
	return nil
}

// ForFile returns the first core accepting the file extension of path.
func (c *Collection) ForFile(path string) *Descriptor {
	for _, d := range c.items {
		if d.Accepts(path) {
			return d
		}
	}
	return nil
}

// Suggest returns the core name closest to name, or "" when nothing is
// reasonably close. Used to report catalog entries naming a missing core.
func (c *Collection) Suggest(name string) string {
	best, bestDist := "", -1
	for _, d := range c.items {
		dist := levenshtein.ComputeDistance(strings.ToLower(name), strings.ToLower(d.Name))
		if bestDist < 0 || dist < bestDist {
			best, bestDist = d.Name, dist
		}
	}
	if bestDist < 0 || bestDist > max(len(name), len(best))/2 {
		return ""
	}
	return best
}

// Extensions returns the union of all cores' extensions.
func (c *Collection) Extensions() []string {
	seen := map[string]bool{}
	var out []string
	for _, d := range c.items {
		for _, e := range d.ExtensionList() {
			if !seen[e] {
				seen[e] = true
				out = append(out, e)
			}
		}
	}
	return out
}

// Close releases every module.
func (c *Collection) Close() error {
	var errs []error
	for _, d := range c.items {
		if d.module != nil {
			errs = append(errs, d.module.Close())
		}
	}
	c.items = nil
	return errors.Join(errs...)
}
