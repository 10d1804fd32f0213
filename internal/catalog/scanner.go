package catalog

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/FabianRolfMatthiasNoll/hjortron/internal/logging"
	"github.com/FabianRolfMatthiasNoll/hjortron/internal/romident"
)

// Matcher names the core that accepts a file, or returns "".
type Matcher interface {
	CoreFor(path string) string
}

type MatcherFunc func(path string) string

func (f MatcherFunc) CoreFor(path string) string { return f(path) }

// ScanResult summarises one Scan.
type ScanResult struct {
	Seen       int
	Added      int
	Identified int
	Skipped    int
	Removed    int
}

type Scanner struct {
	Catalog *Catalog
	Cores   Matcher
	// Workers bounds concurrent header reads; zero means GOMAXPROCS.
	Workers int
	// Prune removes entries under the scanned directory whose files are gone.
	Prune  bool
	Logger *zap.Logger
}

func (s *Scanner) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return logging.Logger()
}

// Scan walks dir and adds every file some core accepts. Headers are read in
// parallel; the catalog is written from a single goroutine.
func (s *Scanner) Scan(ctx context.Context, dir string) (ScanResult, error) {
	var res ScanResult
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			s.logger().Warn("scan: skipping", zap.String("path", path), zap.Error(err))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		res.Seen++
		files = append(files, path)
		return ctx.Err()
	})
	if err != nil {
		return res, err
	}

	entries := make([]*Entry, len(files))
	var identified atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	workers := s.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g.SetLimit(workers)
	for i, path := range files {
		core := s.Cores.CoreFor(path)
		if core == "" {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			e := &Entry{Path: path, Core: core}
			if r, err := romident.IdentifyFile(path); err == nil {
				e.Name, e.System, e.CRC32 = r.Title, r.System.String(), r.Checksum
				identified.Add(1)
			} else if !errors.Is(err, romident.ErrUnknown) {
				s.logger().Debug("scan: identify", zap.String("path", path), zap.Error(err))
			}
			entries[i] = e
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}
	res.Identified = int(identified.Load())

	for _, e := range entries {
		if e == nil {
			res.Skipped++
			continue
		}
		if _, err := s.Catalog.Add(ctx, *e); err != nil {
			return res, err
		}
		res.Added++
	}

	if s.Prune {
		n, err := s.prune(ctx, dir)
		res.Removed = n
		if err != nil {
			return res, err
		}
	}
	s.logger().Info("scan complete",
		zap.String("dir", dir),
		zap.Int("seen", res.Seen),
		zap.Int("added", res.Added),
		zap.Int("identified", res.Identified),
		zap.Int("removed", res.Removed),
	)
	return res, nil
}

func (s *Scanner) prune(ctx context.Context, dir string) (int, error) {
	paths, err := s.Catalog.Paths(ctx, dir)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, p := range paths {
		if _, err := os.Stat(p); !errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := s.Catalog.Remove(ctx, p); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
