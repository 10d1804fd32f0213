// Package catalog stores the scanned ROM library in SQLite.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

var ErrNotFound = errors.New("catalog: entry not found")

// Entry is one playable file.
type Entry struct {
	ID      string
	Path    string
	Name    string
	Core    string
	System  string
	CRC32   uint32
	AddedAt time.Time
}

// EntryID derives a stable id from the content path, so rescans and save
// slots agree on it.
func EntryID(path string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("rom:"+path)).String()
}

type Catalog struct {
	db   *sql.DB
	path string
}

func openDB(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1) // sqlite
	db.SetConnMaxLifetime(0)
	return db, nil
}

// Open migrates and opens the catalog at path, creating parent directories.
func Open(path string) (*Catalog, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
	}
	if err := Migrate(path); err != nil {
		return nil, err
	}
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	return &Catalog{db: db, path: path}, nil
}

func (c *Catalog) Close() error { return c.db.Close() }

func (c *Catalog) Path() string { return c.path }

// Add inserts e or updates the entry with the same path. An empty ID is
// derived from the path.
func (c *Catalog) Add(ctx context.Context, e Entry) (Entry, error) {
	if e.Path == "" || e.Core == "" {
		return Entry{}, fmt.Errorf("catalog: entry needs a path and a core")
	}
	if e.ID == "" {
		e.ID = EntryID(e.Path)
	}
	if e.Name == "" {
		e.Name = strings.TrimSuffix(filepath.Base(e.Path), filepath.Ext(e.Path))
	}
	if e.System == "" {
		e.System = "unknown"
	}
	_, err := c.db.ExecContext(ctx, `
	INSERT INTO roms(id, path, name, core, system, crc32, added_at)
	VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(path) DO UPDATE SET
	 name=excluded.name,
	 core=excluded.core,
	 system=excluded.system,
	 crc32=excluded.crc32;
	`, e.ID, e.Path, e.Name, e.Core, e.System, int64(e.CRC32))
	if err != nil {
		return Entry{}, fmt.Errorf("catalog: add %s: %w", e.Path, err)
	}
	return e, nil
}

const selectEntry = `SELECT id, path, name, core, system, crc32, added_at FROM roms`

func scanEntry(sc interface{ Scan(...any) error }) (Entry, error) {
	var e Entry
	var crc int64
	if err := sc.Scan(&e.ID, &e.Path, &e.Name, &e.Core, &e.System, &crc, &e.AddedAt); err != nil {
		return Entry{}, err
	}
	e.CRC32 = uint32(crc)
	return e, nil
}

// List returns up to limit entries starting at offset, ordered by name
// without regard to case.
func (c *Catalog) List(ctx context.Context, offset, limit int) ([]Entry, error) {
	rows, err := c.db.QueryContext(ctx, selectEntry+` ORDER BY name COLLATE NOCASE, path LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (c *Catalog) Get(ctx context.Context, id string) (Entry, error) {
	e, err := scanEntry(c.db.QueryRowContext(ctx, selectEntry+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e, err
}

func (c *Catalog) Count(ctx context.Context) (int, error) {
	var n int
	err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM roms`).Scan(&n)
	return n, err
}

// OffsetForPrefix returns the list position of the first entry whose name
// sorts at or after r.
func (c *Catalog) OffsetForPrefix(ctx context.Context, r rune) (int, error) {
	var n int
	err := c.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM roms WHERE name < ? COLLATE NOCASE`,
		string(unicode.ToLower(r)),
	).Scan(&n)
	return n, err
}

// Remove deletes the entry for path. Removing a missing path is not an error.
func (c *Catalog) Remove(ctx context.Context, path string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM roms WHERE path = ?`, path)
	return err
}

// Paths returns every stored path under dir.
func (c *Catalog) Paths(ctx context.Context, dir string) ([]string, error) {
	prefix := strings.TrimSuffix(dir, string(filepath.Separator)) + string(filepath.Separator)
	rows, err := c.db.QueryContext(ctx, `SELECT path FROM roms WHERE instr(path, ?) = 1`, prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
