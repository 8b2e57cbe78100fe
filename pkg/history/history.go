// Package history keeps extraction results in SQLite: a bounded list of the
// most recent extractions and an unbounded collection of saved (starred)
// ones.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	markupextractor "github.com/kataras/markup-extractor"
	"gopkg.in/yaml.v3"
)

// DefaultMaxStored bounds the history when Config.MaxStored is not set.
const DefaultMaxStored = 50

// ErrNotFound is returned for an unknown component id.
var ErrNotFound = errors.New("history: component not found")

// Config configures a Store.
type Config struct {
	// Path is the SQLite file. MemoryPath keeps everything in memory.
	Path string
	// MaxStored is how many recent extractions are kept. Default 50.
	MaxStored int
	// AutoCleanup trims the history to MaxStored after every Save.
	AutoCleanup bool
}

func (c *Config) defaults() {
	if c.Path == "" {
		c.Path = MemoryPath
	}
	if c.MaxStored <= 0 {
		c.MaxStored = DefaultMaxStored
	}
}

// Entry is the listing view of a stored component.
type Entry struct {
	ID        string `json:"id" yaml:"id"`
	Timestamp int64  `json:"timestamp" yaml:"timestamp"` // unix milliseconds
	SavedAt   int64  `json:"savedAt,omitempty" yaml:"savedAt,omitempty"`
	URL       string `json:"url,omitempty" yaml:"url,omitempty"`
	Title     string `json:"title,omitempty" yaml:"title,omitempty"`
	Element   string `json:"element" yaml:"element"`
}

// Time returns Timestamp as a time.Time.
func (e Entry) Time() time.Time { return time.UnixMilli(e.Timestamp) }

// Component is a stored extraction.
type Component struct {
	Entry  `yaml:",inline"`
	Result *markupextractor.Result `json:"result" yaml:"result"`
}

// Store is a SQLite-backed component history. It is safe for concurrent use.
type Store struct {
	db  *sql.DB
	cfg Config
	now func() time.Time
}

// Open opens or creates the store.
func Open(cfg Config) (*Store, error) {
	cfg.defaults()
	db, err := openDB(cfg.Path)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, cfg: cfg, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// NewID returns a component id: "comp_" followed by a time-ordered UUID.
func NewID() (string, error) {
	u, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("history: new id: %w", err)
	}
	return "comp_" + u.String(), nil
}

// Save validates r and stores it as the newest history entry. With
// AutoCleanup the oldest entries beyond MaxStored are removed in the same
// transaction.
func (s *Store) Save(ctx context.Context, r *markupextractor.Result) (*Component, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	id, err := NewID()
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("history: encode result: %w", err)
	}

	c := &Component{
		Entry: Entry{
			ID:        id,
			Timestamp: s.now().UnixMilli(),
			URL:       r.URL,
			Title:     r.Title,
			Element:   r.Element.Label(),
		},
		Result: r,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("history: begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO components (id, created_at, url, title, element, data) VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Timestamp, c.URL, c.Title, c.Element, string(data))
	if err != nil {
		return nil, fmt.Errorf("history: insert: %w", err)
	}

	if s.cfg.AutoCleanup {
		_, err = tx.ExecContext(ctx, `DELETE FROM components WHERE id NOT IN (
			SELECT id FROM components ORDER BY created_at DESC, id DESC LIMIT ?)`, s.cfg.MaxStored)
		if err != nil {
			return nil, fmt.Errorf("history: trim: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("history: commit: %w", err)
	}
	return c, nil
}

// List returns up to limit history entries, newest first. limit <= 0 lists
// everything.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, url, title, element FROM components
		ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: list: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.URL, &e.Title, &e.Element); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Get returns a component from the history or, failing that, from the
// saved collection.
func (s *Store) Get(ctx context.Context, id string) (*Component, error) {
	c, err := s.get(ctx,
		`SELECT id, created_at, 0, url, title, element, data FROM components WHERE id = ?`, id)
	if errors.Is(err, ErrNotFound) {
		return s.get(ctx,
			`SELECT id, created_at, saved_at, url, title, element, data FROM saved_components WHERE id = ?`, id)
	}
	return c, err
}

func (s *Store) get(ctx context.Context, query, id string) (*Component, error) {
	var (
		c    Component
		data string
	)
	err := s.db.QueryRowContext(ctx, query, id).
		Scan(&c.ID, &c.Timestamp, &c.SavedAt, &c.URL, &c.Title, &c.Element, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("history: get %s: %w", id, err)
	}
	c.Result = new(markupextractor.Result)
	if err := json.Unmarshal([]byte(data), c.Result); err != nil {
		return nil, fmt.Errorf("history: decode %s: %w", id, err)
	}
	return &c, nil
}

// Delete removes a component from the history and the saved collection.
func (s *Store) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("history: begin: %w", err)
	}
	defer tx.Rollback()

	var n int64
	for _, q := range []string{
		`DELETE FROM components WHERE id = ?`,
		`DELETE FROM saved_components WHERE id = ?`,
	} {
		res, err := tx.ExecContext(ctx, q, id)
		if err != nil {
			return fmt.Errorf("history: delete %s: %w", id, err)
		}
		affected, _ := res.RowsAffected()
		n += affected
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return tx.Commit()
}

// Star copies a history entry into the saved collection, which is never
// trimmed. Starring a saved component again refreshes its saved time.
func (s *Store) Star(ctx context.Context, id string) (*Component, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c.SavedAt = s.now().UnixMilli()

	data, err := json.Marshal(c.Result)
	if err != nil {
		return nil, fmt.Errorf("history: encode result: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO saved_components (id, saved_at, created_at, url, title, element, data)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET saved_at = excluded.saved_at`,
		c.ID, c.SavedAt, c.Timestamp, c.URL, c.Title, c.Element, string(data))
	if err != nil {
		return nil, fmt.Errorf("history: star %s: %w", id, err)
	}
	return c, nil
}

// ListSaved returns the saved collection, most recently saved first.
func (s *Store) ListSaved(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, saved_at, url, title, element FROM saved_components
		ORDER BY saved_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("history: list saved: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.SavedAt, &e.URL, &e.Title, &e.Element); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ExportYAML writes the named components, or the whole history when no id
// is given, as a YAML list.
func (s *Store) ExportYAML(ctx context.Context, w io.Writer, ids ...string) error {
	if len(ids) == 0 {
		entries, err := s.List(ctx, 0)
		if err != nil {
			return err
		}
		for _, e := range entries {
			ids = append(ids, e.ID)
		}
	}

	components := make([]*Component, 0, len(ids))
	for _, id := range ids {
		c, err := s.Get(ctx, id)
		if err != nil {
			return err
		}
		components = append(components, c)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(components); err != nil {
		return fmt.Errorf("history: encode yaml: %w", err)
	}
	return enc.Close()
}
