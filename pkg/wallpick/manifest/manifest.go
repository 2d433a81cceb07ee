package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned by Get when no entry matches.
	ErrNotFound = errors.New("history entry not found")

	// ErrAmbiguousID is returned by Get when a prefix matches several entries.
	ErrAmbiguousID = errors.New("history entry ID is ambiguous")
)

// Manifest stores entries as one JSON file each under dir.
type Manifest struct {
	dir string
	mu  sync.Mutex

	nowFunc func() time.Time
}

// New creates a Manifest for dir. The directory is created on the first Log.
func New(dir string) (*Manifest, error) {
	if dir == "" {
		return nil, errors.New("manifest directory cannot be empty")
	}
	return &Manifest{dir: dir, nowFunc: time.Now}, nil
}

// Dir returns the directory entries are written to.
func (m *Manifest) Dir() string {
	return m.dir
}

// Log assigns an ID and timestamp to e and writes it.
func (m *Manifest) Log(e Entry) (*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate entry ID: %w", err)
	}
	e.ID = id.String()
	e.Timestamp = m.nowFunc().UTC()

	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create manifest directory: %w", err)
	}
	if err := m.writeEntry(&e); err != nil {
		return nil, fmt.Errorf("failed to write manifest entry: %w", err)
	}
	return &e, nil
}

func (m *Manifest) writeEntry(e *Entry) error {
	path := filepath.Join(m.dir, e.ID+".json")

	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// List returns entries newest first. A limit of 0 or less returns all.
// Files that cannot be parsed are skipped.
func (m *Manifest) List(limit int) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries, err := m.readAll()
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Get returns the entry whose ID equals id or, failing that, the single
// entry whose ID starts with id.
func (m *Manifest) Get(id string) (*Entry, error) {
	if id == "" {
		return nil, errors.New("entry ID cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entries, err := m.readAll()
	if err != nil {
		return nil, err
	}

	var match *Entry
	for i := range entries {
		e := &entries[i]
		if e.ID == id {
			return e, nil
		}
		if strings.HasPrefix(e.ID, id) {
			if match != nil {
				return nil, fmt.Errorf("%w: %s", ErrAmbiguousID, id)
			}
			match = e
		}
	}
	if match == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return match, nil
}

// Cleanup removes entries recorded more than retentionDays ago and returns
// how many were removed. A retention of 0 or less keeps everything.
func (m *Manifest) Cleanup(retentionDays int) (int, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	return m.removeBefore(m.nowFunc().AddDate(0, 0, -retentionDays))
}

// CleanupOlderThan removes entries older than age. A zero or negative age
// keeps everything.
func (m *Manifest) CleanupOlderThan(age time.Duration) (int, error) {
	if age <= 0 {
		return 0, nil
	}
	return m.removeBefore(m.nowFunc().Add(-age))
}

func (m *Manifest) removeBefore(cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries, err := m.readAll()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, e := range entries {
		if !e.Timestamp.Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(m.dir, e.ID+".json")); err != nil {
			continue
		}
		removed++
	}
	return removed, nil
}

func (m *Manifest) readAll() ([]Entry, error) {
	files, err := os.ReadDir(m.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("failed to read manifest directory: %w", err)
	}

	entries := make([]Entry, 0, len(files))
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		e, err := m.readEntryFile(f.Name())
		if err != nil {
			continue
		}
		entries = append(entries, *e)
	}
	return entries, nil
}

func (m *Manifest) readEntryFile(name string) (*Entry, error) {
	data, err := os.ReadFile(filepath.Join(m.dir, name))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("failed to unmarshal entry: %w", err)
	}
	if e.ID == "" {
		return nil, errors.New("entry has no ID")
	}
	return &e, nil
}
