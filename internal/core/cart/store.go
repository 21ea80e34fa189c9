package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// MemoryStore keeps lines for the lifetime of the process.
type MemoryStore struct {
	mu    sync.Mutex
	lines []Line
	saves int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(ctx context.Context) ([]Line, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Line(nil), m.lines...), nil
}

func (m *MemoryStore) Save(ctx context.Context, lines []Line) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = append([]Line(nil), lines...)
	m.saves++
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = nil
	return nil
}

// Saves reports how many times the cart was written.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// FileStore keeps one JSON document per browsing session under dir.
type FileStore struct {
	path string
}

type sessionFile struct {
	Version int    `json:"version"`
	Lines   []Line `json:"lines"`
}

const sessionFileVersion = 1

func NewFileStore(dir, sessionID string) (*FileStore, error) {
	if sessionID == "" {
		return nil, errors.New("session id is required")
	}
	if filepath.Base(sessionID) != sessionID {
		return nil, fmt.Errorf("invalid session id %q", sessionID)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	return &FileStore{path: filepath.Join(dir, "cart-"+sessionID+".json")}, nil
}

func (f *FileStore) Path() string { return f.path }

func (f *FileStore) Load(ctx context.Context) ([]Line, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}

	var doc sessionFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.path, err)
	}
	if doc.Version != sessionFileVersion {
		return nil, fmt.Errorf("unsupported cart version %d", doc.Version)
	}
	return doc.Lines, nil
}

// Save writes to a temp file and renames it so a crash never leaves a torn cart.
func (f *FileStore) Save(ctx context.Context, lines []Line) error {
	if lines == nil {
		lines = []Line{}
	}
	data, err := json.MarshalIndent(sessionFile{Version: sessionFileVersion, Lines: lines}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".cart-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write cart: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close cart: %w", err)
	}
	return os.Rename(tmp.Name(), f.path)
}

func (f *FileStore) Delete(ctx context.Context) error {
	err := os.Remove(f.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
