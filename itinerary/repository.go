package itinerary

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Repository is the durable store behind a builder session. Save is called
// after every mutation; Load is called once when the store is created.
type Repository interface {
	// Load returns the persisted snapshot, whether one existed, and any
	// read/decode error.
	Load() (Snapshot, bool, error)
	Save(Snapshot) error
}

// ─── File-backed repository ──────────────────────────────────────────────────

// FileRepository persists a snapshot as a JSON file, one file per builder
// session.
type FileRepository struct {
	path string
}

func NewFileRepository(path string) *FileRepository {
	return &FileRepository{path: path}
}

func (r *FileRepository) Load() (Snapshot, bool, error) {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("read %s: %w", r.path, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, false, fmt.Errorf("decode %s: %w", r.path, err)
	}
	return snap, true, nil
}

func (r *FileRepository) Save(snap Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := os.WriteFile(r.path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", r.path, err)
	}
	return nil
}

// ─── In-memory repository ────────────────────────────────────────────────────

// MemoryRepository keeps the snapshot in memory. Useful in tests and for
// callers that don't want durable builder state.
type MemoryRepository struct {
	mu    sync.Mutex
	snap  Snapshot
	saved bool
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Load() (Snapshot, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.saved {
		return Snapshot{}, false, nil
	}
	return r.snap.Clone(), true, nil
}

func (r *MemoryRepository) Save(snap Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snap = snap.Clone()
	r.saved = true
	return nil
}
