package itinerary

import (
	"path/filepath"
	"regexp"
	"sync"
)

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidSessionID reports whether an ID is safe to use as a state filename.
func ValidSessionID(id string) bool {
	return sessionIDPattern.MatchString(id)
}

// Manager hands out one Store per builder session, each backed by its own
// JSON state file under dir.
type Manager struct {
	mu     sync.Mutex
	dir    string
	stores map[string]*Store
}

func NewManager(dir string) *Manager {
	return &Manager{
		dir:    dir,
		stores: make(map[string]*Store),
	}
}

// Store returns the session's store, hydrating it from disk on first access.
func (m *Manager) Store(sessionID string) *Store {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.stores[sessionID]; ok {
		return s
	}

	repo := NewFileRepository(filepath.Join(m.dir, sessionID+".json"))
	s := NewStore(repo)
	m.stores[sessionID] = s
	return s
}
