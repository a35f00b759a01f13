package history

import (
	"fmt"
	"strings"
	"sync"

	"github.com/wricardo/radio-car-sim/game/simulation"
)

// DefaultLimit is the number of runs kept when NewStore gets a non-positive limit
const DefaultLimit = 100

// Store keeps the most recent run results in memory
type Store struct {
	runs  map[string]*simulation.Result
	order []string // lowercased ids, oldest first
	limit int
	mu    sync.RWMutex
}

// NewStore creates a store holding at most limit runs
func NewStore(limit int) *Store {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Store{
		runs:  make(map[string]*simulation.Result),
		limit: limit,
	}
}

// Add records result, evicting the oldest run when the store is full.
// Adding an id twice replaces the earlier result.
func (s *Store) Add(result *simulation.Result) {
	if result == nil || result.ID == "" {
		return
	}
	key := strings.ToLower(result.ID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[key]; exists {
		s.removeLocked(key)
	}
	s.runs[key] = result
	s.order = append(s.order, key)

	for len(s.order) > s.limit {
		delete(s.runs, s.order[0])
		s.order = s.order[1:]
	}
}

// Get retrieves a run by ID (case-insensitive)
func (s *Store) Get(id string) (*simulation.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result, exists := s.runs[strings.ToLower(id)]
	if !exists {
		return nil, fmt.Errorf("%w: %s", simulation.ErrRunNotFound, id)
	}
	return result, nil
}

// List returns the stored runs, newest first
func (s *Store) List() []*simulation.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]*simulation.Result, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		results = append(results, s.runs[s.order[i]])
	}
	return results
}

// Count returns the number of stored runs
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.runs)
}

func (s *Store) removeLocked(key string) {
	delete(s.runs, key)
	for i, id := range s.order {
		if id == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}
