// Package session holds the live checkout sessions. Each HTTP request
// resolves its session here; the orchestrator it returns owns all further
// state.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/DimitriDiciocio/RoyalBurgerWeb-sub001/internal/checkout"
	"github.com/DimitriDiciocio/RoyalBurgerWeb-sub001/internal/domain"
)

const (
	// DefaultTTL is how long an idle session survives before eviction
	DefaultTTL = 30 * time.Minute

	// CleanupInterval is how often the background eviction runs
	CleanupInterval = time.Minute
)

// Common errors returned by the store
var (
	ErrSessionNotFound = errors.New("checkout session not found")
)

type entry struct {
	orchestrator *checkout.Orchestrator
	lastAccess   time.Time
}

// Store is the in-memory session registry. Terminal sessions (confirmed,
// cancelled) are kept until their TTL so duplicate requests still resolve.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	ttl      time.Duration

	newOrchestrator func(sessionID string, accountID int64, items []domain.CartItem) *checkout.Orchestrator

	stopCleanup chan struct{}
	wg          sync.WaitGroup
}

// NewStore creates a session store. The factory builds an orchestrator
// with the process-wide dependency set; ttl <= 0 uses DefaultTTL.
func NewStore(factory func(sessionID string, accountID int64, items []domain.CartItem) *checkout.Orchestrator, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &Store{
		sessions:        make(map[string]*entry),
		ttl:             ttl,
		newOrchestrator: factory,
		stopCleanup:     make(chan struct{}),
	}

	s.wg.Add(1)
	go s.cleanupLoop()

	return s
}

// Create opens a new session around the given cart and returns its
// orchestrator.
func (s *Store) Create(accountID int64, items []domain.CartItem) *checkout.Orchestrator {
	id := uuid.New().String()
	o := s.newOrchestrator(id, accountID, items)

	s.mu.Lock()
	s.sessions[id] = &entry{orchestrator: o, lastAccess: time.Now()}
	s.mu.Unlock()

	return o
}

// Get resolves a session by id and refreshes its idle timer.
func (s *Store) Get(sessionID string) (*checkout.Orchestrator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, exists := s.sessions[sessionID]
	if !exists {
		return nil, ErrSessionNotFound
	}
	e.lastAccess = time.Now()
	return e.orchestrator, nil
}

// Delete removes a session immediately.
func (s *Store) Delete(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// cleanupLoop periodically evicts idle sessions
func (s *Store) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.evictIdle()
		case <-s.stopCleanup:
			return
		}
	}
}

// evictIdle drops every session idle past its TTL. A session mid-submission
// is left alone regardless of age.
func (s *Store) evictIdle() {
	cutoff := time.Now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.sessions {
		if e.lastAccess.After(cutoff) {
			continue
		}
		if e.orchestrator.Status() == domain.StatusSubmitting {
			continue
		}
		delete(s.sessions, id)
	}
}

// Close stops the background eviction and waits for it to finish
func (s *Store) Close() error {
	close(s.stopCleanup)
	s.wg.Wait()
	return nil
}
