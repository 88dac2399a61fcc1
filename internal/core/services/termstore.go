package services

import "sync"

// TermStore holds the current raw search term. Every Store bumps a
// monotonic version; only the latest version is current.
type TermStore struct {
	mu      sync.RWMutex
	term    string
	version uint64
}

// NewTermStore creates a store holding the empty term at version 0.
func NewTermStore() *TermStore {
	return &TermStore{}
}

// Store replaces the current term and returns its version.
func (s *TermStore) Store(term string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.version++
	s.term = term
	return s.version
}

// Current returns the current term and its version.
func (s *TermStore) Current() (string, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.term, s.version
}

// Version returns the version of the current term.
func (s *TermStore) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// IsCurrent reports whether version is the current term's version.
func (s *TermStore) IsCurrent(version uint64) bool {
	return s.Version() == version
}
