package api

import (
	"sync"

	"github.com/google/uuid"
)

// VerificationStore keeps verification results in memory.
type VerificationStore struct {
	mu    sync.Mutex
	items map[string]Verification
}

func NewVerificationStore() *VerificationStore {
	return &VerificationStore{items: make(map[string]Verification)}
}

// Save assigns an id to v and stores it.
func (s *VerificationStore) Save(v Verification) Verification {
	v.ID = newVerificationID()
	s.mu.Lock()
	s.items[v.ID] = v
	s.mu.Unlock()
	return v
}

func (s *VerificationStore) Get(id string) (Verification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.items[id]
	return v, ok
}

func (s *VerificationStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return false
	}
	delete(s.items, id)
	return true
}

func newVerificationID() string {
	return "verif_" + uuid.NewString()
}
