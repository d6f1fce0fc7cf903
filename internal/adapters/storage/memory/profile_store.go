package memory

import (
	"context"
	"sync"

	"github.com/emoai-labs/emoai-agent/internal/domain"
)

type ProfileStore struct {
	mu       sync.RWMutex
	profiles map[domain.UserID]*domain.UserProfile
}

func NewProfileStore() *ProfileStore {
	return &ProfileStore{
		profiles: make(map[domain.UserID]*domain.UserProfile),
	}
}

func (s *ProfileStore) GetProfile(ctx context.Context, userID domain.UserID) (*domain.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[userID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *ProfileStore) PutProfile(ctx context.Context, profile *domain.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *profile
	s.profiles[profile.UserID] = &cp
	return nil
}
