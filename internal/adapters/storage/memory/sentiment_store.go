package memory

import (
	"context"
	"sync"

	"github.com/emoai-labs/emoai-agent/internal/domain"
)

// SentimentStore keeps per-session sentiment observations in memory,
// append-only in arrival order.
type SentimentStore struct {
	mu           sync.RWMutex
	observations map[convKey][]*domain.SentimentObservation
}

func NewSentimentStore() *SentimentStore {
	return &SentimentStore{
		observations: make(map[convKey][]*domain.SentimentObservation),
	}
}

func (s *SentimentStore) AppendObservation(ctx context.Context, obs *domain.SentimentObservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := convKey{user: obs.UserID, session: obs.SessionID}
	s.observations[key] = append(s.observations[key], obs)
	return nil
}

func (s *SentimentStore) ObservationsBySession(ctx context.Context, userID domain.UserID, sessionID domain.SessionID) ([]*domain.SentimentObservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obs := s.observations[convKey{user: userID, session: sessionID}]
	out := make([]*domain.SentimentObservation, len(obs))
	copy(out, obs)
	return out, nil
}
