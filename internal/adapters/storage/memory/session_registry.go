package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/emoai-labs/emoai-agent/internal/domain"
)

// SessionRegistry tracks each user's active session identifier in memory.
type SessionRegistry struct {
	mu     sync.Mutex
	active map[domain.UserID]domain.SessionID
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		active: make(map[domain.UserID]domain.SessionID),
	}
}

func (r *SessionRegistry) ActiveSession(ctx context.Context, userID domain.UserID) (domain.SessionID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.active[userID]; ok {
		return id, nil
	}
	id := domain.SessionID(uuid.NewString())
	r.active[userID] = id
	return id, nil
}

func (r *SessionRegistry) RotateSession(ctx context.Context, userID domain.UserID) (domain.SessionID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.rotateLocked(userID), nil
}

func (r *SessionRegistry) rotateLocked(userID domain.UserID) domain.SessionID {
	id := domain.SessionID(uuid.NewString())
	r.active[userID] = id
	return id
}
