package memory

import (
	"context"
	"sync"

	"github.com/emoai-labs/emoai-agent/internal/domain"
)

type convKey struct {
	user    domain.UserID
	session domain.SessionID
}

// MessageStore keeps per-user, per-session message logs in memory.
type MessageStore struct {
	mu       sync.RWMutex
	messages map[convKey][]*domain.Message
}

func NewMessageStore() *MessageStore {
	return &MessageStore{
		messages: make(map[convKey][]*domain.Message),
	}
}

func (s *MessageStore) AppendMessage(ctx context.Context, msg *domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := convKey{user: msg.UserID, session: msg.SessionID}
	s.messages[key] = append(s.messages[key], msg)
	return nil
}

func (s *MessageStore) MessagesBySession(ctx context.Context, userID domain.UserID, sessionID domain.SessionID, limit int) ([]*domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.messages[convKey{user: userID, session: sessionID}]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]*domain.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (s *MessageStore) DeleteSessionMessages(ctx context.Context, userID domain.UserID, sessionID domain.SessionID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := convKey{user: userID, session: sessionID}
	n := len(s.messages[key])
	delete(s.messages, key)
	return n, nil
}
