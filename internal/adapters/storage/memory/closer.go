package memory

import (
	"context"
	"sync"

	"github.com/emoai-labs/emoai-agent/internal/domain"
)

// SessionCloser couples the three memory stores involved in closing a
// session. A single mutex serializes closures so the journal insert, the
// message deletion, and the session rotation always land together.
type SessionCloser struct {
	mu       sync.Mutex
	messages *MessageStore
	journal  *JournalStore
	sessions *SessionRegistry
}

func NewSessionCloser(messages *MessageStore, journal *JournalStore, sessions *SessionRegistry) *SessionCloser {
	return &SessionCloser{
		messages: messages,
		journal:  journal,
		sessions: sessions,
	}
}

func (c *SessionCloser) CloseSession(
	ctx context.Context,
	userID domain.UserID,
	sessionID domain.SessionID,
	entry *domain.JournalEntry,
) (domain.SessionID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.journal.mu.Lock()
	c.journal.appendLocked(entry)
	c.journal.mu.Unlock()

	if _, err := c.messages.DeleteSessionMessages(ctx, userID, sessionID); err != nil {
		return "", err
	}

	c.sessions.mu.Lock()
	next := c.sessions.rotateLocked(userID)
	c.sessions.mu.Unlock()

	return next, nil
}
