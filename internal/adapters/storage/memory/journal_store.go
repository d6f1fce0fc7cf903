package memory

import (
	"context"
	"sync"

	"github.com/emoai-labs/emoai-agent/internal/domain"
)

// JournalStore keeps journal entries in memory. It is NOT persistent and is
// only suitable for development / local mode.
type JournalStore struct {
	mu       sync.RWMutex
	entries  map[domain.JournalEntryID]*domain.JournalEntry
	byUserID map[domain.UserID][]domain.JournalEntryID
}

func NewJournalStore() *JournalStore {
	return &JournalStore{
		entries:  make(map[domain.JournalEntryID]*domain.JournalEntry),
		byUserID: make(map[domain.UserID][]domain.JournalEntryID),
	}
}

func (s *JournalStore) AppendEntry(ctx context.Context, entry *domain.JournalEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.appendLocked(entry)
	return nil
}

func (s *JournalStore) appendLocked(entry *domain.JournalEntry) {
	cp := *entry
	s.entries[entry.ID] = &cp
	s.byUserID[entry.UserID] = append(s.byUserID[entry.UserID], entry.ID)
}

// EntriesByUser returns the last `limit` entries for a user, oldest first.
// limit <= 0 returns all.
func (s *JournalStore) EntriesByUser(ctx context.Context, userID domain.UserID, limit int) ([]*domain.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byUserID[userID]
	if len(ids) == 0 {
		return []*domain.JournalEntry{}, nil
	}

	if limit <= 0 || limit > len(ids) {
		limit = len(ids)
	}
	selected := ids[len(ids)-limit:]

	out := make([]*domain.JournalEntry, 0, len(selected))
	for _, id := range selected {
		if e, ok := s.entries[id]; ok {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}
