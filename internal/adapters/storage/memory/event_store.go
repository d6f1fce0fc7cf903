package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/emoai-labs/emoai-agent/internal/domain"
)

// EventStore keeps per-user calendar events in memory.
type EventStore struct {
	mu     sync.RWMutex
	events map[domain.EventID]*domain.CalendarEvent
	byUser map[domain.UserID][]domain.EventID
}

func NewEventStore() *EventStore {
	return &EventStore{
		events: make(map[domain.EventID]*domain.CalendarEvent),
		byUser: make(map[domain.UserID][]domain.EventID),
	}
}

func (s *EventStore) InsertEvent(ctx context.Context, ev *domain.CalendarEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *ev
	s.events[ev.ID] = &cp
	s.byUser[ev.UserID] = append(s.byUser[ev.UserID], ev.ID)
	return nil
}

func (s *EventStore) GetEvent(ctx context.Context, userID domain.UserID, id domain.EventID) (*domain.CalendarEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ev, ok := s.events[id]
	if !ok || ev.UserID != userID {
		return nil, domain.ErrEventNotFound
	}
	cp := *ev
	return &cp, nil
}

func (s *EventStore) ListEventsByRange(ctx context.Context, userID domain.UserID, startDate, endDate string) ([]*domain.CalendarEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.CalendarEvent
	for _, id := range s.byUser[userID] {
		ev, ok := s.events[id]
		if !ok {
			continue
		}
		if ev.Date >= startDate && ev.Date <= endDate {
			cp := *ev
			out = append(out, &cp)
		}
	}
	sortEvents(out)
	return out, nil
}

func (s *EventStore) ListEventsByUser(ctx context.Context, userID domain.UserID) ([]*domain.CalendarEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.CalendarEvent
	for _, id := range s.byUser[userID] {
		if ev, ok := s.events[id]; ok {
			cp := *ev
			out = append(out, &cp)
		}
	}
	sortEvents(out)
	return out, nil
}

func (s *EventStore) UpdateEvent(ctx context.Context, ev *domain.CalendarEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.events[ev.ID]
	if !ok || existing.UserID != ev.UserID {
		return domain.ErrEventNotFound
	}
	cp := *ev
	s.events[ev.ID] = &cp
	return nil
}

func (s *EventStore) DeleteEvent(ctx context.Context, userID domain.UserID, id domain.EventID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, ok := s.events[id]
	if !ok || ev.UserID != userID {
		return domain.ErrEventNotFound
	}
	delete(s.events, id)

	ids := s.byUser[ev.UserID]
	for i, v := range ids {
		if v == id {
			s.byUser[ev.UserID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	return nil
}

// sortEvents orders by date, then time of day; both are ISO strings so
// lexicographic order is chronological and all-day events (empty time) come
// before timed ones on the same date.
func sortEvents(events []*domain.CalendarEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Date != events[j].Date {
			return events[i].Date < events[j].Date
		}
		return events[i].Time < events[j].Time
	})
}
