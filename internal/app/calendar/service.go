package calendar

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/emoai-labs/emoai-agent/internal/clock"
	"github.com/emoai-labs/emoai-agent/internal/domain"
	"github.com/emoai-labs/emoai-agent/internal/observability"
)

var (
	ErrInvalidRange = errors.New("invalid date range")
	ErrInvalidEdit  = errors.New("invalid event edit")
)

// Service is the calendar CRUD surface. The turn pipeline is the exclusive
// writer of unconfirmed events; this service handles everything after:
// listing, confirming with edits, updating, and deleting.
type Service struct {
	events domain.EventStore
	clock  clock.Clock
}

func NewService(events domain.EventStore, clk clock.Clock) *Service {
	if clk == nil {
		clk = clock.NewSystem(time.Local)
	}
	return &Service{events: events, clock: clk}
}

// List returns a user's events, optionally restricted to an inclusive date
// range. Both bounds must be given together.
func (s *Service) List(ctx context.Context, userID domain.UserID, from, to string) ([]*domain.CalendarEvent, error) {
	if from == "" && to == "" {
		return s.events.ListEventsByUser(ctx, userID)
	}
	loc := s.clock.Location()
	if _, err := clock.ParseDate(from, loc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRange, err)
	}
	if _, err := clock.ParseDate(to, loc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRange, err)
	}
	if to < from {
		from, to = to, from
	}
	return s.events.ListEventsByRange(ctx, userID, from, to)
}

// Edits are the optional field changes on confirm/update; nil means keep.
type Edits struct {
	Title       *string
	Description *string
	Date        *string
	Time        *string
	Location    *string
}

// Confirm marks an event confirmed, applying any edits first.
func (s *Service) Confirm(ctx context.Context, userID domain.UserID, id domain.EventID, edits Edits) (*domain.CalendarEvent, error) {
	ev, err := s.events.GetEvent(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyEdits(ev, edits); err != nil {
		return nil, err
	}
	ev.Confirmed = true
	if err := s.events.UpdateEvent(ctx, ev); err != nil {
		return nil, err
	}
	observability.LoggerFromContext(ctx).Info("event confirmed", "event_id", id)
	return ev, nil
}

// Update applies edits without changing the confirmed flag.
func (s *Service) Update(ctx context.Context, userID domain.UserID, id domain.EventID, edits Edits) (*domain.CalendarEvent, error) {
	ev, err := s.events.GetEvent(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyEdits(ev, edits); err != nil {
		return nil, err
	}
	if err := s.events.UpdateEvent(ctx, ev); err != nil {
		return nil, err
	}
	return ev, nil
}

func (s *Service) Delete(ctx context.Context, userID domain.UserID, id domain.EventID) error {
	return s.events.DeleteEvent(ctx, userID, id)
}

// MarkSynced records a successful push to an external calendar.
func (s *Service) MarkSynced(ctx context.Context, userID domain.UserID, id domain.EventID, externalID string) (*domain.CalendarEvent, error) {
	ev, err := s.events.GetEvent(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	ev.Synced = true
	ev.ExternalID = externalID
	if err := s.events.UpdateEvent(ctx, ev); err != nil {
		return nil, err
	}
	return ev, nil
}

func (s *Service) applyEdits(ev *domain.CalendarEvent, edits Edits) error {
	loc := s.clock.Location()
	if edits.Title != nil {
		title := strings.TrimSpace(*edits.Title)
		if title == "" {
			return fmt.Errorf("%w: event title cannot be empty", ErrInvalidEdit)
		}
		ev.Title = title
	}
	if edits.Description != nil {
		ev.Description = strings.TrimSpace(*edits.Description)
	}
	if edits.Date != nil {
		if _, err := clock.ParseDate(*edits.Date, loc); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidEdit, err)
		}
		ev.Date = *edits.Date
	}
	if edits.Time != nil {
		hhmm := strings.TrimSpace(*edits.Time)
		if hhmm != "" && !clock.ValidTime(hhmm) {
			return fmt.Errorf("%w: invalid time of day %q", ErrInvalidEdit, hhmm)
		}
		ev.Time = hhmm
	}
	if edits.Location != nil {
		ev.Location = strings.TrimSpace(*edits.Location)
	}
	return nil
}
