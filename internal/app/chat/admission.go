package chat

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/emoai-labs/emoai-agent/internal/clock"
	"github.com/emoai-labs/emoai-agent/internal/domain"
	"github.com/emoai-labs/emoai-agent/internal/observability"
)

// admitCandidate applies the future-only admission filter to an extracted
// event candidate. Rejection is silent: the turn continues and the user sees
// nothing, so stale mentions of past events never pollute the calendar.
//
// A candidate dated today with no time of day is rejected: without a time
// there is no way to tell whether the moment already passed.
func (s *Service) admitCandidate(
	ctx context.Context,
	owner domain.UserID,
	cand domain.EventCandidate,
	now time.Time,
) (*domain.CalendarEvent, bool) {
	log := observability.LoggerFromContext(ctx)
	loc := s.clock.Location()

	if strings.TrimSpace(cand.Title) == "" {
		log.Debug("event candidate rejected: empty title")
		return nil, false
	}

	if cand.Time != "" {
		moment, err := clock.ParseDateTime(cand.Date, cand.Time, loc)
		if err != nil {
			log.Debug("event candidate rejected: bad date-time", "error", err)
			return nil, false
		}
		if !moment.After(now) {
			log.Debug("event candidate rejected: moment not in the future",
				"date", cand.Date, "time", cand.Time)
			return nil, false
		}
	} else {
		if _, err := clock.ParseDate(cand.Date, loc); err != nil {
			log.Debug("event candidate rejected: bad date", "error", err)
			return nil, false
		}
		// All-day events compare by date only; ISO dates compare as strings.
		today := clock.DateOf(now, loc)
		if cand.Date <= today {
			log.Debug("event candidate rejected: all-day event not strictly after today",
				"date", cand.Date, "today", today)
			return nil, false
		}
	}

	return &domain.CalendarEvent{
		ID:         domain.EventID(uuid.NewString()),
		UserID:     owner,
		Title:      strings.TrimSpace(cand.Title),
		Date:       cand.Date,
		Time:       cand.Time,
		Location:   strings.TrimSpace(cand.Location),
		Confirmed:  false,
		Synced:     false,
		SourceText: cand.SourceText,
		CreatedAt:  now,
	}, true
}
