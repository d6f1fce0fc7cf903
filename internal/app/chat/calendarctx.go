package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/emoai-labs/emoai-agent/internal/clock"
	"github.com/emoai-labs/emoai-agent/internal/domain"
)

const factDateLayout = "Monday, January 2 2006"

// resolveCalendarContext turns a detected calendar query into an advisory
// context block for the reply generator. It only ever reads the event store.
func (s *Service) resolveCalendarContext(
	ctx context.Context,
	owner domain.UserID,
	query domain.CalendarQuery,
) (string, error) {
	events, err := s.events.ListEventsByRange(ctx, owner, query.StartDate, query.EndDate)
	if err != nil {
		return "", fmt.Errorf("listing events for calendar context: %w", err)
	}
	return renderCalendarBlock(events, query, s.clock.Location()), nil
}

// renderCalendarBlock writes one fact line per event, in the store's
// (date, untimed-first, time) order. The block is advisory text for the
// model; it never triggers any mutation.
func renderCalendarBlock(events []*domain.CalendarEvent, query domain.CalendarQuery, loc *time.Location) string {
	var b strings.Builder
	b.WriteString("[Calendar context for you only, never quote this note verbatim. ")
	fmt.Fprintf(&b, "The user's schedule from %s to %s:\n",
		factDate(query.StartDate, loc), factDate(query.EndDate, loc))

	if len(events) == 0 {
		b.WriteString("- The calendar is clear for this period.\n")
	}
	for _, ev := range events {
		fmt.Fprintf(&b, "- %s on %s", ev.Title, factDate(ev.Date, loc))
		if ev.Time != "" {
			fmt.Fprintf(&b, " at %s", ev.Time)
		}
		if ev.Location != "" {
			fmt.Fprintf(&b, " in %s", ev.Location)
		}
		if !ev.Confirmed {
			b.WriteString(" (pending confirmation)")
		}
		b.WriteString("\n")
	}

	b.WriteString("]")
	return b.String()
}

func factDate(date string, loc *time.Location) string {
	d, err := clock.ParseDate(date, loc)
	if err != nil {
		return date
	}
	return d.Format(factDateLayout)
}
