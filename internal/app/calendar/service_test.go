package calendar_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/emoai-labs/emoai-agent/internal/adapters/storage/memory"
	"github.com/emoai-labs/emoai-agent/internal/app/calendar"
	"github.com/emoai-labs/emoai-agent/internal/clock"
	"github.com/emoai-labs/emoai-agent/internal/domain"
)

func ptr(s string) *string { return &s }

func newService(t *testing.T) (*calendar.Service, *memory.EventStore) {
	t.Helper()
	store := memory.NewEventStore()
	svc := calendar.NewService(store, clock.NewFixed(time.Date(2025, 11, 8, 12, 0, 0, 0, time.UTC)))
	return svc, store
}

func seed(t *testing.T, store *memory.EventStore) {
	t.Helper()
	require.NoError(t, store.InsertEvent(context.Background(), &domain.CalendarEvent{
		ID: "e1", UserID: "u1", Title: "Coffee meeting", Date: "2025-11-14", Time: "10:00",
	}))
}

func TestListWithAndWithoutRange(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	seed(t, store)
	require.NoError(t, store.InsertEvent(ctx, &domain.CalendarEvent{
		ID: "e2", UserID: "u1", Title: "Dentist", Date: "2025-12-03",
	}))

	all, err := svc.List(ctx, "u1", "", "")
	require.NoError(t, err)
	require.Len(t, all, 2)

	nov, err := svc.List(ctx, "u1", "2025-11-01", "2025-11-30")
	require.NoError(t, err)
	require.Len(t, nov, 1)
	require.Equal(t, "Coffee meeting", nov[0].Title)

	_, err = svc.List(ctx, "u1", "last week", "2025-11-30")
	require.ErrorIs(t, err, calendar.ErrInvalidRange)
}

func TestConfirmAppliesEdits(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	seed(t, store)

	ev, err := svc.Confirm(ctx, "u1", "e1", calendar.Edits{
		Time:     ptr("11:30"),
		Location: ptr("Blue Bottle"),
	})
	require.NoError(t, err)
	require.True(t, ev.Confirmed)
	require.Equal(t, "11:30", ev.Time)
	require.Equal(t, "Blue Bottle", ev.Location)

	stored, err := store.GetEvent(ctx, "u1", "e1")
	require.NoError(t, err)
	require.True(t, stored.Confirmed)
}

func TestConfirmRejectsBadEdits(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	seed(t, store)

	_, err := svc.Confirm(ctx, "u1", "e1", calendar.Edits{Title: ptr("   ")})
	require.ErrorIs(t, err, calendar.ErrInvalidEdit)

	_, err = svc.Confirm(ctx, "u1", "e1", calendar.Edits{Date: ptr("14/11/2025")})
	require.ErrorIs(t, err, calendar.ErrInvalidEdit)

	_, err = svc.Confirm(ctx, "u1", "e1", calendar.Edits{Time: ptr("25:99")})
	require.ErrorIs(t, err, calendar.ErrInvalidEdit)

	stored, err := store.GetEvent(ctx, "u1", "e1")
	require.NoError(t, err)
	require.False(t, stored.Confirmed, "failed edits must not confirm")
}

func TestOwnershipIsScoped(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	seed(t, store)

	_, err := svc.Confirm(ctx, "intruder", "e1", calendar.Edits{})
	require.ErrorIs(t, err, domain.ErrEventNotFound)

	require.ErrorIs(t, svc.Delete(ctx, "intruder", "e1"), domain.ErrEventNotFound)

	// untouched
	stored, err := store.GetEvent(ctx, "u1", "e1")
	require.NoError(t, err)
	require.False(t, stored.Confirmed)
}

func TestDeleteAndMarkSynced(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	seed(t, store)

	ev, err := svc.MarkSynced(ctx, "u1", "e1", "gcal-123")
	require.NoError(t, err)
	require.True(t, ev.Synced)
	require.Equal(t, "gcal-123", ev.ExternalID)

	require.NoError(t, svc.Delete(ctx, "u1", "e1"))
	_, err = store.GetEvent(ctx, "u1", "e1")
	require.ErrorIs(t, err, domain.ErrEventNotFound)
}
