package clock_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/emoai-labs/emoai-agent/internal/clock"
)

func TestParseDate(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	d, err := clock.ParseDate("2025-11-14", loc)
	require.NoError(t, err)
	require.Equal(t, 2025, d.Year())
	require.Equal(t, time.November, d.Month())
	require.Equal(t, 14, d.Day())
	require.Equal(t, loc, d.Location())
	require.Equal(t, 0, d.Hour())

	_, err = clock.ParseDate("14/11/2025", loc)
	require.Error(t, err)
}

func TestParseDateTime(t *testing.T) {
	loc := time.UTC

	dt, err := clock.ParseDateTime("2025-11-09", "14:00", loc)
	require.NoError(t, err)
	require.Equal(t, 14, dt.Hour())
	require.Equal(t, 0, dt.Minute())

	_, err = clock.ParseDateTime("2025-11-09", "2pm", loc)
	require.Error(t, err)
}

func TestValidTime(t *testing.T) {
	require.True(t, clock.ValidTime("00:00"))
	require.True(t, clock.ValidTime("23:59"))
	require.False(t, clock.ValidTime("24:00"))
	require.False(t, clock.ValidTime(""))
	require.False(t, clock.ValidTime("9am"))
}

func TestFixedClock(t *testing.T) {
	at := time.Date(2025, 11, 8, 20, 0, 0, 0, time.UTC)
	c := clock.NewFixed(at)
	require.Equal(t, at, c.Now())
	require.Equal(t, time.UTC, c.Location())
	require.Equal(t, "2025-11-08", clock.DateOf(c.Now(), c.Location()))
}
