package llm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/emoai-labs/emoai-agent/internal/domain"
)

func TestDecodeSentiment(t *testing.T) {
	cat, intensity, err := decodeSentiment(`{"category":"anxious","intensity":0.8}`)
	require.NoError(t, err)
	require.Equal(t, domain.SentimentAnxious, cat)
	require.InDelta(t, 0.8, intensity, 1e-9)
}

func TestDecodeSentimentClampsIntensity(t *testing.T) {
	cat, intensity, err := decodeSentiment(`{"category":"happy","intensity":1.7}`)
	require.NoError(t, err)
	require.Equal(t, domain.SentimentHappy, cat)
	require.Equal(t, 1.0, intensity)

	_, intensity, err = decodeSentiment(`{"category":"sad","intensity":-0.2}`)
	require.NoError(t, err)
	require.Equal(t, 0.0, intensity)
}

func TestDecodeSentimentUnknownCategoryIsNeutral(t *testing.T) {
	cat, _, err := decodeSentiment(`{"category":"ecstatic","intensity":0.9}`)
	require.NoError(t, err)
	require.Equal(t, domain.SentimentNeutral, cat)
}

func TestDecodeSentimentMalformed(t *testing.T) {
	_, _, err := decodeSentiment(`not json at all`)
	require.Error(t, err)
}

func TestDecodeSentimentStripsCodeFence(t *testing.T) {
	cat, _, err := decodeSentiment("```json\n{\"category\":\"sad\",\"intensity\":0.6}\n```")
	require.NoError(t, err)
	require.Equal(t, domain.SentimentSad, cat)
}

func TestDecodeEvent(t *testing.T) {
	cand, err := decodeEvent(
		`{"has_event":true,"title":"Dentist appointment","date":"2025-11-09","time":"14:00","location":""}`,
		"I have a dentist appointment tomorrow at 2pm",
	)
	require.NoError(t, err)
	require.True(t, cand.HasEvent)
	require.Equal(t, "Dentist appointment", cand.Title)
	require.Equal(t, "2025-11-09", cand.Date)
	require.Equal(t, "14:00", cand.Time)
	require.Equal(t, "I have a dentist appointment tomorrow at 2pm", cand.SourceText)
}

func TestDecodeEventNone(t *testing.T) {
	cand, err := decodeEvent(`{"has_event":false,"title":"","date":"","time":"","location":""}`, "hi")
	require.NoError(t, err)
	require.False(t, cand.HasEvent)
}

func TestDecodeEventBadDateIsError(t *testing.T) {
	_, err := decodeEvent(`{"has_event":true,"title":"X","date":"next friday","time":"","location":""}`, "x")
	require.Error(t, err)
}

func TestDecodeEventBadTimeDegradesToAllDay(t *testing.T) {
	cand, err := decodeEvent(`{"has_event":true,"title":"X","date":"2025-12-01","time":"2pm","location":""}`, "x")
	require.NoError(t, err)
	require.True(t, cand.HasEvent)
	require.Empty(t, cand.Time)
}

func TestDecodeQuery(t *testing.T) {
	q, err := decodeQuery(`{"is_query":true,"start_date":"2025-11-10","end_date":"2025-11-16","shape":"week"}`)
	require.NoError(t, err)
	require.True(t, q.IsQuery)
	require.Equal(t, "2025-11-10", q.StartDate)
	require.Equal(t, "2025-11-16", q.EndDate)
	require.Equal(t, domain.QueryShapeWeek, q.Shape)
}

func TestDecodeQueryReversedRangeIsNormalized(t *testing.T) {
	q, err := decodeQuery(`{"is_query":true,"start_date":"2025-11-16","end_date":"2025-11-10","shape":"week"}`)
	require.NoError(t, err)
	require.Equal(t, "2025-11-10", q.StartDate)
	require.Equal(t, "2025-11-16", q.EndDate)
}

func TestDecodeQueryUnknownShape(t *testing.T) {
	q, err := decodeQuery(`{"is_query":true,"start_date":"2025-11-10","end_date":"2025-11-10","shape":"fortnight"}`)
	require.NoError(t, err)
	require.Equal(t, domain.QueryShapeSpecific, q.Shape)
}

func TestDecodeQueryMalformed(t *testing.T) {
	_, err := decodeQuery(`{"is_query": "yes"`)
	require.Error(t, err)
}

func TestToneDirectiveThreshold(t *testing.T) {
	cases := []struct {
		name     string
		tone     domain.ToneHint
		directed bool
	}{
		{"sad above threshold", domain.ToneHint{Category: domain.SentimentSad, Intensity: 0.8}, true},
		{"sad at threshold", domain.ToneHint{Category: domain.SentimentSad, Intensity: 0.5}, false},
		{"happy above threshold", domain.ToneHint{Category: domain.SentimentHappy, Intensity: 0.6}, true},
		{"anxious above threshold", domain.ToneHint{Category: domain.SentimentAnxious, Intensity: 0.9}, true},
		{"frustrated below threshold", domain.ToneHint{Category: domain.SentimentFrustrated, Intensity: 0.3}, false},
		{"confused at any intensity", domain.ToneHint{Category: domain.SentimentConfused, Intensity: 0.1}, true},
		{"neutral never", domain.ToneHint{Category: domain.SentimentNeutral, Intensity: 1.0}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := toneDirective(tc.tone)
			if tc.directed {
				require.NotEmpty(t, got)
			} else {
				require.Empty(t, got)
			}
		})
	}
}

func TestApplyTonePrependsToFinalUserTurn(t *testing.T) {
	history := []domain.ChatTurn{
		{Role: domain.RoleUser, Text: "hi"},
		{Role: domain.RoleCompanion, Text: "hello"},
		{Role: domain.RoleUser, Text: "I feel really sad today"},
	}
	out := applyTone(history, domain.ToneHint{Category: domain.SentimentSad, Intensity: 0.9})
	require.Len(t, out, 3)
	require.Contains(t, out[2].Text, "Tone note")
	require.Contains(t, out[2].Text, "I feel really sad today")
	// the original slice is untouched
	require.Equal(t, "I feel really sad today", history[2].Text)
	// earlier turns untouched
	require.Equal(t, "hi", out[0].Text)
}

func TestNowLineRendersWeekday(t *testing.T) {
	now := time.Date(2025, 11, 8, 20, 0, 0, 0, time.UTC)
	line := nowLine(now)
	require.Contains(t, line, "Saturday")
	require.Contains(t, line, "2025-11-08")
	require.Contains(t, line, "20:00")
}
