package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/emoai-labs/emoai-agent/internal/domain"
)

// MockClient is a deterministic rule-based stand-in for the model backends,
// used in local mode and tests.
type MockClient struct{}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) GenerateReply(ctx context.Context, history []domain.ChatTurn, tone domain.ToneHint) (string, error) {
	last := ""
	if len(history) > 0 {
		last = history[len(history)-1].Text
	}
	return fmt.Sprintf("I hear you. You said %q. Tell me a bit more about how that feels.", last), nil
}

func (m *MockClient) ClassifySentiment(ctx context.Context, text string) (domain.SentimentCategory, float64, error) {
	lower := strings.ToLower(text)
	switch {
	case containsAny(lower, "stressed", "worried", "anxious", "nervous", "overwhelmed"):
		return domain.SentimentAnxious, 0.7, nil
	case containsAny(lower, "sad", "down", "depressed", "lonely"):
		return domain.SentimentSad, 0.7, nil
	case containsAny(lower, "happy", "great", "excited", "proud"):
		return domain.SentimentHappy, 0.7, nil
	case containsAny(lower, "angry", "annoyed", "frustrated"):
		return domain.SentimentFrustrated, 0.7, nil
	case containsAny(lower, "confused", "lost", "unsure"):
		return domain.SentimentConfused, 0.4, nil
	default:
		return domain.SentimentNeutral, 0.3, nil
	}
}

func (m *MockClient) ExtractEvent(ctx context.Context, text string, now time.Time) (domain.EventCandidate, error) {
	return domain.EventCandidate{}, nil
}

func (m *MockClient) DetectCalendarQuery(ctx context.Context, text string, now time.Time) (domain.CalendarQuery, error) {
	return domain.CalendarQuery{}, nil
}

func (m *MockClient) SummarizeChat(ctx context.Context, transcript string) (string, error) {
	snippet := transcript
	if len(snippet) > 120 {
		snippet = snippet[:120] + "…"
	}
	return "My Reflection Today: " + snippet, nil
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
