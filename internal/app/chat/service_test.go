package chat_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/emoai-labs/emoai-agent/internal/adapters/llm"
	"github.com/emoai-labs/emoai-agent/internal/adapters/storage/memory"
	"github.com/emoai-labs/emoai-agent/internal/app/chat"
	"github.com/emoai-labs/emoai-agent/internal/clock"
	"github.com/emoai-labs/emoai-agent/internal/domain"
)

// fakeModel is a scriptable stand-in for the four model capabilities. Any
// nil hook falls back to a benign default.
type fakeModel struct {
	sentiment func(text string) (domain.SentimentCategory, float64, error)
	event     func(text string, now time.Time) (domain.EventCandidate, error)
	query     func(text string, now time.Time) (domain.CalendarQuery, error)
	reply     func(history []domain.ChatTurn, tone domain.ToneHint) (string, error)

	// histories seen by the reply generator, one per turn
	seenHistories [][]domain.ChatTurn
	seenTones     []domain.ToneHint
}

func (f *fakeModel) ClassifySentiment(ctx context.Context, text string) (domain.SentimentCategory, float64, error) {
	if f.sentiment != nil {
		return f.sentiment(text)
	}
	return domain.SentimentNeutral, 0.3, nil
}

func (f *fakeModel) ExtractEvent(ctx context.Context, text string, now time.Time) (domain.EventCandidate, error) {
	if f.event != nil {
		return f.event(text, now)
	}
	return domain.EventCandidate{}, nil
}

func (f *fakeModel) DetectCalendarQuery(ctx context.Context, text string, now time.Time) (domain.CalendarQuery, error) {
	if f.query != nil {
		return f.query(text, now)
	}
	return domain.CalendarQuery{}, nil
}

func (f *fakeModel) GenerateReply(ctx context.Context, history []domain.ChatTurn, tone domain.ToneHint) (string, error) {
	cp := make([]domain.ChatTurn, len(history))
	copy(cp, history)
	f.seenHistories = append(f.seenHistories, cp)
	f.seenTones = append(f.seenTones, tone)
	if f.reply != nil {
		return f.reply(history, tone)
	}
	return "mock reply", nil
}

type fixture struct {
	svc        *chat.Service
	model      *fakeModel
	messages   *memory.MessageStore
	sentiments *memory.SentimentStore
	events     *memory.EventStore
	profiles   *memory.ProfileStore
	sessions   *memory.SessionRegistry
	clock      *clock.Fixed
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()

	f := &fixture{
		model:      &fakeModel{},
		messages:   memory.NewMessageStore(),
		sentiments: memory.NewSentimentStore(),
		events:     memory.NewEventStore(),
		profiles:   memory.NewProfileStore(),
		sessions:   memory.NewSessionRegistry(),
		clock:      clock.NewFixed(now),
	}
	f.svc = chat.NewService(chat.Deps{
		Replies:    f.model,
		Classifier: f.model,
		Extractor:  f.model,
		Detector:   f.model,
		Messages:   f.messages,
		Sentiments: f.sentiments,
		Events:     f.events,
		Profiles:   f.profiles,
		Sessions:   f.sessions,
		Clock:      f.clock,
	})
	return f
}

var testNow = time.Date(2025, 11, 8, 20, 0, 0, 0, time.UTC)

func (f *fixture) session(t *testing.T) domain.SessionID {
	t.Helper()
	id, err := f.sessions.ActiveSession(context.Background(), "u1")
	require.NoError(t, err)
	return id
}

func TestProcessTurnRejectsEmptyMessage(t *testing.T) {
	f := newFixture(t, testNow)

	for _, text := range []string{"", "   ", "\n\t "} {
		_, err := f.svc.ProcessTurn(context.Background(), chat.TurnInput{UserID: "u1", Text: text})
		require.ErrorIs(t, err, domain.ErrEmptyMessage)
	}

	msgs, err := f.messages.MessagesBySession(context.Background(), "u1", f.session(t), 0)
	require.NoError(t, err)
	require.Empty(t, msgs, "rejected turns must not append messages")
}

func TestProcessTurnAppendsBothMessagesAndSentiment(t *testing.T) {
	f := newFixture(t, testNow)
	f.model.sentiment = func(string) (domain.SentimentCategory, float64, error) {
		return domain.SentimentHappy, 0.8, nil
	}

	out, err := f.svc.ProcessTurn(context.Background(), chat.TurnInput{UserID: "u1", Text: "today was great"})
	require.NoError(t, err)
	require.Equal(t, "mock reply", out.Reply)
	require.Equal(t, domain.SentimentHappy, out.Sentiment.Category)
	require.InDelta(t, 0.8, out.Sentiment.Intensity, 1e-9)
	require.Nil(t, out.NewEvent)

	sid := f.session(t)
	msgs, err := f.messages.MessagesBySession(context.Background(), "u1", sid, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	require.Equal(t, domain.RoleUser, msgs[0].Author)
	require.Equal(t, "today was great", msgs[0].Text)
	require.Equal(t, domain.RoleCompanion, msgs[1].Author)
	require.Equal(t, "mock reply", msgs[1].Text)

	obs, err := f.sentiments.ObservationsBySession(context.Background(), "u1", sid)
	require.NoError(t, err)
	require.Len(t, obs, 1)
	require.Equal(t, domain.SentimentHappy, obs[0].Category)

	// the tone hint reaches the reply generator
	require.Len(t, f.model.seenTones, 1)
	require.Equal(t, domain.SentimentHappy, f.model.seenTones[0].Category)
}

func TestProcessTurnAdmitsFutureEvent(t *testing.T) {
	f := newFixture(t, testNow)
	f.model.event = func(text string, now time.Time) (domain.EventCandidate, error) {
		return domain.EventCandidate{
			HasEvent:   true,
			Title:      "Coffee meeting",
			Date:       "2025-11-14",
			SourceText: text,
		}, nil
	}

	out, err := f.svc.ProcessTurn(context.Background(), chat.TurnInput{
		UserID: "u1", Text: "Let's meet next Friday for coffee",
	})
	require.NoError(t, err)
	require.NotNil(t, out.NewEvent)
	require.Equal(t, "Coffee meeting", out.NewEvent.Title)
	require.Equal(t, "2025-11-14", out.NewEvent.Date)
	require.False(t, out.NewEvent.Confirmed)

	stored, err := f.events.ListEventsByUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, stored, 1, "admission creates exactly one event")
	require.Equal(t, "Let's meet next Friday for coffee", stored[0].SourceText)
}

func TestProcessTurnSilentlyRejectsPastCandidate(t *testing.T) {
	f := newFixture(t, testNow)
	f.model.event = func(text string, now time.Time) (domain.EventCandidate, error) {
		// dated today with no time of day: ambiguous, always rejected
		return domain.EventCandidate{HasEvent: true, Title: "Lunch", Date: "2025-11-08"}, nil
	}

	out, err := f.svc.ProcessTurn(context.Background(), chat.TurnInput{UserID: "u1", Text: "lunch today was nice"})
	require.NoError(t, err, "rejection must be silent")
	require.Nil(t, out.NewEvent)

	stored, err := f.events.ListEventsByUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Empty(t, stored)
}

func TestProcessTurnCalendarQueryInjectsContext(t *testing.T) {
	f := newFixture(t, testNow)
	ctx := context.Background()

	require.NoError(t, f.events.InsertEvent(ctx, &domain.CalendarEvent{
		ID: "e1", UserID: "u1", Title: "Coffee meeting", Date: "2025-11-14", Time: "10:00",
	}))
	require.NoError(t, f.events.InsertEvent(ctx, &domain.CalendarEvent{
		ID: "e2", UserID: "u1", Title: "Team retro", Date: "2025-11-12",
	}))

	f.model.query = func(text string, now time.Time) (domain.CalendarQuery, error) {
		return domain.CalendarQuery{
			IsQuery: true, StartDate: "2025-11-10", EndDate: "2025-11-16", Shape: domain.QueryShapeWeek,
		}, nil
	}

	_, err := f.svc.ProcessTurn(ctx, chat.TurnInput{UserID: "u1", Text: "what's on my schedule next week?"})
	require.NoError(t, err)

	require.Len(t, f.model.seenHistories, 1)
	history := f.model.seenHistories[0]
	last := history[len(history)-1]
	require.Equal(t, domain.RoleUser, last.Role)
	require.Contains(t, last.Text, "what's on my schedule next week?")
	require.Contains(t, last.Text, "Team retro")
	require.Contains(t, last.Text, "Coffee meeting")

	// the query never writes
	stored, err := f.events.ListEventsByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, stored, 2)
}

func TestProcessTurnCalendarContextIdempotent(t *testing.T) {
	f := newFixture(t, testNow)
	ctx := context.Background()

	require.NoError(t, f.events.InsertEvent(ctx, &domain.CalendarEvent{
		ID: "e1", UserID: "u1", Title: "Coffee meeting", Date: "2025-11-14", Time: "10:00",
	}))
	f.model.query = func(string, time.Time) (domain.CalendarQuery, error) {
		return domain.CalendarQuery{IsQuery: true, StartDate: "2025-11-10", EndDate: "2025-11-16", Shape: domain.QueryShapeWeek}, nil
	}

	extract := func(turns []domain.ChatTurn) string {
		last := turns[len(turns)-1].Text
		idx := strings.Index(last, "[Calendar context")
		require.GreaterOrEqual(t, idx, 0)
		return last[idx:]
	}

	_, err := f.svc.ProcessTurn(ctx, chat.TurnInput{UserID: "u1", Text: "am I free next week?"})
	require.NoError(t, err)
	_, err = f.svc.ProcessTurn(ctx, chat.TurnInput{UserID: "u1", Text: "am I free next week?"})
	require.NoError(t, err)

	require.Len(t, f.model.seenHistories, 2)
	require.Equal(t, extract(f.model.seenHistories[0]), extract(f.model.seenHistories[1]))
}

func TestFirstTurnIdentityBlockAppearsExactlyOnce(t *testing.T) {
	f := newFixture(t, testNow)
	ctx := context.Background()

	require.NoError(t, f.profiles.PutProfile(ctx, &domain.UserProfile{
		UserID: "u1", Name: "Maya", Goal: "quit smoking", Age: 0,
	}))

	_, err := f.svc.ProcessTurn(ctx, chat.TurnInput{UserID: "u1", Text: "hello"})
	require.NoError(t, err)
	_, err = f.svc.ProcessTurn(ctx, chat.TurnInput{UserID: "u1", Text: "how are you"})
	require.NoError(t, err)

	require.Len(t, f.model.seenHistories, 2)

	first := f.model.seenHistories[0]
	require.Len(t, first, 1)
	require.Equal(t, 1, strings.Count(first[0].Text, "Maya"))
	require.Contains(t, first[0].Text, "quit smoking")
	require.Contains(t, first[0].Text, "unspecified")
	require.Contains(t, first[0].Text, "hello")

	second := f.model.seenHistories[1]
	require.Len(t, second, 3)
	for _, turn := range second {
		require.NotContains(t, turn.Text, "Maya", "identity block must not reappear")
	}
}

func TestFirstTurnWithoutProfileHasNoBlock(t *testing.T) {
	f := newFixture(t, testNow)

	_, err := f.svc.ProcessTurn(context.Background(), chat.TurnInput{UserID: "u1", Text: "hello"})
	require.NoError(t, err)

	first := f.model.seenHistories[0]
	require.Equal(t, "hello", first[0].Text)
}

func TestAnalysisAdapterFailuresAreAbsorbed(t *testing.T) {
	f := newFixture(t, testNow)
	f.model.sentiment = func(string) (domain.SentimentCategory, float64, error) {
		return "", 0, errors.New("model unavailable")
	}
	f.model.event = func(string, time.Time) (domain.EventCandidate, error) {
		return domain.EventCandidate{}, errors.New("model unavailable")
	}
	f.model.query = func(string, time.Time) (domain.CalendarQuery, error) {
		return domain.CalendarQuery{}, errors.New("model unavailable")
	}

	out, err := f.svc.ProcessTurn(context.Background(), chat.TurnInput{UserID: "u1", Text: "rough day"})
	require.NoError(t, err, "analysis failures must never abort the turn")
	require.Equal(t, "mock reply", out.Reply)
	require.Equal(t, domain.SentimentNeutral, out.Sentiment.Category)
	require.InDelta(t, 0.5, out.Sentiment.Intensity, 1e-9)
	require.Nil(t, out.NewEvent)

	// no calendar context was injected
	last := f.model.seenHistories[0][len(f.model.seenHistories[0])-1]
	require.Equal(t, "rough day", last.Text)
}

func TestReplyFailureIsFatalButEarlierWritesRemain(t *testing.T) {
	f := newFixture(t, testNow)
	f.model.reply = func([]domain.ChatTurn, domain.ToneHint) (string, error) {
		return "", errors.New("model unavailable")
	}

	_, err := f.svc.ProcessTurn(context.Background(), chat.TurnInput{UserID: "u1", Text: "hello"})
	require.Error(t, err)

	// the user message and the observation stay committed
	sid := f.session(t)
	msgs, merr := f.messages.MessagesBySession(context.Background(), "u1", sid, 0)
	require.NoError(t, merr)
	require.Len(t, msgs, 1)
	require.Equal(t, domain.RoleUser, msgs[0].Author)

	obs, oerr := f.sentiments.ObservationsBySession(context.Background(), "u1", sid)
	require.NoError(t, oerr)
	require.Len(t, obs, 1)
}

func TestStressedMessageWithMockBackend(t *testing.T) {
	// end to end against the real rule-based mock backend
	f := newFixture(t, testNow)
	mock := llm.NewMockClient()
	svc := chat.NewService(chat.Deps{
		Replies:    mock,
		Classifier: mock,
		Extractor:  mock,
		Detector:   mock,
		Messages:   f.messages,
		Sentiments: f.sentiments,
		Events:     f.events,
		Profiles:   f.profiles,
		Sessions:   f.sessions,
		Clock:      f.clock,
	})

	out, err := svc.ProcessTurn(context.Background(), chat.TurnInput{UserID: "u1", Text: "I'm feeling stressed today"})
	require.NoError(t, err)
	require.NotEmpty(t, out.Reply)
	require.Contains(t,
		[]domain.SentimentCategory{domain.SentimentAnxious, domain.SentimentSad},
		out.Sentiment.Category)
	require.GreaterOrEqual(t, out.Sentiment.Intensity, 0.4)
	require.Nil(t, out.NewEvent)
}
