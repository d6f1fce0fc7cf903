package journal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/emoai-labs/emoai-agent/internal/clock"
	"github.com/emoai-labs/emoai-agent/internal/domain"
	"github.com/emoai-labs/emoai-agent/internal/observability"
)

// Service closes conversation sessions out into journal entries and serves
// journal reads.
type Service struct {
	summarizer domain.ChatSummarizer
	messages   domain.ConversationStore
	sentiments domain.SentimentStore
	journal    domain.JournalStore
	sessions   domain.SessionRegistry
	closer     domain.SessionCloser
	clock      clock.Clock
}

type Deps struct {
	Summarizer domain.ChatSummarizer
	Messages   domain.ConversationStore
	Sentiments domain.SentimentStore
	Journal    domain.JournalStore
	Sessions   domain.SessionRegistry
	Closer     domain.SessionCloser
	Clock      clock.Clock
}

func NewService(deps Deps) *Service {
	if deps.Clock == nil {
		deps.Clock = clock.NewSystem(time.Local)
	}
	return &Service{
		summarizer: deps.Summarizer,
		messages:   deps.Messages,
		sentiments: deps.Sentiments,
		journal:    deps.Journal,
		sessions:   deps.Sessions,
		closer:     deps.Closer,
		clock:      deps.Clock,
	}
}

// CloseActiveSession summarizes the user's active session into a journal
// entry, deletes the session's messages, and rotates to a fresh session
// identifier. The three writes land atomically: history is never lost into
// a failed close nor duplicated into a second one.
func (s *Service) CloseActiveSession(ctx context.Context, userID domain.UserID) (*domain.JournalEntry, error) {
	sessionID, err := s.sessions.ActiveSession(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolving active session: %w", err)
	}

	ctx = observability.WithUserID(ctx, string(userID))
	log := observability.LoggerFromContext(ctx).With("session_id", sessionID)

	msgs, err := s.messages.MessagesBySession(ctx, userID, sessionID, 0)
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return nil, domain.ErrEmptySession
	}

	summary, err := s.summarizer.SummarizeChat(ctx, transcript(msgs))
	if err != nil {
		log.Error("summarization failed", "error", err)
		return nil, fmt.Errorf("summarizing session: %w", err)
	}

	entry := &domain.JournalEntry{
		ID:        domain.JournalEntryID(uuid.NewString()),
		UserID:    userID,
		SessionID: sessionID,
		Mood:      s.sessionMood(ctx, userID, sessionID),
		Summary:   summary,
		CreatedAt: s.clock.Now(),
	}

	next, err := s.closer.CloseSession(ctx, userID, sessionID, entry)
	if err != nil {
		log.Error("session close failed", "error", err)
		return nil, err
	}

	log.Info("session closed into journal",
		"entry_id", entry.ID,
		"message_count", len(msgs),
		"next_session_id", next,
	)
	return entry, nil
}

// Entries returns the last `limit` journal entries for a user, oldest first.
func (s *Service) Entries(ctx context.Context, userID domain.UserID, limit int) ([]*domain.JournalEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.journal.EntriesByUser(ctx, userID, limit)
}

// sessionMood picks the most recent sentiment observation of the session as
// the journal mood. No observations, or a failed read, degrade to neutral.
func (s *Service) sessionMood(ctx context.Context, userID domain.UserID, sessionID domain.SessionID) string {
	obs, err := s.sentiments.ObservationsBySession(ctx, userID, sessionID)
	if err != nil || len(obs) == 0 {
		return string(domain.SentimentNeutral)
	}
	return string(obs[len(obs)-1].Category)
}

func transcript(msgs []*domain.Message) string {
	var b strings.Builder
	for _, m := range msgs {
		speaker := "User"
		if m.Author == domain.RoleCompanion {
			speaker = "Companion"
		}
		b.WriteString(speaker)
		b.WriteString(": ")
		b.WriteString(m.Text)
		b.WriteString("\n")
	}
	return b.String()
}
