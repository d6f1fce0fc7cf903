package chat

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/emoai-labs/emoai-agent/internal/clock"
	"github.com/emoai-labs/emoai-agent/internal/domain"
	"github.com/emoai-labs/emoai-agent/internal/observability"
)

const defaultAdapterTimeout = 20 * time.Second

// Service is the turn pipeline: one user message in, one sentiment
// observation, at most one admitted calendar event, an optional calendar
// context block, and a companion reply out.
type Service struct {
	replies    domain.ReplyGenerator
	classifier domain.SentimentClassifier
	extractor  domain.EventExtractor
	detector   domain.CalendarQueryDetector

	messages   domain.ConversationStore
	sentiments domain.SentimentStore
	events     domain.EventStore
	profiles   domain.ProfileStore
	sessions   domain.SessionRegistry

	clock          clock.Clock
	adapterTimeout time.Duration
}

type Deps struct {
	Replies    domain.ReplyGenerator
	Classifier domain.SentimentClassifier
	Extractor  domain.EventExtractor
	Detector   domain.CalendarQueryDetector

	Messages   domain.ConversationStore
	Sentiments domain.SentimentStore
	Events     domain.EventStore
	Profiles   domain.ProfileStore
	Sessions   domain.SessionRegistry

	Clock          clock.Clock
	AdapterTimeout time.Duration
}

func NewService(deps Deps) *Service {
	if deps.Clock == nil {
		deps.Clock = clock.NewSystem(time.Local)
	}
	if deps.AdapterTimeout <= 0 {
		deps.AdapterTimeout = defaultAdapterTimeout
	}
	return &Service{
		replies:        deps.Replies,
		classifier:     deps.Classifier,
		extractor:      deps.Extractor,
		detector:       deps.Detector,
		messages:       deps.Messages,
		sentiments:     deps.Sentiments,
		events:         deps.Events,
		profiles:       deps.Profiles,
		sessions:       deps.Sessions,
		clock:          deps.Clock,
		adapterTimeout: deps.AdapterTimeout,
	}
}

type TurnInput struct {
	UserID domain.UserID
	Text   string
}

type TurnOutput struct {
	Reply     string
	Sentiment *domain.SentimentObservation
	NewEvent  *domain.CalendarEvent
}

// ProcessTurn runs one conversational turn. Analysis failures (sentiment,
// extraction, query detection) are absorbed with safe defaults; reply
// generation and store failures abort the turn. Already-committed appends
// stay committed, there is no compensating rollback.
func (s *Service) ProcessTurn(ctx context.Context, in TurnInput) (*TurnOutput, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, domain.ErrEmptyMessage
	}

	sessionID, err := s.sessions.ActiveSession(ctx, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("resolving active session: %w", err)
	}

	ctx = observability.WithUserID(ctx, string(in.UserID))
	log := observability.LoggerFromContext(ctx).With("session_id", sessionID)
	now := s.clock.Now()

	userMsg := &domain.Message{
		ID:        domain.MessageID(uuid.NewString()),
		UserID:    in.UserID,
		SessionID: sessionID,
		Author:    domain.RoleUser,
		Text:      in.Text,
		CreatedAt: now,
	}
	if err := s.messages.AppendMessage(ctx, userMsg); err != nil {
		log.Error("failed to append user message", "error", err)
		return nil, err
	}

	// The three analysis calls are independent: none reads another's output
	// and each may fail without affecting the rest, so they run in parallel
	// and join before the history is assembled. No retries; a timeout is an
	// adapter failure like any other.
	var (
		category  domain.SentimentCategory
		intensity float64
		candidate domain.EventCandidate
		query     domain.CalendarQuery
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cctx, cancel := context.WithTimeout(gctx, s.adapterTimeout)
		defer cancel()
		cat, i, err := s.classifier.ClassifySentiment(cctx, text)
		if err != nil {
			log.Warn("sentiment classification failed, substituting neutral", "error", err)
			category, intensity = domain.DefaultSentiment()
			return nil
		}
		category, intensity = cat, i
		return nil
	})
	g.Go(func() error {
		cctx, cancel := context.WithTimeout(gctx, s.adapterTimeout)
		defer cancel()
		cand, err := s.extractor.ExtractEvent(cctx, text, now)
		if err != nil {
			log.Warn("event extraction failed, treating as no candidate", "error", err)
			return nil
		}
		candidate = cand
		return nil
	})
	g.Go(func() error {
		cctx, cancel := context.WithTimeout(gctx, s.adapterTimeout)
		defer cancel()
		q, err := s.detector.DetectCalendarQuery(cctx, text, now)
		if err != nil {
			log.Warn("calendar query detection failed, treating as no query", "error", err)
			return nil
		}
		query = q
		return nil
	})
	_ = g.Wait() // the closures absorb their own failures

	observation := &domain.SentimentObservation{
		ID:        domain.ObservationID(uuid.NewString()),
		UserID:    in.UserID,
		SessionID: sessionID,
		Category:  category,
		Intensity: intensity,
		CreatedAt: now,
	}
	if err := s.sentiments.AppendObservation(ctx, observation); err != nil {
		log.Error("failed to persist sentiment observation", "error", err)
		return nil, err
	}

	var newEvent *domain.CalendarEvent
	if candidate.HasEvent {
		if ev, ok := s.admitCandidate(ctx, in.UserID, candidate, now); ok {
			if err := s.events.InsertEvent(ctx, ev); err != nil {
				log.Error("failed to insert calendar event", "error", err)
				return nil, err
			}
			newEvent = ev
			log.Info("calendar event admitted", "event_id", ev.ID, "date", ev.Date)
		}
	}

	var calendarBlock string
	if query.IsQuery {
		calendarBlock, err = s.resolveCalendarContext(ctx, in.UserID, query)
		if err != nil {
			log.Error("failed to resolve calendar context", "error", err)
			return nil, err
		}
	}

	history, err := s.messages.MessagesBySession(ctx, in.UserID, sessionID, 0)
	if err != nil {
		log.Error("failed to load history", "error", err)
		return nil, err
	}

	turns := make([]domain.ChatTurn, len(history))
	for i, m := range history {
		turns[i] = domain.ChatTurn{Role: m.Author, Text: m.Text}
	}

	// First turn of a session carries the identity/goal block, exactly once.
	if len(turns) == 1 {
		if block := s.identityBlock(ctx, in.UserID); block != "" {
			turns[0].Text = block + "\n" + turns[0].Text
		}
	}
	if calendarBlock != "" && len(turns) > 0 {
		last := len(turns) - 1
		turns[last].Text = turns[last].Text + "\n" + calendarBlock
	}

	rctx, cancel := context.WithTimeout(ctx, s.adapterTimeout)
	defer cancel()
	reply, err := s.replies.GenerateReply(rctx, turns, domain.ToneHint{
		Category:  observation.Category,
		Intensity: observation.Intensity,
	})
	if err != nil {
		log.Error("reply generation failed", "error", err)
		return nil, fmt.Errorf("generating reply: %w", err)
	}

	companionMsg := &domain.Message{
		ID:        domain.MessageID(uuid.NewString()),
		UserID:    in.UserID,
		SessionID: sessionID,
		Author:    domain.RoleCompanion,
		Text:      reply,
		CreatedAt: s.clock.Now(),
	}
	if err := s.messages.AppendMessage(ctx, companionMsg); err != nil {
		log.Error("failed to append companion message", "error", err)
		return nil, err
	}

	return &TurnOutput{
		Reply:     reply,
		Sentiment: observation,
		NewEvent:  newEvent,
	}, nil
}

// identityBlock renders the fixed identity/goal context for a session's
// first turn. A user without a profile simply gets no block.
func (s *Service) identityBlock(ctx context.Context, userID domain.UserID) string {
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrProfileNotFound) {
			observability.LoggerFromContext(ctx).Warn("failed to load profile", "error", err)
		}
		return ""
	}

	age := "unspecified"
	if profile.Age > 0 {
		age = strconv.Itoa(profile.Age)
	}
	return fmt.Sprintf(
		"[Context for you only, never quote this note: you are talking to %s. Their stated goal: %s. Age: %s.]",
		profile.Name, profile.Goal, age,
	)
}
