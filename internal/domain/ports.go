package domain

import (
	"context"
	"time"
)

// ─────────────────────────────────────────────
// Model capabilities
// ─────────────────────────────────────────────

// SentimentClassifier maps one user message to an emotional category with an
// intensity in [0.0, 1.0].
type SentimentClassifier interface {
	ClassifySentiment(ctx context.Context, text string) (SentimentCategory, float64, error)
}

// EventExtractor maps one user message plus the current time to a structured
// event candidate. A candidate with HasEvent=false means "no event mentioned".
type EventExtractor interface {
	ExtractEvent(ctx context.Context, text string, now time.Time) (EventCandidate, error)
}

// CalendarQueryDetector decides whether a message is asking about the user's
// calendar and, if so, resolves it to a concrete date range.
type CalendarQueryDetector interface {
	DetectCalendarQuery(ctx context.Context, text string, now time.Time) (CalendarQuery, error)
}

// ToneHint is the sentiment signal handed to the reply generator. The
// adapter decides whether it crosses the threshold for a tone directive.
type ToneHint struct {
	Category  SentimentCategory
	Intensity float64
}

// ReplyGenerator produces the companion's reply from the full ordered
// history. Unlike the analysis capabilities above, its failure is fatal to
// the turn: no reply means no response to return.
type ReplyGenerator interface {
	GenerateReply(ctx context.Context, history []ChatTurn, tone ToneHint) (string, error)
}

// ChatSummarizer condenses a full session transcript into a first-person
// journal reflection.
type ChatSummarizer interface {
	SummarizeChat(ctx context.Context, transcript string) (string, error)
}

// ─────────────────────────────────────────────
// Stores
// ─────────────────────────────────────────────

// ConversationStore is the append-only per-user, per-session message log.
type ConversationStore interface {
	AppendMessage(ctx context.Context, msg *Message) error
	// MessagesBySession returns messages in chronological order. limit <= 0
	// means all; otherwise the most recent limit messages.
	MessagesBySession(ctx context.Context, userID UserID, sessionID SessionID, limit int) ([]*Message, error)
	// DeleteSessionMessages removes every message of a session and reports
	// how many were removed.
	DeleteSessionMessages(ctx context.Context, userID UserID, sessionID SessionID) (int, error)
}

type SentimentStore interface {
	AppendObservation(ctx context.Context, obs *SentimentObservation) error
	ObservationsBySession(ctx context.Context, userID UserID, sessionID SessionID) ([]*SentimentObservation, error)
}

// EventStore holds per-user calendar events, queryable by date range. All
// lookups are owner-scoped: asking for another user's event behaves as if
// the event did not exist.
type EventStore interface {
	InsertEvent(ctx context.Context, ev *CalendarEvent) error
	GetEvent(ctx context.Context, userID UserID, id EventID) (*CalendarEvent, error)
	// ListEventsByRange returns events with startDate <= Date <= endDate,
	// ordered by (date, untimed-first, time).
	ListEventsByRange(ctx context.Context, userID UserID, startDate, endDate string) ([]*CalendarEvent, error)
	ListEventsByUser(ctx context.Context, userID UserID) ([]*CalendarEvent, error)
	UpdateEvent(ctx context.Context, ev *CalendarEvent) error
	DeleteEvent(ctx context.Context, userID UserID, id EventID) error
}

type JournalStore interface {
	AppendEntry(ctx context.Context, entry *JournalEntry) error
	EntriesByUser(ctx context.Context, userID UserID, limit int) ([]*JournalEntry, error)
}

type ProfileStore interface {
	GetProfile(ctx context.Context, userID UserID) (*UserProfile, error)
	PutProfile(ctx context.Context, profile *UserProfile) error
}

// SessionRegistry tracks each user's active session identifier. Closing a
// session rotates the identifier so prior turns never leak into new ones.
type SessionRegistry interface {
	// ActiveSession returns the user's current session, creating one if the
	// user has none yet.
	ActiveSession(ctx context.Context, userID UserID) (SessionID, error)
	RotateSession(ctx context.Context, userID UserID) (SessionID, error)
}

// SessionCloser atomically journals and clears a session: the entry insert,
// the message deletion, and the session rotation land together so history is
// neither lost nor duplicated.
type SessionCloser interface {
	CloseSession(ctx context.Context, userID UserID, sessionID SessionID, entry *JournalEntry) (SessionID, error)
}
