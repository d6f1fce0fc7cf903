package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/emoai-labs/emoai-agent/internal/domain"
)

// Store implements every persistence port on top of Firestore. Records nest
// under their owner so all queries are naturally sharded by user:
//
//	users/{uid}                         profile + active session pointer
//	users/{uid}/sessions/{sid}/messages
//	users/{uid}/sessions/{sid}/sentiments
//	users/{uid}/events
//	users/{uid}/journal
type Store struct {
	client *firestore.Client
}

func NewStore(ctx context.Context, projectID string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &Store{client: client}, nil
}

// ─────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────

func (s *Store) userDoc(id domain.UserID) *firestore.DocumentRef {
	return s.client.Collection("users").Doc(string(id))
}

func (s *Store) sessionDoc(userID domain.UserID, sessionID domain.SessionID) *firestore.DocumentRef {
	return s.userDoc(userID).Collection("sessions").Doc(string(sessionID))
}

func (s *Store) messagesCol(userID domain.UserID, sessionID domain.SessionID) *firestore.CollectionRef {
	return s.sessionDoc(userID, sessionID).Collection("messages")
}

func (s *Store) sentimentsCol(userID domain.UserID, sessionID domain.SessionID) *firestore.CollectionRef {
	return s.sessionDoc(userID, sessionID).Collection("sentiments")
}

func (s *Store) eventsCol(userID domain.UserID) *firestore.CollectionRef {
	return s.userDoc(userID).Collection("events")
}

func (s *Store) journalCol(userID domain.UserID) *firestore.CollectionRef {
	return s.userDoc(userID).Collection("journal")
}

// ─────────────────────────────────────────
// Firestore document types
// ─────────────────────────────────────────

type userDoc struct {
	ActiveSession   string    `firestore:"active_session"`
	Name            string    `firestore:"name"`
	Age             int       `firestore:"age"`
	Goal            string    `firestore:"goal"`
	ReminderEnabled bool      `firestore:"reminder_enabled"`
	CreatedAt       time.Time `firestore:"created_at"`
}

type messageDoc struct {
	Author    string    `firestore:"author"`
	Text      string    `firestore:"text"`
	CreatedAt time.Time `firestore:"created_at"`
}

type sentimentDoc struct {
	Category  string    `firestore:"category"`
	Intensity float64   `firestore:"intensity"`
	CreatedAt time.Time `firestore:"created_at"`
}

type eventDoc struct {
	Title       string    `firestore:"title"`
	Description string    `firestore:"description"`
	Date        string    `firestore:"date"`
	Time        string    `firestore:"time"`
	Location    string    `firestore:"location"`
	Confirmed   bool      `firestore:"confirmed"`
	Synced      bool      `firestore:"synced"`
	ExternalID  string    `firestore:"external_id"`
	SourceText  string    `firestore:"source_text"`
	CreatedAt   time.Time `firestore:"created_at"`
}

type journalDoc struct {
	SessionID    string    `firestore:"session_id"`
	Mood         string    `firestore:"mood"`
	Summary      string    `firestore:"summary"`
	GoalProgress string    `firestore:"goal_progress"`
	CreatedAt    time.Time `firestore:"created_at"`
}

// ─────────────────────────────────────────
// ConversationStore implementation
// ─────────────────────────────────────────

func (s *Store) AppendMessage(ctx context.Context, msg *domain.Message) error {
	doc := messageDoc{
		Author:    string(msg.Author),
		Text:      msg.Text,
		CreatedAt: msg.CreatedAt,
	}

	_, err := s.messagesCol(msg.UserID, msg.SessionID).Doc(string(msg.ID)).Set(ctx, doc)
	if err != nil {
		return fmt.Errorf("firestore AppendMessage: %w", err)
	}
	return nil
}

func (s *Store) MessagesBySession(ctx context.Context, userID domain.UserID, sessionID domain.SessionID, limit int) ([]*domain.Message, error) {
	q := s.messagesCol(userID, sessionID).OrderBy("created_at", firestore.Asc)
	if limit > 0 {
		q = s.messagesCol(userID, sessionID).OrderBy("created_at", firestore.Desc).Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []*domain.Message
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return nil, fmt.Errorf("firestore MessagesBySession: %w", err)
		}

		var doc messageDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode messageDoc: %w", err)
		}

		out = append(out, &domain.Message{
			ID:        domain.MessageID(snap.Ref.ID),
			UserID:    userID,
			SessionID: sessionID,
			Author:    domain.Role(doc.Author),
			Text:      doc.Text,
			CreatedAt: doc.CreatedAt,
		})
	}

	if limit > 0 {
		// the limited query ran newest-first; restore chronological order
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out, nil
}

func (s *Store) DeleteSessionMessages(ctx context.Context, userID domain.UserID, sessionID domain.SessionID) (int, error) {
	refs, err := s.messagesCol(userID, sessionID).DocumentRefs(ctx).GetAll()
	if err != nil {
		return 0, fmt.Errorf("firestore DeleteSessionMessages list: %w", err)
	}

	batch := s.client.Batch()
	for _, ref := range refs {
		batch.Delete(ref)
	}
	if len(refs) > 0 {
		if _, err := batch.Commit(ctx); err != nil {
			return 0, fmt.Errorf("firestore DeleteSessionMessages commit: %w", err)
		}
	}
	return len(refs), nil
}

// ─────────────────────────────────────────
// SentimentStore implementation
// ─────────────────────────────────────────

func (s *Store) AppendObservation(ctx context.Context, obs *domain.SentimentObservation) error {
	doc := sentimentDoc{
		Category:  string(obs.Category),
		Intensity: obs.Intensity,
		CreatedAt: obs.CreatedAt,
	}

	_, err := s.sentimentsCol(obs.UserID, obs.SessionID).Doc(string(obs.ID)).Set(ctx, doc)
	if err != nil {
		return fmt.Errorf("firestore AppendObservation: %w", err)
	}
	return nil
}

func (s *Store) ObservationsBySession(ctx context.Context, userID domain.UserID, sessionID domain.SessionID) ([]*domain.SentimentObservation, error) {
	iter := s.sentimentsCol(userID, sessionID).OrderBy("created_at", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var out []*domain.SentimentObservation
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return nil, fmt.Errorf("firestore ObservationsBySession: %w", err)
		}

		var doc sentimentDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode sentimentDoc: %w", err)
		}

		out = append(out, &domain.SentimentObservation{
			ID:        domain.ObservationID(snap.Ref.ID),
			UserID:    userID,
			SessionID: sessionID,
			Category:  domain.SentimentCategory(doc.Category),
			Intensity: doc.Intensity,
			CreatedAt: doc.CreatedAt,
		})
	}
	return out, nil
}

// ─────────────────────────────────────────
// EventStore implementation
// ─────────────────────────────────────────

func (s *Store) InsertEvent(ctx context.Context, ev *domain.CalendarEvent) error {
	_, err := s.eventsCol(ev.UserID).Doc(string(ev.ID)).Create(ctx, toEventDoc(ev))
	if err != nil {
		return fmt.Errorf("firestore InsertEvent: %w", err)
	}
	return nil
}

func (s *Store) GetEvent(ctx context.Context, userID domain.UserID, id domain.EventID) (*domain.CalendarEvent, error) {
	snap, err := s.eventsCol(userID).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("firestore GetEvent: %w", err)
	}
	return fromEventSnap(snap)
}

func (s *Store) ListEventsByRange(ctx context.Context, userID domain.UserID, startDate, endDate string) ([]*domain.CalendarEvent, error) {
	q := s.eventsCol(userID).
		Where("date", ">=", startDate).
		Where("date", "<=", endDate).
		OrderBy("date", firestore.Asc).
		OrderBy("time", firestore.Asc)
	return s.collectEvents(ctx, q, "ListEventsByRange")
}

func (s *Store) ListEventsByUser(ctx context.Context, userID domain.UserID) ([]*domain.CalendarEvent, error) {
	q := s.eventsCol(userID).
		OrderBy("date", firestore.Asc).
		OrderBy("time", firestore.Asc)
	return s.collectEvents(ctx, q, "ListEventsByUser")
}

func (s *Store) collectEvents(ctx context.Context, q firestore.Query, op string) ([]*domain.CalendarEvent, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []*domain.CalendarEvent
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return nil, fmt.Errorf("firestore %s: %w", op, err)
		}
		ev, err := fromEventSnap(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, nil
}

func (s *Store) UpdateEvent(ctx context.Context, ev *domain.CalendarEvent) error {
	// Set would create a missing doc; check first so updates of deleted
	// events fail loudly.
	if _, err := s.GetEvent(ctx, ev.UserID, ev.ID); err != nil {
		return err
	}
	if _, err := s.eventsCol(ev.UserID).Doc(string(ev.ID)).Set(ctx, toEventDoc(ev)); err != nil {
		return fmt.Errorf("firestore UpdateEvent: %w", err)
	}
	return nil
}

func (s *Store) DeleteEvent(ctx context.Context, userID domain.UserID, id domain.EventID) error {
	// Delete on a missing doc is a no-op in Firestore; check first so the
	// caller can distinguish.
	if _, err := s.GetEvent(ctx, userID, id); err != nil {
		return err
	}
	if _, err := s.eventsCol(userID).Doc(string(id)).Delete(ctx); err != nil {
		return fmt.Errorf("firestore DeleteEvent: %w", err)
	}
	return nil
}

func toEventDoc(ev *domain.CalendarEvent) eventDoc {
	return eventDoc{
		Title:       ev.Title,
		Description: ev.Description,
		Date:        ev.Date,
		Time:        ev.Time,
		Location:    ev.Location,
		Confirmed:   ev.Confirmed,
		Synced:      ev.Synced,
		ExternalID:  ev.ExternalID,
		SourceText:  ev.SourceText,
		CreatedAt:   ev.CreatedAt,
	}
}

func fromEventSnap(snap *firestore.DocumentSnapshot) (*domain.CalendarEvent, error) {
	var doc eventDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("decode eventDoc: %w", err)
	}
	// parent path: users/{uid}/events/{eid}
	owner := snap.Ref.Parent.Parent.ID
	return &domain.CalendarEvent{
		ID:          domain.EventID(snap.Ref.ID),
		UserID:      domain.UserID(owner),
		Title:       doc.Title,
		Description: doc.Description,
		Date:        doc.Date,
		Time:        doc.Time,
		Location:    doc.Location,
		Confirmed:   doc.Confirmed,
		Synced:      doc.Synced,
		ExternalID:  doc.ExternalID,
		SourceText:  doc.SourceText,
		CreatedAt:   doc.CreatedAt,
	}, nil
}

// ─────────────────────────────────────────
// JournalStore implementation
// ─────────────────────────────────────────

func (s *Store) AppendEntry(ctx context.Context, entry *domain.JournalEntry) error {
	_, err := s.journalCol(entry.UserID).Doc(string(entry.ID)).Create(ctx, toJournalDoc(entry))
	if err != nil {
		return fmt.Errorf("firestore AppendEntry: %w", err)
	}
	return nil
}

func (s *Store) EntriesByUser(ctx context.Context, userID domain.UserID, limit int) ([]*domain.JournalEntry, error) {
	q := s.journalCol(userID).OrderBy("created_at", firestore.Asc)
	if limit > 0 {
		q = s.journalCol(userID).OrderBy("created_at", firestore.Desc).Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []*domain.JournalEntry
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return nil, fmt.Errorf("firestore EntriesByUser: %w", err)
		}

		var doc journalDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode journalDoc: %w", err)
		}

		out = append(out, &domain.JournalEntry{
			ID:           domain.JournalEntryID(snap.Ref.ID),
			UserID:       userID,
			SessionID:    domain.SessionID(doc.SessionID),
			Mood:         doc.Mood,
			Summary:      doc.Summary,
			GoalProgress: doc.GoalProgress,
			CreatedAt:    doc.CreatedAt,
		})
	}

	if limit > 0 {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out, nil
}

func toJournalDoc(entry *domain.JournalEntry) journalDoc {
	return journalDoc{
		SessionID:    string(entry.SessionID),
		Mood:         entry.Mood,
		Summary:      entry.Summary,
		GoalProgress: entry.GoalProgress,
		CreatedAt:    entry.CreatedAt,
	}
}

// ─────────────────────────────────────────
// ProfileStore implementation
// ─────────────────────────────────────────

func (s *Store) GetProfile(ctx context.Context, userID domain.UserID) (*domain.UserProfile, error) {
	snap, err := s.userDoc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("firestore GetProfile: %w", err)
	}

	var doc userDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("decode userDoc: %w", err)
	}
	if doc.Name == "" && doc.Goal == "" {
		return nil, domain.ErrProfileNotFound
	}

	return &domain.UserProfile{
		UserID:          userID,
		Name:            doc.Name,
		Age:             doc.Age,
		Goal:            doc.Goal,
		ReminderEnabled: doc.ReminderEnabled,
		CreatedAt:       doc.CreatedAt,
	}, nil
}

func (s *Store) PutProfile(ctx context.Context, profile *domain.UserProfile) error {
	doc := map[string]interface{}{
		"name":             profile.Name,
		"age":              profile.Age,
		"goal":             profile.Goal,
		"reminder_enabled": profile.ReminderEnabled,
		"created_at":       profile.CreatedAt,
	}

	_, err := s.userDoc(profile.UserID).Set(ctx, doc, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("firestore PutProfile: %w", err)
	}
	return nil
}

// ─────────────────────────────────────────
// SessionRegistry implementation
// ─────────────────────────────────────────

func (s *Store) ActiveSession(ctx context.Context, userID domain.UserID) (domain.SessionID, error) {
	snap, err := s.userDoc(userID).Get(ctx)
	if err == nil {
		var doc userDoc
		if derr := snap.DataTo(&doc); derr == nil && doc.ActiveSession != "" {
			return domain.SessionID(doc.ActiveSession), nil
		}
	} else if status.Code(err) != codes.NotFound {
		return "", fmt.Errorf("firestore ActiveSession: %w", err)
	}

	return s.RotateSession(ctx, userID)
}

func (s *Store) RotateSession(ctx context.Context, userID domain.UserID) (domain.SessionID, error) {
	id := domain.SessionID(uuid.NewString())
	_, err := s.userDoc(userID).Set(ctx, map[string]interface{}{
		"active_session": string(id),
	}, firestore.MergeAll)
	if err != nil {
		return "", fmt.Errorf("firestore RotateSession: %w", err)
	}
	return id, nil
}

// ─────────────────────────────────────────
// SessionCloser implementation
// ─────────────────────────────────────────

// CloseSession commits the journal entry, the message deletions, and the
// session rotation in one write batch.
func (s *Store) CloseSession(
	ctx context.Context,
	userID domain.UserID,
	sessionID domain.SessionID,
	entry *domain.JournalEntry,
) (domain.SessionID, error) {
	refs, err := s.messagesCol(userID, sessionID).DocumentRefs(ctx).GetAll()
	if err != nil {
		return "", fmt.Errorf("firestore CloseSession list messages: %w", err)
	}

	next := domain.SessionID(uuid.NewString())

	batch := s.client.Batch()
	batch.Create(s.journalCol(userID).Doc(string(entry.ID)), toJournalDoc(entry))
	for _, ref := range refs {
		batch.Delete(ref)
	}
	batch.Set(s.userDoc(userID), map[string]interface{}{
		"active_session": string(next),
	}, firestore.MergeAll)

	if _, err := batch.Commit(ctx); err != nil {
		return "", fmt.Errorf("firestore CloseSession commit: %w", err)
	}
	return next, nil
}
