package domain

// JournalEntry is the long-term record a session is closed out into: a
// first-person summary of the conversation plus the dominant mood.
type JournalEntry struct {
	ID           JournalEntryID
	UserID       UserID
	SessionID    SessionID
	Mood         string
	Summary      string
	GoalProgress string
	CreatedAt    Timestamp
}
