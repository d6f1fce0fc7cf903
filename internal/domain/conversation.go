package domain

// Message is one turn in a user's conversation timeline (user or companion).
// Messages are append-only: they are never edited, only bulk-deleted when a
// session is closed out into a journal entry.
type Message struct {
	ID        MessageID
	UserID    UserID
	SessionID SessionID
	Author    Role
	Text      string
	CreatedAt Timestamp
}

// ChatTurn is the reduced {role, text} view of a message that gets sent to
// the reply generator. Context blocks are spliced into Text before the call.
type ChatTurn struct {
	Role Role
	Text string
}
