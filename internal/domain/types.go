package domain

import "time"

type UserID string
type SessionID string
type MessageID string
type EventID string
type ObservationID string
type JournalEntryID string

type Role string

const (
	RoleUser      Role = "user"
	RoleCompanion Role = "companion"
)

type Timestamp = time.Time
