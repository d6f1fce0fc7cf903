package domain

// UserProfile carries the identity/goal facts injected into the first turn
// of every new session. Age 0 means unspecified.
type UserProfile struct {
	UserID          UserID
	Name            string
	Age             int
	Goal            string
	ReminderEnabled bool
	CreatedAt       Timestamp
}
