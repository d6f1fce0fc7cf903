package domain

// Dates travel as "2006-01-02" and times of day as 24h "15:04" strings,
// matching the wire format. An empty Time means an all-day event. Both
// formats sort lexicographically in chronological order, which the stores
// rely on for range queries and ordering.

// EventCandidate is the ephemeral output of the event extractor. It is
// consumed by the admission policy and never persisted.
type EventCandidate struct {
	HasEvent   bool
	Title      string
	Date       string // 2006-01-02
	Time       string // 15:04, empty when all-day
	Location   string
	SourceText string
}

// CalendarEvent is a persisted, user-owned calendar record. Only the turn
// pipeline creates unconfirmed events; confirmation and edits come from the
// calendar CRUD surface.
type CalendarEvent struct {
	ID          EventID
	UserID      UserID
	Title       string
	Description string
	Date        string // 2006-01-02
	Time        string // 15:04, empty when all-day
	Location    string
	Confirmed   bool
	Synced      bool   // pushed to an external calendar
	ExternalID  string // identifier on the external calendar
	SourceText  string // message text the event was extracted from
	CreatedAt   Timestamp
}

// QueryShape tags the kind of date range a calendar question resolved to.
type QueryShape string

const (
	QueryShapeDay      QueryShape = "day"
	QueryShapeWeek     QueryShape = "week"
	QueryShapeMonth    QueryShape = "month"
	QueryShapeSpecific QueryShape = "specific"
)

// CalendarQuery is the ephemeral output of the calendar query detector.
// It is resolved into a context block immediately and never persisted.
type CalendarQuery struct {
	IsQuery   bool
	StartDate string // 2006-01-02, inclusive
	EndDate   string // 2006-01-02, inclusive
	Shape     QueryShape
}
