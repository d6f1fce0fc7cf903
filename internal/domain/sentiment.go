package domain

// SentimentCategory is the closed set of emotional states the classifier maps
// a message into.
type SentimentCategory string

const (
	SentimentHappy      SentimentCategory = "happy"
	SentimentSad        SentimentCategory = "sad"
	SentimentAnxious    SentimentCategory = "anxious"
	SentimentFrustrated SentimentCategory = "frustrated"
	SentimentNeutral    SentimentCategory = "neutral"
	SentimentConfused   SentimentCategory = "confused"
)

// ParseSentimentCategory maps free text from the model onto a known category.
// Anything unrecognized collapses to neutral.
func ParseSentimentCategory(s string) SentimentCategory {
	switch SentimentCategory(s) {
	case SentimentHappy, SentimentSad, SentimentAnxious,
		SentimentFrustrated, SentimentNeutral, SentimentConfused:
		return SentimentCategory(s)
	default:
		return SentimentNeutral
	}
}

// SentimentObservation records the classified emotional state of one user
// message. One is produced per user turn; append-only.
type SentimentObservation struct {
	ID        ObservationID
	UserID    UserID
	SessionID SessionID
	Category  SentimentCategory
	Intensity float64 // in [0.0, 1.0]
	CreatedAt Timestamp
}

// DefaultSentiment is the neutral/medium substitute used when the classifier
// fails; classification failure must never abort a turn.
func DefaultSentiment() (SentimentCategory, float64) {
	return SentimentNeutral, 0.5
}
