package llm

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/emoai-labs/emoai-agent/internal/clock"
	"github.com/emoai-labs/emoai-agent/internal/domain"
)

// Wire shapes for the structured calls. The jsonschema tags drive the
// OpenAI response schema; the Gemini backend declares an equivalent schema
// by hand.

type sentimentResult struct {
	Category  string  `json:"category" jsonschema:"required,enum=happy,enum=sad,enum=anxious,enum=frustrated,enum=neutral,enum=confused"`
	Intensity float64 `json:"intensity" jsonschema:"required"`
}

type eventResult struct {
	HasEvent bool   `json:"has_event" jsonschema:"required"`
	Title    string `json:"title" jsonschema:"required"`
	Date     string `json:"date" jsonschema:"required"`
	Time     string `json:"time" jsonschema:"required"`
	Location string `json:"location" jsonschema:"required"`
}

type queryResult struct {
	IsQuery   bool   `json:"is_query" jsonschema:"required"`
	StartDate string `json:"start_date" jsonschema:"required"`
	EndDate   string `json:"end_date" jsonschema:"required"`
	Shape     string `json:"shape" jsonschema:"required"`
}

// stripFences removes a markdown code fence if the model wrapped its JSON in
// one despite the response-format constraint.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func decodeSentiment(raw string) (domain.SentimentCategory, float64, error) {
	var res sentimentResult
	if err := json.Unmarshal([]byte(stripFences(raw)), &res); err != nil {
		return "", 0, fmt.Errorf("malformed sentiment payload: %w", err)
	}
	cat := domain.ParseSentimentCategory(strings.ToLower(strings.TrimSpace(res.Category)))
	intensity := res.Intensity
	if intensity < 0 {
		intensity = 0
	}
	if intensity > 1 {
		intensity = 1
	}
	return cat, intensity, nil
}

func decodeEvent(raw, sourceText string) (domain.EventCandidate, error) {
	var res eventResult
	if err := json.Unmarshal([]byte(stripFences(raw)), &res); err != nil {
		return domain.EventCandidate{}, fmt.Errorf("malformed event payload: %w", err)
	}
	if !res.HasEvent {
		return domain.EventCandidate{}, nil
	}
	if _, err := time.Parse(clock.DateLayout, res.Date); err != nil {
		return domain.EventCandidate{}, fmt.Errorf("event candidate has bad date %q: %w", res.Date, err)
	}
	hhmm := strings.TrimSpace(res.Time)
	if hhmm != "" && !clock.ValidTime(hhmm) {
		// A bad time of day degrades to an all-day candidate rather than
		// discarding the event.
		hhmm = ""
	}
	return domain.EventCandidate{
		HasEvent:   true,
		Title:      strings.TrimSpace(res.Title),
		Date:       res.Date,
		Time:       hhmm,
		Location:   strings.TrimSpace(res.Location),
		SourceText: sourceText,
	}, nil
}

func decodeQuery(raw string) (domain.CalendarQuery, error) {
	var res queryResult
	if err := json.Unmarshal([]byte(stripFences(raw)), &res); err != nil {
		return domain.CalendarQuery{}, fmt.Errorf("malformed query payload: %w", err)
	}
	if !res.IsQuery {
		return domain.CalendarQuery{}, nil
	}
	if _, err := time.Parse(clock.DateLayout, res.StartDate); err != nil {
		return domain.CalendarQuery{}, fmt.Errorf("query has bad start date %q: %w", res.StartDate, err)
	}
	if _, err := time.Parse(clock.DateLayout, res.EndDate); err != nil {
		return domain.CalendarQuery{}, fmt.Errorf("query has bad end date %q: %w", res.EndDate, err)
	}
	if res.EndDate < res.StartDate {
		res.StartDate, res.EndDate = res.EndDate, res.StartDate
	}
	shape := domain.QueryShape(res.Shape)
	switch shape {
	case domain.QueryShapeDay, domain.QueryShapeWeek, domain.QueryShapeMonth, domain.QueryShapeSpecific:
	default:
		shape = domain.QueryShapeSpecific
	}
	return domain.CalendarQuery{
		IsQuery:   true,
		StartDate: res.StartDate,
		EndDate:   res.EndDate,
		Shape:     shape,
	}, nil
}
