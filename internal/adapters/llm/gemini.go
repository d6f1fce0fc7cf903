package llm

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"github.com/emoai-labs/emoai-agent/internal/domain"
)

// GeminiClient serves all five model capabilities through Vertex AI.
type GeminiClient struct {
	client    *genai.Client
	modelName string
	persona   Persona
}

type GeminiConfig struct {
	ProjectID string
	Location  string
	ModelName string
	Persona   Persona
}

// NewGeminiClient creates a Vertex AI (Gemini) backed client.
func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	if cfg.ProjectID == "" || cfg.Location == "" {
		return nil, fmt.Errorf("gemini: project and location are required")
	}
	if cfg.ModelName == "" {
		cfg.ModelName = "gemini-2.0-flash"
	}
	if cfg.Persona.Directive == "" {
		cfg.Persona = DefaultPersona()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  cfg.ProjectID,
		Location: cfg.Location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Vertex AI client: %w", err)
	}

	return &GeminiClient{
		client:    client,
		modelName: cfg.ModelName,
		persona:   cfg.Persona,
	}, nil
}

// GenerateReply implements domain.ReplyGenerator.
func (g *GeminiClient) GenerateReply(
	ctx context.Context,
	history []domain.ChatTurn,
	tone domain.ToneHint,
) (string, error) {
	var contents []*genai.Content
	for _, turn := range applyTone(history, tone) {
		contents = append(contents, genai.NewContentFromText(turn.Text, geminiRole(turn.Role)))
	}

	temp := float32(0.7)
	topP := float32(0.9)
	outputTokens := int32(1024)

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(g.persona.Directive, genai.RoleUser),
		Temperature:       &temp,
		TopP:              &topP,
		MaxOutputTokens:   outputTokens,
	}

	res, err := g.client.Models.GenerateContent(ctx, g.modelName, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate reply: %w", err)
	}

	text := res.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned empty reply")
	}
	return text, nil
}

// geminiRole maps a conversation author onto the genai role vocabulary.
// The return type matters: NewContentFromText takes a genai.Role, and the
// role constants are untyped strings.
func geminiRole(r domain.Role) genai.Role {
	if r == domain.RoleCompanion {
		return genai.RoleModel
	}
	return genai.RoleUser
}

// generateJSON runs one structured call and returns the raw JSON text.
func (g *GeminiClient) generateJSON(ctx context.Context, prompt string, schema *genai.Schema) (string, error) {
	temp := float32(0.0)

	cfg := &genai.GenerateContentConfig{
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	}

	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	res, err := g.client.Models.GenerateContent(ctx, g.modelName, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini structured call: %w", err)
	}

	text := res.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned empty structured payload")
	}
	return text, nil
}

var sentimentSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"category": {
			Type: genai.TypeString,
			Enum: []string{"happy", "sad", "anxious", "frustrated", "neutral", "confused"},
		},
		"intensity": {Type: genai.TypeNumber},
	},
	Required: []string{"category", "intensity"},
}

var eventSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"has_event": {Type: genai.TypeBoolean},
		"title":     {Type: genai.TypeString},
		"date":      {Type: genai.TypeString},
		"time":      {Type: genai.TypeString},
		"location":  {Type: genai.TypeString},
	},
	Required: []string{"has_event", "title", "date", "time", "location"},
}

var querySchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"is_query":   {Type: genai.TypeBoolean},
		"start_date": {Type: genai.TypeString},
		"end_date":   {Type: genai.TypeString},
		"shape":      {Type: genai.TypeString},
	},
	Required: []string{"is_query", "start_date", "end_date", "shape"},
}

// ClassifySentiment implements domain.SentimentClassifier.
func (g *GeminiClient) ClassifySentiment(ctx context.Context, text string) (domain.SentimentCategory, float64, error) {
	raw, err := g.generateJSON(ctx, sentimentPrompt(text), sentimentSchema)
	if err != nil {
		return "", 0, err
	}
	return decodeSentiment(raw)
}

// ExtractEvent implements domain.EventExtractor.
func (g *GeminiClient) ExtractEvent(ctx context.Context, text string, now time.Time) (domain.EventCandidate, error) {
	raw, err := g.generateJSON(ctx, extractEventPrompt(text, now), eventSchema)
	if err != nil {
		return domain.EventCandidate{}, err
	}
	return decodeEvent(raw, text)
}

// DetectCalendarQuery implements domain.CalendarQueryDetector.
func (g *GeminiClient) DetectCalendarQuery(ctx context.Context, text string, now time.Time) (domain.CalendarQuery, error) {
	raw, err := g.generateJSON(ctx, detectQueryPrompt(text, now), querySchema)
	if err != nil {
		return domain.CalendarQuery{}, err
	}
	return decodeQuery(raw)
}

// SummarizeChat implements domain.ChatSummarizer.
func (g *GeminiClient) SummarizeChat(ctx context.Context, transcript string) (string, error) {
	temp := float32(0.4)

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(summarizerDirective, genai.RoleUser),
		Temperature:       &temp,
	}

	prompt := "Here is the chat conversation:\n\n" + transcript + "\n\n"
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	res, err := g.client.Models.GenerateContent(ctx, g.modelName, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini summarize: %w", err)
	}

	text := res.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned empty summary")
	}
	return text, nil
}
