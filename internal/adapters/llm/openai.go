package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/emoai-labs/emoai-agent/internal/domain"
)

// OpenAIClient serves the same five capabilities through the OpenAI API,
// using strict JSON-schema response formats for the structured calls.
type OpenAIClient struct {
	client  openai.Client
	model   shared.ChatModel
	persona Persona
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	Persona Persona
}

func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Persona.Directive == "" {
		cfg.Persona = DefaultPersona()
	}

	return &OpenAIClient{
		client:  openai.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:   shared.ChatModel(cfg.Model),
		persona: cfg.Persona,
	}, nil
}

// generateSchema reflects a wire struct into an OpenAI-compliant JSON schema.
func generateSchema[T any]() map[string]any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var v T
	schema := reflector.Reflect(v)
	b, err := schema.MarshalJSON()
	if err != nil {
		panic(err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		panic(err)
	}
	return m
}

var (
	openaiSentimentSchema = generateSchema[sentimentResult]()
	openaiEventSchema     = generateSchema[eventResult]()
	openaiQuerySchema     = generateSchema[queryResult]()
)

// GenerateReply implements domain.ReplyGenerator.
func (o *OpenAIClient) GenerateReply(
	ctx context.Context,
	history []domain.ChatTurn,
	tone domain.ToneHint,
) (string, error) {
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(o.persona.Directive),
	}
	for _, turn := range applyTone(history, tone) {
		if turn.Role == domain.RoleCompanion {
			messages = append(messages, openai.AssistantMessage(turn.Text))
		} else {
			messages = append(messages, openai.UserMessage(turn.Text))
		}
	}

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    o.model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("openai generate reply: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("openai returned empty reply")
	}
	return resp.Choices[0].Message.Content, nil
}

func (o *OpenAIClient) generateJSON(ctx context.Context, name, prompt string, schema map[string]any) (string, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: o.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   name,
					Schema: schema,
					Strict: openai.Bool(true),
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai structured call %s: %w", name, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("openai returned empty structured payload for %s", name)
	}
	return resp.Choices[0].Message.Content, nil
}

// ClassifySentiment implements domain.SentimentClassifier.
func (o *OpenAIClient) ClassifySentiment(ctx context.Context, text string) (domain.SentimentCategory, float64, error) {
	raw, err := o.generateJSON(ctx, "sentiment_classification", sentimentPrompt(text), openaiSentimentSchema)
	if err != nil {
		return "", 0, err
	}
	return decodeSentiment(raw)
}

// ExtractEvent implements domain.EventExtractor.
func (o *OpenAIClient) ExtractEvent(ctx context.Context, text string, now time.Time) (domain.EventCandidate, error) {
	raw, err := o.generateJSON(ctx, "event_extraction", extractEventPrompt(text, now), openaiEventSchema)
	if err != nil {
		return domain.EventCandidate{}, err
	}
	return decodeEvent(raw, text)
}

// DetectCalendarQuery implements domain.CalendarQueryDetector.
func (o *OpenAIClient) DetectCalendarQuery(ctx context.Context, text string, now time.Time) (domain.CalendarQuery, error) {
	raw, err := o.generateJSON(ctx, "calendar_query_detection", detectQueryPrompt(text, now), openaiQuerySchema)
	if err != nil {
		return domain.CalendarQuery{}, err
	}
	return decodeQuery(raw)
}

// SummarizeChat implements domain.ChatSummarizer.
func (o *OpenAIClient) SummarizeChat(ctx context.Context, transcript string) (string, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: o.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(summarizerDirective),
			openai.UserMessage("Here is the chat conversation:\n\n" + transcript + "\n\n"),
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai summarize: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("openai returned empty summary")
	}
	return resp.Choices[0].Message.Content, nil
}
