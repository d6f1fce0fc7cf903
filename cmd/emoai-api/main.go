package main

import (
	"context"
	"log"
	"net/http"

	httpadapter "github.com/emoai-labs/emoai-agent/internal/adapters/http"
	"github.com/emoai-labs/emoai-agent/internal/adapters/llm"
	firestorestore "github.com/emoai-labs/emoai-agent/internal/adapters/storage/firestore"
	memstore "github.com/emoai-labs/emoai-agent/internal/adapters/storage/memory"
	calendarapp "github.com/emoai-labs/emoai-agent/internal/app/calendar"
	"github.com/emoai-labs/emoai-agent/internal/app/chat"
	journalapp "github.com/emoai-labs/emoai-agent/internal/app/journal"
	"github.com/emoai-labs/emoai-agent/internal/clock"
	"github.com/emoai-labs/emoai-agent/internal/config"
	"github.com/emoai-labs/emoai-agent/internal/domain"
	"github.com/emoai-labs/emoai-agent/internal/observability"
)

// modelClient is the full set of model capabilities one backend provides.
type modelClient interface {
	domain.ReplyGenerator
	domain.SentimentClassifier
	domain.EventExtractor
	domain.CalendarQueryDetector
	domain.ChatSummarizer
}

// stores is everything the services need from one storage backend.
type stores struct {
	messages   domain.ConversationStore
	sentiments domain.SentimentStore
	events     domain.EventStore
	profiles   domain.ProfileStore
	journal    domain.JournalStore
	sessions   domain.SessionRegistry
	closer     domain.SessionCloser
}

func main() {
	ctx := context.Background()
	cfg := config.Load()
	logger := observability.Logger()

	model := buildModel(ctx, cfg)
	st := buildStores(ctx, cfg)

	clk := clock.NewSystem(cfg.Location())

	chatSvc := chat.NewService(chat.Deps{
		Replies:        model,
		Classifier:     model,
		Extractor:      model,
		Detector:       model,
		Messages:       st.messages,
		Sentiments:     st.sentiments,
		Events:         st.events,
		Profiles:       st.profiles,
		Sessions:       st.sessions,
		Clock:          clk,
		AdapterTimeout: cfg.AdapterTimeout,
	})
	journalSvc := journalapp.NewService(journalapp.Deps{
		Summarizer: model,
		Messages:   st.messages,
		Sentiments: st.sentiments,
		Journal:    st.journal,
		Sessions:   st.sessions,
		Closer:     st.closer,
		Clock:      clk,
	})
	calendarSvc := calendarapp.NewService(st.events, clk)

	handler := httpadapter.NewServer(chatSvc, journalSvc, calendarSvc, st.profiles)

	addr := ":" + cfg.Port
	logger.Info("emoai api listening", "addr", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatal(err)
	}
}

func buildModel(ctx context.Context, cfg *config.Config) modelClient {
	logger := observability.Logger()

	switch cfg.LLMProvider {
	case config.ProviderGemini:
		logger.Info("using gemini model backend", "model", cfg.GeminiModel)
		client, err := llm.NewGeminiClient(ctx, llm.GeminiConfig{
			ProjectID: cfg.GCPProjectID,
			Location:  cfg.GCPLocation,
			ModelName: cfg.GeminiModel,
			Persona:   llm.DefaultPersona(),
		})
		if err != nil {
			log.Fatalf("initializing gemini client: %v", err)
		}
		return client

	case config.ProviderOpenAI:
		logger.Info("using openai model backend", "model", cfg.OpenAIModel)
		client, err := llm.NewOpenAIClient(llm.OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIModel,
			Persona: llm.DefaultPersona(),
		})
		if err != nil {
			log.Fatalf("initializing openai client: %v", err)
		}
		return client

	default:
		logger.Info("using mock model backend")
		return llm.NewMockClient()
	}
}

func buildStores(ctx context.Context, cfg *config.Config) stores {
	logger := observability.Logger()

	if cfg.StorageBackend == "firestore" {
		if cfg.GCPProjectID == "" {
			log.Fatal("EMOAI_GCP_PROJECT is required for the firestore backend")
		}
		logger.Info("using firestore storage", "project", cfg.GCPProjectID)
		fs, err := firestorestore.NewStore(ctx, cfg.GCPProjectID)
		if err != nil {
			log.Fatalf("initializing firestore store: %v", err)
		}
		// One store, all the interfaces.
		return stores{
			messages:   fs,
			sentiments: fs,
			events:     fs,
			profiles:   fs,
			journal:    fs,
			sessions:   fs,
			closer:     fs,
		}
	}

	logger.Info("using in-memory storage")
	messages := memstore.NewMessageStore()
	journal := memstore.NewJournalStore()
	sessions := memstore.NewSessionRegistry()
	return stores{
		messages:   messages,
		sentiments: memstore.NewSentimentStore(),
		events:     memstore.NewEventStore(),
		profiles:   memstore.NewProfileStore(),
		journal:    journal,
		sessions:   sessions,
		closer:     memstore.NewSessionCloser(messages, journal, sessions),
	}
}
