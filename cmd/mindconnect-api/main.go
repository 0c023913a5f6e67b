package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PabloGalante/mind-connect/internal/adapters/auth"
	httpadapter "github.com/PabloGalante/mind-connect/internal/adapters/http"
	"github.com/PabloGalante/mind-connect/internal/adapters/llm"
	firestorestore "github.com/PabloGalante/mind-connect/internal/adapters/storage/firestore"
	memstore "github.com/PabloGalante/mind-connect/internal/adapters/storage/memory"
	"github.com/PabloGalante/mind-connect/internal/app/conversation"
	"github.com/PabloGalante/mind-connect/internal/app/identity"
	"github.com/PabloGalante/mind-connect/internal/app/journal"
	"github.com/PabloGalante/mind-connect/internal/app/mood"
	"github.com/PabloGalante/mind-connect/internal/app/profile"
	"github.com/PabloGalante/mind-connect/internal/config"
	"github.com/PabloGalante/mind-connect/internal/domain"
	"github.com/PabloGalante/mind-connect/internal/observability"
)

// stores groups the ports one storage backend provides.
type stores struct {
	profiles    domain.ProfileStore
	credentials domain.CredentialStore
	moods       domain.MoodLogStore
	journal     domain.JournalStore
	sessions    domain.SessionStore
	messages    domain.MessageStore
	close       func() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := observability.Setup(observability.LogOptions{
		FilePath: cfg.LogFilePath,
		JSON:     cfg.LogJSON,
	})
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer := observability.InitTracer(ctx, cfg.OtelEnabled, cfg.OtelEndpoint)

	llmClient, err := newLLM(ctx, cfg)
	if err != nil {
		logger.Fatalw("error initializing LLM client", "provider", cfg.LLMProvider, "error", err)
	}

	st, err := newStores(ctx, cfg)
	if err != nil {
		logger.Fatalw("error initializing storage", "backend", cfg.StorageBackend, "error", err)
	}

	provider := auth.NewLocalProvider(st.credentials, cfg.JWTSecret, cfg.TokenTTL)

	app := httpadapter.NewServer(httpadapter.Deps{
		Directory:      identity.NewDirectory(provider, st.profiles),
		Conversations:  conversation.NewService(llmClient, st.sessions, st.messages),
		Moods:          mood.NewService(st.moods),
		Journal:        journal.NewService(st.journal, llmClient),
		Profiles:       profile.NewService(st.moods, st.journal),
		AllowedOrigins: cfg.CorsAllowedOrigins,
	})

	srvLog := observability.WithFields("port", cfg.Port, "mode", cfg.Mode)
	go func() {
		srvLog.Infow("mind connect api listening")
		if err := app.Listen(":" + cfg.Port); err != nil {
			srvLog.Errorw("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	srvLog.Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Errorw("server shutdown failed", "error", err)
	}
	if err := st.close(); err != nil {
		logger.Warnw("storage close failed", "error", err)
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		logger.Warnw("tracer shutdown failed", "error", err)
	}
}

func newLLM(ctx context.Context, cfg *config.Config) (domain.LLMClient, error) {
	log := observability.Logger()

	switch cfg.LLMProvider {
	case "gemini":
		log.Infow("using Gemini API LLM client", "model", cfg.ModelName)
		return llm.NewGenAIClient(ctx, llm.GenAIOptions{
			APIKey:    cfg.GeminiAPIKey,
			ModelName: cfg.ModelName,
		})
	case "vertex":
		log.Infow("using Vertex AI LLM client", "project", cfg.GCPProjectID, "location", cfg.GCPLocation, "model", cfg.ModelName)
		return llm.NewGenAIClient(ctx, llm.GenAIOptions{
			Project:   cfg.GCPProjectID,
			Location:  cfg.GCPLocation,
			ModelName: cfg.ModelName,
		})
	default:
		log.Infow("using mock LLM client")
		return llm.NewMockLLM(), nil
	}
}

func newStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	log := observability.Logger()

	if cfg.StorageBackend == "firestore" {
		log.Infow("using Firestore storage", "project", cfg.GCPProjectID, "app_id", cfg.AppID)
		fs, err := firestorestore.NewStore(ctx, cfg.GCPProjectID, cfg.AppID)
		if err != nil {
			return nil, err
		}
		// One store implements every port.
		return &stores{
			profiles:    fs,
			credentials: fs,
			moods:       fs,
			journal:     fs,
			sessions:    fs,
			messages:    fs,
			close:       fs.Close,
		}, nil
	}

	log.Infow("using in-memory storage")
	feed := memstore.NewChangeFeed()
	return &stores{
		profiles:    memstore.NewProfileStore(),
		credentials: memstore.NewCredentialStore(),
		moods:       memstore.NewMoodLogStore(feed),
		journal:     memstore.NewJournalStore(feed),
		sessions:    memstore.NewSessionStore(feed),
		messages:    memstore.NewMessageStore(feed),
		close:       feed.Close,
	}, nil
}
