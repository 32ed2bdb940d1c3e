package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Bernard-Otieno/ai-doc-assistant/internal/config"
	"github.com/Bernard-Otieno/ai-doc-assistant/internal/core"
	db "github.com/Bernard-Otieno/ai-doc-assistant/internal/core/database"
	"github.com/Bernard-Otieno/ai-doc-assistant/internal/core/extraction"
	"github.com/Bernard-Otieno/ai-doc-assistant/internal/core/grammar"
	"github.com/Bernard-Otieno/ai-doc-assistant/internal/core/llm"
	objectclient "github.com/Bernard-Otieno/ai-doc-assistant/internal/core/object-client"
	"github.com/Bernard-Otieno/ai-doc-assistant/internal/core/pipeline"
	"github.com/Bernard-Otieno/ai-doc-assistant/internal/core/review"
	"github.com/Bernard-Otieno/ai-doc-assistant/internal/services"
)

type App struct {
	cfg          *config.Config
	DBClient     core.DbClient
	ObjectClient core.ObjectClient
	Store        *review.Store
	Processor    *pipeline.Processor
	Server       *Server

	closers []io.Closer
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	a := &App{cfg: cfg, Store: review.NewStore()}

	dbClient, err := newDbClient(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	a.DBClient = dbClient
	a.closers = append(a.closers, dbClient)

	objClient, err := newObjectClient(appCtx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.ObjectClient = objClient

	checker, err := a.newChecker(appCtx)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Processor = pipeline.NewProcessor(dbClient, objClient, newExtractor(cfg), checker, a.Store, pipeline.Settings{
		CheckTimeout:   cfg.CheckTimeout,
		MaxCharWarning: cfg.MaxCharWarning,
	}, slog.Default())

	docs := services.NewDocumentService(dbClient, objClient, a.Processor)
	a.Server = NewServer(cfg, NewRouter(cfg, a.Store, docs))
	return a, nil
}

func newDbClient(ctx context.Context, cfg *config.Config) (core.DbClient, error) {
	if cfg.DatabaseURL == "" {
		slog.Info("DATABASE_URL not set, keeping document records in memory")
		return db.NewMemoryClient(), nil
	}
	client, err := db.NewDatabaseClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	slog.Info("database initialized and ready")
	return client, nil
}

func newObjectClient(ctx context.Context, cfg *config.Config) (core.ObjectClient, error) {
	if !cfg.UsesObjectStorage() {
		slog.Info("AWS credentials not set, keeping uploads in memory")
		return objectclient.NewMemoryStore(), nil
	}
	return objectclient.NewS3Client(ctx, cfg)
}

func newExtractor(cfg *config.Config) *extraction.Extractor {
	var primary, fallback extraction.PageSource = extraction.NewPdfcpuPages(), extraction.NewDocconvPages()
	if cfg.PDFBackend == "docconv" {
		primary, fallback = fallback, primary
	}
	return extraction.NewExtractor(primary,
		extraction.WithFallback(fallback),
		extraction.WithLogger(slog.Default().With("component", "extraction")),
	)
}

func (a *App) newChecker(ctx context.Context) (core.GrammarChecker, error) {
	cfg := a.cfg
	var checker core.GrammarChecker
	switch cfg.GrammarBackend {
	case "gemini":
		gen, err := llm.NewGeminiLLM(ctx, cfg.AIAPIKey, cfg.GenModel)
		if err != nil {
			return nil, fmt.Errorf("couldn't initialize the gemini client: %w", err)
		}
		a.closers = append(a.closers, gen)
		checker = grammar.NewLLMChecker(gen, cfg.Language)
	default:
		checker = grammar.NewLanguageTool(cfg.LanguageToolURL,
			grammar.WithLanguage(cfg.Language),
			grammar.WithCredentials(cfg.LanguageToolUser, cfg.LanguageToolAPIKey),
			grammar.WithTimeout(cfg.CheckTimeout),
		)
	}
	slog.Info("grammar backend ready", "backend", cfg.GrammarBackend, "chunk_chars", cfg.CheckChunkChars)
	return grammar.NewChunked(checker, cfg.CheckChunkChars, cfg.Workers), nil
}

// Run starts the workers and the session janitor, then serves HTTP until
// ctx is done.
func (a *App) Run(ctx context.Context) error {
	a.Processor.Start(ctx, a.cfg.Workers)
	go a.pruneSessions(ctx)

	errCh := make(chan error, 1)
	go func() { errCh <- a.Server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return a.Server.Shutdown(shutdownCtx)
}

func (a *App) pruneSessions(ctx context.Context) {
	interval := a.cfg.SessionTTL / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := a.Store.Prune(a.cfg.SessionTTL); n > 0 {
				slog.Info("pruned idle sessions", "count", n)
			}
		}
	}
}

func (a *App) Close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			slog.Warn("close", "error", err)
		}
	}
}
