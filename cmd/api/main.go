package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bryanwahyu/docsense/internal/application"
	"github.com/bryanwahyu/docsense/internal/application/analysis"
	"github.com/bryanwahyu/docsense/internal/application/redaction"
	"github.com/bryanwahyu/docsense/internal/config"
	domai "github.com/bryanwahyu/docsense/internal/domain/ai"
	"github.com/bryanwahyu/docsense/internal/domain/documents"
	openaiClient "github.com/bryanwahyu/docsense/internal/infra/ai/openai"
	"github.com/bryanwahyu/docsense/internal/infra/db/memory"
	mysqlp "github.com/bryanwahyu/docsense/internal/infra/db/mysql"
	"github.com/bryanwahyu/docsense/internal/infra/db/postgres"
	"github.com/bryanwahyu/docsense/internal/infra/httpserver"
	"github.com/bryanwahyu/docsense/internal/infra/parser"
	minioStore "github.com/bryanwahyu/docsense/internal/infra/storage"
	"github.com/bryanwahyu/docsense/internal/logging"
	"github.com/bryanwahyu/docsense/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		slog.Error("config load error", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// store bundles the optional persistence pieces; all fields may be nil.
type store struct {
	db       *sql.DB
	repo     documents.Repository
	searcher documents.Searcher
}

func openStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (store, error) {
	if cfg.Database.Driver == "memory" {
		log.Warn("using in-memory document store, data is lost on restart")
		return store{repo: memory.NewDocumentRepository()}, nil
	}

	dsn := cfg.StoreDSN()
	if dsn == "" {
		log.Warn("no database configured, analyses will fail with store unavailable")
		return store{}, nil
	}

	switch cfg.Database.Driver {
	case "mysql":
		db, err := mysqlp.Connect(ctx, dsn, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
		if err != nil {
			return store{}, fmt.Errorf("mysql connect: %w", err)
		}
		return store{db: db, repo: mysqlp.NewDocumentRepository(db)}, nil
	case "postgres":
		db, err := postgres.Connect(ctx, dsn, postgres.PoolConfig{
			MaxOpenConns: cfg.Database.MaxOpenConns,
			MaxIdleConns: cfg.Database.MaxIdleConns,
		})
		if err != nil {
			return store{}, fmt.Errorf("postgres connect: %w", err)
		}
		repo := postgres.NewDocumentRepository(db)
		return store{db: db, repo: repo, searcher: repo}, nil
	default:
		return store{}, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx := context.Background()

	st, err := openStore(ctx, cfg, logger.With("component", "store"))
	if err != nil {
		return err
	}
	if st.db != nil {
		defer st.db.Close()
	}

	// init openai, kalau key kosong tasks pakai default
	var (
		completer domai.Completer
		embedder  domai.Embedder
		modelUsed = cfg.OpenAI.ChatModel
	)
	if cfg.CompletionConfigured() {
		client := openaiClient.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.ChatModel, cfg.OpenAI.EmbeddingModel)
		completer, embedder = client, client
	} else {
		logger.Warn("OPENAI_API_KEY not set, analysis tasks return defaults")
	}

	// init minio (optional archive)
	var archive documents.ArchiveStore
	if cfg.Minio.Endpoint != "" {
		s, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			return fmt.Errorf("minio init: %w", err)
		}
		archive = s
	}

	metrics := middleware.NewMetrics(nil)
	clock := application.SystemClock{}

	// init service
	svc := &analysis.Service{
		Tasks: &analysis.Tasks{
			Completer:         completer,
			MissingKeySummary: cfg.Analysis.MissingKeySummary,
			Timeout:           cfg.OpenAI.Timeout,
		},
		Store:     &analysis.Persister{Repo: st.repo, Clock: clock},
		Redactor:  redaction.New(),
		Plaintext: parser.NewHTMLText(),
		Archive:   archive,
		Clock:     clock,
		Metrics:   metrics,
		ModelUsed: modelUsed,
		Logger:    logger.With("component", "analysis"),
	}
	dispatcher := analysis.NewDispatcher(svc, analysis.DispatcherConfig{
		Workers:  cfg.Analysis.Workers,
		Capacity: cfg.Analysis.QueueSize,
		Clock:    clock,
		Metrics:  metrics,
		Logger:   logger.With("component", "dispatcher"),
	})

	checkers := map[string]middleware.HealthChecker{}
	if st.db != nil {
		checkers["database"] = &middleware.DatabaseHealthChecker{DB: st.db}
	}

	// init router
	handler := httpserver.NewRouter(httpserver.Deps{
		Analyzer:  dispatcher,
		Documents: st.repo,
		Searcher:  st.searcher,
		Embedder:  embedder,
		Metrics:   metrics,
		Checkers:  checkers,
		Logger:    logger,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr, "driver", cfg.Database.Driver, "model", modelUsed)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-stop:
	}
	logger.Info("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	// tunggu analysis yang masih jalan
	if err := dispatcher.Close(ctx2); err != nil {
		logger.Warn("pending analyses abandoned", "error", err)
	}
	return nil
}
