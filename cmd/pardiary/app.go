package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/paralleldiary/pardiary/internal/backend"
	"github.com/paralleldiary/pardiary/internal/config"
	"github.com/paralleldiary/pardiary/internal/detailcache"
	"github.com/paralleldiary/pardiary/internal/domain/activity"
	"github.com/paralleldiary/pardiary/internal/domain/diary"
	"github.com/paralleldiary/pardiary/internal/naver"
	"github.com/paralleldiary/pardiary/internal/openai"
	"github.com/paralleldiary/pardiary/internal/sqlite"
	"golang.org/x/time/rate"
)

// store is the durable state shared by every command.
type store struct {
	cfg    config.Config
	logger *slog.Logger
	db     *sqlite.DB
	cache  *detailcache.Cache
	close  func()
}

// openStore loads configuration, sets up logging to logWriter and opens the
// database.
func openStore(logWriter io.Writer) (*store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	closers := []func(){}
	if logPath := os.Getenv("PARDIARY_LOG_PATH"); logPath != "" {
		fileWriter, file, err := newLogFileWriter(logPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		} else {
			closers = append(closers, func() { _ = file.Close() })
			logWriter = fileWriter
		}
	}
	logger := slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		return nil, fmt.Errorf("prepare database path: %w", err)
	}
	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(); err != nil {
		_ = db.Close()
		return nil, err
	}
	closers = append([]func(){func() { _ = db.Close() }}, closers...)

	return &store{
		cfg:    cfg,
		logger: logger,
		db:     db,
		cache:  detailcache.New(sqlite.NewKVStore(db), logger),
		close: func() {
			for _, c := range closers {
				c()
			}
		},
	}, nil
}

// services are the domain services behind the HTTP API and MCP server.
type services struct {
	activities *activity.Service
	diaries    *diary.Service
}

func (s *store) services() (*services, error) {
	cfg := s.cfg

	generator, err := openai.NewClient(openai.Config{
		APIKey:      cfg.OpenAI.APIKey,
		BaseURL:     cfg.OpenAI.BaseURL,
		Model:       cfg.OpenAI.Model,
		Temperature: cfg.OpenAI.Temperature,
		MaxTokens:   cfg.OpenAI.MaxTokens,
		Timeout:     cfg.OpenAI.Timeout,
	}, s.logger)
	if err != nil {
		return nil, fmt.Errorf("configure generator: %w", err)
	}

	var places activity.PlaceSearcher
	if cfg.Naver.ClientID != "" {
		places = naver.NewClient(naver.Config{
			ClientID:     cfg.Naver.ClientID,
			ClientSecret: cfg.Naver.ClientSecret,
			BaseURL:      cfg.Naver.BaseURL,
			Timeout:      cfg.Naver.Timeout,
		}, s.logger)
	} else {
		s.logger.Warn("naver credentials missing, details will not carry places")
	}

	backendClient := backend.NewClient(backend.Config{
		BaseURL: cfg.Backend.BaseURL,
		Token:   cfg.Backend.Token,
		Timeout: cfg.Backend.Timeout,
	}, s.logger)

	coord := activity.NewCoordinator(s.cache, s.logger)

	var diaries *diary.Service
	activities, err := activity.NewService(activity.ServiceConfig{
		GenerationTimeout: cfg.Generation.Timeout,
		MaxConcurrent:     cfg.Prefetch.MaxConcurrent,
		RateLimit:         rate.Limit(cfg.Prefetch.RateLimit),
		Burst:             cfg.Prefetch.Burst,
	}, activity.ServiceDeps{
		Coordinator: coord,
		Generator:   generator,
		Places:      places,
		Lookup: activity.LookupFunc(func(ctx context.Context, id string) (activity.Summary, error) {
			return diaries.FindActivity(ctx, id)
		}),
		Events: sqlite.NewEventRepository(s.db),
	}, s.logger)
	if err != nil {
		return nil, err
	}
	diaries = diary.NewService(backendClient, activities, s.logger)

	return &services{activities: activities, diaries: diaries}, nil
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
