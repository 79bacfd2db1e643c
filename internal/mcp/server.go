package mcp

import (
	"context"
	"log/slog"

	"github.com/paralleldiary/pardiary/internal/domain/activity"
	"github.com/paralleldiary/pardiary/internal/domain/diary"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// ActivityService defines activity operations needed by MCP.
type ActivityService interface {
	Coordinator() *activity.Coordinator
	Ensure(ctx context.Context, id string) (activity.Detail, error)
	Prefetch(ctx context.Context, candidates []activity.Summary) activity.PrefetchReport
	History(ctx context.Context, id string, limit int) ([]activity.Event, error)
}

// DiaryService defines diary operations needed by MCP.
type DiaryService interface {
	ParallelDiary(ctx context.Context, diaryID string) (*diary.ParallelDiary, error)
}

// Services contains all domain services needed by MCP.
type Services struct {
	Activities ActivityService
	Diaries    DiaryService
}

// Config contains server configuration.
type Config struct {
	Services      Services
	Validator     TokenValidator
	AuthEnabled   bool
	TransportMode string // "stdio" or "http"
	Version       string
	Logger        *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	version := cfg.Version
	if version == "" {
		version = "dev"
	}
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "pardiary",
		Version: version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	// Stdio is local-only and never authenticated.
	if cfg.TransportMode != "stdio" && cfg.AuthEnabled && cfg.Validator != nil {
		server.AddReceivingMiddleware(authMiddleware(cfg.Validator))
	}
	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, NewHandler(cfg.Services))

	return server
}
