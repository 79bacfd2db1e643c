package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/paralleldiary/pardiary/internal/mcp"
	"github.com/paralleldiary/pardiary/internal/transport"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the MCP endpoint",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	st, err := openStore(os.Stdout)
	if err != nil {
		return err
	}
	defer st.close()

	svc, err := st.services()
	if err != nil {
		return err
	}
	defer svc.activities.Wait()

	authEnabled := st.cfg.Auth.Token != ""
	validator := transport.StaticToken(st.cfg.Auth.Token)
	if !authEnabled {
		st.logger.Warn("PARDIARY_AUTH_TOKEN not set, API is unauthenticated")
	}

	mcpServer := mcp.NewServer(mcp.Config{
		Services:      mcp.Services{Activities: svc.activities, Diaries: svc.diaries},
		Validator:     validator,
		AuthEnabled:   authEnabled,
		TransportMode: "http",
		Version:       version,
		Logger:        st.logger,
	})
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{
			Stateless:      false,
			SessionTimeout: 30 * time.Minute,
		},
	)

	var auth func(http.Handler) http.Handler
	if authEnabled {
		auth = transport.AuthMiddleware(validator)
	}
	router := transport.NewServer(transport.Config{
		Activities: svc.activities,
		Diaries:    svc.diaries,
		Auth:       auth,
		MCP:        mcpHandler,
		Logger:     st.logger,
	})

	addr := fmt.Sprintf("%s:%d", st.cfg.Server.Host, st.cfg.Server.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		st.logger.Info("server listening", "addr", addr, "version", version)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			st.logger.Error("server error", "error", err)
		}
	}()

	waitForShutdown(st.logger, httpServer)
	return nil
}

func waitForShutdown(logger *slog.Logger, server *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
