package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/paralleldiary/pardiary/internal/mcp"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP server over stdio",
	Long:  `Runs the MCP server on stdin/stdout for local agents. Logs go to stderr and stdio is never authenticated.`,
	RunE:  runMCP,
}

func runMCP(cmd *cobra.Command, _ []string) error {
	// Stdout carries JSON-RPC.
	st, err := openStore(os.Stderr)
	if err != nil {
		return err
	}
	defer st.close()

	svc, err := st.services()
	if err != nil {
		return err
	}
	defer svc.activities.Wait()

	mcpServer := mcp.NewServer(mcp.Config{
		Services:      mcp.Services{Activities: svc.activities, Diaries: svc.diaries},
		TransportMode: "stdio",
		Version:       version,
		Logger:        st.logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st.logger.Info("starting stdio transport", "auth", "disabled")
	// Run blocks until stdin closes or ctx is canceled.
	return mcpServer.Run(ctx, &sdkmcp.StdioTransport{})
}
