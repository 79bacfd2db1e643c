package functional_test

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/paralleldiary/pardiary/internal/domain/activity"
	"github.com/paralleldiary/pardiary/internal/testserver"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

func newStdioSession(t *testing.T, upstream *testserver.Upstream, dbPath string) *sdkmcp.ClientSession {
	t.Helper()

	binaryPath := "./bin/pardiary"
	if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
		binaryPath = "../../bin/pardiary"
		if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
			t.Skip("pardiary binary not found. Run 'go build -o bin/pardiary ./cmd/pardiary' first.")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	cmd := exec.CommandContext(ctx, binaryPath, "mcp")
	cmd.Env = append(os.Environ(),
		"PARDIARY_DB_PATH="+dbPath,
		"PARDIARY_BACKEND_URL="+upstream.BackendURL(),
		"PARDIARY_OPENAI_API_KEY=sk-test",
		"PARDIARY_OPENAI_BASE_URL="+upstream.OpenAIURL(),
		"PARDIARY_NAVER_CLIENT_ID=id",
		"PARDIARY_NAVER_CLIENT_SECRET=secret",
		"PARDIARY_NAVER_BASE_URL="+upstream.NaverURL(),
		"PARDIARY_LOG_LEVEL=debug",
	)

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, &sdkmcp.CommandTransport{Command: cmd}, nil)
	if err != nil {
		cancel()
		t.Fatalf("Failed to connect: %v", err)
	}

	t.Cleanup(func() {
		_ = session.Close()
		cancel()
	})
	return session
}

func TestStdio_ToolDiscovery(t *testing.T) {
	upstream := testserver.NewUpstream(t)
	session := newStdioSession(t, upstream, filepath.Join(t.TempDir(), "pardiary.db"))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	tools, err := session.ListTools(ctx, nil)
	require.NoError(t, err)

	names := make([]string, 0, len(tools.Tools))
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	require.ElementsMatch(t, []string{
		"get_activity_status",
		"generate_activity_detail",
		"prefetch_activities",
		"clear_activity_status",
		"get_generation_history",
	}, names)
}

func TestStdio_DetailSurvivesRestart(t *testing.T) {
	upstream := testserver.NewUpstream(t)
	dbPath := filepath.Join(t.TempDir(), "pardiary.db")

	first := newStdioSession(t, upstream, dbPath)
	result, raw := callTool(t, first, "generate_activity_detail", map[string]any{"id": "a1"})
	require.False(t, result.IsError, string(raw))
	require.NoError(t, first.Close())

	second := newStdioSession(t, upstream, dbPath)
	_, raw = callTool(t, second, "get_activity_status", map[string]any{"id": "a1"})
	var view activity.StatusView
	require.NoError(t, json.Unmarshal(raw, &view))
	require.Equal(t, activity.KindComplete, view.Status)
	require.EqualValues(t, 1, upstream.GenerateCalls.Load())
}
