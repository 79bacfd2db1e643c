package functional_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/paralleldiary/pardiary/internal/domain/activity"
	"github.com/paralleldiary/pardiary/internal/testserver"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

// bearerTransport adds an Authorization header to every request.
type bearerTransport struct {
	token string
	base  http.RoundTripper
}

func (b bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if b.token != "" {
		req.Header.Set("Authorization", "Bearer "+b.token)
	}
	return b.base.RoundTrip(req)
}

func connectHTTP(t *testing.T, ts *testserver.TestServer, token string) *sdkmcp.ClientSession {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	transport := &sdkmcp.StreamableClientTransport{
		Endpoint:   ts.Server.URL + "/mcp",
		HTTPClient: &http.Client{Transport: bearerTransport{token: token, base: http.DefaultTransport}},
	}
	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, transport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func callTool(t *testing.T, session *sdkmcp.ClientSession, name string, args map[string]any) (*sdkmcp.CallToolResult, json.RawMessage) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := session.CallTool(ctx, &sdkmcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err, "CallTool %s failed", name)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(*sdkmcp.TextContent)
	require.True(t, ok)
	return result, json.RawMessage(text.Text)
}

func TestFunctionalMCP_RequiresToken(t *testing.T) {
	ts := testserver.New(t, "token")
	session := connectHTTP(t, ts, "")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := session.ListTools(ctx, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unauthorized")
}

func TestFunctionalMCP_PrefetchThenStatus(t *testing.T) {
	ts := testserver.New(t, "token")
	session := connectHTTP(t, ts, ts.Token)

	result, raw := callTool(t, session, "prefetch_activities", map[string]any{"diary_id": "d1"})
	require.False(t, result.IsError, string(raw))

	var report activity.PrefetchReport
	require.NoError(t, json.Unmarshal(raw, &report))
	require.ElementsMatch(t, []string{"a1", "a2", "a3"}, report.Scheduled)
	require.Contains(t, report.Failed, "a3")
	require.NotContains(t, report.Failed, "a1")

	_, raw = callTool(t, session, "get_activity_status", map[string]any{"id": "a1"})
	var view activity.StatusView
	require.NoError(t, json.Unmarshal(raw, &view))
	require.Equal(t, activity.KindComplete, view.Status)
	require.NotEmpty(t, view.Detail.RecommendedPlaces)

	// The HTTP API sees the same store.
	require.Equal(t, activity.KindError, status(t, ts, "a3").Status)
}

func TestFunctionalMCP_GenerateAndHistory(t *testing.T) {
	ts := testserver.New(t, "token")
	session := connectHTTP(t, ts, ts.Token)

	result, raw := callTool(t, session, "generate_activity_detail", map[string]any{"id": "a2"})
	require.False(t, result.IsError, string(raw))
	var detail activity.Detail
	require.NoError(t, json.Unmarshal(raw, &detail))
	require.Equal(t, "한강 러닝", detail.Title)

	_, raw = callTool(t, session, "get_generation_history", map[string]any{"id": "a2"})
	var history struct {
		Events []activity.Event `json:"events"`
	}
	require.NoError(t, json.Unmarshal(raw, &history))
	require.Len(t, history.Events, 2)
	require.Equal(t, activity.EventComplete, history.Events[0].Status)

	result, raw = callTool(t, session, "generate_activity_detail", map[string]any{"id": "nope"})
	require.True(t, result.IsError)
	require.Contains(t, string(raw), "ACTIVITY_NOT_FOUND")
}

func TestFunctionalMCP_ClearStatus(t *testing.T) {
	ts := testserver.New(t, "token")
	session := connectHTTP(t, ts, ts.Token)

	result, _ := callTool(t, session, "generate_activity_detail", map[string]any{"id": "a3"})
	require.True(t, result.IsError)

	_, raw := callTool(t, session, "clear_activity_status", map[string]any{"id": "a3"})
	var cleared struct {
		Cleared bool                `json:"cleared"`
		Status  activity.StatusView `json:"status"`
	}
	require.NoError(t, json.Unmarshal(raw, &cleared))
	require.True(t, cleared.Cleared)
	require.Equal(t, activity.KindIdle, cleared.Status.Status)
}
