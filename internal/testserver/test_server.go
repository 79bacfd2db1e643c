package testserver

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/paralleldiary/pardiary/internal/backend"
	"github.com/paralleldiary/pardiary/internal/detailcache"
	"github.com/paralleldiary/pardiary/internal/domain/activity"
	"github.com/paralleldiary/pardiary/internal/domain/diary"
	"github.com/paralleldiary/pardiary/internal/mcp"
	"github.com/paralleldiary/pardiary/internal/naver"
	"github.com/paralleldiary/pardiary/internal/openai"
	"github.com/paralleldiary/pardiary/internal/sqlite"
	"github.com/paralleldiary/pardiary/internal/transport"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

// TestServer is a running HTTP server wired like production, backed by fakes
// for every upstream API.
type TestServer struct {
	Server     *httptest.Server
	DB         *sqlite.DB
	Token      string
	Upstream   *Upstream
	Activities *activity.Service
	Cache      *detailcache.Cache
}

// New starts the full HTTP stack over an in-memory database and a fake
// upstream.
func New(t *testing.T, token string) *TestServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { _ = db.Close() })

	return start(t, token, db, NewUpstream(t))
}

// Restart starts a fresh server over the same database and upstream, as
// after a process restart.
func (ts *TestServer) Restart(t *testing.T) *TestServer {
	t.Helper()
	return start(t, ts.Token, ts.DB, ts.Upstream)
}

func start(t *testing.T, token string, db *sqlite.DB, upstream *Upstream) *TestServer {
	t.Helper()

	cache := detailcache.New(sqlite.NewKVStore(db), nil)
	coord := activity.NewCoordinator(cache, nil)

	generator, err := openai.NewClient(openai.Config{APIKey: "sk-test", BaseURL: upstream.OpenAIURL()}, nil)
	require.NoError(t, err)

	backendClient := backend.NewClient(backend.Config{BaseURL: upstream.BackendURL(), Token: "backend-token"}, nil)

	// The diary service resolves activities for generation and schedules
	// prefetches through the activity service.
	var diaries *diary.Service
	lookup := activity.LookupFunc(func(ctx context.Context, id string) (activity.Summary, error) {
		return diaries.FindActivity(ctx, id)
	})
	activities, err := activity.NewService(activity.ServiceConfig{
		GenerationTimeout: 5 * time.Second,
		MaxConcurrent:     4,
	}, activity.ServiceDeps{
		Coordinator: coord,
		Generator:   generator,
		Places:      naver.NewClient(naver.Config{ClientID: "id", ClientSecret: "secret", BaseURL: upstream.NaverURL()}, nil),
		Lookup:      lookup,
		Events:      sqlite.NewEventRepository(db),
	}, nil)
	require.NoError(t, err)
	diaries = diary.NewService(backendClient, activities, nil)

	validator := transport.StaticToken(token)
	mcpServer := mcp.NewServer(mcp.Config{
		Services:      mcp.Services{Activities: activities, Diaries: diaries},
		Validator:     validator,
		AuthEnabled:   true,
		TransportMode: "http",
	})
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(func(*http.Request) *sdkmcp.Server { return mcpServer }, nil)

	server := httptest.NewServer(transport.NewServer(transport.Config{
		Activities: activities,
		Diaries:    diaries,
		Auth:       transport.AuthMiddleware(validator),
		MCP:        mcpHandler,
	}))
	t.Cleanup(func() {
		server.Close()
		activities.Wait()
	})

	return &TestServer{
		Server:     server,
		DB:         db,
		Token:      token,
		Upstream:   upstream,
		Activities: activities,
		Cache:      cache,
	}
}
