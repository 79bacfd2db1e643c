package transport

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/paralleldiary/pardiary/internal/domain/activity"
	"github.com/paralleldiary/pardiary/internal/domain/diary"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var errBadRequest = errors.New("bad request")

// ActivityService defines activity operations needed over HTTP.
type ActivityService interface {
	Coordinator() *activity.Coordinator
	Ensure(ctx context.Context, id string) (activity.Detail, error)
	PrefetchAsync(ctx context.Context, candidates []activity.Summary) []string
	History(ctx context.Context, id string, limit int) ([]activity.Event, error)
}

// DiaryService defines diary operations needed over HTTP.
type DiaryService interface {
	OpenParallelDiary(ctx context.Context, diaryID string) (*diary.ParallelDiary, []string, error)
	Chat(ctx context.Context, messages []diary.Message, onToken diary.TokenFunc) (string, error)
}

// Config wires the HTTP server.
type Config struct {
	Activities ActivityService
	Diaries    DiaryService
	// Auth guards every route except /health, /metrics and /mcp, which
	// authenticates on its own.
	Auth   func(http.Handler) http.Handler
	MCP    http.Handler
	Logger *slog.Logger
}

// Server wires HTTP handlers.
type Server struct {
	activities ActivityService
	diaries    DiaryService
	logger     *slog.Logger
}

// NewServer creates an HTTP server router with middleware.
func NewServer(cfg Config) *chi.Mux {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	srv := &Server{activities: cfg.Activities, diaries: cfg.Diaries, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", srv.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	if cfg.MCP != nil {
		r.Handle("/mcp", cfg.MCP)
		r.Handle("/mcp/*", cfg.MCP)
	}

	r.Group(func(r chi.Router) {
		if cfg.Auth != nil {
			r.Use(cfg.Auth)
		}

		if srv.activities != nil {
			r.Route("/activities", func(r chi.Router) {
				r.Post("/prefetch", srv.handlePrefetch)
				r.Get("/{id}/status", srv.handleStatus)
				r.Delete("/{id}/status", srv.handleClear)
				r.Post("/{id}/detail", srv.handleDetail)
				r.Get("/{id}/events", srv.handleEvents)
				r.Get("/{id}/history", srv.handleHistory)
			})
		}
		if srv.diaries != nil {
			r.Get("/diaries/{id}/parallel", srv.handleParallelDiary)
			r.Post("/chat/stream", srv.handleChat)
		}
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	st := s.activities.Coordinator().Status(r.Context(), id)
	writeJSON(w, http.StatusOK, activity.View(id, st))
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	coord := s.activities.Coordinator()
	coord.Clear(id)
	writeJSON(w, http.StatusOK, activity.View(id, coord.Status(r.Context(), id)))
}

func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := s.activities.Ensure(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// handleEvents streams the activity's status on every store change until the
// client goes away.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	stream, err := newSSEWriter(w)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// Holds only the latest status; a slow client skips intermediate ones.
	latest := make(chan activity.Status, 1)
	unsubscribe := s.activities.Coordinator().Subscribe(r.Context(), id, func(st activity.Status) {
		for {
			select {
			case latest <- st:
				return
			default:
			}
			select {
			case <-latest:
			default:
			}
		}
	})
	defer unsubscribe()

	keepalive := time.NewTicker(sseKeepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case st := <-latest:
			if err := stream.Data(activity.View(id, st)); err != nil {
				s.logger.Debug("status stream closed", "id", id, "error", err)
				return
			}
		case <-keepalive.C:
			if err := stream.Keepalive(); err != nil {
				return
			}
		}
	}
}

type historyResponse struct {
	Events []activity.Event `json:"events"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, errors.Join(errBadRequest, errors.New("limit must be a non-negative integer")))
			return
		}
		limit = n
	}
	events, err := s.activities.History(r.Context(), chi.URLParam(r, "id"), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, historyResponse{Events: events})
}

type prefetchRequest struct {
	Activities []activity.Summary `json:"activities"`
}

type prefetchResponse struct {
	Scheduled []string `json:"scheduled"`
}

func (s *Server) handlePrefetch(w http.ResponseWriter, r *http.Request) {
	var req prefetchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.Join(errBadRequest, err))
		return
	}
	scheduled := s.activities.PrefetchAsync(r.Context(), req.Activities)
	writeJSON(w, http.StatusAccepted, prefetchResponse{Scheduled: scheduled})
}

type parallelDiaryResponse struct {
	ParallelDiary *diary.ParallelDiary `json:"parallelDiary"`
	Prefetching   []string             `json:"prefetching"`
}

func (s *Server) handleParallelDiary(w http.ResponseWriter, r *http.Request) {
	pd, scheduled, err := s.diaries.OpenParallelDiary(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, parallelDiaryResponse{ParallelDiary: pd, Prefetching: scheduled})
}

type chatRequest struct {
	Messages []diary.Message `json:"messages"`
}

type chatFrame struct {
	Content string `json:"content,omitempty"`
	Error   string `json:"error,omitempty"`
}

// handleChat relays the backend chat stream token by token.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.Join(errBadRequest, err))
		return
	}
	if len(req.Messages) == 0 {
		writeError(w, errors.Join(errBadRequest, errors.New("messages are required")))
		return
	}

	stream, err := newSSEWriter(w)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var writeErr error
	_, err = s.diaries.Chat(r.Context(), req.Messages, func(token, _ string) {
		if writeErr == nil {
			writeErr = stream.Data(chatFrame{Content: token})
		}
	})
	if writeErr != nil {
		s.logger.Debug("chat stream closed by client", "error", writeErr)
		return
	}
	if err != nil {
		s.logger.Warn("chat stream failed", "error", err)
		_ = stream.Data(chatFrame{Error: err.Error()})
		return
	}
	_ = stream.Done()
}
