package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/paralleldiary/pardiary/internal/domain/activity"
)

var errInvalidParams = errors.New("invalid params")

// Handler dispatches MCP tool calls.
type Handler struct {
	activities ActivityService
	diaries    DiaryService
}

// NewHandler creates a new MCP handler.
func NewHandler(services Services) *Handler {
	return &Handler{
		activities: services.Activities,
		diaries:    services.Diaries,
	}
}

// Handle dispatches a tool call to domain services.
func (h *Handler) Handle(ctx context.Context, name string, params json.RawMessage) (any, error) {
	if h.activities == nil {
		return nil, fmt.Errorf("activity service not configured")
	}

	switch name {
	case "get_activity_status":
		var req ActivityIDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if req.ID == "" {
			return nil, fmt.Errorf("%w: id is required", errInvalidParams)
		}
		return activity.View(req.ID, h.activities.Coordinator().Status(ctx, req.ID)), nil
	case "generate_activity_detail":
		var req ActivityIDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		detail, err := h.activities.Ensure(ctx, req.ID)
		if err != nil {
			return nil, mapError(err)
		}
		return detail, nil
	case "prefetch_activities":
		var req PrefetchActivitiesParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		candidates, err := h.prefetchCandidates(ctx, req)
		if err != nil {
			return nil, err
		}
		return h.activities.Prefetch(ctx, candidates), nil
	case "clear_activity_status":
		var req ActivityIDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if req.ID == "" {
			return nil, fmt.Errorf("%w: id is required", errInvalidParams)
		}
		coord := h.activities.Coordinator()
		cleared := coord.Clear(req.ID)
		return ClearActivityStatusResponse{
			Cleared: cleared,
			Status:  activity.View(req.ID, coord.Status(ctx, req.ID)),
		}, nil
	case "get_generation_history":
		var req GetGenerationHistoryParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		events, err := h.activities.History(ctx, req.ID, req.Limit)
		if err != nil {
			return nil, mapError(err)
		}
		return GetGenerationHistoryResponse{Events: events}, nil
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

func (h *Handler) prefetchCandidates(ctx context.Context, req PrefetchActivitiesParams) ([]activity.Summary, error) {
	candidates := append([]activity.Summary(nil), req.Activities...)
	if req.DiaryID != "" {
		if h.diaries == nil {
			return nil, fmt.Errorf("%w: diary lookups are not configured", errInvalidParams)
		}
		pd, err := h.diaries.ParallelDiary(ctx, req.DiaryID)
		if err != nil {
			return nil, mapError(err)
		}
		candidates = append(candidates, pd.Summaries()...)
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: diary_id or activities is required", errInvalidParams)
	}
	return candidates, nil
}

func decodeParams(params json.RawMessage, out any) error {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, out); err != nil {
		return fmt.Errorf("%w: %w", errInvalidParams, err)
	}
	return nil
}
