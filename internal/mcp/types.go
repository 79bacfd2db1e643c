package mcp

import "github.com/paralleldiary/pardiary/internal/domain/activity"

// Tool parameter types.

type ActivityIDParams struct {
	ID string `json:"id"`
}

type PrefetchActivitiesParams struct {
	DiaryID    string             `json:"diary_id,omitempty"`
	Activities []activity.Summary `json:"activities,omitempty"`
}

type GetGenerationHistoryParams struct {
	ID    string `json:"id"`
	Limit int    `json:"limit,omitempty"`
}

// Tool response types.

type ClearActivityStatusResponse struct {
	Cleared bool                `json:"cleared"`
	Status  activity.StatusView `json:"status"`
}

type GetGenerationHistoryResponse struct {
	Events []activity.Event `json:"events"`
}
