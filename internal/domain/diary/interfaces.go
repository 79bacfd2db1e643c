package diary

import (
	"context"

	"github.com/paralleldiary/pardiary/internal/domain/activity"
)

// Backend is the diary REST API.
type Backend interface {
	ListDiaries(ctx context.Context) ([]Diary, error)
	GetDiary(ctx context.Context, id string) (*Diary, error)
	CreateDiary(ctx context.Context, req CreateRequest) (*Diary, error)
	DeleteDiary(ctx context.Context, id string) error
	GetParallelDiary(ctx context.Context, diaryID string) (*ParallelDiary, error)
	RecommendedActivities(ctx context.Context) ([]RecommendedActivity, error)
	ToggleBucketList(ctx context.Context, activityID string) error
	KeywordStats(ctx context.Context) ([]KeywordStat, error)
	MonotonyStats(ctx context.Context) (*MonotonyStats, error)
	GenerateDiary(ctx context.Context, messages []Message) (string, error)
	StreamChat(ctx context.Context, messages []Message, onToken TokenFunc) (string, error)
}

// Prefetcher schedules background detail generation.
type Prefetcher interface {
	PrefetchAsync(ctx context.Context, candidates []activity.Summary) []string
}
