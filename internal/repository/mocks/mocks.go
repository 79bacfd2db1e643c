package mocks

import (
	"context"

	"github.com/paralleldiary/pardiary/internal/domain/activity"
	"github.com/paralleldiary/pardiary/internal/domain/diary"
	"github.com/stretchr/testify/mock"
)

// Generator is a mock for activity.Generator.
type Generator struct {
	mock.Mock
}

func (m *Generator) Generate(ctx context.Context, summary activity.Summary) (activity.Detail, error) {
	args := m.Called(ctx, summary)
	if d, ok := args.Get(0).(activity.Detail); ok {
		return d, args.Error(1)
	}
	return activity.Detail{}, args.Error(1)
}

// PlaceSearcher is a mock for activity.PlaceSearcher.
type PlaceSearcher struct {
	mock.Mock
}

func (m *PlaceSearcher) Search(ctx context.Context, query string, display int) ([]activity.Place, error) {
	args := m.Called(ctx, query, display)
	if places, ok := args.Get(0).([]activity.Place); ok {
		return places, args.Error(1)
	}
	return nil, args.Error(1)
}

// ActivityLookup is a mock for activity.ActivityLookup.
type ActivityLookup struct {
	mock.Mock
}

func (m *ActivityLookup) FindActivity(ctx context.Context, id string) (activity.Summary, error) {
	args := m.Called(ctx, id)
	if s, ok := args.Get(0).(activity.Summary); ok {
		return s, args.Error(1)
	}
	return activity.Summary{}, args.Error(1)
}

// EventLog is a mock for activity.EventLog.
type EventLog struct {
	mock.Mock
}

func (m *EventLog) Log(ctx context.Context, event *activity.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *EventLog) List(ctx context.Context, activityID string, limit int) ([]activity.Event, error) {
	args := m.Called(ctx, activityID, limit)
	if list, ok := args.Get(0).([]activity.Event); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// Prefetcher is a mock for diary.Prefetcher.
type Prefetcher struct {
	mock.Mock
}

func (m *Prefetcher) PrefetchAsync(ctx context.Context, candidates []activity.Summary) []string {
	args := m.Called(ctx, candidates)
	if ids, ok := args.Get(0).([]string); ok {
		return ids
	}
	return nil
}

// Backend is a mock for diary.Backend.
type Backend struct {
	mock.Mock
}

func (m *Backend) ListDiaries(ctx context.Context) ([]diary.Diary, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]diary.Diary); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Backend) GetDiary(ctx context.Context, id string) (*diary.Diary, error) {
	args := m.Called(ctx, id)
	if d, ok := args.Get(0).(*diary.Diary); ok {
		return d, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Backend) CreateDiary(ctx context.Context, req diary.CreateRequest) (*diary.Diary, error) {
	args := m.Called(ctx, req)
	if d, ok := args.Get(0).(*diary.Diary); ok {
		return d, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Backend) DeleteDiary(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *Backend) GetParallelDiary(ctx context.Context, diaryID string) (*diary.ParallelDiary, error) {
	args := m.Called(ctx, diaryID)
	if pd, ok := args.Get(0).(*diary.ParallelDiary); ok {
		return pd, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Backend) RecommendedActivities(ctx context.Context) ([]diary.RecommendedActivity, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]diary.RecommendedActivity); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Backend) ToggleBucketList(ctx context.Context, activityID string) error {
	args := m.Called(ctx, activityID)
	return args.Error(0)
}

func (m *Backend) KeywordStats(ctx context.Context) ([]diary.KeywordStat, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]diary.KeywordStat); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Backend) MonotonyStats(ctx context.Context) (*diary.MonotonyStats, error) {
	args := m.Called(ctx)
	if s, ok := args.Get(0).(*diary.MonotonyStats); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Backend) GenerateDiary(ctx context.Context, messages []diary.Message) (string, error) {
	args := m.Called(ctx, messages)
	return args.String(0), args.Error(1)
}

func (m *Backend) StreamChat(ctx context.Context, messages []diary.Message, onToken diary.TokenFunc) (string, error) {
	args := m.Called(ctx, messages, onToken)
	return args.String(0), args.Error(1)
}
