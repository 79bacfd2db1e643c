package diary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/paralleldiary/pardiary/internal/domain/activity"
	"github.com/paralleldiary/pardiary/internal/repository"
)

// Service handles diary operations against the backend.
type Service struct {
	backend    Backend
	prefetcher Prefetcher
	logger     *slog.Logger
}

// NewService creates a new diary service. prefetcher may be nil.
func NewService(backend Backend, prefetcher Prefetcher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{backend: backend, prefetcher: prefetcher, logger: logger}
}

// List returns the user's diaries.
func (s *Service) List(ctx context.Context) ([]Diary, error) {
	diaries, err := s.backend.ListDiaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing diaries: %w", err)
	}
	return diaries, nil
}

// Get returns one diary.
func (s *Service) Get(ctx context.Context, id string) (*Diary, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}
	d, err := s.backend.GetDiary(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return d, nil
}

// Create stores a new diary entry.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Diary, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, fmt.Errorf("%w: content is required", ErrInvalidInput)
	}
	d, err := s.backend.CreateDiary(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("creating diary: %w", err)
	}
	s.logger.Info("diary created", "id", d.ID)
	return d, nil
}

// Delete removes a diary.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidInput
	}
	if err := s.backend.DeleteDiary(ctx, id); err != nil {
		return mapNotFound(err)
	}
	return nil
}

// OpenParallelDiary fetches the parallel diary of diaryID and schedules
// background generation of its recommended activities. It returns the
// diary and the activity IDs that were scheduled.
func (s *Service) OpenParallelDiary(ctx context.Context, diaryID string) (*ParallelDiary, []string, error) {
	pd, err := s.ParallelDiary(ctx, diaryID)
	if err != nil {
		return nil, nil, err
	}
	if s.prefetcher == nil || len(pd.Activities) == 0 {
		return pd, []string{}, nil
	}
	scheduled := s.prefetcher.PrefetchAsync(ctx, pd.Summaries())
	return pd, scheduled, nil
}

// ParallelDiary fetches the parallel diary of diaryID.
func (s *Service) ParallelDiary(ctx context.Context, diaryID string) (*ParallelDiary, error) {
	if diaryID == "" {
		return nil, ErrInvalidInput
	}
	pd, err := s.backend.GetParallelDiary(ctx, diaryID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return pd, nil
}

// RecommendedActivities lists every recommended activity.
func (s *Service) RecommendedActivities(ctx context.Context) ([]RecommendedActivity, error) {
	activities, err := s.backend.RecommendedActivities(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing recommended activities: %w", err)
	}
	return activities, nil
}

// FindActivity implements activity.ActivityLookup.
func (s *Service) FindActivity(ctx context.Context, id string) (activity.Summary, error) {
	activities, err := s.RecommendedActivities(ctx)
	if err != nil {
		return activity.Summary{}, err
	}
	for _, a := range activities {
		if a.ID == id {
			return a.Summary(), nil
		}
	}
	return activity.Summary{}, fmt.Errorf("%w: %s", activity.ErrActivityNotFound, id)
}

// ToggleBucketList adds or removes an activity from the bucket list.
func (s *Service) ToggleBucketList(ctx context.Context, activityID string) error {
	if activityID == "" {
		return ErrInvalidInput
	}
	if err := s.backend.ToggleBucketList(ctx, activityID); err != nil {
		return fmt.Errorf("toggling bucket list: %w", err)
	}
	return nil
}

// KeywordStats returns keyword frequencies.
func (s *Service) KeywordStats(ctx context.Context) ([]KeywordStat, error) {
	return s.backend.KeywordStats(ctx)
}

// MonotonyStats returns the monotony score and trend.
func (s *Service) MonotonyStats(ctx context.Context) (*MonotonyStats, error) {
	return s.backend.MonotonyStats(ctx)
}

// GenerateDiary turns a chat transcript into diary text.
func (s *Service) GenerateDiary(ctx context.Context, messages []Message) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("%w: messages are required", ErrInvalidInput)
	}
	content, err := s.backend.GenerateDiary(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("generating diary: %w", err)
	}
	return content, nil
}

// Chat streams the assistant's reply to messages.
func (s *Service) Chat(ctx context.Context, messages []Message, onToken TokenFunc) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("%w: messages are required", ErrInvalidInput)
	}
	reply, err := s.backend.StreamChat(ctx, messages, onToken)
	if err != nil {
		return reply, fmt.Errorf("streaming chat: %w", err)
	}
	return reply, nil
}

func mapNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrDiaryNotFound, err)
	}
	return err
}
