package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/paralleldiary/pardiary/internal/domain/diary"
)

// ListDiaries returns every diary.
func (c *Client) ListDiaries(ctx context.Context) ([]diary.Diary, error) {
	var out []diary.Diary
	if err := c.do(ctx, http.MethodGet, "/diaries", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetDiary returns one diary.
func (c *Client) GetDiary(ctx context.Context, id string) (*diary.Diary, error) {
	var out diary.Diary
	if err := c.do(ctx, http.MethodGet, "/diaries/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateDiary stores a new diary.
func (c *Client) CreateDiary(ctx context.Context, req diary.CreateRequest) (*diary.Diary, error) {
	var out diary.Diary
	if err := c.do(ctx, http.MethodPost, "/diaries", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteDiary removes a diary.
func (c *Client) DeleteDiary(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/diaries/"+url.PathEscape(id), nil, nil)
}

// GetParallelDiary returns the parallel diary generated for diaryID.
func (c *Client) GetParallelDiary(ctx context.Context, diaryID string) (*diary.ParallelDiary, error) {
	var out diary.ParallelDiary
	if err := c.do(ctx, http.MethodGet, "/diaries/"+url.PathEscape(diaryID)+"/parallel", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RecommendedActivities returns every recommended activity.
func (c *Client) RecommendedActivities(ctx context.Context) ([]diary.RecommendedActivity, error) {
	var out []diary.RecommendedActivity
	if err := c.do(ctx, http.MethodGet, "/activities/recommended", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ToggleBucketList flips the bucket-list flag of an activity.
func (c *Client) ToggleBucketList(ctx context.Context, activityID string) error {
	return c.do(ctx, http.MethodPatch, "/activities/"+url.PathEscape(activityID)+"/bucket", nil, nil)
}

// KeywordStats returns keyword frequencies.
func (c *Client) KeywordStats(ctx context.Context) ([]diary.KeywordStat, error) {
	var out []diary.KeywordStat
	if err := c.do(ctx, http.MethodGet, "/stats/keywords", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MonotonyStats returns the monotony score.
func (c *Client) MonotonyStats(ctx context.Context) (*diary.MonotonyStats, error) {
	var out diary.MonotonyStats
	if err := c.do(ctx, http.MethodGet, "/stats/monotony", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type generateDiaryRequest struct {
	Messages []diary.Message `json:"messages"`
}

type generateDiaryResponse struct {
	Content string `json:"content"`
}

// GenerateDiary turns a chat transcript into diary text.
func (c *Client) GenerateDiary(ctx context.Context, messages []diary.Message) (string, error) {
	var out generateDiaryResponse
	if err := c.do(ctx, http.MethodPost, "/diary/make-diary", generateDiaryRequest{Messages: messages}, &out); err != nil {
		return "", err
	}
	return out.Content, nil
}
