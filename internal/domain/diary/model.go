package diary

import (
	"time"

	"github.com/paralleldiary/pardiary/internal/domain/activity"
)

// Diary is an entry written by the user.
type Diary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title,omitempty"`
	Content   string    `json:"content"`
	Date      string    `json:"date,omitempty"`
	Keywords  []string  `json:"keywords,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateRequest is the payload for a new diary entry.
type CreateRequest struct {
	Title   string `json:"title,omitempty"`
	Content string `json:"content"`
	Date    string `json:"date,omitempty"`
}

// RecommendedActivity is an activity suggested by a parallel diary.
type RecommendedActivity struct {
	ID      string `json:"id"`
	Emoji   string `json:"emoji"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Bucket  bool   `json:"bucket"`
}

// Summary returns the generation input for the activity.
func (a RecommendedActivity) Summary() activity.Summary {
	return activity.Summary{
		ID:          a.ID,
		Emoji:       a.Emoji,
		Title:       a.Title,
		Description: a.Content,
	}
}

// ParallelDiary is the alternate narrative generated from a diary.
type ParallelDiary struct {
	ID         string                `json:"id"`
	DiaryID    string                `json:"diaryId"`
	Title      string                `json:"title,omitempty"`
	Content    string                `json:"content"`
	Activities []RecommendedActivity `json:"activities"`
	CreatedAt  time.Time             `json:"createdAt"`
}

// Summaries returns the generation inputs for every recommended activity.
func (p ParallelDiary) Summaries() []activity.Summary {
	out := make([]activity.Summary, 0, len(p.Activities))
	for _, a := range p.Activities {
		out = append(out, a.Summary())
	}
	return out
}

// KeywordStat counts how often a keyword appears across diaries.
type KeywordStat struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

// MonotonyPoint is one day on the monotony trend.
type MonotonyPoint struct {
	Date  string  `json:"date"`
	Score float64 `json:"score"`
}

// MonotonyStats describes how repetitive recent days have been.
type MonotonyStats struct {
	Score     float64         `json:"score"`
	DailyType string          `json:"dailyType,omitempty"`
	Trend     []MonotonyPoint `json:"trend,omitempty"`
}

// Role is the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of the diary-writing chat.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// TokenFunc receives each streamed chat token and the text so far.
type TokenFunc func(token, buffer string)
