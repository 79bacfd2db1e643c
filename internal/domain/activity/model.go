package activity

import (
	"fmt"
	"strings"
	"time"
)

// Difficulty is the effort level of an activity.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty accepts the canonical values as well as the Korean labels
// the generation prompt asks for.
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "easy", "쉬움":
		return DifficultyEasy, nil
	case "medium", "보통":
		return DifficultyMedium, nil
	case "hard", "어려움":
		return DifficultyHard, nil
	default:
		return "", fmt.Errorf("%w: difficulty %q", ErrInvalidDetail, s)
	}
}

// Summary is the short form of a recommended activity, as listed on a
// parallel diary. It is the input to generation.
type Summary struct {
	ID          string `json:"id"`
	Emoji       string `json:"emoji"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// PlaceKeyword is a place-search keyword with the reason it was suggested.
type PlaceKeyword struct {
	Keyword string `json:"keyword"`
	Reason  string `json:"reason"`
}

// Place is a resolved place-search result.
type Place struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	RoadAddress string `json:"roadAddress,omitempty"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Link        string `json:"link,omitempty"`
	Telephone   string `json:"telephone,omitempty"`
	MapX        string `json:"mapx,omitempty"`
	MapY        string `json:"mapy,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

// Detail is the AI-generated description of an activity. A Detail is never
// modified in place; enrichment produces a copy.
type Detail struct {
	ID                  string         `json:"id"`
	Emoji               string         `json:"emoji"`
	Title               string         `json:"title"`
	Description         string         `json:"description"`
	DetailedDescription string         `json:"detailedDescription"`
	Benefits            []string       `json:"benefits"`
	Tips                []string       `json:"tips"`
	EstimatedTime       string         `json:"estimatedTime"`
	Difficulty          Difficulty     `json:"difficulty"`
	Tags                []string       `json:"tags"`
	PlaceSearchKeywords []PlaceKeyword `json:"placeSearchKeywords,omitempty"`
	RecommendedPlaces   []Place        `json:"recommendedPlaces,omitempty"`
	GeneratedAt         time.Time      `json:"generatedAt"`
}

// NeedsPlaces reports whether the detail has keywords that were never
// resolved into places.
func (d Detail) NeedsPlaces() bool {
	return len(d.PlaceSearchKeywords) > 0 && len(d.RecommendedPlaces) == 0
}

// WithPlaces returns a copy of d carrying the given places.
func (d Detail) WithPlaces(places []Place) Detail {
	out := d
	out.Benefits = append([]string(nil), d.Benefits...)
	out.Tips = append([]string(nil), d.Tips...)
	out.Tags = append([]string(nil), d.Tags...)
	out.PlaceSearchKeywords = append([]PlaceKeyword(nil), d.PlaceSearchKeywords...)
	out.RecommendedPlaces = append([]Place(nil), places...)
	return out
}

// EventStatus is the status recorded in the generation event log.
type EventStatus string

const (
	EventLoading  EventStatus = "loading"
	EventComplete EventStatus = "complete"
	EventError    EventStatus = "error"
)

// Event is one entry in the generation event log.
type Event struct {
	ID         int64       `json:"id"`
	AttemptID  string      `json:"attempt_id"`
	ActivityID string      `json:"activity_id"`
	Status     EventStatus `json:"status"`
	Message    string      `json:"message,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}
