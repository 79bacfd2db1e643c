// Package openai generates activity details with the OpenAI chat
// completions API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/paralleldiary/pardiary/internal/domain/activity"
)

const (
	defaultBaseURL     = "https://api.openai.com/v1"
	defaultModel       = "gpt-4o-mini"
	defaultTemperature = 0.2
	defaultMaxTokens   = 800
	defaultTimeout     = 45 * time.Second
)

// ErrMissingAPIKey is returned when no API key is configured.
var ErrMissingAPIKey = errors.New("openai api key is not configured")

// Config configures the client.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// Client implements activity.Generator.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
	now        func() time.Time
}

// NewClient creates a client. It fails when the API key is empty.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = defaultTemperature
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
		now:        time.Now,
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// generatedContent is the JSON object the model is asked to produce.
type generatedContent struct {
	DetailedDescription string                  `json:"detailedDescription"`
	Benefits            []string                `json:"benefits"`
	Tips                []string                `json:"tips"`
	EstimatedTime       string                  `json:"estimatedTime"`
	Difficulty          string                  `json:"difficulty"`
	Tags                []string                `json:"tags"`
	PlaceSearchKeywords []activity.PlaceKeyword `json:"placeSearchKeywords"`
}

// Generate asks the model for a detail of summary.
func (c *Client) Generate(ctx context.Context, summary activity.Summary) (activity.Detail, error) {
	c.logger.Debug("generating activity detail", "id", summary.ID, "title", summary.Title)

	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildPrompt(summary)},
		},
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	})
	if err != nil {
		return activity.Detail{}, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return activity.Detail{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return activity.Detail{}, fmt.Errorf("send request to OpenAI API: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return activity.Detail{}, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp errorResponse
		if jsonErr := json.Unmarshal(data, &errResp); jsonErr == nil && errResp.Error.Message != "" {
			return activity.Detail{}, fmt.Errorf("OpenAI API error (status %d): %s", resp.StatusCode, errResp.Error.Message)
		}
		return activity.Detail{}, fmt.Errorf("OpenAI API returned status %d", resp.StatusCode)
	}

	var chat chatResponse
	if err := json.Unmarshal(data, &chat); err != nil {
		return activity.Detail{}, fmt.Errorf("parse OpenAI API response: %w", err)
	}
	if len(chat.Choices) == 0 || strings.TrimSpace(chat.Choices[0].Message.Content) == "" {
		return activity.Detail{}, fmt.Errorf("OpenAI API returned empty content")
	}

	content, err := parseContent(chat.Choices[0].Message.Content)
	if err != nil {
		return activity.Detail{}, err
	}
	difficulty, err := activity.ParseDifficulty(content.Difficulty)
	if err != nil {
		return activity.Detail{}, err
	}

	keywords := content.PlaceSearchKeywords
	if keywords == nil {
		keywords = []activity.PlaceKeyword{}
	}
	return activity.Detail{
		ID:                  summary.ID,
		Emoji:               summary.Emoji,
		Title:               summary.Title,
		Description:         summary.Description,
		DetailedDescription: content.DetailedDescription,
		Benefits:            content.Benefits,
		Tips:                content.Tips,
		EstimatedTime:       content.EstimatedTime,
		Difficulty:          difficulty,
		Tags:                content.Tags,
		PlaceSearchKeywords: keywords,
		GeneratedAt:         c.now().UTC(),
	}, nil
}

// parseContent decodes the model output and checks the required fields.
func parseContent(raw string) (generatedContent, error) {
	raw = strings.TrimSpace(raw)
	// Models occasionally wrap the object in a markdown fence.
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	var content generatedContent
	if err := json.Unmarshal([]byte(raw), &content); err != nil {
		return generatedContent{}, fmt.Errorf("%w: parse content: %v", activity.ErrInvalidDetail, err)
	}

	var missing []string
	if content.DetailedDescription == "" {
		missing = append(missing, "detailedDescription")
	}
	if content.Benefits == nil {
		missing = append(missing, "benefits")
	}
	if content.Tips == nil {
		missing = append(missing, "tips")
	}
	if content.EstimatedTime == "" {
		missing = append(missing, "estimatedTime")
	}
	if content.Difficulty == "" {
		missing = append(missing, "difficulty")
	}
	if content.Tags == nil {
		missing = append(missing, "tags")
	}
	if len(missing) > 0 {
		return generatedContent{}, fmt.Errorf("%w: missing %s", activity.ErrInvalidDetail, strings.Join(missing, ", "))
	}
	return content, nil
}
