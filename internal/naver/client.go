// Package naver resolves place-search keywords with the Naver local search
// API.
package naver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/paralleldiary/pardiary/internal/domain/activity"
)

const (
	defaultBaseURL = "https://openapi.naver.com"
	defaultTimeout = 10 * time.Second
	maxDisplay     = 5
)

// Config configures the client.
type Config struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	Timeout      time.Duration
}

// Client implements activity.PlaceSearcher.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a client.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
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
	}
}

type localItem struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Telephone   string `json:"telephone"`
	Address     string `json:"address"`
	RoadAddress string `json:"roadAddress"`
	MapX        string `json:"mapx"`
	MapY        string `json:"mapy"`
}

type localResponse struct {
	Total   int         `json:"total"`
	Start   int         `json:"start"`
	Display int         `json:"display"`
	Items   []localItem `json:"items"`
}

var tagReplacer = strings.NewReplacer("<b>", "", "</b>", "")

// Search returns up to display places (at most 5) for query. Any failure is
// logged and yields an empty result, since places only decorate a detail.
func (c *Client) Search(ctx context.Context, query string, display int) ([]activity.Place, error) {
	places, err := c.search(ctx, query, display)
	if err != nil {
		c.logger.Warn("naver local search failed", "query", query, "error", err)
		return []activity.Place{}, nil
	}
	return places, nil
}

func (c *Client) search(ctx context.Context, query string, display int) ([]activity.Place, error) {
	if display <= 0 {
		display = 1
	}
	display = min(display, maxDisplay)

	params := url.Values{}
	params.Set("query", query)
	params.Set("display", strconv.Itoa(display))
	params.Set("start", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/v1/search/local.json?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-Naver-Client-Id", c.cfg.ClientID)
	req.Header.Set("X-Naver-Client-Secret", c.cfg.ClientSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("naver API returned status %d", resp.StatusCode)
	}

	var body localResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	places := make([]activity.Place, 0, len(body.Items))
	for _, item := range body.Items {
		places = append(places, activity.Place{
			Name:        tagReplacer.Replace(item.Title),
			Address:     item.Address,
			RoadAddress: item.RoadAddress,
			Category:    item.Category,
			Description: item.Description,
			Link:        item.Link,
			Telephone:   item.Telephone,
			MapX:        item.MapX,
			MapY:        item.MapY,
		})
	}
	return places, nil
}
