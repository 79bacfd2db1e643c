package backend

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/paralleldiary/pardiary/internal/domain/diary"
)

const doneSentinel = "[DONE]"

type chatRequest struct {
	Messages []diary.Message `json:"messages"`
}

type chatFrame struct {
	Content string `json:"content"`
	Error   string `json:"error,omitempty"`
}

// StreamChat posts messages to the chat endpoint and reads the SSE reply.
// onToken is called once per data frame with the token and the running
// buffer. The full reply is returned even when the stream breaks midway.
func (c *Client) StreamChat(ctx context.Context, messages []diary.Message, onToken diary.TokenFunc) (string, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/chat/stream", chatRequest{Messages: messages})
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/event-stream")

	// Streams can outlive the default client timeout; ctx bounds them.
	resp, err := (&http.Client{Transport: c.httpClient.Transport}).Do(req)
	if err != nil {
		return "", fmt.Errorf("POST /chat/stream: %w", err)
	}
	defer resp.Body.Close()

	if err := checkResponse(resp); err != nil {
		return "", err
	}

	var buffer strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		data, ok := strings.CutPrefix(scanner.Text(), "data:")
		if !ok {
			continue
		}
		// One space after the colon belongs to the framing; the rest is token text.
		data = strings.TrimPrefix(data, " ")
		if data == "" {
			continue
		}
		if strings.TrimSpace(data) == doneSentinel {
			break
		}

		token := data
		var frame chatFrame
		if json.Unmarshal([]byte(data), &frame) == nil {
			if frame.Error != "" {
				return buffer.String(), &APIError{StatusCode: resp.StatusCode, Message: frame.Error}
			}
			token = frame.Content
		}
		buffer.WriteString(token)
		if onToken != nil {
			onToken(token, buffer.String())
		}
	}
	if err := scanner.Err(); err != nil {
		return buffer.String(), fmt.Errorf("read chat stream: %w", err)
	}
	return buffer.String(), nil
}
