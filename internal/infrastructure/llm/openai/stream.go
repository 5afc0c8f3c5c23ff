package openai

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/kirillkom/document-classifier/internal/core/domain"
)

const (
	sseDataPrefix = "data:"
	sseDone       = "[DONE]"
)

var errStreamIncomplete = errors.New("stream ended before [DONE]")

type streamRequest struct {
	Model               string                 `json:"model"`
	Messages            []domain.PromptMessage `json:"messages"`
	Stream              bool                   `json:"stream"`
	StreamOptions       streamOptions          `json:"stream_options"`
	MaxCompletionTokens int64                  `json:"max_completion_tokens"`
	Temperature         float64                `json:"temperature"`
}

type streamOptions struct {
	IncludeUsage bool `json:"include_usage"`
}

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// completeStream issues the same completion as a server-sent event stream
// under the fallback credential and concatenates every content delta.
func (c *Client) completeStream(ctx context.Context, messages []domain.PromptMessage) (string, error) {
	payload := streamRequest{
		Model:               c.cfg.Model,
		Messages:            messages,
		Stream:              true,
		StreamOptions:       streamOptions{IncludeUsage: true},
		MaxCompletionTokens: c.cfg.MaxTokens,
		Temperature:         c.cfg.Temperature,
	}

	body, err := c.postStream(ctx, "/chat/completions", payload, "chat stream")
	if err != nil {
		return "", err
	}
	defer body.Close()

	return readDeltas(body)
}

func readDeltas(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var out strings.Builder
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, sseDataPrefix) {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, sseDataPrefix))
		if data == sseDone {
			return out.String(), nil
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			continue
		}
		for _, choice := range chunk.Choices {
			out.WriteString(choice.Delta.Content)
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read chat stream: %w", err)
	}
	return "", errStreamIncomplete
}
