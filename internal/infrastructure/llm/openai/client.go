package openai

import (
	"context"
	"net/http"
	"strings"
	"time"

	sdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/kirillkom/document-classifier/internal/core/domain"
)

const (
	DefaultBaseURL     = "https://api.openai.com/v1"
	DefaultModel       = "gpt-4o-mini"
	DefaultMaxTokens   = 10
	DefaultTemperature = 0.5
)

type Config struct {
	APIKey       string
	BaseURL      string
	Model        string
	MaxTokens    int64
	Temperature  float64
	Timeout      time.Duration
	Organization string
	Project      string
	// FallbackAPIKey authenticates the streaming fallback. Empty means APIKey.
	FallbackAPIKey string
}

func (c Config) withDefaults() Config {
	out := c
	out.BaseURL = strings.TrimRight(strings.TrimSpace(out.BaseURL), "/")
	if out.BaseURL == "" {
		out.BaseURL = DefaultBaseURL
	}
	if out.Model == "" {
		out.Model = DefaultModel
	}
	if out.MaxTokens <= 0 {
		out.MaxTokens = DefaultMaxTokens
	}
	if out.Timeout <= 0 {
		out.Timeout = 60 * time.Second
	}
	if out.FallbackAPIKey == "" {
		out.FallbackAPIKey = out.APIKey
	}
	return out
}

// Client talks to an OpenAI-compatible chat completions API, through the
// official SDK for regular calls and raw HTTP for streaming.
type Client struct {
	cfg        Config
	sdk        sdk.Client
	httpClient *http.Client
}

func New(cfg Config) *Client {
	cfg = cfg.withDefaults()
	httpClient := &http.Client{Timeout: cfg.Timeout}
	return &Client{
		cfg: cfg,
		sdk: sdk.NewClient(
			option.WithAPIKey(cfg.APIKey),
			option.WithBaseURL(cfg.BaseURL+"/"),
			option.WithHTTPClient(httpClient),
			option.WithMaxRetries(0),
		),
		httpClient: httpClient,
	}
}

func (c *Client) Model() string {
	return c.cfg.Model
}

// complete issues a single non-streaming chat completion and returns the
// raw content of the first choice.
func (c *Client) complete(ctx context.Context, messages []domain.PromptMessage) (string, error) {
	completion, err := c.sdk.Chat.Completions.New(ctx, sdk.ChatCompletionNewParams{
		Model:       sdk.ChatModel(c.cfg.Model),
		Messages:    toSDKMessages(messages),
		MaxTokens:   sdk.Int(c.cfg.MaxTokens),
		Temperature: sdk.Float(c.cfg.Temperature),
	})
	if err != nil {
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", nil
	}
	return completion.Choices[0].Message.Content, nil
}

func toSDKMessages(messages []domain.PromptMessage) []sdk.ChatCompletionMessageParamUnion {
	out := make([]sdk.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case domain.RoleSystem:
			out = append(out, sdk.SystemMessage(m.Content))
		default:
			out = append(out, sdk.UserMessage(m.Content))
		}
	}
	return out
}
