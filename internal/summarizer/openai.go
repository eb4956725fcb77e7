package summarizer

import (
	"context"
	"net/http"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	DefaultModel   = "gemini-3-flash-preview"
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

	// Low temperature keeps the notes close to what was said on the call.
	temperature = 0.2
)

var _ Summarizer = (*OpenAISummarizer)(nil)

// Config binds the summarizer to one credential and endpoint.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	// HTTPClient overrides the transport, mostly for tests.
	HTTPClient *http.Client
}

// OpenAISummarizer calls an OpenAI-compatible Chat Completions endpoint.
type OpenAISummarizer struct {
	client openai.Client
	model  string
	hasKey bool
}

// NewOpenAISummarizer builds a summarizer from cfg. An empty API key is
// accepted: every Summarize call then fails with ErrConfiguration without
// touching the network.
func NewOpenAISummarizer(cfg Config) *OpenAISummarizer {
	apiKey := strings.TrimSpace(cfg.APIKey)

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	s := &OpenAISummarizer{
		model:  model,
		hasKey: apiKey != "",
	}
	if !s.hasKey {
		return s
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithMaxRetries(0),
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	s.client = openai.NewClient(opts...)

	return s
}

// Summarize sends the transcript as the only user message under the fixed
// system instruction.
func (s *OpenAISummarizer) Summarize(ctx context.Context, transcript string) (string, error) {
	if !s.hasKey {
		return "", ErrConfiguration
	}

	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(s.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(SystemInstruction),
			openai.UserMessage(transcript),
		},
		Temperature: openai.Float(temperature),
	})
	if err != nil {
		return "", &UpstreamError{Err: err}
	}

	if len(resp.Choices) == 0 {
		return EmptySummary, nil
	}

	// The reply is returned verbatim: leading indentation is markdown syntax.
	summary := resp.Choices[0].Message.Content
	if summary == "" {
		return EmptySummary, nil
	}

	return summary, nil
}
