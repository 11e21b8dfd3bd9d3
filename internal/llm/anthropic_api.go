package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/dhabedank/prompt-builder/internal/core"
)

// AnthropicCompleter uses the Anthropic Messages API directly.
type AnthropicCompleter struct {
	baseURL       string
	httpClient    *http.Client
	maxTokens     int
	maxImageWidth int
}

// NewAnthropicCompleter creates an Anthropic API transport.
func NewAnthropicCompleter(config Config) *AnthropicCompleter {
	baseURL := config.BaseURL
	if baseURL == DefaultBaseURL {
		baseURL = ""
	}

	maxTokens := config.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}

	return &AnthropicCompleter{
		baseURL:       baseURL,
		httpClient:    config.HTTPClient,
		maxTokens:     maxTokens,
		maxImageWidth: config.MaxImageWidth,
	}
}

func (a *AnthropicCompleter) Name() string {
	return ProviderAnthropic
}

func (a *AnthropicCompleter) Complete(ctx context.Context, cfg core.APIConfig, req Request) (string, error) {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if a.baseURL != "" {
		opts = append(opts, option.WithBaseURL(a.baseURL))
	}
	if a.httpClient != nil {
		opts = append(opts, option.WithHTTPClient(a.httpClient))
	}
	client := anthropic.NewClient(opts...)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(cfg.Model),
		MaxTokens: int64(a.maxTokens),
	}
	for _, m := range req.Messages {
		switch m.Role {
		case core.RoleSystem:
			// System turns are folded into the top-level system prompt.
			params.System = append(params.System, anthropic.TextBlockParam{Text: m.Text})
		case core.RoleAssistant:
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Text)))
		default:
			var blocks []anthropic.ContentBlockParamUnion
			if m.Image == nil || strings.TrimSpace(m.Text) != "" {
				blocks = append(blocks, anthropic.NewTextBlock(m.Text))
			}
			if m.Image != nil {
				mime, data, err := m.Image.Encoded(a.maxImageWidth)
				if err != nil {
					return "", err
				}
				blocks = append(blocks, anthropic.NewImageBlockBase64(mime, data))
			}
			params.Messages = append(params.Messages, anthropic.NewUserMessage(blocks...))
		}
	}

	resp, err := client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", &TransportError{StatusCode: apiErr.StatusCode, Err: err}
		}
		return "", &TransportError{Err: err}
	}

	// Extract text from response
	var output strings.Builder
	found := false
	for _, block := range resp.Content {
		if block.Type == "text" {
			output.WriteString(block.Text)
			found = true
		}
	}
	if !found {
		return "", ErrNoChoices
	}
	return output.String(), nil
}
