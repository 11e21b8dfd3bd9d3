package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/dhabedank/prompt-builder/internal/core"
)

// Attribution headers OpenRouter expects from client applications.
const (
	refererHeader = "https://prompt-generator.app"
	titleHeader   = "Générateur de Prompt IA"
)

// OpenRouterCompleter talks to OpenRouter's OpenAI-compatible chat endpoint.
type OpenRouterCompleter struct {
	baseURL       string
	httpClient    *http.Client
	maxImageWidth int
}

// NewOpenRouterCompleter creates an OpenRouter transport.
func NewOpenRouterCompleter(config Config) *OpenRouterCompleter {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	base := config.HTTPClient
	if base == nil {
		base = http.DefaultClient
	}
	rt := base.Transport
	if rt == nil {
		rt = http.DefaultTransport
	}

	return &OpenRouterCompleter{
		baseURL: baseURL,
		httpClient: &http.Client{
			Transport: &headerTransport{
				base: rt,
				headers: map[string]string{
					"HTTP-Referer": refererHeader,
					"X-Title":      titleHeader,
				},
			},
			Timeout: base.Timeout,
		},
		maxImageWidth: config.MaxImageWidth,
	}
}

func (c *OpenRouterCompleter) Name() string {
	return ProviderOpenRouter
}

func (c *OpenRouterCompleter) Complete(ctx context.Context, cfg core.APIConfig, req Request) (string, error) {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = c.baseURL
	clientConfig.HTTPClient = c.httpClient
	client := openai.NewClientWithConfig(clientConfig)

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		msg, err := c.toOpenAI(m)
		if err != nil {
			return "", err
		}
		messages = append(messages, msg)
	}

	chatReq := openai.ChatCompletionRequest{
		Model:    cfg.Model,
		Messages: messages,
	}
	if req.JSONMode {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", openAITransportError(err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	return resp.Choices[0].Message.Content, nil
}

// toOpenAI maps a message, switching to multi-part content when an image
// is attached.
func (c *OpenRouterCompleter) toOpenAI(m Message) (openai.ChatCompletionMessage, error) {
	msg := openai.ChatCompletionMessage{Role: m.Role}
	if m.Image == nil {
		msg.Content = m.Text
		return msg, nil
	}

	url, err := m.Image.DataURL(c.maxImageWidth)
	if err != nil {
		return msg, err
	}
	// A blank caption is left out; the image part stands alone.
	if strings.TrimSpace(m.Text) != "" {
		msg.MultiContent = append(msg.MultiContent, openai.ChatMessagePart{Type: openai.ChatMessagePartTypeText, Text: m.Text})
	}
	msg.MultiContent = append(msg.MultiContent, openai.ChatMessagePart{
		Type: openai.ChatMessagePartTypeImageURL,
		ImageURL: &openai.ChatMessageImageURL{
			URL:    url,
			Detail: openai.ImageURLDetailAuto,
		},
	})
	return msg, nil
}

func openAITransportError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &TransportError{StatusCode: apiErr.HTTPStatusCode, Err: err}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &TransportError{StatusCode: reqErr.HTTPStatusCode, Err: err}
	}
	return &TransportError{Err: err}
}

// headerTransport adds fixed headers to every request.
type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	return t.base.RoundTrip(req)
}
