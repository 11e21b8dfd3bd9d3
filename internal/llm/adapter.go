package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/dhabedank/prompt-builder/internal/core"
)

// Provider names accepted by NewCompleter.
const (
	ProviderOpenRouter = "openrouter"
	ProviderAnthropic  = "anthropic"
)

// DefaultBaseURL is the OpenRouter API root.
const DefaultBaseURL = "https://openrouter.ai/api/v1"

// Completer is the interface all transports must implement.
type Completer interface {
	// Name returns the transport identifier for logging.
	Name() string

	// Complete sends one chat request and returns the text of the first
	// completion choice.
	Complete(ctx context.Context, cfg core.APIConfig, req Request) (string, error)
}

// Message is one chat message as sent on the wire.
type Message struct {
	Role  string
	Text  string
	Image *core.Image // Sent after the text part when set
}

// Request is a provider-neutral chat completion request.
type Request struct {
	Messages []Message

	// JSONMode asks the provider to constrain the reply to a JSON object.
	JSONMode bool
}

// Config holds configuration for transports.
type Config struct {
	// Provider selects the transport (openrouter or anthropic).
	Provider string

	// BaseURL overrides the provider's API root.
	BaseURL string

	// MaxTokens limits response length (Anthropic requires it).
	MaxTokens int

	// MaxImageWidth downscales wider images before upload. 0 keeps them as is.
	MaxImageWidth int

	// HTTPClient is used for every request. nil means http.DefaultClient.
	HTTPClient *http.Client
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider:      ProviderOpenRouter,
		BaseURL:       DefaultBaseURL,
		MaxTokens:     4096,
		MaxImageWidth: 1024,
	}
}

// NewCompleter builds the transport named by config.Provider.
func NewCompleter(config Config) (Completer, error) {
	switch strings.ToLower(config.Provider) {
	case "", ProviderOpenRouter:
		return NewOpenRouterCompleter(config), nil
	case ProviderAnthropic:
		return NewAnthropicCompleter(config), nil
	default:
		return nil, fmt.Errorf("unknown provider %q (want %s or %s)", config.Provider, ProviderOpenRouter, ProviderAnthropic)
	}
}
