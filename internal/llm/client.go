package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/dhabedank/prompt-builder/internal/core"
)

// Client runs the prompt-building operations against a Completer.
// Every operation sends exactly one request and never retries.
type Client struct {
	completer Completer
	limiter   *rate.Limiter
	logger    *slog.Logger
	observer  Observer
}

// CallStats describes one request, for progress display.
type CallStats struct {
	Op          string
	Model       string
	InputChars  int
	OutputChars int
	Duration    time.Duration
	Err         error
}

// Observer is notified around every request.
type Observer interface {
	CallStarted(stats CallStats)
	CallFinished(stats CallStats)
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithLimiter delays each request until the limiter allows it.
func WithLimiter(limiter *rate.Limiter) Option {
	return func(c *Client) {
		c.limiter = limiter
	}
}

// WithObserver reports each request to o.
func WithObserver(o Observer) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// NewClient creates a client on top of a transport.
func NewClient(completer Completer, opts ...Option) *Client {
	c := &Client{
		completer: completer,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GenerateInitial turns a text idea, an image, or both into a full prompt.
func (c *Client) GenerateInitial(ctx context.Context, cfg core.APIConfig, userText string, image *core.Image) (*core.Prompt, error) {
	const op = "generate initial prompt"
	if strings.TrimSpace(userText) == "" && image == nil {
		return nil, ErrEmptyInput
	}

	text, err := c.send(ctx, op, cfg, jsonRequest(cfg,
		Message{Role: core.RoleSystem, Text: core.InitialSystemPrompt},
		Message{Role: core.RoleUser, Text: core.BuildInitialPrompt(userText, image != nil), Image: image},
	))
	if err != nil {
		return nil, err
	}

	prompt, err := core.ParseOpen(text, len(core.DefaultFields))
	if err != nil {
		return nil, c.malformed(op, text, err)
	}
	return prompt, nil
}

// GetAlternatives asks for fresh alternatives to one field value.
func (c *Client) GetAlternatives(ctx context.Context, cfg core.APIConfig, category, currentValue string) ([]string, error) {
	const op = "get alternatives"
	text, err := c.send(ctx, op, cfg, jsonRequest(cfg,
		Message{Role: core.RoleSystem, Text: core.AlternativesSystemPrompt},
		Message{Role: core.RoleUser, Text: core.BuildAlternativesPrompt(category, currentValue)},
	))
	if err != nil {
		return nil, err
	}
	return c.parseAlternatives(op, text)
}

// GetCustomAlternatives asks for alternatives steered by a free-form query.
// The existing list is only a hint to avoid repeats.
func (c *Client) GetCustomAlternatives(ctx context.Context, cfg core.APIConfig, category, userQuery string, existing []string) ([]string, error) {
	const op = "get custom alternatives"
	text, err := c.send(ctx, op, cfg, jsonRequest(cfg,
		Message{Role: core.RoleSystem, Text: core.CustomAlternativesSystemPrompt},
		Message{Role: core.RoleUser, Text: core.BuildCustomAlternativesPrompt(category, userQuery, existing)},
	))
	if err != nil {
		return nil, err
	}
	return c.parseAlternatives(op, text)
}

// ImproveFullPrompt rewrites every field. The result has exactly the keys
// of current, in the same order.
func (c *Client) ImproveFullPrompt(ctx context.Context, cfg core.APIConfig, current *core.Prompt) (*core.Prompt, error) {
	const op = "improve prompt"
	text, err := c.send(ctx, op, cfg, jsonRequest(cfg,
		Message{Role: core.RoleSystem, Text: core.ImproveSystemPrompt},
		Message{Role: core.RoleUser, Text: core.BuildImprovePrompt(current)},
	))
	if err != nil {
		return nil, err
	}
	return c.parsePreserved(op, text, current)
}

// EditFullPrompt applies a user instruction. The result has exactly the keys
// of current, in the same order.
func (c *Client) EditFullPrompt(ctx context.Context, cfg core.APIConfig, current *core.Prompt, instruction string) (*core.Prompt, error) {
	const op = "edit prompt"
	text, err := c.send(ctx, op, cfg, jsonRequest(cfg,
		Message{Role: core.RoleSystem, Text: core.EditSystemPrompt},
		Message{Role: core.RoleUser, Text: core.BuildEditPrompt(current, instruction)},
	))
	if err != nil {
		return nil, err
	}
	return c.parsePreserved(op, text, current)
}

// TranslateToEnglish translates free text. The reply is returned trimmed.
func (c *Client) TranslateToEnglish(ctx context.Context, cfg core.APIConfig, text string) (string, error) {
	reply, err := c.send(ctx, "translate", cfg, Request{Messages: []Message{
		{Role: core.RoleSystem, Text: core.TranslateSystemPrompt},
		{Role: core.RoleUser, Text: text},
	}})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

// GenerateNewField creates a segment for a new category, given the current
// prompt as context. The caller decides where to insert it.
func (c *Client) GenerateNewField(ctx context.Context, cfg core.APIConfig, current *core.Prompt, name string) (core.Segment, error) {
	const op = "generate new field"
	text, err := c.send(ctx, op, cfg, jsonRequest(cfg,
		Message{Role: core.RoleSystem, Text: core.NewFieldSystemPrompt},
		Message{Role: core.RoleUser, Text: core.BuildNewFieldPrompt(current, name)},
	))
	if err != nil {
		return core.Segment{}, err
	}

	seg, err := core.ParseSegment(text)
	if err != nil {
		return core.Segment{}, c.malformed(op, text, err)
	}
	return seg, nil
}

// ContinueChat sends the conversation and classifies the reply. A reply that
// parses as a prompt becomes a PromptReplacement; anything else is a TextReply.
func (c *Client) ContinueChat(ctx context.Context, cfg core.APIConfig, history []core.ChatTurn, systemInstruction string) (ChatReply, error) {
	messages := make([]Message, 0, len(history)+1)
	messages = append(messages, Message{Role: core.RoleSystem, Text: systemInstruction})
	for _, turn := range history {
		messages = append(messages, chatMessage(turn))
	}

	text, err := c.send(ctx, "continue chat", cfg, Request{Messages: messages})
	if err != nil {
		return nil, err
	}

	if prompt, err := core.ParseOpen(text, 1); err == nil {
		return PromptReplacement{Prompt: prompt}, nil
	}
	return TextReply{Text: strings.TrimSpace(text)}, nil
}

// send runs one request through the limiter and the transport.
func (c *Client) send(ctx context.Context, op string, cfg core.APIConfig, req Request) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
	}

	c.logger.Debug("llm request started",
		"op", op,
		"provider", c.completer.Name(),
		"model", cfg.Model,
		"messages", len(req.Messages),
		"json_mode", req.JSONMode,
	)

	stats := CallStats{Op: op, Model: cfg.Model}
	for _, m := range req.Messages {
		stats.InputChars += len(m.Text)
	}
	if c.observer != nil {
		c.observer.CallStarted(stats)
	}

	start := time.Now()
	text, err := c.completer.Complete(ctx, cfg, req)
	stats.Duration = time.Since(start)
	stats.OutputChars = len(text)
	stats.Err = err
	if c.observer != nil {
		c.observer.CallFinished(stats)
	}
	if err != nil {
		c.logger.Error("llm request failed",
			"op", op,
			"model", cfg.Model,
			"duration", stats.Duration,
			"error", err,
		)
		if errors.Is(err, ErrNoChoices) {
			return "", fmt.Errorf("%s: %w: %w", op, ErrMalformedReply, err)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	c.logger.Info("llm response received",
		"op", op,
		"model", cfg.Model,
		"bytes", len(text),
		"duration", stats.Duration,
	)
	return text, nil
}

func (c *Client) parseAlternatives(op, text string) ([]string, error) {
	alts, err := core.ParseAlternatives(text)
	if err != nil {
		return nil, c.malformed(op, text, err)
	}
	return alts, nil
}

func (c *Client) parsePreserved(op, text string, ref *core.Prompt) (*core.Prompt, error) {
	prompt, err := core.ParsePreserved(text, ref)
	if err != nil {
		return nil, c.malformed(op, text, err)
	}
	return prompt, nil
}

func (c *Client) malformed(op, text string, cause error) error {
	c.logger.Warn("malformed model reply", "op", op, "bytes", len(text), "error", cause)
	return malformed(op, cause)
}

// jsonRequest builds a request that asks for a JSON object reply. The free
// model rejects the response_format hint, so it is left off there.
func jsonRequest(cfg core.APIConfig, messages ...Message) Request {
	return Request{
		Messages: messages,
		JSONMode: cfg.Model != core.FreeModelID,
	}
}
