package tui

import (
	"fmt"
	"strconv"

	"github.com/dhabedank/prompt-builder/internal/core"
	"github.com/dhabedank/prompt-builder/internal/llm"
)

// Rate is a price per 1M tokens in USD.
type Rate struct {
	InputPer1M  float64
	OutputPer1M float64
}

// FallbackPricing is used when the live catalog is unavailable.
// Prices are OpenRouter list prices per 1M tokens.
var FallbackPricing = map[string]Rate{
	core.PremiumModelID: {InputPer1M: 0.40, OutputPer1M: 1.60},
	core.FreeModelID:    {InputPer1M: 0, OutputPer1M: 0},

	"openai/gpt-4o":                            {InputPer1M: 2.5, OutputPer1M: 10.0},
	"openai/gpt-4o-mini":                       {InputPer1M: 0.15, OutputPer1M: 0.60},
	"anthropic/claude-3.5-haiku":               {InputPer1M: 0.80, OutputPer1M: 4.0},
	"anthropic/claude-sonnet-4":                {InputPer1M: 3.0, OutputPer1M: 15.0},
	"google/gemini-2.5-flash":                  {InputPer1M: 0.30, OutputPer1M: 2.50},
	"mistralai/mistral-small-3.2-24b-instruct": {InputPer1M: 0.05, OutputPer1M: 0.10},

	// Fallback for unknown models (use conservative estimate)
	"default": {InputPer1M: 5.0, OutputPer1M: 15.0},
}

// RateFor returns the price of model, taken from the catalog when it lists
// parsable prices, else from FallbackPricing.
func RateFor(model string, catalog []llm.ModelInfo) Rate {
	for _, m := range catalog {
		if m.ID != model {
			continue
		}
		in, errIn := strconv.ParseFloat(m.Pricing.Prompt, 64)
		outStr := m.Pricing.Output
		if outStr == "" {
			outStr = m.Pricing.Completion
		}
		out, errOut := strconv.ParseFloat(outStr, 64)
		if errIn == nil && errOut == nil {
			return Rate{InputPer1M: in * 1_000_000, OutputPer1M: out * 1_000_000}
		}
		break
	}

	if rate, ok := FallbackPricing[model]; ok {
		return rate
	}
	return FallbackPricing["default"]
}

// EstimateTokens estimates token count from character count.
// Uses the approximation that 1 token ≈ 4 characters.
func EstimateTokens(chars int) int {
	if chars <= 0 {
		return 0
	}
	return chars / 4
}

// EstimateCost calculates the cost of a call at the given rate, in USD.
func EstimateCost(rate Rate, inputTokens, outputTokens int) float64 {
	inputCost := float64(inputTokens) * rate.InputPer1M / 1_000_000
	outputCost := float64(outputTokens) * rate.OutputPer1M / 1_000_000
	return inputCost + outputCost
}

// FormatCost formats a cost in USD for display.
func FormatCost(cost float64) string {
	switch {
	case cost == 0:
		return "free"
	case cost < 0.001:
		return fmt.Sprintf("$%.4f", cost)
	case cost < 0.01:
		return fmt.Sprintf("$%.3f", cost)
	default:
		return fmt.Sprintf("$%.2f", cost)
	}
}

// FormatRate formats a per-1M-token price pair, as shown in model lists.
func FormatRate(rate Rate) string {
	if rate.InputPer1M == 0 && rate.OutputPer1M == 0 {
		return "free"
	}
	return fmt.Sprintf("$%.2f/$%.2f per MTok", rate.InputPer1M, rate.OutputPer1M)
}

// FormatTokens formats a token count for display.
// Uses k suffix for thousands.
func FormatTokens(tokens int) string {
	if tokens < 1000 {
		return fmt.Sprintf("%d", tokens)
	}
	if tokens < 10000 {
		return fmt.Sprintf("%.1fk", float64(tokens)/1000)
	}
	return fmt.Sprintf("%dk", tokens/1000)
}
