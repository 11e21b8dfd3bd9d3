package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/dhabedank/prompt-builder/internal/core"
)

// Pricing is the per-token (or per-unit) price list of a model, as decimal
// strings in USD.
type Pricing struct {
	Prompt     string `json:"prompt"`
	Completion string `json:"completion"`
	Output     string `json:"output,omitempty"`
	Request    string `json:"request,omitempty"`
	Image      string `json:"image,omitempty"`
}

// ModelInfo describes a model listed by the provider.
type ModelInfo struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Pricing       Pricing `json:"pricing"`
	ContextLength int     `json:"context_length"`
}

// TotalPrice returns prompt + output price per token. Output falls back to
// completion when the provider omits it. ok is false when a price is missing
// or unparsable.
func (m ModelInfo) TotalPrice() (float64, bool) {
	prompt, err := strconv.ParseFloat(strings.TrimSpace(m.Pricing.Prompt), 64)
	if err != nil {
		return 0, false
	}
	out := m.Pricing.Output
	if out == "" {
		out = m.Pricing.Completion
	}
	output, err := strconv.ParseFloat(strings.TrimSpace(out), 64)
	if err != nil {
		return 0, false
	}
	total := prompt + output
	if math.IsNaN(total) || math.IsInf(total, 0) {
		return 0, false
	}
	return total, true
}

// IsFree reports whether the model costs nothing per token.
func (m ModelInfo) IsFree() bool {
	total, ok := m.TotalPrice()
	return ok && total == 0
}

// featuredModels are the presets offered before the catalog is loaded.
var featuredModels = []ModelInfo{
	{
		ID:          core.PremiumModelID,
		Name:        "OpenAI: GPT-4.1 Mini",
		Description: "Recommended. Fast, precise, good with images",
		Pricing:     Pricing{Prompt: "0.0000004", Completion: "0.0000016"},
	},
	{
		ID:          core.FreeModelID,
		Name:        "Mistral: Mistral Small 3.2 24B (free)",
		Description: "Free tier, rate limited, no JSON mode",
		Pricing:     Pricing{Prompt: "0", Completion: "0"},
	},
}

// FeaturedModels returns the premium and free presets.
func FeaturedModels() []ModelInfo {
	out := make([]ModelInfo, len(featuredModels))
	copy(out, featuredModels)
	return out
}

// FetchModels lists the provider's models from {baseURL}/models.
// The result is unsorted.
func FetchModels(ctx context.Context, client *http.Client, baseURL string) ([]ModelInfo, error) {
	if client == nil {
		client = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(baseURL, "/")+"/models", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build models request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &TransportError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("models endpoint returned %d", resp.StatusCode),
		}
	}

	var body struct {
		Data []ModelInfo `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode model list: %w", err)
	}
	return body.Data, nil
}

// SortModels orders models by combined prompt + output price, cheapest (and
// free) first. Ties are broken by name; unpriced models go last, by name.
func SortModels(models []ModelInfo) {
	sort.SliceStable(models, func(i, j int) bool {
		pi, oki := models[i].TotalPrice()
		pj, okj := models[j].TotalPrice()
		switch {
		case oki != okj:
			return oki
		case oki && pi != pj:
			return pi < pj
		default:
			return models[i].Name < models[j].Name
		}
	})
}

// FilterFree returns the free models, in their current order.
func FilterFree(models []ModelInfo) []ModelInfo {
	var out []ModelInfo
	for _, m := range models {
		if m.IsFree() {
			out = append(out, m)
		}
	}
	return out
}
