package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/dhabedank/prompt-builder/internal/config"
	"github.com/dhabedank/prompt-builder/internal/llm"
	"github.com/dhabedank/prompt-builder/internal/tui"
)

// catalogTimeout bounds the model list fetch; it is not a generation call.
const catalogTimeout = 20 * time.Second

var modelsFree bool

// ModelsCmd lists the available models with their prices.
var ModelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List available models, cheapest first",
	Args:  cobra.NoArgs,
	RunE:  runModels,
}

func init() {
	ModelsCmd.Flags().BoolVar(&modelsFree, "free", false, "Only show free models")
}

func runModels(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadSettings(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	models := loadCatalog(cmd.Context(), cfg, func(err error) {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s Could not load the model list (%v), showing presets\n",
			tui.WarningStyle.Render("!"), err)
	})
	if modelsFree {
		models = llm.FilterFree(models)
	}

	out := cmd.OutOrStdout()
	for _, m := range models {
		marker := " "
		if m.ID == cfg.Model {
			marker = tui.SelectedStyle.Render("*")
		}
		fmt.Fprintf(out, "%s %s  %s\n", marker, tui.ModelStyle.Render(m.ID), tui.CostStyle.Render(tui.FormatRate(tui.RateFor(m.ID, models))))
		if m.Name != "" {
			line := m.Name
			if m.ContextLength > 0 {
				line += fmt.Sprintf(" (%s context)", tui.FormatTokens(m.ContextLength))
			}
			fmt.Fprintf(out, "  %s\n", tui.HelpStyle.Render(line))
		}
	}
	return nil
}

// loadCatalog returns the sorted model list, or the presets when the
// provider has no catalog or it cannot be fetched.
func loadCatalog(ctx context.Context, cfg config.Config, onError func(error)) []llm.ModelInfo {
	llmCfg := cfg.LLMConfig()
	if llmCfg.Provider == llm.ProviderAnthropic {
		return llm.FeaturedModels()
	}

	ctx, cancel := context.WithTimeout(ctx, catalogTimeout)
	defer cancel()

	models, err := llm.FetchModels(ctx, &http.Client{}, llmCfg.BaseURL)
	if err != nil || len(models) == 0 {
		if err != nil && onError != nil {
			onError(err)
		}
		return llm.FeaturedModels()
	}
	llm.SortModels(models)
	return models
}
