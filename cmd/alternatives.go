package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhabedank/prompt-builder/internal/core"
	"github.com/dhabedank/prompt-builder/internal/tui"
)

var alternativesQuery string

// AlternativesCmd refreshes the alternatives of one field.
var AlternativesCmd = &cobra.Command{
	Use:   "alternatives <prompt-file> <field>",
	Short: "Suggest new alternatives for a field",
	Long: `Ask the model for four new alternatives to a field's current value.
With --query the suggestions follow your request instead.

The field is a key, a display name or a position (1-based).
The new list replaces the field's alternatives when saved with --out or --write.

Examples:
  prompt-builder alternatives prompt.json style
  prompt-builder alternatives prompt.json 2 --query "plus sombre, années 80" -w`,
	Args: cobra.ExactArgs(2),
	RunE: runAlternatives,
}

func init() {
	AlternativesCmd.Flags().StringVarP(&alternativesQuery, "query", "q", "", "Steer the suggestions with a free-form request")
	addOutputFlags(AlternativesCmd)
}

func runAlternatives(cmd *cobra.Command, args []string) error {
	prompt, err := readPrompt(cmd, args[0])
	if err != nil {
		return err
	}
	key, err := resolveField(prompt, args[1])
	if err != nil {
		return err
	}

	cfg, client, err := setupClient(cmd)
	if err != nil {
		return err
	}

	seg, _ := prompt.Get(key)
	category := core.FieldLabel(key)

	var alts []string
	if query := strings.TrimSpace(alternativesQuery); query != "" {
		alts, err = client.GetCustomAlternatives(cmd.Context(), cfg.APIConfig(), category, query, seg.Alternatives)
	} else {
		alts, err = client.GetAlternatives(cmd.Context(), cfg.APIConfig(), category, seg.Value)
	}
	if err != nil {
		return userError(err)
	}

	seg.Alternatives = alts
	prompt.Set(key, seg)

	dest, err := destination(args[0])
	if err != nil {
		return err
	}
	if dest == "" {
		fmt.Fprint(cmd.OutOrStdout(), tui.RenderAlternatives(category, alts))
		return nil
	}
	return writeResult(cmd, prompt, args[0])
}
