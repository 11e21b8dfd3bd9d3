package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// ImproveCmd rewrites every field of a prompt, keeping its fields.
var ImproveCmd = &cobra.Command{
	Use:   "improve <prompt-file>",
	Short: "Enrich every field of a prompt",
	Args:  cobra.ExactArgs(1),
	RunE:  runImprove,
}

// EditCmd applies a free-form instruction to a whole prompt.
var EditCmd = &cobra.Command{
	Use:   "edit <prompt-file> <instruction...>",
	Short: "Modify a prompt following an instruction",
	Long: `Apply an instruction to the whole prompt. The set of fields never
changes; use add-field or remove for that.

Example:
  prompt-builder edit prompt.json "passe la scène de nuit, sous la pluie" -w`,
	Args: cobra.MinimumNArgs(2),
	RunE: runEdit,
}

func init() {
	addOutputFlags(ImproveCmd)
	addOutputFlags(EditCmd)
}

func runImprove(cmd *cobra.Command, args []string) error {
	prompt, err := readPrompt(cmd, args[0])
	if err != nil {
		return err
	}
	cfg, client, err := setupClient(cmd)
	if err != nil {
		return err
	}

	improved, err := client.ImproveFullPrompt(cmd.Context(), cfg.APIConfig(), prompt)
	if err != nil {
		return userError(err)
	}
	return writeResult(cmd, improved, args[0])
}

func runEdit(cmd *cobra.Command, args []string) error {
	prompt, err := readPrompt(cmd, args[0])
	if err != nil {
		return err
	}
	instruction := strings.TrimSpace(strings.Join(args[1:], " "))
	if instruction == "" {
		return fmt.Errorf("instruction must not be empty")
	}

	cfg, client, err := setupClient(cmd)
	if err != nil {
		return err
	}

	edited, err := client.EditFullPrompt(cmd.Context(), cfg.APIConfig(), prompt, instruction)
	if err != nil {
		return userError(err)
	}
	return writeResult(cmd, edited, args[0])
}
