package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhabedank/prompt-builder/internal/core"
)

var generateImage string

// GenerateCmd creates a new prompt from an idea, an image or both.
var GenerateCmd = &cobra.Command{
	Use:   "generate [idea...]",
	Short: "Generate a structured prompt from an idea or an image",
	Long: `Generate a structured image prompt with the fields sujet, style,
éclairage, composition and détails, each with four alternatives.

Examples:
  prompt-builder generate "un renard dans la neige au crépuscule"
  prompt-builder generate --image mockup.png "en version minimaliste" -o prompt.json`,
	RunE: runGenerate,
}

func init() {
	GenerateCmd.Flags().StringVarP(&generateImage, "image", "i", "", "Reference image (png, jpeg, gif, webp)")
	addOutputFlags(GenerateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	idea := strings.TrimSpace(strings.Join(args, " "))

	var image *core.Image
	if generateImage != "" {
		img, err := core.LoadImage(generateImage)
		if err != nil {
			return err
		}
		image = img
	}
	if idea == "" && image == nil {
		return fmt.Errorf("describe an idea or pass --image")
	}

	cfg, client, err := setupClient(cmd)
	if err != nil {
		return err
	}

	prompt, err := client.GenerateInitial(cmd.Context(), cfg.APIConfig(), idea, image)
	if err != nil {
		return userError(err)
	}
	return writeResult(cmd, prompt, "")
}
