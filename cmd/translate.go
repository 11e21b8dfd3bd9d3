package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dhabedank/prompt-builder/internal/output"
	"github.com/dhabedank/prompt-builder/internal/tui"
)

var translateCopy bool

// TranslateCmd produces the English flat prompt, ready to paste into an
// image generator.
var TranslateCmd = &cobra.Command{
	Use:   "translate <prompt-file>",
	Short: "Translate the prompt to English",
	Long: `Join the field values in order and translate them to English.
With --copy the translation is also put on the clipboard.`,
	Args: cobra.ExactArgs(1),
	RunE: runTranslate,
}

func init() {
	TranslateCmd.Flags().BoolVarP(&translateCopy, "copy", "c", false, "Copy the translation to the clipboard")
}

func runTranslate(cmd *cobra.Command, args []string) error {
	prompt, err := readPrompt(cmd, args[0])
	if err != nil {
		return err
	}

	// Check the clipboard before spending a request.
	var clip output.Adapter
	if translateCopy {
		clip = output.NewClipboardAdapter()
		if ok, err := clip.IsAvailable(); !ok {
			return err
		}
	}

	cfg, client, err := setupClient(cmd)
	if err != nil {
		return err
	}

	english, err := client.TranslateToEnglish(cmd.Context(), cfg.APIConfig(), prompt.Text())
	if err != nil {
		return userError(err)
	}

	export := output.Export{Prompt: prompt, English: english}
	if err := output.NewTextAdapter(output.Config{Writer: cmd.OutOrStdout()}).Write(export); err != nil {
		return err
	}
	if clip != nil {
		if err := clip.Write(export); err != nil {
			return err
		}
		fmt.Fprintln(cmd.ErrOrStderr(), tui.SuccessStyle.Render("✓")+" Copied to clipboard")
	}
	return nil
}
