package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dhabedank/prompt-builder/internal/config"
	"github.com/dhabedank/prompt-builder/internal/tui"
)

// FirstRunNotice prints a welcome message when nothing is configured yet:
// no settings file and no key in the environment. The setup command itself
// and help output are left alone.
func FirstRunNotice(cmd *cobra.Command, args []string) {
	if cmd == SetupCmd || cmd.Name() == "help" || os.Getenv(config.EnvAPIKey) != "" {
		return
	}
	if !config.IsFirstRun(config.FindPath(configFile)) {
		return
	}
	printWelcome(cmd.ErrOrStderr())
}

func printWelcome(w io.Writer) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s Welcome to prompt-builder!\n", tui.TitleStyle.Render("*"))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Quick start:")
	fmt.Fprintf(w, "    1. Run %s to pick a model and enter your OpenRouter key\n", tui.ModelStyle.Render("prompt-builder setup"))
	fmt.Fprintf(w, "       (or set %s)\n", tui.ModelStyle.Render(config.EnvAPIKey))
	fmt.Fprintf(w, "    2. Generate a prompt: %s\n", tui.ModelStyle.Render(`prompt-builder generate "un phare sous l'orage" -o prompt.json`))
	fmt.Fprintf(w, "    3. Refine it: %s\n", tui.ModelStyle.Render("prompt-builder chat prompt.json -w"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", tui.HelpStyle.Render("Run 'prompt-builder --help' for all commands"))
	fmt.Fprintln(w)
}
