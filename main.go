package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/dhabedank/prompt-builder/cmd"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "prompt-builder",
		Short: "Build and refine image-generation prompts with an LLM",
		Long: `prompt-builder turns an idea or a reference image into a structured
prompt (subject, style, lighting, composition, details), then helps you
refine it field by field, in a chat, and export it in English.`,
		Version:          version,
		SilenceUsage:     true,
		SilenceErrors:    true,
		PersistentPreRun: cmd.FirstRunNotice,
	}

	cmd.BindGlobalFlags(rootCmd)
	rootCmd.AddCommand(
		cmd.GenerateCmd,
		cmd.AlternativesCmd,
		cmd.ImproveCmd,
		cmd.EditCmd,
		cmd.AddFieldCmd,
		cmd.PickCmd,
		cmd.SetCmd,
		cmd.RemoveCmd,
		cmd.MoveCmd,
		cmd.ShowCmd,
		cmd.TranslateCmd,
		cmd.ChatCmd,
		cmd.ModelsCmd,
		cmd.SetupCmd,
	)

	// Ctrl-C cancels the request in flight.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
