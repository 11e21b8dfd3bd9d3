package cmd

import (
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/dhabedank/prompt-builder/internal/core"
	"github.com/dhabedank/prompt-builder/internal/llm"
	"github.com/dhabedank/prompt-builder/internal/tui"
)

// chatLogFile receives logs while the chat screen owns the terminal.
const chatLogFile = "prompt-builder.log"

var chatPersona string

// ChatCmd opens the interactive chat.
var ChatCmd = &cobra.Command{
	Use:   "chat [prompt-file]",
	Short: "Chat with a prompt expert or a general assistant",
	Long: `Open an interactive chat. The expert persona sees the current prompt
and may propose a new one; type /use to adopt it. On exit an adopted prompt
is written like any other result (stdout, --out or --write).

Chat commands:
  /use                    adopt the last proposed prompt
  /new                    start a new conversation
  /persona expert|generalist
  /image <path>           attach an image to the next message (no path removes it)
  /quit`,
	Args: cobra.MaximumNArgs(1),
	RunE: runChat,
}

func init() {
	ChatCmd.Flags().StringVarP(&chatPersona, "persona", "p", string(llm.PersonaExpert), "Persona (expert/generalist)")
	addOutputFlags(ChatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	persona, err := llm.ParsePersona(chatPersona)
	if err != nil {
		return err
	}

	var (
		prompt *core.Prompt
		src    string
	)
	if len(args) == 1 {
		src = args[0]
		if prompt, err = readPrompt(cmd, src); err != nil {
			return err
		}
	}

	cfg, _, err := loadSettings(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// The chat screen owns the terminal, so logs go to a file when asked
	// for and progress lines are not printed.
	var logs io.Writer = io.Discard
	if verbose {
		f, err := tea.LogToFile(chatLogFile, "chat")
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		logs = f
	}
	client, err := newClient(cfg, logs, nil)
	if err != nil {
		return err
	}

	model := tui.NewChatModel(cmd.Context(), client, cfg.APIConfig(), persona, prompt)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("chat failed: %w", err)
	}

	m := final.(tui.ChatModel)
	if !m.Updated() {
		return nil
	}
	return writeResult(cmd, m.Prompt(), src)
}
