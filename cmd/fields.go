package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhabedank/prompt-builder/internal/core"
	"github.com/dhabedank/prompt-builder/internal/tui"
)

var addFieldAt int

// AddFieldCmd asks the model for a new field that fits the prompt.
var AddFieldCmd = &cobra.Command{
	Use:   "add-field <prompt-file> <name...>",
	Short: "Add a generated field to a prompt",
	Long: `Generate a value and four alternatives for a new field, consistent
with the rest of the prompt. The name becomes the key in lower case with
underscores ("Conditions météo" -> conditions_météo). The field is appended
unless --at gives a position.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAddField,
}

// PickCmd swaps an alternative into a field's value.
var PickCmd = &cobra.Command{
	Use:   "pick <prompt-file> <field> <alternative>",
	Short: "Use one of a field's alternatives as its value",
	Long: `Make the n-th alternative (1-based) the field's value. The previous
value takes its place in the list, so nothing is lost.`,
	Args: cobra.ExactArgs(3),
	RunE: runPick,
}

// SetCmd replaces a field's value by hand.
var SetCmd = &cobra.Command{
	Use:   "set <prompt-file> <field> <value...>",
	Short: "Set a field's value",
	Args:  cobra.MinimumNArgs(3),
	RunE:  runSet,
}

// RemoveCmd deletes a field.
var RemoveCmd = &cobra.Command{
	Use:     "remove <prompt-file> <field>",
	Aliases: []string{"rm"},
	Short:   "Remove a field from a prompt",
	Args:    cobra.ExactArgs(2),
	RunE:    runRemove,
}

// MoveCmd reorders fields.
var MoveCmd = &cobra.Command{
	Use:   "move <prompt-file> <field> <position>",
	Short: "Move a field to another position (1-based)",
	Args:  cobra.ExactArgs(3),
	RunE:  runMove,
}

// ShowCmd prints a prompt file.
var ShowCmd = &cobra.Command{
	Use:   "show <prompt-file>",
	Short: "Display a prompt with its alternatives",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	AddFieldCmd.Flags().IntVar(&addFieldAt, "at", 0, "Insert at this position (1-based) instead of the end")
	for _, c := range []*cobra.Command{AddFieldCmd, PickCmd, SetCmd, RemoveCmd, MoveCmd} {
		addOutputFlags(c)
	}
}

func runAddField(cmd *cobra.Command, args []string) error {
	prompt, err := readPrompt(cmd, args[0])
	if err != nil {
		return err
	}

	name := strings.TrimSpace(strings.Join(args[1:], " "))
	key := core.FieldKey(name)
	if key == "" {
		return fmt.Errorf("field name must not be empty")
	}
	if _, exists := prompt.Get(key); exists {
		return fmt.Errorf("field %q already exists", key)
	}
	if addFieldAt < 0 || addFieldAt > prompt.Len()+1 {
		return fmt.Errorf("--at %d out of range (1-%d)", addFieldAt, prompt.Len()+1)
	}

	cfg, client, err := setupClient(cmd)
	if err != nil {
		return err
	}

	seg, err := client.GenerateNewField(cmd.Context(), cfg.APIConfig(), prompt, name)
	if err != nil {
		return userError(err)
	}

	prompt.Set(key, seg)
	if addFieldAt > 0 {
		if err := prompt.Move(prompt.Len()-1, addFieldAt-1); err != nil {
			return err
		}
	}
	return writeResult(cmd, prompt, args[0])
}

func runPick(cmd *cobra.Command, args []string) error {
	prompt, err := readPrompt(cmd, args[0])
	if err != nil {
		return err
	}
	key, err := resolveField(prompt, args[1])
	if err != nil {
		return err
	}

	seg, _ := prompt.Get(key)
	if len(seg.Alternatives) == 0 {
		return fmt.Errorf("field %q has no alternatives; run 'prompt-builder alternatives' first", key)
	}
	i, err := position(args[2], len(seg.Alternatives))
	if err != nil {
		return err
	}

	prompt.Set(key, pickAlternative(seg, i))
	return writeResult(cmd, prompt, args[0])
}

// pickAlternative swaps alternative i with the current value.
func pickAlternative(seg core.Segment, i int) core.Segment {
	alts := make([]string, len(seg.Alternatives))
	copy(alts, seg.Alternatives)
	value := alts[i]
	alts[i] = seg.Value
	return core.Segment{Value: value, Alternatives: alts}
}

func runSet(cmd *cobra.Command, args []string) error {
	prompt, err := readPrompt(cmd, args[0])
	if err != nil {
		return err
	}
	key, err := resolveField(prompt, args[1])
	if err != nil {
		return err
	}

	seg, _ := prompt.Get(key)
	seg.Value = strings.Join(args[2:], " ")
	prompt.Set(key, seg)
	return writeResult(cmd, prompt, args[0])
}

func runRemove(cmd *cobra.Command, args []string) error {
	prompt, err := readPrompt(cmd, args[0])
	if err != nil {
		return err
	}
	key, err := resolveField(prompt, args[1])
	if err != nil {
		return err
	}
	if prompt.Len() == 1 {
		return fmt.Errorf("cannot remove the last field; run 'prompt-builder generate' to start over")
	}

	prompt.Delete(key)
	return writeResult(cmd, prompt, args[0])
}

func runMove(cmd *cobra.Command, args []string) error {
	prompt, err := readPrompt(cmd, args[0])
	if err != nil {
		return err
	}
	key, err := resolveField(prompt, args[1])
	if err != nil {
		return err
	}
	to, err := position(args[2], prompt.Len())
	if err != nil {
		return err
	}

	from := 0
	for i, k := range prompt.Keys() {
		if k == key {
			from = i
			break
		}
	}
	if err := prompt.Move(from, to); err != nil {
		return err
	}
	return writeResult(cmd, prompt, args[0])
}

func runShow(cmd *cobra.Command, args []string) error {
	prompt, err := readPrompt(cmd, args[0])
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), tui.RenderPrompt(prompt))
	fmt.Fprintln(cmd.OutOrStdout())
	fmt.Fprintln(cmd.OutOrStdout(), tui.HelpStyle.Render(prompt.Text()))
	return nil
}
