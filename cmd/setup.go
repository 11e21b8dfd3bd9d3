package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/dhabedank/prompt-builder/internal/config"
	"github.com/dhabedank/prompt-builder/internal/llm"
	"github.com/dhabedank/prompt-builder/internal/tui"
)

var resetConfig bool

// SetupCmd represents the setup command.
var SetupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive configuration wizard",
	Long: `Configure prompt-builder with an interactive wizard.

This wizard asks for:
- Model: the OpenRouter model used for every request (cheapest first)
- API key: your OpenRouter key (leave empty to keep the current one)

Configuration is saved to ~/` + config.FileName + ` (readable only by you).`,
	Args: cobra.NoArgs,
	RunE: runSetup,
}

func init() {
	SetupCmd.Flags().BoolVar(&resetConfig, "reset", false, "Reset configuration to defaults")
}

func runSetup(cmd *cobra.Command, args []string) error {
	// The file alone: environment and flag overrides must not be saved.
	configPath := config.FindPath(configFile)
	cfg, _, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Handle reset
	if resetConfig {
		if err := os.Remove(configPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove config: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), tui.SuccessStyle.Render("✓")+" Configuration reset to defaults")
		fmt.Fprintf(cmd.OutOrStdout(), "  Removed: %s\n", configPath)
		return nil
	}

	models := loadCatalog(cmd.Context(), cfg, nil)

	// Run the wizard
	p := tea.NewProgram(newSetupModel(models, cfg.Model, cfg.APIKey != ""))
	m, err := p.Run()
	if err != nil {
		return fmt.Errorf("wizard failed: %w", err)
	}

	finalModel := m.(setupModel)
	if finalModel.cancelled {
		fmt.Fprintln(cmd.OutOrStdout(), "Setup cancelled")
		return nil
	}

	cfg = applySetup(cfg, finalModel.selectedModel, finalModel.apiKey())
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(configPath, cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprintln(out, tui.SuccessStyle.Render("✓")+" Configuration saved to "+configPath)
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  Model: %s\n", tui.ModelStyle.Render(cfg.Model))
	fmt.Fprintf(out, "  Price: %s\n", tui.CostStyle.Render(tui.FormatRate(tui.RateFor(cfg.Model, models))))
	return nil
}

// applySetup merges the wizard answers. An empty key keeps the old one.
func applySetup(cfg config.Config, model, apiKey string) config.Config {
	if model != "" {
		cfg.Model = model
	}
	if key := strings.TrimSpace(apiKey); key != "" {
		cfg.APIKey = key
	}
	return cfg
}

// Bubble Tea model for the setup wizard

const (
	stepModel = iota
	stepKey
	stepCount
)

type setupModel struct {
	step          int
	list          list.Model
	keyInput      textinput.Model
	hasKey        bool
	selectedModel string
	cancelled     bool
	width         int
	height        int
}

type modelItem struct {
	info llm.ModelInfo
}

func (m modelItem) Title() string {
	return m.info.ID
}

func (m modelItem) Description() string {
	rate := tui.FormatRate(tui.RateFor(m.info.ID, []llm.ModelInfo{m.info}))
	if m.info.Name == "" {
		return rate
	}
	return m.info.Name + " • " + rate
}

func (m modelItem) FilterValue() string { return m.info.ID + " " + m.info.Name }

func newSetupModel(models []llm.ModelInfo, current string, hasKey bool) setupModel {
	items := make([]list.Item, len(models))
	selected := 0
	for i, m := range models {
		items[i] = modelItem{info: m}
		if m.ID == current {
			selected = i
		}
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(tui.ColorAccent).BorderForeground(tui.ColorAccent)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(tui.ColorMuted).BorderForeground(tui.ColorAccent)

	l := list.New(items, delegate, 60, 14)
	l.Title = "Select Model"
	l.SetShowStatusBar(false)
	l.Styles.Title = tui.TitleStyle
	l.Select(selected)

	ti := textinput.New()
	ti.Placeholder = "sk-or-..."
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'
	ti.CharLimit = 256
	ti.Width = 50
	if hasKey {
		ti.Placeholder = "leave empty to keep the current key"
	}

	return setupModel{
		step:     stepModel,
		list:     l,
		keyInput: ti,
		hasKey:   hasKey,
	}
}

func (m setupModel) apiKey() string {
	return m.keyInput.Value()
}

func (m setupModel) Init() tea.Cmd {
	return nil
}

func (m setupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetWidth(msg.Width)
		m.list.SetHeight(msg.Height - 4)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancelled = true
			return m, tea.Quit

		case "q":
			if m.step == stepModel && !m.list.SettingFilter() {
				m.cancelled = true
				return m, tea.Quit
			}

		case "enter":
			if m.step == stepModel && m.list.SettingFilter() {
				break
			}
			if m.step == stepModel {
				if item, ok := m.list.SelectedItem().(modelItem); ok {
					m.selectedModel = item.info.ID
				}
				m.step = stepKey
				return m, m.keyInput.Focus()
			}
			if strings.TrimSpace(m.keyInput.Value()) == "" && !m.hasKey {
				return m, nil
			}
			m.step = stepCount
			return m, tea.Quit

		case "esc":
			if m.step == stepKey {
				m.keyInput.Blur()
				m.step = stepModel
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	if m.step == stepKey {
		m.keyInput, cmd = m.keyInput.Update(msg)
		return m, cmd
	}
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m setupModel) View() string {
	if m.cancelled || m.step >= stepCount {
		return ""
	}

	// Progress indicator
	steps := []string{"Model", "API key"}
	progress := "\n  "
	for i, s := range steps {
		if i == m.step {
			progress += tui.SelectedStyle.Render(fmt.Sprintf("[%s]", s))
		} else if i < m.step {
			progress += tui.SuccessStyle.Render(fmt.Sprintf("✓ %s", s))
		} else {
			progress += tui.UnselectedStyle.Render(fmt.Sprintf("○ %s", s))
		}
		if i < len(steps)-1 {
			progress += " → "
		}
	}
	progress += "\n\n"

	if m.step == stepKey {
		body := tui.TitleStyle.Render("OpenRouter API key") + "\n\n" +
			"  " + tui.ModelStyle.Render(m.selectedModel) + "\n\n" +
			"  " + m.keyInput.View()
		help := tui.HelpStyle.Render("\n\n  enter: save • esc: back • ctrl+c: quit")
		return progress + body + help
	}

	help := tui.HelpStyle.Render("\n  ↑/↓: navigate • /: filter • enter: select • q: quit")
	return progress + m.list.View() + help
}
