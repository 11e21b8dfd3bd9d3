package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/dhabedank/prompt-builder/internal/config"
	"github.com/dhabedank/prompt-builder/internal/core"
	"github.com/dhabedank/prompt-builder/internal/llm"
	"github.com/dhabedank/prompt-builder/internal/output"
	"github.com/dhabedank/prompt-builder/internal/tui"
)

// Global flags, registered on the root command by BindGlobalFlags.
var (
	configFile   string
	modelFlag    string
	providerFlag string
	verbose      bool
)

// Output flags shared by the commands that produce a prompt.
var (
	outputPath   string
	outputFormat string
	writeBack    bool
)

// BindGlobalFlags registers the flags every command understands.
func BindGlobalFlags(root *cobra.Command) {
	flags := root.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Config file (default: ./"+config.FileName+" or ~/"+config.FileName+")")
	flags.StringVarP(&modelFlag, "model", "m", "", "Model id (overrides config and "+config.EnvModel+")")
	flags.StringVar(&providerFlag, "provider", "", "API provider (openrouter/anthropic)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Log requests to stderr")
}

func addOutputFlags(c *cobra.Command) {
	c.Flags().StringVarP(&outputPath, "out", "o", "", "Write the resulting prompt to this file")
	c.Flags().StringVarP(&outputFormat, "format", "f", "json", "Output format (json/text/clipboard)")
	c.Flags().BoolVarP(&writeBack, "write", "w", false, "Overwrite the input prompt file")
}

// loadSettings resolves the settings in increasing priority: config file,
// .env, environment, flags.
func loadSettings(cmd *cobra.Command) (config.Config, string, error) {
	if err := config.LoadDotEnv(); err != nil {
		return config.Config{}, "", err
	}

	path := config.FindPath(configFile)
	cfg, migrated, err := config.Load(path)
	if err != nil {
		return config.Config{}, "", err
	}
	if migrated {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s Migrated legacy model selection in %s (model: %s)\n",
			tui.WarningStyle.Render("!"), path, tui.ModelStyle.Render(cfg.Model))
	}

	cfg.ApplyEnv()

	// Apply flag values only if they were explicitly set
	if cmd.Flags().Changed("model") {
		cfg.Model = modelFlag
	}
	if cmd.Flags().Changed("provider") {
		cfg.Provider = providerFlag
	}
	return cfg, path, nil
}

// newClient builds the API client. Progress lines go to progress when it
// is non-nil; logs go to logs.
func newClient(cfg config.Config, logs io.Writer, progress io.Writer) (*llm.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	completer, err := llm.NewCompleter(cfg.LLMConfig())
	if err != nil {
		return nil, err
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: level}))

	opts := []llm.Option{llm.WithLogger(logger)}
	if progress != nil {
		opts = append(opts, llm.WithObserver(&tui.CallPrinter{Out: progress}))
	}
	if cfg.RequestsPerMinute > 0 {
		opts = append(opts, llm.WithLimiter(newLimiter(cfg.RequestsPerMinute)))
	}
	return llm.NewClient(completer, opts...), nil
}

// newLimiter spaces requests evenly over a minute.
func newLimiter(perMinute int) *rate.Limiter {
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
}

// setupClient is the common prologue of commands that call the API.
func setupClient(cmd *cobra.Command) (config.Config, *llm.Client, error) {
	cfg, _, err := loadSettings(cmd)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("failed to load config: %w", err)
	}
	client, err := newClient(cfg, cmd.ErrOrStderr(), cmd.ErrOrStderr())
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, client, nil
}

// readPrompt loads a prompt file; "-" reads stdin. The content goes
// through the same shape check as model replies.
func readPrompt(cmd *cobra.Command, path string) (*core.Prompt, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt: %w", err)
	}

	p, err := core.ParseOpen(string(data), 1)
	if err != nil {
		return nil, fmt.Errorf("invalid prompt file %s: %w", path, err)
	}
	return p, nil
}

// destination returns where a result prompt goes: --out, the input file
// with --write, or "" for stdout.
func destination(src string) (string, error) {
	if outputPath != "" {
		return outputPath, nil
	}
	if writeBack {
		if src == "" || src == "-" {
			return "", fmt.Errorf("--write needs a prompt file, not stdin")
		}
		return src, nil
	}
	return "", nil
}

// writeResult exports p. Saving to a file also shows the prompt on stdout.
func writeResult(cmd *cobra.Command, p *core.Prompt, src string) error {
	dest, err := destination(src)
	if err != nil {
		return err
	}

	adapter, err := output.New(outputFormat, output.Config{Path: dest, Writer: cmd.OutOrStdout()})
	if err != nil {
		return err
	}
	if ok, err := adapter.IsAvailable(); !ok {
		return fmt.Errorf("%s output not available: %w", adapter.Name(), err)
	}
	if err := adapter.Write(output.Export{Prompt: p}); err != nil {
		return err
	}

	switch {
	case adapter.Name() == "clipboard":
		fmt.Fprintln(cmd.ErrOrStderr(), tui.SuccessStyle.Render("✓")+" Copied to clipboard")
	case dest != "":
		fmt.Fprint(cmd.OutOrStdout(), tui.RenderPrompt(p))
		fmt.Fprintln(cmd.OutOrStdout())
		fmt.Fprintln(cmd.OutOrStdout(), tui.SuccessStyle.Render("✓")+" Saved to "+dest)
	}
	return nil
}

// resolveField accepts a field key, a display name or a 1-based position.
func resolveField(p *core.Prompt, arg string) (string, error) {
	keys := p.Keys()
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(keys) {
			return "", fmt.Errorf("field %d out of range (have %d fields)", n, len(keys))
		}
		return keys[n-1], nil
	}
	if _, ok := p.Get(arg); ok {
		return arg, nil
	}
	if key := core.FieldKey(arg); key != "" {
		if _, ok := p.Get(key); ok {
			return key, nil
		}
	}
	return "", fmt.Errorf("unknown field %q (fields: %s)", arg, strings.Join(keys, ", "))
}

// position parses a 1-based index into a 0-based one.
func position(arg string, n int) (int, error) {
	i, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid position %q: want a number", arg)
	}
	if i < 1 || i > n {
		return 0, fmt.Errorf("position %d out of range (1-%d)", i, n)
	}
	return i - 1, nil
}

// userError turns client errors into messages a user can act on.
func userError(err error) error {
	if err == nil {
		return nil
	}
	if status, ok := llm.IsTransport(err); ok {
		if status == 0 {
			return fmt.Errorf("request failed, check your network and provider settings: %w", err)
		}
		return fmt.Errorf("request failed (status %d), check API key / provider: %w", status, err)
	}
	if errors.Is(err, llm.ErrMalformedReply) {
		return fmt.Errorf("the model returned an unexpected format, try again or pick another model: %w", err)
	}
	return err
}
