package output

import (
	"fmt"
	"io"
	"os"

	"github.com/dhabedank/prompt-builder/internal/core"
)

// Export is what gets written: the structured prompt and, once translated,
// its English flat form.
type Export struct {
	Prompt  *core.Prompt
	English string
}

// Text returns the flat prompt, preferring the English translation.
func (e Export) Text() string {
	if e.English != "" {
		return e.English
	}
	if e.Prompt == nil {
		return ""
	}
	return e.Prompt.Text()
}

// Adapter is the interface all output adapters must implement.
type Adapter interface {
	// Name returns the adapter identifier for logging.
	Name() string

	// IsAvailable checks if the adapter can be used (e.g., clipboard present).
	IsAvailable() (bool, error)

	// Write exports the prompt.
	Write(export Export) error
}

// Config configures output adapter behavior.
type Config struct {
	// Path writes to a file instead of Writer.
	Path string

	// Writer receives output when Path is empty. Defaults to stdout.
	Writer io.Writer
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{Writer: os.Stdout}
}

// New returns the adapter registered under name (json, text or clipboard).
func New(name string, config Config) (Adapter, error) {
	switch name {
	case "json":
		return NewJSONAdapter(config), nil
	case "text":
		return NewTextAdapter(config), nil
	case "clipboard":
		return NewClipboardAdapter(), nil
	default:
		return nil, fmt.Errorf("unknown output adapter: %s", name)
	}
}

// emit writes data to config.Path or config.Writer.
func emit(config Config, data []byte) error {
	if config.Path != "" {
		if err := os.WriteFile(config.Path, data, 0o644); err != nil {
			return fmt.Errorf("failed to write file: %w", err)
		}
		return nil
	}
	w := config.Writer
	if w == nil {
		w = os.Stdout
	}
	_, err := w.Write(data)
	return err
}
