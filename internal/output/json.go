package output

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/dhabedank/prompt-builder/internal/core"
)

// JSONAdapter writes the structured prompt as indented JSON, keys in order.
type JSONAdapter struct {
	config Config
}

// NewJSONAdapter creates a JSON adapter.
func NewJSONAdapter(config Config) *JSONAdapter {
	return &JSONAdapter{config: config}
}

func (a *JSONAdapter) Name() string {
	return "json"
}

func (a *JSONAdapter) IsAvailable() (bool, error) {
	return true, nil // Always available
}

func (a *JSONAdapter) Write(export Export) error {
	if export.Prompt == nil {
		return fmt.Errorf("nothing to export: no prompt")
	}
	data, err := MarshalPrompt(export.Prompt)
	if err != nil {
		return err
	}
	return emit(a.config, data)
}

// MarshalPrompt returns the indented JSON form of a prompt with a trailing
// newline, the format prompt files are saved in.
func MarshalPrompt(p *core.Prompt) ([]byte, error) {
	raw, err := p.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// TextAdapter writes the flat prompt, one line.
type TextAdapter struct {
	config Config
}

// NewTextAdapter creates a text adapter.
func NewTextAdapter(config Config) *TextAdapter {
	return &TextAdapter{config: config}
}

func (a *TextAdapter) Name() string {
	return "text"
}

func (a *TextAdapter) IsAvailable() (bool, error) {
	return true, nil
}

func (a *TextAdapter) Write(export Export) error {
	return emit(a.config, []byte(export.Text()+"\n"))
}
