package output

import (
	"fmt"

	"github.com/atotto/clipboard"
)

// ClipboardAdapter copies the flat prompt to the system clipboard.
type ClipboardAdapter struct {
	write func(string) error
}

// NewClipboardAdapter creates a clipboard adapter.
func NewClipboardAdapter() *ClipboardAdapter {
	return &ClipboardAdapter{write: clipboard.WriteAll}
}

func (a *ClipboardAdapter) Name() string {
	return "clipboard"
}

func (a *ClipboardAdapter) IsAvailable() (bool, error) {
	if clipboard.Unsupported {
		return false, fmt.Errorf("no clipboard utility found (install xclip, xsel or wl-clipboard)")
	}
	return true, nil
}

func (a *ClipboardAdapter) Write(export Export) error {
	text := export.Text()
	if text == "" {
		return fmt.Errorf("nothing to copy")
	}
	if err := a.write(text); err != nil {
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	return nil
}
