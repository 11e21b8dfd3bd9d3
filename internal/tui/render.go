package tui

import (
	"fmt"
	"strings"

	"github.com/dhabedank/prompt-builder/internal/core"
)

// RenderPrompt shows every field in order: index, label, value and the
// numbered alternatives (used by pick).
func RenderPrompt(p *core.Prompt) string {
	var b strings.Builder
	for i, key := range p.Keys() {
		seg, _ := p.Get(key)
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s %s\n", HelpStyle.Render(fmt.Sprintf("%d.", i+1)), FieldKeyStyle.Render(core.FieldLabel(key)))
		b.WriteString(ValueStyle.Render(seg.Value))
		b.WriteString("\n")
		for j, alt := range seg.Alternatives {
			b.WriteString(AlternativeStyle.Render(fmt.Sprintf("%d) %s", j+1, alt)))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// RenderAlternatives lists suggestions for one field.
func RenderAlternatives(label string, alts []string) string {
	var b strings.Builder
	b.WriteString(FieldKeyStyle.Render(label))
	b.WriteString("\n")
	for i, alt := range alts {
		b.WriteString(AlternativeStyle.Render(fmt.Sprintf("%d) %s", i+1, alt)))
		b.WriteString("\n")
	}
	return b.String()
}
