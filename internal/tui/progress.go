package tui

import (
	"fmt"
	"io"
	"time"

	"github.com/dhabedank/prompt-builder/internal/llm"
)

// RenderCallStart returns the line printed when a request goes out.
func RenderCallStart(op, model string, inputChars int) string {
	return fmt.Sprintf("%s %s  %s  ~%s input tokens",
		SpinnerStyle.Render("→"),
		StageStyle.Render(op),
		ModelStyle.Render(model),
		FormatTokens(EstimateTokens(inputChars)),
	)
}

// RenderCallComplete returns the line printed when a request returns.
func RenderCallComplete(op string, duration time.Duration, inputChars, outputChars int, rate Rate) string {
	inputTokens := EstimateTokens(inputChars)
	outputTokens := EstimateTokens(outputChars)
	cost := EstimateCost(rate, inputTokens, outputTokens)

	return fmt.Sprintf("%s %s  %s  ~%s tokens  %s",
		SuccessStyle.Render("✓"),
		StageStyle.Render(op),
		HelpStyle.Render(duration.Truncate(100*time.Millisecond).String()),
		FormatTokens(inputTokens+outputTokens),
		CostStyle.Render(FormatCost(cost)),
	)
}

// RenderCallFailed returns the line printed when a request fails.
func RenderCallFailed(op string, duration time.Duration) string {
	return fmt.Sprintf("%s %s  %s",
		ErrorStyle.Render("✗"),
		StageStyle.Render(op),
		HelpStyle.Render(duration.Truncate(100*time.Millisecond).String()),
	)
}

// CallPrinter writes a progress line around each request. It implements
// llm.Observer.
type CallPrinter struct {
	Out     io.Writer
	Catalog []llm.ModelInfo // Optional, for live pricing
}

func (p *CallPrinter) CallStarted(stats llm.CallStats) {
	fmt.Fprintln(p.Out, RenderCallStart(stats.Op, stats.Model, stats.InputChars))
}

func (p *CallPrinter) CallFinished(stats llm.CallStats) {
	if stats.Err != nil {
		fmt.Fprintln(p.Out, RenderCallFailed(stats.Op, stats.Duration))
		return
	}
	fmt.Fprintln(p.Out, RenderCallComplete(stats.Op, stats.Duration, stats.InputChars, stats.OutputChars, RateFor(stats.Model, p.Catalog)))
}
