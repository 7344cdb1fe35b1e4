// Package ui draws terminal progress for long CLI runs.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Phase is one stage of a batch run
type Phase string

const (
	PhaseLoading    Phase = "読込"
	PhaseImporting  Phase = "取込"
	PhaseGenerating Phase = "作成"
)

// ProgressBar wraps progressbar with the project styling
type ProgressBar struct {
	bar   *progressbar.ProgressBar
	phase string
	total int
}

// NewProgressBar creates a bar for phase writing to output
func NewProgressBar(phase Phase, total int, output io.Writer) *ProgressBar {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(output),
		progressbar.OptionSetDescription(fmt.Sprintf("[%s]", phase)),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetPredictTime(true),
	)
	return &ProgressBar{bar: bar, phase: string(phase), total: total}
}

// Increment advances the bar by one
func (pb *ProgressBar) Increment() error {
	return pb.bar.Add(1)
}

// Describe shows the item currently being processed
func (pb *ProgressBar) Describe(item string) {
	pb.bar.Describe(fmt.Sprintf("[%s] %s", pb.phase, item))
}

// Finish completes the bar
func (pb *ProgressBar) Finish() error {
	return pb.bar.Finish()
}

// Total is the number of steps the bar was created with
func (pb *ProgressBar) Total() int {
	return pb.total
}

// Pipeline runs phases one after another, one bar each
type Pipeline struct {
	phases   []Phase
	current  int
	bar      *ProgressBar
	disabled bool
	output   io.Writer
}

// NewPipeline creates a pipeline writing to stdout
func NewPipeline(phases []Phase) *Pipeline {
	return NewPipelineWithOutput(phases, os.Stdout)
}

// NewPipelineWithOutput creates a pipeline writing to output
func NewPipelineWithOutput(phases []Phase, output io.Writer) *Pipeline {
	return &Pipeline{phases: phases, current: -1, output: output}
}

// Disable silences every bar, used with --quiet and when stdout is not a terminal
func (p *Pipeline) Disable() {
	p.disabled = true
}

// NextPhase finishes the running bar and starts the next one.
// Returns nil once all phases are used up.
func (p *Pipeline) NextPhase(total int) *ProgressBar {
	p.Finish()

	p.current++
	if p.current >= len(p.phases) {
		return nil
	}

	out := p.output
	if p.disabled {
		out = io.Discard
	}
	p.bar = NewProgressBar(p.phases[p.current], total, out)
	return p.bar
}

// Finish completes the running bar
func (p *Pipeline) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
		p.bar = nil
	}
}

// PrintSummary prints a closing line unless disabled
func (p *Pipeline) PrintSummary(format string, args ...interface{}) {
	if !p.disabled {
		fmt.Fprintf(p.output, format+"\n", args...)
	}
}
