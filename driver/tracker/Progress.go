package tracker

import (
	"io"

	"sfneuman.com/gorollout/trajectory"
	"sfneuman.com/gorollout/utils/progressbar"
)

// Progress is a Listener that draws a progress bar while a rollout
// runs. Each recorded trajectory step advances the bar by the step's
// batch size, so the bar tracks total environment steps taken.
type Progress struct {
	bar *progressbar.ProgressBar
}

// NewProgress creates a Listener drawing a progress bar to out that
// fills after maxSteps total environment steps
func NewProgress(maxSteps int, out io.Writer) *Progress {
	return &Progress{
		bar: progressbar.New(25, maxSteps, out),
	}
}

// Listen implements the driver Listener interface
func (p *Progress) Listen(step trajectory.Step) {
	p.bar.Add(step.BatchSize())
	p.bar.Display()
}
