// Package progressbar implements functionality of printing a progress
// bar to the terminal window
package progressbar

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// ProgressBar prints the progress of a rollout to the terminal. The
// bar is manually managed: Add() records progress and Display()
// redraws the bar. Batched rollouts advance by more than one unit of
// progress per iteration, so Add() takes the amount to advance by.
//
// ProgressBar does not use concurrency.
type ProgressBar struct {
	width           float64
	maxProgress     float64
	currentProgress float64
	bar             strings.Builder
	out             io.Writer
	startTime       time.Time
}

// New returns a new ProgressBar that is width characters wide and
// reaches 100% after max units of progress, drawing itself to out.
func New(width, max int, out io.Writer) *ProgressBar {
	return &ProgressBar{
		width:           float64(width),
		maxProgress:     float64(max),
		currentProgress: 0,
		out:             out,
		startTime:       time.Now(),
	}
}

// Add advances the internal progress counter by n units, saturating
// at the maximum progress.
func (p *ProgressBar) Add(n int) {
	p.currentProgress += float64(n)
	if p.currentProgress > p.maxProgress {
		p.currentProgress = p.maxProgress
	}
}

// Display redraws the progress bar, overwriting the previously drawn
// bar.
func (p *ProgressBar) Display() {
	p.bar.Reset()
	p.bar.Write([]byte("|"))

	currentProg := p.currentProgress / p.maxProgress * p.width
	for i := 0.0; i < currentProg; i++ {
		p.bar.Write([]byte("█"))
	}
	for i := currentProg; i < p.width; i++ {
		p.bar.Write([]byte(" "))
	}
	p.bar.Write([]byte(fmt.Sprintf("| [%.2f%v | elapsed: %v]",
		p.currentProgress/p.maxProgress*100, "%",
		time.Since(p.startTime).Truncate(time.Second))))

	fmt.Fprintf(p.out, "\n\033[1A\033[K%v", p.bar.String())
}
