package wizard

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/progress"
)

const (
	progressStep    = 0.05
	progressCeiling = 0.95
)

// Progress renders a cosmetic bar while a blocking call runs. The bar does not
// reflect real progress: it creeps up to 95% and completes when the call returns.
type Progress struct {
	bar      progress.Model
	out      io.Writer
	interval time.Duration
}

// NewProgress creates a bar that advances once per interval
func NewProgress(out io.Writer, interval time.Duration) *Progress {
	return &Progress{
		bar:      progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		out:      out,
		interval: interval,
	}
}

// advance moves the bar one tick forward without passing the ceiling
func advance(percent float64) float64 {
	percent += progressStep
	if percent > progressCeiling {
		return progressCeiling
	}
	return percent
}

// Track runs fn while ticking the bar. On success the bar is drawn at 100%.
func (p *Progress) Track(ctx context.Context, fn func(ctx context.Context) error) error {
	done := make(chan error, 1)
	go func() { done <- fn(ctx) }()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	percent := 0.0
	p.render(percent)
	for {
		select {
		case err := <-done:
			if err == nil {
				p.render(1)
			}
			fmt.Fprintln(p.out)
			return err
		case <-ticker.C:
			percent = advance(percent)
			p.render(percent)
		}
	}
}

func (p *Progress) render(percent float64) {
	fmt.Fprintf(p.out, "\r%s", p.bar.ViewAs(percent))
}
