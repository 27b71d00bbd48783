package cli

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/schollz/progressbar/v3"
)

// Progress counts finished customers during a recompute pass. Done is safe
// to call from worker goroutines.
type Progress struct {
	bar    *progressbar.ProgressBar
	writer io.Writer
	done   []string
	mu     sync.Mutex
}

// NewProgress creates a progress bar over total customers.
func NewProgress(w io.Writer, total int, description string) *Progress {
	p := &Progress{writer: w}
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]"+description+"[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(w); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
	return p
}

// Done records one finished customer.
func (p *Progress) Done(customer string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done = append(p.done, customer)
	if err := p.bar.Add(1); err != nil {
		slog.Warn("Failed to update progress bar", "error", err)
	}
}

// Completed returns how many customers have finished.
func (p *Progress) Completed() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.done)
}
