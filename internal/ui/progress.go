package ui

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

// ProgressBar shows how many cases have been verified so far
type ProgressBar struct {
	bar *progressbar.ProgressBar
}

// NewProgressBar creates a progress bar over count cases, written to stderr
func NewProgressBar(count int) *ProgressBar {
	bar := progressbar.NewOptions(count,
		progressbar.OptionSetDescription(describe(0, 0, 0)),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(50*time.Millisecond),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        color.CyanString("="),
			SaucerHead:    color.CyanString(">"),
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
	return &ProgressBar{bar: bar}
}

func describe(passed, failed, skipped int) string {
	return color.CyanString("Verifying IR ") +
		color.GreenString("ok %d", passed) + " " +
		color.RedString("fail %d", failed) + " " +
		color.YellowString("skip %d", skipped)
}

// Update moves the bar to the number of finished cases
func (p *ProgressBar) Update(passed, failed, skipped int) {
	p.bar.Describe(describe(passed, failed, skipped))
	_ = p.bar.Set(passed + failed + skipped)
}

// Finish completes the progress bar
func (p *ProgressBar) Finish() {
	_ = p.bar.Finish()
}
