package report

import (
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"subenc/internal/config"
)

// Interactive reports whether w is a terminal.
func Interactive(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// ProgressEnabled resolves a report.progress mode against w.
func ProgressEnabled(mode string, w io.Writer) bool {
	switch mode {
	case config.ProgressAlways:
		return true
	case config.ProgressNever:
		return false
	default:
		return Interactive(w)
	}
}

// Progress counts finished units. A disabled Progress is a no-op, so callers
// can call Add unconditionally from worker goroutines.
type Progress struct {
	bar *progressbar.ProgressBar
}

// NewProgress starts a bar of total units on w, or returns a disabled
// Progress when enabled is false or there is nothing to do.
func NewProgress(w io.Writer, enabled bool, total int, description string) *Progress {
	if !enabled || total <= 0 {
		return &Progress{}
	}
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
	return &Progress{bar: bar}
}

// Add records one finished unit.
func (p *Progress) Add() {
	if p == nil || p.bar == nil {
		return
	}
	_ = p.bar.Add(1)
}

// Close clears the bar. It is safe to call on a disabled Progress.
func (p *Progress) Close() {
	if p == nil || p.bar == nil {
		return
	}
	_ = p.bar.Finish()
}

// StartSpinner shows suffix next to a spinner on w until the returned stop
// function is called. It does nothing when enabled is false.
func StartSpinner(w io.Writer, enabled bool, suffix string) (stop func()) {
	if !enabled {
		return func() {}
	}
	spin := spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(w))
	spin.Suffix = " " + suffix
	spin.Start()
	return spin.Stop
}
