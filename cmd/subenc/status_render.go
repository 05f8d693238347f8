package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"subenc/internal/history"
	"subenc/internal/preflight"
	"subenc/internal/report"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

var statusStyles = map[statusKind]struct {
	tag   string
	color string
}{
	statusInfo:  {tag: "INFO", color: "\x1b[34m"},
	statusOK:    {tag: "OK", color: "\x1b[32m"},
	statusWarn:  {tag: "WARN", color: "\x1b[33m"},
	statusError: {tag: "ERROR", color: "\x1b[31m"},
}

const ansiReset = "\x1b[0m"

// statusWriter prints "  Label: [TAG] message" lines, colored when out is a
// terminal.
type statusWriter struct {
	out   io.Writer
	color bool
	width int
}

func newStatusWriter(out io.Writer) statusWriter {
	return statusWriter{out: out, color: report.Interactive(out), width: 18}
}

func (s statusWriter) paint(kind statusKind, text string) string {
	if !s.color {
		return text
	}
	return statusStyles[kind].color + text + ansiReset
}

func (s statusWriter) section(title string) {
	heading := "== " + strings.TrimSpace(title) + " =="
	fmt.Fprintln(s.out, s.paint(statusInfo, heading))
	fmt.Fprintln(s.out, s.paint(statusInfo, strings.Repeat("-", len(heading))))
}

func (s statusWriter) line(label string, kind statusKind, message string) {
	tag := "[" + statusStyles[kind].tag + "]"
	if message != "" {
		tag += " " + message
	}
	fmt.Fprintln(s.out, s.paint(kind, fmt.Sprintf("  %-*s %s", s.width, label+":", tag)))
}

// check prints one preflight result. A missing optional directory is a
// warning; anything else that failed is an error.
func (s statusWriter) check(result preflight.Result) {
	kind := statusOK
	switch {
	case result.Passed:
	case result.Missing:
		kind = statusWarn
	default:
		kind = statusError
	}
	s.line(result.Name, kind, result.Detail)
}

// run prints the detail block of one recorded run.
func (s statusWriter) run(run *history.Run) {
	s.section(fmt.Sprintf("%s run %s", run.Phase, run.ShortID()))
	s.line("Status", runStatusKind(run.Status), string(run.Status))
	s.line("Root", statusInfo, run.Root)
	s.line("Started", statusInfo, run.StartedAt.Local().Format(time.DateTime))
	if run.FinishedAt != nil {
		s.line("Duration", statusInfo, run.Duration().Round(time.Millisecond).String())
	}
	s.line("Files", statusInfo, strconv.Itoa(run.Files))
	if run.Failed > 0 {
		s.line("Failed", statusError, strconv.Itoa(run.Failed))
	}
	if run.Pending > 0 {
		s.line("Not started", statusWarn, strconv.Itoa(run.Pending))
	}
}

func runStatusKind(status history.Status) statusKind {
	switch status {
	case history.StatusCompleted:
		return statusOK
	case history.StatusInterrupted, history.StatusRunning:
		return statusWarn
	case history.StatusFailed:
		return statusError
	default:
		return statusInfo
	}
}
