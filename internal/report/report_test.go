package report

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"subenc/internal/detection"
	"subenc/internal/history"
	"subenc/internal/manifest"
	"subenc/internal/transcode"
)

func newPrinter(sample int) (Printer, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return Printer{Out: &out, Err: &errOut, Sample: sample}, &out, &errOut
}

func TestProblemsCapsSample(t *testing.T) {
	tests := []struct {
		name     string
		count    int
		sample   int
		listed   int
		trailing string
	}{
		{name: "under cap", count: 3, sample: 0, listed: 3},
		{name: "at cap", count: 10, sample: 0, listed: 10},
		{name: "over default cap", count: 25, sample: 0, listed: 10, trailing: "  ... (15 more)"},
		{name: "custom cap", count: 5, sample: 2, listed: 2, trailing: "  ... (3 more)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			printer, _, errOut := newPrinter(tt.sample)
			problems := make([]Problem, tt.count)
			for i := range problems {
				problems[i] = Problem{Path: fmt.Sprintf("/subs/%02d.srt", i), Err: errors.New("boom")}
			}
			printer.Problems(problems)

			lines := strings.Split(strings.TrimRight(errOut.String(), "\n"), "\n")
			arrows := 0
			for _, line := range lines {
				if strings.Contains(line, " -> ") {
					arrows++
				}
			}
			if arrows != tt.listed {
				t.Fatalf("expected %d listed problems, got %d:\n%s", tt.listed, arrows, errOut.String())
			}
			last := lines[len(lines)-1]
			if tt.trailing != "" && last != tt.trailing {
				t.Fatalf("expected trailing %q, got %q", tt.trailing, last)
			}
			if tt.trailing == "" && strings.Contains(errOut.String(), "more)") {
				t.Fatalf("unexpected elision line:\n%s", errOut.String())
			}
		})
	}
}

func TestProblemsLineFormat(t *testing.T) {
	printer, _, errOut := newPrinter(0)
	printer.Problems([]Problem{{Path: "nested/a.srt", Err: errors.New("Unknown encoding: FOO")}})
	if got := errOut.String(); got != "  nested/a.srt -> Unknown encoding: FOO\n" {
		t.Fatalf("unexpected line %q", got)
	}
}

func TestDetectSummary(t *testing.T) {
	printer, out, errOut := newPrinter(0)
	result := detection.Result{
		Entries: []manifest.Entry{
			{Path: "a.srt", Encoding: "UTF-8"},
			{Path: "b.srt", Encoding: "windows-1251"},
			{Path: "c.srt", Encoding: "UTF-8"},
		},
		Failures: []detection.Failure{{Path: "/subs/d.srt", Err: errors.New("permission denied")}},
	}

	printer.ScanStarted(4)
	printer.DetectSummary(result)
	printer.ManifestWritten("/subs/encodings.json", result)

	stdout := out.String()
	for _, want := range []string{
		"Scanning 4 subtitle files...",
		"Detected encodings for 3 files.",
		"Wrote encoding results to /subs/encodings.json",
		"windows-1251",
	} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("stdout missing %q:\n%s", want, stdout)
		}
	}
	stderr := errOut.String()
	if !strings.Contains(stderr, "Encountered 1 IO errors") || !strings.Contains(stderr, "  /subs/d.srt -> permission denied") {
		t.Fatalf("unexpected stderr:\n%s", stderr)
	}
}

func TestTranscodeSummary(t *testing.T) {
	printer, out, errOut := newPrinter(0)
	printer.TranscodeStarted("/subs/encodings.json", 3)
	printer.TranscodeSummary(transcode.Tally{
		Transcoded: 1,
		Skipped:    1,
		Failures:   []transcode.Failure{{Path: "c.srt", Err: errors.New("Unknown encoding: FOO")}},
		BytesIn:    2048,
		BytesOut:   3072,
	})

	stdout := out.String()
	for _, want := range []string{
		"Loading encodings from /subs/encodings.json...",
		"Processing 3 files...",
		"Transcoding complete!",
		"Skipped (already UTF-8)",
		"2.0 kB",
		"3.1 kB",
	} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("stdout missing %q:\n%s", want, stdout)
		}
	}
	if strings.Contains(stdout, "Not started") {
		t.Fatalf("complete run must not list pending entries:\n%s", stdout)
	}
	if !strings.Contains(errOut.String(), "Encountered 1 errors:") || !strings.Contains(errOut.String(), "  c.srt -> Unknown encoding: FOO") {
		t.Fatalf("unexpected stderr:\n%s", errOut.String())
	}
}

func TestTranscodeSummaryInterrupted(t *testing.T) {
	printer, out, _ := newPrinter(0)
	printer.TranscodeSummary(transcode.Tally{Skipped: 2, Pending: 5})
	if !strings.Contains(out.String(), "Transcoding interrupted.") || !strings.Contains(out.String(), "Not started") {
		t.Fatalf("unexpected output:\n%s", out.String())
	}
}

func TestGridPadsShortRows(t *testing.T) {
	grid := NewGrid(Column{Title: "Encoding"}, Column{Title: "Files", Numeric: true})
	grid.Row("UTF-8", 12)
	grid.Row("shift_jis")
	rendered := grid.String()
	if grid.Len() != 2 || !strings.Contains(rendered, "Encoding") || !strings.Contains(rendered, "shift_jis") {
		t.Fatalf("unexpected table:\n%s", rendered)
	}
	if lines := strings.Split(rendered, "\n"); len(lines) != 6 {
		t.Fatalf("expected header, two rows and borders, got %d lines:\n%s", len(lines), rendered)
	}
}

func TestRunAndFailureTables(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	finished := now.Add(-time.Minute)
	runs := []history.Run{{
		ID:         "0123456789abcdef",
		Phase:      history.PhaseTranscode,
		Status:     history.StatusCompleted,
		StartedAt:  now.Add(-2 * time.Minute),
		FinishedAt: &finished,
		Counts:     history.Counts{Files: 3, Succeeded: 1, Skipped: 1, Failed: 1},
	}}
	rendered := RunTable(runs, now)
	for _, want := range []string{"transcode", "completed", "2 minutes ago", "1m0s"} {
		if !strings.Contains(rendered, want) {
			t.Fatalf("run table missing %q:\n%s", want, rendered)
		}
	}

	rendered = FailureTable([]history.Failure{{Path: "c.srt", Message: "Unknown encoding: FOO"}})
	if !strings.Contains(rendered, "c.srt") || !strings.Contains(rendered, "Unknown encoding: FOO") {
		t.Fatalf("unexpected failure table:\n%s", rendered)
	}
}

func TestProgressDisabledIsNoop(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, false, 10, "Detecting")
	p.Add()
	p.Close()
	if buf.Len() != 0 {
		t.Fatalf("disabled progress wrote %q", buf.String())
	}
	stop := StartSpinner(&buf, false, "Scanning")
	stop()
	if buf.Len() != 0 {
		t.Fatalf("disabled spinner wrote %q", buf.String())
	}
}

func TestProgressEnabledModes(t *testing.T) {
	var buf bytes.Buffer
	if !ProgressEnabled("always", &buf) {
		t.Fatal("always should enable progress")
	}
	if ProgressEnabled("never", &buf) {
		t.Fatal("never should disable progress")
	}
	if ProgressEnabled("auto", &buf) {
		t.Fatal("auto should be off for a non-terminal writer")
	}
}
