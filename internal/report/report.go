package report

import (
	"fmt"
	"io"

	"subenc/internal/detection"
	"subenc/internal/transcode"
)

// DefaultSample is the number of errors listed before the rest are elided.
const DefaultSample = 10

// Problem is one failed unit shown in an error sample.
type Problem struct {
	Path string
	Err  error
}

// Printer writes phase summaries.
type Printer struct {
	Out io.Writer
	Err io.Writer
	// Sample caps listed errors; zero or less uses DefaultSample.
	Sample int
}

func (p Printer) sample() int {
	if p.Sample > 0 {
		return p.Sample
	}
	return DefaultSample
}

// ScanStarted announces the detect phase.
func (p Printer) ScanStarted(files int) {
	fmt.Fprintf(p.Out, "Scanning %d subtitle files...\n", files)
}

// DiscoverySkipped warns about directories that could not be walked.
func (p Printer) DiscoverySkipped(problems []Problem) {
	if len(problems) == 0 {
		return
	}
	fmt.Fprintf(p.Err, "Skipped %d unreadable directories.\n", len(problems))
	p.Problems(problems)
}

// DetectSummary reports a finished detection run.
func (p Printer) DetectSummary(result detection.Result) {
	fmt.Fprintf(p.Out, "Detected encodings for %d files.\n", len(result.Entries))
	if len(result.Failures) > 0 {
		fmt.Fprintf(p.Err, "Encountered %d IO errors while reading subtitle files.\n", len(result.Failures))
		problems := make([]Problem, 0, len(result.Failures))
		for _, f := range result.Failures {
			problems = append(problems, Problem(f))
		}
		p.Problems(problems)
	}
	if result.Pending > 0 {
		fmt.Fprintf(p.Err, "Interrupted: %d files were not examined.\n", result.Pending)
	}
}

// ManifestWritten reports where the manifest went and what it contains.
func (p Printer) ManifestWritten(path string, result detection.Result) {
	fmt.Fprintf(p.Out, "Wrote encoding results to %s\n", path)
	histogram := result.Histogram()
	if len(histogram) == 0 {
		return
	}
	fmt.Fprintln(p.Out, EncodingTable(histogram))
}

// TranscodeStarted announces the transcode phase.
func (p Printer) TranscodeStarted(manifestPath string, entries int) {
	fmt.Fprintf(p.Out, "Loading encodings from %s...\n", manifestPath)
	fmt.Fprintf(p.Out, "Processing %d files...\n", entries)
}

// TranscodeSummary reports the folded tally of a transcode run.
func (p Printer) TranscodeSummary(tally transcode.Tally) {
	if tally.Pending > 0 {
		fmt.Fprintf(p.Out, "\nTranscoding interrupted.\n")
	} else {
		fmt.Fprintf(p.Out, "\nTranscoding complete!\n")
	}

	fmt.Fprintln(p.Out, TallyTable(tally))

	if len(tally.Failures) > 0 {
		fmt.Fprintf(p.Err, "\nEncountered %d errors:\n", len(tally.Failures))
		problems := make([]Problem, 0, len(tally.Failures))
		for _, f := range tally.Failures {
			problems = append(problems, Problem(f))
		}
		p.Problems(problems)
	}
}

// Problems lists the first Sample problems as "  <path> -> <error>" and
// summarizes the rest as "  ... (K more)".
func (p Printer) Problems(problems []Problem) {
	limit := p.sample()
	for i, problem := range problems {
		if i == limit {
			fmt.Fprintf(p.Err, "  ... (%d more)\n", len(problems)-limit)
			return
		}
		fmt.Fprintf(p.Err, "  %s -> %v\n", problem.Path, problem.Err)
	}
}
