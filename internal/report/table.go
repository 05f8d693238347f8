package report

import (
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"subenc/internal/detection"
	"subenc/internal/history"
	"subenc/internal/transcode"
)

// Column is one column of a summary grid. Numeric columns are right aligned.
type Column struct {
	Title   string
	Numeric bool
}

// Grid collects rows under fixed columns and renders them with rounded
// borders.
type Grid struct {
	columns []Column
	tw      table.Writer
	rows    int
}

// NewGrid starts a grid with the given columns.
func NewGrid(columns ...Column) *Grid {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, 0, len(columns))
	configs := make([]table.ColumnConfig, 0, len(columns))
	for i, col := range columns {
		header = append(header, col.Title)
		if col.Numeric {
			configs = append(configs, table.ColumnConfig{Number: i + 1, Align: text.AlignRight, AlignHeader: text.AlignLeft})
		}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)
	return &Grid{columns: columns, tw: tw}
}

// Row appends one row. Missing trailing cells render empty; extra cells are
// dropped.
func (g *Grid) Row(cells ...any) {
	row := make(table.Row, len(g.columns))
	for i := range row {
		row[i] = ""
		if i < len(cells) {
			row[i] = cells[i]
		}
	}
	g.tw.AppendRow(row)
	g.rows++
}

// Len reports how many rows were added.
func (g *Grid) Len() int { return g.rows }

func (g *Grid) String() string {
	return g.tw.Render()
}

// EncodingTable renders the per-label file counts of a detect run.
func EncodingTable(histogram []detection.LabelCount) string {
	grid := NewGrid(Column{Title: "Encoding"}, Column{Title: "Files", Numeric: true})
	for _, row := range histogram {
		grid.Row(row.Encoding, row.Files)
	}
	return grid.String()
}

// TallyTable renders the outcome counts of a transcode run. Rows that would
// read zero for an optional outcome are left out.
func TallyTable(tally transcode.Tally) string {
	grid := NewGrid(Column{Title: "Result"}, Column{Title: "Count", Numeric: true})
	grid.Row("Transcoded", tally.Transcoded)
	grid.Row("Skipped (already UTF-8)", tally.Skipped)
	grid.Row("Errors", len(tally.Failures))
	optional := []struct {
		label string
		n     int
	}{
		{"Replaced characters", len(tally.Replaced)},
		{"Duplicate entries", tally.Duplicates},
		{"Not started", tally.Pending},
	}
	for _, o := range optional {
		if o.n > 0 {
			grid.Row(o.label, o.n)
		}
	}
	if tally.Transcoded > 0 {
		grid.Row("Bytes read", humanize.Bytes(uint64(tally.BytesIn)))
		grid.Row("Bytes written", humanize.Bytes(uint64(tally.BytesOut)))
	}
	return grid.String()
}

// RunTable lists recorded runs, newest first as given. Start times are shown
// relative to now.
func RunTable(runs []history.Run, now time.Time) string {
	grid := NewGrid(
		Column{Title: "ID"},
		Column{Title: "Phase"},
		Column{Title: "Status"},
		Column{Title: "Started"},
		Column{Title: "Duration", Numeric: true},
		Column{Title: "Files", Numeric: true},
		Column{Title: "OK", Numeric: true},
		Column{Title: "Skipped", Numeric: true},
		Column{Title: "Failed", Numeric: true},
		Column{Title: "Pending", Numeric: true},
	)
	for _, run := range runs {
		duration := "-"
		if run.FinishedAt != nil {
			duration = run.Duration().Round(time.Millisecond).String()
		}
		grid.Row(
			run.ShortID(),
			string(run.Phase),
			string(run.Status),
			humanize.RelTime(run.StartedAt, now, "ago", "from now"),
			duration,
			run.Files,
			run.Succeeded,
			run.Skipped,
			run.Failed,
			run.Pending,
		)
	}
	return grid.String()
}

// FailureTable lists the per-file failures recorded for one run.
func FailureTable(failures []history.Failure) string {
	grid := NewGrid(Column{Title: "#", Numeric: true}, Column{Title: "Path"}, Column{Title: "Error"})
	for i, f := range failures {
		grid.Row(i+1, f.Path, f.Message)
	}
	return grid.String()
}
