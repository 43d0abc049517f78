// Package ui prints human-readable progress and summaries for the CLI.
package ui

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/dvp2015/xpypact/internal/ansi"
	"github.com/dvp2015/xpypact/internal/collector"
	"github.com/dvp2015/xpypact/internal/ingest"
	"github.com/dvp2015/xpypact/internal/store"
)

// Printer writes colored output, to stderr unless created with NewWriter.
type Printer struct {
	out io.Writer
}

// New returns a Printer writing to os.Stderr.
func New() *Printer {
	return &Printer{out: os.Stderr}
}

// NewWriter returns a Printer writing to w.
func NewWriter(w io.Writer) *Printer {
	return &Printer{out: w}
}

// Error prints msg as an error line.
func (p *Printer) Error(msg string) {
	fmt.Fprintf(p.out, ansi.Red+ansi.Bold+"error: "+ansi.Reset+"%s\n", msg)
}

// Info prints msg dimmed.
func (p *Printer) Info(msg string) {
	fmt.Fprintf(p.out, ansi.Dim+"%s"+ansi.Reset+"\n", msg)
}

// Collecting announces the start of a collect run.
func (p *Printer) Collecting(jobs, workers int) {
	fmt.Fprintf(p.out, ansi.Bold+ansi.Cyan+"▶ collecting"+ansi.Reset+" %s file(s) "+ansi.Dim+"(%d workers)"+ansi.Reset+"\n",
		humanize.Comma(int64(jobs)), workers)
}

// Watching announces a watch run on dir.
func (p *Printer) Watching(dir string) {
	fmt.Fprintf(p.out, ansi.Bold+ansi.Cyan+"▶ watching"+ansi.Reset+" %s "+ansi.Dim+"(interrupt to save)"+ansi.Reset+"\n", dir)
}

// Failures lists the jobs that could not be appended.
func (p *Printer) Failures(failed []ingest.JobError) {
	if len(failed) == 0 {
		return
	}
	fmt.Fprintf(p.out, ansi.Yellow+ansi.Bold+"⚠ %d file(s) skipped"+ansi.Reset+"\n", len(failed))
	for _, f := range failed {
		fmt.Fprintf(p.out, "  "+ansi.Yellow+"• "+ansi.Reset+"%s\n", f.Error())
	}
}

// Summary is the data shown after a collect or watch run.
type Summary struct {
	Report  ingest.Report
	Counts  collector.Counts
	Elapsed time.Duration
}

// CollectSummary prints row counts and timing for a finished run.
func (p *Printer) CollectSummary(s Summary) {
	color := ansi.Green
	mark := "✓"
	if len(s.Report.Failed) > 0 {
		color, mark = ansi.Yellow, "⚠"
	}
	fmt.Fprintf(p.out, color+ansi.Bold+"%s collected %s inventor%s"+ansi.Reset+ansi.Dim+" in %s"+ansi.Reset+"\n",
		mark, humanize.Comma(int64(s.Report.Appended)), plural(s.Report.Appended, "y", "ies"),
		s.Elapsed.Round(time.Millisecond))
	rows := []struct {
		label string
		n     int
	}{
		{"time steps", s.Counts.TimeSteps},
		{"nuclides", s.Counts.Nuclides},
		{"timestep nuclides", s.Counts.TimeStepNuclides},
		{"gamma rows", s.Counts.TimeStepGamma},
	}
	for _, r := range rows {
		fmt.Fprintf(p.out, "  %-18s %s\n", r.label+":", humanize.Comma(int64(r.n)))
	}
	if n := len(s.Report.Failed); n > 0 {
		fmt.Fprintf(p.out, "  %-18s "+ansi.Yellow+"%d"+ansi.Reset+"\n", "failed:", n)
	}
}

// Saved reports a written output and its size on disk.
func (p *Printer) Saved(target, path string) {
	size := "?"
	if info, err := os.Stat(path); err == nil {
		size = humanize.Bytes(uint64(info.Size()))
		if info.IsDir() {
			size = "dir"
		}
	}
	fmt.Fprintf(p.out, ansi.Green+"◆ saved"+ansi.Reset+" %s %s "+ansi.Dim+"(%s)"+ansi.Reset+"\n", target, path, size)
}

// Tables prints store tables with their row counts.
func (p *Printer) Tables(path string, tables []store.TableInfo) {
	fmt.Fprintf(p.out, ansi.Bold+"%s"+ansi.Reset+"\n", path)
	if len(tables) == 0 {
		fmt.Fprintln(p.out, ansi.Dim+"  (no tables)"+ansi.Reset)
		return
	}
	for _, t := range tables {
		fmt.Fprintf(p.out, "  %-18s %s\n", t.Name, humanize.Comma(t.Rows))
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
