package cmd

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/dvp2015/xpypact/internal/collector"
	"github.com/dvp2015/xpypact/internal/ingest"
	"github.com/dvp2015/xpypact/internal/ui"
)

var watchCmd = &cobra.Command{
	Use:   "watch DIR",
	Short: "Collect inventory files as they appear in a directory",
	Long: `Watches DIR for new *.json and *.json.bz2 files and appends each one to
the collection as the next case of --material. Files already present are
collected first. On interrupt the collection is saved like collect does.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().Uint32("material", 1, "material id of the collected cases")
	watchCmd.Flags().Uint32("first-case", 1, "case id of the first collected file")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	dir := args[0]
	material, _ := cmd.Flags().GetUint32("material")
	firstCase, _ := cmd.Flags().GetUint32("first-case")

	w, err := ingest.NewWatcher(dir)
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		w.Stop()
		return err
	}

	ctx, cancel := setupSignalContext(cmd.Context(), s.printer)
	defer cancel()

	c := collector.New()
	p := s.pipeline(c)

	// Files written before the watcher started are collected up front.
	var report ingest.Report
	if existing, err := ingest.ExpandInputs(existingInputs(dir), material); err == nil {
		for i := range existing {
			existing[i].CaseID += firstCase - 1
		}
		report, err = p.Run(ctx, existing)
		if err != nil && !errors.Is(err, context.Canceled) {
			w.Stop()
			return err
		}
		firstCase += uint32(len(existing))
	}

	s.printer.Watching(dir)
	watched, err := p.Watch(ctx, w, material, firstCase)
	report.Appended += watched.Appended
	report.Failed = append(report.Failed, watched.Failed...)
	s.printer.Failures(report.Failed)
	if err != nil {
		return err
	}
	s.printer.CollectSummary(ui.Summary{
		Report:  report,
		Counts:  c.Counts(),
		Elapsed: time.Since(s.started),
	})
	if report.Appended == 0 {
		return errNothingCollected
	}
	// The signal context is done; saving must not be cancelled with it.
	return s.save(cmd.Context(), c.Result())
}

func existingInputs(dir string) []string {
	return []string{
		filepath.Join(dir, "*.json"),
		filepath.Join(dir, "*.json.bz2"),
	}
}
