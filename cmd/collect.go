package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dvp2015/xpypact/internal/collector"
	"github.com/dvp2015/xpypact/internal/ingest"
	"github.com/dvp2015/xpypact/internal/inventory"
	"github.com/dvp2015/xpypact/internal/ui"
)

var errNothingCollected = errors.New("no inventories collected")

var collectCmd = &cobra.Command{
	Use:   "collect [inputs...]",
	Short: "Collect inventory JSON files into Parquet and SQLite",
	Long: `Loads FISPACT-II JSON inventories and collects them into normalized tables.

Inputs are glob patterns (doublestar syntax, e.g. "runs/**/*.json"); matched
files get case ids 1..N in path order under --material. A TOML manifest
(--manifest) lists cases explicitly:

  [[case]]
  path = "ag-1.json"
  material_id = 1
  case_id = 1

Files compressed with bzip2 (.json.bz2) are read transparently.`,
	RunE: runCollect,
}

func init() {
	collectCmd.Flags().String("manifest", "", "TOML case manifest")
	collectCmd.Flags().Uint32("material", 1, "material id for inputs given as arguments")
	collectCmd.Flags().Bool("strict", false, "stop at the first file that fails")
	collectCmd.Flags().Bool("trust-zai", false, "keep ZAI values from input even if inconsistent")
	rootCmd.AddCommand(collectCmd)
}

func runCollect(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	jobs, err := collectJobs(cmd, args)
	if err != nil {
		return err
	}

	ctx, cancel := setupSignalContext(cmd.Context(), s.printer)
	defer cancel()

	c := collector.New()
	p := s.pipeline(c)
	p.StopOnError, _ = cmd.Flags().GetBool("strict")
	if trust, _ := cmd.Flags().GetBool("trust-zai"); trust {
		p.Options = append(p.Options, inventory.WithZAIPolicy(inventory.ZAITrustInput))
	}

	s.printer.Collecting(len(jobs), s.cfg.Workers)
	report, err := p.Run(ctx, jobs)
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
	return s.save(ctx, c.Result())
}

// collectJobs merges manifest cases with inputs given as arguments.
func collectJobs(cmd *cobra.Command, args []string) ([]ingest.Job, error) {
	var jobs []ingest.Job
	if manifest, _ := cmd.Flags().GetString("manifest"); manifest != "" {
		m, err := ingest.LoadManifest(manifest)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, m...)
	}
	if len(args) > 0 {
		material, _ := cmd.Flags().GetUint32("material")
		expanded, err := ingest.ExpandInputs(args, material)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, expanded...)
	}
	if len(jobs) == 0 {
		return nil, fmt.Errorf("%w: give input patterns or --manifest", ingest.ErrNoInputs)
	}
	return jobs, nil
}
