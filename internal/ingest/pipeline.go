package ingest

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dvp2015/xpypact/internal/collector"
	"github.com/dvp2015/xpypact/internal/inventory"
	"github.com/dvp2015/xpypact/internal/logging"
	"github.com/dvp2015/xpypact/internal/metrics"
	"github.com/dvp2015/xpypact/internal/telemetry"
)

// ErrNoCollector is returned by Run and Watch on a Pipeline without a Collector.
var ErrNoCollector = errors.New("ingest: pipeline has no collector")

// JobError is a job that failed to load or append.
type JobError struct {
	Job Job
	Err error
}

// Error implements error.
func (e JobError) Error() string {
	return fmt.Sprintf("%s (material %d, case %d): %v", e.Job.Path, e.Job.MaterialID, e.Job.CaseID, e.Err)
}

// Unwrap returns the load or append error.
func (e JobError) Unwrap() error {
	return e.Err
}

// Report summarizes a pipeline run.
type Report struct {
	Appended int
	Failed   []JobError
}

// Pipeline loads inventory files and appends them to Collector.
// Logger, Emitter and Metrics are optional.
type Pipeline struct {
	Collector *collector.Collector
	Workers   int
	Logger    *logging.Logger
	Emitter   *telemetry.Emitter
	Metrics   *metrics.Metrics
	// StopOnError cancels the remaining jobs after the first failure.
	StopOnError bool
	// Options are passed to inventory.LoadFile.
	Options []inventory.Option
}

// Run processes jobs with at most Workers files in flight. Failed jobs are
// collected in the report; the returned error is non-nil only when the run
// was cancelled or StopOnError tripped.
func (p *Pipeline) Run(ctx context.Context, jobs []Job) (Report, error) {
	if p.Collector == nil {
		return Report{}, ErrNoCollector
	}
	var (
		mu     sync.Mutex
		report Report
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(p.Workers, 1))
	for _, job := range jobs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			err := p.process(job)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				je := JobError{Job: job, Err: err}
				report.Failed = append(report.Failed, je)
				if p.StopOnError {
					return je
				}
				return nil
			}
			report.Appended++
			return nil
		})
	}
	err := g.Wait()
	slices.SortFunc(report.Failed, func(a, b JobError) int {
		return cmp.Compare(a.Job.Path, b.Job.Path)
	})
	if err == nil {
		err = ctx.Err()
	}
	return report, err
}

func (p *Pipeline) process(job Job) error {
	log := p.Logger.With("path", job.Path, "material_id", job.MaterialID, "case_id", job.CaseID)
	start := time.Now()
	inv, err := inventory.LoadFile(job.Path, p.Options...)
	if err != nil {
		p.fail(log, job, err)
		return err
	}
	elapsed := time.Since(start)
	_ = p.Emitter.Record(telemetry.KindInventoryLoaded, job.Path, map[string]any{
		"time_steps": inv.Len(),
		"elapsed_ms": elapsed.Milliseconds(),
	})
	if _, err := p.Collector.Append(inv, job.MaterialID, job.CaseID); err != nil {
		p.fail(log, job, err)
		return err
	}
	nuclideRows, gammaRows := rowCounts(inv)
	p.Metrics.Appended(inv.Len(), nuclideRows, gammaRows, elapsed)
	_ = p.Emitter.Record(telemetry.KindInventoryAppended, job.Path, map[string]any{
		"material_id": job.MaterialID,
		"case_id":     job.CaseID,
		"nuclides":    nuclideRows,
	})
	log.Debug("inventory appended", "time_steps", inv.Len(), "nuclides", nuclideRows)
	return nil
}

func (p *Pipeline) fail(log *logging.Logger, job Job, err error) {
	log.Warn("inventory skipped", "err", err)
	p.Metrics.Failed()
	_ = p.Emitter.Record(telemetry.KindAppendFailed, job.Path, map[string]any{
		"material_id": job.MaterialID,
		"case_id":     job.CaseID,
		"err":         err.Error(),
	})
}

// rowCounts returns the timestep_nuclide and timestep_gamma rows an
// inventory contributes. Gamma rows come from the last step only.
func rowCounts(inv *inventory.Inventory) (nuclides, gamma int) {
	for _, ts := range inv.All() {
		nuclides += len(ts.Nuclides)
	}
	if g := inv.Last().GammaSpectrum; g != nil {
		gamma = g.Len()
	}
	return nuclides, gamma
}

// Watch appends every file w reports, assigning case ids from firstCaseID
// upwards, until ctx is done. It stops w before returning. A path already
// appended is not appended again.
func (p *Pipeline) Watch(ctx context.Context, w *Watcher, materialID, firstCaseID uint32) (Report, error) {
	defer w.Stop()
	if p.Collector == nil {
		return Report{}, ErrNoCollector
	}
	var report Report
	seen := make(map[string]bool)
	next := firstCaseID
	for {
		select {
		case <-ctx.Done():
			return report, nil
		case path, ok := <-w.Files:
			if !ok {
				return report, nil
			}
			if seen[path] {
				continue
			}
			seen[path] = true
			_ = p.Emitter.Record(telemetry.KindFileDetected, path, nil)
			job := Job{Path: path, MaterialID: materialID, CaseID: next}
			next++
			if err := p.process(job); err != nil {
				report.Failed = append(report.Failed, JobError{Job: job, Err: err})
				if p.StopOnError {
					return report, JobError{Job: job, Err: err}
				}
				continue
			}
			report.Appended++
		}
	}
}
