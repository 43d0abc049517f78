package store

import (
	"context"
	"fmt"

	"github.com/dvp2015/xpypact/internal/collector"
)

func loadRows[T any](ctx context.Context, s *Store, t table[T], where string, args ...any) ([]T, error) {
	rows, err := s.db.QueryContext(ctx, t.selectSQL(where), args...)
	if err != nil {
		return nil, fmt.Errorf("store: load %s: %w", t.name, err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var r T
		if err := rows.Scan(t.fields(&r)...); err != nil {
			return nil, fmt.Errorf("store: scan %s: %w", t.name, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate %s: %w", t.name, err)
	}
	return out, nil
}

// LoadRunData returns the rundata table.
func (s *Store) LoadRunData(ctx context.Context) ([]collector.RunDataRow, error) {
	return loadRows(ctx, s, runDataTable, "")
}

// LoadTimeStepTimes returns the shared time axis.
func (s *Store) LoadTimeStepTimes(ctx context.Context) ([]collector.TimeStepTimesRow, error) {
	return loadRows(ctx, s, timeStepTimesTable, "")
}

// LoadTimeSteps returns the timestep table.
func (s *Store) LoadTimeSteps(ctx context.Context) ([]collector.TimeStepRow, error) {
	return loadRows(ctx, s, timeStepTable, "")
}

// LoadNuclides returns the nuclide dictionary.
func (s *Store) LoadNuclides(ctx context.Context) ([]collector.NuclideRow, error) {
	return loadRows(ctx, s, nuclideTable, "")
}

// LoadTimeStepNuclides returns the timestep_nuclide table.
func (s *Store) LoadTimeStepNuclides(ctx context.Context) ([]collector.TimeStepNuclideRow, error) {
	return loadRows(ctx, s, timeStepNuclideTable, "")
}

// LoadGBins returns the gamma bin boundaries.
func (s *Store) LoadGBins(ctx context.Context) ([]collector.GBinsRow, error) {
	return loadRows(ctx, s, gbinsTable, "")
}

// LoadGamma returns the gamma rates, photon/s, of all the time steps or of
// the given time step only.
func (s *Store) LoadGamma(ctx context.Context, timeStepNumber *uint32) ([]collector.TimeStepGammaRow, error) {
	if timeStepNumber != nil {
		return loadRows(ctx, s, timeStepGammaTable, "time_step_number = ?", *timeStepNumber)
	}
	return loadRows(ctx, s, timeStepGammaTable, "")
}

// LoadResult reads all the tables back into a Result.
func (s *Store) LoadResult(ctx context.Context) (*collector.Result, error) {
	var r collector.Result
	var err error
	if r.RunData, err = s.LoadRunData(ctx); err != nil {
		return nil, err
	}
	if r.TimeStepTimes, err = s.LoadTimeStepTimes(ctx); err != nil {
		return nil, err
	}
	if r.TimeSteps, err = s.LoadTimeSteps(ctx); err != nil {
		return nil, err
	}
	if r.Nuclides, err = s.LoadNuclides(ctx); err != nil {
		return nil, err
	}
	if r.TimeStepNuclides, err = s.LoadTimeStepNuclides(ctx); err != nil {
		return nil, err
	}
	if r.GBins, err = s.LoadGBins(ctx); err != nil {
		return nil, err
	}
	if r.TimeStepGamma, err = s.LoadGamma(ctx, nil); err != nil {
		return nil, err
	}
	return &r, nil
}
