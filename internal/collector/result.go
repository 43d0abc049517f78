package collector

import (
	"cmp"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/dvp2015/xpypact/internal/columnar"
)

// Result is an immutable snapshot of a collection. GBins and TimeStepGamma
// are nil when no gamma spectra were collected. Gamma rates are photon/s.
type Result struct {
	RunData          []RunDataRow
	TimeStepTimes    []TimeStepTimesRow
	TimeSteps        []TimeStepRow
	Nuclides         []NuclideRow
	TimeStepNuclides []TimeStepNuclideRow
	GBins            []GBinsRow
	TimeStepGamma    []TimeStepGammaRow
}

// TableNames lists the tables of a Result in save order.
func TableNames() []string {
	return []string{
		TableRunData,
		TableTimeStepTimes,
		TableTimeStep,
		TableNuclide,
		TableTimeStepNuclide,
		TableGBins,
		TableTimeStepGamma,
	}
}

func (r *Result) sort() {
	slices.SortFunc(r.RunData, func(a, b RunDataRow) int {
		return compareCase(a.MaterialID, a.CaseID, b.MaterialID, b.CaseID)
	})
	slices.SortFunc(r.TimeStepTimes, func(a, b TimeStepTimesRow) int {
		return cmp.Compare(a.TimeStepNumber, b.TimeStepNumber)
	})
	slices.SortFunc(r.TimeSteps, func(a, b TimeStepRow) int {
		return cmp.Or(
			compareCase(a.MaterialID, a.CaseID, b.MaterialID, b.CaseID),
			cmp.Compare(a.TimeStepNumber, b.TimeStepNumber),
		)
	})
	slices.SortFunc(r.Nuclides, func(a, b NuclideRow) int {
		return cmp.Compare(a.ZAI, b.ZAI)
	})
	slices.SortFunc(r.TimeStepNuclides, func(a, b TimeStepNuclideRow) int {
		return cmp.Or(
			compareCase(a.MaterialID, a.CaseID, b.MaterialID, b.CaseID),
			cmp.Compare(a.TimeStepNumber, b.TimeStepNumber),
			cmp.Compare(a.ZAI, b.ZAI),
		)
	})
	slices.SortFunc(r.GBins, func(a, b GBinsRow) int {
		return cmp.Compare(a.G, b.G)
	})
	slices.SortFunc(r.TimeStepGamma, compareGamma)
}

func compareCase(m1, c1, m2, c2 uint32) int {
	return cmp.Or(cmp.Compare(m1, m2), cmp.Compare(c1, c2))
}

func compareGamma(a, b TimeStepGammaRow) int {
	return cmp.Or(
		compareCase(a.MaterialID, a.CaseID, b.MaterialID, b.CaseID),
		cmp.Compare(a.TimeStepNumber, b.TimeStepNumber),
		cmp.Compare(a.G, b.G),
	)
}

// SaveToParquets writes each table to dir/<table>.parquet. Nil tables are
// skipped. Unless override is set, nothing is written if any target exists.
func (r *Result) SaveToParquets(dir string, override bool) error {
	if err := r.checkWritable(dir, false, override); err != nil {
		return err
	}
	writes := []func() error{
		func() error { return columnar.WriteTable(dir, TableRunData, r.RunData, override) },
		func() error { return columnar.WriteTable(dir, TableTimeStepTimes, r.TimeStepTimes, override) },
		func() error { return columnar.WriteTable(dir, TableTimeStep, r.TimeSteps, override) },
		func() error { return columnar.WriteTable(dir, TableNuclide, r.Nuclides, override) },
		func() error { return columnar.WriteTable(dir, TableTimeStepNuclide, r.TimeStepNuclides, override) },
	}
	if r.GBins != nil {
		writes = append(writes,
			func() error { return columnar.WriteTable(dir, TableGBins, r.GBins, override) },
			func() error { return columnar.WriteTable(dir, TableTimeStepGamma, r.TimeStepGamma, override) },
		)
	}
	for _, w := range writes {
		if err := w(); err != nil {
			return fmt.Errorf("collector: save: %w", err)
		}
	}
	return nil
}

// isPartitioned reports whether a table is split by material and case.
func isPartitioned(table string) bool {
	switch table {
	case TableRunData, TableTimeStep, TableTimeStepNuclide, TableTimeStepGamma:
		return true
	}
	return false
}

// SavePartitioned writes the per-case tables to
// root/material_id=<m>/case_id=<c>/<table>.parquet and the shared tables
// (timestep_times, nuclide, gbins) to root.
func (r *Result) SavePartitioned(root string, override bool) error {
	if err := r.checkWritable(root, true, override); err != nil {
		return err
	}
	writes := []func() error{
		func() error {
			return columnar.WritePartitioned(root, TableRunData, r.RunData, (*RunDataRow).partition, override)
		},
		func() error { return columnar.WriteTable(root, TableTimeStepTimes, r.TimeStepTimes, override) },
		func() error {
			return columnar.WritePartitioned(root, TableTimeStep, r.TimeSteps, (*TimeStepRow).partition, override)
		},
		func() error { return columnar.WriteTable(root, TableNuclide, r.Nuclides, override) },
		func() error {
			return columnar.WritePartitioned(root, TableTimeStepNuclide, r.TimeStepNuclides, (*TimeStepNuclideRow).partition, override)
		},
	}
	if r.GBins != nil {
		writes = append(writes,
			func() error { return columnar.WriteTable(root, TableGBins, r.GBins, override) },
			func() error {
				return columnar.WritePartitioned(root, TableTimeStepGamma, r.TimeStepGamma, (*TimeStepGammaRow).partition, override)
			},
		)
	}
	for _, w := range writes {
		if err := w(); err != nil {
			return fmt.Errorf("collector: save partitioned: %w", err)
		}
	}
	return nil
}

// checkWritable verifies all the target files before anything is written.
func (r *Result) checkWritable(root string, partitioned, override bool) error {
	if override {
		return nil
	}
	for _, table := range TableNames() {
		if (table == TableGBins || table == TableTimeStepGamma) && r.GBins == nil {
			continue
		}
		paths := []string{columnar.TablePath(root, table)}
		if partitioned && isPartitioned(table) {
			paths = paths[:0]
			for _, p := range r.partitions() {
				paths = append(paths, columnar.TablePath(p.Dir(root), table))
			}
		}
		for _, path := range paths {
			if err := columnar.CheckWritable(path, false); err != nil {
				return fmt.Errorf("collector: save: %w", err)
			}
		}
	}
	return nil
}

func (r *Result) partitions() []columnar.Partition {
	out := make([]columnar.Partition, len(r.RunData))
	for i := range r.RunData {
		out[i] = r.RunData[i].partition()
	}
	return out
}

// LoadResultFromParquets reads a Result saved by SaveToParquets or
// SavePartitioned under root.
func LoadResultFromParquets(root string) (*Result, error) {
	var r Result
	var err error
	pattern := func(table string) string {
		return filepath.Join(root, "**", table+columnar.Ext)
	}
	if r.RunData, err = columnar.ReadGlob[RunDataRow](pattern(TableRunData)); err != nil {
		return nil, fmt.Errorf("collector: load: %w", err)
	}
	if r.TimeStepTimes, err = columnar.ReadGlob[TimeStepTimesRow](pattern(TableTimeStepTimes)); err != nil {
		return nil, fmt.Errorf("collector: load: %w", err)
	}
	if r.TimeSteps, err = columnar.ReadGlob[TimeStepRow](pattern(TableTimeStep)); err != nil {
		return nil, fmt.Errorf("collector: load: %w", err)
	}
	if r.Nuclides, err = columnar.ReadGlob[NuclideRow](pattern(TableNuclide)); err != nil {
		return nil, fmt.Errorf("collector: load: %w", err)
	}
	if r.TimeStepNuclides, err = columnar.ReadGlob[TimeStepNuclideRow](pattern(TableTimeStepNuclide)); err != nil {
		return nil, fmt.Errorf("collector: load: %w", err)
	}
	if r.GBins, err = columnar.ReadGlob[GBinsRow](pattern(TableGBins)); err != nil {
		return nil, fmt.Errorf("collector: load: %w", err)
	}
	if r.TimeStepGamma, err = columnar.ReadGlob[TimeStepGammaRow](pattern(TableTimeStepGamma)); err != nil {
		return nil, fmt.Errorf("collector: load: %w", err)
	}
	if len(r.RunData) == 0 {
		return nil, fmt.Errorf("collector: load: no %s table under %s", TableRunData, root)
	}
	if len(r.GBins) == 0 {
		r.GBins, r.TimeStepGamma = nil, nil
	}
	r.sort()
	return &r, nil
}

func (row *RunDataRow) partition() columnar.Partition {
	return columnar.Partition{MaterialID: row.MaterialID, CaseID: row.CaseID}
}

func (row *TimeStepRow) partition() columnar.Partition {
	return columnar.Partition{MaterialID: row.MaterialID, CaseID: row.CaseID}
}

func (row *TimeStepNuclideRow) partition() columnar.Partition {
	return columnar.Partition{MaterialID: row.MaterialID, CaseID: row.CaseID}
}

func (row *TimeStepGammaRow) partition() columnar.Partition {
	return columnar.Partition{MaterialID: row.MaterialID, CaseID: row.CaseID}
}
