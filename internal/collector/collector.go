// Package collector merges many inventories, each keyed by a material and
// case id, into normalized tables: run data, time steps, a global nuclide
// dictionary, time step nuclides and time step gamma spectra.
//
// A Collector is safe for concurrent Append calls. Each Append is atomic:
// an inventory that fails validation leaves no rows behind.
package collector

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/dvp2015/xpypact/internal/inventory"
)

// TimestampLayout is the FISPACT run timestamp format, e.g. "23:01:19 12 July 2020".
const TimestampLayout = "15:04:05 2 January 2006"

// distancePrecision is the number of decimals kept of a dose rate distance.
const distancePrecision = 5

// Sentinel errors for collection failures.
var (
	// ErrGammaBoundariesMismatch indicates gamma bins differing from the ones
	// collected first. A collection supports a single gamma group structure.
	ErrGammaBoundariesMismatch = errors.New("gamma boundaries differ from the collected ones")
	// ErrInvalidTimestamp indicates a run timestamp not in TimestampLayout.
	ErrInvalidTimestamp = errors.New("invalid run timestamp")
	// ErrDuplicateCase indicates a second inventory under the same material and case.
	ErrDuplicateCase = errors.New("material and case already collected")
)

type caseKey struct {
	materialID, caseID uint32
}

// Collector accumulates inventories. The zero value is not usable; use New.
type Collector struct {
	mu               sync.Mutex
	nuclides         *nuclideSet
	cases            map[caseKey]struct{}
	rundata          []RunDataRow
	timesteps        []TimeStepRow
	timestepNuclides []TimeStepNuclideRow
	timestepGamma    []TimeStepGammaRow
	gbins            []float64
}

// New returns an empty Collector.
func New() *Collector {
	return &Collector{
		nuclides: newNuclideSet(),
		cases:    make(map[caseKey]struct{}),
	}
}

// batch holds the rows of one inventory before they are merged.
type batch struct {
	rundata          RunDataRow
	timesteps        []TimeStepRow
	timestepNuclides []TimeStepNuclideRow
	timestepGamma    []TimeStepGammaRow
	boundaries       []float64
}

// Append adds inv under (materialID, caseID) and returns c for chaining.
// Gamma spectra are collected only when the last time step has one, and
// every step carrying a spectrum must use the boundaries of the last.
func (c *Collector) Append(inv *inventory.Inventory, materialID, caseID uint32) (*Collector, error) {
	b, err := newBatch(inv, materialID, caseID)
	if err != nil {
		return c, fmt.Errorf("collector: material %d case %d: %w", materialID, caseID, err)
	}
	nuclides := inv.ExtractNuclides()

	c.mu.Lock()
	defer c.mu.Unlock()

	key := caseKey{materialID, caseID}
	if _, ok := c.cases[key]; ok {
		return c, fmt.Errorf("collector: material %d case %d: %w", materialID, caseID, ErrDuplicateCase)
	}
	if b.boundaries != nil && c.gbins != nil && !slices.Equal(c.gbins, b.boundaries) {
		return c, fmt.Errorf("collector: material %d case %d: %w", materialID, caseID, ErrGammaBoundariesMismatch)
	}

	if b.boundaries != nil && c.gbins == nil {
		c.gbins = slices.Clone(b.boundaries)
	}
	c.cases[key] = struct{}{}
	c.nuclides.update(nuclides)
	c.rundata = append(c.rundata, b.rundata)
	c.timesteps = append(c.timesteps, b.timesteps...)
	c.timestepNuclides = append(c.timestepNuclides, b.timestepNuclides...)
	c.timestepGamma = append(c.timestepGamma, b.timestepGamma...)
	return c, nil
}

func newBatch(inv *inventory.Inventory, materialID, caseID uint32) (*batch, error) {
	meta := inv.MetaInfo()
	ts, err := ParseTimestamp(meta.Timestamp)
	if err != nil {
		return nil, err
	}
	b := &batch{
		rundata: RunDataRow{
			MaterialID:       materialID,
			CaseID:           caseID,
			Timestamp:        ts,
			RunName:          meta.RunName,
			FluxName:         meta.FluxName,
			DoseRateType:     meta.DoseRateType,
			DoseRateDistance: roundTo(meta.DoseRateDistance, distancePrecision),
		},
		timesteps: make([]TimeStepRow, 0, inv.Len()),
	}
	for _, step := range inv.All() {
		b.timesteps = append(b.timesteps, timeStepRow(step, materialID, caseID))
	}
	for rec := range inv.TimeStepNuclides() {
		b.timestepNuclides = append(b.timestepNuclides, timeStepNuclideRow(rec, materialID, caseID))
	}
	if gs := inv.Last().GammaSpectrum; gs != nil {
		b.boundaries = gs.Boundaries
		for _, step := range inv.All() {
			if step.GammaSpectrum != nil && !slices.Equal(step.GammaSpectrum.Boundaries, b.boundaries) {
				return nil, fmt.Errorf("time step %d: %w", step.Number, ErrGammaBoundariesMismatch)
			}
		}
		for rec := range inv.TimeStepGamma() {
			b.timestepGamma = append(b.timestepGamma, TimeStepGammaRow{
				MaterialID:     materialID,
				CaseID:         caseID,
				TimeStepNumber: uint32(rec.TimeStepNumber),
				G:              uint16(rec.G),
				Rate:           rec.Rate,
			})
		}
	}
	return b, nil
}

// ParseTimestamp parses a FISPACT run timestamp as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(TimestampLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q: %w", s, ErrInvalidTimestamp)
	}
	return t.UTC(), nil
}

func roundTo(x float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Round(x*p) / p
}

func timeStepRow(ts *inventory.TimeStep, materialID, caseID uint32) TimeStepRow {
	return TimeStepRow{
		MaterialID:      materialID,
		CaseID:          caseID,
		TimeStepNumber:  uint32(ts.Number),
		IrradiationTime: ts.IrradiationTime,
		CoolingTime:     ts.CoolingTime,
		Duration:        ts.Duration,
		ElapsedTime:     ts.ElapsedTime,
		Flux:            ts.Flux,
		Atoms:           ts.TotalAtoms,
		Activity:        ts.TotalActivity,
		AlphaActivity:   ts.AlphaActivity,
		BetaActivity:    ts.BetaActivity,
		GammaActivity:   ts.GammaActivity,
		Mass:            ts.TotalMass,
		Heat:            ts.TotalHeat,
		AlphaHeat:       ts.AlphaHeat,
		BetaHeat:        ts.BetaHeat,
		GammaHeat:       ts.GammaHeat,
		Ingestion:       ts.IngestionDose,
		Inhalation:      ts.InhalationDose,
		Dose:            ts.DoseRate.Dose,
	}
}

func timeStepNuclideRow(rec inventory.NuclideRecord, materialID, caseID uint32) TimeStepNuclideRow {
	n := rec.Nuclide
	return TimeStepNuclideRow{
		MaterialID:     materialID,
		CaseID:         caseID,
		TimeStepNumber: uint32(rec.TimeStepNumber),
		ZAI:            n.ZAI,
		Atoms:          n.Atoms,
		Grams:          n.Grams,
		Activity:       n.Activity,
		AlphaActivity:  n.AlphaActivity,
		BetaActivity:   n.BetaActivity,
		GammaActivity:  n.GammaActivity,
		Heat:           n.Heat,
		AlphaHeat:      n.AlphaHeat,
		BetaHeat:       n.BetaHeat,
		GammaHeat:      n.GammaHeat,
		Dose:           n.Dose,
		Ingestion:      n.Ingestion,
		Inhalation:     n.Inhalation,
	}
}

// Counts is a summary of the collected rows.
type Counts struct {
	Inventories      int
	TimeSteps        int
	Nuclides         int
	TimeStepNuclides int
	TimeStepGamma    int
}

// Counts returns the current row counts.
func (c *Collector) Counts() Counts {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Counts{
		Inventories:      len(c.rundata),
		TimeSteps:        len(c.timesteps),
		Nuclides:         c.nuclides.size(),
		TimeStepNuclides: len(c.timestepNuclides),
		TimeStepGamma:    len(c.timestepGamma),
	}
}

// Nuclides returns the nuclide dictionary sorted by ZAI.
func (c *Collector) Nuclides() []NuclideRow {
	return nuclideRows(c.nuclides.snapshot())
}

func nuclideRows(infos []inventory.NuclideInfo) []NuclideRow {
	rows := make([]NuclideRow, len(infos))
	for i, n := range infos {
		var state uint8
		if n.IsIsomer() {
			state = 1
		}
		rows[i] = NuclideRow{
			ZAI:        n.ZAI,
			Element:    n.Element,
			MassNumber: uint16(n.Isotope),
			State:      state,
			HalfLife:   n.HalfLife,
		}
	}
	return rows
}

// GBins returns the gamma bin boundaries as (g, boundary) rows with g from
// zero, or nil if no gamma spectrum was collected.
func (c *Collector) GBins() []GBinsRow {
	c.mu.Lock()
	defer c.mu.Unlock()
	return gbinsRows(c.gbins)
}

func gbinsRows(boundaries []float64) []GBinsRow {
	if boundaries == nil {
		return nil
	}
	rows := make([]GBinsRow, len(boundaries))
	for g, b := range boundaries {
		rows[g] = GBinsRow{G: uint16(g), Boundary: b}
	}
	return rows
}

// TimeStepGammaAsSpectrum converts the collected gamma rates from MeV/s to
// photon/s dividing by the bin midpoint energy. Rows are sorted by material,
// case, time step and group. It returns nil if no gamma rows were collected.
func (c *Collector) TimeStepGammaAsSpectrum() []TimeStepGammaRow {
	c.mu.Lock()
	defer c.mu.Unlock()
	return gammaAsSpectrum(c.timestepGamma, c.gbins)
}

func gammaAsSpectrum(rows []TimeStepGammaRow, boundaries []float64) []TimeStepGammaRow {
	if len(rows) == 0 {
		return nil
	}
	out := make([]TimeStepGammaRow, 0, len(rows))
	for _, r := range rows {
		// Append guarantees the groups fit the collected boundaries.
		if r.G == 0 || int(r.G) >= len(boundaries) {
			continue
		}
		r.Rate /= 0.5 * (boundaries[r.G-1] + boundaries[r.G])
		out = append(out, r)
	}
	slices.SortFunc(out, compareGamma)
	return out
}

// TimeStepTimes returns the time axis of the first collected case sorted by
// time step number. All the cases of a collection share the stepping.
func (c *Collector) TimeStepTimes() []TimeStepTimesRow {
	c.mu.Lock()
	defer c.mu.Unlock()
	return timeStepTimes(c.timesteps)
}

func timeStepTimes(timesteps []TimeStepRow) []TimeStepTimesRow {
	if len(timesteps) == 0 {
		return nil
	}
	first := caseKey{timesteps[0].MaterialID, timesteps[0].CaseID}
	var rows []TimeStepTimesRow
	for i := range timesteps {
		ts := &timesteps[i]
		if (caseKey{ts.MaterialID, ts.CaseID}) != first {
			continue
		}
		rows = append(rows, TimeStepTimesRow{
			TimeStepNumber:  ts.TimeStepNumber,
			ElapsedTime:     ts.ElapsedTime,
			IrradiationTime: ts.IrradiationTime,
			CoolingTime:     ts.CoolingTime,
			Duration:        ts.Duration,
			WithFlux:        ts.Flux > 0,
		})
	}
	slices.SortFunc(rows, func(a, b TimeStepTimesRow) int {
		return cmp.Compare(a.TimeStepNumber, b.TimeStepNumber)
	})
	return rows
}

// Result returns a snapshot of all the tables sorted by their keys. The
// snapshot shares no memory with the collector.
func (c *Collector) Result() *Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	r := &Result{
		RunData:          slices.Clone(c.rundata),
		TimeStepTimes:    timeStepTimes(c.timesteps),
		TimeSteps:        slices.Clone(c.timesteps),
		Nuclides:         nuclideRows(c.nuclides.snapshot()),
		TimeStepNuclides: slices.Clone(c.timestepNuclides),
		GBins:            gbinsRows(c.gbins),
		TimeStepGamma:    gammaAsSpectrum(c.timestepGamma, c.gbins),
	}
	r.sort()
	return r
}
