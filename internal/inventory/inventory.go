// Package inventory loads FISPACT inventory JSON into a physically consistent
// time series. Raw records are decoded first and then derived: nuclide ZAI
// and atoms, time step totals missing in FISPACT v4 output, and step
// durations, elapsed times and numbers.
package inventory

import (
	"cmp"
	"iter"
	"slices"
)

// RunData is the FISPACT run title.
type RunData struct {
	Timestamp string `json:"timestamp"`
	RunName   string `json:"run_name"`
	FluxName  string `json:"flux_name"`
}

// RunDataCorrected is the inventory header. Dose rate type and distance are
// repeated on every FISPACT time step; here they are taken from the last one.
type RunDataCorrected struct {
	Timestamp        string
	RunName          string
	FluxName         string
	DoseRateType     string
	DoseRateDistance float64
}

// Inventory is the ordered sequence of time steps of one FISPACT run.
// It is immutable after construction.
type Inventory struct {
	RunData RunData
	steps   []TimeStep
}

// NewInventory reconstructs durations, elapsed times and step numbers of
// steps, which are taken in FISPACT output order.
func NewInventory(runData RunData, steps []TimeStep) (*Inventory, error) {
	if len(steps) == 0 {
		return nil, ErrNoTimeSteps
	}
	if err := reconstruct(steps); err != nil {
		return nil, err
	}
	return &Inventory{RunData: runData, steps: steps}, nil
}

// reconstruct assigns Duration, ElapsedTime and Number in a single pass.
// Duration is the irradiation time increment, or the cooling time increment
// when irradiation time does not advance. A step without increment cannot
// be irradiating, so its flux is reset.
func reconstruct(steps []TimeStep) error {
	var prevIrradiation, prevCooling, prevElapsed float64
	number := 1
	for i := range steps {
		ts := &steps[i]
		duration := ts.IrradiationTime - prevIrradiation
		if duration == 0 {
			duration = ts.CoolingTime - prevCooling
		}
		if duration < 0 {
			return &NonMonotonicError{
				Step:                i + 1,
				PrevIrradiationTime: prevIrradiation,
				PrevCoolingTime:     prevCooling,
				IrradiationTime:     ts.IrradiationTime,
				CoolingTime:         ts.CoolingTime,
			}
		}
		ts.Duration = duration
		prevElapsed += duration
		ts.ElapsedTime = prevElapsed
		if duration == 0 {
			ts.Flux = 0
		}
		ts.Number = number
		number++
		prevIrradiation, prevCooling = ts.IrradiationTime, ts.CoolingTime
	}
	return nil
}

// Len returns the number of time steps.
func (inv *Inventory) Len() int {
	return len(inv.steps)
}

// At returns the i-th time step. The step must not be modified.
func (inv *Inventory) At(i int) *TimeStep {
	return &inv.steps[i]
}

// Last returns the final time step.
func (inv *Inventory) Last() *TimeStep {
	return &inv.steps[len(inv.steps)-1]
}

// All iterates over the time steps in order.
func (inv *Inventory) All() iter.Seq2[int, *TimeStep] {
	return func(yield func(int, *TimeStep) bool) {
		for i := range inv.steps {
			if !yield(i, &inv.steps[i]) {
				return
			}
		}
	}
}

// MetaInfo returns the inventory header. The dose rate block of the first
// step is often empty, so the last step is used.
func (inv *Inventory) MetaInfo() RunDataCorrected {
	last := inv.Last()
	return RunDataCorrected{
		Timestamp:        inv.RunData.Timestamp,
		RunName:          inv.RunData.RunName,
		FluxName:         inv.RunData.FluxName,
		DoseRateType:     last.DoseRate.Type,
		DoseRateDistance: last.DoseRate.Distance,
	}
}

// ExtractTimes returns elapsed times of all the time steps.
func (inv *Inventory) ExtractTimes() []float64 {
	times := make([]float64, len(inv.steps))
	for i := range inv.steps {
		times[i] = inv.steps[i].ElapsedTime
	}
	return times
}

// ExtractNuclides returns the distinct nuclides over all time steps sorted
// by ZAI. For a nuclide met at several steps the first occurrence wins.
func (inv *Inventory) ExtractNuclides() []NuclideInfo {
	seen := make(map[uint32]NuclideInfo)
	for i := range inv.steps {
		for j := range inv.steps[i].Nuclides {
			n := &inv.steps[i].Nuclides[j]
			if _, ok := seen[n.ZAI]; !ok {
				seen[n.ZAI] = n.Info()
			}
		}
	}
	out := make([]NuclideInfo, 0, len(seen))
	for _, info := range seen {
		out = append(out, info)
	}
	slices.SortFunc(out, func(a, b NuclideInfo) int {
		return cmp.Compare(a.ZAI, b.ZAI)
	})
	return out
}

// NuclideRecord is a time step number paired with a nuclide of that step.
type NuclideRecord struct {
	TimeStepNumber int
	Nuclide        *Nuclide
}

// TimeStepNuclides iterates over all (time step, nuclide) pairs.
func (inv *Inventory) TimeStepNuclides() iter.Seq[NuclideRecord] {
	return func(yield func(NuclideRecord) bool) {
		for i := range inv.steps {
			ts := &inv.steps[i]
			for j := range ts.Nuclides {
				if !yield(NuclideRecord{TimeStepNumber: ts.Number, Nuclide: &ts.Nuclides[j]}) {
					return
				}
			}
		}
	}
}

// GammaRecord is one bin of a time step gamma spectrum. G is the 1-based
// index of the upper bin boundary; Rate is in MeV/s.
type GammaRecord struct {
	TimeStepNumber int
	G              int
	Rate           float64
}

// TimeStepGamma iterates over gamma spectrum bins of the steps carrying one.
func (inv *Inventory) TimeStepGamma() iter.Seq[GammaRecord] {
	return func(yield func(GammaRecord) bool) {
		for i := range inv.steps {
			ts := &inv.steps[i]
			if ts.GammaSpectrum == nil {
				continue
			}
			for g, rate := range ts.GammaSpectrum.Intensities {
				if !yield(GammaRecord{TimeStepNumber: ts.Number, G: g + 1, Rate: rate}) {
					return
				}
			}
		}
	}
}
