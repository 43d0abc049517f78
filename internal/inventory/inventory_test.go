package inventory

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// loadTestdata loads an inventory from testdata and fails the test on error.
func loadTestdata(t *testing.T, name string) *Inventory {
	t.Helper()
	inv, err := LoadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("LoadFile(%q): %v", name, err)
	}
	return inv
}

func TestLoad_Ag1(t *testing.T) {
	t.Parallel()
	inv := loadTestdata(t, "Ag-1.json")

	if inv.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", inv.Len())
	}
	if inv.RunData.Timestamp != "23:01:19 12 July 2020" {
		t.Errorf("Timestamp = %q", inv.RunData.Timestamp)
	}

	ts1, ts2 := inv.At(0), inv.At(1)
	if len(ts1.Nuclides) != 2 {
		t.Errorf("len(ts1.Nuclides) = %d, want 2", len(ts1.Nuclides))
	}
	if !ts1.IsCooling() {
		t.Error("first time step should be cooling")
	}
	if ts1.Flux != 0 {
		t.Errorf("ts1.Flux = %g, want 0 (zero duration step)", ts1.Flux)
	}
	if len(ts2.Nuclides) != 48 {
		t.Errorf("len(ts2.Nuclides) = %d, want 48", len(ts2.Nuclides))
	}
	if ts2.IsCooling() {
		t.Error("second time step should be irradiating")
	}
	if ts2.ElapsedTime != 0.631152e8 {
		t.Errorf("ts2.ElapsedTime = %g, want 6.31152e7", ts2.ElapsedTime)
	}
	if ts2.Flux != 0.24452e11 {
		t.Errorf("ts2.Flux = %g, want 2.4452e10", ts2.Flux)
	}
	if math.Abs(ts1.NuclidesMass()-1e-3)/1e-3 > 1e-3 {
		t.Errorf("ts1.NuclidesMass() = %g, want ~1e-3", ts1.NuclidesMass())
	}
	if ts1.Number != 1 || ts2.Number != 2 {
		t.Errorf("numbers = %d, %d, want 1, 2", ts1.Number, ts2.Number)
	}
}

func TestLoad_FirstStepDoseRateMassCorrected(t *testing.T) {
	t.Parallel()
	inv := loadTestdata(t, "Ag-1.json")
	if got := inv.At(0).DoseRate.Mass; got != 1.0e-3 {
		t.Errorf("DoseRate.Mass = %g, want 1e-3", got)
	}
}

func TestMetaInfo(t *testing.T) {
	t.Parallel()
	inv := loadTestdata(t, "Ag-1.json")
	got := inv.MetaInfo()
	want := RunDataCorrected{
		Timestamp:        "23:01:19 12 July 2020",
		RunName:          "* Material Ag, fluxes 1",
		FluxName:         "55.F9.10 11-L2-02W HFS_GLRY_08_U",
		DoseRateType:     PointSource,
		DoseRateDistance: 1.0,
	}
	if got != want {
		t.Errorf("MetaInfo() = %+v, want %+v", got, want)
	}
}

func TestExtractTimes(t *testing.T) {
	t.Parallel()
	inv := loadTestdata(t, "Ag-1.json")
	times := inv.ExtractTimes()
	if times[0] != 0 {
		t.Errorf("times[0] = %g, want 0", times[0])
	}
	if int(times[len(times)-1]) != 63115200 {
		t.Errorf("last elapsed time = %g, want 6.31152e7", times[len(times)-1])
	}
	for i := 1; i < len(times); i++ {
		if times[i] < times[i-1] {
			t.Errorf("elapsed times decrease at %d: %v", i, times)
		}
	}
}

func TestLoad_CompressedSource(t *testing.T) {
	t.Parallel()
	plain := loadTestdata(t, "with-gamma.json")
	packed := loadTestdata(t, "with-gamma.json.bz2")
	if plain.Len() != packed.Len() {
		t.Fatalf("Len() = %d and %d", plain.Len(), packed.Len())
	}
	if packed.Last().GammaSpectrum == nil {
		t.Fatal("last time step should carry a gamma spectrum")
	}
}

func TestLoad_FromReader(t *testing.T) {
	t.Parallel()
	f, err := os.Open(filepath.Join("testdata", "Ag-1.json"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	inv, err := Load(FromReader(f))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if inv.Len() != 2 {
		t.Errorf("Len() = %d, want 2", inv.Len())
	}
}

func TestLoad_WithGammaDurations(t *testing.T) {
	t.Parallel()
	inv := loadTestdata(t, "with-gamma.json")

	tests := []struct {
		duration, elapsed float64
		cooling           bool
	}{
		{3600, 3600, false},
		{3600, 7200, false},
		{86400, 93600, true},
	}
	for i, tt := range tests {
		ts := inv.At(i)
		if ts.Duration != tt.duration {
			t.Errorf("step %d Duration = %g, want %g", i+1, ts.Duration, tt.duration)
		}
		if ts.ElapsedTime != tt.elapsed {
			t.Errorf("step %d ElapsedTime = %g, want %g", i+1, ts.ElapsedTime, tt.elapsed)
		}
		if ts.IsCooling() != tt.cooling {
			t.Errorf("step %d IsCooling() = %v, want %v", i+1, ts.IsCooling(), tt.cooling)
		}
	}

	var bins int
	for r := range inv.TimeStepGamma() {
		if r.G < 1 || r.G > 24 {
			t.Errorf("g = %d out of range", r.G)
		}
		bins++
	}
	if bins != 3*24 {
		t.Errorf("gamma records = %d, want %d", bins, 3*24)
	}
}

func TestLoad_NonMonotonic(t *testing.T) {
	t.Parallel()
	const doc = `{
	  "run_data": {"timestamp": "23:01:19 12 July 2020", "run_name": "r", "flux_name": "f"},
	  "inventory_data": [
	    {"irradiation_time": 100.0, "cooling_time": 0.0, "flux": 1.0, "dose_rate": {}, "nuclides": []},
	    {"irradiation_time": 50.0, "cooling_time": 0.0, "flux": 1.0, "dose_rate": {}, "nuclides": []}
	  ]
	}`
	_, err := Load(FromString(doc))
	if !errors.Is(err, ErrNonMonotonicTimes) {
		t.Fatalf("Load error = %v, want ErrNonMonotonicTimes", err)
	}
	var nm *NonMonotonicError
	if !errors.As(err, &nm) {
		t.Fatalf("error %v is not a *NonMonotonicError", err)
	}
	if nm.Step != 2 {
		t.Errorf("Step = %d, want 2", nm.Step)
	}
}

func TestLoad_OldFormatDerivation(t *testing.T) {
	t.Parallel()
	// FISPACT v4 output: no zai, no atoms, zero totals, upper-case symbols.
	const doc = `{
	  "run_data": {"timestamp": "01:02:03 4 January 2019", "run_name": "old", "flux_name": "f"},
	  "inventory_data": [
	    {"irradiation_time": 10.0, "cooling_time": 0.0, "flux": 1e10,
	     "dose_rate": {"type": "Plane source", "distance": 0.0, "mass": 0.0, "dose": 1.0},
	     "nuclides": [
	       {"element": "AG", "isotope": 107, "grams": 1.0, "activity": 2.0, "beta_activity": 1.5},
	       {"element": "AG", "isotope": 108, "state": "m", "grams": 0.5, "activity": 3.0, "gamma_activity": 0.5}
	     ]}
	  ]
	}`
	inv, err := Load(FromString(doc))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	ts := inv.At(0)
	if ts.Nuclides[0].ZAI != 471070 {
		t.Errorf("ZAI = %d, want 471070", ts.Nuclides[0].ZAI)
	}
	if ts.Nuclides[1].ZAI != 471081 {
		t.Errorf("ZAI = %d, want 471081", ts.Nuclides[1].ZAI)
	}
	if math.Abs(ts.TotalMass-1.5e-3) > 1e-15 {
		t.Errorf("TotalMass = %g, want 1.5e-3", ts.TotalMass)
	}
	if ts.TotalActivity != 5.0 || ts.BetaActivity != 1.5 || ts.GammaActivity != 0.5 {
		t.Errorf("activities = %g/%g/%g, want 5/1.5/0.5", ts.TotalActivity, ts.BetaActivity, ts.GammaActivity)
	}
	wantAtoms := ts.Nuclides[0].Atoms + ts.Nuclides[1].Atoms
	if ts.TotalAtoms != wantAtoms || wantAtoms == 0 {
		t.Errorf("TotalAtoms = %g, want %g", ts.TotalAtoms, wantAtoms)
	}
	if ts.DoseRate.Mass != 1e-3 {
		t.Errorf("DoseRate.Mass = %g, want 1e-3", ts.DoseRate.Mass)
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
		want error
	}{
		{
			name: "zai mismatch",
			doc: `{"run_data": {}, "inventory_data": [{"irradiation_time": 1.0, "dose_rate": {},
			  "nuclides": [{"element": "Ag", "isotope": 107, "zai": 471071}]}]}`,
			want: ErrZAIMismatch,
		},
		{
			name: "gamma sizes",
			doc: `{"run_data": {}, "inventory_data": [{"irradiation_time": 1.0, "dose_rate": {}, "nuclides": [],
			  "gamma_spectrum": {"boundaries": [0.0, 1.0], "values": [1.0, 2.0]}}]}`,
			want: ErrGammaSpectrumSize,
		},
		{
			name: "empty",
			doc:  `{"run_data": {}, "inventory_data": []}`,
			want: ErrNoTimeSteps,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Load(FromString(tt.doc))
			if !errors.Is(err, tt.want) {
				t.Errorf("Load error = %v, want %v", err, tt.want)
			}
		})
	}

	t.Run("bad json", func(t *testing.T) {
		t.Parallel()
		_, err := Load(FromString("{"))
		if err == nil || !strings.Contains(err.Error(), "inventory: decode json") {
			t.Errorf("Load error = %v, want decode error", err)
		}
	})
}

func TestLoad_TrustInputZAI(t *testing.T) {
	t.Parallel()
	const doc = `{"run_data": {}, "inventory_data": [{"irradiation_time": 1.0, "dose_rate": {},
	  "nuclides": [{"element": "Ag", "isotope": 107, "zai": 471071}]}]}`
	inv, err := Load(FromString(doc), WithZAIPolicy(ZAITrustInput))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := inv.At(0).Nuclides[0].ZAI; got != 471071 {
		t.Errorf("ZAI = %d, want explicit 471071", got)
	}
}

func TestNewInventory_ZeroDurationResetsFlux(t *testing.T) {
	t.Parallel()
	steps := []TimeStep{
		{IrradiationTime: 10, Flux: 1e12},
		{IrradiationTime: 10, Flux: 1e12}, // no time advance at all
		{IrradiationTime: 10, CoolingTime: 5, Flux: 0},
	}
	inv, err := NewInventory(RunData{}, steps)
	if err != nil {
		t.Fatalf("NewInventory: %v", err)
	}
	if inv.At(0).Flux != 1e12 {
		t.Errorf("step 1 flux = %g, want unchanged", inv.At(0).Flux)
	}
	if inv.At(1).Flux != 0 || inv.At(1).Duration != 0 {
		t.Errorf("step 2 flux = %g duration = %g, want 0, 0", inv.At(1).Flux, inv.At(1).Duration)
	}
	if inv.At(2).Duration != 5 || inv.At(2).ElapsedTime != 15 {
		t.Errorf("step 3 duration = %g elapsed = %g, want 5, 15", inv.At(2).Duration, inv.At(2).ElapsedTime)
	}
}

func TestNewInventory_CoolingTimeDecrease(t *testing.T) {
	t.Parallel()
	steps := []TimeStep{
		{IrradiationTime: 10, CoolingTime: 100},
		{IrradiationTime: 10, CoolingTime: 50},
	}
	if _, err := NewInventory(RunData{}, steps); !errors.Is(err, ErrNonMonotonicTimes) {
		t.Errorf("NewInventory error = %v, want ErrNonMonotonicTimes", err)
	}
}

func TestExtractNuclides(t *testing.T) {
	t.Parallel()
	inv := loadTestdata(t, "Ag-1.json")
	infos := inv.ExtractNuclides()
	if len(infos) != 48 {
		t.Fatalf("len(ExtractNuclides()) = %d, want 48", len(infos))
	}
	for i := 1; i < len(infos); i++ {
		if !infos[i-1].Less(infos[i]) {
			t.Errorf("nuclides not sorted by zai at %d: %d >= %d", i, infos[i-1].ZAI, infos[i].ZAI)
		}
	}

	var pairs int
	for r := range inv.TimeStepNuclides() {
		if r.TimeStepNumber < 1 || r.TimeStepNumber > 2 {
			t.Errorf("time step number %d", r.TimeStepNumber)
		}
		pairs++
	}
	if pairs != 50 {
		t.Errorf("time step nuclides = %d, want 50", pairs)
	}
}

func TestAll_StopsEarly(t *testing.T) {
	t.Parallel()
	inv := loadTestdata(t, "with-gamma.json")
	var visited []int
	for i, ts := range inv.All() {
		visited = append(visited, ts.Number)
		if i == 1 {
			break
		}
	}
	if len(visited) != 2 || visited[0] != 1 || visited[1] != 2 {
		t.Errorf("visited = %v, want [1 2]", visited)
	}
}
