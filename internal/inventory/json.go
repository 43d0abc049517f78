package inventory

import (
	"encoding/json"
	"fmt"
)

// Field names follow FISPACT-II JSON output.

type rawDoseRate struct {
	Type     string  `json:"type"`
	Distance float64 `json:"distance"`
	Mass     float64 `json:"mass"`
	Dose     float64 `json:"dose"`
}

type rawGammaSpectrum struct {
	Boundaries []float64 `json:"boundaries"`
	Values     []float64 `json:"values"`
}

type rawNuclide struct {
	Element       string  `json:"element"`
	Isotope       int     `json:"isotope"`
	State         string  `json:"state"`
	ZAI           uint32  `json:"zai"`
	HalfLife      float64 `json:"half_life"`
	Atoms         float64 `json:"atoms"`
	Grams         float64 `json:"grams"`
	Activity      float64 `json:"activity"`
	AlphaActivity float64 `json:"alpha_activity"`
	BetaActivity  float64 `json:"beta_activity"`
	GammaActivity float64 `json:"gamma_activity"`
	Heat          float64 `json:"heat"`
	AlphaHeat     float64 `json:"alpha_heat"`
	BetaHeat      float64 `json:"beta_heat"`
	GammaHeat     float64 `json:"gamma_heat"`
	Dose          float64 `json:"dose"`
	Ingestion     float64 `json:"ingestion"`
	Inhalation    float64 `json:"inhalation"`
}

type rawTimeStep struct {
	IrradiationTime float64           `json:"irradiation_time"`
	CoolingTime     float64           `json:"cooling_time"`
	Flux            float64           `json:"flux"`
	TotalAtoms      float64           `json:"total_atoms"`
	TotalActivity   float64           `json:"total_activity"`
	AlphaActivity   float64           `json:"alpha_activity"`
	BetaActivity    float64           `json:"beta_activity"`
	GammaActivity   float64           `json:"gamma_activity"`
	TotalMass       float64           `json:"total_mass"`
	TotalHeat       float64           `json:"total_heat"`
	AlphaHeat       float64           `json:"alpha_heat"`
	BetaHeat        float64           `json:"beta_heat"`
	GammaHeat       float64           `json:"gamma_heat"`
	IngestionDose   float64           `json:"ingestion_dose"`
	InhalationDose  float64           `json:"inhalation_dose"`
	DoseRate        rawDoseRate       `json:"dose_rate"`
	Nuclides        []rawNuclide      `json:"nuclides"`
	GammaSpectrum   *rawGammaSpectrum `json:"gamma_spectrum"`
}

type rawInventory struct {
	RunData       RunData       `json:"run_data"`
	InventoryData []rawTimeStep `json:"inventory_data"`
}

type loadOptions struct {
	zaiPolicy ZAIPolicy
}

// Option configures Load.
type Option func(*loadOptions)

// WithZAIPolicy sets the handling of explicit ZAI values. The default is ZAIStrict.
func WithZAIPolicy(p ZAIPolicy) Option {
	return func(o *loadOptions) { o.zaiPolicy = p }
}

// Load decodes FISPACT inventory JSON from src and reconstructs the inventory.
func Load(src Source, opts ...Option) (*Inventory, error) {
	var o loadOptions
	for _, opt := range opts {
		opt(&o)
	}
	data, err := src.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("inventory: read: %w", err)
	}
	var raw rawInventory
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("inventory: decode json: %w", err)
	}
	steps := make([]TimeStep, len(raw.InventoryData))
	for i := range raw.InventoryData {
		ts, err := deriveTimeStep(&raw.InventoryData[i], o.zaiPolicy)
		if err != nil {
			return nil, fmt.Errorf("inventory: time step %d: %w", i+1, err)
		}
		steps[i] = ts
	}
	inv, err := NewInventory(raw.RunData, steps)
	if err != nil {
		return nil, fmt.Errorf("inventory: %w", err)
	}
	return inv, nil
}

// LoadFile is Load over FromPath(path).
func LoadFile(path string, opts ...Option) (*Inventory, error) {
	inv, err := Load(FromPath(path), opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return inv, nil
}

func deriveTimeStep(raw *rawTimeStep, policy ZAIPolicy) (TimeStep, error) {
	nuclides := make([]Nuclide, len(raw.Nuclides))
	for i := range raw.Nuclides {
		n, err := raw.Nuclides[i].nuclide().Derive(policy)
		if err != nil {
			return TimeStep{}, err
		}
		nuclides[i] = n
	}
	var gamma *GammaSpectrum
	if raw.GammaSpectrum != nil && len(raw.GammaSpectrum.Boundaries) > 0 {
		var err error
		gamma, err = NewGammaSpectrum(raw.GammaSpectrum.Boundaries, raw.GammaSpectrum.Values)
		if err != nil {
			return TimeStep{}, err
		}
	}
	dr := raw.DoseRate
	return DeriveTotals(TimeStep{
		IrradiationTime: raw.IrradiationTime,
		CoolingTime:     raw.CoolingTime,
		Flux:            raw.Flux,
		TotalAtoms:      raw.TotalAtoms,
		TotalActivity:   raw.TotalActivity,
		AlphaActivity:   raw.AlphaActivity,
		BetaActivity:    raw.BetaActivity,
		GammaActivity:   raw.GammaActivity,
		TotalMass:       raw.TotalMass,
		TotalHeat:       raw.TotalHeat,
		AlphaHeat:       raw.AlphaHeat,
		BetaHeat:        raw.BetaHeat,
		GammaHeat:       raw.GammaHeat,
		IngestionDose:   raw.IngestionDose,
		InhalationDose:  raw.InhalationDose,
		DoseRate:        NewDoseRate(dr.Type, dr.Distance, dr.Mass, dr.Dose),
		Nuclides:        nuclides,
		GammaSpectrum:   gamma,
	}), nil
}

func (r *rawNuclide) nuclide() Nuclide {
	return Nuclide{
		Element:       r.Element,
		Isotope:       r.Isotope,
		State:         r.State,
		ZAI:           r.ZAI,
		HalfLife:      r.HalfLife,
		Atoms:         r.Atoms,
		Grams:         r.Grams,
		Activity:      r.Activity,
		AlphaActivity: r.AlphaActivity,
		BetaActivity:  r.BetaActivity,
		GammaActivity: r.GammaActivity,
		Heat:          r.Heat,
		AlphaHeat:     r.AlphaHeat,
		BetaHeat:      r.BetaHeat,
		GammaHeat:     r.GammaHeat,
		Dose:          r.Dose,
		Ingestion:     r.Ingestion,
		Inhalation:    r.Inhalation,
	}
}
