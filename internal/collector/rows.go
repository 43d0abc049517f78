package collector

import "time"

// Table names, also used as parquet file names and store table names.
const (
	TableRunData         = "rundata"
	TableTimeStepTimes   = "timestep_times"
	TableTimeStep        = "timestep"
	TableNuclide         = "nuclide"
	TableTimeStepNuclide = "timestep_nuclide"
	TableGBins           = "gbins"
	TableTimeStepGamma   = "timestep_gamma"
)

// RunDataRow is a row of the rundata table, one per appended inventory.
type RunDataRow struct {
	MaterialID       uint32    `parquet:"material_id"`
	CaseID           uint32    `parquet:"case_id"`
	Timestamp        time.Time `parquet:"timestamp"`
	RunName          string    `parquet:"run_name"`
	FluxName         string    `parquet:"flux_name"`
	DoseRateType     string    `parquet:"dose_rate_type"`
	DoseRateDistance float64   `parquet:"dose_rate_distance"`
}

// TimeStepTimesRow is the time axis shared by all the collected cases.
type TimeStepTimesRow struct {
	TimeStepNumber  uint32  `parquet:"time_step_number"`
	ElapsedTime     float64 `parquet:"elapsed_time"`
	IrradiationTime float64 `parquet:"irradiation_time"`
	CoolingTime     float64 `parquet:"cooling_time"`
	Duration        float64 `parquet:"duration"`
	WithFlux        bool    `parquet:"with_flux"`
}

// TimeStepRow holds the totals of one time step.
type TimeStepRow struct {
	MaterialID      uint32  `parquet:"material_id"`
	CaseID          uint32  `parquet:"case_id"`
	TimeStepNumber  uint32  `parquet:"time_step_number"`
	IrradiationTime float64 `parquet:"irradiation_time"`
	CoolingTime     float64 `parquet:"cooling_time"`
	Duration        float64 `parquet:"duration"`
	ElapsedTime     float64 `parquet:"elapsed_time"`
	Flux            float64 `parquet:"flux"`
	Atoms           float64 `parquet:"atoms"`
	Activity        float64 `parquet:"activity"`
	AlphaActivity   float64 `parquet:"alpha_activity"`
	BetaActivity    float64 `parquet:"beta_activity"`
	GammaActivity   float64 `parquet:"gamma_activity"`
	Mass            float64 `parquet:"mass"`
	Heat            float64 `parquet:"heat"`
	AlphaHeat       float64 `parquet:"alpha_heat"`
	BetaHeat        float64 `parquet:"beta_heat"`
	GammaHeat       float64 `parquet:"gamma_heat"`
	Ingestion       float64 `parquet:"ingestion"`
	Inhalation      float64 `parquet:"inhalation"`
	Dose            float64 `parquet:"dose"`
}

// NuclideRow is an entry of the nuclide dictionary. State is 1 for isomers.
type NuclideRow struct {
	ZAI        uint32  `parquet:"zai"`
	Element    string  `parquet:"element"`
	MassNumber uint16  `parquet:"mass_number"`
	State      uint8   `parquet:"state"`
	HalfLife   float64 `parquet:"half_life"`
}

// TimeStepNuclideRow holds the quantities of one nuclide at one time step.
type TimeStepNuclideRow struct {
	MaterialID     uint32  `parquet:"material_id"`
	CaseID         uint32  `parquet:"case_id"`
	TimeStepNumber uint32  `parquet:"time_step_number"`
	ZAI            uint32  `parquet:"zai"`
	Atoms          float64 `parquet:"atoms"`
	Grams          float64 `parquet:"grams"`
	Activity       float64 `parquet:"activity"`
	AlphaActivity  float64 `parquet:"alpha_activity"`
	BetaActivity   float64 `parquet:"beta_activity"`
	GammaActivity  float64 `parquet:"gamma_activity"`
	Heat           float64 `parquet:"heat"`
	AlphaHeat      float64 `parquet:"alpha_heat"`
	BetaHeat       float64 `parquet:"beta_heat"`
	GammaHeat      float64 `parquet:"gamma_heat"`
	Dose           float64 `parquet:"dose"`
	Ingestion      float64 `parquet:"ingestion"`
	Inhalation     float64 `parquet:"inhalation"`
}

// GBinsRow is a gamma energy bin boundary, MeV. G is zero-based.
type GBinsRow struct {
	G        uint16  `parquet:"g"`
	Boundary float64 `parquet:"boundary"`
}

// TimeStepGammaRow is the emission rate of gamma group G, the 1-based index
// of its upper boundary in gbins. Collected rates are MeV/s; Result rates
// are photon/s.
type TimeStepGammaRow struct {
	MaterialID     uint32  `parquet:"material_id"`
	CaseID         uint32  `parquet:"case_id"`
	TimeStepNumber uint32  `parquet:"time_step_number"`
	G              uint16  `parquet:"g"`
	Rate           float64 `parquet:"rate"`
}
