package store

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/dvp2015/xpypact/internal/collector"
)

// table maps a collector row type to its SQL table. fields returns pointers
// to the row fields in column order; they serve both as insert arguments and
// as scan destinations.
type table[T any] struct {
	name    string
	columns []string
	orderBy string
	fields  func(*T) []any
}

func (t table[T]) insertSQL() string {
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(t.columns)), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", t.name, strings.Join(t.columns, ", "), marks)
}

func (t table[T]) selectSQL(where string) string {
	q := fmt.Sprintf("SELECT %s FROM %s", strings.Join(t.columns, ", "), t.name)
	if where != "" {
		q += " WHERE " + where
	}
	return q + " ORDER BY " + t.orderBy
}

// sqlTime stores a time as RFC 3339 text in UTC.
type sqlTime struct {
	t *time.Time
}

// timestampFormats lists the formats a stored timestamp may have.
var timestampFormats = []string{
	time.RFC3339,
	time.DateTime,
}

// Value implements driver.Valuer.
func (s sqlTime) Value() (driver.Value, error) {
	return s.t.UTC().Format(time.RFC3339), nil
}

// Scan implements sql.Scanner.
func (s sqlTime) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*s.t = v.UTC()
		return nil
	case []byte:
		return s.parse(string(v))
	case string:
		return s.parse(v)
	}
	return fmt.Errorf("unsupported timestamp value %T", src)
}

func (s sqlTime) parse(text string) error {
	for _, layout := range timestampFormats {
		if t, err := time.Parse(layout, text); err == nil {
			*s.t = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp format: %q", text)
}

var runDataTable = table[collector.RunDataRow]{
	name: "rundata",
	columns: []string{
		"material_id", "case_id", "timestamp", "run_name", "flux_name",
		"dose_rate_type", "dose_rate_distance",
	},
	orderBy: "material_id, case_id",
	fields: func(r *collector.RunDataRow) []any {
		return []any{
			&r.MaterialID, &r.CaseID, sqlTime{&r.Timestamp}, &r.RunName, &r.FluxName,
			&r.DoseRateType, &r.DoseRateDistance,
		}
	},
}

var timeStepTimesTable = table[collector.TimeStepTimesRow]{
	name: "time_step_times",
	columns: []string{
		"time_step_number", "elapsed_time", "irradiation_time", "cooling_time",
		"duration", "with_flux",
	},
	orderBy: "time_step_number",
	fields: func(r *collector.TimeStepTimesRow) []any {
		return []any{
			&r.TimeStepNumber, &r.ElapsedTime, &r.IrradiationTime, &r.CoolingTime,
			&r.Duration, &r.WithFlux,
		}
	},
}

var timeStepTable = table[collector.TimeStepRow]{
	name: "timestep",
	columns: []string{
		"material_id", "case_id", "time_step_number",
		"irradiation_time", "cooling_time", "duration", "elapsed_time", "flux",
		"atoms", "activity", "alpha_activity", "beta_activity", "gamma_activity",
		"mass", "heat", "alpha_heat", "beta_heat", "gamma_heat",
		"ingestion", "inhalation", "dose",
	},
	orderBy: "material_id, case_id, time_step_number",
	fields: func(r *collector.TimeStepRow) []any {
		return []any{
			&r.MaterialID, &r.CaseID, &r.TimeStepNumber,
			&r.IrradiationTime, &r.CoolingTime, &r.Duration, &r.ElapsedTime, &r.Flux,
			&r.Atoms, &r.Activity, &r.AlphaActivity, &r.BetaActivity, &r.GammaActivity,
			&r.Mass, &r.Heat, &r.AlphaHeat, &r.BetaHeat, &r.GammaHeat,
			&r.Ingestion, &r.Inhalation, &r.Dose,
		}
	},
}

var nuclideTable = table[collector.NuclideRow]{
	name:    "nuclide",
	columns: []string{"zai", "element", "mass_number", "state", "half_life"},
	orderBy: "zai",
	fields: func(r *collector.NuclideRow) []any {
		return []any{&r.ZAI, &r.Element, &r.MassNumber, &r.State, &r.HalfLife}
	},
}

var timeStepNuclideTable = table[collector.TimeStepNuclideRow]{
	name: "timestep_nuclide",
	columns: []string{
		"material_id", "case_id", "time_step_number", "zai",
		"atoms", "grams", "activity", "alpha_activity", "beta_activity", "gamma_activity",
		"heat", "alpha_heat", "beta_heat", "gamma_heat",
		"dose", "ingestion", "inhalation",
	},
	orderBy: "material_id, case_id, time_step_number, zai",
	fields: func(r *collector.TimeStepNuclideRow) []any {
		return []any{
			&r.MaterialID, &r.CaseID, &r.TimeStepNumber, &r.ZAI,
			&r.Atoms, &r.Grams, &r.Activity, &r.AlphaActivity, &r.BetaActivity, &r.GammaActivity,
			&r.Heat, &r.AlphaHeat, &r.BetaHeat, &r.GammaHeat,
			&r.Dose, &r.Ingestion, &r.Inhalation,
		}
	},
}

var gbinsTable = table[collector.GBinsRow]{
	name:    "gbins",
	columns: []string{"g", "boundary"},
	orderBy: "g",
	fields: func(r *collector.GBinsRow) []any {
		return []any{&r.G, &r.Boundary}
	},
}

var timeStepGammaTable = table[collector.TimeStepGammaRow]{
	name:    "timestep_gamma",
	columns: []string{"material_id", "case_id", "time_step_number", "g", "rate"},
	orderBy: "material_id, case_id, time_step_number, g",
	fields: func(r *collector.TimeStepGammaRow) []any {
		return []any{&r.MaterialID, &r.CaseID, &r.TimeStepNumber, &r.G, &r.Rate}
	},
}
