package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dvp2015/xpypact/internal/inventory"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect FILE",
	Short: "Print the run header and time steps of an inventory as YAML",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().Bool("steps", false, "include the time step table")
	inspectCmd.Flags().Bool("trust-zai", false, "keep ZAI values from input even if inconsistent")
	rootCmd.AddCommand(inspectCmd)
}

type inspectRunData struct {
	Timestamp        string  `yaml:"timestamp"`
	RunName          string  `yaml:"run_name"`
	FluxName         string  `yaml:"flux_name"`
	DoseRateType     string  `yaml:"dose_rate_type,omitempty"`
	DoseRateDistance float64 `yaml:"dose_rate_distance,omitempty"`
}

type inspectStep struct {
	Number        int     `yaml:"number"`
	ElapsedTime   float64 `yaml:"elapsed_time"`
	Duration      float64 `yaml:"duration"`
	Flux          float64 `yaml:"flux"`
	Nuclides      int     `yaml:"nuclides"`
	TotalMass     float64 `yaml:"total_mass"`
	TotalActivity float64 `yaml:"total_activity"`
	TotalHeat     float64 `yaml:"total_heat"`
	DoseRate      float64 `yaml:"dose_rate"`
	GammaGroups   int     `yaml:"gamma_groups,omitempty"`
}

type inspectDoc struct {
	Path      string         `yaml:"path"`
	RunData   inspectRunData `yaml:"run_data"`
	TimeSteps int            `yaml:"time_steps"`
	Nuclides  int            `yaml:"nuclides"`
	Cooling   int            `yaml:"cooling_steps"`
	Steps     []inspectStep  `yaml:"steps,omitempty"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	var opts []inventory.Option
	if trust, _ := cmd.Flags().GetBool("trust-zai"); trust {
		opts = append(opts, inventory.WithZAIPolicy(inventory.ZAITrustInput))
	}
	inv, err := inventory.LoadFile(args[0], opts...)
	if err != nil {
		return err
	}
	steps, _ := cmd.Flags().GetBool("steps")
	return writeInspect(cmd.OutOrStdout(), buildInspectDoc(args[0], inv, steps))
}

func buildInspectDoc(path string, inv *inventory.Inventory, withSteps bool) inspectDoc {
	meta := inv.MetaInfo()
	doc := inspectDoc{
		Path: path,
		RunData: inspectRunData{
			Timestamp:        meta.Timestamp,
			RunName:          meta.RunName,
			FluxName:         meta.FluxName,
			DoseRateType:     meta.DoseRateType,
			DoseRateDistance: meta.DoseRateDistance,
		},
		TimeSteps: inv.Len(),
		Nuclides:  len(inv.ExtractNuclides()),
	}
	for _, ts := range inv.All() {
		if ts.IsCooling() {
			doc.Cooling++
		}
		if !withSteps {
			continue
		}
		step := inspectStep{
			Number:        ts.Number,
			ElapsedTime:   ts.ElapsedTime,
			Duration:      ts.Duration,
			Flux:          ts.Flux,
			Nuclides:      len(ts.Nuclides),
			TotalMass:     ts.TotalMass,
			TotalActivity: ts.TotalActivity,
			TotalHeat:     ts.TotalHeat,
			DoseRate:      ts.DoseRate.Dose,
		}
		if ts.GammaSpectrum != nil {
			step.GammaGroups = ts.GammaSpectrum.Len()
		}
		doc.Steps = append(doc.Steps, step)
	}
	return doc
}

func writeInspect(w io.Writer, doc any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("inspect: encode yaml: %w", err)
	}
	return enc.Close()
}
