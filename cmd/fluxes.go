package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dvp2015/xpypact/internal/fluxes"
)

var fluxesCmd = &cobra.Command{
	Use:   "fluxes",
	Short: "Work with FISPACT flux files",
}

var fluxesConvertCmd = &cobra.Command{
	Use:   "convert FILE",
	Short: "Read a flux file and print it in arbitrary or 709-group format",
	Args:  cobra.ExactArgs(1),
	RunE:  runFluxesConvert,
}

func init() {
	f := fluxesConvertCmd.Flags()
	f.String("from", string(fluxes.FormatArbitrary), "input format: arbitrary or 709")
	f.String("to", string(fluxes.FormatArbitrary), "output format: arbitrary or 709")
	f.Int("columns", 6, "numbers per output line")
	f.StringP("output", "o", "", "output file (default stdout)")
	fluxesCmd.AddCommand(fluxesConvertCmd)
	rootCmd.AddCommand(fluxesCmd)
}

func runFluxesConvert(cmd *cobra.Command, args []string) error {
	fromFlag, _ := cmd.Flags().GetString("from")
	toFlag, _ := cmd.Flags().GetString("to")
	columns, _ := cmd.Flags().GetInt("columns")
	output, _ := cmd.Flags().GetString("output")

	from, err := fluxes.ParseFormat(fromFlag)
	if err != nil {
		return err
	}
	to, err := fluxes.ParseFormat(toFlag)
	if err != nil {
		return err
	}
	if columns < 1 {
		return fmt.Errorf("fluxes: --columns must be positive, got %d", columns)
	}
	f, err := fluxes.ReadFile(args[0], from)
	if err != nil {
		return err
	}

	if output == "" {
		if err := fluxes.Write(cmd.OutOrStdout(), f, to, columns); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout())
		return nil
	}
	out, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("fluxes: create %s: %w", output, err)
	}
	if err := fluxes.Write(out, f, to, columns); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
