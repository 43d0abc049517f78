package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "xpypact",
	Short: "Collect FISPACT-II inventories into Parquet and SQLite",
	Long: `xpypact loads FISPACT-II JSON inventories, reconstructs their time steps,
and collects many runs into normalized tables keyed by material and case.
The tables are written as Parquet files and into an SQLite database.`,
	SilenceUsage: true,
}

// Execute runs the root command and exits with status 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// persistentFlags maps viper keys to root flags.
var persistentFlags = map[string]string{
	"verbose":        "verbose",
	"log_mode":       "log-mode",
	"db_path":        "db",
	"out_dir":        "out",
	"workers":        "workers",
	"override":       "override",
	"partition":      "partition",
	"telemetry_path": "telemetry",
	"metrics_file":   "metrics-file",
	"read_only":      "read-only",
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default .xpypact.yaml)")
	pf.BoolP("verbose", "v", false, "verbose output")
	pf.String("log-mode", "dev", "log encoding: dev or prod")
	pf.String("db", "xpypact.db", "SQLite database path, empty to skip")
	pf.String("out", "parquet", "Parquet output directory, empty to skip")
	pf.IntP("workers", "j", 0, "parallel parsers (default: number of CPUs)")
	pf.Bool("override", false, "replace existing output files")
	pf.Bool("partition", false, "write per-case tables under material_id=M/case_id=C directories")
	pf.String("telemetry", "", "append JSONL telemetry events to this file")
	pf.String("metrics-file", "", "write Prometheus metrics to this file on exit")
	pf.Bool("read-only", false, "open the database read-only")

	for key, flag := range persistentFlags {
		_ = viper.BindPFlag(key, pf.Lookup(flag))
	}
}

func initConfig() {
	if cfgFile, _ := rootCmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".xpypact")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("XPYPACT")
	viper.AutomaticEnv()

	// It's fine if no config file is found; we use defaults.
	_ = viper.ReadInConfig()
}
