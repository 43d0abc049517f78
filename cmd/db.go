package cmd

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dvp2015/xpypact/internal/collector"
	"github.com/dvp2015/xpypact/internal/store"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the SQLite database",
}

var dbInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the tables if they do not exist",
	Args:  cobra.NoArgs,
	RunE: withStore(func(cmd *cobra.Command, s *session, st *store.Store, _ []string) error {
		ctx := cmd.Context()
		if err := st.CreateSchema(ctx); err != nil {
			return err
		}
		s.printer.Info("schema created in " + s.cfg.DBPath)
		return nil
	}),
}

var dbDropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Drop all tables",
	Args:  cobra.NoArgs,
	RunE: withStore(func(cmd *cobra.Command, s *session, st *store.Store, _ []string) error {
		ctx := cmd.Context()
		if err := st.DropSchema(ctx); err != nil {
			return err
		}
		s.printer.Info("schema dropped from " + s.cfg.DBPath)
		return nil
	}),
}

var dbInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "List tables with row counts",
	Args:  cobra.NoArgs,
	RunE: withStore(func(cmd *cobra.Command, s *session, st *store.Store, _ []string) error {
		ctx := cmd.Context()
		tables, err := st.TablesInfo(ctx)
		if err != nil {
			return err
		}
		s.printer.Tables(s.cfg.DBPath, tables)
		return nil
	}),
}

var dbImportCmd = &cobra.Command{
	Use:   "import DIR",
	Short: "Load Parquet tables written by collect into the database",
	Long: `Reads every <table>.parquet under DIR, in flat or partitioned layout,
and replaces the database content with it.`,
	Args: cobra.ExactArgs(1),
	RunE: withStore(func(cmd *cobra.Command, s *session, st *store.Store, args []string) error {
		ctx := cmd.Context()
		r, err := collector.LoadResultFromParquets(args[0])
		if err != nil {
			return err
		}
		if err := st.Save(ctx, r); err != nil {
			return err
		}
		s.metrics.Saved("sqlite")
		s.printer.Saved("sqlite", s.cfg.DBPath)
		return nil
	}),
}

var dbIndicesCmd = &cobra.Command{
	Use:   "indices",
	Short: "Create unique indices to validate table keys",
	Args:  cobra.NoArgs,
	RunE: withStore(func(cmd *cobra.Command, s *session, st *store.Store, _ []string) error {
		ctx := cmd.Context()
		if err := st.CreateIndices(ctx); err != nil {
			return err
		}
		s.printer.Info("indices created")
		return nil
	}),
}

var dbQueryCmd = &cobra.Command{
	Use:       "query TABLE",
	Short:     "Print the rows of a table as YAML",
	Args:      cobra.ExactArgs(1),
	ValidArgs: collector.TableNames(),
	RunE: withStore(func(cmd *cobra.Command, s *session, st *store.Store, args []string) error {
		ctx := cmd.Context()
		var step *uint32
		if n, _ := cmd.Flags().GetUint32("time-step"); n > 0 {
			step = &n
		}
		rows, err := queryTable(ctx, st, args[0], step)
		if err != nil {
			return err
		}
		return writeInspect(cmd.OutOrStdout(), rows)
	}),
}

func init() {
	dbQueryCmd.Flags().Uint32("time-step", 0, "timestep_gamma: only rows of this time step number")
	dbCmd.AddCommand(dbInitCmd, dbDropCmd, dbInfoCmd, dbImportCmd, dbIndicesCmd, dbQueryCmd)
	rootCmd.AddCommand(dbCmd)
}

// withStore wraps a db subcommand with a session and an open store.
func withStore(fn func(*cobra.Command, *session, *store.Store, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd)
		if err != nil {
			return err
		}
		defer s.close()
		st, err := s.openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()
		return fn(cmd, s, st, args)
	}
}

func queryTable(ctx context.Context, st *store.Store, table string, timeStep *uint32) (any, error) {
	switch table {
	case collector.TableRunData:
		return st.LoadRunData(ctx)
	case collector.TableTimeStepTimes:
		return st.LoadTimeStepTimes(ctx)
	case collector.TableTimeStep:
		return st.LoadTimeSteps(ctx)
	case collector.TableNuclide:
		return st.LoadNuclides(ctx)
	case collector.TableTimeStepNuclide:
		return st.LoadTimeStepNuclides(ctx)
	case collector.TableGBins:
		return st.LoadGBins(ctx)
	case collector.TableTimeStepGamma:
		return st.LoadGamma(ctx, timeStep)
	}
	names := collector.TableNames()
	slices.Sort(names)
	return nil, fmt.Errorf("unknown table %q, expected one of %s", table, strings.Join(names, ", "))
}
