package cmd

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvp2015/xpypact/internal/collector"
	"github.com/dvp2015/xpypact/internal/inventory"
	"github.com/dvp2015/xpypact/internal/store"
	"github.com/dvp2015/xpypact/internal/telemetry"
)

// execute runs rootCmd with args and returns stdout and stderr.
// Not parallel: rootCmd and viper are shared.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	}()
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCommands_Registered(t *testing.T) {
	t.Parallel()

	want := []string{"collect", "inspect", "fluxes", "db", "watch", "telemetry"}
	for _, name := range want {
		found := false
		for _, c := range rootCmd.Commands() {
			if c.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected %q subcommand to be registered on rootCmd", name)
		}
	}

	var sub []string
	for _, c := range dbCmd.Commands() {
		sub = append(sub, c.Name())
	}
	assert.ElementsMatch(t, []string{"init", "drop", "info", "import", "indices", "query"}, sub)
}

func TestCollectCmd_Flags(t *testing.T) {
	t.Parallel()

	for _, flag := range []string{"manifest", "material", "strict", "trust-zai"} {
		if collectCmd.Flags().Lookup(flag) == nil {
			t.Errorf("expected flag %q to be registered on collect command", flag)
		}
	}
	for _, flag := range persistentFlags {
		if rootCmd.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("expected persistent flag %q", flag)
		}
	}
}

func TestCollect_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "parquet")
	db := filepath.Join(dir, "xpypact.db")
	events := filepath.Join(dir, "events.jsonl")
	prom := filepath.Join(dir, "xpypact.prom")

	_, stderr, err := execute(t, "collect",
		"--out", out, "--db", db, "--material", "3",
		"--telemetry", events, "--metrics-file", prom,
		filepath.Join("testdata", "*.json"))
	require.NoError(t, err, stderr)
	assert.Contains(t, stderr, "collected 2 inventories")

	for _, table := range []string{collector.TableRunData, collector.TableTimeStep, collector.TableNuclide} {
		_, err := os.Stat(filepath.Join(out, table+".parquet"))
		assert.NoError(t, err, table)
	}

	st, err := store.Open(context.Background(), db, store.WithReadOnly())
	require.NoError(t, err)
	rundata, err := st.LoadRunData(context.Background())
	require.NoError(t, err)
	require.NoError(t, st.Close())
	require.Len(t, rundata, 2)
	for i, row := range rundata {
		assert.Equal(t, uint32(3), row.MaterialID)
		assert.Equal(t, uint32(i+1), row.CaseID)
	}

	metrics, err := os.ReadFile(prom)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "xpypact_inventories_loaded_total 2")

	stdout, _, err := execute(t, "telemetry", events)
	require.NoError(t, err)
	assert.Contains(t, stdout, telemetry.KindSessionStart)
	assert.Contains(t, stdout, telemetry.KindStoreSaved)

	stdout, _, err = execute(t, "db", "query", collector.TableRunData, "--db", db, "--telemetry", "", "--metrics-file", "")
	require.NoError(t, err)
	assert.Contains(t, stdout, "materialid: 3")

	_, _, err = execute(t, "db", "query", "nope", "--db", db)
	require.ErrorContains(t, err, "unknown table")
}

func TestFluxesConvert(t *testing.T) {
	out := filepath.Join(t.TempDir(), "converted")
	_, _, err := execute(t, "fluxes", "convert", filepath.Join("testdata", "arb_flux_1"),
		"--columns", "2", "-o", out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(data), "total flux=9.100000e+01"))

	_, _, err = execute(t, "fluxes", "convert", filepath.Join("testdata", "arb_flux_1"), "--to", "709", "-o", out)
	require.Error(t, err, "a 3 bin flux cannot be printed as 709 groups")
}

func TestBuildInspectDoc(t *testing.T) {
	t.Parallel()
	path := filepath.Join("testdata", "Ag-1.json")
	inv, err := inventory.LoadFile(path)
	require.NoError(t, err)

	doc := buildInspectDoc(path, inv, false)
	assert.Equal(t, inv.Len(), doc.TimeSteps)
	assert.Equal(t, len(inv.ExtractNuclides()), doc.Nuclides)
	assert.Equal(t, "23:01:19 12 July 2020", doc.RunData.Timestamp)
	assert.Empty(t, doc.Steps)

	doc = buildInspectDoc(path, inv, true)
	require.Len(t, doc.Steps, inv.Len())
	assert.Equal(t, 1, doc.Steps[0].Number)

	var buf bytes.Buffer
	require.NoError(t, writeInspect(&buf, doc))
	assert.Contains(t, buf.String(), "run_name:")
	assert.Contains(t, buf.String(), "Material Ag, fluxes 1")
	assert.Contains(t, buf.String(), "steps:")
}

func TestPrintEvent(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	printEvent(&buf, telemetry.Event{
		Timestamp: time.Date(2025, 1, 1, 12, 0, 0, 0, time.Local),
		Kind:      telemetry.KindInventoryAppended,
		Session:   "0123456789abcdef",
		Path:      "a.json",
		Data:      map[string]any{"material_id": 1, "case_id": 2},
	})
	assert.Equal(t, "[12:00:00] inventory_appended session=01234567 path=a.json case_id=2 material_id=1\n", buf.String())
}

func TestLineReader_HoldsPartialLine(t *testing.T) {
	t.Parallel()
	lines := &lineReader{r: bufio.NewReader(strings.NewReader("{\"kind\":\"a\"}\n{\"kind\":"))}
	var kinds []string
	collect := func(e telemetry.Event) error {
		kinds = append(kinds, e.Kind)
		return nil
	}

	require.NoError(t, lines.read(collect))
	assert.Equal(t, []string{"a"}, kinds)
	assert.Equal(t, "{\"kind\":", lines.partial)

	lines.r = bufio.NewReader(strings.NewReader("\"b\"}\n"))
	require.NoError(t, lines.read(collect))
	assert.Equal(t, []string{"a", "b"}, kinds)
}
