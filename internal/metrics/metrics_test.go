package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteToTextfile(t *testing.T) {
	t.Parallel()
	m := New()
	m.Appended(4, 100, 24, 20*time.Millisecond)
	m.Appended(2, 10, 0, 5*time.Millisecond)
	m.Failed()
	m.Saved("sqlite")

	path := filepath.Join(t.TempDir(), "xpypact.prom")
	require.NoError(t, m.WriteToTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	for _, want := range []string{
		"xpypact_inventories_loaded_total 2",
		"xpypact_append_failures_total 1",
		"xpypact_time_steps_total 6",
		"xpypact_timestep_nuclide_rows_total 110",
		"xpypact_timestep_gamma_rows_total 24",
		"xpypact_inventory_load_seconds_count 2",
		`xpypact_saves_total{target="sqlite"} 1`,
	} {
		assert.True(t, strings.Contains(text, want), "missing %q in\n%s", want, text)
	}
}

func TestGatherer(t *testing.T) {
	t.Parallel()
	m := New()
	m.Failed()
	families, err := m.Gatherer().Gather()
	require.NoError(t, err)
	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["xpypact_append_failures_total"])
}

func TestNilMetrics_NoOp(t *testing.T) {
	t.Parallel()
	var m *Metrics
	m.Appended(1, 1, 1, time.Second)
	m.Failed()
	m.Saved("parquet")
	assert.NoError(t, m.WriteToTextfile(filepath.Join(t.TempDir(), "never.prom")))
}

func TestWriteToTextfile_BadPath(t *testing.T) {
	t.Parallel()
	err := New().WriteToTextfile("/nonexistent/dir/x.prom")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "metrics: write")
}
