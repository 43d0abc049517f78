package fluxes

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readTestFile(t *testing.T, name string, format Format) *Fluxes {
	t.Helper()
	f, err := ReadFile(filepath.Join("testdata", name), format)
	require.NoError(t, err)
	return f
}

type binCheck struct {
	bin          int
	e0, e1, flux float64
}

func TestBins709(t *testing.T) {
	t.Parallel()
	bins := Bins709()
	require.Len(t, bins, Groups709+1)
	assert.Equal(t, 1e-5, bins[0])
	assert.InDelta(t, 1.0471e-5, bins[1], 1e-8)
	assert.InDelta(t, 1.0965e-5, bins[2], 1e-8)
	assert.Equal(t, 9.6e8, bins[708])
	assert.Equal(t, 1.0e9, bins[709])
	for i := 1; i < len(bins); i++ {
		if bins[i] <= bins[i-1] {
			t.Fatalf("bins not ascending at %d: %g <= %g", i, bins[i], bins[i-1])
		}
	}
}

func TestNew(t *testing.T) {
	t.Parallel()
	bins := make([]float64, 10)
	for i := range bins {
		bins[i] = float64(i) * 20 / 9
	}
	values := []float64{1, 1, 1, 1, 1, 1, 1, 1, 1}
	f, err := New(bins, values, "test comment", 2.0)
	require.NoError(t, err)
	assert.Equal(t, 9.0, f.Total())
	assert.False(t, f.Is709())
	assert.True(t, Close(f, f, DefaultRTol, DefaultATol))

	_, err = New(bins[:8], values, "test", 1.0)
	require.ErrorIs(t, err, ErrSizeMismatch)

	ones := make([]float64, Groups709)
	for i := range ones {
		ones[i] = 1
	}
	f709, err := New(Bins709(), ones, "test 709", 1.0)
	require.NoError(t, err)
	assert.True(t, f709.Is709())
	assert.Equal(t, 709.0, f709.Total())
	assert.False(t, Close(f, f709, DefaultRTol, DefaultATol))
}

func TestReadArbitrary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		file    string
		comment string
		bins    int
		checks  []binCheck
	}{
		{
			file: "arb_flux_1", comment: "total flux=9.100000e+01", bins: 3,
			checks: []binCheck{{0, 1e-5, 1e6, 1}, {1, 1e6, 1e7, 90}},
		},
		{
			file: "arb_flux_2", comment: "total flux=1.014956e+10", bins: 8,
			checks: []binCheck{{0, 1.1e-5, 0.25, 3.6e5}, {6, 7.8e6, 1.41e7, 2.87e3}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			t.Parallel()
			f := readTestFile(t, tt.file, FormatArbitrary)
			assert.Equal(t, tt.comment, f.Comment)
			assert.Equal(t, 1.0, f.Norm)
			require.Len(t, f.EnergyBins, tt.bins)
			require.Len(t, f.Values, tt.bins-1)
			for _, c := range tt.checks {
				assert.InDelta(t, c.e0, f.EnergyBins[c.bin], 1e-7*c.e0)
				assert.InDelta(t, c.e1, f.EnergyBins[c.bin+1], 1e-7*c.e1)
				assert.Equal(t, c.flux, f.Values[c.bin])
			}
		})
	}
}

func TestEquality(t *testing.T) {
	t.Parallel()
	a := readTestFile(t, "arb_flux_1", FormatArbitrary)
	b := readTestFile(t, "arb_flux_2", FormatArbitrary)
	again := readTestFile(t, "arb_flux_1", FormatArbitrary)

	assert.True(t, Equal(a, again))
	assert.False(t, Equal(a, b))

	again.Comment = "other"
	again.Norm = 2
	assert.False(t, Equal(a, again))
	assert.True(t, EqualData(a, again))
}

func TestRead709(t *testing.T) {
	t.Parallel()
	f := readTestFile(t, "fluxes_1", Format709)
	require.True(t, f.Is709())
	assert.Equal(t, "total flux=9.100000e+01", f.Comment)
	assert.Equal(t, 1.0, f.Norm)

	tests := []binCheck{
		{0, 1e-5, 1.0471e-5, 1.8182e-3},
		{1, 1.0471e-5, 1.0965e-5, 1.8182e-3},
		{708, 9.6e8, 1.0e9, 0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.e0, f.EnergyBins[tt.bin], 1e-3*tt.e0, "bin %d lower edge", tt.bin)
		assert.InDelta(t, tt.e1, f.EnergyBins[tt.bin+1], 1e-3*tt.e1, "bin %d upper edge", tt.bin)
		assert.Equal(t, tt.flux, f.Values[tt.bin], "bin %d value", tt.bin)
	}

	arb := readTestFile(t, "arb_flux_1", FormatArbitrary)
	assert.InDelta(t, arb.Total(), f.Total(), 1.5e-5)
}

func TestReadErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		text   string
		format Format
		want   error
	}{
		{"even arbitrary count", "4 3 2 1\n1.0\ncomment", FormatArbitrary, ErrArbitraryDataSize},
		{"short 709", "1 2 3 4 5\n1.0\ncomment", Format709, ErrStandardDataSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Read(strings.NewReader(tt.text), tt.format)
			require.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("bad norm", func(t *testing.T) {
		t.Parallel()
		_, err := ReadArbitrary(strings.NewReader("3 2 1\nnorm\ncomment"))
		require.Error(t, err)
	})
	t.Run("bad number", func(t *testing.T) {
		t.Parallel()
		_, err := ReadArbitrary(strings.NewReader("3 x 1\n1.0\ncomment"))
		require.Error(t, err)
	})
	t.Run("too few lines", func(t *testing.T) {
		t.Parallel()
		_, err := ReadArbitrary(strings.NewReader("comment"))
		require.Error(t, err)
	})
}

func TestPrintArbitrary_RoundTrip(t *testing.T) {
	t.Parallel()
	for _, file := range []string{"arb_flux_1", "arb_flux_2"} {
		orig := readTestFile(t, file, FormatArbitrary)
		for columns := 1; columns <= 10; columns++ {
			t.Run(fmt.Sprintf("%s/%d", file, columns), func(t *testing.T) {
				t.Parallel()
				var buf bytes.Buffer
				require.NoError(t, PrintArbitrary(&buf, orig, columns))
				text := buf.String()
				assert.True(t, strings.HasSuffix(text, "\n1\n"+orig.Comment), "norm and comment trail the output")
				lines := strings.Split(text, "\n")
				for _, line := range lines[:len(lines)-1] {
					assert.LessOrEqual(t, len(strings.Fields(line)), columns)
				}
				back, err := ReadArbitrary(strings.NewReader(text))
				require.NoError(t, err)
				assert.True(t, Equal(orig, back))
			})
		}
	}
}

func TestPrint709(t *testing.T) {
	t.Parallel()
	orig := readTestFile(t, "fluxes_1", Format709)
	for _, columns := range []int{1, 3, 7, 10} {
		var buf bytes.Buffer
		require.NoError(t, Print709(&buf, orig, columns))
		back, err := Read709(&buf)
		require.NoError(t, err)
		assert.True(t, Equal(orig, back), "columns %d", columns)
	}

	t.Run("not a 709", func(t *testing.T) {
		t.Parallel()
		arb := readTestFile(t, "arb_flux_1", FormatArbitrary)
		var buf bytes.Buffer
		require.ErrorIs(t, Print709(&buf, arb, 3), ErrNotA709)
		assert.Zero(t, buf.Len())
	})
}

func TestWrite_ConvertsBetweenFormats(t *testing.T) {
	t.Parallel()
	orig := readTestFile(t, "fluxes_1", Format709)
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, orig, FormatArbitrary, 5))
	arb, err := Read(&buf, FormatArbitrary)
	require.NoError(t, err)
	assert.False(t, EqualData(orig, arb), "bins are rounded to 7 digits")
	assert.True(t, Close(orig, arb, DefaultRTol, DefaultATol))
}

func TestParseFormat(t *testing.T) {
	t.Parallel()
	f, err := ParseFormat("709")
	require.NoError(t, err)
	assert.Equal(t, Format709, f)
	_, err = ParseFormat("xml")
	require.Error(t, err)
}
