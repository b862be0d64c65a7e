package calculation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const historyCSV = `year,stock,bond,inflation
1995,0.3720,0.1847,0.0254
1996,0.2268,0.0363,0.0332
1997,0.3310,0.0965,0.0170
1998,0.2834,0.0869,0.0161
1999,0.2089,-0.0082,0.0268
2000,-0.0903,0.1163,0.0339
`

// createTestDataFiles writes a history CSV into dir and returns its path.
func createTestDataFiles(dir string) (string, error) {
	path := filepath.Join(dir, "history.csv")
	return path, os.WriteFile(path, []byte(historyCSV), 0644)
}

func TestLoadHistoricalSource(t *testing.T) {
	path, err := createTestDataFiles(t.TempDir())
	require.NoError(t, err)

	src, err := LoadHistoricalSource(path, "", 1)
	require.NoError(t, err)
	assert.Equal(t, ModeRolling, src.Mode)
	require.Len(t, src.Records, 6)
	assert.Equal(t, "1995", src.Records[0].Label)
	assertDecimal(t, "0.3720", src.Records[0].Stock)
	assertDecimal(t, "-0.0082", src.Records[4].Bond)
	assert.Empty(t, src.MissingYears)

	_, err = LoadHistoricalSource(filepath.Join(t.TempDir(), "missing.csv"), "", 1)
	assert.Error(t, err)
}

func TestReadHistoricalSource_Errors(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		mode  string
		want  string
	}{
		{"missing column", "year,stock,bond\n2000,0.1,0.05\n", "", `missing "inflation"`},
		{"bad value", "year,stock,bond,inflation\n2000,abc,0.05,0.02\n", "", "invalid stock"},
		{"bad year", "year,stock,bond,inflation\nY2K,0.1,0.05,0.02\n", "", "invalid year"},
		{"empty", "year,stock,bond,inflation\n", "", "no valid data points"},
		{"duplicate", "year,stock,bond,inflation\n2000,0.1,0,0\n2000,0.2,0,0\n", "", "duplicate year 2000"},
		{"unknown mode", historyCSV, "shuffle", "unknown historical mode"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadHistoricalSource(strings.NewReader(tc.input), tc.mode, 1)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestReadHistoricalSource_SortsAndReportsGaps(t *testing.T) {
	input := "Year, Inflation, Bond, Stock\n2003,0.02,0.04,0.28\n2000,0.03,0.11,-0.09\n"
	src, err := ReadHistoricalSource(strings.NewReader(input), ModeWrapped, 1)
	require.NoError(t, err)
	require.Len(t, src.Records, 2)
	assert.Equal(t, "2000", src.Records[0].Label)
	assertDecimal(t, "-0.09", src.Records[0].Stock)
	assertDecimal(t, "0.03", src.Records[0].Inflation)
	assert.Equal(t, []int{2001, 2002}, src.MissingYears)
}

func TestHistoricalSource_Rolling(t *testing.T) {
	src, err := ReadHistoricalSource(strings.NewReader(historyCSV), ModeRolling, 1)
	require.NoError(t, err)

	assert.Equal(t, 3, src.MaxSupportedIterations(4))
	assert.Equal(t, 6, src.MaxSupportedIterations(1))
	assert.Equal(t, 0, src.MaxSupportedIterations(7))

	seq, err := src.SequenceFor(2, 4)
	require.NoError(t, err)
	labels := make([]string, len(seq))
	for i, r := range seq {
		labels[i] = r.Label
	}
	assert.Equal(t, []string{"1997", "1998", "1999", "2000"}, labels)

	_, err = src.SequenceFor(3, 4)
	assert.ErrorIs(t, err, ErrMissingSequence)
}

func TestHistoricalSource_Wrapped(t *testing.T) {
	src, err := ReadHistoricalSource(strings.NewReader(historyCSV), ModeWrapped, 1)
	require.NoError(t, err)
	assert.Equal(t, 6, src.MaxSupportedIterations(30))

	seq, err := src.SequenceFor(5, 3)
	require.NoError(t, err)
	assert.Equal(t, "2000", seq[0].Label)
	assert.Equal(t, "1995", seq[1].Label)
	assert.Equal(t, "1996", seq[2].Label)

	_, err = src.SequenceFor(6, 3)
	assert.ErrorIs(t, err, ErrMissingSequence)
}

func TestHistoricalSource_Bootstrap(t *testing.T) {
	src, err := ReadHistoricalSource(strings.NewReader(historyCSV), ModeBootstrap, 42)
	require.NoError(t, err)
	assert.Equal(t, Unlimited, src.MaxSupportedIterations(100))

	a, err := src.SequenceFor(17, 40)
	require.NoError(t, err)
	b, err := src.SequenceFor(17, 40)
	require.NoError(t, err)
	assert.Equal(t, a, b, "same iteration yields the same path")

	c, err := src.SequenceFor(18, 40)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)

	known := map[string]bool{}
	for _, r := range src.Records {
		known[r.Label] = true
	}
	for _, r := range a {
		assert.True(t, known[r.Label], "bootstrap draws only recorded years")
	}
}

func TestHistoricalSource_Statistics(t *testing.T) {
	src, err := ReadHistoricalSource(strings.NewReader(historyCSV), ModeRolling, 1)
	require.NoError(t, err)
	stock, bond, inflation := src.Statistics()
	assert.Equal(t, 6, stock.Count)
	assertDecimal(t, "-0.0903", stock.Min)
	assertDecimal(t, "0.372", stock.Max)
	assertDecimal(t, "-0.0082", bond.Min)
	assert.True(t, inflation.Mean.GreaterThan(d("0.02")))
	assert.True(t, stock.StdDev.IsPositive())
}
