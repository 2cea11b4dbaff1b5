package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CTAG07/Origami/pkg/markov"
)

var sampleCounts = []markov.WordCount{
	{Word: "you", Count: 42},
	{Word: "shake", Count: 17},
	{Word: "wildest", Count: 3},
}

func TestFrequencyTable(t *testing.T) {
	out := FrequencyTable(sampleCounts)

	assert.Contains(t, out, "WORD")
	assert.Contains(t, out, "FREQUENCY")
	for _, wc := range sampleCounts {
		assert.Contains(t, out, wc.Word)
	}
	assert.Contains(t, out, "42")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	youLine, shakeLine := -1, -1
	for i, line := range lines {
		if strings.Contains(line, "you") {
			youLine = i
		}
		if strings.Contains(line, "shake") {
			shakeLine = i
		}
	}
	assert.Less(t, youLine, shakeLine, "rows should keep the ranking order")
}

func TestFrequencyChart(t *testing.T) {
	out := FrequencyChart(sampleCounts, ChartOptions{Width: 40, Height: 6, Title: "Top Words"})

	require.NotEmpty(t, out)
	assert.Contains(t, out, "Top Words")
	assert.Greater(t, len(strings.Split(out, "\n")), 2)
}

func TestFrequencyChartEmpty(t *testing.T) {
	out := FrequencyChart(nil, DefaultChartOptions())
	assert.Contains(t, out, "no data")
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart.txt")

	require.NoError(t, WriteFile(path, "first"))
	require.NoError(t, WriteFile(path, "second"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	err = WriteFile(filepath.Join(t.TempDir(), "missing", "chart.txt"), "x")
	assert.Error(t, err)
}
