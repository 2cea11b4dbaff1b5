package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/natefinch/atomic"

	"github.com/CTAG07/Origami/pkg/markov"
)

// DefaultTopWords is the number of words the frequency report shows by default.
const DefaultTopWords = 20

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	axisStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	barStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
)

// ChartOptions controls the size and title of a frequency chart.
type ChartOptions struct {
	Width  int
	Height int
	Title  string
}

// DefaultChartOptions returns options sized for a standard 80 column terminal.
func DefaultChartOptions() ChartOptions {
	return ChartOptions{
		Width:  72,
		Height: DefaultTopWords + 2,
		Title:  fmt.Sprintf("Top %d Word Frequencies", DefaultTopWords),
	}
}

// FrequencyTable renders counts as a table of rank, word and count.
func FrequencyTable(counts []markov.WordCount) string {
	rows := make([][]string, 0, len(counts))
	for i, wc := range counts {
		rows = append(rows, []string{strconv.Itoa(i + 1), wc.Word, strconv.Itoa(wc.Count)})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(axisStyle).
		Headers("RANK", "WORD", "FREQUENCY").
		Rows(rows...)
	return t.String()
}

// FrequencyChart renders counts as a horizontal bar chart, one bar per word
// in the given order. The title is printed above the chart.
func FrequencyChart(counts []markov.WordCount, opts ChartOptions) string {
	var sb strings.Builder
	if opts.Title != "" {
		sb.WriteString(titleStyle.Render(opts.Title))
		sb.WriteString("\n")
	}
	if len(counts) == 0 {
		sb.WriteString(axisStyle.Render("no data"))
		sb.WriteString("\n")
		return sb.String()
	}

	width, height := opts.Width, opts.Height
	if width <= 0 {
		width = DefaultChartOptions().Width
	}
	// One row per bar plus the axis.
	if height < len(counts)+1 {
		height = len(counts) + 1
	}

	data := make([]barchart.BarData, 0, len(counts))
	for _, wc := range counts {
		data = append(data, barchart.BarData{
			Label: wc.Word,
			Values: []barchart.BarValue{
				{Name: wc.Word, Value: float64(wc.Count), Style: barStyle},
			},
		})
	}

	bc := barchart.New(width, height, barchart.WithHorizontalBars())
	bc.PushAll(data)
	bc.Draw()

	sb.WriteString(bc.View())
	sb.WriteString("\n")
	return sb.String()
}

// WriteFile atomically replaces the file at path with content.
func WriteFile(path, content string) error {
	if err := atomic.WriteFile(path, strings.NewReader(content)); err != nil {
		return fmt.Errorf("failed to write report to %s: %w", path, err)
	}
	return nil
}
