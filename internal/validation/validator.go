// Package validation repairs AI-proposed chart configurations against the
// real dataset schema. The model regularly references columns that do not
// exist; everything here assumes the proposal is hostile and fixes what it
// can instead of erroring.
package validation

import (
	"godash/domain/dashboard"
	"godash/domain/dataset"
)

// maxSynthesizedSeries caps how many bindings recovery invents for a chart
// whose proposed series were all hallucinated.
const maxSynthesizedSeries = 2

// ValidateCharts returns charts whose every column reference (series, x-axis,
// y-axis) exists in columns. Charts that were fully valid pass through
// unchanged. Charts with some invalid series keep the valid ones. Charts
// whose series were all invalid get up to two synthesized bindings over
// numeric columns, judged by their value in the representative record; when
// the dataset has no numeric column at all, such charts are dropped. The
// function never fails, and applying it twice yields the same result as
// applying it once.
func ValidateCharts(charts []dashboard.ChartSpec, columns []string, representative dataset.Record) []dashboard.ChartSpec {
	known := make(map[string]bool, len(columns))
	for _, c := range columns {
		known[c] = true
	}
	numeric := numericColumns(columns, representative)

	out := make([]dashboard.ChartSpec, 0, len(charts))
	for _, chart := range charts {
		repaired, keep := repairChart(chart, columns, known, numeric)
		if keep {
			out = append(out, repaired)
		}
	}
	return out
}

func repairChart(chart dashboard.ChartSpec, columns []string, known map[string]bool, numeric []string) (dashboard.ChartSpec, bool) {
	valid := chart.Series[:0:0]
	for _, s := range chart.Series {
		if known[s.Column] {
			valid = append(valid, s)
		}
	}

	switch {
	case len(valid) > 0 || len(chart.Series) == 0:
		// fully valid charts and partial repairs, plus charts that never
		// declared series in the first place
		chart.Series = valid
	default:
		// every proposed series was hallucinated; rebind onto real numeric
		// columns or give the chart up
		if len(numeric) == 0 {
			return chart, false
		}
		chart.Series = synthesizeSeries(&chart, numeric)
	}

	chart.XAxis = repairXAxis(chart.XAxis, columns, known, numeric)
	if chart.YAxis != "" && !known[chart.YAxis] {
		chart.YAxis = ""
	}
	return chart, true
}

func synthesizeSeries(chart *dashboard.ChartSpec, numeric []string) []dashboard.SeriesBinding {
	color := chart.FirstColor()
	n := len(numeric)
	if n > maxSynthesizedSeries {
		n = maxSynthesizedSeries
	}

	series := make([]dashboard.SeriesBinding, 0, n)
	for _, col := range numeric[:n] {
		series = append(series, dashboard.SeriesBinding{
			Column:    col,
			Role:      string(chart.Type),
			Stroke:    color,
			Fill:      color,
			ActiveDot: true,
		})
	}
	return series
}

// repairXAxis keeps a valid binding and otherwise assigns the first numeric
// column, falling back to the first column of any kind. Kept charts always
// leave with an x-axis that exists.
func repairXAxis(axis string, columns []string, known map[string]bool, numeric []string) string {
	if axis != "" && known[axis] {
		return axis
	}
	if len(numeric) > 0 {
		return numeric[0]
	}
	if len(columns) > 0 {
		return columns[0]
	}
	return ""
}

// numericColumns filters columns to those whose representative value
// converts, preserving declaration order.
func numericColumns(columns []string, representative dataset.Record) []string {
	var out []string
	for _, col := range columns {
		if _, ok := dataset.NumericValue(representative, col); ok {
			out = append(out, col)
		}
	}
	return out
}
