// Package dashboard defines the dashboard configuration model: what the AI
// collaborator proposes, what validation repairs, and what persistence
// snapshots.
package dashboard

import (
	"time"

	"godash/domain/core"
	"godash/domain/stats"
)

// ChartType is the render family a chart belongs to
type ChartType string

const (
	ChartLine    ChartType = "line"
	ChartBar     ChartType = "bar"
	ChartArea    ChartType = "area"
	ChartPie     ChartType = "pie"
	ChartScatter ChartType = "scatter"
)

// Valid reports whether t is one of the known chart types.
func (t ChartType) Valid() bool {
	switch t {
	case ChartLine, ChartBar, ChartArea, ChartPie, ChartScatter:
		return true
	}
	return false
}

// DefaultSeriesColor is applied when a chart declares no palette.
const DefaultSeriesColor = "#8884d8"

// SeriesBinding maps one plotted series onto a dataset column.
type SeriesBinding struct {
	Column    string `json:"column"`
	Role      string `json:"role,omitempty"`
	Stroke    string `json:"stroke,omitempty"`
	Fill      string `json:"fill,omitempty"`
	ActiveDot bool   `json:"activeDot,omitempty"`
}

// ChartSpec describes one chart of the dashboard. After validation every
// column referenced by XAxis, YAxis or Series exists in the source dataset.
type ChartSpec struct {
	Type        ChartType       `json:"type"`
	Title       string          `json:"title"`
	XAxis       string          `json:"xAxis,omitempty"`
	YAxis       string          `json:"yAxis,omitempty"`
	Series      []SeriesBinding `json:"series"`
	Colors      []string        `json:"colors,omitempty"`
	ShowGrid    bool            `json:"showGrid"`
	ShowTooltip bool            `json:"showTooltip"`
	ShowLegend  bool            `json:"showLegend"`
}

// FirstColor returns the first declared palette color, or the default.
func (c *ChartSpec) FirstColor() string {
	if len(c.Colors) > 0 && c.Colors[0] != "" {
		return c.Colors[0]
	}
	return DefaultSeriesColor
}

// TableKind selects the computation the materializer runs for a table
type TableKind string

const (
	TableSummaryStatistics     TableKind = "summary_statistics"
	TableFrequencyDistribution TableKind = "frequency_distribution"
	// TableTopNValues is accepted from the AI but not computed yet; the
	// materializer emits a single placeholder note for it.
	TableTopNValues TableKind = "top_n_values"
)

// TableSpec describes one tabular view. Data stays nil until the materializer
// runs, and stays nil forever for kinds it does not recognize.
type TableSpec struct {
	Title   string     `json:"title"`
	Kind    TableKind  `json:"kind"`
	Columns []string   `json:"columns,omitempty"`
	Column  string     `json:"column,omitempty"`
	GroupBy string     `json:"groupBy,omitempty"`
	N       int        `json:"n,omitempty"`
	Data    *TableData `json:"data,omitempty"`
}

// TableData is the materialized payload for one table. Exactly one field is
// populated, matching the table kind.
type TableData struct {
	Summary   map[string]stats.ColumnStatistics `json:"summary,omitempty"`
	Frequency map[string]*stats.FrequencyTable  `json:"frequency,omitempty"`
	Notes     []string                          `json:"notes,omitempty"`
}

// MetricSpec is a headline figure the AI precomputed or labeled. The value is
// passed through untouched.
type MetricSpec struct {
	Label string `json:"label"`
	Value any    `json:"value"`
	Unit  string `json:"unit,omitempty"`
}

// Config is a complete dashboard: charts, tables, metrics and an optional
// markdown summary.
type Config struct {
	Charts  []ChartSpec  `json:"charts"`
	Tables  []TableSpec  `json:"tableDescriptions"`
	Metrics []MetricSpec `json:"metrics"`
	Summary string       `json:"summary,omitempty"`
}

// Empty reports whether the config carries no renderable content at all.
func (c *Config) Empty() bool {
	return len(c.Charts) == 0 && len(c.Tables) == 0 && len(c.Metrics) == 0
}

// Snapshot is a saved dashboard owned by a user. Config is persisted verbatim
// including materialized table data, so reloading it does not recompute
// anything.
type Snapshot struct {
	ID             core.DashboardID `json:"id"`
	UserID         core.UserID      `json:"userId"`
	Title          string           `json:"title"`
	DatasetName    string           `json:"datasetName"`
	DatasetColumns []string         `json:"datasetColumns"`
	Config         Config           `json:"config"`
	CreatedAt      time.Time        `json:"createdAt"`
}
