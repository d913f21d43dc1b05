package dashboard

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Raw AI payloads arrive shaped roughly like Config, but the model takes
// liberties: series given as bare column names, camelCase variations, chart
// types outside the known set, numbers quoted as strings. DecodeConfig
// normalizes all of that into a well-formed Config without trusting a single
// advertised invariant. Column references are NOT checked here; that is the
// validator's job.

type rawEnvelope struct {
	Charts            []rawChart  `json:"charts"`
	TableDescriptions []rawTable  `json:"tableDescriptions"`
	Metrics           []rawMetric `json:"metrics"`
	Summary           string      `json:"summary"`
}

type rawChart struct {
	Type        string            `json:"type"`
	Title       string            `json:"title"`
	XAxis       string            `json:"xAxis"`
	YAxis       string            `json:"yAxis"`
	Series      []json.RawMessage `json:"series"`
	Colors      []string          `json:"colors"`
	ShowGrid    *bool             `json:"showGrid"`
	ShowTooltip *bool             `json:"showTooltip"`
	ShowLegend  *bool             `json:"showLegend"`
}

type rawSeries struct {
	Column    string `json:"column"`
	DataKey   string `json:"dataKey"`
	Role      string `json:"role"`
	Type      string `json:"type"`
	Stroke    string `json:"stroke"`
	Fill      string `json:"fill"`
	ActiveDot *bool  `json:"activeDot"`
}

type rawTable struct {
	Title   string      `json:"title"`
	Kind    string      `json:"kind"`
	Columns []string    `json:"columns"`
	Column  string      `json:"column"`
	GroupBy string      `json:"groupBy"`
	N       json.Number `json:"n"`
	Data    *TableData  `json:"data"`
}

type rawMetric struct {
	Label string `json:"label"`
	Value any    `json:"value"`
	Unit  string `json:"unit"`
}

// DecodeConfig parses a raw dashboard payload. It returns an error only for
// JSON that does not fit the envelope at all; recoverable oddities are
// coerced.
func DecodeConfig(data []byte) (*Config, error) {
	var env rawEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("dashboard payload: %w", err)
	}

	cfg := &Config{Summary: strings.TrimSpace(env.Summary)}
	for _, rc := range env.Charts {
		cfg.Charts = append(cfg.Charts, decodeChart(rc))
	}
	for _, rt := range env.TableDescriptions {
		cfg.Tables = append(cfg.Tables, decodeTable(rt))
	}
	for _, rm := range env.Metrics {
		cfg.Metrics = append(cfg.Metrics, MetricSpec(rm))
	}
	return cfg, nil
}

func decodeChart(rc rawChart) ChartSpec {
	spec := ChartSpec{
		Type:        coerceChartType(rc.Type),
		Title:       strings.TrimSpace(rc.Title),
		XAxis:       strings.TrimSpace(rc.XAxis),
		YAxis:       strings.TrimSpace(rc.YAxis),
		Colors:      rc.Colors,
		ShowGrid:    boolOr(rc.ShowGrid, true),
		ShowTooltip: boolOr(rc.ShowTooltip, true),
		ShowLegend:  boolOr(rc.ShowLegend, true),
	}
	for _, raw := range rc.Series {
		if binding, ok := decodeSeries(raw); ok {
			spec.Series = append(spec.Series, binding)
		}
	}
	return spec
}

// decodeSeries accepts either a full binding object or a bare column name.
func decodeSeries(raw json.RawMessage) (SeriesBinding, bool) {
	var rs rawSeries
	if err := json.Unmarshal(raw, &rs); err == nil {
		column := strings.TrimSpace(rs.Column)
		if column == "" {
			column = strings.TrimSpace(rs.DataKey)
		}
		if column == "" {
			return SeriesBinding{}, false
		}
		role := rs.Role
		if role == "" {
			role = rs.Type
		}
		return SeriesBinding{
			Column:    column,
			Role:      role,
			Stroke:    rs.Stroke,
			Fill:      rs.Fill,
			ActiveDot: boolOr(rs.ActiveDot, false),
		}, true
	}

	var column string
	if err := json.Unmarshal(raw, &column); err == nil {
		column = strings.TrimSpace(column)
		if column == "" {
			return SeriesBinding{}, false
		}
		return SeriesBinding{Column: column}, true
	}
	return SeriesBinding{}, false
}

func decodeTable(rt rawTable) TableSpec {
	n := 0
	if rt.N != "" {
		if v, err := rt.N.Int64(); err == nil && v > 0 {
			n = int(v)
		}
	}
	return TableSpec{
		Title:   strings.TrimSpace(rt.Title),
		Kind:    TableKind(strings.ToLower(strings.TrimSpace(rt.Kind))),
		Columns: rt.Columns,
		Column:  strings.TrimSpace(rt.Column),
		GroupBy: strings.TrimSpace(rt.GroupBy),
		N:       n,
		Data:    nil, // never trust precomputed data from the model
	}
}

// coerceChartType lowercases the tag and falls back to bar for anything
// outside the known set.
func coerceChartType(s string) ChartType {
	t := ChartType(strings.ToLower(strings.TrimSpace(s)))
	if t.Valid() {
		return t
	}
	return ChartBar
}

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}
