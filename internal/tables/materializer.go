// Package tables fills AI-described table specs with locally computed data.
// The AI names what it wants to see; every number is computed here, never
// taken from the model.
package tables

import (
	"fmt"
	"strings"

	"godash/domain/dashboard"
	"godash/domain/dataset"
	"godash/internal/analysis"
)

type Materializer struct {
	engine *analysis.Engine
}

func NewMaterializer(engine *analysis.Engine) *Materializer {
	return &Materializer{engine: engine}
}

// MaterializeAll computes data for every table spec in order.
func (m *Materializer) MaterializeAll(specs []dashboard.TableSpec, records []dataset.Record) []dashboard.TableSpec {
	out := make([]dashboard.TableSpec, 0, len(specs))
	for _, spec := range specs {
		out = append(out, m.Materialize(spec, records))
	}
	return out
}

// Materialize computes the payload one table kind asks for. It never fails:
// unknown kinds come back with Data still nil, which the client renders as
// "no data available".
func (m *Materializer) Materialize(spec dashboard.TableSpec, records []dataset.Record) dashboard.TableSpec {
	switch spec.Kind {
	case dashboard.TableSummaryStatistics:
		spec.Data = &dashboard.TableData{
			Summary: m.engine.NumericStats(records, designatedColumns(spec)),
		}
	case dashboard.TableFrequencyDistribution:
		spec.Data = &dashboard.TableData{
			Frequency: m.engine.Frequency(records, designatedColumns(spec)),
		}
	case dashboard.TableTopNValues:
		// deliberately unimplemented; the placeholder keeps the table shape
		// stable for clients
		spec.Data = &dashboard.TableData{Notes: []string{topNNote(spec)}}
	}
	return spec
}

// designatedColumns normalizes the two ways the AI names target columns.
func designatedColumns(spec dashboard.TableSpec) []string {
	if len(spec.Columns) > 0 {
		return spec.Columns
	}
	if spec.Column != "" {
		return []string{spec.Column}
	}
	return nil
}

func topNNote(spec dashboard.TableSpec) string {
	columns := strings.Join(designatedColumns(spec), ", ")
	if columns == "" {
		columns = "(unspecified)"
	}
	groupBy := spec.GroupBy
	if groupBy == "" {
		groupBy = "(unspecified)"
	}
	return fmt.Sprintf("Top %d values for columns %s grouped by %s are not computed in this version.",
		spec.N, columns, groupBy)
}
