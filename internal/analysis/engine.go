// Package analysis computes the descriptive statistics dashboard tables
// embed: per-column numeric summaries and frequency distributions.
package analysis

import (
	"github.com/montanaflynn/stats"

	"godash/domain/dataset"
	dstats "godash/domain/stats"
)

// SampleLimit bounds how many records feed any single computation. Datasets
// larger than this are summarized from their first SampleLimit records only,
// so results are approximations there. Callers surfacing these numbers should
// say so.
const SampleLimit = 1000

// Engine consolidates the table computations used by the materializer.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// NumericStats summarizes the convertible numeric values of each requested
// column over the first SampleLimit records. Columns without a single
// convertible value are omitted from the result entirely.
func (e *Engine) NumericStats(records []dataset.Record, columns []string) map[string]dstats.ColumnStatistics {
	sampled := sample(records)
	out := make(map[string]dstats.ColumnStatistics)
	for _, col := range columns {
		values := numericColumn(sampled, col)
		if len(values) == 0 {
			continue
		}
		out[col] = summarize(values)
	}
	return out
}

// Frequency counts distinct raw values of each requested column over the
// first SampleLimit records. Absent keys, nulls and empty strings are not
// counted. Value order inside each table is first-occurrence order.
func (e *Engine) Frequency(records []dataset.Record, columns []string) map[string]*dstats.FrequencyTable {
	sampled := sample(records)
	out := make(map[string]*dstats.FrequencyTable, len(columns))
	for _, col := range columns {
		table := dstats.NewFrequencyTable()
		for _, record := range sampled {
			value, present := record[col]
			if !present {
				continue
			}
			key, ok := dataset.ValueString(value)
			if !ok {
				continue
			}
			table.Add(key)
		}
		out[col] = table
	}
	return out
}

func summarize(values []float64) dstats.ColumnStatistics {
	mean, _ := stats.Mean(values)
	median, _ := stats.Median(values)
	min, _ := stats.Min(values)
	max, _ := stats.Max(values)
	// population standard deviation: these are dashboards over the full
	// uploaded data, not inferences from a sample of it
	stdDev, _ := stats.StandardDeviationPopulation(values)

	return dstats.ColumnStatistics{
		Count:  len(values),
		Mean:   round2(mean),
		Median: round2(median),
		Min:    round2(min),
		Max:    round2(max),
		StdDev: round2(stdDev),
	}
}

func numericColumn(records []dataset.Record, col string) []float64 {
	var values []float64
	for _, record := range records {
		if v, ok := dataset.NumericValue(record, col); ok {
			values = append(values, v)
		}
	}
	return values
}

func sample(records []dataset.Record) []dataset.Record {
	if len(records) > SampleLimit {
		return records[:SampleLimit]
	}
	return records
}

// round2 rounds half away from zero to two fractional digits.
func round2(v float64) float64 {
	rounded, _ := stats.Round(v, 2)
	return rounded
}
