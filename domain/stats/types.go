// Package stats defines the descriptive statistics model embedded in
// materialized dashboard tables.
package stats

// ColumnStatistics summarizes the convertible numeric values of one column.
// INVARIANTS:
// - Count > 0 (columns with zero convertible values are omitted entirely)
// - Min <= Mean <= Max
// - StdDev is the population standard deviation, not the sample one
// - Mean, Median, Min, Max and StdDev carry at most 2 fractional digits
type ColumnStatistics struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	StdDev float64 `json:"stdDev"`
}

// StatisticalType classifies a column for prompt context and profiling
type StatisticalType string

const (
	TypeNumeric     StatisticalType = "numeric"
	TypeCategorical StatisticalType = "categorical"
	TypeBoolean     StatisticalType = "boolean"
	TypeText        StatisticalType = "text"
	TypeUnknown     StatisticalType = "unknown"
)
