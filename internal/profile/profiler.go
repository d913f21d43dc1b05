// Package profile infers a lightweight per-column schema from an uploaded
// dataset. The result rides along with the upload response and gives the AI
// collaborator typed context instead of bare column names.
package profile

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/stat"

	"godash/domain/dataset"
	dstats "godash/domain/stats"
)

// sampleLimit bounds profiling work the same way table computations are
// bounded: only the leading records are examined.
const sampleLimit = 1000

// maxSampleValues caps the example values carried per column.
const maxSampleValues = 5

// categoricalCutoff is the distinct-value ceiling below which a text column
// is treated as categorical.
const categoricalCutoff = 12

// NumericMarkers describes distribution shape for numeric columns.
type NumericMarkers struct {
	Skewness    float64 `json:"skewness"`
	Kurtosis    float64 `json:"kurtosis"` // excess kurtosis, 0 for a normal distribution
	LooksNormal bool    `json:"looksNormal"`
}

// ColumnProfile is the inferred schema of one column.
type ColumnProfile struct {
	Name     string                 `json:"name"`
	Type     dstats.StatisticalType `json:"type"`
	NonEmpty int                    `json:"nonEmpty"`
	Distinct int                    `json:"distinct"`
	Samples  []string               `json:"samples,omitempty"`
	Numeric  *NumericMarkers        `json:"numeric,omitempty"`
}

type Profiler struct{}

func NewProfiler() *Profiler {
	return &Profiler{}
}

// Profile inspects the leading records of ds and classifies every declared
// column. Column order follows the dataset's declared order.
func (p *Profiler) Profile(ds *dataset.Dataset) []ColumnProfile {
	records := ds.Records
	if len(records) > sampleLimit {
		records = records[:sampleLimit]
	}

	profiles := make([]ColumnProfile, 0, len(ds.Columns))
	for _, col := range ds.Columns {
		profiles = append(profiles, profileColumn(col, records))
	}
	return profiles
}

// TypeMap flattens profiles into the column→type form the prompt builder
// wants.
func TypeMap(profiles []ColumnProfile) map[string]dstats.StatisticalType {
	m := make(map[string]dstats.StatisticalType, len(profiles))
	for _, cp := range profiles {
		m[cp.Name] = cp.Type
	}
	return m
}

func profileColumn(col string, records []dataset.Record) ColumnProfile {
	cp := ColumnProfile{Name: col, Type: dstats.TypeUnknown}

	distinct := make(map[string]bool)
	var numbers []float64
	allNumeric := true
	allBoolean := true

	for _, record := range records {
		value, present := record[col]
		if !present {
			continue
		}
		text, ok := dataset.ValueString(value)
		if !ok {
			continue
		}
		cp.NonEmpty++

		if !distinct[text] {
			distinct[text] = true
			if len(cp.Samples) < maxSampleValues {
				cp.Samples = append(cp.Samples, text)
			}
		}

		if n, ok := dataset.Number(value); ok {
			numbers = append(numbers, n)
		} else {
			allNumeric = false
		}
		if !isBooleanWord(value, text) {
			allBoolean = false
		}
	}

	cp.Distinct = len(distinct)
	if cp.NonEmpty == 0 {
		return cp
	}

	switch {
	case allNumeric:
		cp.Type = dstats.TypeNumeric
		cp.Numeric = numericMarkers(numbers)
	case allBoolean:
		cp.Type = dstats.TypeBoolean
	case cp.Distinct <= categoricalCutoff:
		cp.Type = dstats.TypeCategorical
	default:
		cp.Type = dstats.TypeText
	}
	return cp
}

func isBooleanWord(value any, text string) bool {
	if _, isBool := value.(bool); isBool {
		return true
	}
	switch strings.ToLower(text) {
	case "true", "false", "yes", "no", "y", "n", "0", "1":
		return true
	}
	return false
}

// numericMarkers computes shape markers when the column has enough spread to
// make them meaningful.
func numericMarkers(values []float64) *NumericMarkers {
	if len(values) < 3 {
		return nil
	}
	skew := stat.Skew(values, nil)
	kurt := stat.ExKurtosis(values, nil)
	if math.IsNaN(skew) || math.IsInf(skew, 0) || math.IsNaN(kurt) || math.IsInf(kurt, 0) {
		return nil
	}
	return &NumericMarkers{
		Skewness:    skew,
		Kurtosis:    kurt,
		LooksNormal: math.Abs(skew) < 0.5 && math.Abs(kurt) < 1.0,
	}
}
