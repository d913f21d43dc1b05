// Package dataset defines the tabular data model shared by ingestion,
// statistics computation and dashboard generation.
package dataset

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"godash/domain/core"
)

// Record is one row of an uploaded dataset, keyed by column name. Values are
// string, json.Number, bool or nil depending on the source format. A key may
// be absent when the source row omitted the field.
type Record map[string]any

// Dataset is a parsed upload held in memory between upload and analysis.
// Invariants: Records is non-empty and every record's keys are a subset of
// Columns.
type Dataset struct {
	ID          core.DatasetID          `json:"id"`
	Name        string                  `json:"name"`
	OwnerID     core.UserID             `json:"-"`
	Columns     []string                `json:"columns"`
	Records     []Record                `json:"-"`
	Fingerprint core.DatasetFingerprint `json:"-"`
	UploadedAt  time.Time               `json:"uploadedAt"`
}

// RecordCount returns the number of parsed records.
func (d *Dataset) RecordCount() int {
	return len(d.Records)
}

// HasColumn reports whether name belongs to the declared column set.
func (d *Dataset) HasColumn(name string) bool {
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Representative returns a record used to probe per-column value shapes.
func (d *Dataset) Representative() Record {
	if len(d.Records) == 0 {
		return nil
	}
	return d.Records[0]
}

// Number converts a record value to a float64. The rule is shared by the
// statistics engine, the chart validator and the profiler: trimmed non-empty
// strings go through strconv.ParseFloat, json.Number through Float64, and
// only finite results count. Everything else (nil, bool, empty string,
// non-numeric text) does not convert.
func Number(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, isFinite(x)
	case float32:
		return float64(x), isFinite(float64(x))
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, false
		}
		return f, isFinite(f)
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, isFinite(f)
	default:
		return 0, false
	}
}

// ValueString renders a record value as a frequency-table key. It reports
// ok=false for values excluded from counting: absent handled by the caller,
// nil, and empty strings.
func ValueString(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		if x == "" {
			return "", false
		}
		return x, true
	case json.Number:
		return x.String(), true
	case bool:
		return strconv.FormatBool(x), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	default:
		return "", false
	}
}

// NumericValue reads column col from r and converts it with Number.
func NumericValue(r Record, col string) (float64, bool) {
	v, present := r[col]
	if !present {
		return 0, false
	}
	return Number(v)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
