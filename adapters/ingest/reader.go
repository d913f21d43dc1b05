// Package ingest parses uploaded CSV and JSON files into in-memory datasets.
package ingest

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"godash/domain/core"
	"godash/domain/dataset"
)

type format int

const (
	formatUnknown format = iota
	formatCSV
	formatJSON
)

// Reader turns raw upload bytes into a Dataset. It keeps values lexically
// faithful: CSV cells stay strings, JSON numbers stay json.Number.
type Reader struct{}

func NewReader() *Reader {
	return &Reader{}
}

// Parse validates the media type and parses content into a Dataset. The
// returned dataset always holds at least one record and one column.
func (r *Reader) Parse(content []byte, mimeType, filename string) (*dataset.Dataset, error) {
	f := resolveFormat(mimeType, filename)
	if f == formatUnknown {
		return nil, core.NewUnsupportedFormatError(mimeType)
	}

	var (
		columns []string
		records []dataset.Record
		err     error
	)
	switch f {
	case formatCSV:
		columns, records, err = parseCSV(content)
	case formatJSON:
		columns, records, err = parseJSON(content)
	}
	if err != nil {
		return nil, err
	}

	return &dataset.Dataset{
		ID:          core.DatasetID(core.NewID()),
		Name:        filepath.Base(filename),
		Columns:     columns,
		Records:     records,
		Fingerprint: core.NewDatasetFingerprint(content),
		UploadedAt:  time.Now().UTC(),
	}, nil
}

// resolveFormat maps the declared MIME type to a parser, falling back to the
// file extension when the browser sent a generic type.
func resolveFormat(mimeType, filename string) format {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.Index(mt, ";"); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}

	switch mt {
	case "text/csv", "application/csv", "text/comma-separated-values":
		return formatCSV
	case "application/json", "text/json":
		return formatJSON
	case "", "application/octet-stream":
		// fall through to the extension
	default:
		return formatUnknown
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return formatCSV
	case ".json":
		return formatJSON
	}
	return formatUnknown
}

func parseCSV(content []byte) ([]string, []dataset.Record, error) {
	content = bytes.TrimPrefix(content, []byte("\ufeff"))

	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1 // ragged rows are tolerated, short rows just omit keys

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, core.NewParseError("reading csv", err)
	}
	if len(rows) == 0 {
		return nil, nil, core.NewMalformedDatasetError("file contains no header row")
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}

	records := make([]dataset.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isEmptyRow(row) {
			continue
		}
		record := make(dataset.Record, len(header))
		for j, value := range row {
			if j >= len(header) {
				break // extra cells beyond the header have no column name
			}
			clean := strings.TrimSpace(value)
			if clean == "" {
				record[header[j]] = nil
			} else {
				record[header[j]] = clean
			}
		}
		records = append(records, record)
	}

	if len(records) == 0 {
		return nil, nil, core.NewMalformedDatasetError("file contains a header but no data rows")
	}
	return header, records, nil
}

func parseJSON(content []byte) ([]string, []dataset.Record, error) {
	dec := json.NewDecoder(bytes.NewReader(content))
	dec.UseNumber()

	var rawRecords []json.RawMessage
	if err := dec.Decode(&rawRecords); err != nil {
		return nil, nil, core.NewMalformedDatasetError(fmt.Sprintf("expected a JSON array of objects: %v", err))
	}
	if len(rawRecords) == 0 {
		return nil, nil, core.NewMalformedDatasetError("JSON array is empty")
	}

	var columns []string
	seen := make(map[string]bool)
	records := make([]dataset.Record, 0, len(rawRecords))

	for i, raw := range rawRecords {
		record, keys, err := decodeFlatObject(raw)
		if err != nil {
			return nil, nil, core.NewMalformedDatasetError(fmt.Sprintf("record %d: %v", i, err))
		}
		for _, k := range keys {
			if !seen[k] {
				seen[k] = true
				columns = append(columns, k)
			}
		}
		records = append(records, record)
	}
	return columns, records, nil
}

// decodeFlatObject parses one JSON object, rejecting nested objects and
// arrays, and reports its keys in document order.
func decodeFlatObject(raw json.RawMessage) (dataset.Record, []string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, fmt.Errorf("expected an object, got %v", tok)
	}

	record := make(dataset.Record)
	var keys []string
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key := keyTok.(string)

		var value any
		if err := dec.Decode(&value); err != nil {
			return nil, nil, fmt.Errorf("value for %q: %v", key, err)
		}
		switch value.(type) {
		case map[string]any, []any:
			return nil, nil, fmt.Errorf("field %q is nested, records must be flat", key)
		}

		if _, dup := record[key]; !dup {
			keys = append(keys, key)
		}
		record[key] = value
	}
	return record, keys, nil
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
