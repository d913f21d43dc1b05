package stats

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FrequencyTable counts occurrences of raw column values. Iteration and JSON
// marshaling follow first-occurrence order, so a reloaded table renders the
// same way the original did. The zero value is unusable; call
// NewFrequencyTable.
type FrequencyTable struct {
	keys   []string
	counts map[string]int
}

// FrequencyEntry is one value with its occurrence count.
type FrequencyEntry struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

func NewFrequencyTable() *FrequencyTable {
	return &FrequencyTable{counts: make(map[string]int)}
}

// Add records one occurrence of value.
func (t *FrequencyTable) Add(value string) {
	if _, seen := t.counts[value]; !seen {
		t.keys = append(t.keys, value)
	}
	t.counts[value]++
}

// Count returns the occurrences of value, zero when never seen.
func (t *FrequencyTable) Count(value string) int {
	return t.counts[value]
}

// Len returns the number of distinct values.
func (t *FrequencyTable) Len() int {
	return len(t.keys)
}

// Total returns the sum of all counts.
func (t *FrequencyTable) Total() int {
	total := 0
	for _, c := range t.counts {
		total += c
	}
	return total
}

// Entries returns value/count pairs in first-occurrence order.
func (t *FrequencyTable) Entries() []FrequencyEntry {
	entries := make([]FrequencyEntry, 0, len(t.keys))
	for _, k := range t.keys {
		entries = append(entries, FrequencyEntry{Value: k, Count: t.counts[k]})
	}
	return entries
}

// MarshalJSON writes the table as a JSON object whose keys appear in
// first-occurrence order.
func (t *FrequencyTable) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range t.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		fmt.Fprintf(&buf, "%d", t.counts[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object, preserving its key order.
func (t *FrequencyTable) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("frequency table: expected JSON object, got %v", tok)
	}

	t.keys = nil
	t.counts = make(map[string]int)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("frequency table: non-string key %v", keyTok)
		}
		var count int
		if err := dec.Decode(&count); err != nil {
			return fmt.Errorf("frequency table: count for %q: %w", key, err)
		}
		if _, seen := t.counts[key]; !seen {
			t.keys = append(t.keys, key)
		}
		t.counts[key] = count
	}
	// consume closing brace
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
