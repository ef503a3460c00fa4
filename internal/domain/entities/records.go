package entities

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// DbRecord is one row returned from a backend table. Values keep their
// JSON types (string, float64, bool, nil, nested maps and slices).
type DbRecord map[string]any

// DbTableResult holds the rows matched in one table. The backend sends
// either a bare array of rows or an object wrapping the rows with counts;
// both decode into this type.
type DbTableResult struct {
	Table             string     `json:"table"`
	Data              []DbRecord `json:"data"`
	RecordCount       int        `json:"record_count"`
	AvgRelevanceScore *float64   `json:"avg_relevance_score,omitempty"`

	// Quarantined counts rows that were not JSON objects.
	Quarantined int `json:"-"`
}

type dbTableEnvelope struct {
	Table             string            `json:"table"`
	Data              []json.RawMessage `json:"data"`
	RecordCount       *int              `json:"record_count"`
	AvgRelevanceScore *float64          `json:"avg_relevance_score"`
}

// UnmarshalJSON accepts both wire shapes and drops rows that are not objects.
func (r *DbTableResult) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = DbTableResult{}
		return nil
	}

	var rows []json.RawMessage
	var out DbTableResult
	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &rows); err != nil {
			return fmt.Errorf("decoding table rows: %w", err)
		}
	case '{':
		var env dbTableEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			return fmt.Errorf("decoding table result: %w", err)
		}
		rows = env.Data
		out.Table = env.Table
		out.AvgRelevanceScore = env.AvgRelevanceScore
		if env.RecordCount != nil {
			out.RecordCount = *env.RecordCount
		}
	default:
		return fmt.Errorf("%w: table result must be an array or an object", ErrInvalidRecord)
	}

	out.Data = make([]DbRecord, 0, len(rows))
	for _, raw := range rows {
		var rec DbRecord
		if err := json.Unmarshal(raw, &rec); err != nil || rec == nil {
			out.Quarantined++
			continue
		}
		out.Data = append(out.Data, rec)
	}
	if out.RecordCount == 0 {
		out.RecordCount = len(out.Data)
	}

	*r = out
	return nil
}

// Columns returns the record keys in a stable order: "id" first, then the
// remaining keys sorted.
func (rec DbRecord) Columns() []string {
	keys := make([]string, 0, len(rec))
	_, hasID := rec["id"]
	if hasID {
		keys = append(keys, "id")
	}
	rest := make([]string, 0, len(rec))
	for k := range rec {
		if k == "id" {
			continue
		}
		rest = append(rest, k)
	}
	sort.Strings(rest)
	return append(keys, rest...)
}
