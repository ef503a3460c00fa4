package entities

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Timestamp is a backend time value. The backend emits ISO 8601 with or
// without a zone; values that match no known layout keep their raw text.
type Timestamp struct {
	time.Time
	Raw string
}

// ParseTimestamp parses s leniently. Unknown layouts yield a zero Time with Raw set.
func ParseTimestamp(s string) Timestamp {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t, Raw: s}
		}
	}
	return Timestamp{Raw: s}
}

// UnmarshalJSON never fails on a string; non-string values are treated as unset.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '"' {
		*t = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t = ParseTimestamp(s)
	return nil
}

// MarshalJSON writes the raw value back when present.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.Raw != "" {
		return json.Marshal(t.Raw)
	}
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339))
}

// String formats the timestamp for display.
func (t Timestamp) String() string {
	if t.IsZero() {
		return t.Raw
	}
	return t.Format("2006-01-02 15:04")
}

// Date formats the calendar date only.
func (t Timestamp) Date() string {
	if t.IsZero() {
		return t.Raw
	}
	return t.Format("2006-01-02")
}
