package clickhouse

import (
	"fmt"
	"strconv"
	"time"

	"winwatch/models"
)

// timestampLayouts covers the formats ClickHouse emits for DateTime columns
// plus the formats the dashboard sends for date-range bounds.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseTimestamp parses s against the known timestamp layouts.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// rowString reads a field as a string, substituting "" for missing or null
// values. ClickHouse occasionally serializes numeric columns as JSON numbers,
// so those are formatted rather than dropped.
func rowString(r Row, key string) string {
	switch v := r[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// rowInt reads a numeric field that may arrive as a JSON number or, for
// UInt64 columns, a JSON string. Missing or non-numeric values become 0.
func rowInt(r Row, key string) int {
	switch v := r[key].(type) {
	case float64:
		return int(v)
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

func rowInt64(r Row, key string) int64 {
	switch v := r[key].(type) {
	case float64:
		return int64(v)
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// rowOptionalInt is rowInt for nullable columns: missing, null, or
// non-numeric values map to nil instead of 0.
func rowOptionalInt(r Row, key string) *int {
	switch v := r[key].(type) {
	case float64:
		n := int(v)
		return &n
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil
		}
		return &n
	default:
		return nil
	}
}

// mapLogEntry converts a raw store row into a LogEntry. Missing fields become
// zero values, but a timestamp that is present and unparseable is an error:
// corrupt data is reported, not silently defaulted.
func mapLogEntry(r Row) (models.LogEntry, error) {
	entry := models.LogEntry{
		ID:       rowString(r, "id"),
		Severity: rowString(r, "severity"),
		Hostname: rowString(r, "hostname"),
		Source:   rowString(r, "source"),
		Message:  rowString(r, "message"),
		Category: rowString(r, "category"),
		EventID:  rowOptionalInt(r, "event_id"),
		User:     rowString(r, "user"),
		Process:  rowString(r, "process"),
		Thread:   rowString(r, "thread"),
		RawData:  "",
	}

	if raw := rowString(r, "timestamp"); raw != "" {
		ts, err := ParseTimestamp(raw)
		if err != nil {
			return models.LogEntry{}, fmt.Errorf("log %s: %w", entry.ID, err)
		}
		entry.Timestamp = ts
	}

	return entry, nil
}
