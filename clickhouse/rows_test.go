package clickhouse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapLogEntry_FullRow(t *testing.T) {
	entry, err := mapLogEntry(Row{
		"id":        "184467",
		"timestamp": "2024-11-22 10:30:00",
		"severity":  "ERROR",
		"hostname":  "DC-01",
		"source":    "Microsoft-Windows-Security-Auditing",
		"message":   "An account failed to log on.",
		"category":  "Logon",
		"event_id":  "4625",
		"user":      "SYSTEM",
		"process":   "lsass.exe",
		"thread":    "712",
	})
	require.NoError(t, err)

	assert.Equal(t, "184467", entry.ID)
	assert.Equal(t, time.Date(2024, 11, 22, 10, 30, 0, 0, time.UTC), entry.Timestamp)
	assert.Equal(t, "ERROR", entry.Severity)
	assert.Equal(t, "DC-01", entry.Hostname)
	assert.Equal(t, "Microsoft-Windows-Security-Auditing", entry.Source)
	assert.Equal(t, "Logon", entry.Category)
	require.NotNil(t, entry.EventID)
	assert.Equal(t, 4625, *entry.EventID)
	assert.Equal(t, "SYSTEM", entry.User)
	assert.Equal(t, "lsass.exe", entry.Process)
	assert.Equal(t, "712", entry.Thread)
	assert.Equal(t, "", entry.RawData)
}

func TestMapLogEntry_MissingFields(t *testing.T) {
	entry, err := mapLogEntry(Row{"id": "1"})
	require.NoError(t, err)

	assert.Equal(t, "1", entry.ID)
	assert.True(t, entry.Timestamp.IsZero())
	assert.Equal(t, "", entry.Severity)
	assert.Equal(t, "", entry.Hostname)
	assert.Nil(t, entry.EventID)
}

func TestMapLogEntry_NullFields(t *testing.T) {
	entry, err := mapLogEntry(Row{
		"id":       "1",
		"severity": nil,
		"event_id": nil,
	})
	require.NoError(t, err)

	assert.Equal(t, "", entry.Severity)
	assert.Nil(t, entry.EventID)
}

// A timestamp that is present but unparseable is corrupt data and must be an
// error, while a missing timestamp is just a zero instant.
func TestMapLogEntry_CorruptTimestamp(t *testing.T) {
	_, err := mapLogEntry(Row{
		"id":        "42",
		"timestamp": "eleven o'clock",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "42")
	assert.Contains(t, err.Error(), "eleven o'clock")
}

func TestMapLogEntry_NumericID(t *testing.T) {
	// JSONEachRow can serialize UInt columns as numbers depending on settings.
	entry, err := mapLogEntry(Row{
		"id":       float64(184467),
		"event_id": float64(4625),
	})
	require.NoError(t, err)

	assert.Equal(t, "184467", entry.ID)
	require.NotNil(t, entry.EventID)
	assert.Equal(t, 4625, *entry.EventID)
}

func TestRowInt(t *testing.T) {
	tests := []struct {
		name     string
		row      Row
		expected int
	}{
		{"string count", Row{"count": "120"}, 120},
		{"numeric count", Row{"count": float64(120)}, 120},
		{"non-numeric string", Row{"count": "lots"}, 0},
		{"missing key", Row{}, 0},
		{"null value", Row{"count": nil}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, rowInt(tt.row, "count"))
		})
	}
}

func TestRowOptionalInt(t *testing.T) {
	assert.Nil(t, rowOptionalInt(Row{}, "event_id"))
	assert.Nil(t, rowOptionalInt(Row{"event_id": nil}, "event_id"))
	assert.Nil(t, rowOptionalInt(Row{"event_id": "n/a"}, "event_id"))

	got := rowOptionalInt(Row{"event_id": "4625"}, "event_id")
	require.NotNil(t, got)
	assert.Equal(t, 4625, *got)
}
