package clickhouse

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"winwatch/models"
)

func TestQueryBuilder_AddCondition(t *testing.T) {
	qb := NewQueryBuilder()

	qb.AddCondition("severity", "ERROR")

	assert.Equal(t, "WHERE severity = {p1:String}", qb.WhereClause())
	assert.Equal(t, map[string]string{"p1": "ERROR"}, qb.Params())
}

func TestQueryBuilder_MultipleConditions(t *testing.T) {
	qb := NewQueryBuilder()

	qb.AddCondition("severity", "ERROR")
	qb.AddCondition("hostname", "DC-01")
	qb.AddCondition("category", "Security")

	assert.Equal(t,
		"WHERE severity = {p1:String} AND hostname = {p2:String} AND category = {p3:String}",
		qb.WhereClause())
	assert.Equal(t, map[string]string{"p1": "ERROR", "p2": "DC-01", "p3": "Security"}, qb.Params())
}

func TestQueryBuilder_AddSearch(t *testing.T) {
	qb := NewQueryBuilder()

	qb.AddSearch("logon failed")

	assert.Equal(t, "WHERE message LIKE concat('%', {p1:String}, '%')", qb.WhereClause())
	assert.Equal(t, map[string]string{"p1": "logon failed"}, qb.Params())
}

func TestQueryBuilder_AddTimeRange(t *testing.T) {
	tests := []struct {
		name           string
		startDate      string
		endDate        string
		wantConditions int
		wantErr        bool
	}{
		{
			name:           "both start and end",
			startDate:      "2024-11-01T00:00:00Z",
			endDate:        "2024-11-22T23:59:59Z",
			wantConditions: 2,
		},
		{
			name:           "only start",
			startDate:      "2024-11-01T00:00:00Z",
			wantConditions: 1,
		},
		{
			name:           "only end",
			endDate:        "2024-11-22T23:59:59Z",
			wantConditions: 1,
		},
		{
			name: "neither",
		},
		{
			name:           "clickhouse datetime format",
			startDate:      "2024-11-01 08:30:00",
			wantConditions: 1,
		},
		{
			name:      "invalid start date",
			startDate: "not-a-date",
			wantErr:   true,
		},
		{
			name:      "invalid end date",
			endDate:   "not-a-date",
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qb := NewQueryBuilder()
			err := qb.AddTimeRange(tt.startDate, tt.endDate)

			if tt.wantErr {
				assert.Error(t, err)
				var verr *ValidationError
				assert.ErrorAs(t, err, &verr)
			} else {
				assert.NoError(t, err)
				assert.Len(t, qb.Params(), tt.wantConditions)
			}
		})
	}
}

func TestQueryBuilder_TimeRangePredicates(t *testing.T) {
	qb := NewQueryBuilder()
	require.NoError(t, qb.AddTimeRange("2024-11-01T00:00:00Z", "2024-11-22T23:59:59Z"))

	where := qb.WhereClause()
	assert.Contains(t, where, "parseDateTimeBestEffort(timestamp) >= parseDateTimeBestEffort({p1:String})")
	assert.Contains(t, where, "parseDateTimeBestEffort(timestamp) <= parseDateTimeBestEffort({p2:String})")
}

func TestQueryBuilder_WhereClause_Empty(t *testing.T) {
	qb := NewQueryBuilder()

	assert.Equal(t, "", qb.WhereClause())
	assert.Empty(t, qb.Params())
}

// Every combination of present filters must yield exactly one predicate per
// present filter, joined by AND, with no dangling operators.
func TestFilterWhere_AllCombinations(t *testing.T) {
	type dimension struct {
		name  string
		apply func(*models.Filters)
	}

	dimensions := []dimension{
		{"severity", func(f *models.Filters) { f.Severity = "ERROR" }},
		{"hostname", func(f *models.Filters) { f.Hostname = "DC-01" }},
		{"source", func(f *models.Filters) { f.Source = "Security" }},
		{"category", func(f *models.Filters) { f.Category = "Logon" }},
		{"search", func(f *models.Filters) { f.Search = "denied" }},
		{"startDate", func(f *models.Filters) { f.StartDate = "2024-11-01T00:00:00Z" }},
		{"endDate", func(f *models.Filters) { f.EndDate = "2024-11-22T00:00:00Z" }},
	}

	for mask := 0; mask < 1<<len(dimensions); mask++ {
		var filters models.Filters
		var present []string
		for i, dim := range dimensions {
			if mask&(1<<i) != 0 {
				dim.apply(&filters)
				present = append(present, dim.name)
			}
		}

		t.Run(fmt.Sprintf("mask=%07b", mask), func(t *testing.T) {
			qb, err := filterWhere(filters)
			require.NoError(t, err)

			where := qb.WhereClause()
			if len(present) == 0 {
				assert.Equal(t, "", where)
				return
			}

			require.True(t, strings.HasPrefix(where, "WHERE "))
			predicates := strings.Split(strings.TrimPrefix(where, "WHERE "), " AND ")
			assert.Len(t, predicates, len(present))
			for _, p := range predicates {
				assert.NotEmpty(t, strings.TrimSpace(p))
			}
			assert.Len(t, qb.Params(), len(present))
			assert.NotContains(t, where, "1=1")
			assert.NotContains(t, where, "AND AND")
			assert.False(t, strings.HasSuffix(where, "AND"))
		})
	}
}

// Filter values must never appear in the statement text, only in the bound
// parameters.
func TestFilterWhere_ValuesNotInterpolated(t *testing.T) {
	qb, err := filterWhere(models.Filters{
		Severity: "ERROR' OR 1=1 --",
		Search:   "'; DROP TABLE windows_logs; --",
	})
	require.NoError(t, err)

	where := qb.WhereClause()
	assert.NotContains(t, where, "DROP TABLE")
	assert.NotContains(t, where, "OR 1=1")
	assert.Equal(t, "ERROR' OR 1=1 --", qb.Params()["p1"])
	assert.Equal(t, "'; DROP TABLE windows_logs; --", qb.Params()["p2"])
}

func TestSortAllowLists(t *testing.T) {
	for _, field := range SortFields {
		assert.True(t, ValidSortField(field), field)
	}
	assert.False(t, ValidSortField("record_number"))
	assert.False(t, ValidSortField("timestamp; DROP TABLE"))
	assert.False(t, ValidSortField(""))

	assert.True(t, ValidSortOrder("ASC"))
	assert.True(t, ValidSortOrder("DESC"))
	assert.False(t, ValidSortOrder("desc"))
	assert.False(t, ValidSortOrder("RANDOM()"))
}
