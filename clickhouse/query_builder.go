package clickhouse

import (
	"fmt"
	"strings"

	"winwatch/models"
)

const (
	columnRecordNumber = "record_number"
	columnTimestamp    = "timestamp"
	columnSeverity     = "severity"
	columnHostname     = "hostname"
	columnSourceName   = "source_name"
	columnMessage      = "message"
	columnCategory     = "category"
	columnEventID      = "event_id"
	columnSubjectUser  = "subject_user_name"
	columnProcessName  = "process_name"
	columnProcessID    = "process_id"
)

const (
	defaultLimit = 50
	maxLimit     = 1000
)

// SortFields lists the accepted sortBy values in the order reported to
// callers on validation failure.
var SortFields = []string{"timestamp", "severity", "hostname", "source", "category", "message"}

// sortColumns maps API sort fields to store columns. Doubles as the sortBy
// allow-list: only values present here are ever interpolated into ORDER BY.
var sortColumns = map[string]string{
	"timestamp": columnTimestamp,
	"severity":  columnSeverity,
	"hostname":  columnHostname,
	"source":    columnSourceName,
	"category":  columnCategory,
	"message":   columnMessage,
}

var sortOrders = map[string]bool{
	"ASC":  true,
	"DESC": true,
}

// DistinctFields lists the accepted field names for the distinct-values
// endpoint in the order reported to callers.
var DistinctFields = []string{"severity", "hostname", "source", "category", "user", "process"}

var distinctColumns = map[string]string{
	"severity": columnSeverity,
	"hostname": columnHostname,
	"source":   columnSourceName,
	"category": columnCategory,
	"user":     columnSubjectUser,
	"process":  columnProcessName,
}

func ValidSortField(field string) bool {
	_, ok := sortColumns[field]
	return ok
}

func ValidSortOrder(order string) bool {
	return sortOrders[order]
}

// QueryBuilder collects predicates and their bound parameters, then renders
// the WHERE clause in one pass. Values always travel as named parameters;
// only column names from the constants above appear in the clause text.
type QueryBuilder struct {
	conditions []string
	params     map[string]string
	paramCount int
}

func NewQueryBuilder() *QueryBuilder {
	return &QueryBuilder{
		conditions: []string{},
		params:     map[string]string{},
	}
}

// bind registers a parameter value and returns its placeholder.
func (qb *QueryBuilder) bind(value string) string {
	qb.paramCount++
	name := fmt.Sprintf("p%d", qb.paramCount)
	qb.params[name] = value
	return fmt.Sprintf("{%s:String}", name)
}

func (qb *QueryBuilder) AddCondition(column, value string) {
	qb.conditions = append(qb.conditions, fmt.Sprintf("%s = %s", column, qb.bind(value)))
}

// AddSearch matches term as a case-sensitive unanchored substring of the
// message text.
func (qb *QueryBuilder) AddSearch(term string) {
	qb.conditions = append(qb.conditions,
		fmt.Sprintf("%s LIKE concat('%%', %s, '%%')", columnMessage, qb.bind(term)))
}

// AddTimeRange adds inclusive bounds on the event timestamp. Either bound may
// be empty. Bounds are validated locally before being bound, so unparseable
// dates are rejected without touching the store.
func (qb *QueryBuilder) AddTimeRange(start, end string) error {
	if start != "" {
		if _, err := ParseTimestamp(start); err != nil {
			return &ValidationError{Message: fmt.Sprintf("invalid startDate: %v", err)}
		}
		qb.conditions = append(qb.conditions,
			fmt.Sprintf("parseDateTimeBestEffort(%s) >= parseDateTimeBestEffort(%s)", columnTimestamp, qb.bind(start)))
	}

	if end != "" {
		if _, err := ParseTimestamp(end); err != nil {
			return &ValidationError{Message: fmt.Sprintf("invalid endDate: %v", err)}
		}
		qb.conditions = append(qb.conditions,
			fmt.Sprintf("parseDateTimeBestEffort(%s) <= parseDateTimeBestEffort(%s)", columnTimestamp, qb.bind(end)))
	}

	return nil
}

// WhereClause renders all collected predicates joined by AND, or an empty
// string when no predicates were added.
func (qb *QueryBuilder) WhereClause() string {
	if len(qb.conditions) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(qb.conditions, " AND ")
}

func (qb *QueryBuilder) Params() map[string]string {
	return qb.params
}

// filterWhere builds the WHERE clause shared by the row query, the count
// query, and every aggregate. The aggregate endpoints pass a Filters with
// only the date bounds set, so the predicate construction stays identical
// everywhere.
func filterWhere(f models.Filters) (*QueryBuilder, error) {
	qb := NewQueryBuilder()

	if f.Severity != "" {
		qb.AddCondition(columnSeverity, f.Severity)
	}
	if f.Hostname != "" {
		qb.AddCondition(columnHostname, f.Hostname)
	}
	if f.Source != "" {
		qb.AddCondition(columnSourceName, f.Source)
	}
	if f.Category != "" {
		qb.AddCondition(columnCategory, f.Category)
	}
	if err := qb.AddTimeRange(f.StartDate, f.EndDate); err != nil {
		return nil, err
	}
	if f.Search != "" {
		qb.AddSearch(f.Search)
	}

	return qb, nil
}

// Helper functions

func validateLimit(limit, defaultLimit, maxLimit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

func validateOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
