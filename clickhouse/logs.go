package clickhouse

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"winwatch/models"
)

// logProjection is the fixed column list served to the API. The aliases are
// part of the dashboard contract and must not change.
var logProjection = strings.Join([]string{
	columnRecordNumber + " AS id",
	columnTimestamp,
	columnSeverity,
	columnHostname,
	columnSourceName + " AS source",
	columnMessage,
	columnCategory,
	columnEventID,
	columnSubjectUser + " AS user",
	columnProcessName + " AS process",
	columnProcessID + " AS thread",
	"'' AS raw_data",
}, ", ")

// QueryLogs retrieves one page of logs plus the total count of matching rows.
//
// Filters applied (all optional, combined with AND):
//   - Severity/Hostname/Source/Category: exact match
//   - Search: case-sensitive substring match on message
//   - StartDate/EndDate: inclusive timestamp range
//
// The count query shares the exact WHERE clause of the row query so the
// pagination total always agrees with the filtered set. Sort parameters must
// come from the allow-lists; they are the only caller input interpolated into
// the statement text.
func (c *Client) QueryLogs(ctx context.Context, filters models.Filters, page models.Pagination) ([]models.LogEntry, int64, error) {
	start := time.Now()
	defer func() {
		log.Printf("QueryLogs: duration=%v filters=[severity=%s hostname=%s source=%s category=%s search=%s]",
			time.Since(start), filters.Severity, filters.Hostname, filters.Source, filters.Category, filters.Search)
	}()

	sortColumn, ok := sortColumns[page.SortBy]
	if !ok {
		return nil, 0, &ValidationError{Message: fmt.Sprintf("invalid sort field %q", page.SortBy)}
	}
	sortOrder := strings.ToUpper(page.SortOrder)
	if !sortOrders[sortOrder] {
		return nil, 0, &ValidationError{Message: fmt.Sprintf("invalid sort order %q", page.SortOrder)}
	}

	limit := validateLimit(page.Limit, defaultLimit, maxLimit)
	offset := validateOffset((page.Page - 1) * limit)

	qb, err := filterWhere(filters)
	if err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		%s
		ORDER BY %s %s
		LIMIT %d OFFSET %d
	`, logProjection, c.table, qb.WhereClause(), sortColumn, sortOrder, limit, offset)

	rows, err := c.Query(ctx, Statement{SQL: query, Params: qb.Params()})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query logs: %w", err)
	}

	entries := []models.LogEntry{}
	for _, row := range rows {
		entry, err := mapLogEntry(row)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to map log row: %w", err)
		}
		entries = append(entries, entry)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) AS total FROM %s %s", c.table, qb.WhereClause())
	countRows, err := c.Query(ctx, Statement{SQL: countQuery, Params: qb.Params()})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count logs: %w", err)
	}

	var total int64
	if len(countRows) > 0 {
		total = rowInt64(countRows[0], "total")
	}

	return entries, total, nil
}

// GetLogByID fetches a single log by its store-assigned record number.
// Returns ErrNotFound when no row matches.
func (c *Client) GetLogByID(ctx context.Context, id string) (*models.LogEntry, error) {
	qb := NewQueryBuilder()
	qb.AddCondition(columnRecordNumber, id)

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		%s
		LIMIT 1
	`, logProjection, c.table, qb.WhereClause())

	rows, err := c.Query(ctx, Statement{SQL: query, Params: qb.Params()})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch log %s: %w", id, err)
	}

	if len(rows) == 0 {
		return nil, ErrNotFound
	}

	entry, err := mapLogEntry(rows[0])
	if err != nil {
		return nil, fmt.Errorf("failed to map log row: %w", err)
	}

	return &entry, nil
}

// DistinctValues lists the non-empty distinct values of an allow-listed
// field, sorted ascending. The field name is mapped to its store column;
// anything outside the map is rejected.
func (c *Client) DistinctValues(ctx context.Context, field string) ([]string, error) {
	column, ok := distinctColumns[field]
	if !ok {
		return nil, &ValidationError{Message: fmt.Sprintf("invalid field %q", field)}
	}

	query := fmt.Sprintf(`
		SELECT DISTINCT %s AS value
		FROM %s
		WHERE %s IS NOT NULL AND %s != ''
		ORDER BY %s
	`, column, c.table, column, column, column)

	rows, err := c.Query(ctx, Statement{SQL: query})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch distinct %s values: %w", field, err)
	}

	values := []string{}
	for _, row := range rows {
		values = append(values, rowString(row, "value"))
	}

	return values, nil
}

// GroupedStats returns counts grouped by severity, hostname, source, and
// category, optionally restricted to a date range.
func (c *Client) GroupedStats(ctx context.Context, filters models.Filters) ([]models.GroupedStat, error) {
	qb, err := filterWhere(filters)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT %s, %s, %s AS source, %s, COUNT(*) AS count
		FROM %s
		%s
		GROUP BY %s, %s, %s, %s
		ORDER BY count DESC
	`, columnSeverity, columnHostname, columnSourceName, columnCategory,
		c.table, qb.WhereClause(),
		columnSeverity, columnHostname, columnSourceName, columnCategory)

	rows, err := c.Query(ctx, Statement{SQL: query, Params: qb.Params()})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch log statistics: %w", err)
	}

	stats := []models.GroupedStat{}
	for _, row := range rows {
		stats = append(stats, models.GroupedStat{
			Severity: rowString(row, "severity"),
			Hostname: rowString(row, "hostname"),
			Source:   rowString(row, "source"),
			Category: rowString(row, "category"),
			Count:    rowInt(row, "count"),
		})
	}

	return stats, nil
}
