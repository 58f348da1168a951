package clickhouse

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"winwatch/models"
)

const (
	defaultHostnameLimit = 10
	maxHostnameLimit     = 100
	sourceLimit          = 15
	categoryLimit        = 20
)

// severityColors is the fixed palette used by the dashboard charts.
var severityColors = map[string]string{
	"ERROR":    "#ef4444",
	"WARNING":  "#f59e0b",
	"INFO":     "#3b82f6",
	"DEBUG":    "#6b7280",
	"CRITICAL": "#dc2626",
	"FATAL":    "#7c2d12",
}

const defaultSeverityColor = "#6b7280"

func severityColor(severity string) string {
	if color, ok := severityColors[severity]; ok {
		return color
	}
	return defaultSeverityColor
}

// groupCount runs a grouped count over the date-filtered set for one column.
// limit <= 0 means no row cap. All aggregate endpoints funnel through this so
// they share the row query's predicate construction.
func (c *Client) groupCount(ctx context.Context, filters models.Filters, column string, limit int) ([]Row, error) {
	qb, err := filterWhere(filters)
	if err != nil {
		return nil, err
	}

	limitClause := ""
	if limit > 0 {
		limitClause = fmt.Sprintf(" LIMIT %d", limit)
	}

	query := fmt.Sprintf(`
		SELECT %s AS label, COUNT(*) AS count
		FROM %s
		%s
		GROUP BY %s
		ORDER BY count DESC%s
	`, column, c.table, qb.WhereClause(), column, limitClause)

	return c.Query(ctx, Statement{SQL: query, Params: qb.Params()})
}

// SeverityDistribution counts logs per severity level, each bucket carrying
// its chart color.
func (c *Client) SeverityDistribution(ctx context.Context, filters models.Filters) ([]models.DistributionBucket, error) {
	rows, err := c.groupCount(ctx, filters, columnSeverity, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch severity distribution: %w", err)
	}

	buckets := []models.DistributionBucket{}
	for _, row := range rows {
		label := rowString(row, "label")
		buckets = append(buckets, models.DistributionBucket{
			Label: label,
			Value: rowInt(row, "count"),
			Color: severityColor(label),
		})
	}

	return buckets, nil
}

// HostnameDistribution counts logs per hostname, capped at limit rows
// (default 10).
func (c *Client) HostnameDistribution(ctx context.Context, filters models.Filters, limit int) ([]models.DistributionBucket, error) {
	limit = validateLimit(limit, defaultHostnameLimit, maxHostnameLimit)

	rows, err := c.groupCount(ctx, filters, columnHostname, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch hostname distribution: %w", err)
	}

	return plainBuckets(rows), nil
}

// SourceDistribution counts logs per source, capped at 15 rows.
func (c *Client) SourceDistribution(ctx context.Context, filters models.Filters) ([]models.DistributionBucket, error) {
	rows, err := c.groupCount(ctx, filters, columnSourceName, sourceLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch source distribution: %w", err)
	}

	return plainBuckets(rows), nil
}

// CategoryDistribution counts logs per category, capped at 20 rows. Rows with
// an empty category are labeled "Unknown".
func (c *Client) CategoryDistribution(ctx context.Context, filters models.Filters) ([]models.DistributionBucket, error) {
	rows, err := c.groupCount(ctx, filters, columnCategory, categoryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch category distribution: %w", err)
	}

	buckets := []models.DistributionBucket{}
	for _, row := range rows {
		label := rowString(row, "label")
		if label == "" {
			label = "Unknown"
		}
		buckets = append(buckets, models.DistributionBucket{
			Label: label,
			Value: rowInt(row, "count"),
		})
	}

	return buckets, nil
}

func plainBuckets(rows []Row) []models.DistributionBucket {
	buckets := []models.DistributionBucket{}
	for _, row := range rows {
		buckets = append(buckets, models.DistributionBucket{
			Label: rowString(row, "label"),
			Value: rowInt(row, "count"),
		})
	}
	return buckets
}

// TimeSeries counts logs per (hour bucket, severity) and pivots the rows into
// one point per bucket with a key per severity observed there. Bucket width
// is fixed at one hour; the interval the caller requested is validated at the
// handler but does not change the bucketing.
func (c *Client) TimeSeries(ctx context.Context, filters models.Filters) ([]models.TimeSeriesPoint, error) {
	qb, err := filterWhere(filters)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT toStartOfHour(parseDateTimeBestEffort(%s)) AS time_bucket, COUNT(*) AS count, %s
		FROM %s
		%s
		GROUP BY time_bucket, %s
		ORDER BY time_bucket ASC
	`, columnTimestamp, columnSeverity, c.table, qb.WhereClause(), columnSeverity)

	rows, err := c.Query(ctx, Statement{SQL: query, Params: qb.Params()})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch time series data: %w", err)
	}

	// Rows arrive ordered by bucket, so a new bucket value starts a new point.
	points := []models.TimeSeriesPoint{}
	var current models.TimeSeriesPoint
	var currentTime string

	for _, row := range rows {
		bucket := rowString(row, "time_bucket")
		if current == nil || bucket != currentTime {
			current = models.TimeSeriesPoint{"time": bucket}
			currentTime = bucket
			points = append(points, current)
		}
		current[rowString(row, "severity")] = rowInt(row, "count")
	}

	return points, nil
}

// Summary computes the dashboard headline counts in a single pass over the
// date-filtered set.
func (c *Client) Summary(ctx context.Context, filters models.Filters) (*models.Summary, error) {
	qb, err := filterWhere(filters)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT
			COUNT(*) AS total_logs,
			COUNT(DISTINCT %s) AS unique_hosts,
			COUNT(DISTINCT %s) AS unique_sources,
			COUNT(DISTINCT %s) AS unique_categories,
			COUNT(CASE WHEN %s = 'ERROR' THEN 1 END) AS error_count,
			COUNT(CASE WHEN %s = 'WARNING' THEN 1 END) AS warning_count,
			COUNT(CASE WHEN %s = 'INFO' THEN 1 END) AS info_count
		FROM %s
		%s
	`, columnHostname, columnSourceName, columnCategory,
		columnSeverity, columnSeverity, columnSeverity,
		c.table, qb.WhereClause())

	rows, err := c.Query(ctx, Statement{SQL: query, Params: qb.Params()})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dashboard summary: %w", err)
	}

	summary := &models.Summary{}
	if len(rows) > 0 {
		row := rows[0]
		summary.TotalLogs = rowInt(row, "total_logs")
		summary.UniqueHosts = rowInt(row, "unique_hosts")
		summary.UniqueSources = rowInt(row, "unique_sources")
		summary.UniqueCategories = rowInt(row, "unique_categories")
		summary.ErrorCount = rowInt(row, "error_count")
		summary.WarningCount = rowInt(row, "warning_count")
		summary.InfoCount = rowInt(row, "info_count")
	}

	return summary, nil
}

// Overview fetches the five dashboard aggregates concurrently and waits for
// all of them. Any sub-query failure fails the whole call; there is no
// partial payload.
func (c *Client) Overview(ctx context.Context, filters models.Filters) (*models.Overview, error) {
	start := time.Now()
	defer func() {
		log.Printf("Overview: duration=%v range=[%s..%s]", time.Since(start), filters.StartDate, filters.EndDate)
	}()

	var overview models.Overview
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		summary, err := c.Summary(gctx, filters)
		if err == nil {
			overview.Summary = *summary
		}
		return err
	})
	g.Go(func() error {
		buckets, err := c.SeverityDistribution(gctx, filters)
		if err == nil {
			overview.Severity = buckets
		}
		return err
	})
	g.Go(func() error {
		buckets, err := c.HostnameDistribution(gctx, filters, defaultHostnameLimit)
		if err == nil {
			overview.Hostnames = buckets
		}
		return err
	})
	g.Go(func() error {
		buckets, err := c.SourceDistribution(gctx, filters)
		if err == nil {
			overview.Sources = buckets
		}
		return err
	})
	g.Go(func() error {
		buckets, err := c.CategoryDistribution(gctx, filters)
		if err == nil {
			overview.Categories = buckets
		}
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &overview, nil
}
