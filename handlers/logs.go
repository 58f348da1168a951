package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"winwatch/clickhouse"
	"winwatch/models"
)

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "WinWatch backend is running",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// GetLogs serves the filterable, paginated log listing. Pagination and sort
// parameters are validated against their allow-lists before any query is
// built; filter values are passed through to the store as bound parameters.
func GetLogs(store *clickhouse.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var filters models.Filters
		if err := c.ShouldBindQuery(&filters); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}

		var page models.Pagination
		if err := c.ShouldBindQuery(&page); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}

		if page.Page < 1 || page.Limit < 1 || page.Limit > 1000 {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "Invalid pagination parameters. Page must be >= 1, limit must be between 1 and 1000.",
			})
			return
		}

		if !clickhouse.ValidSortField(page.SortBy) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   fmt.Sprintf("Invalid sort field. Allowed fields: %s", strings.Join(clickhouse.SortFields, ", ")),
			})
			return
		}

		page.SortOrder = strings.ToUpper(page.SortOrder)
		if !clickhouse.ValidSortOrder(page.SortOrder) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "Invalid sort order. Must be ASC or DESC",
			})
			return
		}

		logs, total, err := store.QueryLogs(c.Request.Context(), filters, page)
		if err != nil {
			respondQueryError(c, "Failed to fetch logs", err)
			return
		}

		totalPages := total / int64(page.Limit)
		if total%int64(page.Limit) != 0 {
			totalPages++
		}

		c.JSON(http.StatusOK, models.LogsResponse{
			Success: true,
			Data:    logs,
			Pagination: models.PageInfo{
				Page:       page.Page,
				Limit:      page.Limit,
				Total:      total,
				TotalPages: totalPages,
			},
		})
	}
}

// GetLogByID serves a single log looked up by record number. A missing row is
// a 404, not an execution error.
func GetLogByID(store *clickhouse.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		entry, err := store.GetLogByID(c.Request.Context(), id)
		if errors.Is(err, clickhouse.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Log not found"})
			return
		}
		if err != nil {
			respondQueryError(c, "Failed to fetch log", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "data": entry})
	}
}

// GetDistinctValues serves the distinct values of one allow-listed field,
// used to populate the dashboard filter dropdowns.
func GetDistinctValues(store *clickhouse.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		field := c.Param("field")

		values, err := store.DistinctValues(c.Request.Context(), field)
		var verr *clickhouse.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   fmt.Sprintf("Invalid field. Allowed fields: %s", strings.Join(clickhouse.DistinctFields, ", ")),
			})
			return
		}
		if err != nil {
			respondQueryError(c, "Failed to fetch distinct values", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "data": values})
	}
}

// GetLogStats serves counts grouped by severity, hostname, source, and
// category over an optional date range.
func GetLogStats(store *clickhouse.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		filters := dateFilters(c)

		stats, err := store.GroupedStats(c.Request.Context(), filters)
		if err != nil {
			respondQueryError(c, "Failed to fetch log statistics", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "data": stats})
	}
}

// dateFilters extracts the date-range bounds shared by all aggregate
// endpoints. Other filter dimensions deliberately do not apply to aggregates.
func dateFilters(c *gin.Context) models.Filters {
	return models.Filters{
		StartDate: c.Query("startDate"),
		EndDate:   c.Query("endDate"),
	}
}

// respondQueryError maps store errors to responses: rejected input is a 400
// with the reason, anything else a 500 with a generic error plus the
// underlying message for diagnostics.
func respondQueryError(c *gin.Context, generic string, err error) {
	var verr *clickhouse.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": verr.Message})
		return
	}

	log.Printf("%s: %v", generic, err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error":   generic,
		"message": err.Error(),
	})
}
