package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"winwatch/clickhouse"
)

// allowedIntervals are the bucket widths callers may request for the time
// series. The aggregation currently buckets by hour regardless; the parameter
// is validated so the contract is ready for configurable widths.
var allowedIntervals = []string{
	"1 minute", "5 minutes", "15 minutes", "30 minutes",
	"1 hour", "6 hours", "12 hours", "1 day",
}

func GetSummary(store *clickhouse.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		summary, err := store.Summary(c.Request.Context(), dateFilters(c))
		if err != nil {
			respondQueryError(c, "Failed to fetch dashboard summary", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "data": summary})
	}
}

func GetSeverityDistribution(store *clickhouse.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		buckets, err := store.SeverityDistribution(c.Request.Context(), dateFilters(c))
		if err != nil {
			respondQueryError(c, "Failed to fetch severity distribution", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "data": buckets})
	}
}

func GetHostnameDistribution(store *clickhouse.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid limit. Must be an integer."})
			return
		}

		buckets, err := store.HostnameDistribution(c.Request.Context(), dateFilters(c), limit)
		if err != nil {
			respondQueryError(c, "Failed to fetch hostname distribution", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "data": buckets})
	}
}

func GetSourceDistribution(store *clickhouse.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		buckets, err := store.SourceDistribution(c.Request.Context(), dateFilters(c))
		if err != nil {
			respondQueryError(c, "Failed to fetch source distribution", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "data": buckets})
	}
}

func GetCategoryDistribution(store *clickhouse.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		buckets, err := store.CategoryDistribution(c.Request.Context(), dateFilters(c))
		if err != nil {
			respondQueryError(c, "Failed to fetch category distribution", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "data": buckets})
	}
}

func GetTimeSeries(store *clickhouse.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		interval := c.DefaultQuery("interval", "1 hour")
		valid := false
		for _, allowed := range allowedIntervals {
			if interval == allowed {
				valid = true
				break
			}
		}
		if !valid {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   fmt.Sprintf("Invalid interval. Allowed intervals: %s", strings.Join(allowedIntervals, ", ")),
			})
			return
		}

		points, err := store.TimeSeries(c.Request.Context(), dateFilters(c))
		if err != nil {
			respondQueryError(c, "Failed to fetch time series data", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "data": points})
	}
}

// GetOverview serves all dashboard aggregates in one call. The store fans the
// five sub-queries out concurrently; any failure fails the whole request.
func GetOverview(store *clickhouse.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		overview, err := store.Overview(c.Request.Context(), dateFilters(c))
		if err != nil {
			respondQueryError(c, "Failed to fetch overview statistics", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "data": overview})
	}
}
