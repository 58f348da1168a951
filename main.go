package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"winwatch/clickhouse"
	"winwatch/handlers"
	"winwatch/middleware"
)

func main() {
	godotenv.Load()

	store, err := clickhouse.NewClient(clickhouse.Config{
		URL:      envOr("CLICKHOUSE_URL", "http://localhost:8123"),
		User:     os.Getenv("CLICKHOUSE_USER"),
		Password: os.Getenv("CLICKHOUSE_PASSWORD"),
		Database: envOr("CLICKHOUSE_DATABASE", "logs"),
		Table:    envOr("CLICKHOUSE_TABLE", "windows_logs"),
	})
	if err != nil {
		log.Fatal("Failed to configure ClickHouse client:", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := store.Ping(ctx); err != nil {
		log.Printf("ClickHouse connection failed: %v (starting anyway)", err)
	} else {
		log.Println("ClickHouse connection established")
	}

	r := gin.Default()
	r.Use(middleware.CORS(), middleware.RequestID())

	api := r.Group("/api")
	api.GET("/health", handlers.HealthCheck)

	api.GET("/logs", handlers.GetLogs(store))
	api.GET("/logs/stats", handlers.GetLogStats(store))
	api.GET("/logs/distinct/:field", handlers.GetDistinctValues(store))
	api.GET("/logs/:id", handlers.GetLogByID(store))

	stats := api.Group("/stats")
	stats.GET("/summary", handlers.GetSummary(store))
	stats.GET("/severity", handlers.GetSeverityDistribution(store))
	stats.GET("/hostnames", handlers.GetHostnameDistribution(store))
	stats.GET("/sources", handlers.GetSourceDistribution(store))
	stats.GET("/categories", handlers.GetCategoryDistribution(store))
	stats.GET("/timeseries", handlers.GetTimeSeries(store))
	stats.GET("/overview", handlers.GetOverview(store))

	addr := ":" + envOr("PORT", "3001")
	log.Println("Server starting on", addr)
	r.Run(addr)
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
