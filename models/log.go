package models

import "time"

// LogEntry is one Windows event log record as served by the API.
// Entries are written by an external ingestion pipeline and are read-only
// here; the field names and aliases are part of the dashboard contract.
type LogEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Severity  string    `json:"severity"`
	Hostname  string    `json:"hostname"`
	Source    string    `json:"source"`
	Message   string    `json:"message"`
	Category  string    `json:"category"`
	EventID   *int      `json:"eventId"`
	User      string    `json:"user"`
	Process   string    `json:"process"`
	Thread    string    `json:"thread"`
	// RawData has no backing column in the store; it stays permanently empty
	// so existing dashboard clients keep deserializing the same shape.
	RawData string `json:"rawData"`
}

// Filters are the optional predicates a caller may apply to narrow a query.
// Empty string means no constraint on that dimension.
type Filters struct {
	Severity  string `form:"severity"`
	Hostname  string `form:"hostname"`
	Source    string `form:"source"`
	Category  string `form:"category"`
	Search    string `form:"search"`
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
}

// Pagination carries the paging and ordering parameters for the logs listing.
type Pagination struct {
	Page      int    `form:"page,default=1"`
	Limit     int    `form:"limit,default=50"`
	SortBy    string `form:"sortBy,default=timestamp"`
	SortOrder string `form:"sortOrder,default=DESC"`
}

// PageInfo describes the page of results actually returned.
type PageInfo struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

type LogsResponse struct {
	Success    bool       `json:"success"`
	Data       []LogEntry `json:"data"`
	Pagination PageInfo   `json:"pagination"`
}
