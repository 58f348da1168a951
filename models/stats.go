package models

// DistributionBucket is one (label, count) pair in a grouped-count result.
// Color is only populated for severity buckets.
type DistributionBucket struct {
	Label string `json:"label"`
	Value int    `json:"value"`
	Color string `json:"color,omitempty"`
}

// TimeSeriesPoint is one hour-aligned bucket: a "time" key plus one key per
// severity observed in that bucket. Severities with no rows are omitted
// rather than zero-filled.
type TimeSeriesPoint map[string]any

// Summary holds the dashboard headline counts, all computed over the same
// date-filtered row set.
type Summary struct {
	TotalLogs        int `json:"totalLogs"`
	UniqueHosts      int `json:"uniqueHosts"`
	UniqueSources    int `json:"uniqueSources"`
	UniqueCategories int `json:"uniqueCategories"`
	ErrorCount       int `json:"errorCount"`
	WarningCount     int `json:"warningCount"`
	InfoCount        int `json:"infoCount"`
}

// Overview bundles the five dashboard aggregates fetched by the overview
// endpoint in a single fan-out.
type Overview struct {
	Summary    Summary              `json:"summary"`
	Severity   []DistributionBucket `json:"severity"`
	Hostnames  []DistributionBucket `json:"hostnames"`
	Sources    []DistributionBucket `json:"sources"`
	Categories []DistributionBucket `json:"categories"`
}

// GroupedStat is one row of the combined severity/hostname/source/category
// breakdown served by the logs stats endpoint.
type GroupedStat struct {
	Severity string `json:"severity"`
	Hostname string `json:"hostname"`
	Source   string `json:"source"`
	Category string `json:"category"`
	Count    int    `json:"count"`
}
