package clickhouse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNotFound is returned when a lookup by identifier matches zero rows.
// Distinct from execution errors so handlers can answer 404 instead of 500.
var ErrNotFound = errors.New("not found")

// ValidationError marks caller input that was rejected before any query was
// built or sent to the store.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Row is one decoded record from a JSONEachRow response.
type Row map[string]any

// Statement is a SQL statement plus its bound named parameters. Parameters
// travel as param_<name> HTTP query parameters and are referenced in the SQL
// as {<name>:String}; ClickHouse substitutes them server-side, so filter
// values never appear in the statement text.
type Statement struct {
	SQL    string
	Params map[string]string
}

type Config struct {
	URL      string
	User     string
	Password string
	Database string
	Table    string
}

// Client queries the ClickHouse HTTP interface. It is read-only: every
// operation is a SELECT against the configured table.
type Client struct {
	baseURL  string
	user     string
	password string
	database string
	table    string
	http     *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("clickhouse URL is required")
	}
	if _, err := url.Parse(cfg.URL); err != nil {
		return nil, fmt.Errorf("invalid clickhouse URL: %w", err)
	}
	if cfg.Table == "" {
		return nil, fmt.Errorf("clickhouse table is required")
	}

	return &Client{
		baseURL:  cfg.URL,
		user:     cfg.User,
		password: cfg.Password,
		database: cfg.Database,
		table:    cfg.Table,
		http: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

// Ping verifies the store is reachable.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Query(ctx, Statement{SQL: "SELECT 1"})
	return err
}

// Query submits a statement and decodes the JSONEachRow response: one JSON
// object per line. An empty body is an empty result set.
func (c *Client) Query(ctx context.Context, stmt Statement) ([]Row, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(stmt.SQL))
	if err != nil {
		return nil, fmt.Errorf("failed to build clickhouse request: %w", err)
	}

	q := req.URL.Query()
	q.Set("default_format", "JSONEachRow")
	if c.database != "" {
		q.Set("database", c.database)
	}
	for name, value := range stmt.Params {
		q.Set("param_"+name, value)
	}
	req.URL.RawQuery = q.Encode()

	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if c.user != "" {
		req.SetBasicAuth(c.user, c.password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("clickhouse request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read clickhouse response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("clickhouse returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	return parseRows(body)
}

func parseRows(body []byte) ([]Row, error) {
	rows := []Row{}

	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return rows, nil
	}

	for _, line := range strings.Split(trimmed, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var row Row
		if err := json.Unmarshal([]byte(line), &row); err != nil {
			return nil, fmt.Errorf("malformed response line %q: %w", line, err)
		}
		rows = append(rows, row)
	}

	return rows, nil
}
