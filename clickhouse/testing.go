package clickhouse

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// FakeStore imitates the ClickHouse HTTP interface for tests. It captures
// every submitted statement with its bound parameters and answers with
// whatever Respond returns, so query construction can be exercised without a
// live store.
type FakeStore struct {
	Server *httptest.Server

	// Respond maps a statement to a status code and JSONEachRow body.
	// Defaults to an empty 200 response (empty result set).
	Respond func(sql string) (int, string)

	mu       sync.Mutex
	requests []CapturedQuery
}

// CapturedQuery is one statement received by the fake store.
type CapturedQuery struct {
	SQL    string
	Params map[string]string
}

func NewFakeStore() *FakeStore {
	fs := &FakeStore{
		Respond: func(string) (int, string) { return http.StatusOK, "" },
	}

	fs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		params := map[string]string{}
		for name, values := range r.URL.Query() {
			if strings.HasPrefix(name, "param_") && len(values) > 0 {
				params[strings.TrimPrefix(name, "param_")] = values[0]
			}
		}

		fs.mu.Lock()
		fs.requests = append(fs.requests, CapturedQuery{SQL: string(body), Params: params})
		fs.mu.Unlock()

		status, resp := fs.Respond(string(body))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(resp))
	}))

	return fs
}

func (fs *FakeStore) Close() {
	fs.Server.Close()
}

// Queries returns a copy of every captured statement in arrival order.
func (fs *FakeStore) Queries() []CapturedQuery {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	out := make([]CapturedQuery, len(fs.requests))
	copy(out, fs.requests)
	return out
}

// LastQuery returns the most recently captured statement, or a zero value if
// nothing was captured.
func (fs *FakeStore) LastQuery() CapturedQuery {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if len(fs.requests) == 0 {
		return CapturedQuery{}
	}
	return fs.requests[len(fs.requests)-1]
}

// NewTestClient returns a Client wired to the fake store.
func (fs *FakeStore) NewTestClient() *Client {
	client, err := NewClient(Config{URL: fs.Server.URL, Table: "windows_logs"})
	if err != nil {
		panic(err)
	}
	return client
}
