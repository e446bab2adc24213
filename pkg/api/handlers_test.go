package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/ssargent/monologreader/pkg/codec"
	"github.com/ssargent/monologreader/pkg/reader"
	"github.com/ssargent/monologreader/pkg/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testLog = `[2024-03-01 10:00:00] app.INFO: started {"version":"1.2"} []
[2024-03-01 10:00:05] app.ERROR: boom
#0 /app/index.php(3): main() {"code":500} []
[2024-03-01 10:01:00] db.DEBUG: query {"sql":"select 1"} {"ms":3}
[2024-03-01 10:02:00] app.ERROR: payments down [] []
[2024-03-01 10:03:00] app.INFO: not decodable
`

type recordsBody struct {
	Success bool       `json:"success"`
	Data    RecordPage `json:"data"`
	Error   string     `json:"error"`
}

type recordBody struct {
	Success bool           `json:"success"`
	Data    RecordResponse `json:"data"`
	Error   string         `json:"error"`
}

// setupTestServer creates a server over testLog
func setupTestServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()

	dec := codec.MustNewDecoder(codec.WithLocation(time.UTC))
	r, err := reader.New(source.NewMemory(testLog), reader.WithDecoder(dec))
	require.NoError(t, err)

	server := NewServer(r, ServerConfig{File: "test.log"}, NewMetrics(prometheus.NewRegistry()), nil)
	return server, NewRouter(server)
}

func doRequest(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHandleHealth(t *testing.T) {
	_, h := setupTestServer(t)

	w := doRequest(t, h, "GET", "/api/v1/health")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var response APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(t, response.Success)
	assert.Equal(t, map[string]interface{}{"status": "healthy"}, response.Data)
}

func TestHandleGetRecord(t *testing.T) {
	_, h := setupTestServer(t)

	tests := []struct {
		name           string
		path           string
		expectedStatus int
		check          func(t *testing.T, body recordBody)
	}{
		{
			name:           "first record",
			path:           "/api/v1/records/0",
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, body recordBody) {
				require.NotNil(t, body.Data.Record)
				assert.Equal(t, "app", body.Data.Record.Logger)
				assert.Equal(t, "INFO", body.Data.Record.Level)
				assert.Equal(t, "started", body.Data.Record.Message)
				assert.Equal(t, map[string]interface{}{"version": "1.2"}, body.Data.Record.Context)
				require.NotNil(t, body.Data.Record.Date)
				assert.True(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC).Equal(*body.Data.Record.Date))
			},
		},
		{
			name:           "multi-line record",
			path:           "/api/v1/records/1",
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, body recordBody) {
				require.NotNil(t, body.Data.Record)
				assert.Equal(t, "boom\n#0 /app/index.php(3): main()", body.Data.Record.Message)
			},
		},
		{
			name:           "undecodable record",
			path:           "/api/v1/records/4",
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, body recordBody) {
				assert.Equal(t, 4, body.Data.Index)
				assert.Nil(t, body.Data.Record)
			},
		},
		{
			name:           "out of range",
			path:           "/api/v1/records/5",
			expectedStatus: http.StatusNotFound,
			check: func(t *testing.T, body recordBody) {
				assert.False(t, body.Success)
				assert.Equal(t, "Record 5 not found", body.Error)
			},
		},
		{
			name:           "negative",
			path:           "/api/v1/records/-1",
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "not a number",
			path:           "/api/v1/records/abc",
			expectedStatus: http.StatusBadRequest,
			check: func(t *testing.T, body recordBody) {
				assert.Equal(t, "Invalid record index", body.Error)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, h, "GET", tt.path)
			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.check != nil {
				var body recordBody
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				tt.check(t, body)
			}
		})
	}
}

func TestHandleListRecords(t *testing.T) {
	_, h := setupTestServer(t)

	tests := []struct {
		name           string
		query          string
		expectedStatus int
		expectedTotal  int
		expectedIndex  []int
	}{
		{"all", "", http.StatusOK, 5, []int{0, 1, 2, 3, 4}},
		{"paged", "?offset=1&limit=2", http.StatusOK, 5, []int{1, 2}},
		{"offset past end", "?offset=10", http.StatusOK, 5, []int{}},
		{"by level", "?level=ERROR", http.StatusOK, 2, []int{1, 3}},
		{"several levels", "?level=ERROR,DEBUG", http.StatusOK, 3, []int{1, 2, 3}},
		{"level paged", "?level=ERROR&offset=1", http.StatusOK, 2, []int{3}},
		{"unknown level", "?level=EMERGENCY", http.StatusOK, 0, []int{}},
		{"time range", "?from=2024-03-01T10:00:05Z&to=2024-03-01T10:02:00Z", http.StatusOK, 3, []int{1, 2, 3}},
		{"time and level", "?from=2024-03-01T10:00:05Z&level=ERROR", http.StatusOK, 2, []int{1, 3}},
		{"open-ended to", "?to=2024-03-01T10:00:00Z", http.StatusOK, 1, []int{0}},
		{"where", "?where=context.sql%3Dselect%201", http.StatusOK, 1, []int{2}},
		{"where and level", "?level=ERROR&where=context.code%3E=500", http.StatusOK, 1, []int{1}},
		{"bad where", "?where=nothing", http.StatusBadRequest, 0, nil},
		{"bad offset", "?offset=-1", http.StatusBadRequest, 0, nil},
		{"bad limit", "?limit=zero", http.StatusBadRequest, 0, nil},
		{"bad from", "?from=yesterday", http.StatusBadRequest, 0, nil},
		{"reversed range", "?from=2024-03-01T10:02:00Z&to=2024-03-01T10:00:00Z", http.StatusBadRequest, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, h, "GET", "/api/v1/records"+tt.query)
			require.Equal(t, tt.expectedStatus, w.Code, w.Body.String())

			var body recordsBody
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			if tt.expectedStatus != http.StatusOK {
				assert.False(t, body.Success)
				assert.NotEmpty(t, body.Error)
				return
			}

			assert.True(t, body.Success)
			assert.Equal(t, tt.expectedTotal, body.Data.Total)

			got := []int{}
			for _, rec := range body.Data.Records {
				got = append(got, rec.Index)
			}
			assert.Equal(t, tt.expectedIndex, got)
		})
	}
}

func TestHandleListRecords_LimitCapped(t *testing.T) {
	_, h := setupTestServer(t)

	w := doRequest(t, h, "GET", "/api/v1/records?limit=5000")
	require.Equal(t, http.StatusOK, w.Code)

	var body recordsBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, maxPageLimit, body.Data.Limit)
}

func TestHandleWriteRecord(t *testing.T) {
	_, h := setupTestServer(t)

	for _, method := range []string{"PUT", "PATCH", "DELETE"} {
		t.Run(method, func(t *testing.T) {
			w := doRequest(t, h, method, "/api/v1/records/0")

			assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
			assert.Equal(t, "GET", w.Header().Get("Allow"))

			var response APIResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.False(t, response.Success)
			assert.Contains(t, response.Error, "read-only")
		})
	}

	// Data is unchanged
	w := doRequest(t, h, "GET", "/api/v1/records/0")
	require.Equal(t, http.StatusOK, w.Code)
	var body recordBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "started", body.Data.Record.Message)
}

func TestHandleStats(t *testing.T) {
	_, h := setupTestServer(t)

	w := doRequest(t, h, "GET", "/api/v1/stats")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data StatsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, StatsResponse{
		File:    "test.log",
		Records: 5,
		Lines:   6,
		Levels:  map[string]int{"INFO": 2, "ERROR": 2, "DEBUG": 1},
	}, body.Data)
}

// failingSource fails every read and accepts every write
type failingSource struct{}

func (failingSource) Count() int { return 1 }

func (failingSource) Lines() int { return 1 }

func (failingSource) Get(int) (*codec.Record, error) { return nil, errors.New("disk on fire") }

func (failingSource) Set(int, *codec.Record) error { return nil }

func (failingSource) Delete(int) error { return nil }

func (failingSource) Levels() map[string]int { return nil }

func (failingSource) ByLevel(...string) []int { return nil }

func (failingSource) Between(time.Time, time.Time) []int { return nil }

func TestHandlers_ReadFailure(t *testing.T) {
	server := NewServer(failingSource{}, ServerConfig{}, nil, nil)
	h := NewRouter(server)

	w := doRequest(t, h, "GET", "/api/v1/records/0")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "disk on fire")

	w = doRequest(t, h, "GET", "/api/v1/records")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to read records")

	// A source that accepts writes is still answered as read-only.
	w = doRequest(t, h, "DELETE", "/api/v1/records/0")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), reader.ErrReadOnly.Error()))
}
