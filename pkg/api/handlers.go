package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ssargent/monologreader/pkg/logging"
	"github.com/ssargent/monologreader/pkg/query"
	"github.com/ssargent/monologreader/pkg/reader"
)

const (
	defaultPageLimit = 100
	maxPageLimit     = 1000
)

// Server holds the API server state
type Server struct {
	mu      sync.Mutex // serializes access to src, which is not safe for concurrent use
	src     RecordSource
	engine  *query.SimpleQueryEngine
	config  ServerConfig
	metrics *Metrics
	logger  *logging.Logger
}

// NewServer creates a new API server
func NewServer(src RecordSource, config ServerConfig, metrics *Metrics, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.NoopLogger()
	}
	return &Server{
		src:     src,
		engine:  query.NewSimpleQueryEngine(src, nil),
		config:  config,
		metrics: metrics,
		logger:  logger,
	}
}

// handleHealth reports that the server is up.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.metrics.RecordHealthCheck(true)
	sendSuccess(w, map[string]string{"status": "healthy"})
}

// handleListRecords returns a page of records.
//
// Query parameters:
//
//	offset  position in the result set (default 0)
//	limit   page size (default 100, max 1000)
//	level   comma separated levels, exact match
//	from,to RFC3339 bounds on the record date, inclusive
//	where   field condition such as context.user=bob, repeatable
func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	offset, err := intParam(q.Get("offset"), 0)
	if err != nil || offset < 0 {
		sendError(w, "Invalid offset parameter", http.StatusBadRequest)
		return
	}
	limit, err := intParam(q.Get("limit"), defaultPageLimit)
	if err != nil || limit <= 0 {
		sendError(w, "Invalid limit parameter", http.StatusBadRequest)
		return
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	from, to, err := timeRange(q.Get("from"), q.Get("to"))
	if err != nil {
		sendError(w, "Invalid time range: "+err.Error(), http.StatusBadRequest)
		return
	}

	rq := query.Query{Levels: splitLevels(q.Get("level")), From: from, To: to}
	for _, cond := range q["where"] {
		fq, err := query.ParseFieldQuery(cond)
		if err != nil {
			sendError(w, "Invalid where parameter: "+err.Error(), http.StatusBadRequest)
			return
		}
		rq.Fields = append(rq.Fields, fq)
	}
	if err := rq.Validate(); err != nil {
		sendError(w, "Invalid query: "+err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	results, total, err := s.engine.Page(r.Context(), rq, offset, limit)
	s.mu.Unlock()

	if err != nil {
		s.metrics.RecordOperation("list", false, 0)
		s.logger.ErrorContext(r.Context(), "list records failed", "error", err)
		sendError(w, "Failed to read records", http.StatusInternalServerError)
		return
	}

	page := RecordPage{Offset: offset, Limit: limit, Total: total, Records: make([]RecordResponse, 0, len(results))}
	for _, res := range results {
		page.Records = append(page.Records, RecordResponse{Index: res.Index, Record: res.Record})
	}

	s.metrics.RecordOperation("list", true, len(page.Records))
	sendSuccess(w, page)
}

// handleGetRecord returns a single record by index.
func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		sendError(w, "Invalid record index", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	rec, err := s.src.Get(index)
	s.mu.Unlock()

	if err != nil {
		s.metrics.RecordOperation("get", false, 0)
		if errors.Is(err, reader.ErrIndexOutOfRange) {
			sendError(w, fmt.Sprintf("Record %d not found", index), http.StatusNotFound)
			return
		}
		s.logger.ErrorContext(r.Context(), "read record failed", "index", index, "error", err)
		sendError(w, "Failed to read record", http.StatusInternalServerError)
		return
	}

	s.metrics.RecordOperation("get", true, 1)
	sendSuccess(w, RecordResponse{Index: index, Record: rec})
}

// handleWriteRecord answers PUT, PATCH and DELETE on a record. The
// collection is read-only so these always fail with 405.
func (s *Server) handleWriteRecord(w http.ResponseWriter, r *http.Request) {
	index, _ := strconv.Atoi(chi.URLParam(r, "index"))

	s.mu.Lock()
	var err error
	if r.Method == http.MethodDelete {
		err = s.src.Delete(index)
	} else {
		err = s.src.Set(index, nil)
	}
	s.mu.Unlock()

	s.metrics.RecordReadOnlyRejection()
	w.Header().Set("Allow", http.MethodGet)
	if err == nil {
		err = reader.ErrReadOnly
	}
	sendError(w, err.Error(), http.StatusMethodNotAllowed)
}

// handleStats returns record and level counts.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	stats := StatsResponse{
		File:    s.config.File,
		Records: s.src.Count(),
		Lines:   s.src.Lines(),
		Levels:  s.src.Levels(),
	}
	s.mu.Unlock()

	sendSuccess(w, stats)
}

func intParam(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}

func timeRange(fromStr, toStr string) (from, to *time.Time, err error) {
	parse := func(name, s string) (*time.Time, error) {
		if s == "" {
			return nil, nil
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, fmt.Errorf("%s must be RFC3339", name)
		}
		return &t, nil
	}

	if from, err = parse("from", fromStr); err != nil {
		return nil, nil, err
	}
	if to, err = parse("to", toStr); err != nil {
		return nil, nil, err
	}
	return from, to, nil
}

func splitLevels(s string) []string {
	var levels []string
	for _, level := range strings.Split(s, ",") {
		if level = strings.TrimSpace(level); level != "" {
			levels = append(levels, level)
		}
	}
	return levels
}
