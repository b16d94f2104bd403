package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/Sternrassler/docdb-client/pkg/client"
	"github.com/Sternrassler/docdb-client/pkg/config"
	"github.com/Sternrassler/docdb-client/pkg/cosmos"
	"github.com/Sternrassler/docdb-client/pkg/headers"
	"github.com/Sternrassler/docdb-client/pkg/logging"
	"github.com/Sternrassler/docdb-client/pkg/metrics"
	"github.com/Sternrassler/docdb-client/pkg/pagination"
	"github.com/dustin/go-humanize"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type server struct {
	docdb       *cosmos.Client
	redis       *redis.Client
	consistency cosmos.ConsistencyLevel
	drain       pagination.Config
	logger      zerolog.Logger
}

func newServer(docdb *cosmos.Client, redisClient *redis.Client, cfg *config.Config) *server {
	return &server{
		docdb:       docdb,
		redis:       redisClient,
		consistency: cfg.ConsistencyLevel(),
		drain:       cfg.DrainConfig(),
		logger:      logging.NewLogger("docdb-proxy"),
	}
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler)
	mux.HandleFunc("GET /ready", readyHandler(s.redis))
	mux.Handle("GET /metrics", metrics.Handler())

	mux.HandleFunc("GET /dbs", s.handleDatabases)
	mux.HandleFunc("GET /dbs/{db}/colls", s.handleCollections)
	mux.HandleFunc("GET /dbs/{db}/users", s.handleUsers)
	mux.HandleFunc("GET /dbs/{db}/colls/{coll}/docs", s.handleDocuments)
	mux.HandleFunc("POST /dbs/{db}/colls/{coll}/docs", s.handleQuery)
	mux.HandleFunc("GET /dbs/{db}/docs", s.handleMultiCollection)
	return mux
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

func readyHandler(redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if redisClient != nil {
			if err := redisClient.Ping(r.Context()).Err(); err != nil {
				http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	}
}

func (s *server) handleDatabases(w http.ResponseWriter, r *http.Request) {
	opts, ok := s.listOptions(w, r)
	if !ok {
		return
	}
	servePager(s, w, r, s.docdb.ListDatabases(opts))
}

func (s *server) handleCollections(w http.ResponseWriter, r *http.Request) {
	opts, ok := s.listOptions(w, r)
	if !ok {
		return
	}
	servePager(s, w, r, s.docdb.Database(r.PathValue("db")).ListCollections(opts))
}

func (s *server) handleUsers(w http.ResponseWriter, r *http.Request) {
	opts, ok := s.listOptions(w, r)
	if !ok {
		return
	}
	servePager(s, w, r, s.docdb.Database(r.PathValue("db")).ListUsers(opts))
}

func (s *server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	opts, ok := s.listOptions(w, r)
	if !ok {
		return
	}
	coll := s.docdb.Database(r.PathValue("db")).Collection(r.PathValue("coll"))
	servePager(s, w, r, cosmos.ListDocuments[json.RawMessage](coll, opts))
}

func (s *server) handleQuery(w http.ResponseWriter, r *http.Request) {
	opts, ok := s.listOptions(w, r)
	if !ok {
		return
	}

	var query cosmos.Query
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&query); err != nil {
		http.Error(w, fmt.Sprintf("invalid query body: %v", err), http.StatusBadRequest)
		return
	}

	qopts := cosmos.QueryOptions{
		ListOptions:          opts,
		EnableCrossPartition: r.URL.Query().Get("cross_partition") == "true",
	}
	if pk := r.URL.Query().Get("partition_key"); pk != "" {
		qopts.PartitionKey = pk
	}

	coll := s.docdb.Database(r.PathValue("db")).Collection(r.PathValue("coll"))
	pager, err := cosmos.QueryDocuments[json.RawMessage](coll, query, qopts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	servePager(s, w, r, pager)
}

// handleMultiCollection drains the documents of several collections of one
// database concurrently, e.g. /dbs/app/docs?colls=orders,customers.
func (s *server) handleMultiCollection(w http.ResponseWriter, r *http.Request) {
	opts, ok := s.listOptions(w, r)
	if !ok {
		return
	}
	if opts.Continuation != nil {
		http.Error(w, "continuation is not supported when draining several collections", http.StatusBadRequest)
		return
	}

	names := strings.Split(r.URL.Query().Get("colls"), ",")
	db := s.docdb.Database(r.PathValue("db"))

	var runs []pagination.Run[*cosmos.ListResponse[json.RawMessage]]
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		runs = append(runs, pagination.Run[*cosmos.ListResponse[json.RawMessage]]{
			Name:  name,
			Pager: cosmos.ListDocuments[json.RawMessage](db.Collection(name), opts),
		})
	}
	if len(runs) == 0 {
		http.Error(w, "colls is required", http.StatusBadRequest)
		return
	}

	drainer := pagination.NewDrainer[*cosmos.ListResponse[json.RawMessage]](s.drain)
	results, err := drainer.DrainAll(r.Context(), runs)
	if err != nil && len(results) == 0 {
		s.writeError(w, r, err)
		return
	}

	type collectionResult struct {
		Items  []json.RawMessage `json:"items"`
		Count  int               `json:"count"`
		Pages  int               `json:"pages"`
		Charge float64           `json:"charge"`
	}
	body := struct {
		Collections map[string]collectionResult `json:"collections"`
		Errors      string                      `json:"errors,omitempty"`
	}{Collections: make(map[string]collectionResult, len(results))}

	var total float64
	for name, pages := range results {
		res := collectionResult{Items: []json.RawMessage{}, Pages: len(pages)}
		for _, page := range pages {
			res.Items = append(res.Items, page.Items...)
			res.Charge += page.Charge
		}
		res.Count = len(res.Items)
		total += res.Charge
		body.Collections[name] = res
	}
	if err != nil {
		body.Errors = err.Error()
	}

	w.Header().Set(headers.RequestCharge, strconv.FormatFloat(total, 'f', -1, 64))
	status := http.StatusOK
	if err != nil {
		status = http.StatusMultiStatus
	}
	s.writeJSON(w, r, status, body)
}

// listOptions parses the paging query parameters. It writes a 400 response
// and returns false on invalid input.
func (s *server) listOptions(w http.ResponseWriter, r *http.Request) (cosmos.ListOptions, bool) {
	q := r.URL.Query()
	opts := cosmos.ListOptions{ConsistencyLevel: s.consistency}

	if raw := q.Get("max_items"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid max_items %q", raw), http.StatusBadRequest)
			return opts, false
		}
		opts.MaxItemCount = n
	}

	if raw := q.Get("consistency"); raw != "" {
		level, err := cosmos.ParseConsistencyLevel(raw)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return opts, false
		}
		opts.ConsistencyLevel = level
	}

	if q.Has("continuation") {
		token := q.Get("continuation")
		opts.Continuation = &token
	}

	return opts, true
}

type pageBody[T any] struct {
	Items        []T     `json:"items"`
	Count        int     `json:"count"`
	Continuation *string `json:"continuation,omitempty"`
}

type drainedBody[T any] struct {
	Items  []T     `json:"items"`
	Count  int     `json:"count"`
	Pages  int     `json:"pages"`
	Charge float64 `json:"charge"`
}

// servePager answers with the next page of pager, or with every page when
// the request asks for all=true.
func servePager[T any](s *server, w http.ResponseWriter, r *http.Request, pager *cosmos.Pager[T]) {
	if r.URL.Query().Get("all") == "true" {
		pages, err := pagination.Collect(r.Context(), pager)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		body := drainedBody[T]{Items: []T{}, Pages: len(pages)}
		for _, page := range pages {
			body.Items = append(body.Items, page.Items...)
			body.Charge += page.Charge
		}
		body.Count = len(body.Items)
		if n := len(pages); n > 0 {
			w.Header().Set(headers.SessionToken, pages[n-1].SessionToken)
		}
		w.Header().Set(headers.RequestCharge, strconv.FormatFloat(body.Charge, 'f', -1, 64))

		s.writeJSON(w, r, http.StatusOK, body)
		return
	}

	page, err := pager.NextPage(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set(headers.RequestCharge, strconv.FormatFloat(page.Charge, 'f', -1, 64))
	w.Header().Set(headers.ActivityID, page.ActivityID.String())
	w.Header().Set(headers.SessionToken, page.SessionToken)
	if page.ContinuationToken != nil {
		w.Header().Set(headers.Continuation, *page.ContinuationToken)
	}

	items := page.Items
	if items == nil {
		items = []T{}
	}
	s.writeJSON(w, r, http.StatusOK, pageBody[T]{
		Items:        items,
		Count:        page.Count,
		Continuation: page.ContinuationToken,
	})
}

func (s *server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		s.logger.Warn().Err(err).Str("path", r.URL.Path).Msg("Failed to write response")
		return
	}

	s.logger.Debug().
		Str("path", r.URL.Path).
		Int("status", status).
		Str("size", humanize.Bytes(uint64(len(data)))).
		Msg("Response written")
}

// writeError maps a listing error to a proxy status code.
func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusBadGateway

	var (
		statusErr *cosmos.StatusError
		buildErr  *cosmos.RequestConstructionError
	)
	switch {
	case errors.As(err, &buildErr), errors.Is(err, pagination.ErrDuplicateRun):
		status = http.StatusBadRequest
	case errors.As(err, &statusErr):
		status = statusErr.StatusCode
		if statusErr.ActivityID != "" {
			w.Header().Set(headers.ActivityID, statusErr.ActivityID)
		}
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	case errors.Is(err, client.ErrRetryExhausted):
		status = http.StatusServiceUnavailable
	}

	s.logger.Warn().
		Err(err).
		Str("path", r.URL.Path).
		Int("status", status).
		Msg("Listing failed")

	http.Error(w, err.Error(), status)
}
