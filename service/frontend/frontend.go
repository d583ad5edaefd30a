// Package frontend serves the search and crawl APIs over HTTP.
package frontend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/mycok/webscout/search"
	"github.com/mycok/webscout/search/external"
	"github.com/mycok/webscout/textindexer/index"
)

const (
	searchEndpoint     = "/api/search"
	enginesEndpoint    = "/api/engines"
	crawlStatsEndpoint = "/api/crawl/stats"
)

// Service is the HTTP front end of webscout. It satisfies the
// service.Service interface.
type Service struct {
	config Config
	router *chi.Mux
}

// New creates and returns a fully configured front-end service instance.
func New(config Config) (*Service, error) {
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("frontend service: config validation failed: %w", err)
	}

	svc := &Service{
		config: config,
		router: chi.NewRouter(),
	}

	svc.router.Use(middleware.Recoverer)
	svc.router.Use(svc.logRequests)

	svc.router.Get(searchEndpoint, svc.searchIndex)
	if config.EngineSearcher != nil {
		svc.router.Get(enginesEndpoint, svc.searchEngines)
	}
	if config.CrawlStats != nil {
		svc.router.Get(crawlStatsEndpoint, svc.crawlStats)
	}

	svc.router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found", Kind: "not_found"})
	})

	return svc, nil
}

// Name returns the name of the service.
func (svc *Service) Name() string { return "frontend" }

// ServeHTTP routes a request to the matching API handler.
func (svc *Service) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	svc.router.ServeHTTP(w, r)
}

// Run executes the service and blocks until the context gets cancelled
// or an error occurs.
func (svc *Service) Run(ctx context.Context) error {
	l, err := net.Listen("tcp", svc.config.ListenAddr)
	if err != nil {
		return err
	}
	defer func() { _ = l.Close() }()

	srv := &http.Server{
		Addr:              svc.config.ListenAddr,
		Handler:           svc.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	svc.config.Logger.WithField("addr", l.Addr().String()).Info("started service")

	if err = srv.Serve(l); errors.Is(err, http.ErrServerClosed) {
		err = nil
	}

	return err
}

func (svc *Service) searchIndex(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	n, size, err := pageParams(params.Get("page"), params.Get("size"))
	if err != nil {
		svc.writeError(w, err)

		return
	}

	page, err := svc.config.IndexSearcher.Search(params.Get("q"), n, size)
	if err != nil {
		svc.writeError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, page)
}

func (svc *Service) searchEngines(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	n, size, err := pageParams(params.Get("page"), params.Get("size"))
	if err != nil {
		svc.writeError(w, err)

		return
	}
	if size == 0 {
		size = 10
	}

	req := external.Request{
		Keyword:     params.Get("q"),
		Engine:      params.Get("engine"),
		FilterField: params.Get("filter"),
		Proxy:       params.Get("proxy"),
	}

	if v := params.Get("pages"); v != "" {
		if req.MaxPages, err = strconv.Atoi(v); err != nil {
			svc.writeError(w, fmt.Errorf("%w: pages %q", search.ErrInvalidInput, v))

			return
		}
	}

	if v := params.Get("ignore_duplicates"); v != "" {
		if req.IgnoreDuplicates, err = strconv.ParseBool(v); err != nil {
			svc.writeError(w, fmt.Errorf("%w: ignore_duplicates %q", search.ErrInvalidInput, v))

			return
		}
	}

	page, err := svc.config.EngineSearcher.Search(r.Context(), req, n, size)
	if err != nil {
		svc.writeError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, page)
}

func (svc *Service) crawlStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, svc.config.CrawlStats.Stats())
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// writeError maps err to a status code and writes it as JSON.
func (svc *Service) writeError(w http.ResponseWriter, err error) {
	status, kind := http.StatusInternalServerError, "internal"

	switch {
	case errors.Is(err, search.ErrInvalidInput):
		status, kind = http.StatusBadRequest, "invalid_input"
	case errors.Is(err, index.ErrStoreUnavailable):
		status, kind = http.StatusServiceUnavailable, "store_unavailable"
	case errors.Is(err, external.ErrProcessFailure):
		status, kind = http.StatusBadGateway, "process_failure"
	case errors.Is(err, external.ErrMissingOutput):
		status, kind = http.StatusBadGateway, "missing_output"
	case errors.Is(err, external.ErrParse):
		status, kind = http.StatusBadGateway, "parse_error"
	}

	if status >= http.StatusInternalServerError {
		svc.config.Logger.WithFields(logrus.Fields{
			"err":  err,
			"kind": kind,
		}).Error("search request failed")
	}

	writeJSON(w, status, errorResponse{Error: err.Error(), Kind: kind})
}

func (svc *Service) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		svc.config.Logger.WithFields(logrus.Fields{
			"method":  r.Method,
			"path":    r.URL.Path,
			"status":  ww.Status(),
			"elapsed": time.Since(start).String(),
		}).Debug("served request")
	})
}

// pageParams parses the optional page and size query parameters. Missing
// values are returned as zero so the searcher applies its defaults.
func pageParams(page, size string) (int, int, error) {
	var n, s int
	var err error

	if page != "" {
		if n, err = strconv.Atoi(page); err != nil {
			return 0, 0, fmt.Errorf("%w: page %q", search.ErrInvalidInput, page)
		}
	}

	if size != "" {
		if s, err = strconv.Atoi(size); err != nil {
			return 0, 0, fmt.Errorf("%w: size %q", search.ErrInvalidInput, size)
		}
	}

	return n, s, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
