// Package server delivers the interactive page over HTTP. Every GET / builds
// the graph afresh and opens an exploration session the page talks to.
package server

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oda-hub/deprecated-renku-aqs/internal/config"
	"github.com/oda-hub/deprecated-renku-aqs/internal/explore"
	"github.com/oda-hub/deprecated-renku-aqs/internal/pipeline"
	"github.com/oda-hub/deprecated-renku-aqs/internal/rdf"
	"github.com/oda-hub/deprecated-renku-aqs/internal/webview"
)

// DefaultMaxSessions bounds the sessions kept in memory
const DefaultMaxSessions = 64

// Builder produces a cleaned graph for one request
type Builder func(ctx context.Context) (*pipeline.Result, error)

type entry struct {
	session *explore.Session
	created time.Time
}

// Server holds the open sessions and the router serving them
type Server struct {
	build   Builder
	bundle  *config.Bundle
	pages   *webview.Renderer
	title   string
	logger  *slog.Logger
	metrics *metrics
	router  *gin.Engine

	mu          sync.Mutex
	sessions    map[string]*entry
	maxSessions int
}

// Options configures a server
type Options struct {
	Title       string
	MaxSessions int
	Logger      *slog.Logger
}

// New builds the router. Metrics go to a registry owned by the server.
func New(build Builder, bundle *config.Bundle, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	limit := opts.MaxSessions
	if limit <= 0 {
		limit = DefaultMaxSessions
	}
	reg := prometheus.NewRegistry()
	s := &Server{
		build:       build,
		bundle:      bundle,
		pages:       webview.New(bundle),
		title:       opts.Title,
		logger:      logger,
		metrics:     newMetrics(reg),
		sessions:    make(map[string]*entry),
		maxSessions: limit,
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.logRequests())
	r.GET("/", s.handlePage)
	r.GET("/graph.ttl", s.handleTriples(rdf.Turtle, "text/turtle"))
	r.GET("/graph.nt", s.handleTriples(rdf.NTriples, "application/n-triples"))
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	api := r.Group("/api/sessions")
	{
		api.POST("", s.handleCreate)
		api.GET("/:id/view", s.withSession(s.handleView))
		api.DELETE("/:id", s.handleDelete)
		api.POST("/:id/expand", s.withSession(s.handleExpand))
		api.POST("/:id/collapse", s.withSession(s.handleCollapse))
		api.POST("/:id/reduction", s.withSession(s.handleReduction))
		api.POST("/:id/subset", s.withSession(s.handleSubset))
		api.POST("/:id/graph-config", s.withSession(s.handleGraphConfig))
		api.POST("/:id/layout", s.withSession(s.handleLayout))
		api.POST("/:id/reset", s.withSession(s.handleReset))
	}
	s.router = r
	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler { return s.router }

// Run serves on addr until ctx is cancelled
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.router, ReadHeaderTimeout: 10 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdown); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed", time.Since(start))
	}
}

// opened is a freshly registered session and the graph behind it
type opened struct {
	id      string
	session *explore.Session
	store   *explore.GraphStore
	result  *pipeline.Result
}

// open builds the graph and registers a new session over it
func (s *Server) open(ctx context.Context) (*opened, error) {
	res, err := s.build(ctx)
	if err != nil {
		return nil, err
	}
	store := explore.NewGraphStore(res.Graph, res.Types, s.bundle)
	o := &opened{
		id:      uuid.NewString(),
		session: explore.NewSession(store, s.bundle),
		store:   store,
		result:  res,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sessions) >= s.maxSessions {
		s.evictOldest()
	}
	s.sessions[o.id] = &entry{session: o.session, created: time.Now()}
	s.metrics.sessions.Set(float64(len(s.sessions)))
	return o, nil
}

func (s *Server) evictOldest() {
	var oldest string
	var at time.Time
	for id, e := range s.sessions {
		if oldest == "" || e.created.Before(at) {
			oldest, at = id, e.created
		}
	}
	delete(s.sessions, oldest)
	s.logger.Debug("evicted session", "id", oldest)
}

func (s *Server) lookup(id string) (*explore.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	return e.session, true
}

func (s *Server) handlePage(c *gin.Context) {
	o, err := s.open(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	var buf bytes.Buffer
	opts := webview.Options{Title: s.title, SessionURL: "/api/sessions/" + o.id}
	if err := s.pages.Render(&buf, o.store, o.session.View(), opts); err != nil {
		s.fail(c, err)
		return
	}
	for _, w := range o.result.Warnings() {
		s.logger.Warn(w)
	}
	s.metrics.pages.Inc()
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// fail replaces the graph with an error page
func (s *Server) fail(c *gin.Context, err error) {
	s.logger.Error("build page", "error", err)
	s.metrics.failures.Inc()
	var buf bytes.Buffer
	if werr := webview.ErrorPage(&buf, err); werr != nil {
		c.String(http.StatusInternalServerError, err.Error())
		return
	}
	c.Data(http.StatusInternalServerError, "text/html; charset=utf-8", buf.Bytes())
}

func (s *Server) handleTriples(f rdf.Format, contentType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := s.build(c.Request.Context())
		if err != nil {
			s.logger.Error("build graph", "error", err)
			s.metrics.failures.Inc()
			c.String(http.StatusInternalServerError, err.Error())
			return
		}
		out, err := res.Graph.Serialize(f)
		if err != nil {
			c.String(http.StatusInternalServerError, err.Error())
			return
		}
		c.Data(http.StatusOK, contentType+"; charset=utf-8", []byte(out))
	}
}
