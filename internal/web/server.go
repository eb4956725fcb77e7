package web

import (
	"callnotes/internal/session"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

const (
	readHeaderTimeout = 10 * time.Second
	// maxTranscriptBytes bounds the request body, not the transcript semantics.
	maxTranscriptBytes = 8 << 20
)

type Options struct {
	Addr        string
	Development bool
}

// Server serves the summarizer page and its JSON API over one Session.
type Server struct {
	session *session.Session
	log     *slog.Logger
	router  *gin.Engine
	http    *http.Server
}

func New(opts Options, sess *session.Session, log *slog.Logger) (*Server, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	if !opts.Development && gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		session: sess,
		log:     log,
		router:  gin.New(),
	}

	s.router.Use(gin.Recovery())
	s.router.Use(requestLogger(log))
	s.router.Use(securityHeaders())
	s.router.Use(gzip.Gzip(gzip.DefaultCompression))
	s.router.SetHTMLTemplate(tmpl)
	if err = s.router.SetTrustedProxies(nil); err != nil {
		return nil, fmt.Errorf("set trusted proxies: %w", err)
	}

	s.setupRoutes()

	s.http = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
		ErrorLog:          slog.NewLogLogger(log.Handler(), slog.LevelWarn),
	}

	return s, nil
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.handlePage)
	s.router.POST("/summarize", s.handleFormSubmit)
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := s.router.Group("/api")
	api.GET("/state", s.handleState)
	api.POST("/summarize", s.handleAPISummarize)
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe blocks until the server stops. A graceful Shutdown is not
// reported as an error.
func (s *Server) ListenAndServe() error {
	s.log.Info("HTTP server is listening",
		"addr", s.http.Addr)

	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen and serve: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}

func (s *Server) handlePage(c *gin.Context) {
	c.Header("Cache-Control", "no-store")

	view, err := newPageView(s.session.Snapshot())
	if err != nil {
		_ = c.Error(err)
		s.log.ErrorContext(c.Request.Context(), "Failed to render summary",
			"error", err)
	}

	c.HTML(http.StatusOK, pageTemplate, view)
}

func (s *Server) handleFormSubmit(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxTranscriptBytes)

	transcript := c.PostForm("transcript")
	s.session.SetTranscript(transcript)

	if _, err := s.session.Submit(c.Request.Context(), transcript); err != nil {
		s.log.DebugContext(c.Request.Context(), "Summary request is ignored",
			"reason", err.Error())
	}

	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) handleState(c *gin.Context) {
	c.JSON(http.StatusOK, stateResponse(s.session.Snapshot()))
}

// handleAPISummarize submits the transcript and waits for the outcome. If the
// caller goes away first, the request keeps running and only the wait ends.
func (s *Server) handleAPISummarize(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxTranscriptBytes)

	var req SummarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeBadRequest, "Request body must be JSON with a transcript field.")
		return
	}

	ctx := c.Request.Context()

	done, err := s.session.Submit(ctx, req.Transcript)
	switch {
	case errors.Is(err, session.ErrEmptyTranscript):
		respondError(c, http.StatusBadRequest, ErrCodeValidation, "Transcript must not be empty.")
		return
	case errors.Is(err, session.ErrBusy):
		respondError(c, http.StatusConflict, ErrCodeConflict, "A summary is already being generated.")
		return
	case err != nil:
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, ErrCodeInternal, session.FailureMessage)
		return
	}

	select {
	case <-done:
	case <-ctx.Done():
		s.log.InfoContext(ctx, "Client is gone before summary is ready",
			"error", ctx.Err())
		return
	}

	c.JSON(http.StatusOK, stateResponse(s.session.Snapshot()))
}
