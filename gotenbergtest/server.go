package gotenbergtest

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	headerTrace           = "Gotenberg-Trace"
	headerOutputFilename  = "Gotenberg-Output-Filename"
	headerWebhookURL      = "Gotenberg-Webhook-Url"
	headerWebhookErrorURL = "Gotenberg-Webhook-Error-Url"
	headerWebhookMethod   = "Gotenberg-Webhook-Method"
	headerWebhookHeaders  = "Gotenberg-Webhook-Extra-Http-Headers"
)

// Call is one form received by the server.
type Call struct {
	// Route is the path below /forms/, e.g. "pdfengines/merge".
	Route  string
	Header http.Header
	Fields map[string]string
	// Files holds the uploaded file names in the order they were sent.
	Files []string
	// SpanContext is the trace context propagated by the caller, if any.
	SpanContext trace.SpanContext
}

// Server is a fake Gotenberg listening on a local port.
type Server struct {
	// URL is the base URL of the form http://127.0.0.1:port.
	URL string

	ts       *httptest.Server
	mux      *http.ServeMux
	mw       []middleware
	logger   *slog.Logger
	tracer   trace.Tracer
	version  string
	username string
	password string
	webhooks sync.WaitGroup

	mu       sync.Mutex
	calls    []Call
	failures map[string][]int
	down     bool
}

// Option configures a Server.
type Option func(*Server)

// WithLogger logs every request to logger. Requests are not logged by default.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithBasicAuth makes the server reject requests without these credentials.
func WithBasicAuth(username, password string) Option {
	return func(s *Server) {
		s.username = username
		s.password = password
	}
}

// WithVersion sets the version reported by /version. Defaults to 8.11.0.
func WithVersion(version string) Option {
	return func(s *Server) {
		s.version = version
	}
}

// WithTracerProvider records server spans with tp instead of a no-op tracer.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Server) {
		s.tracer = tp.Tracer("github.com/adamwoolhether/gotenberg/gotenbergtest")
	}
}

// NewServer starts a Server. Callers should Close it when done.
func NewServer(opts ...Option) *Server {
	s := &Server{
		mux:      http.NewServeMux(),
		logger:   slog.New(slog.DiscardHandler),
		tracer:   noop.NewTracerProvider().Tracer("no-op tracer"),
		version:  "8.11.0",
		failures: make(map[string][]int),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.mw = []middleware{logger(s.logger), errs(s.logger), s.authenticate, panics()}

	s.handle("GET /health", s.health)
	s.handle("GET /version", s.versionHandler)
	for _, rt := range routes {
		s.handle(http.MethodPost+" /forms/"+rt.name, s.convert(rt))
	}

	s.ts = httptest.NewServer(s.mux)
	s.URL = s.ts.URL

	return s
}

// Close shuts the server down once pending webhook deliveries finished.
func (s *Server) Close() {
	s.webhooks.Wait()
	s.ts.Close()
}

// Calls returns the forms received so far.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()

	calls := make([]Call, len(s.calls))
	copy(calls, s.calls)

	return calls
}

// Fail answers the next len(codes) requests to route with the given status
// codes, in order. Later requests succeed again.
func (s *Server) Fail(route string, codes ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failures[route] = append(s.failures[route], codes...)
}

// SetDown makes /health report the Chromium module as down.
func (s *Server) SetDown(down bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.down = down
}

func (s *Server) authenticate(next handler) handler {
	h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		if s.username == "" && s.password == "" {
			return next(ctx, w, r)
		}

		user, pass, ok := r.BasicAuth()
		if !ok ||
			subtle.ConstantTimeCompare([]byte(user), []byte(s.username)) != 1 ||
			subtle.ConstantTimeCompare([]byte(pass), []byte(s.password)) != 1 {
			return &statusError{Code: http.StatusUnauthorized, Message: http.StatusText(http.StatusUnauthorized)}
		}

		return next(ctx, w, r)
	}

	return h
}

func (s *Server) health(ctx context.Context, w http.ResponseWriter, _ *http.Request) error {
	s.mu.Lock()
	down := s.down
	s.mu.Unlock()

	now := time.Now().UTC()
	chromium := map[string]any{"status": "up", "timestamp": now}
	status, code := "up", http.StatusOK
	if down {
		chromium["status"] = "down"
		status, code = "down", http.StatusServiceUnavailable
	}

	body, err := json.Marshal(map[string]any{
		"status": status,
		"details": map[string]any{
			"chromium":    chromium,
			"libreoffice": map[string]any{"status": "up", "timestamp": now},
		},
	})
	if err != nil {
		return fmt.Errorf("encoding health: %w", err)
	}

	return respond(ctx, w, code, "application/json", body)
}

func (s *Server) versionHandler(ctx context.Context, w http.ResponseWriter, _ *http.Request) error {
	return respond(ctx, w, http.StatusOK, "text/plain; charset=utf-8", []byte(s.version))
}

func (s *Server) record(c Call) (failure int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, c)

	if queued := s.failures[c.Route]; len(queued) > 0 {
		failure, s.failures[c.Route] = queued[0], queued[1:]
	}

	return failure
}

// deliver posts a webhook result in the background, like Gotenberg does
// once it accepted the request.
func (s *Server) deliver(c Call, out output) {
	method := c.Header.Get(headerWebhookMethod)
	if method == "" {
		method = http.MethodPost
	}

	var extra map[string]string
	if raw := c.Header.Get(headerWebhookHeaders); raw != "" {
		if err := json.Unmarshal([]byte(raw), &extra); err != nil {
			s.logger.Error("gotenbergtest", "webhook headers", err)
		}
	}

	s.webhooks.Go(func() {
		req, err := http.NewRequest(method, c.Header.Get(headerWebhookURL), bytes.NewReader(out.body))
		if err != nil {
			s.logger.Error("gotenbergtest", "webhook request", err)
			return
		}

		req.Header.Set("Content-Type", out.contentType)
		req.Header.Set("Content-Disposition", out.disposition)
		req.Header.Set(headerTrace, c.Header.Get(headerTrace))
		for k, v := range extra {
			req.Header.Set(k, v)
		}

		resp, err := s.ts.Client().Do(req)
		if err != nil {
			s.logger.Error("gotenbergtest", "webhook delivery", err)
			return
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	})
}
