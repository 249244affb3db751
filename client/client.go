package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/Masterminds/semver/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/adamwoolhether/gotenberg/client/async"
	"github.com/adamwoolhether/gotenberg/client/chromium"
	"github.com/adamwoolhether/gotenberg/client/libreoffice"
	"github.com/adamwoolhether/gotenberg/client/pdfengines"
	"github.com/adamwoolhether/gotenberg/client/throttle"
)

const tracerName = "github.com/adamwoolhether/gotenberg/client"

// Client talks to one Gotenberg instance. It is safe for concurrent use;
// the routes it hands out are not.
type Client struct {
	c       *http.Client
	baseURL *url.URL
	logger  *slog.Logger
	tracer  trace.Tracer
	header  http.Header
	auth    *basicAuth
	queue   *async.Queue
}

// Build returns a Client for the Gotenberg instance at baseURL,
// e.g. "http://localhost:3000".
func Build(baseURL string, optFns ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("base url %q: host must not be empty", baseURL)
	}

	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying client option: %w", err)
		}
	}

	client := &Client{
		c:       &http.Client{},
		baseURL: u,
		logger:  slog.Default(),
		header:  opts.headers,
		auth:    opts.basicAuth,
		queue:   async.NewQueue(opts.maxConcurrent),
	}

	if opts.client != nil {
		client.c = opts.client
	}

	if opts.logger != nil {
		client.logger = opts.logger
	}

	tp := opts.tracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	client.tracer = tp.Tracer(tracerName)

	if opts.timeout != nil {
		client.c.Timeout = *opts.timeout
	}

	if opts.noFollowRedirects {
		client.c.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	var transport http.RoundTripper
	switch {
	case opts.rt != nil:
		transport = opts.rt
	case opts.client != nil && opts.client.Transport != nil:
		transport = opts.client.Transport
	default:
		transport = http.DefaultTransport
	}
	if opts.userAgent != "" {
		transport = userAgent{value: opts.userAgent, base: transport}
	}
	if opts.throttle != nil {
		rt, err := throttle.NewRoundTripper(opts.throttle.RPS, opts.throttle.Burst, func() *slog.Logger { return client.logger }, transport)
		if err != nil {
			return nil, fmt.Errorf("configuring throttle: %w", err)
		}
		transport = rt
	}
	client.c.Transport = transport

	return client, nil
}

// Chromium returns the Chromium routes (HTML, URL and Markdown conversion
// and screenshots).
func (c *Client) Chromium() chromium.API { return chromium.NewAPI(c) }

// LibreOffice returns the office document conversion route.
func (c *Client) LibreOffice() libreoffice.API { return libreoffice.NewAPI(c) }

// PDFEngines returns the routes operating on existing PDFs.
func (c *Client) PDFEngines() pdfengines.API { return pdfengines.NewAPI(c) }

// Queue returns the queue running RunAsync conversions.
func (c *Client) Queue() *async.Queue { return c.queue }

// Logger returns the client's logger.
func (c *Client) Logger() *slog.Logger { return c.logger }

// Wait blocks until every RunAsync conversion started from this client
// completes and returns the errors of that batch joined. Errors are reported
// by one Wait only.
func (c *Client) Wait() error { return c.queue.Wait() }

// Shutdown stops queued conversions that have not started yet. The client
// accepts new ones again after Wait.
func (c *Client) Shutdown() { c.queue.Shutdown() }

// Health queries Gotenberg's health check. A degraded instance answers 503
// with the same body, which is decoded too.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	req, err := c.request(ctx, http.MethodGet, "/health")
	if err != nil {
		return nil, err
	}

	var status HealthStatus
	decode := func(resp *http.Response) error {
		if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
			return fmt.Errorf("decoding body: %w", err)
		}
		return nil
	}

	if err := c.exec(req, decode, http.StatusOK, http.StatusServiceUnavailable); err != nil {
		return nil, err
	}

	return &status, nil
}

// Version returns the Gotenberg version.
func (c *Client) Version(ctx context.Context) (*semver.Version, error) {
	req, err := c.request(ctx, http.MethodGet, "/version")
	if err != nil {
		return nil, err
	}

	var version *semver.Version
	parse := func(resp *http.Response) error {
		b, err := io.ReadAll(io.LimitReader(resp.Body, maxErrBodySize))
		if err != nil {
			return fmt.Errorf("reading body: %w", err)
		}

		v, err := semver.NewVersion(strings.TrimSpace(string(b)))
		if err != nil {
			return fmt.Errorf("parsing version %q: %w", b, err)
		}
		version = v
		return nil
	}

	if err := c.exec(req, parse, http.StatusOK); err != nil {
		return nil, err
	}

	return version, nil
}

// request builds a body-less request against the base URL.
func (c *Client) request(ctx context.Context, method, path string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.JoinPath(path).String(), nil)
	if err != nil {
		return nil, fmt.Errorf("instantiating request: %w", err)
	}

	for k, v := range c.header {
		req.Header[k] = v
	}
	if c.auth != nil {
		req.SetBasicAuth(c.auth.username, c.auth.password)
	}

	return req, nil
}

// exec runs the request and injected function on success after validating the expected status code.
func (c *Client) exec(req *http.Request, fn execFn, expCodes ...int) error {
	resp, err := c.c.Do(req)
	if err != nil {
		return fmt.Errorf("exec http do: %w", err)
	}
	defer c.drain(resp)

	var expected bool
	for _, code := range expCodes {
		expected = expected || resp.StatusCode == code
	}
	if !expected {
		return c.statusError(resp)
	}

	if err := fn(resp); err != nil {
		return fmt.Errorf("exec fn: %w", err)
	}

	return nil
}

// drain discards what is left of the body so the connection can be reused.
func (c *Client) drain(resp *http.Response) {
	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		c.logger.Error("failed to discard unused body", "error", err)
	}
	if err := resp.Body.Close(); err != nil {
		c.logger.Error("failed to close response body", "error", err)
	}
}

func (c *Client) statusError(resp *http.Response) *UnexpectedStatusError {
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxErrBodySize))
	if err != nil {
		b = []byte("unable to read body")
	}

	return &UnexpectedStatusError{
		StatusCode: resp.StatusCode,
		Body:       string(b),
		Header:     resp.Header.Clone(),
		Err:        statusErr(resp.StatusCode),
	}
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}
