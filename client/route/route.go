package route

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"strconv"

	"github.com/adamwoolhether/gotenberg/client/async"
	"github.com/adamwoolhether/gotenberg/client/form"
	"github.com/adamwoolhether/gotenberg/client/response"
)

// Sender delivers encoded requests to Gotenberg.
type Sender interface {
	// Send performs the request once, or under retry when retry is non-nil,
	// and returns the fully read answer. Non-2xx answers are errors.
	Send(ctx context.Context, req *Request, retry *Retry) (*response.Raw, error)
	// Queue runs the non-blocking entry points.
	Queue() *async.Queue
	Logger() *slog.Logger
}

// Request is a fully encoded conversion request.
type Request struct {
	Route       string
	Path        string
	Header      http.Header
	ContentType string
	Body        []byte
	// Files lists the transmitted file names in wire order.
	Files  []string
	Expect response.Expect
}

// Route accumulates the fields, files and headers of one conversion. It is
// consumed by the first call to one of its Run methods, after which every
// method returns [ErrRouteClosed]. A Route is not safe for concurrent use.
type Route struct {
	endpoint Endpoint
	sender   Sender
	form     *form.Form
	header   http.Header
	webhook  bool
	closed   bool
	logger   *slog.Logger
}

// New returns a Route for ep with opts applied.
func New(sender Sender, ep Endpoint, opts ...Option) (*Route, error) {
	logger := sender.Logger()
	if logger == nil {
		logger = slog.Default()
	}

	r := &Route{
		endpoint: ep,
		sender:   sender,
		form:     form.New(ep.Ordered, logger.With("route", ep.Name)),
		header:   make(http.Header),
		logger:   logger,
	}

	if err := r.Apply(opts...); err != nil {
		return nil, err
	}

	return r, nil
}

// Apply adds options to the route. Options are applied in order, so a
// later option overrides an earlier one that sets the same field.
func (r *Route) Apply(opts ...Option) error {
	if r.closed {
		return ErrRouteClosed
	}

	for _, opt := range opts {
		if opt.apply == nil {
			return &ConfigError{Route: r.endpoint.Name, Err: Invalid("zero option")}
		}
		if !r.endpoint.Features.Has(opt.feature) {
			return &ConfigError{Route: r.endpoint.Name, Option: opt.name, Err: ErrUnsupportedOption}
		}
		if err := opt.apply(r); err != nil {
			return &ConfigError{Route: r.endpoint.Name, Option: opt.name, Err: err}
		}
	}

	return nil
}

// Endpoint returns the endpoint the route targets.
func (r *Route) Endpoint() Endpoint { return r.endpoint }

// SetField stores a scalar form field.
func (r *Route) SetField(name, value string) { r.form.Set(name, value) }

// SetBool stores a boolean form field as "true" or "false".
func (r *Route) SetBool(name string, v bool) { r.form.Set(name, strconv.FormatBool(v)) }

// SetJSON stores v as a JSON-encoded form field.
func (r *Route) SetJSON(name string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	r.form.Set(name, string(b))

	return nil
}

// Field returns a scalar form field.
func (r *Route) Field(name string) (string, bool) { return r.form.Get(name) }

// Fields returns a copy of every scalar form field.
func (r *Route) Fields() map[string]string { return r.form.Fields() }

// DeleteField removes a scalar form field.
func (r *Route) DeleteField(name string) { r.form.Delete(name) }

// AddFile attaches a file.
func (r *Route) AddFile(f form.File) error { return r.form.Add(f) }

// HasFile reports whether a file with the given name is attached.
func (r *Route) HasFile(name string) bool { return r.form.Has(name) }

// Files returns the attached files in the order they were added.
func (r *Route) Files() []form.File { return r.form.Files() }

// SetHeader sets a request header, replacing any previous value.
func (r *Route) SetHeader(key, value string) { r.header.Set(key, value) }

// Header returns a copy of the request headers.
func (r *Route) Header() http.Header { return r.header.Clone() }

// Close releases temporary files. It is safe to call more than once.
func (r *Route) Close() error {
	r.closed = true
	return r.form.Close()
}

// Run sends the route once and waits for the result.
func (r *Route) Run(ctx context.Context) (response.Result, error) {
	req, err := r.consume()
	if err != nil {
		return nil, err
	}

	return send(ctx, r.sender, req, nil)
}

// RunWithRetry sends the route, retrying 5xx answers per retry. An invalid
// retry policy is reported before the route is consumed.
func (r *Route) RunWithRetry(ctx context.Context, retry Retry) (response.Result, error) {
	if err := r.checkRetry(retry); err != nil {
		return nil, err
	}

	req, err := r.consume()
	if err != nil {
		return nil, err
	}

	return send(ctx, r.sender, req, &retry)
}

// RunAsync encodes the route immediately and sends it in the background on
// the client's queue. Configuration errors are reported through the result.
func (r *Route) RunAsync(ctx context.Context) *async.Result[response.Result] {
	req, err := r.consume()
	if err != nil {
		return async.Failed[response.Result](r.sender.Queue(), err)
	}

	return async.Go(ctx, r.sender.Queue(), func(ctx context.Context) (response.Result, error) {
		return send(ctx, r.sender, req, nil)
	})
}

// RunAsyncWithRetry is the background form of [Route.RunWithRetry].
func (r *Route) RunAsyncWithRetry(ctx context.Context, retry Retry) *async.Result[response.Result] {
	if err := r.checkRetry(retry); err != nil {
		return async.Failed[response.Result](r.sender.Queue(), err)
	}

	req, err := r.consume()
	if err != nil {
		return async.Failed[response.Result](r.sender.Queue(), err)
	}

	return async.Go(ctx, r.sender.Queue(), func(ctx context.Context) (response.Result, error) {
		return send(ctx, r.sender, req, &retry)
	})
}

func (r *Route) checkRetry(retry Retry) error {
	if err := retry.Validate(); err != nil {
		return &ConfigError{Route: r.endpoint.Name, Option: "retry", Err: err}
	}
	return nil
}

// Request runs the endpoint checks and encodes the route without sending
// it. The route is consumed.
func (r *Route) Request() (*Request, error) {
	return r.consume()
}

// consume checks and encodes the route, then closes it whatever the outcome.
func (r *Route) consume() (*Request, error) {
	if r.closed {
		return nil, ErrRouteClosed
	}
	defer func() {
		if err := r.Close(); err != nil {
			r.logger.Error("failed to remove temporary files", "route", r.endpoint.Name, "error", err)
		}
	}()

	for _, check := range r.endpoint.Checks {
		if err := check(r); err != nil {
			return nil, err
		}
	}

	body, err := r.form.Encode()
	if err != nil {
		return nil, &ConfigError{Route: r.endpoint.Name, Option: "files", Err: err}
	}

	req := Request{
		Route:       r.endpoint.Name,
		Path:        r.endpoint.Path,
		Header:      r.header.Clone(),
		ContentType: body.ContentType,
		Body:        body.Data,
		Files:       body.Files,
		Expect: response.Expect{
			Accepts:  r.endpoint.Accepts,
			Deferred: r.webhook,
		},
	}

	return &req, nil
}

func send(ctx context.Context, s Sender, req *Request, retry *Retry) (response.Result, error) {
	raw, err := s.Send(ctx, req, retry)
	if err != nil {
		return nil, err
	}

	res, err := response.Classify(raw, req.Expect)
	if err != nil {
		return nil, fmt.Errorf("route %s: %w", req.Route, err)
	}

	return res, nil
}

// mergeJSON decodes the JSON object stored in field, overlays extra and
// stores the result back.
func (r *Route) mergeJSON(field string, extra map[string]any) error {
	merged := make(map[string]any)
	if existing, ok := r.form.Get(field); ok {
		if err := json.Unmarshal([]byte(existing), &merged); err != nil {
			return fmt.Errorf("decoding existing %s: %w", field, err)
		}
	}
	maps.Copy(merged, extra)

	return r.SetJSON(field, merged)
}
