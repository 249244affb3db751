package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/adamwoolhether/gotenberg/client/response"
	"github.com/adamwoolhether/gotenberg/client/route"
)

// Send posts an encoded route to Gotenberg. With a nil retry the request
// is sent once. Otherwise 5xx answers are retried per the policy and
// exhausting it yields a [*MaxRetriesExceededError]; 4xx answers and
// transport errors are returned after the attempt that produced them.
func (c *Client) Send(ctx context.Context, req *route.Request, retry *route.Retry) (*response.Raw, error) {
	ctx, span := c.tracer.Start(ctx, "gotenberg "+req.Route,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("gotenberg.route", req.Route),
			attribute.String("url.path", req.Path),
			attribute.Int("gotenberg.files", len(req.Files)),
			attribute.Int("http.request.body.size", len(req.Body)),
		),
	)
	defer span.End()

	var (
		raw      *response.Raw
		attempts int
		err      error
	)
	if retry == nil {
		raw, attempts, err = c.sendOnce(ctx, req)
	} else {
		raw, attempts, err = c.sendWithRetry(ctx, req, *retry)
	}

	if attempts > 0 {
		span.SetAttributes(attribute.Int("gotenberg.attempts", attempts))
	}
	if code := statusCode(raw, err); code != 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", code))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	return raw, nil
}

// statusCode returns the last status Gotenberg answered with, or zero when
// no answer arrived.
func statusCode(raw *response.Raw, err error) int {
	if raw != nil {
		return raw.StatusCode
	}

	var maxErr *MaxRetriesExceededError
	if errors.As(err, &maxErr) && maxErr.Last != nil {
		return maxErr.Last.StatusCode
	}

	var serr *UnexpectedStatusError
	if errors.As(err, &serr) {
		return serr.StatusCode
	}

	return 0
}

// sendOnce and sendWithRetry also return how many requests were sent.
func (c *Client) sendOnce(ctx context.Context, req *route.Request) (*response.Raw, int, error) {
	hr, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL.JoinPath(req.Path).String(), bytes.NewReader(req.Body))
	if err != nil {
		return nil, 0, fmt.Errorf("instantiating request: %w", err)
	}
	c.decorate(ctx, hr, req)

	resp, err := c.c.Do(hr)
	if err != nil {
		return nil, 1, fmt.Errorf("exec http do: %w", err)
	}

	raw, err := c.read(resp, 1)
	return raw, 1, err
}

func (c *Client) sendWithRetry(ctx context.Context, req *route.Request, retry route.Retry) (*response.Raw, int, error) {
	rr, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL.JoinPath(req.Path).String(), req.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("instantiating request: %w", err)
	}
	c.decorate(ctx, rr.Request, req)

	var attempts int
	rc := &retryablehttp.Client{
		HTTPClient:   c.c,
		Logger:       c.logger,
		RetryWaitMin: retry.InitialWait,
		RetryWaitMax: retry.MaxWait,
		RetryMax:     retry.MaxAttempts - 1,
		CheckRetry:   retryServerErrors,
		Backoff: func(_, _ time.Duration, attempt int, _ *http.Response) time.Duration {
			return retry.Backoff(attempt + 1)
		},
		RequestLogHook: func(_ retryablehttp.Logger, _ *http.Request, attempt int) {
			attempts = attempt + 1
			if attempt > 0 {
				c.logger.Warn("retrying conversion", "route", req.Route, "attempt", attempts, "max_attempts", retry.MaxAttempts)
			}
		},
		ErrorHandler: func(resp *http.Response, err error, _ int) (*http.Response, error) {
			return resp, err
		},
	}

	resp, err := rc.Do(rr)
	if err != nil {
		if resp != nil {
			c.drain(resp)
		}
		return nil, attempts, fmt.Errorf("exec http do: %w", err)
	}

	raw, err := c.read(resp, attempts)
	if err != nil {
		var serr *UnexpectedStatusError
		if errors.As(err, &serr) && errors.Is(serr, ErrServerError) {
			return nil, attempts, &MaxRetriesExceededError{Attempts: attempts, Last: serr}
		}
		return nil, attempts, err
	}

	return raw, attempts, nil
}

// retryServerErrors retries 5xx answers only. Transport errors are handed
// back untouched.
func retryServerErrors(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return false, ctxErr
	}
	if err != nil {
		return false, nil
	}

	return resp.StatusCode >= http.StatusInternalServerError, nil
}

// decorate sets the client and route headers, the trace id and the
// propagation headers of the active span.
func (c *Client) decorate(ctx context.Context, hr *http.Request, req *route.Request) {
	for k, v := range c.header {
		hr.Header[k] = append([]string(nil), v...)
	}
	for k, v := range req.Header {
		hr.Header[k] = append([]string(nil), v...)
	}
	hr.Header.Set("Content-Type", req.ContentType)

	if hr.Header.Get(route.HeaderTrace) == "" {
		hr.Header.Set(route.HeaderTrace, traceID(ctx))
	}

	if c.auth != nil {
		hr.SetBasicAuth(c.auth.username, c.auth.password)
	}

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(hr.Header))
}

// traceID returns the id of the active trace, or a random one when there
// is none.
func traceID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		return sc.TraceID().String()
	}

	return uuid.New().String()
}

// read consumes a conversion answer. Non-2xx answers become an
// [*UnexpectedStatusError].
func (c *Client) read(resp *http.Response, attempts int) (*response.Raw, error) {
	defer c.drain(resp)

	if !isSuccess(resp.StatusCode) {
		return nil, c.statusError(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}

	raw := response.Raw{
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       body,
		Attempts:   attempts,
	}

	return &raw, nil
}
