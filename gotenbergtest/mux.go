package gotenbergtest

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// handler is a http.Handler that returns an error.
type handler func(ctx context.Context, w http.ResponseWriter, r *http.Request) error

// middleware chains handlers together.
type middleware func(handler) handler

type ctxKey int

const valuesKey ctxKey = iota + 1

// values are shared by the middleware serving one request.
type values struct {
	TraceID    string
	Now        time.Time
	StatusCode int
	// Remote is the span context propagated by the caller.
	Remote trace.SpanContext
}

func getValues(ctx context.Context) *values {
	v, ok := ctx.Value(valuesKey).(*values)
	if !ok {
		return &values{TraceID: uuid.Nil.String(), Now: time.Now()}
	}

	return v
}

func setStatusCode(ctx context.Context, code int) {
	if v, ok := ctx.Value(valuesKey).(*values); ok {
		v.StatusCode = code
	}
}

// handle registers h under pattern, wrapped in the server's middleware.
// The caller's trace context is extracted and Gotenberg-Trace is echoed
// back the way Gotenberg does.
func (s *Server) handle(pattern string, h handler) {
	h = wrap(s.mw, h)

	fn := func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		remote := trace.SpanContextFromContext(ctx)

		ctx, span := s.tracer.Start(ctx, "gotenbergtest "+r.URL.Path)
		span.SetAttributes(attribute.String("url.path", r.URL.Path))
		defer span.End()

		traceID := r.Header.Get(headerTrace)
		if traceID == "" {
			traceID = uuid.NewString()
		}
		w.Header().Set(headerTrace, traceID)

		v := values{TraceID: traceID, Now: time.Now().UTC(), Remote: remote}
		ctx = context.WithValue(ctx, valuesKey, &v)

		if err := h(ctx, w, r.WithContext(ctx)); err != nil {
			s.logger.Error("gotenbergtest", "handle", err)
		}
	}

	s.mux.HandleFunc(pattern, fn)
}

// wrap middleware around the handler, executed in the order given.
func wrap(mw []middleware, h handler) handler {
	for _, fn := range slices.Backward(mw) {
		if fn != nil {
			h = fn(h)
		}
	}

	return h
}
