package gotenbergtest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"
)

// statusError is answered as plain text with its code, the way Gotenberg
// reports rejected forms.
type statusError struct {
	Code    int
	Message string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%d: %s", e.Code, e.Message)
}

func badRequest(format string, args ...any) error {
	return &statusError{Code: http.StatusBadRequest, Message: fmt.Sprintf(format, args...)}
}

func logger(log *slog.Logger) middleware {
	m := func(next handler) handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			v := getValues(ctx)

			log.Info("request started", "method", r.Method, "path", r.URL.Path, "trace_id", v.TraceID)

			err := next(ctx, w, r)

			log.Info("request completed", "method", r.Method, "path", r.URL.Path, "trace_id", v.TraceID, "statusCode", v.StatusCode, "since", time.Since(v.Now).String())

			return err
		}

		return h
	}

	return m
}

// errs answers errors coming out of the call chain. Anything that is not a
// statusError becomes a bare 500.
func errs(log *slog.Logger) middleware {
	m := func(next handler) handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			err := next(ctx, w, r)
			if err == nil {
				return nil
			}

			se, ok := errors.AsType[*statusError](err)
			if !ok {
				log.Error(err.Error(), "trace_id", getValues(ctx).TraceID)
				se = &statusError{Code: http.StatusInternalServerError, Message: http.StatusText(http.StatusInternalServerError)}
			}

			return respond(ctx, w, se.Code, "text/plain; charset=utf-8", []byte(se.Message))
		}

		return h
	}

	return m
}

func panics() middleware {
	m := func(next handler) handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) (err error) {
			defer func() {
				if rec := recover(); rec != nil {
					err = fmt.Errorf("PANIC [%v] TRACE[%s]", rec, string(debug.Stack()))
				}
			}()

			return next(ctx, w, r)
		}

		return h
	}

	return m
}

func respond(ctx context.Context, w http.ResponseWriter, code int, contentType string, body []byte) error {
	setStatusCode(ctx, code)

	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.WriteHeader(code)

	if len(body) == 0 {
		return nil
	}

	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("writing body: %w", err)
	}

	return nil
}
