package client

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/adamwoolhether/gotenberg/client/throttle"
)

// Option is a functional option for configuring a [Client] via [Build].
type Option func(*options) error
type options struct {
	client            *http.Client
	rt                http.RoundTripper
	timeout           *time.Duration
	userAgent         string
	throttle          *throttle.Config
	noFollowRedirects bool
	logger            *slog.Logger
	basicAuth         *basicAuth
	headers           http.Header
	tracerProvider    trace.TracerProvider
	maxConcurrent     int
}

type basicAuth struct {
	username string
	password string
}

// WithHTTPClient replaces the default [http.Client] used by the [Client].
func WithHTTPClient(hc *http.Client) Option {
	return func(c *options) error {
		if hc == nil {
			return errors.New("client must not be nil")
		}
		c.client = hc
		return nil
	}
}

// WithTransport sets a custom [http.RoundTripper] as the base transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *options) error {
		if rt == nil {
			return errors.New("transport must not be nil")
		}
		c.rt = rt
		return nil
	}
}

// WithTimeout bounds every request, retries excluded. Office conversions
// of large documents take a while; zero disables the limit.
func WithTimeout(d time.Duration) Option {
	return func(c *options) error {
		if d < 0 {
			return errors.New("timeout must not be negative")
		}
		c.timeout = &d
		return nil
	}
}

// WithUserAgent adds a persistent User-Agent header to all outgoing requests.
func WithUserAgent(header string) Option {
	return func(c *options) error {
		c.userAgent = header
		return nil
	}
}

// WithThrottle limits conversions to rps per second with the given burst
// capacity. Health and version probes are not limited.
func WithThrottle(rps, burst int) Option {
	return func(c *options) error {
		cfg := throttle.Config{RPS: rps, Burst: burst}
		if err := cfg.Validate(); err != nil {
			return err
		}
		c.throttle = &cfg
		return nil
	}
}

// WithNoFollowRedirects prevents the [Client] from following HTTP redirects.
func WithNoFollowRedirects() Option {
	return func(c *options) error {
		c.noFollowRedirects = true
		return nil
	}
}

// WithLogger injects a custom [slog.Logger] into the [Client].
func WithLogger(logger *slog.Logger) Option {
	return func(c *options) error {
		if logger == nil {
			return errors.New("logger must not be nil")
		}
		c.logger = logger
		return nil
	}
}

// WithBasicAuth sends HTTP basic credentials, for Gotenberg instances
// started with --api-enable-basic-auth.
func WithBasicAuth(username, password string) Option {
	return func(c *options) error {
		if username == "" {
			return errors.New("username must not be empty")
		}
		c.basicAuth = &basicAuth{username: username, password: password}
		return nil
	}
}

// WithHeaders adds headers to every request. Route level headers win over these.
func WithHeaders(headers map[string]string) Option {
	return func(c *options) error {
		if c.headers == nil {
			c.headers = make(http.Header)
		}
		for k, v := range headers {
			if k == "" {
				return errors.New("header key must not be empty")
			}
			c.headers.Set(k, v)
		}
		return nil
	}
}

// WithTracerProvider sets where request spans are recorded. The global
// provider is used by default.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *options) error {
		if tp == nil {
			return errors.New("tracer provider must not be nil")
		}
		c.tracerProvider = tp
		return nil
	}
}

// WithMaxConcurrent limits how many RunAsync conversions are in flight at
// once. If n <= 0, concurrency is unlimited.
func WithMaxConcurrent(n int) Option {
	return func(c *options) error {
		if n < 0 {
			return fmt.Errorf("max concurrent[%d] must not be negative", n)
		}
		c.maxConcurrent = n
		return nil
	}
}

// userAgent is an http.RoundTripper, enabling the persistent User-Agent header.
type userAgent struct {
	value string
	base  http.RoundTripper
}

func (ua userAgent) RoundTrip(r *http.Request) (*http.Response, error) {
	cpy := r.Clone(r.Context())
	cpy.Header.Set("User-Agent", ua.value)
	return ua.base.RoundTrip(cpy)
}
