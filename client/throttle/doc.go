// Package throttle provides an [http.RoundTripper] that rate-limits
// conversion requests using a token bucket from [golang.org/x/time/rate].
//
// Most callers enable it through client.WithThrottle. It can also wrap
// any transport directly:
//
//	rt, err := throttle.NewRoundTripper(
//		2, // conversions per second
//		4, // burst capacity
//		func() *slog.Logger { return slog.Default() },
//		http.DefaultTransport,
//	)
//	httpClient := &http.Client{Transport: rt}
//
// Only conversions (POST requests below /forms/) take tokens. When the
// bucket is empty, they block until a token is available or the request
// context ends. Health and version probes are never held back.
package throttle
