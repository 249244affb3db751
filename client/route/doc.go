// Package route builds and executes individual Gotenberg conversions.
//
// A [Route] targets one [Endpoint]. It is configured with [Option] values,
// checked and encoded when run, and consumed by that run:
//
//	r, err := route.New(sender, endpoint,
//		route.PDFA(route.PDFA2b),
//		route.OutputFilename("report"),
//	)
//	res, err := r.RunWithRetry(ctx, route.DefaultRetry())
//
// Options validate their arguments when applied and fail with a
// [*ConfigError]. Inputs a route cannot do without, like the index page of
// an HTML conversion, are checked when it runs; nothing is sent if a check
// fails.
//
// # Execution
//
// [Route.Run] and [Route.RunWithRetry] block. [Route.RunAsync] and
// [Route.RunAsyncWithRetry] encode the request right away and hand the
// send to the client's queue. All four build the body through the same
// code path, so the bytes on the wire are identical.
//
// Options setting the same field override each other in the order they
// are applied. PDF/A is the common case: the last level applied wins.
package route
