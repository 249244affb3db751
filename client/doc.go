// Package client talks to a Gotenberg document conversion service.
//
// # Building a Client
//
// Use [Build] to create a [Client] with functional options:
//
//	c, err := client.Build("http://localhost:3000",
//		client.WithTimeout(2*time.Minute),
//		client.WithBasicAuth("user", "pass"),
//		client.WithMaxConcurrent(4),
//	)
//
// # Converting
//
// Routes come from [Client.Chromium], [Client.LibreOffice] and
// [Client.PDFEngines]. Options are checked as they are applied; required
// inputs are checked when the route runs, before anything is sent:
//
//	r, err := c.Chromium().ConvertURL(
//		chromium.URL("https://example.com"),
//		chromium.PaperSize(chromium.A4),
//		route.OutputFilename("example"),
//	)
//	res, err := r.Run(ctx)
//
// The result is a *response.File, *response.Archive, *response.Metadata or,
// for webhook requests, *response.Deferred:
//
//	switch v := res.(type) {
//	case *response.File:
//		err = v.WriteFile("example.pdf")
//	case *response.Archive:
//		_, err = v.ExtractTo("out")
//	}
//
// # Retries
//
// [Route.RunWithRetry] re-sends the request when Gotenberg answers with a
// 5xx status, waiting longer after every failure. Client errors and
// transport failures are returned at once:
//
//	res, err := r.RunWithRetry(ctx, client.DefaultRetry())
//	var maxErr *client.MaxRetriesExceededError
//	if errors.As(err, &maxErr) { ... }
//
// # Background conversions
//
// [Route.RunAsync] encodes the route immediately and sends it on the
// client's queue:
//
//	pending := r.RunAsync(ctx)
//	// ... do other work ...
//	res, err := pending.Get()
//
// [Client.Wait] blocks until every background conversion finished.
//
// Package gotenbergtest provides a fake Gotenberg for tests that should not
// depend on a running container.
//
// Each request is traced with OpenTelemetry. Unless the route sets one,
// the trace id is sent to Gotenberg as the Gotenberg-Trace header so both
// sides log the same id.
package client
