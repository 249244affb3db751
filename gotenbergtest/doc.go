// Package gotenbergtest provides an in-process stand-in for a Gotenberg
// instance, for tests that exercise conversions without Docker.
//
// The server speaks Gotenberg's multipart protocol, checks the inputs each
// route requires and answers with small placeholder documents of the right
// media type:
//
//	s := gotenbergtest.NewServer()
//	defer s.Close()
//
//	c, _ := client.Build(s.URL)
//	r, _ := c.Chromium().ConvertHTML(chromium.IndexString("<h1>hi</h1>"))
//	res, err := r.Run(ctx)
//
// Every form it receives is recorded and returned by [Server.Calls].
// [Server.Fail] queues error answers so retries can be exercised.
package gotenbergtest
