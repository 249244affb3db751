// Package chromium builds the Gotenberg Chromium routes: URL, HTML and
// Markdown conversion to PDF, and the matching screenshot routes.
//
// Routes are obtained from an [API], normally through client.Client:
//
//	r, err := c.Chromium().ConvertHTML(
//		chromium.Index("report.html"),
//		chromium.Resource("style.css"),
//		chromium.PaperSize(chromium.A4),
//		chromium.PageMargins(chromium.UniformMargins(chromium.Measurement{Value: 1, Unit: chromium.Centimeters})),
//		route.PDFA(route.PDFA2b),
//	)
//	res, err := r.Run(ctx)
//
// Options are checked when they are applied. Whether the route has
// everything it needs, such as an index document, is checked when it runs.
package chromium
