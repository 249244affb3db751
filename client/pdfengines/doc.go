// Package pdfengines builds the Gotenberg routes that work on existing PDFs:
// PDF/A and PDF/UA conversion, merge, split, flatten and metadata.
//
// Merge keeps the order in which files were added. Gotenberg merges by file
// name, so the files of a merge are sent as 1_first.pdf, 2_second.pdf and
// so on:
//
//	r, err := c.PDFEngines().Merge(
//		pdfengines.Files("cover.pdf"),
//		pdfengines.Files("body.pdf", "appendix.pdf"),
//		route.Metadata(route.DocumentInfo{Title: "Annual report"}),
//	)
package pdfengines
