// Package response turns raw Gotenberg answers into typed results.
//
// # Classification
//
// [Classify] looks only at the Content-Type header:
//
//	application/pdf, image/png, image/jpeg, image/webp -> *File
//	application/zip                                    -> *Archive
//	application/json                                   -> *Metadata
//
// A 204 from a webhook request becomes *Deferred. Anything a route does not
// produce is a [*ClassificationError]; nothing is guessed.
//
// # Writing Results
//
// [File.WriteFile] and [Archive.ExtractTo] write through a temp file in the
// destination directory and rename it into place, so a failed write never
// leaves a partial file:
//
//	switch res := res.(type) {
//	case *response.File:
//		err = res.WriteFile("out.pdf", response.WithChecksum(sha256.New(), want))
//	case *response.Archive:
//		paths, err = res.ExtractTo("out/")
//	}
package response
