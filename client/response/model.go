package response

import (
	"errors"
	"fmt"
	"strings"
)

// Media types Gotenberg answers with.
const (
	MediaPDF  = "application/pdf"
	MediaZip  = "application/zip"
	MediaPNG  = "image/png"
	MediaJPEG = "image/jpeg"
	MediaWebP = "image/webp"
	MediaJSON = "application/json"
)

var (
	ErrUnexpectedContentType = errors.New("unexpected content type")
	ErrCannotExtractHere     = errors.New("cannot extract here")
	ErrUnsafeEntry           = errors.New("archive entry escapes target directory")
	ErrChecksumMismatch      = errors.New("checksum mismatch")
)

// ClassificationError is returned when a response carries a media type the
// route does not produce.
type ClassificationError struct {
	StatusCode  int
	ContentType string
	Accepts     []string
	Err         error
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("%v: %q (status %d), expected one of [%s]", e.Err, e.ContentType, e.StatusCode, strings.Join(e.Accepts, ", "))
}

func (e *ClassificationError) Unwrap() error {
	return e.Err
}

// Error wraps a sentinel error with additional detail.
type Error struct {
	Detail string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Err
}
