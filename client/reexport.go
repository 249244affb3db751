package client

import (
	"hash"

	"github.com/adamwoolhether/gotenberg/client/async"
	"github.com/adamwoolhether/gotenberg/client/response"
	"github.com/adamwoolhether/gotenberg/client/route"
)

// ————————————————————————————————————————————————————————————————————
// Type aliases – re-export user-facing types from [route], [response]
// and [async].
// ————————————————————————————————————————————————————————————————————

type (
	// Route is a conversion being configured. See [route.Route].
	Route = route.Route

	// RouteOption configures a [Route].
	RouteOption = route.Option

	// Retry is the retry policy of [Route.RunWithRetry].
	Retry = route.Retry

	// ConfigError reports a route configuration problem found before sending.
	ConfigError = route.ConfigError

	// FieldErrors lists the fields of a rejected struct-shaped option.
	FieldErrors = route.FieldErrors

	// Result is the classified answer of a conversion.
	Result = response.Result

	// ClassificationError reports an answer whose media type the route does not accept.
	ClassificationError = response.ClassificationError

	// AsyncResult is a conversion running in the background.
	AsyncResult = async.Result[response.Result]
)

// ————————————————————————————————————————————————————————————————————
// Sentinel errors
// ————————————————————————————————————————————————————————————————————

var (
	// ErrMissingRequired indicates a route ran without a required input.
	ErrMissingRequired = route.ErrMissingRequired

	// ErrInvalidOption indicates an option value was rejected.
	ErrInvalidOption = route.ErrInvalidOption

	// ErrUnsupportedOption indicates an option the endpoint does not accept.
	ErrUnsupportedOption = route.ErrUnsupportedOption

	// ErrRouteClosed indicates a route was used after it ran.
	ErrRouteClosed = route.ErrRouteClosed

	// ErrUnexpectedContentType indicates the answer could not be classified.
	ErrUnexpectedContentType = response.ErrUnexpectedContentType

	// ErrCannotExtractHere indicates an archive target that is not a directory.
	ErrCannotExtractHere = response.ErrCannotExtractHere

	// ErrChecksumMismatch indicates the written file did not match the expected checksum.
	ErrChecksumMismatch = response.ErrChecksumMismatch

	// ErrQueueShutdown indicates the client queue was shut down.
	ErrQueueShutdown = async.ErrQueueShutdown
)

// ————————————————————————————————————————————————————————————————————
// Forwarding functions
// ————————————————————————————————————————————————————————————————————

// DefaultRetry returns the default retry policy: five attempts, waiting 5s
// and doubling after every failure.
func DefaultRetry() Retry { return route.DefaultRetry() }

// WithChecksum verifies a written file against the hex-encoded expected
// checksum computed with h (e.g. sha256.New()).
func WithChecksum(h hash.Hash, expected string) response.WriteOption {
	return response.WithChecksum(h, expected)
}

// WithSkipExisting leaves an existing destination file untouched.
func WithSkipExisting() response.WriteOption { return response.WithSkipExisting() }
