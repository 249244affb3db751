package route

import (
	"errors"
	"fmt"
	"strings"
)

// Headers understood by Gotenberg.
const (
	HeaderOutputFilename      = "Gotenberg-Output-Filename"
	HeaderTrace               = "Gotenberg-Trace"
	HeaderWebhookURL          = "Gotenberg-Webhook-Url"
	HeaderWebhookErrorURL     = "Gotenberg-Webhook-Error-Url"
	HeaderWebhookMethod       = "Gotenberg-Webhook-Method"
	HeaderWebhookErrorMethod  = "Gotenberg-Webhook-Error-Method"
	HeaderWebhookExtraHeaders = "Gotenberg-Webhook-Extra-Http-Headers"
)

var (
	// ErrMissingRequired is wrapped when a route is run without one of its
	// required inputs.
	ErrMissingRequired = errors.New("missing required input")
	// ErrInvalidOption is wrapped when an option value is rejected.
	ErrInvalidOption = errors.New("invalid option")
	// ErrUnsupportedOption is wrapped when an option is applied to an
	// endpoint that does not accept it.
	ErrUnsupportedOption = errors.New("option not supported by route")
	// ErrRouteClosed is returned when a route is used after it ran or was closed.
	ErrRouteClosed = errors.New("route already closed")
)

// ConfigError describes a configuration problem detected before anything
// was sent.
type ConfigError struct {
	Route  string
	Option string
	Err    error
}

func (e *ConfigError) Error() string {
	var b strings.Builder
	b.WriteString("route ")
	b.WriteString(e.Route)
	if e.Option != "" {
		b.WriteString(": ")
		b.WriteString(e.Option)
	}
	b.WriteString(": ")
	b.WriteString(e.Err.Error())

	return b.String()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Invalid builds an error wrapping [ErrInvalidOption].
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidOption, fmt.Sprintf(format, args...))
}

// Feature is a capability an endpoint supports. Options tagged with a
// feature may only be applied to endpoints that have it.
type Feature uint32

const (
	FeaturePDFA Feature = 1 << iota
	FeaturePDFUA
	FeatureMetadata
	FeatureFlatten
	FeatureSplit
	// FeatureBrowser covers page loading options shared by every Chromium route.
	FeatureBrowser
	// FeaturePrint covers the PDF page layout of Chromium conversions.
	FeaturePrint
	FeatureScreenshot
	FeatureIndex
	FeatureMarkdown
	FeatureURL
	FeatureOffice
	FeatureFiles
	// FeaturePage covers orientation and page ranges, shared by Chromium
	// PDF conversions and LibreOffice.
	FeaturePage
)

// Has reports whether every bit of o is set in f.
func (f Feature) Has(o Feature) bool {
	return f&o == o
}
