package route

import (
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"
)

// Option configures a [Route]. Options are created by the functions in this
// package and in the chromium, libreoffice and pdfengines packages.
type Option struct {
	name    string
	feature Feature
	apply   func(*Route) error
}

// NewOption returns an Option named name that may only be applied to
// endpoints supporting feature. A zero feature is accepted everywhere.
func NewOption(name string, feature Feature, apply func(*Route) error) Option {
	return Option{name: name, feature: feature, apply: apply}
}

// Name returns the option name used in errors.
func (o Option) Name() string { return o.name }

// Failed returns an Option that always fails with err. Option constructors
// use it to report invalid arguments when the option is applied.
func Failed(name string, err error) Option {
	return Option{name: name, apply: func(*Route) error { return err }}
}

// ————————————————————————————————————————————————————————————————————
// Options accepted by every route.
// ————————————————————————————————————————————————————————————————————

// OutputFilename asks Gotenberg to name the result filename (without extension).
func OutputFilename(filename string) Option {
	return NewOption("outputFilename", 0, func(r *Route) error {
		if strings.TrimSpace(filename) == "" {
			return Invalid("output filename must not be empty")
		}
		r.SetHeader(HeaderOutputFilename, filename)
		return nil
	})
}

// Trace sets the request trace id Gotenberg logs with the conversion. When
// unset, the client derives one from the active span.
func Trace(id string) Option {
	return NewOption("trace", 0, func(r *Route) error {
		if strings.TrimSpace(id) == "" {
			return Invalid("trace id must not be empty")
		}
		r.SetHeader(HeaderTrace, id)
		return nil
	})
}

// Header sets an additional request header for this route only.
func Header(key, value string) Option {
	return NewOption("header", 0, func(r *Route) error {
		if key == "" {
			return Invalid("header key must not be empty")
		}
		r.SetHeader(key, value)
		return nil
	})
}

// Field sets a raw form field. It exists for Gotenberg fields this package
// does not model yet.
func Field(name, value string) Option {
	return NewOption("field", 0, func(r *Route) error {
		if name == "" {
			return Invalid("field name must not be empty")
		}
		r.SetField(name, value)
		return nil
	})
}

// Webhook switches the route to asynchronous delivery: Gotenberg answers
// 204 immediately and later posts the result to url, or the error to errorURL.
func Webhook(url, errorURL string) Option {
	return NewOption("webhook", 0, func(r *Route) error {
		if err := ValidateVar("webhookUrl", url, "required,url"); err != nil {
			return err
		}
		if err := ValidateVar("webhookErrorUrl", errorURL, "required,url"); err != nil {
			return err
		}

		r.SetHeader(HeaderWebhookURL, url)
		r.SetHeader(HeaderWebhookErrorURL, errorURL)
		r.webhook = true
		return nil
	})
}

var webhookMethods = []string{http.MethodPost, http.MethodPatch, http.MethodPut}

// WebhookMethods overrides the HTTP methods of the webhook callbacks.
// Gotenberg accepts POST, PATCH and PUT.
func WebhookMethods(method, errorMethod string) Option {
	return NewOption("webhookMethods", 0, func(r *Route) error {
		method, errorMethod = strings.ToUpper(method), strings.ToUpper(errorMethod)
		if !slices.Contains(webhookMethods, method) || !slices.Contains(webhookMethods, errorMethod) {
			return Invalid("webhook methods must be one of %v, got %q and %q", webhookMethods, method, errorMethod)
		}

		r.SetHeader(HeaderWebhookMethod, method)
		r.SetHeader(HeaderWebhookErrorMethod, errorMethod)
		return nil
	})
}

// WebhookExtraHeaders adds headers Gotenberg sends with webhook callbacks.
func WebhookExtraHeaders(headers map[string]string) Option {
	return NewOption("webhookExtraHeaders", 0, func(r *Route) error {
		b, err := json.Marshal(headers)
		if err != nil {
			return fmt.Errorf("encoding webhook headers: %w", err)
		}
		r.SetHeader(HeaderWebhookExtraHeaders, string(b))
		return nil
	})
}

// ————————————————————————————————————————————————————————————————————
// Document options shared by several engines.
// ————————————————————————————————————————————————————————————————————

// PDFAFormat is a PDF/A conformance level.
type PDFAFormat string

const (
	PDFA1b PDFAFormat = "PDF/A-1b"
	PDFA2b PDFAFormat = "PDF/A-2b"
	PDFA3b PDFAFormat = "PDF/A-3b"
)

// PDFA converts the result to the given PDF/A level. When applied more
// than once the last level wins.
func PDFA(format PDFAFormat) Option {
	return NewOption("pdfa", FeaturePDFA, func(r *Route) error {
		switch format {
		case PDFA1b, PDFA2b, PDFA3b:
		default:
			return Invalid("unknown PDF/A format %q", format)
		}
		r.SetField("pdfa", string(format))
		return nil
	})
}

// PDFUA enables or disables PDF/UA (universal accessibility) output.
func PDFUA(enabled bool) Option {
	return NewOption("pdfua", FeaturePDFUA, func(r *Route) error {
		r.SetBool("pdfua", enabled)
		return nil
	})
}

// Flatten merges form fields and annotations into the page content.
func Flatten(enabled bool) Option {
	return NewOption("flatten", FeatureFlatten, func(r *Route) error {
		r.SetBool("flatten", enabled)
		return nil
	})
}

// Orientation is the page orientation of a conversion.
type Orientation string

const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
)

// Orient sets the page orientation.
func Orient(o Orientation) Option {
	return NewOption("orientation", FeaturePage, func(r *Route) error {
		switch o {
		case Portrait, Landscape:
		default:
			return Invalid("unknown orientation %q", o)
		}
		r.SetBool("landscape", o == Landscape)
		return nil
	})
}

// NativePageRanges restricts the conversion to the given pages, e.g. "1-5, 8, 11-13".
func NativePageRanges(ranges string) Option {
	return NewOption("nativePageRanges", FeaturePage, func(r *Route) error {
		if strings.TrimSpace(ranges) == "" {
			return Invalid("page ranges must not be empty")
		}
		r.SetField("nativePageRanges", ranges)
		return nil
	})
}

// SplitMode selects how a document is split.
type SplitMode string

const (
	// SplitIntervals splits every N pages.
	SplitIntervals SplitMode = "intervals"
	// SplitPages extracts the given page ranges.
	SplitPages SplitMode = "pages"
)

// Split splits the result. For [SplitIntervals] span is the page count of
// each part; for [SplitPages] it is a page range expression like "1-3,5".
func Split(mode SplitMode, span string) Option {
	return NewOption("split", FeatureSplit, func(r *Route) error {
		switch mode {
		case SplitIntervals:
			n, err := strconv.Atoi(span)
			if err != nil || n < 1 {
				return Invalid("interval span must be a positive integer, got %q", span)
			}
		case SplitPages:
			if strings.TrimSpace(span) == "" {
				return Invalid("page span must not be empty")
			}
		default:
			return Invalid("unknown split mode %q", mode)
		}

		r.SetField("splitMode", string(mode))
		r.SetField("splitSpan", span)
		return nil
	})
}

// SplitUnify puts the extracted pages of [SplitPages] into a single file.
func SplitUnify(enabled bool) Option {
	return NewOption("splitUnify", FeatureSplit, func(r *Route) error {
		r.SetBool("splitUnify", enabled)
		return nil
	})
}
