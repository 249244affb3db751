package pdfengines

import (
	"path/filepath"
	"strings"

	"github.com/adamwoolhether/gotenberg/client/form"
	"github.com/adamwoolhether/gotenberg/client/response"
	"github.com/adamwoolhether/gotenberg/client/route"
)

var pdfResults = []string{response.MediaPDF, response.MediaZip}

// Endpoints of the PDF engines module.
var (
	ConvertEndpoint = route.Endpoint{
		Name:     "pdfengines/convert",
		Path:     "/forms/pdfengines/convert",
		Features: route.FeatureFiles | route.FeaturePDFA | route.FeaturePDFUA,
		Accepts:  pdfResults,
		Checks:   []route.Check{route.RequireFiles(1), route.RequireAnyField("pdfa", "pdfua")},
	}

	MergeEndpoint = route.Endpoint{
		Name:     "pdfengines/merge",
		Path:     "/forms/pdfengines/merge",
		Features: route.FeatureFiles | route.FeaturePDFA | route.FeaturePDFUA | route.FeatureMetadata | route.FeatureFlatten,
		Accepts:  []string{response.MediaPDF},
		Ordered:  true,
		Checks:   []route.Check{route.RequireFiles(2)},
	}

	SplitEndpoint = route.Endpoint{
		Name:     "pdfengines/split",
		Path:     "/forms/pdfengines/split",
		Features: route.FeatureFiles | route.FeatureSplit | route.FeaturePDFA | route.FeaturePDFUA | route.FeatureMetadata | route.FeatureFlatten,
		Accepts:  pdfResults,
		Checks:   []route.Check{route.RequireFiles(1), route.RequireField("splitMode"), route.RequireField("splitSpan")},
	}

	FlattenEndpoint = route.Endpoint{
		Name:     "pdfengines/flatten",
		Path:     "/forms/pdfengines/flatten",
		Features: route.FeatureFiles,
		Accepts:  pdfResults,
		Checks:   []route.Check{route.RequireFiles(1)},
	}

	ReadMetadataEndpoint = route.Endpoint{
		Name:     "pdfengines/metadata/read",
		Path:     "/forms/pdfengines/metadata/read",
		Features: route.FeatureFiles,
		Accepts:  []string{response.MediaJSON},
		Checks:   []route.Check{route.RequireFiles(1)},
	}

	WriteMetadataEndpoint = route.Endpoint{
		Name:     "pdfengines/metadata/write",
		Path:     "/forms/pdfengines/metadata/write",
		Features: route.FeatureFiles | route.FeatureMetadata,
		Accepts:  pdfResults,
		Checks:   []route.Check{route.RequireFiles(1), route.RequireField("metadata")},
	}
)

// API builds PDF engine routes bound to a sender.
type API struct {
	sender route.Sender
}

// NewAPI returns the PDF engine routes sent through s.
func NewAPI(s route.Sender) API {
	return API{sender: s}
}

// Convert converts PDFs to PDF/A or PDF/UA. [route.PDFA] or [route.PDFUA]
// is required.
func (a API) Convert(opts ...route.Option) (*route.Route, error) {
	return route.New(a.sender, ConvertEndpoint, opts...)
}

// Merge concatenates at least two PDFs in the order they were added,
// across any number of [Files] and [FileData] options.
func (a API) Merge(opts ...route.Option) (*route.Route, error) {
	return route.New(a.sender, MergeEndpoint, opts...)
}

// Split splits PDFs. [route.Split] is required.
func (a API) Split(opts ...route.Option) (*route.Route, error) {
	return route.New(a.sender, SplitEndpoint, opts...)
}

// Flatten merges form fields and annotations into the page content.
func (a API) Flatten(opts ...route.Option) (*route.Route, error) {
	return route.New(a.sender, FlattenEndpoint, opts...)
}

// ReadMetadata reads the metadata of PDFs. The result is a
// *response.Metadata keyed by file name.
func (a API) ReadMetadata(opts ...route.Option) (*route.Route, error) {
	return route.New(a.sender, ReadMetadataEndpoint, opts...)
}

// WriteMetadata writes metadata into PDFs. [route.Metadata] or
// [route.MetadataFields] is required.
func (a API) WriteMetadata(opts ...route.Option) (*route.Route, error) {
	return route.New(a.sender, WriteMetadataEndpoint, opts...)
}

// Files adds PDFs from disk.
func Files(paths ...string) route.Option {
	return route.NewOption("files", route.FeatureFiles, func(r *route.Route) error {
		if len(paths) == 0 {
			return route.Invalid("at least one file is required")
		}
		for _, p := range paths {
			if !isPDF(p) {
				return route.Invalid("%q is not a pdf", filepath.Base(p))
			}
			if err := r.AddFile(form.File{Path: p, ContentType: response.MediaPDF}); err != nil {
				return err
			}
		}
		return nil
	})
}

// FileData adds an in-memory PDF named name.
func FileData(name string, data []byte) route.Option {
	return route.NewOption("files", route.FeatureFiles, func(r *route.Route) error {
		if !isPDF(name) {
			return route.Invalid("%q is not a pdf", name)
		}
		return r.AddFile(form.File{Name: name, Data: data, ContentType: response.MediaPDF})
	})
}

func isPDF(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}
