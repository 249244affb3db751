// Package libreoffice builds the Gotenberg LibreOffice route, which turns
// office documents (docx, xlsx, pptx, odt and many more) into PDF.
//
//	r, err := c.LibreOffice().Convert(
//		libreoffice.Files("q1.xlsx", "q2.xlsx"),
//		libreoffice.Merge(true),
//		libreoffice.Quality(80),
//	)
//
// Several files answer with a zip archive unless [Merge] is enabled.
package libreoffice

import (
	"slices"
	"strconv"

	"github.com/adamwoolhether/gotenberg/client/form"
	"github.com/adamwoolhether/gotenberg/client/response"
	"github.com/adamwoolhether/gotenberg/client/route"
)

// ConvertEndpoint is /forms/libreoffice/convert.
var ConvertEndpoint = route.Endpoint{
	Name: "libreoffice/convert",
	Path: "/forms/libreoffice/convert",
	Features: route.FeatureOffice | route.FeatureFiles | route.FeaturePage |
		route.FeaturePDFA | route.FeaturePDFUA | route.FeatureMetadata | route.FeatureSplit | route.FeatureFlatten,
	Accepts: []string{response.MediaPDF, response.MediaZip},
	Checks:  []route.Check{route.RequireFiles(1)},
}

// API builds LibreOffice routes bound to a sender.
type API struct {
	sender route.Sender
}

// NewAPI returns the LibreOffice routes sent through s.
func NewAPI(s route.Sender) API {
	return API{sender: s}
}

// Convert converts the documents added with [Files] or [FileData].
func (a API) Convert(opts ...route.Option) (*route.Route, error) {
	return route.New(a.sender, ConvertEndpoint, opts...)
}

// Files adds documents from disk.
func Files(paths ...string) route.Option {
	return route.NewOption("files", route.FeatureFiles, func(r *route.Route) error {
		if len(paths) == 0 {
			return route.Invalid("at least one file is required")
		}
		for _, p := range paths {
			if err := r.AddFile(form.File{Path: p}); err != nil {
				return err
			}
		}
		return nil
	})
}

// FileData adds an in-memory document. The extension of name tells
// LibreOffice the input format.
func FileData(name string, data []byte) route.Option {
	return route.NewOption("files", route.FeatureFiles, func(r *route.Route) error {
		if name == "" {
			return route.Invalid("file name must not be empty")
		}
		return r.AddFile(form.File{Name: name, Data: data})
	})
}

// Password opens protected documents.
func Password(password string) route.Option {
	return route.NewOption("password", route.FeatureOffice, func(r *route.Route) error {
		if password == "" {
			return route.Invalid("password must not be empty")
		}
		r.SetField("password", password)
		return nil
	})
}

// UpdateIndexes updates tables of contents and other indexes first.
func UpdateIndexes(enabled bool) route.Option {
	return boolOption("updateIndexes", enabled)
}

// ExportFormFields exports form fields as widgets instead of their text.
func ExportFormFields(enabled bool) route.Option {
	return boolOption("exportFormFields", enabled)
}

// AllowDuplicateFieldNames allows form fields sharing a name.
func AllowDuplicateFieldNames(enabled bool) route.Option {
	return boolOption("allowDuplicateFieldNames", enabled)
}

// ExportBookmarks exports bookmarks to the PDF.
func ExportBookmarks(enabled bool) route.Option {
	return boolOption("exportBookmarks", enabled)
}

// ExportBookmarksToPDFDestination exports bookmarks as named destinations.
func ExportBookmarksToPDFDestination(enabled bool) route.Option {
	return boolOption("exportBookmarksToPdfDestination", enabled)
}

// ExportPlaceholders marks placeholder fields visually.
func ExportPlaceholders(enabled bool) route.Option {
	return boolOption("exportPlaceholders", enabled)
}

// ExportNotes exports comments as PDF annotations.
func ExportNotes(enabled bool) route.Option {
	return boolOption("exportNotes", enabled)
}

// ExportNotesPages exports the notes pages of presentations.
func ExportNotesPages(enabled bool) route.Option {
	return boolOption("exportNotesPages", enabled)
}

// ExportOnlyNotesPages exports only the notes pages of presentations.
func ExportOnlyNotesPages(enabled bool) route.Option {
	return boolOption("exportOnlyNotesPages", enabled)
}

// ExportNotesInMargin exports comments in the page margin.
func ExportNotesInMargin(enabled bool) route.Option {
	return boolOption("exportNotesInMargin", enabled)
}

// ConvertOOoTargetToPDFTarget rewrites links to other office documents to
// point at their PDF counterparts.
func ConvertOOoTargetToPDFTarget(enabled bool) route.Option {
	return boolOption("convertOooTargetToPdfTarget", enabled)
}

// ExportLinksRelativeFsys exports file system links as relative paths.
func ExportLinksRelativeFsys(enabled bool) route.Option {
	return boolOption("exportLinksRelativeFsys", enabled)
}

// ExportHiddenSlides includes hidden presentation slides.
func ExportHiddenSlides(enabled bool) route.Option {
	return boolOption("exportHiddenSlides", enabled)
}

// SkipEmptyPages leaves out automatically inserted empty pages.
func SkipEmptyPages(enabled bool) route.Option {
	return boolOption("skipEmptyPages", enabled)
}

// AddOriginalDocumentAsStream embeds the source document in the PDF.
func AddOriginalDocumentAsStream(enabled bool) route.Option {
	return boolOption("addOriginalDocumentAsStream", enabled)
}

// SinglePageSheets puts every spreadsheet sheet on one page.
func SinglePageSheets(enabled bool) route.Option {
	return boolOption("singlePageSheets", enabled)
}

// LosslessImageCompression compresses images without loss, ignoring [Quality].
func LosslessImageCompression(enabled bool) route.Option {
	return boolOption("losslessImageCompression", enabled)
}

// Quality sets the JPEG quality of exported images, in [1, 100].
func Quality(q int) route.Option {
	return route.NewOption("quality", route.FeatureOffice, func(r *route.Route) error {
		if q < 1 || q > 100 {
			return route.Invalid("quality must be in [1, 100], got %d", q)
		}
		r.SetField("quality", strconv.Itoa(q))
		return nil
	})
}

// ReduceImageResolution downsamples images to [MaxImageResolution].
func ReduceImageResolution(enabled bool) route.Option {
	return boolOption("reduceImageResolution", enabled)
}

var resolutions = []int{75, 150, 300, 600, 1200}

// MaxImageResolution sets the target DPI of [ReduceImageResolution]: one
// of 75, 150, 300, 600 or 1200.
func MaxImageResolution(dpi int) route.Option {
	return route.NewOption("maxImageResolution", route.FeatureOffice, func(r *route.Route) error {
		if !slices.Contains(resolutions, dpi) {
			return route.Invalid("max image resolution must be one of %v, got %d", resolutions, dpi)
		}
		r.SetField("maxImageResolution", strconv.Itoa(dpi))
		return nil
	})
}

// Merge combines the converted documents into one PDF. Gotenberg merges in
// the alphanumeric order of the file names.
func Merge(enabled bool) route.Option {
	return boolOption("merge", enabled)
}

func boolOption(field string, enabled bool) route.Option {
	return route.NewOption(field, route.FeatureOffice, func(r *route.Route) error {
		r.SetBool(field, enabled)
		return nil
	})
}
