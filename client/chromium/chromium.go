package chromium

import (
	"github.com/adamwoolhether/gotenberg/client/response"
	"github.com/adamwoolhether/gotenberg/client/route"
)

const (
	convertFeatures = route.FeatureBrowser | route.FeaturePrint | route.FeaturePage |
		route.FeaturePDFA | route.FeaturePDFUA | route.FeatureMetadata | route.FeatureSplit | route.FeatureFlatten
	screenshotFeatures = route.FeatureBrowser | route.FeatureScreenshot
)

var (
	pdfResults   = []string{response.MediaPDF, response.MediaZip}
	imageResults = []string{response.MediaPNG, response.MediaJPEG, response.MediaWebP}
)

// Endpoints of the Chromium module.
var (
	ConvertURLEndpoint = route.Endpoint{
		Name:     "chromium/convert/url",
		Path:     "/forms/chromium/convert/url",
		Features: convertFeatures | route.FeatureURL,
		Accepts:  pdfResults,
		Checks:   []route.Check{route.RequireField("url")},
	}

	ConvertHTMLEndpoint = route.Endpoint{
		Name:     "chromium/convert/html",
		Path:     "/forms/chromium/convert/html",
		Features: convertFeatures | route.FeatureIndex,
		Accepts:  pdfResults,
		Checks:   []route.Check{route.RequireFile(IndexFile)},
	}

	ConvertMarkdownEndpoint = route.Endpoint{
		Name:     "chromium/convert/markdown",
		Path:     "/forms/chromium/convert/markdown",
		Features: convertFeatures | route.FeatureIndex | route.FeatureMarkdown,
		Accepts:  pdfResults,
		Checks:   []route.Check{route.RequireFile(IndexFile), route.RequireFileSuffix(".md")},
	}

	ScreenshotURLEndpoint = route.Endpoint{
		Name:     "chromium/screenshot/url",
		Path:     "/forms/chromium/screenshot/url",
		Features: screenshotFeatures | route.FeatureURL,
		Accepts:  imageResults,
		Checks:   []route.Check{route.RequireField("url")},
	}

	ScreenshotHTMLEndpoint = route.Endpoint{
		Name:     "chromium/screenshot/html",
		Path:     "/forms/chromium/screenshot/html",
		Features: screenshotFeatures | route.FeatureIndex,
		Accepts:  imageResults,
		Checks:   []route.Check{route.RequireFile(IndexFile)},
	}

	ScreenshotMarkdownEndpoint = route.Endpoint{
		Name:     "chromium/screenshot/markdown",
		Path:     "/forms/chromium/screenshot/markdown",
		Features: screenshotFeatures | route.FeatureIndex | route.FeatureMarkdown,
		Accepts:  imageResults,
		Checks:   []route.Check{route.RequireFile(IndexFile), route.RequireFileSuffix(".md")},
	}
)

// API builds Chromium routes bound to a sender, usually a *client.Client.
type API struct {
	sender route.Sender
}

// NewAPI returns the Chromium routes sent through s.
func NewAPI(s route.Sender) API {
	return API{sender: s}
}

// ConvertURL renders a remote page to PDF. [URL] is required.
func (a API) ConvertURL(opts ...route.Option) (*route.Route, error) {
	return route.New(a.sender, ConvertURLEndpoint, opts...)
}

// ConvertHTML renders an HTML document to PDF. [Index] or [IndexString] is
// required; the page may reference files added with [Resource].
func (a API) ConvertHTML(opts ...route.Option) (*route.Route, error) {
	return route.New(a.sender, ConvertHTMLEndpoint, opts...)
}

// ConvertMarkdown renders Markdown files through an HTML template to PDF.
// The index template and at least one [MarkdownFiles] entry are required.
func (a API) ConvertMarkdown(opts ...route.Option) (*route.Route, error) {
	return route.New(a.sender, ConvertMarkdownEndpoint, opts...)
}

// ScreenshotURL captures a remote page as an image.
func (a API) ScreenshotURL(opts ...route.Option) (*route.Route, error) {
	return route.New(a.sender, ScreenshotURLEndpoint, opts...)
}

// ScreenshotHTML captures an HTML document as an image.
func (a API) ScreenshotHTML(opts ...route.Option) (*route.Route, error) {
	return route.New(a.sender, ScreenshotHTMLEndpoint, opts...)
}

// ScreenshotMarkdown captures rendered Markdown as an image.
func (a API) ScreenshotMarkdown(opts ...route.Option) (*route.Route, error) {
	return route.New(a.sender, ScreenshotMarkdownEndpoint, opts...)
}
