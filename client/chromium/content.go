package chromium

import (
	"path/filepath"
	"strings"

	"github.com/adamwoolhether/gotenberg/client/form"
	"github.com/adamwoolhether/gotenberg/client/route"
)

// File names Gotenberg looks for.
const (
	IndexFile  = "index.html"
	HeaderFile = "header.html"
	FooterFile = "footer.html"
)

const mediaHTML = "text/html"

// URL sets the page to convert.
func URL(u string) route.Option {
	return route.NewOption("url", route.FeatureURL, func(r *route.Route) error {
		if err := route.ValidateVar("url", u, "required,url"); err != nil {
			return err
		}
		r.SetField("url", u)
		return nil
	})
}

// Index uses the HTML file at path as the main document, whatever its name.
func Index(path string) route.Option {
	return route.NewOption("index", route.FeatureIndex, func(r *route.Route) error {
		return r.AddFile(form.File{Name: IndexFile, Path: path, ContentType: mediaHTML})
	})
}

// IndexString uses html as the main document.
func IndexString(html string) route.Option {
	return route.NewOption("index", route.FeatureIndex, func(r *route.Route) error {
		return r.AddFile(form.File{Name: IndexFile, Data: []byte(html), ContentType: mediaHTML})
	})
}

// Resource adds a file the main document references, such as a stylesheet
// or an image. The file keeps its base name.
func Resource(path string) route.Option {
	return route.NewOption("resource", route.FeatureIndex, func(r *route.Route) error {
		return r.AddFile(form.File{Path: path})
	})
}

// ResourceData adds an in-memory file the main document references as name.
// An empty contentType is detected from data.
func ResourceData(name string, data []byte, contentType string) route.Option {
	return route.NewOption("resource", route.FeatureIndex, func(r *route.Route) error {
		if name == "" {
			return route.Invalid("resource name must not be empty")
		}
		return r.AddFile(form.File{Name: name, Data: data, ContentType: contentType})
	})
}

// MarkdownFiles adds Markdown files. The index template includes them with
// {{ toHTML "name.md" }}.
func MarkdownFiles(paths ...string) route.Option {
	return route.NewOption("markdown", route.FeatureMarkdown, func(r *route.Route) error {
		if len(paths) == 0 {
			return route.Invalid("at least one markdown file is required")
		}
		for _, p := range paths {
			if !isMarkdown(p) {
				return route.Invalid("%q is not a markdown file", filepath.Base(p))
			}
			if err := r.AddFile(form.File{Path: p, ContentType: "text/markdown"}); err != nil {
				return err
			}
		}
		return nil
	})
}

// MarkdownData adds an in-memory Markdown file named name.
func MarkdownData(name string, data []byte) route.Option {
	return route.NewOption("markdown", route.FeatureMarkdown, func(r *route.Route) error {
		if !isMarkdown(name) {
			return route.Invalid("%q is not a markdown file", name)
		}
		return r.AddFile(form.File{Name: name, Data: data, ContentType: "text/markdown"})
	})
}

func isMarkdown(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".md")
}

// Header prints the HTML file at path on top of every page.
func Header(path string) route.Option {
	return route.NewOption("header", route.FeaturePrint, func(r *route.Route) error {
		return r.AddFile(form.File{Name: HeaderFile, Path: path, ContentType: mediaHTML})
	})
}

// HeaderString prints html on top of every page.
func HeaderString(html string) route.Option {
	return route.NewOption("header", route.FeaturePrint, func(r *route.Route) error {
		return r.AddFile(form.File{Name: HeaderFile, Data: []byte(html), ContentType: mediaHTML})
	})
}

// Footer prints the HTML file at path at the bottom of every page.
func Footer(path string) route.Option {
	return route.NewOption("footer", route.FeaturePrint, func(r *route.Route) error {
		return r.AddFile(form.File{Name: FooterFile, Path: path, ContentType: mediaHTML})
	})
}

// FooterString prints html at the bottom of every page.
func FooterString(html string) route.Option {
	return route.NewOption("footer", route.FeaturePrint, func(r *route.Route) error {
		return r.AddFile(form.File{Name: FooterFile, Data: []byte(html), ContentType: mediaHTML})
	})
}
