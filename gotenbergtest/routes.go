package gotenbergtest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zip"
)

type outputKind int

const (
	outputPDF outputKind = iota
	outputImage
	outputMetadata
)

// route describes what a Gotenberg route requires and answers with.
type route struct {
	name     string
	output   outputKind
	fields   []string
	index    bool
	minFiles int
	// perFile routes answer with a zip when given several files.
	perFile bool
}

var routes = []route{
	{name: "chromium/convert/url", output: outputPDF, fields: []string{"url"}},
	{name: "chromium/convert/html", output: outputPDF, index: true},
	{name: "chromium/convert/markdown", output: outputPDF, index: true},
	{name: "chromium/screenshot/url", output: outputImage, fields: []string{"url"}},
	{name: "chromium/screenshot/html", output: outputImage, index: true},
	{name: "chromium/screenshot/markdown", output: outputImage, index: true},
	{name: "libreoffice/convert", output: outputPDF, minFiles: 1, perFile: true},
	{name: "pdfengines/convert", output: outputPDF, minFiles: 1, perFile: true},
	{name: "pdfengines/merge", output: outputPDF, minFiles: 1},
	{name: "pdfengines/split", output: outputPDF, fields: []string{"splitMode", "splitSpan"}, minFiles: 1},
	{name: "pdfengines/flatten", output: outputPDF, minFiles: 1, perFile: true},
	{name: "pdfengines/metadata/read", output: outputMetadata, minFiles: 1},
	{name: "pdfengines/metadata/write", output: outputPDF, fields: []string{"metadata"}, minFiles: 1, perFile: true},
}

// output is a rendered answer.
type output struct {
	contentType string
	disposition string
	body        []byte
}

func (s *Server) convert(rt route) handler {
	h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		c, err := readForm(r)
		if err != nil {
			return err
		}
		c.Route = rt.name
		c.SpanContext = getValues(ctx).Remote

		if code := s.record(c); code != 0 {
			return &statusError{Code: code, Message: "simulated failure"}
		}

		if err := rt.validate(c); err != nil {
			return err
		}

		out, err := rt.render(c)
		if err != nil {
			return err
		}

		if c.Header.Get(headerWebhookURL) != "" {
			if c.Header.Get(headerWebhookErrorURL) == "" {
				return badRequest("Invalid '%s' header value: empty value", headerWebhookErrorURL)
			}

			s.deliver(c, out)
			return respond(ctx, w, http.StatusNoContent, "", nil)
		}

		w.Header().Set("Content-Disposition", out.disposition)
		return respond(ctx, w, http.StatusOK, out.contentType, out.body)
	}

	return h
}

// readForm walks the multipart body so file order is kept.
func readForm(r *http.Request) (Call, error) {
	c := Call{
		Header: r.Header.Clone(),
		Fields: make(map[string]string),
	}

	mr, err := r.MultipartReader()
	if err != nil {
		return c, badRequest("Invalid form data: %v", err)
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return c, nil
		}
		if err != nil {
			return c, badRequest("Invalid form data: %v", err)
		}

		if name := part.FileName(); name != "" {
			if _, err := io.Copy(io.Discard, part); err != nil {
				return c, fmt.Errorf("reading %s: %w", name, err)
			}
			c.Files = append(c.Files, name)
			continue
		}

		v, err := io.ReadAll(part)
		if err != nil {
			return c, fmt.Errorf("reading field %s: %w", part.FormName(), err)
		}
		c.Fields[part.FormName()] = string(v)
	}
}

func (rt route) validate(c Call) error {
	for _, f := range rt.fields {
		if c.Fields[f] == "" {
			return badRequest("Invalid form data: form field '%s' is required", f)
		}
	}

	if rt.index && !slices.Contains(c.Files, "index.html") {
		return badRequest("Invalid form data: form file 'index.html' is required")
	}

	if len(c.Files) < rt.minFiles {
		return badRequest("Invalid form data: no form file found for extensions")
	}

	return nil
}

func (rt route) render(c Call) (output, error) {
	name := c.Header.Get(headerOutputFilename)
	if name == "" {
		name = uuid.NewString()
	}

	switch rt.output {
	case outputImage:
		format := c.Fields["format"]
		if format == "" {
			format = "png"
		}
		return output{
			contentType: "image/" + format,
			disposition: disposition(name + "." + format),
			body:        []byte("\x89" + strings.ToUpper(format)),
		}, nil

	case outputMetadata:
		entries := make(map[string]map[string]any, len(c.Files))
		for _, f := range c.Files {
			entries[f] = map[string]any{"PageCount": 1, "Producer": "gotenbergtest"}
		}
		body, err := json.Marshal(entries)
		if err != nil {
			return output{}, fmt.Errorf("encoding metadata: %w", err)
		}
		return output{contentType: "application/json", body: body}, nil
	}

	var parts []string
	switch {
	case rt.name == "pdfengines/split" && c.Fields["splitUnify"] != "true":
		for _, f := range c.Files {
			parts = append(parts, pdfName(f, "_0"), pdfName(f, "_1"))
		}
	case rt.perFile && len(c.Files) > 1 && c.Fields["merge"] != "true":
		for _, f := range c.Files {
			parts = append(parts, pdfName(f, ""))
		}
	}

	if len(parts) == 0 {
		return output{
			contentType: "application/pdf",
			disposition: disposition(name + ".pdf"),
			body:        document(rt.name),
		}, nil
	}

	body, err := archive(rt.name, parts)
	if err != nil {
		return output{}, err
	}

	return output{
		contentType: "application/zip",
		disposition: disposition(name + ".zip"),
		body:        body,
	}, nil
}

func document(title string) []byte {
	return []byte("%PDF-1.7\n% " + title + "\n%%EOF\n")
}

func pdfName(file, suffix string) string {
	return strings.TrimSuffix(file, filepath.Ext(file)) + suffix + ".pdf"
}

func archive(title string, names []string) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, name := range names {
		f, err := zw.Create(name)
		if err != nil {
			return nil, fmt.Errorf("creating %s: %w", name, err)
		}
		if _, err := f.Write(document(title)); err != nil {
			return nil, fmt.Errorf("writing %s: %w", name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("closing archive: %w", err)
	}

	return buf.Bytes(), nil
}

func disposition(filename string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": filename})
}
