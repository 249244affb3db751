package pdfengines_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/adamwoolhether/gotenberg/client/async"
	"github.com/adamwoolhether/gotenberg/client/pdfengines"
	"github.com/adamwoolhether/gotenberg/client/response"
	"github.com/adamwoolhether/gotenberg/client/route"
)

type spySender struct {
	reqs        []*route.Request
	contentType string
	body        []byte
	queue       *async.Queue
}

func newSpy(contentType string, body []byte) *spySender {
	return &spySender{contentType: contentType, body: body, queue: async.NewQueue(0)}
}

func (s *spySender) Send(_ context.Context, req *route.Request, _ *route.Retry) (*response.Raw, error) {
	s.reqs = append(s.reqs, req)

	h := make(http.Header)
	h.Set("Content-Type", s.contentType)
	return &response.Raw{StatusCode: http.StatusOK, Header: h, Body: s.body, Attempts: 1}, nil
}

func (s *spySender) Queue() *async.Queue   { return s.queue }
func (s *spySender) Logger() *slog.Logger { return slog.New(slog.DiscardHandler) }

func writePDFs(t *testing.T, names ...string) []string {
	t.Helper()

	dir := t.TempDir()
	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name)
		if err := os.WriteFile(paths[i], []byte("%PDF-1.7 "+name), 0o600); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}

	return paths
}

func TestMerge_KeepsCallerOrder(t *testing.T) {
	paths := writePDFs(t, "zeta.pdf", "alpha.pdf", "mid.pdf")
	spy := newSpy(response.MediaPDF, []byte("%PDF-1.7"))

	r, err := pdfengines.NewAPI(spy).Merge(
		pdfengines.Files(paths[0]),
		pdfengines.Files(paths[1], paths[2]),
		pdfengines.FileData("alpha.pdf", []byte("%PDF-1.7 again")),
	)
	if err != nil {
		t.Fatalf("failed to build route: %v", err)
	}

	if _, err := r.Run(t.Context()); err != nil {
		t.Fatalf("run: %v", err)
	}

	exp := []string{"1_zeta.pdf", "2_alpha.pdf", "3_mid.pdf", "4_alpha.pdf"}
	if diff := cmp.Diff(exp, spy.reqs[0].Files); diff != "" {
		t.Errorf("unexpected files (-want +got):\n%s", diff)
	}
}

func TestRoutes_MissingRequired(t *testing.T) {
	pdf := pdfengines.FileData("a.pdf", []byte("%PDF-1.7"))

	tests := []struct {
		name string
		fn   func(pdfengines.API, ...route.Option) (*route.Route, error)
		opts []route.Option
	}{
		{"convert without files", pdfengines.API.Convert, []route.Option{route.PDFA(route.PDFA2b)}},
		{"convert without format", pdfengines.API.Convert, []route.Option{pdf}},
		{"merge single file", pdfengines.API.Merge, []route.Option{pdf}},
		{"split without mode", pdfengines.API.Split, []route.Option{pdf}},
		{"flatten without files", pdfengines.API.Flatten, nil},
		{"read without files", pdfengines.API.ReadMetadata, nil},
		{"write without metadata", pdfengines.API.WriteMetadata, []route.Option{pdf}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spy := newSpy(response.MediaPDF, nil)

			r, err := tt.fn(pdfengines.NewAPI(spy), tt.opts...)
			if err != nil {
				t.Fatalf("failed to build route: %v", err)
			}

			if _, err := r.Run(t.Context()); !errors.Is(err, route.ErrMissingRequired) {
				t.Fatalf("expected ErrMissingRequired, got: %v", err)
			}
			if len(spy.reqs) != 0 {
				t.Errorf("expected no request, got %d", len(spy.reqs))
			}
		})
	}
}

func TestRoutes_Options(t *testing.T) {
	api := pdfengines.NewAPI(newSpy(response.MediaPDF, nil))

	tests := []struct {
		name string
		fn   func(...route.Option) (*route.Route, error)
		opt  route.Option
		exp  error
	}{
		{"not a pdf", api.Merge, pdfengines.FileData("a.docx", []byte("x")), route.ErrInvalidOption},
		{"no paths", api.Merge, pdfengines.Files(), route.ErrInvalidOption},
		{"bad split span", api.Split, route.Split(route.SplitIntervals, "0"), route.ErrInvalidOption},
		{"bad split mode", api.Split, route.Split("chapters", "1"), route.ErrInvalidOption},
		{"keyword comma", api.WriteMetadata, route.Metadata(route.DocumentInfo{Keywords: []string{"a,b"}}), route.ErrInvalidOption},
		{"pdf version", api.WriteMetadata, route.Metadata(route.DocumentInfo{PDFVersion: 2.5}), route.ErrInvalidOption},
		{"flatten on convert", api.Convert, route.Flatten(true), route.ErrUnsupportedOption},
		{"metadata on read", api.ReadMetadata, route.MetadataFields(map[string]any{"Author": "x"}), route.ErrUnsupportedOption},
		{"split on merge", api.Merge, route.Split(route.SplitPages, "1-2"), route.ErrUnsupportedOption},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.fn(tt.opt); !errors.Is(err, tt.exp) {
				t.Fatalf("expected %v, got: %v", tt.exp, err)
			}
		})
	}
}

func TestWriteMetadata_Merges(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	spy := newSpy(response.MediaPDF, []byte("%PDF-1.7"))

	r, err := pdfengines.NewAPI(spy).WriteMetadata(
		pdfengines.FileData("a.pdf", []byte("%PDF-1.7")),
		route.Metadata(route.DocumentInfo{Author: "Ada", Title: "Draft", CreationDate: &created}),
		route.Metadata(route.DocumentInfo{Title: "Final", Keywords: []string{"report", "2024"}}),
		route.MetadataFields(map[string]any{"Custom": "yes"}),
	)
	if err != nil {
		t.Fatalf("failed to build route: %v", err)
	}

	raw, ok := r.Field("metadata")
	if !ok {
		t.Fatal("expected metadata field")
	}

	var got map[string]any
	if err := json.Unmarshal([]byte(raw), &got); err != nil {
		t.Fatalf("decoding metadata: %v", err)
	}

	exp := map[string]any{
		"Author":       "Ada",
		"Title":        "Final",
		"CreationDate": "2024-03-01T10:00:00Z",
		"Keywords":     "report, 2024",
		"Custom":       "yes",
	}
	if diff := cmp.Diff(exp, got); diff != "" {
		t.Errorf("unexpected metadata (-want +got):\n%s", diff)
	}

	res, err := r.Run(t.Context())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, ok := res.(*response.File); !ok {
		t.Errorf("expected *response.File, got %T", res)
	}
}

func TestReadMetadata(t *testing.T) {
	body := []byte(`{"a.pdf":{"Author":"Ada","PageCount":3}}`)
	spy := newSpy(response.MediaJSON, body)

	r, err := pdfengines.NewAPI(spy).ReadMetadata(pdfengines.FileData("a.pdf", []byte("%PDF-1.7")))
	if err != nil {
		t.Fatalf("failed to build route: %v", err)
	}

	res, err := r.Run(t.Context())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	md, ok := res.(*response.Metadata)
	if !ok {
		t.Fatalf("expected *response.Metadata, got %T", res)
	}

	exp := map[string]map[string]any{"a.pdf": {"Author": "Ada", "PageCount": float64(3)}}
	if diff := cmp.Diff(exp, md.Entries); diff != "" {
		t.Errorf("unexpected entries (-want +got):\n%s", diff)
	}
}

func TestSplit_Fields(t *testing.T) {
	api := pdfengines.NewAPI(newSpy(response.MediaZip, nil))

	r, err := api.Split(
		pdfengines.FileData("a.pdf", []byte("%PDF-1.7")),
		route.Split(route.SplitPages, "1-2,4"),
		route.SplitUnify(true),
		route.PDFUA(true),
	)
	if err != nil {
		t.Fatalf("failed to build route: %v", err)
	}

	exp := map[string]string{
		"splitMode":  "pages",
		"splitSpan":  "1-2,4",
		"splitUnify": "true",
		"pdfua":      "true",
	}
	if diff := cmp.Diff(exp, r.Fields()); diff != "" {
		t.Errorf("unexpected fields (-want +got):\n%s", diff)
	}
}
