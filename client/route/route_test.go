package route

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/adamwoolhether/gotenberg/client/async"
	"github.com/adamwoolhether/gotenberg/client/form"
	"github.com/adamwoolhether/gotenberg/client/response"
	"github.com/google/go-cmp/cmp"
)

type spySender struct {
	mu      sync.Mutex
	reqs    []*Request
	retries []*Retry
	queue   *async.Queue
}

func newSpy() *spySender {
	return &spySender{queue: async.NewQueue(0)}
}

func (s *spySender) Send(_ context.Context, req *Request, retry *Retry) (*response.Raw, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reqs = append(s.reqs, req)
	s.retries = append(s.retries, retry)

	h := make(http.Header)
	h.Set("Content-Type", response.MediaPDF)
	return &response.Raw{StatusCode: http.StatusOK, Header: h, Body: []byte("%PDF-1.7"), Attempts: 1}, nil
}

func (s *spySender) Queue() *async.Queue   { return s.queue }
func (s *spySender) Logger() *slog.Logger { return slog.New(slog.DiscardHandler) }

func (s *spySender) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reqs)
}

var htmlEndpoint = Endpoint{
	Name:     "test.html",
	Path:     "/forms/chromium/convert/html",
	Features: FeaturePDFA | FeaturePDFUA | FeatureMetadata | FeatureIndex,
	Accepts:  []string{response.MediaPDF, response.MediaZip},
	Checks:   []Check{RequireFile("index.html")},
}

var mergeEndpoint = Endpoint{
	Name:     "test.merge",
	Path:     "/forms/pdfengines/merge",
	Features: FeaturePDFA | FeatureFiles,
	Accepts:  []string{response.MediaPDF},
	Ordered:  true,
	Checks:   []Check{RequireFiles(2)},
}

func index(html string) Option {
	return NewOption("index", FeatureIndex, func(r *Route) error {
		return r.AddFile(form.File{Name: "index.html", Data: []byte(html), ContentType: "text/html"})
	})
}

func TestRun_MissingRequiredSendsNothing(t *testing.T) {
	spy := newSpy()

	r, err := New(spy, htmlEndpoint, PDFA(PDFA2b))
	if err != nil {
		t.Fatalf("failed to build route: %v", err)
	}

	_, err = r.Run(t.Context())
	if !errors.Is(err, ErrMissingRequired) {
		t.Fatalf("expected ErrMissingRequired, got %v", err)
	}

	var cerr *ConfigError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected *ConfigError, got %T", err)
	}
	if cerr.Option != "index.html" {
		t.Errorf("expected missing index.html, got %q", cerr.Option)
	}

	if n := spy.calls(); n != 0 {
		t.Errorf("expected zero sends, got %d", n)
	}
}

func TestRunAsync_MissingRequiredSendsNothing(t *testing.T) {
	spy := newSpy()

	r, err := New(spy, mergeEndpoint, mergeFile("only.pdf"))
	if err != nil {
		t.Fatalf("failed to build route: %v", err)
	}

	res := r.RunAsync(t.Context())
	if _, err := res.Get(); !errors.Is(err, ErrMissingRequired) {
		t.Fatalf("expected ErrMissingRequired, got %v", err)
	}
	if n := spy.calls(); n != 0 {
		t.Errorf("expected zero sends, got %d", n)
	}
}

func mergeFile(name string) Option {
	return NewOption("files", FeatureFiles, func(r *Route) error {
		return r.AddFile(form.File{Name: name, Data: []byte("%PDF-1.4 " + name)})
	})
}

func TestApply_UnsupportedOption(t *testing.T) {
	_, err := New(newSpy(), mergeEndpoint, Split(SplitPages, "1-2"))
	if !errors.Is(err, ErrUnsupportedOption) {
		t.Fatalf("expected ErrUnsupportedOption, got %v", err)
	}
}

func TestApply_InvalidOptions(t *testing.T) {
	testCases := []struct {
		name string
		opt  Option
	}{
		{name: "unknown pdfa", opt: PDFA("PDF/A-4z")},
		{name: "empty output filename", opt: OutputFilename(" ")},
		{name: "empty trace", opt: Trace("")},
		{name: "bad webhook url", opt: Webhook("not a url", "http://example.com/err")},
		{name: "bad webhook method", opt: WebhookMethods("GET", "POST")},
		{name: "keyword with comma", opt: Metadata(DocumentInfo{Keywords: []string{"a,b"}})},
		{name: "pdf version too high", opt: Metadata(DocumentInfo{PDFVersion: 2.1})},
		{name: "unknown trapped", opt: Metadata(DocumentInfo{Trapped: "Maybe"})},
		{name: "failed option", opt: Failed("quality", Invalid("out of range"))},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(newSpy(), htmlEndpoint, tc.opt)
			if !errors.Is(err, ErrInvalidOption) {
				t.Fatalf("expected ErrInvalidOption, got %v", err)
			}

			var cerr *ConfigError
			if !errors.As(err, &cerr) {
				t.Fatalf("expected *ConfigError, got %T", err)
			}
		})
	}
}

func TestApply_ValidationReportsFields(t *testing.T) {
	_, err := New(newSpy(), htmlEndpoint, Metadata(DocumentInfo{PDFVersion: 0.5}))

	var fields FieldErrors
	if !errors.As(err, &fields) {
		t.Fatalf("expected FieldErrors, got %v", err)
	}
	if len(fields) != 1 || fields[0].Field != "PDFVersion" {
		t.Errorf("unexpected field errors: %+v", fields)
	}
}

func TestPDFA_LastWriteWins(t *testing.T) {
	r, err := New(newSpy(), htmlEndpoint, PDFA(PDFA1b), PDFA(PDFA3b))
	if err != nil {
		t.Fatalf("failed to build route: %v", err)
	}
	if v, _ := r.Field("pdfa"); v != string(PDFA3b) {
		t.Errorf("expected %s after two options, got %s", PDFA3b, v)
	}

	if err := r.Apply(PDFA(PDFA2b)); err != nil {
		t.Fatalf("failed to apply: %v", err)
	}
	if v, _ := r.Field("pdfa"); v != string(PDFA2b) {
		t.Errorf("expected %s after a later Apply, got %s", PDFA2b, v)
	}
}

func TestMetadata_Merges(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	r, err := New(newSpy(), htmlEndpoint,
		Metadata(DocumentInfo{Author: "Jane", Title: "Draft"}),
		Metadata(DocumentInfo{Title: "Final", CreationDate: &created, Keywords: []string{"q1", "report"}}),
		MetadataFields(map[string]any{"Custom": "x"}),
	)
	if err != nil {
		t.Fatalf("failed to build route: %v", err)
	}

	raw, _ := r.Field("metadata")
	var got map[string]any
	if err := json.Unmarshal([]byte(raw), &got); err != nil {
		t.Fatalf("failed to decode metadata: %v", err)
	}

	exp := map[string]any{
		"Author":       "Jane",
		"Title":        "Final",
		"CreationDate": "2024-03-01T12:00:00Z",
		"Keywords":     "q1, report",
		"Custom":       "x",
	}
	if diff := cmp.Diff(exp, got); diff != "" {
		t.Errorf("unexpected metadata (-want +got):\n%s", diff)
	}
}

func TestRun_ClosesRoute(t *testing.T) {
	spy := newSpy()

	r, err := New(spy, htmlEndpoint, index("<h1>hi</h1>"))
	if err != nil {
		t.Fatalf("failed to build route: %v", err)
	}

	res, err := r.Run(t.Context())
	if err != nil {
		t.Fatalf("failed to run: %v", err)
	}
	if _, ok := res.(*response.File); !ok {
		t.Fatalf("expected *response.File, got %T", res)
	}

	if _, err := r.Run(t.Context()); !errors.Is(err, ErrRouteClosed) {
		t.Errorf("expected ErrRouteClosed on second run, got %v", err)
	}
	if err := r.Apply(PDFUA(true)); !errors.Is(err, ErrRouteClosed) {
		t.Errorf("expected ErrRouteClosed on apply, got %v", err)
	}
	if n := spy.calls(); n != 1 {
		t.Errorf("expected one send, got %d", n)
	}
}

func TestRun_SyncAndAsyncSendIdenticalBytes(t *testing.T) {
	spy := newSpy()

	build := func() *Route {
		r, err := New(spy, htmlEndpoint,
			index("<h1>same</h1>"),
			PDFA(PDFA2b),
			PDFUA(true),
			Metadata(DocumentInfo{Author: "Jane"}),
			Trace("trace-1"),
		)
		if err != nil {
			t.Fatalf("failed to build route: %v", err)
		}
		return r
	}

	if _, err := build().Run(t.Context()); err != nil {
		t.Fatalf("failed to run: %v", err)
	}
	if _, err := build().RunAsync(t.Context()).Get(); err != nil {
		t.Fatalf("failed to run async: %v", err)
	}
	if _, err := build().RunWithRetry(t.Context(), DefaultRetry()); err != nil {
		t.Fatalf("failed to run with retry: %v", err)
	}
	if _, err := build().RunAsyncWithRetry(t.Context(), DefaultRetry()).Get(); err != nil {
		t.Fatalf("failed to run async with retry: %v", err)
	}

	if len(spy.reqs) != 4 {
		t.Fatalf("expected 4 requests, got %d", len(spy.reqs))
	}
	first := spy.reqs[0]
	for i, req := range spy.reqs[1:] {
		if !bytes.Equal(first.Body, req.Body) {
			t.Errorf("request %d body differs from the blocking run", i+1)
		}
		if first.ContentType != req.ContentType {
			t.Errorf("request %d content type differs: %q vs %q", i+1, first.ContentType, req.ContentType)
		}
		if diff := cmp.Diff(first.Header, req.Header); diff != "" {
			t.Errorf("request %d headers differ (-want +got):\n%s", i+1, diff)
		}
	}

	if spy.retries[0] != nil || spy.retries[1] != nil {
		t.Error("expected no retry policy for plain runs")
	}
	if spy.retries[2] == nil || spy.retries[3] == nil {
		t.Error("expected retry policy for retrying runs")
	}
}

func TestRunWithRetry_InvalidPolicy(t *testing.T) {
	spy := newSpy()

	r, err := New(spy, htmlEndpoint, index("<p/>"))
	if err != nil {
		t.Fatalf("failed to build route: %v", err)
	}

	_, err = r.RunWithRetry(t.Context(), Retry{MaxAttempts: 0, Scale: 2})
	if !errors.Is(err, ErrInvalidOption) {
		t.Fatalf("expected ErrInvalidOption, got %v", err)
	}
	if n := spy.calls(); n != 0 {
		t.Errorf("expected zero sends, got %d", n)
	}

	if _, err := r.RunAsyncWithRetry(t.Context(), Retry{MaxAttempts: 3, Scale: 0.5}).Get(); !errors.Is(err, ErrInvalidOption) {
		t.Fatalf("expected ErrInvalidOption from async run, got %v", err)
	}
	_ = spy.queue.Wait()

	if _, err := r.RunWithRetry(t.Context(), DefaultRetry()); err != nil {
		t.Fatalf("expected the route to survive an invalid policy, got %v", err)
	}
	if n := spy.calls(); n != 1 {
		t.Errorf("expected one send, got %d", n)
	}
}

func TestRequest_OrderedNames(t *testing.T) {
	r, err := New(newSpy(), mergeEndpoint, mergeFile("b.pdf"), mergeFile("a.pdf"))
	if err != nil {
		t.Fatalf("failed to build route: %v", err)
	}
	if err := r.Apply(mergeFile("c.pdf")); err != nil {
		t.Fatalf("failed to apply: %v", err)
	}

	req, err := r.Request()
	if err != nil {
		t.Fatalf("failed to encode: %v", err)
	}

	exp := []string{"1_b.pdf", "2_a.pdf", "3_c.pdf"}
	if diff := cmp.Diff(exp, req.Files); diff != "" {
		t.Errorf("unexpected order (-want +got):\n%s", diff)
	}
}

func TestWebhook_ExpectsDeferred(t *testing.T) {
	r, err := New(newSpy(), htmlEndpoint,
		index("<p/>"),
		Webhook("https://example.com/done", "https://example.com/failed"),
		WebhookMethods("put", "post"),
		WebhookExtraHeaders(map[string]string{"X-Token": "abc"}),
	)
	if err != nil {
		t.Fatalf("failed to build route: %v", err)
	}

	req, err := r.Request()
	if err != nil {
		t.Fatalf("failed to encode: %v", err)
	}

	if !req.Expect.Deferred {
		t.Error("expected webhook route to accept a deferred answer")
	}

	exp := map[string]string{
		HeaderWebhookURL:          "https://example.com/done",
		HeaderWebhookErrorURL:     "https://example.com/failed",
		HeaderWebhookMethod:       "PUT",
		HeaderWebhookErrorMethod:  "POST",
		HeaderWebhookExtraHeaders: `{"X-Token":"abc"}`,
	}
	for k, v := range exp {
		if got := req.Header.Get(k); got != v {
			t.Errorf("header %s: exp %q, got %q", k, v, got)
		}
	}
}

func TestRetry_Backoff(t *testing.T) {
	r := DefaultRetry()

	exp := []time.Duration{5 * time.Second, 10 * time.Second, 20 * time.Second, 40 * time.Second}
	for i, want := range exp {
		if got := r.Backoff(i + 1); got != want {
			t.Errorf("after %d failures: exp %v, got %v", i+1, want, got)
		}
	}

	r.MaxWait = 15 * time.Second
	if got := r.Backoff(4); got != r.MaxWait {
		t.Errorf("expected cap %v, got %v", r.MaxWait, got)
	}
}

func TestRetry_Validate(t *testing.T) {
	testCases := []struct {
		name  string
		retry Retry
		valid bool
	}{
		{name: "default", retry: DefaultRetry(), valid: true},
		{name: "single attempt", retry: Retry{MaxAttempts: 1, Scale: 1}, valid: true},
		{name: "zero attempts", retry: Retry{MaxAttempts: 0, Scale: 2}},
		{name: "shrinking scale", retry: Retry{MaxAttempts: 3, Scale: 0.5}},
		{name: "negative wait", retry: Retry{MaxAttempts: 3, Scale: 2, InitialWait: -time.Second}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.retry.Validate()
			if tc.valid && err != nil {
				t.Errorf("expected valid, got %v", err)
			}
			if !tc.valid && !errors.Is(err, ErrInvalidOption) {
				t.Errorf("expected ErrInvalidOption, got %v", err)
			}
		})
	}
}
