package response

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"slices"
	"strings"
)

// Raw is an HTTP response read fully into memory.
type Raw struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	// Attempts is how many times the request was sent.
	Attempts int
}

// Result is one of *File, *Archive, *Metadata or *Deferred.
type Result interface {
	isResult()
}

// File is a single converted document or screenshot.
type File struct {
	Name        string
	ContentType string
	Content     []byte
	Header      http.Header
}

// Archive is a zip of several output files.
type Archive struct {
	Name    string
	Content []byte
	Header  http.Header
}

// Metadata maps each input file name to its PDF metadata.
type Metadata struct {
	Entries map[string]map[string]any
	Header  http.Header
}

// Deferred is returned when Gotenberg accepted a webhook request and will
// deliver the result elsewhere.
type Deferred struct {
	StatusCode int
	Header     http.Header
}

func (*File) isResult()     {}
func (*Archive) isResult()  {}
func (*Metadata) isResult() {}
func (*Deferred) isResult() {}

// Expect describes what a route may legitimately answer with.
type Expect struct {
	Accepts []string
	// Deferred allows an empty 204 answer, which webhook requests get.
	Deferred bool
}

// Classify wraps raw according to its Content-Type. Media types outside
// exp.Accepts are reported as a *ClassificationError.
func Classify(raw *Raw, exp Expect) (Result, error) {
	if exp.Deferred && raw.StatusCode == http.StatusNoContent {
		return &Deferred{StatusCode: raw.StatusCode, Header: raw.Header}, nil
	}

	header := raw.Header.Get("Content-Type")
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(header))
	}

	if !slices.Contains(exp.Accepts, mediaType) {
		return nil, &ClassificationError{
			StatusCode:  raw.StatusCode,
			ContentType: header,
			Accepts:     exp.Accepts,
			Err:         ErrUnexpectedContentType,
		}
	}

	name := filename(raw.Header)

	switch mediaType {
	case MediaPDF, MediaPNG, MediaJPEG, MediaWebP:
		return &File{Name: name, ContentType: mediaType, Content: raw.Body, Header: raw.Header}, nil

	case MediaZip:
		return &Archive{Name: name, Content: raw.Body, Header: raw.Header}, nil

	case MediaJSON:
		entries := make(map[string]map[string]any)
		if err := json.Unmarshal(raw.Body, &entries); err != nil {
			return nil, fmt.Errorf("decoding metadata: %w", err)
		}
		return &Metadata{Entries: entries, Header: raw.Header}, nil
	}

	return nil, &ClassificationError{
		StatusCode:  raw.StatusCode,
		ContentType: header,
		Accepts:     exp.Accepts,
		Err:         ErrUnexpectedContentType,
	}
}

// filename reads the name Gotenberg suggested in Content-Disposition.
func filename(h http.Header) string {
	cd := h.Get("Content-Disposition")
	if cd == "" {
		return ""
	}

	_, params, err := mime.ParseMediaType(cd)
	if err != nil {
		return ""
	}

	return params["filename"]
}
