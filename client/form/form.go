// Package form assembles the multipart/form-data bodies sent to Gotenberg.
//
// A [Form] accumulates scalar fields and file attachments in any order.
// [Form.Encode] turns them into a deterministic body: fields sorted by name,
// then files in the order they were added. Identical inputs always produce
// byte-identical output, boundary included.
package form

import (
	"bytes"
	"fmt"
	"log/slog"
	"maps"
	"mime/multipart"
	"net/textproto"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/gabriel-vasile/mimetype"
)

// boundaryPrefix is prepended to the content digest to build the boundary.
const boundaryPrefix = "gotenberg-"

// File is a single attachment. Exactly one of Path or Data is used:
// Data wins when it is non-nil.
type File struct {
	// Name is the file name Gotenberg sees. It defaults to the base of Path.
	Name string
	// Path is read from disk at encode time.
	Path string
	// Data holds in-memory content.
	Data []byte
	// ContentType overrides content sniffing when set.
	ContentType string

	seq int
}

// Body is an encoded multipart payload.
type Body struct {
	ContentType string
	Data        []byte
	// Files lists the transmitted file names in wire order.
	Files []string
}

// Form holds the fields and files of one request. It is not safe for
// concurrent use.
type Form struct {
	fields  map[string]string
	files   []File
	next    int
	ordered bool
	scratch *Scratch
	logger  *slog.Logger
}

// New returns an empty Form. When ordered is true every file name is
// prefixed with its zero-padded position at encode time and files with the
// same name are all kept; otherwise a later file replaces an earlier one
// with the same name.
func New(ordered bool, logger *slog.Logger) *Form {
	if logger == nil {
		logger = slog.Default()
	}

	return &Form{
		fields:  make(map[string]string),
		ordered: ordered,
		scratch: &Scratch{},
		logger:  logger,
	}
}

// Set stores a scalar field, replacing any previous value.
func (f *Form) Set(name, value string) {
	f.fields[name] = value
}

// Get returns the value of a scalar field.
func (f *Form) Get(name string) (string, bool) {
	v, ok := f.fields[name]
	return v, ok
}

// Delete removes a scalar field.
func (f *Form) Delete(name string) {
	delete(f.fields, name)
}

// Fields returns a copy of the scalar fields.
func (f *Form) Fields() map[string]string {
	return maps.Clone(f.fields)
}

// Add appends a file attachment.
func (f *Form) Add(file File) error {
	if file.Data == nil && file.Path == "" {
		return fmt.Errorf("file %q: path or data is required", file.Name)
	}
	if file.Name == "" {
		if file.Path == "" {
			return fmt.Errorf("in-memory file: %w", ErrNameRequired)
		}
		file.Name = baseName(file.Path)
	}

	f.next++
	file.seq = f.next

	if !f.ordered {
		if i := slices.IndexFunc(f.files, func(e File) bool { return e.Name == file.Name }); i >= 0 {
			f.logger.Warn("file already provided, replacing", "name", file.Name)
			f.files = slices.Delete(f.files, i, i+1)
		}
	}

	f.files = append(f.files, file)

	return nil
}

// Has reports whether a file with the given name was added.
func (f *Form) Has(name string) bool {
	return slices.ContainsFunc(f.files, func(e File) bool { return e.Name == name })
}

// Files returns the attachments in the order they were added.
func (f *Form) Files() []File {
	return slices.Clone(f.files)
}

// Len returns the number of attachments.
func (f *Form) Len() int {
	return len(f.files)
}

// Close removes any temporary copies made while encoding.
// It is safe to call more than once.
func (f *Form) Close() error {
	return f.scratch.Remove()
}

type part struct {
	name        string
	contentType string
	data        []byte
}

// Encode builds the multipart body.
func (f *Form) Encode() (*Body, error) {
	parts, err := f.parts()
	if err != nil {
		return nil, err
	}

	keys := slices.Sorted(maps.Keys(f.fields))

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.SetBoundary(boundary(keys, f.fields, parts)); err != nil {
		return nil, fmt.Errorf("setting boundary: %w", err)
	}

	for _, k := range keys {
		if err := w.WriteField(k, f.fields[k]); err != nil {
			return nil, fmt.Errorf("writing field %q: %w", k, err)
		}
	}

	names := make([]string, 0, len(parts))
	for _, p := range parts {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, quoteEscaper.Replace(p.name), quoteEscaper.Replace(p.name)))
		h.Set("Content-Type", p.contentType)

		pw, err := w.CreatePart(h)
		if err != nil {
			return nil, fmt.Errorf("creating part %q: %w", p.name, err)
		}
		if _, err := pw.Write(p.data); err != nil {
			return nil, fmt.Errorf("writing part %q: %w", p.name, err)
		}

		names = append(names, p.name)
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart writer: %w", err)
	}

	body := Body{
		ContentType: w.FormDataContentType(),
		Data:        buf.Bytes(),
		Files:       names,
	}

	return &body, nil
}

// parts resolves every file into its wire name, content type and bytes.
func (f *Form) parts() ([]part, error) {
	files := slices.SortedFunc(slices.Values(f.files), func(a, b File) int { return a.seq - b.seq })
	width := len(strconv.Itoa(len(files)))
	used := make(map[string]struct{}, len(files))
	for _, file := range files {
		if isASCII(file.Name) {
			used[file.Name] = struct{}{}
		}
	}

	parts := make([]part, 0, len(files))
	for i, file := range files {
		name := file.Name
		renamed := !isASCII(name)
		if renamed {
			name = uniqueName(Sanitize(name), used)
			used[name] = struct{}{}
			f.logger.Warn("sanitized non-ascii file name", "original", file.Name, "sent", name)
		}

		data := file.Data
		if data == nil {
			src := file.Path
			if renamed {
				cpy, err := f.scratch.Copy(file.Path, name)
				if err != nil {
					return nil, err
				}
				src = cpy
			}

			b, err := os.ReadFile(src)
			if err != nil {
				return nil, fmt.Errorf("reading file %q: %w", file.Name, err)
			}
			data = b
		}

		if f.ordered {
			name = fmt.Sprintf("%0*d_%s", width, i+1, name)
		}

		contentType := file.ContentType
		if contentType == "" {
			contentType = mimetype.Detect(data).String()
		}

		parts = append(parts, part{name: name, contentType: contentType, data: data})
	}

	return parts, nil
}

// boundary derives the multipart boundary from the encoded content so the
// same inputs always yield the same bytes.
func boundary(keys []string, fields map[string]string, parts []part) string {
	d := xxhash.New()
	for _, k := range keys {
		_, _ = d.WriteString(k)
		_, _ = d.WriteString("\x00")
		_, _ = d.WriteString(fields[k])
		_, _ = d.WriteString("\x00")
	}
	for _, p := range parts {
		_, _ = d.WriteString(p.name)
		_, _ = d.WriteString("\x00")
		_, _ = d.WriteString(p.contentType)
		_, _ = d.WriteString("\x00")
		_, _ = d.Write(p.data)
	}

	return fmt.Sprintf("%s%016x", boundaryPrefix, d.Sum64())
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")
