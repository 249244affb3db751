package response

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
)

// Entries lists the file names inside the archive.
func (a *Archive) Entries() ([]string, error) {
	zr, err := a.reader()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		names = append(names, f.Name)
	}

	return names, nil
}

// ExtractTo unpacks every entry into dir, which must be an existing
// directory. It returns the paths written, in archive order.
func (a *Archive) ExtractTo(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, &Error{Err: ErrCannotExtractHere, Detail: err.Error()}
	}
	if !info.IsDir() {
		return nil, &Error{Err: ErrCannotExtractHere, Detail: fmt.Sprintf("%s is not a directory", dir)}
	}

	zr, err := a.reader()
	if err != nil {
		return nil, err
	}

	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", dir, err)
	}

	var written []string
	for _, f := range zr.File {
		dest, err := entryPath(root, f.Name)
		if err != nil {
			return written, err
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(dest, 0o755); err != nil {
				return written, fmt.Errorf("creating %s: %w", dest, err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return written, fmt.Errorf("creating %s: %w", filepath.Dir(dest), err)
		}

		data, err := readEntry(f)
		if err != nil {
			return written, err
		}

		if err := writeAtomic(dest, data); err != nil {
			return written, fmt.Errorf("extracting %s: %w", f.Name, err)
		}
		written = append(written, dest)
	}

	return written, nil
}

func (a *Archive) reader() (*zip.Reader, error) {
	zr, err := zip.NewReader(bytes.NewReader(a.Content), int64(len(a.Content)))
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}

	return zr, nil
}

// entryPath joins name onto root, rejecting names that would land outside it.
func entryPath(root, name string) (string, error) {
	dest := filepath.Join(root, filepath.FromSlash(name))
	if dest != root && !strings.HasPrefix(dest, root+string(os.PathSeparator)) {
		return "", &Error{Err: ErrUnsafeEntry, Detail: name}
	}

	return dest, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading entry %s: %w", f.Name, err)
	}

	return data, nil
}
