package form

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Scratch is a lazily created temporary directory owned by one request.
// The zero value is ready to use.
type Scratch struct {
	dir string
}

// Dir returns the scratch directory, creating it on first use.
func (s *Scratch) Dir() (string, error) {
	if s.dir != "" {
		return s.dir, nil
	}

	dir, err := os.MkdirTemp("", "gotenberg-*")
	if err != nil {
		return "", fmt.Errorf("creating scratch dir: %w", err)
	}
	s.dir = dir

	return dir, nil
}

// Copy copies src into the scratch directory as name and returns the new path.
func (s *Scratch) Copy(src, name string) (path string, err error) {
	dir, err := s.Dir()
	if err != nil {
		return "", err
	}

	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("opening %q: %w", src, err)
	}
	defer in.Close()

	path = filepath.Join(dir, name)
	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return "", fmt.Errorf("creating copy of %q: %w", src, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing copy of %q: %w", src, cerr)
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return "", fmt.Errorf("copying %q: %w", src, err)
	}

	return path, nil
}

// Remove deletes the directory and everything in it.
func (s *Scratch) Remove() error {
	if s.dir == "" {
		return nil
	}

	err := os.RemoveAll(s.dir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing scratch dir: %w", err)
	}
	s.dir = ""

	return nil
}
