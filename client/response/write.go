package response

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"
)

// WriteOption customizes how results are written to disk.
type WriteOption func(*writeOpts) error

type writeOpts struct {
	checksum     *checksumVerifier
	skipExisting bool
}

// WithChecksum verifies the written bytes against the hex-encoded expected
// digest of h (e.g. sha256.New()). A mismatch leaves no file behind.
func WithChecksum(h hash.Hash, expected string) WriteOption {
	return func(opts *writeOpts) error {
		if h == nil {
			return errors.New("hash must not be nil")
		}
		if expected == "" {
			return errors.New("expected checksum must not be empty")
		}

		opts.checksum = &checksumVerifier{hash: h, expected: expected}
		return nil
	}
}

// WithSkipExisting leaves an existing destination untouched.
func WithSkipExisting() WriteOption {
	return func(opts *writeOpts) error {
		opts.skipExisting = true
		return nil
	}
}

// WriteFile stores the file content at path.
func (f *File) WriteFile(path string, optFns ...WriteOption) error {
	return writeAtomic(path, f.Content, optFns...)
}

// WriteFile stores the raw zip at path.
func (a *Archive) WriteFile(path string, optFns ...WriteOption) error {
	return writeAtomic(path, a.Content, optFns...)
}

// writeAtomic writes data to a temp file next to destPath and renames it
// into place on success. On any error the temp file is removed.
func writeAtomic(destPath string, data []byte, optFns ...WriteOption) error {
	if destPath == "" {
		return errors.New("destination path must not be empty")
	}

	var opts writeOpts
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return fmt.Errorf("applying option: %w", err)
		}
	}

	if opts.skipExisting {
		if _, err := os.Stat(destPath); err == nil {
			return nil
		}
	}

	file, err := os.CreateTemp(filepath.Dir(destPath), ".gotenberg-out-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	var successful bool
	defer func() {
		_ = file.Close()
		if !successful {
			_ = os.Remove(file.Name())
		}
	}()

	var writer io.Writer = file
	if opts.checksum != nil {
		writer = io.MultiWriter(writer, opts.checksum)
	}

	if _, err := io.Copy(writer, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}

	if err := opts.checksum.Verify(); err != nil {
		return err
	}

	if err := file.Sync(); err != nil {
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(file.Name(), destPath); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}

	successful = true

	return nil
}

// checksumVerifier hashes everything written through it.
type checksumVerifier struct {
	hash     hash.Hash
	expected string
}

func (v *checksumVerifier) Write(p []byte) (int, error) {
	return v.hash.Write(p)
}

func (v *checksumVerifier) Verify() error {
	if v == nil {
		return nil
	}

	actual := hex.EncodeToString(v.hash.Sum(nil))
	if actual != v.expected {
		return &Error{
			Err:    ErrChecksumMismatch,
			Detail: fmt.Sprintf("expected %s, got %s", v.expected, actual),
		}
	}

	return nil
}
