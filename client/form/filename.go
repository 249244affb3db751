package form

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FallbackName is used when nothing of a file name survives sanitizing.
const FallbackName = "clean-filename-copy"

// ErrNameRequired is returned when an in-memory file has no name.
var ErrNameRequired = errors.New("file name is required")

// Sanitize returns an ASCII-only version of name. Accented letters are
// reduced to their base letter; everything else outside printable ASCII is
// dropped. The extension is kept when it survives.
func Sanitize(name string) string {
	ext := asciiOnly(fold(filepath.Ext(name)))
	stem := asciiOnly(fold(strings.TrimSuffix(name, filepath.Ext(name))))
	stem = strings.Trim(stem, " .")

	if stem == "" {
		stem = FallbackName
	}
	if ext == "." {
		ext = ""
	}

	return stem + ext
}

// fold decomposes s and strips the combining marks.
func fold(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}

	return out
}

func asciiOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r < 0x20 || r >= utf8.RuneSelf {
			continue
		}
		switch r {
		case '/', '\\', '"', 0x7f:
			continue
		}
		b.WriteRune(r)
	}

	return b.String()
}

func isASCII(s string) bool {
	for i := range len(s) {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}

	return true
}

// uniqueName appends -N before the extension until name is not in used.
func uniqueName(name string, used map[string]struct{}) string {
	if _, ok := used[name]; !ok {
		return name
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s-%d%s", stem, n, ext)
		if _, ok := used[candidate]; !ok {
			return candidate
		}
	}
}

func baseName(path string) string {
	return filepath.Base(path)
}
