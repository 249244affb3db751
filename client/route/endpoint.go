package route

import (
	"fmt"
	"slices"
	"strings"
)

// Endpoint describes one Gotenberg route.
type Endpoint struct {
	// Name identifies the route in errors, logs and spans.
	Name string
	Path string
	// Features lists which tagged options apply.
	Features Feature
	// Accepts lists the media types the route answers with.
	Accepts []string
	// Ordered makes file order part of the request by prefixing names with
	// their position.
	Ordered bool
	// Checks run when the route is executed, before anything is sent.
	Checks []Check
}

// Check verifies a route is complete enough to send.
type Check func(*Route) error

func missing(r *Route, what string, format string, args ...any) error {
	return &ConfigError{
		Route:  r.endpoint.Name,
		Option: what,
		Err:    fmt.Errorf("%w: %s", ErrMissingRequired, fmt.Sprintf(format, args...)),
	}
}

// RequireField fails when the scalar field was never set.
func RequireField(name string) Check {
	return func(r *Route) error {
		if _, ok := r.form.Get(name); !ok {
			return missing(r, name, "field %q must be set", name)
		}
		return nil
	}
}

// RequireAnyField fails when none of the fields was set.
func RequireAnyField(names ...string) Check {
	return func(r *Route) error {
		for _, name := range names {
			if _, ok := r.form.Get(name); ok {
				return nil
			}
		}
		return missing(r, strings.Join(names, "|"), "one of %q must be set", names)
	}
}

// RequireFile fails when no file with the exact name was added.
func RequireFile(name string) Check {
	return func(r *Route) error {
		if !r.form.Has(name) {
			return missing(r, name, "file %q must be provided", name)
		}
		return nil
	}
}

// RequireFiles fails when fewer than n files were added.
func RequireFiles(n int) Check {
	return func(r *Route) error {
		if got := r.form.Len(); got < n {
			return missing(r, "files", "at least %d file(s) required, got %d", n, got)
		}
		return nil
	}
}

// RequireFileSuffix fails when no added file name ends with one of suffixes.
func RequireFileSuffix(suffixes ...string) Check {
	return func(r *Route) error {
		for _, f := range r.form.Files() {
			name := strings.ToLower(f.Name)
			if slices.ContainsFunc(suffixes, func(s string) bool { return strings.HasSuffix(name, s) }) {
				return nil
			}
		}
		return missing(r, "files", "at least one %s file required", strings.Join(suffixes, "/"))
	}
}
