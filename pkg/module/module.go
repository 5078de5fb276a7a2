// Package module mounts self-contained HTTP handlers under single-segment
// path prefixes, each with its own middleware chain.
package module

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/JaimeStill/stark/pkg/middleware"
)

// Module serves an inner handler beneath a prefix such as "/api". The inner
// handler sees paths with the prefix removed.
type Module struct {
	prefix string
	inner  http.Handler
	chain  middleware.Chain
}

// New creates a Module. It panics when prefix is not a single segment with a
// leading slash, since that is a wiring error.
func New(prefix string, inner http.Handler) *Module {
	if err := validatePrefix(prefix); err != nil {
		panic(err)
	}
	return &Module{prefix: prefix, inner: inner}
}

// Prefix returns the module's path prefix.
func (m *Module) Prefix() string {
	return m.prefix
}

// Use appends middleware to the module chain.
func (m *Module) Use(mw func(http.Handler) http.Handler) {
	m.chain.Use(mw)
}

// Handler returns the inner handler wrapped with the module middleware.
func (m *Module) Handler() http.Handler {
	return m.chain.Then(m.inner)
}

// Serve strips the prefix and dispatches to the wrapped inner handler.
func (m *Module) Serve(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, m.prefix)
	if rest == "" {
		rest = "/"
	}

	inner := r.Clone(r.Context())
	inner.URL.Path = rest
	inner.URL.RawPath = ""

	m.Handler().ServeHTTP(w, inner)
}

func validatePrefix(prefix string) error {
	switch {
	case prefix == "":
		return fmt.Errorf("module prefix cannot be empty")
	case prefix[0] != '/':
		return fmt.Errorf("module prefix must start with /: %s", prefix)
	case strings.Contains(prefix[1:], "/") || len(prefix) == 1:
		return fmt.Errorf("module prefix must be a single path segment: %s", prefix)
	}
	return nil
}
