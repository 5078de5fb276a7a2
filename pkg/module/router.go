package module

import (
	"net/http"
	"strings"

	"github.com/JaimeStill/stark/pkg/middleware"
)

// Router dispatches on the first path segment to mounted modules and falls
// back to a native mux for everything else.
type Router struct {
	modules map[string]*Module
	native  *http.ServeMux
	chain   middleware.Chain
}

// NewRouter creates an empty Router.
func NewRouter() *Router {
	return &Router{
		modules: make(map[string]*Module),
		native:  http.NewServeMux(),
	}
}

// HandleNative registers a handler on the fallback mux.
func (r *Router) HandleNative(pattern string, handler http.HandlerFunc) {
	r.native.HandleFunc(pattern, handler)
}

// Mount routes every request under m's prefix to m.
func (r *Router) Mount(m *Module) {
	r.modules[m.prefix] = m
}

// Use adds middleware that wraps modules and native routes alike.
func (r *Router) Use(mw func(http.Handler) http.Handler) {
	r.chain.Use(mw)
}

// Handler returns the router wrapped with its middleware chain.
func (r *Router) Handler() http.Handler {
	return r.chain.Then(http.HandlerFunc(r.dispatch))
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.Handler().ServeHTTP(w, req)
}

func (r *Router) dispatch(w http.ResponseWriter, req *http.Request) {
	if p := req.URL.Path; len(p) > 1 && strings.HasSuffix(p, "/") {
		req.URL.Path = strings.TrimSuffix(p, "/")
	}

	segment, _, _ := strings.Cut(strings.TrimPrefix(req.URL.Path, "/"), "/")
	if m, ok := r.modules["/"+segment]; ok {
		m.Serve(w, req)
		return
	}

	r.native.ServeHTTP(w, req)
}
