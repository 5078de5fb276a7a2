package progress

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/stark/pkg/handlers"
	"github.com/JaimeStill/stark/pkg/routes"
)

type Handler struct {
	sys    System
	logger *slog.Logger
}

func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "progress"),
	}
}

// Routes serves both the catalog and the overview derived from it.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Tags: []string{"progress"},
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/progress", Handler: h.Overview},
			{Method: "GET", Pattern: "/catalog", Handler: h.Catalog},
		},
	}
}

func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	o, err := h.sys.Overview(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, o)
}

// Catalog returns the active catalog, or the one named by the version and
// specialty query parameters.
func (h *Handler) Catalog(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cat, err := h.sys.Catalog(r.Context(), q.Get("version"), q.Get("specialty"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, cat)
}
