package backup

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/stark/pkg/handlers"
	"github.com/JaimeStill/stark/pkg/openapi"
	"github.com/JaimeStill/stark/pkg/routes"
)

// Handler serves bundle downloads and imports.
type Handler struct {
	sys     System
	logger  *slog.Logger
	maxSize int64
}

func NewHandler(sys System, logger *slog.Logger, maxSize int64) *Handler {
	return &Handler{
		sys:     sys,
		logger:  logger.With("handler", "backup"),
		maxSize: maxSize,
	}
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/backup",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.Export},
			{
				Method: "POST", Pattern: "", Handler: h.Import,
				OpenAPI: &openapi.Operation{
					Summary: "Import a backup bundle",
					Parameters: []*openapi.Parameter{
						openapi.QueryParam("mode", "string", "replace (default) or merge", false),
					},
					RequestBody: openapi.JSONBody(&openapi.Schema{Type: "object"}, true),
					Responses: map[int]*openapi.Response{
						200: {Description: "Import counts"},
						400: openapi.ResponseRef("BadRequest"),
						413: openapi.ResponseRef("PayloadTooLarge"),
					},
				},
			},
		},
	}
}

// Export responds with the bundle as an attachment.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	b, err := h.sys.Export(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	name := fmt.Sprintf("st-intyg-backup-%s.json", b.ExportedAt.Format("2006-01-02"))
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	handlers.RespondJSON(w, http.StatusOK, b)
}

// Import reads a bundle from the request body. The mode query parameter
// selects replace (default) or merge.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	mode, err := ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxSize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, fmt.Errorf("%w: exceeds %d bytes", ErrInvalidBundle, h.maxSize))
			return
		}
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	b, err := Parse(data, h.maxSize)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	res, err := h.sys.Import(r.Context(), b, mode)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, res)
}
