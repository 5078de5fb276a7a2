package intake

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/stark/pkg/handlers"
	"github.com/JaimeStill/stark/pkg/middleware"
	"github.com/JaimeStill/stark/pkg/openapi"
	"github.com/JaimeStill/stark/pkg/routes"
)

// Handler exposes the intake pipeline over HTTP.
type Handler struct {
	sys     System
	logger  *slog.Logger
	limiter *middleware.RateLimiter
}

// NewHandler creates a Handler. A nil limiter leaves recognition
// unthrottled.
func NewHandler(sys System, logger *slog.Logger, limiter *middleware.RateLimiter) *Handler {
	return &Handler{
		sys:     sys,
		logger:  logger.With("handler", "intake"),
		limiter: limiter,
	}
}

// RecognizeRequest selects the OCR language. Empty uses the configured
// default.
type RecognizeRequest struct {
	Language string `json:"language,omitempty"`
}

func (h *Handler) Routes() routes.Group {
	recognize := h.Recognize
	if h.limiter != nil {
		recognize = h.limiter.HandlerFunc(recognize)
	}

	return routes.Group{
		Prefix: "/intake",
		Routes: []routes.Route{
			{
				Method: "POST", Pattern: "/scans/{id}/recognize", Handler: recognize,
				OpenAPI: &openapi.Operation{
					Summary:     "Recognize a stored scan",
					Description: "Runs OCR on the scan, classifies the certificate, and returns a prefilled draft.",
					Parameters:  []*openapi.Parameter{openapi.QueryParam("language", "string", "OCR language (sv, en, swe, eng)", false)},
					Responses: map[int]*openapi.Response{
						200: {Description: "Draft"},
						403: openapi.ResponseRef("Forbidden"),
						404: openapi.ResponseRef("NotFound"),
						429: openapi.ResponseRef("TooManyRequests"),
						502: openapi.ResponseRef("BadGateway"),
					},
				},
			},
			{
				Method: "POST", Pattern: "/analyze", Handler: h.Analyze,
				OpenAPI: &openapi.Operation{Summary: "Classify and extract fields from OCR text"},
			},
			{
				Method: "POST", Pattern: "/courses", Handler: h.ConfirmCourse,
				OpenAPI: &openapi.Operation{Summary: "Create a course and its achievements from a draft"},
			},
			{
				Method: "POST", Pattern: "/placements", Handler: h.ConfirmPlacement,
				OpenAPI: &openapi.Operation{Summary: "Create a placement and its achievements from a draft"},
			},
		},
	}
}

// Recognize accepts an optional JSON body or a language query parameter.
func (h *Handler) Recognize(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalid)
		return
	}

	req := RecognizeRequest{Language: r.URL.Query().Get("language")}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
			return
		}
	}

	d, err := h.sys.Recognize(r.Context(), id, req.Language)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, d)
}

func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var cmd AnalyzeCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	d, err := h.sys.Analyze(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, d)
}

func (h *Handler) ConfirmCourse(w http.ResponseWriter, r *http.Request) {
	var cmd ConfirmCourseCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	c, err := h.sys.ConfirmCourse(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, c)
}

func (h *Handler) ConfirmPlacement(w http.ResponseWriter, r *http.Request) {
	var cmd ConfirmPlacementCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	c, err := h.sys.ConfirmPlacement(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, c)
}
