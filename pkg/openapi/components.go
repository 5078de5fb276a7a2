package openapi

import (
	"maps"
	"net/http"
)

// Components holds the reusable schemas and responses.
type Components struct {
	Schemas   map[string]*Schema   `json:"schemas,omitempty"`
	Responses map[string]*Response `json:"responses,omitempty"`
}

var errorSchema = &Schema{
	Type:       "object",
	Properties: map[string]*Schema{"error": {Type: "string"}},
	Required:   []string{"error"},
}

// errorResponses are keyed by component name, each answering with the JSON
// error envelope written by handlers.RespondError.
var errorResponses = map[string]int{
	"BadRequest":      http.StatusBadRequest,
	"Forbidden":       http.StatusForbidden,
	"NotFound":        http.StatusNotFound,
	"Conflict":        http.StatusConflict,
	"PayloadTooLarge": http.StatusRequestEntityTooLarge,
	"TooManyRequests": http.StatusTooManyRequests,
	"BadGateway":      http.StatusBadGateway,
}

// NewComponents registers the error envelope, the page request and the
// paged result wrapper.
func NewComponents() *Components {
	c := &Components{
		Schemas: map[string]*Schema{
			"Error": errorSchema,
			"PageRequest": {
				Type: "object",
				Properties: map[string]*Schema{
					"page":     {Type: "integer", Description: "1-based page number", Default: 1},
					"pageSize": {Type: "integer", Description: "results per page"},
					"search":   {Type: "string", Description: "case-insensitive text search"},
					"sort":     {Type: "string", Description: "comma-separated fields, - prefix for descending", Example: "-startDate,clinic"},
				},
			},
			"PageResult": {
				Type: "object",
				Properties: map[string]*Schema{
					"data":       {Type: "array", Items: &Schema{Type: "object"}},
					"total":      {Type: "integer"},
					"page":       {Type: "integer"},
					"pageSize":   {Type: "integer"},
					"totalPages": {Type: "integer"},
				},
			},
		},
		Responses: make(map[string]*Response, len(errorResponses)),
	}

	for name, code := range errorResponses {
		c.Responses[name] = JSONResponse(http.StatusText(code), SchemaRef("Error"))
	}
	return c
}

// AddSchemas merges schemas into the component schemas.
func (c *Components) AddSchemas(schemas map[string]*Schema) {
	maps.Copy(c.Schemas, schemas)
}

// AddResponses merges responses into the component responses.
func (c *Components) AddResponses(responses map[string]*Response) {
	maps.Copy(c.Responses, responses)
}
