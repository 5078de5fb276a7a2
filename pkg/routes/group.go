package routes

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/JaimeStill/stark/pkg/openapi"
)

// Group organizes routes under a common prefix with shared tags.
type Group struct {
	Prefix   string
	Tags     []string
	Routes   []Route
	Children []Group
}

// Register adds all routes from the given groups to the mux.
func Register(mux *http.ServeMux, groups ...Group) {
	for _, group := range groups {
		walk("", nil, group, func(path string, _ []string, route Route) {
			mux.HandleFunc(route.Method+" "+path, route.Handler)
		})
	}
}

var pathParam = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Describe adds an OpenAPI operation for every route in groups to spec,
// prefixing paths with basePath. Path parameters found in the pattern are
// declared when the route does not list them itself.
func Describe(spec *openapi.Spec, basePath string, groups ...Group) {
	for _, group := range groups {
		walk(basePath, nil, group, func(path string, tags []string, route Route) {
			item, ok := spec.Paths[path]
			if !ok {
				item = openapi.PathItem{}
				spec.Paths[path] = item
			}
			item.Set(route.Method, operation(path, tags, route))
		})
	}
}

func walk(parent string, tags []string, group Group, visit func(string, []string, Route)) {
	prefix := parent + group.Prefix
	if len(group.Tags) > 0 {
		tags = group.Tags
	} else if tag := strings.Trim(group.Prefix, "/"); tag != "" && len(tags) == 0 {
		tags = []string{tag}
	}

	for _, route := range group.Routes {
		visit(prefix+route.Pattern, tags, route)
	}
	for _, child := range group.Children {
		walk(prefix, tags, child, visit)
	}
}

func operation(path string, tags []string, route Route) *openapi.Operation {
	op := &openapi.Operation{}
	if route.OpenAPI != nil {
		*op = *route.OpenAPI
	}
	if op.Summary == "" {
		op.Summary = route.Method + " " + path
	}
	if len(op.Tags) == 0 {
		op.Tags = tags
	}
	if op.Responses == nil {
		op.Responses = map[int]*openapi.Response{
			http.StatusOK: {Description: "Success"},
		}
	}

	declared := make(map[string]bool, len(op.Parameters))
	for _, p := range op.Parameters {
		if p.In == "path" {
			declared[p.Name] = true
		}
	}
	for _, m := range pathParam.FindAllStringSubmatch(path, -1) {
		if !declared[m[1]] {
			op.Parameters = append(op.Parameters, openapi.PathParam(m[1], ""))
			declared[m[1]] = true
		}
	}
	return op
}
