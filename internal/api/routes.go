package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/stark/internal/config"
	"github.com/JaimeStill/stark/pkg/openapi"
	"github.com/JaimeStill/stark/pkg/routes"
)

func groups(domain *Domain, runtime *Runtime) []routes.Group {
	return []routes.Group{
		domain.Profile.Handler().Routes(),
		domain.Progress.Handler().Routes(),
		domain.Placements.Handler().Routes(),
		domain.Courses.Handler().Routes(),
		domain.Achievements.Handler().Routes(),
		domain.Scans.Handler(runtime.Config.API.MaxUploadSizeBytes()).Routes(),
		domain.Intake.Handler(runtime.RateLimiter).Routes(),
		domain.Backup.Handler().Routes(),
	}
}

func registerRoutes(mux *http.ServeMux, domain *Domain, runtime *Runtime) error {
	all := groups(domain, runtime)
	routes.Register(mux, all...)

	spec, err := buildSpec(runtime.Config, all)
	if err != nil {
		return err
	}
	mux.HandleFunc("GET /openapi.json", openapi.ServeSpec(spec))
	return nil
}

func buildSpec(cfg *config.Config, all []routes.Group) ([]byte, error) {
	spec := openapi.NewSpec(cfg.API.OpenAPI.Title, cfg.Version)
	spec.SetDescription(cfg.API.OpenAPI.Description)
	spec.AddServer(cfg.API.BasePath)

	routes.Describe(spec, "", all...)

	data, err := openapi.MarshalJSON(spec)
	if err != nil {
		return nil, fmt.Errorf("marshal openapi: %w", err)
	}
	return data, nil
}
