package main

import (
	"encoding/json"
	"net/http"

	"github.com/JaimeStill/stark/internal/api"
	"github.com/JaimeStill/stark/internal/config"
	"github.com/JaimeStill/stark/internal/infrastructure"
	"github.com/JaimeStill/stark/pkg/module"
)

type Modules struct {
	API *module.Module
}

func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	apiModule, err := api.NewModule(cfg, infra)
	if err != nil {
		return nil, err
	}

	return &Modules{API: apiModule}, nil
}

func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"status": status})
}

func buildRouter(infra *infrastructure.Infrastructure, cfg *config.Config) *module.Router {
	router := module.NewRouter()

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "ok")
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		code, status := http.StatusOK, "ready"
		if !infra.Lifecycle.Ready() {
			code, status = http.StatusServiceUnavailable, "not ready"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]any{
			"status":     status,
			"subsystems": infra.Lifecycle.Status(),
		})
	})

	if infra.Metrics != nil {
		router.HandleNative("GET "+cfg.Metrics.Path, infra.Metrics.Handler().ServeHTTP)
	}

	return router
}
