package controllers

import (
	"net/http"

	"github.com/FarhanRj389/storefront-widgets/api/responses"
	"github.com/FarhanRj389/storefront-widgets/pkg/config"
)

// Healthz reports process liveness.
func Healthz(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("X-Storefront-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}
