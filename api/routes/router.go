package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/FarhanRj389/storefront-widgets/api/controllers"
	"github.com/FarhanRj389/storefront-widgets/api/middleware"
	"github.com/FarhanRj389/storefront-widgets/internal/session"
	"github.com/FarhanRj389/storefront-widgets/pkg/config"
	"github.com/FarhanRj389/storefront-widgets/pkg/logger"
)

// NewRouter assembles the widget engine's HTTP surface. Every widget route
// passes through the session middleware so handlers can resolve their widget
// set from the cookie-carried id.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	registry *session.Registry,
	promRegistry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Get("/healthz", controllers.Healthz(cfg))
	if promRegistry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/widgets", func(r chi.Router) {
		r.Use(middleware.Session(cfg.Widget.SessionTTL, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartDrawer(registry, cfg.Widget.OptimisticTTL, logg))
			r.Post("/refresh", controllers.CartRefresh(registry, logg))
			r.Post("/update", controllers.CartUpdate(registry, logg))
			r.Post("/add", controllers.CartAdd(registry, logg))
			r.Post("/items/{id}/{action}", controllers.CartLineAction(registry, logg))
		})

		r.Route("/drawer", func(r chi.Router) {
			r.Get("/", controllers.DrawerState(registry, logg))
			r.Post("/open", controllers.DrawerOpen(registry, logg))
			r.Post("/close", controllers.DrawerClose(registry, logg))
			r.Post("/toggle", controllers.DrawerToggle(registry, logg))
			r.Post("/key", controllers.DrawerKey(registry, logg))
		})

		r.Route("/product", func(r chi.Router) {
			r.Get("/", controllers.ProductState(registry, logg))
			r.Post("/select", controllers.ProductSelect(registry, logg))
		})
	})

	return r
}
