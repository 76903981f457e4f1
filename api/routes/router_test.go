package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/FarhanRj389/storefront-widgets/api/middleware"
	"github.com/FarhanRj389/storefront-widgets/internal/cart"
	"github.com/FarhanRj389/storefront-widgets/internal/cartview"
	"github.com/FarhanRj389/storefront-widgets/internal/catalog"
	"github.com/FarhanRj389/storefront-widgets/internal/drawer"
	"github.com/FarhanRj389/storefront-widgets/internal/selector"
	"github.com/FarhanRj389/storefront-widgets/internal/session"
	"github.com/FarhanRj389/storefront-widgets/pkg/config"
	"github.com/FarhanRj389/storefront-widgets/pkg/logger"
	"github.com/FarhanRj389/storefront-widgets/pkg/platform"
)

type stubPlatform struct{}

func (stubPlatform) FetchCart(context.Context) (*platform.Cart, error) {
	return &platform.Cart{}, nil
}

func (stubPlatform) UpdateCart(context.Context, map[string]int) (*platform.Cart, error) {
	return &platform.Cart{}, nil
}

func (stubPlatform) AddItem(_ context.Context, req platform.AddRequest) (*platform.LineItem, error) {
	return &platform.LineItem{ID: req.VariantID, VariantID: req.VariantID, Quantity: req.Quantity}, nil
}

func testRouter(t *testing.T, promRegistry *prometheus.Registry) http.Handler {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	cfg := &config.Config{
		App: config.AppConfig{Env: "dev", Port: "8080"},
		Widget: config.WidgetConfig{
			SessionTTL:    time.Minute,
			OptimisticTTL: 30 * time.Second,
		},
	}

	api := stubPlatform{}
	cat := catalog.New(context.Background(), nil, logg)
	factory := func(sessionID string) (*session.Widgets, error) {
		mirror, err := cart.NewMirror(cart.Params{Client: api, Logger: logg})
		if err != nil {
			return nil, err
		}
		shell := drawer.NewShell()
		sel, err := selector.NewSelector(selector.Params{
			Catalog: cat,
			Client:  api,
			Cart:    mirror,
			Drawer:  shell,
			Logger:  logg,
		})
		if err != nil {
			return nil, err
		}
		return session.NewWidgets(mirror, cartview.NewView(nil), shell, sel, logg), nil
	}

	registry, err := session.NewRegistry(factory, time.Minute, logg)
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	return NewRouter(cfg, logg, registry, promRegistry)
}

func TestRouterHealthz(t *testing.T) {
	router := testRouter(t, nil)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if env := resp.Header().Get("X-Storefront-Env"); env != "dev" {
		t.Fatalf("unexpected env header: %q", env)
	}
}

func TestRouterCartDrawerMintsSessionCookie(t *testing.T) {
	router := testRouter(t, nil)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/widgets/cart", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("expected html fragment, got %s", ct)
	}

	var found bool
	for _, c := range resp.Result().Cookies() {
		if c.Name == middleware.SessionCookie && c.Value != "" {
			found = true
		}
	}
	if !found {
		t.Fatal("first contact must mint a session cookie")
	}
}

func TestRouterReusesCookieSession(t *testing.T) {
	router := testRouter(t, nil)

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/widgets/drawer/open", nil))
	cookies := first.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected a session cookie")
	}

	req := httptest.NewRequest(http.MethodGet, "/widgets/drawer", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	second := httptest.NewRecorder()
	router.ServeHTTP(second, req)

	if second.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", second.Code)
	}
	if !strings.Contains(second.Body.String(), `"open":true`) {
		t.Fatalf("drawer opened in the first request must still be open: %s", second.Body.String())
	}
}

func TestRouterServesMetrics(t *testing.T) {
	router := testRouter(t, prometheus.NewRegistry())

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestRouterUnknownRoute(t *testing.T) {
	router := testRouter(t, nil)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/nope", nil))

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}
