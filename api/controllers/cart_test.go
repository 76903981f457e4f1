package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/FarhanRj389/storefront-widgets/api/middleware"
	"github.com/FarhanRj389/storefront-widgets/internal/cart"
	"github.com/FarhanRj389/storefront-widgets/internal/cartview"
	"github.com/FarhanRj389/storefront-widgets/internal/catalog"
	"github.com/FarhanRj389/storefront-widgets/internal/drawer"
	"github.com/FarhanRj389/storefront-widgets/internal/selector"
	"github.com/FarhanRj389/storefront-widgets/internal/session"
	pkgerrors "github.com/FarhanRj389/storefront-widgets/pkg/errors"
	"github.com/FarhanRj389/storefront-widgets/pkg/logger"
	"github.com/FarhanRj389/storefront-widgets/pkg/platform"
)

type fakePlatform struct {
	mu        sync.Mutex
	cart      *platform.Cart
	fetchErr  error
	updateErr error
	addErr    error

	updates []map[string]int
	adds    []platform.AddRequest
}

func (f *fakePlatform) FetchCart(ctx context.Context) (*platform.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.cart, nil
}

func (f *fakePlatform) UpdateCart(ctx context.Context, updates map[string]int) (*platform.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, updates)
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return f.cart, nil
}

func (f *fakePlatform) AddItem(ctx context.Context, req platform.AddRequest) (*platform.LineItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.adds = append(f.adds, req)
	if f.addErr != nil {
		return nil, f.addErr
	}
	return &platform.LineItem{ID: req.VariantID, VariantID: req.VariantID, ProductTitle: "Tee", Quantity: req.Quantity, Price: 2500}, nil
}

const variantBlob = `[
  {"id": 11, "title": "Small", "price": 2500, "available": true,
   "featured_image": {"src": "https://cdn.example.com/tee.jpg?v=1"}},
  {"id": 12, "title": "Large", "price": 2500, "available": false}
]`

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func testRegistry(t *testing.T, api *fakePlatform) *session.Registry {
	t.Helper()
	logg := testLogger()
	cat := catalog.New(context.Background(), []byte(variantBlob), logg)

	factory := func(sessionID string) (*session.Widgets, error) {
		mirror, err := cart.NewMirror(cart.Params{Client: api, Logger: logg})
		if err != nil {
			return nil, err
		}
		shell := drawer.NewShell()
		sel, err := selector.NewSelector(selector.Params{
			Catalog:          cat,
			Client:           api,
			Cart:             mirror,
			Drawer:           shell,
			Logger:           logg,
			ProductHandle:    "tee",
			InitialVariantID: 11,
		})
		if err != nil {
			return nil, err
		}
		return session.NewWidgets(mirror, cartview.NewView(nil), shell, sel, logg), nil
	}

	reg, err := session.NewRegistry(factory, time.Minute, logg)
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	return reg
}

func sessionRequest(method, target, body string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req.WithContext(middleware.WithSessionID(req.Context(), "s1"))
}

func TestCartDrawerRendersFetchedCart(t *testing.T) {
	api := &fakePlatform{cart: &platform.Cart{Items: []platform.LineItem{
		{Key: "k1", ID: 1, VariantID: 11, ProductTitle: "Tee", Quantity: 2, Price: 500, FinalLinePrice: 1000},
	}}}
	handler := CartDrawer(testRegistry(t, api), time.Minute, testLogger())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, sessionRequest(http.MethodGet, "/widgets/cart", ""))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("expected html fragment, got %s", ct)
	}
	if !strings.Contains(resp.Body.String(), `item-key="k1"`) {
		t.Fatalf("fragment missing fetched row: %s", resp.Body.String())
	}
}

func TestCartDrawerMissingSession(t *testing.T) {
	api := &fakePlatform{cart: &platform.Cart{}}
	handler := CartDrawer(testRegistry(t, api), time.Minute, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/widgets/cart", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
}

func TestCartDrawerServesErrorFragmentWhenFirstFetchFails(t *testing.T) {
	api := &fakePlatform{fetchErr: pkgerrors.New(pkgerrors.CodeUpstream, "down")}
	handler := CartDrawer(testRegistry(t, api), time.Minute, testLogger())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, sessionRequest(http.MethodGet, "/widgets/cart", ""))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "cart-error-message") {
		t.Fatalf("expected error fragment, got: %s", resp.Body.String())
	}
}

func TestCartUpdateRejectsNegativeTarget(t *testing.T) {
	api := &fakePlatform{cart: &platform.Cart{}}
	handler := CartUpdate(testRegistry(t, api), testLogger())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, sessionRequest(http.MethodPost, "/widgets/cart/update", `{"updates":{"11":-1}}`))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if len(api.updates) != 0 {
		t.Fatalf("invalid payload must not reach the platform, got %v", api.updates)
	}
}

func TestCartUpdateSoftFailServesPreviousState(t *testing.T) {
	api := &fakePlatform{
		cart: &platform.Cart{Items: []platform.LineItem{
			{Key: "k1", ID: 1, VariantID: 11, ProductTitle: "Tee", Quantity: 2, Price: 500, FinalLinePrice: 1000},
		}},
	}
	reg := testRegistry(t, api)
	drawerHandler := CartDrawer(reg, time.Minute, testLogger())
	resp := httptest.NewRecorder()
	drawerHandler.ServeHTTP(resp, sessionRequest(http.MethodGet, "/widgets/cart", ""))

	api.mu.Lock()
	api.updateErr = pkgerrors.New(pkgerrors.CodeUpstream, "down")
	api.mu.Unlock()

	handler := CartUpdate(reg, testLogger())
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, sessionRequest(http.MethodPost, "/widgets/cart/update", `{"updates":{"11":3}}`))

	if resp.Code != http.StatusOK {
		t.Fatalf("update failure must be soft, expected 200 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `item-key="k1"`) {
		t.Fatalf("previous snapshot must survive a failed update: %s", resp.Body.String())
	}
}

func lineActionRequestWith(action, id, body string) *http.Request {
	req := sessionRequest(http.MethodPost, "/widgets/cart/items/"+id+"/"+action, body)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	rctx.URLParams.Add("action", action)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestCartLineActionIncrease(t *testing.T) {
	api := &fakePlatform{cart: &platform.Cart{}}
	handler := CartLineAction(testRegistry(t, api), testLogger())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, lineActionRequestWith("increase", "11", `{"quantity":2,"item_key":"k1"}`))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if len(api.updates) != 1 {
		t.Fatalf("expected one update, got %d", len(api.updates))
	}
	if got := api.updates[0]["11"]; got != 3 {
		t.Fatalf("increase from 2 must target 3, got %d", got)
	}
}

func TestCartLineActionUnknownAction(t *testing.T) {
	api := &fakePlatform{cart: &platform.Cart{}}
	handler := CartLineAction(testRegistry(t, api), testLogger())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, lineActionRequestWith("duplicate", "11", `{"quantity":2}`))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if len(api.updates) != 0 {
		t.Fatalf("unknown action must not reach the platform, got %v", api.updates)
	}
}

func TestCartAddSuccessRendersNotice(t *testing.T) {
	api := &fakePlatform{cart: &platform.Cart{}}
	reg := testRegistry(t, api)
	handler := CartAdd(reg, testLogger())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, sessionRequest(http.MethodPost, "/widgets/cart/add", `{"variant_id":11,"quantity":2}`))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "Item added to cart!") {
		t.Fatalf("fragment missing success notice: %s", resp.Body.String())
	}
	if len(api.adds) != 1 || api.adds[0].VariantID != 11 || api.adds[0].Quantity != 2 {
		t.Fatalf("unexpected add requests: %v", api.adds)
	}

	widgets, err := reg.GetOrCreate(context.Background(), "s1")
	if err != nil {
		t.Fatalf("lookup widgets: %v", err)
	}
	if !widgets.Drawer.IsOpen() {
		t.Fatal("successful add must open the drawer")
	}
	if widgets.Cart.Snapshot().ItemCount != 2 {
		t.Fatalf("optimistic item missing, count %d", widgets.Cart.Snapshot().ItemCount)
	}
}

func TestCartAddFailureIsBlocking(t *testing.T) {
	api := &fakePlatform{cart: &platform.Cart{}, addErr: pkgerrors.New(pkgerrors.CodeUpstream, "cart service rejected the item")}
	reg := testRegistry(t, api)
	handler := CartAdd(reg, testLogger())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, sessionRequest(http.MethodPost, "/widgets/cart/add", `{"variant_id":11}`))

	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 got %d", resp.Code)
	}
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	if envelope.Error.Message != "cart service rejected the item" {
		t.Fatalf("unexpected notice message: %q", envelope.Error.Message)
	}

	widgets, err := reg.GetOrCreate(context.Background(), "s1")
	if err != nil {
		t.Fatalf("lookup widgets: %v", err)
	}
	if widgets.Drawer.IsOpen() {
		t.Fatal("failed add must not open the drawer")
	}
	if widgets.Cart.Snapshot().ItemCount != 0 {
		t.Fatal("failed add must leave the cart untouched")
	}
}

func TestCartAddRejectsMissingVariant(t *testing.T) {
	api := &fakePlatform{cart: &platform.Cart{}}
	handler := CartAdd(testRegistry(t, api), testLogger())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, sessionRequest(http.MethodPost, "/widgets/cart/add", `{"quantity":1}`))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if len(api.adds) != 0 {
		t.Fatalf("invalid payload must not reach the platform, got %v", api.adds)
	}
}
