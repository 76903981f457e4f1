package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/FarhanRj389/storefront-widgets/pkg/platform"
)

func decodeSelect(t *testing.T, resp *httptest.ResponseRecorder) selectVariantResponse {
	t.Helper()
	var envelope struct {
		Data selectVariantResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return envelope.Data
}

func TestProductSelectAvailableVariant(t *testing.T) {
	reg := testRegistry(t, &fakePlatform{cart: &platform.Cart{}})
	handler := ProductSelect(reg, testLogger())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, sessionRequest(http.MethodPost, "/widgets/product/select", `{"variant_id":11}`))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	data := decodeSelect(t, resp)
	if !data.Found {
		t.Fatal("variant 11 must resolve")
	}
	if data.State.VariantID != 11 || !data.State.Available || data.State.ButtonDisabled {
		t.Fatalf("unexpected state: %+v", data.State)
	}
	if data.State.HistoryURL != "/products/tee?variant=11" {
		t.Fatalf("unexpected history url: %s", data.State.HistoryURL)
	}
}

func TestProductSelectSoldOutVariant(t *testing.T) {
	reg := testRegistry(t, &fakePlatform{cart: &platform.Cart{}})
	handler := ProductSelect(reg, testLogger())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, sessionRequest(http.MethodPost, "/widgets/product/select", `{"variant_id":12}`))

	data := decodeSelect(t, resp)
	if !data.Found {
		t.Fatal("variant 12 exists and must resolve")
	}
	if data.State.Available || !data.State.ButtonDisabled || data.State.ButtonLabel != "SOLD OUT" {
		t.Fatalf("sold out variant must disable the button: %+v", data.State)
	}
}

func TestProductSelectUnknownKeepsPreviousState(t *testing.T) {
	reg := testRegistry(t, &fakePlatform{cart: &platform.Cart{}})
	handler := ProductSelect(reg, testLogger())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, sessionRequest(http.MethodPost, "/widgets/product/select", `{"variant_id":99}`))

	if resp.Code != http.StatusOK {
		t.Fatalf("a miss is not an error, expected 200 got %d", resp.Code)
	}
	data := decodeSelect(t, resp)
	if data.Found {
		t.Fatal("unknown variant must report found=false")
	}
	if data.State.VariantID != 11 {
		t.Fatalf("previous selection must survive, got %d", data.State.VariantID)
	}
}

func TestProductStateReportsInitialVariant(t *testing.T) {
	reg := testRegistry(t, &fakePlatform{cart: &platform.Cart{}})
	handler := ProductState(reg, testLogger())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, sessionRequest(http.MethodGet, "/widgets/product", ""))

	var envelope struct {
		Data struct {
			VariantID int64 `json:"variant_id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.VariantID != 11 {
		t.Fatalf("initial variant must be reported, got %d", envelope.Data.VariantID)
	}
}
