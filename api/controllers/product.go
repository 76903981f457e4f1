package controllers

import (
	"net/http"

	"github.com/FarhanRj389/storefront-widgets/api/responses"
	"github.com/FarhanRj389/storefront-widgets/api/validators"
	"github.com/FarhanRj389/storefront-widgets/internal/selector"
	"github.com/FarhanRj389/storefront-widgets/internal/session"
	"github.com/FarhanRj389/storefront-widgets/pkg/logger"
)

type selectVariantRequest struct {
	VariantID int64 `json:"variant_id" validate:"required,gt=0"`
}

type selectVariantResponse struct {
	Found bool               `json:"found"`
	State selector.ViewState `json:"state"`
}

func selectorSubmitInput(payload cartAddRequest) selector.SubmitInput {
	return selector.SubmitInput{
		VariantID:  payload.VariantID,
		Quantity:   payload.Quantity,
		Properties: payload.Properties,
	}
}

// ProductSelect resolves an option selection to a variant and returns the
// resulting view state. An inconsistent option combination reports found=false
// with the previous state so the page leaves its display untouched.
func ProductSelect(reg *session.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		widgets, err := sessionWidgets(reg, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload selectVariantRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state, found := widgets.Selector.SelectVariant(r.Context(), payload.VariantID)
		responses.WriteSuccess(w, selectVariantResponse{Found: found, State: state})
	}
}

// ProductState reports the current selection without changing it.
func ProductState(reg *session.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		widgets, err := sessionWidgets(reg, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, widgets.Selector.ViewState())
	}
}
