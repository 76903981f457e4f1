package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/FarhanRj389/storefront-widgets/api/responses"
	"github.com/FarhanRj389/storefront-widgets/api/validators"
	"github.com/FarhanRj389/storefront-widgets/internal/cart"
	"github.com/FarhanRj389/storefront-widgets/internal/cartview"
	"github.com/FarhanRj389/storefront-widgets/internal/session"
	pkgerrors "github.com/FarhanRj389/storefront-widgets/pkg/errors"
	"github.com/FarhanRj389/storefront-widgets/pkg/logger"
)

// CartDrawer serves the session's drawer fragment. First contact triggers the
// initial fetch; an optimistic snapshot past its TTL is reconciled here too,
// since no user action would otherwise sync it.
func CartDrawer(reg *session.Registry, optimisticTTL time.Duration, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		widgets, err := sessionWidgets(reg, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := widgets.EnsureFetched(r.Context()); err != nil {
			logg.Warn(logg.WithField(r.Context(), "op", "initial_fetch"), "initial cart fetch failed")
		}
		if err := widgets.RefreshIfStale(r.Context(), optimisticTTL, time.Now()); err != nil {
			logg.Warn(logg.WithField(r.Context(), "op", "stale_refresh"), "stale snapshot refresh failed")
		}

		responses.WriteFragment(w, widgets.DrawerFragment())
	}
}

// CartRefresh re-reads the remote cart. Failure is soft: the fragment of the
// last-known-good snapshot is served unchanged.
func CartRefresh(reg *session.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		widgets, err := sessionWidgets(reg, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := widgets.Cart.FetchAndReplace(r.Context()); err != nil {
			logg.Warn(logg.WithField(r.Context(), "op", "refresh"), "cart refresh failed, serving previous state")
		}
		responses.WriteFragment(w, widgets.DrawerFragment())
	}
}

type cartUpdateRequest struct {
	Updates map[string]int `json:"updates" validate:"required,min=1"`
}

// CartUpdate applies a batch of absolute quantity targets. A failed round
// trip is a soft failure: logged, prior fragment served.
func CartUpdate(reg *session.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		widgets, err := sessionWidgets(reg, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cartUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		for id, target := range payload.Updates {
			if target < 0 {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "quantity targets must not be negative").
						WithDetails(map[string]any{"id": id, "target": target}))
				return
			}
		}

		if err := widgets.Cart.RequestQuantityChange(r.Context(), cart.PendingUpdate(payload.Updates)); err != nil {
			logg.Warn(logg.WithField(r.Context(), "op", "update"), "cart update failed, serving previous state")
		}
		responses.WriteFragment(w, widgets.DrawerFragment())
	}
}

type lineActionRequest struct {
	Quantity int    `json:"quantity" validate:"gte=0"`
	ItemKey  string `json:"item_key"`
}

// CartLineAction handles one row's increase/decrease/remove control. The row
// posts back its captured data attributes; the control builds a single-entry
// update from them.
func CartLineAction(reg *session.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		widgets, err := sessionWidgets(reg, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		action, err := cartview.ParseAction(chi.URLParam(r, "action"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid line item action"))
			return
		}

		var payload lineActionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		control := cartview.Control{
			UpdateKey: chi.URLParam(r, "id"),
			Quantity:  payload.Quantity,
			ItemKey:   payload.ItemKey,
		}
		if err := control.Apply(r.Context(), widgets.Cart, action); err != nil {
			logg.Warn(logg.WithField(r.Context(), "op", string(action)), "line item update failed, serving previous state")
		}
		responses.WriteFragment(w, widgets.DrawerFragment())
	}
}

type cartAddRequest struct {
	VariantID  int64             `json:"variant_id" validate:"required,gt=0"`
	Quantity   int               `json:"quantity" validate:"gte=0"`
	Properties map[string]string `json:"properties"`
}

// CartAdd runs the product form's submit path. Unlike quantity updates this
// fails hard: the error envelope becomes the user-visible blocking notice.
func CartAdd(reg *session.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		widgets, err := sessionWidgets(reg, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cartAddRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := widgets.Selector.Submit(r.Context(), selectorSubmitInput(payload))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		fragment, err := widgets.View.Render(widgets.Cart.Snapshot(), widgets.Cart.State(), cartview.Options{Notice: result.Notice})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteFragment(w, fragment)
	}
}
