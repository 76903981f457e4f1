package controllers

import (
	"net/http"

	"github.com/FarhanRj389/storefront-widgets/api/responses"
	"github.com/FarhanRj389/storefront-widgets/api/validators"
	"github.com/FarhanRj389/storefront-widgets/internal/session"
	"github.com/FarhanRj389/storefront-widgets/pkg/logger"
)

type drawerStateResponse struct {
	Open bool `json:"open"`
}

// DrawerOpen opens the session's drawer.
func DrawerOpen(reg *session.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		widgets, err := sessionWidgets(reg, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		widgets.Drawer.Open()
		responses.WriteSuccess(w, drawerStateResponse{Open: true})
	}
}

// DrawerClose closes the session's drawer; the backdrop click posts here.
func DrawerClose(reg *session.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		widgets, err := sessionWidgets(reg, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		widgets.Drawer.Close()
		responses.WriteSuccess(w, drawerStateResponse{Open: false})
	}
}

// DrawerToggle mirrors the header cart icon: open if closed, close if open.
func DrawerToggle(reg *session.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		widgets, err := sessionWidgets(reg, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, drawerStateResponse{Open: widgets.Drawer.Toggle()})
	}
}

// DrawerState reports visibility.
func DrawerState(reg *session.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		widgets, err := sessionWidgets(reg, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, drawerStateResponse{Open: widgets.Drawer.IsOpen()})
	}
}

type drawerKeyRequest struct {
	Key string `json:"key" validate:"required"`
}

// DrawerKey forwards a keydown event; escape closes an open drawer, anything
// else is a no-op.
func DrawerKey(reg *session.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		widgets, err := sessionWidgets(reg, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload drawerKeyRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		widgets.Drawer.HandleKey(payload.Key)
		responses.WriteSuccess(w, drawerStateResponse{Open: widgets.Drawer.IsOpen()})
	}
}
