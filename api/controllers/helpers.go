package controllers

import (
	"net/http"

	"github.com/FarhanRj389/storefront-widgets/api/middleware"
	"github.com/FarhanRj389/storefront-widgets/internal/session"
	pkgerrors "github.com/FarhanRj389/storefront-widgets/pkg/errors"
)

// sessionWidgets resolves the request's widget set, creating it on first use.
func sessionWidgets(reg *session.Registry, r *http.Request) (*session.Widgets, error) {
	sessionID, ok := middleware.SessionIDFromContext(r.Context())
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "session not established")
	}
	return reg.GetOrCreate(r.Context(), sessionID)
}
