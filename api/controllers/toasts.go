package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ishos/storefront/api/middleware"
	"github.com/ishos/storefront/api/responses"
	"github.com/ishos/storefront/pkg/logger"
)

func ToastsList(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := middleware.RequireSession(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sess.Toasts.List())
	}
}

// ToastDismiss removes one toast. Unknown ids are not an error: the toast
// may already have expired.
func ToastDismiss(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := middleware.RequireSession(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sess.Toasts.Remove(strings.TrimSpace(chi.URLParam(r, "toastId")))
		responses.WriteNoContent(w)
	}
}

func ToastsClear(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := middleware.RequireSession(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sess.Toasts.Clear()
		responses.WriteNoContent(w)
	}
}
