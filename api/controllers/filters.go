package controllers

import (
	"net/http"

	"github.com/ishos/storefront/api/middleware"
	"github.com/ishos/storefront/api/responses"
	"github.com/ishos/storefront/api/validators"
	"github.com/ishos/storefront/internal/filters"
	"github.com/ishos/storefront/internal/session"
	"github.com/ishos/storefront/pkg/enums"
	pkgerrors "github.com/ishos/storefront/pkg/errors"
	"github.com/ishos/storefront/pkg/logger"
)

// FiltersRequest is a partial update; absent fields keep their value.
type FiltersRequest struct {
	Category          *string `json:"category"`
	SearchQuery       *string `json:"searchQuery" validate:"omitempty,max=100"`
	SortBy            *string `json:"sortBy"`
	ShowAvailableOnly *bool   `json:"showAvailableOnly"`
}

func FiltersGet(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := middleware.RequireSession(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sess.Filters.Get())
	}
}

// FiltersUpdate validates every field before applying any, so a bad sort
// mode never leaves a half-applied category change behind.
func FiltersUpdate(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := middleware.RequireSession(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload FiltersRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var category enums.Category
		if payload.Category != nil {
			if category, err = enums.ParseCategoryFilter(*payload.Category); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid category"))
				return
			}
		}
		var sortBy enums.SortMode
		if payload.SortBy != nil {
			if sortBy, err = enums.ParseSortMode(*payload.SortBy); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid sort mode"))
				return
			}
		}

		var current filters.MenuFilters
		err = sess.Do(func(s *session.Session) error {
			if payload.Category != nil {
				if err := s.Filters.SetCategory(category); err != nil {
					return err
				}
			}
			if payload.SortBy != nil {
				if err := s.Filters.SetSortBy(sortBy); err != nil {
					return err
				}
			}
			if payload.SearchQuery != nil {
				s.Filters.SetSearchQuery(validators.SanitizeString(*payload.SearchQuery, 100))
			}
			if payload.ShowAvailableOnly != nil {
				s.Filters.SetShowAvailableOnly(*payload.ShowAvailableOnly)
			}
			current = s.Filters.Get()
			return nil
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid filters"))
			return
		}
		responses.WriteSuccess(w, current)
	}
}

func FiltersReset(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := middleware.RequireSession(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sess.Filters.Reset()
		responses.WriteSuccess(w, sess.Filters.Get())
	}
}
