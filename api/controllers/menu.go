package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ishos/storefront/api/middleware"
	"github.com/ishos/storefront/api/responses"
	"github.com/ishos/storefront/api/validators"
	"github.com/ishos/storefront/internal/catalog"
	"github.com/ishos/storefront/internal/filters"
	"github.com/ishos/storefront/internal/session"
	"github.com/ishos/storefront/pkg/enums"
	pkgerrors "github.com/ishos/storefront/pkg/errors"
	"github.com/ishos/storefront/pkg/logger"
)

// MenuProducts lists available products, optionally narrowed by
// ?category=. With ?includeUnavailable=true sold-out items are listed too,
// flagged by their available field.
func MenuProducts(reader catalog.Reader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.URL.Query().Get("category"))
		category, err := enums.ParseCategoryFilter(raw)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid category").WithDetails(map[string]any{"category": raw}))
			return
		}
		includeUnavailable, err := validators.ParseQueryBool(r, "includeUnavailable", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		switch {
		case includeUnavailable:
			out := []catalog.Product{}
			for _, p := range reader.Listing() {
				if category == enums.CategoryAll || p.Category == category {
					out = append(out, p)
				}
			}
			responses.WriteSuccess(w, out)
		case category == enums.CategoryAll:
			responses.WriteSuccess(w, reader.AllProducts())
		default:
			responses.WriteSuccess(w, reader.ProductsByCategory(category))
		}
	}
}

func MenuFeatured(reader catalog.Reader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, reader.FeaturedProducts())
	}
}

// MenuProduct returns one available product.
func MenuProduct(reader catalog.Reader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "productId"))
		product, ok := reader.ProductByID(id)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "product not found"))
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func MenuCategories(reader catalog.Reader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, reader.Categories())
	}
}

// MenuView is the session's filtered menu together with the filters that
// produced it.
type MenuView struct {
	Filters  filters.MenuFilters `json:"filters"`
	Products []catalog.Product   `json:"products"`
}

// MenuSearch applies the session's filters to the full listing. Unavailable
// products are included unless showAvailableOnly is set.
func MenuSearch(reader catalog.Reader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := middleware.RequireSession(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var view MenuView
		_ = sess.Do(func(s *session.Session) error {
			current := s.Filters.Get()
			view = MenuView{Filters: current, Products: filters.Apply(current, reader.Listing())}
			return nil
		})
		responses.WriteSuccess(w, view)
	}
}
