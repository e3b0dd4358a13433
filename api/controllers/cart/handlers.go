package cart

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ishos/storefront/api/middleware"
	"github.com/ishos/storefront/api/responses"
	"github.com/ishos/storefront/api/validators"
	cartsvc "github.com/ishos/storefront/internal/cart"
	"github.com/ishos/storefront/internal/catalog"
	"github.com/ishos/storefront/internal/session"
	pkgerrors "github.com/ishos/storefront/pkg/errors"
	"github.com/ishos/storefront/pkg/logger"
)

// CartFetch returns the session's cart.
func CartFetch(reader catalog.Reader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := middleware.RequireSession(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(sess.Cart.Snapshot(), reader.Config().Settings))
	}
}

// CartAddItem appends a line for an available product. Unknown and
// unavailable products are both NOT_FOUND.
func CartAddItem(reader catalog.Reader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sess, err := middleware.RequireSession(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload AddItemRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		product, ok := reader.ProductByID(strings.TrimSpace(payload.ProductID))
		if !ok {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "product not found"))
			return
		}

		opts, err := addOptions(product, payload)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var (
			item     cartsvc.Item
			snapshot cartsvc.Cart
		)
		err = sess.Do(func(s *session.Session) error {
			var addErr error
			item, addErr = s.Cart.AddItem(ctx, product, payload.quantity(), opts)
			snapshot = s.Cart.Snapshot()
			return addErr
		})
		if err != nil {
			if errors.Is(err, cartsvc.ErrInvalidQuantity) {
				err = pkgerrors.New(pkgerrors.CodeValidation, err.Error())
			}
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			logg.Debug(logg.WithFields(ctx, map[string]any{"product_id": product.ID, "item_id": item.ID}), "cart.item_added")
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"item": item,
			"cart": newCartView(snapshot, reader.Config().Settings),
		})
	}
}

func addOptions(product catalog.Product, payload AddItemRequest) (cartsvc.AddOptions, error) {
	opts := cartsvc.AddOptions{
		Flavor: validators.SanitizeString(payload.Flavor, 64),
		Notes:  validators.SanitizeString(payload.Notes, 280),
	}
	if name := strings.TrimSpace(payload.Size); name != "" {
		size, ok := product.Size(name)
		if !ok {
			return opts, pkgerrors.New(pkgerrors.CodeValidation, "unknown size").WithDetails(map[string]any{"size": name})
		}
		opts.Size = &size
	}
	if opts.Flavor != "" && len(product.Flavors) > 0 && !product.HasFlavor(opts.Flavor) {
		return opts, pkgerrors.New(pkgerrors.CodeValidation, "unknown flavor").WithDetails(map[string]any{"flavor": opts.Flavor})
	}
	return opts, nil
}

// CartUpdateItem sets a line's quantity. Unknown item ids leave the cart
// unchanged and still answer with the current cart.
func CartUpdateItem(reader catalog.Reader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sess, err := middleware.RequireSession(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload UpdateItemRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		itemID := strings.TrimSpace(chi.URLParam(r, "itemId"))
		var snapshot cartsvc.Cart
		_ = sess.Do(func(s *session.Session) error {
			s.Cart.UpdateQuantity(ctx, itemID, *payload.Quantity)
			snapshot = s.Cart.Snapshot()
			return nil
		})
		responses.WriteSuccess(w, newCartView(snapshot, reader.Config().Settings))
	}
}

func CartRemoveItem(reader catalog.Reader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sess, err := middleware.RequireSession(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		itemID := strings.TrimSpace(chi.URLParam(r, "itemId"))
		var snapshot cartsvc.Cart
		_ = sess.Do(func(s *session.Session) error {
			s.Cart.RemoveItem(ctx, itemID)
			snapshot = s.Cart.Snapshot()
			return nil
		})
		responses.WriteSuccess(w, newCartView(snapshot, reader.Config().Settings))
	}
}

func CartClear(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sess, err := middleware.RequireSession(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		_ = sess.Do(func(s *session.Session) error {
			s.Cart.Clear(ctx)
			return nil
		})
		responses.WriteNoContent(w)
	}
}
