package orders

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ishos/storefront/api/middleware"
	"github.com/ishos/storefront/api/responses"
	"github.com/ishos/storefront/api/validators"
	"github.com/ishos/storefront/internal/order"
	internalorders "github.com/ishos/storefront/internal/orders"
	"github.com/ishos/storefront/pkg/enums"
	pkgerrors "github.com/ishos/storefront/pkg/errors"
	"github.com/ishos/storefront/pkg/logger"
	"github.com/ishos/storefront/pkg/pagination"
)

// ValidationResult answers the checkout form's live validation.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// StatusRequest moves an order along the status workflow.
type StatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// Validate reports every problem blocking submission of the session's cart
// with the posted form, without submitting.
func Validate(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sess, err := middleware.RequireSession(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var form order.Form
		if err := validators.DecodeJSON(w, r, &form); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		problems := svc.Validate(ctx, sess, sanitizeForm(form))
		if problems == nil {
			problems = []string{}
		}
		responses.WriteSuccess(w, ValidationResult{Valid: len(problems) == 0, Errors: problems})
	}
}

// Submit places the session's cart as an order and answers with the
// WhatsApp link the client should open.
func Submit(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sess, err := middleware.RequireSession(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var form order.Form
		if err := validators.DecodeJSON(w, r, &form); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		result, err := svc.Submit(ctx, sess, sanitizeForm(form))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

func sanitizeForm(f order.Form) order.Form {
	f.Name = validators.SanitizeString(f.Name, 100)
	f.Phone = validators.SanitizeString(f.Phone, 32)
	f.Email = validators.SanitizeString(f.Email, 254)
	f.Address = validators.SanitizeString(f.Address, 300)
	f.DeliveryNotes = validators.SanitizeString(f.DeliveryNotes, 300)
	f.Notes = validators.SanitizeString(f.Notes, 500)
	f.OrderType = enums.OrderType(strings.ToLower(strings.TrimSpace(string(f.OrderType))))
	return f
}

// List returns a page of logged orders, newest first.
func List(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		var filters internalorders.ListFilters
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseOrderStatus(raw)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter").WithDetails(map[string]any{"status": raw}))
				return
			}
			filters.Status = status
		}

		list, err := svc.List(ctx, params, filters)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func Detail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		view, err := svc.Get(ctx, orderID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func UpdateStatus(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var payload StatusRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		status, err := enums.ParseOrderStatus(strings.TrimSpace(payload.Status))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status").WithDetails(map[string]any{"status": payload.Status}))
			return
		}
		view, err := svc.UpdateStatus(ctx, orderID, status)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func parseOrderID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "orderId"))
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order id").WithDetails(map[string]any{"orderId": raw})
	}
	return id, nil
}
