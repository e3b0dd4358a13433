package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/ishos/storefront/internal/cart"
	"github.com/ishos/storefront/internal/catalog"
	"github.com/ishos/storefront/internal/order"
	"github.com/ishos/storefront/internal/session"
	"github.com/ishos/storefront/pkg/db"
	"github.com/ishos/storefront/pkg/enums"
	pkgerrors "github.com/ishos/storefront/pkg/errors"
	"github.com/ishos/storefront/pkg/logger"
	"github.com/ishos/storefront/pkg/metrics"
	"github.com/ishos/storefront/pkg/pagination"
)

// DefaultSuccessMessage is toasted after a submission when the store
// config has no orderSuccessMessage.
const DefaultSuccessMessage = "¡Pedido enviado! Te contactaremos pronto."

const expireBatchSize = 200

// Service defines the order log operations.
type Service interface {
	Validate(ctx context.Context, sess *session.Session, form order.Form) []string
	Submit(ctx context.Context, sess *session.Session, form order.Form) (*SubmitResult, error)
	Get(ctx context.Context, id uuid.UUID) (*OrderView, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderList, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) (*OrderView, error)
	ExpirePending(ctx context.Context, cutoff time.Time) (int, error)
}

// ServiceParams wires a Service. Without Repo the service runs with a
// recorder that keeps nothing.
type ServiceParams struct {
	Repo    Repository
	Tx      txRunner
	Catalog catalog.Reader
	Logger  *logger.Logger
	Metrics *metrics.OrderMetrics
	Clock   func() time.Time
	NewID   func() uuid.UUID
}

type service struct {
	repo    Repository
	tx      txRunner
	catalog catalog.Reader
	logg    *logger.Logger
	metrics *metrics.OrderMetrics
	now     func() time.Time
	newID   func() uuid.UUID
}

func NewService(params ServiceParams) (Service, error) {
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog required")
	}
	s := &service{
		repo:    params.Repo,
		tx:      params.Tx,
		catalog: params.Catalog,
		logg:    params.Logger,
		metrics: params.Metrics,
		now:     params.Clock,
		newID:   params.NewID,
	}
	if s.repo == nil {
		s.repo = nopRepository{}
		s.tx = inlineTx{}
	}
	if s.tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if s.logg == nil {
		s.logg = logger.Nop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = newOrderID
	}
	return s, nil
}

func newOrderID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}

// Validate returns every problem that would block submitting the
// session's cart with form.
func (s *service) Validate(_ context.Context, sess *session.Session, form order.Form) []string {
	var problems []string
	_ = sess.Do(func(sess *session.Session) error {
		problems = s.check(sess.Cart.Snapshot(), form)
		return nil
	})
	return problems
}

func (s *service) check(snapshot cart.Cart, form order.Form) []string {
	settings := s.catalog.Config().Settings
	problems := order.ValidateForm(form)
	problems = append(problems, order.CheckSubmission(snapshot, form.OrderType, settings)...)
	for _, item := range snapshot.Items {
		if _, ok := s.catalog.ProductByID(item.ProductID); !ok {
			problems = append(problems, fmt.Sprintf(order.MsgProductUnavailable, item.Product.Name))
		}
	}
	return problems
}

// Submit turns the session's cart into an order: validate, assemble,
// record, then clear the cart and toast. On validation failure the cart is
// left untouched.
func (s *service) Submit(ctx context.Context, sess *session.Session, form order.Form) (*SubmitResult, error) {
	var result *SubmitResult
	err := sess.Do(func(sess *session.Session) error {
		snapshot := sess.Cart.Snapshot()
		if problems := s.check(snapshot, form); len(problems) > 0 {
			s.metrics.IncRejected()
			return pkgerrors.Validation("order validation failed", problems)
		}

		cfg := s.catalog.Config()
		o := order.Assemble(snapshot, form, cfg.Settings, s.newID(), s.now())
		message := o.Message(cfg.Settings.CurrencySymbol)
		url := order.WhatsAppURL(cfg.Store.Contact.WhatsAppNumber, cfg.Store.Contact.CountryCode(), message)

		ctx = s.logg.WithSessionID(ctx, sess.ID)
		ctx = s.logg.WithOrderID(ctx, o.ID.String())
		if err := s.repo.Create(ctx, toRecord(sess.ID, o, cfg.Settings.CurrencySymbol)); err != nil {
			if db.IsUniqueViolation(err) {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "order already recorded")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record order")
		}

		sess.Cart.Clear(ctx)
		sess.Toasts.Show(successMessage(cfg), enums.ToastSuccess, -1)
		s.metrics.ObserveSubmitted(string(o.OrderType), o.Total)
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"order_type": o.OrderType,
			"total":      o.Total.StringFixed(2),
			"items":      len(o.Items),
		}), "order submitted")

		result = &SubmitResult{Order: o, Message: message, WhatsAppURL: url}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func successMessage(cfg catalog.StoreConfig) string {
	if msg := strings.TrimSpace(cfg.Messages.OrderSuccessMessage); msg != "" {
		return msg
	}
	return DefaultSuccessMessage
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*OrderView, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapReadError(err, "load order")
	}
	view := toView(*rec)
	return &view, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderList, error) {
	if filters.Status != "" && !filters.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
	}
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, next, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, mapReadError(err, "list orders")
	}
	out := &OrderList{Orders: make([]OrderView, 0, len(rows)), NextCursor: next}
	for _, rec := range rows {
		out.Orders = append(out.Orders, toView(rec))
	}
	return out, nil
}

// UpdateStatus moves an order along the status workflow. Setting the
// current status again is a no-op.
func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) (*OrderView, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}

	var view OrderView
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		rec, err := repo.FindByID(ctx, id)
		if err != nil {
			return mapReadError(err, "load order")
		}
		if rec.Status == status {
			view = toView(*rec)
			return nil
		}
		if !rec.Status.CanTransitionTo(status) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "status transition not allowed").
				WithDetails(map[string]any{"from": rec.Status, "to": status})
		}
		updated, err := repo.UpdateStatus(ctx, id, rec.Status, status)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		if !updated {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order status changed concurrently")
		}
		rec.Status = status
		rec.UpdatedAt = s.now().UTC()
		view = toView(*rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithFields(s.logg.WithOrderID(ctx, id.String()), map[string]any{"status": status}), "order status updated")
	return &view, nil
}

// ExpirePending cancels orders still pending at cutoff and returns how
// many were cancelled. Per-order failures are combined; the rest of the
// batch still runs.
func (s *service) ExpirePending(ctx context.Context, cutoff time.Time) (int, error) {
	rows, err := s.repo.FindPendingBefore(ctx, cutoff.UTC(), expireBatchSize)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find pending orders")
	}
	expired := 0
	var errs error
	for _, rec := range rows {
		ok, err := s.repo.UpdateStatus(ctx, rec.ID, enums.OrderStatusPending, enums.OrderStatusCancelled)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("expire order %s: %w", rec.ID, err))
			continue
		}
		if ok {
			expired++
		}
	}
	return expired, errs
}

func mapReadError(err error, action string) error {
	switch {
	case db.IsNotFound(err):
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	case errors.Is(err, ErrLogDisabled):
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "order log not configured")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
	}
}
