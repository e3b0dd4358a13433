package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/ishos/storefront/pkg/logger"
)

const defaultPendingTTL = 72 * time.Hour

type pendingExpirer interface {
	ExpirePending(ctx context.Context, cutoff time.Time) (int, error)
}

// OrderExpiryJobParams configure the pending order expiry job.
type OrderExpiryJobParams struct {
	Logger     *logger.Logger
	Orders     pendingExpirer
	PendingTTL time.Duration
	Clock      func() time.Time
}

type orderExpiryJob struct {
	logg   *logger.Logger
	orders pendingExpirer
	ttl    time.Duration
	now    func() time.Time
}

// NewOrderExpiryJob builds the job that cancels orders nobody confirmed
// within the pending TTL.
func NewOrderExpiryJob(params OrderExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders service required")
	}
	ttl := params.PendingTTL
	if ttl <= 0 {
		ttl = defaultPendingTTL
	}
	now := params.Clock
	if now == nil {
		now = time.Now
	}
	return &orderExpiryJob{logg: params.Logger, orders: params.Orders, ttl: ttl, now: now}, nil
}

func (j *orderExpiryJob) Name() string { return "order_expiry" }

func (j *orderExpiryJob) Run(ctx context.Context) error {
	cutoff := j.now().Add(-j.ttl)
	expired, err := j.orders.ExpirePending(ctx, cutoff)
	if expired > 0 {
		j.logg.Info(j.logg.WithFields(ctx, map[string]any{
			"expired": expired,
			"cutoff":  cutoff.UTC().Format(time.RFC3339),
		}), "pending orders expired")
	}
	return err
}
