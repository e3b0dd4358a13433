package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ishos/storefront/pkg/db/models"
	"github.com/ishos/storefront/pkg/enums"
	"github.com/ishos/storefront/pkg/pagination"
)

// Repository defines persistence operations for the order log.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, record *models.OrderRecord) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.OrderRecord, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.OrderRecord, string, error)
	FindPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.OrderRecord, error)
	// UpdateStatus moves id from one status to another and reports whether
	// a row still in status from was found.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to enums.OrderStatus) (bool, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}
