package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ishos/storefront/pkg/db/models"
	"github.com/ishos/storefront/pkg/enums"
	"github.com/ishos/storefront/pkg/pagination"
)

// ErrLogDisabled is returned by reads when the service runs without a
// database.
var ErrLogDisabled = errors.New("order log disabled")

// nopRepository accepts writes and forgets them. Submissions keep working
// without a database; reads report ErrLogDisabled.
type nopRepository struct{}

func (nopRepository) WithTx(*gorm.DB) Repository { return nopRepository{} }

func (nopRepository) Create(context.Context, *models.OrderRecord) error { return nil }

func (nopRepository) FindByID(context.Context, uuid.UUID) (*models.OrderRecord, error) {
	return nil, ErrLogDisabled
}

func (nopRepository) List(context.Context, pagination.Params, ListFilters) ([]models.OrderRecord, string, error) {
	return nil, "", ErrLogDisabled
}

func (nopRepository) FindPendingBefore(context.Context, time.Time, int) ([]models.OrderRecord, error) {
	return nil, nil
}

func (nopRepository) UpdateStatus(context.Context, uuid.UUID, enums.OrderStatus, enums.OrderStatus) (bool, error) {
	return false, ErrLogDisabled
}

type inlineTx struct{}

func (inlineTx) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error { return fn(nil) }
