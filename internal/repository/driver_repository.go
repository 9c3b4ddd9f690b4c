package repository

import (
	"context"

	"fruitpack/internal/domain/model"
)

type DriverRepository interface {
	Create(ctx context.Context, driver model.Driver) (int64, error)
	FindByID(ctx context.Context, driverID int64) (model.Driver, error)
	FindByUserID(ctx context.Context, userID int64) (model.Driver, error)
	UpdateStatus(ctx context.Context, driverID int64, status model.DriverStatus) error
	UpdateLocation(ctx context.Context, driverID int64, lat float64, lng float64) error
}
