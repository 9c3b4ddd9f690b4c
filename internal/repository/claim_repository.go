package repository

import (
	"context"

	"fruitpack/internal/domain/model"
)

type ClaimRepository interface {
	Create(ctx context.Context, claim model.Claim) (int64, error)
	ListByDriverID(ctx context.Context, driverID int64, source model.ClaimSource) ([]model.Claim, error)
	FindApprovedByOrderID(ctx context.Context, orderID int64) (model.Claim, error)
}
