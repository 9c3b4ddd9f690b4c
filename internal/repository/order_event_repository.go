package repository

import (
	"context"

	"fruitpack/internal/domain/model"
)

type OrderEventRepository interface {
	Create(ctx context.Context, event model.OrderEvent) error
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderEvent, error)
}
