package repository

import (
	"context"

	"fruitpack/internal/domain/model"
)

type ProductRepository interface {
	FindByID(ctx context.Context, productID int64) (model.Product, error)
	List(ctx context.Context, category string, page int, limit int) ([]model.Product, int64, error)
}
