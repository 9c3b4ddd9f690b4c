package repository

import (
	"context"

	repo "fruitpack/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	claims     repo.ClaimRepository
	drivers    repo.DriverRepository
	products   repo.ProductRepository
	inventory  repo.InventoryRepository
	events     repo.OrderEventRepository
}

func (r *txReposGorm) Orders() repo.OrderRepository         { return r.orders }
func (r *txReposGorm) OrderItems() repo.OrderItemRepository { return r.orderItems }
func (r *txReposGorm) Claims() repo.ClaimRepository         { return r.claims }
func (r *txReposGorm) Drivers() repo.DriverRepository       { return r.drivers }
func (r *txReposGorm) Products() repo.ProductRepository     { return r.products }
func (r *txReposGorm) Inventory() repo.InventoryRepository  { return r.inventory }
func (r *txReposGorm) Events() repo.OrderEventRepository    { return r.events }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		r := &txReposGorm{
			orders:     NewOrderGormRepository(tx),
			orderItems: NewOrderItemGormRepository(tx),
			claims:     NewClaimGormRepository(tx),
			drivers:    NewDriverGormRepository(tx),
			products:   NewProductGormRepository(tx),
			inventory:  NewInventoryGormRepository(tx),
			events:     NewOrderEventGormRepository(tx),
		}
		return fn(r)
	})
}
