package repository

import (
	"context"

	"fruitpack/internal/domain/model"
)

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	FindByOrderNumber(ctx context.Context, orderNumber string) (model.Order, error)
	Create(ctx context.Context, order model.Order) (int64, error)
	ListByCustomerID(ctx context.Context, customerID int64, page int, limit int) ([]model.Order, int64, error)

	// 未クレームのpending注文（driver_id IS NULL）
	ListAvailable(ctx context.Context) ([]model.Order, error)
	ListByDriverID(ctx context.Context, driverID int64, statuses []model.DeliveryStatus) ([]model.Order, error)

	// driver_id が未割当のときだけ割り当てる。勝者1人を決めるCAS。
	// 割り当てられたら true、既に誰かのものなら false。
	AssignDriverIfUnclaimed(ctx context.Context, orderID int64, driverID int64) (bool, error)

	// 現在値が from のときだけ to へ進める（古いクライアントの遷移は落ちる）
	UpdateDeliveryStatusIf(ctx context.Context, orderID int64, from model.DeliveryStatus, to model.DeliveryStatus) (bool, error)
	UpdatePaymentStatusIf(ctx context.Context, orderID int64, from model.PaymentStatus, to model.PaymentStatus) (bool, error)
}
