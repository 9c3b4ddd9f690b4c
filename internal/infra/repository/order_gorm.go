package repository

import (
	"context"
	"errors"

	"fruitpack/internal/domain/model"
	repo "fruitpack/internal/repository"

	"gorm.io/gorm"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

func (r *OrderGormRepository) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Where("id = ?", orderID).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

func (r *OrderGormRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Where("order_number = ?", orderNumber).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

func (r *OrderGormRepository) Create(ctx context.Context, order model.Order) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&order).Error; err != nil {
		return 0, err
	}
	return order.ID, nil
}

func (r *OrderGormRepository) ListByCustomerID(ctx context.Context, customerID int64, page int, limit int) ([]model.Order, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("customer_id = ?", customerID).
		Count(&total).Error; err != nil {
		return []model.Order{}, 0, err
	}

	var items []model.Order
	offset := (page - 1) * limit
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("id desc").
		Limit(limit).
		Offset(offset).
		Find(&items).Error
	if err != nil {
		return []model.Order{}, 0, err
	}

	return items, total, nil
}

// 未クレームのpendingだけ。クレーム済みは他ドライバーの一覧から消える。
func (r *OrderGormRepository) ListAvailable(ctx context.Context) ([]model.Order, error) {
	var items []model.Order
	err := r.db.WithContext(ctx).
		Where("delivery_status = ? AND driver_id IS NULL", model.DeliveryStatusPending).
		Order("id asc").
		Find(&items).Error
	if err != nil {
		return []model.Order{}, err
	}
	return items, nil
}

func (r *OrderGormRepository) ListByDriverID(ctx context.Context, driverID int64, statuses []model.DeliveryStatus) ([]model.Order, error) {
	q := r.db.WithContext(ctx).Where("driver_id = ?", driverID)
	if len(statuses) > 0 {
		q = q.Where("delivery_status IN ?", statuses)
	}

	var items []model.Order
	if err := q.Order("id desc").Find(&items).Error; err != nil {
		return []model.Order{}, err
	}
	return items, nil
}

// 「未割当のときだけ割り当てる」をUPDATE1本で行う。
// 同時に複数ドライバーが来ても、行ロックで勝者は1人に決まる。
func (r *OrderGormRepository) AssignDriverIfUnclaimed(ctx context.Context, orderID int64, driverID int64) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND driver_id IS NULL AND delivery_status = ?", orderID, model.DeliveryStatusPending).
		Update("driver_id", driverID)

	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// 現在値がfromのときだけ進める。0行更新＝クライアントの見ていた状態が古い。
func (r *OrderGormRepository) UpdateDeliveryStatusIf(ctx context.Context, orderID int64, from model.DeliveryStatus, to model.DeliveryStatus) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND delivery_status = ?", orderID, from).
		Update("delivery_status", to)

	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *OrderGormRepository) UpdatePaymentStatusIf(ctx context.Context, orderID int64, from model.PaymentStatus, to model.PaymentStatus) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND payment_status = ?", orderID, from).
		Update("payment_status", to)

	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
