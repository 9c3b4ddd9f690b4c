package repository

import (
	"context"
	"errors"

	"fruitpack/internal/domain/model"
	repo "fruitpack/internal/repository"

	"gorm.io/gorm"
)

type ClaimGormRepository struct {
	db *gorm.DB
}

func NewClaimGormRepository(db *gorm.DB) *ClaimGormRepository {
	return &ClaimGormRepository{db: db}
}

func (r *ClaimGormRepository) Create(ctx context.Context, claim model.Claim) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&claim).Error; err != nil {
		return 0, err
	}
	return claim.ID, nil
}

func (r *ClaimGormRepository) ListByDriverID(ctx context.Context, driverID int64, source model.ClaimSource) ([]model.Claim, error) {
	var items []model.Claim
	err := r.db.WithContext(ctx).
		Where("driver_id = ? AND source = ?", driverID, source).
		Order("id desc").
		Find(&items).Error
	if err != nil {
		return []model.Claim{}, err
	}
	return items, nil
}

func (r *ClaimGormRepository) FindApprovedByOrderID(ctx context.Context, orderID int64) (model.Claim, error) {
	var c model.Claim
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND status = ?", orderID, model.ClaimStatusApproved).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Claim{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Claim{}, err
	}
	return c, nil
}
