package repository

import (
	"context"
	"errors"

	"fruitpack/internal/domain/model"
	repo "fruitpack/internal/repository"

	"gorm.io/gorm"
)

type DriverGormRepository struct {
	db *gorm.DB
}

func NewDriverGormRepository(db *gorm.DB) *DriverGormRepository {
	return &DriverGormRepository{db: db}
}

func (r *DriverGormRepository) Create(ctx context.Context, driver model.Driver) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&driver).Error; err != nil {
		return 0, err
	}
	return driver.ID, nil
}

func (r *DriverGormRepository) FindByID(ctx context.Context, driverID int64) (model.Driver, error) {
	var d model.Driver
	err := r.db.WithContext(ctx).Where("id = ?", driverID).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Driver{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Driver{}, err
	}
	return d, nil
}

func (r *DriverGormRepository) FindByUserID(ctx context.Context, userID int64) (model.Driver, error) {
	var d model.Driver
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Driver{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Driver{}, err
	}
	return d, nil
}

func (r *DriverGormRepository) UpdateStatus(ctx context.Context, driverID int64, status model.DriverStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Driver{}).
		Where("id = ?", driverID).
		Update("status", status)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *DriverGormRepository) UpdateLocation(ctx context.Context, driverID int64, lat float64, lng float64) error {
	res := r.db.WithContext(ctx).Model(&model.Driver{}).
		Where("id = ?", driverID).
		Updates(map[string]interface{}{"latitude": lat, "longitude": lng})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
