package usecase

import (
	"context"
	"net/http"

	"fruitpack/internal/domain/model"
	repo "fruitpack/internal/repository"
)

// DriverUsecase はドライバーの稼働状態と現在地。
type DriverUsecase struct {
	driverRepo repo.DriverRepository
}

func NewDriverUsecase(driverRepo repo.DriverRepository) *DriverUsecase {
	return &DriverUsecase{driverRepo: driverRepo}
}

type DriverOutput struct {
	ID        int64   `json:"id"`
	UserID    int64   `json:"user_id"`
	Status    string  `json:"status"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (u *DriverUsecase) GetMe(ctx context.Context, userID int64) (DriverOutput, error) {
	if userID <= 0 {
		return DriverOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	d, err := u.driverRepo.FindByUserID(ctx, userID)
	if err == repo.ErrNotFound {
		return DriverOutput{}, NewHTTPError(http.StatusNotFound, "driver not found")
	}
	if err != nil {
		return DriverOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return toDriverOutput(d), nil
}

// UpdateStatus は手動トグル。行き先は offline / available のみ。
// busy はクレーム承認と配達完了のイベントが動かすもので、手では触らせない。
func (u *DriverUsecase) UpdateStatus(ctx context.Context, userID int64, status string) (DriverOutput, error) {
	if userID <= 0 {
		return DriverOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	to := model.DriverStatus(status)
	if to != model.DriverStatusOffline && to != model.DriverStatusAvailable {
		return DriverOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	d, err := u.driverRepo.FindByUserID(ctx, userID)
	if err == repo.ErrNotFound {
		return DriverOutput{}, NewHTTPError(http.StatusNotFound, "driver not found")
	}
	if err != nil {
		return DriverOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	// 配達中はトグルで抜けられない
	if d.Status == model.DriverStatusBusy {
		return DriverOutput{}, NewHTTPError(http.StatusConflict, "driver is busy")
	}

	if err := u.driverRepo.UpdateStatus(ctx, d.ID, to); err != nil {
		return DriverOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	d.Status = to
	return toDriverOutput(d), nil
}

func (u *DriverUsecase) UpdateLocation(ctx context.Context, userID int64, lat float64, lng float64) (DriverOutput, error) {
	if userID <= 0 {
		return DriverOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return DriverOutput{}, NewHTTPError(http.StatusBadRequest, "invalid coordinates")
	}

	d, err := u.driverRepo.FindByUserID(ctx, userID)
	if err == repo.ErrNotFound {
		return DriverOutput{}, NewHTTPError(http.StatusNotFound, "driver not found")
	}
	if err != nil {
		return DriverOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.driverRepo.UpdateLocation(ctx, d.ID, lat, lng); err != nil {
		return DriverOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	d.Latitude = lat
	d.Longitude = lng
	return toDriverOutput(d), nil
}

func toDriverOutput(d model.Driver) DriverOutput {
	return DriverOutput{
		ID:        d.ID,
		UserID:    d.UserID,
		Status:    string(d.Status),
		Latitude:  d.Latitude,
		Longitude: d.Longitude,
	}
}
