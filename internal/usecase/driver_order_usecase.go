package usecase

import (
	"context"
	"net/http"

	"fruitpack/internal/domain/model"
	repo "fruitpack/internal/repository"
)

// DriverOrderUsecase はドライバー側の注文操作。
// 進められるのは processing / shipped / delivered への1段ずつの前進だけ。
type DriverOrderUsecase struct {
	tx repo.TransactionManager
}

func NewDriverOrderUsecase(tx repo.TransactionManager) *DriverOrderUsecase {
	return &DriverOrderUsecase{tx: tx}
}

// ListAvailable は未割当のpending注文一覧（どのドライバーにも同じものが見える）。
func (u *DriverOrderUsecase) ListAvailable(ctx context.Context, userID int64) ([]OrderOutput, error) {
	if userID <= 0 {
		return []OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, err := r.Orders().ListAvailable(ctx)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		outs, err = buildOrderOutputs(ctx, r, orders)
		return err
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

// ListMyOrders は担当中の注文（未完了）。
func (u *DriverOrderUsecase) ListMyOrders(ctx context.Context, userID int64) ([]OrderOutput, error) {
	return u.listAssigned(ctx, userID, []model.DeliveryStatus{
		model.DeliveryStatusPending,
		model.DeliveryStatusProcessing,
		model.DeliveryStatusShipped,
		model.DeliveryStatusDelivered,
	})
}

// ListCompleted は配達し終えた注文。
func (u *DriverOrderUsecase) ListCompleted(ctx context.Context, userID int64) ([]OrderOutput, error) {
	return u.listAssigned(ctx, userID, []model.DeliveryStatus{
		model.DeliveryStatusCompleted,
	})
}

func (u *DriverOrderUsecase) listAssigned(ctx context.Context, userID int64, statuses []model.DeliveryStatus) ([]OrderOutput, error) {
	if userID <= 0 {
		return []OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		d, err := r.Drivers().FindByUserID(ctx, userID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "driver not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		orders, err := r.Orders().ListByDriverID(ctx, d.ID, statuses)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		outs, err = buildOrderOutputs(ctx, r, orders)
		return err
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

// UpdateStatus は担当ドライバーによる配送ステータスの前進。
// 飛び級は許さない：deliveredはshippedからだけ、shippedはprocessingからだけ。
// クライアントの見ていた状態が古ければ条件付きUPDATEが0行になって409。
func (u *DriverOrderUsecase) UpdateStatus(ctx context.Context, userID int64, orderID int64, status string) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	to := model.DeliveryStatus(status)
	switch to {
	case model.DeliveryStatusProcessing, model.DeliveryStatusShipped, model.DeliveryStatusDelivered:
		// OK
	default:
		return NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		d, err := r.Drivers().FindByUserID(ctx, userID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusForbidden, "forbidden")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		// 担当ドライバー以外は進められない
		if o.DriverID == nil || *o.DriverID != d.ID {
			return NewHTTPError(http.StatusForbidden, "order is not assigned to you")
		}

		if !o.DeliveryStatus.CanTransition(to) {
			return NewHTTPError(http.StatusConflict,
				"invalid transition from "+string(o.DeliveryStatus)+" to "+string(to))
		}

		ok, err := r.Orders().UpdateDeliveryStatusIf(ctx, orderID, o.DeliveryStatus, to)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !ok {
			// 読んでから書くまでの間に誰かが動かした
			return NewHTTPError(http.StatusConflict, "order state changed, refetch and retry")
		}

		return recordDeliveryEvent(ctx, r, orderID, userID, o.DeliveryStatus, to)
	})
}

func buildOrderOutputs(ctx context.Context, r repo.TxRepos, orders []model.Order) ([]OrderOutput, error) {
	outs := make([]OrderOutput, 0, len(orders))
	for _, o := range orders {
		items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
		if err != nil {
			return nil, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		outs = append(outs, toOrderOutput(o, items))
	}
	return outs, nil
}
