package usecase

import (
	"context"
	"net/http"
	"time"

	"fruitpack/internal/domain/model"
	repo "fruitpack/internal/repository"
)

// ClaimUsecase は「どのドライバーがこの注文を運ぶか」の調停。
// 勝者を決めるのは driver_id への条件付きUPDATE（未割当のときだけ書ける）1本で、
// 同じ注文に同時に何人来ても承認されるのは必ず1人。
type ClaimUsecase struct {
	tx repo.TransactionManager
}

func NewClaimUsecase(tx repo.TransactionManager) *ClaimUsecase {
	return &ClaimUsecase{tx: tx}
}

type ClaimOutput struct {
	ID           int64     `json:"id"`
	OrderID      int64     `json:"order_id"`
	DriverID     int64     `json:"driver_id"`
	Status       string    `json:"status"`
	Source       string    `json:"source"`
	RejectReason string    `json:"reject_reason,omitempty"`
	CreatedAt    time.Time `json:"created"`
}

// ClaimOrder はドライバー自身によるクレーム。
// 負けた側にも rejected のClaim行を残し、already_claimed を409で返す
// （リトライ可能な通知であって致命的エラーではない）。
func (u *ClaimUsecase) ClaimOrder(ctx context.Context, userID int64, driverID int64, orderID int64) (ClaimOutput, error) {
	return u.claim(ctx, userID, driverID, orderID, model.ClaimSourceSelf)
}

// SystemAssign はバックエンドによる自動割当。
// 排他の仕組みは自己クレームと同一で、既に誰かのものなら負ける。
// 割当のトリガー（近傍探索など）はこのコアの外の話。
func (u *ClaimUsecase) SystemAssign(ctx context.Context, orderID int64, driverID int64) (ClaimOutput, error) {
	var out ClaimOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		d, err := r.Drivers().FindByID(ctx, driverID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "driver not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		res, err := u.arbitrate(ctx, r, 0, d, orderID, model.ClaimSourceSystem)
		if err != nil {
			return err
		}
		out = res
		return nil
	})

	if err != nil {
		return ClaimOutput{}, err
	}
	if out.Status == string(model.ClaimStatusRejected) {
		return ClaimOutput{}, NewHTTPError(http.StatusConflict, "already_claimed")
	}
	return out, nil
}

func (u *ClaimUsecase) claim(ctx context.Context, userID int64, driverID int64, orderID int64, source model.ClaimSource) (ClaimOutput, error) {
	if userID <= 0 {
		return ClaimOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if driverID <= 0 || orderID <= 0 {
		return ClaimOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out ClaimOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		d, err := r.Drivers().FindByID(ctx, driverID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "driver not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		// 他人のドライバープロフィールでは申請できない
		if d.UserID != userID {
			return NewHTTPError(http.StatusForbidden, "forbidden")
		}

		res, err := u.arbitrate(ctx, r, userID, d, orderID, source)
		if err != nil {
			return err
		}
		out = res
		return nil
	})

	if err != nil {
		return ClaimOutput{}, err
	}
	if out.Status == string(model.ClaimStatusRejected) {
		return ClaimOutput{}, NewHTTPError(http.StatusConflict, "already_claimed")
	}
	return out, nil
}

// arbitrate が調停の本体。クライアントは勝敗を決めない、ここが決める。
func (u *ClaimUsecase) arbitrate(ctx context.Context, r repo.TxRepos, actorUserID int64, d model.Driver, orderID int64, source model.ClaimSource) (ClaimOutput, error) {
	o, err := r.Orders().FindByID(ctx, orderID)
	if err == repo.ErrNotFound {
		return ClaimOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return ClaimOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if o.DeliveryStatus != model.DeliveryStatusPending {
		return ClaimOutput{}, NewHTTPError(http.StatusConflict, "order is not claimable")
	}

	// 「未割当のときだけ割り当てる」CAS。勝者はここで1人に決まる。
	won, err := r.Orders().AssignDriverIfUnclaimed(ctx, orderID, d.ID)
	if err != nil {
		return ClaimOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	now := time.Now()
	claim := model.Claim{
		OrderID:   orderID,
		DriverID:  d.ID,
		Source:    source,
		CreatedAt: now,
	}

	if !won {
		// 負けの記録もコミットしたいので、ここではエラーを返さない
		// （Tx関数がエラーを返すとrejected行ごとロールバックされてしまう）。
		// 409は呼び出し元がコミット後に返す。
		claim.Status = model.ClaimStatusRejected
		claim.RejectReason = "already_claimed"
		claimID, err := r.Claims().Create(ctx, claim)
		if err != nil {
			return ClaimOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		claim.ID = claimID
		return toClaimOutput(claim), nil
	}

	claim.Status = model.ClaimStatusApproved
	claimID, err := r.Claims().Create(ctx, claim)
	if err != nil {
		return ClaimOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	// 仕事を取ったドライバーはbusyへ
	if err := r.Drivers().UpdateStatus(ctx, d.ID, model.DriverStatusBusy); err != nil {
		return ClaimOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	claim.ID = claimID
	return toClaimOutput(claim), nil
}

// ListMyClaims はドライバー自身の申請履歴。
func (u *ClaimUsecase) ListMyClaims(ctx context.Context, userID int64) ([]ClaimOutput, error) {
	return u.listClaims(ctx, userID, model.ClaimSourceSelf)
}

// ListSystemClaims はシステム割当の読み取り専用リスト。
func (u *ClaimUsecase) ListSystemClaims(ctx context.Context, userID int64) ([]ClaimOutput, error) {
	return u.listClaims(ctx, userID, model.ClaimSourceSystem)
}

func (u *ClaimUsecase) listClaims(ctx context.Context, userID int64, source model.ClaimSource) ([]ClaimOutput, error) {
	if userID <= 0 {
		return []ClaimOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var outs []ClaimOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		d, err := r.Drivers().FindByUserID(ctx, userID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "driver not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		claims, err := r.Claims().ListByDriverID(ctx, d.ID, source)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		outs = make([]ClaimOutput, 0, len(claims))
		for _, c := range claims {
			outs = append(outs, toClaimOutput(c))
		}
		return nil
	})

	if err != nil {
		return []ClaimOutput{}, err
	}
	return outs, nil
}

func toClaimOutput(c model.Claim) ClaimOutput {
	return ClaimOutput{
		ID:           c.ID,
		OrderID:      c.OrderID,
		DriverID:     c.DriverID,
		Status:       string(c.Status),
		Source:       string(c.Source),
		RejectReason: c.RejectReason,
		CreatedAt:    c.CreatedAt,
	}
}
