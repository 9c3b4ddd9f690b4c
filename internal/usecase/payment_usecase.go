package usecase

import (
	"context"
	"net/http"
	"strings"

	"fruitpack/internal/domain/model"
	repo "fruitpack/internal/repository"
)

// 決済リダイレクトの分類結果。
type RedirectResult string

const (
	RedirectSettled   RedirectResult = "settled"
	RedirectAbandoned RedirectResult = "abandoned"

	// 通常のページ遷移。横取りせずそのまま通す。
	RedirectPassThrough RedirectResult = "pass_through"
)

// ClassifyRedirect は決済ページの遷移先URLを見て完了/中断/素通しを判定する。
// ホスト型リダイレクトとディープリンク（fruitpack://…）の両方を同じ規則で扱う。
func ClassifyRedirect(url string) RedirectResult {
	if strings.Contains(url, "payment-success") {
		return RedirectSettled
	}
	if strings.Contains(url, "payment-cancel") {
		return RedirectAbandoned
	}
	return RedirectPassThrough
}

// PaymentUsecase は決済プロバイダからの戻り（リダイレクト/Webhook）を
// 注文の支払いステータスに反映する。
type PaymentUsecase struct {
	tx       repo.TransactionManager
	cart     repo.CartStore
	payments PaymentGateway
}

func NewPaymentUsecase(tx repo.TransactionManager, cart repo.CartStore, payments PaymentGateway) *PaymentUsecase {
	return &PaymentUsecase{tx: tx, cart: cart, payments: payments}
}

type PaymentResultOutput struct {
	OrderID       int64  `json:"order_id"`
	OrderNumber   string `json:"order_number"`
	PaymentStatus string `json:"payment_status"`
	Result        string `json:"result"`
}

// HandleCallback はPaystackのリダイレクトコールバック。
// リダイレクトは信用せず、必ずverifyで最終状態を確認してから反映する。
func (u *PaymentUsecase) HandleCallback(ctx context.Context, reference string) (PaymentResultOutput, error) {
	if strings.TrimSpace(reference) == "" {
		return PaymentResultOutput{}, NewHTTPError(http.StatusBadRequest, "missing reference")
	}

	status, err := u.payments.Verify(ctx, reference)
	if err != nil {
		return PaymentResultOutput{}, NewHTTPError(http.StatusBadGateway, "payment provider error")
	}

	if status == "success" {
		return u.Settle(ctx, reference)
	}
	return u.Abandon(ctx, reference)
}

// HandleWebhook はPaystackのWebhook。charge.success以外は何もしない。
func (u *PaymentUsecase) HandleWebhook(ctx context.Context, event string, reference string) (PaymentResultOutput, error) {
	if event != "charge.success" {
		return PaymentResultOutput{Result: string(RedirectPassThrough)}, nil
	}
	return u.Settle(ctx, reference)
}

// Settle は入金確定。同じreferenceに2回届いても結果は1回と同じ
// （既にpaidなら何もしないで成功を返す）。
// 確定時にだけカートを空にし、注文をprocessingへ進める。
func (u *PaymentUsecase) Settle(ctx context.Context, reference string) (PaymentResultOutput, error) {
	var out PaymentResultOutput
	var customerID int64

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByOrderNumber(ctx, reference)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "order not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = PaymentResultOutput{
			OrderID:       o.ID,
			OrderNumber:   o.OrderNumber,
			PaymentStatus: string(model.PaymentStatusPaid),
			Result:        string(RedirectSettled),
		}

		// 冪等：二重リダイレクトや「コールバック＋Webhook」の重複はここで吸収
		if o.PaymentStatus == model.PaymentStatusPaid {
			return nil
		}

		ok, err := r.Orders().UpdatePaymentStatusIf(ctx, o.ID, model.PaymentStatusUnpaid, model.PaymentStatusPaid)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !ok {
			// 並行するSettleが先に勝った。観測結果は同じなので成功扱い。
			return nil
		}

		err = r.Events().Create(ctx, model.OrderEvent{
			OrderID:     o.ID,
			ActorUserID: o.CustomerID,
			Field:       model.OrderEventPayment,
			FromStatus:  string(model.PaymentStatusUnpaid),
			ToStatus:    string(model.PaymentStatusPaid),
			CreatedAt:   o.UpdatedAt,
		})
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		// 入金確定＝注文受理。pendingならprocessingへ（バックエンド内部の遷移）。
		if o.DeliveryStatus == model.DeliveryStatusPending {
			if _, err := r.Orders().UpdateDeliveryStatusIf(ctx, o.ID, model.DeliveryStatusPending, model.DeliveryStatusProcessing); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}

		customerID = o.CustomerID
		return nil
	})

	if err != nil {
		return PaymentResultOutput{}, err
	}

	// 確定したのでカートを手放してよい
	if customerID > 0 {
		u.cart.Clear(customerID)
	}
	return out, nil
}

// Abandon は決済中断。注文はunpaidのまま残り、カートには触らない
// （顧客は同じカート内容でチェックアウトに戻れる）。
func (u *PaymentUsecase) Abandon(ctx context.Context, reference string) (PaymentResultOutput, error) {
	var out PaymentResultOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByOrderNumber(ctx, reference)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "order not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = PaymentResultOutput{
			OrderID:       o.ID,
			OrderNumber:   o.OrderNumber,
			PaymentStatus: string(o.PaymentStatus),
			Result:        string(RedirectAbandoned),
		}
		return nil
	})

	if err != nil {
		return PaymentResultOutput{}, err
	}
	return out, nil
}
