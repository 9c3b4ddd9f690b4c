package usecase

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"fruitpack/internal/domain/model"
	repo "fruitpack/internal/repository"

	"fruitpack/internal/infra/paystack"

	"github.com/google/uuid"
)

// PaymentGateway は決済プロバイダ（Paystack）への窓口。
type PaymentGateway interface {
	Initialize(ctx context.Context, in paystack.InitializeInput) (paystack.InitializeOutput, error)
	Verify(ctx context.Context, reference string) (string, error)
}

// CheckoutUsecase はカートを注文に変換する。
// 支払い方法で完了経路が分岐する：cashは即確定、cardは決済完了待ち。
type CheckoutUsecase struct {
	tx          repo.TransactionManager
	cart        repo.CartStore
	payments    PaymentGateway
	callbackURL string

	// 同一ユーザーの二重送信ガード（ボタン連打で注文が2つできるのを防ぐ）
	mu       sync.Mutex
	inflight map[int64]bool
}

func NewCheckoutUsecase(tx repo.TransactionManager, cart repo.CartStore, payments PaymentGateway, callbackURL string) *CheckoutUsecase {
	return &CheckoutUsecase{
		tx:          tx,
		cart:        cart,
		payments:    payments,
		callbackURL: callbackURL,
		inflight:    make(map[int64]bool),
	}
}

type CheckoutInput struct {
	Email         string
	Address       string
	Phone         string
	PaymentMethod string
	Latitude      *float64
	Longitude     *float64
}

type CheckoutOutput struct {
	Order OrderOutput `json:"order"`

	// card のときだけ入る
	PaymentURL string `json:"payment_url,omitempty"`
	AccessCode string `json:"access_code,omitempty"`
	Reference  string `json:"reference,omitempty"`
}

// Submit はチェックアウト本体。
// バリデーション違反は一切の副作用なしで返す（ネットワークもDBも触らない）。
// カートを消すのは確定パスだけ：cash成功、またはcard決済完了（PaymentUsecase側）。
func (u *CheckoutUsecase) Submit(ctx context.Context, userID int64, in CheckoutInput) (CheckoutOutput, error) {
	if userID <= 0 {
		return CheckoutOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	if err := validateCheckoutInput(in); err != nil {
		return CheckoutOutput{}, err
	}

	// 二重送信ガード（1ユーザー1リクエスト）
	if !u.begin(userID) {
		return CheckoutOutput{}, NewHTTPError(http.StatusConflict, "checkout already in progress")
	}
	defer u.end(userID)

	lines := u.cart.Lines(userID)
	if len(lines) == 0 {
		return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "cart empty")
	}

	method := model.PaymentMethod(in.PaymentMethod)

	var created model.Order
	var createdItems []model.OrderItem

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 明細はクライアントのカートをスナップショット、金額は商品マスタから再計算
		// （クライアント側の合計は参考値で、信用しない）
		orderItems := make([]model.OrderItem, 0, len(lines))
		var total int64 = 0
		now := time.Now()

		for _, l := range lines {
			p, err := r.Products().FindByID(ctx, l.ProductID)
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusBadRequest, "invalid product in cart")
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !p.IsActive {
				return NewHTTPError(http.StatusBadRequest, "invalid product in cart")
			}

			// 在庫が足りるときだけ減算
			ok, err := r.Inventory().DecreaseStockIfEnough(ctx, p.ID, l.Quantity)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !ok {
				return NewHTTPError(http.StatusBadRequest, "out of stock: "+p.Name)
			}

			orderItems = append(orderItems, model.OrderItem{
				ProductID:           p.ID,
				ProductNameSnapshot: p.Name,
				UnitPriceSnapshot:   p.Price,
				Quantity:            l.Quantity,
				CreatedAt:           now,
			})
			total += p.Price * l.Quantity
		}

		order := model.Order{
			OrderNumber:          newOrderNumber(),
			CustomerID:           userID,
			DeliveryStatus:       model.DeliveryStatusPending,
			PaymentStatus:        model.PaymentStatusUnpaid,
			PaymentMethod:        method,
			Total:                total,
			Email:                strings.TrimSpace(in.Email),
			Phone:                strings.TrimSpace(in.Phone),
			Address:              strings.TrimSpace(in.Address),
			DestinationLatitude:  *in.Latitude,
			DestinationLongitude: *in.Longitude,
			CreatedAt:            now,
			UpdatedAt:            now,
		}

		orderID, err := r.Orders().Create(ctx, order)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.OrderItems().CreateBulk(ctx, orderID, orderItems); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		order.ID = orderID
		created = order
		createdItems = orderItems
		return nil
	})
	if err != nil {
		// 失敗時はカートを消さない（再入力なしでリトライできる）
		return CheckoutOutput{}, err
	}

	out := CheckoutOutput{Order: toOrderOutput(created, createdItems)}

	if method == model.PaymentMethodCash {
		// cashは即確定扱い。ここで初めてカートを空にする。
		u.cart.Clear(userID)
		return out, nil
	}

	// card：注文は unpaid のまま残し、決済トランザクションを開く。
	// カートは決済完了（PaymentSettled）まで保持する。
	init, err := u.payments.Initialize(ctx, paystack.InitializeInput{
		Email:       created.Email,
		AmountCents: created.Total,
		Reference:   created.OrderNumber,
		CallbackURL: u.callbackURL,
	})
	if err != nil {
		// 注文行は残っているので、決済だけ後からやり直せる
		return CheckoutOutput{}, NewHTTPError(http.StatusBadGateway, "payment provider error")
	}

	out.PaymentURL = init.AuthorizationURL
	out.AccessCode = init.AccessCode
	out.Reference = init.Reference
	return out, nil
}

func (u *CheckoutUsecase) begin(userID int64) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.inflight[userID] {
		return false
	}
	u.inflight[userID] = true
	return true
}

func (u *CheckoutUsecase) end(userID int64) {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.inflight, userID)
}

// 欠けている項目を名前で返す。ネットワーク呼び出し前に落とす。
func validateCheckoutInput(in CheckoutInput) error {
	missing := make([]string, 0, 3)
	if strings.TrimSpace(in.Email) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(in.Address) == "" {
		missing = append(missing, "address")
	}
	if strings.TrimSpace(in.Phone) == "" {
		missing = append(missing, "phone")
	}
	if len(missing) > 0 {
		return NewHTTPError(http.StatusBadRequest, "missing required fields: "+strings.Join(missing, ", "))
	}

	if !model.PaymentMethod(in.PaymentMethod).Valid() {
		return NewHTTPError(http.StatusBadRequest, "invalid payment_method")
	}

	if in.Latitude == nil || in.Longitude == nil {
		return NewHTTPError(http.StatusBadRequest, "missing delivery location")
	}

	return nil
}

// 注文番号（兼Paystackのreference）。例：FP-1A2B3C4D
func newOrderNumber() string {
	id := uuid.NewString()
	return "FP-" + strings.ToUpper(strings.ReplaceAll(id, "-", "")[:8])
}
