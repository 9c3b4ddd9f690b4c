package usecase

import (
	"context"
	"net/http"
	"time"

	"fruitpack/internal/domain/model"
	repo "fruitpack/internal/repository"
)

// OrderUsecase は顧客側の注文操作。
// 配送ステータスを進める権限は confirm-delivery（delivered→completed）だけ。
type OrderUsecase struct {
	tx repo.TransactionManager
}

func NewOrderUsecase(tx repo.TransactionManager) *OrderUsecase {
	return &OrderUsecase{tx: tx}
}

type OrderItemOutput struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int64  `json:"quantity"`
}

type TimelineStage struct {
	Key     string `json:"key"`
	Label   string `json:"label"`
	Reached bool   `json:"reached"`
}

type OrderOutput struct {
	ID                   int64             `json:"id"`
	OrderNumber          string            `json:"order_number"`
	CustomerID           int64             `json:"customer_id"`
	DriverID             *int64            `json:"driver_id"`
	DeliveryStatus       string            `json:"delivery_status"`
	PaymentStatus        string            `json:"payment_status"`
	PaymentMethod        string            `json:"payment_method"`
	Total                int64             `json:"total"`
	Email                string            `json:"email"`
	Phone                string            `json:"phone"`
	Address              string            `json:"address"`
	DestinationLatitude  float64           `json:"destination_latitude"`
	DestinationLongitude float64           `json:"destination_longitude"`
	CreatedAt            time.Time         `json:"created"`
	Items                []OrderItemOutput `json:"items"`
	Timeline             []TimelineStage   `json:"timeline"`
}

var timelineStages = []struct {
	status model.DeliveryStatus
	label  string
}{
	{model.DeliveryStatusPending, "Ordered"},
	{model.DeliveryStatusProcessing, "Processing"},
	{model.DeliveryStatusShipped, "Shipped"},
	{model.DeliveryStatusDelivered, "Delivered"},
	{model.DeliveryStatusCompleted, "Completed"},
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64) ([]OrderOutput, error) {
	if userID <= 0 {
		return []OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, _, err := r.Orders().ListByCustomerID(ctx, userID, 1, 50)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			outs = append(outs, toOrderOutput(o, items))
		}
		return nil
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

// GetOrderDetail は注文詳細。
// 顧客は自分の注文だけ。ドライバーは担当注文と未割当pendingだけ見られる。
func (u *OrderUsecase) GetOrderDetail(ctx context.Context, userID int64, role model.Role, orderID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if !canViewOrder(ctx, r, userID, role, o) {
			//他人の注文は「存在しない扱い」にする
			return NewHTTPError(http.StatusNotFound, "not found")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// ConfirmDelivery は顧客による受取確認（delivered → completed）。
// 顧客が進められる唯一の遷移で、現在値が delivered のときだけ通る。
func (u *OrderUsecase) ConfirmDelivery(ctx context.Context, userID int64, orderID int64) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if o.CustomerID != userID {
			return NewHTTPError(http.StatusNotFound, "not found")
		}

		// 条件付きUPDATE。0行＝見えていた状態が古い
		ok, err := r.Orders().UpdateDeliveryStatusIf(ctx, orderID, model.DeliveryStatusDelivered, model.DeliveryStatusCompleted)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !ok {
			return NewHTTPError(http.StatusConflict, "confirm delivery is only allowed when order is delivered")
		}

		if err := recordDeliveryEvent(ctx, r, orderID, userID, model.DeliveryStatusDelivered, model.DeliveryStatusCompleted); err != nil {
			return err
		}

		// 配達完了でドライバーを解放する
		return releaseDriver(ctx, r, o.DriverID)
	})
}

// Cancel は顧客によるキャンセル。終端以外からいつでも入れる。
// 在庫を戻し、担当ドライバーがいれば解放する。
func (u *OrderUsecase) Cancel(ctx context.Context, userID int64, orderID int64) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if o.CustomerID != userID {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if o.DeliveryStatus.IsTerminal() {
			return NewHTTPError(http.StatusConflict, "order already "+string(o.DeliveryStatus))
		}

		ok, err := r.Orders().UpdateDeliveryStatusIf(ctx, orderID, o.DeliveryStatus, model.DeliveryStatusCancelled)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !ok {
			return NewHTTPError(http.StatusConflict, "order state changed, refetch and retry")
		}

		// 在庫戻し
		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		for _, it := range items {
			if err := r.Inventory().IncreaseStock(ctx, it.ProductID, it.Quantity); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}

		if err := recordDeliveryEvent(ctx, r, orderID, userID, o.DeliveryStatus, model.DeliveryStatusCancelled); err != nil {
			return err
		}

		return releaseDriver(ctx, r, o.DriverID)
	})
}

func canViewOrder(ctx context.Context, r repo.TxRepos, userID int64, role model.Role, o model.Order) bool {
	if o.CustomerID == userID {
		return true
	}
	if role != model.RoleDriver {
		return false
	}

	d, err := r.Drivers().FindByUserID(ctx, userID)
	if err != nil {
		return false
	}
	if o.DriverID != nil && *o.DriverID == d.ID {
		return true
	}
	// 未割当のpendingは「受けられる注文」として誰でも閲覧可
	return o.DriverID == nil && o.DeliveryStatus == model.DeliveryStatusPending
}

func recordDeliveryEvent(ctx context.Context, r repo.TxRepos, orderID int64, actorUserID int64, from model.DeliveryStatus, to model.DeliveryStatus) error {
	err := r.Events().Create(ctx, model.OrderEvent{
		OrderID:     orderID,
		ActorUserID: actorUserID,
		Field:       model.OrderEventDelivery,
		FromStatus:  string(from),
		ToStatus:    string(to),
		CreatedAt:   time.Now(),
	})
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// 担当ドライバーをavailableへ戻す。未割当なら何もしない。
func releaseDriver(ctx context.Context, r repo.TxRepos, driverID *int64) error {
	if driverID == nil {
		return nil
	}
	if err := r.Drivers().UpdateStatus(ctx, *driverID, model.DriverStatusAvailable); err != nil && err != repo.ErrNotFound {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ProductID: it.ProductID,
			Name:      it.ProductNameSnapshot,
			Price:     it.UnitPriceSnapshot,
			Quantity:  it.Quantity,
		})
	}

	// 現在ステータスのランク以下のステージを「到達済み」にする
	timeline := make([]TimelineStage, 0, len(timelineStages))
	for _, st := range timelineStages {
		timeline = append(timeline, TimelineStage{
			Key:     string(st.status),
			Label:   st.label,
			Reached: o.DeliveryStatus.Reached(st.status),
		})
	}

	return OrderOutput{
		ID:                   o.ID,
		OrderNumber:          o.OrderNumber,
		CustomerID:           o.CustomerID,
		DriverID:             o.DriverID,
		DeliveryStatus:       string(o.DeliveryStatus),
		PaymentStatus:        string(o.PaymentStatus),
		PaymentMethod:        string(o.PaymentMethod),
		Total:                o.Total,
		Email:                o.Email,
		Phone:                o.Phone,
		Address:              o.Address,
		DestinationLatitude:  o.DestinationLatitude,
		DestinationLongitude: o.DestinationLongitude,
		CreatedAt:            o.CreatedAt,
		Items:                outItems,
		Timeline:             timeline,
	}
}
