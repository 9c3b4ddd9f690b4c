package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"fruitpack/internal/domain/model"
	infraRepo "fruitpack/internal/infra/repository"
	"fruitpack/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyRedirect(t *testing.T) {
	// ホスト型リダイレクトとディープリンクを同じ規則で判定する
	cases := []struct {
		url  string
		want usecase.RedirectResult
	}{
		{"https://api.fruitpack.test/payments/callback/payment-success?reference=FP-1", usecase.RedirectSettled},
		{"https://api.fruitpack.test/payment-cancel?reference=FP-1", usecase.RedirectAbandoned},
		{"fruitpack://payment-success", usecase.RedirectSettled},
		{"fruitpack://payment-cancel", usecase.RedirectAbandoned},
		{"https://checkout.paystack.test/3ds-challenge", usecase.RedirectPassThrough},
		{"about:blank", usecase.RedirectPassThrough},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, usecase.ClassifyRedirect(c.url), c.url)
	}
}

func newPaymentTestDeps() (*usecase.PaymentUsecase, *fakeStore, *infraRepo.CartMemoryStore, *fakeGateway) {
	store := newFakeStore()
	cart := infraRepo.NewCartMemoryStore()
	gw := newFakeGateway()
	uc := usecase.NewPaymentUsecase(store, cart, gw)
	return uc, store, cart, gw
}

func putUnpaidCardOrder(store *fakeStore, cart *infraRepo.CartMemoryStore) (int64, string) {
	const ref = "FP-CARD0001"
	orderID := store.putOrder(model.Order{
		OrderNumber:    ref,
		CustomerID:     10,
		DeliveryStatus: model.DeliveryStatusPending,
		PaymentStatus:  model.PaymentStatusUnpaid,
		PaymentMethod:  model.PaymentMethodCard,
		Total:          45,
	})
	// card注文のカートは決済完了まで残っている
	cart.Add(10, model.CartLine{ProductID: 1, Name: "Mango", UnitPrice: 20})
	return orderID, ref
}

func TestPaymentUsecase_Settle_MarksPaidAndClearsCart(t *testing.T) {
	ctx := context.Background()
	uc, store, cart, _ := newPaymentTestDeps()
	orderID, ref := putUnpaidCardOrder(store, cart)

	out, err := uc.Settle(ctx, ref)
	require.NoError(t, err)

	assert.Equal(t, string(model.PaymentStatusPaid), out.PaymentStatus)
	assert.Equal(t, string(usecase.RedirectSettled), out.Result)

	o := store.orders[orderID]
	assert.Equal(t, model.PaymentStatusPaid, o.PaymentStatus)
	// 入金確定で注文はprocessingへ進む
	assert.Equal(t, model.DeliveryStatusProcessing, o.DeliveryStatus)
	// カートはここで初めて空になる
	assert.Empty(t, cart.Lines(10))

	// payment_statusの変更履歴が残る
	require.Len(t, store.events, 1)
	assert.Equal(t, model.OrderEventPayment, store.events[0].Field)
	assert.Equal(t, string(model.PaymentStatusUnpaid), store.events[0].FromStatus)
	assert.Equal(t, string(model.PaymentStatusPaid), store.events[0].ToStatus)
}

func TestPaymentUsecase_Settle_Idempotent(t *testing.T) {
	ctx := context.Background()
	uc, store, cart, _ := newPaymentTestDeps()
	orderID, ref := putUnpaidCardOrder(store, cart)

	// コールバックとWebhookの両方が届くのは正常系
	out1, err := uc.Settle(ctx, ref)
	require.NoError(t, err)
	out2, err := uc.Settle(ctx, ref)
	require.NoError(t, err)

	assert.Equal(t, out1, out2)
	assert.Equal(t, model.PaymentStatusPaid, store.orders[orderID].PaymentStatus)
	// イベントは1回分だけ
	assert.Len(t, store.events, 1)
}

func TestPaymentUsecase_Abandon_KeepsOrderAndCart(t *testing.T) {
	ctx := context.Background()
	uc, store, cart, _ := newPaymentTestDeps()
	orderID, ref := putUnpaidCardOrder(store, cart)

	out, err := uc.Abandon(ctx, ref)
	require.NoError(t, err)

	assert.Equal(t, string(usecase.RedirectAbandoned), out.Result)
	assert.Equal(t, string(model.PaymentStatusUnpaid), out.PaymentStatus)

	// 注文はunpaidのまま、カートも無傷（同じ内容で再チェックアウトできる）
	assert.Equal(t, model.PaymentStatusUnpaid, store.orders[orderID].PaymentStatus)
	assert.Equal(t, model.DeliveryStatusPending, store.orders[orderID].DeliveryStatus)
	assert.Len(t, cart.Lines(10), 1)
}

func TestPaymentUsecase_HandleCallback_VerifiesBeforeSettling(t *testing.T) {
	ctx := context.Background()
	uc, store, cart, gw := newPaymentTestDeps()
	orderID, ref := putUnpaidCardOrder(store, cart)

	// リダイレクトは信用しない：verifyがsuccessのときだけ確定
	gw.verifyStatus[ref] = "success"

	out, err := uc.HandleCallback(ctx, ref)
	require.NoError(t, err)

	assert.Equal(t, []string{ref}, gw.verifyCalls)
	assert.Equal(t, string(usecase.RedirectSettled), out.Result)
	assert.Equal(t, model.PaymentStatusPaid, store.orders[orderID].PaymentStatus)
}

func TestPaymentUsecase_HandleCallback_VerifyNotSuccess_Abandons(t *testing.T) {
	ctx := context.Background()
	uc, store, cart, gw := newPaymentTestDeps()
	orderID, ref := putUnpaidCardOrder(store, cart)

	gw.verifyStatus[ref] = "abandoned"

	out, err := uc.HandleCallback(ctx, ref)
	require.NoError(t, err)

	assert.Equal(t, string(usecase.RedirectAbandoned), out.Result)
	assert.Equal(t, model.PaymentStatusUnpaid, store.orders[orderID].PaymentStatus)
	assert.Len(t, cart.Lines(10), 1)
}

func TestPaymentUsecase_HandleCallback_MissingReference(t *testing.T) {
	ctx := context.Background()
	uc, _, _, _ := newPaymentTestDeps()

	_, err := uc.HandleCallback(ctx, "  ")

	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Status)
}

func TestPaymentUsecase_HandleWebhook_IgnoresOtherEvents(t *testing.T) {
	ctx := context.Background()
	uc, store, cart, _ := newPaymentTestDeps()
	orderID, ref := putUnpaidCardOrder(store, cart)

	out, err := uc.HandleWebhook(ctx, "charge.dispute.create", ref)
	require.NoError(t, err)

	assert.Equal(t, string(usecase.RedirectPassThrough), out.Result)
	assert.Equal(t, model.PaymentStatusUnpaid, store.orders[orderID].PaymentStatus)

	// charge.successなら確定する
	_, err = uc.HandleWebhook(ctx, "charge.success", ref)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusPaid, store.orders[orderID].PaymentStatus)
}

func TestPaymentUsecase_Settle_UnknownReference(t *testing.T) {
	ctx := context.Background()
	uc, _, _, _ := newPaymentTestDeps()

	_, err := uc.Settle(ctx, "FP-NOPE")

	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Status)
}
