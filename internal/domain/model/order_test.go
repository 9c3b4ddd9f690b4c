package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeliveryStatus_Rank(t *testing.T) {
	assert.Equal(t, 0, DeliveryStatusPending.Rank())
	assert.Equal(t, 1, DeliveryStatusProcessing.Rank())
	assert.Equal(t, 2, DeliveryStatusShipped.Rank())
	assert.Equal(t, 3, DeliveryStatusDelivered.Rank())
	assert.Equal(t, 4, DeliveryStatusCompleted.Rank())

	// cancelledと未知の値はタイムラインに乗らない
	assert.Equal(t, -1, DeliveryStatusCancelled.Rank())
	assert.Equal(t, -1, DeliveryStatus("bogus").Rank())
}

func TestDeliveryStatus_CanTransition_ForwardOnly(t *testing.T) {
	// 前進は1段ずつだけ
	cases := []struct {
		from DeliveryStatus
		to   DeliveryStatus
		ok   bool
	}{
		{DeliveryStatusPending, DeliveryStatusProcessing, true},
		{DeliveryStatusProcessing, DeliveryStatusShipped, true},
		{DeliveryStatusShipped, DeliveryStatusDelivered, true},
		{DeliveryStatusDelivered, DeliveryStatusCompleted, true},

		// 飛び級は不可
		{DeliveryStatusPending, DeliveryStatusShipped, false},
		{DeliveryStatusPending, DeliveryStatusDelivered, false},
		{DeliveryStatusProcessing, DeliveryStatusDelivered, false},
		{DeliveryStatusShipped, DeliveryStatusCompleted, false},

		// 後退も不可
		{DeliveryStatusShipped, DeliveryStatusProcessing, false},
		{DeliveryStatusCompleted, DeliveryStatusDelivered, false},

		// 同一ステータスへの遷移も不可
		{DeliveryStatusShipped, DeliveryStatusShipped, false},
	}

	for _, c := range cases {
		assert.Equal(t, c.ok, c.from.CanTransition(c.to), "%s -> %s", c.from, c.to)
	}
}

func TestDeliveryStatus_CanTransition_Cancelled(t *testing.T) {
	// cancelledへは終端以外ならどこからでも
	assert.True(t, DeliveryStatusPending.CanTransition(DeliveryStatusCancelled))
	assert.True(t, DeliveryStatusProcessing.CanTransition(DeliveryStatusCancelled))
	assert.True(t, DeliveryStatusShipped.CanTransition(DeliveryStatusCancelled))
	assert.True(t, DeliveryStatusDelivered.CanTransition(DeliveryStatusCancelled))

	// 終端からは出られない
	assert.False(t, DeliveryStatusCompleted.CanTransition(DeliveryStatusCancelled))
	assert.False(t, DeliveryStatusCancelled.CanTransition(DeliveryStatusCancelled))
	assert.False(t, DeliveryStatusCancelled.CanTransition(DeliveryStatusProcessing))
}

func TestDeliveryStatus_Reached(t *testing.T) {
	// shippedまで進んだ注文：pending/processing/shippedは到達済み
	s := DeliveryStatusShipped
	assert.True(t, s.Reached(DeliveryStatusPending))
	assert.True(t, s.Reached(DeliveryStatusProcessing))
	assert.True(t, s.Reached(DeliveryStatusShipped))
	assert.False(t, s.Reached(DeliveryStatusDelivered))
	assert.False(t, s.Reached(DeliveryStatusCompleted))

	// completedなら5段階すべて到達済み
	for _, st := range deliveryStatusOrder {
		assert.True(t, DeliveryStatusCompleted.Reached(st), string(st))
	}

	// cancelledはどのステージにも到達しない
	assert.False(t, DeliveryStatusCancelled.Reached(DeliveryStatusPending))
}

func TestDeliveryStatus_IsTerminal(t *testing.T) {
	assert.True(t, DeliveryStatusCompleted.IsTerminal())
	assert.True(t, DeliveryStatusCancelled.IsTerminal())
	assert.False(t, DeliveryStatusPending.IsTerminal())
	assert.False(t, DeliveryStatusDelivered.IsTerminal())
}

func TestPaymentMethod_Valid(t *testing.T) {
	assert.True(t, PaymentMethodCash.Valid())
	assert.True(t, PaymentMethodCard.Valid())
	assert.False(t, PaymentMethod("paypal").Valid())
	assert.False(t, PaymentMethod("").Valid())
}
