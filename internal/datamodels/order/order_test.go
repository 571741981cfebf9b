package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{StatusProcessing, StatusShipped, true},
		{StatusProcessing, StatusDelivered, true},
		{StatusProcessing, StatusCancelled, true},
		{StatusShipped, StatusDelivered, true},
		{StatusShipped, StatusCancelled, true},
		{StatusShipped, StatusProcessing, false},
		{StatusDelivered, StatusCancelled, false},
		{StatusDelivered, StatusShipped, false},
		{StatusCancelled, StatusProcessing, false},
		{StatusCancelled, StatusShipped, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, CanTransition(c.from, c.to), "%s -> %s", c.from, c.to)
	}
}

func TestSellerCanTransition(t *testing.T) {
	assert.True(t, SellerCanTransition(StatusProcessing, StatusShipped))
	assert.True(t, SellerCanTransition(StatusShipped, StatusDelivered))

	// 卖家不能跳级、不能取消
	assert.False(t, SellerCanTransition(StatusProcessing, StatusDelivered))
	assert.False(t, SellerCanTransition(StatusProcessing, StatusCancelled))
	assert.False(t, SellerCanTransition(StatusShipped, StatusCancelled))
	assert.False(t, SellerCanTransition(StatusDelivered, StatusShipped))
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(StatusProcessing))
	assert.False(t, IsTerminal(StatusShipped))
	assert.True(t, IsTerminal(StatusDelivered))
	assert.True(t, IsTerminal(StatusCancelled))
}

func TestValidPaymentMethod(t *testing.T) {
	assert.True(t, ValidPaymentMethod(PaymentPix))
	assert.True(t, ValidPaymentMethod(PaymentCard))
	assert.False(t, ValidPaymentMethod("boleto"))
	assert.False(t, ValidPaymentMethod(""))
}
