package report

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tablepay/internal/domain"
)

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	assert.Zero(t, s.TotalOrders)
	assert.Zero(t, s.TotalSales)
	assert.Zero(t, s.AverageOrderValue)
}

func TestSummarize(t *testing.T) {
	orders := []domain.Order{
		{Total: 176, Tax: 8, ServiceCharge: 8, PaymentMode: domain.PaymentCash},
		{Total: 330, Tax: 15, ServiceCharge: 15, PaymentMode: domain.PaymentCard},
		{Total: 110, Tax: 5, ServiceCharge: 5, PaymentMode: domain.PaymentUPI},
		{Total: 224, Tax: 10, ServiceCharge: 10, PaymentMode: domain.PaymentCash},
	}

	s := Summarize(orders)
	assert.Equal(t, 840.0, s.TotalSales)
	assert.Equal(t, 4, s.TotalOrders)
	assert.Equal(t, 210.0, s.AverageOrderValue)
	assert.Equal(t, 400.0, s.CashPayments)
	assert.Equal(t, 330.0, s.CardPayments)
	assert.Equal(t, 110.0, s.UPIPayments)
	assert.Equal(t, 38.0, s.TotalTax)
	assert.Equal(t, 38.0, s.TotalServiceCharge)
}
