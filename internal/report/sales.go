// Package report computes the admin sales figures from order history.
package report

import "tablepay/internal/domain"

// SalesSummary is the day's takings as shown on the admin dashboard.
type SalesSummary struct {
	TotalSales         float64 `json:"total_sales"`
	TotalOrders        int     `json:"total_orders"`
	AverageOrderValue  float64 `json:"average_order_value"`
	CashPayments       float64 `json:"cash_payments"`
	CardPayments       float64 `json:"card_payments"`
	UPIPayments        float64 `json:"upi_payments"`
	TotalTax           float64 `json:"total_tax"`
	TotalServiceCharge float64 `json:"total_service_charge"`
}

// Summarize folds a list of orders into the sales figures. Pure and
// stateless; callers pass whatever slice of history they want reported.
func Summarize(orders []domain.Order) SalesSummary {
	var s SalesSummary
	for _, o := range orders {
		s.TotalSales += o.Total
		s.TotalOrders++
		s.TotalTax += o.Tax
		s.TotalServiceCharge += o.ServiceCharge

		switch o.PaymentMode {
		case domain.PaymentCash:
			s.CashPayments += o.Total
		case domain.PaymentCard:
			s.CardPayments += o.Total
		case domain.PaymentUPI:
			s.UPIPayments += o.Total
		}
	}
	if s.TotalOrders > 0 {
		s.AverageOrderValue = s.TotalSales / float64(s.TotalOrders)
	}
	return s
}
