package domain

// Bill rates applied at order creation. Amounts are computed once and
// never touched again after the order row is inserted.
const (
	TaxRate           = 0.05
	ServiceChargeRate = 0.05
)

// Bill holds the monetary breakdown of an order.
type Bill struct {
	Subtotal      float64
	Tax           float64
	Discount      float64
	ServiceCharge float64
	Total         float64
}

// ComputeBill derives the invoice amounts from the cart lines:
// subtotal is the sum of quantity*price, tax and service charge are
// each 5% of the subtotal, discount is currently always zero.
func ComputeBill(items []OrderItem) Bill {
	var subtotal float64
	for _, it := range items {
		subtotal += float64(it.Quantity) * it.Price
	}

	b := Bill{
		Subtotal:      subtotal,
		Tax:           subtotal * TaxRate,
		Discount:      0,
		ServiceCharge: subtotal * ServiceChargeRate,
	}
	b.Total = b.Subtotal + b.Tax - b.Discount + b.ServiceCharge
	return b
}
