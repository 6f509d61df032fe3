package domain

// CheckoutSummary is the priced, presentation-ready view of a cart.
type CheckoutSummary struct {
	CartID          string
	CustomerID      string
	CustomerType    CustomerType
	ShippingMethod  ShippingMethod
	ShippingAddress Address
	Lines           []CheckoutLine

	Subtotal     Money
	ShippingCost Money
	Total        Money
}

type CheckoutLine struct {
	ItemID    string
	Name      string
	UnitPrice Money
	Quantity  int
	LineTotal Money
}
