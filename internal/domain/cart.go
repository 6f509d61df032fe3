package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Cart struct {
	ID              string
	CustomerID      string
	CustomerType    CustomerType
	ShippingMethod  ShippingMethod
	ShippingAddress Address
	Items           []Item

	// Version is the optimistic concurrency token, bumped by the store on every write.
	Version   int64
	UpdatedAt time.Time
}

type Item struct {
	ID       string
	Name     string
	Price    decimal.Decimal
	Quantity int
}

type Address struct {
	Country string
	City    string
	Street  string
}

func (a Address) IsZero() bool {
	return a == Address{}
}

// Clone returns a copy of the cart that shares no item storage with c.
func (c Cart) Clone() Cart {
	if c.Items != nil {
		items := make([]Item, len(c.Items))
		copy(items, c.Items)
		c.Items = items
	}
	return c
}
