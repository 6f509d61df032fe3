package repository

import (
	"encoding/json"
	"fmt"

	"github.com/nikolayk812/cartservice/internal/domain"
	"github.com/shopspring/decimal"
)

// cartDocument is the JSONB layout of a cart row; items are embedded.
type cartDocument struct {
	ID              string          `json:"id"`
	CustomerID      string          `json:"customerId"`
	CustomerType    string          `json:"customerType"`
	ShippingMethod  string          `json:"shippingMethod"`
	ShippingAddress addressDocument `json:"shippingAddress"`
	Items           []itemDocument  `json:"items"`
}

type addressDocument struct {
	Country string `json:"country"`
	City    string `json:"city"`
	Street  string `json:"street"`
}

type itemDocument struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

func mapDomainToDocument(cart domain.Cart) cartDocument {
	items := make([]itemDocument, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, itemDocument{
			ID:       item.ID,
			Name:     item.Name,
			Price:    item.Price,
			Quantity: item.Quantity,
		})
	}

	return cartDocument{
		ID:             cart.ID,
		CustomerID:     cart.CustomerID,
		CustomerType:   string(cart.CustomerType),
		ShippingMethod: string(cart.ShippingMethod),
		ShippingAddress: addressDocument{
			Country: cart.ShippingAddress.Country,
			City:    cart.ShippingAddress.City,
			Street:  cart.ShippingAddress.Street,
		},
		Items: items,
	}
}

func mapDocumentToDomain(id string, raw []byte) (domain.Cart, error) {
	var doc cartDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return domain.Cart{}, fmt.Errorf("json.Unmarshal: %w", err)
	}

	customerType, err := domain.ParseCustomerType(doc.CustomerType)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("domain.ParseCustomerType: %w", err)
	}

	shippingMethod, err := domain.ParseShippingMethod(doc.ShippingMethod)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("domain.ParseShippingMethod: %w", err)
	}

	var items []domain.Item
	for _, item := range doc.Items {
		items = append(items, domain.Item{
			ID:       item.ID,
			Name:     item.Name,
			Price:    item.Price,
			Quantity: item.Quantity,
		})
	}

	return domain.Cart{
		ID:             id,
		CustomerID:     doc.CustomerID,
		CustomerType:   customerType,
		ShippingMethod: shippingMethod,
		ShippingAddress: domain.Address{
			Country: doc.ShippingAddress.Country,
			City:    doc.ShippingAddress.City,
			Street:  doc.ShippingAddress.Street,
		},
		Items: items,
	}, nil
}
