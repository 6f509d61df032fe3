package httpapi

import (
	"time"

	"github.com/nikolayk812/cartservice/internal/domain"
	"github.com/shopspring/decimal"
)

type addressDTO struct {
	Country string `json:"country"`
	City    string `json:"city"`
	Street  string `json:"street"`
}

type itemRequest struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

type createCartRequest struct {
	CustomerID      string        `json:"customerId"`
	CustomerType    string        `json:"customerType"`
	ShippingMethod  string        `json:"shippingMethod"`
	ShippingAddress addressDTO    `json:"shippingAddress"`
	Items           []itemRequest `json:"items"`
}

type updateCartRequest struct {
	createCartRequest
	Version int64 `json:"version"`
}

type itemResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	Quantity int    `json:"quantity"`
}

type cartResponse struct {
	ID              string         `json:"id"`
	CustomerID      string         `json:"customerId"`
	CustomerType    string         `json:"customerType"`
	ShippingMethod  string         `json:"shippingMethod"`
	ShippingAddress addressDTO     `json:"shippingAddress"`
	Items           []itemResponse `json:"items"`
	Version         int64          `json:"version"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

type moneyResponse struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
	Display  string `json:"display"`
}

type checkoutLineResponse struct {
	ItemID    string        `json:"itemId"`
	Name      string        `json:"name"`
	UnitPrice moneyResponse `json:"unitPrice"`
	Quantity  int           `json:"quantity"`
	LineTotal moneyResponse `json:"lineTotal"`
}

type checkoutResponse struct {
	CartID          string                 `json:"cartId"`
	CustomerID      string                 `json:"customerId"`
	CustomerType    string                 `json:"customerType"`
	ShippingMethod  string                 `json:"shippingMethod"`
	ShippingAddress addressDTO             `json:"shippingAddress"`
	Lines           []checkoutLineResponse `json:"lines"`
	Subtotal        moneyResponse          `json:"subtotal"`
	ShippingCost    moneyResponse          `json:"shippingCost"`
	Total           moneyResponse          `json:"total"`
}

func mapAddressToDomain(a addressDTO) domain.Address {
	return domain.Address{
		Country: a.Country,
		City:    a.City,
		Street:  a.Street,
	}
}

func mapAddressFromDomain(a domain.Address) addressDTO {
	return addressDTO{
		Country: a.Country,
		City:    a.City,
		Street:  a.Street,
	}
}

func mapItemToDomain(item itemRequest) domain.Item {
	return domain.Item{
		ID:       item.ID,
		Name:     item.Name,
		Price:    item.Price,
		Quantity: item.Quantity,
	}
}

func mapItemsToDomain(items []itemRequest) []domain.Item {
	result := make([]domain.Item, 0, len(items))
	for _, item := range items {
		result = append(result, mapItemToDomain(item))
	}
	return result
}

func mapCartFromDomain(cart domain.Cart) cartResponse {
	items := make([]itemResponse, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, itemResponse{
			ID:       item.ID,
			Name:     item.Name,
			Price:    item.Price.String(),
			Quantity: item.Quantity,
		})
	}

	return cartResponse{
		ID:              cart.ID,
		CustomerID:      cart.CustomerID,
		CustomerType:    string(cart.CustomerType),
		ShippingMethod:  string(cart.ShippingMethod),
		ShippingAddress: mapAddressFromDomain(cart.ShippingAddress),
		Items:           items,
		Version:         cart.Version,
		UpdatedAt:       cart.UpdatedAt,
	}
}

func (h *Handler) mapMoney(m domain.Money) moneyResponse {
	return moneyResponse{
		Amount:   m.Amount.StringFixed(2),
		Currency: m.Currency.String(),
		Display:  h.formatter.Format(m),
	}
}

func (h *Handler) mapSummaryFromDomain(s domain.CheckoutSummary) checkoutResponse {
	lines := make([]checkoutLineResponse, 0, len(s.Lines))
	for _, line := range s.Lines {
		lines = append(lines, checkoutLineResponse{
			ItemID:    line.ItemID,
			Name:      line.Name,
			UnitPrice: h.mapMoney(line.UnitPrice),
			Quantity:  line.Quantity,
			LineTotal: h.mapMoney(line.LineTotal),
		})
	}

	return checkoutResponse{
		CartID:          s.CartID,
		CustomerID:      s.CustomerID,
		CustomerType:    string(s.CustomerType),
		ShippingMethod:  string(s.ShippingMethod),
		ShippingAddress: mapAddressFromDomain(s.ShippingAddress),
		Lines:           lines,
		Subtotal:        h.mapMoney(s.Subtotal),
		ShippingCost:    h.mapMoney(s.ShippingCost),
		Total:           h.mapMoney(s.Total),
	}
}
