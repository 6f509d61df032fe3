package pricing

import (
	"fmt"

	"github.com/nikolayk812/cartservice/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type ShippingCostCalculator interface {
	Compute(customerType domain.CustomerType, method domain.ShippingMethod, items []domain.Item) decimal.Decimal
}

// CheckoutEngine is the only place cart prices are computed. It never touches the store.
type CheckoutEngine struct {
	shipping ShippingCostCalculator
	unit     currency.Unit
	printer  *message.Printer
}

func NewCheckoutEngine(shipping ShippingCostCalculator, unit currency.Unit) *CheckoutEngine {
	return &CheckoutEngine{
		shipping: shipping,
		unit:     unit,
		printer:  message.NewPrinter(language.English),
	}
}

func (e *CheckoutEngine) Currency() currency.Unit {
	return e.unit
}

func (e *CheckoutEngine) Summarize(cart domain.Cart) (domain.CheckoutSummary, error) {
	if len(cart.Items) == 0 {
		return domain.CheckoutSummary{}, fmt.Errorf("cart[%s]: %w", cart.ID, domain.ErrEmptyCart)
	}

	subtotal := decimal.Zero
	lines := make([]domain.CheckoutLine, 0, len(cart.Items))

	for _, item := range cart.Items {
		lineTotal := item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(lineTotal)

		lines = append(lines, domain.CheckoutLine{
			ItemID:    item.ID,
			Name:      item.Name,
			UnitPrice: e.money(item.Price),
			Quantity:  item.Quantity,
			LineTotal: e.money(lineTotal),
		})
	}

	shippingCost := e.shipping.Compute(cart.CustomerType, cart.ShippingMethod, cart.Items)

	return domain.CheckoutSummary{
		CartID:          cart.ID,
		CustomerID:      cart.CustomerID,
		CustomerType:    cart.CustomerType,
		ShippingMethod:  cart.ShippingMethod,
		ShippingAddress: cart.ShippingAddress,
		Lines:           lines,
		Subtotal:        e.money(subtotal),
		ShippingCost:    e.money(shippingCost),
		Total:           e.money(subtotal.Add(shippingCost)),
	}, nil
}

// Format renders an amount for display, e.g. "USD 10.50".
func (e *CheckoutEngine) Format(m domain.Money) string {
	unit := m.Currency
	if unit == (currency.Unit{}) {
		unit = e.unit
	}
	return e.printer.Sprint(currency.ISO(unit.Amount(m.Amount.InexactFloat64())))
}

func (e *CheckoutEngine) money(amount decimal.Decimal) domain.Money {
	return domain.NewMoney(amount, e.unit)
}
