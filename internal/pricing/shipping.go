package pricing

import (
	"github.com/nikolayk812/cartservice/internal/domain"
	"github.com/shopspring/decimal"
)

type shippingRate struct {
	flat    decimal.Decimal
	perUnit decimal.Decimal
}

var (
	shippingRates = map[domain.ShippingMethod]shippingRate{
		domain.ShippingMethodStandard: {flat: decimal.RequireFromString("5.00"), perUnit: decimal.RequireFromString("0.50")},
		domain.ShippingMethodExpress:  {flat: decimal.RequireFromString("15.00"), perUnit: decimal.RequireFromString("1.25")},
	}

	customerFactors = map[domain.CustomerType]decimal.Decimal{
		domain.CustomerTypeStandard: decimal.NewFromInt(1),
		domain.CustomerTypePremium:  decimal.RequireFromString("0.80"),
	}
)

// ShippingCalculator prices shipping from a fixed rate matrix. It holds no state.
type ShippingCalculator struct{}

func NewShippingCalculator() ShippingCalculator {
	return ShippingCalculator{}
}

func (ShippingCalculator) Compute(customerType domain.CustomerType, method domain.ShippingMethod, items []domain.Item) decimal.Decimal {
	rate, ok := shippingRates[method]
	if !ok {
		rate = shippingRates[domain.ShippingMethodStandard]
	}

	factor, ok := customerFactors[customerType]
	if !ok {
		factor = customerFactors[domain.CustomerTypeStandard]
	}

	var units int64
	for _, item := range items {
		if item.Quantity > 0 {
			units += int64(item.Quantity)
		}
	}

	cost := rate.flat.Add(rate.perUnit.Mul(decimal.NewFromInt(units))).
		Mul(factor).
		Round(2)

	if cost.IsNegative() {
		return decimal.Zero
	}

	return cost
}
