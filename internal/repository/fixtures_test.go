package repository_test

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/nikolayk812/cartservice/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func randomCart() domain.Cart {
	return domain.Cart{
		CustomerID:     gofakeit.UUID(),
		CustomerType:   domain.CustomerType(gofakeit.RandomString([]string{"Standard", "Premium"})),
		ShippingMethod: domain.ShippingMethod(gofakeit.RandomString([]string{"Standard", "Express"})),
		ShippingAddress: domain.Address{
			Country: gofakeit.Country(),
			City:    gofakeit.City(),
			Street:  gofakeit.Street(),
		},
		Items: []domain.Item{randomItem()},
	}
}

func randomItem() domain.Item {
	return domain.Item{
		ID:       gofakeit.UUID(),
		Name:     gofakeit.ProductName(),
		Price:    decimal.NewFromFloat(gofakeit.Price(1, 100)),
		Quantity: gofakeit.IntRange(1, 5),
	}
}

func assertCart(t *testing.T, expected, actual domain.Cart) {
	t.Helper()

	decimalComparer := cmp.Comparer(func(x, y decimal.Decimal) bool {
		return x.Equal(y)
	})

	// Version and UpdatedAt are owned by the store
	opts := cmp.Options{
		cmpopts.IgnoreFields(domain.Cart{}, "Version", "UpdatedAt"),
		cmpopts.EquateEmpty(),
		decimalComparer,
	}

	diff := cmp.Diff(expected, actual, opts)
	assert.Empty(t, diff)

	assert.Positive(t, actual.Version)
	assert.False(t, actual.UpdatedAt.IsZero())
}
