package repository_test

import (
	"context"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/nikolayk812/cartservice/internal/domain"
	"github.com/nikolayk812/cartservice/internal/port"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// cartRepositorySuite runs the same contract tests against every store adapter.
type cartRepositorySuite struct {
	suite.Suite

	repo port.CartRepository

	// start is called once per suite
	start    startStoreFunc
	deleteFn func(ctx context.Context) error
	cleanup  func()
}

// before all tests in the suite
func (suite *cartRepositorySuite) SetupSuite() {
	ctx := suite.T().Context()

	repo, deleteFn, cleanup, err := suite.start(ctx)
	suite.Require().NoError(err)

	suite.repo = repo
	suite.deleteFn = deleteFn
	suite.cleanup = cleanup
}

// after all tests in the suite
func (suite *cartRepositorySuite) TearDownSuite() {
	if suite.cleanup != nil {
		suite.cleanup()
	}
}

func (suite *cartRepositorySuite) TestCreate() {
	defer suite.deleteAll()

	presetID := gofakeit.UUID()

	tests := []struct {
		name   string
		cart   domain.Cart
		wantID string
	}{
		{
			name: "create cart without id: ok",
			cart: randomCart(),
		},
		{
			name: "create cart with preset id: ok",
			cart: func() domain.Cart {
				c := randomCart()
				c.ID = presetID
				return c
			}(),
			wantID: presetID,
		},
		{
			name: "create cart without items: ok",
			cart: func() domain.Cart {
				c := randomCart()
				c.Items = nil
				return c
			}(),
		},
		{
			name: "create cart with zero price item: ok",
			cart: func() domain.Cart {
				c := randomCart()
				c.Items[0].Price = decimal.Zero
				return c
			}(),
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			t := suite.T()
			ctx := t.Context()

			created, err := suite.repo.Create(ctx, tt.cart)
			require.NoError(t, err)

			require.NotEmpty(t, created.ID)
			if tt.wantID != "" {
				assert.Equal(t, tt.wantID, created.ID)
			}
			assert.Equal(t, int64(1), created.Version)

			expected := tt.cart
			expected.ID = created.ID
			assertCart(t, expected, created)

			found, ok, err := suite.repo.FindByID(ctx, created.ID)
			require.NoError(t, err)
			require.True(t, ok)
			assertCart(t, expected, found)
		})
	}
}

func (suite *cartRepositorySuite) TestCreate_DuplicateID() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()

	cart := randomCart()
	cart.ID = gofakeit.UUID()

	_, err := suite.repo.Create(ctx, cart)
	require.NoError(t, err)

	_, err = suite.repo.Create(ctx, cart)
	require.ErrorIs(t, err, domain.ErrCartAlreadyExists)
}

func (suite *cartRepositorySuite) TestFindByID() {
	defer suite.deleteAll()

	tests := []struct {
		name      string
		setup     bool
		id        string
		wantFound bool
		wantError string
	}{
		{
			name:      "find existing cart: ok",
			setup:     true,
			wantFound: true,
		},
		{
			name:      "find missing cart: absent",
			id:        gofakeit.UUID(),
			wantFound: false,
		},
		{
			name:      "find with empty id: error",
			id:        "",
			wantError: "id is empty",
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			t := suite.T()
			ctx := t.Context()

			id := tt.id
			var expected domain.Cart
			if tt.setup {
				created, err := suite.repo.Create(ctx, randomCart())
				require.NoError(t, err)
				id = created.ID
				expected = created
			}

			found, ok, err := suite.repo.FindByID(ctx, id)
			if tt.wantError != "" {
				require.EqualError(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantFound, ok)

			if tt.wantFound {
				assertCart(t, expected, found)
			}
		})
	}
}

func (suite *cartRepositorySuite) TestUpdate() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()

	oldCart := domain.Cart{
		CustomerID:      "13d79bea2cc32fe5c4037d44",
		CustomerType:    domain.CustomerTypeStandard,
		ShippingMethod:  domain.ShippingMethodStandard,
		ShippingAddress: domain.Address{Country: "country 1", City: "city 1", Street: "street 1"},
		Items: []domain.Item{
			{ID: "3fae944d41908b442dfa04fc", Name: "name 1", Price: decimal.NewFromInt(5), Quantity: 1},
		},
	}
	newCart := domain.Cart{
		CustomerID:      "52066eb4da0d340d1e857ef0",
		CustomerType:    domain.CustomerTypePremium,
		ShippingMethod:  domain.ShippingMethodExpress,
		ShippingAddress: domain.Address{Country: "country 2", City: "city 2", Street: "street 2"},
		Items: []domain.Item{
			{ID: "daa2ef0793e2fd43f359c863", Name: "name 2", Price: decimal.NewFromInt(3), Quantity: 2},
			{ID: "5c36c93b7aaf272e15d5cc32", Name: "name 3", Price: decimal.NewFromInt(7), Quantity: 3},
		},
	}

	created, err := suite.repo.Create(ctx, oldCart)
	require.NoError(t, err)

	updated, err := suite.repo.Update(ctx, created.ID, newCart)
	require.NoError(t, err)
	assert.Equal(t, created.Version+1, updated.Version)

	found, ok, err := suite.repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, ok)

	expected := newCart
	expected.ID = created.ID
	assertCart(t, expected, found)
	assert.Equal(t, updated.Version, found.Version)
}

func (suite *cartRepositorySuite) TestUpdate_IgnoresCartID() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()

	created, err := suite.repo.Create(ctx, randomCart())
	require.NoError(t, err)

	replacement := randomCart()
	replacement.ID = gofakeit.UUID()

	updated, err := suite.repo.Update(ctx, created.ID, replacement)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)

	_, ok, err := suite.repo.FindByID(ctx, replacement.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func (suite *cartRepositorySuite) TestUpdate_VersionCheck() {
	defer suite.deleteAll()

	tests := []struct {
		name      string
		version   func(created domain.Cart) int64
		wantError error
	}{
		{
			name:    "matching version: ok",
			version: func(created domain.Cart) int64 { return created.Version },
		},
		{
			name:    "zero version skips the check: ok",
			version: func(domain.Cart) int64 { return 0 },
		},
		{
			name:      "stale version: conflict",
			version:   func(created domain.Cart) int64 { return created.Version + 7 },
			wantError: domain.ErrConcurrentUpdateConflict,
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			t := suite.T()
			ctx := t.Context()

			created, err := suite.repo.Create(ctx, randomCart())
			require.NoError(t, err)

			next := created.Clone()
			next.Items = append(next.Items, randomItem())
			next.Version = tt.version(created)

			_, err = suite.repo.Update(ctx, created.ID, next)
			if tt.wantError != nil {
				require.ErrorIs(t, err, tt.wantError)

				found, ok, err := suite.repo.FindByID(ctx, created.ID)
				require.NoError(t, err)
				require.True(t, ok)
				assertCart(t, created, found)
				return
			}
			require.NoError(t, err)
		})
	}
}

func (suite *cartRepositorySuite) TestUpdate_NotFound() {
	defer suite.deleteAll()

	t := suite.T()

	_, err := suite.repo.Update(t.Context(), gofakeit.UUID(), randomCart())
	require.ErrorIs(t, err, domain.ErrCartNotFound)
}

func (suite *cartRepositorySuite) TestRemove() {
	defer suite.deleteAll()

	tests := []struct {
		name   string
		remove func(ctx context.Context, repo port.CartRepository, cart domain.Cart) error
	}{
		{
			name: "remove by id: ok",
			remove: func(ctx context.Context, repo port.CartRepository, cart domain.Cart) error {
				return repo.Remove(ctx, cart.ID)
			},
		},
		{
			name: "remove by object: ok",
			remove: func(ctx context.Context, repo port.CartRepository, cart domain.Cart) error {
				return repo.RemoveCart(ctx, cart)
			},
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			t := suite.T()
			ctx := t.Context()

			created, err := suite.repo.Create(ctx, randomCart())
			require.NoError(t, err)

			require.NoError(t, tt.remove(ctx, suite.repo, created))

			_, ok, err := suite.repo.FindByID(ctx, created.ID)
			require.NoError(t, err)
			assert.False(t, ok)

			// removing again is not an error
			require.NoError(t, tt.remove(ctx, suite.repo, created))
		})
	}
}

func (suite *cartRepositorySuite) TestRemove_EmptyID() {
	err := suite.repo.Remove(suite.T().Context(), "")
	suite.Require().EqualError(err, "id is empty")
}

func (suite *cartRepositorySuite) deleteAll() {
	err := suite.deleteFn(suite.T().Context())
	suite.NoError(err)
}
