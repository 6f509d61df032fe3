package httpapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/cartservice/internal/httpapi"
	"github.com/nikolayk812/cartservice/internal/pricing"
	"github.com/nikolayk812/cartservice/internal/repository"
	"github.com/nikolayk812/cartservice/internal/service"
	"github.com/nikolayk812/cartservice/internal/validation"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"golang.org/x/text/currency"
)

type cartAPISuite struct {
	suite.Suite

	pool      *pgxpool.Pool
	container *postgres.PostgresContainer
	server    *httptest.Server
}

func TestCartAPISuite(t *testing.T) {
	suite.Run(t, new(cartAPISuite))
}

func (suite *cartAPISuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:17.6-alpine3.22",
		postgres.BasicWaitStrategies(),
		postgres.WithInitScripts("../db/migrations/000001_carts.up.sql"),
	)
	suite.Require().NoError(err)
	suite.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	suite.pool, err = pgxpool.New(ctx, connStr)
	suite.Require().NoError(err)

	engine := pricing.NewCheckoutEngine(pricing.NewShippingCalculator(), currency.USD)
	manager := service.NewCartManager(
		repository.NewCart(suite.pool),
		validation.NewAddressValidator(),
		engine,
	)

	suite.server = httptest.NewServer(httpapi.NewRouter(httpapi.NewHandler(manager, engine, nil), nil, 0))
}

func (suite *cartAPISuite) TearDownSuite() {
	if suite.server != nil {
		suite.server.Close()
	}
	if suite.pool != nil {
		suite.pool.Close()
	}
	if suite.container != nil {
		suite.NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *cartAPISuite) do(method, path, body string) *http.Response {
	var req *http.Request
	var err error
	if body == "" {
		req, err = http.NewRequest(method, suite.server.URL+path, nil)
	} else {
		req, err = http.NewRequest(method, suite.server.URL+path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	suite.Require().NoError(err)

	resp, err := suite.server.Client().Do(req)
	suite.Require().NoError(err)
	suite.T().Cleanup(func() { _ = resp.Body.Close() })

	return resp
}

func (suite *cartAPISuite) createCart() map[string]any {
	resp := suite.do(http.MethodPost, "/api/carts", `{
		"customerId": "customer-1",
		"customerType": "Standard",
		"shippingMethod": "Standard",
		"shippingAddress": {"country": "Sweden", "city": "Stockholm", "street": "Drottninggatan 1"}
	}`)
	suite.Require().Equal(http.StatusCreated, resp.StatusCode)

	var cart map[string]any
	suite.Require().NoError(json.NewDecoder(resp.Body).Decode(&cart))
	suite.Require().NotEmpty(cart["id"])
	suite.Equal("/api/carts/"+cart["id"].(string), resp.Header.Get("Location"))

	return cart
}

func (suite *cartAPISuite) TestCreateCart() {
	cart := suite.createCart()

	resp := suite.do(http.MethodGet, "/api/carts/"+cart["id"].(string), "")
	suite.Equal(http.StatusOK, resp.StatusCode)
}

func (suite *cartAPISuite) TestAddItemThenFind() {
	cart := suite.createCart()
	id := cart["id"].(string)

	resp := suite.do(http.MethodPost, "/api/carts/"+id+"/items", `{"id":"sku-1","name":"Mug","price":"7.50","quantity":2}`)
	suite.Require().Equal(http.StatusOK, resp.StatusCode)

	resp = suite.do(http.MethodGet, "/api/carts/"+id, "")
	suite.Require().Equal(http.StatusOK, resp.StatusCode)

	var found struct {
		Items []struct {
			ID       string `json:"id"`
			Price    string `json:"price"`
			Quantity int    `json:"quantity"`
		} `json:"items"`
	}
	suite.Require().NoError(json.NewDecoder(resp.Body).Decode(&found))
	suite.Require().Len(found.Items, 1)
	suite.Equal("sku-1", found.Items[0].ID)
	suite.Equal("7.5", found.Items[0].Price)
	suite.Equal(2, found.Items[0].Quantity)

	resp = suite.do(http.MethodGet, "/api/carts/"+id+"/checkout", "")
	suite.Require().Equal(http.StatusOK, resp.StatusCode)

	var summary struct {
		Total struct {
			Amount   string `json:"amount"`
			Currency string `json:"currency"`
		} `json:"total"`
	}
	suite.Require().NoError(json.NewDecoder(resp.Body).Decode(&summary))
	// 15.00 subtotal + 5.00 flat + 2 * 0.50
	suite.Equal("21.00", summary.Total.Amount)
	suite.Equal("USD", summary.Total.Currency)
}

func (suite *cartAPISuite) TestDeleteCart() {
	cart := suite.createCart()
	id := cart["id"].(string)

	resp := suite.do(http.MethodDelete, "/api/carts/"+id, "")
	suite.Equal(http.StatusNoContent, resp.StatusCode)

	resp = suite.do(http.MethodGet, "/api/carts/"+id, "")
	suite.Equal(http.StatusNotFound, resp.StatusCode)
}

func (suite *cartAPISuite) TestFindMissingCart() {
	resp := suite.do(http.MethodGet, "/api/carts/does-not-exist", "")
	suite.Equal(http.StatusNotFound, resp.StatusCode)
}
