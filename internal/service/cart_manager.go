package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/nikolayk812/cartservice/internal/domain"
	"github.com/nikolayk812/cartservice/internal/port"
	"github.com/nikolayk812/cartservice/internal/validation"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/nikolayk812/cartservice/internal/service"

type AddressValidator interface {
	Validate(address domain.Address) validation.Result
}

type CheckoutEngine interface {
	Summarize(cart domain.Cart) (domain.CheckoutSummary, error)
}

type CreateCartRequest struct {
	CustomerID      string
	CustomerType    domain.CustomerType
	ShippingMethod  domain.ShippingMethod
	ShippingAddress domain.Address
	Items           []domain.Item
}

// CartManager owns the cart lifecycle. Read-modify-write sequences on one cart are serialised
// in-process by a keyed lock and guarded across processes by the repository's version check.
type CartManager struct {
	repo      port.CartRepository
	validator AddressValidator
	engine    CheckoutEngine

	locks    *keyedMutex
	logger   *zap.Logger
	tracer   trace.Tracer
	attempts int
	interval time.Duration
}

func NewCartManager(repo port.CartRepository, validator AddressValidator, engine CheckoutEngine, opts ...Option) *CartManager {
	m := &CartManager{
		repo:      repo,
		validator: validator,
		engine:    engine,
		locks:     newKeyedMutex(),
		logger:    zap.NewNop(),
		tracer:    otel.Tracer(tracerName),
		attempts:  defaultRetryAttempts,
		interval:  defaultRetryInterval,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

func (m *CartManager) CreateCart(ctx context.Context, req CreateCartRequest) (_ domain.Cart, err error) {
	ctx, span := m.tracer.Start(ctx, "CartManager.CreateCart",
		trace.WithAttributes(attribute.String("customer.id", req.CustomerID)))
	defer func() { endSpan(span, err) }()

	cart, err := m.buildCart(domain.Cart{
		CustomerID:      req.CustomerID,
		CustomerType:    req.CustomerType,
		ShippingMethod:  req.ShippingMethod,
		ShippingAddress: req.ShippingAddress,
		Items:           req.Items,
	})
	if err != nil {
		return domain.Cart{}, err
	}

	// not retried: a lost acknowledgement would leave a second cart behind
	created, err := m.repo.Create(ctx, cart)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("repo.Create: %w", err)
	}

	span.SetAttributes(attribute.String("cart.id", created.ID))
	m.logger.Info("cart created",
		zap.String("cart_id", created.ID),
		zap.String("customer_id", created.CustomerID),
		zap.Int("items", len(created.Items)))

	return created, nil
}

func (m *CartManager) AddItem(ctx context.Context, cartID string, item domain.Item) (_ domain.Cart, err error) {
	ctx, span := m.tracer.Start(ctx, "CartManager.AddItem",
		trace.WithAttributes(attribute.String("cart.id", cartID)))
	defer func() { endSpan(span, err) }()

	if cartID == "" {
		return domain.Cart{}, fmt.Errorf("%w: cart id is empty", domain.ErrInvalidCart)
	}

	if err := validateItem(item); err != nil {
		return domain.Cart{}, err
	}

	unlock, err := m.locks.Lock(ctx, cartID)
	if err != nil {
		return domain.Cart{}, lockErr(cartID, err)
	}
	defer unlock()

	var updated domain.Cart

	err = m.retry(ctx, "AddItem", retryOnConflict, func() error {
		cart, found, err := m.repo.FindByID(ctx, cartID)
		if err != nil {
			return fmt.Errorf("repo.FindByID: %w", err)
		}
		if !found {
			return fmt.Errorf("cart[%s]: %w", cartID, domain.ErrCartNotFound)
		}

		loadedVersion := cart.Version
		cart.Items = append(cart.Items, item)

		// cart.Version still holds the loaded version, so a concurrent writer makes this fail
		updated, err = m.repo.Update(ctx, cartID, cart)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrStoreUnavailable) {
			return fmt.Errorf("repo.Update: %w", err)
		}

		// the write may have committed before the reply was lost
		stored, landed, confirmErr := m.confirmAppend(ctx, cartID, loadedVersion, item)
		switch {
		case confirmErr != nil:
			return backoff.Permanent(fmt.Errorf("repo.Update: %w", err))
		case landed:
			updated = stored
			return nil
		case stored.Version == loadedVersion:
			return fmt.Errorf("repo.Update: %w", err)
		default:
			return backoff.Permanent(fmt.Errorf("repo.Update: %w", err))
		}
	})
	if err != nil {
		return domain.Cart{}, err
	}

	m.logger.Debug("item added",
		zap.String("cart_id", cartID),
		zap.String("item_id", item.ID),
		zap.Int64("version", updated.Version))

	return updated, nil
}

func (m *CartManager) FindByID(ctx context.Context, cartID string) (_ domain.Cart, _ bool, err error) {
	ctx, span := m.tracer.Start(ctx, "CartManager.FindByID",
		trace.WithAttributes(attribute.String("cart.id", cartID)))
	defer func() { endSpan(span, err) }()

	if cartID == "" {
		return domain.Cart{}, false, fmt.Errorf("%w: cart id is empty", domain.ErrInvalidCart)
	}

	var (
		cart  domain.Cart
		found bool
	)

	err = m.retry(ctx, "FindByID", retryOnUnavailable, func() error {
		var err error
		cart, found, err = m.repo.FindByID(ctx, cartID)
		if err != nil {
			return fmt.Errorf("repo.FindByID: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Cart{}, false, err
	}

	return cart, found, nil
}

// UpdateCart replaces every field of the cart. A non-zero cart.Version is checked against the stored one.
func (m *CartManager) UpdateCart(ctx context.Context, cartID string, cart domain.Cart) (_ domain.Cart, err error) {
	ctx, span := m.tracer.Start(ctx, "CartManager.UpdateCart",
		trace.WithAttributes(attribute.String("cart.id", cartID)))
	defer func() { endSpan(span, err) }()

	if cartID == "" {
		return domain.Cart{}, fmt.Errorf("%w: cart id is empty", domain.ErrInvalidCart)
	}

	next, err := m.buildCart(cart)
	if err != nil {
		return domain.Cart{}, err
	}
	next.Version = cart.Version

	unlock, err := m.locks.Lock(ctx, cartID)
	if err != nil {
		return domain.Cart{}, lockErr(cartID, err)
	}
	defer unlock()

	var updated domain.Cart

	// a conflict here means the caller's version is stale; retrying cannot fix that
	err = m.retry(ctx, "UpdateCart", retryOnUnavailable, func() error {
		var err error
		updated, err = m.repo.Update(ctx, cartID, next)
		if err != nil {
			return fmt.Errorf("repo.Update: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Cart{}, err
	}

	m.logger.Info("cart updated", zap.String("cart_id", cartID), zap.Int64("version", updated.Version))

	return updated, nil
}

func (m *CartManager) DeleteCart(ctx context.Context, cartID string) (err error) {
	ctx, span := m.tracer.Start(ctx, "CartManager.DeleteCart",
		trace.WithAttributes(attribute.String("cart.id", cartID)))
	defer func() { endSpan(span, err) }()

	if cartID == "" {
		return fmt.Errorf("%w: cart id is empty", domain.ErrInvalidCart)
	}

	err = m.retry(ctx, "DeleteCart", retryOnUnavailable, func() error {
		if err := m.repo.Remove(ctx, cartID); err != nil {
			return fmt.Errorf("repo.Remove: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	m.logger.Info("cart deleted", zap.String("cart_id", cartID))

	return nil
}

// Checkout prices the cart. It is a pure read: the cart stays open and mutable.
func (m *CartManager) Checkout(ctx context.Context, cartID string) (_ domain.CheckoutSummary, err error) {
	ctx, span := m.tracer.Start(ctx, "CartManager.Checkout",
		trace.WithAttributes(attribute.String("cart.id", cartID)))
	defer func() { endSpan(span, err) }()

	cart, found, err := m.FindByID(ctx, cartID)
	if err != nil {
		return domain.CheckoutSummary{}, err
	}
	if !found {
		return domain.CheckoutSummary{}, fmt.Errorf("cart[%s]: %w", cartID, domain.ErrCartNotFound)
	}

	if len(cart.Items) == 0 {
		return domain.CheckoutSummary{}, fmt.Errorf("cart[%s]: %w", cartID, domain.ErrEmptyCart)
	}

	if err := m.validator.Validate(cart.ShippingAddress).Err(); err != nil {
		return domain.CheckoutSummary{}, err
	}

	summary, err := m.engine.Summarize(cart)
	if err != nil {
		return domain.CheckoutSummary{}, fmt.Errorf("engine.Summarize: %w", err)
	}

	span.SetAttributes(attribute.String("checkout.total", summary.Total.Amount.String()))

	return summary, nil
}

// confirmAppend reports whether the stored cart is exactly the loaded version plus item.
// The returned cart is the stored one whenever the read succeeded.
func (m *CartManager) confirmAppend(ctx context.Context, cartID string, loadedVersion int64, item domain.Item) (domain.Cart, bool, error) {
	stored, found, err := m.repo.FindByID(ctx, cartID)
	if err != nil {
		return domain.Cart{}, false, fmt.Errorf("repo.FindByID: %w", err)
	}
	if !found {
		return domain.Cart{}, false, fmt.Errorf("cart[%s]: %w", cartID, domain.ErrCartNotFound)
	}

	if stored.Version != loadedVersion+1 || len(stored.Items) == 0 {
		return stored, false, nil
	}

	last := stored.Items[len(stored.Items)-1]
	landed := last.ID == item.ID &&
		last.Name == item.Name &&
		last.Price.Equal(item.Price) &&
		last.Quantity == item.Quantity

	return stored, landed, nil
}

// buildCart validates caller-supplied fields and fills enum defaults. Items are copied.
func (m *CartManager) buildCart(in domain.Cart) (domain.Cart, error) {
	if strings.TrimSpace(in.CustomerID) == "" {
		return domain.Cart{}, fmt.Errorf("%w: customer id is empty", domain.ErrInvalidCart)
	}

	customerType, err := domain.ParseCustomerType(string(in.CustomerType))
	if err != nil {
		return domain.Cart{}, fmt.Errorf("%w: %w", domain.ErrInvalidCart, err)
	}

	shippingMethod, err := domain.ParseShippingMethod(string(in.ShippingMethod))
	if err != nil {
		return domain.Cart{}, fmt.Errorf("%w: %w", domain.ErrInvalidCart, err)
	}

	// the address is optional until checkout, but a supplied one must be complete
	if !in.ShippingAddress.IsZero() {
		if err := m.validator.Validate(in.ShippingAddress).Err(); err != nil {
			return domain.Cart{}, err
		}
	}

	items := make([]domain.Item, 0, len(in.Items))
	for i, item := range in.Items {
		if err := validateItem(item); err != nil {
			return domain.Cart{}, fmt.Errorf("items[%d]: %w", i, err)
		}
		items = append(items, item)
	}

	return domain.Cart{
		CustomerID:      in.CustomerID,
		CustomerType:    customerType,
		ShippingMethod:  shippingMethod,
		ShippingAddress: in.ShippingAddress,
		Items:           items,
	}, nil
}

func validateItem(item domain.Item) error {
	var problems []string

	if strings.TrimSpace(item.Name) == "" {
		problems = append(problems, "name is empty")
	}
	if item.Price.IsNegative() {
		problems = append(problems, "price is negative")
	}
	if item.Quantity <= 0 {
		problems = append(problems, "quantity must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrInvalidItem, strings.Join(problems, ", "))
	}

	return nil
}

func lockErr(cartID string, err error) error {
	if isContextErr(err) {
		return fmt.Errorf("lock cart[%s]: %w: %w", cartID, domain.ErrStoreUnavailable, err)
	}
	return fmt.Errorf("lock cart[%s]: %w", cartID, err)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
