package service_test

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/nikolayk812/cartservice/internal/domain"
)

// memRepository is an in-memory port.CartRepository with the same version semantics as the real stores.
type memRepository struct {
	mu    sync.Mutex
	carts map[string]domain.Cart
	seq   int

	// queued errors, consumed one per call before touching the map
	findErrs   []error
	updateErrs []error
	removeErrs []error

	// lostAcks are returned by Update after the write has been applied
	lostAcks []error

	// beforeUpdate runs under the lock just before the version check
	beforeUpdate func(stored *domain.Cart)

	findCalls   int
	updateCalls int
	removeCalls int
}

func newMemRepository() *memRepository {
	return &memRepository{carts: make(map[string]domain.Cart)}
}

func (r *memRepository) Create(_ context.Context, cart domain.Cart) (domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart = cart.Clone()
	if cart.ID == "" {
		r.seq++
		cart.ID = "cart-" + strconv.Itoa(r.seq)
	}
	if _, ok := r.carts[cart.ID]; ok {
		return domain.Cart{}, fmt.Errorf("cart[%s]: %w", cart.ID, domain.ErrCartAlreadyExists)
	}

	cart.Version = 1
	cart.UpdatedAt = time.Now()
	r.carts[cart.ID] = cart.Clone()

	return cart, nil
}

func (r *memRepository) FindByID(_ context.Context, id string) (domain.Cart, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.findCalls++
	if err := pop(&r.findErrs); err != nil {
		return domain.Cart{}, false, err
	}

	cart, ok := r.carts[id]
	if !ok {
		return domain.Cart{}, false, nil
	}

	return cart.Clone(), true, nil
}

func (r *memRepository) Update(_ context.Context, id string, cart domain.Cart) (domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.updateCalls++
	if err := pop(&r.updateErrs); err != nil {
		return domain.Cart{}, err
	}

	stored, ok := r.carts[id]
	if !ok {
		return domain.Cart{}, fmt.Errorf("cart[%s]: %w", id, domain.ErrCartNotFound)
	}

	if r.beforeUpdate != nil {
		r.beforeUpdate(&stored)
		r.carts[id] = stored
	}

	if cart.Version != 0 && cart.Version != stored.Version {
		return domain.Cart{}, fmt.Errorf("cart[%s]: %w", id, domain.ErrConcurrentUpdateConflict)
	}

	cart = cart.Clone()
	cart.ID = id
	cart.Version = stored.Version + 1
	cart.UpdatedAt = time.Now()
	r.carts[id] = cart.Clone()

	if err := pop(&r.lostAcks); err != nil {
		return domain.Cart{}, err
	}

	return cart, nil
}

func (r *memRepository) Remove(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.removeCalls++
	if err := pop(&r.removeErrs); err != nil {
		return err
	}

	delete(r.carts, id)

	return nil
}

func (r *memRepository) RemoveCart(ctx context.Context, cart domain.Cart) error {
	return r.Remove(ctx, cart.ID)
}

func pop(errs *[]error) error {
	if len(*errs) == 0 {
		return nil
	}
	err := (*errs)[0]
	*errs = (*errs)[1:]
	return err
}
