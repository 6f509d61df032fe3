package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/nikolayk812/cartservice/internal/domain"
	"github.com/nikolayk812/cartservice/internal/port"
)

// DB is satisfied by *pgxpool.Pool and pgx.Tx, so the repository can run inside a caller's transaction.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

const (
	insertCartSQL = `
INSERT INTO carts (id, customer_id, document, version)
VALUES ($1, $2, $3, 1)
RETURNING version, updated_at`

	selectCartSQL = `
SELECT document, version, updated_at
FROM carts
WHERE id = $1`

	updateCartSQL = `
UPDATE carts
SET customer_id = $2,
    document    = $3,
    version     = version + 1,
    updated_at  = NOW()
WHERE id = $1
  AND ($4::bigint = 0 OR version = $4)
RETURNING version, updated_at`

	cartExistsSQL = `SELECT EXISTS(SELECT 1 FROM carts WHERE id = $1)`

	deleteCartSQL = `DELETE FROM carts WHERE id = $1`
)

type cartRepository struct {
	db DB
}

func NewCart(db DB) port.CartRepository {
	return &cartRepository{
		db: db,
	}
}

func (r *cartRepository) Create(ctx context.Context, cart domain.Cart) (domain.Cart, error) {
	cart = cart.Clone()
	if cart.ID == "" {
		cart.ID = uuid.NewString()
	}

	document, err := json.Marshal(mapDomainToDocument(cart))
	if err != nil {
		return domain.Cart{}, fmt.Errorf("json.Marshal: %w", err)
	}

	var (
		version   int64
		updatedAt time.Time
	)

	err = r.db.QueryRow(ctx, insertCartSQL, cart.ID, cart.CustomerID, document).Scan(&version, &updatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Cart{}, fmt.Errorf("cart[%s]: %w", cart.ID, domain.ErrCartAlreadyExists)
		}
		return domain.Cart{}, storeErr("insert cart", err)
	}

	cart.Version = version
	cart.UpdatedAt = updatedAt

	return cart, nil
}

func (r *cartRepository) FindByID(ctx context.Context, id string) (domain.Cart, bool, error) {
	if id == "" {
		return domain.Cart{}, false, fmt.Errorf("id is empty")
	}

	var (
		document  []byte
		version   int64
		updatedAt time.Time
	)

	err := r.db.QueryRow(ctx, selectCartSQL, id).Scan(&document, &version, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Cart{}, false, nil
		}
		return domain.Cart{}, false, storeErr("select cart", err)
	}

	cart, err := mapDocumentToDomain(id, document)
	if err != nil {
		return domain.Cart{}, false, fmt.Errorf("mapDocumentToDomain: %w", err)
	}

	cart.Version = version
	cart.UpdatedAt = updatedAt

	return cart, true, nil
}

func (r *cartRepository) Update(ctx context.Context, id string, cart domain.Cart) (domain.Cart, error) {
	if id == "" {
		return domain.Cart{}, fmt.Errorf("id is empty")
	}

	cart = cart.Clone()
	cart.ID = id

	document, err := json.Marshal(mapDomainToDocument(cart))
	if err != nil {
		return domain.Cart{}, fmt.Errorf("json.Marshal: %w", err)
	}

	return withTx(ctx, r.db, func(tx pgx.Tx) (domain.Cart, error) {
		var (
			version   int64
			updatedAt time.Time
		)

		err := tx.QueryRow(ctx, updateCartSQL, id, cart.CustomerID, document, cart.Version).Scan(&version, &updatedAt)
		if err == nil {
			cart.Version = version
			cart.UpdatedAt = updatedAt
			return cart, nil
		}

		if !errors.Is(err, pgx.ErrNoRows) {
			return domain.Cart{}, storeErr("update cart", err)
		}

		// nothing updated: either the cart is gone or its version moved on
		var exists bool
		if err := tx.QueryRow(ctx, cartExistsSQL, id).Scan(&exists); err != nil {
			return domain.Cart{}, storeErr("select cart exists", err)
		}

		if !exists {
			return domain.Cart{}, fmt.Errorf("cart[%s]: %w", id, domain.ErrCartNotFound)
		}

		return domain.Cart{}, fmt.Errorf("cart[%s] version[%d]: %w", id, cart.Version, domain.ErrConcurrentUpdateConflict)
	})
}

func (r *cartRepository) Remove(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("id is empty")
	}

	if _, err := r.db.Exec(ctx, deleteCartSQL, id); err != nil {
		return storeErr("delete cart", err)
	}

	return nil
}

func (r *cartRepository) RemoveCart(ctx context.Context, cart domain.Cart) error {
	return r.Remove(ctx, cart.ID)
}
