package port

import (
	"context"

	"github.com/nikolayk812/cartservice/internal/domain"
)

type CartRepository interface {
	Create(ctx context.Context, cart domain.Cart) (domain.Cart, error)
	FindByID(ctx context.Context, id string) (domain.Cart, bool, error)
	// Update replaces every field of the stored cart except its ID.
	// A non-zero cart.Version must match the stored version.
	Update(ctx context.Context, id string, cart domain.Cart) (domain.Cart, error)
	Remove(ctx context.Context, id string) error
	RemoveCart(ctx context.Context, cart domain.Cart) error
}
