package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/nikolayk812/cartservice/internal/domain"
	"github.com/nikolayk812/cartservice/internal/service"
	"go.uber.org/zap"
)

type CartManager interface {
	CreateCart(ctx context.Context, req service.CreateCartRequest) (domain.Cart, error)
	AddItem(ctx context.Context, cartID string, item domain.Item) (domain.Cart, error)
	FindByID(ctx context.Context, cartID string) (domain.Cart, bool, error)
	UpdateCart(ctx context.Context, cartID string, cart domain.Cart) (domain.Cart, error)
	DeleteCart(ctx context.Context, cartID string) error
	Checkout(ctx context.Context, cartID string) (domain.CheckoutSummary, error)
}

type MoneyFormatter interface {
	Format(m domain.Money) string
}

type Handler struct {
	manager   CartManager
	formatter MoneyFormatter
	logger    *zap.Logger
}

func NewHandler(manager CartManager, formatter MoneyFormatter, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		manager:   manager,
		formatter: formatter,
		logger:    logger,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) CreateCart(w http.ResponseWriter, r *http.Request) {
	var req createCartRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	cart, err := h.manager.CreateCart(r.Context(), service.CreateCartRequest{
		CustomerID:      req.CustomerID,
		CustomerType:    domain.CustomerType(req.CustomerType),
		ShippingMethod:  domain.ShippingMethod(req.ShippingMethod),
		ShippingAddress: mapAddressToDomain(req.ShippingAddress),
		Items:           withItemIDs(mapItemsToDomain(req.Items)),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/carts/"+cart.ID)
	writeJSON(w, http.StatusCreated, mapCartFromDomain(cart))
}

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	cartID := chi.URLParam(r, "cartId")

	var req itemRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	item := mapItemToDomain(req)
	if item.ID == "" {
		item.ID = uuid.NewString()
	}

	cart, err := h.manager.AddItem(r.Context(), cartID, item)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, mapCartFromDomain(cart))
}

func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	cartID := chi.URLParam(r, "cartId")

	cart, found, err := h.manager.FindByID(r.Context(), cartID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !found {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, mapCartFromDomain(cart))
}

func (h *Handler) UpdateCart(w http.ResponseWriter, r *http.Request) {
	cartID := chi.URLParam(r, "cartId")

	var req updateCartRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	cart, err := h.manager.UpdateCart(r.Context(), cartID, domain.Cart{
		CustomerID:      req.CustomerID,
		CustomerType:    domain.CustomerType(req.CustomerType),
		ShippingMethod:  domain.ShippingMethod(req.ShippingMethod),
		ShippingAddress: mapAddressToDomain(req.ShippingAddress),
		Items:           withItemIDs(mapItemsToDomain(req.Items)),
		Version:         req.Version,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, mapCartFromDomain(cart))
}

// DeleteCart answers 204 whether or not the cart existed.
func (h *Handler) DeleteCart(w http.ResponseWriter, r *http.Request) {
	cartID := chi.URLParam(r, "cartId")

	if err := h.manager.DeleteCart(r.Context(), cartID); err != nil {
		h.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	cartID := chi.URLParam(r, "cartId")

	summary, err := h.manager.Checkout(r.Context(), cartID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, h.mapSummaryFromDomain(summary))
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return badRequest(fmt.Errorf("decode body: %w", err))
	}
	return nil
}

func withItemIDs(items []domain.Item) []domain.Item {
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = uuid.NewString()
		}
	}
	return items
}
