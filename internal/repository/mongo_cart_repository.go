package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nikolayk812/cartservice/internal/domain"
	"github.com/nikolayk812/cartservice/internal/port"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoCartDocument struct {
	ID              string               `bson:"_id"`
	CustomerID      string               `bson:"customer_id"`
	CustomerType    string               `bson:"customer_type"`
	ShippingMethod  string               `bson:"shipping_method"`
	ShippingAddress mongoAddressDocument `bson:"shipping_address"`
	Items           []mongoItemDocument  `bson:"items"`
	Version         int64                `bson:"version"`
	CreatedAt       time.Time            `bson:"created_at"`
	UpdatedAt       time.Time            `bson:"updated_at"`
}

type mongoAddressDocument struct {
	Country string `bson:"country"`
	City    string `bson:"city"`
	Street  string `bson:"street"`
}

type mongoItemDocument struct {
	ID       string               `bson:"id"`
	Name     string               `bson:"name"`
	Price    primitive.Decimal128 `bson:"price"`
	Quantity int                  `bson:"quantity"`
}

type mongoCartRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewMongoCart(coll *mongo.Collection) port.CartRepository {
	return &mongoCartRepository{
		coll: coll,
		now: func() time.Time {
			// BSON datetimes keep millisecond precision
			return time.Now().UTC().Truncate(time.Millisecond)
		},
	}
}

func (r *mongoCartRepository) Create(ctx context.Context, cart domain.Cart) (domain.Cart, error) {
	cart = cart.Clone()
	if cart.ID == "" {
		cart.ID = primitive.NewObjectID().Hex()
	}

	now := r.now()
	cart.Version = 1
	cart.UpdatedAt = now

	doc, err := mapDomainToMongo(cart)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("mapDomainToMongo: %w", err)
	}
	doc.CreatedAt = now

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.Cart{}, fmt.Errorf("cart[%s]: %w", cart.ID, domain.ErrCartAlreadyExists)
		}
		return domain.Cart{}, mongoStoreErr("coll.InsertOne", err)
	}

	return cart, nil
}

func (r *mongoCartRepository) FindByID(ctx context.Context, id string) (domain.Cart, bool, error) {
	if id == "" {
		return domain.Cart{}, false, fmt.Errorf("id is empty")
	}

	var doc mongoCartDocument
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Cart{}, false, nil
		}
		return domain.Cart{}, false, mongoStoreErr("coll.FindOne", err)
	}

	cart, err := mapMongoToDomain(doc)
	if err != nil {
		return domain.Cart{}, false, fmt.Errorf("mapMongoToDomain: %w", err)
	}

	return cart, true, nil
}

func (r *mongoCartRepository) Update(ctx context.Context, id string, cart domain.Cart) (domain.Cart, error) {
	if id == "" {
		return domain.Cart{}, fmt.Errorf("id is empty")
	}

	cart = cart.Clone()
	cart.ID = id

	doc, err := mapDomainToMongo(cart)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("mapDomainToMongo: %w", err)
	}

	filter := bson.M{"_id": id}
	if cart.Version != 0 {
		filter["version"] = cart.Version
	}

	// every field but _id and created_at is overwritten, so this is a full replace
	update := bson.M{
		"$set": bson.M{
			"customer_id":      doc.CustomerID,
			"customer_type":    doc.CustomerType,
			"shipping_method":  doc.ShippingMethod,
			"shipping_address": doc.ShippingAddress,
			"items":            doc.Items,
			"updated_at":       r.now(),
		},
		"$inc": bson.M{"version": 1},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var stored mongoCartDocument
	err = r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&stored)
	if err == nil {
		updated, err := mapMongoToDomain(stored)
		if err != nil {
			return domain.Cart{}, fmt.Errorf("mapMongoToDomain: %w", err)
		}
		return updated, nil
	}

	if !errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Cart{}, mongoStoreErr("coll.FindOneAndUpdate", err)
	}

	count, err := r.coll.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return domain.Cart{}, mongoStoreErr("coll.CountDocuments", err)
	}

	if count == 0 {
		return domain.Cart{}, fmt.Errorf("cart[%s]: %w", id, domain.ErrCartNotFound)
	}

	return domain.Cart{}, fmt.Errorf("cart[%s] version[%d]: %w", id, cart.Version, domain.ErrConcurrentUpdateConflict)
}

func (r *mongoCartRepository) Remove(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("id is empty")
	}

	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return mongoStoreErr("coll.DeleteOne", err)
	}

	return nil
}

func (r *mongoCartRepository) RemoveCart(ctx context.Context, cart domain.Cart) error {
	return r.Remove(ctx, cart.ID)
}

func mongoStoreErr(op string, err error) error {
	if mongo.IsNetworkError(err) ||
		mongo.IsTimeout(err) ||
		errors.Is(err, mongo.ErrClientDisconnected) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func mapDomainToMongo(cart domain.Cart) (mongoCartDocument, error) {
	items := make([]mongoItemDocument, 0, len(cart.Items))
	for _, item := range cart.Items {
		price, err := primitive.ParseDecimal128(item.Price.String())
		if err != nil {
			return mongoCartDocument{}, fmt.Errorf("price[%s] is not valid: %w", item.Price, err)
		}

		items = append(items, mongoItemDocument{
			ID:       item.ID,
			Name:     item.Name,
			Price:    price,
			Quantity: item.Quantity,
		})
	}

	return mongoCartDocument{
		ID:             cart.ID,
		CustomerID:     cart.CustomerID,
		CustomerType:   string(cart.CustomerType),
		ShippingMethod: string(cart.ShippingMethod),
		ShippingAddress: mongoAddressDocument{
			Country: cart.ShippingAddress.Country,
			City:    cart.ShippingAddress.City,
			Street:  cart.ShippingAddress.Street,
		},
		Items:     items,
		Version:   cart.Version,
		UpdatedAt: cart.UpdatedAt,
	}, nil
}

func mapMongoToDomain(doc mongoCartDocument) (domain.Cart, error) {
	customerType, err := domain.ParseCustomerType(doc.CustomerType)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("domain.ParseCustomerType: %w", err)
	}

	shippingMethod, err := domain.ParseShippingMethod(doc.ShippingMethod)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("domain.ParseShippingMethod: %w", err)
	}

	var items []domain.Item
	for _, item := range doc.Items {
		price, err := decimal.NewFromString(item.Price.String())
		if err != nil {
			return domain.Cart{}, fmt.Errorf("price[%s] is not valid: %w", item.Price, err)
		}

		items = append(items, domain.Item{
			ID:       item.ID,
			Name:     item.Name,
			Price:    price,
			Quantity: item.Quantity,
		})
	}

	return domain.Cart{
		ID:             doc.ID,
		CustomerID:     doc.CustomerID,
		CustomerType:   customerType,
		ShippingMethod: shippingMethod,
		ShippingAddress: domain.Address{
			Country: doc.ShippingAddress.Country,
			City:    doc.ShippingAddress.City,
			Street:  doc.ShippingAddress.Street,
		},
		Items:     items,
		Version:   doc.Version,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}
