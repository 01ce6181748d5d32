package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jeffloic/artisan-showroom/internal/domain"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type orderItemDocument struct {
	ID        string               `bson:"id"`
	Name      string               `bson:"name"`
	Material  string               `bson:"material"`
	Color     string               `bson:"color"`
	UnitPrice primitive.Decimal128 `bson:"unit_price"`
	Quantity  int                  `bson:"quantity"`
}

type orderDocument struct {
	ID            string               `bson:"_id"`
	Reference     string               `bson:"reference"`
	Items         []orderItemDocument  `bson:"items"`
	TotalPaid     primitive.Decimal128 `bson:"total_paid"`
	AmountCharged int64                `bson:"amount_charged"`
	Currency      string               `bson:"currency"`
	Status        string               `bson:"status"`
	CreatedAt     time.Time            `bson:"created_at"`
}

type MongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{
		collection: db.Collection("orders"),
	}
}

func (m *MongoRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "reference", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
	}

	_, err := m.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

// CreateOrder inserts the order through an upsert so the server clock stamps
// created_at. The filter never matches a stored order, so a second write for the
// same reference hits the unique index instead of updating.
func (m *MongoRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	doc, err := toDocument(order)
	if err != nil {
		return err
	}

	filter := bson.M{
		"reference":  order.Reference,
		"created_at": bson.M{"$exists": false},
	}
	update := bson.M{
		"$setOnInsert": bson.M{
			"_id":            doc.ID,
			"items":          doc.Items,
			"total_paid":     doc.TotalPaid,
			"amount_charged": doc.AmountCharged,
			"currency":       doc.Currency,
			"status":         doc.Status,
		},
		"$currentDate": bson.M{"created_at": true},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var stored orderDocument
	err = m.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&stored)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateOrder
		}
		return fmt.Errorf("failed to insert order: %w", err)
	}

	order.CreatedAt = stored.CreatedAt
	return nil
}

func (m *MongoRepository) GetOrderByID(ctx context.Context, id string) (*domain.Order, error) {
	return m.findOne(ctx, bson.M{"_id": id})
}

func (m *MongoRepository) GetOrderByReference(ctx context.Context, reference string) (*domain.Order, error) {
	return m.findOne(ctx, bson.M{"reference": reference})
}

func (m *MongoRepository) findOne(ctx context.Context, filter bson.M) (*domain.Order, error) {
	var doc orderDocument
	err := m.collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return fromDocument(doc)
}

func (m *MongoRepository) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.collection.Database().Client().Disconnect(ctx)
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("convert %s to decimal128: %w", d, err)
	}
	return v, nil
}

func fromDecimal128(v primitive.Decimal128) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("convert decimal128 %s: %w", v, err)
	}
	return d, nil
}

func toDocument(order *domain.Order) (orderDocument, error) {
	total, err := toDecimal128(order.TotalPaid)
	if err != nil {
		return orderDocument{}, err
	}
	items := make([]orderItemDocument, 0, len(order.Items))
	for _, item := range order.Items {
		price, err := toDecimal128(item.UnitPrice)
		if err != nil {
			return orderDocument{}, err
		}
		items = append(items, orderItemDocument{
			ID:        item.ID,
			Name:      item.Name,
			Material:  item.Material,
			Color:     item.Color,
			UnitPrice: price,
			Quantity:  item.Quantity,
		})
	}
	return orderDocument{
		ID:            order.ID,
		Reference:     order.Reference,
		Items:         items,
		TotalPaid:     total,
		AmountCharged: order.AmountCharged,
		Currency:      order.Currency,
		Status:        string(order.Status),
	}, nil
}

func fromDocument(doc orderDocument) (*domain.Order, error) {
	total, err := fromDecimal128(doc.TotalPaid)
	if err != nil {
		return nil, err
	}
	items := make([]domain.CartLineItem, 0, len(doc.Items))
	for _, item := range doc.Items {
		price, err := fromDecimal128(item.UnitPrice)
		if err != nil {
			return nil, err
		}
		items = append(items, domain.CartLineItem{
			ID:        item.ID,
			Name:      item.Name,
			Material:  item.Material,
			Color:     item.Color,
			UnitPrice: price,
			Quantity:  item.Quantity,
		})
	}
	return &domain.Order{
		ID:            doc.ID,
		Reference:     doc.Reference,
		Items:         items,
		TotalPaid:     total,
		AmountCharged: doc.AmountCharged,
		Currency:      doc.Currency,
		Status:        domain.OrderStatus(doc.Status),
		CreatedAt:     doc.CreatedAt,
	}, nil
}
