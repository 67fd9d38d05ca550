package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	shoperrors "barberbook/internal/shops/errors"
	"barberbook/pkg/config"
	mongotx "barberbook/pkg/db/mongo"
	"barberbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Shops"
)

type mongoShopRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type ShopRepository interface {
	Create(ctx context.Context, shop *model.Shop) error
	FindByID(ctx context.Context, id string) (*model.Shop, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Shop, error)
	Update(ctx context.Context, id string, shop *model.Shop) (*mongo.UpdateResult, error)
	Delete(ctx context.Context, id string) error

	FindByNameAndCity(ctx context.Context, name string, city string) ([]*model.Shop, error)
	SearchByCity(ctx context.Context, city string, limit int, offset int64) ([]*model.Shop, error)
	CountByCity(ctx context.Context, city string) (int64, error)
	Count(ctx context.Context) (int64, error)

	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoShopRepository(cfg *config.Config) ShopRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoShopRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout if not already in a transaction.
// SessionContext cannot be wrapped without breaking transaction semantics, so
// inside a transaction the original context is returned with a no-op cancel.
func (r *mongoShopRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoShopRepository) Create(ctx context.Context, shop *model.Shop) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	shop.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, shop)
	if err != nil {
		return fmt.Errorf("failed to create shop: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		shop.ID = oid.Hex()
	}

	return nil
}

func (r *mongoShopRepository) FindByID(ctx context.Context, id string) (*model.Shop, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", shoperrors.ErrInvalidID, id)
	}
	filter := bson.M{"_id": objectID}

	var shop model.Shop
	err = r.collection.FindOne(ctx, filter).Decode(&shop)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", shoperrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find shop: %w", err)
	}
	return &shop, nil
}

func (r *mongoShopRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Shop, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query shops: %w", err)
	}
	defer cursor.Close(ctx)

	var shops []*model.Shop
	if err = cursor.All(ctx, &shops); err != nil {
		return nil, fmt.Errorf("failed to decode shops: %w", err)
	}

	return shops, nil
}

func (r *mongoShopRepository) Update(ctx context.Context, id string, shop *model.Shop) (*mongo.UpdateResult, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", shoperrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID}
	update := bson.M{
		"$set": bson.M{
			"name":     shop.Name,
			"city":     shop.City,
			"address":  shop.Address,
			"phone":    shop.Phone,
			"schedule": shop.Schedule,
			"services": shop.Services,
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update shop: %w", err)
	}

	if result.MatchedCount == 0 {
		return nil, fmt.Errorf("%w: %s", shoperrors.ErrNotFound, id)
	}

	return result, nil
}

func (r *mongoShopRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", shoperrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID}
	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete shop: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", shoperrors.ErrNotFound, id)
	}

	return nil
}

// FindByNameAndCity backs the duplicate check at create time. Matching is
// exact on the stored normalized values.
func (r *mongoShopRepository) FindByNameAndCity(ctx context.Context, name string, city string) ([]*model.Shop, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"name": name, "city": city}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find shops by name and city: %w", err)
	}
	defer cursor.Close(ctx)

	var shops []*model.Shop
	if err := cursor.All(ctx, &shops); err != nil {
		return nil, fmt.Errorf("failed to decode shops: %w", err)
	}

	return shops, nil
}

func (r *mongoShopRepository) SearchByCity(ctx context.Context, city string, limit int, offset int64) ([]*model.Shop, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"city": city}

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find shops in city [%s]: %w", city, err)
	}
	defer cursor.Close(ctx)

	var shops []*model.Shop
	if err := cursor.All(ctx, &shops); err != nil {
		return nil, fmt.Errorf("failed to decode search results: %w", err)
	}

	return shops, nil
}

func (r *mongoShopRepository) CountByCity(ctx context.Context, city string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"city": city})
	if err != nil {
		return 0, fmt.Errorf("failed to count shops in city [%s]: %w", city, err)
	}
	return count, nil
}

func (r *mongoShopRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count shops: %w", err)
	}
	return count, nil
}

func (r *mongoShopRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
