package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/guildsync/guildsync/internal/domain/models"
)

const (
	reportsCollection  = "royalty_reports"
	productsCollection = "products"
)

// Repository defines the archive and catalog operations backed by MongoDB.
type Repository interface {
	SaveReport(ctx context.Context, report models.ArchivedReport) error
	SaveProduct(ctx context.Context, product models.Product) error
	KnownURLs(ctx context.Context) (map[string]struct{}, error)
}

// MongoDBRepository implements the Repository interface for MongoDB.
type MongoDBRepository struct {
	client *mongo.Client
	dbName string
}

// NewMongoDBRepository creates a new MongoDB repository.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBRepository{
		client: client,
		dbName: dbName,
	}, nil
}

// SaveReport stores the report, replacing an earlier copy of the same period.
func (r *MongoDBRepository) SaveReport(ctx context.Context, report models.ArchivedReport) error {
	collection := r.client.Database(r.dbName).Collection(reportsCollection)
	_, err := collection.ReplaceOne(ctx, reportFilter(report.Month, report.Year), report, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to archive report %s: %w", report.Period(), err)
	}
	return nil
}

// SaveProduct upserts a product keyed by its URL.
func (r *MongoDBRepository) SaveProduct(ctx context.Context, product models.Product) error {
	collection := r.client.Database(r.dbName).Collection(productsCollection)
	_, err := collection.ReplaceOne(ctx, bson.M{"url": product.URL}, product, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save product %s: %w", product.URL, err)
	}
	return nil
}

// KnownURLs lists the URLs of every stored product.
func (r *MongoDBRepository) KnownURLs(ctx context.Context) (map[string]struct{}, error) {
	collection := r.client.Database(r.dbName).Collection(productsCollection)
	values, err := collection.Distinct(ctx, "url", bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to list product urls: %w", err)
	}

	known := make(map[string]struct{}, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			known[s] = struct{}{}
		}
	}
	return known, nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func reportFilter(month string, year int) bson.D {
	return bson.D{{Key: "month", Value: month}, {Key: "year", Value: year}}
}
