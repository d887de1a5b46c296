package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ukydev/fleetquote/internal/models"
)

const defaultQuotationPageSize = 50

// MongoQuotationCollection implements QuotationCollection for MongoDB.
type MongoQuotationCollection struct {
	Collection *mongo.Collection
}

// InsertQuotation stores q and sets its ID.
func (c *MongoQuotationCollection) InsertQuotation(ctx context.Context, q *models.Quotation) error {
	if c.Collection == nil {
		return errNilCollection
	}
	if q.ID.IsZero() {
		q.ID = primitive.NewObjectID()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now()
	}

	_, err := c.Collection.InsertOne(ctx, q)
	return duplicate(err, "quotation")
}

// FindQuotationByID finds a quotation by its ID.
func (c *MongoQuotationCollection) FindQuotationByID(ctx context.Context, tenantID, id string) (*models.Quotation, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	filter, err := tenantScope(tenantID, id)
	if err != nil {
		return nil, err
	}

	var q models.Quotation
	if err := c.Collection.FindOne(ctx, filter).Decode(&q); err != nil {
		return nil, notFound(err, "quotation")
	}
	return &q, nil
}

// FindQuotations lists a tenant's quotations, newest first.
func (c *MongoQuotationCollection) FindQuotations(ctx context.Context, tenantID string, filter QuotationFilter) (Cursor, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}

	query := bson.M{"tenant_id": tenantID}
	if filter.VehicleID != "" {
		query["vehicle_id"] = filter.VehicleID
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultQuotationPageSize
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit).
		SetSkip(filter.Skip)

	cursor, err := c.Collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	return &mongoCursor{cursor: cursor}, nil
}
