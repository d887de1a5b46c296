package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ukydev/fleetquote/internal/models"
)

// MongoTenantCollection implements TenantCollection for MongoDB.
type MongoTenantCollection struct {
	Collection *mongo.Collection
}

// InsertTenant stores tenant. A taken slug is reported as xerrors.ErrConflict.
func (c *MongoTenantCollection) InsertTenant(ctx context.Context, tenant *models.Tenant) error {
	if c.Collection == nil {
		return errNilCollection
	}
	if tenant.ID.IsZero() {
		tenant.ID = primitive.NewObjectID()
	}
	if tenant.Slug == "" {
		tenant.Slug = models.Slugify(tenant.Name)
	}
	if tenant.Status == "" {
		tenant.Status = models.TenantStatusActive
	}
	now := time.Now()
	tenant.CreatedAt = now
	tenant.UpdatedAt = now

	_, err := c.Collection.InsertOne(ctx, tenant)
	return duplicate(err, "tenant")
}

func (c *MongoTenantCollection) FindTenantByID(ctx context.Context, id string) (*models.Tenant, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var tenant models.Tenant
	if err := c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&tenant); err != nil {
		return nil, notFound(err, "tenant")
	}
	return &tenant, nil
}

// DeleteTenant removes the tenant document only; it is used to undo a
// registration that failed before any tenant data was written.
func (c *MongoTenantCollection) DeleteTenant(ctx context.Context, id string) error {
	if c.Collection == nil {
		return errNilCollection
	}
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	res, err := c.Collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return notFound(mongo.ErrNoDocuments, "tenant")
	}
	return nil
}
