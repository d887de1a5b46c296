package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ukydev/fleetquote/internal/models"
	"github.com/ukydev/fleetquote/internal/xerrors"
)

// MongoParametersCollection implements ParametersCollection for MongoDB.
//
// The one-active-record rule is kept by always deactivating siblings before
// activating a record, backed by the one_active_per_tenant partial unique
// index from EnsureIndexes.
type MongoParametersCollection struct {
	Collection *mongo.Collection
}

// InsertParameters stores p and sets its ID.
func (c *MongoParametersCollection) InsertParameters(ctx context.Context, p *models.SystemParameters) error {
	if c.Collection == nil {
		return errNilCollection
	}
	now := time.Now()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	p.CreatedAt = now
	p.UpdatedAt = now

	if p.IsActive {
		if err := c.deactivateOthers(ctx, p.TenantID, p.ID); err != nil {
			return err
		}
	}

	_, err := c.Collection.InsertOne(ctx, p)
	return duplicate(err, "system parameters")
}

// FindActiveParameters returns the tenant's active record.
func (c *MongoParametersCollection) FindActiveParameters(ctx context.Context, tenantID string) (*models.SystemParameters, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}

	var p models.SystemParameters
	err := c.Collection.FindOne(ctx, bson.M{"tenant_id": tenantID, "is_active": true}).Decode(&p)
	if err != nil {
		return nil, notFound(err, "active system parameters")
	}
	return &p, nil
}

// FindParametersByID finds a record by its ID.
func (c *MongoParametersCollection) FindParametersByID(ctx context.Context, tenantID, id string) (*models.SystemParameters, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	filter, err := tenantScope(tenantID, id)
	if err != nil {
		return nil, err
	}

	var p models.SystemParameters
	if err := c.Collection.FindOne(ctx, filter).Decode(&p); err != nil {
		return nil, notFound(err, "system parameters")
	}
	return &p, nil
}

// ListParameters returns every record of a tenant, newest year first.
func (c *MongoParametersCollection) ListParameters(ctx context.Context, tenantID string) ([]models.SystemParameters, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}

	opts := options.Find().SetSort(bson.D{{Key: "year", Value: -1}, {Key: "created_at", Value: -1}})
	cursor, err := c.Collection.Find(ctx, bson.M{"tenant_id": tenantID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	list := []models.SystemParameters{}
	if err := cursor.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// UpdateParameters replaces the rates of a record. Activation is not
// changed here, use ActivateParameters.
func (c *MongoParametersCollection) UpdateParameters(ctx context.Context, tenantID, id string, p models.SystemParameters) error {
	if c.Collection == nil {
		return errNilCollection
	}
	filter, err := tenantScope(tenantID, id)
	if err != nil {
		return err
	}

	update := bson.M{"$set": bson.M{
		"year":                     p.Year,
		"fuel_price":               p.FuelPrice,
		"meal_cost_per_day":        p.MealCostPerDay,
		"hotel_cost_per_night":     p.HotelCostPerNight,
		"driver_incentive_per_day": p.DriverIncentivePerDay,
		"exchange_rate":            p.ExchangeRate,
		"exchange_rate_override":   p.ExchangeRateOverride,
		"preferred_distance_unit":  p.PreferredDistanceUnit,
		"preferred_currency":       p.PreferredCurrency,
		"markup_options":           p.MarkupOptions,
		"recommended_markup":       p.RecommendedMarkup,
		"local_rounding_unit":      p.LocalRoundingUnit,
		"foreign_rounding_unit":    p.ForeignRoundingUnit,
		"toll_fees":                p.TollFees,
		"exit_toll":                p.ExitToll,
		"updated_at":               time.Now(),
	}}

	result, err := c.Collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return xerrors.Wrap(xerrors.ErrNotFound, "system parameters")
	}
	return nil
}

// ActivateParameters deactivates every sibling, then activates id.
func (c *MongoParametersCollection) ActivateParameters(ctx context.Context, tenantID, id string) error {
	if c.Collection == nil {
		return errNilCollection
	}
	filter, err := tenantScope(tenantID, id)
	if err != nil {
		return err
	}

	// Check the target first so a bad id never leaves the tenant without an
	// active record.
	if err := c.Collection.FindOne(ctx, filter).Err(); err != nil {
		return notFound(err, "system parameters")
	}

	target := filter["_id"].(primitive.ObjectID)
	if err := c.deactivateOthers(ctx, tenantID, target); err != nil {
		return err
	}

	result, err := c.Collection.UpdateOne(ctx, filter, bson.M{"$set": bson.M{
		"is_active":  true,
		"updated_at": time.Now(),
	}})
	if err != nil {
		return duplicate(err, "activate system parameters")
	}
	if result.MatchedCount == 0 {
		return xerrors.Wrap(xerrors.ErrNotFound, "system parameters")
	}
	return nil
}

func (c *MongoParametersCollection) deactivateOthers(ctx context.Context, tenantID string, keep primitive.ObjectID) error {
	_, err := c.Collection.UpdateMany(ctx,
		bson.M{"tenant_id": tenantID, "is_active": true, "_id": bson.M{"$ne": keep}},
		bson.M{"$set": bson.M{"is_active": false, "updated_at": time.Now()}},
	)
	return err
}
