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

// MongoVehicleCollection implements VehicleCollection for MongoDB.
type MongoVehicleCollection struct {
	Collection *mongo.Collection
}

// InsertVehicle inserts a vehicle record and sets its ID.
func (c *MongoVehicleCollection) InsertVehicle(ctx context.Context, vehicle *models.Vehicle) error {
	if c.Collection == nil {
		return errNilCollection
	}
	now := time.Now()
	if vehicle.ID.IsZero() {
		vehicle.ID = primitive.NewObjectID()
	}
	vehicle.CreatedAt = now
	vehicle.UpdatedAt = now

	_, err := c.Collection.InsertOne(ctx, vehicle)
	return err
}

// FindVehicles queries a tenant's vehicles.
func (c *MongoVehicleCollection) FindVehicles(ctx context.Context, tenantID string, filter VehicleFilter, opts ...*options.FindOptions) (Cursor, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}

	query := bson.M{"tenant_id": tenantID}
	if filter.Status != "" {
		query["status"] = filter.Status
	}

	cursor, err := c.Collection.Find(ctx, query, opts...)
	if err != nil {
		return nil, err
	}
	return &mongoCursor{cursor: cursor}, nil
}

// FindVehicleByID finds a vehicle by its ID.
func (c *MongoVehicleCollection) FindVehicleByID(ctx context.Context, tenantID, id string) (*models.Vehicle, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	filter, err := tenantScope(tenantID, id)
	if err != nil {
		return nil, err
	}

	var vehicle models.Vehicle
	if err := c.Collection.FindOne(ctx, filter).Decode(&vehicle); err != nil {
		return nil, notFound(err, "vehicle")
	}
	return &vehicle, nil
}

// UpdateVehicle replaces the editable fields of a vehicle.
func (c *MongoVehicleCollection) UpdateVehicle(ctx context.Context, tenantID, id string, vehicle models.Vehicle) error {
	if c.Collection == nil {
		return errNilCollection
	}
	filter, err := tenantScope(tenantID, id)
	if err != nil {
		return err
	}

	update := bson.M{"$set": bson.M{
		"name":                 vehicle.Name,
		"make":                 vehicle.Make,
		"model":                vehicle.Model,
		"year":                 vehicle.Year,
		"plate":                vehicle.Plate,
		"passenger_capacity":   vehicle.PassengerCapacity,
		"fuel_capacity":        vehicle.FuelCapacity,
		"fuel_efficiency":      vehicle.FuelEfficiency,
		"fuel_efficiency_unit": vehicle.FuelEfficiencyUnit,
		"cost_per_distance":    vehicle.CostPerDistance,
		"cost_per_day":         vehicle.CostPerDay,
		"distance_unit":        vehicle.DistanceUnit,
		"status":               vehicle.Status,
		"updated_at":           time.Now(),
	}}

	result, err := c.Collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return xerrors.Wrap(xerrors.ErrNotFound, "vehicle")
	}
	return nil
}

// DeleteVehicle deletes a vehicle by its ID.
func (c *MongoVehicleCollection) DeleteVehicle(ctx context.Context, tenantID, id string) error {
	if c.Collection == nil {
		return errNilCollection
	}
	filter, err := tenantScope(tenantID, id)
	if err != nil {
		return err
	}

	result, err := c.Collection.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return xerrors.Wrap(xerrors.ErrNotFound, "vehicle")
	}
	return nil
}
