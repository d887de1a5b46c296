package db

import "go.mongodb.org/mongo-driver/mongo"

// Store bundles the collections of one database.
type Store struct {
	Tenants    *MongoTenantCollection
	Users      *MongoUserCollection
	Vehicles   *MongoVehicleCollection
	Parameters *MongoParametersCollection
	Quotations *MongoQuotationCollection
}

// NewStore binds every collection to database.
func NewStore(database *mongo.Database) *Store {
	return &Store{
		Tenants:    &MongoTenantCollection{Collection: database.Collection(TenantsCollection)},
		Users:      &MongoUserCollection{Collection: database.Collection(UsersCollection)},
		Vehicles:   &MongoVehicleCollection{Collection: database.Collection(VehiclesCollection)},
		Parameters: &MongoParametersCollection{Collection: database.Collection(ParametersCollectionName)},
		Quotations: &MongoQuotationCollection{Collection: database.Collection(QuotationsCollection)},
	}
}
