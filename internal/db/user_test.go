package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/ukydev/fleetquote/internal/models"
	"github.com/ukydev/fleetquote/internal/xerrors"
)

func newTestUser() *models.User {
	return &models.User{
		TenantID:     "tenant-1",
		Username:     "testuser",
		Email:        "test@example.com",
		PasswordHash: "hashedpassword",
		Role:         models.RoleAdmin,
		FirstName:    "Test",
		LastName:     "User",
	}
}

func TestMongoUserCollection_InsertUser(t *testing.T) {
	database := testDatabase(t)
	collection := database.Collection(UsersCollection)
	userCollection := &MongoUserCollection{Collection: collection}

	user := newTestUser()
	err := userCollection.InsertUser(context.Background(), user)
	require.NoError(t, err)
	assert.False(t, user.ID.IsZero())

	// Verify user was inserted
	var foundUser models.User
	err = collection.FindOne(context.Background(), bson.M{"username": "testuser"}).Decode(&foundUser)
	assert.NoError(t, err)
	assert.Equal(t, user.Username, foundUser.Username)
	assert.Equal(t, user.TenantID, foundUser.TenantID)
	assert.Equal(t, user.Role, foundUser.Role)
	assert.True(t, foundUser.IsActive)
	assert.NotZero(t, foundUser.CreatedAt)

	// Username is unique
	dup := newTestUser()
	dup.Email = "other@example.com"
	err = userCollection.InsertUser(context.Background(), dup)
	assert.ErrorIs(t, err, xerrors.ErrConflict)
}

func TestMongoUserCollection_Find(t *testing.T) {
	database := testDatabase(t)
	userCollection := &MongoUserCollection{Collection: database.Collection(UsersCollection)}

	user := newTestUser()
	require.NoError(t, userCollection.InsertUser(context.Background(), user))

	byID, err := userCollection.FindUserByID(context.Background(), user.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, user.Username, byID.Username)

	byName, err := userCollection.FindUserByUsername(context.Background(), "testuser")
	require.NoError(t, err)
	assert.Equal(t, user.Email, byName.Email)

	byEmail, err := userCollection.FindUserByEmail(context.Background(), "test@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	_, err = userCollection.FindUserByUsername(context.Background(), "nobody")
	assert.ErrorIs(t, err, xerrors.ErrNotFound)

	_, err = userCollection.FindUserByID(context.Background(), "invalid-id")
	assert.Error(t, err)
}

func TestMongoUserCollection_UpdateUser(t *testing.T) {
	database := testDatabase(t)
	userCollection := &MongoUserCollection{Collection: database.Collection(UsersCollection)}

	user := newTestUser()
	require.NoError(t, userCollection.InsertUser(context.Background(), user))

	user.FirstName = "Updated"
	err := userCollection.UpdateUser(context.Background(), user.ID.Hex(), *user)
	require.NoError(t, err)

	updated, err := userCollection.FindUserByID(context.Background(), user.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "Updated", updated.FirstName)
}

func TestMongoUserCollection_UpdateLastLogin(t *testing.T) {
	database := testDatabase(t)
	userCollection := &MongoUserCollection{Collection: database.Collection(UsersCollection)}

	user := newTestUser()
	require.NoError(t, userCollection.InsertUser(context.Background(), user))

	err := userCollection.UpdateLastLogin(context.Background(), user.ID.Hex())
	assert.NoError(t, err)

	updatedUser, err := userCollection.FindUserByID(context.Background(), user.ID.Hex())
	assert.NoError(t, err)
	assert.NotNil(t, updatedUser.LastLogin)
}

func TestMongoUserCollection_ByTenantAndDelete(t *testing.T) {
	database := testDatabase(t)
	userCollection := &MongoUserCollection{Collection: database.Collection(UsersCollection)}
	ctx := context.Background()

	user := newTestUser()
	require.NoError(t, userCollection.InsertUser(ctx, user))
	other := newTestUser()
	other.Username, other.Email, other.TenantID = "otheruser", "other@example.com", "tenant-2"
	require.NoError(t, userCollection.InsertUser(ctx, other))

	users, err := userCollection.FindUsersByTenant(ctx, "tenant-1")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "testuser", users[0].Username)

	none, err := userCollection.FindUsersByTenant(ctx, "tenant-3")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	// Deleting through the wrong tenant is a miss.
	assert.ErrorIs(t, userCollection.DeleteUser(ctx, "tenant-2", user.ID.Hex()), xerrors.ErrNotFound)
	require.NoError(t, userCollection.DeleteUser(ctx, "tenant-1", user.ID.Hex()))
	_, err = userCollection.FindUserByID(ctx, user.ID.Hex())
	assert.ErrorIs(t, err, xerrors.ErrNotFound)
}

func TestMongoTenantCollection(t *testing.T) {
	database := testDatabase(t)
	tenants := &MongoTenantCollection{Collection: database.Collection(TenantsCollection)}
	ctx := context.Background()

	tenant := &models.Tenant{Name: "Transportes del Valle"}
	require.NoError(t, tenants.InsertTenant(ctx, tenant))
	assert.Equal(t, "transportes-del-valle", tenant.Slug)
	assert.Equal(t, models.TenantStatusActive, tenant.Status)
	assert.NotZero(t, tenant.UpdatedAt)

	found, err := tenants.FindTenantByID(ctx, tenant.ID.Hex())
	require.NoError(t, err)
	assert.True(t, found.IsActive())

	// Same company name, different spelling.
	err = tenants.InsertTenant(ctx, &models.Tenant{Name: "TRANSPORTES  DEL VALLE"})
	assert.ErrorIs(t, err, xerrors.ErrConflict)

	require.NoError(t, tenants.DeleteTenant(ctx, tenant.ID.Hex()))
	assert.ErrorIs(t, tenants.DeleteTenant(ctx, tenant.ID.Hex()), xerrors.ErrNotFound)
	_, err = tenants.FindTenantByID(ctx, tenant.ID.Hex())
	assert.ErrorIs(t, err, xerrors.ErrNotFound)
}
