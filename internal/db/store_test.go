package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/ukydev/fleetquote/internal/costs"
	"github.com/ukydev/fleetquote/internal/models"
	"github.com/ukydev/fleetquote/internal/units"
	"github.com/ukydev/fleetquote/internal/xerrors"
)

func TestMongoVehicleCollection_TenantScoped(t *testing.T) {
	ctx := context.Background()
	store := NewStore(testDatabase(t))

	v := &models.Vehicle{
		TenantID:           "tenant-a",
		Name:               "Hiace 02",
		FuelCapacity:       18,
		FuelEfficiency:     10,
		FuelEfficiencyUnit: units.KmPerLiter,
		DistanceUnit:       units.Kilometer,
		CostPerDistance:    2,
		CostPerDay:         900,
		Status:             models.VehicleStatusActive,
	}
	require.NoError(t, store.Vehicles.InsertVehicle(ctx, v))

	got, err := store.Vehicles.FindVehicleByID(ctx, "tenant-a", v.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "Hiace 02", got.Name)

	_, err = store.Vehicles.FindVehicleByID(ctx, "tenant-b", v.ID.Hex())
	assert.ErrorIs(t, err, xerrors.ErrNotFound)

	v.Status = models.VehicleStatusMaintenance
	require.NoError(t, store.Vehicles.UpdateVehicle(ctx, "tenant-a", v.ID.Hex(), *v))
	assert.ErrorIs(t, store.Vehicles.UpdateVehicle(ctx, "tenant-b", v.ID.Hex(), *v), xerrors.ErrNotFound)

	cursor, err := store.Vehicles.FindVehicles(ctx, "tenant-a", VehicleFilter{Status: models.VehicleStatusMaintenance})
	require.NoError(t, err)
	var list []models.Vehicle
	require.NoError(t, cursor.All(ctx, &list))
	require.Len(t, list, 1)
	assert.False(t, list[0].CreatedAt.IsZero())

	require.NoError(t, store.Vehicles.DeleteVehicle(ctx, "tenant-a", v.ID.Hex()))
	assert.ErrorIs(t, store.Vehicles.DeleteVehicle(ctx, "tenant-a", v.ID.Hex()), xerrors.ErrNotFound)
}

func TestMongoParametersCollection_SingleActive(t *testing.T) {
	ctx := context.Background()
	database := testDatabase(t)
	store := NewStore(database)

	first := models.DefaultSystemParameters("tenant-a", 2025)
	require.NoError(t, store.Parameters.InsertParameters(ctx, first))

	second := models.DefaultSystemParameters("tenant-a", 2026)
	require.NoError(t, store.Parameters.InsertParameters(ctx, second))

	other := models.DefaultSystemParameters("tenant-b", 2026)
	require.NoError(t, store.Parameters.InsertParameters(ctx, other))

	countActive := func(tenant string) int64 {
		n, err := database.Collection(ParametersCollectionName).CountDocuments(ctx, bson.M{"tenant_id": tenant, "is_active": true})
		require.NoError(t, err)
		return n
	}

	assert.EqualValues(t, 1, countActive("tenant-a"))
	active, err := store.Parameters.FindActiveParameters(ctx, "tenant-a")
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)

	require.NoError(t, store.Parameters.ActivateParameters(ctx, "tenant-a", first.ID.Hex()))
	assert.EqualValues(t, 1, countActive("tenant-a"))
	assert.EqualValues(t, 1, countActive("tenant-b"))
	active, err = store.Parameters.FindActiveParameters(ctx, "tenant-a")
	require.NoError(t, err)
	assert.Equal(t, first.ID, active.ID)

	// A record of another tenant cannot be activated and nothing changes.
	err = store.Parameters.ActivateParameters(ctx, "tenant-a", other.ID.Hex())
	assert.ErrorIs(t, err, xerrors.ErrNotFound)
	assert.EqualValues(t, 1, countActive("tenant-a"))

	list, err := store.Parameters.ListParameters(ctx, "tenant-a")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 2026, list[0].Year)
}

func TestMongoParametersCollection_UpdateKeepsActivation(t *testing.T) {
	ctx := context.Background()
	store := NewStore(testDatabase(t))

	p := models.DefaultSystemParameters("tenant-a", 2026)
	require.NoError(t, store.Parameters.InsertParameters(ctx, p))

	p.FuelPrice = 118.4
	p.IsActive = false
	require.NoError(t, store.Parameters.UpdateParameters(ctx, "tenant-a", p.ID.Hex(), *p))

	got, err := store.Parameters.FindParametersByID(ctx, "tenant-a", p.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 118.4, got.FuelPrice)
	assert.True(t, got.IsActive)
}

func TestMongoQuotationCollection(t *testing.T) {
	ctx := context.Background()
	store := NewStore(testDatabase(t))

	for i, ref := range []string{"01HZX0000000000000000000A1", "01HZX0000000000000000000A2"} {
		q := &models.Quotation{
			TenantID:  "tenant-a",
			Reference: ref,
			VehicleID: "v1",
			Status:    models.QuotationStatusDraft,
			Costs:     costs.DetailedCosts{Total: float64(1000 * (i + 1))},
		}
		require.NoError(t, store.Quotations.InsertQuotation(ctx, q))
	}

	dup := &models.Quotation{TenantID: "tenant-a", Reference: "01HZX0000000000000000000A1"}
	assert.ErrorIs(t, store.Quotations.InsertQuotation(ctx, dup), xerrors.ErrConflict)

	cursor, err := store.Quotations.FindQuotations(ctx, "tenant-a", QuotationFilter{Limit: 10})
	require.NoError(t, err)
	var list []models.Quotation
	require.NoError(t, cursor.All(ctx, &list))
	assert.Len(t, list, 2)

	got, err := store.Quotations.FindQuotationByID(ctx, "tenant-a", list[0].ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, list[0].Reference, got.Reference)

	_, err = store.Quotations.FindQuotationByID(ctx, "tenant-b", list[0].ID.Hex())
	assert.ErrorIs(t, err, xerrors.ErrNotFound)
}
