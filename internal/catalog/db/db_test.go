package db_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"ewaste-pickup/internal/catalog/db"
	"ewaste-pickup/internal/models"
)

func setupTestDB(t *testing.T) *db.DB {
	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:")
	if err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}
	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	ctx := context.Background()
	if err := bunDB.ResetModel(ctx, (*models.Category)(nil)); err != nil {
		t.Fatalf("Failed to create categories table: %v", err)
	}
	if err := bunDB.ResetModel(ctx, (*models.Pincode)(nil)); err != nil {
		t.Fatalf("Failed to create pincodes table: %v", err)
	}
	return &db.DB{Bun: bunDB}
}

func TestCategoryRoundTrip(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	cat := models.Category{
		ID:                   uuid.NewString(),
		Name:                 "Laptops",
		BasePrice:            800,
		Unit:                 models.UnitPiece,
		ConditionMultipliers: models.DefaultConditionMultipliers(),
		Subcategories:        []models.Subcategory{{Name: "Gaming", Multiplier: 1.5}},
		IsActive:             true,
	}
	assert.NoError(t, store.CreateCategory(ctx, cat))

	got, err := store.GetCategoryByID(ctx, cat.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Laptops", got.Name)
	assert.Equal(t, 1.0, got.ConditionMultipliers[models.ConditionExcellent])
	assert.Len(t, got.Subcategories, 1)

	// lookup by name is nil on absent, not an error
	byName, err := store.GetCategoryByName(ctx, "Laptops")
	assert.NoError(t, err)
	assert.NotNil(t, byName)

	missing, err := store.GetCategoryByName(ctx, "Toasters")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestListCategoriesActiveOnly(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	active := models.Category{ID: uuid.NewString(), Name: "Laptops", BasePrice: 800, Unit: models.UnitPiece, IsActive: true}
	retired := models.Category{ID: uuid.NewString(), Name: "CRT Monitors", BasePrice: 100, Unit: models.UnitPiece, IsActive: false}
	assert.NoError(t, store.CreateCategory(ctx, active))
	assert.NoError(t, store.CreateCategory(ctx, retired))

	categories, err := store.ListCategories(ctx, true)
	assert.NoError(t, err)
	assert.Len(t, categories, 1)
	assert.Equal(t, "Laptops", categories[0].Name)

	categories, err = store.ListCategories(ctx, false)
	assert.NoError(t, err)
	assert.Len(t, categories, 2)
}

func TestUpdateCategory(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	cat := models.Category{ID: uuid.NewString(), Name: "Laptops", BasePrice: 800, Unit: models.UnitPiece, IsActive: true}
	assert.NoError(t, store.CreateCategory(ctx, cat))

	cat.BasePrice = 900
	cat.IsActive = false
	assert.NoError(t, store.UpdateCategory(ctx, cat))

	got, err := store.GetCategoryByID(ctx, cat.ID)
	assert.NoError(t, err)
	assert.Equal(t, 900.0, got.BasePrice)
	assert.False(t, got.IsActive)
}

func TestPincodeRoundTrip(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	pin := models.Pincode{
		ID:               uuid.NewString(),
		Code:             "560001",
		City:             "Bengaluru",
		State:            "Karnataka",
		IsServiceable:    true,
		PickupCharge:     50,
		AssignedAgentIDs: []string{"a1"},
	}
	assert.NoError(t, store.CreatePincode(ctx, pin))

	got, err := store.GetPincodeByCode(ctx, "560001")
	assert.NoError(t, err)
	assert.NotNil(t, got)
	assert.Equal(t, "Bengaluru", got.City)
	assert.Equal(t, 50.0, got.PickupCharge)

	missing, err := store.GetPincodeByCode(ctx, "999999")
	assert.NoError(t, err)
	assert.Nil(t, missing)

	all, err := store.ListPincodes(ctx)
	assert.NoError(t, err)
	assert.Len(t, all, 1)
}
