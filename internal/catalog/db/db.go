package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"ewaste-pickup/internal/models"
)

// DB is the bun-backed store for catalog reference data.
type DB struct {
	Bun *bun.DB
}

// ---------------- CATEGORIES ----------------

func (d *DB) CreateCategory(ctx context.Context, category models.Category) error {
	_, err := d.Bun.NewInsert().Model(&category).Exec(ctx)
	return err
}

func (d *DB) GetCategoryByID(ctx context.Context, id string) (*models.Category, error) {
	var category models.Category
	err := d.Bun.NewSelect().
		Model(&category).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (d *DB) GetCategoryByName(ctx context.Context, name string) (*models.Category, error) {
	var category models.Category
	err := d.Bun.NewSelect().
		Model(&category).
		Where("name = ?", name).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (d *DB) ListCategories(ctx context.Context, activeOnly bool) ([]models.Category, error) {
	var categories []models.Category
	q := d.Bun.NewSelect().
		Model(&categories).
		Order("sort_order", "name")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return categories, nil
}

func (d *DB) UpdateCategory(ctx context.Context, category models.Category) error {
	_, err := d.Bun.NewUpdate().
		Model(&category).
		Column("name", "description", "icon", "base_price", "unit",
			"condition_multipliers", "subcategories", "is_active", "sort_order").
		Where("id = ?", category.ID).
		Exec(ctx)
	return err
}

// ---------------- PINCODES ----------------

func (d *DB) CreatePincode(ctx context.Context, pincode models.Pincode) error {
	_, err := d.Bun.NewInsert().Model(&pincode).Exec(ctx)
	return err
}

func (d *DB) GetPincodeByCode(ctx context.Context, code string) (*models.Pincode, error) {
	var pincode models.Pincode
	err := d.Bun.NewSelect().
		Model(&pincode).
		Where("code = ?", code).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pincode, nil
}

func (d *DB) ListPincodes(ctx context.Context) ([]models.Pincode, error) {
	var pincodes []models.Pincode
	err := d.Bun.NewSelect().
		Model(&pincodes).
		Order("code").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return pincodes, nil
}
