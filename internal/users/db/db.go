package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"ewaste-pickup/internal/models"
)

// DB is the bun-backed user store.
type DB struct {
	Bun *bun.DB
}

func (d *DB) CreateUser(ctx context.Context, user models.User) error {
	_, err := d.Bun.NewInsert().Model(&user).Exec(ctx)
	return err
}

func (d *DB) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := d.Bun.NewSelect().
		Model(&user).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail returns nil without error when no user matches, so callers
// can distinguish "absent" from a store failure.
func (d *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := d.Bun.NewSelect().
		Model(&user).
		Where("email = ?", email).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *DB) UpdateUser(ctx context.Context, user models.User) error {
	_, err := d.Bun.NewUpdate().
		Model(&user).
		Column("first_name", "last_name", "phone", "address", "is_active",
			"last_login_at", "reset_token", "reset_token_expiry").
		Where("id = ?", user.ID).
		Exec(ctx)
	return err
}
