package db

import (
	"context"

	"github.com/uptrace/bun"

	"ewaste-pickup/internal/models"
)

// DB is the bun-backed order store. Every mutation is a single-document
// read-modify-write; concurrent writers get last-writer-wins.
type DB struct {
	Bun *bun.DB
}

func (d *DB) CreateOrder(ctx context.Context, order models.Order) error {
	_, err := d.Bun.NewInsert().Model(&order).Exec(ctx)
	return err
}

func (d *DB) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := d.Bun.NewSelect().
		Model(&order).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (d *DB) UpdateOrder(ctx context.Context, order models.Order) error {
	_, err := d.Bun.NewUpdate().
		Model(&order).
		Column("items", "pickup_details", "status", "assigned_agent_id",
			"pin_verification", "pricing", "payment", "timeline", "updated_at").
		Where("id = ?", order.ID).
		Exec(ctx)
	return err
}

func (d *DB) CountOrders(ctx context.Context) (int, error) {
	return d.Bun.NewSelect().
		Model((*models.Order)(nil)).
		Count(ctx)
}

func (d *DB) ListOrdersByCustomer(ctx context.Context, customerID string) ([]models.Order, error) {
	var orders []models.Order
	err := d.Bun.NewSelect().
		Model(&orders).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (d *DB) ListOrdersByAgent(ctx context.Context, agentID string, statuses []string) ([]models.Order, error) {
	var orders []models.Order
	err := d.Bun.NewSelect().
		Model(&orders).
		Where("assigned_agent_id = ?", agentID).
		Where("status IN (?)", bun.In(statuses)).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// ListOrders is the staff-side windowed listing. An empty status means no
// filter; the second return value is the total matching count.
func (d *DB) ListOrders(ctx context.Context, status string, offset, limit int) ([]models.Order, int, error) {
	countQ := d.Bun.NewSelect().Model((*models.Order)(nil))
	if status != "" {
		countQ = countQ.Where("status = ?", status)
	}
	total, err := countQ.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	q := d.Bun.NewSelect().Model(&orders)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err = q.Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}
