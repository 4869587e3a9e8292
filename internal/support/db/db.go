package db

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"ewaste-pickup/internal/models"
	"ewaste-pickup/internal/support"
)

// DB is the bun-backed ticket store.
type DB struct {
	Bun *bun.DB
}

func (d *DB) CreateTicket(ctx context.Context, ticket models.SupportTicket) error {
	_, err := d.Bun.NewInsert().Model(&ticket).Exec(ctx)
	return err
}

func (d *DB) GetTicketByID(ctx context.Context, id string) (*models.SupportTicket, error) {
	var ticket models.SupportTicket
	err := d.Bun.NewSelect().
		Model(&ticket).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (d *DB) UpdateTicket(ctx context.Context, ticket models.SupportTicket) error {
	_, err := d.Bun.NewUpdate().
		Model(&ticket).
		Column("status", "priority", "assigned_to_id", "messages", "resolution",
			"customer_rating", "last_activity_at", "updated_at").
		Where("id = ?", ticket.ID).
		Exec(ctx)
	return err
}

func (d *DB) CountTickets(ctx context.Context) (int, error) {
	return d.Bun.NewSelect().
		Model((*models.SupportTicket)(nil)).
		Count(ctx)
}

func (d *DB) ListTicketsByCustomer(ctx context.Context, customerID string) ([]models.SupportTicket, error) {
	var tickets []models.SupportTicket
	err := d.Bun.NewSelect().
		Model(&tickets).
		Where("customer_id = ?", customerID).
		Order("last_activity_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

func applyFilter(q *bun.SelectQuery, filter support.ListFilter) *bun.SelectQuery {
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		q = q.Where("priority = ?", filter.Priority)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.AssignedToID != "" {
		q = q.Where("assigned_to_id = ?", filter.AssignedToID)
	}
	return q
}

// ListTickets is the staff-side windowed listing sorted by latest activity.
func (d *DB) ListTickets(ctx context.Context, filter support.ListFilter, offset, limit int) ([]models.SupportTicket, int, error) {
	countQ := applyFilter(d.Bun.NewSelect().Model((*models.SupportTicket)(nil)), filter)
	total, err := countQ.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	var tickets []models.SupportTicket
	q := applyFilter(d.Bun.NewSelect().Model(&tickets), filter)
	err = q.Order("last_activity_at DESC").
		Offset(offset).
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, 0, err
	}
	return tickets, total, nil
}

// Stats aggregates the dashboard counters in a handful of count queries.
func (d *DB) Stats(ctx context.Context) (*models.TicketStats, error) {
	stats := &models.TicketStats{ByStatus: map[string]int{}}

	total, err := d.CountTickets(ctx)
	if err != nil {
		return nil, err
	}
	stats.Total = total

	statuses := []string{
		models.TicketStatusOpen, models.TicketStatusInProgress,
		models.TicketStatusWaitingCustomer, models.TicketStatusResolved,
		models.TicketStatusClosed,
	}
	for _, status := range statuses {
		n, err := d.Bun.NewSelect().
			Model((*models.SupportTicket)(nil)).
			Where("status = ?", status).
			Count(ctx)
		if err != nil {
			return nil, err
		}
		stats.ByStatus[status] = n
	}

	urgent, err := d.Bun.NewSelect().
		Model((*models.SupportTicket)(nil)).
		Where("priority IN (?)", bun.In([]string{models.PriorityUrgent, models.PriorityHigh})).
		Count(ctx)
	if err != nil {
		return nil, err
	}
	stats.UrgentOrHigh = urgent

	weekAgo := time.Now().AddDate(0, 0, -7)
	recent, err := d.Bun.NewSelect().
		Model((*models.SupportTicket)(nil)).
		Where("created_at >= ?", weekAgo).
		Count(ctx)
	if err != nil {
		return nil, err
	}
	stats.CreatedLast7Day = recent

	return stats, nil
}
