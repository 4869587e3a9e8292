package support

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ewaste-pickup/internal/apperr"
	"ewaste-pickup/internal/idgen"
	"ewaste-pickup/internal/kafka"
	"ewaste-pickup/internal/logger"
	"ewaste-pickup/internal/models"
)

// ListFilter narrows the staff-side listing. The literal "all" (or empty)
// means no filter on that dimension.
type ListFilter struct {
	Status       string
	Priority     string
	Category     string
	AssignedToID string
}

type DBLayer interface {
	CreateTicket(ctx context.Context, ticket models.SupportTicket) error
	GetTicketByID(ctx context.Context, id string) (*models.SupportTicket, error)
	UpdateTicket(ctx context.Context, ticket models.SupportTicket) error
	CountTickets(ctx context.Context) (int, error)
	ListTicketsByCustomer(ctx context.Context, customerID string) ([]models.SupportTicket, error)
	ListTickets(ctx context.Context, filter ListFilter, offset, limit int) ([]models.SupportTicket, int, error)
	Stats(ctx context.Context) (*models.TicketStats, error)
}

type UserLayer interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event kafka.Event) error
}

type Service struct {
	DB     DBLayer
	Users  UserLayer
	Seq    idgen.Sequencer
	Events EventPublisher
	Logger *logger.Logger
}

func NewService(db DBLayer, users UserLayer, seq idgen.Sequencer, events EventPublisher, log *logger.Logger) *Service {
	return &Service{DB: db, Users: users, Seq: seq, Events: events, Logger: log}
}

// CreateRequest is the ticket intake payload.
type CreateRequest struct {
	Subject     string `json:"subject" validate:"required,max=200"`
	Description string `json:"description" validate:"required,max=2000"`
	Category    string `json:"category" validate:"required"`
	Priority    string `json:"priority"`
	OrderID     string `json:"orderId"`
}

// Create opens a new ticket. A best-effort notification is dispatched; its
// failure never fails ticket creation.
func (s *Service) Create(ctx context.Context, actor models.Actor, req CreateRequest) (*models.SupportTicket, error) {
	if req.Subject == "" || len(req.Subject) > models.MaxSubjectLen {
		return nil, apperr.Newf(apperr.InvalidInput, "subject is required and must be at most %d characters", models.MaxSubjectLen)
	}
	if req.Description == "" || len(req.Description) > models.MaxDescriptionLen {
		return nil, apperr.Newf(apperr.InvalidInput, "description is required and must be at most %d characters", models.MaxDescriptionLen)
	}
	if !models.ValidTicketCategory(req.Category) {
		return nil, apperr.Newf(apperr.InvalidInput, "unknown ticket category %q", req.Category)
	}
	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !models.ValidPriority(priority) {
		return nil, apperr.Newf(apperr.InvalidInput, "unknown priority %q", req.Priority)
	}

	seq, err := s.Seq.Next(ctx, idgen.TicketSequence)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to allocate ticket number", err)
	}

	now := time.Now()
	t := models.SupportTicket{
		ID:             uuid.NewString(),
		TicketNumber:   idgen.FormatNumber(idgen.TicketPrefix, seq),
		CustomerID:     actor.ID,
		OrderID:        req.OrderID,
		Subject:        req.Subject,
		Description:    req.Description,
		Category:       req.Category,
		Priority:       priority,
		Status:         models.TicketStatusOpen,
		Messages:       []models.TicketMessage{},
		LastActivityAt: now,
		CreatedAt:      now,
	}

	if err := s.DB.CreateTicket(ctx, t); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to create ticket", err)
	}
	s.Logger.LogSupport("CREATE", t.TicketNumber, fmt.Sprintf("customer %s, category %s", actor.ID, t.Category))

	s.publish(ctx, kafka.EventTicketCreated, &t, map[string]string{"subject": t.Subject})
	return &t, nil
}

// Get fetches one ticket. Customers only see their own, and never the
// internal staff notes.
func (s *Service) Get(ctx context.Context, actor models.Actor, id string) (*models.SupportTicket, error) {
	t, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	staff := models.IsStaff(actor.Role)
	if !staff && t.CustomerID != actor.ID {
		return nil, apperr.New(apperr.Forbidden, "you do not have access to this ticket")
	}
	t.Messages = t.VisibleMessages(staff)
	return t, nil
}

// MessageRequest is one reply in the thread.
type MessageRequest struct {
	Message     string   `json:"message" validate:"required,max=1000"`
	IsInternal  bool     `json:"isInternal"`
	Attachments []string `json:"attachments"`
}

// AddMessage appends to the thread. A malformed id is invalid input rather
// than not-found; internal notes are staff-only; a customer reply while the
// ticket waits on them reopens it.
func (s *Service) AddMessage(ctx context.Context, actor models.Actor, id string, req MessageRequest) (*models.SupportTicket, error) {
	if req.Message == "" || len(req.Message) > models.MaxMessageLen {
		return nil, apperr.Newf(apperr.InvalidInput, "message is required and must be at most %d characters", models.MaxMessageLen)
	}

	t, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	staff := models.IsStaff(actor.Role)
	if !staff && t.CustomerID != actor.ID {
		return nil, apperr.New(apperr.Unauthorized, "you do not have access to this ticket")
	}
	if req.IsInternal && !staff {
		return nil, apperr.New(apperr.Unauthorized, "only staff may post internal notes")
	}

	now := time.Now()
	t.Messages = append(t.Messages, models.TicketMessage{
		SenderID:    actor.ID,
		Message:     req.Message,
		Timestamp:   now,
		IsInternal:  req.IsInternal,
		Attachments: req.Attachments,
	})
	t.LastActivityAt = now
	t.UpdatedAt = now

	if !staff && t.Status == models.TicketStatusWaitingCustomer {
		t.Status = models.TicketStatusOpen
	}

	if err := s.DB.UpdateTicket(ctx, *t); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to add message", err)
	}
	s.Logger.LogSupport("MESSAGE", t.TicketNumber, fmt.Sprintf("from %s (internal=%v)", actor.ID, req.IsInternal))

	if staff && !req.IsInternal {
		s.publish(ctx, kafka.EventTicketReply, t, nil)
	}
	t.Messages = t.VisibleMessages(staff)
	return t, nil
}

// UpdateStatus is staff-only. Moving into resolved or closed attaches the
// resolution record.
func (s *Service) UpdateStatus(ctx context.Context, actor models.Actor, id, status, note string) (*models.SupportTicket, error) {
	if !models.ValidTicketStatus(status) {
		return nil, apperr.Newf(apperr.InvalidInput, "unknown ticket status %q", status)
	}

	t, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	t.Status = status
	t.UpdatedAt = now
	t.LastActivityAt = now

	if status == models.TicketStatusResolved || status == models.TicketStatusClosed {
		if note == "" {
			note = "Ticket resolved"
		}
		t.Resolution = &models.Resolution{
			ResolvedByID: actor.ID,
			Note:         note,
			Timestamp:    now,
		}
	}

	if err := s.DB.UpdateTicket(ctx, *t); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to update ticket status", err)
	}
	s.Logger.LogSupport("STATUS", t.TicketNumber, status)

	if t.Resolution != nil {
		s.publish(ctx, kafka.EventTicketResolved, t, map[string]string{"note": t.Resolution.Note})
	}
	return t, nil
}

// Assign hands the ticket to a staff member and forces it into in_progress.
func (s *Service) Assign(ctx context.Context, actor models.Actor, id, staffID string) (*models.SupportTicket, error) {
	assignee, err := s.Users.GetUserByID(ctx, staffID)
	if err != nil {
		return nil, apperr.Wrap(apperr.NotFound, "staff member not found", err)
	}
	if !models.IsBackOffice(assignee.Role) {
		return nil, apperr.New(apperr.NotFound, "staff member not found")
	}

	t, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	t.AssignedToID = assignee.ID
	t.Status = models.TicketStatusInProgress
	t.UpdatedAt = now
	t.LastActivityAt = now

	if err := s.DB.UpdateTicket(ctx, *t); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to assign ticket", err)
	}
	s.Logger.LogSupport("ASSIGN", t.TicketNumber, fmt.Sprintf("assigned to %s", assignee.ID))
	return t, nil
}

// Rate records the customer's satisfaction score. Only the owning customer,
// only on a resolved or closed ticket, and at most once.
func (s *Service) Rate(ctx context.Context, actor models.Actor, id string, rating int, feedback string) (*models.SupportTicket, error) {
	if rating < 1 || rating > 5 {
		return nil, apperr.New(apperr.InvalidInput, "rating must be between 1 and 5")
	}

	t, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.CustomerID != actor.ID {
		return nil, apperr.New(apperr.Forbidden, "only the ticket owner may rate it")
	}
	if !t.IsTerminal() {
		return nil, apperr.New(apperr.InvalidState, "ticket can only be rated once resolved or closed")
	}
	if t.CustomerRating != nil {
		return nil, apperr.New(apperr.Conflict, "ticket has already been rated")
	}

	now := time.Now()
	t.CustomerRating = &models.CustomerRating{
		Rating:    rating,
		Feedback:  feedback,
		Timestamp: now,
	}
	t.UpdatedAt = now

	if err := s.DB.UpdateTicket(ctx, *t); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to record rating", err)
	}
	s.Logger.LogSupport("RATE", t.TicketNumber, fmt.Sprintf("%d/5", rating))
	return t, nil
}

// ListForCustomer returns the caller's own tickets, newest activity first.
func (s *Service) ListForCustomer(ctx context.Context, actor models.Actor) ([]models.SupportTicket, error) {
	tickets, err := s.DB.ListTicketsByCustomer(ctx, actor.ID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to list tickets", err)
	}
	for i := range tickets {
		tickets[i].Messages = tickets[i].VisibleMessages(false)
	}
	return tickets, nil
}

// ListAll is the staff listing. Managers are implicitly scoped to tickets
// assigned to them; admins see everything.
func (s *Service) ListAll(ctx context.Context, actor models.Actor, filter ListFilter, page, limit int) ([]models.SupportTicket, int, error) {
	normalize := func(v string) string {
		if v == "all" {
			return ""
		}
		return v
	}
	filter.Status = normalize(filter.Status)
	filter.Priority = normalize(filter.Priority)
	filter.Category = normalize(filter.Category)

	if actor.Role == models.RoleManager {
		filter.AssignedToID = actor.ID
	}

	tickets, total, err := s.DB.ListTickets(ctx, filter, (page-1)*limit, limit)
	if err != nil {
		return nil, 0, apperr.Wrap(apperr.Internal, "failed to list tickets", err)
	}
	return tickets, total, nil
}

// Stats recomputes the aggregate counters on demand.
func (s *Service) Stats(ctx context.Context) (*models.TicketStats, error) {
	stats, err := s.DB.Stats(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to compute ticket stats", err)
	}
	return stats, nil
}

func (s *Service) fetch(ctx context.Context, id string) (*models.SupportTicket, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperr.New(apperr.InvalidInput, "malformed ticket id")
	}
	t, err := s.DB.GetTicketByID(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(apperr.NotFound, "ticket not found", err)
	}
	return t, nil
}

func (s *Service) publish(ctx context.Context, eventType string, t *models.SupportTicket, data map[string]string) {
	if s.Events == nil {
		return
	}
	customer, err := s.Users.GetUserByID(ctx, t.CustomerID)
	if err != nil {
		s.Logger.Warn("KAFKA", fmt.Sprintf("skipping %s event for %s: customer lookup failed: %v", eventType, t.TicketNumber, err))
		return
	}
	event := kafka.Event{
		Type:           eventType,
		Reference:      t.TicketNumber,
		RecipientEmail: customer.Email,
		RecipientName:  customer.FirstName,
		Data:           data,
		OccurredAt:     time.Now(),
	}
	if err := s.Events.Publish(ctx, event); err != nil {
		s.Logger.Warn("KAFKA", fmt.Sprintf("failed to publish %s for %s: %v", eventType, t.TicketNumber, err))
	}
}
