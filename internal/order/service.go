package order

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"

	"ewaste-pickup/internal/apperr"
	"ewaste-pickup/internal/catalog"
	"ewaste-pickup/internal/idgen"
	"ewaste-pickup/internal/kafka"
	"ewaste-pickup/internal/logger"
	"ewaste-pickup/internal/models"
	"ewaste-pickup/internal/pricing"
)

type DBLayer interface {
	CreateOrder(ctx context.Context, order models.Order) error
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	UpdateOrder(ctx context.Context, order models.Order) error
	CountOrders(ctx context.Context) (int, error)
	ListOrdersByCustomer(ctx context.Context, customerID string) ([]models.Order, error)
	ListOrdersByAgent(ctx context.Context, agentID string, statuses []string) ([]models.Order, error)
	ListOrders(ctx context.Context, status string, offset, limit int) ([]models.Order, int, error)
}

type CatalogLayer interface {
	CategoriesByID(ctx context.Context, ids []string) (map[string]*models.Category, error)
	CheckServiceability(ctx context.Context, code string) (*catalog.Serviceability, error)
}

type UserLayer interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event kafka.Event) error
}

type Service struct {
	DB      DBLayer
	Catalog CatalogLayer
	Users   UserLayer
	Seq     idgen.Sequencer
	Events  EventPublisher
	Logger  *logger.Logger
}

func NewService(db DBLayer, cat CatalogLayer, users UserLayer, seq idgen.Sequencer, events EventPublisher, log *logger.Logger) *Service {
	return &Service{DB: db, Catalog: cat, Users: users, Seq: seq, Events: events, Logger: log}
}

// CreateRequest is the order intake payload after JSON binding.
type CreateRequest struct {
	Items         []models.OrderItem   `json:"items" validate:"required,min=1"`
	PickupDetails models.PickupDetails `json:"pickupDetails" validate:"required"`
	PickupCharges float64              `json:"pickupCharges"`
	PaymentMethod string               `json:"paymentMethod"`
}

// Create validates the request, prices every item, and persists the order in
// pending state with its PIN and the creation timeline entry.
func (s *Service) Create(ctx context.Context, actor models.Actor, req CreateRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, apperr.New(apperr.InvalidInput, "order must contain at least one item")
	}
	for i, item := range req.Items {
		if item.Quantity < 1 {
			return nil, apperr.Newf(apperr.InvalidInput, "item %d: quantity must be at least 1", i+1)
		}
		if !models.ValidCondition(item.Condition) {
			return nil, apperr.Newf(apperr.InvalidInput, "item %d: unknown condition %q", i+1, item.Condition)
		}
	}
	if !models.ValidTimeSlot(req.PickupDetails.TimeSlot) {
		return nil, apperr.New(apperr.InvalidInput, "time slot must be one of morning, afternoon, evening")
	}
	if !models.ValidPincode(req.PickupDetails.Address.Pincode) {
		return nil, apperr.New(apperr.InvalidInput, "pickup pincode must be a 6-digit number")
	}

	area, err := s.Catalog.CheckServiceability(ctx, req.PickupDetails.Address.Pincode)
	if err != nil {
		return nil, err
	}
	if !area.Serviceable {
		return nil, apperr.Newf(apperr.InvalidInput, "pickup is not available in pincode %s", req.PickupDetails.Address.Pincode)
	}

	ids := make([]string, len(req.Items))
	for i, item := range req.Items {
		ids[i] = item.CategoryID
	}
	categories, err := s.Catalog.CategoriesByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	estimatedTotal := pricing.EstimateItems(req.Items, categories)

	pickupCharges := req.PickupCharges
	if pickupCharges == 0 {
		pickupCharges = area.PickupCharges
	}

	seq, err := s.Seq.Next(ctx, idgen.OrderSequence)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to allocate order number", err)
	}

	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = models.PaymentMethodCash
	}

	now := time.Now()
	o := models.Order{
		ID:            uuid.NewString(),
		OrderNumber:   idgen.FormatNumber(idgen.OrderPrefix, seq),
		CustomerID:    actor.ID,
		Items:         req.Items,
		PickupDetails: req.PickupDetails,
		Status:        models.OrderStatusPending,
		PinVerification: models.PinVerification{
			Pin: idgen.GeneratePIN(),
		},
		Pricing: models.Pricing{
			EstimatedTotal: estimatedTotal,
			PickupCharges:  pickupCharges,
			FinalAmount:    estimatedTotal + pickupCharges,
		},
		Payment: models.Payment{
			Method: paymentMethod,
			Status: models.PaymentStatusPending,
		},
		Timeline: []models.TimelineEntry{{
			Status:    models.OrderStatusPending,
			Timestamp: now,
			ActorID:   actor.ID,
			Note:      "Order created",
		}},
		CreatedAt: now,
	}

	if err := s.DB.CreateOrder(ctx, o); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to create order", err)
	}
	s.Logger.LogOrder("CREATE", o.OrderNumber, fmt.Sprintf("customer %s, %d items, estimated %.0f", actor.ID, len(o.Items), estimatedTotal))

	s.publish(ctx, kafka.EventOrderCreated, &o, map[string]string{
		"estimatedTotal": fmt.Sprintf("%.0f", estimatedTotal),
	})
	return &o, nil
}

// Get fetches one order, enforcing ownership: customers see their own orders,
// agents the ones assigned to them, managers and admins everything.
func (s *Service) Get(ctx context.Context, actor models.Actor, id string) (*models.Order, error) {
	o, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(actor, o) {
		return nil, apperr.New(apperr.Forbidden, "you do not have access to this order")
	}
	return o, nil
}

// Cancel closes the order before collection. Only the owning customer or an
// admin may cancel, and only while the one-way gate is still open.
func (s *Service) Cancel(ctx context.Context, actor models.Actor, id, reason string) (*models.Order, error) {
	o, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleAdmin && o.CustomerID != actor.ID {
		return nil, apperr.New(apperr.Forbidden, "only the order owner or an admin may cancel")
	}
	if !CanCancel(o.Status) {
		return nil, apperr.Newf(apperr.InvalidState, "order in status %s can no longer be cancelled", o.Status)
	}

	if reason == "" {
		reason = "Order cancelled by customer"
	}
	s.applyStatus(o, models.OrderStatusCancelled, actor.ID, reason)

	if err := s.DB.UpdateOrder(ctx, *o); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to cancel order", err)
	}
	s.Logger.LogOrder("CANCEL", o.OrderNumber, reason)
	s.publish(ctx, kafka.EventOrderCancelled, o, map[string]string{"reason": reason})
	return o, nil
}

// UpdateStatus moves the order along the state machine. Pickup agents may
// only touch orders assigned to them; every accepted update appends exactly
// one timeline entry.
func (s *Service) UpdateStatus(ctx context.Context, actor models.Actor, id, status, note string) (*models.Order, error) {
	if !KnownStatus(status) {
		return nil, apperr.Newf(apperr.InvalidInput, "unknown order status %q", status)
	}

	o, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == models.RolePickupAgent && o.AssignedAgentID != actor.ID {
		return nil, apperr.New(apperr.Unauthorized, "order is not assigned to you")
	}
	if !ValidTransition(o.Status, status) {
		return nil, apperr.Newf(apperr.InvalidState, "cannot move order from %s to %s", o.Status, status)
	}

	if note == "" {
		note = fmt.Sprintf("Status updated to %s", status)
	}
	s.applyStatus(o, status, actor.ID, note)

	if err := s.DB.UpdateOrder(ctx, *o); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to update order status", err)
	}
	s.Logger.LogOrder("STATUS", o.OrderNumber, note)
	s.publish(ctx, kafka.EventOrderStatusChanged, o, map[string]string{"status": status})
	return o, nil
}

// AssignAgent attaches a pickup agent and forces the order into assigned.
func (s *Service) AssignAgent(ctx context.Context, actor models.Actor, id, agentID string) (*models.Order, error) {
	agent, err := s.Users.GetUserByID(ctx, agentID)
	if err != nil {
		return nil, apperr.Wrap(apperr.NotFound, "pickup agent not found", err)
	}
	if agent.Role != models.RolePickupAgent {
		return nil, apperr.New(apperr.NotFound, "pickup agent not found")
	}

	o, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.IsTerminal() {
		return nil, apperr.Newf(apperr.InvalidState, "cannot assign an agent to a %s order", o.Status)
	}

	o.AssignedAgentID = agent.ID
	s.applyStatus(o, models.OrderStatusAssigned, actor.ID,
		fmt.Sprintf("Pickup agent %s %s assigned", agent.FirstName, agent.LastName))

	if err := s.DB.UpdateOrder(ctx, *o); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to assign pickup agent", err)
	}
	s.Logger.LogOrder("ASSIGN", o.OrderNumber, fmt.Sprintf("agent %s", agent.ID))
	s.publish(ctx, kafka.EventOrderAssigned, o, map[string]string{"agent": agent.FirstName + " " + agent.LastName})
	return o, nil
}

// VerifyPin completes the physical handoff. Only the assigned agent may
// verify; a wrong PIN never mutates state, and a second verification after
// success is rejected.
func (s *Service) VerifyPin(ctx context.Context, actor models.Actor, id, pin string) (*models.Order, error) {
	o, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.AssignedAgentID != actor.ID {
		return nil, apperr.New(apperr.Unauthorized, "order is not assigned to you")
	}
	if o.PinVerification.IsVerified {
		return nil, apperr.New(apperr.InvalidState, "pickup is already verified for this order")
	}
	if o.PinVerification.Pin != pin {
		return nil, apperr.New(apperr.InvalidInput, "incorrect PIN")
	}

	now := time.Now()
	o.PinVerification.IsVerified = true
	o.PinVerification.VerifiedAt = &now
	s.applyStatus(o, models.OrderStatusPickedUp, actor.ID, "Pickup verified via PIN")

	if err := s.DB.UpdateOrder(ctx, *o); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to record pickup verification", err)
	}
	s.Logger.LogOrder("VERIFY", o.OrderNumber, fmt.Sprintf("agent %s verified pickup", actor.ID))
	s.publish(ctx, kafka.EventPickupVerified, o, nil)
	return o, nil
}

// ListForCustomer returns the caller's own orders.
func (s *Service) ListForCustomer(ctx context.Context, actor models.Actor) ([]models.Order, error) {
	orders, err := s.DB.ListOrdersByCustomer(ctx, actor.ID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to list orders", err)
	}
	return orders, nil
}

// ListAssigned returns the agent's active assignments.
func (s *Service) ListAssigned(ctx context.Context, actor models.Actor) ([]models.Order, error) {
	orders, err := s.DB.ListOrdersByAgent(ctx, actor.ID, models.ActiveAgentStatuses)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to list assigned orders", err)
	}
	return orders, nil
}

// ListAll is the staff-side paginated listing. An empty or "all" status means
// no filter.
func (s *Service) ListAll(ctx context.Context, status string, page, limit int) ([]models.Order, int, error) {
	if status == "all" {
		status = ""
	}
	if status != "" && !KnownStatus(status) {
		return nil, 0, apperr.Newf(apperr.InvalidInput, "unknown order status %q", status)
	}
	orders, total, err := s.DB.ListOrders(ctx, status, (page-1)*limit, limit)
	if err != nil {
		return nil, 0, apperr.Wrap(apperr.Internal, "failed to list orders", err)
	}
	return orders, total, nil
}

// PickupSlip renders the QR code printed on the collection slip. Assigned
// agent and back-office roles only.
func (s *Service) PickupSlip(ctx context.Context, actor models.Actor, id string) ([]byte, error) {
	o, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if !models.IsBackOffice(actor.Role) && o.AssignedAgentID != actor.ID {
		return nil, apperr.New(apperr.Forbidden, "you do not have access to this slip")
	}
	png, err := qrcode.Encode(o.OrderNumber, qrcode.Medium, 256)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to render pickup slip", err)
	}
	return png, nil
}

func (s *Service) fetch(ctx context.Context, id string) (*models.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperr.New(apperr.InvalidInput, "malformed order id")
	}
	o, err := s.DB.GetOrderByID(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(apperr.NotFound, "order not found", err)
	}
	return o, nil
}

// applyStatus sets the status and appends the matching timeline entry. The
// timeline is append-only; this is the only place entries are added.
func (s *Service) applyStatus(o *models.Order, status, actorID, note string) {
	now := time.Now()
	o.Status = status
	o.UpdatedAt = now
	o.Timeline = append(o.Timeline, models.TimelineEntry{
		Status:    status,
		Timestamp: now,
		ActorID:   actorID,
		Note:      note,
	})
}

// publish dispatches a notification event. Failures are logged and swallowed;
// notifications never fail the primary mutation.
func (s *Service) publish(ctx context.Context, eventType string, o *models.Order, data map[string]string) {
	if s.Events == nil {
		return
	}
	customer, err := s.Users.GetUserByID(ctx, o.CustomerID)
	if err != nil {
		s.Logger.Warn("KAFKA", fmt.Sprintf("skipping %s event for %s: customer lookup failed: %v", eventType, o.OrderNumber, err))
		return
	}
	event := kafka.Event{
		Type:           eventType,
		Reference:      o.OrderNumber,
		RecipientEmail: customer.Email,
		RecipientName:  customer.FirstName,
		Data:           data,
		OccurredAt:     time.Now(),
	}
	if err := s.Events.Publish(ctx, event); err != nil {
		s.Logger.Warn("KAFKA", fmt.Sprintf("failed to publish %s for %s: %v", eventType, o.OrderNumber, err))
	}
}

func canView(actor models.Actor, o *models.Order) bool {
	switch actor.Role {
	case models.RoleAdmin, models.RoleManager:
		return true
	case models.RolePickupAgent:
		return o.AssignedAgentID == actor.ID
	default:
		return o.CustomerID == actor.ID
	}
}
