package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Support ticket workflow states.
const (
	TicketStatusOpen            = "open"
	TicketStatusInProgress      = "in_progress"
	TicketStatusWaitingCustomer = "waiting_customer"
	TicketStatusResolved        = "resolved"
	TicketStatusClosed          = "closed"
)

// Ticket priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Ticket categories.
const (
	TicketCategoryPickup    = "pickup_issue"
	TicketCategoryPayment   = "payment_issue"
	TicketCategoryPricing   = "pricing_dispute"
	TicketCategoryAccount   = "account"
	TicketCategoryGeneral   = "general"
	TicketCategoryComplaint = "complaint"
)

// Field length limits enforced at intake.
const (
	MaxSubjectLen     = 200
	MaxDescriptionLen = 2000
	MaxMessageLen     = 1000
)

// TicketMessage is one entry of the conversation thread. Internal messages are
// visible to staff only and must be authored by staff.
type TicketMessage struct {
	SenderID    string    `json:"sender"`
	Message     string    `json:"message"`
	Timestamp   time.Time `json:"timestamp"`
	IsInternal  bool      `json:"isInternal"`
	Attachments []string  `json:"attachments,omitempty"`
}

// Resolution is attached once a ticket reaches resolved or closed.
type Resolution struct {
	ResolvedByID string    `json:"resolvedBy"`
	Note         string    `json:"note"`
	Timestamp    time.Time `json:"timestamp"`
}

// CustomerRating is set by the owning customer after resolution, at most once.
type CustomerRating struct {
	Rating    int       `json:"rating"`
	Feedback  string    `json:"feedback,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type SupportTicket struct {
	bun.BaseModel `bun:"table:support_tickets"`

	ID             string          `bun:"id,pk" json:"id"`
	TicketNumber   string          `bun:"ticket_number,notnull,unique" json:"ticketNumber"`
	CustomerID     string          `bun:"customer_id,notnull" json:"customer"`
	OrderID        string          `bun:"order_id,nullzero" json:"order,omitempty"`
	Subject        string          `bun:"subject,notnull" json:"subject"`
	Description    string          `bun:"description,notnull" json:"description"`
	Category       string          `bun:"category,notnull" json:"category"`
	Priority       string          `bun:"priority,notnull" json:"priority"`
	Status         string          `bun:"status,notnull" json:"status"`
	AssignedToID   string          `bun:"assigned_to_id,nullzero" json:"assignedTo,omitempty"`
	Messages       []TicketMessage `bun:"messages,type:jsonb" json:"messages"`
	Resolution     *Resolution     `bun:"resolution,type:jsonb,nullzero" json:"resolution,omitempty"`
	CustomerRating *CustomerRating `bun:"customer_rating,type:jsonb,nullzero" json:"customerRating,omitempty"`
	LastActivityAt time.Time       `bun:"last_activity_at,notnull" json:"lastActivityAt"`
	CreatedAt      time.Time       `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt      time.Time       `bun:"updated_at,nullzero" json:"updatedAt,omitempty"`
}

// IsTerminal reports whether the ticket is in a state that permits rating.
func (t *SupportTicket) IsTerminal() bool {
	return t.Status == TicketStatusResolved || t.Status == TicketStatusClosed
}

// VisibleMessages returns the thread without internal staff notes. Staff see
// the full thread.
func (t *SupportTicket) VisibleMessages(staff bool) []TicketMessage {
	if staff {
		return t.Messages
	}
	visible := make([]TicketMessage, 0, len(t.Messages))
	for _, m := range t.Messages {
		if !m.IsInternal {
			visible = append(visible, m)
		}
	}
	return visible
}

func ValidTicketStatus(s string) bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusWaitingCustomer,
		TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

func ValidTicketCategory(c string) bool {
	switch c {
	case TicketCategoryPickup, TicketCategoryPayment, TicketCategoryPricing,
		TicketCategoryAccount, TicketCategoryGeneral, TicketCategoryComplaint:
		return true
	}
	return false
}

// TicketStats is the aggregate view served by the stats endpoint. Recomputed
// on demand, never cached.
type TicketStats struct {
	Total           int            `json:"total"`
	ByStatus        map[string]int `json:"byStatus"`
	UrgentOrHigh    int            `json:"urgentOrHigh"`
	CreatedLast7Day int            `json:"createdLast7Days"`
}
