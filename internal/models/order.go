package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Order workflow states. Status is the single source of truth for where an
// order sits in the pickup flow; history lives in Timeline.
const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusAssigned   = "assigned"
	OrderStatusInTransit  = "in_transit"
	OrderStatusPickedUp   = "picked_up"
	OrderStatusProcessing = "processing"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
)

// Item condition keys. Unknown keys fall back to a 0.5 multiplier in pricing.
const (
	ConditionExcellent = "excellent"
	ConditionGood      = "good"
	ConditionFair      = "fair"
	ConditionPoor      = "poor"
	ConditionBroken    = "broken"
)

// Pickup time slots.
const (
	SlotMorning   = "morning"
	SlotAfternoon = "afternoon"
	SlotEvening   = "evening"
)

// Payment methods and states.
const (
	PaymentMethodCash         = "cash"
	PaymentMethodUPI          = "upi"
	PaymentMethodBankTransfer = "bank_transfer"

	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

type Address struct {
	Street   string `json:"street"`
	City     string `json:"city"`
	State    string `json:"state"`
	Pincode  string `json:"pincode"`
	Landmark string `json:"landmark,omitempty"`
}

type PickupDetails struct {
	Address             Address   `json:"address"`
	PreferredDate       time.Time `json:"preferredDate"`
	TimeSlot            string    `json:"timeSlot"`
	ContactNumber       string    `json:"contactNumber"`
	SpecialInstructions string    `json:"specialInstructions,omitempty"`
}

type OrderItem struct {
	CategoryID     string   `json:"categoryId"`
	Subcategory    string   `json:"subcategory,omitempty"`
	Brand          string   `json:"brand,omitempty"`
	Model          string   `json:"model,omitempty"`
	Condition      string   `json:"condition"`
	Quantity       int      `json:"quantity"`
	EstimatedPrice float64  `json:"estimatedPrice"`
	FinalPrice     float64  `json:"finalPrice,omitempty"`
	Images         []string `json:"images,omitempty"`
	Description    string   `json:"description,omitempty"`
}

// PinVerification is the shared secret handed to the customer at creation and
// checked by the assigned agent at collection time. The PIN never changes.
type PinVerification struct {
	Pin        string     `json:"pin"`
	IsVerified bool       `json:"isVerified"`
	VerifiedAt *time.Time `json:"verifiedAt,omitempty"`
}

// Pricing carries the money totals. FinalAmount is fixed at creation time as
// estimatedTotal + pickupCharges; ActualTotal is settled post inspection.
type Pricing struct {
	EstimatedTotal float64 `json:"estimatedTotal"`
	ActualTotal    float64 `json:"actualTotal"`
	PickupCharges  float64 `json:"pickupCharges"`
	FinalAmount    float64 `json:"finalAmount"`
}

type Payment struct {
	Method        string     `json:"method"`
	Status        string     `json:"status"`
	TransactionID string     `json:"transactionId,omitempty"`
	PaidAt        *time.Time `json:"paidAt,omitempty"`
}

// TimelineEntry is one line of the append-only audit log. Entries are only
// ever appended, never rewritten.
type TimelineEntry struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	ActorID   string    `json:"actorId"`
	Note      string    `json:"note"`
}

type Order struct {
	bun.BaseModel `bun:"table:orders"`

	ID              string          `bun:"id,pk" json:"id"`
	OrderNumber     string          `bun:"order_number,notnull,unique" json:"orderNumber"`
	CustomerID      string          `bun:"customer_id,notnull" json:"customer"`
	Items           []OrderItem     `bun:"items,type:jsonb" json:"items"`
	PickupDetails   PickupDetails   `bun:"pickup_details,type:jsonb" json:"pickupDetails"`
	Status          string          `bun:"status,notnull" json:"status"`
	AssignedAgentID string          `bun:"assigned_agent_id,nullzero" json:"assignedPickupAgent,omitempty"`
	PinVerification PinVerification `bun:"pin_verification,type:jsonb" json:"pinVerification"`
	Pricing         Pricing         `bun:"pricing,type:jsonb" json:"pricing"`
	Payment         Payment         `bun:"payment,type:jsonb" json:"payment"`
	Timeline        []TimelineEntry `bun:"timeline,type:jsonb" json:"timeline"`
	CreatedAt       time.Time       `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt       time.Time       `bun:"updated_at,nullzero" json:"updatedAt,omitempty"`
}

// IsTerminal reports whether no further status mutation is permitted.
func (o *Order) IsTerminal() bool {
	return o.Status == OrderStatusCompleted || o.Status == OrderStatusCancelled
}

// ActiveAgentStatuses is the status subset a pickup agent sees in their
// assignment list.
var ActiveAgentStatuses = []string{OrderStatusAssigned, OrderStatusInTransit, OrderStatusPickedUp}

// ValidCondition reports whether k is one of the five fixed condition keys.
func ValidCondition(k string) bool {
	switch k {
	case ConditionExcellent, ConditionGood, ConditionFair, ConditionPoor, ConditionBroken:
		return true
	}
	return false
}

// ValidTimeSlot reports whether s is a known pickup slot.
func ValidTimeSlot(s string) bool {
	switch s {
	case SlotMorning, SlotAfternoon, SlotEvening:
		return true
	}
	return false
}
