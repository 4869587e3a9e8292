package order

import "ewaste-pickup/internal/models"

// transitionMap is the explicit legal-transition table for order statuses.
// Status updates are validated against it; anything else is rejected.
var transitionMap = map[string][]string{
	models.OrderStatusPending:    {models.OrderStatusConfirmed, models.OrderStatusCancelled},
	models.OrderStatusConfirmed:  {models.OrderStatusAssigned, models.OrderStatusCancelled},
	models.OrderStatusAssigned:   {models.OrderStatusInTransit, models.OrderStatusCancelled},
	models.OrderStatusInTransit:  {models.OrderStatusPickedUp, models.OrderStatusCancelled},
	models.OrderStatusPickedUp:   {models.OrderStatusProcessing},
	models.OrderStatusProcessing: {models.OrderStatusCompleted},
	models.OrderStatusCompleted:  {},
	models.OrderStatusCancelled:  {},
}

// ValidTransition reports whether an order may move from one status to
// another.
func ValidTransition(from, to string) bool {
	for _, next := range transitionMap[from] {
		if next == to {
			return true
		}
	}
	return false
}

// KnownStatus reports whether s is a status the state machine knows about.
func KnownStatus(s string) bool {
	_, ok := transitionMap[s]
	return ok
}

// CanCancel is the one-way cancellation gate: once collection has happened
// the order can no longer be cancelled.
func CanCancel(status string) bool {
	switch status {
	case models.OrderStatusPickedUp, models.OrderStatusProcessing,
		models.OrderStatusCompleted, models.OrderStatusCancelled:
		return false
	}
	return true
}
