package kafka

// Topics carrying notification events from the API to the notify worker.
const (
	TopicOrderEvents  = "order-events"
	TopicTicketEvents = "ticket-events"
)

// Event types.
const (
	EventOrderCreated       = "order_created"
	EventOrderStatusChanged = "order_status_changed"
	EventOrderCancelled     = "order_cancelled"
	EventOrderAssigned      = "order_assigned"
	EventPickupVerified     = "pickup_verified"
	EventTicketCreated      = "ticket_created"
	EventTicketResolved     = "ticket_resolved"
	EventTicketReply        = "ticket_reply"
)
