package notify

import (
	"fmt"

	"ewaste-pickup/internal/kafka"
	"ewaste-pickup/internal/logger"
)

// Sender is satisfied by Mailer.
type Sender interface {
	Send(to, subject, body string) error
}

// Worker turns notification events into customer emails. One event, one
// email; failures are logged and dropped, never retried here.
type Worker struct {
	Mailer Sender
	Logger *logger.Logger
}

func NewWorker(mailer Sender, log *logger.Logger) *Worker {
	return &Worker{Mailer: mailer, Logger: log}
}

// Handle processes a single event from the stream.
func (w *Worker) Handle(event kafka.Event) {
	if event.RecipientEmail == "" {
		w.Logger.Warn("MAILER", fmt.Sprintf("event %s for %s has no recipient, dropping", event.Type, event.Reference))
		return
	}

	subject, body := Compose(event)
	if subject == "" {
		w.Logger.Warn("MAILER", fmt.Sprintf("no template for event type %s, dropping", event.Type))
		return
	}

	if err := w.Mailer.Send(event.RecipientEmail, subject, body); err != nil {
		w.Logger.Error("MAILER", fmt.Sprintf("failed to send %s for %s: %v", event.Type, event.Reference, err))
		return
	}
	w.Logger.LogMailer("SENT", fmt.Sprintf("%s to %s (%s)", event.Type, event.RecipientEmail, event.Reference))
}

// Compose renders the subject and body for an event. An empty subject means
// the event type has no email template.
func Compose(event kafka.Event) (subject, body string) {
	greeting := "Hello"
	if event.RecipientName != "" {
		greeting = "Hello " + event.RecipientName
	}

	switch event.Type {
	case kafka.EventOrderCreated:
		subject = fmt.Sprintf("Pickup request %s received", event.Reference)
		body = fmt.Sprintf("%s,\n\nYour e-waste pickup request %s has been received and is pending confirmation.\nEstimated value: %s\n\nThank you for recycling with us.",
			greeting, event.Reference, event.Data["estimatedTotal"])
	case kafka.EventOrderStatusChanged:
		subject = fmt.Sprintf("Update on pickup %s", event.Reference)
		body = fmt.Sprintf("%s,\n\nYour pickup %s is now %s.",
			greeting, event.Reference, event.Data["status"])
	case kafka.EventOrderCancelled:
		subject = fmt.Sprintf("Pickup %s cancelled", event.Reference)
		body = fmt.Sprintf("%s,\n\nYour pickup %s has been cancelled.\nReason: %s",
			greeting, event.Reference, event.Data["reason"])
	case kafka.EventOrderAssigned:
		subject = fmt.Sprintf("Agent assigned to pickup %s", event.Reference)
		body = fmt.Sprintf("%s,\n\n%s will collect your e-waste for order %s. Please keep your PIN ready for the handoff.",
			greeting, event.Data["agent"], event.Reference)
	case kafka.EventPickupVerified:
		subject = fmt.Sprintf("Pickup %s collected", event.Reference)
		body = fmt.Sprintf("%s,\n\nYour items for order %s have been collected and are on their way for processing.",
			greeting, event.Reference)
	case kafka.EventTicketCreated:
		subject = fmt.Sprintf("Support ticket %s opened", event.Reference)
		body = fmt.Sprintf("%s,\n\nWe have received your support request %s: %s\nOur team will get back to you shortly.",
			greeting, event.Reference, event.Data["subject"])
	case kafka.EventTicketReply:
		subject = fmt.Sprintf("New reply on ticket %s", event.Reference)
		body = fmt.Sprintf("%s,\n\nOur support team replied to your ticket %s. Log in to view the conversation.",
			greeting, event.Reference)
	case kafka.EventTicketResolved:
		subject = fmt.Sprintf("Ticket %s resolved", event.Reference)
		body = fmt.Sprintf("%s,\n\nYour support ticket %s has been resolved: %s\nYou can rate your experience from the dashboard.",
			greeting, event.Reference, event.Data["note"])
	}
	return subject, body
}
