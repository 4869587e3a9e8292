package notify_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"ewaste-pickup/internal/kafka"
	"ewaste-pickup/internal/logger"
	"ewaste-pickup/internal/notify"
)

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(to, subject, body string) error {
	args := m.Called(to, subject, body)
	return args.Error(0)
}

func TestCompose(t *testing.T) {
	subject, body := notify.Compose(kafka.Event{
		Type:          kafka.EventOrderCreated,
		Reference:     "EW000042",
		RecipientName: "Asha",
		Data:          map[string]string{"estimatedTotal": "1250"},
	})
	assert.Equal(t, "Pickup request EW000042 received", subject)
	assert.Contains(t, body, "Hello Asha")
	assert.Contains(t, body, "1250")

	subject, body = notify.Compose(kafka.Event{
		Type:      kafka.EventTicketResolved,
		Reference: "ST000007",
		Data:      map[string]string{"note": "Re-dispatched"},
	})
	assert.Equal(t, "Ticket ST000007 resolved", subject)
	assert.Contains(t, body, "Re-dispatched")

	// unknown event types have no template
	subject, _ = notify.Compose(kafka.Event{Type: "something_else"})
	assert.Empty(t, subject)
}

func TestWorkerHandle(t *testing.T) {
	sender := new(MockSender)
	worker := notify.NewWorker(sender, logger.NewLogger())

	event := kafka.Event{
		Type:           kafka.EventOrderCancelled,
		Reference:      "EW000042",
		RecipientEmail: "asha@example.com",
		RecipientName:  "Asha",
		Data:           map[string]string{"reason": "changed my mind"},
		OccurredAt:     time.Now(),
	}
	sender.On("Send", "asha@example.com", "Pickup EW000042 cancelled", mock.AnythingOfType("string")).Return(nil)

	worker.Handle(event)
	sender.AssertExpectations(t)
}

func TestWorkerHandleDropsBadEvents(t *testing.T) {
	sender := new(MockSender)
	worker := notify.NewWorker(sender, logger.NewLogger())

	// no recipient, nothing to send
	worker.Handle(kafka.Event{Type: kafka.EventOrderCreated, Reference: "EW000001"})

	// unknown type, nothing to send
	worker.Handle(kafka.Event{Type: "mystery", RecipientEmail: "a@b.c"})

	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestWorkerHandleSwallowsSendFailures(t *testing.T) {
	sender := new(MockSender)
	worker := notify.NewWorker(sender, logger.NewLogger())

	sender.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp: connection refused"))

	// must not panic or propagate
	worker.Handle(kafka.Event{
		Type:           kafka.EventPickupVerified,
		Reference:      "EW000042",
		RecipientEmail: "asha@example.com",
	})
	sender.AssertExpectations(t)
}
