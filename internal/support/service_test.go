package support_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"ewaste-pickup/internal/apperr"
	"ewaste-pickup/internal/logger"
	"ewaste-pickup/internal/models"
	"ewaste-pickup/internal/support"
)

// Mock implementations
type MockDBLayer struct {
	mock.Mock
}

func (m *MockDBLayer) CreateTicket(ctx context.Context, t models.SupportTicket) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockDBLayer) GetTicketByID(ctx context.Context, id string) (*models.SupportTicket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SupportTicket), args.Error(1)
}

func (m *MockDBLayer) UpdateTicket(ctx context.Context, t models.SupportTicket) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockDBLayer) CountTickets(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockDBLayer) ListTicketsByCustomer(ctx context.Context, customerID string) ([]models.SupportTicket, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SupportTicket), args.Error(1)
}

func (m *MockDBLayer) ListTickets(ctx context.Context, filter support.ListFilter, offset, limit int) ([]models.SupportTicket, int, error) {
	args := m.Called(ctx, filter, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]models.SupportTicket), args.Int(1), args.Error(2)
}

func (m *MockDBLayer) Stats(ctx context.Context) (*models.TicketStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TicketStats), args.Error(1)
}

type MockUserLayer struct {
	mock.Mock
}

func (m *MockUserLayer) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockSequencer struct {
	mock.Mock
}

func (m *MockSequencer) Next(ctx context.Context, name string) (int64, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(int64), args.Error(1)
}

func newTestService(db *MockDBLayer, users *MockUserLayer, seq *MockSequencer) *support.Service {
	return support.NewService(db, users, seq, nil, logger.NewLogger())
}

func TestCreateTicket(t *testing.T) {
	mockDB := new(MockDBLayer)
	mockSeq := new(MockSequencer)
	svc := newTestService(mockDB, new(MockUserLayer), mockSeq)

	customer := models.Actor{ID: uuid.NewString(), Role: models.RoleCustomer}

	mockSeq.On("Next", mock.Anything, "support_tickets").Return(int64(7), nil)
	mockDB.On("CreateTicket", mock.Anything, mock.AnythingOfType("models.SupportTicket")).Return(nil)

	ticket, err := svc.Create(context.Background(), customer, support.CreateRequest{
		Subject:     "Agent did not show up",
		Description: "Nobody arrived in the morning slot.",
		Category:    models.TicketCategoryPickup,
	})

	assert.NoError(t, err)
	assert.Equal(t, "ST000007", ticket.TicketNumber)
	assert.Equal(t, models.TicketStatusOpen, ticket.Status)
	assert.Equal(t, models.PriorityMedium, ticket.Priority, "priority defaults to medium")
	assert.Equal(t, customer.ID, ticket.CustomerID)
	assert.Empty(t, ticket.Messages)

	mockDB.AssertExpectations(t)
	mockSeq.AssertExpectations(t)
}

func TestCreateTicketValidation(t *testing.T) {
	svc := newTestService(new(MockDBLayer), new(MockUserLayer), new(MockSequencer))
	customer := models.Actor{ID: uuid.NewString(), Role: models.RoleCustomer}

	cases := []support.CreateRequest{
		{Subject: "", Description: "d", Category: models.TicketCategoryGeneral},
		{Subject: "s", Description: "", Category: models.TicketCategoryGeneral},
		{Subject: "s", Description: "d", Category: "billing"},
		{Subject: "s", Description: "d", Category: models.TicketCategoryGeneral, Priority: "critical"},
	}
	for _, req := range cases {
		_, err := svc.Create(context.Background(), customer, req)
		assert.Equal(t, apperr.InvalidInput, apperr.KindOf(err))
	}
}

func TestGetTicketStripsInternalNotes(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := newTestService(mockDB, new(MockUserLayer), new(MockSequencer))

	ticketID := uuid.NewString()
	ownerID := uuid.NewString()
	mockDB.On("GetTicketByID", mock.Anything, ticketID).Return(&models.SupportTicket{
		ID:         ticketID,
		CustomerID: ownerID,
		Status:     models.TicketStatusInProgress,
		Messages: []models.TicketMessage{
			{SenderID: ownerID, Message: "any update?"},
			{SenderID: "staff-1", Message: "escalating internally", IsInternal: true},
			{SenderID: "staff-1", Message: "we are on it"},
		},
	}, nil)

	// the owner never sees internal notes
	ticket, err := svc.Get(context.Background(), models.Actor{ID: ownerID, Role: models.RoleCustomer}, ticketID)
	assert.NoError(t, err)
	assert.Len(t, ticket.Messages, 2)
	for _, m := range ticket.Messages {
		assert.False(t, m.IsInternal)
	}

	// another customer sees nothing at all
	_, err = svc.Get(context.Background(), models.Actor{ID: uuid.NewString(), Role: models.RoleCustomer}, ticketID)
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))
}

func TestGetTicketMalformedID(t *testing.T) {
	svc := newTestService(new(MockDBLayer), new(MockUserLayer), new(MockSequencer))

	_, err := svc.Get(context.Background(), models.Actor{ID: "x", Role: models.RoleAdmin}, "st-123")
	assert.Equal(t, apperr.InvalidInput, apperr.KindOf(err))
}

func TestAddMessageReopensWaitingTicket(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := newTestService(mockDB, new(MockUserLayer), new(MockSequencer))

	ticketID := uuid.NewString()
	ownerID := uuid.NewString()
	mockDB.On("GetTicketByID", mock.Anything, ticketID).Return(&models.SupportTicket{
		ID:         ticketID,
		CustomerID: ownerID,
		Status:     models.TicketStatusWaitingCustomer,
	}, nil)
	mockDB.On("UpdateTicket", mock.Anything, mock.AnythingOfType("models.SupportTicket")).Return(nil)

	ticket, err := svc.AddMessage(context.Background(),
		models.Actor{ID: ownerID, Role: models.RoleCustomer}, ticketID,
		support.MessageRequest{Message: "here is the info you asked for"})

	assert.NoError(t, err)
	assert.Equal(t, models.TicketStatusOpen, ticket.Status, "customer reply reopens a waiting ticket")
	assert.Len(t, ticket.Messages, 1)
}

func TestAddMessageInternalNoteIsStaffOnly(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := newTestService(mockDB, new(MockUserLayer), new(MockSequencer))

	ticketID := uuid.NewString()
	ownerID := uuid.NewString()
	mockDB.On("GetTicketByID", mock.Anything, ticketID).Return(&models.SupportTicket{
		ID:         ticketID,
		CustomerID: ownerID,
		Status:     models.TicketStatusOpen,
	}, nil)

	_, err := svc.AddMessage(context.Background(),
		models.Actor{ID: ownerID, Role: models.RoleCustomer}, ticketID,
		support.MessageRequest{Message: "note", IsInternal: true})

	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))
	mockDB.AssertNotCalled(t, "UpdateTicket", mock.Anything, mock.Anything)
}

func TestAddMessageStrangerRejected(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := newTestService(mockDB, new(MockUserLayer), new(MockSequencer))

	ticketID := uuid.NewString()
	mockDB.On("GetTicketByID", mock.Anything, ticketID).Return(&models.SupportTicket{
		ID:         ticketID,
		CustomerID: uuid.NewString(),
		Status:     models.TicketStatusOpen,
	}, nil)

	_, err := svc.AddMessage(context.Background(),
		models.Actor{ID: uuid.NewString(), Role: models.RoleCustomer}, ticketID,
		support.MessageRequest{Message: "hello"})

	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))
}

func TestUpdateStatusAttachesResolution(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := newTestService(mockDB, new(MockUserLayer), new(MockSequencer))

	ticketID := uuid.NewString()
	managerID := uuid.NewString()
	mockDB.On("GetTicketByID", mock.Anything, ticketID).Return(&models.SupportTicket{
		ID:         ticketID,
		CustomerID: uuid.NewString(),
		Status:     models.TicketStatusInProgress,
	}, nil)
	mockDB.On("UpdateTicket", mock.Anything, mock.AnythingOfType("models.SupportTicket")).Return(nil)

	ticket, err := svc.UpdateStatus(context.Background(),
		models.Actor{ID: managerID, Role: models.RoleManager}, ticketID, models.TicketStatusResolved, "")

	assert.NoError(t, err)
	assert.Equal(t, models.TicketStatusResolved, ticket.Status)
	assert.NotNil(t, ticket.Resolution)
	assert.Equal(t, managerID, ticket.Resolution.ResolvedByID)
	assert.Equal(t, "Ticket resolved", ticket.Resolution.Note)
}

func TestUpdateStatusUnknownStatus(t *testing.T) {
	svc := newTestService(new(MockDBLayer), new(MockUserLayer), new(MockSequencer))

	_, err := svc.UpdateStatus(context.Background(),
		models.Actor{ID: "m", Role: models.RoleManager}, uuid.NewString(), "escalated", "")

	assert.Equal(t, apperr.InvalidInput, apperr.KindOf(err))
}

func TestAssignTicket(t *testing.T) {
	mockDB := new(MockDBLayer)
	mockUsers := new(MockUserLayer)
	svc := newTestService(mockDB, mockUsers, new(MockSequencer))

	ticketID := uuid.NewString()
	managerID := uuid.NewString()
	mockUsers.On("GetUserByID", mock.Anything, managerID).Return(&models.User{
		ID:   managerID,
		Role: models.RoleManager,
	}, nil)
	mockDB.On("GetTicketByID", mock.Anything, ticketID).Return(&models.SupportTicket{
		ID:         ticketID,
		CustomerID: uuid.NewString(),
		Status:     models.TicketStatusOpen,
	}, nil)
	mockDB.On("UpdateTicket", mock.Anything, mock.AnythingOfType("models.SupportTicket")).Return(nil)

	ticket, err := svc.Assign(context.Background(),
		models.Actor{ID: uuid.NewString(), Role: models.RoleAdmin}, ticketID, managerID)

	assert.NoError(t, err)
	assert.Equal(t, managerID, ticket.AssignedToID)
	assert.Equal(t, models.TicketStatusInProgress, ticket.Status)
}

func TestAssignTicketRejectsNonBackOffice(t *testing.T) {
	mockUsers := new(MockUserLayer)
	svc := newTestService(new(MockDBLayer), mockUsers, new(MockSequencer))

	admin := models.Actor{ID: uuid.NewString(), Role: models.RoleAdmin}

	// pickup agents handle collections, not tickets
	agentID := uuid.NewString()
	mockUsers.On("GetUserByID", mock.Anything, agentID).Return(&models.User{
		ID:   agentID,
		Role: models.RolePickupAgent,
	}, nil)
	_, err := svc.Assign(context.Background(), admin, uuid.NewString(), agentID)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))

	missingID := uuid.NewString()
	mockUsers.On("GetUserByID", mock.Anything, missingID).Return(nil, errors.New("no rows"))
	_, err = svc.Assign(context.Background(), admin, uuid.NewString(), missingID)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestRateTicket(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := newTestService(mockDB, new(MockUserLayer), new(MockSequencer))

	ticketID := uuid.NewString()
	ownerID := uuid.NewString()
	mockDB.On("GetTicketByID", mock.Anything, ticketID).Return(&models.SupportTicket{
		ID:         ticketID,
		CustomerID: ownerID,
		Status:     models.TicketStatusResolved,
	}, nil)
	mockDB.On("UpdateTicket", mock.Anything, mock.AnythingOfType("models.SupportTicket")).Return(nil)

	ticket, err := svc.Rate(context.Background(),
		models.Actor{ID: ownerID, Role: models.RoleCustomer}, ticketID, 4, "quick turnaround")

	assert.NoError(t, err)
	assert.NotNil(t, ticket.CustomerRating)
	assert.Equal(t, 4, ticket.CustomerRating.Rating)
}

func TestRateTicketGates(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := newTestService(mockDB, new(MockUserLayer), new(MockSequencer))

	ownerID := uuid.NewString()

	// rating out of range is rejected before any lookup
	_, err := svc.Rate(context.Background(),
		models.Actor{ID: ownerID, Role: models.RoleCustomer}, uuid.NewString(), 0, "")
	assert.Equal(t, apperr.InvalidInput, apperr.KindOf(err))
	_, err = svc.Rate(context.Background(),
		models.Actor{ID: ownerID, Role: models.RoleCustomer}, uuid.NewString(), 6, "")
	assert.Equal(t, apperr.InvalidInput, apperr.KindOf(err))

	// an open ticket cannot be rated yet
	openID := uuid.NewString()
	mockDB.On("GetTicketByID", mock.Anything, openID).Return(&models.SupportTicket{
		ID:         openID,
		CustomerID: ownerID,
		Status:     models.TicketStatusOpen,
	}, nil)
	_, err = svc.Rate(context.Background(),
		models.Actor{ID: ownerID, Role: models.RoleCustomer}, openID, 5, "")
	assert.Equal(t, apperr.InvalidState, apperr.KindOf(err))

	// only the owner may rate
	strangerID := uuid.NewString()
	_, err = svc.Rate(context.Background(),
		models.Actor{ID: strangerID, Role: models.RoleCustomer}, openID, 5, "")
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))
}

func TestRateTicketTwice(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := newTestService(mockDB, new(MockUserLayer), new(MockSequencer))

	ticketID := uuid.NewString()
	ownerID := uuid.NewString()
	mockDB.On("GetTicketByID", mock.Anything, ticketID).Return(&models.SupportTicket{
		ID:             ticketID,
		CustomerID:     ownerID,
		Status:         models.TicketStatusClosed,
		CustomerRating: &models.CustomerRating{Rating: 3, Timestamp: time.Now()},
	}, nil)

	_, err := svc.Rate(context.Background(),
		models.Actor{ID: ownerID, Role: models.RoleCustomer}, ticketID, 5, "actually great")

	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))
	mockDB.AssertNotCalled(t, "UpdateTicket", mock.Anything, mock.Anything)
}

func TestListAllScopesManagers(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := newTestService(mockDB, new(MockUserLayer), new(MockSequencer))

	managerID := uuid.NewString()

	// "all" filter values normalize to empty; managers get pinned to their own
	// assignment
	mockDB.On("ListTickets", mock.Anything,
		support.ListFilter{AssignedToID: managerID}, 0, 10).
		Return([]models.SupportTicket{{ID: "t1"}}, 1, nil)

	tickets, total, err := svc.ListAll(context.Background(),
		models.Actor{ID: managerID, Role: models.RoleManager},
		support.ListFilter{Status: "all", Priority: "all", Category: "all"}, 1, 10)

	assert.NoError(t, err)
	assert.Len(t, tickets, 1)
	assert.Equal(t, 1, total)
	mockDB.AssertExpectations(t)
}
