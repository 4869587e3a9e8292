package users_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"ewaste-pickup/internal/apperr"
	"ewaste-pickup/internal/logger"
	"ewaste-pickup/internal/models"
	"ewaste-pickup/internal/users"
)

type MockDBLayer struct {
	mock.Mock
}

func (m *MockDBLayer) CreateUser(ctx context.Context, user models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockDBLayer) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockDBLayer) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockDBLayer) UpdateUser(ctx context.Context, user models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func newTestService(db *MockDBLayer) *users.Service {
	return users.NewService(db, nil, "test-secret", time.Hour, logger.NewLogger())
}

func validRegisterRequest() users.RegisterRequest {
	return users.RegisterRequest{
		FirstName: "Asha",
		LastName:  "Nair",
		Email:     "asha@example.com",
		Phone:     "9876543210",
		Password:  "correct-horse",
	}
}

func TestRegister(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := newTestService(mockDB)

	mockDB.On("GetUserByEmail", mock.Anything, "asha@example.com").Return(nil, nil)
	mockDB.On("CreateUser", mock.Anything, mock.AnythingOfType("models.User")).Return(nil)

	user, err := svc.Register(context.Background(), validRegisterRequest())

	assert.NoError(t, err)
	assert.Equal(t, models.RoleCustomer, user.Role, "self-registration is customer-only")
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "correct-horse", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("correct-horse")))
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(new(MockDBLayer))

	req := validRegisterRequest()
	req.Phone = "12345"
	_, err := svc.Register(context.Background(), req)
	assert.Equal(t, apperr.InvalidInput, apperr.KindOf(err))

	req = validRegisterRequest()
	req.Password = "short"
	_, err = svc.Register(context.Background(), req)
	assert.Equal(t, apperr.InvalidInput, apperr.KindOf(err))

	req = validRegisterRequest()
	req.Address.Pincode = "12"
	_, err = svc.Register(context.Background(), req)
	assert.Equal(t, apperr.InvalidInput, apperr.KindOf(err))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := newTestService(mockDB)

	mockDB.On("GetUserByEmail", mock.Anything, "asha@example.com").Return(&models.User{
		ID:    uuid.NewString(),
		Email: "asha@example.com",
	}, nil)

	_, err := svc.Register(context.Background(), validRegisterRequest())
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))
	mockDB.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestLogin(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := newTestService(mockDB)

	hash, _ := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.DefaultCost)
	stored := &models.User{
		ID:           uuid.NewString(),
		Email:        "asha@example.com",
		PasswordHash: string(hash),
		Role:         models.RoleCustomer,
		IsActive:     true,
	}
	mockDB.On("GetUserByEmail", mock.Anything, "asha@example.com").Return(stored, nil)
	mockDB.On("UpdateUser", mock.Anything, mock.AnythingOfType("models.User")).Return(nil)

	res, err := svc.Login(context.Background(), "asha@example.com", "correct-horse")

	assert.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, stored.ID, res.User.ID)
	assert.NotNil(t, res.User.LastLoginAt)
}

func TestLoginFailures(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := newTestService(mockDB)

	hash, _ := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.DefaultCost)

	// unknown email and bad password both come back as the same Unauthorized
	mockDB.On("GetUserByEmail", mock.Anything, "nobody@example.com").Return(nil, nil)
	_, err := svc.Login(context.Background(), "nobody@example.com", "whatever")
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))

	mockDB.On("GetUserByEmail", mock.Anything, "asha@example.com").Return(&models.User{
		ID:           uuid.NewString(),
		Email:        "asha@example.com",
		PasswordHash: string(hash),
		IsActive:     true,
	}, nil)
	_, err = svc.Login(context.Background(), "asha@example.com", "wrong")
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))

	// a deactivated account is refused even with the right password
	mockDB.On("GetUserByEmail", mock.Anything, "gone@example.com").Return(&models.User{
		ID:           uuid.NewString(),
		Email:        "gone@example.com",
		PasswordHash: string(hash),
		IsActive:     false,
	}, nil)
	_, err = svc.Login(context.Background(), "gone@example.com", "correct-horse")
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))
}
