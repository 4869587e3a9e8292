package users

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"ewaste-pickup/internal/apperr"
	"ewaste-pickup/internal/auth"
	"ewaste-pickup/internal/logger"
	"ewaste-pickup/internal/models"
)

var phoneRe = regexp.MustCompile(`^[0-9]{10}$`)

type DBLayer interface {
	CreateUser(ctx context.Context, user models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, user models.User) error
}

type Service struct {
	DB        DBLayer
	Sessions  *auth.SessionCache
	JWTSecret string
	TokenTTL  time.Duration
	Logger    *logger.Logger
}

func NewService(db DBLayer, sessions *auth.SessionCache, secret string, ttl time.Duration, log *logger.Logger) *Service {
	return &Service{DB: db, Sessions: sessions, JWTSecret: secret, TokenTTL: ttl, Logger: log}
}

type RegisterRequest struct {
	FirstName string         `json:"firstName" validate:"required"`
	LastName  string         `json:"lastName" validate:"required"`
	Email     string         `json:"email" validate:"required,email"`
	Phone     string         `json:"phone" validate:"required"`
	Password  string         `json:"password" validate:"required,min=8"`
	Address   models.Address `json:"address"`
}

// Register creates a customer account. Staff accounts are provisioned out of
// band, never through this endpoint.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	if req.FirstName == "" || req.LastName == "" || req.Email == "" {
		return nil, apperr.New(apperr.InvalidInput, "first name, last name and email are required")
	}
	if !phoneRe.MatchString(req.Phone) {
		return nil, apperr.New(apperr.InvalidInput, "phone must be a 10-digit number")
	}
	if len(req.Password) < 8 {
		return nil, apperr.New(apperr.InvalidInput, "password must be at least 8 characters")
	}
	if req.Address.Pincode != "" && !models.ValidPincode(req.Address.Pincode) {
		return nil, apperr.New(apperr.InvalidInput, "address pincode must be a 6-digit number")
	}

	existing, err := s.DB.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to check email", err)
	}
	if existing != nil {
		return nil, apperr.New(apperr.Conflict, "an account with this email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to hash password", err)
	}

	user := models.User{
		ID:           uuid.NewString(),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: string(hash),
		Role:         models.RoleCustomer,
		Address:      req.Address,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}

	if err := s.DB.CreateUser(ctx, user); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to create account", err)
	}
	s.Logger.Info("AUTH", fmt.Sprintf("registered customer %s", user.Email))
	return &user, nil
}

// LoginResult carries the session token and the user it belongs to.
type LoginResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Login checks credentials, stamps last login, and opens a redis session for
// the issued token.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.DB.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to look up account", err)
	}
	if user == nil {
		return nil, apperr.New(apperr.Unauthorized, "invalid email or password")
	}
	if !user.IsActive {
		return nil, apperr.New(apperr.Forbidden, "account is deactivated")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.Logger.LogSecurity("LOGIN_FAILED", fmt.Sprintf("bad password for %s", email))
		return nil, apperr.New(apperr.Unauthorized, "invalid email or password")
	}

	token, jti, err := auth.IssueToken(s.JWTSecret, user, s.TokenTTL)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to issue token", err)
	}
	if s.Sessions != nil {
		if err := s.Sessions.Put(ctx, jti, user.ID, s.TokenTTL); err != nil {
			return nil, apperr.Wrap(apperr.Internal, "failed to open session", err)
		}
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.DB.UpdateUser(ctx, *user); err != nil {
		s.Logger.Warn("AUTH", fmt.Sprintf("failed to stamp last login for %s: %v", user.ID, err))
	}

	s.Logger.Info("AUTH", fmt.Sprintf("login %s (%s)", user.Email, user.Role))
	return &LoginResult{Token: token, User: user}, nil
}

// Logout drops the session entry so the token stops working immediately.
func (s *Service) Logout(ctx context.Context, jti string) error {
	if s.Sessions == nil || jti == "" {
		return nil
	}
	if err := s.Sessions.Delete(ctx, jti); err != nil {
		return apperr.Wrap(apperr.Internal, "failed to close session", err)
	}
	return nil
}

// Profile returns the caller's own account.
func (s *Service) Profile(ctx context.Context, actor models.Actor) (*models.User, error) {
	user, err := s.DB.GetUserByID(ctx, actor.ID)
	if err != nil {
		return nil, apperr.Wrap(apperr.NotFound, "account not found", err)
	}
	return user, nil
}

// GetUserByID exposes the user lookup to the order and support services.
func (s *Service) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.DB.GetUserByID(ctx, id)
}
