package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"ewaste-pickup/internal/apperr"
	"ewaste-pickup/internal/logger"
	"ewaste-pickup/internal/models"
)

type DBLayer interface {
	CreateCategory(ctx context.Context, category models.Category) error
	GetCategoryByID(ctx context.Context, id string) (*models.Category, error)
	GetCategoryByName(ctx context.Context, name string) (*models.Category, error)
	ListCategories(ctx context.Context, activeOnly bool) ([]models.Category, error)
	UpdateCategory(ctx context.Context, category models.Category) error
	CreatePincode(ctx context.Context, pincode models.Pincode) error
	GetPincodeByCode(ctx context.Context, code string) (*models.Pincode, error)
	ListPincodes(ctx context.Context) ([]models.Pincode, error)
}

type Service struct {
	DB     DBLayer
	Logger *logger.Logger
}

func NewService(db DBLayer, log *logger.Logger) *Service {
	return &Service{DB: db, Logger: log}
}

// ---------------- CATEGORIES ----------------

func (s *Service) CreateCategory(ctx context.Context, category models.Category) (*models.Category, error) {
	if category.Name == "" {
		return nil, apperr.New(apperr.InvalidInput, "category name is required")
	}
	if category.BasePrice < 0 {
		return nil, apperr.New(apperr.InvalidInput, "base price cannot be negative")
	}
	if !models.ValidUnit(category.Unit) {
		return nil, apperr.New(apperr.InvalidInput, "unit must be one of kg, piece, set")
	}

	existing, err := s.DB.GetCategoryByName(ctx, category.Name)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to check category name", err)
	}
	if existing != nil {
		return nil, apperr.Newf(apperr.Conflict, "category %q already exists", category.Name)
	}

	category.ID = uuid.NewString()
	if category.ConditionMultipliers == nil {
		category.ConditionMultipliers = models.DefaultConditionMultipliers()
	}
	category.IsActive = true

	if err := s.DB.CreateCategory(ctx, category); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to create category", err)
	}
	s.Logger.LogDatabase("INSERT", "categories", fmt.Sprintf("created category %s", category.Name))
	return &category, nil
}

func (s *Service) ListCategories(ctx context.Context, includeInactive bool) ([]models.Category, error) {
	categories, err := s.DB.ListCategories(ctx, !includeInactive)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to list categories", err)
	}
	return categories, nil
}

func (s *Service) UpdateCategory(ctx context.Context, id string, update models.Category) (*models.Category, error) {
	existing, err := s.DB.GetCategoryByID(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(apperr.NotFound, "category not found", err)
	}

	if update.Name != "" {
		existing.Name = update.Name
	}
	if update.Description != "" {
		existing.Description = update.Description
	}
	if update.Icon != "" {
		existing.Icon = update.Icon
	}
	if update.BasePrice > 0 {
		existing.BasePrice = update.BasePrice
	}
	if update.Unit != "" {
		if !models.ValidUnit(update.Unit) {
			return nil, apperr.New(apperr.InvalidInput, "unit must be one of kg, piece, set")
		}
		existing.Unit = update.Unit
	}
	if update.ConditionMultipliers != nil {
		existing.ConditionMultipliers = update.ConditionMultipliers
	}
	if update.Subcategories != nil {
		existing.Subcategories = update.Subcategories
	}
	existing.IsActive = update.IsActive
	existing.SortOrder = update.SortOrder

	if err := s.DB.UpdateCategory(ctx, *existing); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to update category", err)
	}
	return existing, nil
}

// CategoriesByID resolves every referenced category, failing NotFound on the
// first missing one. Used by order intake before pricing.
func (s *Service) CategoriesByID(ctx context.Context, ids []string) (map[string]*models.Category, error) {
	out := make(map[string]*models.Category, len(ids))
	for _, id := range ids {
		if _, ok := out[id]; ok {
			continue
		}
		category, err := s.DB.GetCategoryByID(ctx, id)
		if err != nil {
			return nil, apperr.Wrap(apperr.NotFound, fmt.Sprintf("category %s not found", id), err)
		}
		out[id] = category
	}
	return out, nil
}

// ---------------- PINCODES ----------------

// Serviceability is the public answer to "do you pick up here?".
type Serviceability struct {
	Serviceable         bool    `json:"serviceable"`
	PickupCharges       float64 `json:"pickupCharges,omitempty"`
	MinimumOrderValue   float64 `json:"minimumOrderValue,omitempty"`
	EstimatedPickupTime string  `json:"estimatedPickupTime,omitempty"`
	AvailablePickupBoys int     `json:"availablePickupBoys,omitempty"`
}

// CheckServiceability answers for one postal code. Unknown codes are reported
// as not serviceable, not as an error; malformed codes are invalid input.
func (s *Service) CheckServiceability(ctx context.Context, code string) (*Serviceability, error) {
	if !models.ValidPincode(code) {
		return nil, apperr.New(apperr.InvalidInput, "pincode must be a 6-digit number")
	}

	pincode, err := s.DB.GetPincodeByCode(ctx, code)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to look up pincode", err)
	}
	if pincode == nil || !pincode.IsServiceable {
		return &Serviceability{Serviceable: false}, nil
	}

	return &Serviceability{
		Serviceable:         true,
		PickupCharges:       pincode.PickupCharge,
		MinimumOrderValue:   pincode.MinimumOrderValue,
		EstimatedPickupTime: pincode.EstimatedPickupTime,
		AvailablePickupBoys: len(pincode.AssignedAgentIDs),
	}, nil
}

func (s *Service) CreatePincode(ctx context.Context, pincode models.Pincode) (*models.Pincode, error) {
	if !models.ValidPincode(pincode.Code) {
		return nil, apperr.New(apperr.InvalidInput, "pincode must be a 6-digit number")
	}
	if pincode.City == "" || pincode.State == "" {
		return nil, apperr.New(apperr.InvalidInput, "city and state are required")
	}

	existing, err := s.DB.GetPincodeByCode(ctx, pincode.Code)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to check pincode", err)
	}
	if existing != nil {
		return nil, apperr.Newf(apperr.Conflict, "pincode %s already exists", pincode.Code)
	}

	pincode.ID = uuid.NewString()
	if err := s.DB.CreatePincode(ctx, pincode); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to create pincode", err)
	}
	s.Logger.LogDatabase("INSERT", "pincodes", fmt.Sprintf("created pincode %s", pincode.Code))
	return &pincode, nil
}

func (s *Service) ListPincodes(ctx context.Context) ([]models.Pincode, error) {
	pincodes, err := s.DB.ListPincodes(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to list pincodes", err)
	}
	return pincodes, nil
}
