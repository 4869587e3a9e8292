package models

import (
	"github.com/uptrace/bun"
)

// Category units of measure.
const (
	UnitKg    = "kg"
	UnitPiece = "piece"
	UnitSet   = "set"
)

// Subcategory refines a category with its own price multiplier.
type Subcategory struct {
	Name       string  `json:"name"`
	Multiplier float64 `json:"multiplier"`
}

// Category is read-mostly reference data feeding the pricing calculator.
type Category struct {
	bun.BaseModel `bun:"table:categories"`

	ID                   string             `bun:"id,pk" json:"id"`
	Name                 string             `bun:"name,notnull,unique" json:"name"`
	Description          string             `bun:"description,nullzero" json:"description,omitempty"`
	Icon                 string             `bun:"icon,nullzero" json:"icon,omitempty"`
	BasePrice            float64            `bun:"base_price,notnull" json:"basePrice"`
	Unit                 string             `bun:"unit,notnull" json:"unit"`
	ConditionMultipliers map[string]float64 `bun:"condition_multipliers,type:jsonb" json:"conditionMultipliers"`
	Subcategories        []Subcategory      `bun:"subcategories,type:jsonb" json:"subcategories,omitempty"`
	IsActive             bool               `bun:"is_active,notnull" json:"isActive"`
	SortOrder            int                `bun:"sort_order,nullzero" json:"sortOrder,omitempty"`
}

// DefaultConditionMultipliers returns the stock multiplier table applied when
// a category is created without one.
func DefaultConditionMultipliers() map[string]float64 {
	return map[string]float64{
		ConditionExcellent: 1.0,
		ConditionGood:      0.8,
		ConditionFair:      0.6,
		ConditionPoor:      0.4,
		ConditionBroken:    0.2,
	}
}

func ValidUnit(u string) bool {
	switch u {
	case UnitKg, UnitPiece, UnitSet:
		return true
	}
	return false
}
