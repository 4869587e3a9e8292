// Package pricing computes item value estimates from category reference data.
// Everything here is pure; unknown-category errors are the caller's problem.
package pricing

import (
	"math"

	"ewaste-pickup/internal/models"
)

// fallbackConditionMultiplier applies when the condition key is missing from
// the category's multiplier table.
const fallbackConditionMultiplier = 0.5

// Estimate returns the estimated value of quantity units of an item in the
// given condition, rounded to the nearest whole currency unit.
//
// The subcategory is matched by exact name within the category's subcategory
// list; when absent or not found its multiplier is 1.0.
func Estimate(category *models.Category, subcategory, condition string, quantity int) float64 {
	sub := subcategoryMultiplier(category, subcategory)
	cond, ok := category.ConditionMultipliers[condition]
	if !ok {
		cond = fallbackConditionMultiplier
	}
	return math.Round(category.BasePrice * sub * cond * float64(quantity))
}

// EstimateItems prices every line item in place and returns the summed
// estimated total.
func EstimateItems(items []models.OrderItem, categories map[string]*models.Category) float64 {
	var total float64
	for i := range items {
		cat := categories[items[i].CategoryID]
		items[i].EstimatedPrice = Estimate(cat, items[i].Subcategory, items[i].Condition, items[i].Quantity)
		total += items[i].EstimatedPrice
	}
	return total
}

func subcategoryMultiplier(category *models.Category, name string) float64 {
	if name == "" {
		return 1.0
	}
	for _, sub := range category.Subcategories {
		if sub.Name == name {
			return sub.Multiplier
		}
	}
	return 1.0
}
