package models

import (
	"regexp"

	"github.com/uptrace/bun"
)

var pincodeRe = regexp.MustCompile(`^[0-9]{6}$`)

// ValidPincode reports whether code is a well-formed 6-digit postal code.
func ValidPincode(code string) bool {
	return pincodeRe.MatchString(code)
}

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Pincode is service-area reference data. Orders are only accepted for codes
// flagged serviceable, and each code carries its own fee and minimum.
type Pincode struct {
	bun.BaseModel `bun:"table:pincodes"`

	ID                  string       `bun:"id,pk" json:"id"`
	Code                string       `bun:"code,notnull,unique" json:"code"`
	City                string       `bun:"city,notnull" json:"city"`
	State               string       `bun:"state,notnull" json:"state"`
	Area                string       `bun:"area,nullzero" json:"area,omitempty"`
	IsServiceable       bool         `bun:"is_serviceable,notnull" json:"isServiceable"`
	PickupCharge        float64      `bun:"pickup_charge,nullzero" json:"pickupCharge"`
	MinimumOrderValue   float64      `bun:"minimum_order_value,nullzero" json:"minimumOrderValue"`
	EstimatedPickupTime string       `bun:"estimated_pickup_time,nullzero" json:"estimatedPickupTime,omitempty"`
	AssignedAgentIDs    []string     `bun:"assigned_agent_ids,type:jsonb" json:"assignedPickupBoys,omitempty"`
	Location            *Coordinates `bun:"location,type:jsonb,nullzero" json:"location,omitempty"`
}
