package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Roles understood by the access control layer.
const (
	RoleCustomer    = "customer"
	RolePickupAgent = "pickup_agent"
	RoleManager     = "manager"
	RoleAdmin       = "admin"
)

type User struct {
	bun.BaseModel `bun:"table:users"`

	ID               string     `bun:"id,pk" json:"id"`
	FirstName        string     `bun:"first_name,notnull" json:"firstName"`
	LastName         string     `bun:"last_name,notnull" json:"lastName"`
	Email            string     `bun:"email,notnull,unique" json:"email"`
	Phone            string     `bun:"phone,notnull" json:"phone"`
	PasswordHash     string     `bun:"password_hash,notnull" json:"-"`
	Role             string     `bun:"role,notnull" json:"role"`
	Address          Address    `bun:"address,type:jsonb" json:"address"`
	IsActive         bool       `bun:"is_active,notnull" json:"isActive"`
	LastLoginAt      *time.Time `bun:"last_login_at,nullzero" json:"lastLoginAt,omitempty"`
	ResetToken       string     `bun:"reset_token,nullzero" json:"-"`
	ResetTokenExpiry *time.Time `bun:"reset_token_expiry,nullzero" json:"-"`
	CreatedAt        time.Time  `bun:"created_at,notnull" json:"createdAt"`
}

// IsStaff reports whether the role belongs to the operational side of the
// marketplace (anything that is not a customer).
func IsStaff(role string) bool {
	return role == RolePickupAgent || role == RoleManager || role == RoleAdmin
}

// IsBackOffice reports whether the role may work support tickets and manage
// orders (managers and admins).
func IsBackOffice(role string) bool {
	return role == RoleManager || role == RoleAdmin
}

func ValidRole(role string) bool {
	switch role {
	case RoleCustomer, RolePickupAgent, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// Actor identifies the authenticated caller of a service operation. Ownership
// checks are evaluated against it in addition to route-level role guards.
type Actor struct {
	ID   string
	Role string
}
