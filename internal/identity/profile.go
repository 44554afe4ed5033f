package identity

import (
	"time"
)

// Profile is the application-level user record. Its ID is the subject issued
// by the external identity provider (same primary key, not a separate
// foreign key), and it belongs to exactly one company for its whole life.
type Profile struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Role constants
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleCleaner = "cleaner"
)

// ValidRole reports whether role is a known role.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleManager, RoleCleaner:
		return true
	}
	return false
}

// CanManage reports whether the role may create or modify company records
// (clients, properties, jobs).
func CanManage(role string) bool {
	return role == RoleAdmin || role == RoleManager
}
