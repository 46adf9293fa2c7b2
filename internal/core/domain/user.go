package domain

import "time"

// UserRole is the coarse back-office role used for authorization checks.
type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleOfficer  UserRole = "officer"
	RoleCustomer UserRole = "customer"
)

// CanManageTransfers reports whether the role may perform mutating transfer
// operations (advance, approve, hold, reject, toggle auto-progression).
func (r UserRole) CanManageTransfers() bool {
	return r == RoleAdmin || r == RoleOfficer
}

// User represents a back-office user of the simulation.
type User struct {
	UserID       string   `json:"user_id"`
	Username     string   `json:"username"`
	PasswordHash string   `json:"-"`
	FullName     string   `json:"full_name"`
	Role         UserRole `json:"role"`
	Email        string   `json:"email"`
	AuditFields
	DeletedAt *time.Time `json:"deleted_at,omitempty"` // soft delete marker
}
