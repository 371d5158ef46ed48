package users

import "time"

// User represents a user account. GlobalRole is the role of record used
// for the system-admin fallback and the recruiter listing filter; company
// capabilities come from role assignments, not from this field.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	GlobalRole   string    `json:"global_role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
