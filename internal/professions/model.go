// Package professions holds the profession catalog referenced by job
// postings. A job may only be created against an active profession.
package professions

import "time"

// Profession is a catalog entry.
type Profession struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
