package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type Staff struct {
	ID             uuid.UUID `json:"id" db:"id"`
	OrganizationID uuid.UUID `json:"organization_id" db:"organization_id"`
	Name           string    `json:"name" db:"name"`
	Email          string    `json:"email" db:"email"`
	PasswordHash   string    `json:"-" db:"password_hash"`
	Role           string    `json:"role" db:"role"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

func (s *Staff) IsAdmin() bool {
	return s.Role == RoleAdmin
}

// StaffSummary is the shape returned by the staff report lookup.
type StaffSummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Principal is the authenticated caller attached to a request.
type Principal struct {
	StaffID        uuid.UUID `json:"staff_id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	Role           string    `json:"role"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	// SessionID is uuid.Nil for principals resolved from an external identity provider.
	SessionID uuid.UUID `json:"session_id"`
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}

func (s *Staff) Key() (time.Time, uuid.UUID) {
	return s.CreatedAt, s.ID
}
