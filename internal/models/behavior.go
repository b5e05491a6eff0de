package models

import (
	"time"

	"github.com/google/uuid"
)

// Behavior is a single observation recorded against an animal.
type Behavior struct {
	ID             uuid.UUID `json:"id" db:"id"`
	OrganizationID uuid.UUID `json:"organization_id" db:"organization_id"`
	AnimalID       uuid.UUID `json:"animal_id" db:"animal_id"`
	StaffID        uuid.UUID `json:"staff_id" db:"staff_id"`
	Behavior       string    `json:"behavior" db:"behavior"`
	Description    *string   `json:"description" db:"description"`
	Location       *string   `json:"location" db:"location"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

func (b *Behavior) Key() (time.Time, uuid.UUID) {
	return b.CreatedAt, b.ID
}
