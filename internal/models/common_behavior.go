package models

import (
	"time"

	"github.com/google/uuid"
)

// CommonBehavior is a per-species catalogue entry staff pick from when recording behaviors.
type CommonBehavior struct {
	ID             uuid.UUID `json:"id" db:"id"`
	OrganizationID uuid.UUID `json:"organization_id" db:"organization_id"`
	SpeciesID      uuid.UUID `json:"species_id" db:"species_id"`
	Name           string    `json:"name" db:"name"`
	Description    string    `json:"description" db:"description"`
	CreatedBy      uuid.UUID `json:"created_by" db:"created_by"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

type CommonBehaviorFilter struct {
	OrganizationID uuid.UUID
	SpeciesID      *uuid.UUID
	Search         string
}

func (c *CommonBehavior) Key() (time.Time, uuid.UUID) {
	return c.CreatedAt, c.ID
}
