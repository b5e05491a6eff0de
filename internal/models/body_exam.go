package models

import (
	"time"

	"github.com/google/uuid"
)

type BodyExam struct {
	ID             uuid.UUID `json:"id" db:"id"`
	OrganizationID uuid.UUID `json:"organization_id" db:"organization_id"`
	AnimalID       uuid.UUID `json:"animal_id" db:"animal_id"`
	StaffID        uuid.UUID `json:"staff_id" db:"staff_id"`
	// Weight in kilograms.
	Weight    *float64  `json:"weight" db:"weight"`
	Diagnosis *string   `json:"diagnosis" db:"diagnosis"`
	Notes     *string   `json:"notes" db:"notes"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func (e *BodyExam) Key() (time.Time, uuid.UUID) {
	return e.CreatedAt, e.ID
}
