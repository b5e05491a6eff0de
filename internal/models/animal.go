package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	AnimalStatusActive   = "active"
	AnimalStatusReleased = "released"
	AnimalStatusDeceased = "deceased"

	GenderMale    = "male"
	GenderFemale  = "female"
	GenderUnknown = "unknown"
)

type Animal struct {
	ID                   uuid.UUID  `json:"id" db:"id"`
	OrganizationID       uuid.UUID  `json:"organization_id" db:"organization_id"`
	SpeciesID            uuid.UUID  `json:"species_id" db:"species_id"`
	Name                 string     `json:"name" db:"name"`
	DateOfBirth          *time.Time `json:"date_of_birth" db:"date_of_birth"`
	Gender               *string    `json:"gender" db:"gender"`
	IdentificationNumber *string    `json:"identification_number" db:"identification_number"`
	Status               string     `json:"status" db:"status"`
	CreatedBy            uuid.UUID  `json:"created_by" db:"created_by"`
	CreatedAt            time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at" db:"updated_at"`
}

func ValidAnimalStatus(status string) bool {
	switch status {
	case AnimalStatusActive, AnimalStatusReleased, AnimalStatusDeceased:
		return true
	}
	return false
}

func ValidGender(gender string) bool {
	switch gender {
	case GenderMale, GenderFemale, GenderUnknown:
		return true
	}
	return false
}

func (a *Animal) Key() (time.Time, uuid.UUID) {
	return a.CreatedAt, a.ID
}
