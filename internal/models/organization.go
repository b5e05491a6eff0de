package models

import (
	"time"

	"github.com/google/uuid"
)

type Organization struct {
	ID         uuid.UUID `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	Address    string    `json:"address" db:"address"`
	Email      string    `json:"email" db:"email"`
	InviteCode string    `json:"invite_code" db:"invite_code"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// OrganizationPreview is what an unauthenticated caller learns from an invite code.
type OrganizationPreview struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}
