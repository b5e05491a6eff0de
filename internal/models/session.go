package models

import (
	"time"

	"github.com/google/uuid"
)

type Session struct {
	ID             uuid.UUID `json:"id" db:"id"`
	StaffID        uuid.UUID `json:"staff_id" db:"staff_id"`
	OrganizationID uuid.UUID `json:"organization_id" db:"organization_id"`
	TokenHash      string    `json:"-" db:"token_hash"`
	ExpiresAt      time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Access Token Response
type TokenResponse struct {
	AccessToken      string    `json:"access_token"`
	TokenType        string    `json:"token_type"`
	ExpiresIn        int       `json:"expires_in"`
	SessionToken     string    `json:"session_token,omitempty"`
	SessionExpiresAt time.Time `json:"session_expires_at"`
	Staff            *Staff    `json:"staff"`
}
