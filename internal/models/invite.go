package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	InviteStatusPending  = "pending"
	InviteStatusAccepted = "accepted"
	InviteStatusRevoked  = "revoked"
	InviteStatusExpired  = "expired"
)

type Invite struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	OrganizationID uuid.UUID  `json:"organization_id" db:"organization_id"`
	Email          string     `json:"email" db:"email"`
	Role           string     `json:"role" db:"role"`
	Code           string     `json:"code" db:"code"`
	Status         string     `json:"status" db:"status"`
	ExpiresAt      time.Time  `json:"expires_at" db:"expires_at"`
	CreatedBy      uuid.UUID  `json:"created_by" db:"created_by"`
	AcceptedBy     *uuid.UUID `json:"accepted_by" db:"accepted_by"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// Usable reports whether the invite can still be redeemed at now.
func (i *Invite) Usable(now time.Time) bool {
	return i.Status == InviteStatusPending && now.Before(i.ExpiresAt)
}

func (i *Invite) Key() (time.Time, uuid.UUID) {
	return i.CreatedAt, i.ID
}

// InvitePreview is returned by the public invite validation endpoint.
type InvitePreview struct {
	Email            string    `json:"email"`
	Role             string    `json:"role"`
	OrganizationName string    `json:"organization_name"`
	ExpiresAt        time.Time `json:"expires_at"`
}
