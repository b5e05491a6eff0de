package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Keyed is implemented by rows listed newest first with keyset pagination.
type Keyed interface {
	Key() (time.Time, uuid.UUID)
}

// Page is one slice of a newest-first listing.
type Page[T any] struct {
	Page           []T     `json:"page"`
	ContinueCursor *string `json:"continue_cursor"`
	IsDone         bool    `json:"is_done"`
}

// PageRequest carries the caller supplied page size and opaque cursor.
type PageRequest struct {
	Limit  int    `query:"limit"`
	Cursor string `query:"cursor"`
}

// Normalize clamps the limit to [1, max].
func (p PageRequest) Normalize(max int) PageRequest {
	if p.Limit <= 0 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > max {
		p.Limit = max
	}
	return p
}

// RecordFilter narrows behavior and body exam listings.
type RecordFilter struct {
	OrganizationID uuid.UUID
	AnimalID       *uuid.UUID
	StaffID        *uuid.UUID
	Start          *time.Time
	End            *time.Time
	Search         string
}
