package models

import (
	"time"

	"github.com/google/uuid"
)

type JSONB map[string]interface{}

// AuditLog represents an audit log entry for tracking data changes
type AuditLog struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	OrganizationID uuid.UUID  `json:"organization_id" db:"organization_id"`
	TableName      string     `json:"table_name" db:"table_name"`
	RecordID       string     `json:"record_id" db:"record_id"`
	Action         string     `json:"action" db:"action"`
	NewValues      JSONB      `json:"new_values" db:"new_values"`
	OldValues      JSONB      `json:"old_values" db:"old_values"`
	ChangedBy      *uuid.UUID `json:"changed_by" db:"changed_by"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

func (a *AuditLog) Key() (time.Time, uuid.UUID) {
	return a.CreatedAt, a.ID
}

// Action constants for audit logs
const (
	ActionInsert = "INSERT"
	ActionUpdate = "UPDATE"
	ActionDelete = "DELETE"
)

// AuditLogFilters represents filters for querying audit logs
type AuditLogFilters struct {
	TableName *string
	RecordID  *string
	ChangedBy *uuid.UUID
}
