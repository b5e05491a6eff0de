package services

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"rescuetrack/internal/models"
	"rescuetrack/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuditLogsService interface {
	// Create audit log entry
	LogActivity(ctx context.Context, organizationID uuid.UUID, tableName, recordID, action string, changedBy *uuid.UUID, oldValues, newValues models.JSONB) error

	// RecordChange snapshots old/new entities and logs them. Failures are logged, never returned.
	RecordChange(ctx context.Context, actor models.Principal, tableName string, recordID uuid.UUID, action string, oldEntity, newEntity interface{})

	ListAuditLogs(ctx context.Context, actor models.Principal, filters models.AuditLogFilters, page models.PageRequest) (models.Page[*models.AuditLog], error)
}

type auditLogsService struct {
	auditLogsRepo repositories.AuditLogsRepository
	logger        *zap.Logger
}

func NewAuditLogsService(auditLogsRepo repositories.AuditLogsRepository, logger *zap.Logger) AuditLogsService {
	return &auditLogsService{
		auditLogsRepo: auditLogsRepo,
		logger:        logger,
	}
}

// LogActivity creates a new audit log entry with validation
func (s *auditLogsService) LogActivity(ctx context.Context, organizationID uuid.UUID, tableName, recordID, action string, changedBy *uuid.UUID, oldValues, newValues models.JSONB) error {
	if tableName == "" {
		return errors.New("table_name is required")
	}
	if action == "" {
		return errors.New("action is required")
	}

	auditLog := &models.AuditLog{
		ID:             uuid.New(),
		OrganizationID: organizationID,
		TableName:      tableName,
		RecordID:       recordID,
		Action:         action,
		NewValues:      newValues,
		OldValues:      oldValues,
		ChangedBy:      changedBy,
	}

	return s.auditLogsRepo.Create(ctx, auditLog)
}

func (s *auditLogsService) RecordChange(ctx context.Context, actor models.Principal, tableName string, recordID uuid.UUID, action string, oldEntity, newEntity interface{}) {
	changedBy := actor.StaffID
	err := s.LogActivity(ctx, actor.OrganizationID, tableName, recordID.String(), action, &changedBy, Snapshot(oldEntity), Snapshot(newEntity))
	if err != nil {
		s.logger.Warn("failed to record audit entry",
			zap.String("table", tableName),
			zap.String("record_id", recordID.String()),
			zap.Error(err))
	}
}

func (s *auditLogsService) ListAuditLogs(ctx context.Context, actor models.Principal, filters models.AuditLogFilters, page models.PageRequest) (models.Page[*models.AuditLog], error) {
	if !actor.IsAdmin() {
		return models.Page[*models.AuditLog]{}, ErrUnauthorized
	}
	logs, err := s.auditLogsRepo.List(ctx, actor.OrganizationID, filters, page.Normalize(models.MaxPageSize))
	return logs, pageError(err)
}

var sensitiveFields = map[string]bool{
	"PasswordHash": true,
	"TokenHash":    true,
	"Code":         true,
}

// Snapshot flattens an entity into JSONB using its json tag names, skipping secrets.
func Snapshot(entity interface{}) models.JSONB {
	switch v := entity.(type) {
	case nil:
		return nil
	case models.JSONB:
		return v
	case map[string]interface{}:
		return models.JSONB(v)
	}
	val := reflect.ValueOf(entity)
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return nil
		}
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return nil
	}

	result := make(models.JSONB)
	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		field := typ.Field(i)
		if field.PkgPath != "" || sensitiveFields[field.Name] {
			continue
		}
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = field.Name
		}
		result[name] = val.Field(i).Interface()
	}
	return result
}
