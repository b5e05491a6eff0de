package repositories

import (
	"context"
	"time"

	"rescuetrack/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const auditLogColumns = `id, organization_id, table_name, record_id, action, new_values, old_values, changed_by, created_at`

// AuditLogsRepository is append-only; entries are never updated.
type AuditLogsRepository interface {
	Create(ctx context.Context, auditLog *models.AuditLog) error
	List(ctx context.Context, organizationID uuid.UUID, filters models.AuditLogFilters, page models.PageRequest) (models.Page[*models.AuditLog], error)
}

type auditLogsRepo struct {
	db DBTX
}

func NewAuditLogsRepository(db DBTX) AuditLogsRepository {
	return &auditLogsRepo{db: db}
}

// jsonbArg keeps empty snapshots as SQL NULL instead of a JSON null.
func jsonbArg(v models.JSONB) any {
	if len(v) == 0 {
		return nil
	}
	return map[string]interface{}(v)
}

func (r *auditLogsRepo) Create(ctx context.Context, entry *models.AuditLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt = time.Now()

	_, err := r.db.Exec(ctx, `INSERT INTO audit_logs (`+auditLogColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		entry.ID, entry.OrganizationID, entry.TableName, entry.RecordID, entry.Action,
		jsonbArg(entry.NewValues), jsonbArg(entry.OldValues), entry.ChangedBy, entry.CreatedAt)
	return mapError(err)
}

func scanAuditLog(row pgx.Row) (*models.AuditLog, error) {
	var a models.AuditLog
	err := row.Scan(&a.ID, &a.OrganizationID, &a.TableName, &a.RecordID, &a.Action,
		&a.NewValues, &a.OldValues, &a.ChangedBy, &a.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &a, nil
}

func (r *auditLogsRepo) List(ctx context.Context, organizationID uuid.UUID, filters models.AuditLogFilters, page models.PageRequest) (models.Page[*models.AuditLog], error) {
	var w whereBuilder
	w.add("organization_id = $%d", organizationID)
	if filters.TableName != nil {
		w.add("table_name = $%d", *filters.TableName)
	}
	if filters.RecordID != nil {
		w.add("record_id = $%d", *filters.RecordID)
	}
	if filters.ChangedBy != nil {
		w.add("changed_by = $%d", *filters.ChangedBy)
	}
	tail, err := w.keyset("", page)
	if err != nil {
		return models.Page[*models.AuditLog]{}, err
	}

	rows, err := r.db.Query(ctx, `SELECT `+auditLogColumns+` FROM audit_logs `+w.sql()+` `+tail, w.args...)
	if err != nil {
		return models.Page[*models.AuditLog]{}, err
	}
	items, err := collect(rows, scanAuditLog)
	if err != nil {
		return models.Page[*models.AuditLog]{}, err
	}
	return buildPage(items, page.Limit), nil
}
