package repositories

import (
	"context"
	"strings"

	"rescuetrack/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type StaffRepository interface {
	Create(ctx context.Context, staff *models.Staff) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Staff, error)
	GetByEmail(ctx context.Context, email string) (*models.Staff, error)
	GetByIDs(ctx context.Context, organizationID uuid.UUID, ids []uuid.UUID) ([]*models.Staff, error)
	ListByOrganization(ctx context.Context, organizationID uuid.UUID, page models.PageRequest) (models.Page[*models.Staff], error)
	CountByOrganization(ctx context.Context, organizationID uuid.UUID) (int64, error)
	Update(ctx context.Context, staff *models.Staff) error
	Delete(ctx context.Context, id uuid.UUID) error
}

const staffColumns = `id, organization_id, name, email, password_hash, role, created_at, updated_at`

type staffRepo struct {
	db DBTX
}

func NewStaffRepository(db DBTX) StaffRepository {
	return &staffRepo{db: db}
}

func scanStaff(row pgx.Row) (*models.Staff, error) {
	s := &models.Staff{}
	err := row.Scan(&s.ID, &s.OrganizationID, &s.Name, &s.Email, &s.PasswordHash, &s.Role, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return s, nil
}

func insertStaff(ctx context.Context, q querier, s *models.Staff) error {
	query := `
		INSERT INTO staff (id, organization_id, name, email, password_hash, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	_, err := q.Exec(ctx, query, s.ID, s.OrganizationID, s.Name, strings.ToLower(s.Email), s.PasswordHash, s.Role)
	return mapError(err)
}

func (r *staffRepo) Create(ctx context.Context, staff *models.Staff) error {
	return insertStaff(ctx, r.db, staff)
}

func (r *staffRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Staff, error) {
	query := `SELECT ` + staffColumns + ` FROM staff WHERE id = $1`
	return scanStaff(r.db.QueryRow(ctx, query, id))
}

func (r *staffRepo) GetByEmail(ctx context.Context, email string) (*models.Staff, error) {
	query := `SELECT ` + staffColumns + ` FROM staff WHERE email = $1`
	return scanStaff(r.db.QueryRow(ctx, query, strings.ToLower(strings.TrimSpace(email))))
}

func (r *staffRepo) GetByIDs(ctx context.Context, organizationID uuid.UUID, ids []uuid.UUID) ([]*models.Staff, error) {
	query := `SELECT ` + staffColumns + ` FROM staff WHERE organization_id = $1 AND id = ANY($2)`
	rows, err := r.db.Query(ctx, query, organizationID, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Staff
	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *staffRepo) ListByOrganization(ctx context.Context, organizationID uuid.UUID, page models.PageRequest) (models.Page[*models.Staff], error) {
	var w whereBuilder
	w.add("organization_id = $%d", organizationID)
	tail, err := w.keyset("", page)
	if err != nil {
		return models.Page[*models.Staff]{}, err
	}

	rows, err := r.db.Query(ctx, `SELECT `+staffColumns+` FROM staff `+w.sql()+` `+tail, w.args...)
	if err != nil {
		return models.Page[*models.Staff]{}, err
	}
	defer rows.Close()

	var items []*models.Staff
	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			return models.Page[*models.Staff]{}, err
		}
		items = append(items, s)
	}
	if err := rows.Err(); err != nil {
		return models.Page[*models.Staff]{}, err
	}
	return buildPage(items, page.Limit), nil
}

func (r *staffRepo) CountByOrganization(ctx context.Context, organizationID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM staff WHERE organization_id = $1`, organizationID).Scan(&n)
	return n, err
}

func (r *staffRepo) Update(ctx context.Context, staff *models.Staff) error {
	query := `
		UPDATE staff
		SET name = $1, email = $2, role = $3, updated_at = NOW()
		WHERE id = $4
	`
	tag, err := r.db.Exec(ctx, query, staff.Name, strings.ToLower(staff.Email), staff.Role, staff.ID)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the staff row and its sessions. Records they authored keep the staff id.
func (r *staffRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM sessions WHERE staff_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM staff WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}
