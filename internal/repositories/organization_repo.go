package repositories

import (
	"context"

	"rescuetrack/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type OrganizationRepository interface {
	// CreateWithAdmin inserts the organization and its first admin in one transaction.
	CreateWithAdmin(ctx context.Context, org *models.Organization, admin *models.Staff) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error)
	GetByInviteCode(ctx context.Context, code string) (*models.Organization, error)
	Update(ctx context.Context, org *models.Organization) error
	UpdateInviteCode(ctx context.Context, id uuid.UUID, code string) error
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
}

const organizationColumns = `id, name, address, email, invite_code, created_at, updated_at`

type organizationRepo struct {
	db DBTX
}

func NewOrganizationRepository(db DBTX) OrganizationRepository {
	return &organizationRepo{db: db}
}

func scanOrganization(row pgx.Row) (*models.Organization, error) {
	org := &models.Organization{}
	err := row.Scan(&org.ID, &org.Name, &org.Address, &org.Email, &org.InviteCode, &org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return org, nil
}

func (r *organizationRepo) CreateWithAdmin(ctx context.Context, org *models.Organization, admin *models.Staff) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO organizations (id, name, address, email, invite_code, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		`, org.ID, org.Name, org.Address, org.Email, org.InviteCode)
		if err != nil {
			return mapError(err)
		}
		return insertStaff(ctx, tx, admin)
	})
}

func (r *organizationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	query := `SELECT ` + organizationColumns + ` FROM organizations WHERE id = $1`
	return scanOrganization(r.db.QueryRow(ctx, query, id))
}

func (r *organizationRepo) GetByInviteCode(ctx context.Context, code string) (*models.Organization, error) {
	query := `SELECT ` + organizationColumns + ` FROM organizations WHERE invite_code = $1`
	return scanOrganization(r.db.QueryRow(ctx, query, code))
}

func (r *organizationRepo) Update(ctx context.Context, org *models.Organization) error {
	query := `
		UPDATE organizations
		SET name = $1, address = $2, email = $3, updated_at = NOW()
		WHERE id = $4
	`
	tag, err := r.db.Exec(ctx, query, org.Name, org.Address, org.Email, org.ID)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *organizationRepo) UpdateInviteCode(ctx context.Context, id uuid.UUID, code string) error {
	tag, err := r.db.Exec(ctx, `UPDATE organizations SET invite_code = $1, updated_at = NOW() WHERE id = $2`, code, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *organizationRepo) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM organizations ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
