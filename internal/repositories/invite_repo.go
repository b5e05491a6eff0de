package repositories

import (
	"context"
	"time"

	"rescuetrack/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type InviteRepository interface {
	Create(ctx context.Context, invite *models.Invite) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Invite, error)
	GetByCode(ctx context.Context, code string) (*models.Invite, error)
	ListByOrganization(ctx context.Context, organizationID uuid.UUID, page models.PageRequest) (models.Page[*models.Invite], error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	// Accept creates the staff member and marks the invite accepted in one transaction.
	// It returns ErrNotFound when the invite is no longer pending.
	Accept(ctx context.Context, invite *models.Invite, staff *models.Staff) error
	ExpirePending(ctx context.Context, now time.Time) (int64, error)
}

const inviteColumns = `id, organization_id, email, role, code, status, expires_at, created_by, accepted_by, created_at, updated_at`

type inviteRepo struct {
	db DBTX
}

func NewInviteRepository(db DBTX) InviteRepository {
	return &inviteRepo{db: db}
}

func scanInvite(row pgx.Row) (*models.Invite, error) {
	i := &models.Invite{}
	err := row.Scan(&i.ID, &i.OrganizationID, &i.Email, &i.Role, &i.Code, &i.Status, &i.ExpiresAt,
		&i.CreatedBy, &i.AcceptedBy, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return i, nil
}

func (r *inviteRepo) Create(ctx context.Context, invite *models.Invite) error {
	query := `
		INSERT INTO invites (id, organization_id, email, role, code, status, expires_at, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, invite.ID, invite.OrganizationID, invite.Email, invite.Role, invite.Code,
		invite.Status, invite.ExpiresAt, invite.CreatedBy)
	return mapError(err)
}

func (r *inviteRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Invite, error) {
	return scanInvite(r.db.QueryRow(ctx, `SELECT `+inviteColumns+` FROM invites WHERE id = $1`, id))
}

func (r *inviteRepo) GetByCode(ctx context.Context, code string) (*models.Invite, error) {
	return scanInvite(r.db.QueryRow(ctx, `SELECT `+inviteColumns+` FROM invites WHERE code = $1`, code))
}

func (r *inviteRepo) ListByOrganization(ctx context.Context, organizationID uuid.UUID, page models.PageRequest) (models.Page[*models.Invite], error) {
	var w whereBuilder
	w.add("organization_id = $%d", organizationID)
	tail, err := w.keyset("", page)
	if err != nil {
		return models.Page[*models.Invite]{}, err
	}
	rows, err := r.db.Query(ctx, `SELECT `+inviteColumns+` FROM invites `+w.sql()+` `+tail, w.args...)
	if err != nil {
		return models.Page[*models.Invite]{}, err
	}
	items, err := collect(rows, scanInvite)
	if err != nil {
		return models.Page[*models.Invite]{}, err
	}
	return buildPage(items, page.Limit), nil
}

func (r *inviteRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return execOne(ctx, r.db, `UPDATE invites SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
}

func (r *inviteRepo) Accept(ctx context.Context, invite *models.Invite, staff *models.Staff) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		query := `
			UPDATE invites
			SET status = 'accepted', accepted_by = $1, updated_at = NOW()
			WHERE id = $2 AND status = 'pending'
		`
		if err := execOne(ctx, tx, query, staff.ID, invite.ID); err != nil {
			return err
		}
		return insertStaff(ctx, tx, staff)
	})
}

func (r *inviteRepo) ExpirePending(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `UPDATE invites SET status = 'expired', updated_at = NOW() WHERE status = 'pending' AND expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
