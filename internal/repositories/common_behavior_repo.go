package repositories

import (
	"context"
	"strings"

	"rescuetrack/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type CommonBehaviorRepository interface {
	Create(ctx context.Context, cb *models.CommonBehavior) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.CommonBehavior, error)
	List(ctx context.Context, filter models.CommonBehaviorFilter, page models.PageRequest) (models.Page[*models.CommonBehavior], error)
	Update(ctx context.Context, cb *models.CommonBehavior) error
	Delete(ctx context.Context, id uuid.UUID) error
}

const commonBehaviorColumns = `id, organization_id, species_id, name, description, created_by, created_at, updated_at`

type commonBehaviorRepo struct {
	db DBTX
}

func NewCommonBehaviorRepository(db DBTX) CommonBehaviorRepository {
	return &commonBehaviorRepo{db: db}
}

func scanCommonBehavior(row pgx.Row) (*models.CommonBehavior, error) {
	cb := &models.CommonBehavior{}
	err := row.Scan(&cb.ID, &cb.OrganizationID, &cb.SpeciesID, &cb.Name, &cb.Description, &cb.CreatedBy, &cb.CreatedAt, &cb.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return cb, nil
}

func (r *commonBehaviorRepo) Create(ctx context.Context, cb *models.CommonBehavior) error {
	query := `
		INSERT INTO common_behaviors (id, organization_id, species_id, name, description, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, cb.ID, cb.OrganizationID, cb.SpeciesID, cb.Name, cb.Description, cb.CreatedBy)
	return mapError(err)
}

func (r *commonBehaviorRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.CommonBehavior, error) {
	return scanCommonBehavior(r.db.QueryRow(ctx, `SELECT `+commonBehaviorColumns+` FROM common_behaviors WHERE id = $1`, id))
}

func (r *commonBehaviorRepo) List(ctx context.Context, filter models.CommonBehaviorFilter, page models.PageRequest) (models.Page[*models.CommonBehavior], error) {
	var w whereBuilder
	w.add("organization_id = $%d", filter.OrganizationID)
	if filter.SpeciesID != nil {
		w.add("species_id = $%d", *filter.SpeciesID)
	}
	if strings.TrimSpace(filter.Search) != "" {
		w.add("(name ILIKE $%[1]d OR description ILIKE $%[1]d)", likePattern(filter.Search))
	}
	tail, err := w.keyset("", page)
	if err != nil {
		return models.Page[*models.CommonBehavior]{}, err
	}
	rows, err := r.db.Query(ctx, `SELECT `+commonBehaviorColumns+` FROM common_behaviors `+w.sql()+` `+tail, w.args...)
	if err != nil {
		return models.Page[*models.CommonBehavior]{}, err
	}
	items, err := collect(rows, scanCommonBehavior)
	if err != nil {
		return models.Page[*models.CommonBehavior]{}, err
	}
	return buildPage(items, page.Limit), nil
}

func (r *commonBehaviorRepo) Update(ctx context.Context, cb *models.CommonBehavior) error {
	query := `
		UPDATE common_behaviors
		SET species_id = $1, name = $2, description = $3, updated_at = NOW()
		WHERE id = $4
	`
	return execOne(ctx, r.db, query, cb.SpeciesID, cb.Name, cb.Description, cb.ID)
}

func (r *commonBehaviorRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return execOne(ctx, r.db, `DELETE FROM common_behaviors WHERE id = $1`, id)
}
