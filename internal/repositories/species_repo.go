package repositories

import (
	"context"

	"rescuetrack/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type SpeciesRepository interface {
	Create(ctx context.Context, species *models.Species) error
	// GetByID is not scoped to an organization; callers compare OrganizationID themselves.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Species, error)
	GetByIDs(ctx context.Context, organizationID uuid.UUID, ids []uuid.UUID) ([]*models.Species, error)
	ListByOrganization(ctx context.Context, organizationID uuid.UUID, page models.PageRequest) (models.Page[*models.Species], error)
	CountByOrganization(ctx context.Context, organizationID uuid.UUID) (int64, error)
	Update(ctx context.Context, species *models.Species) error
	Delete(ctx context.Context, id uuid.UUID) error
	HasAnimals(ctx context.Context, id uuid.UUID) (bool, error)
}

const speciesColumns = `id, organization_id, name, description, created_by, created_at, updated_at`

type speciesRepo struct {
	db DBTX
}

func NewSpeciesRepository(db DBTX) SpeciesRepository {
	return &speciesRepo{db: db}
}

func scanSpecies(row pgx.Row) (*models.Species, error) {
	s := &models.Species{}
	if err := row.Scan(&s.ID, &s.OrganizationID, &s.Name, &s.Description, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, mapError(err)
	}
	return s, nil
}

func (r *speciesRepo) Create(ctx context.Context, species *models.Species) error {
	query := `
		INSERT INTO species (id, organization_id, name, description, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, species.ID, species.OrganizationID, species.Name, species.Description, species.CreatedBy)
	return mapError(err)
}

func (r *speciesRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Species, error) {
	return scanSpecies(r.db.QueryRow(ctx, `SELECT `+speciesColumns+` FROM species WHERE id = $1`, id))
}

func (r *speciesRepo) GetByIDs(ctx context.Context, organizationID uuid.UUID, ids []uuid.UUID) ([]*models.Species, error) {
	rows, err := r.db.Query(ctx, `SELECT `+speciesColumns+` FROM species WHERE organization_id = $1 AND id = ANY($2)`, organizationID, ids)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanSpecies)
}

func (r *speciesRepo) ListByOrganization(ctx context.Context, organizationID uuid.UUID, page models.PageRequest) (models.Page[*models.Species], error) {
	var w whereBuilder
	w.add("organization_id = $%d", organizationID)
	tail, err := w.keyset("", page)
	if err != nil {
		return models.Page[*models.Species]{}, err
	}
	rows, err := r.db.Query(ctx, `SELECT `+speciesColumns+` FROM species `+w.sql()+` `+tail, w.args...)
	if err != nil {
		return models.Page[*models.Species]{}, err
	}
	items, err := collect(rows, scanSpecies)
	if err != nil {
		return models.Page[*models.Species]{}, err
	}
	return buildPage(items, page.Limit), nil
}

func (r *speciesRepo) CountByOrganization(ctx context.Context, organizationID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM species WHERE organization_id = $1`, organizationID).Scan(&n)
	return n, err
}

func (r *speciesRepo) Update(ctx context.Context, species *models.Species) error {
	query := `
		UPDATE species
		SET name = $1, description = $2, updated_at = NOW()
		WHERE id = $3
	`
	return execOne(ctx, r.db, query, species.Name, species.Description, species.ID)
}

func (r *speciesRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return execOne(ctx, r.db, `DELETE FROM species WHERE id = $1`, id)
}

func (r *speciesRepo) HasAnimals(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM animals WHERE species_id = $1)`, id).Scan(&exists)
	return exists, err
}
