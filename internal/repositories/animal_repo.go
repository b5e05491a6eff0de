package repositories

import (
	"context"

	"rescuetrack/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type AnimalRepository interface {
	Create(ctx context.Context, animal *models.Animal) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Animal, error)
	GetByIDs(ctx context.Context, organizationID uuid.UUID, ids []uuid.UUID) ([]*models.Animal, error)
	ListByOrganization(ctx context.Context, organizationID uuid.UUID, speciesID *uuid.UUID, page models.PageRequest) (models.Page[*models.Animal], error)
	CountByOrganization(ctx context.Context, organizationID uuid.UUID) (int64, error)
	Update(ctx context.Context, animal *models.Animal) error
	Delete(ctx context.Context, id uuid.UUID) error
	// HasRecords reports whether any behavior or body exam references the animal.
	HasRecords(ctx context.Context, id uuid.UUID) (bool, error)
}

const animalColumns = `id, organization_id, species_id, name, date_of_birth, gender, identification_number, status, created_by, created_at, updated_at`

type animalRepo struct {
	db DBTX
}

func NewAnimalRepository(db DBTX) AnimalRepository {
	return &animalRepo{db: db}
}

func scanAnimal(row pgx.Row) (*models.Animal, error) {
	a := &models.Animal{}
	err := row.Scan(&a.ID, &a.OrganizationID, &a.SpeciesID, &a.Name, &a.DateOfBirth, &a.Gender,
		&a.IdentificationNumber, &a.Status, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return a, nil
}

func (r *animalRepo) Create(ctx context.Context, animal *models.Animal) error {
	query := `
		INSERT INTO animals (id, organization_id, species_id, name, date_of_birth, gender, identification_number, status, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, animal.ID, animal.OrganizationID, animal.SpeciesID, animal.Name,
		animal.DateOfBirth, animal.Gender, animal.IdentificationNumber, animal.Status, animal.CreatedBy)
	return mapError(err)
}

func (r *animalRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Animal, error) {
	return scanAnimal(r.db.QueryRow(ctx, `SELECT `+animalColumns+` FROM animals WHERE id = $1`, id))
}

func (r *animalRepo) GetByIDs(ctx context.Context, organizationID uuid.UUID, ids []uuid.UUID) ([]*models.Animal, error) {
	rows, err := r.db.Query(ctx, `SELECT `+animalColumns+` FROM animals WHERE organization_id = $1 AND id = ANY($2)`, organizationID, ids)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanAnimal)
}

func (r *animalRepo) ListByOrganization(ctx context.Context, organizationID uuid.UUID, speciesID *uuid.UUID, page models.PageRequest) (models.Page[*models.Animal], error) {
	var w whereBuilder
	w.add("organization_id = $%d", organizationID)
	if speciesID != nil {
		w.add("species_id = $%d", *speciesID)
	}
	tail, err := w.keyset("", page)
	if err != nil {
		return models.Page[*models.Animal]{}, err
	}
	rows, err := r.db.Query(ctx, `SELECT `+animalColumns+` FROM animals `+w.sql()+` `+tail, w.args...)
	if err != nil {
		return models.Page[*models.Animal]{}, err
	}
	items, err := collect(rows, scanAnimal)
	if err != nil {
		return models.Page[*models.Animal]{}, err
	}
	return buildPage(items, page.Limit), nil
}

func (r *animalRepo) CountByOrganization(ctx context.Context, organizationID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM animals WHERE organization_id = $1`, organizationID).Scan(&n)
	return n, err
}

func (r *animalRepo) Update(ctx context.Context, animal *models.Animal) error {
	query := `
		UPDATE animals
		SET species_id = $1, name = $2, date_of_birth = $3, gender = $4, identification_number = $5, status = $6, updated_at = NOW()
		WHERE id = $7
	`
	return execOne(ctx, r.db, query, animal.SpeciesID, animal.Name, animal.DateOfBirth, animal.Gender,
		animal.IdentificationNumber, animal.Status, animal.ID)
}

func (r *animalRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return execOne(ctx, r.db, `DELETE FROM animals WHERE id = $1`, id)
}

func (r *animalRepo) HasRecords(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM behaviors WHERE animal_id = $1)
			OR EXISTS (SELECT 1 FROM body_exams WHERE animal_id = $1)
	`
	var exists bool
	err := r.db.QueryRow(ctx, query, id).Scan(&exists)
	return exists, err
}
