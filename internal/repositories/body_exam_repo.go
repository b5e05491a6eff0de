package repositories

import (
	"context"

	"rescuetrack/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type BodyExamRepository interface {
	Create(ctx context.Context, exam *models.BodyExam) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.BodyExam, error)
	GetByIDs(ctx context.Context, organizationID uuid.UUID, ids []uuid.UUID) ([]*models.BodyExam, error)
	List(ctx context.Context, filter models.RecordFilter, page models.PageRequest) (models.Page[*models.BodyExam], error)
	Count(ctx context.Context, filter models.RecordFilter) (int64, error)
	Update(ctx context.Context, exam *models.BodyExam) error
	Delete(ctx context.Context, id uuid.UUID) error
}

const bodyExamColumns = `id, organization_id, animal_id, staff_id, weight, diagnosis, notes, created_at, updated_at`

type bodyExamRepo struct {
	db DBTX
}

func NewBodyExamRepository(db DBTX) BodyExamRepository {
	return &bodyExamRepo{db: db}
}

func scanBodyExam(row pgx.Row) (*models.BodyExam, error) {
	e := &models.BodyExam{}
	err := row.Scan(&e.ID, &e.OrganizationID, &e.AnimalID, &e.StaffID, &e.Weight, &e.Diagnosis, &e.Notes, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return e, nil
}

func (r *bodyExamRepo) Create(ctx context.Context, exam *models.BodyExam) error {
	query := `
		INSERT INTO body_exams (id, organization_id, animal_id, staff_id, weight, diagnosis, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, exam.ID, exam.OrganizationID, exam.AnimalID, exam.StaffID,
		exam.Weight, exam.Diagnosis, exam.Notes).Scan(&exam.CreatedAt, &exam.UpdatedAt)
	return mapError(err)
}

func (r *bodyExamRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.BodyExam, error) {
	return scanBodyExam(r.db.QueryRow(ctx, `SELECT `+bodyExamColumns+` FROM body_exams WHERE id = $1`, id))
}

func (r *bodyExamRepo) GetByIDs(ctx context.Context, organizationID uuid.UUID, ids []uuid.UUID) ([]*models.BodyExam, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bodyExamColumns+` FROM body_exams WHERE organization_id = $1 AND id = ANY($2)`, organizationID, ids)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanBodyExam)
}

func (r *bodyExamRepo) List(ctx context.Context, filter models.RecordFilter, page models.PageRequest) (models.Page[*models.BodyExam], error) {
	w := recordWhere(filter, "diagnosis", "notes")
	tail, err := w.keyset("", page)
	if err != nil {
		return models.Page[*models.BodyExam]{}, err
	}
	rows, err := r.db.Query(ctx, `SELECT `+bodyExamColumns+` FROM body_exams `+w.sql()+` `+tail, w.args...)
	if err != nil {
		return models.Page[*models.BodyExam]{}, err
	}
	items, err := collect(rows, scanBodyExam)
	if err != nil {
		return models.Page[*models.BodyExam]{}, err
	}
	return buildPage(items, page.Limit), nil
}

func (r *bodyExamRepo) Count(ctx context.Context, filter models.RecordFilter) (int64, error) {
	w := recordWhere(filter, "diagnosis", "notes")
	var n int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM body_exams `+w.sql(), w.args...).Scan(&n)
	return n, err
}

func (r *bodyExamRepo) Update(ctx context.Context, exam *models.BodyExam) error {
	query := `
		UPDATE body_exams
		SET weight = $1, diagnosis = $2, notes = $3, updated_at = NOW()
		WHERE id = $4
	`
	return execOne(ctx, r.db, query, exam.Weight, exam.Diagnosis, exam.Notes, exam.ID)
}

func (r *bodyExamRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return execOne(ctx, r.db, `DELETE FROM body_exams WHERE id = $1`, id)
}
