package repositories

import (
	"context"
	"strings"

	"rescuetrack/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type BehaviorRepository interface {
	Create(ctx context.Context, behavior *models.Behavior) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Behavior, error)
	GetByIDs(ctx context.Context, organizationID uuid.UUID, ids []uuid.UUID) ([]*models.Behavior, error)
	List(ctx context.Context, filter models.RecordFilter, page models.PageRequest) (models.Page[*models.Behavior], error)
	Count(ctx context.Context, filter models.RecordFilter) (int64, error)
	Update(ctx context.Context, behavior *models.Behavior) error
	Delete(ctx context.Context, id uuid.UUID) error
}

const behaviorColumns = `id, organization_id, animal_id, staff_id, behavior, description, location, created_at, updated_at`

type behaviorRepo struct {
	db DBTX
}

func NewBehaviorRepository(db DBTX) BehaviorRepository {
	return &behaviorRepo{db: db}
}

func scanBehavior(row pgx.Row) (*models.Behavior, error) {
	b := &models.Behavior{}
	err := row.Scan(&b.ID, &b.OrganizationID, &b.AnimalID, &b.StaffID, &b.Behavior, &b.Description, &b.Location, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return b, nil
}

// recordWhere applies the shared behavior/body exam filter. Search is a case-insensitive contains match over searchCols.
func recordWhere(f models.RecordFilter, searchCols ...string) *whereBuilder {
	w := &whereBuilder{}
	w.add("organization_id = $%d", f.OrganizationID)
	if f.AnimalID != nil {
		w.add("animal_id = $%d", *f.AnimalID)
	}
	if f.StaffID != nil {
		w.add("staff_id = $%d", *f.StaffID)
	}
	if f.Start != nil {
		w.add("created_at >= $%d", *f.Start)
	}
	if f.End != nil {
		w.add("created_at <= $%d", *f.End)
	}
	if strings.TrimSpace(f.Search) != "" && len(searchCols) > 0 {
		ors := make([]string, len(searchCols))
		for i, col := range searchCols {
			ors[i] = col + ` ILIKE $%[1]d`
		}
		w.add("("+strings.Join(ors, " OR ")+")", likePattern(f.Search))
	}
	return w
}

func (r *behaviorRepo) Create(ctx context.Context, behavior *models.Behavior) error {
	query := `
		INSERT INTO behaviors (id, organization_id, animal_id, staff_id, behavior, description, location, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, behavior.ID, behavior.OrganizationID, behavior.AnimalID, behavior.StaffID,
		behavior.Behavior, behavior.Description, behavior.Location).Scan(&behavior.CreatedAt, &behavior.UpdatedAt)
	return mapError(err)
}

func (r *behaviorRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Behavior, error) {
	return scanBehavior(r.db.QueryRow(ctx, `SELECT `+behaviorColumns+` FROM behaviors WHERE id = $1`, id))
}

func (r *behaviorRepo) GetByIDs(ctx context.Context, organizationID uuid.UUID, ids []uuid.UUID) ([]*models.Behavior, error) {
	rows, err := r.db.Query(ctx, `SELECT `+behaviorColumns+` FROM behaviors WHERE organization_id = $1 AND id = ANY($2)`, organizationID, ids)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanBehavior)
}

func (r *behaviorRepo) List(ctx context.Context, filter models.RecordFilter, page models.PageRequest) (models.Page[*models.Behavior], error) {
	w := recordWhere(filter, "behavior", "description", "location")
	tail, err := w.keyset("", page)
	if err != nil {
		return models.Page[*models.Behavior]{}, err
	}
	rows, err := r.db.Query(ctx, `SELECT `+behaviorColumns+` FROM behaviors `+w.sql()+` `+tail, w.args...)
	if err != nil {
		return models.Page[*models.Behavior]{}, err
	}
	items, err := collect(rows, scanBehavior)
	if err != nil {
		return models.Page[*models.Behavior]{}, err
	}
	return buildPage(items, page.Limit), nil
}

func (r *behaviorRepo) Count(ctx context.Context, filter models.RecordFilter) (int64, error) {
	w := recordWhere(filter, "behavior", "description", "location")
	var n int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM behaviors `+w.sql(), w.args...).Scan(&n)
	return n, err
}

func (r *behaviorRepo) Update(ctx context.Context, behavior *models.Behavior) error {
	query := `
		UPDATE behaviors
		SET behavior = $1, description = $2, location = $3, updated_at = NOW()
		WHERE id = $4
	`
	return execOne(ctx, r.db, query, behavior.Behavior, behavior.Description, behavior.Location, behavior.ID)
}

func (r *behaviorRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return execOne(ctx, r.db, `DELETE FROM behaviors WHERE id = $1`, id)
}
