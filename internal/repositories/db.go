package repositories

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"rescuetrack/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrDuplicate     = errors.New("duplicate record")
	ErrInvalidCursor = errors.New("invalid cursor")
	// ErrReferenced reports a foreign key violation: the row is still referenced, or references a missing row.
	ErrReferenced = errors.New("referenced record")
)

// DBTX is the subset of *pgxpool.Pool the repositories use. pgxmock.PgxPoolIface satisfies it too.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// querier is satisfied by both DBTX and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
		case "23503":
			return fmt.Errorf("%w: %s", ErrReferenced, pgErr.ConstraintName)
		}
	}
	return err
}

// withTx runs fn inside a transaction, rolling back on error.
func withTx(ctx context.Context, db DBTX, fn func(tx pgx.Tx) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

// whereBuilder accumulates AND conditions with positional arguments.
// Conditions use %d verbs which are replaced by the argument positions.
type whereBuilder struct {
	conds []string
	args  []any
}

func (w *whereBuilder) add(cond string, args ...any) {
	idx := make([]any, len(args))
	for i, a := range args {
		w.args = append(w.args, a)
		idx[i] = len(w.args)
	}
	w.conds = append(w.conds, fmt.Sprintf(cond, idx...))
}

func (w *whereBuilder) sql() string {
	if len(w.conds) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(w.conds, " AND ")
}

// next returns the placeholder for an argument appended after the conditions.
func (w *whereBuilder) next(arg any) string {
	w.args = append(w.args, arg)
	return "$" + strconv.Itoa(len(w.args))
}

// keyset applies the cursor condition and returns the ORDER BY / LIMIT tail.
func (w *whereBuilder) keyset(prefix string, page models.PageRequest) (string, error) {
	if page.Cursor != "" {
		at, id, err := DecodeCursor(page.Cursor)
		if err != nil {
			return "", err
		}
		w.add("("+prefix+"created_at, "+prefix+"id) < ($%d, $%d)", at, id)
	}
	limit := w.next(page.Limit + 1)
	return fmt.Sprintf("ORDER BY %screated_at DESC, %sid DESC LIMIT %s", prefix, prefix, limit), nil
}

// EncodeCursor builds the opaque continuation token for a keyset position.
func EncodeCursor(at time.Time, id uuid.UUID) string {
	raw := strconv.FormatInt(at.UnixNano(), 10) + ":" + id.String()
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func DecodeCursor(cursor string) (time.Time, uuid.UUID, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return time.Time{}, uuid.Nil, ErrInvalidCursor
	}
	nanos, idStr, ok := strings.Cut(string(raw), ":")
	if !ok {
		return time.Time{}, uuid.Nil, ErrInvalidCursor
	}
	n, err := strconv.ParseInt(nanos, 10, 64)
	if err != nil {
		return time.Time{}, uuid.Nil, ErrInvalidCursor
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return time.Time{}, uuid.Nil, ErrInvalidCursor
	}
	return time.Unix(0, n).UTC(), id, nil
}

// buildPage trims the extra look-ahead row and sets the continuation cursor.
func buildPage[T models.Keyed](items []T, limit int) models.Page[T] {
	if items == nil {
		items = []T{}
	}
	if len(items) <= limit {
		return models.Page[T]{Page: items, IsDone: true}
	}
	items = items[:limit]
	at, id := items[len(items)-1].Key()
	cursor := EncodeCursor(at, id)
	return models.Page[T]{Page: items, ContinueCursor: &cursor}
}

// likePattern escapes LIKE metacharacters and wraps the term for a contains match.
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(term)) + "%"
}

func collect[T any](rows pgx.Rows, scan func(pgx.Row) (T, error)) ([]T, error) {
	defer rows.Close()
	var out []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func execOne(ctx context.Context, q querier, sql string, args ...any) error {
	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
