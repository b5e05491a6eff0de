package services

import (
	"context"
	"sort"
	"strconv"

	"rescuetrack/internal/models"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// MergePage orders items newest first and slices the window starting at the decimal
// offset cursor. The continue cursor is the offset of the next window.
func MergePage[T models.Keyed](items []T, cursor string, limit int) (models.Page[T], error) {
	offset := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil || n < 0 {
			return models.Page[T]{}, &ValidationError{Field: "cursor", Message: "invalid cursor"}
		}
		offset = n
	}
	if limit <= 0 {
		limit = models.DefaultPageSize
	}

	sort.SliceStable(items, func(i, j int) bool {
		ti, idi := items[i].Key()
		tj, idj := items[j].Key()
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return idi.String() > idj.String()
	})

	n := len(items)
	if offset > n {
		offset = n
	}
	end := offset + limit
	if end > n {
		end = n
	}

	page := models.Page[T]{Page: items[offset:end], IsDone: end >= n}
	if end < n {
		next := strconv.Itoa(end)
		page.ContinueCursor = &next
	}
	if page.Page == nil {
		page.Page = []T{}
	}
	return page, nil
}

// fanOut runs fetch for every id with at most limit in flight and concatenates the results.
func fanOut[T any](ctx context.Context, ids []uuid.UUID, limit int, fetch func(ctx context.Context, id uuid.UUID) ([]T, error)) ([]T, error) {
	results := make([][]T, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, id := range ids {
		g.Go(func() error {
			rows, err := fetch(gctx, id)
			if err != nil {
				return err
			}
			results[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, r := range results {
		total += len(r)
	}
	merged := make([]T, 0, total)
	for _, r := range results {
		merged = append(merged, r...)
	}
	return merged, nil
}

// drain follows keyset pages until the listing is exhausted or max rows were read.
func drain[T any](ctx context.Context, max int, list func(ctx context.Context, page models.PageRequest) (models.Page[T], error)) ([]T, error) {
	var out []T
	req := models.PageRequest{Limit: max}
	for {
		page, err := list(ctx, req)
		if err != nil {
			return nil, err
		}
		out = append(out, page.Page...)
		if page.IsDone || page.ContinueCursor == nil || len(out) >= max {
			break
		}
		req.Cursor = *page.ContinueCursor
		req.Limit = max - len(out)
	}
	if len(out) > max {
		out = out[:max]
	}
	return out, nil
}
