// Package analytics computes the dashboard statistics and the recent activity feed.
package analytics

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	"rescuetrack/internal/caching"
	"rescuetrack/internal/metrics"
	"rescuetrack/internal/models"
	"rescuetrack/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	StatsTTL = 5 * time.Minute

	// DefaultVariant is the cache variant of the unbounded date range.
	DefaultVariant = "all"

	defaultActivityLimit = 10
	maxActivityLimit     = 50
)

// DashboardService handles calculation and caching of dashboard data
type DashboardService struct {
	orgRepo      repositories.OrganizationRepository
	animalRepo   repositories.AnimalRepository
	speciesRepo  repositories.SpeciesRepository
	staffRepo    repositories.StaffRepository
	behaviorRepo repositories.BehaviorRepository
	examRepo     repositories.BodyExamRepository
	cacheService caching.CacheService
	metrics      *metrics.Metrics
	logger       *zap.Logger
	now          func() time.Time
}

func NewDashboardService(
	orgRepo repositories.OrganizationRepository,
	animalRepo repositories.AnimalRepository,
	speciesRepo repositories.SpeciesRepository,
	staffRepo repositories.StaffRepository,
	behaviorRepo repositories.BehaviorRepository,
	examRepo repositories.BodyExamRepository,
	cacheService caching.CacheService,
	m *metrics.Metrics,
	logger *zap.Logger,
) *DashboardService {
	return &DashboardService{
		orgRepo:      orgRepo,
		animalRepo:   animalRepo,
		speciesRepo:  speciesRepo,
		staffRepo:    staffRepo,
		behaviorRepo: behaviorRepo,
		examRepo:     examRepo,
		cacheService: cacheService,
		metrics:      m,
		logger:       logger,
		now:          time.Now,
	}
}

// Variant names the cache entry for a date range.
func Variant(start, end *time.Time) string {
	if start == nil && end == nil {
		return DefaultVariant
	}
	var s, e int64
	if start != nil {
		s = start.UnixMilli()
	}
	if end != nil {
		e = end.UnixMilli()
	}
	return fmt.Sprintf("%d-%d", s, e)
}

// Stats returns the organization counters, served from redis when fresh.
func (a *DashboardService) Stats(ctx context.Context, actor models.Principal, start, end *time.Time) (*models.DashboardStats, error) {
	variant := Variant(start, end)
	cached, err := a.cacheService.GetDashboardStats(ctx, actor.OrganizationID, variant)
	if err != nil {
		a.logger.Debug("dashboard cache lookup failed", zap.Error(err))
	}
	if cached != nil {
		a.metrics.CacheHits.WithLabelValues("dashboard").Inc()
		return cached, nil
	}
	a.metrics.CacheMisses.WithLabelValues("dashboard").Inc()

	stats, err := a.CalculateStats(ctx, actor.OrganizationID, start, end)
	if err != nil {
		return nil, err
	}
	if err := a.cacheService.SetDashboardStats(ctx, actor.OrganizationID, variant, stats, StatsTTL); err != nil {
		a.logger.Warn("failed to cache dashboard stats", zap.Error(err))
	}
	return stats, nil
}

// CalculateStats runs the counting queries concurrently, bypassing the cache.
func (a *DashboardService) CalculateStats(ctx context.Context, organizationID uuid.UUID, start, end *time.Time) (*models.DashboardStats, error) {
	stats := &models.DashboardStats{
		OrganizationID: organizationID,
		Start:          start,
		End:            end,
		GeneratedAt:    a.now().UTC(),
	}
	filter := models.RecordFilter{OrganizationID: organizationID, Start: start, End: end}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.Animals, err = a.animalRepo.CountByOrganization(gctx, organizationID)
		return err
	})
	g.Go(func() (err error) {
		stats.Species, err = a.speciesRepo.CountByOrganization(gctx, organizationID)
		return err
	})
	g.Go(func() (err error) {
		stats.Staff, err = a.staffRepo.CountByOrganization(gctx, organizationID)
		return err
	})
	g.Go(func() (err error) {
		stats.Behaviors, err = a.behaviorRepo.Count(gctx, filter)
		return err
	})
	g.Go(func() (err error) {
		stats.BodyExams, err = a.examRepo.Count(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to calculate dashboard stats: %w", err)
	}
	return stats, nil
}

// Activity returns the newest records of the requested kind. A non-empty cursor resumes
// strictly after the (created_at, id) position of the previous page's last item.
func (a *DashboardService) Activity(ctx context.Context, actor models.Principal, kind string, start, end *time.Time, cursor string, limit int) (*models.ActivityFeed, error) {
	switch kind {
	case "":
		kind = models.ActivityAll
	case models.ActivityAll, models.ActivityBehaviors, models.ActivityExams:
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidActivityType, kind)
	}
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	if limit > maxActivityLimit {
		limit = maxActivityLimit
	}
	if cursor != "" {
		if _, _, err := repositories.DecodeCursor(cursor); err != nil {
			return nil, ErrInvalidActivityCursor
		}
	}

	filter := models.RecordFilter{OrganizationID: actor.OrganizationID, Start: start, End: end}
	page := models.PageRequest{Limit: limit, Cursor: cursor}

	var items []models.ActivityItem
	if kind != models.ActivityExams {
		behaviors, err := a.behaviorRepo.List(ctx, filter, page)
		if err != nil {
			return nil, err
		}
		for _, b := range behaviors.Page {
			items = append(items, models.ActivityItem{
				Type: models.ActivityTypeBehavior, ID: b.ID, AnimalID: b.AnimalID, StaffID: b.StaffID,
				CreatedAt: b.CreatedAt, Behavior: b,
			})
		}
	}
	if kind != models.ActivityBehaviors {
		exams, err := a.examRepo.List(ctx, filter, page)
		if err != nil {
			return nil, err
		}
		for _, e := range exams.Page {
			items = append(items, models.ActivityItem{
				Type: models.ActivityTypeBodyExam, ID: e.ID, AnimalID: e.AnimalID, StaffID: e.StaffID,
				CreatedAt: e.CreatedAt, BodyExam: e,
			})
		}
	}

	// Same order as the repositories' keyset: created_at DESC, id DESC.
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return bytes.Compare(items[i].ID[:], items[j].ID[:]) > 0
	})
	if len(items) > limit {
		items = items[:limit]
	}

	feed := &models.ActivityFeed{Items: items}
	if feed.Items == nil {
		feed.Items = []models.ActivityItem{}
	}
	if len(items) == limit {
		last := items[len(items)-1]
		next := repositories.EncodeCursor(last.CreatedAt, last.ID)
		feed.NextCursor = &next
	}
	return feed, nil
}

// WarmAll recomputes the default stats of every organization.
func (a *DashboardService) WarmAll(ctx context.Context) (int, error) {
	ids, err := a.orgRepo.ListIDs(ctx)
	if err != nil {
		return 0, err
	}
	warmed := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			return warmed, ctx.Err()
		}
		stats, err := a.CalculateStats(ctx, id, nil, nil)
		if err != nil {
			a.logger.Warn("dashboard warmup failed", zap.String("organization_id", id.String()), zap.Error(err))
			continue
		}
		if err := a.cacheService.SetDashboardStats(ctx, id, DefaultVariant, stats, StatsTTL); err != nil {
			a.logger.Warn("failed to cache dashboard stats", zap.String("organization_id", id.String()), zap.Error(err))
			continue
		}
		warmed++
	}
	return warmed, nil
}
