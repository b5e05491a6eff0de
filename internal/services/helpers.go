package services

import (
	"context"

	"rescuetrack/internal/caching"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// invalidateDashboard drops cached stats after a record mutation. Failures only cost freshness.
func invalidateDashboard(ctx context.Context, cacheSvc caching.CacheService, logger *zap.Logger, organizationID uuid.UUID) {
	if cacheSvc == nil {
		return
	}
	if err := cacheSvc.InvalidateOrganizationCache(ctx, organizationID); err != nil {
		logger.Warn("failed to invalidate dashboard cache",
			zap.String("organization_id", organizationID.String()), zap.Error(err))
	}
}

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
