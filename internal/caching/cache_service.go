package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"rescuetrack/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "rescuetrack:"

type CacheService interface {
	// Session caching
	GetSession(ctx context.Context, sessionID uuid.UUID) (*models.Session, error)
	SetSession(ctx context.Context, session *models.Session) error
	DeleteSession(ctx context.Context, sessionID uuid.UUID) error

	// Dashboard caching, variant distinguishes date ranges
	GetDashboardStats(ctx context.Context, organizationID uuid.UUID, variant string) (*models.DashboardStats, error)
	SetDashboardStats(ctx context.Context, organizationID uuid.UUID, variant string, stats *models.DashboardStats, ttl time.Duration) error

	// Cache invalidation
	InvalidateOrganizationCache(ctx context.Context, organizationID uuid.UUID) error

	// Rate limiting
	IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	ResetRateLimit(ctx context.Context, key string) error

	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisClient builds the shared client. Addresses may carry a redis:// scheme.
func NewRedisClient(addr, password string, db int) *redis.Client {
	parsedAddr := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://")
	return redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})
}

func NewRedisCacheService(client *redis.Client, logger *zap.Logger) CacheService {
	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		logger.Warn("redis ping failed on initialization", zap.Error(pingErr), zap.String("addr", client.Options().Addr))
	} else {
		logger.Debug("redis connection established")
	}
	return &redisCacheService{client: client, logger: logger}
}

func sessionKey(id uuid.UUID) string {
	return keyPrefix + "session:" + id.String()
}

func dashboardKey(organizationID uuid.UUID, variant string) string {
	return fmt.Sprintf("%sorg:%s:dashboard:%s", keyPrefix, organizationID, variant)
}

func (r *redisCacheService) getJSON(ctx context.Context, key string, dst any) (bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil // cache miss
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (r *redisCacheService) setJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) GetSession(ctx context.Context, sessionID uuid.UUID) (*models.Session, error) {
	var s models.Session
	found, err := r.getJSON(ctx, sessionKey(sessionID), &s)
	if err != nil || !found {
		return nil, err
	}
	return &s, nil
}

// SetSession caches the session until it expires.
func (r *redisCacheService) SetSession(ctx context.Context, session *models.Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	return r.setJSON(ctx, sessionKey(session.ID), session, ttl)
}

func (r *redisCacheService) DeleteSession(ctx context.Context, sessionID uuid.UUID) error {
	return r.client.Del(ctx, sessionKey(sessionID)).Err()
}

func (r *redisCacheService) GetDashboardStats(ctx context.Context, organizationID uuid.UUID, variant string) (*models.DashboardStats, error) {
	var stats models.DashboardStats
	found, err := r.getJSON(ctx, dashboardKey(organizationID, variant), &stats)
	if err != nil || !found {
		return nil, err
	}
	return &stats, nil
}

func (r *redisCacheService) SetDashboardStats(ctx context.Context, organizationID uuid.UUID, variant string, stats *models.DashboardStats, ttl time.Duration) error {
	return r.setJSON(ctx, dashboardKey(organizationID, variant), stats, ttl)
}

// InvalidateOrganizationCache drops every cached view of one organization.
func (r *redisCacheService) InvalidateOrganizationCache(ctx context.Context, organizationID uuid.UUID) error {
	pattern := fmt.Sprintf("%sorg:%s:*", keyPrefix, organizationID)
	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) > 0 {
		return r.client.Del(ctx, keys...).Err()
	}
	return nil
}

func (r *redisCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	cacheKey := keyPrefix + "ratelimit:" + key
	count, err := r.client.Incr(ctx, cacheKey).Result()
	if err != nil {
		return false, err
	}

	// Set expiry on first request
	if count == 1 {
		r.client.Expire(ctx, cacheKey, window)
	}

	return count > int64(limit), nil
}

func (r *redisCacheService) ResetRateLimit(ctx context.Context, key string) error {
	return r.client.Del(ctx, keyPrefix+"ratelimit:"+key).Err()
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
