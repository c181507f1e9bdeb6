package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"campusEvents/domain"
	"campusEvents/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RecommendationCache keeps recently served recommendation lists so bot
// traffic does not hit the store on every scroll. Misses and redis
// failures both fall through to the repository.
type RecommendationCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRecommendationCache(client *redis.Client, ttl time.Duration) *RecommendationCache {
	return &RecommendationCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *RecommendationCache) GetRecommendations(ctx context.Context, studentID uuid.UUID, limit int) ([]domain.Recommendation, bool) {
	data, err := c.client.Get(ctx, cacheKey(studentID, limit)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("recommendation cache get failed", "student_id", studentID, "error", err)
		}
		return nil, false
	}

	var recs []domain.Recommendation
	if err := json.Unmarshal(data, &recs); err != nil {
		logger.Warn("recommendation cache entry corrupt", "student_id", studentID, "error", err)
		return nil, false
	}

	return recs, true
}

func (c *RecommendationCache) SetRecommendations(ctx context.Context, studentID uuid.UUID, limit int, recs []domain.Recommendation) {
	data, err := json.Marshal(recs)
	if err != nil {
		return
	}

	if err := c.client.Set(ctx, cacheKey(studentID, limit), data, c.ttl).Err(); err != nil {
		logger.Warn("recommendation cache set failed", "student_id", studentID, "error", err)
	}
}

// Invalidate drops every cached list for the student, across limits.
func (c *RecommendationCache) Invalidate(ctx context.Context, studentID uuid.UUID) {
	pattern := fmt.Sprintf("recommendations|student=%s|*", studentID)

	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			logger.Warn("recommendation cache invalidate failed", "key", iter.Val(), "error", err)
		}
	}
	if err := iter.Err(); err != nil {
		logger.Warn("recommendation cache scan failed", "student_id", studentID, "error", err)
	}
}

func cacheKey(studentID uuid.UUID, limit int) string {
	return fmt.Sprintf("recommendations|student=%s|limit=%d", studentID, limit)
}
