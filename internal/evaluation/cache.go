package evaluation

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"insightengine/models"

	"github.com/redis/go-redis/v9"
)

// ReportCache stores completed evaluation reports keyed by a hash of the
// article, so identical submissions skip the inference calls entirely.
type ReportCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewReportCache creates a cache over the shared Redis client.
func NewReportCache(ttl time.Duration) *ReportCache {
	return &ReportCache{rdb: GetRedisClient(), ttl: ttl}
}

func cacheKey(text, title string) string {
	sum := sha256.Sum256([]byte(title + "\x00" + text))
	return "evalcache:" + hex.EncodeToString(sum[:])
}

// Get returns the cached report for the article, or false on a miss. Degraded
// reports are never served from cache; a retry deserves fresh inference calls.
func (c *ReportCache) Get(text, title string) (models.EvaluationReport, bool) {
	if c == nil || c.rdb == nil {
		return models.EvaluationReport{}, false
	}
	data, err := c.rdb.Get(ctx, cacheKey(text, title)).Bytes()
	if err == redis.Nil {
		return models.EvaluationReport{}, false
	} else if err != nil {
		log.Printf("report cache: get failed: %v", err)
		return models.EvaluationReport{}, false
	}

	var report models.EvaluationReport
	if err := json.Unmarshal(data, &report); err != nil {
		log.Printf("report cache: corrupt entry dropped: %v", err)
		c.rdb.Del(ctx, cacheKey(text, title))
		return models.EvaluationReport{}, false
	}
	return report, true
}

// Set stores a report unless it contains degraded dimensions.
func (c *ReportCache) Set(text, title string, report models.EvaluationReport) error {
	if c == nil || c.rdb == nil {
		return fmt.Errorf("Redis client not available")
	}
	if len(report.DegradedDimensions) > 0 {
		return nil
	}
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, cacheKey(text, title), data, c.ttl).Err()
}
