// internal/catalog/cache.go
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"forecast-bot/internal/common/logger"
	"forecast-bot/internal/common/metrics"
	"forecast-bot/internal/table"
)

const tableKeyPrefix = "forecast:table:"

// CachedStore keeps decoded tables in Redis as JSON. Directory listings are
// always served by the wrapped store.
type CachedStore struct {
	Store
	redis  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedStore(next Store, rdb *redis.Client, ttl time.Duration, log logger.Logger) *CachedStore {
	return &CachedStore{
		Store:  next,
		redis:  rdb,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "table-cache"}),
	}
}

func tableKey(sheet string, segments []string) string {
	return tableKeyPrefix + strings.Join(segments, "/") + "#" + sheet
}

func (s *CachedStore) ReadTable(ctx context.Context, sheet string, segments ...string) (*table.Table, error) {
	key := tableKey(sheet, segments)

	cached, err := s.redis.Get(ctx, key).Result()
	switch {
	case err == nil:
		var t table.Table
		if jsonErr := json.Unmarshal([]byte(cached), &t); jsonErr == nil {
			metrics.TableCacheLookups.WithLabelValues("hit").Inc()
			return &t, nil
		}
		s.logger.Warn("Discarding undecodable cached table", map[string]interface{}{"key": key})
	case errors.Is(err, redis.Nil):
		metrics.TableCacheLookups.WithLabelValues("miss").Inc()
	default:
		metrics.TableCacheLookups.WithLabelValues("error").Inc()
		s.logger.Warn("Table cache read failed", map[string]interface{}{"key": key, "error": err.Error()})
	}

	t, err := s.Store.ReadTable(ctx, sheet, segments...)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(t); err == nil {
		if err := s.redis.Set(ctx, key, data, s.ttl).Err(); err != nil {
			s.logger.Warn("Table cache write failed", map[string]interface{}{"key": key, "error": err.Error()})
		}
	}
	return t, nil
}
