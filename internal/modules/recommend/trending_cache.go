package recommend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
)

func trendingCacheKey(limit int) string {
	return fmt.Sprintf("learnup:feed:trending:v1:%d", limit)
}

func (u *Usecases) cachedTrending(ctx context.Context, limit int) ([]TopicTrend, bool) {
	if u.deps.Redis == nil || u.deps.Config.TrendingCacheTTL <= 0 {
		return nil, false
	}
	raw, err := u.deps.Redis.Get(ctx, trendingCacheKey(limit)).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			u.deps.Log.Warn("trending cache read failed", "error", err)
		}
		u.deps.Metrics.IncCacheEvent("trending", "miss")
		return nil, false
	}
	out, err := decodeTrending(raw)
	if err != nil {
		u.deps.Log.Warn("trending cache entry unreadable", "error", err)
		u.deps.Metrics.IncCacheEvent("trending", "miss")
		return nil, false
	}
	u.deps.Metrics.IncCacheEvent("trending", "hit")
	return out, true
}

func (u *Usecases) storeTrending(ctx context.Context, limit int, v []TopicTrend) {
	if u.deps.Redis == nil || u.deps.Config.TrendingCacheTTL <= 0 {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := u.deps.Redis.Set(ctx, trendingCacheKey(limit), raw, u.deps.Config.TrendingCacheTTL).Err(); err != nil {
		u.deps.Log.Warn("trending cache write failed", "error", err)
	}
}

func decodeTrending(raw []byte) ([]TopicTrend, error) {
	var out []TopicTrend
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	for _, t := range out {
		if t.Topic == nil {
			return nil, fmt.Errorf("trending entry without topic")
		}
	}
	if out == nil {
		out = []TopicTrend{}
	}
	return out, nil
}
