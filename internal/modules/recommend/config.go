package recommend

import (
	"fmt"
	"time"

	"github.com/sayevvv/LearnUp-sub001/internal/platform/envutil"
	"github.com/sayevvv/LearnUp-sub001/internal/platform/logger"
)

type Config struct {
	PopularLimit    int
	TrendingLimit   int
	InProgressLimit int
	ForYouLimit     int

	// TrendingCacheTTL <= 0 disables the redis cache of the trending feed.
	TrendingCacheTTL time.Duration
	// FeedTimeout bounds each dashboard feed; <= 0 means no per-feed deadline.
	FeedTimeout time.Duration

	BreakerFailures uint32
	BreakerTimeout  time.Duration
}

func DefaultConfig() Config {
	return Config{
		PopularLimit:     12,
		TrendingLimit:    8,
		InProgressLimit:  12,
		ForYouLimit:      12,
		TrendingCacheTTL: time.Minute,
		FeedTimeout:      3 * time.Second,
		BreakerFailures:  5,
		BreakerTimeout:   30 * time.Second,
	}
}

func LoadConfig(log *logger.Logger) (Config, error) {
	d := DefaultConfig()
	cfg := Config{
		PopularLimit:     envutil.Int("FEED_POPULAR_LIMIT", d.PopularLimit, log),
		TrendingLimit:    envutil.Int("FEED_TRENDING_LIMIT", d.TrendingLimit, log),
		InProgressLimit:  envutil.Int("FEED_IN_PROGRESS_LIMIT", d.InProgressLimit, log),
		ForYouLimit:      envutil.Int("FEED_FOR_YOU_LIMIT", d.ForYouLimit, log),
		TrendingCacheTTL: envutil.Duration("FEED_CACHE_TTL", d.TrendingCacheTTL, log),
		FeedTimeout:      envutil.Duration("FEED_TIMEOUT", d.FeedTimeout, log),
		BreakerFailures:  uint32(envutil.Int("GRAPH_BREAKER_FAILURES", int(d.BreakerFailures), log)),
		BreakerTimeout:   envutil.Duration("GRAPH_BREAKER_TIMEOUT", d.BreakerTimeout, log),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	limits := []struct {
		name string
		v    int
	}{
		{"popular", c.PopularLimit},
		{"trending", c.TrendingLimit},
		{"in_progress", c.InProgressLimit},
		{"for_you", c.ForYouLimit},
	}
	for _, l := range limits {
		if l.v <= 0 || l.v > 100 {
			return fmt.Errorf("feed %s limit must be in [1,100], got %d", l.name, l.v)
		}
	}
	if c.BreakerFailures == 0 {
		return fmt.Errorf("graph breaker failures must be positive")
	}
	if c.BreakerTimeout <= 0 {
		return fmt.Errorf("graph breaker timeout must be positive")
	}
	return nil
}
