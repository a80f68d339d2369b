package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/sayevvv/LearnUp-sub001/internal/observability"
)

const (
	FeedPopular        = "popular"
	FeedTrendingTopics = "trending_topics"
	FeedInProgress     = "in_progress"
	FeedForYou         = "for_you"
)

// observe wraps one feed query in a span and records its latency and outcome.
func (u *Usecases) observe(ctx context.Context, feed string, fn func(ctx context.Context) error) error {
	start := time.Now()
	ctx, span := observability.StartSpan(ctx, "recommend."+feed, attribute.String("feed", feed))
	defer span.End()

	err := fn(ctx)
	status := "ok"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	u.deps.Metrics.ObserveFeed(feed, status, time.Since(start))
	return err
}

// Popular returns published roadmaps, newest first.
func (u *Usecases) Popular(ctx context.Context) ([]RoadmapCard, error) {
	if err := u.configured(); err != nil {
		return nil, err
	}
	var out []RoadmapCard
	err := u.observe(ctx, FeedPopular, func(ctx context.Context) error {
		rms, err := u.deps.Roadmaps.ListPublishedRecent(ctx, nil, u.deps.Config.PopularLimit)
		if err != nil {
			return fmt.Errorf("list published roadmaps: %w", err)
		}
		out, err = u.cards(ctx, rms)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// TrendingTopics ranks topics by how many roadmaps carry them, ties in catalog order.
func (u *Usecases) TrendingTopics(ctx context.Context) ([]TopicTrend, error) {
	if err := u.configured(); err != nil {
		return nil, err
	}
	var out []TopicTrend
	err := u.observe(ctx, FeedTrendingTopics, func(ctx context.Context) error {
		limit := u.deps.Config.TrendingLimit
		if cached, ok := u.cachedTrending(ctx, limit); ok {
			out = cached
			return nil
		}
		var err error
		out, err = u.loadTrending(ctx, limit)
		if err != nil {
			return err
		}
		u.storeTrending(ctx, limit, out)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (u *Usecases) loadTrending(ctx context.Context, limit int) ([]TopicTrend, error) {
	counts, err := u.deps.Labels.CountRoadmapsByTopic(ctx, nil, limit)
	if err != nil {
		return nil, fmt.Errorf("count roadmaps by topic: %w", err)
	}
	ids := make([]uuid.UUID, 0, len(counts))
	for _, c := range counts {
		ids = append(ids, c.TopicID)
	}
	topics, err := u.topicsByID(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]TopicTrend, 0, len(counts))
	for _, c := range counts {
		tp := topics[c.TopicID]
		if tp == nil {
			continue
		}
		out = append(out, TopicTrend{Topic: tp, RoadmapCount: c.RoadmapCount})
	}
	return out, nil
}

// InProgress lists the user's roadmaps with 0 < percent < 100, most recently touched
// first. Anonymous callers get an empty list.
func (u *Usecases) InProgress(ctx context.Context, userID uuid.UUID) ([]InProgressCard, error) {
	if err := u.configured(); err != nil {
		return nil, err
	}
	out := []InProgressCard{}
	if userID == uuid.Nil {
		return out, nil
	}
	err := u.observe(ctx, FeedInProgress, func(ctx context.Context) error {
		rows, err := u.deps.Progress.ListInProgressByUserID(ctx, nil, userID, u.deps.Config.InProgressLimit)
		if err != nil {
			return fmt.Errorf("list in-progress roadmaps: %w", err)
		}
		ids := make([]uuid.UUID, 0, len(rows))
		for _, r := range rows {
			ids = append(ids, r.RoadmapID)
		}
		rms, err := u.deps.Roadmaps.GetByIDs(ctx, nil, ids)
		if err != nil {
			return fmt.Errorf("load roadmaps: %w", err)
		}
		cards, err := u.cards(ctx, rms)
		if err != nil {
			return err
		}
		byID := make(map[uuid.UUID]RoadmapCard, len(cards))
		for _, c := range cards {
			byID[c.ID] = c
		}
		for _, r := range rows {
			c, ok := byID[r.RoadmapID]
			if !ok {
				continue
			}
			out = append(out, InProgressCard{RoadmapCard: c, Percent: r.Percent, ProgressUpdatedAt: r.ProgressUpdatedAt})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
