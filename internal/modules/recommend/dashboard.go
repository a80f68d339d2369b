package recommend

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type Dashboard struct {
	Popular        []RoadmapCard    `json:"popular"`
	TrendingTopics []TopicTrend     `json:"trending_topics"`
	InProgress     []InProgressCard `json:"in_progress"`
	ForYou         []ForYouCard     `json:"for_you"`
	// Degraded names the feeds that failed and were replaced by empty lists.
	Degraded []string `json:"degraded"`
}

// Dashboard runs the four feeds concurrently. A failing feed is logged, counted and
// served empty; it never fails the others or the call.
func (u *Usecases) Dashboard(ctx context.Context, userID uuid.UUID) (Dashboard, error) {
	if err := u.configured(); err != nil {
		return Dashboard{}, err
	}
	var (
		popular    []RoadmapCard
		trending   []TopicTrend
		inProgress []InProgressCard
		forYou     []ForYouCard
		errs       [4]error
	)

	g, gctx := errgroup.WithContext(ctx)
	run := func(i int, fn func(ctx context.Context) error) {
		g.Go(func() error {
			fctx := gctx
			if u.deps.Config.FeedTimeout > 0 {
				var cancel context.CancelFunc
				fctx, cancel = context.WithTimeout(gctx, u.deps.Config.FeedTimeout)
				defer cancel()
			}
			errs[i] = fn(fctx)
			return nil
		})
	}
	run(0, func(ctx context.Context) (err error) { popular, err = u.Popular(ctx); return })
	run(1, func(ctx context.Context) (err error) { trending, err = u.TrendingTopics(ctx); return })
	run(2, func(ctx context.Context) (err error) { inProgress, err = u.InProgress(ctx, userID); return })
	run(3, func(ctx context.Context) (err error) { forYou, err = u.ForYou(ctx, userID); return })
	_ = g.Wait()

	out := Dashboard{
		Popular:        orEmpty(popular),
		TrendingTopics: orEmpty(trending),
		InProgress:     orEmpty(inProgress),
		ForYou:         orEmpty(forYou),
		Degraded:       []string{},
	}
	feeds := [4]string{FeedPopular, FeedTrendingTopics, FeedInProgress, FeedForYou}
	for i, err := range errs {
		if err == nil {
			continue
		}
		u.deps.Log.Warn("dashboard feed degraded", "feed", feeds[i], "error", err)
		u.deps.Metrics.IncFeedDegraded(feeds[i])
		out.Degraded = append(out.Degraded, feeds[i])
		switch i {
		case 0:
			out.Popular = []RoadmapCard{}
		case 1:
			out.TrendingTopics = []TopicTrend{}
		case 2:
			out.InProgress = []InProgressCard{}
		case 3:
			out.ForYou = []ForYouCard{}
		}
	}
	return out, nil
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
