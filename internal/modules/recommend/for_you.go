package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"

	"github.com/sayevvv/LearnUp-sub001/internal/data/graph"
	"github.com/sayevvv/LearnUp-sub001/internal/data/repos"
	types "github.com/sayevvv/LearnUp-sub001/internal/domain"
	"github.com/sayevvv/LearnUp-sub001/internal/observability"
	"github.com/sayevvv/LearnUp-sub001/internal/platform/logger"
)

const graphBreakerName = "neo4j_for_you"

func newGraphBreaker(cfg Config, log *logger.Logger, m *observability.Metrics) *gobreaker.CircuitBreaker[[]graph.OverlapCandidate] {
	m.SetBreakerState(graphBreakerName, int(gobreaker.StateClosed))
	return gobreaker.NewCircuitBreaker[[]graph.OverlapCandidate](gobreaker.Settings{
		Name:        graphBreakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
			m.SetBreakerState(name, int(to))
		},
	})
}

// ForYou returns published roadmaps of other owners that share at least one topic with
// the user's roadmaps, most shared topics first, then newest.
func (u *Usecases) ForYou(ctx context.Context, userID uuid.UUID) ([]ForYouCard, error) {
	if err := u.configured(); err != nil {
		return nil, err
	}
	out := []ForYouCard{}
	if userID == uuid.Nil {
		return out, nil
	}
	err := u.observe(ctx, FeedForYou, func(ctx context.Context) error {
		limit := u.deps.Config.ForYouLimit
		if cards, ok := u.forYouFromGraph(ctx, userID, limit); ok {
			out = cards
			return nil
		}
		rows, err := u.deps.Labels.ListOverlappingRoadmaps(ctx, nil, userID, limit)
		if err != nil {
			return fmt.Errorf("list overlapping roadmaps: %w", err)
		}
		out, err = u.hydrateOverlap(ctx, userID, rows, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// forYouFromGraph asks the graph for candidates behind the breaker, then re-counts
// their overlap in SQL, which stays authoritative: the projection is best-effort and
// may be stale. ok=false means the caller should answer from SQL: no graph, breaker
// open, graph error, or no candidate that still shares a topic.
func (u *Usecases) forYouFromGraph(ctx context.Context, userID uuid.UUID, limit int) ([]ForYouCard, bool) {
	if u.deps.Graph == nil || u.breaker == nil {
		return nil, false
	}
	// Some graph candidates may fail SQL re-counting; ask for extra.
	cands, err := u.breaker.Execute(func() ([]graph.OverlapCandidate, error) {
		return u.deps.Graph.OverlappingRoadmaps(ctx, userID, limit*2)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			u.deps.Metrics.IncCacheEvent("graph_for_you", "rejected")
		} else {
			u.deps.Metrics.IncCacheEvent("graph_for_you", "error")
			u.deps.Log.Warn("graph for-you lookup failed; using sql", "error", err)
		}
		return nil, false
	}
	if len(cands) == 0 {
		u.deps.Metrics.IncCacheEvent("graph_for_you", "empty")
		return nil, false
	}

	ids := make([]uuid.UUID, 0, len(cands))
	seen := map[uuid.UUID]bool{}
	for _, c := range cands {
		if c.RoadmapID != uuid.Nil && !seen[c.RoadmapID] {
			seen[c.RoadmapID] = true
			ids = append(ids, c.RoadmapID)
		}
	}
	rows, err := u.deps.Labels.ListOverlappingAmong(ctx, nil, userID, ids, limit)
	if err != nil {
		u.deps.Log.Warn("graph for-you recount failed; using sql", "error", err)
		return nil, false
	}
	cards, err := u.hydrateOverlap(ctx, userID, rows, limit)
	if err != nil {
		u.deps.Log.Warn("graph for-you hydration failed; using sql", "error", err)
		return nil, false
	}
	if len(cards) == 0 {
		u.deps.Metrics.IncCacheEvent("graph_for_you", "stale")
		return nil, false
	}
	u.deps.Metrics.IncCacheEvent("graph_for_you", "hit")
	return cards, true
}

// hydrateOverlap loads overlap rows from SQL, drops anything that is unpublished,
// owned by userID, deleted or repeated, and keeps row order.
func (u *Usecases) hydrateOverlap(ctx context.Context, userID uuid.UUID, rows []repos.OverlapRow, limit int) ([]ForYouCard, error) {
	out := []ForYouCard{}
	if len(rows) == 0 {
		return out, nil
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.RoadmapID)
	}
	rms, err := u.deps.Roadmaps.GetByIDs(ctx, nil, ids)
	if err != nil {
		return nil, fmt.Errorf("load roadmaps: %w", err)
	}
	byID := make(map[uuid.UUID]*types.Roadmap, len(rms))
	for _, rm := range rms {
		if rm.Published && rm.UserID != userID {
			byID[rm.ID] = rm
		}
	}

	kept := make([]*types.Roadmap, 0, len(rows))
	overlap := make([]int64, 0, len(rows))
	seen := map[uuid.UUID]bool{}
	for _, c := range rows {
		rm := byID[c.RoadmapID]
		if rm == nil || seen[rm.ID] || c.Overlap <= 0 {
			continue
		}
		seen[rm.ID] = true
		kept = append(kept, rm)
		overlap = append(overlap, c.Overlap)
		if len(kept) == limit {
			break
		}
	}
	cards, err := u.cards(ctx, kept)
	if err != nil {
		return nil, err
	}
	for i, c := range cards {
		out = append(out, ForYouCard{RoadmapCard: c, Overlap: overlap[i]})
	}
	return out, nil
}
