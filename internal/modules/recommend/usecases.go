package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"

	"github.com/sayevvv/LearnUp-sub001/internal/data/graph"
	"github.com/sayevvv/LearnUp-sub001/internal/data/repos"
	types "github.com/sayevvv/LearnUp-sub001/internal/domain"
	"github.com/sayevvv/LearnUp-sub001/internal/modules/topics/catalog"
	"github.com/sayevvv/LearnUp-sub001/internal/observability"
	"github.com/sayevvv/LearnUp-sub001/internal/platform/logger"
)

// OverlapSource answers the two-hop "roadmaps sharing my topics" lookup outside SQL.
type OverlapSource interface {
	OverlappingRoadmaps(ctx context.Context, userID uuid.UUID, limit int) ([]graph.OverlapCandidate, error)
}

type UsecasesDeps struct {
	Log     *logger.Logger
	Metrics *observability.Metrics
	Config  Config

	Roadmaps repos.RoadmapRepo
	Progress repos.RoadmapProgressRepo
	Labels   repos.RoadmapTopicRepo
	Topics   repos.TopicRepo

	// Optional.
	Catalog *catalog.Cache
	Graph   OverlapSource
	Redis   *goredis.Client
}

// Usecases serves the read-only dashboard feeds. Feeds never write.
type Usecases struct {
	deps    UsecasesDeps
	breaker *gobreaker.CircuitBreaker[[]graph.OverlapCandidate]
}

func New(deps UsecasesDeps) *Usecases {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	if deps.Config == (Config{}) {
		deps.Config = DefaultConfig()
	}
	u := &Usecases{deps: deps}
	u.deps.Log = deps.Log.With("module", "recommend")
	if deps.Graph != nil {
		u.breaker = newGraphBreaker(deps.Config, u.deps.Log, deps.Metrics)
	}
	return u
}

func (u *Usecases) configured() error {
	if u.deps.Roadmaps == nil || u.deps.Progress == nil || u.deps.Labels == nil || u.deps.Topics == nil {
		return fmt.Errorf("recommend: repos not configured")
	}
	return nil
}

type TopicRef struct {
	ID        uuid.UUID `json:"id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	IsPrimary bool      `json:"is_primary"`
}

type RoadmapCard struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	Title     string     `json:"title"`
	Summary   string     `json:"summary,omitempty"`
	Published bool       `json:"published"`
	CreatedAt time.Time  `json:"created_at"`
	Topics    []TopicRef `json:"topics"`
}

type TopicTrend struct {
	Topic        *types.Topic `json:"topic"`
	RoadmapCount int64        `json:"roadmap_count"`
}

type InProgressCard struct {
	RoadmapCard
	Percent           float64   `json:"percent"`
	ProgressUpdatedAt time.Time `json:"progress_updated_at"`
}

type ForYouCard struct {
	RoadmapCard
	Overlap int64 `json:"overlap"`
}

// cards builds display cards for rms, keeping their order and attaching the effective
// current-scope topics of each roadmap.
func (u *Usecases) cards(ctx context.Context, rms []*types.Roadmap) ([]RoadmapCard, error) {
	out := make([]RoadmapCard, 0, len(rms))
	if len(rms) == 0 {
		return out, nil
	}
	ids := make([]uuid.UUID, 0, len(rms))
	for _, rm := range rms {
		ids = append(ids, rm.ID)
	}
	labels, err := u.deps.Labels.GetEffectiveByRoadmapIDs(ctx, nil, ids)
	if err != nil {
		return nil, fmt.Errorf("load labels: %w", err)
	}
	topicIDs := make([]uuid.UUID, 0, len(labels))
	for _, l := range labels {
		topicIDs = append(topicIDs, l.TopicID)
	}
	topics, err := u.topicsByID(ctx, topicIDs)
	if err != nil {
		return nil, err
	}
	byRoadmap := make(map[uuid.UUID][]TopicRef, len(rms))
	for _, l := range labels {
		tp := topics[l.TopicID]
		if tp == nil {
			continue
		}
		byRoadmap[l.RoadmapID] = append(byRoadmap[l.RoadmapID], TopicRef{ID: tp.ID, Slug: tp.Slug, Name: tp.Name, IsPrimary: l.IsPrimary})
	}
	for _, rm := range rms {
		refs := byRoadmap[rm.ID]
		if refs == nil {
			refs = []TopicRef{}
		}
		out = append(out, RoadmapCard{
			ID:        rm.ID,
			UserID:    rm.UserID,
			Title:     rm.Title,
			Summary:   rm.Summary,
			Published: rm.Published,
			CreatedAt: rm.CreatedAt,
			Topics:    refs,
		})
	}
	return out, nil
}

// topicsByID resolves through the catalog snapshot first, then the database.
func (u *Usecases) topicsByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*types.Topic, error) {
	out := make(map[uuid.UUID]*types.Topic, len(ids))
	var snap *catalog.Snapshot
	if u.deps.Catalog != nil {
		snap = u.deps.Catalog.Current()
	}
	var missing []uuid.UUID
	seen := map[uuid.UUID]bool{}
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if tp := snap.ByID(id); tp != nil {
			out[id] = tp
			continue
		}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return out, nil
	}
	rows, err := u.deps.Topics.GetByIDs(ctx, nil, missing)
	if err != nil {
		return nil, fmt.Errorf("load topics: %w", err)
	}
	for _, tp := range rows {
		out[tp.ID] = tp
	}
	return out, nil
}
