package topics

import (
	"context"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/sayevvv/LearnUp-sub001/internal/data/repos"
	types "github.com/sayevvv/LearnUp-sub001/internal/domain"
	domainagg "github.com/sayevvv/LearnUp-sub001/internal/domain/aggregates"
	"github.com/sayevvv/LearnUp-sub001/internal/modules/topics/catalog"
	"github.com/sayevvv/LearnUp-sub001/internal/modules/topics/classify"
	"github.com/sayevvv/LearnUp-sub001/internal/observability"
	"github.com/sayevvv/LearnUp-sub001/internal/platform/apierr"
	"github.com/sayevvv/LearnUp-sub001/internal/platform/logger"
)

type UsecasesDeps struct {
	DB      *gorm.DB
	Log     *logger.Logger
	Metrics *observability.Metrics

	Catalog    *catalog.Cache
	Classifier *classify.Classifier

	Topics   repos.TopicRepo
	Roadmaps repos.RoadmapRepo
	Labels   repos.RoadmapTopicRepo

	Aggregate domainagg.RoadmapTopicsAggregate
}

type Usecases struct {
	deps UsecasesDeps
}

func New(deps UsecasesDeps) Usecases {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	return Usecases{deps: deps}
}

func (u Usecases) WithLog(log *logger.Logger) Usecases {
	u.deps.Log = log
	return u
}

func (u Usecases) configured() bool {
	return u.deps.Catalog != nil && u.deps.Classifier != nil && u.deps.Topics != nil &&
		u.deps.Roadmaps != nil && u.deps.Labels != nil && u.deps.Aggregate != nil
}

func (u Usecases) defaultSlug() string {
	return u.deps.Classifier.Config().DefaultSlug
}

// snapshot returns the loaded catalog, loading it on first use.
func (u Usecases) snapshot(ctx context.Context) (*catalog.Snapshot, error) {
	if snap := u.deps.Catalog.Current(); snap.Version > 0 {
		return snap, nil
	}
	return u.deps.Catalog.Reload(ctx)
}

func (u Usecases) ListTopics(ctx context.Context) ([]*types.Topic, error) {
	if !u.configured() {
		return nil, apierr.New(http.StatusInternalServerError, "topics_not_configured", nil)
	}
	snap, err := u.snapshot(ctx)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "load_topics_failed", err)
	}
	out := make([]*types.Topic, len(snap.Topics))
	copy(out, snap.Topics)
	return out, nil
}

// EnsureTopics creates catalog entries for unknown slugs and returns the slugs it created.
// Existing entries are left as they are.
func (u Usecases) EnsureTopics(ctx context.Context, slugs []string) ([]string, error) {
	if !u.configured() {
		return nil, apierr.New(http.StatusInternalServerError, "topics_not_configured", nil)
	}
	created, err := catalog.EnsureTopics(ctx, nil, u.deps.Topics, slugs)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "ensure_topics_failed", err)
	}
	if len(created) > 0 {
		u.invalidateCatalog(ctx, "ensure_topics")
	}
	return created, nil
}

// EnsureSeeds inserts the missing seeded topics and reloads the catalog.
func (u Usecases) EnsureSeeds(ctx context.Context, seeds []catalog.Seed) (int, error) {
	if !u.configured() {
		return 0, apierr.New(http.StatusInternalServerError, "topics_not_configured", nil)
	}
	seeds = catalog.WithDefaultTopic(seeds, u.defaultSlug())
	n, err := catalog.EnsureSeeds(ctx, nil, u.deps.Topics, seeds)
	if err != nil {
		return 0, apierr.New(http.StatusInternalServerError, "ensure_seeds_failed", err)
	}
	if n > 0 {
		u.invalidateCatalog(ctx, "ensure_seeds")
	} else if _, err := u.deps.Catalog.Reload(ctx); err != nil {
		return n, apierr.New(http.StatusInternalServerError, "load_topics_failed", err)
	}
	return n, nil
}

// Classify previews the classifier on free text. Nothing is stored.
func (u Usecases) Classify(ctx context.Context, in classify.Input) (classify.Result, error) {
	if !u.configured() {
		return classify.Result{}, apierr.New(http.StatusInternalServerError, "topics_not_configured", nil)
	}
	snap, err := u.snapshot(ctx)
	if err != nil {
		return classify.Result{}, apierr.New(http.StatusInternalServerError, "load_topics_failed", err)
	}
	return u.classify(snap, in), nil
}

func (u Usecases) classify(snap *catalog.Snapshot, in classify.Input) classify.Result {
	res := u.deps.Classifier.Classify(snap.Index, in)
	if res.Matched(u.defaultSlug()) {
		u.deps.Metrics.IncClassification("matched")
	} else {
		u.deps.Metrics.IncClassification("fallback")
	}
	return res
}

func (u Usecases) invalidateCatalog(ctx context.Context, reason string) {
	if _, err := u.deps.Catalog.Invalidate(ctx); err != nil {
		u.deps.Log.Warn("catalog invalidation failed (continuing)", "reason", reason, "error", err)
	}
}

// AILabelsFromResult flattens a classification into store labels: the primary first,
// then secondaries in rank order.
func AILabelsFromResult(res classify.Result) []domainagg.AILabel {
	out := make([]domainagg.AILabel, 0, 1+len(res.Secondary))
	if p := strings.TrimSpace(res.Primary); p != "" {
		out = append(out, domainagg.AILabel{Slug: p, Confidence: res.Confidence.Primary, IsPrimary: true})
	}
	for _, s := range res.Secondary {
		out = append(out, domainagg.AILabel{Slug: s, Confidence: res.Confidence.Secondary[s]})
	}
	return out
}
