package aggregates

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sayevvv/LearnUp-sub001/internal/data/graph"
	"github.com/sayevvv/LearnUp-sub001/internal/data/repos"
	catalogrepo "github.com/sayevvv/LearnUp-sub001/internal/data/repos/catalog"
	types "github.com/sayevvv/LearnUp-sub001/internal/domain"
	domainagg "github.com/sayevvv/LearnUp-sub001/internal/domain/aggregates"
	"github.com/sayevvv/LearnUp-sub001/internal/observability"
	"github.com/sayevvv/LearnUp-sub001/internal/platform/dbctx"
)

// TopicsProjector mirrors committed label sets into a secondary read store.
type TopicsProjector interface {
	UpsertRoadmapTopics(ctx context.Context, p graph.RoadmapProjection) error
	DeleteRoadmap(ctx context.Context, roadmapID uuid.UUID) error
}

type RoadmapTopicsAggregateDeps struct {
	Base BaseDeps

	Roadmaps repos.RoadmapRepo
	Progress repos.RoadmapProgressRepo
	Labels   repos.RoadmapTopicRepo
	Topics   repos.TopicRepo

	// Projector is optional.
	Projector TopicsProjector
	Metrics   *observability.Metrics
}

type roadmapTopicsAggregate struct {
	deps RoadmapTopicsAggregateDeps
}

func NewRoadmapTopicsAggregate(deps RoadmapTopicsAggregateDeps) domainagg.RoadmapTopicsAggregate {
	deps.Base = deps.Base.withDefaults()
	return &roadmapTopicsAggregate{deps: deps}
}

func (a *roadmapTopicsAggregate) Contract() domainagg.Contract {
	return domainagg.RoadmapTopicsAggregateContract
}

func (a *roadmapTopicsAggregate) configured() bool {
	return a.deps.Roadmaps != nil && a.deps.Labels != nil && a.deps.Topics != nil && a.deps.Progress != nil
}

func (a *roadmapTopicsAggregate) ReplaceAILabels(ctx context.Context, in domainagg.ReplaceAILabelsInput) (domainagg.ReplaceLabelsResult, error) {
	const op = "Roadmap.Topics.ReplaceAILabels"
	if in.VersionID != nil && *in.VersionID == uuid.Nil {
		in.VersionID = nil
	}
	out := domainagg.ReplaceLabelsResult{RoadmapID: in.RoadmapID, ScopeKey: types.ScopeKey(in.VersionID)}
	if in.RoadmapID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing roadmap_id", nil)
	}
	if !a.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "roadmap topics aggregate repos not configured", nil)
	}
	labels, err := normalizeAILabels(in.Labels)
	if err != nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, err.Error(), err)
	}

	err = executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		rm, err := a.deps.Roadmaps.LockByID(dbc.Ctx, dbc.Tx, in.RoadmapID)
		if err != nil {
			return err
		}
		if rm == nil {
			return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("roadmap not found: %s", in.RoadmapID), nil)
		}

		bySlug, created, err := a.ensureTopics(dbc, labels)
		if err != nil {
			return err
		}
		out.CreatedTopics = created

		deleted, err := a.deps.Labels.FullDeleteByScopeAndSource(dbc.Ctx, dbc.Tx, in.RoadmapID, out.ScopeKey, types.SourceAI)
		if err != nil {
			return err
		}
		out.Deleted = deleted

		rows := make([]*types.RoadmapTopic, 0, len(labels))
		for _, l := range labels {
			tp := bySlug[l.Slug]
			if tp == nil {
				return domainagg.NewError(domainagg.CodeInternal, op, fmt.Sprintf("topic %q missing after ensure", l.Slug), nil)
			}
			row := &types.RoadmapTopic{
				RoadmapID:  in.RoadmapID,
				VersionID:  in.VersionID,
				ScopeKey:   out.ScopeKey,
				TopicID:    tp.ID,
				Source:     types.SourceAI,
				Confidence: l.Confidence,
				IsPrimary:  l.IsPrimary,
			}
			if l.IsPrimary {
				id := tp.ID
				out.PrimaryID = &id
			}
			rows = append(rows, row)
		}
		if _, err := a.deps.Labels.Create(dbc.Ctx, dbc.Tx, rows); err != nil {
			return err
		}
		out.Inserted = len(rows)
		return nil
	})
	if err != nil {
		return out, err
	}
	if in.VersionID == nil {
		a.project(ctx, in.RoadmapID)
	}
	return out, nil
}

func (a *roadmapTopicsAggregate) ReplaceAuthorLabels(ctx context.Context, in domainagg.ReplaceAuthorLabelsInput) (domainagg.ReplaceLabelsResult, error) {
	const op = "Roadmap.Topics.ReplaceAuthorLabels"
	out := domainagg.ReplaceLabelsResult{RoadmapID: in.RoadmapID, ScopeKey: types.CurrentScope}
	if in.RoadmapID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing roadmap_id", nil)
	}
	ids := dedupeIDs(in.TopicIDs)
	if len(ids) == 0 {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "no topics selected", domainagg.ErrEmptySelection)
	}
	if !a.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "roadmap topics aggregate repos not configured", nil)
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		known, err := a.deps.Topics.GetByIDs(dbc.Ctx, dbc.Tx, ids)
		if err != nil {
			return err
		}
		if missing := missingIDs(ids, known); len(missing) > 0 {
			cause := fmt.Errorf("%w: %s", domainagg.ErrInvalidTopics, strings.Join(missing, ","))
			return domainagg.NewError(domainagg.CodeValidation, op, cause.Error(), cause)
		}

		rm, err := a.deps.Roadmaps.LockByID(dbc.Ctx, dbc.Tx, in.RoadmapID)
		if err != nil {
			return err
		}
		if rm == nil {
			return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("roadmap not found: %s", in.RoadmapID), nil)
		}

		deleted, err := a.deps.Labels.FullDeleteByScopeAndSource(dbc.Ctx, dbc.Tx, in.RoadmapID, types.CurrentScope, types.SourceAuthor)
		if err != nil {
			return err
		}
		out.Deleted = deleted

		rows := make([]*types.RoadmapTopic, 0, len(ids))
		for _, id := range ids {
			primary := in.PrimaryID != nil && *in.PrimaryID == id
			if primary {
				pid := id
				out.PrimaryID = &pid
			}
			rows = append(rows, &types.RoadmapTopic{
				RoadmapID:  in.RoadmapID,
				ScopeKey:   types.CurrentScope,
				TopicID:    id,
				Source:     types.SourceAuthor,
				Confidence: 1,
				IsPrimary:  primary,
			})
		}
		if _, err := a.deps.Labels.Create(dbc.Ctx, dbc.Tx, rows); err != nil {
			return err
		}
		out.Inserted = len(rows)
		return nil
	})
	if err != nil {
		return out, err
	}
	a.project(ctx, in.RoadmapID)
	return out, nil
}

func (a *roadmapTopicsAggregate) ClearAuthorLabels(ctx context.Context, roadmapID uuid.UUID) (int, error) {
	const op = "Roadmap.Topics.ClearAuthorLabels"
	if roadmapID == uuid.Nil {
		return 0, domainagg.NewError(domainagg.CodeValidation, op, "missing roadmap_id", nil)
	}
	if !a.configured() {
		return 0, domainagg.NewError(domainagg.CodeInternal, op, "roadmap topics aggregate repos not configured", nil)
	}
	deleted := 0
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		rm, err := a.deps.Roadmaps.LockByID(dbc.Ctx, dbc.Tx, roadmapID)
		if err != nil {
			return err
		}
		if rm == nil {
			return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("roadmap not found: %s", roadmapID), nil)
		}
		deleted, err = a.deps.Labels.FullDeleteByScopeAndSource(dbc.Ctx, dbc.Tx, roadmapID, types.CurrentScope, types.SourceAuthor)
		return err
	})
	if err != nil {
		return 0, err
	}
	a.project(ctx, roadmapID)
	return deleted, nil
}

func (a *roadmapTopicsAggregate) DeleteRoadmap(ctx context.Context, roadmapID uuid.UUID) error {
	const op = "Roadmap.Topics.DeleteRoadmap"
	if roadmapID == uuid.Nil {
		return domainagg.NewError(domainagg.CodeValidation, op, "missing roadmap_id", nil)
	}
	if !a.configured() {
		return domainagg.NewError(domainagg.CodeInternal, op, "roadmap topics aggregate repos not configured", nil)
	}
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		rm, err := a.deps.Roadmaps.LockByID(dbc.Ctx, dbc.Tx, roadmapID)
		if err != nil {
			return err
		}
		if rm == nil {
			return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("roadmap not found: %s", roadmapID), nil)
		}
		ids := []uuid.UUID{roadmapID}
		if err := a.deps.Labels.FullDeleteByRoadmapIDs(dbc.Ctx, dbc.Tx, ids); err != nil {
			return err
		}
		if err := a.deps.Progress.FullDeleteByRoadmapIDs(dbc.Ctx, dbc.Tx, ids); err != nil {
			return err
		}
		return a.deps.Roadmaps.FullDeleteByIDs(dbc.Ctx, dbc.Tx, ids)
	})
	if err != nil {
		return err
	}
	if a.deps.Projector != nil {
		if perr := a.deps.Projector.DeleteRoadmap(ctx, roadmapID); perr != nil {
			a.deps.Base.Log.Warn("graph roadmap delete failed (continuing)", "roadmap_id", roadmapID, "error", perr)
		}
	}
	return nil
}

// ensureTopics resolves label slugs to catalog rows, inserting missing slugs at the end
// of the catalog. Existing rows are never modified.
func (a *roadmapTopicsAggregate) ensureTopics(dbc dbctx.Context, labels []domainagg.AILabel) (map[string]*types.Topic, []string, error) {
	slugs := make([]string, 0, len(labels))
	for _, l := range labels {
		slugs = append(slugs, l.Slug)
	}
	bySlug, err := a.topicsBySlug(dbc, slugs)
	if err != nil {
		return nil, nil, err
	}
	var missing []string
	for _, s := range slugs {
		if bySlug[s] == nil {
			missing = append(missing, s)
		}
	}
	if len(missing) == 0 {
		return bySlug, nil, nil
	}

	pos, err := a.deps.Topics.MaxPosition(dbc.Ctx, dbc.Tx)
	if err != nil {
		return nil, nil, err
	}
	rows := make([]*types.Topic, 0, len(missing))
	for i, s := range missing {
		rows = append(rows, &types.Topic{
			Slug:     s,
			Name:     TopicNameFromSlug(s),
			Aliases:  types.EncodeTopicAliases(nil),
			Position: pos + 1 + i,
		})
	}
	if _, err := a.deps.Topics.CreateIgnoreDuplicates(dbc.Ctx, dbc.Tx, rows); err != nil {
		return nil, nil, err
	}
	bySlug, err = a.topicsBySlug(dbc, slugs)
	if err != nil {
		return nil, nil, err
	}
	return bySlug, missing, nil
}

func (a *roadmapTopicsAggregate) topicsBySlug(dbc dbctx.Context, slugs []string) (map[string]*types.Topic, error) {
	rows, err := a.deps.Topics.GetBySlugs(dbc.Ctx, dbc.Tx, slugs)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*types.Topic, len(rows))
	for _, t := range rows {
		out[t.Slug] = t
	}
	return out, nil
}

// project pushes the effective current-scope labels to the projector. Failures are
// logged and never surfaced; SQL stays authoritative.
func (a *roadmapTopicsAggregate) project(ctx context.Context, roadmapID uuid.UUID) {
	if a.deps.Projector == nil {
		return
	}
	log := a.deps.Base.Log.With("roadmap_id", roadmapID)
	p, err := a.loadProjection(ctx, roadmapID)
	if err != nil {
		a.deps.Metrics.IncGraphProjection("error")
		log.Warn("graph projection load failed (continuing)", "error", err)
		return
	}
	if p == nil {
		return
	}
	if err := a.deps.Projector.UpsertRoadmapTopics(ctx, *p); err != nil {
		a.deps.Metrics.IncGraphProjection("error")
		log.Warn("graph projection failed (continuing)", "error", err)
		return
	}
	a.deps.Metrics.IncGraphProjection("success")
}

func (a *roadmapTopicsAggregate) loadProjection(ctx context.Context, roadmapID uuid.UUID) (*graph.RoadmapProjection, error) {
	rm, err := a.deps.Roadmaps.GetByID(ctx, nil, roadmapID)
	if err != nil || rm == nil {
		return nil, err
	}
	labels, err := a.deps.Labels.GetEffectiveByRoadmapIDs(ctx, nil, []uuid.UUID{roadmapID})
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(labels))
	for _, l := range labels {
		ids = append(ids, l.TopicID)
	}
	topics, err := a.deps.Topics.GetByIDs(ctx, nil, ids)
	if err != nil {
		return nil, err
	}
	slugs := make(map[uuid.UUID]string, len(topics))
	for _, t := range topics {
		slugs[t.ID] = t.Slug
	}
	p := &graph.RoadmapProjection{
		RoadmapID: rm.ID,
		OwnerID:   rm.UserID,
		Published: rm.Published,
		CreatedAt: rm.CreatedAt,
		Topics:    make([]graph.ProjectedTopic, 0, len(labels)),
	}
	for _, l := range labels {
		p.Topics = append(p.Topics, graph.ProjectedTopic{
			ID:         l.TopicID,
			Slug:       slugs[l.TopicID],
			IsPrimary:  l.IsPrimary,
			Confidence: l.Confidence,
		})
	}
	return p, nil
}

// normalizeAILabels canonicalizes slugs, drops duplicates (first wins) and checks the
// confidence range and the single-primary rule.
func normalizeAILabels(in []domainagg.AILabel) ([]domainagg.AILabel, error) {
	out := make([]domainagg.AILabel, 0, len(in))
	seen := make(map[string]bool, len(in))
	primaries := 0
	for _, l := range in {
		slug := catalogrepo.NormalizeSlug(l.Slug)
		if slug == "" {
			return nil, ValidationError("label with empty slug")
		}
		if seen[slug] {
			continue
		}
		seen[slug] = true
		if math.IsNaN(l.Confidence) || l.Confidence <= 0 || l.Confidence > 1 {
			return nil, ValidationError(fmt.Sprintf("confidence out of range for %q: %v", slug, l.Confidence))
		}
		if l.IsPrimary {
			primaries++
		}
		out = append(out, domainagg.AILabel{Slug: slug, Confidence: l.Confidence, IsPrimary: l.IsPrimary})
	}
	if primaries > 1 {
		return nil, ValidationError("more than one primary label")
	}
	return out, nil
}

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func missingIDs(want []uuid.UUID, found []*types.Topic) []string {
	have := make(map[uuid.UUID]bool, len(found))
	for _, t := range found {
		have[t.ID] = true
	}
	var out []string
	for _, id := range want {
		if !have[id] {
			out = append(out, id.String())
		}
	}
	sort.Strings(out)
	return out
}

// TopicNameFromSlug turns "machine-learning" into "Machine Learning".
// Casing is rune-aware, so seeds like "édition-numérique" stay valid UTF-8.
func TopicNameFromSlug(slug string) string {
	parts := strings.FieldsFunc(slug, func(r rune) bool { return r == '-' || r == '_' || r == ' ' })
	return cases.Title(language.Und, cases.NoLower).String(strings.Join(parts, " "))
}
