package topics

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/google/uuid"

	types "github.com/sayevvv/LearnUp-sub001/internal/domain"
	domainagg "github.com/sayevvv/LearnUp-sub001/internal/domain/aggregates"
	"github.com/sayevvv/LearnUp-sub001/internal/modules/topics/catalog"
	"github.com/sayevvv/LearnUp-sub001/internal/modules/topics/classify"
	"github.com/sayevvv/LearnUp-sub001/internal/platform/apierr"
)

type CreateRoadmapInput struct {
	UserID     uuid.UUID
	Title      string
	Summary    string
	Milestones []string
	Published  bool
}

type RoadmapLabels struct {
	Roadmap        *types.Roadmap  `json:"roadmap"`
	Classification classify.Result `json:"classification"`
	Labels         []Label         `json:"labels"`
}

// Label is one displayed topic of a roadmap scope.
type Label struct {
	Topic      *types.Topic      `json:"topic"`
	IsPrimary  bool              `json:"is_primary"`
	Confidence float64           `json:"confidence"`
	Source     types.LabelSource `json:"source"`
}

// CreateRoadmap stores a roadmap record, classifies it and stores the AI labels.
func (u Usecases) CreateRoadmap(ctx context.Context, in CreateRoadmapInput) (RoadmapLabels, error) {
	if in.UserID == uuid.Nil {
		return RoadmapLabels{}, apierr.New(http.StatusUnauthorized, "unauthorized", nil)
	}
	if !u.configured() {
		return RoadmapLabels{}, apierr.New(http.StatusInternalServerError, "topics_not_configured", nil)
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return RoadmapLabels{}, apierr.New(http.StatusBadRequest, "missing_title", nil)
	}

	ms := make([]types.Milestone, 0, len(in.Milestones))
	for _, m := range in.Milestones {
		if m = strings.TrimSpace(m); m != "" {
			ms = append(ms, types.Milestone{Topic: m})
		}
	}
	rm := &types.Roadmap{
		UserID:     in.UserID,
		Title:      title,
		Summary:    strings.TrimSpace(in.Summary),
		Milestones: types.EncodeMilestones(ms),
		Published:  in.Published,
	}
	if _, err := u.deps.Roadmaps.Create(ctx, nil, []*types.Roadmap{rm}); err != nil {
		return RoadmapLabels{}, apierr.New(http.StatusInternalServerError, "create_roadmap_failed", err)
	}

	out, err := u.labelRoadmap(ctx, rm, nil)
	if err != nil {
		// The roadmap exists without labels; reclassify repairs it.
		u.deps.Log.Warn("roadmap created but labeling failed", "roadmap_id", rm.ID, "error", err)
		return RoadmapLabels{Roadmap: rm}, err
	}
	return out, nil
}

// Reclassify reruns the classifier on the stored roadmap text and replaces the AI labels
// of the given scope. Author labels are untouched.
func (u Usecases) Reclassify(ctx context.Context, roadmapID uuid.UUID, versionID *uuid.UUID) (RoadmapLabels, error) {
	if !u.configured() {
		return RoadmapLabels{}, apierr.New(http.StatusInternalServerError, "topics_not_configured", nil)
	}
	rm, err := u.deps.Roadmaps.GetByID(ctx, nil, roadmapID)
	if err != nil {
		return RoadmapLabels{}, apierr.New(http.StatusInternalServerError, "load_roadmap_failed", err)
	}
	if rm == nil {
		return RoadmapLabels{}, apierr.New(http.StatusNotFound, "roadmap_not_found", nil)
	}
	return u.labelRoadmap(ctx, rm, versionID)
}

func (u Usecases) labelRoadmap(ctx context.Context, rm *types.Roadmap, versionID *uuid.UUID) (RoadmapLabels, error) {
	snap, err := u.snapshot(ctx)
	if err != nil {
		return RoadmapLabels{}, apierr.New(http.StatusInternalServerError, "load_topics_failed", err)
	}
	res := u.classify(snap, classify.Input{
		Title:           rm.Title,
		Summary:         rm.Summary,
		MilestoneTopics: rm.MilestoneTopics(),
	})

	stored, err := u.deps.Aggregate.ReplaceAILabels(ctx, domainagg.ReplaceAILabelsInput{
		RoadmapID: rm.ID,
		VersionID: versionID,
		Labels:    AILabelsFromResult(res),
	})
	if err != nil {
		return RoadmapLabels{}, apierr.FromError(err, "store_labels_failed")
	}
	if len(stored.CreatedTopics) > 0 {
		u.invalidateCatalog(ctx, "ai_labels")
	}

	labels, err := u.GetLabels(ctx, rm.ID, versionID)
	if err != nil {
		return RoadmapLabels{}, err
	}
	return RoadmapLabels{Roadmap: rm, Classification: res, Labels: labels}, nil
}

type SetAuthorTopicsInput struct {
	UserID    uuid.UUID
	RoadmapID uuid.UUID
	TopicIDs  []uuid.UUID
	PrimaryID *uuid.UUID
}

// SetAuthorTopics replaces the author's topic selection for the current scope.
func (u Usecases) SetAuthorTopics(ctx context.Context, in SetAuthorTopicsInput) ([]Label, error) {
	if !u.configured() {
		return nil, apierr.New(http.StatusInternalServerError, "topics_not_configured", nil)
	}
	if err := u.checkOwner(ctx, in.UserID, in.RoadmapID); err != nil {
		return nil, err
	}
	if _, err := u.deps.Aggregate.ReplaceAuthorLabels(ctx, domainagg.ReplaceAuthorLabelsInput{
		RoadmapID: in.RoadmapID,
		TopicIDs:  in.TopicIDs,
		PrimaryID: in.PrimaryID,
	}); err != nil {
		return nil, apierr.FromError(err, "store_labels_failed")
	}
	return u.GetLabels(ctx, in.RoadmapID, nil)
}

// ClearAuthorTopics drops the author selection so the AI labels show again.
func (u Usecases) ClearAuthorTopics(ctx context.Context, userID, roadmapID uuid.UUID) ([]Label, error) {
	if !u.configured() {
		return nil, apierr.New(http.StatusInternalServerError, "topics_not_configured", nil)
	}
	if err := u.checkOwner(ctx, userID, roadmapID); err != nil {
		return nil, err
	}
	if _, err := u.deps.Aggregate.ClearAuthorLabels(ctx, roadmapID); err != nil {
		return nil, apierr.FromError(err, "clear_labels_failed")
	}
	return u.GetLabels(ctx, roadmapID, nil)
}

// DeleteRoadmap removes the roadmap with its labels and progress.
func (u Usecases) DeleteRoadmap(ctx context.Context, userID, roadmapID uuid.UUID) error {
	if !u.configured() {
		return apierr.New(http.StatusInternalServerError, "topics_not_configured", nil)
	}
	if err := u.checkOwner(ctx, userID, roadmapID); err != nil {
		return err
	}
	if err := u.deps.Aggregate.DeleteRoadmap(ctx, roadmapID); err != nil {
		return apierr.FromError(err, "delete_roadmap_failed")
	}
	return nil
}

// checkOwner rejects callers that do not own an existing roadmap. A missing roadmap is
// left to the store so its validation order applies.
func (u Usecases) checkOwner(ctx context.Context, userID, roadmapID uuid.UUID) error {
	if userID == uuid.Nil {
		return apierr.New(http.StatusUnauthorized, "unauthorized", nil)
	}
	rm, err := u.deps.Roadmaps.GetByID(ctx, nil, roadmapID)
	if err != nil {
		return apierr.New(http.StatusInternalServerError, "load_roadmap_failed", err)
	}
	if rm != nil && rm.UserID != userID {
		return apierr.New(http.StatusForbidden, "not_roadmap_owner", nil)
	}
	return nil
}

// GetLabels returns the displayed labels of one scope. Author rows, when present, hide
// the AI rows entirely. Order: primary, confidence desc, catalog order.
func (u Usecases) GetLabels(ctx context.Context, roadmapID uuid.UUID, versionID *uuid.UUID) ([]Label, error) {
	if !u.configured() {
		return nil, apierr.New(http.StatusInternalServerError, "topics_not_configured", nil)
	}
	rm, err := u.deps.Roadmaps.GetByID(ctx, nil, roadmapID)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "load_roadmap_failed", err)
	}
	if rm == nil {
		return nil, apierr.New(http.StatusNotFound, "roadmap_not_found", nil)
	}
	rows, err := u.deps.Labels.GetByScope(ctx, nil, roadmapID, types.ScopeKey(versionID))
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "load_labels_failed", err)
	}
	rows = EffectiveRows(rows)

	snap, err := u.snapshot(ctx)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "load_topics_failed", err)
	}
	byID, err := u.resolveTopics(ctx, snap, rows)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "load_topics_failed", err)
	}

	out := make([]Label, 0, len(rows))
	for _, r := range rows {
		tp := byID[r.TopicID]
		if tp == nil {
			u.deps.Log.Warn("label references unknown topic", "roadmap_id", roadmapID, "topic_id", r.TopicID)
			continue
		}
		out = append(out, Label{Topic: tp, IsPrimary: r.IsPrimary, Confidence: r.Confidence, Source: r.Source})
	}
	SortLabels(out, snap)
	return out, nil
}

// resolveTopics maps label topic ids through the catalog snapshot and falls back to the
// database for topics created after the snapshot was taken.
func (u Usecases) resolveTopics(ctx context.Context, snap *catalog.Snapshot, rows []*types.RoadmapTopic) (map[uuid.UUID]*types.Topic, error) {
	out := make(map[uuid.UUID]*types.Topic, len(rows))
	var missing []uuid.UUID
	for _, r := range rows {
		if tp := snap.ByID(r.TopicID); tp != nil {
			out[r.TopicID] = tp
		} else {
			missing = append(missing, r.TopicID)
		}
	}
	if len(missing) == 0 {
		return out, nil
	}
	extra, err := u.deps.Topics.GetByIDs(ctx, nil, missing)
	if err != nil {
		return nil, fmt.Errorf("load topics: %w", err)
	}
	for _, tp := range extra {
		out[tp.ID] = tp
	}
	return out, nil
}

// EffectiveRows applies source precedence within one scope: any author row hides every
// AI row.
func EffectiveRows(rows []*types.RoadmapTopic) []*types.RoadmapTopic {
	author := make([]*types.RoadmapTopic, 0, len(rows))
	ai := make([]*types.RoadmapTopic, 0, len(rows))
	for _, r := range rows {
		switch r.Source {
		case types.SourceAuthor:
			author = append(author, r)
		case types.SourceAI:
			ai = append(ai, r)
		}
	}
	if len(author) > 0 {
		return author
	}
	return ai
}

// SortLabels owns label display order: primary first, then confidence, then catalog
// order. Stored rows carry no order of their own.
func SortLabels(labels []Label, snap *catalog.Snapshot) {
	sort.SliceStable(labels, func(i, j int) bool {
		a, b := labels[i], labels[j]
		if a.IsPrimary != b.IsPrimary {
			return a.IsPrimary
		}
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		oa, ob := snap.Order(a.Topic.ID), snap.Order(b.Topic.ID)
		if oa != ob {
			return oa < ob
		}
		if a.Topic.Position != b.Topic.Position {
			return a.Topic.Position < b.Topic.Position
		}
		return a.Topic.Slug < b.Topic.Slug
	})
}
