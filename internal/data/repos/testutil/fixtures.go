package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/sayevvv/LearnUp-sub001/internal/domain"
)

// SeedTopics inserts topics in the given catalog order and returns them by slug.
func SeedTopics(tb testing.TB, ctx context.Context, tx *gorm.DB, slugs ...string) map[string]*types.Topic {
	tb.Helper()
	out := make(map[string]*types.Topic, len(slugs))
	for i, slug := range slugs {
		tp := &types.Topic{
			ID:       uuid.New(),
			Slug:     slug,
			Name:     slug,
			Aliases:  types.EncodeTopicAliases(nil),
			Position: i,
		}
		if err := tx.WithContext(ctx).Create(tp).Error; err != nil {
			tb.Fatalf("seed topic %q: %v", slug, err)
		}
		out[slug] = tp
	}
	return out
}

type RoadmapOpts struct {
	Title     string
	Summary   string
	Published bool
	CreatedAt time.Time
}

func SeedRoadmap(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, opts *RoadmapOpts) *types.Roadmap {
	tb.Helper()
	if opts == nil {
		opts = &RoadmapOpts{}
	}
	title := opts.Title
	if title == "" {
		title = "roadmap " + uuid.NewString()[:8]
	}
	rm := &types.Roadmap{
		ID:         uuid.New(),
		UserID:     userID,
		Title:      title,
		Summary:    opts.Summary,
		Milestones: types.EncodeMilestones(nil),
		Published:  opts.Published,
		CreatedAt:  opts.CreatedAt,
	}
	if err := tx.WithContext(ctx).Create(rm).Error; err != nil {
		tb.Fatalf("seed roadmap: %v", err)
	}
	return rm
}

func SeedProgress(tb testing.TB, ctx context.Context, tx *gorm.DB, rm *types.Roadmap, percent float64, updatedAt time.Time) *types.RoadmapProgress {
	tb.Helper()
	p := &types.RoadmapProgress{
		ID:        uuid.New(),
		RoadmapID: rm.ID,
		UserID:    rm.UserID,
		Percent:   percent,
		UpdatedAt: updatedAt,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed progress: %v", err)
	}
	return p
}

func SeedLabel(tb testing.TB, ctx context.Context, tx *gorm.DB, rm *types.Roadmap, topic *types.Topic, source types.LabelSource, primary bool, confidence float64) *types.RoadmapTopic {
	tb.Helper()
	row := &types.RoadmapTopic{
		ID:         uuid.New(),
		RoadmapID:  rm.ID,
		ScopeKey:   types.CurrentScope,
		TopicID:    topic.ID,
		Source:     source,
		Confidence: confidence,
		IsPrimary:  primary,
	}
	if err := tx.WithContext(ctx).Create(row).Error; err != nil {
		tb.Fatalf("seed label: %v", err)
	}
	return row
}
