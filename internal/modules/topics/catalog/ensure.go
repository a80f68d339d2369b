package catalog

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/sayevvv/LearnUp-sub001/internal/data/aggregates"
	"github.com/sayevvv/LearnUp-sub001/internal/data/repos"
	types "github.com/sayevvv/LearnUp-sub001/internal/domain"
)

// EnsureSeeds inserts seeded topics that are missing, keeping seed order as catalog
// position. Existing rows are never modified. Returns the number of rows created.
func EnsureSeeds(ctx context.Context, tx *gorm.DB, topics repos.TopicRepo, seeds []Seed) (int, error) {
	if len(seeds) == 0 {
		return 0, nil
	}
	rows := make([]*types.Topic, 0, len(seeds))
	for i, s := range seeds {
		rows = append(rows, &types.Topic{
			Slug:     s.Slug,
			Name:     s.Name,
			Aliases:  types.EncodeTopicAliases(s.Aliases),
			Position: i,
		})
	}
	return topics.CreateIgnoreDuplicates(ctx, tx, rows)
}

// EnsureTopics creates bare entries for unknown slugs after the current last position.
// Calling it again with the same slugs creates nothing.
func EnsureTopics(ctx context.Context, tx *gorm.DB, topics repos.TopicRepo, slugs []string) ([]string, error) {
	want := make([]string, 0, len(slugs))
	seen := map[string]bool{}
	for _, s := range slugs {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		want = append(want, s)
	}
	if len(want) == 0 {
		return nil, nil
	}
	existing, err := topics.GetBySlugs(ctx, tx, want)
	if err != nil {
		return nil, err
	}
	have := make(map[string]bool, len(existing))
	for _, t := range existing {
		have[t.Slug] = true
	}
	var missing []string
	for _, s := range want {
		if !have[s] {
			missing = append(missing, s)
		}
	}
	if len(missing) == 0 {
		return nil, nil
	}
	pos, err := topics.MaxPosition(ctx, tx)
	if err != nil {
		return nil, err
	}
	rows := make([]*types.Topic, 0, len(missing))
	for i, s := range missing {
		rows = append(rows, &types.Topic{
			Slug:     s,
			Name:     aggregates.TopicNameFromSlug(s),
			Aliases:  types.EncodeTopicAliases(nil),
			Position: pos + 1 + i,
		})
	}
	if _, err := topics.CreateIgnoreDuplicates(ctx, tx, rows); err != nil {
		return nil, err
	}
	return missing, nil
}
