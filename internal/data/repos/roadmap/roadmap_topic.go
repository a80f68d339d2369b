package roadmap

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/sayevvv/LearnUp-sub001/internal/domain"
	"github.com/sayevvv/LearnUp-sub001/internal/platform/logger"
)

// effectiveLabel keeps author rows, and AI rows only in scopes without author rows.
const effectiveLabel = `(rt.source = 'author' OR NOT EXISTS (
	SELECT 1 FROM roadmap_topic AS a
	WHERE a.roadmap_id = rt.roadmap_id AND a.scope_key = rt.scope_key AND a.source = 'author'))`

type TopicCount struct {
	TopicID      uuid.UUID
	RoadmapCount int64
}

type OverlapRow struct {
	RoadmapID uuid.UUID
	Overlap   int64
}

type RoadmapTopicRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.RoadmapTopic) ([]*types.RoadmapTopic, error)

	GetByScope(ctx context.Context, tx *gorm.DB, roadmapID uuid.UUID, scopeKey string) ([]*types.RoadmapTopic, error)
	GetEffectiveByRoadmapIDs(ctx context.Context, tx *gorm.DB, roadmapIDs []uuid.UUID) ([]*types.RoadmapTopic, error)
	CountRoadmapsByTopic(ctx context.Context, tx *gorm.DB, limit int) ([]TopicCount, error)
	ListOverlappingRoadmaps(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]OverlapRow, error)
	ListOverlappingAmong(ctx context.Context, tx *gorm.DB, userID uuid.UUID, candidateIDs []uuid.UUID, limit int) ([]OverlapRow, error)

	FullDeleteByScopeAndSource(ctx context.Context, tx *gorm.DB, roadmapID uuid.UUID, scopeKey string, source types.LabelSource) (int, error)
	FullDeleteByRoadmapIDs(ctx context.Context, tx *gorm.DB, roadmapIDs []uuid.UUID) error
}

type roadmapTopicRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRoadmapTopicRepo(db *gorm.DB, baseLog *logger.Logger) RoadmapTopicRepo {
	return &roadmapTopicRepo{db: db, log: baseLog.With("repo", "RoadmapTopicRepo")}
}

func (r *roadmapTopicRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.RoadmapTopic) ([]*types.RoadmapTopic, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.RoadmapTopic{}, nil
	}
	if err := t.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetByScope returns every row of a scope, both sources, in no particular order.
// Callers that display labels sort them with the catalog snapshot.
func (r *roadmapTopicRepo) GetByScope(ctx context.Context, tx *gorm.DB, roadmapID uuid.UUID, scopeKey string) ([]*types.RoadmapTopic, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.RoadmapTopic
	if roadmapID == uuid.Nil {
		return out, nil
	}
	if scopeKey == "" {
		scopeKey = types.CurrentScope
	}
	if err := t.WithContext(ctx).
		Where("roadmap_id = ? AND scope_key = ?", roadmapID, scopeKey).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// GetEffectiveByRoadmapIDs returns the current-scope rows that win the author-over-AI
// precedence for each roadmap.
func (r *roadmapTopicRepo) GetEffectiveByRoadmapIDs(ctx context.Context, tx *gorm.DB, roadmapIDs []uuid.UUID) ([]*types.RoadmapTopic, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.RoadmapTopic
	if len(roadmapIDs) == 0 {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Table("roadmap_topic AS rt").
		Select("rt.*").
		Where("rt.roadmap_id IN ? AND rt.scope_key = ?", roadmapIDs, types.CurrentScope).
		Where(effectiveLabel).
		Order("rt.roadmap_id ASC, rt.is_primary DESC, rt.confidence DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// CountRoadmapsByTopic ranks topics by the number of distinct live roadmaps carrying
// them as an effective current-scope label. Ties fall back to catalog order.
func (r *roadmapTopicRepo) CountRoadmapsByTopic(ctx context.Context, tx *gorm.DB, limit int) ([]TopicCount, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	out := []TopicCount{}
	if limit <= 0 {
		return out, nil
	}
	err := t.WithContext(ctx).
		Table("roadmap_topic AS rt").
		Select("rt.topic_id AS topic_id, COUNT(DISTINCT rt.roadmap_id) AS roadmap_count").
		Joins("JOIN topic AS tp ON tp.id = rt.topic_id").
		Joins("JOIN roadmap AS r ON r.id = rt.roadmap_id AND r.deleted_at IS NULL").
		Where("rt.scope_key = ?", types.CurrentScope).
		Where(effectiveLabel).
		Group("rt.topic_id, tp.position, tp.slug").
		Order("roadmap_count DESC, tp.position ASC, tp.slug ASC").
		Limit(limit).
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListOverlappingRoadmaps is the two-hop lookup behind "for you": topics of the
// user's roadmaps, then published roadmaps of other owners sharing any of them.
func (r *roadmapTopicRepo) ListOverlappingRoadmaps(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]OverlapRow, error) {
	return r.overlapping(ctx, tx, userID, nil, limit)
}

// ListOverlappingAmong runs the same lookup restricted to candidateIDs, so candidates
// found elsewhere are re-counted against SQL. Candidates sharing no topic are dropped.
func (r *roadmapTopicRepo) ListOverlappingAmong(ctx context.Context, tx *gorm.DB, userID uuid.UUID, candidateIDs []uuid.UUID, limit int) ([]OverlapRow, error) {
	if len(candidateIDs) == 0 {
		return []OverlapRow{}, nil
	}
	return r.overlapping(ctx, tx, userID, candidateIDs, limit)
}

func (r *roadmapTopicRepo) overlapping(ctx context.Context, tx *gorm.DB, userID uuid.UUID, only []uuid.UUID, limit int) ([]OverlapRow, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	out := []OverlapRow{}
	if userID == uuid.Nil || limit <= 0 {
		return out, nil
	}
	db := t.WithContext(ctx)
	userTopics := db.
		Table("roadmap_topic AS rt").
		Select("rt.topic_id").
		Joins("JOIN roadmap AS ur ON ur.id = rt.roadmap_id AND ur.deleted_at IS NULL").
		Where("ur.user_id = ? AND rt.scope_key = ?", userID, types.CurrentScope).
		Where(effectiveLabel)

	q := db.
		Table("roadmap_topic AS rt").
		Select("rt.roadmap_id AS roadmap_id, COUNT(DISTINCT rt.topic_id) AS overlap").
		Joins("JOIN roadmap AS r ON r.id = rt.roadmap_id AND r.deleted_at IS NULL").
		Where("rt.topic_id IN (?)", userTopics).
		Where("rt.scope_key = ?", types.CurrentScope).
		Where(effectiveLabel).
		Where("r.user_id <> ? AND r.published = ?", userID, true)
	if only != nil {
		q = q.Where("rt.roadmap_id IN ?", only)
	}
	err := q.
		Group("rt.roadmap_id, r.created_at").
		Order("overlap DESC, r.created_at DESC, rt.roadmap_id ASC").
		Limit(limit).
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *roadmapTopicRepo) FullDeleteByScopeAndSource(ctx context.Context, tx *gorm.DB, roadmapID uuid.UUID, scopeKey string, source types.LabelSource) (int, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if roadmapID == uuid.Nil || !source.Valid() {
		return 0, nil
	}
	if scopeKey == "" {
		scopeKey = types.CurrentScope
	}
	res := t.WithContext(ctx).
		Where("roadmap_id = ? AND scope_key = ? AND source = ?", roadmapID, scopeKey, source).
		Delete(&types.RoadmapTopic{})
	if res.Error != nil {
		return 0, res.Error
	}
	return int(res.RowsAffected), nil
}

func (r *roadmapTopicRepo) FullDeleteByRoadmapIDs(ctx context.Context, tx *gorm.DB, roadmapIDs []uuid.UUID) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(roadmapIDs) == 0 {
		return nil
	}
	return t.WithContext(ctx).Where("roadmap_id IN ?", roadmapIDs).Delete(&types.RoadmapTopic{}).Error
}
