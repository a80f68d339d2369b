package catalog

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/sayevvv/LearnUp-sub001/internal/domain"
	"github.com/sayevvv/LearnUp-sub001/internal/platform/logger"
)

type TopicRepo interface {
	CreateIgnoreDuplicates(ctx context.Context, tx *gorm.DB, rows []*types.Topic) (int, error)

	List(ctx context.Context, tx *gorm.DB) ([]*types.Topic, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Topic, error)
	GetBySlugs(ctx context.Context, tx *gorm.DB, slugs []string) ([]*types.Topic, error)
	MaxPosition(ctx context.Context, tx *gorm.DB) (int, error)
}

type topicRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTopicRepo(db *gorm.DB, baseLog *logger.Logger) TopicRepo {
	return &topicRepo{db: db, log: baseLog.With("repo", "TopicRepo")}
}

// CreateIgnoreDuplicates inserts rows whose slug is not yet present and never touches
// existing rows. It returns the number of rows inserted.
func (r *topicRepo) CreateIgnoreDuplicates(ctx context.Context, tx *gorm.DB, rows []*types.Topic) (int, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return 0, nil
	}
	for _, row := range rows {
		row.Slug = NormalizeSlug(row.Slug)
	}
	res := t.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoNothing: true,
		}).
		Create(&rows)
	if res.Error != nil {
		return 0, res.Error
	}
	return int(res.RowsAffected), nil
}

func (r *topicRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Topic, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Topic
	if err := t.WithContext(ctx).
		Order("position ASC, slug ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *topicRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Topic, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Topic
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("id IN ?", ids).
		Order("position ASC, slug ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *topicRepo) GetBySlugs(ctx context.Context, tx *gorm.DB, slugs []string) ([]*types.Topic, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Topic
	norm := make([]string, 0, len(slugs))
	for _, s := range slugs {
		if s = NormalizeSlug(s); s != "" {
			norm = append(norm, s)
		}
	}
	if len(norm) == 0 {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("slug IN ?", norm).
		Order("position ASC, slug ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *topicRepo) MaxPosition(ctx context.Context, tx *gorm.DB) (int, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var max sql.NullInt64
	if err := t.WithContext(ctx).
		Model(&types.Topic{}).
		Select("MAX(position)").
		Row().
		Scan(&max); err != nil {
		return 0, err
	}
	if !max.Valid {
		return -1, nil
	}
	return int(max.Int64), nil
}

// NormalizeSlug lower-cases and trims a slug; slugs are stored in this form.
func NormalizeSlug(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
