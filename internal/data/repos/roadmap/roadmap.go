package roadmap

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/sayevvv/LearnUp-sub001/internal/domain"
	"github.com/sayevvv/LearnUp-sub001/internal/platform/logger"
)

type RoadmapRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.Roadmap) ([]*types.Roadmap, error)

	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Roadmap, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Roadmap, error)
	LockByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Roadmap, error)
	ListPublishedRecent(ctx context.Context, tx *gorm.DB, limit int) ([]*types.Roadmap, error)

	FullDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
}

type roadmapRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRoadmapRepo(db *gorm.DB, baseLog *logger.Logger) RoadmapRepo {
	return &roadmapRepo{db: db, log: baseLog.With("repo", "RoadmapRepo")}
}

func (r *roadmapRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Roadmap) ([]*types.Roadmap, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Roadmap{}, nil
	}
	if err := t.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *roadmapRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Roadmap, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	rows, err := r.GetByIDs(ctx, tx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *roadmapRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Roadmap, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Roadmap
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// LockByID reads the roadmap with a row lock held until tx ends. SQLite has no row
// locks; its single writer already serializes the transaction.
func (r *roadmapRepo) LockByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Roadmap, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.Roadmap
	if err := t.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *roadmapRepo) ListPublishedRecent(ctx context.Context, tx *gorm.DB, limit int) ([]*types.Roadmap, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Roadmap
	if limit <= 0 {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("published = ?", true).
		Order("created_at DESC, id ASC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *roadmapRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	return t.WithContext(ctx).Unscoped().Where("id IN ?", ids).Delete(&types.Roadmap{}).Error
}
