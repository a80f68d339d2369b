package roadmap

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/sayevvv/LearnUp-sub001/internal/domain"
	"github.com/sayevvv/LearnUp-sub001/internal/platform/logger"
)

// InProgressRow is a user's roadmap with a partially completed progress record.
type InProgressRow struct {
	RoadmapID         uuid.UUID
	Percent           float64
	ProgressUpdatedAt time.Time
}

// RoadmapProgressRepo only reads progress; records are written by the learning
// service that owns them. FullDeleteByRoadmapIDs exists for roadmap deletion.
type RoadmapProgressRepo interface {
	ListInProgressByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]InProgressRow, error)

	FullDeleteByRoadmapIDs(ctx context.Context, tx *gorm.DB, roadmapIDs []uuid.UUID) error
}

type roadmapProgressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRoadmapProgressRepo(db *gorm.DB, baseLog *logger.Logger) RoadmapProgressRepo {
	return &roadmapProgressRepo{db: db, log: baseLog.With("repo", "RoadmapProgressRepo")}
}

// ListInProgressByUserID returns roadmaps owned by userID with 0 < percent < 100,
// most recently updated progress first.
func (r *roadmapProgressRepo) ListInProgressByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]InProgressRow, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	out := []InProgressRow{}
	if userID == uuid.Nil || limit <= 0 {
		return out, nil
	}
	err := t.WithContext(ctx).
		Table("roadmap_progress AS p").
		Select("p.roadmap_id AS roadmap_id, p.percent AS percent, p.updated_at AS progress_updated_at").
		Joins("JOIN roadmap AS r ON r.id = p.roadmap_id AND r.deleted_at IS NULL").
		Where("r.user_id = ? AND p.percent > 0 AND p.percent < 100", userID).
		Order("p.updated_at DESC, p.roadmap_id ASC").
		Limit(limit).
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *roadmapProgressRepo) FullDeleteByRoadmapIDs(ctx context.Context, tx *gorm.DB, roadmapIDs []uuid.UUID) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(roadmapIDs) == 0 {
		return nil
	}
	return t.WithContext(ctx).Where("roadmap_id IN ?", roadmapIDs).Delete(&types.RoadmapProgress{}).Error
}
