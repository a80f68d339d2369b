package repos

import (
	"gorm.io/gorm"

	"github.com/sayevvv/LearnUp-sub001/internal/data/repos/catalog"
	"github.com/sayevvv/LearnUp-sub001/internal/data/repos/roadmap"
	"github.com/sayevvv/LearnUp-sub001/internal/platform/logger"
)

type TopicRepo = catalog.TopicRepo

type RoadmapRepo = roadmap.RoadmapRepo
type RoadmapProgressRepo = roadmap.RoadmapProgressRepo
type RoadmapTopicRepo = roadmap.RoadmapTopicRepo

type TopicCount = roadmap.TopicCount
type OverlapRow = roadmap.OverlapRow
type InProgressRow = roadmap.InProgressRow

func NewTopicRepo(db *gorm.DB, baseLog *logger.Logger) TopicRepo {
	return catalog.NewTopicRepo(db, baseLog)
}

func NewRoadmapRepo(db *gorm.DB, baseLog *logger.Logger) RoadmapRepo {
	return roadmap.NewRoadmapRepo(db, baseLog)
}
func NewRoadmapProgressRepo(db *gorm.DB, baseLog *logger.Logger) RoadmapProgressRepo {
	return roadmap.NewRoadmapProgressRepo(db, baseLog)
}
func NewRoadmapTopicRepo(db *gorm.DB, baseLog *logger.Logger) RoadmapTopicRepo {
	return roadmap.NewRoadmapTopicRepo(db, baseLog)
}
