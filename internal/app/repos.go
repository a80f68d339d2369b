package app

import (
	"gorm.io/gorm"

	"github.com/sayevvv/LearnUp-sub001/internal/data/repos"
	"github.com/sayevvv/LearnUp-sub001/internal/platform/logger"
)

type Repos struct {
	Topic        repos.TopicRepo
	Roadmap      repos.RoadmapRepo
	Progress     repos.RoadmapProgressRepo
	RoadmapTopic repos.RoadmapTopicRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Topic:        repos.NewTopicRepo(db, log),
		Roadmap:      repos.NewRoadmapRepo(db, log),
		Progress:     repos.NewRoadmapProgressRepo(db, log),
		RoadmapTopic: repos.NewRoadmapTopicRepo(db, log),
	}
}
