package app

import (
	"gorm.io/gorm"

	apphttp "github.com/sayevvv/LearnUp-sub001/internal/http"
	httpH "github.com/sayevvv/LearnUp-sub001/internal/http/handlers"
	"github.com/sayevvv/LearnUp-sub001/internal/observability"
	"github.com/sayevvv/LearnUp-sub001/internal/platform/logger"
)

type Handlers struct {
	Health    *httpH.HealthHandler
	Topic     *httpH.TopicHandler
	Roadmap   *httpH.RoadmapHandler
	Dashboard *httpH.DashboardHandler
}

func wireHandlers(db *gorm.DB, log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:    httpH.NewHealthHandler(db),
		Topic:     httpH.NewTopicHandler(log, services.Topics, services.Feeds),
		Roadmap:   httpH.NewRoadmapHandler(log, services.Topics),
		Dashboard: httpH.NewDashboardHandler(log, services.Feeds),
	}
}

func wireServer(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers) *apphttp.Server {
	return apphttp.NewServer(apphttp.RouterConfig{
		Log:              log,
		Metrics:          metrics,
		ServiceName:      cfg.ServiceName,
		CORSOrigins:      cfg.CORSOrigins,
		TopicHandler:     handlers.Topic,
		RoadmapHandler:   handlers.Roadmap,
		DashboardHandler: handlers.Dashboard,
		HealthHandler:    handlers.Health,
	})
}
