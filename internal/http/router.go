package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/sayevvv/LearnUp-sub001/internal/http/handlers"
	httpMW "github.com/sayevvv/LearnUp-sub001/internal/http/middleware"
	"github.com/sayevvv/LearnUp-sub001/internal/observability"
	"github.com/sayevvv/LearnUp-sub001/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	CORSOrigins []string

	TopicHandler     *httpH.TopicHandler
	RoadmapHandler   *httpH.RoadmapHandler
	DashboardHandler *httpH.DashboardHandler
	HealthHandler    *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.AttachRequestContext())
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	{
		// Topics
		if cfg.TopicHandler != nil {
			api.GET("/topics", cfg.TopicHandler.ListTopics)
			api.POST("/topics", cfg.TopicHandler.EnsureTopics)
			api.GET("/topics/trending", cfg.TopicHandler.Trending)
			api.POST("/topics/classify", cfg.TopicHandler.Classify)
		}

		// Roadmaps
		if cfg.RoadmapHandler != nil {
			api.POST("/roadmaps", cfg.RoadmapHandler.CreateRoadmap)
			api.DELETE("/roadmaps/:id", cfg.RoadmapHandler.DeleteRoadmap)
			api.POST("/roadmaps/:id/reclassify", cfg.RoadmapHandler.Reclassify)
			api.GET("/roadmaps/:id/topics", cfg.RoadmapHandler.GetTopics)
			api.PUT("/roadmaps/:id/topics", cfg.RoadmapHandler.SetTopics)
			api.DELETE("/roadmaps/:id/topics", cfg.RoadmapHandler.ClearTopics)
		}

		// Dashboard
		if cfg.DashboardHandler != nil {
			api.GET("/dashboard", cfg.DashboardHandler.GetDashboard)
		}
	}

	return r
}
