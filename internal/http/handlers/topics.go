package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/sayevvv/LearnUp-sub001/internal/domain"
	"github.com/sayevvv/LearnUp-sub001/internal/http/response"
	"github.com/sayevvv/LearnUp-sub001/internal/modules/recommend"
	"github.com/sayevvv/LearnUp-sub001/internal/modules/topics"
	"github.com/sayevvv/LearnUp-sub001/internal/modules/topics/classify"
	"github.com/sayevvv/LearnUp-sub001/internal/platform/logger"
)

type TopicsService interface {
	ListTopics(ctx context.Context) ([]*types.Topic, error)
	EnsureTopics(ctx context.Context, slugs []string) ([]string, error)
	Classify(ctx context.Context, in classify.Input) (classify.Result, error)

	CreateRoadmap(ctx context.Context, in topics.CreateRoadmapInput) (topics.RoadmapLabels, error)
	Reclassify(ctx context.Context, roadmapID uuid.UUID, versionID *uuid.UUID) (topics.RoadmapLabels, error)
	GetLabels(ctx context.Context, roadmapID uuid.UUID, versionID *uuid.UUID) ([]topics.Label, error)
	SetAuthorTopics(ctx context.Context, in topics.SetAuthorTopicsInput) ([]topics.Label, error)
	ClearAuthorTopics(ctx context.Context, userID, roadmapID uuid.UUID) ([]topics.Label, error)
	DeleteRoadmap(ctx context.Context, userID, roadmapID uuid.UUID) error
}

type FeedsService interface {
	TrendingTopics(ctx context.Context) ([]recommend.TopicTrend, error)
	Dashboard(ctx context.Context, userID uuid.UUID) (recommend.Dashboard, error)
}

type TopicHandler struct {
	log    *logger.Logger
	topics TopicsService
	feeds  FeedsService
}

func NewTopicHandler(log *logger.Logger, topics TopicsService, feeds FeedsService) *TopicHandler {
	return &TopicHandler{log: log.With("handler", "TopicHandler"), topics: topics, feeds: feeds}
}

// GET /api/topics
func (h *TopicHandler) ListTopics(c *gin.Context) {
	out, err := h.topics.ListTopics(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err, "load_topics_failed")
		return
	}
	response.RespondOK(c, gin.H{"topics": out})
}

// GET /api/topics/trending
func (h *TopicHandler) Trending(c *gin.Context) {
	out, err := h.feeds.TrendingTopics(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err, "load_trending_failed")
		return
	}
	response.RespondOK(c, gin.H{"topics": out})
}

type ensureTopicsRequest struct {
	Slugs []string `json:"slugs" binding:"required,min=1,max=50,dive,topicslug"`
}

// POST /api/topics
func (h *TopicHandler) EnsureTopics(c *gin.Context) {
	var req ensureTopicsRequest
	if !bindJSON(c, &req) {
		return
	}
	created, err := h.topics.EnsureTopics(c.Request.Context(), req.Slugs)
	if err != nil {
		response.RespondAPIError(c, err, "ensure_topics_failed")
		return
	}
	if created == nil {
		created = []string{}
	}
	response.RespondOK(c, gin.H{"created": created})
}

type classifyRequest struct {
	Title           string   `json:"title" binding:"max=300"`
	Summary         string   `json:"summary" binding:"max=5000"`
	MilestoneTopics []string `json:"milestone_topics" binding:"max=100,dive,max=200"`
}

// POST /api/topics/classify
func (h *TopicHandler) Classify(c *gin.Context) {
	var req classifyRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.topics.Classify(c.Request.Context(), classify.Input{
		Title:           req.Title,
		Summary:         req.Summary,
		MilestoneTopics: req.MilestoneTopics,
	})
	if err != nil {
		response.RespondAPIError(c, err, "classify_failed")
		return
	}
	if res.Secondary == nil {
		res.Secondary = []string{}
	}
	response.RespondOK(c, res)
}
