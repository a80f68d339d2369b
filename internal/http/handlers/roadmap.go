package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sayevvv/LearnUp-sub001/internal/http/response"
	"github.com/sayevvv/LearnUp-sub001/internal/modules/topics"
	"github.com/sayevvv/LearnUp-sub001/internal/platform/ctxutil"
	"github.com/sayevvv/LearnUp-sub001/internal/platform/logger"
)

type RoadmapHandler struct {
	log    *logger.Logger
	topics TopicsService
}

func NewRoadmapHandler(log *logger.Logger, topics TopicsService) *RoadmapHandler {
	return &RoadmapHandler{log: log.With("handler", "RoadmapHandler"), topics: topics}
}

type createRoadmapRequest struct {
	Title      string   `json:"title" binding:"required,max=300"`
	Summary    string   `json:"summary" binding:"max=5000"`
	Milestones []string `json:"milestones" binding:"max=100,dive,max=200"`
	Published  bool     `json:"published"`
}

// POST /api/roadmaps
func (h *RoadmapHandler) CreateRoadmap(c *gin.Context) {
	var req createRoadmapRequest
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.topics.CreateRoadmap(c.Request.Context(), topics.CreateRoadmapInput{
		UserID:     ctxutil.UserID(c.Request.Context()),
		Title:      req.Title,
		Summary:    req.Summary,
		Milestones: req.Milestones,
		Published:  req.Published,
	})
	if err != nil {
		response.RespondAPIError(c, err, "create_roadmap_failed")
		return
	}
	response.RespondCreated(c, out)
}

// POST /api/roadmaps/:id/reclassify?version_id=
func (h *RoadmapHandler) Reclassify(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	versionID, ok := versionQuery(c)
	if !ok {
		return
	}
	out, err := h.topics.Reclassify(c.Request.Context(), id, versionID)
	if err != nil {
		response.RespondAPIError(c, err, "reclassify_failed")
		return
	}
	response.RespondOK(c, out)
}

// GET /api/roadmaps/:id/topics?version_id=
func (h *RoadmapHandler) GetTopics(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	versionID, ok := versionQuery(c)
	if !ok {
		return
	}
	labels, err := h.topics.GetLabels(c.Request.Context(), id, versionID)
	if err != nil {
		response.RespondAPIError(c, err, "load_labels_failed")
		return
	}
	response.RespondOK(c, gin.H{"labels": labels})
}

type setTopicsRequest struct {
	TopicIDs  []string `json:"topic_ids" binding:"max=50,dive,uuid"`
	PrimaryID *string  `json:"primary_id" binding:"omitempty,uuid"`
}

// PUT /api/roadmaps/:id/topics
func (h *RoadmapHandler) SetTopics(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req setTopicsRequest
	if !bindJSON(c, &req) {
		return
	}
	in := topics.SetAuthorTopicsInput{
		UserID:    ctxutil.UserID(c.Request.Context()),
		RoadmapID: id,
		TopicIDs:  make([]uuid.UUID, 0, len(req.TopicIDs)),
	}
	for _, raw := range req.TopicIDs {
		tid, err := uuid.Parse(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
			return
		}
		in.TopicIDs = append(in.TopicIDs, tid)
	}
	if req.PrimaryID != nil {
		pid, err := uuid.Parse(*req.PrimaryID)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
			return
		}
		in.PrimaryID = &pid
	}
	labels, err := h.topics.SetAuthorTopics(c.Request.Context(), in)
	if err != nil {
		response.RespondAPIError(c, err, "store_labels_failed")
		return
	}
	response.RespondOK(c, gin.H{"labels": labels})
}

// DELETE /api/roadmaps/:id/topics
func (h *RoadmapHandler) ClearTopics(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	labels, err := h.topics.ClearAuthorTopics(c.Request.Context(), ctxutil.UserID(c.Request.Context()), id)
	if err != nil {
		response.RespondAPIError(c, err, "clear_labels_failed")
		return
	}
	response.RespondOK(c, gin.H{"labels": labels})
}

// DELETE /api/roadmaps/:id
func (h *RoadmapHandler) DeleteRoadmap(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.topics.DeleteRoadmap(c.Request.Context(), ctxutil.UserID(c.Request.Context()), id); err != nil {
		response.RespondAPIError(c, err, "delete_roadmap_failed")
		return
	}
	c.Status(http.StatusNoContent)
}
