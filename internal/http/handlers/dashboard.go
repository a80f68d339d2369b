package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/sayevvv/LearnUp-sub001/internal/http/response"
	"github.com/sayevvv/LearnUp-sub001/internal/platform/ctxutil"
	"github.com/sayevvv/LearnUp-sub001/internal/platform/logger"
)

type DashboardHandler struct {
	log   *logger.Logger
	feeds FeedsService
}

func NewDashboardHandler(log *logger.Logger, feeds FeedsService) *DashboardHandler {
	return &DashboardHandler{log: log.With("handler", "DashboardHandler"), feeds: feeds}
}

// GET /api/dashboard
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	out, err := h.feeds.Dashboard(c.Request.Context(), ctxutil.UserID(c.Request.Context()))
	if err != nil {
		response.RespondAPIError(c, err, "load_dashboard_failed")
		return
	}
	response.RespondOK(c, out)
}
