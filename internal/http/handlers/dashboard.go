package handlers

import (
	"context"
	"net/http"

	"github.com/edutrackpro/edutrack/internal/repo/postgres"
	"github.com/gin-gonic/gin"
)

type StatsCollector interface {
	Collect(ctx context.Context) (postgres.Stats, error)
}

// DashboardHandler serves the staff landing page numbers: entity counts and
// the school-wide average score.
type DashboardHandler struct {
	stats StatsCollector
}

func NewDashboardHandler(stats StatsCollector) *DashboardHandler {
	return &DashboardHandler{stats: stats}
}

func (h *DashboardHandler) Stats(ctx *gin.Context) {
	s, err := h.stats.Collect(ctx.Request.Context())

	if err != nil {
		RespondInternal(ctx, "Could not collect dashboard stats")
		return
	}

	ctx.JSON(http.StatusOK, s)
}
