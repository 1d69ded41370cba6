package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/edutrackpro/edutrack/internal/analytics"
	"github.com/gin-gonic/gin"
)

// ParentAnalytics is the engine surface the parent routes consume.
type ParentAnalytics interface {
	Dashboard(ctx context.Context, parentID int64) (analytics.DashboardPayload, error)
	ChildReport(ctx context.Context, parentID, childID int64) (analytics.ReportPayload, error)
	DetailedAnalysis(ctx context.Context, parentID, childID int64) (analytics.AnalysisPayload, error)
}

type ParentsHandler struct {
	engine ParentAnalytics
	log    *slog.Logger
}

func NewParentsHandler(engine ParentAnalytics, log *slog.Logger) *ParentsHandler {
	return &ParentsHandler{
		engine: engine,
		log:    log,
	}
}

func pathID(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)

	if err != nil || id <= 0 {
		RespondBadRequest(ctx, "Invalid "+name, nil)
		return 0, false
	}

	return id, true
}

func (h *ParentsHandler) Dashboard(ctx *gin.Context) {
	parentID, ok := pathID(ctx, "parentId")

	if !ok {
		return
	}

	payload, err := h.engine.Dashboard(ctx.Request.Context(), parentID)

	if err != nil {
		h.respondEngineError(ctx, err, "dashboard")
		return
	}

	ctx.JSON(http.StatusOK, payload)
}

func (h *ParentsHandler) ChildReport(ctx *gin.Context) {
	parentID, childID, ok := h.childScope(ctx)

	if !ok {
		return
	}

	payload, err := h.engine.ChildReport(ctx.Request.Context(), parentID, childID)

	if err != nil {
		h.respondEngineError(ctx, err, "report")
		return
	}

	ctx.JSON(http.StatusOK, payload)
}

func (h *ParentsHandler) DetailedAnalysis(ctx *gin.Context) {
	parentID, childID, ok := h.childScope(ctx)

	if !ok {
		return
	}

	payload, err := h.engine.DetailedAnalysis(ctx.Request.Context(), parentID, childID)

	if err != nil {
		h.respondEngineError(ctx, err, "analysis")
		return
	}

	ctx.JSON(http.StatusOK, payload)
}

// ExportReport streams the child report as delimited text. The export is a
// pure transformation of the same payload the report endpoint serves.
func (h *ParentsHandler) ExportReport(ctx *gin.Context) {
	parentID, childID, ok := h.childScope(ctx)

	if !ok {
		return
	}

	payload, err := h.engine.ChildReport(ctx.Request.Context(), parentID, childID)

	if err != nil {
		h.respondEngineError(ctx, err, "export")
		return
	}

	filename := fmt.Sprintf("report_%d_%d.csv", childID, time.Now().Unix())

	ctx.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	ctx.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(analytics.ExportCSV(payload)))
}

func (h *ParentsHandler) childScope(ctx *gin.Context) (parentID, childID int64, ok bool) {
	parentID, ok = pathID(ctx, "parentId")

	if !ok {
		return
	}

	childID, ok = pathID(ctx, "childId")

	return
}

func (h *ParentsHandler) respondEngineError(ctx *gin.Context, err error, op string) {
	if errors.Is(err, analytics.ErrChildNotFound) {
		RespondNotFound(ctx, "No child found for this parent")
		return
	}

	if h.log != nil {
		h.log.ErrorContext(ctx.Request.Context(), "parent analytics failed", "op", op, "err", err)
	}

	RespondInternal(ctx, "Could not build "+op)
}
