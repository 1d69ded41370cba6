package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/edutrackpro/edutrack/internal/domain/alert"
	"github.com/gin-gonic/gin"
)

type AlertStore interface {
	List(ctx context.Context) ([]alert.Alert, error)
	GetByID(ctx context.Context, id int64) (alert.Alert, error)
	ListByStatus(ctx context.Context, status string) ([]alert.Alert, error)
	Create(ctx context.Context, req alert.CreateAlertRequest) (alert.Alert, error)
	Update(ctx context.Context, id int64, req alert.UpdateAlertRequest) (alert.Alert, error)
	Delete(ctx context.Context, id int64) error
}

type AlertsHandler struct {
	repo AlertStore
}

func NewAlertsHandler(repo AlertStore) *AlertsHandler {
	return &AlertsHandler{repo: repo}
}

func (h *AlertsHandler) List(ctx *gin.Context) {
	alerts, err := h.repo.List(ctx.Request.Context())

	if err != nil {
		RespondInternal(ctx, "Could not list alerts")
		return
	}

	if alerts == nil {
		alerts = []alert.Alert{}
	}

	ctx.JSON(http.StatusOK, alerts)
}

func (h *AlertsHandler) Get(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")

	if !ok {
		return
	}

	a, err := h.repo.GetByID(ctx.Request.Context(), id)

	if err != nil {
		if errors.Is(err, alert.ErrNotFound) {
			RespondNotFound(ctx, "Alert not found")
			return
		}

		RespondInternal(ctx, "Could not fetch alert")
		return
	}

	ctx.JSON(http.StatusOK, a)
}

func (h *AlertsHandler) ListByStatus(ctx *gin.Context) {
	status := ctx.Param("status")

	if status != string(alert.StatusActive) && status != string(alert.StatusPending) && status != string(alert.StatusResolved) {
		RespondBadRequest(ctx, "Status must be one of: active, pending, resolved", nil)
		return
	}

	alerts, err := h.repo.ListByStatus(ctx.Request.Context(), status)

	if err != nil {
		RespondInternal(ctx, "Could not fetch alerts")
		return
	}

	if alerts == nil {
		alerts = []alert.Alert{}
	}

	ctx.JSON(http.StatusOK, alerts)
}

func (h *AlertsHandler) Create(ctx *gin.Context) {
	var req alert.CreateAlertRequest

	if !BindJSON(ctx, &req) {
		return
	}

	a, err := h.repo.Create(ctx.Request.Context(), req)

	if err != nil {
		RespondInternal(ctx, "Could not create alert")
		return
	}

	ctx.JSON(http.StatusCreated, a)
}

func (h *AlertsHandler) Update(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")

	if !ok {
		return
	}

	var req alert.UpdateAlertRequest

	if !BindJSON(ctx, &req) {
		return
	}

	a, err := h.repo.Update(ctx.Request.Context(), id, req)

	if err != nil {
		if errors.Is(err, alert.ErrNotFound) {
			RespondNotFound(ctx, "Alert not found")
			return
		}

		RespondInternal(ctx, "Could not update alert")
		return
	}

	ctx.JSON(http.StatusOK, a)
}

func (h *AlertsHandler) Delete(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")

	if !ok {
		return
	}

	err := h.repo.Delete(ctx.Request.Context(), id)

	if err != nil {
		if errors.Is(err, alert.ErrNotFound) {
			RespondNotFound(ctx, "Alert not found")
			return
		}

		RespondInternal(ctx, "Could not delete alert")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Alert deleted successfully"})
}
