package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/edutrackpro/edutrack/internal/domain/performance"
	"github.com/gin-gonic/gin"
)

type PerformanceStore interface {
	List(ctx context.Context) ([]performance.Record, error)
	GetByID(ctx context.Context, id int64) (performance.Record, error)
	ListByStudent(ctx context.Context, studentID int64) ([]performance.Record, error)
	Create(ctx context.Context, req performance.CreateRecordRequest) (performance.Record, error)
	Update(ctx context.Context, id int64, req performance.UpdateRecordRequest) (performance.Record, error)
	Delete(ctx context.Context, id int64) error
}

type PerformancesHandler struct {
	repo PerformanceStore
}

func NewPerformancesHandler(repo PerformanceStore) *PerformancesHandler {
	return &PerformancesHandler{repo: repo}
}

func (h *PerformancesHandler) List(ctx *gin.Context) {
	records, err := h.repo.List(ctx.Request.Context())

	if err != nil {
		RespondInternal(ctx, "Could not list performance records")
		return
	}

	if records == nil {
		records = []performance.Record{}
	}

	ctx.JSON(http.StatusOK, records)
}

func (h *PerformancesHandler) Get(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")

	if !ok {
		return
	}

	rec, err := h.repo.GetByID(ctx.Request.Context(), id)

	if err != nil {
		if errors.Is(err, performance.ErrNotFound) {
			RespondNotFound(ctx, "Performance record not found")
			return
		}

		RespondInternal(ctx, "Could not fetch performance record")
		return
	}

	ctx.JSON(http.StatusOK, rec)
}

func (h *PerformancesHandler) ListByStudent(ctx *gin.Context) {
	studentID, ok := pathID(ctx, "studentId")

	if !ok {
		return
	}

	records, err := h.repo.ListByStudent(ctx.Request.Context(), studentID)

	if err != nil {
		RespondInternal(ctx, "Could not fetch student performance")
		return
	}

	if records == nil {
		records = []performance.Record{}
	}

	ctx.JSON(http.StatusOK, records)
}

func (h *PerformancesHandler) Create(ctx *gin.Context) {
	var req performance.CreateRecordRequest

	if !BindJSON(ctx, &req) {
		return
	}

	rec, err := h.repo.Create(ctx.Request.Context(), req)

	if err != nil {
		RespondInternal(ctx, "Could not create performance record")
		return
	}

	ctx.JSON(http.StatusCreated, rec)
}

func (h *PerformancesHandler) Update(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")

	if !ok {
		return
	}

	var req performance.UpdateRecordRequest

	if !BindJSON(ctx, &req) {
		return
	}

	rec, err := h.repo.Update(ctx.Request.Context(), id, req)

	if err != nil {
		if errors.Is(err, performance.ErrNotFound) {
			RespondNotFound(ctx, "Performance record not found")
			return
		}

		RespondInternal(ctx, "Could not update performance record")
		return
	}

	ctx.JSON(http.StatusOK, rec)
}

func (h *PerformancesHandler) Delete(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")

	if !ok {
		return
	}

	err := h.repo.Delete(ctx.Request.Context(), id)

	if err != nil {
		if errors.Is(err, performance.ErrNotFound) {
			RespondNotFound(ctx, "Performance record not found")
			return
		}

		RespondInternal(ctx, "Could not delete performance record")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Performance record deleted successfully"})
}
