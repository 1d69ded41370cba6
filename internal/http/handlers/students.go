package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/edutrackpro/edutrack/internal/domain/student"
	"github.com/gin-gonic/gin"
)

type StudentStore interface {
	List(ctx context.Context) ([]student.Student, error)
	GetByID(ctx context.Context, id int64) (student.Student, error)
	Create(ctx context.Context, req student.CreateStudentRequest) (student.Student, error)
	Update(ctx context.Context, id int64, req student.UpdateStudentRequest) (student.Student, error)
	Delete(ctx context.Context, id int64) error
}

type StudentsHandler struct {
	repo StudentStore
}

func NewStudentsHandler(repo StudentStore) *StudentsHandler {
	return &StudentsHandler{repo: repo}
}

func (h *StudentsHandler) List(ctx *gin.Context) {
	students, err := h.repo.List(ctx.Request.Context())

	if err != nil {
		RespondInternal(ctx, "Could not list students")
		return
	}

	if students == nil {
		students = []student.Student{}
	}

	ctx.JSON(http.StatusOK, students)
}

func (h *StudentsHandler) Get(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")

	if !ok {
		return
	}

	s, err := h.repo.GetByID(ctx.Request.Context(), id)

	if err != nil {
		if errors.Is(err, student.ErrNotFound) {
			RespondNotFound(ctx, "Student not found")
			return
		}

		RespondInternal(ctx, "Could not fetch student")
		return
	}

	ctx.JSON(http.StatusOK, s)
}

func (h *StudentsHandler) Create(ctx *gin.Context) {
	var req student.CreateStudentRequest

	if !BindJSON(ctx, &req) {
		return
	}

	s, err := h.repo.Create(ctx.Request.Context(), req)

	if err != nil {
		RespondInternal(ctx, "Could not create student")
		return
	}

	ctx.JSON(http.StatusCreated, s)
}

func (h *StudentsHandler) Update(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")

	if !ok {
		return
	}

	var req student.UpdateStudentRequest

	if !BindJSON(ctx, &req) {
		return
	}

	s, err := h.repo.Update(ctx.Request.Context(), id, req)

	if err != nil {
		if errors.Is(err, student.ErrNotFound) {
			RespondNotFound(ctx, "Student not found")
			return
		}

		RespondInternal(ctx, "Could not update student")
		return
	}

	ctx.JSON(http.StatusOK, s)
}

func (h *StudentsHandler) Delete(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")

	if !ok {
		return
	}

	err := h.repo.Delete(ctx.Request.Context(), id)

	if err != nil {
		if errors.Is(err, student.ErrNotFound) {
			RespondNotFound(ctx, "Student not found")
			return
		}

		RespondInternal(ctx, "Could not delete student")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Student deleted successfully"})
}
