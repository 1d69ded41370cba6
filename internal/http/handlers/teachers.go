package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/edutrackpro/edutrack/internal/repo/postgres"
	"github.com/gin-gonic/gin"
)

// TeacherDirectory reads the joined user+profile rows. Teachers enter the
// system through registration, so the directory has no create endpoint.
type TeacherDirectory interface {
	ListTeachers(ctx context.Context) ([]postgres.TeacherRow, error)
	GetTeacher(ctx context.Context, id int64) (postgres.TeacherRow, error)
	DeleteTeacher(ctx context.Context, id int64) error
}

type TeachersHandler struct {
	repo TeacherDirectory
}

func NewTeachersHandler(repo TeacherDirectory) *TeachersHandler {
	return &TeachersHandler{repo: repo}
}

func (h *TeachersHandler) List(ctx *gin.Context) {
	teachers, err := h.repo.ListTeachers(ctx.Request.Context())

	if err != nil {
		RespondInternal(ctx, "Could not list teachers")
		return
	}

	if teachers == nil {
		teachers = []postgres.TeacherRow{}
	}

	ctx.JSON(http.StatusOK, teachers)
}

func (h *TeachersHandler) Get(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")

	if !ok {
		return
	}

	t, err := h.repo.GetTeacher(ctx.Request.Context(), id)

	if err != nil {
		if errors.Is(err, postgres.ErrUserNotFound) {
			RespondNotFound(ctx, "Teacher not found")
			return
		}

		RespondInternal(ctx, "Could not fetch teacher")
		return
	}

	ctx.JSON(http.StatusOK, t)
}

func (h *TeachersHandler) Delete(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")

	if !ok {
		return
	}

	err := h.repo.DeleteTeacher(ctx.Request.Context(), id)

	if err != nil {
		if errors.Is(err, postgres.ErrUserNotFound) {
			RespondNotFound(ctx, "Teacher not found")
			return
		}

		RespondInternal(ctx, "Could not delete teacher")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Teacher deleted successfully"})
}
