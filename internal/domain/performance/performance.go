package performance

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("performance record not found")

// Record is a single scored entry for a student. created_at ordering is the
// canonical timeline for every trend computation.
type Record struct {
	ID           int64     `json:"id"`
	StudentID    int64     `json:"studentId"`
	Score        int       `json:"score"`
	AcademicYear int       `json:"academicYear"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type CreateRecordRequest struct {
	StudentID    int64 `json:"studentId" binding:"required,gt=0"`
	Score        *int  `json:"score" binding:"required,gte=0,lte=100"`
	AcademicYear int   `json:"academicYear" binding:"required,gte=1900"`
}

type UpdateRecordRequest struct {
	StudentID    int64 `json:"studentId" binding:"required,gt=0"`
	Score        *int  `json:"score" binding:"required,gte=0,lte=100"`
	AcademicYear int   `json:"academicYear" binding:"required,gte=1900"`
}
