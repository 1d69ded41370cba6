package student

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("student not found")

// Student belongs to at most one parent and one teacher; both links are weak
// references into the users table and may be null.
type Student struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email,omitempty"`
	RollNumber string    `json:"rollNumber,omitempty"`
	Class      string    `json:"class,omitempty"`
	ParentID   *int64    `json:"parentId,omitempty"`
	TeacherID  *int64    `json:"teacherId,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// OwnedBy is the ownership check used before any child data is released to a
// parent: it must hold against the live row, not a cached claim.
func (s Student) OwnedBy(parentID int64) bool {
	return s.ParentID != nil && *s.ParentID == parentID
}

type CreateStudentRequest struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"omitempty,email"`
	RollNumber string `json:"rollNumber"`
	Class      string `json:"class"`
	ParentID   *int64 `json:"parentId"`
	TeacherID  *int64 `json:"teacherId"`
}

type UpdateStudentRequest struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"omitempty,email"`
	RollNumber string `json:"rollNumber"`
	Class      string `json:"class"`
	ParentID   *int64 `json:"parentId"`
	TeacherID  *int64 `json:"teacherId"`
}
