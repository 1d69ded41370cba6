package alert

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("alert not found")

type Status string

const (
	StatusActive   Status = "active"
	StatusPending  Status = "pending"
	StatusResolved Status = "resolved"
)

// Alert is system-wide: it is not scoped to a student or parent. The parent
// dashboard surfaces the latest of these until a per-student alert model
// exists.
type Alert struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type CreateAlertRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Status      string `json:"status" binding:"omitempty,oneof=active pending resolved"`
}

type UpdateAlertRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Status      string `json:"status" binding:"omitempty,oneof=active pending resolved"`
}
