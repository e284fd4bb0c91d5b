package user

import (
	"errors"
	"time"
)

type User struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	LastVideoAssignedAt *time.Time `json:"lastVideoAssignedAt"`
	CreatedAt           time.Time  `json:"createdAt"`
}

var (
	ErrNotFound  = errors.New("user not found")
	ErrInvalidID = errors.New("invalid user id")
)

type CreateUserRequest struct {
	Name string `json:"name" binding:"required,min=1,max=120"`
}

// Exactly one mode applies per request: reset wins over manualTime,
// manualTime wins over the implicit "now".
type UpdateAssignmentRequest struct {
	ManualTime string `json:"manualTime" binding:"omitempty,max=64"`
	Reset      bool   `json:"reset"`
}
