package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/geocoder89/vidtrack/internal/assign"
	"github.com/geocoder89/vidtrack/internal/domain/user"
	"github.com/gin-gonic/gin"
)

type UsersStore interface {
	Create(ctx context.Context, name string) (user.User, error)
	List(ctx context.Context) ([]user.User, error)
	SetAssignedAt(ctx context.Context, id string, at *time.Time) (user.User, error)
}

// ListCache is satisfied by the redis cache. A nil cache disables caching.
type ListCache interface {
	GetUserList(ctx context.Context) ([]user.User, bool)
	SetUserList(ctx context.Context, users []user.User)
	InvalidateUserList(ctx context.Context)
}

type UsersHandler struct {
	repo      UsersStore
	listCache ListCache
	nowFunc   func() time.Time
}

func NewUsersHandler(repo UsersStore, listCache ListCache) *UsersHandler {
	return &UsersHandler{
		repo:      repo,
		listCache: listCache,
		nowFunc:   func() time.Time { return time.Now().UTC() },
	}
}

// WithNowFunc overrides the clock used for default assignments. Useful for testing.
func (h *UsersHandler) WithNowFunc(nowFunc func() time.Time) *UsersHandler {
	h.nowFunc = nowFunc
	return h
}

// ListUsers returns every user, newest first. Status and countdown are
// computed client-side, so the payload is just the records.
func (h *UsersHandler) ListUsers(ctx *gin.Context) {
	reqCtx := ctx.Request.Context()

	if h.listCache != nil {
		if users, ok := h.listCache.GetUserList(reqCtx); ok {
			RespondJSONWithETag(ctx, http.StatusOK, users)
			return
		}
	}

	users, err := h.repo.List(reqCtx)

	if err != nil {
		RespondInternal(ctx, "Could not list users")

		return
	}

	if h.listCache != nil {
		h.listCache.SetUserList(reqCtx, users)
	}

	RespondJSONWithETag(ctx, http.StatusOK, users)
}

func (h *UsersHandler) CreateUser(ctx *gin.Context) {
	var req user.CreateUserRequest

	if !BindJSON(ctx, &req) {
		return
	}

	name := strings.TrimSpace(req.Name)

	if name == "" {
		RespondBadRequest(ctx, "Invalid request body", gin.H{
			"fields": []FieldError{
				{Field: "name", Rule: "required", Message: "must not be blank"},
			},
		})
		return
	}

	created, err := h.repo.Create(ctx.Request.Context(), name)

	if err != nil {
		RespondInternal(ctx, "Could not create user")
		return
	}

	h.invalidate(ctx)

	ctx.JSON(http.StatusCreated, created)
}

// UpdateAssignment sets the last-assigned instant for one user.
// Precedence: reset clears it, a non-empty manualTime overrides it, and an
// empty body means "now". An unparseable manualTime is rejected rather
// than silently replaced with the current time.
func (h *UsersHandler) UpdateAssignment(ctx *gin.Context) {
	id := ctx.Param("id")

	var req user.UpdateAssignmentRequest

	// the body is optional; an absent body is the "now" mode
	if ctx.Request.ContentLength != 0 {
		if !BindJSON(ctx, &req) {
			return
		}
	}

	var at *time.Time

	switch {
	case req.Reset:
		at = nil

	case strings.TrimSpace(req.ManualTime) != "":
		parsed, err := assign.ParseManualInput(req.ManualTime)

		if err != nil {
			RespondError(ctx, http.StatusBadRequest, "invalid_manual_time", "manualTime is not a valid datetime", gin.H{
				"manualTime": req.ManualTime,
			})
			return
		}

		at = &parsed

	default:
		now := h.nowFunc()
		at = &now
	}

	updated, err := h.repo.SetAssignedAt(ctx.Request.Context(), id, at)

	if err != nil {
		switch {
		case errors.Is(err, user.ErrInvalidID):
			RespondBadRequest(ctx, "Malformed user id", gin.H{"id": id})
		case errors.Is(err, user.ErrNotFound):
			RespondNotFound(ctx, "User not found")
		default:
			RespondInternal(ctx, "Could not update user")
		}
		return
	}

	h.invalidate(ctx)

	ctx.JSON(http.StatusOK, updated)
}

func (h *UsersHandler) invalidate(ctx *gin.Context) {
	if h.listCache != nil {
		h.listCache.InvalidateUserList(ctx.Request.Context())
	}
}
