package handler

import (
	"context"
	"errors"
	"strings"

	"github.com/anachak/anachak/internal/apiserver/database"
	"github.com/anachak/anachak/internal/common/dto"
	"github.com/anachak/anachak/internal/i18n"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type userItem struct {
	*database.User
	Editable bool `json:"editable"`
}

// ListRoles handles GET /api/roles
func (h *Handler) ListRoles(c *gin.Context) {
	roles, err := h.db.ListRoles(c.Request.Context())
	if err != nil {
		h.fail(c, err, i18n.ErrorRoleNotFound)
		return
	}
	i18n.Success(i18n.SuccessFetched).WithPayload(roles).Send(c)
}

// ListUsers handles GET /api/users
func (h *Handler) ListUsers(c *gin.Context) {
	opts, scope, ok := h.bindList(c)
	if !ok {
		return
	}
	rows, total, err := h.db.ListUsers(c.Request.Context(), opts)
	if err != nil {
		h.fail(c, err, nil)
		return
	}
	items := make([]userItem, 0, len(rows))
	for _, u := range rows {
		items = append(items, userItem{User: u, Editable: true})
	}
	i18n.Success(i18n.SuccessFetched).WithPayload(newListResponse(scope, opts.Page, items, total)).Send(c)
}

// GetUser handles GET /api/users/:id
func (h *Handler) GetUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	user, err := h.db.GetUser(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, i18n.ErrorUserNotFound)
		return
	}
	i18n.Success(i18n.SuccessFetched).WithPayload(userItem{User: user, Editable: true}).Send(c)
}

func (h *Handler) checkRole(ctx context.Context, id uint) error {
	if _, err := h.db.GetRole(ctx, id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return i18n.ErrorRoleNotFound
		}
		return err
	}
	return nil
}

// CreateUser handles POST /api/users. The auth account is provisioned first;
// if the local row cannot be written the auth account is removed again.
func (h *Handler) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if !bindJSON(c, &req) || !requiredFields(c, req.Missing()) {
		return
	}
	ctx := c.Request.Context()
	if err := h.checkRole(ctx, req.RoleID); err != nil {
		h.fail(c, err, nil)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	au, err := h.provider.CreateUser(ctx, email, req.Password)
	if err != nil {
		h.fail(c, err, nil)
		return
	}

	user := &database.User{
		AuthID:   au.ID,
		Username: strings.TrimSpace(req.Username),
		Email:    email,
		Phone:    req.Phone,
		Password: au.PasswordHash,
		RoleID:   req.RoleID,
	}
	if err := h.db.CreateUser(ctx, user); err != nil {
		if rbErr := h.provider.DeleteUser(context.WithoutCancel(ctx), au.ID); rbErr != nil {
			h.logger.Error("failed to roll back auth user",
				zap.String("auth_id", au.ID),
				zap.Error(rbErr))
		}
		if errors.Is(err, database.ErrDuplicate) {
			err = i18n.ErrorUserExists
		}
		h.fail(c, err, i18n.ErrorUserNotFound)
		return
	}

	created, err := h.db.GetUser(ctx, user.ID)
	if err != nil {
		h.fail(c, err, i18n.ErrorUserNotFound)
		return
	}
	h.logger.Info("user created", zap.Uint("user_id", created.ID), zap.String("role", created.RoleName()))
	i18n.Created(i18n.SuccessItemCreated).With("Noun", "User").WithPayload(userItem{User: created, Editable: true}).Send(c)
}

// UpdateUser handles PUT /api/users/:id. Email and password changes go to the
// auth service first. Disabling a user closes its sessions.
func (h *Handler) UpdateUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateUserRequest
	if !bindJSON(c, &req) || !requiredFields(c, req.Missing()) {
		return
	}
	ctx := c.Request.Context()
	if err := h.checkRole(ctx, req.RoleID); err != nil {
		h.fail(c, err, nil)
		return
	}
	current, err := h.db.GetUser(ctx, id)
	if err != nil {
		h.fail(c, err, i18n.ErrorUserNotFound)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	user := &database.User{
		ID:       id,
		AuthID:   current.AuthID,
		Username: strings.TrimSpace(req.Username),
		Email:    email,
		Phone:    req.Phone,
		RoleID:   req.RoleID,
		Disabled: req.Disabled,
	}
	if current.AuthID != "" && (email != current.Email || req.Password != "") {
		au, err := h.provider.UpdateUser(ctx, current.AuthID, email, req.Password)
		if err != nil {
			h.fail(c, err, nil)
			return
		}
		user.Password = au.PasswordHash
	}
	if err := h.db.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			err = i18n.ErrorUserExists
		}
		h.fail(c, err, i18n.ErrorUserNotFound)
		return
	}

	h.sessions.Refresh(id)
	if req.Disabled {
		if err := h.sessions.Revoke(ctx, id); err != nil {
			h.logger.Warn("failed to revoke sessions of disabled user", zap.Uint("user_id", id), zap.Error(err))
		}
	}
	updated, err := h.db.GetUser(ctx, id)
	if err != nil {
		h.fail(c, err, i18n.ErrorUserNotFound)
		return
	}
	i18n.Success(i18n.SuccessItemUpdated).With("Noun", "User").WithPayload(userItem{User: updated, Editable: true}).Send(c)
}
