package handler

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/anachak/anachak/internal/access"
	"github.com/anachak/anachak/internal/apiserver/cache"
	"github.com/anachak/anachak/internal/apiserver/database"
	"github.com/anachak/anachak/internal/apiserver/middleware"
	"github.com/anachak/anachak/internal/auth/provider"
	"github.com/anachak/anachak/internal/confirm"
	"github.com/anachak/anachak/internal/i18n"
	"github.com/anachak/anachak/internal/media"
	"github.com/anachak/anachak/internal/session"
	"github.com/anachak/anachak/internal/storage"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler serves the admin and public menu API
type Handler struct {
	db        database.Database
	provider  provider.Provider
	sessions  *session.Manager
	deletions *confirm.Manager
	media     *media.Service
	menus     *cache.MenuCache
	logger    *zap.Logger
}

// NewHandler creates the API handler and registers the deletable resources
func NewHandler(db database.Database, p provider.Provider, sessions *session.Manager, deletions *confirm.Manager,
	mediaSvc *media.Service, menus *cache.MenuCache, logger *zap.Logger) *Handler {
	h := &Handler{
		db:        db,
		provider:  p,
		sessions:  sessions,
		deletions: deletions,
		media:     mediaSvc,
		menus:     menus,
		logger:    logger.Named("handler"),
	}
	h.registerDeletions()
	return h
}

// requiredFields answers 400 listing the empty required fields, if any
func requiredFields(c *gin.Context, missing []string) bool {
	if len(missing) == 0 {
		return true
	}
	i18n.RespondWithError(c, i18n.ErrMissingFields.WithParam("Fields", strings.Join(missing, ", ")))
	return false
}

// bindJSON decodes the body and answers 400 on malformed input
func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		i18n.RespondWithError(c, i18n.ErrBadRequest)
		return false
	}
	return true
}

// paramID parses a positive numeric path parameter
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		i18n.RespondWithError(c, i18n.ErrInvalidID)
		return 0, false
	}
	return uint(id), true
}

// mustScope returns the caller scope or answers 401 for a mutation without one
func mustScope(c *gin.Context) (access.Scope, bool) {
	scope := middleware.ScopeFrom(c)
	if scope == nil {
		i18n.RespondWithError(c, i18n.ErrUnauthorized)
		return access.Scope{}, false
	}
	return *scope, true
}

// fail maps a domain error to its localized response. notFound is used for
// database.ErrNotFound so each resource names itself.
func (h *Handler) fail(c *gin.Context, err error, notFound *i18n.ErrorWithCode) {
	var coded *i18n.ErrorWithCode
	switch {
	case errors.As(err, &coded):
		i18n.RespondWithError(c, coded)
	case errors.Is(err, context.Canceled):
		// client went away; nothing to answer
		c.Abort()
	case errors.Is(err, database.ErrNotFound):
		if notFound == nil {
			notFound = i18n.ErrNotFound
		}
		i18n.RespondWithError(c, notFound)
	case errors.Is(err, database.ErrDuplicate):
		i18n.RespondWithError(c, i18n.ErrDuplicate)
	case errors.Is(err, database.ErrInUse):
		i18n.RespondWithError(c, i18n.ErrorReferenceInUse.WithParam("Noun", nounOf(notFound)))
	case errors.Is(err, access.ErrForeignReference):
		i18n.RespondWithError(c, i18n.ErrorForeignReference)
	case errors.Is(err, provider.ErrInvalidCredentials), errors.Is(err, session.ErrUnknownUser):
		i18n.RespondWithError(c, i18n.ErrorInvalidCredentials)
	case errors.Is(err, session.ErrUserDisabled):
		i18n.RespondWithError(c, i18n.ErrorUserDisabled)
	case errors.Is(err, provider.ErrUserExists):
		i18n.RespondWithError(c, i18n.ErrorUserExists)
	case errors.Is(err, provider.ErrUserNotFound):
		i18n.RespondWithError(c, i18n.ErrorUserNotFound)
	case errors.Is(err, media.ErrUnsupportedType):
		i18n.RespondWithError(c, i18n.ErrorImageType)
	case errors.Is(err, media.ErrTooLarge):
		i18n.RespondWithError(c, i18n.ErrorImageTooLarge)
	case errors.Is(err, media.ErrEmpty):
		i18n.RespondWithError(c, i18n.ErrorImageRequired)
	case errors.Is(err, media.ErrFolder), errors.Is(err, storage.ErrInvalidPath):
		i18n.RespondWithError(c, i18n.ErrorImageFolder)
	case errors.Is(err, confirm.ErrUnknownToken), errors.Is(err, confirm.ErrNotOwner):
		i18n.RespondWithError(c, i18n.ErrorDeletionNotFound)
	case errors.Is(err, confirm.ErrInvalidTransition):
		i18n.RespondWithError(c, i18n.ErrorDeletionState)
	case errors.Is(err, confirm.ErrUnknownResource):
		i18n.RespondWithError(c, i18n.ErrorDeletionResource)
	case errors.Is(err, provider.ErrUnavailable), errors.Is(err, storage.ErrUnavailable):
		h.logger.Warn("collaborator unavailable", zap.String("path", c.FullPath()), zap.Error(err))
		i18n.RespondWithError(c, i18n.ErrUpstream)
	default:
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		i18n.RespondWithError(c, i18n.ErrInternalServer)
	}
}

var nouns = map[string]string{
	i18n.ErrorShopNotFound.MessageID:          "shop",
	i18n.ErrorProductNotFound.MessageID:       "product",
	i18n.ErrorCategoryNotFound.MessageID:      "category",
	i18n.ErrorIndustryNotFound.MessageID:      "industry",
	i18n.ErrorSaleTypeNotFound.MessageID:      "sale type",
	i18n.ErrorSocialContactNotFound.MessageID: "social contact",
	i18n.ErrorUserNotFound.MessageID:          "user",
}

func nounOf(notFound *i18n.ErrorWithCode) string {
	if notFound != nil {
		if noun, ok := nouns[notFound.MessageID]; ok {
			return noun
		}
	}
	return "record"
}

// ListResponse is the envelope of every paginated admin list
type ListResponse struct {
	Items    any    `json:"items"`
	Total    int64  `json:"total"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
	Role     string `json:"role"`
	UserID   uint   `json:"userId"`
}

func newListResponse(scope *access.Scope, page access.Page, items any, total int64) ListResponse {
	page = page.Normalize()
	resp := ListResponse{Items: items, Total: total, Page: page.Page, PageSize: page.PageSize}
	if scope != nil {
		resp.Role = scope.Role
		resp.UserID = scope.UserID
	}
	return resp
}

// bindList reads the list query. A caller whose identity is unresolved gets
// an empty page instead of an error; ok is false in that case.
func (h *Handler) bindList(c *gin.Context) (database.ListOptions, *access.Scope, bool) {
	var opts database.ListOptions
	if err := c.ShouldBindQuery(&opts); err != nil {
		i18n.RespondWithError(c, i18n.ErrBadRequest)
		return opts, nil, false
	}
	opts.Page = opts.Page.Normalize()
	scope := middleware.ScopeFrom(c)
	if scope == nil {
		empty := access.Visible(c.Request.Context(), h.logger, nil, []any(nil), func(any) uint { return 0 })
		i18n.Success(i18n.SuccessFetched).WithPayload(newListResponse(nil, opts.Page, empty, 0)).Send(c)
		return opts, nil, false
	}
	return opts, scope, true
}
