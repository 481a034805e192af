package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/anachak/anachak/internal/access"
	"github.com/anachak/anachak/internal/apiserver/database"
	"github.com/anachak/anachak/internal/auth/provider"
	"github.com/anachak/anachak/internal/common/dto"
	"github.com/anachak/anachak/internal/confirm"
	"github.com/anachak/anachak/internal/i18n"
	"github.com/anachak/anachak/internal/storage"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Deletable resource names as used in routes and deletion requests
const (
	ResourceProducts       = "products"
	ResourceCategories     = "categories"
	ResourceShops          = "shops"
	ResourceSocialContacts = "social-contacts"
	ResourceIndustries     = "industries"
	ResourceUsers          = "users"
	ResourceSaleTypes      = "sale-types"
)

var resourceNotFound = map[string]*i18n.ErrorWithCode{
	ResourceProducts:       i18n.ErrorProductNotFound,
	ResourceCategories:     i18n.ErrorCategoryNotFound,
	ResourceShops:          i18n.ErrorShopNotFound,
	ResourceSocialContacts: i18n.ErrorSocialContactNotFound,
	ResourceIndustries:     i18n.ErrorIndustryNotFound,
	ResourceUsers:          i18n.ErrorUserNotFound,
	ResourceSaleTypes:      i18n.ErrorSaleTypeNotFound,
}

// DeleteReason describes a failed delete in the result dialog
func DeleteReason(err error) string {
	var coded *i18n.ErrorWithCode
	switch {
	case errors.As(err, &coded):
		return coded.Error()
	case errors.Is(err, database.ErrInUse):
		return "it is still in use"
	case errors.Is(err, database.ErrNotFound):
		return "it no longer exists"
	case errors.Is(err, provider.ErrUnavailable), errors.Is(err, storage.ErrUnavailable):
		return "the service did not respond"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "the request was canceled"
	default:
		return "unexpected error"
	}
}

func requireSuperAdmin(scope access.Scope) error {
	if !scope.Privileged() {
		return i18n.ErrorSuperAdminRequired
	}
	return nil
}

func (h *Handler) registerDeletions() {
	h.deletions.Register(confirm.Resource{
		Name: ResourceProducts,
		Noun: "product",
		Delete: func(ctx context.Context, scope access.Scope, id uint) error {
			return h.db.DeleteProduct(ctx, scope, id)
		},
		Affects: func(ctx context.Context, scope access.Scope, id uint) ([]uint, error) {
			p, err := h.db.GetProduct(ctx, scope, id)
			if err != nil {
				return nil, err
			}
			return []uint{p.ShopID}, nil
		},
	})

	h.deletions.Register(confirm.Resource{
		Name: ResourceCategories,
		Noun: "category",
		Delete: func(ctx context.Context, scope access.Scope, id uint) error {
			return h.db.DeleteCategory(ctx, scope, id)
		},
		Guard: func(ctx context.Context, scope access.Scope, id uint) error {
			_, err := h.db.GetCategory(ctx, scope, id)
			return err
		},
	})

	h.deletions.Register(confirm.Resource{
		Name: ResourceSaleTypes,
		Noun: "sale type",
		Delete: func(ctx context.Context, scope access.Scope, id uint) error {
			return h.db.DeleteSaleType(ctx, scope, id)
		},
		Guard: func(ctx context.Context, scope access.Scope, id uint) error {
			_, err := h.db.GetSaleType(ctx, scope, id)
			return err
		},
	})

	h.deletions.Register(confirm.Resource{
		Name: ResourceShops,
		Noun: "shop",
		Delete: func(ctx context.Context, scope access.Scope, id uint) error {
			return h.db.DeleteShop(ctx, scope, id)
		},
		Affects: func(ctx context.Context, scope access.Scope, id uint) ([]uint, error) {
			if _, err := h.db.GetShop(ctx, scope, id); err != nil {
				return nil, err
			}
			return []uint{id}, nil
		},
	})

	h.deletions.Register(confirm.Resource{
		Name: ResourceSocialContacts,
		Noun: "social contact",
		Delete: func(ctx context.Context, scope access.Scope, id uint) error {
			return h.db.DeleteSocialContact(ctx, scope, id)
		},
		Affects: func(ctx context.Context, scope access.Scope, id uint) ([]uint, error) {
			sc, err := h.db.GetSocialContact(ctx, scope, id)
			if err != nil {
				return nil, err
			}
			return []uint{sc.ShopID}, nil
		},
	})

	h.deletions.Register(confirm.Resource{
		Name: ResourceIndustries,
		Noun: "industry",
		Delete: func(ctx context.Context, scope access.Scope, id uint) error {
			if err := requireSuperAdmin(scope); err != nil {
				return err
			}
			return h.db.DeleteIndustry(ctx, id)
		},
		Guard: func(ctx context.Context, scope access.Scope, id uint) error {
			if err := requireSuperAdmin(scope); err != nil {
				return err
			}
			_, err := h.db.GetIndustry(ctx, id)
			return err
		},
	})

	h.deletions.Register(confirm.Resource{
		Name:   ResourceUsers,
		Noun:   "user",
		Delete: h.deleteUser,
		Guard: func(ctx context.Context, scope access.Scope, id uint) error {
			if err := requireSuperAdmin(scope); err != nil {
				return err
			}
			if id == scope.UserID {
				return i18n.ErrorCannotDeleteSelf
			}
			target, err := h.db.GetUser(ctx, id)
			if err != nil {
				return err
			}
			if access.IsSuperAdmin(target.RoleName()) {
				return i18n.ErrorCannotDeleteSuperAdmin
			}
			return nil
		},
		// users own no menu content once they can be deleted
		Affects: func(context.Context, access.Scope, uint) ([]uint, error) { return []uint{}, nil },
	})
}

// deleteUser removes the local row and the auth account as one unit: the row
// delete runs in a transaction that is rolled back when the auth service
// refuses, so a failure at either step leaves the user intact.
func (h *Handler) deleteUser(ctx context.Context, scope access.Scope, id uint) error {
	if err := requireSuperAdmin(scope); err != nil {
		return err
	}
	err := h.db.Transaction(ctx, func(ctx context.Context) error {
		user, err := h.db.GetUser(ctx, id)
		if err != nil {
			return err
		}
		if access.IsSuperAdmin(user.RoleName()) {
			return i18n.ErrorCannotDeleteSuperAdmin
		}
		if err := h.db.DeleteUser(ctx, id); err != nil {
			return err
		}
		if user.AuthID == "" {
			return nil
		}
		if err := h.provider.DeleteUser(ctx, user.AuthID); err != nil && !errors.Is(err, provider.ErrUserNotFound) {
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}
	if err := h.sessions.Revoke(ctx, id); err != nil {
		h.logger.Warn("failed to revoke sessions of deleted user", zap.Uint("user_id", id), zap.Error(err))
	}
	return nil
}

func (h *Handler) stage(c *gin.Context, resource string, id uint) {
	scope, ok := mustScope(c)
	if !ok {
		return
	}
	view, err := h.deletions.Stage(c.Request.Context(), scope, resource, id)
	if err != nil {
		h.fail(c, err, resourceNotFound[resource])
		return
	}
	i18n.Success(i18n.SuccessDeletionStaged).With("Noun", nounOfResource(resource)).WithPayload(view).Send(c)
}

func nounOfResource(resource string) string {
	if notFound, ok := resourceNotFound[resource]; ok {
		return nounOf(notFound)
	}
	return "record"
}

// StageDeletion handles POST /api/deletions. Nothing is deleted until the
// returned token is confirmed.
func (h *Handler) StageDeletion(c *gin.Context) {
	var req dto.DeletionRequest
	if !bindJSON(c, &req) || !requiredFields(c, req.Missing()) {
		return
	}
	h.stage(c, req.Resource, req.ID)
}

// StageResourceDeletion handles DELETE /api/<resource>/:id the same way as StageDeletion
func (h *Handler) StageResourceDeletion(resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		h.stage(c, resource, id)
	}
}

// GetDeletion handles GET /api/deletions/:token
func (h *Handler) GetDeletion(c *gin.Context) {
	scope, ok := mustScope(c)
	if !ok {
		return
	}
	view, err := h.deletions.Get(c.Request.Context(), scope, c.Param("token"))
	if err != nil {
		h.fail(c, err, nil)
		return
	}
	i18n.Success(i18n.SuccessFetched).WithPayload(view).Send(c)
}

// ConfirmDeletion handles POST /api/deletions/:token/confirm. A failed delete
// is a result state of the dialog, not a request error.
func (h *Handler) ConfirmDeletion(c *gin.Context) {
	scope, ok := mustScope(c)
	if !ok {
		return
	}
	view, err := h.deletions.Confirm(c.Request.Context(), scope, c.Param("token"))
	if err != nil {
		h.fail(c, err, nil)
		return
	}
	noun := nounOfResource(view.Resource)
	if view.State == confirm.StateError {
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"message": i18n.ErrorDeleteFailed.WithParam("Noun", noun).TranslateByContext(c),
			"data":    view,
		})
		return
	}
	i18n.Success(i18n.SuccessItemDeleted).With("Noun", confirm.Capitalize(noun)).WithPayload(view).Send(c)
}

type closeResponse struct {
	Dialog    *confirm.View      `json:"dialog"`
	Reconcile *confirm.Reconcile `json:"reconcile"`
}

// CloseDeletion handles POST /api/deletions/:token/close. After a success the
// response names the row the client drops from its collection.
func (h *Handler) CloseDeletion(c *gin.Context) {
	scope, ok := mustScope(c)
	if !ok {
		return
	}
	view, reconcile, err := h.deletions.Close(c.Request.Context(), scope, c.Param("token"))
	if err != nil {
		h.fail(c, err, nil)
		return
	}
	i18n.Success(i18n.SuccessFetched).WithPayload(closeResponse{Dialog: view, Reconcile: reconcile}).Send(c)
}

// DismissDeletion handles DELETE /api/deletions/:token: it cancels a dialog
// still waiting for confirmation and closes one showing a result.
func (h *Handler) DismissDeletion(c *gin.Context) {
	scope, ok := mustScope(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	token := c.Param("token")
	view, err := h.deletions.Get(ctx, scope, token)
	if err != nil {
		h.fail(c, err, nil)
		return
	}
	if view.State != confirm.StateConfirm {
		h.CloseDeletion(c)
		return
	}
	view, err = h.deletions.Cancel(ctx, scope, token)
	if err != nil {
		h.fail(c, err, nil)
		return
	}
	i18n.Success(i18n.SuccessDeletionCanceled).WithPayload(closeResponse{Dialog: view}).Send(c)
}
