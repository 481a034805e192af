package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/anachak/anachak/internal/apiserver/database"
	"github.com/anachak/anachak/internal/auth/provider"
	"github.com/anachak/anachak/internal/common/cnst"
	"github.com/anachak/anachak/internal/confirm"
	"github.com/anachak/anachak/internal/i18n"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type dialogView struct {
	Token    string        `json:"token"`
	Resource string        `json:"resource"`
	ID       uint          `json:"id"`
	State    confirm.State `json:"state"`
	Message  string        `json:"message"`
}

type closeView struct {
	Dialog    dialogView         `json:"dialog"`
	Reconcile *confirm.Reconcile `json:"reconcile"`
}

func (s *testServer) stage(token, path string) dialogView {
	s.t.Helper()
	w := s.do(http.MethodDelete, path, token, nil)
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	var view dialogView
	decode(s.t, w, &view)
	require.Equal(s.t, confirm.StateConfirm, view.State)
	require.NotEmpty(s.t, view.Token)
	return view
}

func TestDeleteProduct_StageConfirmClose(t *testing.T) {
	s := newTestServer(t)
	alice, token := s.account("alice", cnst.RoleUser)
	c := s.seedCatalog(alice, "Alice Cafe")
	ctx := context.Background()

	view := s.stage(token, fmt.Sprintf("/api/products/%d", c.active.ID))
	assert.Equal(t, "products", view.Resource)
	assert.Equal(t, c.active.ID, view.ID)
	assert.Contains(t, view.Message, "product")

	// staging alone deletes nothing
	_, err := s.db.GetProduct(ctx, scopeOf(alice), c.active.ID)
	require.NoError(t, err)

	w := s.do(http.MethodPost, "/api/deletions/"+view.Token+"/confirm", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result dialogView
	env := decode(t, w, &result)
	assert.True(t, env.Success)
	assert.Equal(t, confirm.StateSuccess, result.State)

	_, err = s.db.GetProduct(ctx, scopeOf(alice), c.active.ID)
	assert.ErrorIs(t, err, database.ErrNotFound)

	// a second confirm of the same dialog is refused
	w = s.do(http.MethodPost, "/api/deletions/"+view.Token+"/confirm", token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodPost, "/api/deletions/"+view.Token+"/close", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var closed closeView
	decode(t, w, &closed)
	assert.Equal(t, confirm.StateIdle, closed.Dialog.State)
	require.NotNil(t, closed.Reconcile)
	assert.Equal(t, c.active.ID, closed.Reconcile.Remove)

	w = s.do(http.MethodGet, "/api/deletions/"+view.Token, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteProduct_CancelKeepsRow(t *testing.T) {
	s := newTestServer(t)
	alice, token := s.account("alice", cnst.RoleUser)
	c := s.seedCatalog(alice, "Alice Cafe")

	w := s.do(http.MethodPost, "/api/deletions", token, map[string]any{"resource": "products", "id": c.active.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var view dialogView
	decode(t, w, &view)

	w = s.do(http.MethodDelete, "/api/deletions/"+view.Token, token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var closed closeView
	decode(t, w, &closed)
	assert.Equal(t, confirm.StateIdle, closed.Dialog.State)
	assert.Nil(t, closed.Reconcile)

	_, err := s.db.GetProduct(context.Background(), scopeOf(alice), c.active.ID)
	assert.NoError(t, err)

	w = s.do(http.MethodPost, "/api/deletions/"+view.Token+"/confirm", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteCategory_InUseShowsError(t *testing.T) {
	s := newTestServer(t)
	alice, token := s.account("alice", cnst.RoleUser)
	c := s.seedCatalog(alice, "Alice Cafe")

	view := s.stage(token, fmt.Sprintf("/api/categories/%d", c.category.ID))
	w := s.do(http.MethodPost, "/api/deletions/"+view.Token+"/confirm", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result dialogView
	env := decode(t, w, &result)
	assert.False(t, env.Success)
	assert.Equal(t, confirm.StateError, result.State)
	assert.Contains(t, result.Message, "still in use")

	_, err := s.db.GetCategory(context.Background(), scopeOf(alice), c.category.ID)
	assert.NoError(t, err)

	// closing an error result reconciles nothing
	w = s.do(http.MethodDelete, "/api/deletions/"+view.Token, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var closed closeView
	decode(t, w, &closed)
	assert.Nil(t, closed.Reconcile)
}

func TestDeletion_ForeignRowsAndTokens(t *testing.T) {
	s := newTestServer(t)
	alice, aliceToken := s.account("alice", cnst.RoleUser)
	_, bobToken := s.account("bob", cnst.RoleUser)
	c := s.seedCatalog(alice, "Alice Cafe")

	w := s.do(http.MethodDelete, fmt.Sprintf("/api/products/%d", c.active.ID), bobToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodDelete, fmt.Sprintf("/api/shops/%d", c.shop.ID), bobToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	view := s.stage(aliceToken, fmt.Sprintf("/api/products/%d", c.active.ID))
	w = s.do(http.MethodPost, "/api/deletions/"+view.Token+"/confirm", bobToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPost, "/api/deletions", aliceToken, map[string]any{"resource": "tables", "id": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/deletions", aliceToken, map[string]any{"resource": "products"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteUser_Guards(t *testing.T) {
	s := newTestServer(t)
	root, rootToken := s.account("root", cnst.RoleSuperAdmin)
	other, _ := s.account("other-root", cnst.RoleSuperAdmin)
	alice, aliceToken := s.account("alice", cnst.RoleUser)
	bob, _ := s.account("bob", cnst.RoleUser)

	w := s.do(http.MethodDelete, fmt.Sprintf("/api/users/%d", bob.ID), aliceToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodDelete, fmt.Sprintf("/api/users/%d", root.ID), rootToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	env := decode(t, w, nil)
	assert.Equal(t, i18n.ErrorCannotDeleteSelf.DefaultMessage, env.Error)

	w = s.do(http.MethodDelete, fmt.Sprintf("/api/users/%d", other.ID), rootToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	env = decode(t, w, nil)
	assert.Equal(t, i18n.ErrorCannotDeleteSuperAdmin.DefaultMessage, env.Error)

	// alice still owns a shop
	s.seedCatalog(alice, "Alice Cafe")
	view := s.stage(rootToken, fmt.Sprintf("/api/users/%d", alice.ID))
	w = s.do(http.MethodPost, "/api/deletions/"+view.Token+"/confirm", rootToken, nil)
	var result dialogView
	decode(t, w, &result)
	assert.Equal(t, confirm.StateError, result.State)
	_, err := s.db.GetUser(context.Background(), alice.ID)
	assert.NoError(t, err)
	w = s.do(http.MethodGet, "/api/shops", aliceToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDeleteUser_RemovesAccountAndSessions(t *testing.T) {
	s := newTestServer(t)
	_, rootToken := s.account("root", cnst.RoleSuperAdmin)
	bob, bobToken := s.account("bob", cnst.RoleUser)

	view := s.stage(rootToken, fmt.Sprintf("/api/users/%d", bob.ID))
	w := s.do(http.MethodPost, "/api/deletions/"+view.Token+"/confirm", rootToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result dialogView
	decode(t, w, &result)
	assert.Equal(t, confirm.StateSuccess, result.State)

	_, err := s.db.GetUser(context.Background(), bob.ID)
	assert.ErrorIs(t, err, database.ErrNotFound)

	w = s.do(http.MethodGet, "/api/shops", bobToken, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

type failingProvider struct {
	provider.Provider
}

func (failingProvider) DeleteUser(context.Context, string) error {
	return provider.ErrUnavailable
}

func TestDeleteUser_AuthFailureKeepsRow(t *testing.T) {
	s := newTestServer(t)
	root, _ := s.account("root", cnst.RoleSuperAdmin)
	bob, _ := s.account("bob", cnst.RoleUser)

	h := &Handler{db: s.db, provider: failingProvider{s.provider}, sessions: s.sessions, logger: zap.NewNop()}
	err := h.deleteUser(context.Background(), scopeOf(root), bob.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, provider.ErrUnavailable))
	assert.Equal(t, "the service did not respond", DeleteReason(err))

	_, err = s.db.GetUser(context.Background(), bob.ID)
	assert.NoError(t, err)
}

func TestDeleteReason(t *testing.T) {
	assert.Equal(t, "it is still in use", DeleteReason(fmt.Errorf("wrap: %w", database.ErrInUse)))
	assert.Equal(t, "it no longer exists", DeleteReason(database.ErrNotFound))
	assert.Equal(t, "unexpected error", DeleteReason(errors.New("boom")))
	assert.Equal(t, i18n.ErrorCannotDeleteSelf.DefaultMessage, DeleteReason(i18n.ErrorCannotDeleteSelf))
}
