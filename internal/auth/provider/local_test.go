package provider

import (
	"context"
	"testing"
	"time"

	"github.com/anachak/anachak/internal/apiserver/database"
	"github.com/anachak/anachak/internal/common/cnst"
	"github.com/anachak/anachak/internal/common/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newLocalWithUser(t *testing.T) (*Local, database.Database) {
	t.Helper()
	ctx := context.Background()
	db, err := database.NewDatabase(&config.DatabaseConfig{Type: "sqlite", DBName: ":memory:"}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.EnsureRoles(ctx, db))
	role, err := db.GetRoleByName(ctx, cnst.RoleUser)
	require.NoError(t, err)

	l := NewLocal(db, nil)
	au, err := l.CreateUser(ctx, "owner@example.com", "secret")
	require.NoError(t, err)
	require.NotEmpty(t, au.PasswordHash)
	require.NoError(t, db.CreateUser(ctx, &database.User{
		AuthID: au.ID, Username: "owner", Email: au.Email, Password: au.PasswordHash, RoleID: role.ID,
	}))
	return l, db
}

func TestLocal_SignInFlow(t *testing.T) {
	l, _ := newLocalWithUser(t)
	ctx := context.Background()

	_, err := l.SignIn(ctx, "owner@example.com", "nope")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = l.SignIn(ctx, "ghost@example.com", "secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	sess, err := l.SignIn(ctx, "Owner@Example.com", "secret")
	require.NoError(t, err)
	u, err := l.GetUser(ctx, sess.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, u.ID)

	require.NoError(t, l.SignOut(ctx, sess.AccessToken))
	_, err = l.GetUser(ctx, sess.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLocal_TokenExpiry(t *testing.T) {
	l, _ := newLocalWithUser(t)
	ctx := context.Background()
	sess, err := l.SignIn(ctx, "owner@example.com", "secret")
	require.NoError(t, err)

	l.now = func() time.Time { return time.Now().Add(2 * localTokenTTL) }
	_, err = l.GetUser(ctx, sess.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLocal_Admin(t *testing.T) {
	l, _ := newLocalWithUser(t)
	ctx := context.Background()

	_, err := l.CreateUser(ctx, "owner@example.com", "secret")
	assert.ErrorIs(t, err, ErrUserExists)

	au, err := l.UpdateUser(ctx, "uid", "new@example.com", "")
	require.NoError(t, err)
	assert.Empty(t, au.PasswordHash)
	au, err = l.UpdateUser(ctx, "uid", "new@example.com", "changed")
	require.NoError(t, err)
	assert.NotEmpty(t, au.PasswordHash)

	sess, err := l.SignIn(ctx, "owner@example.com", "secret")
	require.NoError(t, err)
	require.NoError(t, l.DeleteUser(ctx, sess.User.ID))
	_, err = l.GetUser(ctx, sess.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNew(t *testing.T) {
	p, err := New(&config.AuthConfig{Provider: "gotrue", GoTrue: config.GoTrueConfig{URL: "http://x"}}, nil, nil, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &GoTrue{}, p)

	_, err = New(&config.AuthConfig{Provider: "ldap"}, nil, nil, zap.NewNop())
	assert.Error(t, err)
}
