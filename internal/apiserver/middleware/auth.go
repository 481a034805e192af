package middleware

import (
	"context"
	"strings"

	"github.com/anachak/anachak/internal/access"
	"github.com/anachak/anachak/internal/auth/jwt"
	"github.com/anachak/anachak/internal/common/cnst"
	"github.com/anachak/anachak/internal/i18n"
	"github.com/anachak/anachak/internal/session"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Authenticator validates bearer tokens and resolves who holds them
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*jwt.Claims, *session.Session, error)
	Identify(ctx context.Context, sess *session.Session) (*session.Identity, error)
}

// SessionAuth rejects requests without a valid token and session. The identity
// is resolved once here; when that fails the request continues without one.
func SessionAuth(auth Authenticator, logger *zap.Logger) gin.HandlerFunc {
	logger = logger.Named("middleware.auth")
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			i18n.RespondWithError(c, i18n.ErrUnauthorized)
			return
		}

		ctx := c.Request.Context()
		claims, sess, err := auth.Authenticate(ctx, token)
		if err != nil {
			i18n.RespondWithError(c, i18n.ErrorSessionExpired)
			return
		}
		c.Set(cnst.CtxKeyClaims, claims)
		c.Set(cnst.CtxKeySession, sess)

		identity, err := auth.Identify(ctx, sess)
		if err != nil {
			logger.Warn("failed to resolve caller identity",
				zap.Uint("user_id", sess.UserID),
				zap.String("path", c.Request.URL.Path),
				zap.Error(err))
			c.Next()
			return
		}
		c.Set(cnst.CtxKeyIdentity, identity)
		c.Next()
	}
}

// RequireIdentity answers 401 when the caller identity could not be resolved
func RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IdentityFrom(c) == nil {
			i18n.RespondWithError(c, i18n.ErrUnauthorized)
			return
		}
		c.Next()
	}
}

// RequireSuperAdmin guards routes only a super admin may reach
func RequireSuperAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := IdentityFrom(c)
		if identity == nil {
			i18n.RespondWithError(c, i18n.ErrUnauthorized)
			return
		}
		if !identity.IsSuperAdmin() {
			i18n.RespondWithError(c, i18n.ErrorSuperAdminRequired)
			return
		}
		c.Next()
	}
}

// IdentityFrom returns the identity resolved by SessionAuth, or nil
func IdentityFrom(c *gin.Context) *session.Identity {
	v, ok := c.Get(cnst.CtxKeyIdentity)
	if !ok {
		return nil
	}
	identity, _ := v.(*session.Identity)
	return identity
}

// ScopeFrom returns the visibility scope of the caller, or nil when unresolved
func ScopeFrom(c *gin.Context) *access.Scope {
	identity := IdentityFrom(c)
	if identity == nil {
		return nil
	}
	scope := identity.Scope()
	return &scope
}

// SessionFrom returns the session loaded by SessionAuth, or nil
func SessionFrom(c *gin.Context) *session.Session {
	v, ok := c.Get(cnst.CtxKeySession)
	if !ok {
		return nil
	}
	sess, _ := v.(*session.Session)
	return sess
}

func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}
