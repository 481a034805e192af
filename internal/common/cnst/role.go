package cnst

// Role names as stored in the roles table
const (
	RoleSuperAdmin = "super admin"
	RoleUser       = "user"
)

// Gin context keys set by the auth middleware
const (
	CtxKeyClaims   = "claims"
	CtxKeyIdentity = "identity"
	CtxKeySession  = "session"
)

const (
	DefaultPageSize = 8
	MaxPageSize     = 100
)
