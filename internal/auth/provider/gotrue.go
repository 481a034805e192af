package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anachak/anachak/internal/common/config"
	"github.com/anachak/anachak/pkg/metrics"
	"github.com/anachak/anachak/pkg/trace"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const collaborator = "auth"

// GoTrue is the hosted authentication REST API
type GoTrue struct {
	client     *resty.Client
	serviceKey string
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

type gotrueUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type gotrueToken struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	ExpiresIn    int64      `json:"expires_in"`
	User         gotrueUser `json:"user"`
}

type gotrueError struct {
	Error       string `json:"error"`
	Description string `json:"error_description"`
	Msg         string `json:"msg"`
	Message     string `json:"message"`
	Code        any    `json:"code"`
}

func (e *gotrueError) text() string {
	for _, s := range []string{e.Description, e.Msg, e.Message, e.Error} {
		if s != "" {
			return s
		}
	}
	return "unknown error"
}

// NewGoTrue creates a client for <url>/auth/v1
func NewGoTrue(cfg config.GoTrueConfig, m *metrics.Metrics, logger *zap.Logger) *GoTrue {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.URL, "/")+"/auth/v1").
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("apikey", cfg.AnonKey)
	return &GoTrue{
		client:     client,
		serviceKey: cfg.ServiceRoleKey,
		metrics:    m,
		logger:     logger.Named("provider.gotrue"),
	}
}

func (g *GoTrue) request(ctx context.Context) *resty.Request {
	return g.client.R().SetContext(ctx).SetError(&gotrueError{})
}

func (g *GoTrue) admin(ctx context.Context) *resty.Request {
	return g.request(ctx).
		SetHeader("apikey", g.serviceKey).
		SetAuthToken(g.serviceKey)
}

// call runs one request and records metrics and a span around it
func (g *GoTrue) call(ctx context.Context, op string, fn func(ctx context.Context) (*resty.Response, error)) (*resty.Response, error) {
	start := time.Now()
	span := trace.Tracer("auth").Start(ctx, "auth."+op).WithAttrs(attribute.String("collaborator", collaborator))
	defer span.End()

	resp, err := fn(span.Ctx)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrUnavailable, err)
	} else if resp.StatusCode() >= http.StatusInternalServerError {
		err = fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode())
	}
	span.Fail(err)
	g.metrics.RemoteCall(collaborator, op, start, err)
	if errors.Is(err, context.Canceled) {
		g.logger.Debug("auth call canceled", zap.String("op", op))
		return nil, err
	}
	if err != nil {
		g.logger.Error("auth call failed", zap.String("op", op), zap.Error(err))
		return nil, err
	}
	return resp, nil
}

func errorText(resp *resty.Response) string {
	if e, ok := resp.Error().(*gotrueError); ok && e != nil {
		return e.text()
	}
	return resp.String()
}

// SignIn exchanges email and password for an access token
func (g *GoTrue) SignIn(ctx context.Context, email, password string) (*AuthSession, error) {
	var token gotrueToken
	resp, err := g.call(ctx, "sign_in", func(ctx context.Context) (*resty.Response, error) {
		return g.request(ctx).
			SetQueryParam("grant_type", "password").
			SetBody(map[string]string{"email": email, "password": password}).
			SetResult(&token).
			Post("/token")
	})
	if err != nil {
		return nil, err
	}
	switch resp.StatusCode() {
	case http.StatusOK:
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusUnprocessableEntity:
		return nil, ErrInvalidCredentials
	default:
		return nil, fmt.Errorf("sign in rejected (status %d): %s", resp.StatusCode(), errorText(resp))
	}
	return &AuthSession{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(token.ExpiresIn) * time.Second),
		User:         AuthUser{ID: token.User.ID, Email: token.User.Email},
	}, nil
}

// GetUser returns the account behind an access token
func (g *GoTrue) GetUser(ctx context.Context, accessToken string) (*AuthUser, error) {
	var user gotrueUser
	resp, err := g.call(ctx, "get_user", func(ctx context.Context) (*resty.Response, error) {
		return g.request(ctx).SetAuthToken(accessToken).SetResult(&user).Get("/user")
	})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden {
		return nil, ErrInvalidToken
	}
	if resp.IsError() {
		return nil, fmt.Errorf("get user rejected (status %d): %s", resp.StatusCode(), errorText(resp))
	}
	return &AuthUser{ID: user.ID, Email: user.Email}, nil
}

// SignOut revokes the access token
func (g *GoTrue) SignOut(ctx context.Context, accessToken string) error {
	resp, err := g.call(ctx, "sign_out", func(ctx context.Context) (*resty.Response, error) {
		return g.request(ctx).SetAuthToken(accessToken).Post("/logout")
	})
	if err != nil {
		return err
	}
	if resp.IsError() && resp.StatusCode() != http.StatusUnauthorized {
		return fmt.Errorf("sign out rejected (status %d): %s", resp.StatusCode(), errorText(resp))
	}
	return nil
}

// CreateUser provisions a confirmed account through the admin API
func (g *GoTrue) CreateUser(ctx context.Context, email, password string) (*AuthUser, error) {
	var user gotrueUser
	resp, err := g.call(ctx, "create_user", func(ctx context.Context) (*resty.Response, error) {
		return g.admin(ctx).
			SetBody(map[string]any{"email": email, "password": password, "email_confirm": true}).
			SetResult(&user).
			Post("/admin/users")
	})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() == http.StatusUnprocessableEntity || resp.StatusCode() == http.StatusConflict {
		return nil, fmt.Errorf("%w: %s", ErrUserExists, errorText(resp))
	}
	if resp.IsError() {
		return nil, fmt.Errorf("create user rejected (status %d): %s", resp.StatusCode(), errorText(resp))
	}
	return &AuthUser{ID: user.ID, Email: user.Email}, nil
}

// UpdateUser changes email and, when not empty, password through the admin API
func (g *GoTrue) UpdateUser(ctx context.Context, authID, email, password string) (*AuthUser, error) {
	body := map[string]any{"email": email}
	if password != "" {
		body["password"] = password
	}
	var user gotrueUser
	resp, err := g.call(ctx, "update_user", func(ctx context.Context) (*resty.Response, error) {
		return g.admin(ctx).SetBody(body).SetResult(&user).Put("/admin/users/" + authID)
	})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, ErrUserNotFound
	}
	if resp.IsError() {
		return nil, fmt.Errorf("update user rejected (status %d): %s", resp.StatusCode(), errorText(resp))
	}
	return &AuthUser{ID: user.ID, Email: user.Email}, nil
}

// DeleteUser removes the account through the admin API
func (g *GoTrue) DeleteUser(ctx context.Context, authID string) error {
	if authID == "" {
		return ErrUserNotFound
	}
	resp, err := g.call(ctx, "delete_user", func(ctx context.Context) (*resty.Response, error) {
		return g.admin(ctx).Delete("/admin/users/" + authID)
	})
	if err != nil {
		return err
	}
	if resp.StatusCode() == http.StatusNotFound {
		return ErrUserNotFound
	}
	if resp.IsError() {
		return fmt.Errorf("delete user rejected (status %d): %s", resp.StatusCode(), errorText(resp))
	}
	return nil
}

var _ Provider = (*GoTrue)(nil)
