package confirm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/anachak/anachak/internal/access"
	"github.com/anachak/anachak/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultTTL is how long a staged delete waits for confirmation
const DefaultTTL = 5 * time.Minute

// Deleter performs the delete of one row visible to scope
type Deleter func(ctx context.Context, scope access.Scope, id uint) error

// Resource describes one deletable table
type Resource struct {
	Name string
	Noun string
	// Delete runs once per confirmed dialog
	Delete Deleter
	// Guard refuses a delete at stage time, before any confirmation
	Guard func(ctx context.Context, scope access.Scope, id uint) error
	// Affects lists the shops whose public menu shows the row. nil means every menu.
	Affects func(ctx context.Context, scope access.Scope, id uint) ([]uint, error)
}

// Invalidator drops cached public menus after a successful delete
type Invalidator interface {
	InvalidateShops(ctx context.Context, shopIDs ...uint)
	InvalidateAll(ctx context.Context)
}

// Manager keeps pending dialogs keyed by token
type Manager struct {
	mu        sync.Mutex
	dialogs   map[string]*Dialog
	resources map[string]Resource

	ttl         time.Duration
	now         func() time.Time
	reason      func(error) string
	invalidator Invalidator
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

// Option configures a Manager
type Option func(*Manager)

// WithTTL sets how long a staged delete stays confirmable
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithReason sets how a failed delete is described to the user
func WithReason(fn func(error) string) Option {
	return func(m *Manager) { m.reason = fn }
}

// WithInvalidator sets the menu cache invalidated after successful deletes
func WithInvalidator(inv Invalidator) Option {
	return func(m *Manager) { m.invalidator = inv }
}

// WithMetrics records delete outcomes
func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Manager) { m.metrics = mt }
}

// NewManager creates a new confirmation manager
func NewManager(logger *zap.Logger, opts ...Option) *Manager {
	m := &Manager{
		dialogs:   make(map[string]*Dialog),
		resources: make(map[string]Resource),
		ttl:       DefaultTTL,
		now:       time.Now,
		reason:    func(err error) string { return err.Error() },
		logger:    logger.Named("confirm"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Register adds a deletable resource
func (m *Manager) Register(r Resource) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resources[normalizeResource(r.Name)] = r
}

// Resources lists the registered resource names
func (m *Manager) Resources() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.resources))
	for name := range m.resources {
		names = append(names, name)
	}
	return names
}

// sweep drops expired dialogs. Callers hold m.mu.
func (m *Manager) sweep(now time.Time) {
	for token, d := range m.dialogs {
		if now.After(d.ExpiresAt) && !d.inFlight {
			delete(m.dialogs, token)
		}
	}
}

// lookup returns the dialog of token if scope may act on it. Callers hold m.mu.
func (m *Manager) lookup(scope access.Scope, token string) (*Dialog, error) {
	m.sweep(m.now())
	d, ok := m.dialogs[token]
	if !ok {
		return nil, ErrUnknownToken
	}
	if d.UserID != scope.UserID {
		return nil, ErrNotOwner
	}
	return d, nil
}

// Stage moves a target into the confirm state. Nothing is deleted.
func (m *Manager) Stage(ctx context.Context, scope access.Scope, resource string, id uint) (*View, error) {
	m.mu.Lock()
	r, ok := m.resources[normalizeResource(resource)]
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownResource, resource)
	}
	if r.Guard != nil {
		if err := r.Guard(ctx, scope, id); err != nil {
			return nil, err
		}
	}
	var shops []uint
	if r.Affects != nil {
		ids, err := r.Affects(ctx, scope, id)
		if err != nil {
			return nil, err
		}
		shops = ids
	}

	now := m.now()
	d := newDialog(uuid.NewString(), normalizeResource(r.Name), r.Noun, id, scope.UserID, now, m.ttl)
	d.shops = shops

	m.mu.Lock()
	m.sweep(now)
	m.dialogs[d.Token] = d
	m.mu.Unlock()
	return d.view(), nil
}

// Get returns the current view of a dialog
func (m *Manager) Get(_ context.Context, scope access.Scope, token string) (*View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, err := m.lookup(scope, token)
	if err != nil {
		return nil, err
	}
	return d.view(), nil
}

// Confirm issues exactly one delete call and moves the dialog to success or error
func (m *Manager) Confirm(ctx context.Context, scope access.Scope, token string) (*View, error) {
	m.mu.Lock()
	d, err := m.lookup(scope, token)
	if err == nil {
		err = d.begin()
	}
	var r Resource
	if err == nil {
		r = m.resources[d.Resource]
	}
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}

	delErr := r.Delete(ctx, scope, d.TargetID)

	m.mu.Lock()
	d.finish(delErr, m.reason)
	view := d.view()
	m.mu.Unlock()

	if delErr != nil {
		m.metrics.Deletion(d.Resource, "error")
		m.logger.Warn("delete failed",
			zap.String("resource", d.Resource),
			zap.Uint("id", d.TargetID),
			zap.Uint("user_id", scope.UserID),
			zap.Error(delErr))
		return view, nil
	}

	m.metrics.Deletion(d.Resource, "success")
	m.logger.Info("deleted",
		zap.String("resource", d.Resource),
		zap.Uint("id", d.TargetID),
		zap.Uint("user_id", scope.UserID))
	if m.invalidator != nil {
		if r.Affects == nil {
			m.invalidator.InvalidateAll(ctx)
		} else if len(d.shops) > 0 {
			m.invalidator.InvalidateShops(ctx, d.shops...)
		}
	}
	return view, nil
}

// Cancel dismisses a confirm dialog without a mutation
func (m *Manager) Cancel(_ context.Context, scope access.Scope, token string) (*View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, err := m.lookup(scope, token)
	if err != nil {
		return nil, err
	}
	if err := d.cancel(); err != nil {
		return nil, err
	}
	delete(m.dialogs, token)
	m.metrics.Deletion(d.Resource, "canceled")
	return d.view(), nil
}

// Close dismisses a result dialog. After a success it returns the row the
// client should remove; after a failure it returns nil.
func (m *Manager) Close(_ context.Context, scope access.Scope, token string) (*View, *Reconcile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, err := m.lookup(scope, token)
	if err != nil {
		return nil, nil, err
	}
	succeeded, err := d.close()
	if err != nil {
		return nil, nil, err
	}
	delete(m.dialogs, token)
	if !succeeded {
		return d.view(), nil, nil
	}
	return d.view(), &Reconcile{Resource: d.Resource, Remove: d.TargetID}, nil
}
