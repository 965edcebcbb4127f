package notification

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"airwise-backend/config"
	"airwise-backend/internal/model"
	"airwise-backend/internal/store"
)

// Notification statuses.
const (
	StatusInfo    = "info"
	StatusWarning = "warning"
)

// Dispatcher hands a stored notification to the delivery channels.
type Dispatcher interface {
	Dispatch(d Delivery)
}

// Notifier stores Notification objects under the user's tenant and queues
// them for delivery.
type Notifier struct {
	store      store.Store
	sys        config.SystemConfig
	clock      clockwork.Clock
	dispatcher Dispatcher
	log        *zap.Logger
}

func NewNotifier(s store.Store, sys config.SystemConfig, clock clockwork.Clock, d Dispatcher, log *zap.Logger) *Notifier {
	return &Notifier{store: s, sys: sys, clock: clock, dispatcher: d, log: log}
}

// With returns a copy of n that reads and writes through s, typically a
// transaction-bound store.
func (n *Notifier) With(s store.Store) *Notifier {
	c := *n
	c.store = s
	return &c
}

// SystemOperator returns the internal operator account, creating it on first use.
func SystemOperator(ctx context.Context, s store.Store, sys config.SystemConfig) (*model.User, error) {
	return store.EnsureUser(ctx, s, model.User{
		ID:       sys.Key(model.SystemOperatorEmail),
		Role:     model.RoleOperator,
		Username: model.SystemOperatorName,
		Avatar:   model.SystemOperatorName,
	})
}

// Info stores an informational notification for the tenant whose alias is
// email. Users without a tenant are skipped.
func (n *Notifier) Info(ctx context.Context, email, title, message string) error {
	tenant, err := n.tenant(ctx, email)
	if err != nil || tenant == nil {
		return err
	}
	_, local := n.sys.Split(tenant.ID)
	return n.create(ctx, email, tenant, "info-notification-"+local, StatusInfo, title, message,
		map[string]any{"message": message})
}

// Alert stores a warning notification unless the tenant's latest alert is
// younger than cooldown. It reports whether a notification was created.
func (n *Notifier) Alert(ctx context.Context, email, title, message string, cooldown time.Duration) (bool, error) {
	tenant, err := n.tenant(ctx, email)
	if err != nil || tenant == nil {
		return false, err
	}
	_, local := n.sys.Split(tenant.ID)
	alias := "alert-notification-" + local

	last, err := store.LatestActiveByAlias(ctx, n.store, alias)
	switch {
	case err == nil:
		if n.clock.Since(last.CreatedAt) < cooldown {
			n.log.Debug("alert suppressed by cooldown", zap.String("tenant", tenant.ID))
			return false, nil
		}
	case !errors.Is(err, store.ErrNotFound):
		return false, err
	}

	err = n.create(ctx, email, tenant, alias, StatusWarning, title, message,
		map[string]any{"title": title, "message": message})
	return err == nil, err
}

func (n *Notifier) tenant(ctx context.Context, email string) (*model.Object, error) {
	tenant, err := store.LatestActiveByAlias(ctx, n.store, email)
	if errors.Is(err, store.ErrNotFound) {
		n.log.Debug("no tenant for notification recipient", zap.String("email", email))
		return nil, nil
	}
	return tenant, err
}

func (n *Notifier) create(ctx context.Context, email string, tenant *model.Object, alias, status, title, message string, details map[string]any) error {
	operator, err := SystemOperator(ctx, n.store, n.sys)
	if err != nil {
		return err
	}

	obj := &model.Object{
		ID:        n.sys.Key(uuid.NewString()),
		Type:      model.TypeNotification,
		Alias:     alias,
		Status:    status,
		Active:    true,
		CreatedAt: n.clock.Now(),
		CreatedBy: operator.ID,
		Details:   model.CloneDetails(details),
	}
	if err := n.store.SaveObject(ctx, obj); err != nil {
		return err
	}

	if n.dispatcher != nil {
		n.dispatcher.Dispatch(Delivery{
			NotificationID: obj.ID,
			TenantID:       tenant.ID,
			UserID:         n.sys.Key(email),
			Email:          email,
			Status:         status,
			Title:          title,
			Message:        message,
			CreatedAt:      obj.CreatedAt,
		})
	}
	return nil
}
