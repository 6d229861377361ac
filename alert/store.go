package alert

import (
	"context"

	"github.com/agentwire/ledger/addr"
)

// Store is the persistence contract of the alert ledger. Method names match
// the unified store interface so any full store satisfies this view.
type Store interface {
	CreateAlertRegistry(ctx context.Context, r *Registry) error
	GetAlertRegistry(ctx context.Context) (*Registry, error)
	UpdateAlertRegistry(ctx context.Context, r *Registry) error

	CreateAlert(ctx context.Context, a *Alert) error
	GetAlert(ctx context.Context, key addr.Key) (*Alert, error)
	UpdateAlert(ctx context.Context, a *Alert) error

	AppendAlertDelivery(ctx context.Context, d *Delivery) error
	ListAlertDeliveries(ctx context.Context, alertKey addr.Key) ([]*Delivery, error)
}
