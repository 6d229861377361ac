package store

import (
	"context"

	"github.com/agentwire/ledger/addr"
	"github.com/agentwire/ledger/alert"
	"github.com/agentwire/ledger/publisher"
	"github.com/agentwire/ledger/subscriber"
)

// Store is the unified storage interface for all Ledger entities.
// Instead of embedding the per-ledger sub-interfaces, we explicitly declare
// all methods to avoid naming conflicts.
type Store interface {
	// Alert ledger methods
	CreateAlertRegistry(ctx context.Context, r *alert.Registry) error
	GetAlertRegistry(ctx context.Context) (*alert.Registry, error)
	UpdateAlertRegistry(ctx context.Context, r *alert.Registry) error
	CreateAlert(ctx context.Context, a *alert.Alert) error
	GetAlert(ctx context.Context, key addr.Key) (*alert.Alert, error)
	UpdateAlert(ctx context.Context, a *alert.Alert) error
	AppendAlertDelivery(ctx context.Context, d *alert.Delivery) error
	ListAlertDeliveries(ctx context.Context, alertKey addr.Key) ([]*alert.Delivery, error)

	// Publisher ledger methods
	CreatePublisherRegistry(ctx context.Context, r *publisher.Registry) error
	GetPublisherRegistry(ctx context.Context) (*publisher.Registry, error)
	UpdatePublisherRegistry(ctx context.Context, r *publisher.Registry) error
	CreatePublisher(ctx context.Context, p *publisher.Publisher) error
	GetPublisher(ctx context.Context, key addr.Key) (*publisher.Publisher, error)
	UpdatePublisher(ctx context.Context, p *publisher.Publisher) error

	// Subscription ledger methods
	CreateProtocolConfig(ctx context.Context, c *subscriber.Config) error
	GetProtocolConfig(ctx context.Context) (*subscriber.Config, error)
	UpdateProtocolConfig(ctx context.Context, c *subscriber.Config) error
	CreateSubscriber(ctx context.Context, s *subscriber.Subscriber) error
	GetSubscriber(ctx context.Context, key addr.Key) (*subscriber.Subscriber, error)
	UpdateSubscriber(ctx context.Context, s *subscriber.Subscriber) error
	AppendReceipt(ctx context.Context, r *subscriber.Receipt) error
	ListReceipts(ctx context.Context, subscriberKey addr.Key) ([]*subscriber.Receipt, error)

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
