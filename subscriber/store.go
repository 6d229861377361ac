package subscriber

import (
	"context"

	"github.com/agentwire/ledger/addr"
)

// Store is the persistence contract of the subscription ledger. Method
// names match the unified store interface so any full store satisfies
// this view.
type Store interface {
	CreateProtocolConfig(ctx context.Context, c *Config) error
	GetProtocolConfig(ctx context.Context) (*Config, error)
	UpdateProtocolConfig(ctx context.Context, c *Config) error

	CreateSubscriber(ctx context.Context, s *Subscriber) error
	GetSubscriber(ctx context.Context, key addr.Key) (*Subscriber, error)
	UpdateSubscriber(ctx context.Context, s *Subscriber) error

	AppendReceipt(ctx context.Context, r *Receipt) error
	ListReceipts(ctx context.Context, subscriberKey addr.Key) ([]*Receipt, error)
}
