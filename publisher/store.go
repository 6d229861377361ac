package publisher

import (
	"context"

	"github.com/agentwire/ledger/addr"
)

// Store is the persistence contract of the publisher ledger. Method names
// match the unified store interface so any full store satisfies this view.
type Store interface {
	CreatePublisherRegistry(ctx context.Context, r *Registry) error
	GetPublisherRegistry(ctx context.Context) (*Registry, error)
	UpdatePublisherRegistry(ctx context.Context, r *Registry) error

	CreatePublisher(ctx context.Context, p *Publisher) error
	GetPublisher(ctx context.Context, key addr.Key) (*Publisher, error)
	UpdatePublisher(ctx context.Context, p *Publisher) error
}
