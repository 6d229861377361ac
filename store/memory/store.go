// Package memory provides an in-memory Store for tests and ephemeral use.
package memory

import (
	"context"
	"sync"

	"github.com/agentwire/ledger"
	"github.com/agentwire/ledger/addr"
	"github.com/agentwire/ledger/alert"
	"github.com/agentwire/ledger/publisher"
	"github.com/agentwire/ledger/subscriber"
)

type Store struct {
	mu sync.RWMutex

	// Alert ledger storage
	alertRegistry *alert.Registry
	alerts        map[addr.Key]*alert.Alert
	deliveries    map[addr.Key][]*alert.Delivery // keyed by alert key
	deliveryKeys  map[addr.Key]struct{}

	// Publisher ledger storage
	publisherRegistry *publisher.Registry
	publishers        map[addr.Key]*publisher.Publisher

	// Subscription ledger storage
	protocolConfig *subscriber.Config
	subscribers    map[addr.Key]*subscriber.Subscriber
	receipts       map[addr.Key][]*subscriber.Receipt // keyed by subscriber key
	receiptKeys    map[addr.Key]struct{}
}

func New() *Store {
	return &Store{
		alerts:       make(map[addr.Key]*alert.Alert),
		deliveries:   make(map[addr.Key][]*alert.Delivery),
		deliveryKeys: make(map[addr.Key]struct{}),
		publishers:   make(map[addr.Key]*publisher.Publisher),
		subscribers:  make(map[addr.Key]*subscriber.Subscriber),
		receipts:     make(map[addr.Key][]*subscriber.Receipt),
		receiptKeys:  make(map[addr.Key]struct{}),
	}
}

// ──────────────────────────────────────────────────
// Alert ledger
// ──────────────────────────────────────────────────

func (s *Store) CreateAlertRegistry(_ context.Context, r *alert.Registry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.alertRegistry != nil {
		return ledger.ErrAlreadyInitialized
	}
	s.alertRegistry = r
	return nil
}

func (s *Store) GetAlertRegistry(_ context.Context) (*alert.Registry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.alertRegistry == nil {
		return nil, ledger.ErrNotInitialized
	}
	return s.alertRegistry, nil
}

func (s *Store) UpdateAlertRegistry(_ context.Context, r *alert.Registry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.alertRegistry == nil {
		return ledger.ErrNotInitialized
	}
	s.alertRegistry = r
	return nil
}

func (s *Store) CreateAlert(_ context.Context, a *alert.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.alerts[a.Key]; exists {
		return ledger.ErrAlertExists
	}
	s.alerts[a.Key] = a
	return nil
}

func (s *Store) GetAlert(_ context.Context, key addr.Key) (*alert.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if a, ok := s.alerts[key]; ok {
		return a, nil
	}
	return nil, ledger.ErrAlertNotFound
}

func (s *Store) UpdateAlert(_ context.Context, a *alert.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.alerts[a.Key]; !exists {
		return ledger.ErrAlertNotFound
	}
	s.alerts[a.Key] = a
	return nil
}

func (s *Store) AppendAlertDelivery(_ context.Context, d *alert.Delivery) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.deliveryKeys[d.Key]; exists {
		return ledger.ErrDeliveryExists
	}
	s.deliveryKeys[d.Key] = struct{}{}
	s.deliveries[d.AlertKey] = append(s.deliveries[d.AlertKey], d)
	return nil
}

func (s *Store) ListAlertDeliveries(_ context.Context, alertKey addr.Key) ([]*alert.Delivery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.deliveries[alertKey]
	result := make([]*alert.Delivery, len(list))
	copy(result, list)
	return result, nil
}

// ──────────────────────────────────────────────────
// Publisher ledger
// ──────────────────────────────────────────────────

func (s *Store) CreatePublisherRegistry(_ context.Context, r *publisher.Registry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.publisherRegistry != nil {
		return ledger.ErrAlreadyInitialized
	}
	s.publisherRegistry = r
	return nil
}

func (s *Store) GetPublisherRegistry(_ context.Context) (*publisher.Registry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.publisherRegistry == nil {
		return nil, ledger.ErrNotInitialized
	}
	return s.publisherRegistry, nil
}

func (s *Store) UpdatePublisherRegistry(_ context.Context, r *publisher.Registry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.publisherRegistry == nil {
		return ledger.ErrNotInitialized
	}
	s.publisherRegistry = r
	return nil
}

func (s *Store) CreatePublisher(_ context.Context, p *publisher.Publisher) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.publishers[p.Key]; exists {
		return ledger.ErrPublisherExists
	}
	s.publishers[p.Key] = p
	return nil
}

func (s *Store) GetPublisher(_ context.Context, key addr.Key) (*publisher.Publisher, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.publishers[key]; ok {
		return p, nil
	}
	return nil, ledger.ErrPublisherNotFound
}

func (s *Store) UpdatePublisher(_ context.Context, p *publisher.Publisher) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.publishers[p.Key]; !exists {
		return ledger.ErrPublisherNotFound
	}
	s.publishers[p.Key] = p
	return nil
}

// ──────────────────────────────────────────────────
// Subscription ledger
// ──────────────────────────────────────────────────

func (s *Store) CreateProtocolConfig(_ context.Context, c *subscriber.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.protocolConfig != nil {
		return ledger.ErrAlreadyInitialized
	}
	s.protocolConfig = c
	return nil
}

func (s *Store) GetProtocolConfig(_ context.Context) (*subscriber.Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.protocolConfig == nil {
		return nil, ledger.ErrNotInitialized
	}
	return s.protocolConfig, nil
}

func (s *Store) UpdateProtocolConfig(_ context.Context, c *subscriber.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.protocolConfig == nil {
		return ledger.ErrNotInitialized
	}
	s.protocolConfig = c
	return nil
}

func (s *Store) CreateSubscriber(_ context.Context, sub *subscriber.Subscriber) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.subscribers[sub.Key]; exists {
		return ledger.ErrSubscriberExists
	}
	s.subscribers[sub.Key] = sub
	return nil
}

func (s *Store) GetSubscriber(_ context.Context, key addr.Key) (*subscriber.Subscriber, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if sub, ok := s.subscribers[key]; ok {
		return sub, nil
	}
	return nil, ledger.ErrSubscriberNotFound
}

func (s *Store) UpdateSubscriber(_ context.Context, sub *subscriber.Subscriber) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.subscribers[sub.Key]; !exists {
		return ledger.ErrSubscriberNotFound
	}
	s.subscribers[sub.Key] = sub
	return nil
}

func (s *Store) AppendReceipt(_ context.Context, r *subscriber.Receipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.receiptKeys[r.Key]; exists {
		return ledger.ErrReceiptExists
	}
	s.receiptKeys[r.Key] = struct{}{}
	s.receipts[r.SubscriberKey] = append(s.receipts[r.SubscriberKey], r)
	return nil
}

func (s *Store) ListReceipts(_ context.Context, subscriberKey addr.Key) ([]*subscriber.Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.receipts[subscriberKey]
	result := make([]*subscriber.Receipt, len(list))
	copy(result, list)
	return result, nil
}

// ──────────────────────────────────────────────────
// Core
// ──────────────────────────────────────────────────

func (s *Store) Migrate(_ context.Context) error { return nil }

func (s *Store) Ping(_ context.Context) error { return nil }

func (s *Store) Close() error { return nil }
