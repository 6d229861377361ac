// Package mongo implements the unified Store on MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/agentwire/ledger"
	"github.com/agentwire/ledger/addr"
	"github.com/agentwire/ledger/alert"
	"github.com/agentwire/ledger/publisher"
	ledgerstore "github.com/agentwire/ledger/store"
	"github.com/agentwire/ledger/subscriber"
)

// Collection name constants.
const (
	colAlertRegistry     = "ledger_alert_registry"
	colAlerts            = "ledger_alerts"
	colDeliveries        = "ledger_alert_deliveries"
	colPublisherRegistry = "ledger_publisher_registry"
	colPublishers        = "ledger_publishers"
	colProtocolConfig    = "ledger_protocol_config"
	colSubscribers       = "ledger_subscribers"
	colReceipts          = "ledger_receipts"
)

// compile-time interface check
var _ ledgerstore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// New creates a new MongoDB store on the given database.
func New(client *mongo.Client, database string) *Store {
	return &Store{
		client: client,
		db:     client.Database(database),
	}
}

// Database returns the underlying database for direct access.
func (s *Store) Database() *mongo.Database { return s.db }

// Migrate creates indexes for all ledger collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()

	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.db.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("ledger/mongo: migrate %s indexes: %w", col, err)
		}
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close disconnects the client.
func (s *Store) Close() error {
	return s.client.Disconnect(context.Background())
}

// ==================== Alert ledger ====================

func (s *Store) CreateAlertRegistry(ctx context.Context, r *alert.Registry) error {
	_, err := s.db.Collection(colAlertRegistry).InsertOne(ctx, toAlertRegistryModel(r))
	if mongo.IsDuplicateKeyError(err) {
		return ledger.ErrAlreadyInitialized
	}
	if err != nil {
		return fmt.Errorf("ledger/mongo: create alert registry: %w", err)
	}
	return nil
}

func (s *Store) GetAlertRegistry(ctx context.Context) (*alert.Registry, error) {
	var m alertRegistryModel
	err := s.db.Collection(colAlertRegistry).FindOne(ctx, bson.M{}).Decode(&m)
	if isNoDocuments(err) {
		return nil, ledger.ErrNotInitialized
	}
	if err != nil {
		return nil, fmt.Errorf("ledger/mongo: get alert registry: %w", err)
	}
	return fromAlertRegistryModel(&m)
}

func (s *Store) UpdateAlertRegistry(ctx context.Context, r *alert.Registry) error {
	m := toAlertRegistryModel(r)
	res, err := s.db.Collection(colAlertRegistry).ReplaceOne(ctx, bson.M{"_id": m.Key}, m)
	if err != nil {
		return fmt.Errorf("ledger/mongo: update alert registry: %w", err)
	}
	if res.MatchedCount == 0 {
		return ledger.ErrNotInitialized
	}
	return nil
}

func (s *Store) CreateAlert(ctx context.Context, a *alert.Alert) error {
	_, err := s.db.Collection(colAlerts).InsertOne(ctx, toAlertModel(a))
	if mongo.IsDuplicateKeyError(err) {
		return ledger.ErrAlertExists
	}
	if err != nil {
		return fmt.Errorf("ledger/mongo: create alert: %w", err)
	}
	return nil
}

func (s *Store) GetAlert(ctx context.Context, key addr.Key) (*alert.Alert, error) {
	var m alertModel
	err := s.db.Collection(colAlerts).FindOne(ctx, bson.M{"_id": string(key)}).Decode(&m)
	if isNoDocuments(err) {
		return nil, ledger.ErrAlertNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ledger/mongo: get alert: %w", err)
	}
	return fromAlertModel(&m)
}

func (s *Store) UpdateAlert(ctx context.Context, a *alert.Alert) error {
	m := toAlertModel(a)
	res, err := s.db.Collection(colAlerts).ReplaceOne(ctx, bson.M{"_id": m.Key}, m)
	if err != nil {
		return fmt.Errorf("ledger/mongo: update alert: %w", err)
	}
	if res.MatchedCount == 0 {
		return ledger.ErrAlertNotFound
	}
	return nil
}

func (s *Store) AppendAlertDelivery(ctx context.Context, d *alert.Delivery) error {
	_, err := s.db.Collection(colDeliveries).InsertOne(ctx, toDeliveryModel(d))
	if mongo.IsDuplicateKeyError(err) {
		return ledger.ErrDeliveryExists
	}
	if err != nil {
		return fmt.Errorf("ledger/mongo: append delivery: %w", err)
	}
	return nil
}

func (s *Store) ListAlertDeliveries(ctx context.Context, alertKey addr.Key) ([]*alert.Delivery, error) {
	cursor, err := s.db.Collection(colDeliveries).Find(ctx,
		bson.M{"alert_key": string(alertKey)},
		options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("ledger/mongo: list deliveries: %w", err)
	}
	defer cursor.Close(ctx)

	result := make([]*alert.Delivery, 0)
	for cursor.Next(ctx) {
		var m deliveryModel
		if err := cursor.Decode(&m); err != nil {
			return nil, fmt.Errorf("ledger/mongo: decode delivery: %w", err)
		}
		d, err := fromDeliveryModel(&m)
		if err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, cursor.Err()
}

// ==================== Publisher ledger ====================

func (s *Store) CreatePublisherRegistry(ctx context.Context, r *publisher.Registry) error {
	_, err := s.db.Collection(colPublisherRegistry).InsertOne(ctx, toPublisherRegistryModel(r))
	if mongo.IsDuplicateKeyError(err) {
		return ledger.ErrAlreadyInitialized
	}
	if err != nil {
		return fmt.Errorf("ledger/mongo: create publisher registry: %w", err)
	}
	return nil
}

func (s *Store) GetPublisherRegistry(ctx context.Context) (*publisher.Registry, error) {
	var m publisherRegistryModel
	err := s.db.Collection(colPublisherRegistry).FindOne(ctx, bson.M{}).Decode(&m)
	if isNoDocuments(err) {
		return nil, ledger.ErrNotInitialized
	}
	if err != nil {
		return nil, fmt.Errorf("ledger/mongo: get publisher registry: %w", err)
	}
	return fromPublisherRegistryModel(&m)
}

func (s *Store) UpdatePublisherRegistry(ctx context.Context, r *publisher.Registry) error {
	m := toPublisherRegistryModel(r)
	res, err := s.db.Collection(colPublisherRegistry).ReplaceOne(ctx, bson.M{"_id": m.Key}, m)
	if err != nil {
		return fmt.Errorf("ledger/mongo: update publisher registry: %w", err)
	}
	if res.MatchedCount == 0 {
		return ledger.ErrNotInitialized
	}
	return nil
}

func (s *Store) CreatePublisher(ctx context.Context, p *publisher.Publisher) error {
	_, err := s.db.Collection(colPublishers).InsertOne(ctx, toPublisherModel(p))
	if mongo.IsDuplicateKeyError(err) {
		return ledger.ErrPublisherExists
	}
	if err != nil {
		return fmt.Errorf("ledger/mongo: create publisher: %w", err)
	}
	return nil
}

func (s *Store) GetPublisher(ctx context.Context, key addr.Key) (*publisher.Publisher, error) {
	var m publisherModel
	err := s.db.Collection(colPublishers).FindOne(ctx, bson.M{"_id": string(key)}).Decode(&m)
	if isNoDocuments(err) {
		return nil, ledger.ErrPublisherNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ledger/mongo: get publisher: %w", err)
	}
	return fromPublisherModel(&m)
}

func (s *Store) UpdatePublisher(ctx context.Context, p *publisher.Publisher) error {
	m := toPublisherModel(p)
	res, err := s.db.Collection(colPublishers).ReplaceOne(ctx, bson.M{"_id": m.Key}, m)
	if err != nil {
		return fmt.Errorf("ledger/mongo: update publisher: %w", err)
	}
	if res.MatchedCount == 0 {
		return ledger.ErrPublisherNotFound
	}
	return nil
}

// ==================== Subscription ledger ====================

func (s *Store) CreateProtocolConfig(ctx context.Context, c *subscriber.Config) error {
	_, err := s.db.Collection(colProtocolConfig).InsertOne(ctx, toProtocolConfigModel(c))
	if mongo.IsDuplicateKeyError(err) {
		return ledger.ErrAlreadyInitialized
	}
	if err != nil {
		return fmt.Errorf("ledger/mongo: create protocol config: %w", err)
	}
	return nil
}

func (s *Store) GetProtocolConfig(ctx context.Context) (*subscriber.Config, error) {
	var m protocolConfigModel
	err := s.db.Collection(colProtocolConfig).FindOne(ctx, bson.M{}).Decode(&m)
	if isNoDocuments(err) {
		return nil, ledger.ErrNotInitialized
	}
	if err != nil {
		return nil, fmt.Errorf("ledger/mongo: get protocol config: %w", err)
	}
	return fromProtocolConfigModel(&m)
}

func (s *Store) UpdateProtocolConfig(ctx context.Context, c *subscriber.Config) error {
	m := toProtocolConfigModel(c)
	res, err := s.db.Collection(colProtocolConfig).ReplaceOne(ctx, bson.M{"_id": m.Key}, m)
	if err != nil {
		return fmt.Errorf("ledger/mongo: update protocol config: %w", err)
	}
	if res.MatchedCount == 0 {
		return ledger.ErrNotInitialized
	}
	return nil
}

func (s *Store) CreateSubscriber(ctx context.Context, sub *subscriber.Subscriber) error {
	_, err := s.db.Collection(colSubscribers).InsertOne(ctx, toSubscriberModel(sub))
	if mongo.IsDuplicateKeyError(err) {
		return ledger.ErrSubscriberExists
	}
	if err != nil {
		return fmt.Errorf("ledger/mongo: create subscriber: %w", err)
	}
	return nil
}

func (s *Store) GetSubscriber(ctx context.Context, key addr.Key) (*subscriber.Subscriber, error) {
	var m subscriberModel
	err := s.db.Collection(colSubscribers).FindOne(ctx, bson.M{"_id": string(key)}).Decode(&m)
	if isNoDocuments(err) {
		return nil, ledger.ErrSubscriberNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ledger/mongo: get subscriber: %w", err)
	}
	return fromSubscriberModel(&m)
}

func (s *Store) UpdateSubscriber(ctx context.Context, sub *subscriber.Subscriber) error {
	m := toSubscriberModel(sub)
	res, err := s.db.Collection(colSubscribers).ReplaceOne(ctx, bson.M{"_id": m.Key}, m)
	if err != nil {
		return fmt.Errorf("ledger/mongo: update subscriber: %w", err)
	}
	if res.MatchedCount == 0 {
		return ledger.ErrSubscriberNotFound
	}
	return nil
}

func (s *Store) AppendReceipt(ctx context.Context, r *subscriber.Receipt) error {
	_, err := s.db.Collection(colReceipts).InsertOne(ctx, toReceiptModel(r))
	if mongo.IsDuplicateKeyError(err) {
		return ledger.ErrReceiptExists
	}
	if err != nil {
		return fmt.Errorf("ledger/mongo: append receipt: %w", err)
	}
	return nil
}

func (s *Store) ListReceipts(ctx context.Context, subscriberKey addr.Key) ([]*subscriber.Receipt, error) {
	cursor, err := s.db.Collection(colReceipts).Find(ctx,
		bson.M{"subscriber_key": string(subscriberKey)},
		options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("ledger/mongo: list receipts: %w", err)
	}
	defer cursor.Close(ctx)

	result := make([]*subscriber.Receipt, 0)
	for cursor.Next(ctx) {
		var m receiptModel
		if err := cursor.Decode(&m); err != nil {
			return nil, fmt.Errorf("ledger/mongo: decode receipt: %w", err)
		}
		r, err := fromReceiptModel(&m)
		if err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, cursor.Err()
}

// ==================== Helpers ====================

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all ledger collections.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colAlerts: {
			{Keys: bson.D{{Key: "alert_id", Value: 1}}},
			{Keys: bson.D{{Key: "publisher", Value: 1}, {Key: "timestamp", Value: -1}}},
		},
		colDeliveries: {
			{Keys: bson.D{{Key: "key", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "alert_key", Value: 1}, {Key: "timestamp", Value: 1}}},
		},
		colPublishers: {
			{Keys: bson.D{{Key: "owner", Value: 1}}},
		},
		colSubscribers: {
			{Keys: bson.D{{Key: "owner", Value: 1}}},
		},
		colReceipts: {
			{Keys: bson.D{{Key: "key", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "subscriber_key", Value: 1}, {Key: "timestamp", Value: 1}}},
		},
	}
}
