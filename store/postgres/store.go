// Package postgres implements the unified Store on PostgreSQL via pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agentwire/ledger"
	"github.com/agentwire/ledger/addr"
	"github.com/agentwire/ledger/alert"
	"github.com/agentwire/ledger/publisher"
	ledgerstore "github.com/agentwire/ledger/store"
	"github.com/agentwire/ledger/subscriber"
)

// compile-time interface check
var _ ledgerstore.Store = (*Store)(nil)

const uniqueViolation = "23505"

// Store implements store.Store using PostgreSQL via a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a new PostgreSQL store backed by the given pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Connect opens a pool for the given DSN and returns a store backed by it.
func Connect(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("ledger/postgres: connect: %w", err)
	}
	return New(pool), nil
}

// Pool returns the underlying pgx pool for direct access.
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

// Migrate creates the required tables and indexes.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("%w: %v", ledger.ErrMigrationFailed, err)
		}
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// isDuplicate reports whether err is a unique constraint violation.
func isDuplicate(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// ==================== Alert ledger ====================

func (s *Store) CreateAlertRegistry(ctx context.Context, r *alert.Registry) error {
	m := toAlertRegistryRow(r)
	_, err := s.pool.Exec(ctx, `
		INSERT INTO alert_registry (key, authority, total_alerts, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`,
		m.Key, m.Authority, m.TotalAlerts, m.CreatedAt, m.UpdatedAt)
	if isDuplicate(err) {
		return ledger.ErrAlreadyInitialized
	}
	return err
}

func (s *Store) GetAlertRegistry(ctx context.Context) (*alert.Registry, error) {
	m := new(alertRegistryRow)
	err := s.pool.QueryRow(ctx, `
		SELECT key, authority, total_alerts, created_at, updated_at
		FROM alert_registry LIMIT 1`).
		Scan(&m.Key, &m.Authority, &m.TotalAlerts, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ledger.ErrNotInitialized
	}
	if err != nil {
		return nil, err
	}
	return fromAlertRegistryRow(m)
}

func (s *Store) UpdateAlertRegistry(ctx context.Context, r *alert.Registry) error {
	m := toAlertRegistryRow(r)
	tag, err := s.pool.Exec(ctx, `
		UPDATE alert_registry
		SET authority = $2, total_alerts = $3, updated_at = $4
		WHERE key = $1`,
		m.Key, m.Authority, m.TotalAlerts, m.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ledger.ErrNotInitialized
	}
	return nil
}

func (s *Store) CreateAlert(ctx context.Context, a *alert.Alert) error {
	m := toAlertRow(a)
	_, err := s.pool.Exec(ctx, `
		INSERT INTO alerts (key, alert_id, channel, fingerprint, publisher, ts,
			priority, impact, delivery_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		m.Key, m.AlertID, m.Channel, m.Fingerprint, m.Publisher, m.Timestamp,
		m.Priority, m.Impact, m.DeliveryCount, m.CreatedAt, m.UpdatedAt)
	if isDuplicate(err) {
		return ledger.ErrAlertExists
	}
	return err
}

func (s *Store) GetAlert(ctx context.Context, key addr.Key) (*alert.Alert, error) {
	m := new(alertRow)
	err := s.pool.QueryRow(ctx, `
		SELECT key, alert_id, channel, fingerprint, publisher, ts,
			priority, impact, delivery_count, created_at, updated_at
		FROM alerts WHERE key = $1`, string(key)).
		Scan(&m.Key, &m.AlertID, &m.Channel, &m.Fingerprint, &m.Publisher, &m.Timestamp,
			&m.Priority, &m.Impact, &m.DeliveryCount, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ledger.ErrAlertNotFound
	}
	if err != nil {
		return nil, err
	}
	return fromAlertRow(m)
}

func (s *Store) UpdateAlert(ctx context.Context, a *alert.Alert) error {
	m := toAlertRow(a)
	tag, err := s.pool.Exec(ctx, `
		UPDATE alerts
		SET delivery_count = $2, updated_at = $3
		WHERE key = $1`,
		m.Key, m.DeliveryCount, m.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ledger.ErrAlertNotFound
	}
	return nil
}

func (s *Store) AppendAlertDelivery(ctx context.Context, d *alert.Delivery) error {
	m := toDeliveryRow(d)
	_, err := s.pool.Exec(ctx, `
		INSERT INTO alert_deliveries (id, key, alert_key, subscriber, ts, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		m.ID, m.Key, m.AlertKey, m.Subscriber, m.Timestamp, m.CreatedAt, m.UpdatedAt)
	if isDuplicate(err) {
		return ledger.ErrDeliveryExists
	}
	return err
}

func (s *Store) ListAlertDeliveries(ctx context.Context, alertKey addr.Key) ([]*alert.Delivery, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, key, alert_key, subscriber, ts, created_at, updated_at
		FROM alert_deliveries WHERE alert_key = $1
		ORDER BY ts`, string(alertKey))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*alert.Delivery, 0)
	for rows.Next() {
		m := new(deliveryRow)
		if err := rows.Scan(&m.ID, &m.Key, &m.AlertKey, &m.Subscriber, &m.Timestamp,
			&m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		d, err := fromDeliveryRow(m)
		if err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, rows.Err()
}

// ==================== Publisher ledger ====================

func (s *Store) CreatePublisherRegistry(ctx context.Context, r *publisher.Registry) error {
	m := toPublisherRegistryRow(r)
	_, err := s.pool.Exec(ctx, `
		INSERT INTO publisher_registry (key, authority, mint, revenue_pool, treasury,
			min_stake, publisher_share_bps, reputation_reward, reputation_penalty,
			total_publishers, total_payouts, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		m.Key, m.Authority, m.Mint, m.RevenuePool, m.Treasury,
		m.MinStake, m.PublisherShareBps, m.ReputationReward, m.ReputationPenalty,
		m.TotalPublishers, m.TotalPayouts, m.CreatedAt, m.UpdatedAt)
	if isDuplicate(err) {
		return ledger.ErrAlreadyInitialized
	}
	return err
}

func (s *Store) GetPublisherRegistry(ctx context.Context) (*publisher.Registry, error) {
	m := new(publisherRegistryRow)
	err := s.pool.QueryRow(ctx, `
		SELECT key, authority, mint, revenue_pool, treasury,
			min_stake, publisher_share_bps, reputation_reward, reputation_penalty,
			total_publishers, total_payouts, created_at, updated_at
		FROM publisher_registry LIMIT 1`).
		Scan(&m.Key, &m.Authority, &m.Mint, &m.RevenuePool, &m.Treasury,
			&m.MinStake, &m.PublisherShareBps, &m.ReputationReward, &m.ReputationPenalty,
			&m.TotalPublishers, &m.TotalPayouts, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ledger.ErrNotInitialized
	}
	if err != nil {
		return nil, err
	}
	return fromPublisherRegistryRow(m)
}

func (s *Store) UpdatePublisherRegistry(ctx context.Context, r *publisher.Registry) error {
	m := toPublisherRegistryRow(r)
	tag, err := s.pool.Exec(ctx, `
		UPDATE publisher_registry
		SET total_publishers = $2, total_payouts = $3, updated_at = $4
		WHERE key = $1`,
		m.Key, m.TotalPublishers, m.TotalPayouts, m.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ledger.ErrNotInitialized
	}
	return nil
}

func (s *Store) CreatePublisher(ctx context.Context, p *publisher.Publisher) error {
	m := toPublisherRow(p)
	_, err := s.pool.Exec(ctx, `
		INSERT INTO publishers (id, key, owner, name, metadata_uri, stake,
			stake_vault, payout_vault, reputation, alerts_submitted, alerts_accepted,
			total_earnings, registered_at, active, slashed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		m.ID, m.Key, m.Owner, m.Name, m.MetadataURI, m.Stake,
		m.StakeVault, m.PayoutVault, m.Reputation, m.AlertsSubmitted, m.AlertsAccepted,
		m.TotalEarnings, m.RegisteredAt, m.Active, m.Slashed, m.CreatedAt, m.UpdatedAt)
	if isDuplicate(err) {
		return ledger.ErrPublisherExists
	}
	return err
}

func (s *Store) GetPublisher(ctx context.Context, key addr.Key) (*publisher.Publisher, error) {
	m := new(publisherRow)
	err := s.pool.QueryRow(ctx, `
		SELECT id, key, owner, name, metadata_uri, stake,
			stake_vault, payout_vault, reputation, alerts_submitted, alerts_accepted,
			total_earnings, registered_at, active, slashed, created_at, updated_at
		FROM publishers WHERE key = $1`, string(key)).
		Scan(&m.ID, &m.Key, &m.Owner, &m.Name, &m.MetadataURI, &m.Stake,
			&m.StakeVault, &m.PayoutVault, &m.Reputation, &m.AlertsSubmitted, &m.AlertsAccepted,
			&m.TotalEarnings, &m.RegisteredAt, &m.Active, &m.Slashed, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ledger.ErrPublisherNotFound
	}
	if err != nil {
		return nil, err
	}
	return fromPublisherRow(m)
}

func (s *Store) UpdatePublisher(ctx context.Context, p *publisher.Publisher) error {
	m := toPublisherRow(p)
	tag, err := s.pool.Exec(ctx, `
		UPDATE publishers
		SET stake = $2, reputation = $3, alerts_submitted = $4, alerts_accepted = $5,
			total_earnings = $6, active = $7, slashed = $8, updated_at = $9
		WHERE key = $1`,
		m.Key, m.Stake, m.Reputation, m.AlertsSubmitted, m.AlertsAccepted,
		m.TotalEarnings, m.Active, m.Slashed, m.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ledger.ErrPublisherNotFound
	}
	return nil
}

// ==================== Subscription ledger ====================

func (s *Store) CreateProtocolConfig(ctx context.Context, c *subscriber.Config) error {
	m := toProtocolConfigRow(c)
	_, err := s.pool.Exec(ctx, `
		INSERT INTO protocol_config (key, authority, mint, treasury, revenue_pool,
			price_per_alert, treasury_fee_bps, total_subscribers,
			total_alerts_delivered, total_revenue, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		m.Key, m.Authority, m.Mint, m.Treasury, m.RevenuePool,
		m.PricePerAlert, m.TreasuryFeeBps, m.TotalSubscribers,
		m.TotalAlertsDelivered, m.TotalRevenue, m.CreatedAt, m.UpdatedAt)
	if isDuplicate(err) {
		return ledger.ErrAlreadyInitialized
	}
	return err
}

func (s *Store) GetProtocolConfig(ctx context.Context) (*subscriber.Config, error) {
	m := new(protocolConfigRow)
	err := s.pool.QueryRow(ctx, `
		SELECT key, authority, mint, treasury, revenue_pool,
			price_per_alert, treasury_fee_bps, total_subscribers,
			total_alerts_delivered, total_revenue, created_at, updated_at
		FROM protocol_config LIMIT 1`).
		Scan(&m.Key, &m.Authority, &m.Mint, &m.Treasury, &m.RevenuePool,
			&m.PricePerAlert, &m.TreasuryFeeBps, &m.TotalSubscribers,
			&m.TotalAlertsDelivered, &m.TotalRevenue, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ledger.ErrNotInitialized
	}
	if err != nil {
		return nil, err
	}
	return fromProtocolConfigRow(m)
}

func (s *Store) UpdateProtocolConfig(ctx context.Context, c *subscriber.Config) error {
	m := toProtocolConfigRow(c)
	tag, err := s.pool.Exec(ctx, `
		UPDATE protocol_config
		SET price_per_alert = $2, treasury_fee_bps = $3, total_subscribers = $4,
			total_alerts_delivered = $5, total_revenue = $6, updated_at = $7
		WHERE key = $1`,
		m.Key, m.PricePerAlert, m.TreasuryFeeBps, m.TotalSubscribers,
		m.TotalAlertsDelivered, m.TotalRevenue, m.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ledger.ErrNotInitialized
	}
	return nil
}

func (s *Store) CreateSubscriber(ctx context.Context, sub *subscriber.Subscriber) error {
	m := toSubscriberRow(sub)
	_, err := s.pool.Exec(ctx, `
		INSERT INTO subscribers (id, key, owner, channels, balance, vault,
			alerts_received, joined_at, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		m.ID, m.Key, m.Owner, m.Channels, m.Balance, m.Vault,
		m.AlertsReceived, m.JoinedAt, m.Active, m.CreatedAt, m.UpdatedAt)
	if isDuplicate(err) {
		return ledger.ErrSubscriberExists
	}
	return err
}

func (s *Store) GetSubscriber(ctx context.Context, key addr.Key) (*subscriber.Subscriber, error) {
	m := new(subscriberRow)
	err := s.pool.QueryRow(ctx, `
		SELECT id, key, owner, channels, balance, vault,
			alerts_received, joined_at, active, created_at, updated_at
		FROM subscribers WHERE key = $1`, string(key)).
		Scan(&m.ID, &m.Key, &m.Owner, &m.Channels, &m.Balance, &m.Vault,
			&m.AlertsReceived, &m.JoinedAt, &m.Active, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ledger.ErrSubscriberNotFound
	}
	if err != nil {
		return nil, err
	}
	return fromSubscriberRow(m)
}

func (s *Store) UpdateSubscriber(ctx context.Context, sub *subscriber.Subscriber) error {
	m := toSubscriberRow(sub)
	tag, err := s.pool.Exec(ctx, `
		UPDATE subscribers
		SET channels = $2, balance = $3, alerts_received = $4, active = $5, updated_at = $6
		WHERE key = $1`,
		m.Key, m.Channels, m.Balance, m.AlertsReceived, m.Active, m.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ledger.ErrSubscriberNotFound
	}
	return nil
}

func (s *Store) AppendReceipt(ctx context.Context, r *subscriber.Receipt) error {
	m := toReceiptRow(r)
	_, err := s.pool.Exec(ctx, `
		INSERT INTO receipts (id, key, subscriber_key, subscriber, fingerprint,
			amount, ts, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		m.ID, m.Key, m.SubscriberKey, m.Subscriber, m.Fingerprint,
		m.Amount, m.Timestamp, m.CreatedAt, m.UpdatedAt)
	if isDuplicate(err) {
		return ledger.ErrReceiptExists
	}
	return err
}

func (s *Store) ListReceipts(ctx context.Context, subscriberKey addr.Key) ([]*subscriber.Receipt, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, key, subscriber_key, subscriber, fingerprint,
			amount, ts, created_at, updated_at
		FROM receipts WHERE subscriber_key = $1
		ORDER BY ts`, string(subscriberKey))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*subscriber.Receipt, 0)
	for rows.Next() {
		m := new(receiptRow)
		if err := rows.Scan(&m.ID, &m.Key, &m.SubscriberKey, &m.Subscriber, &m.Fingerprint,
			&m.Amount, &m.Timestamp, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		r, err := fromReceiptRow(m)
		if err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
