package mongo

import (
	"fmt"
	"time"

	"github.com/agentwire/ledger/addr"
	"github.com/agentwire/ledger/alert"
	"github.com/agentwire/ledger/id"
	"github.com/agentwire/ledger/publisher"
	"github.com/agentwire/ledger/subscriber"
	"github.com/agentwire/ledger/types"
)

// Deterministic record keys double as document ids so duplicate creation is
// rejected by the unique _id index.

// ==================== Alert models ====================

type alertRegistryModel struct {
	Key         string    `bson:"_id"`
	Authority   string    `bson:"authority"`
	TotalAlerts int64     `bson:"total_alerts"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func toAlertRegistryModel(r *alert.Registry) *alertRegistryModel {
	return &alertRegistryModel{
		Key:         string(r.Key),
		Authority:   r.Authority.String(),
		TotalAlerts: int64(r.TotalAlerts),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func fromAlertRegistryModel(m *alertRegistryModel) (*alert.Registry, error) {
	authority, err := id.Parse(m.Authority)
	if err != nil {
		return nil, fmt.Errorf("ledger/mongo: parse registry authority: %w", err)
	}
	r := &alert.Registry{
		Key:         addr.Key(m.Key),
		Authority:   authority,
		TotalAlerts: uint64(m.TotalAlerts),
	}
	r.CreatedAt = m.CreatedAt
	r.UpdatedAt = m.UpdatedAt
	return r, nil
}

type alertModel struct {
	Key           string    `bson:"_id"`
	AlertID       string    `bson:"alert_id"`
	Channel       string    `bson:"channel"`
	Fingerprint   []byte    `bson:"fingerprint"`
	Publisher     string    `bson:"publisher"`
	Timestamp     int64     `bson:"timestamp"`
	Priority      int32     `bson:"priority"`
	Impact        int32     `bson:"impact"`
	DeliveryCount int64     `bson:"delivery_count"`
	CreatedAt     time.Time `bson:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at"`
}

func toAlertModel(a *alert.Alert) *alertModel {
	fp := make([]byte, len(a.Fingerprint))
	copy(fp, a.Fingerprint[:])
	return &alertModel{
		Key:           string(a.Key),
		AlertID:       a.AlertID,
		Channel:       a.Channel,
		Fingerprint:   fp,
		Publisher:     a.Publisher.String(),
		Timestamp:     a.Timestamp,
		Priority:      int32(a.Priority),
		Impact:        int32(a.Impact),
		DeliveryCount: int64(a.DeliveryCount),
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

func fromAlertModel(m *alertModel) (*alert.Alert, error) {
	pub, err := id.Parse(m.Publisher)
	if err != nil {
		return nil, fmt.Errorf("ledger/mongo: parse alert publisher: %w", err)
	}
	a := &alert.Alert{
		Key:           addr.Key(m.Key),
		AlertID:       m.AlertID,
		Channel:       m.Channel,
		Publisher:     pub,
		Timestamp:     m.Timestamp,
		Priority:      uint8(m.Priority),
		Impact:        uint8(m.Impact),
		DeliveryCount: uint64(m.DeliveryCount),
	}
	copy(a.Fingerprint[:], m.Fingerprint)
	a.CreatedAt = m.CreatedAt
	a.UpdatedAt = m.UpdatedAt
	return a, nil
}

type deliveryModel struct {
	ID         string    `bson:"_id"`
	Key        string    `bson:"key"`
	AlertKey   string    `bson:"alert_key"`
	Subscriber string    `bson:"subscriber"`
	Timestamp  int64     `bson:"timestamp"`
	CreatedAt  time.Time `bson:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at"`
}

func toDeliveryModel(d *alert.Delivery) *deliveryModel {
	return &deliveryModel{
		ID:         d.ID.String(),
		Key:        string(d.Key),
		AlertKey:   string(d.AlertKey),
		Subscriber: d.Subscriber.String(),
		Timestamp:  d.Timestamp,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

func fromDeliveryModel(m *deliveryModel) (*alert.Delivery, error) {
	did, err := id.Parse(m.ID)
	if err != nil {
		return nil, fmt.Errorf("ledger/mongo: parse delivery id: %w", err)
	}
	sub, err := id.Parse(m.Subscriber)
	if err != nil {
		return nil, fmt.Errorf("ledger/mongo: parse delivery subscriber: %w", err)
	}
	d := &alert.Delivery{
		ID:         did,
		Key:        addr.Key(m.Key),
		AlertKey:   addr.Key(m.AlertKey),
		Subscriber: sub,
		Timestamp:  m.Timestamp,
	}
	d.CreatedAt = m.CreatedAt
	d.UpdatedAt = m.UpdatedAt
	return d, nil
}

// ==================== Publisher models ====================

type publisherRegistryModel struct {
	Key               string    `bson:"_id"`
	Authority         string    `bson:"authority"`
	Mint              string    `bson:"mint"`
	RevenuePool       string    `bson:"revenue_pool"`
	Treasury          string    `bson:"treasury"`
	MinStake          int64     `bson:"min_stake"`
	PublisherShareBps int32     `bson:"publisher_share_bps"`
	ReputationReward  int32     `bson:"reputation_reward"`
	ReputationPenalty int32     `bson:"reputation_penalty"`
	TotalPublishers   int64     `bson:"total_publishers"`
	TotalPayouts      int64     `bson:"total_payouts"`
	CreatedAt         time.Time `bson:"created_at"`
	UpdatedAt         time.Time `bson:"updated_at"`
}

func toPublisherRegistryModel(r *publisher.Registry) *publisherRegistryModel {
	return &publisherRegistryModel{
		Key:               string(r.Key),
		Authority:         r.Authority.String(),
		Mint:              r.Mint.String(),
		RevenuePool:       r.RevenuePool.String(),
		Treasury:          r.Treasury.String(),
		MinStake:          int64(r.MinStake),
		PublisherShareBps: int32(r.PublisherShareBps),
		ReputationReward:  int32(r.ReputationReward),
		ReputationPenalty: int32(r.ReputationPenalty),
		TotalPublishers:   int64(r.TotalPublishers),
		TotalPayouts:      int64(r.TotalPayouts),
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

func fromPublisherRegistryModel(m *publisherRegistryModel) (*publisher.Registry, error) {
	authority, err := id.Parse(m.Authority)
	if err != nil {
		return nil, fmt.Errorf("ledger/mongo: parse registry authority: %w", err)
	}
	mint, err := id.Parse(m.Mint)
	if err != nil {
		return nil, fmt.Errorf("ledger/mongo: parse registry mint: %w", err)
	}
	pool, err := id.Parse(m.RevenuePool)
	if err != nil {
		return nil, fmt.Errorf("ledger/mongo: parse registry revenue pool: %w", err)
	}
	treasury, err := id.Parse(m.Treasury)
	if err != nil {
		return nil, fmt.Errorf("ledger/mongo: parse registry treasury: %w", err)
	}
	r := &publisher.Registry{
		Key:               addr.Key(m.Key),
		Authority:         authority,
		Mint:              mint,
		RevenuePool:       pool,
		Treasury:          treasury,
		MinStake:          types.Amount(m.MinStake),
		PublisherShareBps: uint16(m.PublisherShareBps),
		ReputationReward:  uint16(m.ReputationReward),
		ReputationPenalty: uint16(m.ReputationPenalty),
		TotalPublishers:   uint64(m.TotalPublishers),
		TotalPayouts:      types.Amount(m.TotalPayouts),
	}
	r.CreatedAt = m.CreatedAt
	r.UpdatedAt = m.UpdatedAt
	return r, nil
}

type publisherModel struct {
	Key             string    `bson:"_id"`
	ID              string    `bson:"id"`
	Owner           string    `bson:"owner"`
	Name            string    `bson:"name"`
	MetadataURI     string    `bson:"metadata_uri"`
	Stake           int64     `bson:"stake"`
	StakeVault      string    `bson:"stake_vault"`
	PayoutVault     string    `bson:"payout_vault"`
	Reputation      int32     `bson:"reputation"`
	AlertsSubmitted int64     `bson:"alerts_submitted"`
	AlertsAccepted  int64     `bson:"alerts_accepted"`
	TotalEarnings   int64     `bson:"total_earnings"`
	RegisteredAt    int64     `bson:"registered_at"`
	Active          bool      `bson:"active"`
	Slashed         bool      `bson:"slashed"`
	CreatedAt       time.Time `bson:"created_at"`
	UpdatedAt       time.Time `bson:"updated_at"`
}

func toPublisherModel(p *publisher.Publisher) *publisherModel {
	return &publisherModel{
		Key:             string(p.Key),
		ID:              p.ID.String(),
		Owner:           p.Owner.String(),
		Name:            p.Name,
		MetadataURI:     p.MetadataURI,
		Stake:           int64(p.Stake),
		StakeVault:      p.StakeVault.String(),
		PayoutVault:     p.PayoutVault.String(),
		Reputation:      int32(p.Reputation),
		AlertsSubmitted: int64(p.AlertsSubmitted),
		AlertsAccepted:  int64(p.AlertsAccepted),
		TotalEarnings:   int64(p.TotalEarnings),
		RegisteredAt:    p.RegisteredAt,
		Active:          p.Active,
		Slashed:         p.Slashed,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func fromPublisherModel(m *publisherModel) (*publisher.Publisher, error) {
	pid, err := id.Parse(m.ID)
	if err != nil {
		return nil, fmt.Errorf("ledger/mongo: parse publisher id: %w", err)
	}
	owner, err := id.Parse(m.Owner)
	if err != nil {
		return nil, fmt.Errorf("ledger/mongo: parse publisher owner: %w", err)
	}
	stakeVault, err := id.Parse(m.StakeVault)
	if err != nil {
		return nil, fmt.Errorf("ledger/mongo: parse publisher stake vault: %w", err)
	}
	payoutVault, err := id.Parse(m.PayoutVault)
	if err != nil {
		return nil, fmt.Errorf("ledger/mongo: parse publisher payout vault: %w", err)
	}
	p := &publisher.Publisher{
		ID:              pid,
		Key:             addr.Key(m.Key),
		Owner:           owner,
		Name:            m.Name,
		MetadataURI:     m.MetadataURI,
		Stake:           types.Amount(m.Stake),
		StakeVault:      stakeVault,
		PayoutVault:     payoutVault,
		Reputation:      uint16(m.Reputation),
		AlertsSubmitted: uint64(m.AlertsSubmitted),
		AlertsAccepted:  uint64(m.AlertsAccepted),
		TotalEarnings:   types.Amount(m.TotalEarnings),
		RegisteredAt:    m.RegisteredAt,
		Active:          m.Active,
		Slashed:         m.Slashed,
	}
	p.CreatedAt = m.CreatedAt
	p.UpdatedAt = m.UpdatedAt
	return p, nil
}

// ==================== Subscriber models ====================

type protocolConfigModel struct {
	Key                  string    `bson:"_id"`
	Authority            string    `bson:"authority"`
	Mint                 string    `bson:"mint"`
	Treasury             string    `bson:"treasury"`
	RevenuePool          string    `bson:"revenue_pool"`
	PricePerAlert        int64     `bson:"price_per_alert"`
	TreasuryFeeBps       int32     `bson:"treasury_fee_bps"`
	TotalSubscribers     int64     `bson:"total_subscribers"`
	TotalAlertsDelivered int64     `bson:"total_alerts_delivered"`
	TotalRevenue         int64     `bson:"total_revenue"`
	CreatedAt            time.Time `bson:"created_at"`
	UpdatedAt            time.Time `bson:"updated_at"`
}

func toProtocolConfigModel(c *subscriber.Config) *protocolConfigModel {
	return &protocolConfigModel{
		Key:                  string(c.Key),
		Authority:            c.Authority.String(),
		Mint:                 c.Mint.String(),
		Treasury:             c.Treasury.String(),
		RevenuePool:          c.RevenuePool.String(),
		PricePerAlert:        int64(c.PricePerAlert),
		TreasuryFeeBps:       int32(c.TreasuryFeeBps),
		TotalSubscribers:     int64(c.TotalSubscribers),
		TotalAlertsDelivered: int64(c.TotalAlertsDelivered),
		TotalRevenue:         int64(c.TotalRevenue),
		CreatedAt:            c.CreatedAt,
		UpdatedAt:            c.UpdatedAt,
	}
}

func fromProtocolConfigModel(m *protocolConfigModel) (*subscriber.Config, error) {
	authority, err := id.Parse(m.Authority)
	if err != nil {
		return nil, fmt.Errorf("ledger/mongo: parse config authority: %w", err)
	}
	mint, err := id.Parse(m.Mint)
	if err != nil {
		return nil, fmt.Errorf("ledger/mongo: parse config mint: %w", err)
	}
	treasury, err := id.Parse(m.Treasury)
	if err != nil {
		return nil, fmt.Errorf("ledger/mongo: parse config treasury: %w", err)
	}
	pool, err := id.Parse(m.RevenuePool)
	if err != nil {
		return nil, fmt.Errorf("ledger/mongo: parse config revenue pool: %w", err)
	}
	c := &subscriber.Config{
		Key:                  addr.Key(m.Key),
		Authority:            authority,
		Mint:                 mint,
		Treasury:             treasury,
		RevenuePool:          pool,
		PricePerAlert:        types.Amount(m.PricePerAlert),
		TreasuryFeeBps:       uint16(m.TreasuryFeeBps),
		TotalSubscribers:     uint64(m.TotalSubscribers),
		TotalAlertsDelivered: uint64(m.TotalAlertsDelivered),
		TotalRevenue:         types.Amount(m.TotalRevenue),
	}
	c.CreatedAt = m.CreatedAt
	c.UpdatedAt = m.UpdatedAt
	return c, nil
}

type subscriberModel struct {
	Key            string    `bson:"_id"`
	ID             string    `bson:"id"`
	Owner          string    `bson:"owner"`
	Channels       int64     `bson:"channels"`
	Balance        int64     `bson:"balance"`
	Vault          string    `bson:"vault"`
	AlertsReceived int64     `bson:"alerts_received"`
	JoinedAt       int64     `bson:"joined_at"`
	Active         bool      `bson:"active"`
	CreatedAt      time.Time `bson:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at"`
}

func toSubscriberModel(s *subscriber.Subscriber) *subscriberModel {
	return &subscriberModel{
		Key:            string(s.Key),
		ID:             s.ID.String(),
		Owner:          s.Owner.String(),
		Channels:       int64(s.Channels),
		Balance:        int64(s.Balance),
		Vault:          s.Vault.String(),
		AlertsReceived: int64(s.AlertsReceived),
		JoinedAt:       s.JoinedAt,
		Active:         s.Active,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

func fromSubscriberModel(m *subscriberModel) (*subscriber.Subscriber, error) {
	sid, err := id.Parse(m.ID)
	if err != nil {
		return nil, fmt.Errorf("ledger/mongo: parse subscriber id: %w", err)
	}
	owner, err := id.Parse(m.Owner)
	if err != nil {
		return nil, fmt.Errorf("ledger/mongo: parse subscriber owner: %w", err)
	}
	vault, err := id.Parse(m.Vault)
	if err != nil {
		return nil, fmt.Errorf("ledger/mongo: parse subscriber vault: %w", err)
	}
	s := &subscriber.Subscriber{
		ID:             sid,
		Key:            addr.Key(m.Key),
		Owner:          owner,
		Channels:       uint32(m.Channels),
		Balance:        types.Amount(m.Balance),
		Vault:          vault,
		AlertsReceived: uint64(m.AlertsReceived),
		JoinedAt:       m.JoinedAt,
		Active:         m.Active,
	}
	s.CreatedAt = m.CreatedAt
	s.UpdatedAt = m.UpdatedAt
	return s, nil
}

type receiptModel struct {
	ID            string    `bson:"_id"`
	Key           string    `bson:"key"`
	SubscriberKey string    `bson:"subscriber_key"`
	Subscriber    string    `bson:"subscriber"`
	Fingerprint   []byte    `bson:"fingerprint"`
	Amount        int64     `bson:"amount"`
	Timestamp     int64     `bson:"timestamp"`
	CreatedAt     time.Time `bson:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at"`
}

func toReceiptModel(r *subscriber.Receipt) *receiptModel {
	fp := make([]byte, len(r.Fingerprint))
	copy(fp, r.Fingerprint[:])
	return &receiptModel{
		ID:            r.ID.String(),
		Key:           string(r.Key),
		SubscriberKey: string(r.SubscriberKey),
		Subscriber:    r.Subscriber.String(),
		Fingerprint:   fp,
		Amount:        int64(r.Amount),
		Timestamp:     r.Timestamp,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func fromReceiptModel(m *receiptModel) (*subscriber.Receipt, error) {
	rid, err := id.Parse(m.ID)
	if err != nil {
		return nil, fmt.Errorf("ledger/mongo: parse receipt id: %w", err)
	}
	sub, err := id.Parse(m.Subscriber)
	if err != nil {
		return nil, fmt.Errorf("ledger/mongo: parse receipt subscriber: %w", err)
	}
	r := &subscriber.Receipt{
		ID:            rid,
		Key:           addr.Key(m.Key),
		SubscriberKey: addr.Key(m.SubscriberKey),
		Subscriber:    sub,
		Amount:        types.Amount(m.Amount),
		Timestamp:     m.Timestamp,
	}
	copy(r.Fingerprint[:], m.Fingerprint)
	r.CreatedAt = m.CreatedAt
	r.UpdatedAt = m.UpdatedAt
	return r, nil
}
