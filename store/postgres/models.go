package postgres

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

// Row structs mirror table columns. IDs travel as text and fingerprints as
// bytea; converters translate to and from the domain records.

// ==================== Alert models ====================

type alertRegistryRow struct {
	Key         string
	Authority   string
	TotalAlerts int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func toAlertRegistryRow(r *alert.Registry) *alertRegistryRow {
	return &alertRegistryRow{
		Key:         string(r.Key),
		Authority:   r.Authority.String(),
		TotalAlerts: int64(r.TotalAlerts),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func fromAlertRegistryRow(m *alertRegistryRow) (*alert.Registry, error) {
	authority, err := id.Parse(m.Authority)
	if err != nil {
		return nil, fmt.Errorf("ledger/postgres: parse registry authority: %w", err)
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

type alertRow struct {
	Key           string
	AlertID       string
	Channel       string
	Fingerprint   []byte
	Publisher     string
	Timestamp     int64
	Priority      int16
	Impact        int16
	DeliveryCount int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func toAlertRow(a *alert.Alert) *alertRow {
	fp := make([]byte, len(a.Fingerprint))
	copy(fp, a.Fingerprint[:])
	return &alertRow{
		Key:           string(a.Key),
		AlertID:       a.AlertID,
		Channel:       a.Channel,
		Fingerprint:   fp,
		Publisher:     a.Publisher.String(),
		Timestamp:     a.Timestamp,
		Priority:      int16(a.Priority),
		Impact:        int16(a.Impact),
		DeliveryCount: int64(a.DeliveryCount),
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

func fromAlertRow(m *alertRow) (*alert.Alert, error) {
	pub, err := id.Parse(m.Publisher)
	if err != nil {
		return nil, fmt.Errorf("ledger/postgres: parse alert publisher: %w", err)
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

type deliveryRow struct {
	ID         string
	Key        string
	AlertKey   string
	Subscriber string
	Timestamp  int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func toDeliveryRow(d *alert.Delivery) *deliveryRow {
	return &deliveryRow{
		ID:         d.ID.String(),
		Key:        string(d.Key),
		AlertKey:   string(d.AlertKey),
		Subscriber: d.Subscriber.String(),
		Timestamp:  d.Timestamp,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

func fromDeliveryRow(m *deliveryRow) (*alert.Delivery, error) {
	did, err := id.Parse(m.ID)
	if err != nil {
		return nil, fmt.Errorf("ledger/postgres: parse delivery id: %w", err)
	}
	sub, err := id.Parse(m.Subscriber)
	if err != nil {
		return nil, fmt.Errorf("ledger/postgres: parse delivery subscriber: %w", err)
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

type publisherRegistryRow struct {
	Key               string
	Authority         string
	Mint              string
	RevenuePool       string
	Treasury          string
	MinStake          int64
	PublisherShareBps int32
	ReputationReward  int32
	ReputationPenalty int32
	TotalPublishers   int64
	TotalPayouts      int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func toPublisherRegistryRow(r *publisher.Registry) *publisherRegistryRow {
	return &publisherRegistryRow{
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

func fromPublisherRegistryRow(m *publisherRegistryRow) (*publisher.Registry, error) {
	authority, err := id.Parse(m.Authority)
	if err != nil {
		return nil, fmt.Errorf("ledger/postgres: parse registry authority: %w", err)
	}
	mint, err := id.Parse(m.Mint)
	if err != nil {
		return nil, fmt.Errorf("ledger/postgres: parse registry mint: %w", err)
	}
	pool, err := id.Parse(m.RevenuePool)
	if err != nil {
		return nil, fmt.Errorf("ledger/postgres: parse registry revenue pool: %w", err)
	}
	treasury, err := id.Parse(m.Treasury)
	if err != nil {
		return nil, fmt.Errorf("ledger/postgres: parse registry treasury: %w", err)
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

type publisherRow struct {
	ID              string
	Key             string
	Owner           string
	Name            string
	MetadataURI     string
	Stake           int64
	StakeVault      string
	PayoutVault     string
	Reputation      int32
	AlertsSubmitted int64
	AlertsAccepted  int64
	TotalEarnings   int64
	RegisteredAt    int64
	Active          bool
	Slashed         bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func toPublisherRow(p *publisher.Publisher) *publisherRow {
	return &publisherRow{
		ID:              p.ID.String(),
		Key:             string(p.Key),
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

func fromPublisherRow(m *publisherRow) (*publisher.Publisher, error) {
	pid, err := id.Parse(m.ID)
	if err != nil {
		return nil, fmt.Errorf("ledger/postgres: parse publisher id: %w", err)
	}
	owner, err := id.Parse(m.Owner)
	if err != nil {
		return nil, fmt.Errorf("ledger/postgres: parse publisher owner: %w", err)
	}
	stakeVault, err := id.Parse(m.StakeVault)
	if err != nil {
		return nil, fmt.Errorf("ledger/postgres: parse publisher stake vault: %w", err)
	}
	payoutVault, err := id.Parse(m.PayoutVault)
	if err != nil {
		return nil, fmt.Errorf("ledger/postgres: parse publisher payout vault: %w", err)
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

type protocolConfigRow struct {
	Key                  string
	Authority            string
	Mint                 string
	Treasury             string
	RevenuePool          string
	PricePerAlert        int64
	TreasuryFeeBps       int32
	TotalSubscribers     int64
	TotalAlertsDelivered int64
	TotalRevenue         int64
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func toProtocolConfigRow(c *subscriber.Config) *protocolConfigRow {
	return &protocolConfigRow{
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

func fromProtocolConfigRow(m *protocolConfigRow) (*subscriber.Config, error) {
	authority, err := id.Parse(m.Authority)
	if err != nil {
		return nil, fmt.Errorf("ledger/postgres: parse config authority: %w", err)
	}
	mint, err := id.Parse(m.Mint)
	if err != nil {
		return nil, fmt.Errorf("ledger/postgres: parse config mint: %w", err)
	}
	treasury, err := id.Parse(m.Treasury)
	if err != nil {
		return nil, fmt.Errorf("ledger/postgres: parse config treasury: %w", err)
	}
	pool, err := id.Parse(m.RevenuePool)
	if err != nil {
		return nil, fmt.Errorf("ledger/postgres: parse config revenue pool: %w", err)
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

type subscriberRow struct {
	ID             string
	Key            string
	Owner          string
	Channels       int64
	Balance        int64
	Vault          string
	AlertsReceived int64
	JoinedAt       int64
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func toSubscriberRow(s *subscriber.Subscriber) *subscriberRow {
	return &subscriberRow{
		ID:             s.ID.String(),
		Key:            string(s.Key),
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

func fromSubscriberRow(m *subscriberRow) (*subscriber.Subscriber, error) {
	sid, err := id.Parse(m.ID)
	if err != nil {
		return nil, fmt.Errorf("ledger/postgres: parse subscriber id: %w", err)
	}
	owner, err := id.Parse(m.Owner)
	if err != nil {
		return nil, fmt.Errorf("ledger/postgres: parse subscriber owner: %w", err)
	}
	vault, err := id.Parse(m.Vault)
	if err != nil {
		return nil, fmt.Errorf("ledger/postgres: parse subscriber vault: %w", err)
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

type receiptRow struct {
	ID            string
	Key           string
	SubscriberKey string
	Subscriber    string
	Fingerprint   []byte
	Amount        int64
	Timestamp     int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func toReceiptRow(r *subscriber.Receipt) *receiptRow {
	fp := make([]byte, len(r.Fingerprint))
	copy(fp, r.Fingerprint[:])
	return &receiptRow{
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

func fromReceiptRow(m *receiptRow) (*subscriber.Receipt, error) {
	rid, err := id.Parse(m.ID)
	if err != nil {
		return nil, fmt.Errorf("ledger/postgres: parse receipt id: %w", err)
	}
	sub, err := id.Parse(m.Subscriber)
	if err != nil {
		return nil, fmt.Errorf("ledger/postgres: parse receipt subscriber: %w", err)
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
