// Package subscriber holds the Subscription Ledger records: prepaid
// balances, channel subscriptions, and append-only charge receipts.
package subscriber

import (
	"errors"
	"fmt"

	"github.com/agentwire/ledger/addr"
	"github.com/agentwire/ledger/id"
	"github.com/agentwire/ledger/types"
)

// MaxChannelBytes bounds the packed channel bitmap.
const MaxChannelBytes = 4

// ErrTooManyChannels reports a channel bitmap wider than MaxChannelBytes.
var ErrTooManyChannels = errors.New("subscriber: too many channel bytes")

// Config is the singleton configuration record of the subscription ledger.
type Config struct {
	types.Entity
	Key                  addr.Key     `json:"key"`
	Authority            id.AccountID `json:"authority"`
	Mint                 id.ID        `json:"mint"`
	Treasury             id.VaultID   `json:"treasury"`
	RevenuePool          id.VaultID   `json:"revenue_pool"`
	PricePerAlert        types.Amount `json:"price_per_alert"`
	TreasuryFeeBps       uint16       `json:"treasury_fee_bps"`
	TotalSubscribers     uint64       `json:"total_subscribers"`
	TotalAlertsDelivered uint64       `json:"total_alerts_delivered"`
	TotalRevenue         types.Amount `json:"total_revenue"`
}

// Subscriber is one prepaid subscriber account. Balance never goes below
// zero: every charge is a checked subtraction.
type Subscriber struct {
	types.Entity
	ID             id.SubscriberID `json:"id"`
	Key            addr.Key        `json:"key"`
	Owner          id.AccountID    `json:"owner"`
	Channels       uint32          `json:"channels"` // bitmap: bit 0 = channel 0
	Balance        types.Amount    `json:"balance"`
	Vault          id.VaultID      `json:"vault"`
	AlertsReceived uint64          `json:"alerts_received"`
	JoinedAt       int64           `json:"joined_at"` // unix seconds
	Active         bool            `json:"active"`
}

// Subscribed reports whether the subscriber follows the given channel.
func (s *Subscriber) Subscribed(channel uint8) bool {
	if channel >= MaxChannelBytes*8 {
		return false
	}
	return s.Channels&(1<<channel) != 0
}

// Receipt is an append-only proof that a charge for one delivered alert
// completed, kept for dispute resolution and reconciliation.
type Receipt struct {
	types.Entity
	ID            id.ReceiptID `json:"id"`
	Key           addr.Key     `json:"key"`
	SubscriberKey addr.Key     `json:"subscriber_key"`
	Subscriber    id.AccountID `json:"subscriber"`
	Fingerprint   [32]byte     `json:"fingerprint"`
	Amount        types.Amount `json:"amount"`
	Timestamp     int64        `json:"timestamp"` // unix seconds
}

// PackChannels packs up to MaxChannelBytes bytes into the little-endian
// channel bitmap.
func PackChannels(channels []byte) (uint32, error) {
	if len(channels) > MaxChannelBytes {
		return 0, fmt.Errorf("%d bytes: %w", len(channels), ErrTooManyChannels)
	}

	var bitmap uint32
	for i, b := range channels {
		bitmap |= uint32(b) << (i * 8)
	}
	return bitmap, nil
}
