// Package publisher holds the Publisher Ledger records: identity, staked
// collateral, reputation, and cumulative earnings.
package publisher

import (
	"github.com/agentwire/ledger/addr"
	"github.com/agentwire/ledger/id"
	"github.com/agentwire/ledger/types"
)

// Field bounds. Lengths are byte counts, compared unsigned.
const (
	MaxNameLen        = 64
	MaxMetadataURILen = 200
)

// Reputation domain. Scores are scaled by 10: 500 means 50.0.
const (
	MaxReputation     = 1000
	InitialReputation = 500
)

// Default reputation adjustments. The penalty is deliberately twice the
// reward: reputation is easier to lose than to gain. Both are registry
// configuration, not hardcoded policy.
const (
	DefaultReputationReward  = 10
	DefaultReputationPenalty = 20
)

// Registry is the singleton configuration record of the publisher ledger.
type Registry struct {
	types.Entity
	Key               addr.Key     `json:"key"`
	Authority         id.AccountID `json:"authority"`
	Mint              id.ID        `json:"mint"`
	RevenuePool       id.VaultID   `json:"revenue_pool"`
	Treasury          id.VaultID   `json:"treasury"`
	MinStake          types.Amount `json:"min_stake"`
	PublisherShareBps uint16       `json:"publisher_share_bps"`
	ReputationReward  uint16       `json:"reputation_reward"`
	ReputationPenalty uint16       `json:"reputation_penalty"`
	TotalPublishers   uint64       `json:"total_publishers"`
	TotalPayouts      types.Amount `json:"total_payouts"`
}

// Publisher is one registered publisher. Slashed implies inactive, and a
// publisher whose stake reached zero (by slash or withdrawal) is retired:
// no operation reactivates it.
type Publisher struct {
	types.Entity
	ID              id.PublisherID `json:"id"`
	Key             addr.Key       `json:"key"`
	Owner           id.AccountID   `json:"owner"`
	Name            string         `json:"name"`
	MetadataURI     string         `json:"metadata_uri"`
	Stake           types.Amount   `json:"stake"`
	StakeVault      id.VaultID     `json:"stake_vault"`
	PayoutVault     id.VaultID     `json:"payout_vault"`
	Reputation      uint16         `json:"reputation"` // 0..1000
	AlertsSubmitted uint64         `json:"alerts_submitted"`
	AlertsAccepted  uint64         `json:"alerts_accepted"`
	TotalEarnings   types.Amount   `json:"total_earnings"`
	RegisteredAt    int64          `json:"registered_at"` // unix seconds
	Active          bool           `json:"active"`
	Slashed         bool           `json:"slashed"`
}

// RewardReputation adds reward to the score, saturating at MaxReputation.
func (p *Publisher) RewardReputation(reward uint16) {
	next := uint32(p.Reputation) + uint32(reward)
	if next > MaxReputation {
		next = MaxReputation
	}
	p.Reputation = uint16(next)
}

// PenalizeReputation subtracts penalty from the score, saturating at zero.
func (p *Publisher) PenalizeReputation(penalty uint16) {
	if penalty >= p.Reputation {
		p.Reputation = 0
		return
	}
	p.Reputation -= penalty
}
