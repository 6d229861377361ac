package ledger

import (
	"context"
	"errors"

	"github.com/agentwire/ledger/addr"
	"github.com/agentwire/ledger/custody"
	"github.com/agentwire/ledger/id"
	"github.com/agentwire/ledger/publisher"
	"github.com/agentwire/ledger/types"
)

// ──────────────────────────────────────────────────
// Publisher Ledger
// ──────────────────────────────────────────────────

// PublisherRegistryParams configures the publisher registry singleton.
type PublisherRegistryParams struct {
	Authority         id.AccountID
	Mint              id.ID
	RevenuePool       id.VaultID
	Treasury          id.VaultID
	MinStake          types.Amount
	PublisherShareBps uint16
	// ReputationReward and ReputationPenalty default to the package
	// constants when zero.
	ReputationReward  uint16
	ReputationPenalty uint16
}

// InitializePublisherRegistry creates the singleton publisher registry.
// The revenue pool and treasury vaults must already exist and be
// controlled by the registry authority.
func (l *Ledger) InitializePublisherRegistry(ctx context.Context, params PublisherRegistryParams) (*publisher.Registry, error) {
	if params.Authority.IsNil() || params.Mint.IsNil() || params.RevenuePool.IsNil() || params.Treasury.IsNil() {
		return nil, ErrInvalidInput
	}
	if !types.ValidBps(params.PublisherShareBps) {
		return nil, ErrInvalidBps
	}
	if params.ReputationReward == 0 {
		params.ReputationReward = publisher.DefaultReputationReward
	}
	if params.ReputationPenalty == 0 {
		params.ReputationPenalty = publisher.DefaultReputationPenalty
	}

	reg := &publisher.Registry{
		Entity:            types.NewEntity(),
		Key:               addr.PublisherRegistry(),
		Authority:         params.Authority,
		Mint:              params.Mint,
		RevenuePool:       params.RevenuePool,
		Treasury:          params.Treasury,
		MinStake:          params.MinStake,
		PublisherShareBps: params.PublisherShareBps,
		ReputationReward:  params.ReputationReward,
		ReputationPenalty: params.ReputationPenalty,
	}

	if err := l.store.CreatePublisherRegistry(ctx, reg); err != nil {
		return nil, err
	}

	l.logger.Info("publisher registry initialized",
		"min_stake", reg.MinStake,
		"share_bps", reg.PublisherShareBps,
	)
	return reg, nil
}

// RegisterPublisher admits a new publisher by moving exactly the registry
// minimum stake from the funding vault into a fresh stake vault under
// registry control. The funding vault doubles as the payout destination.
func (l *Ledger) RegisterPublisher(ctx context.Context, owner id.AccountID, fundingVault id.VaultID, name, metadataURI string) (*publisher.Publisher, error) {
	if owner.IsNil() || fundingVault.IsNil() || name == "" {
		return nil, ErrInvalidInput
	}
	if len(name) > publisher.MaxNameLen {
		return nil, ErrNameTooLong
	}
	if len(metadataURI) > publisher.MaxMetadataURILen {
		return nil, ErrMetadataURITooLong
	}

	reg, err := l.store.GetPublisherRegistry(ctx)
	if err != nil {
		return nil, err
	}

	stakeVault, err := l.custody.OpenVault(ctx, reg.Authority, reg.Mint)
	if err != nil {
		return nil, err
	}

	cap, err := l.custody.Authorize(ctx, fundingVault, owner)
	if err != nil {
		return nil, err
	}
	if err := l.custody.Transfer(ctx, cap, stakeVault, reg.MinStake); err != nil {
		return nil, mapStakeErr(err)
	}

	p := &publisher.Publisher{
		Entity:       types.NewEntity(),
		ID:           id.NewPublisherID(),
		Key:          addr.Publisher(owner),
		Owner:        owner,
		Name:         name,
		MetadataURI:  metadataURI,
		Stake:        reg.MinStake,
		StakeVault:   stakeVault,
		PayoutVault:  fundingVault,
		Reputation:   publisher.InitialReputation,
		RegisteredAt: l.clock.Now().Unix(),
		Active:       true,
	}

	if err := l.store.CreatePublisher(ctx, p); err != nil {
		// Unwind the stake so a duplicate registration is free.
		if cap, aerr := l.custody.Authorize(ctx, stakeVault, reg.Authority); aerr == nil {
			_ = l.custody.Transfer(ctx, cap, fundingVault, reg.MinStake) //nolint:errcheck // best-effort unwind
		}
		return nil, err
	}

	reg.TotalPublishers++
	reg.Touch()
	if err := l.store.UpdatePublisherRegistry(ctx, reg); err != nil {
		return nil, err
	}

	l.plugins.EmitPublisherRegistered(ctx, p)
	return p, nil
}

// GetPublisher retrieves a publisher by its owner account.
func (l *Ledger) GetPublisher(ctx context.Context, owner id.AccountID) (*publisher.Publisher, error) {
	return l.store.GetPublisher(ctx, addr.Publisher(owner))
}

// RecordSubmission updates a publisher's submission counters and
// reputation for one reviewed alert. Accepted submissions earn the
// registry reward, rejected ones cost the penalty; the score saturates at
// both ends of its range. Only the registry authority may record outcomes.
func (l *Ledger) RecordSubmission(ctx context.Context, authority, owner id.AccountID, accepted bool) (*publisher.Publisher, error) {
	reg, err := l.store.GetPublisherRegistry(ctx)
	if err != nil {
		return nil, err
	}
	if authority != reg.Authority {
		return nil, ErrUnauthorized
	}

	p, err := l.store.GetPublisher(ctx, addr.Publisher(owner))
	if err != nil {
		return nil, err
	}

	p.AlertsSubmitted++
	if accepted {
		p.AlertsAccepted++
		p.RewardReputation(reg.ReputationReward)
	} else {
		p.PenalizeReputation(reg.ReputationPenalty)
	}
	p.Touch()

	if err := l.store.UpdatePublisher(ctx, p); err != nil {
		return nil, err
	}

	l.plugins.EmitSubmissionRecorded(ctx, p, accepted)
	return p, nil
}

// DistributeRevenue pays a publisher its share of delivered-alert revenue
// out of the revenue pool. The payout is floor(amount * share_bps / 10000);
// the remainder stays in the pool. Returns the amount actually paid.
func (l *Ledger) DistributeRevenue(ctx context.Context, authority, owner id.AccountID, amount types.Amount) (types.Amount, error) {
	if amount.IsZero() {
		return 0, ErrInvalidAmount
	}

	reg, err := l.store.GetPublisherRegistry(ctx)
	if err != nil {
		return 0, err
	}
	if authority != reg.Authority {
		return 0, ErrUnauthorized
	}

	p, err := l.store.GetPublisher(ctx, addr.Publisher(owner))
	if err != nil {
		return 0, err
	}
	// Active is checked first: a fully slashed publisher is also inactive
	// and reports ErrPublisherInactive here.
	if !p.Active {
		return 0, ErrPublisherInactive
	}
	if p.Slashed {
		return 0, ErrPublisherSlashed
	}

	payout, err := amount.ShareBps(reg.PublisherShareBps)
	if err != nil {
		return 0, err
	}

	if !payout.IsZero() {
		cap, err := l.custody.Authorize(ctx, reg.RevenuePool, reg.Authority)
		if err != nil {
			return 0, err
		}
		if err := l.custody.Transfer(ctx, cap, p.PayoutVault, payout); err != nil {
			return 0, err
		}
	}

	p.TotalEarnings, err = p.TotalEarnings.CheckedAdd(payout)
	if err != nil {
		return 0, err
	}
	p.Touch()
	if err := l.store.UpdatePublisher(ctx, p); err != nil {
		return 0, err
	}

	reg.TotalPayouts, err = reg.TotalPayouts.CheckedAdd(payout)
	if err != nil {
		return 0, err
	}
	reg.Touch()
	if err := l.store.UpdatePublisherRegistry(ctx, reg); err != nil {
		return 0, err
	}

	l.plugins.EmitRevenueDistributed(ctx, p, uint64(payout))
	return payout, nil
}

// SlashPublisher confiscates stake into the treasury for misconduct. The
// reputation score drops to zero on any slash, including a zero-amount
// slash that confiscates nothing; a publisher whose stake reaches zero is
// retired (slashed and inactive) and cannot withdraw.
func (l *Ledger) SlashPublisher(ctx context.Context, authority, owner id.AccountID, amount types.Amount, reason string) (*publisher.Publisher, error) {
	reg, err := l.store.GetPublisherRegistry(ctx)
	if err != nil {
		return nil, err
	}
	if authority != reg.Authority {
		return nil, ErrUnauthorized
	}

	p, err := l.store.GetPublisher(ctx, addr.Publisher(owner))
	if err != nil {
		return nil, err
	}

	remaining, err := p.Stake.CheckedSub(amount)
	if err != nil {
		return nil, ErrInsufficientStake
	}

	if !amount.IsZero() {
		cap, err := l.custody.Authorize(ctx, p.StakeVault, reg.Authority)
		if err != nil {
			return nil, err
		}
		if err := l.custody.Transfer(ctx, cap, reg.Treasury, amount); err != nil {
			return nil, err
		}
	}

	p.Stake = remaining
	p.Reputation = 0
	if p.Stake.IsZero() {
		p.Slashed = true
		p.Active = false
	}
	p.Touch()

	if err := l.store.UpdatePublisher(ctx, p); err != nil {
		return nil, err
	}

	l.logger.Warn("publisher slashed",
		"publisher", p.ID,
		"amount", amount,
		"reason", reason,
	)
	l.plugins.EmitPublisherSlashed(ctx, p, uint64(amount), reason)
	return p, nil
}

// WithdrawStake returns a publisher's full remaining stake to its payout
// vault and deactivates it. Slashed publishers forfeit this right.
func (l *Ledger) WithdrawStake(ctx context.Context, owner id.AccountID) (types.Amount, error) {
	reg, err := l.store.GetPublisherRegistry(ctx)
	if err != nil {
		return 0, err
	}

	p, err := l.store.GetPublisher(ctx, addr.Publisher(owner))
	if err != nil {
		return 0, err
	}
	if p.Slashed {
		return 0, ErrPublisherSlashed
	}

	amount := p.Stake
	if !amount.IsZero() {
		cap, err := l.custody.Authorize(ctx, p.StakeVault, reg.Authority)
		if err != nil {
			return 0, err
		}
		if err := l.custody.Transfer(ctx, cap, p.PayoutVault, amount); err != nil {
			return 0, err
		}
	}

	p.Stake = 0
	p.Active = false
	p.Touch()

	if err := l.store.UpdatePublisher(ctx, p); err != nil {
		return 0, err
	}

	l.plugins.EmitStakeWithdrawn(ctx, p, uint64(amount))
	return amount, nil
}

// mapStakeErr translates a custody shortfall on the funding vault into the
// ledger's stake error.
func mapStakeErr(err error) error {
	if errors.Is(err, custody.ErrInsufficientFunds) {
		return ErrInsufficientStake
	}
	return err
}
