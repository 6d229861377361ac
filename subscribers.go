package ledger

import (
	"context"

	"github.com/agentwire/ledger/addr"
	"github.com/agentwire/ledger/id"
	"github.com/agentwire/ledger/subscriber"
	"github.com/agentwire/ledger/types"
)

// ──────────────────────────────────────────────────
// Subscription Ledger
// ──────────────────────────────────────────────────

// ProtocolParams configures the subscription protocol singleton.
type ProtocolParams struct {
	Authority      id.AccountID
	Mint           id.ID
	Treasury       id.VaultID
	RevenuePool    id.VaultID
	PricePerAlert  types.Amount
	TreasuryFeeBps uint16
}

// InitializeProtocol creates the singleton subscription protocol config.
// The treasury and revenue pool vaults must already exist and be
// controlled by the protocol authority.
func (l *Ledger) InitializeProtocol(ctx context.Context, params ProtocolParams) (*subscriber.Config, error) {
	if params.Authority.IsNil() || params.Mint.IsNil() || params.Treasury.IsNil() || params.RevenuePool.IsNil() {
		return nil, ErrInvalidInput
	}
	if !types.ValidBps(params.TreasuryFeeBps) {
		return nil, ErrInvalidBps
	}

	cfg := &subscriber.Config{
		Entity:         types.NewEntity(),
		Key:            addr.ProtocolConfig(),
		Authority:      params.Authority,
		Mint:           params.Mint,
		Treasury:       params.Treasury,
		RevenuePool:    params.RevenuePool,
		PricePerAlert:  params.PricePerAlert,
		TreasuryFeeBps: params.TreasuryFeeBps,
	}

	if err := l.store.CreateProtocolConfig(ctx, cfg); err != nil {
		return nil, err
	}

	l.logger.Info("protocol initialized",
		"price_per_alert", cfg.PricePerAlert,
		"treasury_fee_bps", cfg.TreasuryFeeBps,
	)
	return cfg, nil
}

// CreateSubscriber opens a prepaid subscriber account with an empty vault
// under protocol control. channels is a packed bitmap, at most four bytes.
func (l *Ledger) CreateSubscriber(ctx context.Context, owner id.AccountID, channels []byte) (*subscriber.Subscriber, error) {
	if owner.IsNil() {
		return nil, ErrInvalidInput
	}

	bitmap, err := subscriber.PackChannels(channels)
	if err != nil {
		return nil, err
	}

	cfg, err := l.store.GetProtocolConfig(ctx)
	if err != nil {
		return nil, err
	}

	vault, err := l.custody.OpenVault(ctx, cfg.Authority, cfg.Mint)
	if err != nil {
		return nil, err
	}

	sub := &subscriber.Subscriber{
		Entity:   types.NewEntity(),
		ID:       id.NewSubscriberID(),
		Key:      addr.Subscriber(owner),
		Owner:    owner,
		Channels: bitmap,
		Vault:    vault,
		JoinedAt: l.clock.Now().Unix(),
		Active:   true,
	}

	if err := l.store.CreateSubscriber(ctx, sub); err != nil {
		return nil, err
	}

	cfg.TotalSubscribers++
	cfg.Touch()
	if err := l.store.UpdateProtocolConfig(ctx, cfg); err != nil {
		return nil, err
	}

	l.plugins.EmitSubscriberCreated(ctx, sub)
	return sub, nil
}

// GetSubscriber retrieves a subscriber by its owner account.
func (l *Ledger) GetSubscriber(ctx context.Context, owner id.AccountID) (*subscriber.Subscriber, error) {
	return l.store.GetSubscriber(ctx, addr.Subscriber(owner))
}

// Deposit moves funds from the owner's vault into the subscriber vault and
// credits the prepaid balance. Zero deposits are rejected.
func (l *Ledger) Deposit(ctx context.Context, owner id.AccountID, fundingVault id.VaultID, amount types.Amount) (*subscriber.Subscriber, error) {
	if amount.IsZero() {
		return nil, ErrInvalidAmount
	}

	sub, err := l.store.GetSubscriber(ctx, addr.Subscriber(owner))
	if err != nil {
		return nil, err
	}

	cap, err := l.custody.Authorize(ctx, fundingVault, owner)
	if err != nil {
		return nil, err
	}
	if err := l.custody.Transfer(ctx, cap, sub.Vault, amount); err != nil {
		return nil, err
	}

	sub.Balance, err = sub.Balance.CheckedAdd(amount)
	if err != nil {
		return nil, err
	}
	sub.Touch()

	if err := l.store.UpdateSubscriber(ctx, sub); err != nil {
		return nil, err
	}

	l.plugins.EmitBalanceChanged(ctx, sub)
	return sub, nil
}

// WithdrawBalance moves funds from the subscriber vault back to the given
// destination vault. The prepaid balance cannot go negative.
func (l *Ledger) WithdrawBalance(ctx context.Context, owner id.AccountID, destVault id.VaultID, amount types.Amount) (*subscriber.Subscriber, error) {
	if amount.IsZero() {
		return nil, ErrInvalidAmount
	}

	cfg, err := l.store.GetProtocolConfig(ctx)
	if err != nil {
		return nil, err
	}
	sub, err := l.store.GetSubscriber(ctx, addr.Subscriber(owner))
	if err != nil {
		return nil, err
	}

	// Withdrawing into the custody vault itself would debit the prepaid
	// balance without releasing any funds.
	if destVault == sub.Vault {
		return nil, ErrInvalidInput
	}

	remaining, err := sub.Balance.CheckedSub(amount)
	if err != nil {
		return nil, ErrInsufficientBalance
	}

	cap, err := l.custody.Authorize(ctx, sub.Vault, cfg.Authority)
	if err != nil {
		return nil, err
	}
	if err := l.custody.Transfer(ctx, cap, destVault, amount); err != nil {
		return nil, err
	}

	sub.Balance = remaining
	sub.Touch()

	if err := l.store.UpdateSubscriber(ctx, sub); err != nil {
		return nil, err
	}

	l.plugins.EmitBalanceChanged(ctx, sub)
	return sub, nil
}

// UpdateChannels replaces the subscriber's channel bitmap.
func (l *Ledger) UpdateChannels(ctx context.Context, owner id.AccountID, channels []byte) (*subscriber.Subscriber, error) {
	bitmap, err := subscriber.PackChannels(channels)
	if err != nil {
		return nil, err
	}

	sub, err := l.store.GetSubscriber(ctx, addr.Subscriber(owner))
	if err != nil {
		return nil, err
	}

	sub.Channels = bitmap
	sub.Touch()

	if err := l.store.UpdateSubscriber(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// ChargeForAlert debits one alert price from the subscriber: the treasury
// fee is floor(price * fee_bps / 10000) and goes to the treasury, the
// remainder goes to the revenue pool. The two parts always sum exactly to
// the price. An append-only receipt proves the charge.
func (l *Ledger) ChargeForAlert(ctx context.Context, owner id.AccountID, fingerprint [32]byte) (*subscriber.Receipt, error) {
	cfg, err := l.store.GetProtocolConfig(ctx)
	if err != nil {
		return nil, err
	}
	sub, err := l.store.GetSubscriber(ctx, addr.Subscriber(owner))
	if err != nil {
		return nil, err
	}
	if !sub.Active {
		return nil, ErrSubscriberInactive
	}

	price := cfg.PricePerAlert
	remainingBalance, err := sub.Balance.CheckedSub(price)
	if err != nil {
		return nil, ErrInsufficientBalance
	}

	fee, remainder, err := types.SplitFee(price, cfg.TreasuryFeeBps)
	if err != nil {
		return nil, err
	}

	// The receipt key is unique per (subscriber, fingerprint, second), so
	// appending it first makes a same-instant duplicate charge fail before
	// any funds move.
	now := l.clock.Now().Unix()
	receipt := &subscriber.Receipt{
		Entity:        types.NewEntity(),
		ID:            id.NewReceiptID(),
		Key:           addr.Receipt(sub.Key, fingerprint, now),
		SubscriberKey: sub.Key,
		Subscriber:    owner,
		Fingerprint:   fingerprint,
		Amount:        price,
		Timestamp:     now,
	}
	if err := l.store.AppendReceipt(ctx, receipt); err != nil {
		return nil, err
	}

	cap, err := l.custody.Authorize(ctx, sub.Vault, cfg.Authority)
	if err != nil {
		return nil, err
	}
	if !fee.IsZero() {
		if err := l.custody.Transfer(ctx, cap, cfg.Treasury, fee); err != nil {
			return nil, err
		}
	}
	if !remainder.IsZero() {
		if err := l.custody.Transfer(ctx, cap, cfg.RevenuePool, remainder); err != nil {
			return nil, err
		}
	}

	sub.Balance = remainingBalance
	sub.AlertsReceived++
	sub.Touch()
	if err := l.store.UpdateSubscriber(ctx, sub); err != nil {
		return nil, err
	}

	cfg.TotalAlertsDelivered++
	cfg.TotalRevenue, err = cfg.TotalRevenue.CheckedAdd(price)
	if err != nil {
		return nil, err
	}
	cfg.Touch()
	if err := l.store.UpdateProtocolConfig(ctx, cfg); err != nil {
		return nil, err
	}

	l.plugins.EmitSubscriberCharged(ctx, receipt)
	return receipt, nil
}

// ListReceipts returns a subscriber's charge receipts, oldest first.
func (l *Ledger) ListReceipts(ctx context.Context, owner id.AccountID) ([]*subscriber.Receipt, error) {
	sub, err := l.store.GetSubscriber(ctx, addr.Subscriber(owner))
	if err != nil {
		return nil, err
	}
	return l.store.ListReceipts(ctx, sub.Key)
}

// DeactivateSubscriber pauses charging for the subscriber. Funds stay put.
func (l *Ledger) DeactivateSubscriber(ctx context.Context, owner id.AccountID) (*subscriber.Subscriber, error) {
	return l.setSubscriberActive(ctx, owner, false)
}

// ReactivateSubscriber resumes charging for the subscriber.
func (l *Ledger) ReactivateSubscriber(ctx context.Context, owner id.AccountID) (*subscriber.Subscriber, error) {
	return l.setSubscriberActive(ctx, owner, true)
}

func (l *Ledger) setSubscriberActive(ctx context.Context, owner id.AccountID, active bool) (*subscriber.Subscriber, error) {
	sub, err := l.store.GetSubscriber(ctx, addr.Subscriber(owner))
	if err != nil {
		return nil, err
	}

	sub.Active = active
	sub.Touch()

	if err := l.store.UpdateSubscriber(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}
