package ledger

import (
	"context"
	"log/slog"

	"github.com/agentwire/ledger/alert"
	"github.com/agentwire/ledger/clock"
	"github.com/agentwire/ledger/custody"
	"github.com/agentwire/ledger/id"
	"github.com/agentwire/ledger/plugin"
	"github.com/agentwire/ledger/store"
	"github.com/agentwire/ledger/subscriber"
	"github.com/agentwire/ledger/types"
)

// Ledger is the accounting engine of the wire: the alert, publisher, and
// subscription ledgers behind one facade, sharing a store, a custody
// service, and a clock.
type Ledger struct {
	store   store.Store
	custody custody.Service
	clock   clock.Clock
	plugins *plugin.Registry
	logger  *slog.Logger
}

// New creates a new Ledger instance.
func New(s store.Store, c custody.Service, opts ...Option) *Ledger {
	l := &Ledger{
		store:   s,
		custody: c,
		clock:   clock.System{},
		plugins: plugin.NewRegistry(),
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Option configures a Ledger instance.
type Option func(*Ledger)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
		l.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(l *Ledger) {
		_ = l.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithClock sets the time source for record timestamps.
func WithClock(c clock.Clock) Option {
	return func(l *Ledger) {
		l.clock = c
	}
}

// Start migrates the store and initializes plugins.
func (l *Ledger) Start(ctx context.Context) error {
	if err := l.store.Migrate(ctx); err != nil {
		return err
	}

	l.plugins.EmitInit(ctx, l)

	l.logger.Info("ledger started", "plugins", l.plugins.Count())

	return nil
}

// Stop shuts down the Ledger.
func (l *Ledger) Stop() error {
	l.plugins.EmitShutdown(context.Background())
	return l.store.Close()
}

// Plugins returns the plugin registry.
func (l *Ledger) Plugins() *plugin.Registry { return l.plugins }

// ──────────────────────────────────────────────────
// Delivery orchestration
// ──────────────────────────────────────────────────

// DeliveryResult is the outcome of one full delivery cycle: the charge
// receipt, the provenance record, and the payout released to the publisher.
type DeliveryResult struct {
	Alert    *alert.Alert        `json:"alert"`
	Delivery *alert.Delivery     `json:"delivery"`
	Receipt  *subscriber.Receipt `json:"receipt"`
	Payout   types.Amount        `json:"payout"`
}

// ProcessDelivery runs the full accounting cycle for delivering one alert
// to one subscriber: charge the subscriber, pay the publisher out of the
// revenue pool, and record the delivery proof.
//
// The charge commits first. If the payout then fails, the charge is
// reversed (balance, vault funds, and counters restored) and the original
// payout error is returned; the receipt row remains as an audit trace of
// the reversed attempt.
func (l *Ledger) ProcessDelivery(ctx context.Context, alertID string, subscriberOwner id.AccountID) (*DeliveryResult, error) {
	a, err := l.GetAlert(ctx, alertID)
	if err != nil {
		return nil, err
	}

	receipt, err := l.ChargeForAlert(ctx, subscriberOwner, a.Fingerprint)
	if err != nil {
		return nil, err
	}

	result := &DeliveryResult{Alert: a, Receipt: receipt}

	pubReg, err := l.store.GetPublisherRegistry(ctx)
	if err == nil {
		result.Payout, err = l.DistributeRevenue(ctx, pubReg.Authority, a.Publisher, receipt.Amount)
	}
	if err != nil {
		if compErr := l.compensateCharge(ctx, subscriberOwner, receipt); compErr != nil {
			l.logger.Error("charge compensation failed",
				"alert_id", alertID,
				"receipt", receipt.ID,
				"error", compErr,
			)
		}
		l.plugins.EmitDeliveryCompensated(ctx, result, err)
		return nil, err
	}

	result.Delivery, err = l.RecordDelivery(ctx, alertID, subscriberOwner)
	if err != nil {
		return nil, err
	}

	l.plugins.EmitDeliveryProcessed(ctx, result)
	return result, nil
}

// compensateCharge reverses a committed charge: funds move back from the
// treasury and revenue pool to the subscriber's vault, and the balance and
// config counters are restored.
func (l *Ledger) compensateCharge(ctx context.Context, owner id.AccountID, receipt *subscriber.Receipt) error {
	cfg, err := l.store.GetProtocolConfig(ctx)
	if err != nil {
		return err
	}
	sub, err := l.store.GetSubscriber(ctx, receipt.SubscriberKey)
	if err != nil {
		return err
	}

	fee, remainder, err := types.SplitFee(receipt.Amount, cfg.TreasuryFeeBps)
	if err != nil {
		return err
	}

	if !fee.IsZero() {
		cap, err := l.custody.Authorize(ctx, cfg.Treasury, cfg.Authority)
		if err != nil {
			return err
		}
		if err := l.custody.Transfer(ctx, cap, sub.Vault, fee); err != nil {
			return err
		}
	}
	if !remainder.IsZero() {
		cap, err := l.custody.Authorize(ctx, cfg.RevenuePool, cfg.Authority)
		if err != nil {
			return err
		}
		if err := l.custody.Transfer(ctx, cap, sub.Vault, remainder); err != nil {
			return err
		}
	}

	sub.Balance, err = sub.Balance.CheckedAdd(receipt.Amount)
	if err != nil {
		return err
	}
	sub.AlertsReceived--
	sub.Touch()
	if err := l.store.UpdateSubscriber(ctx, sub); err != nil {
		return err
	}

	cfg.TotalAlertsDelivered--
	cfg.TotalRevenue, err = cfg.TotalRevenue.CheckedSub(receipt.Amount)
	if err != nil {
		return err
	}
	cfg.Touch()
	if err := l.store.UpdateProtocolConfig(ctx, cfg); err != nil {
		return err
	}

	l.plugins.EmitBalanceChanged(ctx, sub)
	return nil
}
