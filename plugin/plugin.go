// Package plugin provides an extensible plugin system for the wire ledger.
// Plugins hook into registry lifecycle events to extend functionality.
// Payloads are passed as interface{} so this package has no dependency on
// the domain packages; hooks type-assert what they need.
package plugin

import "context"

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the engine starts.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, ledger interface{}) error
}

// OnShutdown is called when the engine stops.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Alert ledger hooks
// ──────────────────────────────────────────────────

// OnAlertRegistered is called when a new alert is registered.
type OnAlertRegistered interface {
	Plugin
	OnAlertRegistered(ctx context.Context, alert interface{}) error
}

// OnDeliveryRecorded is called when a delivery proof is appended.
type OnDeliveryRecorded interface {
	Plugin
	OnDeliveryRecorded(ctx context.Context, delivery interface{}) error
}

// ──────────────────────────────────────────────────
// Publisher ledger hooks
// ──────────────────────────────────────────────────

// OnPublisherRegistered is called when a publisher registers and stakes.
type OnPublisherRegistered interface {
	Plugin
	OnPublisherRegistered(ctx context.Context, pub interface{}) error
}

// OnSubmissionRecorded is called after a submission outcome adjusts
// reputation.
type OnSubmissionRecorded interface {
	Plugin
	OnSubmissionRecorded(ctx context.Context, pub interface{}, accepted bool) error
}

// OnRevenueDistributed is called after a payout leaves the revenue pool.
type OnRevenueDistributed interface {
	Plugin
	OnRevenueDistributed(ctx context.Context, pub interface{}, amount uint64) error
}

// OnPublisherSlashed is called after stake is slashed to the treasury.
type OnPublisherSlashed interface {
	Plugin
	OnPublisherSlashed(ctx context.Context, pub interface{}, amount uint64, reason string) error
}

// OnStakeWithdrawn is called after a publisher withdraws remaining stake.
type OnStakeWithdrawn interface {
	Plugin
	OnStakeWithdrawn(ctx context.Context, pub interface{}, amount uint64) error
}

// ──────────────────────────────────────────────────
// Subscription ledger hooks
// ──────────────────────────────────────────────────

// OnSubscriberCreated is called when a subscriber account is created.
type OnSubscriberCreated interface {
	Plugin
	OnSubscriberCreated(ctx context.Context, sub interface{}) error
}

// OnBalanceChanged is called after a deposit or withdrawal settles.
type OnBalanceChanged interface {
	Plugin
	OnBalanceChanged(ctx context.Context, sub interface{}) error
}

// OnSubscriberCharged is called after a charge completes, with the receipt.
type OnSubscriberCharged interface {
	Plugin
	OnSubscriberCharged(ctx context.Context, receipt interface{}) error
}

// ──────────────────────────────────────────────────
// Orchestration hooks
// ──────────────────────────────────────────────────

// OnDeliveryProcessed is called after a full charge/distribute/record
// cycle completes.
type OnDeliveryProcessed interface {
	Plugin
	OnDeliveryProcessed(ctx context.Context, result interface{}) error
}

// OnDeliveryCompensated is called when a charge had to be refunded because
// a later leg of the delivery cycle failed.
type OnDeliveryCompensated interface {
	Plugin
	OnDeliveryCompensated(ctx context.Context, result interface{}, cause error) error
}
