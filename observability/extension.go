// Package observability provides a metrics extension for Ledger that records
// lifecycle event counts via Prometheus.
package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/agentwire/ledger/plugin"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin                = (*MetricsExtension)(nil)
	_ plugin.OnInit                = (*MetricsExtension)(nil)
	_ plugin.OnAlertRegistered     = (*MetricsExtension)(nil)
	_ plugin.OnDeliveryRecorded    = (*MetricsExtension)(nil)
	_ plugin.OnPublisherRegistered = (*MetricsExtension)(nil)
	_ plugin.OnSubmissionRecorded  = (*MetricsExtension)(nil)
	_ plugin.OnRevenueDistributed  = (*MetricsExtension)(nil)
	_ plugin.OnPublisherSlashed    = (*MetricsExtension)(nil)
	_ plugin.OnStakeWithdrawn      = (*MetricsExtension)(nil)
	_ plugin.OnSubscriberCreated   = (*MetricsExtension)(nil)
	_ plugin.OnBalanceChanged      = (*MetricsExtension)(nil)
	_ plugin.OnSubscriberCharged   = (*MetricsExtension)(nil)
	_ plugin.OnDeliveryProcessed   = (*MetricsExtension)(nil)
	_ plugin.OnDeliveryCompensated = (*MetricsExtension)(nil)
)

// MetricsExtension records system-wide lifecycle metrics.
// Register it as a Ledger plugin to automatically track marketplace metrics.
type MetricsExtension struct {
	// Alert metrics
	AlertsRegistered   prometheus.Counter
	DeliveriesRecorded prometheus.Counter

	// Publisher metrics
	PublishersRegistered prometheus.Counter
	SubmissionsAccepted  prometheus.Counter
	SubmissionsRejected  prometheus.Counter
	RevenueDistributed   prometheus.Counter
	PublishersSlashed    prometheus.Counter
	StakeSlashed         prometheus.Counter
	StakeWithdrawn       prometheus.Counter

	// Subscriber metrics
	SubscribersCreated prometheus.Counter
	BalanceChanges     prometheus.Counter
	SubscribersCharged prometheus.Counter

	// Orchestration metrics
	DeliveriesProcessed   prometheus.Counter
	DeliveriesCompensated prometheus.Counter
}

// NewMetricsExtension creates a MetricsExtension whose collectors are
// registered with the provided Registerer.
func NewMetricsExtension(reg prometheus.Registerer) *MetricsExtension {
	counter := func(name, help string) prometheus.Counter {
		return promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      name,
			Help:      help,
		})
	}

	return &MetricsExtension{
		// Alert metrics
		AlertsRegistered:   counter("alerts_registered_total", "Alerts registered in the alert ledger."),
		DeliveriesRecorded: counter("deliveries_recorded_total", "Delivery records appended to alerts."),

		// Publisher metrics
		PublishersRegistered: counter("publishers_registered_total", "Publishers registered with stake."),
		SubmissionsAccepted:  counter("submissions_accepted_total", "Publisher submissions accepted."),
		SubmissionsRejected:  counter("submissions_rejected_total", "Publisher submissions rejected."),
		RevenueDistributed:   counter("revenue_distributed_total", "Revenue distribution payouts executed."),
		PublishersSlashed:    counter("publishers_slashed_total", "Slash operations applied to publishers."),
		StakeSlashed:         counter("stake_slashed_units_total", "Total stake units moved to the treasury by slashes."),
		StakeWithdrawn:       counter("stake_withdrawn_total", "Stake withdrawals completed."),

		// Subscriber metrics
		SubscribersCreated: counter("subscribers_created_total", "Subscriber accounts created."),
		BalanceChanges:     counter("balance_changes_total", "Subscriber balance deposits and withdrawals."),
		SubscribersCharged: counter("subscribers_charged_total", "Per-alert charges taken from subscribers."),

		// Orchestration metrics
		DeliveriesProcessed:   counter("deliveries_processed_total", "Full delivery cycles completed."),
		DeliveriesCompensated: counter("deliveries_compensated_total", "Delivery cycles rolled back after a failed payout."),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ interface{}) error {
	// No initialization needed
	return nil
}

// ──────────────────────────────────────────────────
// Alert lifecycle hooks
// ──────────────────────────────────────────────────

// OnAlertRegistered implements plugin.OnAlertRegistered.
func (m *MetricsExtension) OnAlertRegistered(_ context.Context, _ interface{}) error {
	m.AlertsRegistered.Inc()
	return nil
}

// OnDeliveryRecorded implements plugin.OnDeliveryRecorded.
func (m *MetricsExtension) OnDeliveryRecorded(_ context.Context, _ interface{}) error {
	m.DeliveriesRecorded.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Publisher lifecycle hooks
// ──────────────────────────────────────────────────

// OnPublisherRegistered implements plugin.OnPublisherRegistered.
func (m *MetricsExtension) OnPublisherRegistered(_ context.Context, _ interface{}) error {
	m.PublishersRegistered.Inc()
	return nil
}

// OnSubmissionRecorded implements plugin.OnSubmissionRecorded.
func (m *MetricsExtension) OnSubmissionRecorded(_ context.Context, _ interface{}, accepted bool) error {
	if accepted {
		m.SubmissionsAccepted.Inc()
	} else {
		m.SubmissionsRejected.Inc()
	}
	return nil
}

// OnRevenueDistributed implements plugin.OnRevenueDistributed.
func (m *MetricsExtension) OnRevenueDistributed(_ context.Context, _ interface{}, _ uint64) error {
	m.RevenueDistributed.Inc()
	return nil
}

// OnPublisherSlashed implements plugin.OnPublisherSlashed.
func (m *MetricsExtension) OnPublisherSlashed(_ context.Context, _ interface{}, amount uint64, _ string) error {
	m.PublishersSlashed.Inc()
	m.StakeSlashed.Add(float64(amount))
	return nil
}

// OnStakeWithdrawn implements plugin.OnStakeWithdrawn.
func (m *MetricsExtension) OnStakeWithdrawn(_ context.Context, _ interface{}, _ uint64) error {
	m.StakeWithdrawn.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Subscriber lifecycle hooks
// ──────────────────────────────────────────────────

// OnSubscriberCreated implements plugin.OnSubscriberCreated.
func (m *MetricsExtension) OnSubscriberCreated(_ context.Context, _ interface{}) error {
	m.SubscribersCreated.Inc()
	return nil
}

// OnBalanceChanged implements plugin.OnBalanceChanged.
func (m *MetricsExtension) OnBalanceChanged(_ context.Context, _ interface{}) error {
	m.BalanceChanges.Inc()
	return nil
}

// OnSubscriberCharged implements plugin.OnSubscriberCharged.
func (m *MetricsExtension) OnSubscriberCharged(_ context.Context, _ interface{}) error {
	m.SubscribersCharged.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Orchestration hooks
// ──────────────────────────────────────────────────

// OnDeliveryProcessed implements plugin.OnDeliveryProcessed.
func (m *MetricsExtension) OnDeliveryProcessed(_ context.Context, _ interface{}) error {
	m.DeliveriesProcessed.Inc()
	return nil
}

// OnDeliveryCompensated implements plugin.OnDeliveryCompensated.
func (m *MetricsExtension) OnDeliveryCompensated(_ context.Context, _ interface{}, _ error) error {
	m.DeliveriesCompensated.Inc()
	return nil
}
