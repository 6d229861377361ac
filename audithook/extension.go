// Package audithook bridges Ledger lifecycle events to an audit trail backend.
//
// It defines a local Recorder interface so the package does not depend on a
// concrete audit store. Callers inject a RecorderFunc adapter at wiring time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/agentwire/ledger/alert"
	"github.com/agentwire/ledger/plugin"
	"github.com/agentwire/ledger/publisher"
	"github.com/agentwire/ledger/subscriber"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin                = (*Extension)(nil)
	_ plugin.OnAlertRegistered     = (*Extension)(nil)
	_ plugin.OnDeliveryRecorded    = (*Extension)(nil)
	_ plugin.OnPublisherRegistered = (*Extension)(nil)
	_ plugin.OnSubmissionRecorded  = (*Extension)(nil)
	_ plugin.OnRevenueDistributed  = (*Extension)(nil)
	_ plugin.OnPublisherSlashed    = (*Extension)(nil)
	_ plugin.OnStakeWithdrawn      = (*Extension)(nil)
	_ plugin.OnSubscriberCreated   = (*Extension)(nil)
	_ plugin.OnBalanceChanged      = (*Extension)(nil)
	_ plugin.OnSubscriberCharged   = (*Extension)(nil)
	_ plugin.OnDeliveryCompensated = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a local representation of an audit event.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges Ledger lifecycle events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Alert lifecycle hooks
// ──────────────────────────────────────────────────

// OnAlertRegistered implements plugin.OnAlertRegistered.
func (e *Extension) OnAlertRegistered(ctx context.Context, v interface{}) error {
	var id string
	if a, ok := v.(*alert.Alert); ok {
		id = a.AlertID
	}
	return e.record(ctx, ActionAlertRegistered, SeverityInfo, OutcomeSuccess,
		ResourceAlert, id, CategoryAlerts, nil,
		"alert_id", id,
	)
}

// OnDeliveryRecorded implements plugin.OnDeliveryRecorded.
func (e *Extension) OnDeliveryRecorded(ctx context.Context, v interface{}) error {
	var id, subscriberID string
	if d, ok := v.(*alert.Delivery); ok {
		id = d.ID.String()
		subscriberID = d.Subscriber.String()
	}
	return e.record(ctx, ActionDeliveryRecorded, SeverityInfo, OutcomeSuccess,
		ResourceDelivery, id, CategoryAlerts, nil,
		"subscriber", subscriberID,
	)
}

// ──────────────────────────────────────────────────
// Publisher lifecycle hooks
// ──────────────────────────────────────────────────

// OnPublisherRegistered implements plugin.OnPublisherRegistered.
func (e *Extension) OnPublisherRegistered(ctx context.Context, v interface{}) error {
	var id string
	if p, ok := v.(*publisher.Publisher); ok {
		id = p.ID.String()
	}
	return e.record(ctx, ActionPublisherRegistered, SeverityInfo, OutcomeSuccess,
		ResourcePublisher, id, CategoryPublishing, nil,
		"publisher", id,
	)
}

// OnSubmissionRecorded implements plugin.OnSubmissionRecorded.
func (e *Extension) OnSubmissionRecorded(ctx context.Context, v interface{}, accepted bool) error {
	action := ActionSubmissionAccepted
	if !accepted {
		action = ActionSubmissionRejected
	}
	var id string
	if p, ok := v.(*publisher.Publisher); ok {
		id = p.ID.String()
	}
	return e.record(ctx, action, SeverityInfo, OutcomeSuccess,
		ResourcePublisher, id, CategoryPublishing, nil,
		"accepted", accepted,
	)
}

// OnRevenueDistributed implements plugin.OnRevenueDistributed.
func (e *Extension) OnRevenueDistributed(ctx context.Context, v interface{}, amount uint64) error {
	var id string
	if p, ok := v.(*publisher.Publisher); ok {
		id = p.ID.String()
	}
	return e.record(ctx, ActionRevenueDistributed, SeverityInfo, OutcomeSuccess,
		ResourcePublisher, id, CategoryPayment, nil,
		"amount", amount,
	)
}

// OnPublisherSlashed implements plugin.OnPublisherSlashed.
func (e *Extension) OnPublisherSlashed(ctx context.Context, v interface{}, amount uint64, reason string) error {
	var id string
	if p, ok := v.(*publisher.Publisher); ok {
		id = p.ID.String()
	}
	return e.record(ctx, ActionPublisherSlashed, SeverityCritical, OutcomeSuccess,
		ResourcePublisher, id, CategoryStake, nil,
		"amount", amount,
		"slash_reason", reason,
	)
}

// OnStakeWithdrawn implements plugin.OnStakeWithdrawn.
func (e *Extension) OnStakeWithdrawn(ctx context.Context, v interface{}, amount uint64) error {
	var id string
	if p, ok := v.(*publisher.Publisher); ok {
		id = p.ID.String()
	}
	return e.record(ctx, ActionStakeWithdrawn, SeverityWarning, OutcomeSuccess,
		ResourcePublisher, id, CategoryStake, nil,
		"amount", amount,
	)
}

// ──────────────────────────────────────────────────
// Subscriber lifecycle hooks
// ──────────────────────────────────────────────────

// OnSubscriberCreated implements plugin.OnSubscriberCreated.
func (e *Extension) OnSubscriberCreated(ctx context.Context, v interface{}) error {
	var id string
	if s, ok := v.(*subscriber.Subscriber); ok {
		id = s.ID.String()
	}
	return e.record(ctx, ActionSubscriberCreated, SeverityInfo, OutcomeSuccess,
		ResourceSubscriber, id, CategoryAlerts, nil,
		"subscriber", id,
	)
}

// OnBalanceChanged implements plugin.OnBalanceChanged.
func (e *Extension) OnBalanceChanged(ctx context.Context, v interface{}) error {
	var id string
	var balance uint64
	if s, ok := v.(*subscriber.Subscriber); ok {
		id = s.ID.String()
		balance = uint64(s.Balance)
	}
	return e.record(ctx, ActionBalanceChanged, SeverityInfo, OutcomeSuccess,
		ResourceSubscriber, id, CategoryPayment, nil,
		"balance", balance,
	)
}

// OnSubscriberCharged implements plugin.OnSubscriberCharged.
func (e *Extension) OnSubscriberCharged(ctx context.Context, v interface{}) error {
	var id string
	var amount uint64
	if r, ok := v.(*subscriber.Receipt); ok {
		id = r.ID.String()
		amount = uint64(r.Amount)
	}
	return e.record(ctx, ActionSubscriberCharged, SeverityInfo, OutcomeSuccess,
		ResourceReceipt, id, CategoryPayment, nil,
		"amount", amount,
	)
}

// ──────────────────────────────────────────────────
// Orchestration hooks
// ──────────────────────────────────────────────────

// OnDeliveryCompensated implements plugin.OnDeliveryCompensated.
func (e *Extension) OnDeliveryCompensated(ctx context.Context, _ interface{}, cause error) error {
	return e.record(ctx, ActionDeliveryCompensated, SeverityError, OutcomePartial,
		ResourceDelivery, "", CategoryPayment, cause,
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audithook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
