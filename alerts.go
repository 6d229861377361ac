package ledger

import (
	"context"
	"crypto/subtle"

	"github.com/agentwire/ledger/addr"
	"github.com/agentwire/ledger/alert"
	"github.com/agentwire/ledger/id"
	"github.com/agentwire/ledger/types"
)

// ──────────────────────────────────────────────────
// Alert Ledger
// ──────────────────────────────────────────────────

// InitializeAlertRegistry creates the singleton alert registry. Calling it
// a second time fails with ErrAlreadyInitialized.
func (l *Ledger) InitializeAlertRegistry(ctx context.Context, authority id.AccountID) (*alert.Registry, error) {
	if authority.IsNil() {
		return nil, ErrInvalidInput
	}

	reg := &alert.Registry{
		Entity:    types.NewEntity(),
		Key:       addr.AlertRegistry(),
		Authority: authority,
	}

	if err := l.store.CreateAlertRegistry(ctx, reg); err != nil {
		return nil, err
	}

	l.logger.Info("alert registry initialized", "authority", authority)
	return reg, nil
}

// RegisterAlertInput carries the fields of a new alert registration.
type RegisterAlertInput struct {
	AlertID     string
	Channel     string
	Fingerprint [32]byte
	Priority    uint8
	Impact      uint8
}

// RegisterAlert records proof of existence for a published alert. The
// alert id is caller-chosen and unique; re-registering the same id fails
// with ErrAlertExists regardless of the other fields.
func (l *Ledger) RegisterAlert(ctx context.Context, publisherOwner id.AccountID, in RegisterAlertInput) (*alert.Alert, error) {
	if publisherOwner.IsNil() || in.AlertID == "" {
		return nil, ErrInvalidInput
	}
	if len(in.AlertID) > alert.MaxAlertIDLen {
		return nil, ErrAlertIDTooLong
	}
	if len(in.Channel) > alert.MaxChannelLen {
		return nil, ErrChannelTooLong
	}
	if in.Priority > alert.MaxPriority {
		return nil, ErrPriorityOutOfRange
	}
	if in.Impact > alert.MaxImpact {
		return nil, ErrImpactOutOfRange
	}

	reg, err := l.store.GetAlertRegistry(ctx)
	if err != nil {
		return nil, err
	}

	a := &alert.Alert{
		Entity:      types.NewEntity(),
		Key:         addr.Alert(in.AlertID),
		AlertID:     in.AlertID,
		Channel:     in.Channel,
		Fingerprint: in.Fingerprint,
		Publisher:   publisherOwner,
		Timestamp:   l.clock.Now().Unix(),
		Priority:    in.Priority,
		Impact:      in.Impact,
	}

	if err := l.store.CreateAlert(ctx, a); err != nil {
		return nil, err
	}

	reg.TotalAlerts++
	reg.Touch()
	if err := l.store.UpdateAlertRegistry(ctx, reg); err != nil {
		return nil, err
	}

	l.plugins.EmitAlertRegistered(ctx, a)
	return a, nil
}

// GetAlert retrieves an alert by its caller-chosen id.
func (l *Ledger) GetAlert(ctx context.Context, alertID string) (*alert.Alert, error) {
	return l.store.GetAlert(ctx, addr.Alert(alertID))
}

// VerifyAlert checks a content fingerprint against the registered alert.
// It returns false with a nil error on mismatch; errors report lookup
// failures only.
func (l *Ledger) VerifyAlert(ctx context.Context, alertID string, fingerprint [32]byte) (bool, error) {
	a, err := l.store.GetAlert(ctx, addr.Alert(alertID))
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare(a.Fingerprint[:], fingerprint[:]) == 1, nil
}

// RecordDelivery appends a delivery proof to an alert and bumps the
// delivery counter. The counter never decreases.
func (l *Ledger) RecordDelivery(ctx context.Context, alertID string, subscriberID id.AccountID) (*alert.Delivery, error) {
	if subscriberID.IsNil() {
		return nil, ErrInvalidInput
	}

	a, err := l.store.GetAlert(ctx, addr.Alert(alertID))
	if err != nil {
		return nil, err
	}

	now := l.clock.Now().Unix()
	d := &alert.Delivery{
		Entity:     types.NewEntity(),
		ID:         id.NewDeliveryID(),
		Key:        addr.Delivery(a.Key, subscriberID, now),
		AlertKey:   a.Key,
		Subscriber: subscriberID,
		Timestamp:  now,
	}

	if err := l.store.AppendAlertDelivery(ctx, d); err != nil {
		return nil, err
	}

	a.DeliveryCount++
	a.Touch()
	if err := l.store.UpdateAlert(ctx, a); err != nil {
		return nil, err
	}

	l.plugins.EmitDeliveryRecorded(ctx, d)
	return d, nil
}

// ListDeliveries returns the delivery proofs recorded for an alert, oldest
// first.
func (l *Ledger) ListDeliveries(ctx context.Context, alertID string) ([]*alert.Delivery, error) {
	a, err := l.store.GetAlert(ctx, addr.Alert(alertID))
	if err != nil {
		return nil, err
	}
	return l.store.ListAlertDeliveries(ctx, a.Key)
}
