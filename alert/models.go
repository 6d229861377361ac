// Package alert holds the Alert Ledger records: proof of existence and
// timing for published content, plus append-only delivery proofs.
package alert

import (
	"github.com/agentwire/ledger/addr"
	"github.com/agentwire/ledger/id"
	"github.com/agentwire/ledger/types"
)

// Field bounds. Lengths are byte counts, compared unsigned.
const (
	MaxAlertIDLen = 64
	MaxChannelLen = 32
	MaxPriority   = 3
	MaxImpact     = 10
)

// Registry is the singleton configuration record of the alert ledger.
// Created once by Initialize; only its counters mutate afterwards.
type Registry struct {
	types.Entity
	Key         addr.Key     `json:"key"`
	Authority   id.AccountID `json:"authority"`
	TotalAlerts uint64       `json:"total_alerts"`
}

// Alert is one published content alert. The fingerprint is immutable after
// registration; only the delivery counter mutates, and it never decreases.
type Alert struct {
	types.Entity
	Key           addr.Key     `json:"key"`
	AlertID       string       `json:"alert_id"` // caller-chosen, unique, <= 64 bytes
	Channel       string       `json:"channel"`
	Fingerprint   [32]byte     `json:"fingerprint"`
	Publisher     id.AccountID `json:"publisher"`
	Timestamp     int64        `json:"timestamp"` // unix seconds
	Priority      uint8        `json:"priority"`  // 0=low .. 3=critical
	Impact        uint8        `json:"impact"`    // 0..10
	DeliveryCount uint64       `json:"delivery_count"`
}

// Delivery is an append-only proof that an alert reached a subscriber.
// It records provenance only; payment is the subscription ledger's concern.
type Delivery struct {
	types.Entity
	ID         id.DeliveryID `json:"id"`
	Key        addr.Key      `json:"key"`
	AlertKey   addr.Key      `json:"alert_key"`
	Subscriber id.AccountID  `json:"subscriber"`
	Timestamp  int64         `json:"timestamp"` // unix seconds
}
