// Package addr derives deterministic storage keys for ledger records.
//
// Every record is addressed by a content-derived key computed from a domain
// tag plus the record's identifying fields. The derivation is a BLAKE3 hash
// over the length-framed fields, so distinct identifying inputs can never
// produce the same key and the same inputs always resolve to the same key
// (idempotent lookup). Ledger logic depends only on that contract, not on
// the hash itself.
package addr

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/zeebo/blake3"

	"github.com/agentwire/ledger/id"
)

// Key is a deterministic storage slot for one record. The textual form is
// "tag:hexdigest", which keeps keys self-describing in logs and database
// rows.
type Key string

// Domain tags. One tag per record kind; the tag is hashed together with the
// fields, so records of different kinds can never collide even on identical
// identifying fields.
const (
	tagAlertRegistry     = "alert_registry"
	tagAlert             = "alert"
	tagDelivery          = "delivery"
	tagPublisherRegistry = "publisher_registry"
	tagPublisher         = "publisher"
	tagProtocolConfig    = "protocol_config"
	tagSubscriber        = "subscriber"
	tagReceipt           = "receipt"
)

// String returns the textual key form.
func (k Key) String() string { return string(k) }

// IsZero reports whether the key is empty.
func (k Key) IsZero() bool { return k == "" }

// derive hashes the tag and the length-framed fields into a Key. Length
// framing prevents ambiguity between field boundaries ("ab","c" vs "a","bc").
func derive(tag string, fields ...[]byte) Key {
	h := blake3.New()
	var frame [8]byte

	binary.LittleEndian.PutUint64(frame[:], uint64(len(tag)))
	_, _ = h.Write(frame[:])
	_, _ = h.Write([]byte(tag))

	for _, f := range fields {
		binary.LittleEndian.PutUint64(frame[:], uint64(len(f)))
		_, _ = h.Write(frame[:])
		_, _ = h.Write(f)
	}

	sum := h.Sum(nil)
	return Key(tag + ":" + hex.EncodeToString(sum[:16]))
}

// AlertRegistry returns the singleton key of the alert registry config.
func AlertRegistry() Key {
	return derive(tagAlertRegistry)
}

// Alert returns the key of an alert record, addressed by its caller-chosen
// alert identifier.
func Alert(alertID string) Key {
	return derive(tagAlert, []byte(alertID))
}

// Delivery returns the key of a delivery proof, addressed by the delivered
// alert, the receiving subscriber, and the delivery time.
func Delivery(alertKey Key, subscriber id.ID, unixTime int64) Key {
	var ts [8]byte
	binary.LittleEndian.PutUint64(ts[:], uint64(unixTime))
	return derive(tagDelivery, []byte(alertKey), []byte(subscriber.String()), ts[:])
}

// PublisherRegistry returns the singleton key of the publisher registry config.
func PublisherRegistry() Key {
	return derive(tagPublisherRegistry)
}

// Publisher returns the key of a publisher record, addressed by its owner.
func Publisher(owner id.ID) Key {
	return derive(tagPublisher, []byte(owner.String()))
}

// ProtocolConfig returns the singleton key of the subscription protocol config.
func ProtocolConfig() Key {
	return derive(tagProtocolConfig)
}

// Subscriber returns the key of a subscriber record, addressed by its owner.
func Subscriber(owner id.ID) Key {
	return derive(tagSubscriber, []byte(owner.String()))
}

// Receipt returns the key of a charge receipt, addressed by the charged
// subscriber, the alert fingerprint, and the charge time.
func Receipt(subscriberKey Key, fingerprint [32]byte, unixTime int64) Key {
	var ts [8]byte
	binary.LittleEndian.PutUint64(ts[:], uint64(unixTime))
	return derive(tagReceipt, []byte(subscriberKey), fingerprint[:], ts[:])
}
