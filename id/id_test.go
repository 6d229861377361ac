package id_test

import (
	"strings"
	"testing"

	"github.com/agentwire/ledger/id"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		newFn  func() id.ID
		prefix string
	}{
		{"AccountID", id.NewAccountID, "acct_"},
		{"AlertID", id.NewAlertID, "alert_"},
		{"DeliveryID", id.NewDeliveryID, "dlv_"},
		{"PublisherID", id.NewPublisherID, "pub_"},
		{"SubscriberID", id.NewSubscriberID, "subr_"},
		{"ReceiptID", id.NewReceiptID, "rcpt_"},
		{"VaultID", id.NewVaultID, "vault_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.newFn().String()
			if !strings.HasPrefix(got, tt.prefix) {
				t.Errorf("expected prefix %q, got %q", tt.prefix, got)
			}
		})
	}
}

func TestNew(t *testing.T) {
	i := id.New(id.PrefixPublisher)
	if i.IsNil() {
		t.Fatal("New returned a nil ID")
	}
	if i.Prefix() != id.PrefixPublisher {
		t.Errorf("prefix: got %q, want %q", i.Prefix(), id.PrefixPublisher)
	}
}

func TestUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		s := id.NewAlertID().String()
		if seen[s] {
			t.Fatalf("duplicate ID generated: %s", s)
		}
		seen[s] = true
	}
}

func TestParseRoundTrip(t *testing.T) {
	orig := id.NewSubscriberID()

	parsed, err := id.Parse(orig.String())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if parsed.String() != orig.String() {
		t.Errorf("round trip: got %q, want %q", parsed.String(), orig.String())
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"Empty", ""},
		{"Garbage", "not-a-typeid"},
		{"BadSuffix", "pub_!!!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := id.Parse(tt.input); err == nil {
				t.Errorf("Parse(%q): expected error", tt.input)
			}
		})
	}
}

func TestParseWithPrefix(t *testing.T) {
	pubID := id.NewPublisherID()

	if _, err := id.ParsePublisherID(pubID.String()); err != nil {
		t.Errorf("ParsePublisherID: %v", err)
	}
	if _, err := id.ParseSubscriberID(pubID.String()); err == nil {
		t.Error("ParseSubscriberID accepted a publisher ID")
	}
}

func TestNilID(t *testing.T) {
	var nilID id.ID

	if !nilID.IsNil() {
		t.Error("zero-value ID should be nil")
	}
	if nilID.String() != "" {
		t.Errorf("nil ID String: got %q, want empty", nilID.String())
	}
	if nilID.Prefix() != "" {
		t.Errorf("nil ID Prefix: got %q, want empty", nilID.Prefix())
	}
}

func TestTextMarshaling(t *testing.T) {
	orig := id.NewReceiptID()

	data, err := orig.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}

	var decoded id.ID
	if err := decoded.UnmarshalText(data); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if decoded.String() != orig.String() {
		t.Errorf("round trip: got %q, want %q", decoded.String(), orig.String())
	}
}

func TestSQLScan(t *testing.T) {
	orig := id.NewVaultID()

	v, err := orig.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}

	var scanned id.ID
	if err := scanned.Scan(v); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if scanned.String() != orig.String() {
		t.Errorf("round trip: got %q, want %q", scanned.String(), orig.String())
	}

	var nilScanned id.ID
	if err := nilScanned.Scan(nil); err != nil {
		t.Fatalf("Scan(nil): %v", err)
	}
	if !nilScanned.IsNil() {
		t.Error("Scan(nil) should produce the Nil ID")
	}
}
