package ledger_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/agentwire/ledger"
	"github.com/agentwire/ledger/alert"
	"github.com/agentwire/ledger/id"
)

func TestInitializeAlertRegistry(t *testing.T) {
	ctx := context.Background()

	w := newWorld(t)
	reg, err := w.l.InitializeAlertRegistry(ctx, w.authority)
	if err != nil {
		t.Fatal(err)
	}
	if reg.Authority != w.authority {
		t.Errorf("authority = %v, want %v", reg.Authority, w.authority)
	}
	if reg.TotalAlerts != 0 {
		t.Errorf("total alerts = %d, want 0", reg.TotalAlerts)
	}

	if _, err := w.l.InitializeAlertRegistry(ctx, w.authority); !errors.Is(err, ledger.ErrAlreadyInitialized) {
		t.Fatalf("second init err = %v, want ErrAlreadyInitialized", err)
	}
}

func TestRegisterAlert(t *testing.T) {
	ctx := context.Background()

	newRegistry := func(t *testing.T) (*world, id.AccountID) {
		w := newWorld(t)
		if _, err := w.l.InitializeAlertRegistry(ctx, w.authority); err != nil {
			t.Fatal(err)
		}
		return w, id.NewAccountID()
	}

	t.Run("records proof of existence", func(t *testing.T) {
		w, pub := newRegistry(t)
		fp := [32]byte{0xaa, 0xbb}

		a, err := w.l.RegisterAlert(ctx, pub, ledger.RegisterAlertInput{
			AlertID:     "flash-042",
			Channel:     "geopolitics",
			Fingerprint: fp,
			Priority:    3,
			Impact:      10,
		})
		if err != nil {
			t.Fatal(err)
		}
		if a.AlertID != "flash-042" || a.Channel != "geopolitics" {
			t.Errorf("alert = %q/%q", a.AlertID, a.Channel)
		}
		if a.Publisher != pub {
			t.Errorf("publisher = %v, want %v", a.Publisher, pub)
		}
		if a.DeliveryCount != 0 {
			t.Errorf("delivery count = %d, want 0", a.DeliveryCount)
		}

		got, err := w.l.GetAlert(ctx, "flash-042")
		if err != nil {
			t.Fatal(err)
		}
		if got.Fingerprint != fp {
			t.Error("stored fingerprint mismatch")
		}
	})

	t.Run("duplicate id", func(t *testing.T) {
		w, pub := newRegistry(t)
		in := ledger.RegisterAlertInput{AlertID: "dup"}
		if _, err := w.l.RegisterAlert(ctx, pub, in); err != nil {
			t.Fatal(err)
		}
		if _, err := w.l.RegisterAlert(ctx, pub, in); !errors.Is(err, ledger.ErrAlertExists) {
			t.Fatalf("err = %v, want ErrAlertExists", err)
		}
	})

	t.Run("validation", func(t *testing.T) {
		w, pub := newRegistry(t)

		cases := []struct {
			name string
			in   ledger.RegisterAlertInput
			want error
		}{
			{"empty id", ledger.RegisterAlertInput{}, ledger.ErrInvalidInput},
			{"id too long", ledger.RegisterAlertInput{AlertID: strings.Repeat("x", alert.MaxAlertIDLen+1)}, ledger.ErrAlertIDTooLong},
			{"channel too long", ledger.RegisterAlertInput{AlertID: "a", Channel: strings.Repeat("c", alert.MaxChannelLen+1)}, ledger.ErrChannelTooLong},
			{"priority out of range", ledger.RegisterAlertInput{AlertID: "a", Priority: alert.MaxPriority + 1}, ledger.ErrPriorityOutOfRange},
			{"impact out of range", ledger.RegisterAlertInput{AlertID: "a", Impact: alert.MaxImpact + 1}, ledger.ErrImpactOutOfRange},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				if _, err := w.l.RegisterAlert(ctx, pub, tc.in); !errors.Is(err, tc.want) {
					t.Fatalf("err = %v, want %v", err, tc.want)
				}
			})
		}
	})

	t.Run("registry not initialized", func(t *testing.T) {
		w := newWorld(t)
		_, err := w.l.RegisterAlert(ctx, id.NewAccountID(), ledger.RegisterAlertInput{AlertID: "a"})
		if !errors.Is(err, ledger.ErrNotInitialized) {
			t.Fatalf("err = %v, want ErrNotInitialized", err)
		}
	})
}

func TestVerifyAlert(t *testing.T) {
	ctx := context.Background()

	w := newWorld(t)
	if _, err := w.l.InitializeAlertRegistry(ctx, w.authority); err != nil {
		t.Fatal(err)
	}

	fp := [32]byte{1, 2, 3, 4}
	if _, err := w.l.RegisterAlert(ctx, id.NewAccountID(), ledger.RegisterAlertInput{
		AlertID:     "verify-me",
		Fingerprint: fp,
	}); err != nil {
		t.Fatal(err)
	}

	ok, err := w.l.VerifyAlert(ctx, "verify-me", fp)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("matching fingerprint not verified")
	}

	ok, err = w.l.VerifyAlert(ctx, "verify-me", [32]byte{9, 9, 9})
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("mismatched fingerprint verified")
	}

	if _, err := w.l.VerifyAlert(ctx, "missing", fp); !errors.Is(err, ledger.ErrAlertNotFound) {
		t.Fatalf("err = %v, want ErrAlertNotFound", err)
	}
}

func TestRecordDelivery(t *testing.T) {
	ctx := context.Background()

	w := newWorld(t)
	if _, err := w.l.InitializeAlertRegistry(ctx, w.authority); err != nil {
		t.Fatal(err)
	}
	if _, err := w.l.RegisterAlert(ctx, id.NewAccountID(), ledger.RegisterAlertInput{AlertID: "d1"}); err != nil {
		t.Fatal(err)
	}

	subA := id.NewAccountID()
	subB := id.NewAccountID()

	first, err := w.l.RecordDelivery(ctx, "d1", subA)
	if err != nil {
		t.Fatal(err)
	}
	w.clk.Advance(time.Second)
	second, err := w.l.RecordDelivery(ctx, "d1", subB)
	if err != nil {
		t.Fatal(err)
	}
	if first.ID == second.ID {
		t.Error("delivery ids collide")
	}

	a, err := w.l.GetAlert(ctx, "d1")
	if err != nil {
		t.Fatal(err)
	}
	if a.DeliveryCount != 2 {
		t.Errorf("delivery count = %d, want 2", a.DeliveryCount)
	}

	deliveries, err := w.l.ListDeliveries(ctx, "d1")
	if err != nil {
		t.Fatal(err)
	}
	if len(deliveries) != 2 {
		t.Fatalf("len(deliveries) = %d, want 2", len(deliveries))
	}
	if deliveries[0].Subscriber != subA || deliveries[1].Subscriber != subB {
		t.Error("deliveries out of order")
	}
	if deliveries[0].Timestamp >= deliveries[1].Timestamp {
		t.Errorf("timestamps out of order: %d then %d", deliveries[0].Timestamp, deliveries[1].Timestamp)
	}

	if _, err := w.l.RecordDelivery(ctx, "missing", subA); !errors.Is(err, ledger.ErrAlertNotFound) {
		t.Fatalf("err = %v, want ErrAlertNotFound", err)
	}

	// Re-recording the same (alert, subscriber, second) is rejected and
	// the counter does not advance.
	if _, err := w.l.RecordDelivery(ctx, "d1", subB); !errors.Is(err, ledger.ErrDeliveryExists) {
		t.Fatalf("err = %v, want ErrDeliveryExists", err)
	}
	a, err = w.l.GetAlert(ctx, "d1")
	if err != nil {
		t.Fatal(err)
	}
	if a.DeliveryCount != 2 {
		t.Errorf("delivery count after duplicate = %d, want 2", a.DeliveryCount)
	}
}
