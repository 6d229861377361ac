package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/agentwire/ledger"
	"github.com/agentwire/ledger/addr"
	"github.com/agentwire/ledger/alert"
	"github.com/agentwire/ledger/id"
	"github.com/agentwire/ledger/publisher"
	"github.com/agentwire/ledger/store/memory"
	"github.com/agentwire/ledger/subscriber"
	"github.com/agentwire/ledger/types"
)

func TestAlertRegistryLifecycle(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	if _, err := s.GetAlertRegistry(ctx); !errors.Is(err, ledger.ErrNotInitialized) {
		t.Fatalf("get before init err = %v, want ErrNotInitialized", err)
	}

	reg := &alert.Registry{
		Entity:    types.NewEntity(),
		Key:       addr.AlertRegistry(),
		Authority: id.NewAccountID(),
	}
	if err := s.CreateAlertRegistry(ctx, reg); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateAlertRegistry(ctx, reg); !errors.Is(err, ledger.ErrAlreadyInitialized) {
		t.Fatalf("second create err = %v, want ErrAlreadyInitialized", err)
	}

	got, err := s.GetAlertRegistry(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got.Authority != reg.Authority {
		t.Errorf("authority = %v, want %v", got.Authority, reg.Authority)
	}

	got.TotalAlerts = 3
	if err := s.UpdateAlertRegistry(ctx, got); err != nil {
		t.Fatal(err)
	}
	got, err = s.GetAlertRegistry(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got.TotalAlerts != 3 {
		t.Errorf("total alerts = %d, want 3", got.TotalAlerts)
	}
}

func TestAlertCRUD(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	key := addr.Alert("a1")
	a := &alert.Alert{
		Entity:  types.NewEntity(),
		Key:     key,
		AlertID: "a1",
	}
	if err := s.CreateAlert(ctx, a); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateAlert(ctx, a); !errors.Is(err, ledger.ErrAlertExists) {
		t.Fatalf("duplicate create err = %v, want ErrAlertExists", err)
	}
	if _, err := s.GetAlert(ctx, addr.Alert("absent")); !errors.Is(err, ledger.ErrAlertNotFound) {
		t.Fatalf("missing get err = %v, want ErrAlertNotFound", err)
	}

	a.DeliveryCount = 2
	if err := s.UpdateAlert(ctx, a); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetAlert(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	if got.DeliveryCount != 2 {
		t.Errorf("delivery count = %d, want 2", got.DeliveryCount)
	}

	missing := &alert.Alert{Key: addr.Alert("ghost")}
	if err := s.UpdateAlert(ctx, missing); !errors.Is(err, ledger.ErrAlertNotFound) {
		t.Fatalf("missing update err = %v, want ErrAlertNotFound", err)
	}
}

func TestDeliveriesAppendOnly(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	key := addr.Alert("a1")
	for i := 0; i < 3; i++ {
		sub := id.NewAccountID()
		d := &alert.Delivery{
			Entity:     types.NewEntity(),
			ID:         id.NewDeliveryID(),
			Key:        addr.Delivery(key, sub, int64(i)),
			AlertKey:   key,
			Subscriber: sub,
			Timestamp:  int64(i),
		}
		if err := s.AppendAlertDelivery(ctx, d); err != nil {
			t.Fatal(err)
		}
	}

	list, err := s.ListAlertDeliveries(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 {
		t.Fatalf("len = %d, want 3", len(list))
	}
	for i, d := range list {
		if d.Timestamp != int64(i) {
			t.Errorf("delivery %d timestamp = %d", i, d.Timestamp)
		}
	}

	// The returned slice is a copy; mutating it must not corrupt the store.
	list[0] = nil
	again, err := s.ListAlertDeliveries(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	if again[0] == nil {
		t.Error("list mutation leaked into the store")
	}

	empty, err := s.ListAlertDeliveries(ctx, addr.Alert("none"))
	if err != nil {
		t.Fatal(err)
	}
	if len(empty) != 0 {
		t.Errorf("len = %d, want 0", len(empty))
	}
}

func TestDeliveryKeyUnique(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	alertKey := addr.Alert("a1")
	sub := id.NewAccountID()
	key := addr.Delivery(alertKey, sub, 42)

	d := &alert.Delivery{
		Entity:     types.NewEntity(),
		ID:         id.NewDeliveryID(),
		Key:        key,
		AlertKey:   alertKey,
		Subscriber: sub,
		Timestamp:  42,
	}
	if err := s.AppendAlertDelivery(ctx, d); err != nil {
		t.Fatal(err)
	}

	dup := &alert.Delivery{
		Entity:     types.NewEntity(),
		ID:         id.NewDeliveryID(),
		Key:        key,
		AlertKey:   alertKey,
		Subscriber: sub,
		Timestamp:  42,
	}
	if err := s.AppendAlertDelivery(ctx, dup); !errors.Is(err, ledger.ErrDeliveryExists) {
		t.Fatalf("err = %v, want ErrDeliveryExists", err)
	}

	list, err := s.ListAlertDeliveries(ctx, alertKey)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Errorf("len = %d, want 1", len(list))
	}
}

func TestPublisherCRUD(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	if _, err := s.GetPublisherRegistry(ctx); !errors.Is(err, ledger.ErrNotInitialized) {
		t.Fatalf("err = %v, want ErrNotInitialized", err)
	}

	owner := id.NewAccountID()
	p := &publisher.Publisher{
		Entity: types.NewEntity(),
		ID:     id.NewPublisherID(),
		Key:    addr.Publisher(owner),
		Owner:  owner,
		Stake:  100,
	}
	if err := s.CreatePublisher(ctx, p); err != nil {
		t.Fatal(err)
	}
	if err := s.CreatePublisher(ctx, p); !errors.Is(err, ledger.ErrPublisherExists) {
		t.Fatalf("err = %v, want ErrPublisherExists", err)
	}
	if _, err := s.GetPublisher(ctx, addr.Publisher(id.NewAccountID())); !errors.Is(err, ledger.ErrPublisherNotFound) {
		t.Fatalf("err = %v, want ErrPublisherNotFound", err)
	}

	p.Stake = 60
	if err := s.UpdatePublisher(ctx, p); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetPublisher(ctx, p.Key)
	if err != nil {
		t.Fatal(err)
	}
	if got.Stake != 60 {
		t.Errorf("stake = %d, want 60", got.Stake)
	}
}

func TestSubscriberCRUD(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	if _, err := s.GetProtocolConfig(ctx); !errors.Is(err, ledger.ErrNotInitialized) {
		t.Fatalf("err = %v, want ErrNotInitialized", err)
	}

	owner := id.NewAccountID()
	sub := &subscriber.Subscriber{
		Entity:  types.NewEntity(),
		ID:      id.NewSubscriberID(),
		Key:     addr.Subscriber(owner),
		Owner:   owner,
		Balance: 40,
	}
	if err := s.CreateSubscriber(ctx, sub); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateSubscriber(ctx, sub); !errors.Is(err, ledger.ErrSubscriberExists) {
		t.Fatalf("err = %v, want ErrSubscriberExists", err)
	}
	if _, err := s.GetSubscriber(ctx, addr.Subscriber(id.NewAccountID())); !errors.Is(err, ledger.ErrSubscriberNotFound) {
		t.Fatalf("err = %v, want ErrSubscriberNotFound", err)
	}

	r := &subscriber.Receipt{
		Entity:        types.NewEntity(),
		ID:            id.NewReceiptID(),
		Key:           addr.Receipt(sub.Key, [32]byte{7}, 42),
		SubscriberKey: sub.Key,
		Subscriber:    owner,
		Amount:        10,
	}
	if err := s.AppendReceipt(ctx, r); err != nil {
		t.Fatal(err)
	}
	receipts, err := s.ListReceipts(ctx, sub.Key)
	if err != nil {
		t.Fatal(err)
	}
	if len(receipts) != 1 || receipts[0].Amount != 10 {
		t.Fatalf("receipts = %v", receipts)
	}

	// A second receipt with the same derived key is rejected.
	dup := &subscriber.Receipt{
		Entity:        types.NewEntity(),
		ID:            id.NewReceiptID(),
		Key:           r.Key,
		SubscriberKey: sub.Key,
		Subscriber:    owner,
		Amount:        10,
	}
	if err := s.AppendReceipt(ctx, dup); !errors.Is(err, ledger.ErrReceiptExists) {
		t.Fatalf("err = %v, want ErrReceiptExists", err)
	}
}
