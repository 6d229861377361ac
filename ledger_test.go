package ledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/agentwire/ledger"
	"github.com/agentwire/ledger/clock"
	"github.com/agentwire/ledger/custody"
	"github.com/agentwire/ledger/id"
	"github.com/agentwire/ledger/store/memory"
	"github.com/agentwire/ledger/types"
)

// world wires a full in-memory stack: store, bank, fake clock, and the
// shared protocol accounts (authority, mint, treasury, revenue pool).
type world struct {
	l         *ledger.Ledger
	bank      *custody.Bank
	clk       *clock.Fake
	authority id.AccountID
	mint      id.ID
	treasury  id.VaultID
	pool      id.VaultID
}

func newWorld(t *testing.T) *world {
	t.Helper()

	bank := custody.NewBank()
	clk := clock.NewFake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	authority := id.NewAccountID()
	mint := id.NewAccountID()

	ctx := context.Background()
	treasury, err := bank.OpenVault(ctx, authority, mint)
	if err != nil {
		t.Fatal(err)
	}
	pool, err := bank.OpenVault(ctx, authority, mint)
	if err != nil {
		t.Fatal(err)
	}

	l := ledger.New(memory.New(), bank, ledger.WithClock(clk))
	if err := l.Start(ctx); err != nil {
		t.Fatal(err)
	}

	return &world{
		l:         l,
		bank:      bank,
		clk:       clk,
		authority: authority,
		mint:      mint,
		treasury:  treasury,
		pool:      pool,
	}
}

// initAll initializes all three registries with the given economics.
func (w *world) initAll(t *testing.T, price types.Amount, feeBps uint16, minStake types.Amount, shareBps uint16) {
	t.Helper()
	ctx := context.Background()

	if _, err := w.l.InitializeAlertRegistry(ctx, w.authority); err != nil {
		t.Fatal(err)
	}
	if _, err := w.l.InitializePublisherRegistry(ctx, ledger.PublisherRegistryParams{
		Authority:         w.authority,
		Mint:              w.mint,
		RevenuePool:       w.pool,
		Treasury:          w.treasury,
		MinStake:          minStake,
		PublisherShareBps: shareBps,
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := w.l.InitializeProtocol(ctx, ledger.ProtocolParams{
		Authority:      w.authority,
		Mint:           w.mint,
		Treasury:       w.treasury,
		RevenuePool:    w.pool,
		PricePerAlert:  price,
		TreasuryFeeBps: feeBps,
	}); err != nil {
		t.Fatal(err)
	}
}

// fundedVault opens a vault for owner and seeds it with amount.
func (w *world) fundedVault(t *testing.T, owner id.AccountID, amount types.Amount) id.VaultID {
	t.Helper()
	ctx := context.Background()

	v, err := w.bank.OpenVault(ctx, owner, w.mint)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.bank.Deposit(ctx, v, amount); err != nil {
		t.Fatal(err)
	}
	return v
}

func (w *world) balance(t *testing.T, v id.VaultID) types.Amount {
	t.Helper()
	bal, err := w.bank.Balance(context.Background(), v)
	if err != nil {
		t.Fatal(err)
	}
	return bal
}

func TestProcessDelivery(t *testing.T) {
	ctx := context.Background()

	w := newWorld(t)
	w.initAll(t, 10, 3000, 1000, 5000)

	pubOwner := id.NewAccountID()
	pubVault := w.fundedVault(t, pubOwner, 1000)
	if _, err := w.l.RegisterPublisher(ctx, pubOwner, pubVault, "Wire Desk", ""); err != nil {
		t.Fatal(err)
	}

	subOwner := id.NewAccountID()
	subVault := w.fundedVault(t, subOwner, 100)
	if _, err := w.l.CreateSubscriber(ctx, subOwner, []byte{0b1}); err != nil {
		t.Fatal(err)
	}
	if _, err := w.l.Deposit(ctx, subOwner, subVault, 100); err != nil {
		t.Fatal(err)
	}

	fp := [32]byte{1, 2, 3}
	if _, err := w.l.RegisterAlert(ctx, pubOwner, ledger.RegisterAlertInput{
		AlertID:     "breaking-001",
		Channel:     "markets",
		Fingerprint: fp,
		Priority:    2,
		Impact:      7,
	}); err != nil {
		t.Fatal(err)
	}

	result, err := w.l.ProcessDelivery(ctx, "breaking-001", subOwner)
	if err != nil {
		t.Fatal(err)
	}

	// Price 10 at 3000 bps: fee 3 to treasury, 7 to the pool, and the
	// publisher takes 5000 bps of the charged price.
	if got := w.balance(t, w.treasury); got != 3 {
		t.Errorf("treasury balance = %d, want 3", got)
	}
	if result.Receipt.Amount != 10 {
		t.Errorf("receipt amount = %d, want 10", result.Receipt.Amount)
	}
	if result.Payout != 5 {
		t.Errorf("payout = %d, want 5", result.Payout)
	}
	if got := w.balance(t, pubVault); got != 5 {
		t.Errorf("payout vault balance = %d, want 5", got)
	}
	if got := w.balance(t, w.pool); got != 2 {
		t.Errorf("pool balance = %d, want 2", got)
	}

	sub, err := w.l.GetSubscriber(ctx, subOwner)
	if err != nil {
		t.Fatal(err)
	}
	if sub.Balance != 90 {
		t.Errorf("subscriber balance = %d, want 90", sub.Balance)
	}
	if sub.AlertsReceived != 1 {
		t.Errorf("alerts received = %d, want 1", sub.AlertsReceived)
	}

	a, err := w.l.GetAlert(ctx, "breaking-001")
	if err != nil {
		t.Fatal(err)
	}
	if a.DeliveryCount != 1 {
		t.Errorf("delivery count = %d, want 1", a.DeliveryCount)
	}

	deliveries, err := w.l.ListDeliveries(ctx, "breaking-001")
	if err != nil {
		t.Fatal(err)
	}
	if len(deliveries) != 1 {
		t.Fatalf("len(deliveries) = %d, want 1", len(deliveries))
	}
	if deliveries[0].Subscriber != subOwner {
		t.Errorf("delivery subscriber = %v, want %v", deliveries[0].Subscriber, subOwner)
	}
}

func TestProcessDeliveryCompensatesFailedPayout(t *testing.T) {
	ctx := context.Background()

	w := newWorld(t)
	w.initAll(t, 10, 3000, 1000, 5000)

	// No publisher registered: the payout leg must fail after the charge
	// commits, and the charge must be rolled back in full.
	pubOwner := id.NewAccountID()
	subOwner := id.NewAccountID()
	subVault := w.fundedVault(t, subOwner, 50)
	if _, err := w.l.CreateSubscriber(ctx, subOwner, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := w.l.Deposit(ctx, subOwner, subVault, 50); err != nil {
		t.Fatal(err)
	}

	if _, err := w.l.RegisterAlert(ctx, pubOwner, ledger.RegisterAlertInput{
		AlertID: "orphan-alert",
	}); err != nil {
		t.Fatal(err)
	}

	_, err := w.l.ProcessDelivery(ctx, "orphan-alert", subOwner)
	if !errors.Is(err, ledger.ErrPublisherNotFound) {
		t.Fatalf("err = %v, want ErrPublisherNotFound", err)
	}

	sub, err := w.l.GetSubscriber(ctx, subOwner)
	if err != nil {
		t.Fatal(err)
	}
	if sub.Balance != 50 {
		t.Errorf("balance after compensation = %d, want 50", sub.Balance)
	}
	if sub.AlertsReceived != 0 {
		t.Errorf("alerts received after compensation = %d, want 0", sub.AlertsReceived)
	}
	if got := w.balance(t, w.treasury); got != 0 {
		t.Errorf("treasury balance after compensation = %d, want 0", got)
	}
	if got := w.balance(t, w.pool); got != 0 {
		t.Errorf("pool balance after compensation = %d, want 0", got)
	}
	if got := w.balance(t, sub.Vault); got != 50 {
		t.Errorf("subscriber vault after compensation = %d, want 50", got)
	}

	// No delivery proof was recorded for the reversed cycle.
	deliveries, err := w.l.ListDeliveries(ctx, "orphan-alert")
	if err != nil {
		t.Fatal(err)
	}
	if len(deliveries) != 0 {
		t.Errorf("len(deliveries) = %d, want 0", len(deliveries))
	}
}

func TestMoneyConservation(t *testing.T) {
	ctx := context.Background()

	w := newWorld(t)
	w.initAll(t, 7, 1700, 500, 4200)

	pubOwner := id.NewAccountID()
	pubVault := w.fundedVault(t, pubOwner, 500)
	if _, err := w.l.RegisterPublisher(ctx, pubOwner, pubVault, "Desk", ""); err != nil {
		t.Fatal(err)
	}

	subOwner := id.NewAccountID()
	subVault := w.fundedVault(t, subOwner, 70)
	if _, err := w.l.CreateSubscriber(ctx, subOwner, []byte{0xff}); err != nil {
		t.Fatal(err)
	}
	if _, err := w.l.Deposit(ctx, subOwner, subVault, 70); err != nil {
		t.Fatal(err)
	}

	if _, err := w.l.RegisterAlert(ctx, pubOwner, ledger.RegisterAlertInput{AlertID: "a1"}); err != nil {
		t.Fatal(err)
	}

	sub, err := w.l.GetSubscriber(ctx, subOwner)
	if err != nil {
		t.Fatal(err)
	}

	total := func() types.Amount {
		return w.balance(t, w.treasury) + w.balance(t, w.pool) +
			w.balance(t, pubVault) + w.balance(t, sub.Vault)
	}

	before := total()
	for i := 0; i < 10; i++ {
		w.clk.Advance(time.Second)
		if _, err := w.l.ProcessDelivery(ctx, "a1", subOwner); err != nil {
			t.Fatal(err)
		}
		if got := total(); got != before {
			t.Fatalf("cycle %d: total = %d, want %d", i, got, before)
		}
	}

	sub, err = w.l.GetSubscriber(ctx, subOwner)
	if err != nil {
		t.Fatal(err)
	}
	if sub.Balance != 0 {
		t.Errorf("balance after 10 charges of 7 = %d, want 0", sub.Balance)
	}

	// The eleventh delivery must fail without moving anything.
	if _, err := w.l.ProcessDelivery(ctx, "a1", subOwner); !errors.Is(err, ledger.ErrInsufficientBalance) {
		t.Fatalf("err = %v, want ErrInsufficientBalance", err)
	}
	if got := total(); got != before {
		t.Errorf("total after failed charge = %d, want %d", got, before)
	}
}

func TestStartStop(t *testing.T) {
	w := newWorld(t)
	if err := w.l.Stop(); err != nil {
		t.Fatal(err)
	}
}
