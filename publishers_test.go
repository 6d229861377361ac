package ledger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/agentwire/ledger"
	"github.com/agentwire/ledger/id"
	"github.com/agentwire/ledger/publisher"
)

func TestInitializePublisherRegistry(t *testing.T) {
	ctx := context.Background()

	w := newWorld(t)
	_, err := w.l.InitializePublisherRegistry(ctx, ledger.PublisherRegistryParams{
		Authority:         w.authority,
		Mint:              w.mint,
		RevenuePool:       w.pool,
		Treasury:          w.treasury,
		MinStake:          100,
		PublisherShareBps: 10001,
	})
	if !errors.Is(err, ledger.ErrInvalidBps) {
		t.Fatalf("err = %v, want ErrInvalidBps", err)
	}
}

func TestRegisterPublisher(t *testing.T) {
	ctx := context.Background()

	t.Run("locks exactly the minimum stake", func(t *testing.T) {
		w := newWorld(t)
		w.initAll(t, 10, 3000, 1000, 5000)

		owner := id.NewAccountID()
		funding := w.fundedVault(t, owner, 1500)

		pub, err := w.l.RegisterPublisher(ctx, owner, funding, "Wire Desk", "ipfs://meta")
		if err != nil {
			t.Fatal(err)
		}
		if pub.Stake != 1000 {
			t.Errorf("stake = %d, want 1000", pub.Stake)
		}
		if got := w.balance(t, funding); got != 500 {
			t.Errorf("funding balance = %d, want 500", got)
		}
		if got := w.balance(t, pub.StakeVault); got != 1000 {
			t.Errorf("stake vault balance = %d, want 1000", got)
		}
		if pub.Reputation != publisher.InitialReputation {
			t.Errorf("reputation = %d, want %d", pub.Reputation, publisher.InitialReputation)
		}
		if !pub.Active || pub.Slashed {
			t.Errorf("active = %v, slashed = %v, want true/false", pub.Active, pub.Slashed)
		}
		if pub.PayoutVault != funding {
			t.Errorf("payout vault = %v, want funding vault %v", pub.PayoutVault, funding)
		}

		reg, err := w.l.GetPublisher(ctx, owner)
		if err != nil {
			t.Fatal(err)
		}
		if reg.Owner != owner {
			t.Errorf("owner = %v, want %v", reg.Owner, owner)
		}
	})

	t.Run("insufficient funding", func(t *testing.T) {
		w := newWorld(t)
		w.initAll(t, 10, 3000, 1000, 5000)

		owner := id.NewAccountID()
		funding := w.fundedVault(t, owner, 999)

		_, err := w.l.RegisterPublisher(ctx, owner, funding, "Broke Desk", "")
		if !errors.Is(err, ledger.ErrInsufficientStake) {
			t.Fatalf("err = %v, want ErrInsufficientStake", err)
		}
	})

	t.Run("duplicate owner", func(t *testing.T) {
		w := newWorld(t)
		w.initAll(t, 10, 3000, 100, 5000)

		owner := id.NewAccountID()
		funding := w.fundedVault(t, owner, 500)

		if _, err := w.l.RegisterPublisher(ctx, owner, funding, "First", ""); err != nil {
			t.Fatal(err)
		}
		_, err := w.l.RegisterPublisher(ctx, owner, funding, "Second", "")
		if !errors.Is(err, ledger.ErrPublisherExists) {
			t.Fatalf("err = %v, want ErrPublisherExists", err)
		}
		// The second attempt must not have kept the stake.
		if got := w.balance(t, funding); got != 400 {
			t.Errorf("funding balance = %d, want 400", got)
		}
	})

	t.Run("name too long", func(t *testing.T) {
		w := newWorld(t)
		w.initAll(t, 10, 3000, 100, 5000)

		owner := id.NewAccountID()
		funding := w.fundedVault(t, owner, 500)
		long := make([]byte, publisher.MaxNameLen+1)
		for i := range long {
			long[i] = 'x'
		}

		_, err := w.l.RegisterPublisher(ctx, owner, funding, string(long), "")
		if !errors.Is(err, ledger.ErrNameTooLong) {
			t.Fatalf("err = %v, want ErrNameTooLong", err)
		}
	})
}

func TestRecordSubmission(t *testing.T) {
	ctx := context.Background()

	w := newWorld(t)
	w.initAll(t, 10, 3000, 100, 5000)

	owner := id.NewAccountID()
	funding := w.fundedVault(t, owner, 100)
	if _, err := w.l.RegisterPublisher(ctx, owner, funding, "Desk", ""); err != nil {
		t.Fatal(err)
	}

	t.Run("accepted raises reputation", func(t *testing.T) {
		pub, err := w.l.RecordSubmission(ctx, w.authority, owner, true)
		if err != nil {
			t.Fatal(err)
		}
		if pub.AlertsSubmitted != 1 || pub.AlertsAccepted != 1 {
			t.Errorf("submitted/accepted = %d/%d, want 1/1", pub.AlertsSubmitted, pub.AlertsAccepted)
		}
		if pub.Reputation != publisher.InitialReputation+publisher.DefaultReputationReward {
			t.Errorf("reputation = %d, want %d", pub.Reputation, publisher.InitialReputation+publisher.DefaultReputationReward)
		}
	})

	t.Run("rejected lowers reputation", func(t *testing.T) {
		pub, err := w.l.RecordSubmission(ctx, w.authority, owner, false)
		if err != nil {
			t.Fatal(err)
		}
		if pub.AlertsSubmitted != 2 || pub.AlertsAccepted != 1 {
			t.Errorf("submitted/accepted = %d/%d, want 2/1", pub.AlertsSubmitted, pub.AlertsAccepted)
		}
		if pub.Reputation != publisher.InitialReputation-publisher.DefaultReputationPenalty+publisher.DefaultReputationReward {
			t.Errorf("reputation = %d", pub.Reputation)
		}
	})

	t.Run("reputation saturates at cap", func(t *testing.T) {
		var pub *publisher.Publisher
		var err error
		for i := 0; i < 60; i++ {
			pub, err = w.l.RecordSubmission(ctx, w.authority, owner, true)
			if err != nil {
				t.Fatal(err)
			}
		}
		if pub.Reputation != publisher.MaxReputation {
			t.Errorf("reputation = %d, want %d", pub.Reputation, publisher.MaxReputation)
		}
	})

	t.Run("reputation saturates at zero", func(t *testing.T) {
		var pub *publisher.Publisher
		var err error
		for i := 0; i < 60; i++ {
			pub, err = w.l.RecordSubmission(ctx, w.authority, owner, false)
			if err != nil {
				t.Fatal(err)
			}
		}
		if pub.Reputation != 0 {
			t.Errorf("reputation = %d, want 0", pub.Reputation)
		}
	})

	t.Run("unauthorized", func(t *testing.T) {
		_, err := w.l.RecordSubmission(ctx, id.NewAccountID(), owner, true)
		if !errors.Is(err, ledger.ErrUnauthorized) {
			t.Fatalf("err = %v, want ErrUnauthorized", err)
		}
	})
}

func TestDistributeRevenue(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T, shareBps uint16) (*world, id.AccountID, id.VaultID) {
		w := newWorld(t)
		w.initAll(t, 10, 3000, 100, shareBps)
		owner := id.NewAccountID()
		funding := w.fundedVault(t, owner, 100)
		if _, err := w.l.RegisterPublisher(ctx, owner, funding, "Desk", ""); err != nil {
			t.Fatal(err)
		}
		if err := w.bank.Deposit(ctx, w.pool, 1000); err != nil {
			t.Fatal(err)
		}
		return w, owner, funding
	}

	t.Run("payout rounds down", func(t *testing.T) {
		w, owner, funding := setup(t, 5000)

		payout, err := w.l.DistributeRevenue(ctx, w.authority, owner, 7)
		if err != nil {
			t.Fatal(err)
		}
		if payout != 3 {
			t.Errorf("payout = %d, want 3", payout)
		}
		if got := w.balance(t, funding); got != 3 {
			t.Errorf("payout vault balance = %d, want 3", got)
		}
		if got := w.balance(t, w.pool); got != 997 {
			t.Errorf("pool balance = %d, want 997", got)
		}

		pub, err := w.l.GetPublisher(ctx, owner)
		if err != nil {
			t.Fatal(err)
		}
		if pub.TotalEarnings != 3 {
			t.Errorf("total earnings = %d, want 3", pub.TotalEarnings)
		}
	})

	t.Run("zero amount rejected", func(t *testing.T) {
		w, owner, _ := setup(t, 5000)
		_, err := w.l.DistributeRevenue(ctx, w.authority, owner, 0)
		if !errors.Is(err, ledger.ErrInvalidAmount) {
			t.Fatalf("err = %v, want ErrInvalidAmount", err)
		}
	})

	t.Run("zero payout moves nothing", func(t *testing.T) {
		w, owner, funding := setup(t, 5000)
		payout, err := w.l.DistributeRevenue(ctx, w.authority, owner, 1)
		if err != nil {
			t.Fatal(err)
		}
		if payout != 0 {
			t.Errorf("payout = %d, want 0", payout)
		}
		if got := w.balance(t, funding); got != 0 {
			t.Errorf("payout vault balance = %d, want 0", got)
		}
	})

	t.Run("unauthorized", func(t *testing.T) {
		w, owner, _ := setup(t, 5000)
		_, err := w.l.DistributeRevenue(ctx, id.NewAccountID(), owner, 10)
		if !errors.Is(err, ledger.ErrUnauthorized) {
			t.Fatalf("err = %v, want ErrUnauthorized", err)
		}
	})

	t.Run("slashed publisher rejected as inactive", func(t *testing.T) {
		w, owner, _ := setup(t, 5000)
		if _, err := w.l.SlashPublisher(ctx, w.authority, owner, 100, "fabrication"); err != nil {
			t.Fatal(err)
		}
		// A fully slashed publisher is inactive, and the active check
		// comes first.
		_, err := w.l.DistributeRevenue(ctx, w.authority, owner, 10)
		if !errors.Is(err, ledger.ErrPublisherInactive) {
			t.Fatalf("err = %v, want ErrPublisherInactive", err)
		}
	})

	t.Run("withdrawn publisher rejected", func(t *testing.T) {
		w, owner, _ := setup(t, 5000)
		if _, err := w.l.WithdrawStake(ctx, owner); err != nil {
			t.Fatal(err)
		}
		_, err := w.l.DistributeRevenue(ctx, w.authority, owner, 10)
		if !errors.Is(err, ledger.ErrPublisherInactive) {
			t.Fatalf("err = %v, want ErrPublisherInactive", err)
		}
	})
}

func TestSlashPublisher(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*world, id.AccountID) {
		w := newWorld(t)
		w.initAll(t, 10, 3000, 1000, 5000)
		owner := id.NewAccountID()
		funding := w.fundedVault(t, owner, 1000)
		if _, err := w.l.RegisterPublisher(ctx, owner, funding, "Desk", ""); err != nil {
			t.Fatal(err)
		}
		return w, owner
	}

	t.Run("partial slash keeps publisher active", func(t *testing.T) {
		w, owner := setup(t)

		pub, err := w.l.SlashPublisher(ctx, w.authority, owner, 400, "late retraction")
		if err != nil {
			t.Fatal(err)
		}
		if pub.Stake != 600 {
			t.Errorf("stake = %d, want 600", pub.Stake)
		}
		if pub.Reputation != 0 {
			t.Errorf("reputation = %d, want 0", pub.Reputation)
		}
		if !pub.Active || pub.Slashed {
			t.Errorf("active = %v, slashed = %v, want true/false", pub.Active, pub.Slashed)
		}
		if got := w.balance(t, w.treasury); got != 400 {
			t.Errorf("treasury balance = %d, want 400", got)
		}
	})

	t.Run("full slash retires publisher", func(t *testing.T) {
		w, owner := setup(t)

		pub, err := w.l.SlashPublisher(ctx, w.authority, owner, 1000, "fabricated alert")
		if err != nil {
			t.Fatal(err)
		}
		if pub.Stake != 0 {
			t.Errorf("stake = %d, want 0", pub.Stake)
		}
		if pub.Active || !pub.Slashed {
			t.Errorf("active = %v, slashed = %v, want false/true", pub.Active, pub.Slashed)
		}

		// A slashed publisher cannot withdraw.
		if _, err := w.l.WithdrawStake(ctx, owner); !errors.Is(err, ledger.ErrPublisherSlashed) {
			t.Fatalf("withdraw err = %v, want ErrPublisherSlashed", err)
		}
	})

	t.Run("zero slash zeroes reputation without confiscating", func(t *testing.T) {
		w, owner := setup(t)

		pub, err := w.l.SlashPublisher(ctx, w.authority, owner, 0, "formal warning")
		if err != nil {
			t.Fatal(err)
		}
		if pub.Reputation != 0 {
			t.Errorf("reputation = %d, want 0", pub.Reputation)
		}
		if pub.Stake != 1000 {
			t.Errorf("stake = %d, want 1000", pub.Stake)
		}
		if !pub.Active || pub.Slashed {
			t.Errorf("active = %v, slashed = %v, want true/false", pub.Active, pub.Slashed)
		}
		if got := w.balance(t, w.treasury); got != 0 {
			t.Errorf("treasury balance = %d, want 0", got)
		}
	})

	t.Run("over-slash rejected", func(t *testing.T) {
		w, owner := setup(t)
		_, err := w.l.SlashPublisher(ctx, w.authority, owner, 1001, "too much")
		if !errors.Is(err, ledger.ErrInsufficientStake) {
			t.Fatalf("err = %v, want ErrInsufficientStake", err)
		}
	})

	t.Run("unauthorized", func(t *testing.T) {
		w, owner := setup(t)
		_, err := w.l.SlashPublisher(ctx, id.NewAccountID(), owner, 100, "nope")
		if !errors.Is(err, ledger.ErrUnauthorized) {
			t.Fatalf("err = %v, want ErrUnauthorized", err)
		}
	})
}

func TestWithdrawStake(t *testing.T) {
	ctx := context.Background()

	w := newWorld(t)
	w.initAll(t, 10, 3000, 1000, 5000)

	owner := id.NewAccountID()
	funding := w.fundedVault(t, owner, 1000)
	if _, err := w.l.RegisterPublisher(ctx, owner, funding, "Desk", ""); err != nil {
		t.Fatal(err)
	}

	amount, err := w.l.WithdrawStake(ctx, owner)
	if err != nil {
		t.Fatal(err)
	}
	if amount != 1000 {
		t.Errorf("withdrawn = %d, want 1000", amount)
	}
	if got := w.balance(t, funding); got != 1000 {
		t.Errorf("payout vault balance = %d, want 1000", got)
	}

	pub, err := w.l.GetPublisher(ctx, owner)
	if err != nil {
		t.Fatal(err)
	}
	if pub.Stake != 0 {
		t.Errorf("stake = %d, want 0", pub.Stake)
	}
	if pub.Active {
		t.Error("publisher still active after full withdrawal")
	}
	if pub.Slashed {
		t.Error("withdrawal must not mark the publisher slashed")
	}
}
