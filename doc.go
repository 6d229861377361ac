// Package ledger is the accounting core of a pay-per-alert content wire.
//
// Ledger is designed as a library, not a service. Import it directly into
// your Go application. It keeps three cooperating ledgers behind one
// engine:
//
//   - Alert ledger: proof of existence and timing for published alerts,
//     with append-only delivery proofs
//   - Publisher ledger: publisher identity, staked collateral, reputation,
//     and revenue payouts
//   - Subscription ledger: prepaid subscriber balances, per-alert charges,
//     and append-only charge receipts
//
// All money is unsigned integer token units with checked arithmetic; fee
// splits are basis-point floors whose parts always sum exactly to the
// total.
//
// # Quick Start
//
// Create a ledger instance with your preferred store and a custody
// service:
//
//	import (
//	    "github.com/agentwire/ledger"
//	    "github.com/agentwire/ledger/custody"
//	    "github.com/agentwire/ledger/store/postgres"
//	)
//
//	store, err := postgres.Connect(ctx, databaseURL)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	l := ledger.New(store, custody.NewBank())
//
//	if err := l.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer l.Stop()
//
// # Core Concepts
//
// Publishers stake collateral to join and earn a basis-point share of
// every alert they get paid for:
//
//	pub, err := l.RegisterPublisher(ctx, owner, fundingVault, "Wire Desk", metadataURI)
//
// Subscribers prepay into a vault and are charged per delivered alert:
//
//	sub, err := l.CreateSubscriber(ctx, owner, []byte{0b0101})
//	_, err = l.Deposit(ctx, owner, fundingVault, 100)
//
// ProcessDelivery runs the full cycle for one alert reaching one
// subscriber: charge, payout, delivery proof:
//
//	result, err := l.ProcessDelivery(ctx, alertID, subscriberOwner)
//
// # Storage
//
// Three store backends ship with the module: store/memory for tests,
// store/postgres on pgx, and store/mongo on the official driver. All
// implement the unified store.Store interface.
//
// # Extensions
//
// Lifecycle events flow through the plugin registry. The observability
// package records Prometheus metrics and the audithook package bridges
// money-moving events to an audit backend; both register as plugins:
//
//	l := ledger.New(store, bank,
//	    ledger.WithPlugin(observability.NewMetricsExtension(prometheus.DefaultRegisterer)),
//	    ledger.WithPlugin(audithook.New(recorder)),
//	)
package ledger
