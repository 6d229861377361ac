package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Registry manages all registered plugins and provides efficient dispatch.
// It uses type-cached discovery so emitting an event walks only the plugins
// that implement its hook.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger

	// Type-cached plugin lists for efficient dispatch
	onInit                []OnInit
	onShutdown            []OnShutdown
	onAlertRegistered     []OnAlertRegistered
	onDeliveryRecorded    []OnDeliveryRecorded
	onPublisherRegistered []OnPublisherRegistered
	onSubmissionRecorded  []OnSubmissionRecorded
	onRevenueDistributed  []OnRevenueDistributed
	onPublisherSlashed    []OnPublisherSlashed
	onStakeWithdrawn      []OnStakeWithdrawn
	onSubscriberCreated   []OnSubscriberCreated
	onBalanceChanged      []OnBalanceChanged
	onSubscriberCharged   []OnSubscriberCharged
	onDeliveryProcessed   []OnDeliveryProcessed
	onDeliveryCompensated []OnDeliveryCompensated
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{logger: slog.Default()}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	// Type-switch to cache interfaces
	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnAlertRegistered); ok {
		r.onAlertRegistered = append(r.onAlertRegistered, v)
	}
	if v, ok := p.(OnDeliveryRecorded); ok {
		r.onDeliveryRecorded = append(r.onDeliveryRecorded, v)
	}
	if v, ok := p.(OnPublisherRegistered); ok {
		r.onPublisherRegistered = append(r.onPublisherRegistered, v)
	}
	if v, ok := p.(OnSubmissionRecorded); ok {
		r.onSubmissionRecorded = append(r.onSubmissionRecorded, v)
	}
	if v, ok := p.(OnRevenueDistributed); ok {
		r.onRevenueDistributed = append(r.onRevenueDistributed, v)
	}
	if v, ok := p.(OnPublisherSlashed); ok {
		r.onPublisherSlashed = append(r.onPublisherSlashed, v)
	}
	if v, ok := p.(OnStakeWithdrawn); ok {
		r.onStakeWithdrawn = append(r.onStakeWithdrawn, v)
	}
	if v, ok := p.(OnSubscriberCreated); ok {
		r.onSubscriberCreated = append(r.onSubscriberCreated, v)
	}
	if v, ok := p.(OnBalanceChanged); ok {
		r.onBalanceChanged = append(r.onBalanceChanged, v)
	}
	if v, ok := p.(OnSubscriberCharged); ok {
		r.onSubscriberCharged = append(r.onSubscriberCharged, v)
	}
	if v, ok := p.(OnDeliveryProcessed); ok {
		r.onDeliveryProcessed = append(r.onDeliveryProcessed, v)
	}
	if v, ok := p.(OnDeliveryCompensated); ok {
		r.onDeliveryCompensated = append(r.onDeliveryCompensated, v)
	}

	r.logger.Info("plugin registered", "name", p.Name())

	return nil
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, ledger interface{}) {
	r.mu.RLock()
	plugins := r.onInit
	r.mu.RUnlock()

	for _, p := range plugins {
		r.call(ctx, p.Name(), "OnInit", func() error {
			return p.OnInit(ctx, ledger)
		})
	}
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	r.mu.RLock()
	plugins := r.onShutdown
	r.mu.RUnlock()

	for _, p := range plugins {
		r.call(ctx, p.Name(), "OnShutdown", func() error {
			return p.OnShutdown(ctx)
		})
	}
}

// EmitAlertRegistered emits an alert registered event.
func (r *Registry) EmitAlertRegistered(ctx context.Context, alert interface{}) {
	r.mu.RLock()
	plugins := r.onAlertRegistered
	r.mu.RUnlock()

	for _, p := range plugins {
		r.call(ctx, p.Name(), "OnAlertRegistered", func() error {
			return p.OnAlertRegistered(ctx, alert)
		})
	}
}

// EmitDeliveryRecorded emits a delivery recorded event.
func (r *Registry) EmitDeliveryRecorded(ctx context.Context, delivery interface{}) {
	r.mu.RLock()
	plugins := r.onDeliveryRecorded
	r.mu.RUnlock()

	for _, p := range plugins {
		r.call(ctx, p.Name(), "OnDeliveryRecorded", func() error {
			return p.OnDeliveryRecorded(ctx, delivery)
		})
	}
}

// EmitPublisherRegistered emits a publisher registered event.
func (r *Registry) EmitPublisherRegistered(ctx context.Context, pub interface{}) {
	r.mu.RLock()
	plugins := r.onPublisherRegistered
	r.mu.RUnlock()

	for _, p := range plugins {
		r.call(ctx, p.Name(), "OnPublisherRegistered", func() error {
			return p.OnPublisherRegistered(ctx, pub)
		})
	}
}

// EmitSubmissionRecorded emits a submission outcome event.
func (r *Registry) EmitSubmissionRecorded(ctx context.Context, pub interface{}, accepted bool) {
	r.mu.RLock()
	plugins := r.onSubmissionRecorded
	r.mu.RUnlock()

	for _, p := range plugins {
		r.call(ctx, p.Name(), "OnSubmissionRecorded", func() error {
			return p.OnSubmissionRecorded(ctx, pub, accepted)
		})
	}
}

// EmitRevenueDistributed emits a revenue distribution event.
func (r *Registry) EmitRevenueDistributed(ctx context.Context, pub interface{}, amount uint64) {
	r.mu.RLock()
	plugins := r.onRevenueDistributed
	r.mu.RUnlock()

	for _, p := range plugins {
		r.call(ctx, p.Name(), "OnRevenueDistributed", func() error {
			return p.OnRevenueDistributed(ctx, pub, amount)
		})
	}
}

// EmitPublisherSlashed emits a slash event.
func (r *Registry) EmitPublisherSlashed(ctx context.Context, pub interface{}, amount uint64, reason string) {
	r.mu.RLock()
	plugins := r.onPublisherSlashed
	r.mu.RUnlock()

	for _, p := range plugins {
		r.call(ctx, p.Name(), "OnPublisherSlashed", func() error {
			return p.OnPublisherSlashed(ctx, pub, amount, reason)
		})
	}
}

// EmitStakeWithdrawn emits a stake withdrawal event.
func (r *Registry) EmitStakeWithdrawn(ctx context.Context, pub interface{}, amount uint64) {
	r.mu.RLock()
	plugins := r.onStakeWithdrawn
	r.mu.RUnlock()

	for _, p := range plugins {
		r.call(ctx, p.Name(), "OnStakeWithdrawn", func() error {
			return p.OnStakeWithdrawn(ctx, pub, amount)
		})
	}
}

// EmitSubscriberCreated emits a subscriber created event.
func (r *Registry) EmitSubscriberCreated(ctx context.Context, sub interface{}) {
	r.mu.RLock()
	plugins := r.onSubscriberCreated
	r.mu.RUnlock()

	for _, p := range plugins {
		r.call(ctx, p.Name(), "OnSubscriberCreated", func() error {
			return p.OnSubscriberCreated(ctx, sub)
		})
	}
}

// EmitBalanceChanged emits a balance change event.
func (r *Registry) EmitBalanceChanged(ctx context.Context, sub interface{}) {
	r.mu.RLock()
	plugins := r.onBalanceChanged
	r.mu.RUnlock()

	for _, p := range plugins {
		r.call(ctx, p.Name(), "OnBalanceChanged", func() error {
			return p.OnBalanceChanged(ctx, sub)
		})
	}
}

// EmitSubscriberCharged emits a charge receipt event.
func (r *Registry) EmitSubscriberCharged(ctx context.Context, receipt interface{}) {
	r.mu.RLock()
	plugins := r.onSubscriberCharged
	r.mu.RUnlock()

	for _, p := range plugins {
		r.call(ctx, p.Name(), "OnSubscriberCharged", func() error {
			return p.OnSubscriberCharged(ctx, receipt)
		})
	}
}

// EmitDeliveryProcessed emits a completed delivery cycle event.
func (r *Registry) EmitDeliveryProcessed(ctx context.Context, result interface{}) {
	r.mu.RLock()
	plugins := r.onDeliveryProcessed
	r.mu.RUnlock()

	for _, p := range plugins {
		r.call(ctx, p.Name(), "OnDeliveryProcessed", func() error {
			return p.OnDeliveryProcessed(ctx, result)
		})
	}
}

// EmitDeliveryCompensated emits a compensated delivery cycle event.
func (r *Registry) EmitDeliveryCompensated(ctx context.Context, result interface{}, cause error) {
	r.mu.RLock()
	plugins := r.onDeliveryCompensated
	r.mu.RUnlock()

	for _, p := range plugins {
		r.call(ctx, p.Name(), "OnDeliveryCompensated", func() error {
			return p.OnDeliveryCompensated(ctx, result, cause)
		})
	}
}

// call invokes a plugin hook with a timeout and logs failures. Plugin
// errors never propagate into ledger operations.
func (r *Registry) call(ctx context.Context, pluginName, hook string, fn func() error) {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	var err error
	select {
	case err = <-done:
	case <-time.After(5 * time.Second):
		err = fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		err = ctx.Err()
	}

	if err != nil {
		r.logger.Warn("plugin hook failed",
			"plugin", pluginName,
			"hook", hook,
			"error", err,
		)
	}
}
