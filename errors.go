package ledger

import (
	"errors"
	"fmt"

	"github.com/agentwire/ledger/custody"
	"github.com/agentwire/ledger/types"
)

// Sentinel errors for common failure scenarios.
var (
	// General errors
	ErrNotFound      = errors.New("ledger: not found")
	ErrInvalidInput  = errors.New("ledger: invalid input")
	ErrInvalidAmount = errors.New("ledger: invalid amount")
	ErrUnauthorized  = errors.New("ledger: unauthorized")

	// Registry errors
	ErrAlreadyInitialized = errors.New("ledger: registry already initialized")
	ErrNotInitialized     = errors.New("ledger: registry not initialized")

	// Alert errors
	ErrAlertExists        = errors.New("ledger: alert already registered")
	ErrAlertNotFound      = errors.New("ledger: alert not found")
	ErrAlertIDTooLong     = errors.New("ledger: alert id too long")
	ErrChannelTooLong     = errors.New("ledger: channel name too long")
	ErrPriorityOutOfRange = errors.New("ledger: priority out of range")
	ErrImpactOutOfRange   = errors.New("ledger: impact score out of range")
	ErrDeliveryExists     = errors.New("ledger: delivery already recorded")

	// Publisher errors
	ErrPublisherExists    = errors.New("ledger: publisher already registered")
	ErrPublisherNotFound  = errors.New("ledger: publisher not found")
	ErrPublisherInactive  = errors.New("ledger: publisher is not active")
	ErrPublisherSlashed   = errors.New("ledger: publisher has been slashed")
	ErrInsufficientStake  = errors.New("ledger: stake below registry minimum")
	ErrNameTooLong        = errors.New("ledger: publisher name too long")
	ErrMetadataURITooLong = errors.New("ledger: metadata uri too long")

	// Subscriber errors
	ErrSubscriberExists    = errors.New("ledger: subscriber already exists")
	ErrSubscriberNotFound  = errors.New("ledger: subscriber not found")
	ErrSubscriberInactive  = errors.New("ledger: subscriber is not active")
	ErrInsufficientBalance = errors.New("ledger: insufficient subscriber balance")
	ErrReceiptExists       = errors.New("ledger: receipt already recorded")

	// Shared arithmetic errors
	ErrOverflow   = types.ErrOverflow
	ErrInvalidBps = errors.New("ledger: basis points exceed denominator")

	// Store errors
	ErrStoreClosed     = errors.New("ledger: store is closed")
	ErrMigrationFailed = errors.New("ledger: migration failed")
)

// ValidationError represents a validation failure with details.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("ledger: validation failed for %s: %s", e.Field, e.Message)
}

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrNotInitialized) ||
		errors.Is(err, ErrAlertNotFound) ||
		errors.Is(err, ErrPublisherNotFound) ||
		errors.Is(err, ErrSubscriberNotFound) ||
		errors.Is(err, custody.ErrVaultNotFound)
}

// IsInsufficientFunds returns true if the error indicates a balance that
// cannot cover the requested movement.
func IsInsufficientFunds(err error) bool {
	return errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrInsufficientStake) ||
		errors.Is(err, custody.ErrInsufficientFunds)
}

// IsStateError returns true if the error is caused by an account being in
// the wrong lifecycle state for the operation.
func IsStateError(err error) bool {
	return errors.Is(err, ErrAlreadyInitialized) ||
		errors.Is(err, ErrAlertExists) ||
		errors.Is(err, ErrDeliveryExists) ||
		errors.Is(err, ErrReceiptExists) ||
		errors.Is(err, ErrPublisherExists) ||
		errors.Is(err, ErrPublisherInactive) ||
		errors.Is(err, ErrPublisherSlashed) ||
		errors.Is(err, ErrSubscriberExists) ||
		errors.Is(err, ErrSubscriberInactive)
}
