// Package custody is the token-custody collaborator: it holds fungible
// value in vaults and moves it between them. Every vault is exclusively
// associated with one authority, and outbound transfers require presenting
// a capability scoped to the source vault — there is no free-form transfer
// off arbitrary vaults. The ledger registries derive protocol capabilities
// for the vaults they control (stake vaults, revenue pool, subscriber
// vaults) and owner capabilities for caller-funded movements.
package custody

import (
	"context"
	"errors"

	"github.com/agentwire/ledger/id"
	"github.com/agentwire/ledger/types"
)

// Sentinel errors for custody failures.
var (
	ErrVaultNotFound     = errors.New("custody: vault not found")
	ErrUnauthorized      = errors.New("custody: caller is not the vault authority")
	ErrInvalidCapability = errors.New("custody: invalid capability")
	ErrInsufficientFunds = errors.New("custody: insufficient vault balance")
	ErrMintMismatch      = errors.New("custody: vaults hold different mints")
)

// Capability is an unforgeable token authorizing outbound transfers from
// exactly one vault. It is issued by Authorize and verified on Transfer.
type Capability struct {
	vault id.VaultID
	token [32]byte
}

// Vault returns the vault this capability is scoped to.
func (c Capability) Vault() id.VaultID { return c.vault }

// Service is the custody interface the ledger depends on. Implementations
// must apply each call atomically: a Transfer either debits and credits
// both vaults or changes nothing.
type Service interface {
	// OpenVault creates a new empty vault for the given mint, controlled
	// by the given authority.
	OpenVault(ctx context.Context, authority id.AccountID, mint id.ID) (id.VaultID, error)

	// Balance returns the current vault balance.
	Balance(ctx context.Context, vault id.VaultID) (types.Amount, error)

	// Deposit credits value into a vault from outside the custody system
	// (an on-ramp; in tests, a faucet).
	Deposit(ctx context.Context, vault id.VaultID, amount types.Amount) error

	// Authorize issues a transfer capability for the vault. It fails with
	// ErrUnauthorized unless caller is the vault's registered authority.
	Authorize(ctx context.Context, vault id.VaultID, caller id.AccountID) (Capability, error)

	// Transfer moves amount from the capability's vault to the destination
	// vault. Both vaults must hold the same mint.
	Transfer(ctx context.Context, cap Capability, to id.VaultID, amount types.Amount) error
}
