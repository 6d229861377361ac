package custody

import (
	"context"
	"crypto/rand"
	"fmt"
	"sync"

	"github.com/zeebo/blake3"

	"github.com/agentwire/ledger/id"
	"github.com/agentwire/ledger/types"
)

// Bank is an in-memory custody service. Capability tokens are derived from
// a per-Bank secret, so a capability issued by one Bank instance cannot be
// replayed against another.
type Bank struct {
	mu     sync.Mutex
	secret [32]byte
	vaults map[string]*vaultState
}

type vaultState struct {
	authority id.AccountID
	mint      id.ID
	balance   types.Amount
}

var _ Service = (*Bank)(nil)

// NewBank creates an empty in-memory custody service.
func NewBank() *Bank {
	b := &Bank{vaults: make(map[string]*vaultState)}
	if _, err := rand.Read(b.secret[:]); err != nil {
		panic(fmt.Sprintf("custody: read entropy: %v", err))
	}
	return b
}

// OpenVault creates a new empty vault controlled by authority.
func (b *Bank) OpenVault(_ context.Context, authority id.AccountID, mint id.ID) (id.VaultID, error) {
	if authority.IsNil() {
		return id.Nil, fmt.Errorf("open vault: %w", ErrUnauthorized)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	vault := id.NewVaultID()
	b.vaults[vault.String()] = &vaultState{authority: authority, mint: mint}
	return vault, nil
}

// Balance returns the current vault balance.
func (b *Bank) Balance(_ context.Context, vault id.VaultID) (types.Amount, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	state, ok := b.vaults[vault.String()]
	if !ok {
		return 0, fmt.Errorf("balance of %s: %w", vault, ErrVaultNotFound)
	}
	return state.balance, nil
}

// Deposit credits value into a vault from outside the custody system.
func (b *Bank) Deposit(_ context.Context, vault id.VaultID, amount types.Amount) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	state, ok := b.vaults[vault.String()]
	if !ok {
		return fmt.Errorf("deposit to %s: %w", vault, ErrVaultNotFound)
	}

	next, err := state.balance.CheckedAdd(amount)
	if err != nil {
		return fmt.Errorf("deposit to %s: %w", vault, err)
	}
	state.balance = next
	return nil
}

// Authorize issues a transfer capability if caller controls the vault.
func (b *Bank) Authorize(_ context.Context, vault id.VaultID, caller id.AccountID) (Capability, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	state, ok := b.vaults[vault.String()]
	if !ok {
		return Capability{}, fmt.Errorf("authorize %s: %w", vault, ErrVaultNotFound)
	}
	if caller.String() != state.authority.String() {
		return Capability{}, fmt.Errorf("authorize %s for %s: %w", vault, caller, ErrUnauthorized)
	}

	return Capability{vault: vault, token: b.tokenFor(vault)}, nil
}

// Transfer moves amount between vaults under a valid capability. The debit
// and credit are applied together or not at all.
func (b *Bank) Transfer(_ context.Context, cap Capability, to id.VaultID, amount types.Amount) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	from, ok := b.vaults[cap.vault.String()]
	if !ok {
		return fmt.Errorf("transfer from %s: %w", cap.vault, ErrVaultNotFound)
	}
	if cap.token != b.tokenFor(cap.vault) {
		return fmt.Errorf("transfer from %s: %w", cap.vault, ErrInvalidCapability)
	}

	dest, ok := b.vaults[to.String()]
	if !ok {
		return fmt.Errorf("transfer to %s: %w", to, ErrVaultNotFound)
	}
	if from.mint.String() != dest.mint.String() {
		return fmt.Errorf("transfer %s -> %s: %w", cap.vault, to, ErrMintMismatch)
	}

	debited, err := from.balance.CheckedSub(amount)
	if err != nil {
		return fmt.Errorf("transfer %s from %s: %w", amount, cap.vault, ErrInsufficientFunds)
	}
	if from == dest {
		// Self-transfer: the capability and funds checks apply, but no
		// value moves.
		return nil
	}
	credited, err := dest.balance.CheckedAdd(amount)
	if err != nil {
		return fmt.Errorf("transfer %s to %s: %w", amount, to, err)
	}

	from.balance = debited
	dest.balance = credited
	return nil
}

// tokenFor derives the capability token for a vault from the bank secret.
// Callers must hold b.mu.
func (b *Bank) tokenFor(vault id.VaultID) [32]byte {
	h := blake3.New()
	_, _ = h.Write(b.secret[:])
	_, _ = h.Write([]byte(vault.String()))

	var token [32]byte
	copy(token[:], h.Sum(nil))
	return token
}
