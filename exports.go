package ledger

import "github.com/agentwire/ledger/types"

// Re-export common types for convenience so users don't have to import types package.

// Amount is re-exported from types package.
type Amount = types.Amount

// Entity is re-exported from types package.
type Entity = types.Entity

// BpsDenominator is re-exported from types package.
const BpsDenominator = types.BpsDenominator

// Re-export arithmetic helpers
var (
	SplitFee = types.SplitFee
	ValidBps = types.ValidBps
)

// Re-export Entity constructor
var NewEntity = types.NewEntity
