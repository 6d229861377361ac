// Package types provides common types used across the wire ledger.
package types

import (
	"errors"
	"fmt"
	"math/bits"
)

// Amount is a token value in the smallest unit of the custody mint.
// All arithmetic is integer-only and checked — no floating point,
// no silent wraparound.
type Amount uint64

// ErrOverflow is returned when a checked arithmetic step cannot be
// represented in 64 bits. Unsigned underflow reports the same error:
// the result is unrepresentable either way.
var ErrOverflow = errors.New("amount: arithmetic overflow")

// BpsDenominator is the basis-point scale: 10000 bps == 100%.
const BpsDenominator = 10000

// CheckedAdd returns a+b, or ErrOverflow if the sum exceeds 64 bits.
func (a Amount) CheckedAdd(b Amount) (Amount, error) {
	sum, carry := bits.Add64(uint64(a), uint64(b), 0)
	if carry != 0 {
		return 0, fmt.Errorf("%d + %d: %w", a, b, ErrOverflow)
	}
	return Amount(sum), nil
}

// CheckedSub returns a-b, or ErrOverflow if b exceeds a.
func (a Amount) CheckedSub(b Amount) (Amount, error) {
	diff, borrow := bits.Sub64(uint64(a), uint64(b), 0)
	if borrow != 0 {
		return 0, fmt.Errorf("%d - %d: %w", a, b, ErrOverflow)
	}
	return Amount(diff), nil
}

// CheckedMul returns a*b, or ErrOverflow if the product exceeds 64 bits.
func (a Amount) CheckedMul(b Amount) (Amount, error) {
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	if hi != 0 {
		return 0, fmt.Errorf("%d * %d: %w", a, b, ErrOverflow)
	}
	return Amount(lo), nil
}

// ShareBps returns floor(a * bps / 10000), computed through a 128-bit
// intermediate so the multiply cannot wrap. The quotient itself can
// exceed 64 bits only when bps > 10000; that case reports ErrOverflow
// rather than a truncated value.
func (a Amount) ShareBps(bps uint16) (Amount, error) {
	hi, lo := bits.Mul64(uint64(a), uint64(bps))
	if hi >= BpsDenominator {
		return 0, fmt.Errorf("%d * %dbps: %w", a, bps, ErrOverflow)
	}
	quo, _ := bits.Div64(hi, lo, BpsDenominator)
	return Amount(quo), nil
}

// SplitFee divides total into a fee of floor(total * feeBps / 10000)
// and the exact remainder. fee + remainder == total always holds: the
// remainder is derived by subtraction, never computed independently.
func SplitFee(total Amount, feeBps uint16) (fee, remainder Amount, err error) {
	fee, err = total.ShareBps(feeBps)
	if err != nil {
		return 0, 0, err
	}
	remainder, err = total.CheckedSub(fee)
	if err != nil {
		return 0, 0, err
	}
	return fee, remainder, nil
}

// ValidBps reports whether a basis-point fraction is at most 100%.
func ValidBps(bps uint16) bool { return bps <= BpsDenominator }

// IsZero reports whether the amount is zero.
func (a Amount) IsZero() bool { return a == 0 }

// String formats the amount as a plain base-10 integer.
func (a Amount) String() string { return fmt.Sprintf("%d", uint64(a)) }
