// Package fee computes transfer fees under basis-point and cap semantics.
//
// This computation is consensus-relevant in the runtime this core models,
// so it must be reproducible bit for bit: integer arithmetic only, no
// floating point anywhere.
package fee

import (
	"math/bits"

	"github.com/pkg/errors"
)

// MaxBasisPoints is 100% expressed in basis points (1/10000ths).
const MaxBasisPoints = 10_000

var (
	ErrRateOutOfRange     = errors.New("fee rate exceeds 10000 basis points")
	ErrArithmeticOverflow = errors.New("fee computation overflow")
)

// Calculate returns min(floor(amount * rateBps / 10000), cap).
//
// The product amount * rateBps can exceed 64 bits, so the intermediate is
// computed at 128-bit width. Given rateBps <= 10000 the quotient always
// fits back in a uint64; ErrArithmeticOverflow guards the invariant rather
// than relying on it silently.
func Calculate(amount uint64, rateBps uint16, cap uint64) (uint64, error) {
	if rateBps > MaxBasisPoints {
		return 0, errors.Wrapf(ErrRateOutOfRange, "rate %d", rateBps)
	}

	// Explicit short circuits, per the contract: a zero rate, amount or
	// cap always yields a zero fee.
	if amount == 0 || rateBps == 0 || cap == 0 {
		return 0, nil
	}

	hi, lo := bits.Mul64(amount, uint64(rateBps))
	if hi >= MaxBasisPoints {
		// Unreachable for valid rates; Div64 would panic on quotient
		// overflow otherwise.
		return 0, ErrArithmeticOverflow
	}
	raw, _ := bits.Div64(hi, lo, MaxBasisPoints)

	if raw > cap {
		return cap, nil
	}
	return raw, nil
}
