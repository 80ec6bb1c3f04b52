// Package invariant computes and solves the weighted logarithmic invariant
// K = sum(weight_i * ln(reserve_i)) that the swap executor holds constant.
//
// The sum only ever runs over the asset indices a swap actually touches:
// untouched reserves contribute the same term before and after, so they
// cancel out of the balance equation and their weights may even be
// meaningless without breaking the math.
package invariant

import (
	"math"

	"github.com/aman-zulfiqar/anyswap-engine/internal/fpmath"
)

// WeightedLogSum sums weight_i * ln(reserve_i) over exactly the given index
// set. Weights are raw scaled integers; the scale cancels when SolveReserve
// divides by the same weight, so only relative magnitude matters.
// Fails with a DomainError if any referenced reserve is zero.
func WeightedLogSum(indices []int, reserves, weights []uint64) (float64, error) {
	var sum float64
	for _, i := range indices {
		if i < 0 || i >= len(reserves) {
			return 0, fpmath.Domainf("invariant", "asset index %d out of range", i)
		}
		lnR, err := fpmath.Ln(reserves[i])
		if err != nil {
			return 0, err
		}
		sum += float64(weights[i]) * lnR
	}
	return sum, nil
}

// SolveReserve solves the one remaining reserve from the invariant equation:
// the touched assets other than the solved one contribute knownTerms, so the
// solved asset must contribute targetK - knownTerms, i.e.
//
//	reserveAfter = exp((targetK - knownTerms) / weight)
//
// The result rounds up: a larger post-swap reserve means a smaller payout,
// so rounding never favors the trader. Fails with a DomainError
// ("insufficient reserve") when the solved reserve is not positive, meaning
// the requested combination of other deltas is infeasible.
func SolveReserve(targetK, knownTerms float64, weight uint64) (uint64, error) {
	if weight == 0 {
		return 0, fpmath.Domainf("invariant", "zero weight for solved asset")
	}
	lnAfter := (targetK - knownTerms) / float64(weight)
	after := fpmath.Exp(lnAfter)
	r, err := fpmath.CeilToUint64(after)
	if err != nil {
		return 0, fpmath.Domainf("invariant", "insufficient reserve")
	}
	return r, nil
}

// WithinEpsilon reports whether two invariant values agree within the
// numeric tolerance of the ln/exp primitives (relative, with an absolute
// floor for values near zero).
func WithinEpsilon(before, after float64) bool {
	return WithinQuantum(before, after, 0)
}

// WithinQuantum is WithinEpsilon with an extra absolute allowance. The
// executor passes weight/reserve for the solved asset: rounding that
// reserve up to an integer moves the invariant by up to one such step, and
// that deliberate one-sided drift must not read as a primitive bug on
// small pools.
func WithinQuantum(before, after, quantum float64) bool {
	diff := math.Abs(before - after)
	scale := math.Max(math.Abs(before), 1)
	return diff <= fpmath.InvariantEpsilon*scale+quantum
}
