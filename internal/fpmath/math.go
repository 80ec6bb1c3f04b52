package fpmath

import (
	"math"
	"math/big"
)

// All monetary arithmetic in the engine is integer. The only floating-point
// computation anywhere is the ln/exp pair below, and it never leaves this
// package un-rounded: solved reserves round up, payouts round down, fees
// round up. float64 carries 53 mantissa bits, so reserves up to ~9e15 keep
// full integer precision through Ln; the relative error of a round-tripped
// weighted-log invariant stays well inside InvariantEpsilon.

// InvariantEpsilon is the relative tolerance used when re-verifying the
// weighted-log invariant after a swap.
const InvariantEpsilon = 1e-9

// Ln returns the natural logarithm of x.
// Fails with a DomainError when x is zero (log of zero is undefined and a
// zero reserve means the pool is degenerate).
func Ln(x uint64) (float64, error) {
	if x == 0 {
		return 0, Domainf("ln", "log of non-positive value")
	}
	return math.Log(float64(x)), nil
}

// Exp returns e**x.
func Exp(x float64) float64 {
	return math.Exp(x)
}

// MulDivDown computes a * b / den with the division rounded toward zero.
// Uses big.Int so the a*b intermediate cannot overflow.
func MulDivDown(a, b, den uint64) (uint64, error) {
	if den == 0 {
		return 0, Domainf("muldiv", "division by zero")
	}
	r := new(big.Int).Mul(new(big.Int).SetUint64(a), new(big.Int).SetUint64(b))
	r.Div(r, new(big.Int).SetUint64(den))
	if !r.IsUint64() {
		return 0, Domainf("muldiv", "result overflows uint64")
	}
	return r.Uint64(), nil
}

// MulDivUp computes a * b / den rounded up.
func MulDivUp(a, b, den uint64) (uint64, error) {
	if den == 0 {
		return 0, Domainf("muldiv", "division by zero")
	}
	num := new(big.Int).Mul(new(big.Int).SetUint64(a), new(big.Int).SetUint64(b))
	d := new(big.Int).SetUint64(den)
	q, m := new(big.Int).QuoRem(num, d, new(big.Int))
	if m.Sign() != 0 {
		q.Add(q, big.NewInt(1))
	}
	if !q.IsUint64() {
		return 0, Domainf("muldiv", "result overflows uint64")
	}
	return q.Uint64(), nil
}

// FeeOn splits amount into the fee retained by the pool and the remainder.
// The fee rounds up so repeated small trades can never be under-charged.
func FeeOn(amount, feeNumerator, feeDenominator uint64) (fee, afterFee uint64, err error) {
	if feeDenominator == 0 {
		return 0, 0, Domainf("fee", "fee denominator is zero")
	}
	if feeNumerator >= feeDenominator {
		return 0, 0, Domainf("fee", "fee rate %d/%d is not below 1", feeNumerator, feeDenominator)
	}
	fee, err = MulDivUp(amount, feeNumerator, feeDenominator)
	if err != nil {
		return 0, 0, err
	}
	return fee, amount - fee, nil
}

// ApplySlippage calculates minimum output with slippage tolerance
// slippageBps: basis points (e.g., 100 = 1%, 50 = 0.5%)
func ApplySlippage(amountOut uint64, slippageBps uint16) uint64 {
	if slippageBps >= 10000 {
		return 0 // 100% slippage = no output
	}

	// minOut = amountOut * (10000 - slippageBps) / 10000
	out, err := MulDivDown(amountOut, 10000-uint64(slippageBps), 10000)
	if err != nil {
		return 0
	}
	return out
}

// CeilToUint64 rounds x up to the nearest uint64.
// Fails with a DomainError when x is non-positive or too large to represent;
// a non-positive solved reserve means the requested trade is infeasible.
func CeilToUint64(x float64) (uint64, error) {
	if math.IsNaN(x) || x <= 0 {
		return 0, Domainf("round", "insufficient reserve")
	}
	c := math.Ceil(x)
	if c >= float64(math.MaxUint64) {
		return 0, Domainf("round", "value overflows uint64")
	}
	return uint64(c), nil
}
