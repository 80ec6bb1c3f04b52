package invariant

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aman-zulfiqar/anyswap-engine/internal/fpmath"
)

func TestWeightedLogSum(t *testing.T) {
	reserves := []uint64{10_000_000_000_000, 20_000_000_000_000, 20_000_000_000_000}
	weights := []uint64{20, 40, 40}

	k, err := WeightedLogSum([]int{0, 1, 2}, reserves, weights)
	require.NoError(t, err)

	want := 20*math.Log(1e13) + 40*math.Log(2e13) + 40*math.Log(2e13)
	assert.InDelta(t, want, k, 1e-9)

	// subset sums only over the given indices
	k12, err := WeightedLogSum([]int{1, 2}, reserves, weights)
	require.NoError(t, err)
	assert.InDelta(t, 80*math.Log(2e13), k12, 1e-9)
}

func TestWeightedLogSumRejectsBadInput(t *testing.T) {
	reserves := []uint64{100, 0}
	weights := []uint64{1, 1}

	_, err := WeightedLogSum([]int{1}, reserves, weights)
	assert.True(t, fpmath.IsDomainError(err), "zero reserve must be a domain error")

	_, err = WeightedLogSum([]int{5}, reserves, weights)
	assert.True(t, fpmath.IsDomainError(err), "out-of-range index must be a domain error")
}

func TestSolveReserveRoundTrip(t *testing.T) {
	// Solving for the only touched asset's own contribution must return the
	// reserve itself (up to the round-up).
	reserves := []uint64{1_000_000_000}
	weights := []uint64{40_000_000_000} // 40 at 1e9 scale

	k, err := WeightedLogSum([]int{0}, reserves, weights)
	require.NoError(t, err)

	r, err := SolveReserve(k, 0, weights[0])
	require.NoError(t, err)
	assert.InDelta(t, float64(reserves[0]), float64(r), 1)
}

func TestSolveReserveInfeasible(t *testing.T) {
	// A target contribution far below anything representable solves to a
	// sub-one reserve and must be rejected, not returned as zero.
	_, err := SolveReserve(0, 1e6, 10)
	assert.True(t, fpmath.IsDomainError(err))

	_, err = SolveReserve(0, 0, 0)
	assert.True(t, fpmath.IsDomainError(err))
}

func TestWithinEpsilon(t *testing.T) {
	assert.True(t, WithinEpsilon(3000.0, 3000.0))
	assert.True(t, WithinEpsilon(3000.0, 3000.0+1e-7))
	assert.False(t, WithinEpsilon(3000.0, 3000.1))

	// absolute floor near zero
	assert.True(t, WithinEpsilon(0, 1e-10))
	assert.False(t, WithinEpsilon(0, 1e-3))
}

func TestWithinQuantum(t *testing.T) {
	// one integer step of a small solved reserve: 10/1e6
	quantum := 1e-5

	assert.True(t, WithinQuantum(276.0, 276.0+5e-6, quantum))
	assert.False(t, WithinQuantum(276.0, 276.0+5e-5, quantum))
	assert.False(t, WithinEpsilon(276.0, 276.0+5e-6), "same drift fails without the allowance")
}
