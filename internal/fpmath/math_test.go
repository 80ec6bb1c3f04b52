package fpmath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLn(t *testing.T) {
	v, err := Ln(1)
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)

	v, err = Ln(10_000_000_000_000)
	require.NoError(t, err)
	assert.InDelta(t, math.Log(1e13), v, 1e-12)

	_, err = Ln(0)
	assert.Error(t, err)
	assert.True(t, IsDomainError(err))
}

func TestLnExpRoundTrip(t *testing.T) {
	// Round-tripping through Ln/Exp must stay inside the documented bound;
	// the swap executor relies on this when it re-verifies the invariant.
	for _, x := range []uint64{1, 97, 1_000_000, 20_000_000_000_000, 1 << 52} {
		lnX, err := Ln(x)
		require.NoError(t, err)
		back := Exp(lnX)
		assert.InEpsilon(t, float64(x), back, InvariantEpsilon, "x=%d", x)
	}
}

func TestMulDivDown(t *testing.T) {
	v, err := MulDivDown(10, 3, 4)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), v) // 30/4 = 7.5 -> 7

	// a*b overflows uint64 but not the big.Int intermediate
	v, err = MulDivDown(math.MaxUint64, 2, 4)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64/2), v)

	_, err = MulDivDown(1, 1, 0)
	assert.True(t, IsDomainError(err))

	_, err = MulDivDown(math.MaxUint64, 2, 1)
	assert.True(t, IsDomainError(err))
}

func TestMulDivUp(t *testing.T) {
	v, err := MulDivUp(10, 3, 4)
	require.NoError(t, err)
	assert.Equal(t, uint64(8), v) // 30/4 = 7.5 -> 8

	v, err = MulDivUp(10, 2, 4)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), v) // exact stays exact

	v, err = MulDivUp(0, 3, 4)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), v)
}

func TestFeeOn(t *testing.T) {
	// 0.03% of 10_000_000_000_000 is exact
	fee, after, err := FeeOn(10_000_000_000_000, 3, 10000)
	require.NoError(t, err)
	assert.Equal(t, uint64(3_000_000_000), fee)
	assert.Equal(t, uint64(9_997_000_000_000), after)

	// inexact fee rounds up, never in the trader's favor
	fee, after, err = FeeOn(10_001, 3, 10000)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), fee)
	assert.Equal(t, uint64(9_997), after)

	_, _, err = FeeOn(100, 3, 0)
	assert.True(t, IsDomainError(err))

	_, _, err = FeeOn(100, 10000, 10000)
	assert.True(t, IsDomainError(err))
}

func TestApplySlippage(t *testing.T) {
	assert.Equal(t, uint64(9_900), ApplySlippage(10_000, 100))
	assert.Equal(t, uint64(10_000), ApplySlippage(10_000, 0))
	assert.Equal(t, uint64(0), ApplySlippage(10_000, 10000))
}

func TestCeilToUint64(t *testing.T) {
	v, err := CeilToUint64(12.0001)
	require.NoError(t, err)
	assert.Equal(t, uint64(13), v)

	v, err = CeilToUint64(12.0)
	require.NoError(t, err)
	assert.Equal(t, uint64(12), v)

	_, err = CeilToUint64(0)
	assert.True(t, IsDomainError(err))

	_, err = CeilToUint64(-3.5)
	assert.True(t, IsDomainError(err))

	_, err = CeilToUint64(math.NaN())
	assert.True(t, IsDomainError(err))

	_, err = CeilToUint64(1e30)
	assert.True(t, IsDomainError(err))
}
