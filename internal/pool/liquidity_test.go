package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aman-zulfiqar/anyswap-engine/internal/fpmath"
)

func TestComputeAddLiquidityBootstrap(t *testing.T) {
	// Empty 6-asset pool at 0.03% fee. The first deposit mints the
	// after-fee reference amount: 1_000_000 - 300.
	p := testPool(t,
		[]uint64{0, 0, 0, 0, 0, 0},
		[]uint64{20e9, 40e9, 80e9, 30e9, 50e9, 60e9},
		0, 3, 10000)

	amounts := []uint64{1_000_000, 5_000_000, 10_000_000, 2_000_000, 3_000_000, 4_000_000}
	res, err := p.ComputeAddLiquidity(amounts)
	require.NoError(t, err)

	assert.Equal(t, uint64(999_700), res.LPMinted)
	assert.Equal(t, uint64(999_700), res.NewLPSupply)
	assert.Equal(t, uint64(300), res.Fees[0])
	assert.Equal(t, uint64(999_700), res.Deposited[0])
	assert.Equal(t, uint64(4_998_500), res.Deposited[1])
	assert.Empty(t, res.RatioWarnings, "bootstrap has no reference ratio to deviate from")

	for i := range amounts {
		assert.Equal(t, res.Deposited[i], res.NewReserves[i])
	}
}

func TestComputeAddLiquidityProportional(t *testing.T) {
	p := testPool(t, []uint64{1_000_000, 2_000_000}, []uint64{10, 10}, 1_000_000, 0, 10000)

	// exactly half the pool again
	res, err := p.ComputeAddLiquidity([]uint64{500_000, 1_000_000})
	require.NoError(t, err)

	assert.Equal(t, uint64(500_000), res.LPMinted)
	assert.Equal(t, uint64(1_500_000), res.NewLPSupply)
	assert.Empty(t, res.RatioWarnings)
}

func TestComputeAddLiquidityRatioWarning(t *testing.T) {
	p := testPool(t, []uint64{1_000_000, 2_000_000}, []uint64{10, 10}, 1_000_000, 0, 10000)

	// asset 1 is double its proportional share: warn, do not reject
	res, err := p.ComputeAddLiquidity([]uint64{500_000, 2_000_000})
	require.NoError(t, err)
	assert.Equal(t, []int{1}, res.RatioWarnings)
	assert.Equal(t, uint64(500_000), res.LPMinted, "mint still keyed to the reference asset")

	// within 1% of proportional: no warning
	res, err = p.ComputeAddLiquidity([]uint64{500_000, 1_005_000})
	require.NoError(t, err)
	assert.Empty(t, res.RatioWarnings)
}

func TestComputeAddLiquidityRejections(t *testing.T) {
	p := testPool(t, []uint64{1_000_000, 2_000_000}, []uint64{10, 10}, 1_000_000, 3, 10000)

	_, err := p.ComputeAddLiquidity([]uint64{500_000})
	require.Error(t, err, "arity mismatch")
	assert.True(t, fpmath.IsDomainError(err))

	_, err = p.ComputeAddLiquidity([]uint64{0, 0})
	require.Error(t, err, "deposit that mints zero LP")
	assert.True(t, fpmath.IsDomainError(err))
}

func TestComputeRemoveLiquidity(t *testing.T) {
	p := testPool(t, []uint64{1_000_000, 2_000_000}, []uint64{10, 10}, 1_000_000, 3, 10000)

	res, err := p.ComputeRemoveLiquidity(250_000)
	require.NoError(t, err)

	// gross share is exact here: a quarter of each reserve
	assert.Equal(t, uint64(250_000), res.Gross[0])
	assert.Equal(t, uint64(500_000), res.Gross[1])
	assert.Equal(t, uint64(75), res.Fees[0])
	assert.Equal(t, uint64(150), res.Fees[1])
	assert.Equal(t, uint64(249_925), res.AmountsOut[0])
	assert.Equal(t, uint64(499_850), res.AmountsOut[1])

	// fee stays behind with the pool only through the payout, the
	// reserve drops by the full gross share
	assert.Equal(t, uint64(750_000), res.NewReserves[0])
	assert.Equal(t, uint64(1_500_000), res.NewReserves[1])
	assert.Equal(t, uint64(750_000), res.NewLPSupply)
}

func TestComputeRemoveLiquidityRejections(t *testing.T) {
	p := testPool(t, []uint64{1_000_000, 2_000_000}, []uint64{10, 10}, 1_000_000, 3, 10000)

	_, err := p.ComputeRemoveLiquidity(0)
	require.Error(t, err)
	assert.True(t, fpmath.IsDomainError(err))

	_, err = p.ComputeRemoveLiquidity(1_000_001)
	require.Error(t, err, "burn beyond supply")
	assert.True(t, fpmath.IsDomainError(err))

	assert.Equal(t, uint64(1_000_000), p.LPSupply, "pool unchanged after rejection")
}

func TestLiquidityRoundTrip(t *testing.T) {
	// Zero fee so the round trip is exact up to integer division.
	p := testPool(t, []uint64{0, 0, 0}, []uint64{20e9, 40e9, 40e9}, 0, 0, 10000)

	add, err := p.ComputeAddLiquidity([]uint64{1_000_000, 5_000_000, 10_000_000})
	require.NoError(t, err)
	p = p.ApplyAddLiquidity(add)

	rem, err := p.ComputeRemoveLiquidity(add.LPMinted)
	require.NoError(t, err)

	assert.Equal(t, uint64(1_000_000), rem.AmountsOut[0])
	assert.Equal(t, uint64(5_000_000), rem.AmountsOut[1])
	assert.Equal(t, uint64(10_000_000), rem.AmountsOut[2])
	assert.Equal(t, uint64(0), rem.NewLPSupply)
	for i := range rem.NewReserves {
		assert.Equal(t, uint64(0), rem.NewReserves[i])
	}
}

func TestApplyLiquidity(t *testing.T) {
	p := testPool(t, []uint64{1_000_000, 2_000_000}, []uint64{10, 10}, 1_000_000, 3, 10000)

	add, err := p.ComputeAddLiquidity([]uint64{100_000, 200_000})
	require.NoError(t, err)

	next := p.ApplyAddLiquidity(add)
	assert.Equal(t, add.NewReserves[0], next.Assets[0].Reserve)
	assert.Equal(t, add.NewLPSupply, next.LPSupply)
	assert.Equal(t, uint64(1_000_000), p.LPSupply, "original untouched")

	rem, err := next.ComputeRemoveLiquidity(add.LPMinted)
	require.NoError(t, err)

	final := next.ApplyRemoveLiquidity(rem)
	assert.Equal(t, rem.NewReserves[1], final.Assets[1].Reserve)
	assert.Equal(t, rem.NewLPSupply, final.LPSupply)
}
