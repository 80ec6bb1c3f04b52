package pool

import (
	"math"
	"math/big"

	"github.com/aman-zulfiqar/anyswap-engine/internal/fpmath"
)

// RefAssetIndex is the reference asset for LP accounting: bootstrap mints
// track its deposit, and later deposits are priced by its ratio.
const RefAssetIndex = 0

// Ratio deviation tolerance for non-bootstrap deposits: 1%.
const (
	ratioToleranceNum = 1
	ratioToleranceDen = 100
)

// AddLiquidityResult is the post-state of a computed liquidity deposit.
type AddLiquidityResult struct {
	LPMinted    uint64   `json:"lp_minted"`
	Fees        []uint64 `json:"fees"`
	Deposited   []uint64 `json:"deposited"` // after-fee amounts credited to reserves
	NewReserves []uint64 `json:"new_reserves"`
	NewLPSupply uint64   `json:"new_lp_supply"`

	// RatioWarnings lists asset indices whose deposit ratio deviates more
	// than the tolerance from the reference asset's. The deposit still
	// proceeds at the reference ratio; the depositor eats the difference.
	RatioWarnings []int `json:"ratio_warnings,omitempty"`
}

// RemoveLiquidityResult is the post-state of a computed liquidity burn.
type RemoveLiquidityResult struct {
	Gross       []uint64 `json:"gross"` // per-asset amount leaving the reserves
	Fees        []uint64 `json:"fees"`
	AmountsOut  []uint64 `json:"amounts_out"` // net payout to the provider
	NewReserves []uint64 `json:"new_reserves"`
	NewLPSupply uint64   `json:"new_lp_supply"`
}

// ComputeAddLiquidity computes a proportional deposit across every pooled
// asset. Weights never enter: ownership is a pure capital ratio.
//
// Bootstrap (LPSupply == 0) mints exactly the after-fee reference-asset
// amount. Later deposits mint LPSupply * afterFee[ref]/reserve[ref]; per-
// asset ratio deviations beyond 1% are reported as warnings, not errors, so
// near-proportional deposits never bounce off rounding. The receiver is not
// mutated.
func (p *Pool) ComputeAddLiquidity(amountsIn []uint64) (*AddLiquidityResult, error) {
	n := len(p.Assets)
	if len(amountsIn) != n {
		return nil, fpmath.Domainf("add_liquidity", "got %d amounts for %d assets", len(amountsIn), n)
	}

	fees := make([]uint64, n)
	deposited := make([]uint64, n)
	for i, amt := range amountsIn {
		fee, afterFee, err := fpmath.FeeOn(amt, p.FeeNumerator, p.FeeDenominator)
		if err != nil {
			return nil, err
		}
		fees[i] = fee
		deposited[i] = afterFee
	}

	var minted uint64
	var warnings []int
	if p.LPSupply == 0 {
		minted = deposited[RefAssetIndex]
	} else {
		refReserve := p.Assets[RefAssetIndex].Reserve
		if refReserve == 0 {
			return nil, fpmath.Domainf("add_liquidity", "reference asset reserve is zero")
		}
		var err error
		minted, err = fpmath.MulDivDown(p.LPSupply, deposited[RefAssetIndex], refReserve)
		if err != nil {
			return nil, err
		}
		warnings = ratioDeviations(deposited, p.Reserves())
	}
	if minted == 0 {
		return nil, fpmath.Domainf("add_liquidity", "deposit mints zero LP")
	}

	newReserves := make([]uint64, n)
	for i, a := range p.Assets {
		if a.Reserve > math.MaxUint64-deposited[i] {
			return nil, fpmath.Domainf("add_liquidity", "reserve overflow for asset %d", i)
		}
		newReserves[i] = a.Reserve + deposited[i]
	}
	if p.LPSupply > math.MaxUint64-minted {
		return nil, fpmath.Domainf("add_liquidity", "lp supply overflow")
	}

	return &AddLiquidityResult{
		LPMinted:      minted,
		Fees:          fees,
		Deposited:     deposited,
		NewReserves:   newReserves,
		NewLPSupply:   p.LPSupply + minted,
		RatioWarnings: warnings,
	}, nil
}

// ComputeRemoveLiquidity burns lpToBurn LP units and pays out every asset
// proportionally. The fee is withheld from the payout: the gross amount
// still leaves the reserves, mirroring how swap fees are skimmed rather
// than re-credited. The receiver is not mutated.
func (p *Pool) ComputeRemoveLiquidity(lpToBurn uint64) (*RemoveLiquidityResult, error) {
	if lpToBurn == 0 {
		return nil, fpmath.Domainf("remove_liquidity", "zero LP burn")
	}
	if lpToBurn > p.LPSupply {
		return nil, fpmath.Domainf("remove_liquidity", "burn %d exceeds LP supply %d", lpToBurn, p.LPSupply)
	}

	n := len(p.Assets)
	gross := make([]uint64, n)
	fees := make([]uint64, n)
	amountsOut := make([]uint64, n)
	newReserves := make([]uint64, n)

	for i, a := range p.Assets {
		g, err := fpmath.MulDivDown(a.Reserve, lpToBurn, p.LPSupply)
		if err != nil {
			return nil, err
		}
		fee, net, err := fpmath.FeeOn(g, p.FeeNumerator, p.FeeDenominator)
		if err != nil {
			return nil, err
		}
		gross[i] = g
		fees[i] = fee
		amountsOut[i] = net
		newReserves[i] = a.Reserve - g
	}

	return &RemoveLiquidityResult{
		Gross:       gross,
		Fees:        fees,
		AmountsOut:  amountsOut,
		NewReserves: newReserves,
		NewLPSupply: p.LPSupply - lpToBurn,
	}, nil
}

// ApplyAddLiquidity returns a clone carrying the deposit's post-state.
func (p *Pool) ApplyAddLiquidity(res *AddLiquidityResult) *Pool {
	return p.withState(res.NewReserves, res.NewLPSupply)
}

// ApplyRemoveLiquidity returns a clone carrying the burn's post-state.
func (p *Pool) ApplyRemoveLiquidity(res *RemoveLiquidityResult) *Pool {
	return p.withState(res.NewReserves, res.NewLPSupply)
}

// ratioDeviations reports which deposits deviate from the reference ratio
// by more than the tolerance. Cross-multiplied in big.Int so no division
// noise creeps in:
//
//	|a_i/r_i - a0/r0| / (a0/r0) > tol  <=>  |a_i*r0 - a0*r_i| * tolDen > a0*r_i * tolNum
func ratioDeviations(deposited, reserves []uint64) []int {
	a0 := new(big.Int).SetUint64(deposited[RefAssetIndex])
	r0 := new(big.Int).SetUint64(reserves[RefAssetIndex])

	var out []int
	for i := range deposited {
		if i == RefAssetIndex {
			continue
		}
		if reserves[i] == 0 {
			out = append(out, i)
			continue
		}
		ai := new(big.Int).SetUint64(deposited[i])
		ri := new(big.Int).SetUint64(reserves[i])

		lhs := new(big.Int).Mul(ai, r0)
		rhs := new(big.Int).Mul(a0, ri)
		diff := new(big.Int).Abs(new(big.Int).Sub(lhs, rhs))
		diff.Mul(diff, big.NewInt(ratioToleranceDen))

		bound := new(big.Int).Mul(rhs, big.NewInt(ratioToleranceNum))
		if diff.Cmp(bound) > 0 {
			out = append(out, i)
		}
	}
	return out
}
