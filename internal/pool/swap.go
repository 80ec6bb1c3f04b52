package pool

import (
	"math"

	"github.com/aman-zulfiqar/anyswap-engine/internal/fpmath"
	"github.com/aman-zulfiqar/anyswap-engine/internal/invariant"
)

// SwapResult is the post-state of a computed swap. Nothing has been
// committed yet: NewReserves is the full reserve vector the caller should
// persist if it accepts the trade.
type SwapResult struct {
	// NewReserves is index-aligned with the pool's assets.
	NewReserves []uint64 `json:"new_reserves"`
	// AmountsOut is aligned with the request's Outputs; the last entry is
	// the solved amount, the rest echo the pinned amounts.
	AmountsOut []uint64 `json:"amounts_out"`
	// Fees is aligned with the request's Inputs.
	Fees []uint64 `json:"fees"`

	InvariantBefore float64 `json:"invariant_before"`
	InvariantAfter  float64 `json:"invariant_after"`
}

// FeeTotal returns the sum of all input fees skimmed by the swap.
func (r *SwapResult) FeeTotal() uint64 {
	var total uint64
	for _, f := range r.Fees {
		total += f
	}
	return total
}

// ComputeSwap executes a multi-input/multi-output swap over the pool's
// current reserves, holding the weighted-log invariant constant over the
// touched assets:
//
//  1. skim the fee from every input,
//  2. compute K over the touched set from the pre-swap reserves,
//  3. credit inputs and debit pinned outputs,
//  4. solve the last output's reserve from the invariant equation,
//  5. re-verify the invariant on the post-state.
//
// The receiver is never mutated. All infeasible trades come back as
// DomainErrors; an invariant mismatch in step 5 comes back as an
// *InvariantError and must not be committed.
func (p *Pool) ComputeSwap(req SwapRequest) (*SwapResult, error) {
	plan, err := p.buildPlan(req)
	if err != nil {
		return nil, err
	}

	reserves := p.Reserves()
	weights := p.Weights()

	kBefore, err := invariant.WeightedLogSum(plan.touched, reserves, weights)
	if err != nil {
		return nil, err
	}

	newReserves := make([]uint64, len(reserves))
	copy(newReserves, reserves)

	fees := make([]uint64, len(req.Inputs))
	for i, in := range req.Inputs {
		fee, afterFee, err := fpmath.FeeOn(in.Amount, p.FeeNumerator, p.FeeDenominator)
		if err != nil {
			return nil, err
		}
		if newReserves[in.Index] > math.MaxUint64-afterFee {
			return nil, fpmath.Domainf("swap", "reserve overflow for asset %d", in.Index)
		}
		fees[i] = fee
		newReserves[in.Index] += afterFee
	}

	amountsOut := make([]uint64, len(req.Outputs))
	for i, out := range req.Outputs[:len(req.Outputs)-1] {
		if out.Amount >= newReserves[out.Index] {
			return nil, fpmath.Domainf("swap", "reserve would go non-positive for asset %d", out.Index)
		}
		newReserves[out.Index] -= out.Amount
		amountsOut[i] = out.Amount
	}

	// Weighted-log contribution of every touched asset except the solved
	// one, on post-update reserves.
	known := make([]int, 0, len(plan.touched)-1)
	for _, idx := range plan.touched {
		if idx != plan.solved {
			known = append(known, idx)
		}
	}
	knownTerms, err := invariant.WeightedLogSum(known, newReserves, weights)
	if err != nil {
		return nil, err
	}

	solvedAfter, err := invariant.SolveReserve(kBefore, knownTerms, weights[plan.solved])
	if err != nil {
		return nil, err
	}
	if solvedAfter >= reserves[plan.solved] {
		return nil, fpmath.Domainf("swap", "negative output for asset %d", plan.solved)
	}
	newReserves[plan.solved] = solvedAfter

	solvedOut := reserves[plan.solved] - solvedAfter
	if floor := req.Outputs[len(req.Outputs)-1].Amount; floor > 0 && solvedOut < floor {
		return nil, fpmath.Domainf("swap", "solved output %d below minimum %d", solvedOut, floor)
	}
	amountsOut[len(amountsOut)-1] = solvedOut

	// Post-condition, not a business rule: the touched-set invariant must
	// be unchanged up to the numeric epsilon plus the one integer step the
	// ceil on the solved reserve may add. A larger mismatch means a
	// primitive bug, so it surfaces as an InvariantError rather than a
	// rejection.
	kAfter, err := invariant.WeightedLogSum(plan.touched, newReserves, weights)
	if err != nil {
		return nil, err
	}
	quantum := float64(weights[plan.solved]) / float64(solvedAfter)
	if !invariant.WithinQuantum(kBefore, kAfter, quantum) {
		return nil, &InvariantError{PoolID: p.ID, Before: kBefore, After: kAfter}
	}

	return &SwapResult{
		NewReserves:     newReserves,
		AmountsOut:      amountsOut,
		Fees:            fees,
		InvariantBefore: kBefore,
		InvariantAfter:  kAfter,
	}, nil
}

// ApplySwap returns a clone of the pool carrying the swap's post-state.
func (p *Pool) ApplySwap(res *SwapResult) *Pool {
	return p.withState(res.NewReserves, p.LPSupply)
}
