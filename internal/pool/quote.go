package pool

import (
	"time"

	"github.com/aman-zulfiqar/anyswap-engine/internal/fpmath"
)

// SwapQuote previews a swap without committing anything: the solved output
// the pool would pay right now, plus a slippage-adjusted floor the caller
// can pin into the real request.
type SwapQuote struct {
	PoolID string `json:"pool_id"`

	AmountsOut []uint64 `json:"amounts_out"`
	Fees       []uint64 `json:"fees"`

	// SolvedAmountOut is the derived amount for the designated last output;
	// MinAmountOut applies the slippage tolerance to it.
	SolvedAmountOut uint64 `json:"solved_amount_out"`
	MinAmountOut    uint64 `json:"min_amount_out"`
	SlippageBps     uint16 `json:"slippage_bps"`

	InvariantBefore float64   `json:"invariant_before"`
	InvariantAfter  float64   `json:"invariant_after"`
	QuotedAt        time.Time `json:"quoted_at"`
}

// QuoteSwap runs the swap math without a floor on the solved output and
// reports what the trade would pay. The quote uses exactly the executor's
// arithmetic, so a quoted amount is what an immediately-executed identical
// request returns.
func (p *Pool) QuoteSwap(req SwapRequest, slippageBps uint16) (*SwapQuote, error) {
	// Strip the solved output's floor; a quote asks, it doesn't demand.
	preview := SwapRequest{
		Inputs:  req.Inputs,
		Outputs: make([]AssetOut, len(req.Outputs)),
	}
	copy(preview.Outputs, req.Outputs)
	if n := len(preview.Outputs); n > 0 {
		preview.Outputs[n-1].Amount = 0
	}

	res, err := p.ComputeSwap(preview)
	if err != nil {
		return nil, err
	}

	solved := res.AmountsOut[len(res.AmountsOut)-1]
	return &SwapQuote{
		PoolID:          p.ID,
		AmountsOut:      res.AmountsOut,
		Fees:            res.Fees,
		SolvedAmountOut: solved,
		MinAmountOut:    fpmath.ApplySlippage(solved, slippageBps),
		SlippageBps:     slippageBps,
		InvariantBefore: res.InvariantBefore,
		InvariantAfter:  res.InvariantAfter,
		QuotedAt:        time.Now().UTC(),
	}, nil
}
