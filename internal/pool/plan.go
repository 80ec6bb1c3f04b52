package pool

import (
	"github.com/aman-zulfiqar/anyswap-engine/internal/fpmath"
)

// AssetRole tags what a swap does to one asset index. Every index gets
// exactly one role, assigned once up front, so the executor's main loop
// never rescans the input/output lists and the exactly-one-solved-output
// rule is checked before any math runs.
type AssetRole uint8

const (
	RoleUnchanged AssetRole = iota
	RoleInput
	RolePinnedOutput
	RoleSolvedOutput
)

// AssetIn is one swap input: the asset index and the gross amount paid in
// (fee not yet deducted).
type AssetIn struct {
	Index  int    `json:"index"`
	Amount uint64 `json:"amount"`
}

// AssetOut is one swap output. For pinned outputs Amount is the exact
// amount paid out (typically a slippage-checked minimum the caller already
// accepted). For the solved output Amount is a floor on the derived amount;
// zero means no floor.
type AssetOut struct {
	Index  int    `json:"index"`
	Amount uint64 `json:"amount"`
}

// SwapRequest describes a multi-asset swap. The final entry of Outputs is
// the designated solved output: its amount is derived from the invariant
// equation rather than supplied by the caller.
type SwapRequest struct {
	Inputs  []AssetIn  `json:"inputs"`
	Outputs []AssetOut `json:"outputs"`
}

// swapPlan is the validated, role-tagged form of a SwapRequest.
type swapPlan struct {
	roles   []AssetRole
	touched []int // touched indices in request order: inputs, pinned, solved
	solved  int   // index of the solved output asset
}

// buildPlan validates the request against the pool and assigns roles.
// All rejections here are DomainErrors: the caller picked an infeasible or
// malformed trade and can adjust it.
func (p *Pool) buildPlan(req SwapRequest) (*swapPlan, error) {
	if len(req.Inputs) == 0 {
		return nil, fpmath.Domainf("swap", "no input assets")
	}
	if len(req.Outputs) == 0 {
		return nil, fpmath.Domainf("swap", "no output assets")
	}

	n := len(p.Assets)
	plan := &swapPlan{
		roles:   make([]AssetRole, n),
		touched: make([]int, 0, len(req.Inputs)+len(req.Outputs)),
	}

	assign := func(idx int, role AssetRole) error {
		if idx < 0 || idx >= n {
			return fpmath.Domainf("swap", "asset index %d out of range", idx)
		}
		if plan.roles[idx] != RoleUnchanged {
			return fpmath.Domainf("swap", "asset index %d used more than once", idx)
		}
		plan.roles[idx] = role
		plan.touched = append(plan.touched, idx)
		return nil
	}

	for _, in := range req.Inputs {
		if in.Amount == 0 {
			return nil, fpmath.Domainf("swap", "zero input amount for asset %d", in.Index)
		}
		if err := assign(in.Index, RoleInput); err != nil {
			return nil, err
		}
	}

	// All outputs but the last are pinned; the last is solved. A single
	// output is the degenerate case with nothing pinned.
	for i, out := range req.Outputs {
		last := i == len(req.Outputs)-1
		if last {
			if err := assign(out.Index, RoleSolvedOutput); err != nil {
				return nil, err
			}
			plan.solved = out.Index
			continue
		}
		if out.Amount == 0 {
			return nil, fpmath.Domainf("swap", "zero pinned output amount for asset %d", out.Index)
		}
		if err := assign(out.Index, RolePinnedOutput); err != nil {
			return nil, err
		}
	}

	return plan, nil
}
