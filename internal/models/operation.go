package models

import "time"

// OpKind labels a committed pool operation.
type OpKind string

const (
	OpSwap            OpKind = "swap"
	OpAddLiquidity    OpKind = "add_liquidity"
	OpRemoveLiquidity OpKind = "remove_liquidity"
	OpCreatePool      OpKind = "create_pool"
	OpAdmin           OpKind = "admin"
)

// Operation is one committed pool operation, as persisted to history and
// published to live subscribers. Amount vectors are index-aligned with the
// pool's asset list at commit time.
type Operation struct {
	PoolID      string    `json:"pool_id"`
	Kind        OpKind    `json:"kind"`
	Timestamp   time.Time `json:"timestamp"`
	Version     uint64    `json:"version"` // pool version after the commit
	AmountsIn   []uint64  `json:"amounts_in,omitempty"`
	AmountsOut  []uint64  `json:"amounts_out,omitempty"`
	Fees        []uint64  `json:"fees,omitempty"`
	FeeTotal    uint64    `json:"fee_total"`
	LPDelta     int64     `json:"lp_delta,omitempty"` // minted positive, burned negative
	NewLPSupply uint64    `json:"new_lp_supply"`
}
