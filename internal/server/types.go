package server

import (
	"github.com/aman-zulfiqar/anyswap-engine/internal/pool"
)

// ErrorResponse represents a standardized error response format
type ErrorResponse struct {
	Error   string `json:"error"`             // Human-readable error message
	Code    int    `json:"code"`              // HTTP status code
	Details any    `json:"details,omitempty"` // Additional error details (dev mode only)
}

// HealthResponse represents the health check response
type HealthResponse struct {
	OK bool `json:"ok"` // Service health status
}

// AssetSpec describes one asset in a pool creation request.
type AssetSpec struct {
	Mint   string `json:"mint"`             // base58 SPL mint address
	Symbol string `json:"symbol,omitempty"` // display symbol
	Weight uint64 `json:"weight"`           // trading weight, 9-decimal scale
}

// PoolCreateRequest creates a new unseeded pool. Fee defaults to 3/10000
// when both fields are zero.
type PoolCreateRequest struct {
	Assets         []AssetSpec `json:"assets"`
	FeeNumerator   uint64      `json:"fee_numerator,omitempty"`
	FeeDenominator uint64      `json:"fee_denominator,omitempty"`
}

// SwapExecuteRequest executes a multi-asset swap against a pool. The last
// output is solved from the invariant; its amount, if set, is a minimum.
type SwapExecuteRequest struct {
	Inputs  []pool.AssetIn  `json:"inputs"`
	Outputs []pool.AssetOut `json:"outputs"`
}

// QuoteRequest prices a swap without executing it.
type QuoteRequest struct {
	Inputs      []pool.AssetIn  `json:"inputs"`
	Outputs     []pool.AssetOut `json:"outputs"`
	SlippageBps *uint16         `json:"slippage_bps,omitempty"`
}

// LiquidityAddRequest deposits amounts across every pooled asset,
// index-aligned with the pool's asset list.
type LiquidityAddRequest struct {
	AmountsIn []uint64 `json:"amounts_in"`
}

// LiquidityRemoveRequest burns LP units for a proportional payout.
type LiquidityRemoveRequest struct {
	LPToBurn uint64 `json:"lp_to_burn"`
}

// AssetAddRequest appends a new asset to a pool.
type AssetAddRequest struct {
	Mint           string `json:"mint"`
	Symbol         string `json:"symbol,omitempty"`
	Weight         uint64 `json:"weight"`
	InitialReserve uint64 `json:"initial_reserve,omitempty"`
}

// FeeUpdateRequest replaces a pool's fee rate.
type FeeUpdateRequest struct {
	FeeNumerator   uint64 `json:"fee_numerator"`
	FeeDenominator uint64 `json:"fee_denominator"`
}

// WeightUpdateRequest replaces one asset's trading weight.
type WeightUpdateRequest struct {
	Weight uint64 `json:"weight"`
}

// SwapResponse is the committed result of a swap.
type SwapResponse struct {
	Pool       *pool.Pool `json:"pool"`
	AmountsOut []uint64   `json:"amounts_out"`
	Fees       []uint64   `json:"fees"`
	FeeTotal   uint64     `json:"fee_total"`
}

// LiquidityAddResponse is the committed result of a deposit.
type LiquidityAddResponse struct {
	Pool          *pool.Pool `json:"pool"`
	LPMinted      uint64     `json:"lp_minted"`
	Fees          []uint64   `json:"fees"`
	RatioWarnings []int      `json:"ratio_warnings,omitempty"`
}

// LiquidityRemoveResponse is the committed result of a burn.
type LiquidityRemoveResponse struct {
	Pool       *pool.Pool `json:"pool"`
	AmountsOut []uint64   `json:"amounts_out"`
	Fees       []uint64   `json:"fees"`
}
