package pool

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"

	"github.com/aman-zulfiqar/anyswap-engine/internal/fpmath"
)

// MaxAssets caps the number of assets a single pool can hold.
const MaxAssets = 1024

// WeightScale is the conventional fixed-point scale for asset weights
// (9 decimals). Only relative weight magnitude affects pricing, so the
// scale itself never enters the math.
const WeightScale = 1_000_000_000

// Default swap/liquidity fee: 3/10000 = 0.03%.
const (
	DefaultFeeNumerator   = 3
	DefaultFeeDenominator = 10000
)

const poolIDBytes = 16

// Asset is one pooled token: its SPL mint, trading weight and current
// reserve (raw token units).
type Asset struct {
	Mint    solana.PublicKey `json:"mint"`
	Symbol  string           `json:"symbol,omitempty"`
	Weight  uint64           `json:"weight"`
	Reserve uint64           `json:"reserve"`
}

// Pool is the aggregate the engine computes over. All engine operations are
// pure: they read a Pool and return new reserves/amounts without mutating
// it; the caller commits the post-state through the store, which serializes
// concurrent writers per pool.
type Pool struct {
	ID             string    `json:"id"`
	Assets         []Asset   `json:"assets"`
	LPSupply       uint64    `json:"lp_supply"`
	FeeNumerator   uint64    `json:"fee_numerator"`
	FeeDenominator uint64    `json:"fee_denominator"`
	Version        uint64    `json:"version"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// New creates an unseeded pool (zero reserves, zero LP supply) with the
// given assets and fee rate. The first liquidity add bootstraps it.
func New(id string, assets []Asset, feeNumerator, feeDenominator uint64) (*Pool, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	p := &Pool{
		ID:             id,
		Assets:         assets,
		FeeNumerator:   feeNumerator,
		FeeDenominator: feeDenominator,
		UpdatedAt:      time.Now().UTC(),
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// NewID generates a random base58 pool identifier.
func NewID() (string, error) {
	buf := make([]byte, poolIDBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate pool id: %w", err)
	}
	return base58.Encode(buf), nil
}

// ValidateID checks that id is a well-formed base58 pool identifier.
func ValidateID(id string) error {
	raw, err := base58.Decode(id)
	if err != nil {
		return fpmath.Domainf("pool", "invalid pool id: %v", err)
	}
	if len(raw) != poolIDBytes {
		return fpmath.Domainf("pool", "invalid pool id length %d", len(raw))
	}
	return nil
}

// Validate checks the structural invariants of the pool state.
func (p *Pool) Validate() error {
	if len(p.Assets) == 0 {
		return fpmath.Domainf("pool", "pool has no assets")
	}
	if len(p.Assets) > MaxAssets {
		return fpmath.Domainf("pool", "pool exceeds %d assets", MaxAssets)
	}
	if p.FeeDenominator == 0 || p.FeeNumerator >= p.FeeDenominator {
		return fpmath.Domainf("pool", "invalid fee rate %d/%d", p.FeeNumerator, p.FeeDenominator)
	}
	seen := make(map[solana.PublicKey]struct{}, len(p.Assets))
	for i, a := range p.Assets {
		if a.Weight == 0 {
			return fpmath.Domainf("pool", "asset %d has zero weight", i)
		}
		if _, dup := seen[a.Mint]; dup {
			return fpmath.Domainf("pool", "duplicate mint %s", a.Mint)
		}
		seen[a.Mint] = struct{}{}
	}
	return nil
}

// Clone returns a deep copy. Commit flows mutate the clone, never the
// original, so a failed commit leaves the in-memory pre-state intact.
func (p *Pool) Clone() *Pool {
	cp := *p
	cp.Assets = make([]Asset, len(p.Assets))
	copy(cp.Assets, p.Assets)
	return &cp
}

// Reserves returns the reserve vector, index-aligned with Assets.
func (p *Pool) Reserves() []uint64 {
	out := make([]uint64, len(p.Assets))
	for i, a := range p.Assets {
		out[i] = a.Reserve
	}
	return out
}

// Weights returns the weight vector, index-aligned with Assets.
func (p *Pool) Weights() []uint64 {
	out := make([]uint64, len(p.Assets))
	for i, a := range p.Assets {
		out[i] = a.Weight
	}
	return out
}

// AssetIndex returns the index of the asset with the given mint, or -1.
func (p *Pool) AssetIndex(mint solana.PublicKey) int {
	for i, a := range p.Assets {
		if a.Mint == mint {
			return i
		}
	}
	return -1
}

// withState returns a clone carrying the given post-operation reserves and
// LP supply. Reserve vector length must match pool arity.
func (p *Pool) withState(reserves []uint64, lpSupply uint64) *Pool {
	cp := p.Clone()
	for i := range cp.Assets {
		cp.Assets[i].Reserve = reserves[i]
	}
	cp.LPSupply = lpSupply
	cp.UpdatedAt = time.Now().UTC()
	return cp
}
