package pool

import (
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/aman-zulfiqar/anyswap-engine/internal/fpmath"
)

// Governance operations. These run between trading operations, never inside
// one: a swap sees a frozen weight vector, and weight changes do not
// recompute any historical invariant.

// AddAsset returns a clone with a new asset appended. The asset starts at
// the given reserve (usually zero; a follow-up deposit funds it).
func (p *Pool) AddAsset(mint solana.PublicKey, symbol string, weight, initialReserve uint64) (*Pool, error) {
	if len(p.Assets) >= MaxAssets {
		return nil, fpmath.Domainf("add_asset", "pool already holds %d assets", MaxAssets)
	}
	if weight == 0 {
		return nil, fpmath.Domainf("add_asset", "zero weight")
	}
	if p.AssetIndex(mint) >= 0 {
		return nil, fpmath.Domainf("add_asset", "mint %s already pooled", mint)
	}

	cp := p.Clone()
	cp.Assets = append(cp.Assets, Asset{
		Mint:    mint,
		Symbol:  symbol,
		Weight:  weight,
		Reserve: initialReserve,
	})
	cp.UpdatedAt = time.Now().UTC()
	return cp, nil
}

// RemoveAsset returns a clone with the asset at index removed. Only an
// empty reserve can be removed; anything else would orphan depositor value.
func (p *Pool) RemoveAsset(index int) (*Pool, error) {
	if index < 0 || index >= len(p.Assets) {
		return nil, fpmath.Domainf("remove_asset", "asset index %d out of range", index)
	}
	if p.Assets[index].Reserve != 0 {
		return nil, fpmath.Domainf("remove_asset", "asset %d still holds reserve %d", index, p.Assets[index].Reserve)
	}
	if len(p.Assets) == 1 {
		return nil, fpmath.Domainf("remove_asset", "cannot remove the last asset")
	}

	cp := p.Clone()
	cp.Assets = append(cp.Assets[:index], cp.Assets[index+1:]...)
	cp.UpdatedAt = time.Now().UTC()
	return cp, nil
}

// SetFee returns a clone with the fee rate replaced.
func (p *Pool) SetFee(numerator, denominator uint64) (*Pool, error) {
	if denominator == 0 || numerator >= denominator {
		return nil, fpmath.Domainf("set_fee", "invalid fee rate %d/%d", numerator, denominator)
	}
	cp := p.Clone()
	cp.FeeNumerator = numerator
	cp.FeeDenominator = denominator
	cp.UpdatedAt = time.Now().UTC()
	return cp, nil
}

// SetWeight returns a clone with one asset's weight replaced.
func (p *Pool) SetWeight(index int, weight uint64) (*Pool, error) {
	if index < 0 || index >= len(p.Assets) {
		return nil, fpmath.Domainf("set_weight", "asset index %d out of range", index)
	}
	if weight == 0 {
		return nil, fpmath.Domainf("set_weight", "zero weight")
	}
	cp := p.Clone()
	cp.Assets[index].Weight = weight
	cp.UpdatedAt = time.Now().UTC()
	return cp, nil
}
