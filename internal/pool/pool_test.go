package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIDRoundTrip(t *testing.T) {
	id, err := NewID()
	require.NoError(t, err)
	assert.NoError(t, ValidateID(id))

	id2, err := NewID()
	require.NoError(t, err)
	assert.NotEqual(t, id, id2)
}

func TestValidateIDRejects(t *testing.T) {
	assert.Error(t, ValidateID(""))
	assert.Error(t, ValidateID("not+base58!"))
	assert.Error(t, ValidateID("abc"), "wrong decoded length")
}

func TestPoolValidate(t *testing.T) {
	id, err := NewID()
	require.NoError(t, err)

	_, err = New(id, nil, 3, 10000)
	assert.Error(t, err, "no assets")

	_, err = New(id, []Asset{{Mint: testMint(0), Weight: 0}}, 3, 10000)
	assert.Error(t, err, "zero weight")

	_, err = New(id, []Asset{
		{Mint: testMint(0), Weight: 10},
		{Mint: testMint(0), Weight: 10},
	}, 3, 10000)
	assert.Error(t, err, "duplicate mint")

	_, err = New(id, []Asset{{Mint: testMint(0), Weight: 10}}, 10000, 10000)
	assert.Error(t, err, "fee at or above 100%")

	_, err = New(id, []Asset{{Mint: testMint(0), Weight: 10}}, 3, 0)
	assert.Error(t, err, "zero fee denominator")

	p, err := New(id, []Asset{{Mint: testMint(0), Weight: 10}}, 3, 10000)
	require.NoError(t, err)
	assert.NoError(t, p.Validate())
}

func TestCloneIsDeep(t *testing.T) {
	p := testPool(t, []uint64{100, 200}, []uint64{10, 10}, 50, 3, 10000)
	cp := p.Clone()
	cp.Assets[0].Reserve = 999
	assert.Equal(t, uint64(100), p.Assets[0].Reserve)
}

func TestAssetIndex(t *testing.T) {
	p := testPool(t, []uint64{100, 200}, []uint64{10, 10}, 0, 3, 10000)
	assert.Equal(t, 0, p.AssetIndex(testMint(0)))
	assert.Equal(t, 1, p.AssetIndex(testMint(1)))
	assert.Equal(t, -1, p.AssetIndex(testMint(9)))
}

func TestAddAsset(t *testing.T) {
	p := testPool(t, []uint64{100, 200}, []uint64{10, 10}, 0, 3, 10000)

	next, err := p.AddAsset(testMint(5), "NEW", 20, 0)
	require.NoError(t, err)
	assert.Len(t, next.Assets, 3)
	assert.Len(t, p.Assets, 2, "original untouched")

	_, err = p.AddAsset(testMint(0), "DUP", 20, 0)
	assert.Error(t, err, "duplicate mint")

	_, err = p.AddAsset(testMint(6), "ZW", 0, 0)
	assert.Error(t, err, "zero weight")
}

func TestRemoveAsset(t *testing.T) {
	p := testPool(t, []uint64{100, 0}, []uint64{10, 10}, 0, 3, 10000)

	next, err := p.RemoveAsset(1)
	require.NoError(t, err)
	assert.Len(t, next.Assets, 1)

	_, err = p.RemoveAsset(0)
	assert.Error(t, err, "non-zero reserve")

	_, err = next.RemoveAsset(0)
	assert.Error(t, err, "last asset")

	_, err = p.RemoveAsset(5)
	assert.Error(t, err, "out of range")
}

func TestSetFeeAndWeight(t *testing.T) {
	p := testPool(t, []uint64{100, 200}, []uint64{10, 10}, 0, 3, 10000)

	next, err := p.SetFee(30, 10000)
	require.NoError(t, err)
	assert.Equal(t, uint64(30), next.FeeNumerator)
	assert.Equal(t, uint64(3), p.FeeNumerator)

	_, err = p.SetFee(10000, 10000)
	assert.Error(t, err)

	next, err = p.SetWeight(1, 40)
	require.NoError(t, err)
	assert.Equal(t, uint64(40), next.Assets[1].Weight)
	assert.Equal(t, uint64(10), p.Assets[1].Weight)

	_, err = p.SetWeight(1, 0)
	assert.Error(t, err)
	_, err = p.SetWeight(9, 10)
	assert.Error(t, err)
}
