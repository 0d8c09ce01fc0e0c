package randomx

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/botcoin-project/botcoin/chaincfg"
	"github.com/botcoin-project/botcoin/chaincfg/chainhash"
)

func TestGenesisSeedHashMatchesConstantSeedSource(t *testing.T) {
	want := chaincfg.GenesisSeedHash()
	require.Equal(t, want, ConstantSeedSource(0))
	require.Equal(t, want, ConstantSeedSource(1_000_000))
}

func TestSeedForHeightIsConstantAcrossHeights(t *testing.T) {
	h0 := SeedForHeight(0)
	h1 := SeedForHeight(EpochLength * 3)
	require.Equal(t, h0, h1, "current seed policy never rotates regardless of height")
}

func TestSeedForHeightUsesDefaultSeedSource(t *testing.T) {
	saved := DefaultSeedSource
	defer func() { DefaultSeedSource = saved }()

	var calledWith uint64
	stub := chainhash.HashH([]byte("test seed override"))
	DefaultSeedSource = func(height uint64) chainhash.Hash {
		calledWith = height
		return stub
	}

	got := SeedForHeight(42)
	require.Equal(t, stub, got)
	require.Equal(t, uint64(42), calledWith)
}

func TestSeedRotationHeightBeforeFirstEpoch(t *testing.T) {
	require.Equal(t, uint64(0), SeedRotationHeight(0))
	require.Equal(t, uint64(0), SeedRotationHeight(EpochLength+EpochLag))
}

func TestSeedRotationHeightAlignsToEpochBoundary(t *testing.T) {
	height := uint64(EpochLength*3 + EpochLag + 5)
	got := SeedRotationHeight(height)
	require.Equal(t, uint64(0), got%EpochLength, "rotation height must land on an epoch boundary")
	require.LessOrEqual(t, got, height)
}
