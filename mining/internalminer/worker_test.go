package internalminer

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/botcoin-project/botcoin/chaincfg/chainhash"
)

// TestNonceStridePartitionsFullRange checks spec §8 invariant 7 on a
// small surrogate range: for N workers, each worker's stride sequence hits
// exactly every Nth nonce starting at its own index, so the union of all
// workers' sequences covers every nonce exactly once with no overlap.
func TestNonceStridePartitionsFullRange(t *testing.T) {
	const numThreads = 4
	const ceiling = uint32(4000) // surrogate for 2^32; only multiples of numThreads matter

	seen := make(map[uint32]int)
	for worker := 0; worker < numThreads; worker++ {
		stride := uint32(numThreads)
		for nonce := uint32(worker); nonce < ceiling; nonce += stride {
			seen[nonce]++
			require.Equal(t, worker, int(nonce%uint32(numThreads)),
				"nonce %d produced by worker %d must satisfy nonce mod N == worker", nonce, worker)
		}
	}

	for nonce := uint32(0); nonce < ceiling; nonce++ {
		require.Equal(t, 1, seen[nonce], "nonce %d must be reached by exactly one worker", nonce)
	}
}

// TestNonceStrideSingleWorkerWalksEveryNonce covers the N=1 degenerate
// case: stride collapses to 1, so the single worker's sequence is the
// identity sequence over the range checked.
func TestNonceStrideSingleWorkerWalksEveryNonce(t *testing.T) {
	const numThreads = 1
	const ceiling = uint32(1000)

	stride := uint32(numThreads)
	nonce := uint32(0)
	for i := uint32(0); i < ceiling; i++ {
		require.Equal(t, i, nonce)
		nonce += stride
	}
}

// meetsTarget reverses digest before interpreting it as big-endian, so a
// digest whose reversed form equals 0x1000 has its high-order byte (0x10)
// stored at digest[1] and its zero low-order byte at digest[0].
func TestMeetsTargetBoundaryEqualPasses(t *testing.T) {
	target := big.NewInt(0x1000)
	digest := chainhash.Hash{}
	digest[1] = 0x10

	require.True(t, meetsTarget(digest, target))
}

func TestMeetsTargetOneAboveFails(t *testing.T) {
	target := big.NewInt(0x1000)
	digest := chainhash.Hash{}
	digest[0] = 0x01
	digest[1] = 0x10 // reversed value 0x1001, one above target

	require.False(t, meetsTarget(digest, target))
}

func TestMeetsTargetZeroDigestAlwaysPasses(t *testing.T) {
	target := big.NewInt(1)
	digest := chainhash.Hash{}
	require.True(t, meetsTarget(digest, target))
}
