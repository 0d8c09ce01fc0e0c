package randomx

import "github.com/botcoin-project/botcoin/chaincfg/chainhash"

// EpochLength is the height range (in blocks) over which a RandomX seed
// hash would remain constant under a rotating-seed policy. It is exposed
// as a named network constant per spec §4.2 even though the current
// resolver below ignores it.
const EpochLength = 2048

// EpochLag is the number of blocks a seed-hash rotation would be delayed
// to allow miners to pre-build the next epoch's dataset. Exposed for the
// same reason as EpochLength.
const EpochLag = 64

// SeedSource resolves the RandomX seed hash for a given block height.
// Botcoin keeps this behind a single function pointer so a future
// rotating scheme is a one-function change (spec §4.2).
type SeedSource func(height uint64) chainhash.Hash

// genesisSeed is computed once and reused for every call to
// ConstantSeedSource, since it never depends on height.
var genesisSeed = func() chainhash.Hash {
	return chainhash.HashH([]byte("Botcoin Genesis Seed"))
}()

// ConstantSeedSource is Botcoin's current seed-hash resolver: it returns
// the constant genesis seed SHA256("Botcoin Genesis Seed") for every
// height, regardless of EpochLength/EpochLag. This avoids the
// fork-divergence hazard of a rotating seed, where nodes on different
// forks would compute different seed hashes at epoch boundaries and be
// unable to verify each other's blocks from chain history alone (spec
// §9 Open Question #1).
func ConstantSeedSource(height uint64) chainhash.Hash {
	_ = height
	return genesisSeed
}

// DefaultSeedSource is the seed resolver Botcoin validation and mining
// code uses. It is a package variable, not a constant function call, so
// tests (and a possible future rotating scheme) can substitute a
// different SeedSource without touching every call site.
var DefaultSeedSource SeedSource = ConstantSeedSource

// SeedForHeight resolves the seed hash required to validate or mine the
// block at height, using DefaultSeedSource.
func SeedForHeight(height uint64) chainhash.Hash {
	return DefaultSeedSource(height)
}

// SeedRotationHeight computes the height of the epoch-boundary seed block
// that a rotating-seed policy would use for blockHeight, following the
// RANDOMX_EPOCH_LENGTH/RANDOMX_EPOCH_LAG arithmetic documented in
// original_source/src/crypto/randomx_hash.h. It is not called by
// ConstantSeedSource, but is kept and tested so the rotation math itself
// stays conformant (spec §8 invariant 5) even while disabled.
func SeedRotationHeight(blockHeight uint64) uint64 {
	if blockHeight <= EpochLength+EpochLag {
		return 0
	}
	return ((blockHeight - EpochLag - 1) / EpochLength) * EpochLength
}
