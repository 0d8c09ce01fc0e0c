// Package blockchain carries Botcoin's proof-of-work validator (C6): it
// serializes a header, resolves its RandomX seed, computes the digest,
// and compares against the decoded compact target. Everything else a
// full node needs (transaction validation, script checks, reorg logic)
// is an external collaborator outside this spec's scope (spec §1).
package blockchain

import (
	"errors"
	"math/big"

	"github.com/botcoin-project/botcoin/blockchain/compact"
	"github.com/botcoin-project/botcoin/blockchain/difficulty"
	"github.com/botcoin-project/botcoin/chaincfg"
	"github.com/botcoin-project/botcoin/randomx"
	"github.com/botcoin-project/botcoin/wire"
)

// ErrInvalidHeader indicates the decoded compact target is negative,
// zero, overflow-flagged, or exceeds the network's pow limit.
var ErrInvalidHeader = errors.New("blockchain: invalid header")

// DeriveTarget decodes bits into its 256-bit target, rejecting negative,
// zero, overflowing, or above-powLimit encodings (spec §3 invariants,
// §8 invariant 4).
func DeriveTarget(bits uint32, params *chaincfg.Params) (*big.Int, error) {
	target, negative, overflow := compact.Decode(bits)
	if negative || overflow || target.Sign() == 0 {
		return nil, ErrInvalidHeader
	}
	if target.Cmp(params.PowLimit) > 0 {
		return nil, ErrInvalidHeader
	}
	return target, nil
}

// CheckHeader implements C6: it resolves the RandomX seed for
// prevHeight+1 (prevHeight is -1 for genesis), serializes header to its
// canonical 80-byte form, computes the RandomX digest in light mode, and
// compares it against the header's decoded compact target.
//
// It returns (false, nil) on an ordinary PoW miss (PowNotMet, non-fatal
// for miners, block-rejecting for validators) and (false, err) when the
// header itself is malformed (ErrInvalidHeader) or hashing failed
// (randomx.ErrResourceUnavailable).
func CheckHeader(header *wire.BlockHeader, prevHeight int32, params *chaincfg.Params) (bool, error) {
	if fuzzDeterminismEnabled {
		serialized := header.Serialize()
		return serialized[wire.BlockHeaderLen-1]&0x80 == 0, nil
	}

	seed := randomx.SeedForHeight(uint64(prevHeight + 1))

	serialized := header.Serialize()
	digest, err := randomx.HashLight(serialized, seed)
	if err != nil {
		return false, err
	}

	target, err := DeriveTarget(header.Bits, params)
	if err != nil {
		return false, err
	}

	digestInt := new(big.Int).SetBytes(reverseBytes(digest[:]))
	return digestInt.Cmp(target) <= 0, nil
}

// PermittedDifficultyTransition delegates to the difficulty engine's
// uniform API (spec §4.5); kept here so validation code calling into
// "the PoW package" for everything doesn't also need to import
// blockchain/difficulty directly.
func PermittedDifficultyTransition(prevBits, nextBits uint32) bool {
	return difficulty.PermittedTransition(prevBits, nextBits)
}

// reverseBytes returns a reversed copy of b, used to turn a RandomX
// digest's little-endian in-memory byte order into the big-endian order
// math/big.Int.SetBytes expects.
func reverseBytes(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}
