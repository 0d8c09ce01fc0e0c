// Package chaincfg defines chain-wide consensus parameters for Botcoin,
// extending the bare chainhash utilities carried over from the ancestor
// codebase with the RandomX/LWMA network parameter table that the PoW and
// difficulty packages key off of.
package chaincfg

import (
	"crypto/sha256"
	"math/big"

	"github.com/botcoin-project/botcoin/blockchain/compact"
	"github.com/botcoin-project/botcoin/chaincfg/chainhash"
	"github.com/botcoin-project/botcoin/wire"
)

// GenesisSeedPreimage is the ASCII preimage hashed to produce Botcoin's
// constant RandomX genesis seed hash, per spec: SHA256(ASCII("Botcoin
// Genesis Seed")), hashed as raw bytes with no framing.
const GenesisSeedPreimage = "Botcoin Genesis Seed"

// GenesisSeedHash returns SHA256("Botcoin Genesis Seed"), the constant
// RandomX seed hash used at every height under the current (non-rotating)
// seed policy. See randomx.SeedForHeight.
func GenesisSeedHash() chainhash.Hash {
	return sha256.Sum256([]byte(GenesisSeedPreimage))
}

// Params defines a Botcoin network by its consensus parameters.
type Params struct {
	// Name defines a human-readable identifier for the network.
	Name string

	// Net defines the magic bytes used to identify the network.
	Net wire.BitcoinNet

	// DefaultPort defines the default peer-to-peer port for the network.
	DefaultPort string

	// PowLimit is the highest (easiest) proof-of-work target a block can
	// have for the network, as a 256-bit unsigned value.
	PowLimit *big.Int

	// PowLimitBits is the compact-form encoding of PowLimit.
	PowLimitBits uint32

	// TargetSpacing is the desired spacing, in seconds, between blocks.
	TargetSpacing int64

	// DifficultyWindow is the number of trailing blocks (W) the LWMA
	// engine considers.
	DifficultyWindow int64

	// DifficultyCut is the number of outlier timestamps (C) trimmed from
	// each end of the sorted window.
	DifficultyCut int64

	// TargetTimespan parameterizes the legacy two-week retarget path, kept for backward-compatibility tests only
	// (spec §4.5, §9 Open Question #2); never invoked by the live
	// per-block LWMA pipeline.
	TargetTimespan int64

	// RandomXEpochLength and RandomXEpochLag are the seed-rotation
	// constants. They are exposed as named network parameters even
	// though the current SeedForHeight resolver ignores them and always
	// returns the constant genesis seed (spec §4.2, §9 Open Question #1).
	RandomXEpochLength uint64
	RandomXEpochLag    uint64

	// GenesisTimestamp and GenesisNonce fix the network's genesis
	// header. GenesisNonce is a placeholder (0) until cmd/findgenesis
	// grinds a value that actually satisfies PowLimitBits against
	// GenesisSeedHash(); mainnet cannot launch with the placeholder.
	GenesisTimestamp uint32
	GenesisNonce     uint32
}

// GenesisHeader returns the network's genesis block header: version 1,
// an all-zero previous-block hash and merkle root, and the network's
// fixed timestamp/bits/nonce.
func (p *Params) GenesisHeader() wire.BlockHeader {
	return wire.BlockHeader{
		Version:    1,
		PrevBlock:  chainhash.Hash{},
		MerkleRoot: chainhash.Hash{},
		Timestamp:  p.GenesisTimestamp,
		Bits:       p.PowLimitBits,
		Nonce:      p.GenesisNonce,
	}
}

func newParams(name string, net wire.BitcoinNet, port string, powLimitBits uint32,
	targetSpacing, window, cut, targetTimespan int64) Params {

	return Params{
		Name:               name,
		Net:                net,
		DefaultPort:        port,
		PowLimit:           compact.CompactToBig(powLimitBits),
		PowLimitBits:       powLimitBits,
		TargetSpacing:      targetSpacing,
		DifficultyWindow:   window,
		DifficultyCut:      cut,
		TargetTimespan:     targetTimespan,
		RandomXEpochLength: 2048,
		RandomXEpochLag:    64,
		GenesisTimestamp:   1735689600,
		GenesisNonce:       0,
	}
}

// Network magic bytes and default P2P ports, taken verbatim from the
// reference node's chainparams table (pchMessageStart/nDefaultPort) so
// this table matches the surrounding system rather than inventing its
// own values (spec §6).
const (
	mainnetMagic  wire.BitcoinNet = 0xb07c010e
	testnetMagic  wire.BitcoinNet = 0xb07c7e57
	regtestMagic  wire.BitcoinNet = 0xb07c0000
	mainnetPort                   = "8433"
	testnetPort                   = "18433"
	regtestPort                   = "18544"
)

// MainNetParams defines the parameters for the main Botcoin network.
var MainNetParams = newParams("mainnet", mainnetMagic, mainnetPort, 0x207fffff, 120, 720, 60, 14*24*60*60)

// TestNetParams defines the parameters for the Botcoin test network. It
// shares mainnet's LWMA tuning but uses a distinct network magic/port so
// test nodes never accidentally cross-talk with mainnet peers.
var TestNetParams = newParams("testnet", testnetMagic, testnetPort, 0x207fffff, 120, 720, 60, 14*24*60*60)

// RegressionNetParams defines the parameters for the Botcoin regression
// test network, used by functional tests that need deterministic,
// near-instant retargeting. Its pow limit is intentionally permissive.
var RegressionNetParams = newParams("regtest", regtestMagic, regtestPort, 0x207fffff, 120, 720, 60, 14*24*60*60)
