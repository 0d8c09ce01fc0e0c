// Command findgenesis grinds a genesis-block nonce that satisfies a
// network's PowLimitBits against chaincfg.GenesisSeedHash(), so that
// chaincfg.Params.GenesisNonce no longer needs to ship as a placeholder
// (spec §10.1).
//
// It mirrors the single-threaded RandomX hashing loop internalminer's
// worker uses, but grinds a fixed header rather than waiting on a
// contextSlot, since there is no chain or tip to wait on yet.
package main

import (
	"flag"
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/tmthrgd/go-hex"

	"github.com/botcoin-project/botcoin/blockchain/compact"
	"github.com/botcoin-project/botcoin/chaincfg"
	"github.com/botcoin-project/botcoin/randomx"
	"github.com/botcoin-project/botcoin/wire"
)

func main() {
	network := flag.String("net", "regtest", "network to grind a genesis nonce for: mainnet, testnet, or regtest")
	maxAttempts := flag.Uint64("maxattempts", 0, "stop after this many attempts (0 = unbounded)")
	flag.Parse()

	params, err := paramsByName(*network)
	if err != nil {
		fmt.Fprintln(os.Stderr, "findgenesis:", err)
		os.Exit(1)
	}

	target, negative, overflow := compact.Decode(params.PowLimitBits)
	if negative || overflow || target.Sign() == 0 {
		fmt.Fprintln(os.Stderr, "findgenesis: network pow limit bits decode to an invalid target")
		os.Exit(1)
	}

	seed := chaincfg.GenesisSeedHash()
	vm := &randomx.MiningVM{}
	if err := vm.Initialize(seed, false); err != nil {
		fmt.Fprintln(os.Stderr, "findgenesis: randomx init failed:", err)
		os.Exit(1)
	}
	defer vm.Close()

	header := params.GenesisHeader()
	serialized := header.Serialize()

	start := time.Now()
	var nonce uint32
	var attempts uint64
	for {
		wire.PutNonce(serialized, nonce)
		digest, err := vm.Hash(serialized)
		if err != nil {
			fmt.Fprintln(os.Stderr, "findgenesis: hash failed:", err)
			os.Exit(1)
		}
		attempts++

		if meetsTarget(digest[:], target) {
			fmt.Printf("network:  %s\n", params.Name)
			fmt.Printf("seed:     %s\n", hex.EncodeToString(seed[:]))
			fmt.Printf("nonce:    %d\n", nonce)
			fmt.Printf("hash:     %s\n", hex.EncodeToString(digest[:]))
			fmt.Printf("attempts: %d\n", attempts)
			fmt.Printf("elapsed:  %s\n", time.Since(start))
			return
		}

		if *maxAttempts != 0 && attempts >= *maxAttempts {
			fmt.Fprintf(os.Stderr, "findgenesis: exhausted %d attempts without finding a valid nonce\n", attempts)
			os.Exit(1)
		}

		nonce++
		if nonce == 0 {
			fmt.Fprintln(os.Stderr, "findgenesis: exhausted the entire 32-bit nonce space")
			os.Exit(1)
		}
	}
}

func paramsByName(name string) (*chaincfg.Params, error) {
	switch name {
	case "mainnet":
		return &chaincfg.MainNetParams, nil
	case "testnet":
		return &chaincfg.TestNetParams, nil
	case "regtest":
		return &chaincfg.RegressionNetParams, nil
	default:
		return nil, fmt.Errorf("unknown network %q", name)
	}
}

// meetsTarget reports whether digest, interpreted as a little-endian
// 256-bit integer per spec §6, is at or below target.
func meetsTarget(digest []byte, target *big.Int) bool {
	reversed := make([]byte, len(digest))
	for i, b := range digest {
		reversed[len(digest)-1-i] = b
	}
	return new(big.Int).SetBytes(reversed).Cmp(target) <= 0
}
