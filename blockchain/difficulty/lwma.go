// Package difficulty implements Botcoin's per-block difficulty retarget:
// a Monero-style linearly-weighted moving average (LWMA) over a sliding
// window of recent (timestamp, per-block difficulty) pairs with symmetric
// outlier trimming, plus the legacy two-week Bitcoin-style retarget kept
// only for backward-compatibility tests (spec §4.5, §9 Open Question #2).
package difficulty

import (
	"math/big"
	"sort"

	"github.com/botcoin-project/botcoin/blockchain/compact"
	"github.com/botcoin-project/botcoin/chaincfg"
	"github.com/botcoin-project/botcoin/log"
)

// ChainIndexEntry is the narrow view of chain-index state the difficulty
// engine needs to walk back from a tip. It mirrors the ActiveTip()
// ChainIndexEntry described in spec §6; the external chain state
// implementation supplies the concrete type.
type ChainIndexEntry interface {
	Height() int32
	BlockTime() int64
	Bits() uint32
	Prev() ChainIndexEntry
}

// one is reused to avoid repeated big.Int allocation.
var one = big.NewInt(1)

// NextWorkRequired computes the next block's compact difficulty target
// given the chain ending at pindexLast, per spec §4.5. pindexLast may be
// nil (an empty chain), in which case params.PowLimitBits is returned.
func NextWorkRequired(pindexLast ChainIndexEntry, params *chaincfg.Params) uint32 {
	powLimit := params.PowLimit
	if powLimit == nil || powLimit.Sign() == 0 {
		powLimit = big.NewInt(1)
	}

	if pindexLast == nil {
		return params.PowLimitBits
	}

	window := int64(params.DifficultyWindow)
	cut := params.DifficultyCut

	// Step 1: walk back collecting up to W blocks, skipping genesis.
	// Per-block difficulty (pow_limit/target) is accumulated as
	// *big.Int: spec §4.5 requires all arithmetic use 256-bit unsigned
	// integers, and pow_limit/target can exceed 128 bits on a network
	// with a permissive pow_limit, so a fixed-width 128-bit accumulator
	// would have to clamp rather than represent the true value.
	var timestamps []int64
	var difficulties []*big.Int
	{
		idx := pindexLast
		var count int64
		for idx != nil && count < window {
			if idx.Height() == 0 {
				break
			}
			timestamps = append(timestamps, idx.BlockTime())

			target, negative, overflow := compact.Decode(idx.Bits())
			if negative || overflow || target.Sign() == 0 {
				target = big.NewInt(1)
			}
			d := new(big.Int).Div(powLimit, target)
			if d.Sign() == 0 {
				d = big.NewInt(1)
			}
			difficulties = append(difficulties, d)

			idx = idx.Prev()
			count++
		}
	}

	length := len(timestamps)
	if length < 2 {
		return params.PowLimitBits
	}

	// Step 2: reverse so index 0 is oldest.
	reverseInt64(timestamps)
	reverseBigInt(difficulties)

	// Step 3: ascending cumulative difficulty.
	cumulative := make([]*big.Int, length)
	cumulative[0] = new(big.Int).Set(difficulties[0])
	for i := 1; i < length; i++ {
		cumulative[i] = new(big.Int).Add(cumulative[i-1], difficulties[i])
	}

	// Step 4: sorted timestamps.
	sortedTimestamps := make([]int64, length)
	copy(sortedTimestamps, timestamps)
	sort.Slice(sortedTimestamps, func(i, j int) bool { return sortedTimestamps[i] < sortedTimestamps[j] })

	// Step 5: trim bounds.
	var begin, end int64
	windowMinusCuts := window - 2*cut
	if int64(length) <= windowMinusCuts {
		begin, end = 0, int64(length)
	} else {
		begin = (int64(length) - windowMinusCuts + 1) / 2
		end = begin + windowMinusCuts
	}
	if begin+2 > end || end > int64(length) {
		return params.PowLimitBits
	}

	// Step 6: time span.
	timeSpan := sortedTimestamps[end-1] - sortedTimestamps[begin]
	if timeSpan < 1 {
		timeSpan = 1
	}

	// Step 7: total work over the trimmed window.
	totalWork := new(big.Int).Sub(cumulative[end-1], cumulative[begin])
	if totalWork.Sign() == 0 {
		return params.PowLimitBits
	}

	// Step 8: next_difficulty = ceil_div(total_work * target_spacing, time_span), min 1.
	numerator := new(big.Int).Mul(totalWork, big.NewInt(params.TargetSpacing))
	denominator := big.NewInt(timeSpan)
	nextDifficulty := ceilDiv(numerator, denominator)
	if nextDifficulty.Sign() <= 0 {
		nextDifficulty = big.NewInt(1)
	}

	// Step 9: next_target = clamp(pow_limit / next_difficulty, 1, pow_limit).
	nextTarget := new(big.Int).Div(powLimit, nextDifficulty)
	if nextTarget.Cmp(powLimit) > 0 {
		nextTarget = powLimit
	}
	if nextTarget.Sign() <= 0 {
		nextTarget = big.NewInt(1)
	}

	result := compact.BigToCompact(nextTarget)
	log.DiffLog.Debugf("LWMA: length=%d cut=[%d,%d) time_span=%d total_work=%s "+
		"next_diff=%s target=%s nBits=0x%08x", length, begin, end, timeSpan,
		totalWork.String(), nextDifficulty.String(), nextTarget.String(), result)
	return result
}

// PermittedTransition always returns true: with per-block LWMA retargets,
// every transition is self-regulated and permitted. It exists purely so
// external validators call a single uniform API regardless of retarget
// scheme (spec §4.5).
func PermittedTransition(prevBits, nextBits uint32) bool {
	_ = prevBits
	_ = nextBits
	return true
}

// CalculateNextWorkLegacy implements the classic Bitcoin two-week
// retarget, with actualTimespan clamped to [targetTimespan/4,
// targetTimespan*4] and the result capped at powLimit. It is kept
// only for backward-compatibility tests; the live per-block LWMA pipeline
// never calls it (spec §4.5, §9 Open Question #2).
func CalculateNextWorkLegacy(prevBits uint32, actualTimespan, targetTimespan int64, powLimit *big.Int) uint32 {
	minTimespan := targetTimespan / 4
	maxTimespan := targetTimespan * 4
	if actualTimespan < minTimespan {
		actualTimespan = minTimespan
	}
	if actualTimespan > maxTimespan {
		actualTimespan = maxTimespan
	}

	bnPowLimit := powLimit
	bnNew, _, _ := compact.Decode(prevBits)
	bnNew.Mul(bnNew, big.NewInt(actualTimespan))
	bnNew.Div(bnNew, big.NewInt(targetTimespan))

	if bnNew.Cmp(bnPowLimit) > 0 {
		bnNew = bnPowLimit
	}
	return compact.BigToCompact(bnNew)
}

func ceilDiv(a, b *big.Int) *big.Int {
	q, r := new(big.Int), new(big.Int)
	q.DivMod(a, b, r)
	if r.Sign() != 0 {
		q.Add(q, one)
	}
	return q
}

func reverseInt64(s []int64) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func reverseBigInt(s []*big.Int) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
