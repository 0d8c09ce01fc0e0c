//go:build !fuzzdeterminism

package blockchain

// fuzzDeterminismEnabled is compiled to false unless the fuzzdeterminism
// build tag is set, so the degenerate PoW check in pow.go's CheckHeader
// can never be reachable in a production build (spec §4.6, §7).
const fuzzDeterminismEnabled = false
