package randomx

import "github.com/botcoin-project/botcoin/chaincfg/chainhash"

// HashLight computes the RandomX digest of data against seed using the
// process-wide light-mode VM (~256 MiB cache only). It is the mode used
// by block validation.
func HashLight(data []byte, seed chainhash.Hash) (chainhash.Hash, error) {
	return GetContext().HashLight(data, seed)
}

// HashFast computes the RandomX digest of data against seed using the
// process-wide fast-mode VM (~2 GiB materialized dataset). It is an order
// of magnitude faster than HashLight at steady state but has a
// multi-minute warm-up the first time a given seed is used. If dataset
// allocation fails, callers should fall back to HashLight.
func HashFast(data []byte, seed chainhash.Hash) (chainhash.Hash, error) {
	return GetContext().HashFast(data, seed)
}
