package wire

// BitcoinNet represents which bitcoin network a message belongs to. It
// backs chaincfg.Params.Net, the magic value conformance tests check
// against (spec §6).
type BitcoinNet uint32
