package wire

import "github.com/botcoin-project/botcoin/chaincfg/chainhash"

// MsgBlock represents a bitcoin block: its header and transactions.  It
// has no encode/decode methods of its own, so it does not implement the
// Message interface.
type MsgBlock struct {
	Header       BlockHeader
	Transactions []*MsgTx
}

// BlockHash computes the block identifier hash for this block.
func (msg *MsgBlock) BlockHash() chainhash.Hash {
	return msg.Header.BlockHash()
}
