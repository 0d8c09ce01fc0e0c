package blockchain

import (
	"github.com/botcoin-project/botcoin/blockchain/difficulty"
	"github.com/botcoin-project/botcoin/chaincfg/chainhash"
	"github.com/botcoin-project/botcoin/wire"
)

// errNotInMainChain signals that a block hash or height being queried does
// not exist in the current best chain.
type errNotInMainChain string

func (e errNotInMainChain) Error() string {
	return string(e)
}

// blockNode represents a block within the in-memory best chain. It holds
// just enough of the header to drive proof-of-work validation and LWMA
// retargeting without pulling in a full block: the timestamp, bits, and
// nonce needed to recompute a header, plus the chain linkage.
//
// blockNode implements both difficulty.ChainIndexEntry and
// internalminer.ChainTip so the same in-memory index backs header
// validation, retargeting, and the internal miner's tip tracking.
type blockNode struct {
	parent *blockNode

	hash   chainhash.Hash
	height int32

	version    int32
	merkleRoot chainhash.Hash
	timestamp  int64
	bits       uint32
	nonce      uint32
}

// newBlockNode returns a blockNode populated from header, linked to
// parent. parent may be nil only for the genesis node.
func newBlockNode(header *wire.BlockHeader, parent *blockNode) *blockNode {
	node := &blockNode{
		parent:     parent,
		hash:       header.BlockHash(),
		version:    header.Version,
		merkleRoot: header.MerkleRoot,
		timestamp:  int64(header.Timestamp),
		bits:       header.Bits,
		nonce:      header.Nonce,
	}
	if parent != nil {
		node.height = parent.height + 1
	}
	return node
}

// Header reconstructs the wire.BlockHeader this node was built from.
func (n *blockNode) Header() wire.BlockHeader {
	prevHash := chainhash.Hash{}
	if n.parent != nil {
		prevHash = n.parent.hash
	}
	return wire.BlockHeader{
		Version:    n.version,
		PrevBlock:  prevHash,
		MerkleRoot: n.merkleRoot,
		Timestamp:  uint32(n.timestamp),
		Bits:       n.bits,
		Nonce:      n.nonce,
	}
}

// Height implements difficulty.ChainIndexEntry.
func (n *blockNode) Height() int32 { return n.height }

// BlockTime implements difficulty.ChainIndexEntry.
func (n *blockNode) BlockTime() int64 { return n.timestamp }

// Bits implements difficulty.ChainIndexEntry.
func (n *blockNode) Bits() uint32 { return n.bits }

// Prev implements difficulty.ChainIndexEntry. It returns a true nil
// interface (not a typed nil *blockNode) at the genesis node, so callers
// comparing the result against nil get the answer they expect.
func (n *blockNode) Prev() difficulty.ChainIndexEntry {
	if n == nil || n.parent == nil {
		return nil
	}
	return n.parent
}

// BlockHash satisfies internalminer.ChainTip.
func (n *blockNode) BlockHash() chainhash.Hash {
	return n.hash
}
