package blockchain

import (
	"sync"

	"github.com/decred/dcrd/lru"

	"github.com/botcoin-project/botcoin/chaincfg/chainhash"
)

// seenHashesLimit bounds the recently-submitted-block dedup cache; it
// only needs to cover blocks seen since the last tip advance, so a few
// retarget windows' worth is generous.
const seenHashesLimit = 4096

// chainView provides a flat view of a specific branch of the block chain from
// its tip back to the genesis block, indexed by height, together with a cache
// of recently processed block hashes.
//
// For example, assume a block chain with a side chain as depicted below:
//   genesis -> 1 -> 2 -> 3 -> 4  -> 5 ->  6  -> 7  -> 8
//                         \-> 4a -> 5a -> 6a
//
// The chain view for the branch ending in 6a consists of:
//   genesis -> 1 -> 2 -> 3 -> 4a -> 5a -> 6a
type chainView struct {
	mtx   sync.Mutex
	nodes []*blockNode

	seen *lru.Cache
}

// newChainView returns an empty chainView with its dedup cache ready.
func newChainView() *chainView {
	seen := lru.NewCache(seenHashesLimit)
	return &chainView{
		seen: &seen,
	}
}

// HaveSeen reports whether hash has already been recorded by MarkSeen.
func (c *chainView) HaveSeen(hash chainhash.Hash) bool {
	return c.seen.Contains(hash)
}

// MarkSeen records hash as processed, evicting the least recently used
// entry once the cache is full.
func (c *chainView) MarkSeen(hash chainhash.Hash) {
	c.seen.Add(hash)
}

// nodeByHeight returns the block node at the specified height.  Nil will be
// returned if the height does not exist.  This only differs from the exported
// version in that it is up to the caller to ensure the lock is held.
//
// This function MUST be called with the view mutex locked (for reads).
func (c *chainView) nodeByHeight(height int32) *blockNode {
	if height < 0 || height >= int32(len(c.nodes)) {
		return nil
	}

	return c.nodes[height]
}

// NodeByHeight returns the block node at the specified height.  Nil will be
// returned if the height does not exist.
//
// This function is safe for concurrent access.
func (c *chainView) NodeByHeight(height int32) *blockNode {
	c.mtx.Lock()
	node := c.nodeByHeight(height)
	c.mtx.Unlock()
	return node
}

// Tip returns the view's active tip, or nil for an empty view.
func (c *chainView) Tip() *blockNode {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	if len(c.nodes) == 0 {
		return nil
	}
	return c.nodes[len(c.nodes)-1]
}

// extend appends node as the new tip. Callers are responsible for
// ensuring node.height equals the view's current length, keeping the
// height-indexed slice dense.
func (c *chainView) extend(node *blockNode) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.nodes = append(c.nodes, node)
}
