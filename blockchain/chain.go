package blockchain

import (
	"fmt"
	"sync"

	"github.com/botcoin-project/botcoin/acbcutil"
	"github.com/botcoin-project/botcoin/blockchain/difficulty"
	"github.com/botcoin-project/botcoin/chaincfg"
	"github.com/botcoin-project/botcoin/chaincfg/chainhash"
	"github.com/botcoin-project/botcoin/log"
	"github.com/botcoin-project/botcoin/mining/internalminer"
	"github.com/botcoin-project/botcoin/wire"
)

// BlockChain provides functions for working with the Botcoin block chain.
// It tracks the best chain in memory as a linked list of blockNodes and
// validates incoming headers against C5's LWMA retarget and C6's RandomX
// proof-of-work check. Full transaction/script validation, orphan
// handling, and persistent storage are external collaborators outside
// this spec's scope (spec §1 Non-goals).
type BlockChain struct {
	chainParams *chaincfg.Params

	// chainLock protects bestChain and the tip-callback registry below.
	// bestChain has its own internal mutex for the height-indexed slice,
	// but ProcessNewBlock's read-validate-extend sequence must be
	// atomic with respect to other callers, hence the coarser lock here.
	chainLock sync.Mutex
	bestChain *chainView

	notifyLock sync.Mutex
	nextSubID  uint64
	notifyFns  map[uint64]internalminer.TipCallback
}

// New constructs a BlockChain for params, seeded with its genesis block.
func New(params *chaincfg.Params) *BlockChain {
	genesis := newBlockNode(headerPtr(params.GenesisHeader()), nil)

	view := newChainView()
	view.extend(genesis)
	view.MarkSeen(genesis.hash)

	return &BlockChain{
		chainParams: params,
		bestChain:   view,
		notifyFns:   make(map[uint64]internalminer.TipCallback),
	}
}

func headerPtr(h wire.BlockHeader) *wire.BlockHeader { return &h }

// BlockHashByHeight returns the hash of the block at the given height in the
// main chain.
//
// This function is safe for concurrent access.
func (b *BlockChain) BlockHashByHeight(blockHeight int32) (*chainhash.Hash, error) {
	node := b.bestChain.NodeByHeight(blockHeight)
	if node == nil {
		str := fmt.Sprintf("no block at height %d exists", blockHeight)
		return nil, errNotInMainChain(str)

	}

	return &node.hash, nil
}

// ActiveTip implements internalminer.ChainTipSource: it returns the
// current best chain tip, or (nil, false) if the chain has not been
// initialized with a genesis block.
func (b *BlockChain) ActiveTip() (internalminer.ChainTip, bool) {
	tip := b.bestChain.Tip()
	if tip == nil {
		return nil, false
	}
	return tip, true
}

// ProcessNewBlock implements internalminer.BlockSubmitter: it validates
// block's header against the current tip (difficulty transition and
// RandomX proof-of-work, unless minPowChecked is set) and, if it extends
// the active tip, appends it to the best chain and fires tip callbacks.
//
// forceProcessing is accepted for interface conformance; this in-memory
// chain has no orphan pool to bypass, so it is currently unused.
func (b *BlockChain) ProcessNewBlock(block *wire.MsgBlock, forceProcessing, minPowChecked bool) (accepted bool, isNew bool) {
	b.chainLock.Lock()
	defer b.chainLock.Unlock()

	blockHash := block.BlockHash()
	if b.bestChain.HaveSeen(blockHash) {
		log.MinrLog.Debugf("ProcessNewBlock: already have block %s", blockHash)
		return false, false
	}

	tip := b.bestChain.Tip()
	if tip == nil {
		return false, false
	}
	if block.Header.PrevBlock != tip.hash {
		log.MinrLog.Debugf("ProcessNewBlock: block does not extend tip %s", tip.hash)
		return false, false
	}

	expectedBits := difficulty.NextWorkRequired(tip, b.chainParams)
	if !PermittedDifficultyTransition(tip.bits, expectedBits) || block.Header.Bits != expectedBits {
		log.MinrLog.Warnf("ProcessNewBlock: bad bits 0x%08x, expected 0x%08x", block.Header.Bits, expectedBits)
		return false, false
	}

	if !minPowChecked {
		ok, err := CheckHeader(&block.Header, tip.height, b.chainParams)
		if err != nil {
			log.MinrLog.Warnf("ProcessNewBlock: header check failed: %v", err)
			return false, false
		}
		if !ok {
			log.MinrLog.Debugf("ProcessNewBlock: proof-of-work not met")
			return false, false
		}
	}

	node := newBlockNode(&block.Header, tip)
	b.bestChain.extend(node)
	b.bestChain.MarkSeen(blockHash)

	wrapped := acbcutil.NewBlock(block)
	wrapped.SetHeight(node.height)
	log.MinrLog.Infof("ProcessNewBlock: accepted block %s at height %d with %d transaction(s)",
		wrapped.Hash(), wrapped.Height(), len(wrapped.Transactions()))

	b.fireTipCallbacks(node, tip)
	return true, true
}

// RegisterTipCallback implements internalminer.TipNotifier. The returned
// unregister function removes cb; calling it more than once is a no-op.
func (b *BlockChain) RegisterTipCallback(cb internalminer.TipCallback) func() {
	b.notifyLock.Lock()
	id := b.nextSubID
	b.nextSubID++
	b.notifyFns[id] = cb
	b.notifyLock.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.notifyLock.Lock()
			delete(b.notifyFns, id)
			b.notifyLock.Unlock()
		})
	}
}

// fireTipCallbacks invokes every registered callback with the newly
// connected tip. inInitialDownload is always reported false: this
// in-memory chain has no notion of initial block download.
func (b *BlockChain) fireTipCallbacks(newTip, forkPoint *blockNode) {
	b.notifyLock.Lock()
	fns := make([]internalminer.TipCallback, 0, len(b.notifyFns))
	for _, fn := range b.notifyFns {
		fns = append(fns, fn)
	}
	b.notifyLock.Unlock()

	for _, fn := range fns {
		fn(newTip, forkPoint, false)
	}
}
