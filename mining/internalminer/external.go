package internalminer

import (
	"github.com/botcoin-project/botcoin/blockchain/difficulty"
	"github.com/botcoin-project/botcoin/chaincfg/chainhash"
	"github.com/botcoin-project/botcoin/wire"
)

// ChainTip is the view of chain-tip state the internal miner needs: it
// satisfies difficulty.ChainIndexEntry so C5 can walk it directly, and
// additionally exposes its own block hash for tip-change detection (spec
// §6's ActiveTip() ChainIndexEntry).
type ChainTip interface {
	difficulty.ChainIndexEntry
	BlockHash() chainhash.Hash
}

// BlockTemplate is what the external block-assembler hands back from
// CreateBlockTemplate: an assembled (but not yet mined) block plus the
// height it would occupy.
type BlockTemplate struct {
	Block  *wire.MsgBlock
	Height int32
}

// TemplateBuilder is the external block-assembler collaborator (spec §6:
// CreateBlockTemplate(coinbase_script) -> BlockTemplate).
type TemplateBuilder interface {
	CreateBlockTemplate(coinbaseScript []byte) (*BlockTemplate, error)
}

// ChainTipSource is the external chain-state collaborator (spec §6:
// ActiveTip() -> Option<ChainIndexEntry>).
type ChainTipSource interface {
	ActiveTip() (ChainTip, bool)
}

// BlockSubmitter is the external block-processor/validator collaborator
// (spec §6: ProcessNewBlock(block, force, min_pow_checked) -> (accepted,
// new_block)).
type BlockSubmitter interface {
	ProcessNewBlock(block *wire.MsgBlock, forceProcessing, minPowChecked bool) (accepted bool, isNew bool)
}

// TipCallback is invoked when validation connects a new tip. inInitialDownload
// is accepted for interface conformance with spec §6's
// RegisterTipCallback signature; the coordinator's ShouldMine
// deliberately never consults it (spec §9 Open Question #3).
type TipCallback func(newTip ChainTip, forkPoint ChainTip, inInitialDownload bool)

// TipNotifier is the external validation-signals collaborator the
// coordinator registers a callback with at Start and unregisters at Stop,
// so it can react to tip changes without holding a back-reference to the
// validator (spec §6, §9 "cyclic callback" pattern note).
type TipNotifier interface {
	RegisterTipCallback(cb TipCallback) (unregister func())
}

// PeerCounter is the external P2P collaborator used by ShouldMine to
// avoid mining in a minority partition (spec §6: ConnectedPeerCount()).
type PeerCounter interface {
	ConnectedPeerCount() uint32
}

// Interrupt is the process-global interrupt signal shared with the chain
// validator (spec §6: a process-global interrupt: AtomicBool). It is
// satisfied by e.g. *signalinterrupt wrappers; tests can use a plain
// closed-channel based implementation.
type Interrupt interface {
	Triggered() bool
}

// Collaborators bundles every external interface the miner consumes. None
// of these are implemented by this package in production. Templates, Tip,
// Submitter and Notifier are called unconditionally and must be supplied
// by the node embedding the miner; Peers and Interrupt may be nil (a nil
// Peers never withholds mining, a nil Interrupt is never checked).
type Collaborators struct {
	Templates  TemplateBuilder
	Tip        ChainTipSource
	Submitter  BlockSubmitter
	Notifier   TipNotifier
	Peers      PeerCounter
	Interrupt  Interrupt
}
