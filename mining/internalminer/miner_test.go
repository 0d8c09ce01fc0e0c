package internalminer

import (
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/botcoin-project/botcoin/blockchain/compact"
	"github.com/botcoin-project/botcoin/blockchain/difficulty"
	"github.com/botcoin-project/botcoin/chaincfg"
	"github.com/botcoin-project/botcoin/chaincfg/chainhash"
	"github.com/botcoin-project/botcoin/wire"
)

// fakeTip is a minimal ChainTip used to drive the coordinator/worker
// pair without a real BlockChain. It always reports no predecessor,
// which is enough for a miner test that never needs LWMA to walk back
// more than one block.
type fakeTip struct {
	height int32
	time   int64
	bits   uint32
	hash   chainhash.Hash
}

func (f *fakeTip) Height() int32                        { return f.height }
func (f *fakeTip) BlockTime() int64                      { return f.time }
func (f *fakeTip) Bits() uint32                          { return f.bits }
func (f *fakeTip) Prev() difficulty.ChainIndexEntry      { return nil }
func (f *fakeTip) BlockHash() chainhash.Hash             { return f.hash }

// fakeChainState is the in-memory stand-in for a node's BlockChain,
// implementing TemplateBuilder, ChainTipSource, BlockSubmitter and
// TipNotifier all at once; blockchain.BlockChain implements the last
// three of these for real.
type fakeChainState struct {
	mu   sync.Mutex
	tip  *fakeTip
	bits uint32

	notifyMu  sync.Mutex
	nextID    uint64
	callbacks map[uint64]TipCallback

	accepted chan *wire.MsgBlock
}

func newFakeChainState(params *chaincfg.Params) *fakeChainState {
	return &fakeChainState{
		tip: &fakeTip{
			height: 0,
			time:   int64(params.GenesisTimestamp),
			bits:   params.PowLimitBits,
			hash:   chainhash.HashH([]byte("fake genesis")),
		},
		bits:      params.PowLimitBits,
		callbacks: make(map[uint64]TipCallback),
		accepted:  make(chan *wire.MsgBlock, 8),
	}
}

func (f *fakeChainState) CreateBlockTemplate(coinbaseScript []byte) (*BlockTemplate, error) {
	f.mu.Lock()
	tip := f.tip
	f.mu.Unlock()

	header := wire.BlockHeader{
		Version:    1,
		PrevBlock:  tip.hash,
		MerkleRoot: chainhash.HashH(coinbaseScript),
		Timestamp:  uint32(tip.time + 1),
		Bits:       f.bits,
	}
	block := &wire.MsgBlock{Header: header}
	return &BlockTemplate{Block: block, Height: tip.height + 1}, nil
}

func (f *fakeChainState) ActiveTip() (ChainTip, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tip, true
}

func (f *fakeChainState) ProcessNewBlock(block *wire.MsgBlock, forceProcessing, minPowChecked bool) (bool, bool) {
	f.mu.Lock()
	if block.Header.PrevBlock != f.tip.hash {
		f.mu.Unlock()
		return false, false
	}
	newTip := &fakeTip{
		height: f.tip.height + 1,
		time:   int64(block.Header.Timestamp),
		bits:   block.Header.Bits,
		hash:   block.BlockHash(),
	}
	f.tip = newTip
	f.mu.Unlock()

	f.accepted <- block
	return true, true
}

func (f *fakeChainState) RegisterTipCallback(cb TipCallback) func() {
	f.notifyMu.Lock()
	id := f.nextID
	f.nextID++
	f.callbacks[id] = cb
	f.notifyMu.Unlock()
	return func() {
		f.notifyMu.Lock()
		delete(f.callbacks, id)
		f.notifyMu.Unlock()
	}
}

// fireTipChanged simulates an external on_tip_updated signal (spec §8 S6):
// it advances the fake chain's tip and directly invokes every registered
// TipCallback, since the mock's own ProcessNewBlock (used for workers'
// real solution submissions) intentionally does not fire callbacks
// itself.
func (f *fakeChainState) fireTipChanged() {
	f.mu.Lock()
	newTip := &fakeTip{
		height: f.tip.height + 1,
		time:   f.tip.time + 1,
		bits:   f.tip.bits,
		hash:   chainhash.HashH([]byte{byte(f.tip.height + 1), 0xff}),
	}
	f.tip = newTip
	f.mu.Unlock()

	f.notifyMu.Lock()
	cbs := make([]TipCallback, 0, len(f.callbacks))
	for _, cb := range f.callbacks {
		cbs = append(cbs, cb)
	}
	f.notifyMu.Unlock()

	for _, cb := range cbs {
		cb(newTip, nil, false)
	}
}

type fakePeerCounter struct{ count uint32 }

func (p *fakePeerCounter) ConnectedPeerCount() uint32 { return p.count }

func TestMinerFindsABlockAgainstRegtestDifficulty(t *testing.T) {
	params := chaincfg.RegressionNetParams
	chainState := newFakeChainState(&params)

	cfg := Config{NumThreads: 1, CoinbaseScript: []byte("test coinbase")}
	collab := Collaborators{
		Templates: chainState,
		Tip:       chainState,
		Submitter: chainState,
		Notifier:  chainState,
		Peers:     &fakePeerCounter{count: 3},
	}

	m, err := New(cfg, &params, collab)
	require.NoError(t, err)

	require.NoError(t, m.Start())
	defer m.Stop()

	select {
	case block := <-chainState.accepted:
		require.NotNil(t, block)
	case <-time.After(30 * time.Second):
		t.Fatal("miner did not submit a block against the easy regtest target in time")
	}

	require.NoError(t, m.Stop())
	status := m.Status()
	require.False(t, status.Running)
	require.GreaterOrEqual(t, status.BlocksFound, uint64(1))
}

func TestMinerRejectsInvalidConfig(t *testing.T) {
	params := chaincfg.RegressionNetParams
	_, err := New(Config{NumThreads: 0, CoinbaseScript: []byte("x")}, &params, Collaborators{})
	require.Error(t, err)
}

func TestMinerRejectsNilParams(t *testing.T) {
	_, err := New(Config{NumThreads: 1, CoinbaseScript: []byte("x")}, nil, Collaborators{})
	require.ErrorIs(t, err, ErrNilParams)
}

func TestMinerDoubleStartErrors(t *testing.T) {
	params := chaincfg.RegressionNetParams
	chainState := newFakeChainState(&params)
	cfg := Config{NumThreads: 1, CoinbaseScript: []byte("test coinbase")}
	collab := Collaborators{
		Templates: chainState,
		Tip:       chainState,
		Submitter: chainState,
		Notifier:  chainState,
		Peers:     &fakePeerCounter{count: 3},
	}
	m, err := New(cfg, &params, collab)
	require.NoError(t, err)

	require.NoError(t, m.Start())
	defer m.Stop()
	require.ErrorIs(t, m.Start(), ErrAlreadyRunning)
}

func TestShouldMineWithholdsBelowPeerFloor(t *testing.T) {
	params := chaincfg.RegressionNetParams
	chainState := newFakeChainState(&params)
	cfg := Config{NumThreads: 1, CoinbaseScript: []byte("test coinbase")}

	for _, count := range []uint32{0, 1, 2} {
		collab := Collaborators{
			Templates: chainState,
			Tip:       chainState,
			Submitter: chainState,
			Notifier:  chainState,
			Peers:     &fakePeerCounter{count: count},
		}
		m, err := New(cfg, &params, collab)
		require.NoError(t, err)
		require.False(t, m.shouldMine(), "shouldMine must withhold below MIN_PEERS_FOR_MINING with count=%d", count)
	}
}

// TestMinerFindsABlockWithFourWorkers runs spec §8 S5's setup end to end
// through real RandomX hashing: with N=4 worker threads mining against
// the easy regtest target, a block is submitted, accepted and counted in
// BlocksFound. It does not check which worker found the block or that
// workers' nonces never overlap; TestNonceStridePartitionsFullRange in
// worker_test.go covers the stride partitioning math.
func TestMinerFindsABlockWithFourWorkers(t *testing.T) {
	params := chaincfg.RegressionNetParams
	chainState := newFakeChainState(&params)

	cfg := Config{NumThreads: 4, CoinbaseScript: []byte("test coinbase")}
	collab := Collaborators{
		Templates: chainState,
		Tip:       chainState,
		Submitter: chainState,
		Notifier:  chainState,
		Peers:     &fakePeerCounter{count: 3},
	}

	m, err := New(cfg, &params, collab)
	require.NoError(t, err)
	require.NoError(t, m.Start())
	defer m.Stop()

	select {
	case block := <-chainState.accepted:
		require.NotNil(t, block)
	case <-time.After(30 * time.Second):
		t.Fatal("four-worker miner did not submit a block against the easy regtest target in time")
	}

	require.NoError(t, m.Stop())
	status := m.Status()
	require.GreaterOrEqual(t, status.BlocksFound, uint64(1))
}

// TestMinerRefreshesTemplateWithinWindowOfEachTipSignal is spec §8 S6:
// with N=2 workers, three external tip-change signals spaced 50ms apart
// must each cause the templates counter to advance within 200ms. The
// fake chain's bits are pinned to an unreachable target so no worker
// submits a real solution during the test, isolating the signal-driven
// refresh path from mining-driven tip advancement.
func TestMinerRefreshesTemplateWithinWindowOfEachTipSignal(t *testing.T) {
	params := chaincfg.RegressionNetParams
	chainState := newFakeChainState(&params)
	chainState.bits = compact.BigToCompact(big.NewInt(1))

	cfg := Config{NumThreads: 2, CoinbaseScript: []byte("test coinbase")}
	collab := Collaborators{
		Templates: chainState,
		Tip:       chainState,
		Submitter: chainState,
		Notifier:  chainState,
		Peers:     &fakePeerCounter{count: 3},
	}

	m, err := New(cfg, &params, collab)
	require.NoError(t, err)
	require.NoError(t, m.Start())
	defer m.Stop()

	require.Eventually(t, func() bool { return m.Status().Templates >= 1 }, 500*time.Millisecond, 5*time.Millisecond,
		"miner must publish an initial template before any signal is fired")

	for i := 0; i < 3; i++ {
		before := m.Status().Templates
		chainState.fireTipChanged()
		require.Eventually(t, func() bool { return m.Status().Templates > before }, 200*time.Millisecond, 2*time.Millisecond,
			"templates counter must advance within 200ms of a tip-change signal")
		time.Sleep(50 * time.Millisecond)
	}
}

func TestShouldMineAllowsAtPeerFloor(t *testing.T) {
	params := chaincfg.RegressionNetParams
	chainState := newFakeChainState(&params)
	cfg := Config{NumThreads: 1, CoinbaseScript: []byte("test coinbase")}
	collab := Collaborators{
		Templates: chainState,
		Tip:       chainState,
		Submitter: chainState,
		Notifier:  chainState,
		Peers:     &fakePeerCounter{count: 3},
	}
	m, err := New(cfg, &params, collab)
	require.NoError(t, err)
	require.True(t, m.shouldMine())
}
