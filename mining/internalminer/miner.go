// Package internalminer implements Botcoin's built-in multi-threaded
// miner (C7): a coordinator goroutine that builds and publishes mining
// contexts reacting to tip changes, and a pool of worker goroutines that
// grind nonces against the most recently published context, submitting
// any block whose header passes proof-of-work back through the external
// validator (spec §2 C7, §4.7).
package internalminer

import (
	"errors"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/botcoin-project/botcoin/chaincfg"
	"github.com/botcoin-project/botcoin/log"
)

// ErrAlreadyRunning and ErrNotRunning guard Start/Stop against double
// calls from unrelated goroutines. ErrNilParams guards New against a
// miner built without a network parameter set, which every seed/target
// computation in the coordinator and worker loops assumes exists.
var (
	ErrAlreadyRunning = errors.New("internalminer: already running")
	ErrNotRunning     = errors.New("internalminer: not running")
	ErrNilParams      = errors.New("internalminer: nil chaincfg.Params")
)

const (
	// minBackoff is the coordinator's steady-state poll interval once a
	// template has been published and the tip hasn't moved; unrelated
	// to the retry backoff below.
	minBackoff = 100 * time.Millisecond

	// backoffUnit and maxBackoff parameterize the coordinator's retry
	// schedule after an unsuccessful template rebuild or a withheld
	// mine attempt: min(2^backoff_level, 64) seconds, per spec §4.7
	// step 3.
	backoffUnit = 1 * time.Second
	maxBackoff  = 64 * time.Second

	// backoffJitterFraction is the fraction of the base backoff delay
	// added as random jitter, per spec §4.7 step 3's
	// "jitter ∈ [0, 25%]".
	backoffJitterFraction = 0.25

	// minPeersToMine is the ShouldMine floor: below this many connected
	// peers the node assumes it may be partitioned and withholds mining
	// (spec §4.7's MIN_PEERS_FOR_MINING, §8 invariant).
	minPeersToMine = 3

	// templateRefreshInterval is TEMPLATE_REFRESH_INTERVAL (spec §4.7
	// point 6): even without a tip change, the coordinator rebuilds the
	// template after this long so a stale-but-still-tip-matching
	// template (e.g. mempool fee changes) eventually refreshes.
	templateRefreshInterval = 30 * time.Second
)

// Status is a point-in-time snapshot of the miner's operational state,
// returned by Miner.Status for RPC/metrics surfaces (spec §4.7, §6).
type Status struct {
	Running       bool
	Threads       int
	FastMode      bool
	HashesDone    uint64
	BlocksFound   uint64
	StaleBlocks   uint64
	Templates     uint64
	UptimeSeconds int64
}

// Miner coordinates template production and nonce search across a fixed
// pool of worker goroutines. The zero value is not usable; construct with
// New.
type Miner struct {
	collab Collaborators
	params *chaincfg.Params
	cfg    Config

	slot *contextSlot

	running atomic.Bool
	jobID   atomic.Uint64

	hashesDone  atomic.Uint64
	blocksFound atomic.Uint64
	staleBlocks atomic.Uint64
	templates   atomic.Uint64
	startedAt   atomic.Int64

	wakeCh chan struct{}
	stopCh chan struct{}

	unregisterTip func()
	wg            sync.WaitGroup
}

// New constructs a Miner bound to params and collab. Start must be called
// before it does any work.
func New(cfg Config, params *chaincfg.Params, collab Collaborators) (*Miner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if params == nil {
		return nil, ErrNilParams
	}
	return &Miner{
		collab: collab,
		params: params,
		cfg:    cfg,
		slot:   newContextSlot(),
		wakeCh: make(chan struct{}, 1),
	}, nil
}

// Start launches the coordinator and NumThreads worker goroutines. It is
// an error to call Start twice without an intervening Stop.
func (m *Miner) Start() error {
	if !m.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	m.stopCh = make(chan struct{})
	m.startedAt.Store(time.Now().Unix())

	m.unregisterTip = m.collab.Notifier.RegisterTipCallback(func(newTip, forkPoint ChainTip, inInitialDownload bool) {
		m.onTipChanged()
	})

	m.wg.Add(1)
	go m.coordinatorLoop()

	for i := 0; i < m.cfg.NumThreads; i++ {
		m.wg.Add(1)
		go m.workerLoop(i)
	}

	log.MinrLog.Infof("internal miner started with %d threads (fast_mode=%v)", m.cfg.NumThreads, m.cfg.FastMode)
	return nil
}

// Stop signals every goroutine to exit and blocks until they have. It is
// safe to call Stop more than once; the second call returns ErrNotRunning.
func (m *Miner) Stop() error {
	if !m.running.CompareAndSwap(true, false) {
		return ErrNotRunning
	}
	close(m.stopCh)
	m.slot.Broadcast()
	if m.unregisterTip != nil {
		m.unregisterTip()
	}
	m.wg.Wait()
	log.MinrLog.Infof("internal miner stopped")
	return nil
}

// Status returns a snapshot of the miner's current counters.
func (m *Miner) Status() Status {
	running := m.running.Load()
	var uptime int64
	if running {
		uptime = time.Now().Unix() - m.startedAt.Load()
	}
	return Status{
		Running:       running,
		Threads:       m.cfg.NumThreads,
		FastMode:      m.cfg.FastMode,
		HashesDone:    m.hashesDone.Load(),
		BlocksFound:   m.blocksFound.Load(),
		StaleBlocks:   m.staleBlocks.Load(),
		Templates:     m.templates.Load(),
		UptimeSeconds: uptime,
	}
}

// onTipChanged wakes the coordinator to rebuild its template. Sends are
// non-blocking: a wake already pending coalesces with this one, since the
// coordinator only ever cares that the tip moved, not by how much or how
// many times.
func (m *Miner) onTipChanged() {
	select {
	case m.wakeCh <- struct{}{}:
	default:
	}
}

// shouldMine reports whether the node is in a position to mine at all:
// it withholds mining while fewer than minPeersToMine peers are
// connected, matching spec §4.7's guard against wasting hashrate in an
// isolated partition. A nil PeerCounter never withholds mining.
func (m *Miner) shouldMine() bool {
	if m.collab.Peers == nil {
		return true
	}
	return m.collab.Peers.ConnectedPeerCount() >= minPeersToMine
}

// backoffDuration returns the coordinator's wait before retry attempt n
// (0-based): min(2^n, 64) seconds of base delay plus jitter uniformly
// drawn from [0, 25%] of that base (spec §4.7 step 3).
func backoffDuration(attempt int) time.Duration {
	base := backoffUnit
	for i := 0; i < attempt && base < maxBackoff; i++ {
		base *= 2
	}
	if base > maxBackoff {
		base = maxBackoff
	}
	jitter := time.Duration(rand.Int63n(int64(float64(base) * backoffJitterFraction) + 1))
	return base + jitter
}
