package internalminer

import (
	"errors"
	"math/big"

	"github.com/botcoin-project/botcoin/blockchain/compact"
	"github.com/botcoin-project/botcoin/chaincfg/chainhash"
	"github.com/botcoin-project/botcoin/log"
	"github.com/botcoin-project/botcoin/randomx"
	"github.com/botcoin-project/botcoin/wire"
)

// errBadTarget indicates the template's own bits field failed to decode,
// which would mean the external template builder produced a malformed
// header; the worker simply drops this context rather than mining
// against a nonsensical target.
var errBadTarget = errors.New("internalminer: template has invalid bits")

// staleCheckInterval is how many hash attempts a worker makes before
// re-checking whether a newer context has been published, bounding how
// long it can keep hashing a stale job after a tip change (spec §4.7).
const staleCheckInterval = 256

// hashBatchSize is HASH_BATCH_SIZE (spec §4.7 point 3, §5): a worker
// accumulates completed hash attempts in a local counter and flushes it
// into the shared hashesDone atomic only once the local count reaches
// this many, so workers never contend on that atomic during steady-state
// hashing.
const hashBatchSize = 10_000

// workerLoop repeatedly pulls the current MiningContext, grinds a
// disjoint nonce range strided by the total thread count, and submits
// any header whose digest meets its target. index is this worker's
// 0-based slot, used both as the stride offset and for log tagging.
func (m *Miner) workerLoop(index int) {
	defer m.wg.Done()

	vm := &randomx.MiningVM{}
	defer vm.Close()
	fastMode := false
	fastModeUnavailable := false

	// lastJobID is the JobID of the context this worker most recently
	// submitted a solution for. Passing it to WaitForNewJob forces the
	// worker to drop straight back to waiting instead of re-mining the
	// job it just solved while the coordinator republishes (spec §4.7
	// worker step 2: "force refresh by resetting last-seen job_id").
	var lastJobID uint64

	for {
		ctx := m.slot.WaitForNewJob(lastJobID, func() bool { return m.running.Load() })
		if ctx == nil {
			return
		}

		select {
		case <-m.stopCh:
			return
		default:
		}

		wantFast := ctx.FastMode && !fastModeUnavailable
		if !vm.HasSeed(ctx.Seed) || fastMode != wantFast {
			mode, err := initializeVM(vm, index, wantFast, ctx.Seed)
			if err != nil {
				log.MinrLog.Errorf("worker %d: randomx init failed: %v", index, err)
				lastJobID = 0
				continue
			}
			if wantFast && !mode {
				fastModeUnavailable = true
			}
			fastMode = mode
		}

		if m.mineContext(index, ctx, vm) {
			lastJobID = ctx.JobID
		} else {
			lastJobID = 0
		}
	}
}

// initializeVM initializes vm for seed, attempting fast mode first when
// wantFast is set. If fast-mode initialization fails (e.g. a dataset
// allocation failure), it logs a single notice and falls back to light
// mode rather than returning the error to the caller, per spec §4.1 and
// §7's ResourceUnavailable handling ("fast mode degrades to light mode
// with a single log line"). It returns the mode actually initialized.
func initializeVM(vm *randomx.MiningVM, index int, wantFast bool, seed chainhash.Hash) (fastMode bool, err error) {
	if wantFast {
		if err := vm.Initialize(seed, true); err == nil {
			return true, nil
		} else {
			log.MinrLog.Warnf("worker %d: fast mode unavailable (%v), falling back to light mode", index, err)
		}
	}
	if err := vm.Initialize(seed, false); err != nil {
		return false, err
	}
	return false, nil
}

// mineContext grinds nonces against ctx until a newer context is
// published, a block is found, or the miner stops. It reports whether a
// solution was submitted.
func (m *Miner) mineContext(index int, ctx *MiningContext, vm *randomx.MiningVM) bool {
	target, negative, overflow := compact.Decode(ctx.Template.Block.Header.Bits)
	if negative || overflow || target.Sign() == 0 {
		log.MinrLog.Errorf("worker %d: %v", index, errBadTarget)
		return false
	}

	header := ctx.Header

	nonce := uint32(index)
	stride := uint32(m.cfg.NumThreads)
	if stride == 0 {
		stride = 1
	}

	var localHashes uint64
	flush := func() {
		if localHashes > 0 {
			m.hashesDone.Add(localHashes)
			localHashes = 0
		}
	}

	for attempts := 0; ; attempts++ {
		if attempts%staleCheckInterval == 0 {
			select {
			case <-m.stopCh:
				flush()
				return false
			default:
			}
			if current := m.slot.Get(); current == nil || current.JobID != ctx.JobID {
				flush()
				return false
			}
		}

		wire.PutNonce(header[:], nonce)

		digest, err := vm.Hash(header[:])
		if err != nil {
			log.MinrLog.Errorf("worker %d: hash failed: %v", index, err)
			flush()
			return false
		}
		localHashes++
		if localHashes >= hashBatchSize {
			flush()
		}

		if meetsTarget(digest, target) {
			flush()
			m.submitSolution(index, ctx, nonce)
			return true
		}

		nonce += stride
	}
}

// meetsTarget reports whether digest, interpreted as a big-endian 256-bit
// integer after reversing RandomX's little-endian output, is at or below
// target.
func meetsTarget(digest chainhash.Hash, target *big.Int) bool {
	reversed := make([]byte, len(digest))
	for i, b := range digest {
		reversed[len(digest)-1-i] = b
	}
	digestInt := new(big.Int).SetBytes(reversed)
	return digestInt.Cmp(target) <= 0
}

// submitSolution stamps the winning nonce into a private copy of the
// template's block and hands it to the external validator, updating
// blocksFound or staleBlocks depending on acceptance. The published
// context and its template block are left untouched, since every other
// worker mining the same job shares them.
func (m *Miner) submitSolution(index int, ctx *MiningContext, nonce uint32) {
	blockCopy := *ctx.Template.Block
	block := &blockCopy
	block.Header.Nonce = nonce

	// force_processing=true, min_pow_checked=true: the PoW was just
	// re-validated locally against ctx's target (spec §4.7 block
	// submission).
	accepted, isNew := m.collab.Submitter.ProcessNewBlock(block, true, true)
	if accepted && isNew {
		m.blocksFound.Add(1)
		log.MinrLog.Infof("worker %d: found block at height %d, nonce=%d", index, ctx.Template.Height, nonce)
		return
	}

	m.staleBlocks.Add(1)
	log.MinrLog.Warnf("worker %d: submitted block rejected or stale (accepted=%v new=%v)", index, accepted, isNew)
}
