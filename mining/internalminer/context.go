package internalminer

import (
	"sync"

	"github.com/botcoin-project/botcoin/chaincfg/chainhash"
	"github.com/botcoin-project/botcoin/wire"
)

// MiningContext is the immutable unit of work handed to every worker: a
// block template bound to the tip it extends, the job ID workers use to
// detect staleness, and the RandomX seed the template's height mines
// under. Once published, none of its fields are mutated; a tip change
// produces a brand new MiningContext rather than editing this one (spec
// §4.7, §5 concurrency notes).
type MiningContext struct {
	JobID    uint64
	Template *BlockTemplate
	TipHash  chainhash.Hash
	Seed     chainhash.Hash
	FastMode bool

	// Header is the template's block header, serialized once up front
	// so every worker mutates only its own private copy's nonce bytes
	// rather than re-serializing per attempt (spec §4.7 worker loop).
	Header [wire.BlockHeaderLen]byte
}

// contextSlot publishes MiningContext values to any number of waiting
// workers. It plays the role of the "mutex-protected slot plus condition
// variable" described in spec §5: Publish corresponds to notify-all, and
// Wait blocks until either a context is available or stop fires.
type contextSlot struct {
	mu   sync.Mutex
	cond *sync.Cond
	ctx  *MiningContext
}

func newContextSlot() *contextSlot {
	s := &contextSlot{}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Publish installs ctx as the current context and wakes every worker
// blocked in Wait.
func (s *contextSlot) Publish(ctx *MiningContext) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()
	s.cond.Broadcast()
}

// Get returns the current context, or nil if none has been published yet.
func (s *contextSlot) Get() *MiningContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx
}

// Wait blocks until a context is available or alive() turns false, in
// which case it returns nil. alive is re-checked under the slot's lock
// every time Publish (or a spurious wakeup) signals the condition
// variable, so a Stop that flips running to false before any template
// has ever been published still releases every waiting worker.
func (s *contextSlot) Wait(alive func() bool) *MiningContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.ctx == nil && alive() {
		s.cond.Wait()
	}
	return s.ctx
}

// Broadcast wakes every waiter without changing the published context;
// used by Stop so workers blocked with no template yet re-check alive().
func (s *contextSlot) Broadcast() {
	s.cond.Broadcast()
}

// WaitForNewJob blocks until a context whose JobID differs from
// lastJobID is published, or alive() turns false, in which case it
// returns nil. A worker passes the JobID of the context it just solved
// so it forces its own last-seen job_id to a value it will never match
// again, rather than immediately re-mining the same template it just
// submitted a solution for while the coordinator republishes (spec
// §4.7 worker step 2).
func (s *contextSlot) WaitForNewJob(lastJobID uint64, alive func() bool) *MiningContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	for (s.ctx == nil || s.ctx.JobID == lastJobID) && alive() {
		s.cond.Wait()
	}
	if s.ctx == nil || s.ctx.JobID == lastJobID {
		return nil
	}
	return s.ctx
}
