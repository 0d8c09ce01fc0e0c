package randomx

import (
	rx "git.gammaspectra.live/P2Pool/go-randomx/v4"

	"github.com/botcoin-project/botcoin/chaincfg/chainhash"
)

// MiningVM is a per-thread, lock-free wrapper over a single RandomX VM
// bound to either the process-wide shared cache (light mode) or dataset
// (fast mode). Exactly one MiningVM should exist per mining worker
// goroutine; it is not safe for concurrent use by multiple goroutines.
//
// MiningVM is move-only in spirit: copying the zero value is fine, but
// copying an initialized MiningVM would let two owners race to Close the
// same underlying VM. Treat it as non-copyable once Initialize has
// succeeded.
type MiningVM struct {
	vm       *rx.VM
	seed     chainhash.Hash
	fastMode bool
	ready    bool
}

// Initialize (re)binds the VM to seed. It first ensures the process-wide
// Context has the cache (and, if fastMode, the dataset) built for seed,
// then instantiates a fresh VM bound to that cache or dataset. If
// allocation fails in fast mode, the caller may retry in light mode.
func (m *MiningVM) Initialize(seed chainhash.Hash, fastMode bool) error {
	ctx := GetContext()
	if err := ctx.UpdateSeed(seed, fastMode); err != nil {
		return err
	}

	if m.vm != nil {
		m.vm.Close()
		m.vm = nil
		m.ready = false
	}

	flags := rx.GetFlags()
	var vm *rx.VM
	var err error
	if fastMode {
		dataset := ctx.GetDataset()
		if dataset == nil {
			return ErrDatasetUnavailable
		}
		vm, err = rx.NewVM(flags|rx.RANDOMX_FLAG_FULL_MEM, nil, dataset)
	} else {
		cache := ctx.GetCache()
		if cache == nil {
			return ErrNotInitialized
		}
		vm, err = rx.NewVM(flags, cache, nil)
	}
	if err != nil {
		return ErrResourceUnavailable
	}

	m.vm = vm
	m.seed = seed
	m.fastMode = fastMode
	m.ready = true
	return nil
}

// Hash computes the RandomX digest of data using the bound VM. It is
// lock-free and allocates nothing on the hot path beyond the fixed-size
// return value. Initialize must be called first.
func (m *MiningVM) Hash(data []byte) (chainhash.Hash, error) {
	if !m.ready {
		return chainhash.Hash{}, ErrNotInitialized
	}
	var out [32]byte
	m.vm.CalculateHash(data, &out)
	return chainhash.Hash(out), nil
}

// HasSeed reports whether the VM is currently bound to seed. Workers use
// this to detect seed rotation without re-querying the underlying VM.
func (m *MiningVM) HasSeed(seed chainhash.Hash) bool {
	return m.ready && m.seed == seed
}

// IsReady reports whether the VM has been successfully initialized and is
// bound to some seed.
func (m *MiningVM) IsReady() bool {
	return m.ready
}

// Close releases the underlying RandomX VM exactly once. It is safe to
// call on a zero-value or already-closed MiningVM.
func (m *MiningVM) Close() {
	if m.vm != nil {
		m.vm.Close()
		m.vm = nil
	}
	m.ready = false
}
