// Package randomx wraps git.gammaspectra.live/P2Pool/go-randomx/v4 with the
// process-wide resource manager (PoW context), per-thread mining VM, and
// seed-hash resolver that Botcoin's proof-of-work subsystem needs.
//
// Two execution modes share the same underlying hash function and must
// produce bit-identical output for identical (bytes, seed) input:
//
//   - light mode hashes against a ~256 MiB cache only, and is what block
//     validation uses;
//   - fast mode additionally materializes a ~2 GiB dataset from the cache,
//     and is an order of magnitude faster at steady state once warmed up.
package randomx

import (
	"sync"

	rx "git.gammaspectra.live/P2Pool/go-randomx/v4"

	"github.com/botcoin-project/botcoin/chaincfg/chainhash"
	"github.com/botcoin-project/botcoin/log"
)

// Context is the process-wide RandomX resource manager. It owns the cache,
// the lazily-built dataset, and a shared light-mode VM used for
// validation. One mutex serializes initialization and shared-VM use;
// mining workers own their own VMs (see MiningVM) and never contend on
// this lock during hashing.
type Context struct {
	mu sync.Mutex

	cache       *rx.Cache
	currentSeed *chainhash.Hash
	sharedLight *rx.VM
	dataset     *rx.Dataset
	sharedFast  *rx.VM
	fastBuilt   bool
}

var (
	globalContext     *Context
	globalContextOnce sync.Once
)

// GetContext returns the process-wide singleton Context, constructing it on
// first use.
func GetContext() *Context {
	globalContextOnce.Do(func() {
		globalContext = &Context{}
	})
	return globalContext
}

// IsInitialized reports whether the context has initialized its cache for
// any seed yet.
func (c *Context) IsInitialized() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache != nil
}

// CurrentSeedHash returns the seed hash the context is currently
// initialized for, if any.
func (c *Context) CurrentSeedHash() (chainhash.Hash, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.currentSeed == nil {
		return chainhash.Hash{}, false
	}
	return *c.currentSeed, true
}

// UpdateSeed ensures the context's cache (and, if wantFast, its dataset)
// is initialized for seed. It is a no-op if the context is already
// satisfied for this (seed, mode) pair. Reinitialization errors leave the
// context uninitialized for that seed so the next call retries cleanly.
func (c *Context) UpdateSeed(seed chainhash.Hash, wantFast bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.updateSeedLocked(seed, wantFast)
}

func (c *Context) updateSeedLocked(seed chainhash.Hash, wantFast bool) error {
	if c.currentSeed != nil && *c.currentSeed == seed {
		if !wantFast || c.fastBuilt {
			return nil
		}
		return c.initFastLocked(seed)
	}
	if err := c.initLightLocked(seed); err != nil {
		return err
	}
	if wantFast {
		return c.initFastLocked(seed)
	}
	return nil
}

func (c *Context) initLightLocked(seed chainhash.Hash) error {
	flags := rx.GetFlags()

	if c.cache == nil {
		cache, err := rx.NewCache(flags)
		if err != nil {
			log.PowxLog.Errorf("RandomX: failed to allocate cache: %v", err)
			return ErrResourceUnavailable
		}
		c.cache = cache
	}
	c.cache.Init(seed[:])

	if c.sharedLight == nil {
		vm, err := rx.NewVM(flags, c.cache, nil)
		if err != nil {
			log.PowxLog.Errorf("RandomX: failed to create light VM: %v", err)
			c.cache = nil
			return ErrResourceUnavailable
		}
		c.sharedLight = vm
	}

	seedCopy := seed
	c.currentSeed = &seedCopy
	c.fastBuilt = false
	log.PowxLog.Debugf("RandomX light mode initialized with seed %x", seed[:])
	return nil
}

func (c *Context) initFastLocked(seed chainhash.Hash) error {
	if c.currentSeed == nil || *c.currentSeed != seed {
		if err := c.initLightLocked(seed); err != nil {
			return err
		}
	}

	flags := rx.GetFlags()

	if c.dataset == nil {
		dataset, err := rx.NewDataset(flags)
		if err != nil {
			log.PowxLog.Warnf("RandomX: failed to allocate dataset (need ~2 GiB RAM): %v", err)
			return ErrResourceUnavailable
		}
		c.dataset = dataset
	}

	log.PowxLog.Infof("RandomX initializing dataset for seed %x (this can take a minute)...", seed[:])
	c.dataset.InitDatasetParallel(c.cache, numDatasetInitThreads())

	if c.sharedFast == nil {
		vm, err := rx.NewVM(flags|rx.RANDOMX_FLAG_FULL_MEM, nil, c.dataset)
		if err != nil {
			log.PowxLog.Errorf("RandomX: failed to create fast VM: %v", err)
			return ErrResourceUnavailable
		}
		c.sharedFast = vm
	}

	c.fastBuilt = true
	log.PowxLog.Infof("RandomX fast mode initialized with seed %x", seed[:])
	return nil
}

// HashLight ensures the context is initialized for seed in light mode and
// computes the hash through the shared light VM.
func (c *Context) HashLight(data []byte, seed chainhash.Hash) (chainhash.Hash, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.currentSeed == nil || *c.currentSeed != seed {
		if err := c.initLightLocked(seed); err != nil {
			return chainhash.Hash{}, err
		}
	}
	var out [32]byte
	c.sharedLight.CalculateHash(data, &out)
	return chainhash.Hash(out), nil
}

// HashFast ensures the context is initialized for seed in fast mode
// (building the dataset if necessary) and computes the hash through the
// shared fast VM. If dataset allocation fails, callers should fall back
// to HashLight and log a visible notice (spec §4.1, §7).
func (c *Context) HashFast(data []byte, seed chainhash.Hash) (chainhash.Hash, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.fastBuilt || c.currentSeed == nil || *c.currentSeed != seed {
		if err := c.initFastLocked(seed); err != nil {
			return chainhash.Hash{}, err
		}
	}
	var out [32]byte
	c.sharedFast.CalculateHash(data, &out)
	return chainhash.Hash(out), nil
}

// GetCache hands back the shared cache for read-only use building
// per-thread light-mode VMs. Returns nil if not yet initialized.
func (c *Context) GetCache() *rx.Cache {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache
}

// GetDataset hands back the shared dataset for read-only use building
// per-thread fast-mode VMs. Returns nil if fast mode hasn't been
// initialized yet.
func (c *Context) GetDataset() *rx.Dataset {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dataset
}

func numDatasetInitThreads() int {
	n := datasetInitThreadOverride
	if n > 0 {
		return n
	}
	return 4
}

// datasetInitThreadOverride allows tests to shrink dataset-init
// parallelism; zero means "use the default".
var datasetInitThreadOverride int
