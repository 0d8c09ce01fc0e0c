package internalminer

import "errors"

// ErrInvalidConfig is returned by Config.Validate when a field is out of
// range for the miner to start.
var ErrInvalidConfig = errors.New("internalminer: invalid config")

// Config holds the user-controlled tunables for the internal miner,
// mirroring the -mine* options described in spec §4.7.
type Config struct {
	// NumThreads is the number of worker goroutines to run. Zero or
	// negative is rejected by Validate; callers resolving "auto" from
	// runtime.NumCPU() must do so before constructing Config.
	NumThreads int

	// CoinbaseScript is the output script paid the block reward. It is
	// passed through to TemplateBuilder.CreateBlockTemplate verbatim.
	CoinbaseScript []byte

	// FastMode selects RandomX full-dataset ("fast") mode over the
	// default light-cache mode. Fast mode trades a multi-GiB dataset
	// build for much higher hashrate (spec §2 C1, §4.1).
	FastMode bool

	// LowPriority records the -minepriority request. The worker
	// goroutines do not read it: they run at the process's normal OS
	// scheduling priority whether or not it is set.
	LowPriority bool
}

// Validate rejects configs the miner cannot safely start with.
func (c Config) Validate() error {
	if c.NumThreads <= 0 {
		return ErrInvalidConfig
	}
	if len(c.CoinbaseScript) == 0 {
		return ErrInvalidConfig
	}
	return nil
}
