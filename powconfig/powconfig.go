// Package powconfig parses the command-line options that control
// Botcoin's built-in RandomX miner, using the same go-flags based loader
// idiom btcd-family nodes use for their own config.
package powconfig

import (
	"fmt"

	"github.com/jessevdk/go-flags"

	"github.com/botcoin-project/botcoin/mining/internalminer"
)

// Options holds the raw -mine* flags as parsed from the command line,
// before translation into an internalminer.Config.
type Options struct {
	Mine         bool   `long:"mine" description:"Mine blocks using the built-in RandomX miner"`
	MineAddress  string `long:"mineaddress" description:"Payment address for mined blocks' coinbase output"`
	MineThreads  int    `long:"minethreads" description:"Number of mining worker threads (required, must be greater than zero)"`
	MineRandomX  string `long:"minerandomx" description:"RandomX mode: light or fast" choice:"light" choice:"fast"`
	MinePriority bool   `long:"minepriority" description:"Set the miner's LowPriority option (mining threads keep normal OS scheduling priority)"`
}

// defaultMineRandomX is used when -minerandomx is omitted entirely.
const defaultMineRandomX = "light"

// ErrNoMineAddress is returned by ResolveConfig when -mine is set but no
// -mineaddress was supplied; mining without anywhere to pay the coinbase
// is a user configuration error, not a recoverable runtime condition.
var ErrNoMineAddress = fmt.Errorf("powconfig: -mine requires -mineaddress")

// ErrNoMineThreads is returned by ResolveConfig when -minethreads is
// left at or below zero. Unlike some flags, -minethreads has no
// auto-detect default (spec §6: "required; 0 ⇒ startup fails"); the
// operator must say explicitly how many worker threads to run.
var ErrNoMineThreads = fmt.Errorf("powconfig: -minethreads is required and must be greater than zero")

// Parse parses args (typically os.Args[1:]) into Options using the
// go-flags parser. It reads no config file.
func Parse(args []string) (*Options, error) {
	opts := &Options{MineRandomX: defaultMineRandomX}
	parser := flags.NewParser(opts, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}
	return opts, nil
}

// ResolveConfig translates parsed Options into an internalminer.Config,
// decoding MineAddress into its pay-to-pubkey-hash coinbase script.
// Both -mineaddress and -minethreads are required only when -mine is
// set; with mining disabled, ResolveConfig returns the zero Config
// without validating either. When -mine is set, MineThreads left at
// zero or below fails startup rather than silently auto-detecting a
// thread count (spec §6).
func ResolveConfig(opts *Options) (internalminer.Config, error) {
	if !opts.Mine {
		return internalminer.Config{}, nil
	}
	if opts.MineAddress == "" {
		return internalminer.Config{}, ErrNoMineAddress
	}
	if opts.MineThreads <= 0 {
		return internalminer.Config{}, ErrNoMineThreads
	}

	script, err := CoinbaseScriptForAddress(opts.MineAddress)
	if err != nil {
		return internalminer.Config{}, err
	}

	return internalminer.Config{
		NumThreads:     opts.MineThreads,
		CoinbaseScript: script,
		FastMode:       opts.MineRandomX == "fast",
		LowPriority:    opts.MinePriority,
	}, nil
}
