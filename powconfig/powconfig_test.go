package powconfig

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/botcoin-project/botcoin/mining/internalminer"
)

// mainnetP2PKHAddr and mainnetP2SHAddr are well-known, real Bitcoin
// mainnet addresses (Satoshi's widely-cited P2PKH address and the
// equally well-known "pi wallet" P2SH address), used here purely as
// base58check fixtures for the decode path.
const (
	mainnetP2PKHAddr = "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa"
	mainnetP2SHAddr  = "3P14159f73E4gFr7JterCCQh9QjiTjiZrG"
	testnetP2PKHAddr = "mipcBbFg9gMiCh81Kj8tqqdgoZub1ZJRfn"
)

func TestCoinbaseScriptForAddressMainnetPubKeyHash(t *testing.T) {
	script, err := CoinbaseScriptForAddress(mainnetP2PKHAddr)
	require.NoError(t, err)
	require.Len(t, script, 25)
	require.Equal(t, byte(opDup), script[0])
	require.Equal(t, byte(opHash160), script[1])
	require.Equal(t, byte(opData20), script[2])
	require.Equal(t, byte(opEqualVerify), script[23])
	require.Equal(t, byte(opCheckSig), script[24])
}

func TestCoinbaseScriptForAddressTestnetPubKeyHash(t *testing.T) {
	script, err := CoinbaseScriptForAddress(testnetP2PKHAddr)
	require.NoError(t, err)
	require.Len(t, script, 25)
}

func TestCoinbaseScriptForAddressRejectsScriptHash(t *testing.T) {
	_, err := CoinbaseScriptForAddress(mainnetP2SHAddr)
	require.ErrorIs(t, err, ErrInvalidMineAddress)
}

func TestCoinbaseScriptForAddressRejectsGarbage(t *testing.T) {
	_, err := CoinbaseScriptForAddress("not a real address")
	require.ErrorIs(t, err, ErrInvalidMineAddress)
}

func TestCoinbaseScriptForAddressRejectsEmpty(t *testing.T) {
	_, err := CoinbaseScriptForAddress("")
	require.ErrorIs(t, err, ErrInvalidMineAddress)
}

func TestResolveConfigRejectsZeroThreads(t *testing.T) {
	opts := &Options{Mine: true, MineAddress: mainnetP2PKHAddr, MineThreads: 0, MineRandomX: defaultMineRandomX}
	_, err := ResolveConfig(opts)
	require.ErrorIs(t, err, ErrNoMineThreads)
}

func TestResolveConfigMiningDisabledSkipsValidation(t *testing.T) {
	opts := &Options{MineRandomX: defaultMineRandomX}
	cfg, err := ResolveConfig(opts)
	require.NoError(t, err)
	require.Equal(t, internalminer.Config{}, cfg)
}

func TestResolveConfigRejectsMineWithoutAddress(t *testing.T) {
	opts := &Options{Mine: true, MineThreads: 4, MineRandomX: defaultMineRandomX}
	_, err := ResolveConfig(opts)
	require.ErrorIs(t, err, ErrNoMineAddress)
}

func TestResolveConfigSucceeds(t *testing.T) {
	opts := &Options{
		Mine:         true,
		MineAddress:  mainnetP2PKHAddr,
		MineThreads:  4,
		MineRandomX:  "fast",
		MinePriority: true,
	}
	cfg, err := ResolveConfig(opts)
	require.NoError(t, err)
	require.Equal(t, internalminer.Config{
		NumThreads:     4,
		CoinbaseScript: cfg.CoinbaseScript,
		FastMode:       true,
		LowPriority:    true,
	}, cfg)
	require.NoError(t, cfg.Validate())
}
