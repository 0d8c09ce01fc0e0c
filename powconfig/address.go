package powconfig

import (
	"errors"

	"github.com/btcsuite/btcd/btcutil"
	btcdchaincfg "github.com/btcsuite/btcd/chaincfg"
)

// ErrInvalidMineAddress is returned when -mineaddress is not a valid
// base58check pay-to-pubkey-hash address.
var ErrInvalidMineAddress = errors.New("powconfig: -mineaddress must be a valid pay-to-pubkey-hash address")

// Standard Bitcoin script opcodes used to build a pay-to-pubkey-hash
// output script by hand, since this module has no script-execution
// engine of its own to reach for a higher-level builder.
const (
	opDup         = 0x76
	opHash160     = 0xa9
	opData20      = 0x14
	opEqualVerify = 0x88
	opCheckSig    = 0xac
)

// addressNetParams lists the base58 address-prefix tables -mineaddress
// is tried against, in order, since Botcoin does not yet register its
// own prefix byte with btcutil. This mirrors how a btcd-family node
// built for development still needs to accept addresses minted under
// any of the upstream networks it was tested against.
var addressNetParams = []*btcdchaincfg.Params{
	&btcdchaincfg.MainNetParams,
	&btcdchaincfg.TestNet3Params,
	&btcdchaincfg.RegressionNetParams,
}

// CoinbaseScriptForAddress decodes addr as a base58check Bitcoin address
// and returns the standard pay-to-pubkey-hash script paying it, suitable
// as the coinbase output script handed to internalminer.Config.CoinbaseScript.
// Only pay-to-pubkey-hash addresses are accepted; Botcoin's coinbase has
// no use for a pay-to-script-hash output (no script-execution engine to
// redeem one against).
func CoinbaseScriptForAddress(addr string) ([]byte, error) {
	if addr == "" {
		return nil, ErrInvalidMineAddress
	}

	var decoded btcutil.Address
	var err error
	for _, params := range addressNetParams {
		decoded, err = btcutil.DecodeAddress(addr, params)
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, ErrInvalidMineAddress
	}

	pkHashAddr, ok := decoded.(*btcutil.AddressPubKeyHash)
	if !ok {
		return nil, ErrInvalidMineAddress
	}
	pkHash := pkHashAddr.Hash160()

	script := make([]byte, 0, 25)
	script = append(script, opDup, opHash160, opData20)
	script = append(script, pkHash[:]...)
	script = append(script, opEqualVerify, opCheckSig)
	return script, nil
}
