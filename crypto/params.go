package crypto

import "github.com/btcsuite/btcd/chaincfg"

// NetParams returns the chain parameters to derive keys and addresses
// against for the given testnet flag, matching §3's
// "testnet ? testnet_prefixes : mainnet_prefixes".
func NetParams(testnet bool) *chaincfg.Params {
	if testnet {
		return &chaincfg.TestNet3Params
	}
	return &chaincfg.MainNetParams
}
