package crypto

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcutil"
	"github.com/go-errors/errors"
	"golang.org/x/crypto/ripemd160"
)

// Hash160 returns RIPEMD160(SHA256(b)), the 20-byte digest p2kh/p2sh
// addresses and script hashes are built from.
func Hash160(b []byte) []byte {
	sha := chainhash.HashB(b)
	r := ripemd160.New()
	r.Write(sha)
	return r.Sum(nil)
}

// P2KHAddress builds the mainnet/testnet pay-to-pubkey-hash address for a
// public key, per the account model's normal and stealth-derived keys.
func P2KHAddress(pub *btcec.PublicKey, params *chaincfg.Params) (*btcutil.AddressPubKeyHash, error) {
	hash := Hash160(pub.SerializeCompressed())
	addr, err := btcutil.NewAddressPubKeyHash(hash, params)
	if err != nil {
		return nil, errors.Errorf("building p2kh address: %v", err)
	}
	return addr, nil
}

// P2KHAddressFromHash builds a p2kh address directly from a 20-byte hash,
// used when reconstructing a stealth row's derived address.
func P2KHAddressFromHash(hash []byte, params *chaincfg.Params) (*btcutil.AddressPubKeyHash, error) {
	addr, err := btcutil.NewAddressPubKeyHash(hash, params)
	if err != nil {
		return nil, errors.Errorf("building p2kh address from hash: %v", err)
	}
	return addr, nil
}

// DecodeAddress parses a base58check payment address against both known
// networks, returning whichever one it validates for along with whether it
// is testnet. It does not itself classify p2kh vs p2sh; callers switch on
// the concrete type returned.
func DecodeAddress(s string) (btcutil.Address, bool, error) {
	if addr, err := btcutil.DecodeAddress(s, &chaincfg.MainNetParams); err == nil {
		return addr, false, nil
	}
	if addr, err := btcutil.DecodeAddress(s, &chaincfg.TestNet3Params); err == nil {
		return addr, true, nil
	}
	return nil, false, errors.New("not a valid payment address on any known network")
}
