package crypto

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcutil/hdkeychain"
	"github.com/go-errors/errors"
)

// HDKey is a thin wrapper around an hdkeychain.ExtendedKey. Higher layers
// never touch hdkeychain directly; all derivation goes through this type so
// the façade can be swapped without touching the account model.
type HDKey struct {
	ext *hdkeychain.ExtendedKey
}

// RootKeyFromSeed derives the account's root key from a BIP-32 seed, per the
// §3 invariant `root_key = HdPrivate.from_seed(decode_mnemonic(wordlist),
// testnet ? testnet_prefixes : mainnet_prefixes)`.
func RootKeyFromSeed(seed []byte, params *chaincfg.Params) (*HDKey, error) {
	ext, err := hdkeychain.NewMaster(seed, params)
	if err != nil {
		return nil, errors.Errorf("deriving root key from seed: %v", err)
	}
	return &HDKey{ext: ext}, nil
}

// Hardened returns the hardened child index for i, i.e. H(i) in the spec's
// notation.
func Hardened(i uint32) uint32 {
	return i + hdkeychain.HardenedKeyStart
}

// Child derives the child key at the given raw BIP-32 index. Callers pass
// Hardened(i) for hardened derivation or i directly for normal derivation.
func (k *HDKey) Child(index uint32) (*HDKey, error) {
	child, err := k.ext.Child(index)
	if err != nil {
		return nil, errors.Errorf("deriving child %d: %v", index, err)
	}
	return &HDKey{ext: child}, nil
}

// DeriveHardened is shorthand for Child(Hardened(i)) — the `/H(i)` notation
// used throughout §3.
func (k *HDKey) DeriveHardened(i uint32) (*HDKey, error) {
	return k.Child(Hardened(i))
}

// Serialize returns the extended key's base58-check serialization. Account
// snapshots do not store it; pocket keys are re-derived from the word list.
func (k *HDKey) Serialize() string {
	return k.ext.String()
}

// ParseHDKey reconstructs an HDKey from its serialized form.
func ParseHDKey(s string, params *chaincfg.Params) (*HDKey, error) {
	ext, err := hdkeychain.NewKeyFromString(s, params)
	if err != nil {
		return nil, errors.Errorf("parsing extended key: %v", err)
	}
	return &HDKey{ext: ext}, nil
}

// PrivateKey returns the secp256k1 private key this extended key represents.
// The extended key must not be a neutered (public-only) key.
func (k *HDKey) PrivateKey() (*btcec.PrivateKey, error) {
	return k.ext.ECPrivKey()
}

// PublicKey returns the secp256k1 public key this extended key represents.
func (k *HDKey) PublicKey() (*btcec.PublicKey, error) {
	return k.ext.ECPubKey()
}
