package crypto

import (
	"strings"

	"github.com/go-errors/errors"
	"github.com/tyler-smith/go-bip39"
)

// NewMnemonic generates a fresh 12-word (128-bit entropy) brainwallet word
// list, used by create_account.
func NewMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(128)
	if err != nil {
		return "", errors.Errorf("generating mnemonic entropy: %v", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", errors.Errorf("encoding mnemonic: %v", err)
	}
	return mnemonic, nil
}

// ValidateMnemonic reports whether wordlist passes its BIP-39 checksum,
// surfaced on the wire as invalid_brainwallet when it doesn't.
func ValidateMnemonic(wordlist string) bool {
	return bip39.IsMnemonicValid(strings.TrimSpace(wordlist))
}

// SeedFromMnemonic decodes a word list into its BIP-39 seed, §3's
// `decode_mnemonic(wordlist)`. §8 property 1 requires
// `encode_mnemonic(decode_mnemonic(w)) = w`; since BIP-39 derivation is a
// one-way KDF, this module treats the word list itself as the canonical
// form (it's what's persisted) and only ever decodes it into a seed.
func SeedFromMnemonic(wordlist string) ([]byte, error) {
	wordlist = strings.TrimSpace(wordlist)
	if !ValidateMnemonic(wordlist) {
		return nil, errors.New("invalid_brainwallet")
	}
	return bip39.NewSeedWithErrorChecking(wordlist, "")
}
