package crypto

import (
	"crypto/rand"

	"github.com/go-errors/errors"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"
)

const (
	// SaltSize is the length of the random salt stored alongside each
	// encrypted account record, per §6.
	SaltSize = 16

	// NonceSize is the length of the random nonce stored alongside each
	// encrypted account record, per §6.
	NonceSize = 12

	scryptN      = 1 << 15
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = chacha20poly1305.KeySize

	// MinPasswordLen is the minimum password length the KDF accepts,
	// surfaced as short_password when violated.
	MinPasswordLen = 8
)

// deriveKey stretches password into a symmetric key using scrypt, seeded
// with salt.
func deriveKey(password []byte, salt []byte) ([]byte, error) {
	key, err := scrypt.Key(password, salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return nil, errors.Errorf("deriving key: %v", err)
	}
	return key, nil
}

// Encrypt seals plaintext under password, generating a fresh random salt and
// nonce as required by §4.B's "generate a fresh salt and nonce, derive a key
// from the password, encrypt" save path. Returns the salt, nonce, and
// ciphertext to be written verbatim into the account record.
func Encrypt(password, plaintext []byte) (salt, nonce, ciphertext []byte, err error) {
	if len(password) < MinPasswordLen {
		return nil, nil, nil, errors.New("short_password")
	}

	salt = make([]byte, SaltSize)
	if _, err = rand.Read(salt); err != nil {
		return nil, nil, nil, errors.Errorf("generating salt: %v", err)
	}
	nonce = make([]byte, NonceSize)
	if _, err = rand.Read(nonce); err != nil {
		return nil, nil, nil, errors.Errorf("generating nonce: %v", err)
	}

	key, err := deriveKey(password, salt)
	if err != nil {
		return nil, nil, nil, err
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, nil, nil, errors.Errorf("constructing AEAD: %v", err)
	}

	ciphertext = aead.Seal(nil, nonce, plaintext, nil)
	return salt, nonce, ciphertext, nil
}

// Decrypt reverses Encrypt. A non-nil error here, for an otherwise
// well-formed record, means the password was wrong — §7's wrong_password.
func Decrypt(password, salt, nonce, ciphertext []byte) ([]byte, error) {
	key, err := deriveKey(password, salt)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, errors.Errorf("constructing AEAD: %v", err)
	}

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, errors.New("wrong_password")
	}
	return plaintext, nil
}
