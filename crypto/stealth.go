package crypto

import (
	"crypto/elliptic"
	"crypto/rand"
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/go-errors/errors"
)

// sharedSecretScalar computes the ECDH shared point between pub and priv and
// hashes its compressed encoding down to a 32-byte scalar. Because EC scalar
// multiplication is commutative, calling this with (ephemeralPub, scanPriv)
// on the receiver side and (scanPub, ephemeralPriv) on the sender side
// yields the same value — the basis for stealth address matching (§8
// property 9).
func sharedSecretScalar(pub *btcec.PublicKey, priv *btcec.PrivateKey) []byte {
	curve := btcec.S256()
	x, y := curve.ScalarMult(pub.X(), pub.Y(), priv.Serialize())
	compressed := elliptic.MarshalCompressed(curve, x, y)
	return chainhash.HashB(compressed)
}

// UncoverStealthPublic derives the one-time receive public key for a
// stealth payment, `uncover_stealth(ephemeral_pub, scan_priv, spend_pub)`
// from §4.A.
func UncoverStealthPublic(ephemeralPub *btcec.PublicKey, scanPriv *btcec.PrivateKey, spendPub *btcec.PublicKey) (*btcec.PublicKey, error) {
	secret := sharedSecretScalar(ephemeralPub, scanPriv)

	curve := btcec.S256()
	sx, sy := curve.ScalarBaseMult(secret)
	rx, ry := curve.Add(spendPub.X(), spendPub.Y(), sx, sy)
	if rx.Sign() == 0 && ry.Sign() == 0 {
		return nil, errors.New("uncover_stealth: resulting point is the identity")
	}

	fieldX := new(big.Int).Set(rx)
	fieldY := new(big.Int).Set(ry)
	return btcec.ParsePubKey(elliptic.MarshalCompressed(curve, fieldX, fieldY))
}

// UncoverStealthPrivate derives the one-time receive private key for a
// stealth payment, the symmetric call in §4.A that uses spend_priv instead
// of spend_pub.
func UncoverStealthPrivate(ephemeralPub *btcec.PublicKey, scanPriv *btcec.PrivateKey, spendPriv *btcec.PrivateKey) (*btcec.PrivateKey, error) {
	secret := sharedSecretScalar(ephemeralPub, scanPriv)

	n := btcec.S256().N
	d := new(big.Int).SetBytes(spendPriv.Serialize())
	d.Add(d, new(big.Int).SetBytes(secret))
	d.Mod(d, n)
	if d.Sign() == 0 {
		return nil, errors.New("uncover_stealth: resulting scalar is zero")
	}

	return btcec.PrivKeyFromBytes(d.FillBytes(make([]byte, 32))), nil
}

// NewEphemeralKey generates a new random secp256k1 private key from 32
// bytes of cryptographic randomness, per §4.E's
// `_random_ephemeral_secret`.
func NewEphemeralKey() (*btcec.PrivateKey, error) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, errors.Errorf("generating ephemeral key: %v", err)
	}
	return priv, nil
}

// RandomPadding returns 8 bytes of cryptographic randomness for the stealth
// metadata output, per §4.E/§4.G.
func RandomPadding() ([8]byte, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return b, errors.Errorf("generating stealth padding: %v", err)
	}
	return b, nil
}
