package stealth

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcutil"
	"github.com/duskwallet/dwd/crypto"
	"github.com/go-errors/errors"
)

// Receiver holds one pocket's stealth scan and spend keys and derives
// per-payment receive keys from a sender's ephemeral public key (§4.E).
type Receiver struct {
	ScanPrivate  *btcec.PrivateKey
	SpendPrivate *btcec.PrivateKey
	Params       *chaincfg.Params
}

// GenerateStealthAddress emits the stealth address clients publish to
// receive payments, `(scan_public, [spend_public])` in §4.E's notation.
func (r *Receiver) GenerateStealthAddress() *Address {
	return &Address{
		ScanPublic:  r.ScanPrivate.PubKey(),
		SpendPublic: r.SpendPrivate.PubKey(),
		Testnet:     r.Params.Net != (&chaincfg.MainNetParams).Net,
	}
}

// DeriveAddress computes the candidate receive address for a given sender
// ephemeral public key.
func (r *Receiver) DeriveAddress(ephemeralPub *btcec.PublicKey) (*btcutil.AddressPubKeyHash, error) {
	receiverPub, err := crypto.UncoverStealthPublic(ephemeralPub, r.ScanPrivate, r.SpendPrivate.PubKey())
	if err != nil {
		return nil, err
	}
	return crypto.P2KHAddress(receiverPub, r.Params)
}

// DerivePrivate computes the private key matching DeriveAddress's output,
// recoverable only by the holder of the scan and spend private keys.
func (r *Receiver) DerivePrivate(ephemeralPub *btcec.PublicKey) (*btcec.PrivateKey, error) {
	return crypto.UncoverStealthPrivate(ephemeralPub, r.ScanPrivate, r.SpendPrivate)
}

// Sender derives a one-time send address and accompanying OP_RETURN
// metadata for a stealth payment.
type Sender struct {
	Params *chaincfg.Params
}

// SendResult is the outcome of SendToStealthAddress: the metadata output
// script to include alongside the payment output, and the one-time address
// to pay the destination value to.
type SendResult struct {
	MetaScript  []byte
	SendAddress *btcutil.AddressPubKeyHash
}

// SendToStealthAddress implements §4.E's send_to_stealth_address: if
// ephemeralPriv is nil, a fresh one is generated from cryptographic
// randomness.
func (s *Sender) SendToStealthAddress(addr *Address, ephemeralPriv *btcec.PrivateKey) (*SendResult, error) {
	if ephemeralPriv == nil {
		priv, err := crypto.NewEphemeralKey()
		if err != nil {
			return nil, err
		}
		ephemeralPriv = priv
	}

	senderPub, err := crypto.UncoverStealthPublic(addr.ScanPublic, ephemeralPriv, addr.SpendPublic)
	if err != nil {
		return nil, errors.Errorf("deriving stealth send address: %v", err)
	}
	sendAddr, err := crypto.P2KHAddress(senderPub, s.Params)
	if err != nil {
		return nil, err
	}

	padding, err := crypto.RandomPadding()
	if err != nil {
		return nil, err
	}
	metaScript, err := crypto.StealthMetaScript(ephemeralPriv.PubKey(), padding)
	if err != nil {
		return nil, err
	}

	return &SendResult{MetaScript: metaScript, SendAddress: sendAddr}, nil
}
