package crypto

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/go-errors/errors"
)

// Endorse produces an ECDSA signature with sighash=ALL over input idx of tx,
// the "endorsement" of §4.A/GLOSSARY: a signature plus a trailing sighash
// byte, used as the first data push of a p2kh input script.
func Endorse(tx *wire.MsgTx, idx int, prevScript []byte, priv *btcec.PrivateKey) ([]byte, error) {
	sig, err := txscript.RawTxInSignature(
		tx, idx, prevScript, txscript.SigHashAll, priv,
	)
	if err != nil {
		return nil, errors.Errorf("signing input %d: %v", idx, err)
	}
	return sig, nil
}
