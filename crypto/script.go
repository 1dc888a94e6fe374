package crypto

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcutil"
	"github.com/go-errors/errors"
)

// P2KHScript builds the standard `OP_DUP OP_HASH160 <hash> OP_EQUALVERIFY
// OP_CHECKSIG` output script for a p2kh address, per §4.G step 5.
func P2KHScript(addr *btcutil.AddressPubKeyHash) ([]byte, error) {
	return txscript.NewScriptBuilder().
		AddOp(txscript.OP_DUP).
		AddOp(txscript.OP_HASH160).
		AddData(addr.Hash160()[:]).
		AddOp(txscript.OP_EQUALVERIFY).
		AddOp(txscript.OP_CHECKSIG).
		Script()
}

// StealthMetaScript builds the OP_RETURN metadata output script whose single
// 40-byte push carries the sender's ephemeral public key and 8 bytes of
// padding, per §4.E's
// `meta_script = OP_RETURN || (ephemeral_public[1:33] || 8 random bytes)`.
func StealthMetaScript(ephemeralPub *btcec.PublicKey, padding [8]byte) ([]byte, error) {
	compressed := ephemeralPub.SerializeCompressed()
	if len(compressed) != 33 {
		return nil, errors.New("unexpected compressed public key length")
	}
	payload := make([]byte, 0, 40)
	payload = append(payload, compressed[1:33]...)
	payload = append(payload, padding[:]...)

	return txscript.NewScriptBuilder().
		AddOp(txscript.OP_RETURN).
		AddData(payload).
		Script()
}

// InputSigScript builds the `<sig> <pubkey>` signature script used to spend
// a p2kh output, per §4.G step 6.
func InputSigScript(sig []byte, pub *btcec.PublicKey) ([]byte, error) {
	return txscript.NewScriptBuilder().
		AddData(sig).
		AddData(pub.SerializeCompressed()).
		Script()
}

// IsP2KHSigScript reports whether sigScript has the canonical `<sig>
// <pubkey>` shape expected for a p2kh input, the invariant checked at the
// end of §4.G step 6 ("assert the resulting script matches the p2kh sign
// pattern").
func IsP2KHSigScript(sigScript []byte) bool {
	tokenizer := txscript.MakeScriptTokenizer(0, sigScript)
	pushes := 0
	for tokenizer.Next() {
		if tokenizer.Data() == nil {
			return false
		}
		pushes++
	}
	return tokenizer.Err() == nil && pushes == 2
}

// ExtractP2KHHash returns the 20-byte hash encoded in a p2kh output script,
// or ok=false if script is not p2kh shaped. Used by the spend pipeline's
// signing step to locate the key that controls a referenced previous
// output.
func ExtractP2KHHash(script []byte) (hash []byte, ok bool) {
	if len(script) != 25 ||
		script[0] != txscript.OP_DUP ||
		script[1] != txscript.OP_HASH160 ||
		script[2] != txscript.OP_DATA_20 ||
		script[23] != txscript.OP_EQUALVERIFY ||
		script[24] != txscript.OP_CHECKSIG {
		return nil, false
	}
	return script[3:23], true
}
