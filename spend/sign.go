package spend

import (
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcutil"
	"github.com/duskwallet/dwd/account"
	"github.com/duskwallet/dwd/crypto"
	"github.com/go-errors/errors"
)

// ErrKeyNotFound is returned when an input being signed spends an address
// the account holds no private key for, the signing step's analogue of
// §4.C's find_key miss.
var ErrKeyNotFound = errors.New("key_not_found")

// signTransaction fills in every input's signature script, grounded on the
// fetch-key/build-sigScript pattern of a p2kh signer: each input is looked
// up by the address of the output it spends, endorsed with sighash=ALL,
// and assembled into the canonical `<sig> <pubkey>` script (§4.G step 6).
func signTransaction(acct *account.Account, tx *wire.MsgTx, inputs []*account.HistoryRow) error {
	for i, row := range inputs {
		match, ok := acct.FindKey(row.Address)
		if !ok {
			return errors.Errorf("%v: %s", ErrKeyNotFound, row.Address)
		}

		prevAddr, _, err := crypto.DecodeAddress(row.Address)
		if err != nil {
			return err
		}
		prevScript, err := crypto.P2KHScript(prevAddr.(*btcutil.AddressPubKeyHash))
		if err != nil {
			return err
		}

		sig, err := crypto.Endorse(tx, i, prevScript, match.Private)
		if err != nil {
			return err
		}
		sigScript, err := crypto.InputSigScript(sig, match.Private.PubKey())
		if err != nil {
			return err
		}
		if !crypto.IsP2KHSigScript(sigScript) {
			return errors.Errorf("signed input %d did not produce a p2kh sigScript", i)
		}

		tx.TxIn[i].SignatureScript = sigScript
	}
	return nil
}
