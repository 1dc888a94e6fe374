// Package spend implements §4.G's spend pipeline: destination validation,
// coin selection, transaction assembly, signing, broadcast and journaling.
package spend

import (
	"context"

	"github.com/btcsuite/btcutil"
	"github.com/duskwallet/dwd/account"
	"github.com/duskwallet/dwd/crypto"
	"github.com/duskwallet/dwd/explorer"
	"github.com/go-errors/errors"
)

// ErrUpdatingHistory is returned when a spend is attempted while a
// reorg-triggered history rebuild is in progress, per §4.G step 1.
var ErrUpdatingHistory = errors.New("updating_history")

// DefaultFee is used when the caller does not supply one, in whole
// satoshi, per §9's wire contract.
const DefaultFee = 1000

// Send runs the full spend pipeline for pocket: validates dests, selects
// coins, assembles and signs the transaction, broadcasts it, and journals
// it as a pending payment, per §4.G.
func Send(ctx context.Context, acct *account.Account, xplr explorer.Explorer, pocket string, dests []account.Destination, fee int64) (*account.SentPayment, error) {
	if acct.IsUpdatingHistory() {
		return nil, ErrUpdatingHistory
	}
	if len(dests) == 0 {
		return nil, ErrInvalidDestination
	}
	if fee <= 0 {
		fee = DefaultFee
	}

	params := acct.Params()

	outputs, total, err := planDestinations(dests, params)
	if err != nil {
		return nil, err
	}

	utxos := acct.AllUnspentInputs(pocket)
	selected, change, err := SelectCoins(utxos, btcutil.Amount(total), btcutil.Amount(fee))
	if err != nil {
		return nil, err
	}

	var changeScript []byte
	if change > 0 {
		changeAddrStr, err := acct.UnusedChangeAddress(pocket)
		if err != nil {
			return nil, err
		}
		changeAddr, _, err := crypto.DecodeAddress(changeAddrStr)
		if err != nil {
			return nil, err
		}
		changeScript, err = crypto.P2KHScript(changeAddr.(*btcutil.AddressPubKeyHash))
		if err != nil {
			return nil, err
		}
	}

	tx := buildTransaction(selected, outputs, changeScript, change)

	if err := signTransaction(acct, tx, selected); err != nil {
		return nil, err
	}

	if err := xplr.Broadcast(ctx, tx); err != nil {
		return nil, err
	}

	acct.SavePendingTransaction(dests, tx, pocket)

	log.Infof("broadcast payment %s from pocket %q: %d inputs, %d outputs, change %d",
		tx.TxHash(), pocket, len(selected), len(tx.TxOut), change)

	pending := acct.PendingPayments()
	if len(pending) == 0 {
		return nil, errors.New("payment journaled but not found among pending payments")
	}
	return pending[len(pending)-1], nil
}
