package spend

import (
	"math/rand"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcutil"
	"github.com/duskwallet/dwd/account"
	"github.com/duskwallet/dwd/addressvalidator"
	"github.com/duskwallet/dwd/crypto"
	"github.com/duskwallet/dwd/stealth"
	"github.com/go-errors/errors"
)

// ErrInvalidDestination is returned when a destination string is neither a
// valid payment nor a valid stealth address, per §4.D.
var ErrInvalidDestination = errors.New("invalid_destination")

// plannedOutput is one output the assembled transaction will carry, before
// the final shuffle.
type plannedOutput struct {
	script []byte
	value  int64
}

// planDestinations validates every destination (§4.D) and expands stealth
// destinations into their payment output plus OP_RETURN metadata output,
// per §4.E's send_to_stealth_address. It returns the planned outputs and
// the total value to be paid out (excluding metadata outputs, which carry
// zero value).
func planDestinations(dests []account.Destination, params *chaincfg.Params) ([]plannedOutput, int64, error) {
	var outputs []plannedOutput
	var total int64

	sender := &stealth.Sender{Params: params}

	for _, dest := range dests {
		v := addressvalidator.New(dest.Address)
		if !v.IsValid() {
			return nil, 0, ErrInvalidDestination
		}

		// Only p2kh and stealth destinations are supported; the account
		// model never derives a p2sh address, so there is nothing to send
		// change back to if one were accepted here.
		switch {
		case v.IsP2KH():
			script, err := crypto.P2KHScript(v.PaymentAddress().(*btcutil.AddressPubKeyHash))
			if err != nil {
				return nil, 0, err
			}
			outputs = append(outputs, plannedOutput{script: script, value: dest.Value})

		case v.IsStealth():
			result, err := stealthSend(sender, v.StealthAddress())
			if err != nil {
				return nil, 0, err
			}
			payScript, err := crypto.P2KHScript(result.SendAddress)
			if err != nil {
				return nil, 0, err
			}
			outputs = append(outputs, plannedOutput{script: payScript, value: dest.Value})
			outputs = append(outputs, plannedOutput{script: result.MetaScript, value: 0})

		default:
			return nil, 0, ErrInvalidDestination
		}

		total += dest.Value
	}

	return outputs, total, nil
}

func stealthSend(sender *stealth.Sender, addr *stealth.Address) (*stealth.SendResult, error) {
	return sender.SendToStealthAddress(addr, nil)
}

// buildTransaction assembles the final transaction from selected inputs,
// the planned destination outputs, and a change output, shuffling output
// order for privacy per §4.G.
func buildTransaction(inputs []*account.HistoryRow, outputs []plannedOutput, changeScript []byte, change btcutil.Amount) *wire.MsgTx {
	tx := wire.NewMsgTx(wire.TxVersion)

	for _, row := range inputs {
		tx.AddTxIn(wire.NewTxIn(&wire.OutPoint{Hash: row.Hash, Index: row.Index}, nil, nil))
	}

	all := append([]plannedOutput(nil), outputs...)
	if change > 0 {
		all = append(all, plannedOutput{script: changeScript, value: int64(change)})
	}
	rand.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })

	for _, out := range all {
		tx.AddTxOut(wire.NewTxOut(out.value, out.script))
	}

	return tx
}
