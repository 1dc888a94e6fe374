package sync

import (
	"bytes"
	"context"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/wire"
	"github.com/duskwallet/dwd/crypto"
	"github.com/duskwallet/dwd/stealth"
)

// testnetStealthGenesis is the earliest height the stealth scan loop will
// ever request from_height as, on testnet, per §4.F item 2.
const testnetStealthGenesis = 1_063_370

// runStealthLoop tests every OP_RETURN-tagged transaction the explorer has
// observed against each pocket's scan key, recovering the one-time
// receive key when a match is found, per §4.F and §4.E.
func (e *Engine) runStealthLoop(ctx context.Context) {
	runLoop(ctx, "stealth", e, e.updateStealth)
}

func (e *Engine) updateStealth(ctx context.Context) error {
	if e.acct.IsUpdatingHistory() {
		return nil
	}

	idx := e.acct.CurrentIndex()
	if idx == nil {
		return nil
	}

	pockets := e.acct.Pockets()

	genesis := int32(0)
	if e.acct.Testnet() {
		genesis = testnetStealthGenesis
	}

	fromHeight := int32(-1)
	for _, p := range pockets {
		addr := p.StealthAddress.String()
		h, ok := e.acct.TrackerValue(addr)
		if !ok {
			h = 0
		}
		if fromHeight == -1 || h < fromHeight {
			fromHeight = h
		}
	}
	if fromHeight < genesis {
		fromHeight = genesis
	}

	entries, err := e.explorer.Stealth(ctx, "", fromHeight)
	e.metrics.observeUpdate("stealth", err)
	if err != nil {
		return err
	}

	for _, p := range pockets {
		receiver := &stealth.Receiver{
			ScanPrivate:  p.StealthScanKey,
			SpendPrivate: p.StealthSpendKey,
			Params:       e.acct.Params(),
		}
		for _, entry := range entries {
			// The on-chain metadata carries only the ephemeral public
			// key's 32-byte X coordinate (§4.E), so both possible Y
			// parities are tried; the one whose derived address
			// actually receives an output in the transaction is the
			// real match.
			for _, parity := range [2]byte{0x02, 0x03} {
				ephemeralPub, err := btcec.ParsePubKey(append([]byte{parity}, entry.EphemeralKey...))
				if err != nil {
					continue
				}

				addr, err := receiver.DeriveAddress(ephemeralPub)
				if err != nil {
					continue
				}
				encoded := addr.EncodeAddress()
				if _, already := p.StealthKeys[encoded]; already {
					break
				}

				tx, err := e.explorer.Transaction(ctx, entry.TxHash)
				if err != nil {
					continue
				}
				if !txHasOutputToHash(tx, addr.Hash160()[:]) {
					continue
				}

				priv, err := receiver.DerivePrivate(ephemeralPub)
				if err != nil {
					continue
				}
				if err := e.acct.RecordStealthKey(p.Name, encoded, priv); err != nil {
					continue
				}
				log.Infof("recovered stealth receive address %s in pocket %q", encoded, p.Name)
				break
			}
		}
	}

	for _, p := range pockets {
		e.acct.SetTrackerValue(p.StealthAddress.String(), idx.Height)
	}

	return nil
}

// txHasOutputToHash reports whether tx pays a standard p2kh output to
// hash160.
func txHasOutputToHash(tx *wire.MsgTx, hash160 []byte) bool {
	for _, out := range tx.TxOut {
		outHash, ok := crypto.ExtractP2KHHash(out.PkScript)
		if !ok {
			continue
		}
		if bytes.Equal(outHash, hash160) {
			return true
		}
	}
	return false
}
