package spend

import (
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcutil"
	"github.com/duskwallet/dwd/account"
	"github.com/stretchr/testify/require"
)

func utxoRow(value int64) *account.HistoryRow {
	return &account.HistoryRow{IsOutput: true, Hash: chainhash.Hash{byte(value)}, Value: value}
}

// TestSelectCoinsWorkedExample reproduces the coin-selection scenario: UTXOs
// [100, 300, 700], send 500 at a flat fee of 50, expects {300,700} selected
// and 450 change — the 100 UTXO is redundant once 300+700 alone covers the
// 550 required and must be trimmed, not just accumulated along the way.
func TestSelectCoinsWorkedExample(t *testing.T) {
	utxos := []*account.HistoryRow{utxoRow(100), utxoRow(300), utxoRow(700)}

	selected, change, err := SelectCoins(utxos, 500, 50)
	require.NoError(t, err)
	require.Equal(t, btcutil.Amount(450), change)
	require.Len(t, selected, 2)

	values := map[int64]bool{}
	for _, row := range selected {
		values[row.Value] = true
	}
	require.True(t, values[300])
	require.True(t, values[700])
	require.False(t, values[100])
}

func TestSelectCoinsCoversAmountAndFee(t *testing.T) {
	utxos := []*account.HistoryRow{utxoRow(1000), utxoRow(5000), utxoRow(20000)}

	selected, change, err := SelectCoins(utxos, btcutil.Amount(4000), 100)
	require.NoError(t, err)
	require.True(t, len(selected) >= 1)

	var total int64
	for _, row := range selected {
		total += row.Value
	}
	require.Equal(t, total, int64(4000)+int64(change)+100)
}

func TestSelectCoinsInsufficientFunds(t *testing.T) {
	utxos := []*account.HistoryRow{utxoRow(100)}
	_, _, err := SelectCoins(utxos, btcutil.Amount(1_000_000), 10)
	require.ErrorIs(t, err, ErrInsufficientFunds)
}
