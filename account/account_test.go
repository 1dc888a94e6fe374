package account

import (
	"testing"

	"github.com/duskwallet/dwd/crypto"
	"github.com/stretchr/testify/require"
)

func newTestAccount(t *testing.T) *Account {
	t.Helper()
	words, err := crypto.NewMnemonic()
	require.NoError(t, err)
	return New(words, true, 3)
}

func TestAddPocketDerivesGapLimitKeys(t *testing.T) {
	a := newTestAccount(t)

	p, err := a.AddPocket("master")
	require.NoError(t, err)
	require.Len(t, p.Keys, 3)
	require.Len(t, p.AddressIndex, 3)
	require.NotNil(t, p.StealthAddress)
}

func TestAddPocketDuplicateRejected(t *testing.T) {
	a := newTestAccount(t)
	_, err := a.AddPocket("master")
	require.NoError(t, err)
	_, err = a.AddPocket("master")
	require.Error(t, err)
}

func TestReplaceAddressHistoryGrowsGapLimit(t *testing.T) {
	a := newTestAccount(t)
	p, err := a.AddPocket("master")
	require.NoError(t, err)

	var addr string
	for a, idx := range p.AddressIndex {
		if idx == 0 {
			addr = a
		}
	}
	require.NotEmpty(t, addr)

	err = a.ReplaceAddressHistory("master", addr, []*HistoryRow{
		{IsOutput: true, Value: 1000, Height: 100},
	})
	require.NoError(t, err)

	p, _ = a.Pocket("master")
	require.Len(t, p.Keys, 4) // maxUsedIndex 0 + 1 + gapLimit 3

	utxos := a.AllUnspentInputs("")
	require.Len(t, utxos, 1)
	require.True(t, utxos[0].IsUTXO())
}

func TestFindKeyNormalAddress(t *testing.T) {
	a := newTestAccount(t)
	p, err := a.AddPocket("master")
	require.NoError(t, err)

	var addr string
	for a, idx := range p.AddressIndex {
		if idx == 0 {
			addr = a
		}
	}

	match, ok := a.FindKey(addr)
	require.True(t, ok)
	require.Equal(t, "master", match.Pocket)
	require.False(t, match.Stealth)
}

func TestClearHistoryResetsTrackerAndIndex(t *testing.T) {
	a := newTestAccount(t)
	a.SetCurrentIndex(&ChainIndex{Height: 10})
	a.SetTrackerValue("foo", 5)

	a.ClearHistory()

	require.Nil(t, a.CurrentIndex())
	_, ok := a.TrackerValue("foo")
	require.False(t, ok)
}

func TestNewAccountHasNoPendingPayments(t *testing.T) {
	a := newTestAccount(t)
	_, err := a.AddPocket("master")
	require.NoError(t, err)

	require.Empty(t, a.PendingPayments())
}
