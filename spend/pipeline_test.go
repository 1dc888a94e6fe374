package spend

import (
	"context"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/duskwallet/dwd/account"
	"github.com/duskwallet/dwd/crypto"
	"github.com/duskwallet/dwd/explorer"
	"github.com/stretchr/testify/require"
)

func fundedAccount(t *testing.T) (*account.Account, string) {
	t.Helper()
	words, err := crypto.NewMnemonic()
	require.NoError(t, err)
	acct := account.New(words, true, 3)
	_, err = acct.AddPocket("master")
	require.NoError(t, err)

	pocket, ok := acct.Pocket("master")
	require.True(t, ok)
	var fundedAddr string
	for addr := range pocket.AddressIndex {
		fundedAddr = addr
		break
	}

	require.NoError(t, acct.ReplaceAddressHistory("master", fundedAddr, []*account.HistoryRow{
		{IsOutput: true, Hash: chainhash.Hash{1, 2, 3}, Index: 0, Height: 10, Value: 100_000},
	}))

	return acct, fundedAddr
}

func randomPaymentAddress(t *testing.T) string {
	t.Helper()
	priv, err := crypto.NewEphemeralKey()
	require.NoError(t, err)
	addr, err := crypto.P2KHAddress(priv.PubKey(), crypto.NetParams(true))
	require.NoError(t, err)
	return addr.EncodeAddress()
}

func TestSendBuildsSignsAndBroadcasts(t *testing.T) {
	acct, _ := fundedAccount(t)
	dest := randomPaymentAddress(t)

	var broadcast *wire.MsgTx
	mock := &explorer.Mock{
		BroadcastFn: func(ctx context.Context, tx *wire.MsgTx) error {
			broadcast = tx
			return nil
		},
	}

	payment, err := Send(context.Background(), acct, mock, "master",
		[]account.Destination{{Address: dest, Value: 50_000}}, 10)
	require.NoError(t, err)
	require.NotNil(t, broadcast)
	require.Equal(t, broadcast.TxHash(), payment.TxHash)
	require.Len(t, broadcast.TxIn, 1)
	require.NotNil(t, broadcast.TxIn[0].SignatureScript)

	pending := acct.PendingPayments()
	require.Len(t, pending, 1)
	require.Equal(t, "master", pending[0].Pocket)
}

func TestSendRejectsInvalidDestination(t *testing.T) {
	acct, _ := fundedAccount(t)
	mock := &explorer.Mock{}

	_, err := Send(context.Background(), acct, mock, "master",
		[]account.Destination{{Address: "not-an-address", Value: 1000}}, 10)
	require.ErrorIs(t, err, ErrInvalidDestination)
}

func TestSendRejectsEmptyDestinations(t *testing.T) {
	acct, _ := fundedAccount(t)
	mock := &explorer.Mock{}

	_, err := Send(context.Background(), acct, mock, "master", nil, 8)
	require.ErrorIs(t, err, ErrInvalidDestination)
}

func TestSendRejectsWhileUpdatingHistory(t *testing.T) {
	acct, _ := fundedAccount(t)
	acct.BeginHistoryRebuild()
	mock := &explorer.Mock{}

	dest := randomPaymentAddress(t)
	_, err := Send(context.Background(), acct, mock, "master",
		[]account.Destination{{Address: dest, Value: 1000}}, 10)
	require.ErrorIs(t, err, ErrUpdatingHistory)
}
