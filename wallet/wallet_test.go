package wallet

import (
	"context"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/duskwallet/dwd/account"
	"github.com/duskwallet/dwd/explorer"
	"github.com/stretchr/testify/require"
)

// quietMock answers every Explorer method with a harmless zero value, so
// an Engine's control loops can run in the background during these tests
// without a nil function field panicking.
func quietMock() *explorer.Mock {
	return &explorer.Mock{
		LastHeightFn: func(ctx context.Context) (int32, error) { return 0, nil },
		BlockHeaderFn: func(ctx context.Context, height int32) (*explorer.BlockHeader, error) {
			return &explorer.BlockHeader{Height: height}, nil
		},
		HistoryFn: func(ctx context.Context, address string) ([]explorer.HistoryEntry, error) {
			return nil, nil
		},
		TransactionFn: func(ctx context.Context, hash chainhash.Hash) (*wire.MsgTx, error) {
			return wire.NewMsgTx(wire.TxVersion), nil
		},
		StealthFn: func(ctx context.Context, prefix string, fromHeight int32) ([]explorer.StealthEntry, error) {
			return nil, nil
		},
		BroadcastFn: func(ctx context.Context, tx *wire.MsgTx) error { return nil },
	}
}

func newTestWallet(t *testing.T) *Wallet {
	t.Helper()
	old := dialExplorer
	dialExplorer = func(url string) (explorer.Explorer, error) {
		return quietMock(), nil
	}
	t.Cleanup(func() { dialExplorer = old })

	cfg := DefaultConfig()
	w, err := New(t.TempDir(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { w.Stop() })
	return w
}

func TestCreateAccountActivatesAndPersists(t *testing.T) {
	w := newTestWallet(t)

	require.NoError(t, w.CreateAccount("alice", "hunter2hunter2", true))

	active, all, err := w.ListAccounts()
	require.NoError(t, err)
	require.Equal(t, "alice", active)
	require.Equal(t, []string{"alice"}, all)

	pockets, err := w.ListPockets()
	require.NoError(t, err)
	require.Equal(t, []string{"master"}, pockets)

	addrs, err := w.Receive("")
	require.NoError(t, err)
	require.Len(t, addrs, int(account.DefaultGapLimit))

	require.NoError(t, w.Stop())
}

func TestCreateAccountDuplicateName(t *testing.T) {
	w := newTestWallet(t)
	require.NoError(t, w.CreateAccount("alice", "hunter2hunter2", true))
	err := w.CreateAccount("alice", "hunter2hunter2", true)

	werr, ok := err.(*Error)
	require.True(t, ok)
	require.Equal(t, Duplicate, werr.Name)
}

func TestCreateAccountShortPassword(t *testing.T) {
	w := newTestWallet(t)
	err := w.CreateAccount("alice", "short", true)

	werr, ok := err.(*Error)
	require.True(t, ok)
	require.Equal(t, ShortPassword, werr.Name)
}

func TestOperationsRequireActiveAccount(t *testing.T) {
	w := newTestWallet(t)

	_, err := w.Seed()
	werr, ok := err.(*Error)
	require.True(t, ok)
	require.Equal(t, NoActiveAccountSet, werr.Name)
}

func TestSendRejectedWhileUpdatingHistory(t *testing.T) {
	w := newTestWallet(t)
	require.NoError(t, w.CreateAccount("alice", "hunter2hunter2", true))

	w.active.BeginHistoryRebuild()

	_, err := w.Send([]account.Destination{{Address: "invalid", Value: 1}}, "master", 10)
	werr, ok := err.(*Error)
	require.True(t, ok)
	require.Equal(t, UpdatingHistory, werr.Name)
}

func TestGetSetSetting(t *testing.T) {
	w := newTestWallet(t)

	require.NoError(t, w.SetSetting("gap_limit", "7"))
	v, err := w.GetSetting("gap_limit")
	require.NoError(t, err)
	require.Equal(t, "7", v)

	_, err = w.GetSetting("not_a_real_setting")
	werr, ok := err.(*Error)
	require.True(t, ok)
	require.Equal(t, NotFound, werr.Name)
}

func TestDeleteAccountClearsActive(t *testing.T) {
	w := newTestWallet(t)
	require.NoError(t, w.CreateAccount("alice", "hunter2hunter2", true))

	require.NoError(t, w.DeleteAccount("alice"))

	_, err := w.Seed()
	werr, ok := err.(*Error)
	require.True(t, ok)
	require.Equal(t, NoActiveAccountSet, werr.Name)
}
