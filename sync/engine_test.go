package sync

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

func newTestEngine(t *testing.T, xplr explorer.Explorer) (*Engine, *account.Account) {
	t.Helper()
	words, err := crypto.NewMnemonic()
	require.NoError(t, err)
	acct := account.New(words, true, 3)
	_, err = acct.AddPocket("master")
	require.NoError(t, err)
	return New(acct, xplr), acct
}

func TestUpdateChainHeadAdvancesIndex(t *testing.T) {
	hash := chainhash.Hash{1, 2, 3}
	mock := &explorer.Mock{
		LastHeightFn: func(ctx context.Context) (int32, error) { return 100, nil },
		BlockHeaderFn: func(ctx context.Context, height int32) (*explorer.BlockHeader, error) {
			return &explorer.BlockHeader{Height: height, Hash: hash}, nil
		},
	}
	e, acct := newTestEngine(t, mock)

	require.NoError(t, e.updateChainHead(context.Background()))
	require.Equal(t, int32(100), acct.CurrentIndex().Height)
}

func TestUpdateChainHeadDetectsReorg(t *testing.T) {
	calls := 0
	mock := &explorer.Mock{
		LastHeightFn: func(ctx context.Context) (int32, error) {
			calls++
			if calls == 1 {
				return 100, nil
			}
			return 99, nil
		},
		BlockHeaderFn: func(ctx context.Context, height int32) (*explorer.BlockHeader, error) {
			return &explorer.BlockHeader{Height: height, Hash: chainhash.Hash{byte(height)}}, nil
		},
	}
	e, acct := newTestEngine(t, mock)

	require.NoError(t, e.updateChainHead(context.Background()))
	acct.ReplaceAddressHistory("master", "somewhere", []*account.HistoryRow{
		{IsOutput: true, Value: 500, Height: 90},
	})
	require.NoError(t, e.updateChainHead(context.Background()))

	require.Empty(t, acct.HistoryRows(""))
}

func TestUpdateTxCacheFillsCache(t *testing.T) {
	tx := wire.NewMsgTx(wire.TxVersion)
	tx.AddTxIn(wire.NewTxIn(&wire.OutPoint{Hash: chainhash.Hash{9}}, nil, nil))
	hash := tx.TxHash()

	mock := &explorer.Mock{
		TransactionFn: func(ctx context.Context, h chainhash.Hash) (*wire.MsgTx, error) {
			return tx, nil
		},
	}
	e, acct := newTestEngine(t, mock)
	acct.ReplaceAddressHistory("master", "somewhere", []*account.HistoryRow{
		{IsOutput: true, Value: 1, Height: 10, Hash: hash},
	})

	require.NoError(t, e.updateTxCache(context.Background()))

	cached, ok := acct.CachedTransaction(hash)
	require.True(t, ok)
	require.Equal(t, hash, cached.TxHash())
}
