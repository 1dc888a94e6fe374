package store

import (
	"testing"

	"github.com/duskwallet/dwd/account"
	"github.com/duskwallet/dwd/crypto"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)

	words, err := crypto.NewMnemonic()
	require.NoError(t, err)
	acct := account.New(words, true, 5)
	_, err = acct.AddPocket("master")
	require.NoError(t, err)

	require.NoError(t, s.Save("default", "hunter2hunter2", acct))
	require.True(t, s.Exists("default"))

	loaded, err := s.Load("default", "hunter2hunter2")
	require.NoError(t, err)
	require.Equal(t, words, loaded.Wordlist())

	_, ok := loaded.Pocket("master")
	require.True(t, ok)
}

func TestLoadWrongPassword(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)

	words, err := crypto.NewMnemonic()
	require.NoError(t, err)
	acct := account.New(words, true, 5)
	require.NoError(t, s.Save("default", "hunter2hunter2", acct))

	_, err = s.Load("default", "wrong password")
	require.ErrorIs(t, err, ErrWrongPassword)
}

func TestLoadNotFound(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)

	_, err = s.Load("nope", "whatever1")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteAndList(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)

	words, err := crypto.NewMnemonic()
	require.NoError(t, err)
	acct := account.New(words, true, 5)
	require.NoError(t, s.Save("alpha", "hunter2hunter2", acct))
	require.NoError(t, s.Save("beta", "hunter2hunter2", acct))

	names, err := s.List()
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"alpha", "beta"}, names)

	require.NoError(t, s.Delete("alpha"))
	require.False(t, s.Exists("alpha"))
}
