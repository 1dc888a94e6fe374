package wallet

import (
	"context"
	"math/rand"
	"sort"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/duskwallet/dwd/account"
	"github.com/duskwallet/dwd/crypto"
	"github.com/duskwallet/dwd/explorer"
	"github.com/duskwallet/dwd/spend"
	"github.com/duskwallet/dwd/store"
	"github.com/duskwallet/dwd/sync"
)

// dialExplorer is a package variable so tests can substitute an
// in-memory Explorer instead of actually dialing a websocket URL.
var dialExplorer = func(url string) (explorer.Explorer, error) {
	client, err := explorer.Dial(url)
	if err != nil {
		return nil, err
	}
	return explorer.NewRateLimited(client, 8, 4), nil
}

// Wallet is the §4.H façade: one encrypted store, at most one active
// account, and the control-loop engine running against it.
type Wallet struct {
	cfg   *Config
	store *store.Store

	activeName string
	active     *account.Account
	engine     *sync.Engine
}

// New returns a façade storing accounts under storeDir and configured by
// cfg (a nil cfg falls back to DefaultConfig()).
func New(storeDir string, cfg *Config) (*Wallet, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	s, err := store.New(storeDir)
	if err != nil {
		return nil, err
	}
	return &Wallet{cfg: cfg, store: s}, nil
}

func (w *Wallet) requireActive() (*account.Account, error) {
	if w.active == nil {
		return nil, newError(NoActiveAccountSet, nil)
	}
	return w.active, nil
}

func (w *Wallet) requireNotRebuilding() (*account.Account, error) {
	acct, err := w.requireActive()
	if err != nil {
		return nil, err
	}
	if acct.IsUpdatingHistory() {
		return nil, newError(UpdatingHistory, nil)
	}
	return acct, nil
}

func (w *Wallet) spawn(name string, acct *account.Account, testnet bool) error {
	url := explorerURL(w.cfg, testnet)
	xplr, err := dialExplorer(url)
	if err != nil {
		return err
	}

	engine := sync.New(acct, xplr)
	engine.Start(context.Background())

	w.activeName = name
	w.active = acct
	w.engine = engine
	log.Infof("account %q active, testnet=%v", name, testnet)
	return nil
}

// CreateAccount implements §4.H's create_account.
func (w *Wallet) CreateAccount(name, password string, testnet bool) error {
	if len(password) < MinPasswordLength {
		return newError(ShortPassword, nil)
	}
	if w.store.Exists(name) {
		return newError(Duplicate, nil)
	}

	wordlist, err := crypto.NewMnemonic()
	if err != nil {
		return err
	}
	acct := account.New(wordlist, testnet, gapLimitOrDefault(w.cfg))
	if _, err := acct.AddPocket(w.cfg.MasterPocketName); err != nil {
		return classify(err)
	}
	if err := w.store.Save(name, password, acct); err != nil {
		return classify(err)
	}

	if err := w.spawn(name, acct, testnet); err != nil {
		return err
	}
	return nil
}

// RestoreAccount implements §4.H's restore_account.
func (w *Wallet) RestoreAccount(name, wordlist, password string, testnet bool) error {
	if len(password) < MinPasswordLength {
		return newError(ShortPassword, nil)
	}
	if w.store.Exists(name) {
		return newError(Duplicate, nil)
	}
	if !crypto.ValidateMnemonic(wordlist) {
		return newError(InvalidBrainwallet, nil)
	}

	acct := account.New(wordlist, testnet, gapLimitOrDefault(w.cfg))
	if _, err := acct.AddPocket(w.cfg.MasterPocketName); err != nil {
		return classify(err)
	}
	if err := w.store.Save(name, password, acct); err != nil {
		return classify(err)
	}

	return w.spawn(name, acct, testnet)
}

// SetAccount implements §4.H's set_account.
func (w *Wallet) SetAccount(name, password string) error {
	acct, err := w.store.Load(name, password)
	if err != nil {
		return classify(err)
	}
	if w.engine != nil {
		w.engine.Stop()
	}
	return w.spawn(name, acct, acct.Testnet())
}

// DeleteAccount implements §4.H's delete_account.
func (w *Wallet) DeleteAccount(name string) error {
	if err := w.store.Delete(name); err != nil {
		return classify(err)
	}
	if w.activeName == name {
		if w.engine != nil {
			w.engine.Stop()
		}
		w.activeName = ""
		w.active = nil
		w.engine = nil
	}
	return nil
}

// ListAccounts implements §4.H's list_accounts.
func (w *Wallet) ListAccounts() (active string, all []string, err error) {
	names, err := w.store.List()
	if err != nil {
		return "", nil, err
	}
	sort.Strings(names)
	return w.activeName, names, nil
}

// Seed implements §4.H's seed.
func (w *Wallet) Seed() (string, error) {
	acct, err := w.requireActive()
	if err != nil {
		return "", err
	}
	return acct.Wordlist(), nil
}

// ListPockets implements §4.H's list_pockets.
func (w *Wallet) ListPockets() ([]string, error) {
	acct, err := w.requireActive()
	if err != nil {
		return nil, err
	}
	return acct.PocketNames(), nil
}

// CreatePocket implements §4.H's create_pocket.
func (w *Wallet) CreatePocket(name string) error {
	acct, err := w.requireActive()
	if err != nil {
		return err
	}
	if _, err := acct.AddPocket(name); err != nil {
		return classify(err)
	}
	return nil
}

// DeletePocket implements §4.H's delete_pocket.
func (w *Wallet) DeletePocket(name string) error {
	acct, err := w.requireActive()
	if err != nil {
		return err
	}
	if err := acct.DeletePocket(name); err != nil {
		return classify(err)
	}
	return nil
}

// Balance implements §4.H's balance: the sum of every UTXO's value in
// pocket, or across all pockets when pocket is empty.
func (w *Wallet) Balance(pocket string) (int64, error) {
	acct, err := w.requireNotRebuilding()
	if err != nil {
		return 0, err
	}
	var total int64
	for _, row := range acct.AllUnspentInputs(pocket) {
		total += row.Value
	}
	return total, nil
}

// History implements §4.H's history, eliding any output row that is our
// own send's change rather than a genuine receive.
func (w *Wallet) History(pocket string) ([]*account.HistoryRow, error) {
	acct, err := w.requireNotRebuilding()
	if err != nil {
		return nil, err
	}

	change := changeOutputs(acct)

	rows := acct.HistoryRows(pocket)
	out := make([]*account.HistoryRow, 0, len(rows))
	for _, row := range rows {
		if row.IsOutput && change[changeKey{row.Hash, row.Index}] {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

type changeKey struct {
	hash  chainhash.Hash
	index uint32
}

// changeOutputs identifies (hash, index) pairs that are a change output of
// one of our own journaled sends: an output of a transaction we
// broadcast, at an index that is not one of the payment's destinations.
func changeOutputs(acct *account.Account) map[changeKey]bool {
	out := make(map[changeKey]bool)
	for _, payment := range acct.SentPayments() {
		destAddrs := make(map[string]bool, len(payment.Destinations))
		for _, d := range payment.Destinations {
			destAddrs[d.Address] = true
		}
		for i, txOut := range payment.Tx.TxOut {
			addr, ok := crypto.ExtractP2KHHash(txOut.PkScript)
			if !ok {
				continue
			}
			paymentAddr, err := crypto.P2KHAddressFromHash(addr, acct.Params())
			if err != nil {
				continue
			}
			if !destAddrs[paymentAddr.EncodeAddress()] {
				out[changeKey{payment.TxHash, uint32(i)}] = true
			}
		}
	}
	return out
}

// Receive implements §4.H's receive.
func (w *Wallet) Receive(pocket string) ([]string, error) {
	acct, err := w.requireActive()
	if err != nil {
		return nil, err
	}
	if pocket == "" {
		pocket = w.cfg.MasterPocketName
	}
	addrs, err := acct.UnusedAddresses(pocket)
	if err != nil {
		return nil, classify(err)
	}
	return addrs, nil
}

// Stealth implements §4.H's stealth: the pocket's stealth address, or a
// random pocket's when pocket is empty.
func (w *Wallet) Stealth(pocket string) (string, error) {
	acct, err := w.requireActive()
	if err != nil {
		return "", err
	}
	if pocket == "" {
		names := acct.PocketNames()
		if len(names) == 0 {
			return "", newError(NotFound, nil)
		}
		pocket = names[rand.Intn(len(names))]
	}
	p, ok := acct.Pocket(pocket)
	if !ok {
		return "", newError(NotFound, nil)
	}
	return p.StealthAddress.String(), nil
}

// Send implements §4.H's send.
func (w *Wallet) Send(dests []account.Destination, pocket string, fee int64) (chainhash.Hash, error) {
	acct, err := w.requireNotRebuilding()
	if err != nil {
		return chainhash.Hash{}, err
	}
	if w.engine == nil {
		return chainhash.Hash{}, newError(NoActiveAccountSet, nil)
	}

	payment, err := spend.Send(context.Background(), acct, w.engineExplorer(), pocket, dests, fee)
	if err != nil {
		return chainhash.Hash{}, classify(err)
	}
	return payment.TxHash, nil
}

// engineExplorer exposes the running engine's Explorer to the spend
// pipeline, so both share the same rate limiter and connection.
func (w *Wallet) engineExplorer() explorer.Explorer {
	return w.engine.Explorer()
}

// Metrics returns the active account's control-loop metrics registry, for
// the daemon's debug HTTP listener, or nil if no account is active.
func (w *Wallet) Metrics() *sync.Metrics {
	if w.engine == nil {
		return nil
	}
	return w.engine.Metrics()
}

// PendingPayments implements §4.H's pending_payments.
func (w *Wallet) PendingPayments(pocket string) ([]*account.SentPayment, error) {
	acct, err := w.requireActive()
	if err != nil {
		return nil, err
	}
	var out []*account.SentPayment
	for _, p := range acct.PendingPayments() {
		if pocket != "" && p.Pocket != pocket {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// GetHeight implements §4.H's get_height: the latest height the control
// loops have recorded from the explorer.
func (w *Wallet) GetHeight() (int32, error) {
	acct, err := w.requireActive()
	if err != nil {
		return 0, err
	}
	idx := acct.CurrentIndex()
	if idx == nil {
		return 0, nil
	}
	return idx.Height, nil
}

// GetSetting implements §4.H's get_setting.
func (w *Wallet) GetSetting(name string) (string, error) {
	return getSetting(w.cfg, name)
}

// SetSetting implements §4.H's set_setting.
func (w *Wallet) SetSetting(name, value string) error {
	return setSetting(w.cfg, name, value)
}

// Stop implements §4.H's stop: cancels the control loops and clears the
// active account. The explorer connection the engine used is not closed.
func (w *Wallet) Stop() error {
	if w.engine != nil {
		w.engine.Stop()
		w.engine = nil
	}
	w.active = nil
	w.activeName = ""
	return nil
}
