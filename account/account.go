package account

import (
	"math/rand"
	"sort"
	"sync"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/davecgh/go-spew/spew"
	"github.com/duskwallet/dwd/crypto"
	"github.com/duskwallet/dwd/stealth"
)

// DefaultGapLimit is the default look-ahead window of unused addresses kept
// past the highest used index, per §3.
const DefaultGapLimit = 5

// Account is the in-memory, mutable state of one wallet account. All
// mutations go through its methods so the invariants of §3 are enforced
// centrally, per §4.C.
//
// The mutex below is this Go rendition of §5's cooperative-scheduler
// discipline: control loops and the spend pipeline run as real goroutines
// here (rather than a single-threaded task scheduler), so a lock is needed
// where the spec's prose assumes shared-scheduler exclusion. Every method
// completes a whole invariant-preserving mutation before releasing it,
// matching §5's "a loop never suspends while holding a partially applied
// invariant-breaking mutation".
type Account struct {
	mu sync.RWMutex

	wordlist string
	testnet  bool
	gapLimit uint32

	currentIndex *ChainIndex

	pockets      map[string]*Pocket
	pocketOrder  []string

	history   []*HistoryRow
	nextRowID RowID

	transactions map[chainhash.Hash][]byte // tx_hash -> raw serialized tx

	sentPayments []*SentPayment

	tracker map[string]int32

	// updatingHistory is set between the reorg detector clearing history
	// and it recording the new chain index; the spend pipeline refuses
	// to run while it is set (§4.G step 1, §5).
	updatingHistory bool
}

// New creates a fresh account for wordlist, to be populated with a master
// pocket by the caller (create_account / restore_account in §4.H).
func New(wordlist string, testnet bool, gapLimit uint32) *Account {
	if gapLimit == 0 {
		gapLimit = DefaultGapLimit
	}
	return &Account{
		wordlist:     wordlist,
		testnet:      testnet,
		gapLimit:     gapLimit,
		pockets:      make(map[string]*Pocket),
		transactions: make(map[chainhash.Hash][]byte),
		tracker:      make(map[string]int32),
	}
}

// Wordlist returns the account's brainwallet word list.
func (a *Account) Wordlist() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.wordlist
}

// Testnet reports whether this account operates on testnet.
func (a *Account) Testnet() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.testnet
}

// Params returns the chain parameters this account derives keys and
// addresses against.
func (a *Account) Params() *chaincfg.Params {
	return crypto.NetParams(a.Testnet())
}

// GapLimit returns the configured look-ahead window.
func (a *Account) GapLimit() uint32 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.gapLimit
}

// RootKey derives the account's root key on demand; it is never stored
// separately from the word list, per §3's invariant.
func (a *Account) RootKey() (*crypto.HDKey, error) {
	seed, err := crypto.SeedFromMnemonic(a.Wordlist())
	if err != nil {
		return nil, err
	}
	return crypto.RootKeyFromSeed(seed, a.Params())
}

// CurrentIndex returns the account's synchronised chain tip, or nil before
// first sync.
func (a *Account) CurrentIndex() *ChainIndex {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.currentIndex
}

// CompareIndexes reports whether idx equals the account's current index,
// per §4.C's compare_indexes.
func (a *Account) CompareIndexes(idx *ChainIndex) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.currentIndex.Equal(idx)
}

// SetCurrentIndex records a new chain watermark.
func (a *Account) SetCurrentIndex(idx *ChainIndex) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.currentIndex = idx
}

// BeginHistoryRebuild marks that a reorg-triggered history rebuild is in
// progress, blocking the spend pipeline (§4.G step 1, §5).
func (a *Account) BeginHistoryRebuild() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.updatingHistory = true
}

// EndHistoryRebuild clears the rebuild-in-progress flag.
func (a *Account) EndHistoryRebuild() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.updatingHistory = false
}

// IsUpdatingHistory reports whether a reorg-triggered rebuild is in
// progress.
func (a *Account) IsUpdatingHistory() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.updatingHistory
}

// AddPocket creates a new, uniquely-named pocket, deriving its key chain and
// stealth address and immediately generating gap_limit normal keys, per
// §4.H's create_pocket.
func (a *Account) AddPocket(name string) (*Pocket, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.pockets[name]; exists {
		return nil, errDuplicate
	}

	root, err := a.rootKeyLocked()
	if err != nil {
		return nil, err
	}

	index := uint32(len(a.pocketOrder))
	pocket, err := derivePocket(root, name, index, a.Params())
	if err != nil {
		return nil, err
	}

	if err := a.growPocketLocked(pocket, a.gapLimit); err != nil {
		return nil, err
	}

	a.pockets[name] = pocket
	a.pocketOrder = append(a.pocketOrder, name)

	log.Debugf("added pocket %q at index %d: %s", name, index,
		spew.Sdump(pocket.StealthAddress))

	return pocket, nil
}

// rootKeyLocked is RootKey without re-acquiring the mutex; callers must
// already hold a.mu.
func (a *Account) rootKeyLocked() (*crypto.HDKey, error) {
	seed, err := crypto.SeedFromMnemonic(a.wordlist)
	if err != nil {
		return nil, err
	}
	return crypto.RootKeyFromSeed(seed, crypto.NetParams(a.testnet))
}

// derivePocket builds a new pocket's key material per §3: `main_key =
// root_key / H(index)`, `scan = main / H(0) / H(0)`, `spend = main / H(0) /
// H(1)`.
func derivePocket(root *crypto.HDKey, name string, index uint32, params *chaincfg.Params) (*Pocket, error) {
	mainKey, err := root.DeriveHardened(index)
	if err != nil {
		return nil, err
	}

	stealthBranch, err := mainKey.DeriveHardened(0)
	if err != nil {
		return nil, err
	}
	scanKey, err := stealthBranch.DeriveHardened(0)
	if err != nil {
		return nil, err
	}
	spendKey, err := stealthBranch.DeriveHardened(1)
	if err != nil {
		return nil, err
	}
	scanPriv, err := scanKey.PrivateKey()
	if err != nil {
		return nil, err
	}
	spendPriv, err := spendKey.PrivateKey()
	if err != nil {
		return nil, err
	}

	receiver := &stealth.Receiver{
		ScanPrivate:  scanPriv,
		SpendPrivate: spendPriv,
		Params:       params,
	}

	return &Pocket{
		Name:            name,
		Index:           index,
		MainKey:         mainKey,
		AddressIndex:    make(map[string]uint32),
		maxUsedIndex:    -1,
		StealthScanKey:  scanPriv,
		StealthSpendKey: spendPriv,
		StealthAddress:  receiver.GenerateStealthAddress(),
		StealthKeys:     make(map[string]*btcec.PrivateKey),
	}, nil
}

// growPocketLocked extends a pocket's normal key chain so that at least
// gap_limit unused keys exist past the highest used index, per §3's
// gap-limit invariant. Callers must hold a.mu for writing.
func (a *Account) growPocketLocked(p *Pocket, gapLimit uint32) error {
	want := int64(p.maxUsedIndex) + 1 + int64(gapLimit)
	for int64(len(p.Keys)) < want {
		next := uint32(len(p.Keys))
		key, err := p.MainKey.DeriveHardened(next)
		if err != nil {
			return err
		}
		pub, err := key.PublicKey()
		if err != nil {
			return err
		}
		addr, err := crypto.P2KHAddress(pub, a.Params())
		if err != nil {
			return err
		}
		p.Keys = append(p.Keys, key)
		p.AddressIndex[addr.EncodeAddress()] = next
	}
	return nil
}

// markUsedLocked records that the normal address at position index has
// appeared in history, advancing the pocket's high-water mark and
// re-growing its key chain to keep gap_limit unused keys ahead of it.
func (a *Account) markUsedLocked(p *Pocket, index uint32) error {
	if int64(index) > p.maxUsedIndex {
		p.maxUsedIndex = int64(index)
	}
	return a.growPocketLocked(p, a.gapLimit)
}

// UnusedChangeAddress returns a normal address from pocket that has not yet
// appeared in history, for the spend pipeline's change output (§4.G).
func (a *Account) UnusedChangeAddress(name string) (string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	p, ok := a.pockets[name]
	if !ok {
		return "", errNotFound
	}
	start := p.maxUsedIndex + 1
	if start >= int64(len(p.Keys)) {
		return "", errNotFound
	}
	pick := start + rand.Int63n(int64(len(p.Keys))-start)
	key := p.Keys[pick]
	pub, err := key.PublicKey()
	if err != nil {
		return "", err
	}
	addr, err := crypto.P2KHAddress(pub, a.Params())
	if err != nil {
		return "", err
	}
	return addr.EncodeAddress(), nil
}

// UnusedAddresses returns the normal addresses in pocket past its highest
// used index, the receive operation's result (§4.H): exactly the gap-limit
// window kept ahead of max_used_index. Unused addresses below that index are
// not included.
func (a *Account) UnusedAddresses(name string) ([]string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	p, ok := a.pockets[name]
	if !ok {
		return nil, errNotFound
	}
	start := p.maxUsedIndex + 1
	out := make([]string, 0, int64(len(p.Keys))-start)
	for addr, idx := range p.AddressIndex {
		if int64(idx) >= start {
			out = append(out, addr)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return p.AddressIndex[out[i]] < p.AddressIndex[out[j]]
	})
	return out, nil
}

// GrowPocket is the exported, locking entry point used by the gap-limit
// control loop (§4.F) after it observes newly-used addresses.
func (a *Account) GrowPocket(name string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	p, ok := a.pockets[name]
	if !ok {
		return errNotFound
	}
	return a.growPocketLocked(p, a.gapLimit)
}

// Pocket returns the named pocket.
func (a *Account) Pocket(name string) (*Pocket, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	p, ok := a.pockets[name]
	return p, ok
}

// Pockets returns all pockets in creation order.
func (a *Account) Pockets() []*Pocket {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]*Pocket, 0, len(a.pocketOrder))
	for _, name := range a.pocketOrder {
		out = append(out, a.pockets[name])
	}
	return out
}

// PocketNames returns all pocket names in creation order.
func (a *Account) PocketNames() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]string, len(a.pocketOrder))
	copy(out, a.pocketOrder)
	return out
}

// DeletePocket removes a pocket by name.
func (a *Account) DeletePocket(name string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.pockets[name]; !exists {
		return errNotFound
	}
	delete(a.pockets, name)
	for i, n := range a.pocketOrder {
		if n == name {
			a.pocketOrder = append(a.pocketOrder[:i], a.pocketOrder[i+1:]...)
			break
		}
	}
	return nil
}
