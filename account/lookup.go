package account

import (
	"github.com/btcsuite/btcd/btcec/v2"
)

// KeyMatch describes a private key recovered for a known address, along
// with the pocket it belongs to.
type KeyMatch struct {
	Pocket  string
	Address string
	Private *btcec.PrivateKey
	// Stealth is true when Address was recovered by the stealth scan
	// loop rather than being one of the pocket's normal addresses.
	Stealth bool
}

// FindKey searches every pocket's normal addresses first, then its
// recovered stealth addresses, for a spending key matching address, per
// §4.C's find_key. A normal address found in any pocket wins over a
// stealth address recorded in an earlier pocket.
func (a *Account) FindKey(address string) (*KeyMatch, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	for _, name := range a.pocketOrder {
		p := a.pockets[name]
		if idx, ok := p.AddressIndex[address]; ok {
			priv, err := p.Keys[idx].PrivateKey()
			if err != nil {
				continue
			}
			return &KeyMatch{Pocket: name, Address: address, Private: priv}, true
		}
	}

	for _, name := range a.pocketOrder {
		p := a.pockets[name]
		if priv, ok := p.StealthKeys[address]; ok {
			return &KeyMatch{Pocket: name, Address: address, Private: priv, Stealth: true}, true
		}
	}

	return nil, false
}

// RecordStealthKey registers a private key the stealth scan loop recovered
// for address in pocket name (§4.F's stealth scan loop).
func (a *Account) RecordStealthKey(pocketName, address string, priv *btcec.PrivateKey) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	p, ok := a.pockets[pocketName]
	if !ok {
		return errNotFound
	}
	p.StealthKeys[address] = priv
	return nil
}

// OwnsAddress reports whether address belongs to some pocket, either as a
// normal address or a previously-recovered stealth address.
func (a *Account) OwnsAddress(address string) (pocket string, ok bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, name := range a.pocketOrder {
		p := a.pockets[name]
		if _, ok := p.AddressIndex[address]; ok {
			return name, true
		}
		if _, ok := p.StealthKeys[address]; ok {
			return name, true
		}
	}
	return "", false
}
