// Package stealth implements the receiver and sender halves of §4.E:
// deriving a fresh one-time p2kh destination per payment from a published
// stealth address, and recovering the matching private key on the receiving
// side.
package stealth

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcutil/base58"
	"github.com/go-errors/errors"
)

// version tags the stealth address encoding by network, distinguishing it
// from payment addresses the same way mainnet/testnet p2kh prefixes do.
const (
	versionMainnet byte = 0x2a
	versionTestnet byte = 0x2b
)

// Address is a stealth address: a published (scan public, spend public)
// pair a sender uses to derive a one-time payment destination. This module
// only ever publishes a single spend key per address, the case this spec
// requires (§3's pocket stealth address); libbitcoin's wire format supports
// more than one, which this encoding does not need to reproduce.
type Address struct {
	ScanPublic  *btcec.PublicKey
	SpendPublic *btcec.PublicKey
	Testnet     bool
}

// String base58check-encodes the address as `<scan_pub 33 bytes> <spend_pub
// 33 bytes>` under a network-tagged version byte.
func (a *Address) String() string {
	version := versionMainnet
	if a.Testnet {
		version = versionTestnet
	}
	data := make([]byte, 0, 66)
	data = append(data, a.ScanPublic.SerializeCompressed()...)
	data = append(data, a.SpendPublic.SerializeCompressed()...)
	return base58.CheckEncode(data, version)
}

// DecodeAddress parses a stealth address produced by String.
func DecodeAddress(s string) (*Address, error) {
	data, version, err := base58.CheckDecode(s)
	if err != nil {
		return nil, errors.Errorf("decoding stealth address: %v", err)
	}
	if version != versionMainnet && version != versionTestnet {
		return nil, errors.New("not a stealth address")
	}
	if len(data) != 66 {
		return nil, errors.New("malformed stealth address payload")
	}

	scanPub, err := btcec.ParsePubKey(data[:33])
	if err != nil {
		return nil, errors.Errorf("parsing scan public key: %v", err)
	}
	spendPub, err := btcec.ParsePubKey(data[33:])
	if err != nil {
		return nil, errors.Errorf("parsing spend public key: %v", err)
	}

	return &Address{
		ScanPublic:  scanPub,
		SpendPublic: spendPub,
		Testnet:     version == versionTestnet,
	}, nil
}
