// Package addressvalidator classifies destination strings per §4.D: a
// payment address (mainnet/testnet, p2kh/p2sh/other) or a stealth address,
// or invalid.
package addressvalidator

import (
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcutil"
	"github.com/duskwallet/dwd/stealth"
)

// Type tags the classification of an address string.
type Type int

const (
	Invalid Type = iota
	MainnetP2KH
	MainnetP2SH
	TestnetP2KH
	TestnetP2SH
	OtherPayment
	Stealth
)

// Validator wraps a single address string and memoizes its classification.
type Validator struct {
	address string

	payment    btcutil.Address
	isTestnet  bool
	stealthAdr *stealth.Address
	typ        Type
}

// New parses and classifies address, attempting a payment address parse
// first and falling back to a stealth address parse, per §4.D's algorithm.
func New(address string) *Validator {
	v := &Validator{address: address}

	if addr, testnet, err := decodePayment(address); err == nil {
		v.payment = addr
		v.isTestnet = testnet
		v.typ = classifyPayment(addr, testnet)
		return v
	}

	if sa, err := stealth.DecodeAddress(address); err == nil {
		v.stealthAdr = sa
		v.typ = Stealth
		return v
	}

	v.typ = Invalid
	return v
}

func decodePayment(address string) (btcutil.Address, bool, error) {
	if addr, err := btcutil.DecodeAddress(address, &chaincfg.MainNetParams); err == nil {
		return addr, false, nil
	}
	if addr, err := btcutil.DecodeAddress(address, &chaincfg.TestNet3Params); err == nil {
		return addr, true, nil
	}
	return nil, false, errNotPayment
}

func classifyPayment(addr btcutil.Address, testnet bool) Type {
	switch addr.(type) {
	case *btcutil.AddressPubKeyHash:
		if testnet {
			return TestnetP2KH
		}
		return MainnetP2KH
	case *btcutil.AddressScriptHash:
		if testnet {
			return TestnetP2SH
		}
		return MainnetP2SH
	default:
		return OtherPayment
	}
}

// Type returns the classification tag.
func (v *Validator) Type() Type { return v.typ }

// IsValid reports whether the address is anything but Invalid.
func (v *Validator) IsValid() bool { return v.typ != Invalid }

// IsPayment reports whether the address is a plain payment address (p2kh,
// p2sh, or otherwise recognized script type) on either network.
func (v *Validator) IsPayment() bool {
	switch v.typ {
	case MainnetP2KH, MainnetP2SH, TestnetP2KH, TestnetP2SH, OtherPayment:
		return true
	default:
		return false
	}
}

// IsStealth reports whether the address is a stealth address.
func (v *Validator) IsStealth() bool { return v.typ == Stealth }

// IsP2KH reports whether the address is a p2kh payment address on either
// network.
func (v *Validator) IsP2KH() bool {
	return v.typ == MainnetP2KH || v.typ == TestnetP2KH
}

// IsMainnet reports whether the address is a mainnet payment address.
func (v *Validator) IsMainnet() bool {
	return v.typ == MainnetP2KH || v.typ == MainnetP2SH
}

// IsTestnet reports whether the address is a testnet payment address.
func (v *Validator) IsTestnet() bool {
	return v.typ == TestnetP2KH || v.typ == TestnetP2SH
}

// PaymentAddress returns the decoded payment address, or nil if this isn't
// one.
func (v *Validator) PaymentAddress() btcutil.Address { return v.payment }

// StealthAddress returns the decoded stealth address, or nil if this isn't
// one.
func (v *Validator) StealthAddress() *stealth.Address { return v.stealthAdr }

type notPaymentError struct{}

func (notPaymentError) Error() string { return "not a payment address" }

var errNotPayment = notPaymentError{}
