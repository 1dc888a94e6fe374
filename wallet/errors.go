// Package wallet implements §4.H's operation table: the façade that wires
// the encrypted store, account model, control loops, and spend pipeline
// into one always-on account at a time.
package wallet

import (
	"github.com/duskwallet/dwd/account"
	"github.com/duskwallet/dwd/spend"
	"github.com/duskwallet/dwd/store"
	"github.com/go-errors/errors"
)

// Name is a §7 error taxonomy identifier, the only thing ever allowed to
// cross the wire as an error value.
type Name string

const (
	WrongPassword      Name = "wrong_password"
	InvalidBrainwallet Name = "invalid_brainwallet"
	NoActiveAccountSet Name = "no_active_account_set"
	Duplicate          Name = "duplicate"
	NotFound           Name = "not_found"
	NotEnoughFunds     Name = "not_enough_funds"
	InvalidAddress     Name = "invalid_address"
	ShortPassword      Name = "short_password"
	UpdatingHistory    Name = "updating_history"
)

// MinPasswordLength is the KDF's minimum acceptable password length,
// enforced before a password ever reaches crypto.Encrypt.
const MinPasswordLength = 8

// Error pairs a wire taxonomy identifier with the wrapped internal cause,
// so logs keep a stack trace without ever exposing it to a caller.
type Error struct {
	Name  Name
	cause error
}

func (e *Error) Error() string {
	if e.cause == nil {
		return string(e.Name)
	}
	return string(e.Name) + ": " + e.cause.Error()
}

// Unwrap lets errors.Is/As see through to the wrapped cause.
func (e *Error) Unwrap() error { return e.cause }

func newError(name Name, cause error) *Error {
	return &Error{Name: name, cause: cause}
}

// classify maps an internal error from account/store/spend/crypto into a
// §7 taxonomy identifier. Errors already of type *Error pass through
// unchanged.
func classify(err error) *Error {
	if err == nil {
		return nil
	}
	if werr, ok := err.(*Error); ok {
		return werr
	}

	switch {
	case errors.Is(err, store.ErrWrongPassword):
		return newError(WrongPassword, err)
	case errors.Is(err, store.ErrNotFound):
		return newError(NotFound, err)
	case errors.Is(err, spend.ErrInsufficientFunds):
		return newError(NotEnoughFunds, err)
	case errors.Is(err, spend.ErrInvalidDestination):
		return newError(InvalidAddress, err)
	case errors.Is(err, spend.ErrUpdatingHistory):
		return newError(UpdatingHistory, err)
	case errors.Is(err, account.ErrNotFound):
		return newError(NotFound, err)
	case errors.Is(err, account.ErrDuplicate):
		return newError(Duplicate, err)
	default:
		return newError(Name(err.Error()), err)
	}
}
