package account

import "github.com/go-errors/errors"

// ErrNotFound and ErrDuplicate are surfaced to the wallet façade (§7);
// callers match on these with errors.Is rather than string comparison.
var (
	ErrNotFound  = errors.New("not_found")
	ErrDuplicate = errors.New("duplicate")
)

// errNotFound/errDuplicate are package-internal aliases kept so existing
// call sites read naturally; both are the same sentinel as their exported
// counterparts.
var (
	errNotFound  = ErrNotFound
	errDuplicate = ErrDuplicate
)
