package economy

import (
	"errors"
	"net/http"
)

// Kind classifies engine failures.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindForbidden
	KindConflict
	KindInvalidInput
	KindInsufficientFunds
	KindInsufficientQuantity
)

// Error is a typed engine failure. Status is the HTTP status the
// request layer should answer with; Message is safe to show clients.
type Error struct {
	Kind    Kind
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

var (
	ErrCharacterNotFound    = &Error{KindNotFound, http.StatusNotFound, "character not found"}
	ErrCharacterForbidden   = &Error{KindForbidden, http.StatusForbidden, "character belongs to another account"}
	ErrItemNotFound         = &Error{KindNotFound, http.StatusNotFound, "item not found"}
	ErrItemNotInInventory   = &Error{KindNotFound, http.StatusNotFound, "item not in inventory"}
	ErrAlreadyEquipped      = &Error{KindConflict, http.StatusConflict, "item already equipped"}
	ErrNotEquipped          = &Error{KindNotFound, http.StatusNotFound, "item not equipped"}
	ErrInvalidCount         = &Error{KindInvalidInput, http.StatusBadRequest, "count must be a positive integer"}
	ErrInsufficientFunds    = &Error{KindInsufficientFunds, http.StatusPaymentRequired, "insufficient funds"}
	ErrInsufficientQuantity = &Error{KindInsufficientQuantity, http.StatusBadRequest, "insufficient quantity"}
)

// AsError unwraps err into an engine *Error, if it is one.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
