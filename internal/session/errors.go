package session

import "errors"

var (
	// ErrPointerNotSaved the session pointer file could not be written
	ErrPointerNotSaved = errors.New("session pointer not saved")

	// ErrInvalidTransition the action is not allowed in the current state
	ErrInvalidTransition = errors.New("invalid session transition")

	// ErrUnknownCashier cashier is not in the fixed list
	ErrUnknownCashier = errors.New("unknown cashier")

	// ErrUnknownBank bank is not in the fixed list
	ErrUnknownBank = errors.New("unknown bank")

	// ErrSessionNotFound no session with the given id
	ErrSessionNotFound = errors.New("session not found")
)
