package ledger

import "errors"

var (
	// ErrLedgerNotFound the ledger file does not exist yet
	ErrLedgerNotFound = errors.New("file not found")

	// ErrEntryNotFound no row carries the requested id
	ErrEntryNotFound = errors.New("entry not found")

	// ErrLedgerUnreadable the ledger file exists but could not be opened or parsed
	ErrLedgerUnreadable = errors.New("ledger unreadable")

	// ErrInvalidEntry the entry failed validation and was not written
	ErrInvalidEntry = errors.New("invalid entry")
)
