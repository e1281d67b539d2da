package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"cred-entry/internal/models"
)

// State of a cashier session.
type State int

const (
	NoSession State = iota
	AwaitingCashierSelection
	Active
)

func (s State) String() string {
	switch s {
	case NoSession:
		return "no_session"
	case AwaitingCashierSelection:
		return "awaiting_cashier"
	case Active:
		return "active"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Session is the context handed to every ledger operation: who is entering
// data and which ledger file they write to. It satisfies ledger.Locator.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu      sync.Mutex
	state   State
	cashier string
	bank    string
	locator *Locator
}

// New starts a session waiting for a cashier.
func New(locator *Locator) *Session {
	return &Session{
		ID:        uuid.New().String(),
		CreatedAt: time.Now(),
		state:     AwaitingCashierSelection,
		locator:   locator,
	}
}

// Snapshot is a read-only copy of the session fields.
type Snapshot struct {
	ID           string `json:"id"`
	State        string `json:"state"`
	Cashier      string `json:"cashier,omitempty"`
	SelectedBank string `json:"selected_bank,omitempty"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ID:           s.ID,
		State:        s.state.String(),
		Cashier:      s.cashier,
		SelectedBank: s.bank,
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Cashier() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cashier
}

func (s *Session) SelectedBank() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bank
}

// SelectCashier activates the session for name. Switching to a different
// cashier drops the selected bank.
func (s *Session) SelectCashier(name string) error {
	if !models.IsCashier(name) {
		return fmt.Errorf("%w: %q", ErrUnknownCashier, name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == NoSession {
		return fmt.Errorf("%w: session ended", ErrInvalidTransition)
	}
	if s.cashier != name {
		s.bank = ""
	}
	s.cashier = name
	s.state = Active
	return nil
}

// ChangeCashier returns to cashier selection.
func (s *Session) ChangeCashier() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Active {
		return fmt.Errorf("%w: no active cashier", ErrInvalidTransition)
	}
	s.cashier = ""
	s.bank = ""
	s.state = AwaitingCashierSelection
	return nil
}

func (s *Session) SelectBank(name string) error {
	if !models.IsBank(name) {
		return fmt.Errorf("%w: %q", ErrUnknownBank, name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Active {
		return fmt.Errorf("%w: select a cashier first", ErrInvalidTransition)
	}
	s.bank = name
	return nil
}

// End closes the session and clears the pointer, so the next session
// starts a fresh ledger.
func (s *Session) End() error {
	s.mu.Lock()
	s.state = NoSession
	s.cashier = ""
	s.bank = ""
	s.mu.Unlock()
	return s.locator.Clear()
}

// Resolve implements ledger.Locator.
func (s *Session) Resolve() (string, error) {
	return s.locator.Resolve()
}

// Commit implements ledger.Locator.
func (s *Session) Commit(path string, lastID int64) error {
	return s.locator.Commit(path, lastID)
}

// LastID implements ledger.Locator.
func (s *Session) LastID(path string) int64 {
	return s.locator.LastID(path)
}
