package events

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

const (
	TypeEntryRecorded = "entry.recorded"
	TypeEntryDeleted  = "entry.deleted"
)

// EntryEvent is published after a ledger mutation has been saved.
type EntryEvent struct {
	Type       string          `json:"type"`
	EntryID    int64           `json:"entry_id"`
	Ledger     string          `json:"ledger"`
	Cashier    string          `json:"cashier,omitempty"`
	Bank       string          `json:"bank,omitempty"`
	Credit     decimal.Decimal `json:"credit"`
	Timestamp  string          `json:"timestamp,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, event EntryEvent) error
	Close() error
}

// Nop drops every event. Used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, EntryEvent) error { return nil }

func (Nop) Close() error { return nil }

var _ Publisher = Nop{}
