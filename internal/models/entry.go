package models

import (
	"github.com/shopspring/decimal"
)

// TimestampLayout is the display format of Entry.Timestamp.
const TimestampLayout = "2006-01-02 15:04:05"

// Headers is the fixed column set of a ledger sheet, in order.
var Headers = []string{"ID", "Timestamp", "Cashier", "Bank", "Credit"}

// Entry is one recorded cash credit.
// ID is zero until the ledger assigns one.
type Entry struct {
	ID        int64           `json:"id"`
	Timestamp string          `json:"timestamp"`
	Cashier   string          `json:"cashier"`
	Bank      string          `json:"bank"`
	Credit    decimal.Decimal `json:"credit"`
}

// Record is an entry as read back from the sheet: every column as its
// display string. ID keeps whatever the cell held, so malformed ids
// survive a load and can still be searched.
type Record struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Cashier   string `json:"cashier"`
	Bank      string `json:"bank"`
	Credit    string `json:"credit"`
}

// Values returns the columns in header order.
func (r Record) Values() []string {
	return []string{r.ID, r.Timestamp, r.Cashier, r.Bank, r.Credit}
}

// Table is the full content of a ledger.
type Table struct {
	Header  []string `json:"header"`
	Records []Record `json:"records"`
}

// EmptyTable returns a table with the fixed header and no records.
func EmptyTable() Table {
	h := make([]string, len(Headers))
	copy(h, Headers)
	return Table{Header: h, Records: []Record{}}
}
