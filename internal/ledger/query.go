package ledger

import (
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"cred-entry/internal/models"
)

// Search keeps the records whose columns, joined with single spaces in
// header order, contain query case-insensitively. An empty query returns
// records as they are.
func Search(records []models.Record, query string) []models.Record {
	if query == "" {
		return records
	}
	q := strings.ToLower(query)
	out := make([]models.Record, 0, len(records))
	for _, r := range records {
		if strings.Contains(strings.ToLower(strings.Join(r.Values(), " ")), q) {
			out = append(out, r)
		}
	}
	return out
}

// SortByIDDesc returns a copy ordered newest first. Numeric ids compare as
// numbers; anything else falls back to string order after them.
func SortByIDDesc(records []models.Record) []models.Record {
	out := make([]models.Record, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		a, errA := strconv.ParseInt(out[i].ID, 10, 64)
		b, errB := strconv.ParseInt(out[j].ID, 10, 64)
		switch {
		case errA == nil && errB == nil:
			return a > b
		case errA == nil:
			return true
		case errB == nil:
			return false
		default:
			return out[i].ID > out[j].ID
		}
	})
	return out
}

type BankTotal struct {
	Bank  string          `json:"bank"`
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// Summary totals credits over a set of records.
type Summary struct {
	Count  int             `json:"count"`
	Total  decimal.Decimal `json:"total"`
	ByBank []BankTotal     `json:"by_bank"`
}

// Summarize adds up credits per bank. Records whose credit does not parse
// are counted but add nothing to the totals.
func Summarize(records []models.Record) Summary {
	sum := Summary{Total: decimal.Zero, ByBank: []BankTotal{}}
	byBank := make(map[string]*BankTotal)
	for _, r := range records {
		sum.Count++
		bt, ok := byBank[r.Bank]
		if !ok {
			bt = &BankTotal{Bank: r.Bank, Total: decimal.Zero}
			byBank[r.Bank] = bt
		}
		bt.Count++

		credit, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(r.Credit), ",", ""))
		if err != nil {
			continue
		}
		sum.Total = sum.Total.Add(credit)
		bt.Total = bt.Total.Add(credit)
	}

	for _, bt := range byBank {
		sum.ByBank = append(sum.ByBank, *bt)
	}
	sort.Slice(sum.ByBank, func(i, j int) bool { return sum.ByBank[i].Bank < sum.ByBank[j].Bank })
	return sum
}
