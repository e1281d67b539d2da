package ledger

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/goleak"

	"cred-entry/internal/events"
	"cred-entry/internal/models"
	"cred-entry/internal/session"
)

// memLocator pins the store to one path.
type memLocator struct {
	path       string
	last       int64
	resolveErr error
	commits    int
}

func (m *memLocator) Resolve() (string, error) { return m.path, m.resolveErr }

func (m *memLocator) Commit(path string, lastID int64) error {
	m.commits++
	if lastID > m.last {
		m.last = lastID
	}
	return nil
}

func (m *memLocator) LastID(string) int64 { return m.last }

type recorder struct {
	mu     sync.Mutex
	events []events.EntryEvent
}

func (r *recorder) Publish(_ context.Context, ev events.EntryEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) Close() error { return nil }

func newEntry(cashier, bank, credit string) models.Entry {
	return models.Entry{
		Timestamp: "2025-06-15 09:30:00",
		Cashier:   cashier,
		Bank:      bank,
		Credit:    decimal.RequireFromString(credit),
	}
}

func ids(t *testing.T, table models.Table) []string {
	t.Helper()
	out := make([]string, 0, len(table.Records))
	for _, r := range table.Records {
		out = append(out, r.ID)
	}
	return out
}

func TestAppendAssignsSequentialIDs(t *testing.T) {
	ctx := context.Background()
	store := NewStore("", nil, nil)
	loc := session.NewLocator(t.TempDir(), filepath.Join(t.TempDir(), "session_state.json"))

	for i := 1; i <= 5; i++ {
		e, err := store.Append(ctx, loc, newEntry("Tigist", "CBE", "10.00"))
		require.NoError(t, err)
		assert.EqualValues(t, i, e.ID)
	}

	table, err := store.LoadAll(ctx, loc)
	require.NoError(t, err)
	assert.Equal(t, models.Headers, table.Header)
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, ids(t, table))
}

func TestCashierScenario(t *testing.T) {
	ctx := context.Background()
	store := NewStore("", nil, nil)
	loc := session.NewLocator(t.TempDir(), filepath.Join(t.TempDir(), "session_state.json"))

	first, err := store.Append(ctx, loc, newEntry("Misrak", "Abay", "150.00"))
	require.NoError(t, err)
	assert.EqualValues(t, 1, first.ID)

	second, err := store.Append(ctx, loc, newEntry("Misrak", "Dashen", "200.00"))
	require.NoError(t, err)
	assert.EqualValues(t, 2, second.ID)

	msg, err := store.Delete(ctx, loc, 1)
	require.NoError(t, err)
	assert.Equal(t, "Entry ID 1 deleted successfully.", msg)

	table, err := store.LoadAll(ctx, loc)
	require.NoError(t, err)
	require.Len(t, table.Records, 1)
	rec := table.Records[0]
	assert.Equal(t, "2", rec.ID)
	assert.Equal(t, "Misrak", rec.Cashier)
	assert.Equal(t, "Dashen", rec.Bank)
	assert.Equal(t, "2025-06-15 09:30:00", rec.Timestamp)
	assert.True(t, decimal.RequireFromString(rec.Credit).Equal(decimal.NewFromInt(200)), rec.Credit)

	third, err := store.Append(ctx, loc, newEntry("Misrak", "Awash", "5.25"))
	require.NoError(t, err)
	assert.EqualValues(t, 3, third.ID)
}

func TestDeletedMaxIDIsNotReused(t *testing.T) {
	ctx := context.Background()
	store := NewStore("", nil, nil)
	loc := session.NewLocator(t.TempDir(), filepath.Join(t.TempDir(), "session_state.json"))

	for i := 0; i < 3; i++ {
		_, err := store.Append(ctx, loc, newEntry("Emush", "Nib", "1.00"))
		require.NoError(t, err)
	}
	_, err := store.Delete(ctx, loc, 3)
	require.NoError(t, err)

	e, err := store.Append(ctx, loc, newEntry("Emush", "Nib", "1.00"))
	require.NoError(t, err)
	assert.EqualValues(t, 4, e.ID)

	p, ok := loc.Current()
	require.True(t, ok)
	assert.EqualValues(t, 4, p.LastID)
}

func TestDeleteTwiceReportsNotFound(t *testing.T) {
	ctx := context.Background()
	store := NewStore("", nil, nil)
	loc := &memLocator{path: filepath.Join(t.TempDir(), "ledger.xlsx")}

	_, err := store.Append(ctx, loc, newEntry("Adanu", "Zemen", "42.00"))
	require.NoError(t, err)

	_, err = store.Delete(ctx, loc, 1)
	require.NoError(t, err)

	msg, err := store.Delete(ctx, loc, 1)
	assert.Empty(t, msg)
	require.ErrorIs(t, err, ErrEntryNotFound)
	assert.Contains(t, err.Error(), "could not find entry ID 1 in the file")

	_, err = store.Delete(ctx, loc, 99)
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestDeleteMissingLedger(t *testing.T) {
	store := NewStore("", nil, nil)
	loc := &memLocator{path: filepath.Join(t.TempDir(), "missing.xlsx")}

	_, err := store.Delete(context.Background(), loc, 1)
	require.ErrorIs(t, err, ErrLedgerNotFound)
	assert.Contains(t, err.Error(), "file not found")
}

func TestLoadAllMissingLedgerIsEmpty(t *testing.T) {
	store := NewStore("", nil, nil)
	loc := &memLocator{path: filepath.Join(t.TempDir(), "missing.xlsx")}

	table, err := store.LoadAll(context.Background(), loc)
	require.NoError(t, err)
	assert.Equal(t, models.Headers, table.Header)
	assert.NotNil(t, table.Records)
	assert.Empty(t, table.Records)
}

func TestMalformedLedger(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "broken.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("this is not a workbook"), 0o644))

	store := NewStore("", nil, nil)
	loc := &memLocator{path: path}

	table, err := store.LoadAll(ctx, loc)
	require.ErrorIs(t, err, ErrLedgerUnreadable)
	assert.Contains(t, err.Error(), "failed to load data from")
	assert.Equal(t, models.Headers, table.Header)
	assert.Empty(t, table.Records)

	_, err = store.Append(ctx, loc, newEntry("Misrak", "Abay", "150.00"))
	require.Error(t, err)
	assert.Zero(t, loc.commits)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "this is not a workbook", string(raw), "a failed append leaves the file alone")
}

func TestLoadAllLocatesColumnsByHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reordered.xlsx")
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"Bank", "Credit", "ID", "Cashier", "Timestamp"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"CBE", "12.50", 7, "Tigist", "2025-06-15 10:00:00"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	table, err := NewStore("", nil, nil).LoadAll(context.Background(), &memLocator{path: path})
	require.NoError(t, err)
	require.Len(t, table.Records, 1)
	assert.Equal(t, models.Record{
		ID:        "7",
		Timestamp: "2025-06-15 10:00:00",
		Cashier:   "Tigist",
		Bank:      "CBE",
		Credit:    "12.50",
	}, table.Records[0])
}

func TestLoadAllMissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow(f.GetSheetName(0), "A1", &[]interface{}{"ID", "Bank"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	table, err := NewStore("", nil, nil).LoadAll(context.Background(), &memLocator{path: path})
	assert.ErrorIs(t, err, ErrLedgerUnreadable)
	assert.Empty(t, table.Records)
}

func TestAppendSkipsMalformedIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ids.xlsx")
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"ID", "Timestamp", "Cashier", "Bank", "Credit"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"abc", "2025-06-15 09:00:00", "Misrak", "Abay", 1}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{2, "2025-06-15 09:01:00", "Misrak", "Abay", 1}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	store := NewStore("", nil, nil)
	loc := &memLocator{path: path}
	e, err := store.Append(context.Background(), loc, newEntry("Misrak", "Abay", "3.00"))
	require.NoError(t, err)
	assert.EqualValues(t, 3, e.ID)

	table, err := store.LoadAll(context.Background(), loc)
	require.NoError(t, err)
	assert.Equal(t, []string{"abc", "2", "3"}, ids(t, table))
}

func TestAppendRejectsInvalidEntry(t *testing.T) {
	store := NewStore("", nil, nil)
	path := filepath.Join(t.TempDir(), "ledger.xlsx")
	loc := &memLocator{path: path}

	_, err := store.Append(context.Background(), loc, newEntry("Nobody", "Abay", "1.00"))
	assert.ErrorIs(t, err, ErrInvalidEntry)

	_, err = store.Append(context.Background(), loc, newEntry("Misrak", "Abay", "0"))
	assert.ErrorIs(t, err, ErrInvalidEntry)

	_, statErr := os.Stat(path)
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestAppendFillsTimestamp(t *testing.T) {
	store := NewStore("", nil, nil)
	loc := &memLocator{path: filepath.Join(t.TempDir(), "ledger.xlsx")}

	e := newEntry("Yemisrach", "Lion", "7.00")
	e.Timestamp = ""
	saved, err := store.Append(context.Background(), loc, e)
	require.NoError(t, err)
	assert.NotEmpty(t, saved.Timestamp)
}

func TestPointerWarningIsNotFatal(t *testing.T) {
	store := NewStore("", nil, nil)
	loc := &memLocator{
		path:       filepath.Join(t.TempDir(), "ledger.xlsx"),
		resolveErr: session.ErrPointerNotSaved,
	}

	e, err := store.Append(context.Background(), loc, newEntry("Misrak", "Abay", "150.00"))
	require.NoError(t, err)
	assert.EqualValues(t, 1, e.ID)
}

func TestUnwritablePointerKeepsOneLedger(t *testing.T) {
	ctx := context.Background()
	store := NewStore("", nil, nil)
	dir := t.TempDir()
	// the pointer path is a directory, so every pointer write fails
	loc := session.NewLocator(dir, t.TempDir())

	for i := 1; i <= 2; i++ {
		e, err := store.Append(ctx, loc, newEntry("Misrak", "Abay", "150.00"))
		require.NoError(t, err)
		assert.EqualValues(t, i, e.ID)
	}

	table, err := store.LoadAll(ctx, loc)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, ids(t, table))

	_, err = store.Delete(ctx, loc, 2)
	require.NoError(t, err)
	e, err := store.Append(ctx, loc, newEntry("Misrak", "Dashen", "20.00"))
	require.NoError(t, err)
	assert.EqualValues(t, 3, e.ID)

	files, err := filepath.Glob(filepath.Join(dir, "*.xlsx"))
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestStorePublishesEvents(t *testing.T) {
	defer goleak.VerifyNone(t)
	rec := &recorder{}
	store := NewStore("", nil, rec)
	loc := &memLocator{path: filepath.Join(t.TempDir(), "ledger.xlsx")}

	_, err := store.Append(context.Background(), loc, newEntry("Misrak", "Abay", "150.00"))
	require.NoError(t, err)
	_, err = store.Delete(context.Background(), loc, 1)
	require.NoError(t, err)

	require.Len(t, rec.events, 2)
	assert.Equal(t, events.TypeEntryRecorded, rec.events[0].Type)
	assert.Equal(t, "Abay", rec.events[0].Bank)
	assert.True(t, rec.events[0].Credit.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, events.TypeEntryDeleted, rec.events[1].Type)
	assert.EqualValues(t, 1, rec.events[1].EntryID)
	assert.Equal(t, loc.path, rec.events[1].Ledger)
}

func TestStoreHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := NewStore("", nil, nil)
	loc := &memLocator{path: filepath.Join(t.TempDir(), "ledger.xlsx")}

	_, err := store.Append(ctx, loc, newEntry("Misrak", "Abay", "1.00"))
	assert.ErrorIs(t, err, context.Canceled)
	_, err = store.Delete(ctx, loc, 1)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = store.LoadAll(ctx, loc)
	assert.ErrorIs(t, err, context.Canceled)
}
