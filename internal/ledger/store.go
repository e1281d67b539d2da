package ledger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"cred-entry/internal/events"
	"cred-entry/internal/models"
	"cred-entry/internal/util"
)

// creditNumFmt is the built-in "0.00" number format.
const creditNumFmt = 2

const publishTimeout = 5 * time.Second

// Locator tells the store which workbook a session writes to and keeps
// the id high-water mark for it. session.Session and session.Locator
// implement it.
type Locator interface {
	// Resolve always returns a usable path; the error is a warning.
	Resolve() (string, error)
	Commit(path string, lastID int64) error
	LastID(path string) int64
}

// Store keeps ledger entries in xlsx workbooks, one sheet per file. Every
// operation opens the workbook, works on it and closes it again.
//
// The mutex only orders operations inside this process. Two processes
// writing the same file can still lose an update.
type Store struct {
	sheet  string
	logger *zap.Logger
	events events.Publisher

	mu sync.Mutex
}

func NewStore(sheet string, logger *zap.Logger, pub events.Publisher) *Store {
	if sheet == "" {
		sheet = "Entries"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if pub == nil {
		pub = events.Nop{}
	}
	return &Store{
		sheet:  sheet,
		logger: logger,
		events: pub,
	}
}

// Append assigns the next id to e, writes it as a new row and returns it.
// An empty Timestamp is filled with the current time.
func (s *Store) Append(ctx context.Context, loc Locator, e models.Entry) (models.Entry, error) {
	if err := ctx.Err(); err != nil {
		return models.Entry{}, err
	}
	if e.Timestamp == "" {
		e.Timestamp = time.Now().Format(models.TimestampLayout)
	}
	e.Credit = e.Credit.Round(2)
	if err := util.ValidateEntry(e); err != nil {
		return models.Entry{}, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	path := s.resolve(loc)

	s.mu.Lock()
	defer s.mu.Unlock()

	f, sheet, err := s.openOrCreate(path)
	if err != nil {
		return models.Entry{}, err
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return models.Entry{}, fmt.Errorf("%w: read rows: %v", ErrLedgerUnreadable, err)
	}
	if len(rows) == 0 {
		if err := writeHeader(f, sheet); err != nil {
			return models.Entry{}, err
		}
		rows = [][]string{models.Headers}
	}

	idCol := columnIndex(rows[0])["ID"]
	ids := make([]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		ids = append(ids, cellAt(row, idCol))
	}
	e.ID = NextID(ids)
	if hw := loc.LastID(path); hw >= e.ID {
		e.ID = hw + 1
	}

	credit, _ := e.Credit.Float64()
	rowNum := len(rows) + 1
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return models.Entry{}, err
	}
	if err := f.SetSheetRow(sheet, cell, &[]interface{}{e.ID, e.Timestamp, e.Cashier, e.Bank, credit}); err != nil {
		return models.Entry{}, fmt.Errorf("write row: %w", err)
	}
	if err := s.formatCredit(f, sheet, rowNum); err != nil {
		return models.Entry{}, err
	}

	if err := save(f, path); err != nil {
		return models.Entry{}, err
	}
	if err := loc.Commit(path, e.ID); err != nil {
		s.logger.Warn("session pointer not updated", zap.String("ledger", path), zap.Error(err))
	}

	s.publish(ctx, events.EntryEvent{
		Type:      events.TypeEntryRecorded,
		EntryID:   e.ID,
		Ledger:    path,
		Cashier:   e.Cashier,
		Bank:      e.Bank,
		Credit:    e.Credit,
		Timestamp: e.Timestamp,
	})
	s.logger.Info("entry recorded",
		zap.Int64("id", e.ID),
		zap.String("cashier", e.Cashier),
		zap.String("bank", e.Bank),
		zap.String("credit", e.Credit.StringFixed(2)),
		zap.String("ledger", path),
	)
	return e, nil
}

// Delete removes the first row whose id equals id. Later ids keep their
// numbers. The returned message is meant for the cashier.
func (s *Store) Delete(ctx context.Context, loc Locator, id int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path := s.resolve(loc)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !fileExists(path) {
		return "", fmt.Errorf("%w: %s", ErrLedgerNotFound, path)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrLedgerUnreadable, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	rows, err := f.GetRows(sheet)
	if err != nil {
		return "", fmt.Errorf("%w: read rows: %v", ErrLedgerUnreadable, err)
	}
	if len(rows) == 0 {
		return "", fmt.Errorf("%w: could not find entry ID %d in the file", ErrEntryNotFound, id)
	}

	target := strconv.FormatInt(id, 10)
	idCol := columnIndex(rows[0])["ID"]
	for i := 1; i < len(rows); i++ {
		if strings.TrimSpace(cellAt(rows[i], idCol)) != target {
			continue
		}
		if err := f.RemoveRow(sheet, i+1); err != nil {
			return "", fmt.Errorf("remove row: %w", err)
		}
		if err := save(f, path); err != nil {
			return "", err
		}
		s.publish(ctx, events.EntryEvent{
			Type:    events.TypeEntryDeleted,
			EntryID: id,
			Ledger:  path,
		})
		s.logger.Info("entry deleted", zap.Int64("id", id), zap.String("ledger", path))
		return fmt.Sprintf("Entry ID %d deleted successfully.", id), nil
	}
	return "", fmt.Errorf("%w: could not find entry ID %d in the file", ErrEntryNotFound, id)
}

// LoadAll reads every row back. A missing ledger is an empty table. An
// unreadable one is also returned as an empty table, together with an
// error wrapping ErrLedgerUnreadable that callers should show as a warning.
func (s *Store) LoadAll(ctx context.Context, loc Locator) (models.Table, error) {
	if err := ctx.Err(); err != nil {
		return models.EmptyTable(), err
	}
	path := s.resolve(loc)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !fileExists(path) {
		return models.EmptyTable(), nil
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return models.EmptyTable(), fmt.Errorf("%w: failed to load data from %s: %v", ErrLedgerUnreadable, path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(f.GetActiveSheetIndex()))
	if err != nil {
		return models.EmptyTable(), fmt.Errorf("%w: failed to load data from %s: %v", ErrLedgerUnreadable, path, err)
	}
	return parseRows(rows)
}

// Path resolves the ledger file for loc, logging a pointer warning.
func (s *Store) Path(loc Locator) string {
	return s.resolve(loc)
}

func (s *Store) resolve(loc Locator) string {
	path, err := loc.Resolve()
	if err != nil {
		s.logger.Warn("session pointer not saved", zap.String("ledger", path), zap.Error(err))
	}
	return path
}

// openOrCreate opens path, or starts a new workbook with the header row
// when the file does not exist yet.
func (s *Store) openOrCreate(path string) (*excelize.File, string, error) {
	f, err := excelize.OpenFile(path)
	if err == nil {
		return f, f.GetSheetName(f.GetActiveSheetIndex()), nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, "", fmt.Errorf("%w: open %s: %v", ErrLedgerUnreadable, path, err)
	}

	f = excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), s.sheet); err != nil {
		f.Close()
		return nil, "", fmt.Errorf("name sheet: %w", err)
	}
	if err := writeHeader(f, s.sheet); err != nil {
		f.Close()
		return nil, "", err
	}
	return f, s.sheet, nil
}

func (s *Store) formatCredit(f *excelize.File, sheet string, row int) error {
	style, err := f.NewStyle(&excelize.Style{NumFmt: creditNumFmt})
	if err != nil {
		return fmt.Errorf("credit style: %w", err)
	}
	cell, err := excelize.CoordinatesToCellName(len(models.Headers), row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, cell, cell, style)
}

func (s *Store) publish(ctx context.Context, ev events.EntryEvent) {
	ev.OccurredAt = time.Now()
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.events.Publish(pctx, ev); err != nil {
		s.logger.Warn("publish entry event", zap.String("type", ev.Type), zap.Int64("id", ev.EntryID), zap.Error(err))
	}
}

func writeHeader(f *excelize.File, sheet string) error {
	header := make([]interface{}, len(models.Headers))
	for i, h := range models.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	return nil
}

func save(f *excelize.File, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create ledger dir: %w", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	return nil
}

// parseRows turns sheet rows into records, locating columns by header.
func parseRows(rows [][]string) (models.Table, error) {
	t := models.EmptyTable()
	if len(rows) == 0 {
		return t, nil
	}

	col := columnIndex(rows[0])
	for _, h := range models.Headers {
		if _, ok := col[h]; !ok {
			return models.EmptyTable(), fmt.Errorf("%w: missing column %s", ErrLedgerUnreadable, h)
		}
	}

	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}
		t.Records = append(t.Records, models.Record{
			ID:        strings.TrimSpace(cellAt(row, col["ID"])),
			Timestamp: cellAt(row, col["Timestamp"]),
			Cashier:   cellAt(row, col["Cashier"]),
			Bank:      cellAt(row, col["Bank"]),
			Credit:    cellAt(row, col["Credit"]),
		})
	}
	return t, nil
}

// columnIndex maps header names to positions. ID falls back to the first
// column when the header row does not name it.
func columnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if _, dup := idx[h]; !dup {
			idx[h] = i
		}
	}
	if _, ok := idx["ID"]; !ok {
		idx["ID"] = 0
	}
	return idx
}

// cellAt tolerates the short rows GetRows returns for trailing empty cells.
func cellAt(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
