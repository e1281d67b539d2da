package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const dateLayout = "2006-01-02"

// Pointer is the persisted record of which ledger file is current.
// LastID is the highest id ever assigned in AggregateFile, so deleting the
// newest entry does not free its id.
type Pointer struct {
	AggregateFile  string `json:"aggregate_file"`
	FirstEntryDate string `json:"first_entry_date"`
	LastID         int64  `json:"last_id,omitempty"`
}

// Locator decides which ledger file belongs to the running session and
// keeps that choice in a pointer file so a restart resumes the same ledger.
// A pointer that could not be written is held in memory until a later
// write succeeds or the session is cleared.
type Locator struct {
	Dir         string // where new ledger files are allocated
	PointerFile string
	Now         func() time.Time

	mu      sync.Mutex
	unsaved *Pointer
}

func NewLocator(dir, pointerFile string) *Locator {
	return &Locator{
		Dir:         dir,
		PointerFile: pointerFile,
		Now:         time.Now,
	}
}

// Resolve returns the current ledger path. The path is always usable; a
// non-nil error only reports that the pointer could not be written and
// wraps ErrPointerNotSaved.
func (l *Locator) Resolve() (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if p, ok := l.current(); ok {
		if l.unsaved != nil {
			return p.AggregateFile, l.save(p)
		}
		return p.AggregateFile, nil
	}

	path := l.allocate()
	return path, l.save(Pointer{AggregateFile: path, FirstEntryDate: l.today()})
}

// Commit records path as the current ledger again after a write. The
// existing first entry date and a higher last id are kept when the pointer
// already names the same file.
func (l *Locator) Commit(path string, lastID int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	p := Pointer{AggregateFile: path, FirstEntryDate: l.today(), LastID: lastID}
	if cur, ok := l.current(); ok && cur.AggregateFile == path {
		if cur.FirstEntryDate != "" {
			p.FirstEntryDate = cur.FirstEntryDate
		}
		if cur.LastID > p.LastID {
			p.LastID = cur.LastID
		}
	}
	return l.save(p)
}

// LastID returns the high-water id recorded for path, or 0.
func (l *Locator) LastID(path string) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	if cur, ok := l.current(); ok && cur.AggregateFile == path {
		return cur.LastID
	}
	return 0
}

// Current returns the pointer in effect without allocating anything.
func (l *Locator) Current() (Pointer, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current()
}

// Clear removes the pointer file. The next Resolve allocates a new ledger.
func (l *Locator) Clear() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.unsaved = nil
	if err := os.Remove(l.PointerFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session pointer: %w", err)
	}
	return nil
}

// current prefers the pointer held in memory after a failed write over
// whatever the pointer file still says.
func (l *Locator) current() (Pointer, bool) {
	if l.unsaved != nil {
		return *l.unsaved, true
	}
	return l.readPointer()
}

// save writes p, keeping it in memory when the write fails.
func (l *Locator) save(p Pointer) error {
	if err := l.write(p); err != nil {
		l.unsaved = &p
		return err
	}
	l.unsaved = nil
	return nil
}

// readPointer loads the pointer file. A regular file that cannot be read or
// parsed is deleted.
func (l *Locator) readPointer() (Pointer, bool) {
	raw, err := os.ReadFile(l.PointerFile)
	if errors.Is(err, os.ErrNotExist) {
		return Pointer{}, false
	}
	var p Pointer
	if err == nil {
		err = json.Unmarshal(raw, &p)
	}
	if err != nil || p.AggregateFile == "" {
		if fi, statErr := os.Stat(l.PointerFile); statErr == nil && fi.Mode().IsRegular() {
			_ = os.Remove(l.PointerFile)
		}
		return Pointer{}, false
	}
	return p, true
}

// allocate picks aggregate_<date>.xlsx, or the first free _N suffix.
func (l *Locator) allocate() string {
	base := filepath.Join(l.Dir, "aggregate_"+l.today())
	name := base + ".xlsx"
	for n := 1; exists(name); n++ {
		name = fmt.Sprintf("%s_%d.xlsx", base, n)
	}
	return name
}

func (l *Locator) write(p Pointer) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPointerNotSaved, err)
	}
	if dir := filepath.Dir(l.PointerFile); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: %v", ErrPointerNotSaved, err)
		}
	}
	if err := os.WriteFile(l.PointerFile, raw, 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrPointerNotSaved, err)
	}
	return nil
}

func (l *Locator) today() string {
	now := time.Now
	if l.Now != nil {
		now = l.Now
	}
	return now().Format(dateLayout)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
