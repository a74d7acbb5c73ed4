package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"ledger/internal/core"
	applog "ledger/internal/log"
	"ledger/internal/store"
)

var _ store.TransactionStore = (*Store)(nil)

// Store keeps transactions in memory. With a data file every write is
// persisted as a JSON array and the file is read back on startup.
type Store struct {
	mu     sync.Mutex
	items  []core.Transaction
	nextID int64
	path   string
	logger *applog.Logger
}

// New returns an empty store that is not persisted.
func New() *Store {
	return &Store{nextID: 1, logger: applog.Discard()}
}

// NewFromFile loads path when it exists. A missing or empty file starts an
// empty ledger; an unreadable one is logged and also starts empty.
func NewFromFile(path string, logger *applog.Logger) *Store {
	if logger == nil {
		logger = applog.Discard()
	}
	s := &Store{nextID: 1, path: path, logger: logger.WithComponent(applog.ComponentStorage)}

	items, err := readFile(path)
	if err != nil {
		s.logger.Warn("Error parsing data file, starting with an empty ledger", applog.FieldError, err, "path", path)
		return s
	}
	s.items = items
	for _, tx := range items {
		if tx.ID >= s.nextID {
			s.nextID = tx.ID + 1
		}
	}
	return s
}

func (s *Store) List(_ context.Context, f core.Filter) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, 0, len(s.items))
	for _, tx := range s.items {
		if f.Matches(tx) {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (s *Store) Get(_ context.Context, id int64) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.items[i], nil
	}
	return core.Transaction{}, core.ErrNotFound
}

func (s *Store) Create(_ context.Context, in core.TransactionInput) (core.Transaction, error) {
	d, err := core.ParseDate(in.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := core.Transaction{
		ID:          s.nextID,
		Date:        d.Format(core.DateLayout),
		Category:    in.Category,
		Description: in.Description,
		Amount:      in.Amount,
	}
	s.nextID++
	s.items = append(s.items, tx)
	s.persist()
	return tx, nil
}

func (s *Store) Patch(_ context.Context, id int64, p core.TransactionPatch) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return core.Transaction{}, core.ErrNotFound
	}
	tx, err := p.Apply(s.items[i])
	if err != nil {
		return core.Transaction{}, err
	}
	s.items[i] = tx
	s.persist()
	return tx, nil
}

func (s *Store) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return core.ErrNotFound
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	s.persist()
	return nil
}

func (s *Store) Close() error { return nil }

func (s *Store) indexOf(id int64) int {
	for i, tx := range s.items {
		if tx.ID == id {
			return i
		}
	}
	return -1
}

// persist writes the ledger to the data file. Failures are logged: the
// in-memory state stays authoritative. Caller holds mu.
func (s *Store) persist() {
	if s.path == "" {
		return
	}
	if err := writeFile(s.path, s.items); err != nil {
		s.logger.Error("Could not save data file", applog.FieldError, err, "path", s.path)
	}
}

func readFile(path string) ([]core.Transaction, error) {
	if path == "" {
		return nil, nil
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read data file: %w", err)
	}
	if strings.TrimSpace(string(b)) == "" {
		return nil, nil
	}
	var items []core.Transaction
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, fmt.Errorf("decode data file: %w", err)
	}
	return items, nil
}

func writeFile(path string, items []core.Transaction) error {
	if items == nil {
		items = []core.Transaction{}
	}
	b, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("encode transactions: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data directory: %w", err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write data file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace data file: %w", err)
	}
	return nil
}
