package confirmations

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// StoreConfig describes how to open a confirmation store.
type StoreConfig struct {
	// Path is the JSON file backing the store.
	Path string
	// Seed is written when the file is absent or unreadable. Leave nil to
	// start empty.
	Seed []Record
	// Logger is optional.
	Logger *zap.Logger
}

// Store is the exclusive owner of the confirmation collection and its
// durable mirror: a JSON array rewritten in full on every append. All
// read-modify-write access goes through Transaction, which holds the one
// process-wide lock for the whole critical section.
type Store struct {
	mu      sync.Mutex
	path    string
	records []Record
	logger  *zap.Logger
}

// OpenStore loads the persisted collection, falling back to the seed when
// the file is missing or malformed. A malformed file is a warning, not a
// fatal error; the seed is persisted immediately so the durable mirror is
// consistent from the first request.
func OpenStore(cfg StoreConfig) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("confirmations: store path is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	store := &Store{path: cfg.Path, logger: logger}

	data, err := os.ReadFile(cfg.Path)
	switch {
	case err == nil:
		var records []Record
		if jsonErr := json.Unmarshal(data, &records); jsonErr != nil {
			logger.Warn("confirmation store file is malformed, starting from seed",
				zap.String("path", cfg.Path), zap.Error(jsonErr))
			records = cloneRecords(cfg.Seed)
		}
		store.records = records
	case os.IsNotExist(err):
		store.records = cloneRecords(cfg.Seed)
	default:
		logger.Warn("confirmation store file unreadable, starting from seed",
			zap.String("path", cfg.Path), zap.Error(err))
		store.records = cloneRecords(cfg.Seed)
	}

	if err := store.persistLocked(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	logger.Info("confirmation store opened",
		zap.String("path", cfg.Path), zap.Int("records", len(store.records)))
	return store, nil
}

// Tx is the view of the store inside one critical section. It must not be
// retained after the Transaction callback returns.
type Tx struct {
	store *Store
}

// Transaction runs fn while holding the store lock. Every submission's
// rate-limit check, duplicate lookup, folio allocation, and append happen
// inside a single call so the uniqueness invariants cannot be split across
// two lock acquisitions.
func (s *Store) Transaction(fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&Tx{store: s})
}

// FindByEmail returns a copy of the record whose normalized email matches,
// or false when none does.
func (tx *Tx) FindByEmail(normalizedEmail string) (Record, bool) {
	for _, record := range tx.store.records {
		if NormalizeEmail(record.Email) == normalizedEmail {
			return cloneRecord(record), true
		}
	}
	return Record{}, false
}

// NextID returns the next record identifier: max existing + 1.
func (tx *Tx) NextID() int {
	maxID := 0
	for _, record := range tx.store.records {
		if record.ID > maxID {
			maxID = record.ID
		}
	}
	return maxID + 1
}

// NextFolio allocates the next sequential folio. The caller must append
// the record carrying it before the transaction ends.
func (tx *Tx) NextFolio() string {
	return nextFolio(tx.store.records)
}

// Append adds the record and synchronously rewrites the durable file.
// When the write fails the in-memory append is rolled back and the
// submission is not committed.
func (tx *Tx) Append(record Record) error {
	tx.store.records = append(tx.store.records, record)
	if err := tx.store.persistLocked(); err != nil {
		tx.store.records = tx.store.records[:len(tx.store.records)-1]
		tx.store.logger.Error("confirmation store write failed",
			zap.String("path", tx.store.path), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

// Snapshot returns an independent copy of the full collection.
func (s *Store) Snapshot() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneRecords(s.records)
}

// FindByFolio returns a copy of the record carrying the folio, or false
// when none does.
func (s *Store) FindByFolio(folio string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, record := range s.records {
		if record.Folio == folio {
			return cloneRecord(record), true
		}
	}
	return Record{}, false
}

// Len reports the number of stored records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// persistLocked rewrites the whole file. Pretty-printed UTF-8 with HTML
// escaping off so guest names keep their accents at rest; administrative
// tooling reads the file directly. Written to a temp file first and
// renamed into place.
func (s *Store) persistLocked() error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	records := s.records
	if records == nil {
		records = []Record{}
	}
	if err := encoder.Encode(records); err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func cloneRecord(record Record) Record {
	clone := record
	if record.QRURL != nil {
		qrURL := *record.QRURL
		clone.QRURL = &qrURL
	}
	return clone
}

func cloneRecords(records []Record) []Record {
	clones := make([]Record, 0, len(records))
	for _, record := range records {
		clones = append(clones, cloneRecord(record))
	}
	return clones
}
