package invitations

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Store keeps invitation records in memory, mirrored to a JSON file with
// the same full-rewrite discipline as the confirmation store.
type Store struct {
	mu      sync.Mutex
	path    string
	records []Record
	logger  *zap.Logger
}

// StoreConfig describes how to open an invitation store.
type StoreConfig struct {
	Path   string
	Logger *zap.Logger
}

// OpenStore loads the persisted invitations, starting empty when the file
// is missing or malformed.
func OpenStore(cfg StoreConfig) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("invitations: store path is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	store := &Store{path: cfg.Path, logger: logger}

	data, err := os.ReadFile(cfg.Path)
	switch {
	case err == nil:
		if jsonErr := json.Unmarshal(data, &store.records); jsonErr != nil {
			logger.Warn("invitation store file is malformed, starting empty",
				zap.String("path", cfg.Path), zap.Error(jsonErr))
			store.records = nil
		}
	case os.IsNotExist(err):
	default:
		logger.Warn("invitation store file unreadable, starting empty",
			zap.String("path", cfg.Path), zap.Error(err))
	}

	if err := store.persistLocked(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return store, nil
}

// Insert appends the record under the store lock after verifying the
// guest does not already hold an invitation for the event. The assigned
// id is returned on the stored copy.
func (s *Store) Insert(record Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	maxID := 0
	for _, existing := range s.records {
		if existing.ID > maxID {
			maxID = existing.ID
		}
		if existing.EventID == record.EventID && existing.GuestEmail == record.GuestEmail {
			return Record{}, ErrDuplicate
		}
	}
	record.ID = maxID + 1

	s.records = append(s.records, record)
	if err := s.persistLocked(); err != nil {
		s.records = s.records[:len(s.records)-1]
		s.logger.Error("invitation store write failed",
			zap.String("path", s.path), zap.Error(err))
		return Record{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return record, nil
}

// MarkSent flags the invitation as emailed and stamps the send time.
func (s *Store) MarkSent(id int, sentAt time.Time) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for index, existing := range s.records {
		if existing.ID != id {
			continue
		}
		previous := s.records[index]
		s.records[index].EmailSent = true
		s.records[index].SentAt = &sentAt
		if err := s.persistLocked(); err != nil {
			s.records[index] = previous
			return Record{}, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		return s.records[index], nil
	}
	return Record{}, ErrNotFound
}

// FindByToken resolves an invitation token.
func (s *Store) FindByToken(token string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, record := range s.records {
		if record.Token == token {
			return record, true
		}
	}
	return Record{}, false
}

// Snapshot returns an independent copy of all invitations.
func (s *Store) Snapshot() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Record(nil), s.records...)
}

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
