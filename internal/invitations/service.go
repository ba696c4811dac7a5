package invitations

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var errMissingStore = errors.New("invitations: store is required")

// ServiceConfig describes the dependencies of the invitation workflow.
type ServiceConfig struct {
	Store  *Store
	Events EventDirectory
	Clock  func() time.Time
	Logger *zap.Logger
}

// Service issues tokenized invitations and resolves them for the
// confirmation page.
type Service struct {
	store  *Store
	events EventDirectory
	clock  func() time.Time
	logger *zap.Logger
}

// NewService validates the configuration and constructs the service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Store == nil {
		return nil, errMissingStore
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  cfg.Store,
		events: cfg.Events,
		clock:  clock,
		logger: logger,
	}, nil
}

// Create issues a new invitation for the guest and event, with a fresh
// random token. The event must exist; a guest may hold at most one
// invitation per event.
func (s *Service) Create(input CreateInput) (Record, error) {
	if s.events != nil {
		if _, err := s.events.EventInfo(input.EventID); err != nil {
			return Record{}, ErrEventNotFound
		}
	}

	record := Record{
		EventID:    input.EventID,
		GuestName:  input.GuestName,
		GuestEmail: input.GuestEmail,
		Token:      uuid.NewString(),
		CreatedAt:  s.clock().UTC(),
	}
	created, err := s.store.Insert(record)
	if err != nil {
		return Record{}, err
	}

	s.logger.Info("invitation created",
		zap.Int("id", created.ID),
		zap.Int("event_id", created.EventID))
	return created, nil
}

// MarkSent records that the invitation email went out.
func (s *Service) MarkSent(id int) (Record, error) {
	return s.store.MarkSent(id, s.clock().UTC())
}

// ByToken resolves an invitation token, returning the invitation and its
// event context.
func (s *Service) ByToken(token string) (Record, EventInfo, error) {
	record, ok := s.store.FindByToken(token)
	if !ok {
		return Record{}, EventInfo{}, ErrNotFound
	}
	info := EventInfo{ID: record.EventID}
	if s.events != nil {
		resolved, err := s.events.EventInfo(record.EventID)
		if err == nil {
			info = resolved
		}
	}
	return record, info, nil
}

// List returns all invitations.
func (s *Service) List() []Record {
	return s.store.Snapshot()
}
