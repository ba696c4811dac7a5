package confirmations

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

const confirmedAtLayout = "02/01/2006 15:04"

var errMissingStore = errors.New("confirmations: store is required")

// EventDetails is the notification payload describing one confirmation.
type EventDetails struct {
	Attending   bool
	Companions  int
	Whatsapp    string
	Email       string
	ConfirmedAt string
}

// Message is one outbound notification request.
type Message struct {
	ToEmail   string
	GuestName string
	Details   EventDetails
	// PassImage is an optional pre-rendered pass as a base64 data URI.
	PassImage string
}

// DispatchResult is the dispatcher's verdict. Transport failures are
// folded into the result value; the boundary never raises.
type DispatchResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Dispatcher delivers a confirmation notification, reporting success or
// failure without ever returning an error past the boundary.
type Dispatcher interface {
	SendConfirmationEmail(ctx context.Context, msg Message) DispatchResult
}

// AsyncDispatcher accepts notifications for best-effort background
// delivery, decoupled from the request path.
type AsyncDispatcher interface {
	Enqueue(msg Message)
}

// ServiceConfig describes the dependencies of the confirmation workflow.
type ServiceConfig struct {
	Store      *Store
	Dispatcher Dispatcher
	// Async, when set, receives the fire-and-forget notifications (the
	// not-attending path). When nil those are sent inline, still outside
	// the store lock and still best-effort.
	Async AsyncDispatcher
	// BaseURL is the confirmation-lookup prefix the folio is appended to.
	BaseURL string
	// BypassEmail, when non-empty, names the one identity exempt from
	// duplicate detection (compared in normalized form).
	BypassEmail string
	Clock       func() time.Time
	Logger      *zap.Logger
}

// Service orchestrates the confirmation lifecycle: gate, deduplicate,
// brand, persist, notify.
type Service struct {
	store       *Store
	limiter     *RateLimiter
	dispatcher  Dispatcher
	async       AsyncDispatcher
	baseURL     string
	bypassEmail string
	clock       func() time.Time
	logger      *zap.Logger
}

// NewService validates the configuration and constructs the workflow.
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
		store:       cfg.Store,
		limiter:     NewRateLimiter(),
		dispatcher:  cfg.Dispatcher,
		async:       cfg.Async,
		baseURL:     cfg.BaseURL,
		bypassEmail: NormalizeEmail(cfg.BypassEmail),
		clock:       clock,
		logger:      logger,
	}, nil
}

// SubmitConfirmation runs one RSVP through the gates and, when they pass,
// commits exactly one record. Every check and the append happen inside a
// single store transaction; the record returned is already durable.
//
// The attending path sends no email here: the pass image embeds the folio,
// which is unknown until allocation, so the caller renders the pass from
// the returned record and then calls DispatchPassEmail.
func (s *Service) SubmitConfirmation(ctx context.Context, clientID string, input SubmissionInput) (Record, error) {
	var created Record

	err := s.store.Transaction(func(tx *Tx) error {
		now := s.clock()

		if !s.limiter.CheckAndRecord(clientID, now) {
			return ErrTooManyRequests
		}
		if !input.PrivacyAccept {
			return ErrConsentRequired
		}

		normalized := NormalizeEmail(input.Email)
		if s.bypassEmail == "" || normalized != s.bypassEmail {
			if _, exists := tx.FindByEmail(normalized); exists {
				return &DuplicateError{Email: input.Email}
			}
		}

		record := Record{
			ID:         tx.NextID(),
			Name:       input.Name,
			Email:      input.Email,
			Phone:      input.Phone,
			WillAttend: input.WillAttend,
			Timestamp:  now.UTC(),
		}
		if input.WillAttend {
			record.Folio = tx.NextFolio()
			qrURL := s.baseURL + record.Folio
			record.QRURL = &qrURL
			if input.Guests > 0 {
				record.Guests = input.Guests
			}
		}

		if err := tx.Append(record); err != nil {
			return err
		}
		created = record
		return nil
	})
	if err != nil {
		return Record{}, err
	}

	s.logger.Info("confirmation recorded",
		zap.Int("id", created.ID),
		zap.String("folio", created.Folio),
		zap.Bool("will_attend", created.WillAttend))

	if !created.WillAttend {
		s.notifyDeclined(ctx, created)
	}

	return created, nil
}

// DispatchPassEmail delivers the access pass for an existing confirmation.
// The record is looked up by folio and the dispatcher's verdict is
// returned verbatim; there is no retry.
func (s *Service) DispatchPassEmail(ctx context.Context, folio, email, name, passImage string) (DispatchResult, error) {
	record, ok := s.store.FindByFolio(folio)
	if !ok {
		return DispatchResult{}, ErrNotFound
	}

	msg := Message{
		ToEmail:   email,
		GuestName: name,
		Details: EventDetails{
			Attending:   record.WillAttend,
			Companions:  record.Guests,
			Whatsapp:    record.Phone,
			Email:       email,
			ConfirmedAt: record.Timestamp.Local().Format(confirmedAtLayout),
		},
		PassImage: passImage,
	}

	result := s.dispatcher.SendConfirmationEmail(ctx, msg)
	if !result.Success {
		s.logger.Warn("pass email dispatch failed",
			zap.String("folio", folio), zap.String("message", result.Message))
	}
	return result, nil
}

// ConfirmationByFolio looks up a single record.
func (s *Service) ConfirmationByFolio(folio string) (Record, error) {
	record, ok := s.store.FindByFolio(folio)
	if !ok {
		return Record{}, ErrNotFound
	}
	return record, nil
}

// ListConfirmations returns an independent copy of all records.
func (s *Service) ListConfirmations() []Record {
	return s.store.Snapshot()
}

// notifyDeclined fires the not-attending notification after the record is
// committed. Failures are logged and never surfaced to the submitter.
func (s *Service) notifyDeclined(ctx context.Context, record Record) {
	msg := Message{
		ToEmail:   record.Email,
		GuestName: record.Name,
		Details: EventDetails{
			Attending:   false,
			Companions:  0,
			Whatsapp:    record.Phone,
			Email:       record.Email,
			ConfirmedAt: record.Timestamp.Local().Format(confirmedAtLayout),
		},
	}

	if s.async != nil {
		s.async.Enqueue(msg)
		return
	}
	if s.dispatcher == nil {
		return
	}
	result := s.dispatcher.SendConfirmationEmail(ctx, msg)
	if !result.Success {
		s.logger.Warn("decline notification failed",
			zap.Int("id", record.ID), zap.String("message", result.Message))
	}
}
