package invitations

import (
	"errors"
	"time"
)

var (
	// ErrNotFound indicates no invitation matches the lookup.
	ErrNotFound = errors.New("invitations: invitation not found")
	// ErrDuplicate indicates the guest already holds an invitation for the
	// event.
	ErrDuplicate = errors.New("invitations: guest already invited to event")
	// ErrEventNotFound indicates the referenced event does not exist.
	ErrEventNotFound = errors.New("invitations: event not found")
	// ErrPersistence indicates the durable write failed.
	ErrPersistence = errors.New("invitations: persistence unavailable")
)

// Record is one issued invitation. The token is the tokenized link handed
// to the guest; the confirmation page resolves it back to the event.
type Record struct {
	ID         int        `json:"id"`
	EventID    int        `json:"event_id"`
	GuestName  string     `json:"guest_name"`
	GuestEmail string     `json:"guest_email"`
	Token      string     `json:"token"`
	EmailSent  bool       `json:"email_sent"`
	SentAt     *time.Time `json:"sent_at"`
	CreatedAt  time.Time  `json:"created_at"`
}

// CreateInput carries a new invitation request.
type CreateInput struct {
	EventID    int
	GuestName  string
	GuestEmail string
}

// EventInfo is the slice of event state the invitation workflow needs.
type EventInfo struct {
	ID    int
	Title string
}

// EventDirectory resolves event references. Implemented by the events
// service; invitations only needs existence and a title.
type EventDirectory interface {
	EventInfo(eventID int) (EventInfo, error)
}
