package confirmations

import (
	"strings"
	"time"
)

// Record is a guest's finalized RSVP. Records are immutable once created:
// the store only ever appends them and hands out copies.
type Record struct {
	ID         int       `json:"id"`
	Folio      string    `json:"folio"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	WillAttend bool      `json:"will_attend"`
	Guests     int       `json:"guests"`
	Timestamp  time.Time `json:"timestamp"`
	QRURL      *string   `json:"qr_url"`
}

// SubmissionInput carries one inbound RSVP. PassImage is an opaque,
// pre-rendered image blob (base64 data URI) supplied by the caller; the
// workflow only forwards it.
type SubmissionInput struct {
	Name          string
	Email         string
	Phone         string
	WillAttend    bool
	Guests        int
	PrivacyAccept bool
	PassImage     string
}

// NormalizeEmail produces the form used for duplicate detection. The
// stored record keeps the guest's original casing.
func NormalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
