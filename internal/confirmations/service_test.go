package confirmations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeDispatcher struct {
	mu       sync.Mutex
	messages []Message
	result   DispatchResult
}

func (d *fakeDispatcher) SendConfirmationEmail(_ context.Context, msg Message) DispatchResult {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.messages = append(d.messages, msg)
	return d.result
}

func (d *fakeDispatcher) sent() []Message {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Message(nil), d.messages...)
}

type serviceFixture struct {
	service    *Service
	store      *Store
	dispatcher *fakeDispatcher
	now        time.Time
}

func newServiceFixture(t *testing.T, cfg ServiceConfig) *serviceFixture {
	t.Helper()
	fixture := &serviceFixture{
		dispatcher: &fakeDispatcher{result: DispatchResult{Success: true, Message: "enviado"}},
		now:        time.Date(2025, time.November, 1, 12, 0, 0, 0, time.UTC),
	}

	store := cfg.Store
	if store == nil {
		store, _ = openTestStore(t, nil)
	}
	fixture.store = store

	if cfg.Dispatcher == nil {
		cfg.Dispatcher = fixture.dispatcher
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://example.com/confirmacion.html?folio="
	}
	if cfg.Clock == nil {
		cfg.Clock = func() time.Time { return fixture.now }
	}
	cfg.Store = store

	service, err := NewService(cfg)
	if err != nil {
		t.Fatalf("failed to build service: %v", err)
	}
	fixture.service = service
	return fixture
}

func attendingInput(email string) SubmissionInput {
	return SubmissionInput{
		Name:          "Ana",
		Email:         email,
		Phone:         "555",
		WillAttend:    true,
		Guests:        2,
		PrivacyAccept: true,
	}
}

func TestSubmitConfirmationAllocatesSequentialFolios(t *testing.T) {
	fixture := newServiceFixture(t, ServiceConfig{})

	first, err := fixture.service.SubmitConfirmation(context.Background(), "client-1", attendingInput("ana@x.com"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Folio != "AW-234" {
		t.Fatalf("expected first folio AW-234, got %s", first.Folio)
	}
	if first.QRURL == nil || !strings.HasSuffix(*first.QRURL, "AW-234") {
		t.Fatalf("expected qr_url ending in AW-234, got %v", first.QRURL)
	}
	if first.Guests != 2 {
		t.Fatalf("expected 2 companions, got %d", first.Guests)
	}
	if first.ID != 1 {
		t.Fatalf("expected id 1, got %d", first.ID)
	}

	second, err := fixture.service.SubmitConfirmation(context.Background(), "client-2", attendingInput("otro@x.com"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Folio != "AW-235" {
		t.Fatalf("expected second folio AW-235, got %s", second.Folio)
	}
	if second.ID != 2 {
		t.Fatalf("expected id 2, got %d", second.ID)
	}
}

func TestSubmitConfirmationDecline(t *testing.T) {
	fixture := newServiceFixture(t, ServiceConfig{})

	record, err := fixture.service.SubmitConfirmation(context.Background(), "client-1", SubmissionInput{
		Name:          "Luis",
		Email:         "luis@x.com",
		Phone:         "556",
		WillAttend:    false,
		Guests:        4,
		PrivacyAccept: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.Folio != "" {
		t.Fatalf("declined record must carry no folio, got %q", record.Folio)
	}
	if record.QRURL != nil {
		t.Fatalf("declined record must carry no qr_url, got %v", *record.QRURL)
	}
	if record.Guests != 0 {
		t.Fatalf("companions must be forced to 0 when declining, got %d", record.Guests)
	}

	sent := fixture.dispatcher.sent()
	if len(sent) != 1 {
		t.Fatalf("expected one decline notification, got %d", len(sent))
	}
	if sent[0].Details.Attending {
		t.Fatalf("decline notification must not be marked attending")
	}
	if sent[0].PassImage != "" {
		t.Fatalf("decline notification must carry no pass image")
	}
}

func TestSubmitConfirmationDeclineNotificationFailureIsSoft(t *testing.T) {
	fixture := newServiceFixture(t, ServiceConfig{})
	fixture.dispatcher.result = DispatchResult{Success: false, Message: "smtp down"}

	record, err := fixture.service.SubmitConfirmation(context.Background(), "client-1", SubmissionInput{
		Name:          "Luis",
		Email:         "luis@x.com",
		PrivacyAccept: true,
	})
	if err != nil {
		t.Fatalf("notification failure must not fail the submission: %v", err)
	}
	if fixture.store.Len() != 1 {
		t.Fatalf("record must stay committed, store has %d records", fixture.store.Len())
	}
	if record.ID != 1 {
		t.Fatalf("unexpected record: %#v", record)
	}
}

func TestSubmitConfirmationRequiresConsent(t *testing.T) {
	fixture := newServiceFixture(t, ServiceConfig{})

	input := attendingInput("ana@x.com")
	input.PrivacyAccept = false
	_, err := fixture.service.SubmitConfirmation(context.Background(), "client-1", input)
	if !errors.Is(err, ErrConsentRequired) {
		t.Fatalf("expected ErrConsentRequired, got %v", err)
	}
	if fixture.store.Len() != 0 {
		t.Fatalf("consent failure must not mutate the store, got %d records", fixture.store.Len())
	}
}

func TestSubmitConfirmationRejectsDuplicateEmail(t *testing.T) {
	fixture := newServiceFixture(t, ServiceConfig{})

	if _, err := fixture.service.SubmitConfirmation(context.Background(), "client-1", attendingInput("Ana@X.com")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := fixture.service.SubmitConfirmation(context.Background(), "client-2", attendingInput("  ana@x.COM "))
	if !errors.Is(err, ErrDuplicateSubmission) {
		t.Fatalf("expected ErrDuplicateSubmission, got %v", err)
	}
	var duplicate *DuplicateError
	if !errors.As(err, &duplicate) {
		t.Fatalf("expected DuplicateError, got %T", err)
	}
	if duplicate.Email != "  ana@x.COM " {
		t.Fatalf("duplicate error must carry the original email, got %q", duplicate.Email)
	}
	if fixture.store.Len() != 1 {
		t.Fatalf("duplicate must not mutate the store, got %d records", fixture.store.Len())
	}
}

func TestSubmitConfirmationBypassEmailMaySubmitRepeatedly(t *testing.T) {
	fixture := newServiceFixture(t, ServiceConfig{BypassEmail: "Pruebas@Example.com"})

	for attempt := 0; attempt < 3; attempt++ {
		input := attendingInput("pruebas@example.com")
		if _, err := fixture.service.SubmitConfirmation(context.Background(), "client-1", input); err != nil {
			t.Fatalf("bypass submission %d failed: %v", attempt+1, err)
		}
	}
	if fixture.store.Len() != 3 {
		t.Fatalf("expected 3 bypass records, got %d", fixture.store.Len())
	}
}

func TestSubmitConfirmationRateLimit(t *testing.T) {
	fixture := newServiceFixture(t, ServiceConfig{})

	for attempt := 0; attempt < rateLimitMax; attempt++ {
		input := attendingInput(fmt.Sprintf("guest-%d@x.com", attempt))
		if _, err := fixture.service.SubmitConfirmation(context.Background(), "client-1", input); err != nil {
			t.Fatalf("submission %d should pass the limiter: %v", attempt+1, err)
		}
	}

	_, err := fixture.service.SubmitConfirmation(context.Background(), "client-1", attendingInput("sexta@x.com"))
	if !errors.Is(err, ErrTooManyRequests) {
		t.Fatalf("expected ErrTooManyRequests on the 6th submission, got %v", err)
	}
	if fixture.store.Len() != rateLimitMax {
		t.Fatalf("rate-limited submission must not mutate the store, got %d records", fixture.store.Len())
	}

	// After the oldest attempt ages out of the window, submissions resume.
	fixture.now = fixture.now.Add(rateLimitWindow + time.Second)
	if _, err := fixture.service.SubmitConfirmation(context.Background(), "client-1", attendingInput("septima@x.com")); err != nil {
		t.Fatalf("submission after the window should pass: %v", err)
	}
}

func TestSubmitConfirmationConcurrentFoliosAreUnique(t *testing.T) {
	fixture := newServiceFixture(t, ServiceConfig{})

	const submitters = 20
	var wg sync.WaitGroup
	folios := make(chan string, submitters)

	for worker := 0; worker < submitters; worker++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			input := attendingInput(fmt.Sprintf("guest-%d@x.com", worker))
			record, err := fixture.service.SubmitConfirmation(context.Background(), fmt.Sprintf("client-%d", worker), input)
			if err != nil {
				t.Errorf("submission %d failed: %v", worker, err)
				return
			}
			folios <- record.Folio
		}(worker)
	}
	wg.Wait()
	close(folios)

	seen := make(map[string]bool)
	for folio := range folios {
		if seen[folio] {
			t.Fatalf("folio %s assigned twice", folio)
		}
		seen[folio] = true
	}
	if len(seen) != submitters {
		t.Fatalf("expected %d unique folios, got %d", submitters, len(seen))
	}
}

func TestDispatchPassEmailReturnsVerdictVerbatim(t *testing.T) {
	fixture := newServiceFixture(t, ServiceConfig{})

	record, err := fixture.service.SubmitConfirmation(context.Background(), "client-1", attendingInput("ana@x.com"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fixture.dispatcher.messages = nil
	fixture.dispatcher.result = DispatchResult{Success: false, Message: "buzon lleno"}

	result, err := fixture.service.DispatchPassEmail(context.Background(), record.Folio, "ana@x.com", "Ana", "data:image/png;base64,AQID")
	if err != nil {
		t.Fatalf("dispatch failure must be a result, not an error: %v", err)
	}
	if result.Success || result.Message != "buzon lleno" {
		t.Fatalf("expected the dispatcher verdict verbatim, got %#v", result)
	}

	sent := fixture.dispatcher.sent()
	if len(sent) != 1 {
		t.Fatalf("expected exactly one dispatch attempt, got %d", len(sent))
	}
	if sent[0].PassImage != "data:image/png;base64,AQID" {
		t.Fatalf("pass image must be forwarded untouched, got %q", sent[0].PassImage)
	}
	if sent[0].Details.ConfirmedAt == "" {
		t.Fatalf("expected a human-readable confirmation timestamp")
	}
}

func TestDispatchPassEmailUnknownFolio(t *testing.T) {
	fixture := newServiceFixture(t, ServiceConfig{})

	_, err := fixture.service.DispatchPassEmail(context.Background(), "AW-999", "x@x.com", "X", "")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(fixture.dispatcher.sent()) != 0 {
		t.Fatalf("unknown folio must not reach the dispatcher")
	}
}

func TestConfirmationByFolio(t *testing.T) {
	fixture := newServiceFixture(t, ServiceConfig{})

	record, err := fixture.service.SubmitConfirmation(context.Background(), "client-1", attendingInput("ana@x.com"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	found, err := fixture.service.ConfirmationByFolio(record.Folio)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found.Email != "ana@x.com" {
		t.Fatalf("unexpected record: %#v", found)
	}

	if _, err := fixture.service.ConfirmationByFolio("AW-000"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
