package invitations

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

type staticDirectory struct {
	events map[int]EventInfo
}

func (d *staticDirectory) EventInfo(eventID int) (EventInfo, error) {
	info, ok := d.events[eventID]
	if !ok {
		return EventInfo{}, errors.New("no such event")
	}
	return info, nil
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	store, err := OpenStore(StoreConfig{Path: filepath.Join(t.TempDir(), "invitaciones.json")})
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	service, err := NewService(ServiceConfig{
		Store: store,
		Events: &staticDirectory{events: map[int]EventInfo{
			1: {ID: 1, Title: "Fiesta de Finalización del Posgrado"},
		}},
		Clock: func() time.Time { return time.Date(2025, time.November, 1, 12, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("failed to build service: %v", err)
	}
	return service
}

func TestCreateIssuesUniqueTokens(t *testing.T) {
	service := newTestService(t)

	first, err := service.Create(CreateInput{EventID: 1, GuestName: "Ana", GuestEmail: "ana@x.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := service.Create(CreateInput{EventID: 1, GuestName: "Luis", GuestEmail: "luis@x.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.Token == "" || second.Token == "" {
		t.Fatalf("expected non-empty tokens")
	}
	if first.Token == second.Token {
		t.Fatalf("tokens must be unique")
	}
	if first.ID != 1 || second.ID != 2 {
		t.Fatalf("expected sequential ids, got %d and %d", first.ID, second.ID)
	}
}

func TestCreateRejectsUnknownEvent(t *testing.T) {
	service := newTestService(t)

	_, err := service.Create(CreateInput{EventID: 99, GuestName: "Ana", GuestEmail: "ana@x.com"})
	if !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound, got %v", err)
	}
}

func TestCreateRejectsDuplicateGuestForEvent(t *testing.T) {
	service := newTestService(t)

	if _, err := service.Create(CreateInput{EventID: 1, GuestName: "Ana", GuestEmail: "ana@x.com"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := service.Create(CreateInput{EventID: 1, GuestName: "Ana", GuestEmail: "ana@x.com"})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestByTokenResolvesEventContext(t *testing.T) {
	service := newTestService(t)

	created, err := service.Create(CreateInput{EventID: 1, GuestName: "Ana", GuestEmail: "ana@x.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	record, info, err := service.ByToken(created.Token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.ID != created.ID {
		t.Fatalf("unexpected record: %#v", record)
	}
	if info.Title != "Fiesta de Finalización del Posgrado" {
		t.Fatalf("unexpected event info: %#v", info)
	}

	if _, _, err := service.ByToken("no-such-token"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMarkSentStampsRecord(t *testing.T) {
	service := newTestService(t)

	created, err := service.Create(CreateInput{EventID: 1, GuestName: "Ana", GuestEmail: "ana@x.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sent, err := service.MarkSent(created.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sent.EmailSent || sent.SentAt == nil {
		t.Fatalf("expected invitation to be marked sent: %#v", sent)
	}

	if _, err := service.MarkSent(99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invitaciones.json")
	store, err := OpenStore(StoreConfig{Path: path})
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}

	inserted, err := store.Insert(Record{
		EventID:    1,
		GuestName:  "José Núñez",
		GuestEmail: "jose@example.com",
		Token:      "token-1",
		CreatedAt:  time.Date(2025, time.November, 1, 12, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reloaded, err := OpenStore(StoreConfig{Path: path})
	if err != nil {
		t.Fatalf("failed to reload store: %v", err)
	}
	records := reloaded.Snapshot()
	if len(records) != 1 {
		t.Fatalf("expected 1 record after reload, got %d", len(records))
	}
	if records[0].GuestName != inserted.GuestName || records[0].Token != "token-1" {
		t.Fatalf("reloaded record differs: %#v", records[0])
	}
}
