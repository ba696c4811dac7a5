package events

import (
	"errors"
	"fmt"

	"github.com/iux-juridico/invitaciones/backend/internal/invitations"
	"gorm.io/gorm"
)

// ErrNotFound indicates the requested event does not exist.
var ErrNotFound = errors.New("events: event not found")

// ServiceConfig describes the dependencies of the event service.
type ServiceConfig struct {
	Database *gorm.DB
}

// Service manages the event catalogue.
type Service struct {
	db *gorm.DB
}

// NewService validates the configuration and constructs the service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, fmt.Errorf("events: database connection required")
	}
	return &Service{db: cfg.Database}, nil
}

// Create stores a new event.
func (s *Service) Create(input CreateInput) (Event, error) {
	event := Event{
		Title:       input.Title,
		Description: input.Description,
		EventDate:   input.EventDate,
		Location:    input.Location,
		MaxGuests:   input.MaxGuests,
		IsActive:    true,
	}
	if event.MaxGuests <= 0 {
		event.MaxGuests = 100
	}
	if err := s.db.Create(&event).Error; err != nil {
		return Event{}, err
	}
	return event, nil
}

// Get returns one event by id.
func (s *Service) Get(id uint) (Event, error) {
	var event Event
	err := s.db.First(&event, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Event{}, ErrNotFound
	}
	if err != nil {
		return Event{}, err
	}
	return event, nil
}

// List returns all events, newest first.
func (s *Service) List() ([]Event, error) {
	var events []Event
	if err := s.db.Order("event_date DESC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// EventInfo implements the invitation workflow's event directory.
func (s *Service) EventInfo(eventID int) (invitations.EventInfo, error) {
	event, err := s.Get(uint(eventID))
	if err != nil {
		return invitations.EventInfo{}, err
	}
	return invitations.EventInfo{ID: int(event.ID), Title: event.Title}, nil
}
