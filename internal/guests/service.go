package guests

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrNotFound indicates the requested guest does not exist.
	ErrNotFound = errors.New("guests: guest not found")
	// ErrDuplicateEmail indicates another guest already uses the email.
	ErrDuplicateEmail = errors.New("guests: email already registered")
)

// ServiceConfig describes the dependencies of the roster service.
type ServiceConfig struct {
	Database *gorm.DB
}

// Service manages the guest roster.
type Service struct {
	db *gorm.DB
}

// NewService validates the configuration and constructs the service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, fmt.Errorf("guests: database connection required")
	}
	return &Service{db: cfg.Database}, nil
}

// Create adds a guest to the roster, rejecting duplicate emails.
func (s *Service) Create(input CreateInput) (Guest, error) {
	email := strings.TrimSpace(input.Email)
	if err := s.ensureEmailFree(email, 0); err != nil {
		return Guest{}, err
	}

	guest := Guest{
		Email:     email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Phone:     input.Phone,
		Company:   input.Company,
		Notes:     input.Notes,
	}
	if err := s.db.Create(&guest).Error; err != nil {
		return Guest{}, err
	}
	return guest, nil
}

// Get returns one guest by id.
func (s *Service) Get(id uint) (Guest, error) {
	var guest Guest
	err := s.db.First(&guest, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Guest{}, ErrNotFound
	}
	if err != nil {
		return Guest{}, err
	}
	return guest, nil
}

// List returns a page of the roster.
func (s *Service) List(offset, limit int) ([]Guest, error) {
	if limit <= 0 {
		limit = 100
	}
	var guests []Guest
	if err := s.db.Offset(offset).Limit(limit).Order("id").Find(&guests).Error; err != nil {
		return nil, err
	}
	return guests, nil
}

// Update applies a partial update, keeping the unique-email invariant.
func (s *Service) Update(id uint, input UpdateInput) (Guest, error) {
	guest, err := s.Get(id)
	if err != nil {
		return Guest{}, err
	}

	updates := map[string]interface{}{}
	if input.Email != nil {
		email := strings.TrimSpace(*input.Email)
		if email != guest.Email {
			if err := s.ensureEmailFree(email, id); err != nil {
				return Guest{}, err
			}
			updates["email"] = email
		}
	}
	if input.FirstName != nil {
		updates["first_name"] = *input.FirstName
	}
	if input.LastName != nil {
		updates["last_name"] = *input.LastName
	}
	if input.Phone != nil {
		updates["phone"] = *input.Phone
	}
	if input.Company != nil {
		updates["company"] = *input.Company
	}
	if input.Notes != nil {
		updates["notes"] = *input.Notes
	}

	if len(updates) > 0 {
		if err := s.db.Model(&Guest{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return Guest{}, err
		}
	}
	return s.Get(id)
}

// Delete removes a guest from the roster.
func (s *Service) Delete(id uint) error {
	result := s.db.Delete(&Guest{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) ensureEmailFree(email string, excludeID uint) error {
	var count int64
	query := s.db.Model(&Guest{}).Where("email = ?", email)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicateEmail
	}
	return nil
}
