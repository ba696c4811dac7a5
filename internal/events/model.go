package events

import "time"

// Event is an organizer-created occasion guests are invited to.
type Event struct {
	ID          uint      `gorm:"column:id;primaryKey" json:"id"`
	Title       string    `gorm:"column:title;size:320;not null" json:"title"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	EventDate   time.Time `gorm:"column:event_date;not null" json:"event_date"`
	Location    string    `gorm:"column:location;size:320;not null" json:"location"`
	MaxGuests   int       `gorm:"column:max_guests;not null;default:100" json:"max_guests"`
	IsActive    bool      `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName provides the explicit table binding for GORM.
func (Event) TableName() string {
	return "events"
}

// CreateInput carries a new event definition.
type CreateInput struct {
	Title       string
	Description string
	EventDate   time.Time
	Location    string
	MaxGuests   int
}
