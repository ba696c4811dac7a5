package guests

import "time"

// Guest is one entry in the organizer's roster. Email is unique across
// the roster.
type Guest struct {
	ID        uint      `gorm:"column:id;primaryKey" json:"id"`
	Email     string    `gorm:"column:email;size:320;uniqueIndex;not null" json:"email"`
	FirstName string    `gorm:"column:first_name;size:190;not null" json:"first_name"`
	LastName  string    `gorm:"column:last_name;size:190;not null" json:"last_name"`
	Phone     string    `gorm:"column:phone;size:64" json:"phone"`
	Company   string    `gorm:"column:company;size:190" json:"company"`
	Notes     string    `gorm:"column:notes;type:text" json:"notes"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName provides the explicit table binding for GORM.
func (Guest) TableName() string {
	return "guests"
}

// CreateInput carries a new roster entry.
type CreateInput struct {
	Email     string
	FirstName string
	LastName  string
	Phone     string
	Company   string
	Notes     string
}

// UpdateInput carries a partial roster update; nil fields are untouched.
type UpdateInput struct {
	Email     *string
	FirstName *string
	LastName  *string
	Phone     *string
	Company   *string
	Notes     *string
}
