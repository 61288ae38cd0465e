package models

import "time"

// Item represents a record tracked for a single owner. The owner is set from
// the authenticated request and is immutable after creation.
type Item struct {
	ID          int       `json:"id" gorm:"primaryKey;autoIncrement"`
	Title       string    `json:"title" gorm:"size:255;not null"`
	Description string    `json:"description" gorm:"type:text"`
	OwnerID     int       `json:"owner" gorm:"not null;index"`
	CreatedAt   time.Time `json:"created_at"`

	// Relationships (optional, for eager loading)
	Owner User `json:"-" gorm:"foreignKey:OwnerID"`
}

// TableName specifies the table name for Item
func (Item) TableName() string {
	return "items"
}
