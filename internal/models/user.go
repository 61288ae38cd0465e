package models

import "time"

// User represents a user in the system. Accounts are provisioned by the
// external auth layer; this service only resolves and references them.
type User struct {
	ID        int       `json:"id" gorm:"primaryKey;autoIncrement"`
	Username  string    `json:"username" gorm:"uniqueIndex;not null"`
	Active    bool      `json:"active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`

	// Relationships (optional, for eager loading)
	Items []Item `json:"-" gorm:"foreignKey:OwnerID"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}
